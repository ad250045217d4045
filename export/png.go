package export

import (
	"image"
	"io"
	"os"

	"github.com/fogleman/gg"
	imgcat "github.com/martinlindhe/imgcat/lib"
	"github.com/pkg/errors"
)

// Render draws the mesh into an image, the same way WriteSVG does.
func Render(src Source, style Style) image.Image {
	f := newFrame(src, style)
	c := gg.NewContext(f.width, f.height)
	c.SetRGB(1, 1, 1)
	c.DrawRectangle(0, 0, float64(f.width), float64(f.height))
	c.Fill()

	c.SetLineWidth(1)
	for _, tri := range src.Triangles() {
		xs, ys := f.corners(src, tri)
		c.MoveTo(xs[0], ys[0])
		c.LineTo(xs[1], ys[1])
		c.LineTo(xs[2], ys[2])
		c.ClosePath()
		fill := regionColor(tri.Region)
		c.SetRGB(fill.r, fill.g, fill.b)
		c.FillPreserve()
		c.SetRGB(edgeColor.r, edgeColor.g, edgeColor.b)
		c.Stroke()
	}

	c.SetLineWidth(segmentWeight)
	c.SetRGB(segmentColor.r, segmentColor.g, segmentColor.b)
	for _, s := range src.Segments() {
		x0, y0, x1, y1 := f.segment(src, s)
		c.DrawLine(x0, y0, x1, y1)
		c.Stroke()
	}

	if style.ShowVertices {
		c.SetRGB(vertexColor.r, vertexColor.g, vertexColor.b)
		for _, v := range src.Vertices() {
			x, y := f.project(v.Point)
			c.DrawCircle(x, y, 2)
			c.Fill()
		}
	}
	return c.Image()
}

func WritePNG(w io.Writer, src Source, style Style) error {
	c := gg.NewContextForImage(Render(src, style))
	return errors.Wrap(c.EncodePNG(w), "encoding png")
}

// CatPNG prints the rendered mesh to an iTerm-compatible terminal.
func CatPNG(w io.Writer, src Source, style Style) error {
	tmp, err := os.CreateTemp("", "trimesh-*.png")
	if err != nil {
		return errors.Wrap(err, "creating temp file")
	}
	defer os.Remove(tmp.Name())

	if err := WritePNG(tmp, src, style); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return errors.Wrap(err, "writing temp file")
	}
	return errors.Wrap(imgcat.CatFile(tmp.Name(), w), "imgcat")
}
