package export

import (
	"fmt"
	"io"
	"math"

	svg "github.com/ajstarks/svgo"
)

// errWriter remembers the first write error, since svgo drops them.
type errWriter struct {
	w   io.Writer
	err error
}

func (e *errWriter) Write(p []byte) (int, error) {
	if e.err != nil {
		return 0, e.err
	}
	n, err := e.w.Write(p)
	e.err = err
	return n, err
}

func (c rgb) hex() string {
	return fmt.Sprintf("#%02x%02x%02x", int(c.r*255), int(c.g*255), int(c.b*255))
}

func round(v float64) int { return int(math.Round(v)) }

// WriteSVG draws the triangles filled by region, their edges, and the
// subsegments on top.
func WriteSVG(w io.Writer, src Source, style Style) error {
	f := newFrame(src, style)
	ew := &errWriter{w: w}
	canvas := svg.New(ew)
	canvas.Start(f.width, f.height)
	canvas.Rect(0, 0, f.width, f.height, "fill:white")

	canvas.Gstyle(fmt.Sprintf("stroke:%s;stroke-width:1;stroke-linejoin:round", edgeColor.hex()))
	for _, tri := range src.Triangles() {
		xs, ys := f.corners(src, tri)
		canvas.Polygon(
			[]int{round(xs[0]), round(xs[1]), round(xs[2])},
			[]int{round(ys[0]), round(ys[1]), round(ys[2])},
			"fill:"+regionColor(tri.Region).hex(),
		)
	}
	canvas.Gend()

	canvas.Gstyle(fmt.Sprintf("stroke:%s;stroke-width:%g;stroke-linecap:round", segmentColor.hex(), segmentWeight))
	for _, s := range src.Segments() {
		x0, y0, x1, y1 := f.segment(src, s)
		canvas.Line(round(x0), round(y0), round(x1), round(y1))
	}
	canvas.Gend()

	if style.ShowVertices {
		canvas.Gstyle("fill:" + vertexColor.hex())
		for _, v := range src.Vertices() {
			x, y := f.project(v.Point)
			canvas.Circle(round(x), round(y), 2)
		}
		canvas.Gend()
	}
	canvas.End()
	return ew.err
}
