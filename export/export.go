// Package export draws meshes as SVG and PNG and encodes them as GeoJSON.
package export

import (
	"math"

	"github.com/golang/geo/r2"

	"github.com/osuushi/trimesh/mesh"
)

// Source is the read-only part of a mesh the exporters need.
type Source interface {
	Vertices() []*mesh.Vertex
	Vertex(id int) *mesh.Vertex
	Triangles() []mesh.TriangleInfo
	Segments() []mesh.SegmentInfo
}

// Style controls the drawings.
type Style struct {
	// Width of the image in pixels; the height follows the aspect ratio of
	// the mesh.
	Width int
	// Padding around the mesh in pixels.
	Padding int
	// ShowVertices marks every vertex with a dot.
	ShowVertices bool
}

func DefaultStyle() Style {
	return Style{Width: 800, Padding: 20}
}

type rgb struct{ r, g, b float64 }

// Region fills cycle through this palette by region ID.
var palette = []rgb{
	{0.55, 0.71, 0.86},
	{0.98, 0.75, 0.44},
	{0.60, 0.84, 0.55},
	{0.95, 0.58, 0.58},
	{0.77, 0.69, 0.84},
	{0.85, 0.85, 0.60},
}

func regionColor(region int) rgb {
	i := region % len(palette)
	if i < 0 {
		i += len(palette)
	}
	return palette[i]
}

var (
	edgeColor     = rgb{0.2, 0.2, 0.2}
	segmentColor  = rgb{0.8, 0.1, 0.1}
	vertexColor   = rgb{0.1, 0.1, 0.5}
	segmentWeight = 2.5
)

// frame maps mesh coordinates to pixels, with the origin at the bottom left.
type frame struct {
	bounds        r2.Rect
	scale         float64
	padding       float64
	width, height int
}

func newFrame(src Source, style Style) frame {
	if style.Width <= 0 {
		style.Width = DefaultStyle().Width
	}
	if style.Padding < 0 {
		style.Padding = 0
	}
	bounds := r2.EmptyRect()
	for _, v := range src.Vertices() {
		bounds = bounds.AddPoint(v.Point)
	}
	f := frame{bounds: bounds, padding: float64(style.Padding), width: style.Width, height: style.Width}
	if bounds.IsEmpty() {
		return f
	}
	size := bounds.Size()
	inner := float64(style.Width - 2*style.Padding)
	if inner <= 0 {
		inner = float64(style.Width)
		f.padding = 0
	}
	f.scale = inner / math.Max(size.X, size.Y)
	if f.scale == 0 || math.IsInf(f.scale, 0) {
		f.scale = 1
	}
	f.width = style.Width
	f.height = int(math.Ceil(size.Y*f.scale + 2*f.padding))
	if size.X < size.Y {
		f.width = int(math.Ceil(size.X*f.scale + 2*f.padding))
	}
	return f
}

func (f frame) project(p r2.Point) (x, y float64) {
	x = f.padding + (p.X-f.bounds.X.Lo)*f.scale
	y = float64(f.height) - f.padding - (p.Y-f.bounds.Y.Lo)*f.scale
	return x, y
}

func (f frame) corners(src Source, tri mesh.TriangleInfo) (xs, ys [3]float64) {
	for i, id := range tri.Vertices {
		xs[i], ys[i] = f.project(src.Vertex(id).Point)
	}
	return xs, ys
}

func (f frame) segment(src Source, s mesh.SegmentInfo) (x0, y0, x1, y1 float64) {
	x0, y0 = f.project(src.Vertex(s.Endpoints[0]).Point)
	x1, y1 = f.project(src.Vertex(s.Endpoints[1]).Point)
	return x0, y0, x1, y1
}
