package export

import (
	"bytes"
	"image/png"
	"testing"

	"github.com/JoshVarga/svgparser"
	"github.com/golang/geo/r2"
	geojson "github.com/paulmach/go.geojson"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/osuushi/trimesh/mesh"
)

// square is a 2x1 rectangle split into two regions by a segment at x = 1.
func square(t *testing.T) *mesh.Mesh {
	t.Helper()
	in := mesh.Input{
		Points: []mesh.Point{
			{Point: r2.Point{X: 0, Y: 0}}, {Point: r2.Point{X: 2, Y: 0}},
			{Point: r2.Point{X: 2, Y: 1}}, {Point: r2.Point{X: 0, Y: 1}},
			{Point: r2.Point{X: 1, Y: 0}}, {Point: r2.Point{X: 1, Y: 1}},
		},
		Segments: []mesh.InputSegment{{P0: 4, P1: 5, Label: 3}},
		Regions: []mesh.Region{
			{Point: r2.Point{X: 0.3, Y: 0.6}, ID: 1},
			{Point: r2.Point{X: 1.7, Y: 0.4}, ID: 2},
		},
	}
	m, err := mesh.New(in, mesh.WithConvexHull())
	require.NoError(t, err)
	require.NoError(t, m.Triangulate())
	return m
}

func TestFrame(t *testing.T) {
	m := square(t)
	f := newFrame(m, Style{Width: 220, Padding: 10})
	assert.Equal(t, 220, f.width)
	assert.Equal(t, 120, f.height)

	x, y := f.project(r2.Point{X: 0, Y: 0})
	assert.InDelta(t, 10, x, 1e-9)
	assert.InDelta(t, 110, y, 1e-9)
	x, y = f.project(r2.Point{X: 2, Y: 1})
	assert.InDelta(t, 210, x, 1e-9)
	assert.InDelta(t, 10, y, 1e-9)
}

func TestWriteSVG(t *testing.T) {
	m := square(t)
	var buf bytes.Buffer
	require.NoError(t, WriteSVG(&buf, m, Style{Width: 400, Padding: 10, ShowVertices: true}))

	root, err := svgparser.Parse(&buf, false)
	require.NoError(t, err)
	assert.Equal(t, "svg", root.Name)
	assert.Len(t, root.FindAll("polygon"), m.NumberOfTriangles())
	assert.Len(t, root.FindAll("line"), m.NumberOfSegments())
	assert.Len(t, root.FindAll("circle"), m.NumberOfVertices())
}

func TestRender(t *testing.T) {
	m := square(t)
	img := Render(m, Style{Width: 220, Padding: 10})
	assert.Equal(t, 220, img.Bounds().Dx())
	assert.Equal(t, 120, img.Bounds().Dy())

	// Sample the middle of each region, away from any edge.
	left := regionColor(1)
	r, g, b, _ := img.At(40, 52).RGBA()
	assert.InDelta(t, left.r*0xffff, float64(r), 0x300)
	assert.InDelta(t, left.g*0xffff, float64(g), 0x300)
	assert.InDelta(t, left.b*0xffff, float64(b), 0x300)

	var buf bytes.Buffer
	require.NoError(t, WritePNG(&buf, m, Style{Width: 220}))
	decoded, err := png.Decode(&buf)
	require.NoError(t, err)
	assert.Equal(t, 220, decoded.Bounds().Dx())
}

func TestGeoJSON(t *testing.T) {
	m := square(t)
	var buf bytes.Buffer
	require.NoError(t, WriteGeoJSON(&buf, m, true))

	fc, err := geojson.UnmarshalFeatureCollection(buf.Bytes())
	require.NoError(t, err)
	kinds := map[string]int{}
	for _, f := range fc.Features {
		kind, err := f.PropertyString("kind")
		require.NoError(t, err)
		kinds[kind]++
		if kind == "triangle" {
			require.True(t, f.Geometry.IsPolygon())
			assert.Len(t, f.Geometry.Polygon[0], 4)
			region, err := f.PropertyFloat64("region")
			require.NoError(t, err)
			assert.Contains(t, []float64{1, 2}, region)
		}
	}
	assert.Equal(t, map[string]int{
		"triangle": m.NumberOfTriangles(),
		"segment":  m.NumberOfSegments(),
		"vertex":   m.NumberOfVertices(),
	}, kinds)
}

func TestRegionColor(t *testing.T) {
	assert.Equal(t, palette[0], regionColor(0))
	assert.Equal(t, palette[1], regionColor(len(palette)+1))
	assert.Equal(t, palette[len(palette)-1], regionColor(-1))
}
