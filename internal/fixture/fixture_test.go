package fixture

import (
	"strings"
	"testing"

	"github.com/golang/geo/r1"
	"github.com/golang/geo/r2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/osuushi/trimesh/mesh"
	"github.com/osuushi/trimesh/polygon"
)

func area(list polygon.List) float64 {
	total := 0.0
	for _, poly := range list {
		total += poly.SignedArea()
	}
	return total
}

func meshArea(m *mesh.Mesh) float64 {
	total := 0.0
	for _, tri := range m.Triangles() {
		a, b, c := m.Vertex(tri.Vertices[0]).Point, m.Vertex(tri.Vertices[1]).Point, m.Vertex(tri.Vertices[2]).Point
		total += b.Sub(a).Cross(c.Sub(a)) / 2
	}
	return total
}

func triangulate(t *testing.T, list polygon.List, opts ...mesh.Option) *mesh.Mesh {
	t.Helper()
	m, err := mesh.New(list.Input(), opts...)
	require.NoError(t, err)
	require.NoError(t, m.Triangulate())
	require.NoError(t, m.CheckMesh())
	return m
}

func TestLoad(t *testing.T) {
	want := map[string]float64{"arrow": 3150, "comb": 3600, "frame": 6800}
	require.Equal(t, []string{"arrow", "comb", "frame"}, Names())
	for _, name := range Names() {
		t.Run(name, func(t *testing.T) {
			list, err := Load(name)
			require.NoError(t, err)
			assert.InDelta(t, want[name], area(list), 1e-9)

			m := triangulate(t, list)
			assert.InDelta(t, want[name], meshArea(m), 1e-6)
		})
	}
}

func TestLoad_Missing(t *testing.T) {
	_, err := Load("nope")
	assert.Error(t, err)
}

func TestParse_Winding(t *testing.T) {
	list, err := Load("frame")
	require.NoError(t, err)
	require.Len(t, list, 3)
	assert.False(t, list[0].IsCW())
	assert.True(t, list[1].IsCW())
	assert.False(t, list[2].IsCW())
	// The Y axis is flipped.
	bounds := r2.RectFromPoints(list[0].Points...)
	assert.Equal(t, r1.Interval{Lo: -100, Hi: 0}, bounds.Y)
	assert.Equal(t, r1.Interval{Lo: 0, Hi: 100}, bounds.X)
}

func TestParse_Errors(t *testing.T) {
	tests := map[string]string{
		"no polygons": `<svg xmlns="http://www.w3.org/2000/svg"></svg>`,
		"bad point":   `<svg xmlns="http://www.w3.org/2000/svg"><polygon points="0,0 1,x 2,2"/></svg>`,
		"bad pair":    `<svg xmlns="http://www.w3.org/2000/svg"><polygon points="0,0 1 2,2"/></svg>`,
		"too small":   `<svg xmlns="http://www.w3.org/2000/svg"><polygon points="0,0 1,1"/></svg>`,
	}
	for name, doc := range tests {
		t.Run(name, func(t *testing.T) {
			_, err := Parse(strings.NewReader(doc))
			assert.Error(t, err)
		})
	}
}

func TestShapes(t *testing.T) {
	for name, shape := range Shapes {
		t.Run(name, func(t *testing.T) {
			list := shape()
			m := triangulate(t, list)
			assert.InDelta(t, area(list), meshArea(m), 1e-6)

			refined := triangulate(t, list, mesh.WithMinAngle(20), mesh.WithSteinerBudget(20000))
			assert.InDelta(t, area(list), meshArea(refined), 1e-6)
			s, err := refined.Statistics()
			require.NoError(t, err)
			assert.GreaterOrEqual(t, s.MinAngle, 20-1e-9)
		})
	}
}

func TestShapes_Algorithms(t *testing.T) {
	for name, shape := range Shapes {
		for _, alg := range []mesh.Algorithm{mesh.DivideAndConquer, mesh.Incremental, mesh.SweepLine} {
			t.Run(name+"/"+alg.String(), func(t *testing.T) {
				list := shape()
				m := triangulate(t, list, mesh.WithAlgorithm(alg))
				assert.NoError(t, m.CheckDelaunay())
				assert.InDelta(t, area(list), meshArea(m), 1e-6)
			})
		}
	}
}
