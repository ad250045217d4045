package trimesh_test

import (
	"testing"

	"github.com/golang/geo/r2"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/osuushi/trimesh"
	"github.com/osuushi/trimesh/internal/fixture"
	"github.com/osuushi/trimesh/mesh"
)

// Smoke tests. The internals are already tested.
func TestTriangulatePolygons(t *testing.T) {
	square := []r2.Point{{X: 1, Y: -1}, {X: 1, Y: 1}, {X: -1, Y: 1}, {X: -1, Y: -1}}
	triangles, err := trimesh.TriangulatePolygons([][]r2.Point{square})
	assert.NoError(t, err)
	assert.Len(t, triangles, 2)
}

func TestTriangulatePolygons_Hole(t *testing.T) {
	list := fixture.SquareWithHole()
	polygons := make([][]r2.Point, len(list))
	for i, poly := range list {
		polygons[i] = poly.Points
	}
	triangles, err := trimesh.TriangulatePolygons(polygons)
	require.NoError(t, err)
	assert.Len(t, triangles, 8)
	for _, tri := range triangles {
		c := tri.Points[0].Add(tri.Points[1]).Add(tri.Points[2]).Mul(1.0 / 3)
		assert.False(t, r2.RectFromPoints(r2.Point{X: -2, Y: -2}, r2.Point{X: 2, Y: 2}).InteriorContainsPoint(c))
	}
}

func TestTriangulatePolygons_Error(t *testing.T) {
	_, err := trimesh.TriangulatePolygons([][]r2.Point{{{X: 0, Y: 0}, {X: 1, Y: 1}, {X: 2, Y: 2}}})
	assert.True(t, errors.Is(err, mesh.ErrCollinear), "got %v", err)
}

func TestTriangulate(t *testing.T) {
	in := trimesh.Input{Points: []trimesh.Point{
		{Point: r2.Point{X: 0, Y: 0}}, {Point: r2.Point{X: 1, Y: 0}}, {Point: r2.Point{X: 0, Y: 1}},
	}}
	m, err := trimesh.Triangulate(in, trimesh.WithAlgorithm(trimesh.SweepLine), trimesh.WithMaxArea(0.05))
	require.NoError(t, err)
	assert.Greater(t, m.NumberOfTriangles(), 10)
	assert.NoError(t, m.CheckMesh())

	_, err = trimesh.Triangulate(in, trimesh.WithMinAngle(90))
	assert.Error(t, err)
}
