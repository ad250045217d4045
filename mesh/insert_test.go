package mesh

import (
	"math"
	"testing"

	"github.com/golang/geo/r2"
	"github.com/google/go-cmp/cmp"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLocate(t *testing.T) {
	m := build(t, unitSquare())

	corner, where := m.Locate(r2.Point{X: 1, Y: 1}, Otri{})
	assert.Equal(t, OnVertex, where)
	assert.Equal(t, r2.Point{X: 1, Y: 1}, m.Org(corner).Point)

	_, where = m.Locate(r2.Point{X: 0.25, Y: 0.5}, Otri{})
	assert.Contains(t, []LocateResult{InTriangle, OnEdge}, where)

	edge, where := m.Locate(r2.Point{X: 0.5, Y: 0}, Otri{})
	require.Equal(t, OnEdge, where)
	assert.Zero(t, m.ccwPoint(m.Org(edge), m.Dest(edge), r2.Point{X: 0.5, Y: 0}))

	_, where = m.Locate(r2.Point{X: 3, Y: 2}, Otri{})
	assert.Equal(t, Outside, where)
}

func TestInsertVertex(t *testing.T) {
	m := build(t, unitSquare())
	v := m.makeVertex(r2.Point{X: 0.3, Y: 0.6}, FreeVertex)

	tri, result := m.InsertVertex(v, Otri{}, Osub{}, false, false)
	require.Equal(t, Successful, result)
	assert.Same(t, v, m.Org(tri))
	assert.Equal(t, 4, m.NumberOfTriangles())
	assert.Equal(t, 5, m.NumberOfVertices())
	assert.NoError(t, m.CheckMesh())
	assert.NoError(t, m.CheckDelaunay())
}

func TestInsertVertex_Duplicate(t *testing.T) {
	m := build(t, unitSquare())
	before := m.Triangles()

	v := m.makeVertex(r2.Point{X: 1, Y: 0}, FreeVertex)
	_, result := m.InsertVertex(v, Otri{}, Osub{}, false, false)
	assert.Equal(t, Duplicate, result)
	m.discardVertex(v)

	// The discarded slot is kept: the next vertex gets a fresh ID.
	assert.Same(t, v, m.Vertex(v.ID))
	assert.Equal(t, DeadVertex, v.Type)
	w := m.makeVertex(r2.Point{X: 0.5, Y: 0.25}, FreeVertex)
	assert.Equal(t, v.ID+1, w.ID)
	m.discardVertex(w)
	assert.Equal(t, 4, m.NumberOfVertices())

	if diff := cmp.Diff(before, m.Triangles()); diff != "" {
		t.Errorf("mesh changed (-before +after):\n%s", diff)
	}
}

func TestInsertVertex_OnSegment(t *testing.T) {
	m := build(t, unitSquare())
	// The hull is bound with subsegments; a vertex on one is refused.
	v := m.makeVertex(r2.Point{X: 0.5, Y: 0}, FreeVertex)
	_, result := m.InsertVertex(v, Otri{}, Osub{}, false, false)
	assert.Equal(t, Violating, result)
	assert.Equal(t, 2, m.NumberOfTriangles())
}

func TestInsertVertex_Outside(t *testing.T) {
	m := build(t, unitSquare())
	v := m.makeVertex(r2.Point{X: 2, Y: 0.5}, FreeVertex)
	_, result := m.InsertVertex(v, Otri{}, Osub{}, false, false)
	assert.Equal(t, Violating, result)
	assert.Equal(t, 2, m.NumberOfTriangles())
}

func TestInsertVertex_Many(t *testing.T) {
	m := build(t, Input{Points: pts(0, 0, 10, 0, 10, 10, 0, 10)})
	for _, p := range randomPoints(200, 5) {
		v := m.makeVertex(r2.Point{X: 0.5 + 9*p.X, Y: 0.5 + 9*p.Y}, FreeVertex)
		_, result := m.InsertVertex(v, Otri{}, Osub{}, false, false)
		require.Equal(t, Successful, result)
	}
	require.NoError(t, m.CheckMesh())
	assert.NoError(t, m.CheckDelaunay())
	assert.Equal(t, 2*204-2-4, m.NumberOfTriangles())
}

func TestFlipUnflip(t *testing.T) {
	m := build(t, unitSquare())
	before := m.Triangles()

	var diag Otri
	for _, tri := range m.liveTriangles() {
		for tri.orient = 0; tri.orient < 3; tri.orient++ {
			if !m.Sym(tri).IsDummy() {
				diag = tri
			}
		}
	}
	require.False(t, diag.IsDummy())
	org, dest := m.Org(diag), m.Dest(diag)

	m.flip(diag)
	require.NoError(t, m.CheckMesh())
	flipped := []*Vertex{m.Org(diag), m.Dest(diag)}
	assert.NotContains(t, flipped, org)
	assert.NotContains(t, flipped, dest)

	m.unflip(diag)
	require.NoError(t, m.CheckMesh())
	if diff := cmp.Diff(before, m.Triangles()); diff != "" {
		t.Errorf("unflip did not restore the mesh (-before +after):\n%s", diff)
	}
}

func TestUndoVertex(t *testing.T) {
	points := pts(0, 0, 4, 0, 4, 3, 0, 3, 1, 1, 3, 2, 2, 0.5)
	for _, p := range []r2.Point{{X: 2, Y: 1.5}, {X: 2, Y: 3}} {
		m := build(t, Input{Points: points})
		before := triangleSet(m.Triangles())

		m.checkQuality = true
		v := m.makeVertex(p, FreeVertex)
		_, result := m.InsertVertex(v, Otri{}, Osub{}, false, false)
		if p.Y == 3 {
			// On the hull subsegment.
			assert.Equal(t, Violating, result)
			continue
		}
		require.Equal(t, Successful, result)
		m.undoVertex()
		m.checkQuality = false
		m.discardVertex(v)

		m.hullSize = m.countHull()
		require.NoError(t, m.CheckMesh())
		assert.Equal(t, before, triangleSet(m.Triangles()))
	}
}

func TestDeleteVertex(t *testing.T) {
	m := build(t, Input{Points: pts(0, 0, 2, 0, 2, 2, 0, 2, 1, 1.1)})
	require.Equal(t, 4, m.NumberOfTriangles())

	require.NoError(t, m.DeleteVertex(m.Vertex(4)))
	assert.Equal(t, DeadVertex, m.Vertex(4).Type)
	assert.Equal(t, 2, m.NumberOfTriangles())
	assert.Equal(t, 4, m.NumberOfVertices())
	require.NoError(t, m.CheckMesh())
	assert.NoError(t, m.CheckDelaunay())
}

func TestDeleteVertex_HighDegree(t *testing.T) {
	// A vertex surrounded by a ring of eight.
	var in Input
	for k := 0; k < 8; k++ {
		a := float64(k)*math.Pi/4 + 0.1
		r := 3 + 0.1*float64(k%3)
		in.Points = append(in.Points, Point{Point: r2.Point{X: r * math.Cos(a), Y: r * math.Sin(a)}})
	}
	in.Points = append(in.Points, pts(0.1, -0.1)...)
	m := build(t, in)
	require.Equal(t, 8, m.NumberOfTriangles())
	require.NoError(t, m.DeleteVertex(m.Vertex(8)))
	require.NoError(t, m.CheckMesh())
	assert.NoError(t, m.CheckDelaunay())
	assert.Equal(t, 2*8-2-8, m.NumberOfTriangles())
}

func TestDeleteVertex_Refused(t *testing.T) {
	m := build(t, Input{Points: pts(0, 0, 2, 0, 2, 2, 0, 2, 1, 1.1)})
	err := m.DeleteVertex(m.Vertex(0))
	assert.True(t, errors.Is(err, ErrTopology), "got %v", err)
	assert.Equal(t, 4, m.NumberOfTriangles())
}
