package mesh

import (
	"math"
	"testing"

	"github.com/golang/geo/r2"
	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var equilateral = []r2.Point{{X: 0, Y: 0}, {X: 1, Y: 0}, {X: 0.5, Y: math.Sqrt(3) / 2}}

func TestAngles(t *testing.T) {
	lo, hi := angles(equilateral[0], equilateral[1], equilateral[2])
	assert.InDelta(t, math.Pi/3, lo, 1e-12)
	assert.InDelta(t, math.Pi/3, hi, 1e-12)

	lo, hi = angles(r2.Point{}, r2.Point{X: 1}, r2.Point{Y: 1})
	assert.InDelta(t, math.Pi/4, lo, 1e-12)
	assert.InDelta(t, math.Pi/2, hi, 1e-12)
}

func TestRotateAbout(t *testing.T) {
	p := rotateAbout(r2.Point{X: 1, Y: 1}, r2.Point{X: 2, Y: 1}, math.Pi/2)
	assert.InDelta(t, 1, p.X, 1e-12)
	assert.InDelta(t, 2, p.Y, 1e-12)
}

func TestClipHalfPlane(t *testing.T) {
	square := []r2.Point{{X: 0, Y: 0}, {X: 2, Y: 0}, {X: 2, Y: 2}, {X: 0, Y: 2}}

	// Keep the left of the upward line x = 1: the left half of the square.
	half := clipHalfPlane(square, r2.Point{X: 1, Y: 0}, r2.Point{X: 1, Y: 1})
	require.Len(t, half, 4)
	rect := r2.RectFromPoints(half...)
	assert.InDelta(t, 0, rect.X.Lo, 1e-12)
	assert.InDelta(t, 1, rect.X.Hi, 1e-12)
	assert.InDelta(t, 2, rect.Size().X*rect.Size().Y, 1e-12)

	// The left of a downward line at x = -1 is the side toward +x, which
	// holds the whole square.
	assert.Len(t, clipHalfPlane(square, r2.Point{X: -1, Y: 1}, r2.Point{X: -1, Y: 0}), 4)
	// Nothing is left of an upward line at x = -1.
	assert.Empty(t, clipHalfPlane(square, r2.Point{X: -1, Y: 0}, r2.Point{X: -1, Y: 1}))
	assert.Nil(t, clipHalfPlane(nil, r2.Point{}, r2.Point{X: 1}))
}

func TestEdgeCoords(t *testing.T) {
	a, b, c := r2.Point{X: 1, Y: 1}, r2.Point{X: 4, Y: 2}, r2.Point{X: 0, Y: 3}
	p := r2.Point{X: 1.7, Y: 2.1}
	xi, eta := edgeCoords(a, b, c, p)
	q := a.Add(b.Sub(a).Mul(xi)).Add(c.Sub(a).Mul(eta))
	assert.InDelta(t, p.X, q.X, 1e-12)
	assert.InDelta(t, p.Y, q.Y, 1e-12)
}

func TestConvexHelpers(t *testing.T) {
	square := []r2.Point{{X: 0, Y: 0}, {X: 1, Y: 0}, {X: 1, Y: 1}, {X: 0, Y: 1}}
	assert.True(t, pointInConvex(square, r2.Point{X: 0.5, Y: 0.5}))
	assert.True(t, pointInConvex(square, r2.Point{X: 1, Y: 0.5}))
	assert.False(t, pointInConvex(square, r2.Point{X: 1.5, Y: 0.5}))
	assert.False(t, insideRing(square, r2.Point{X: 1, Y: 0.5}))

	q := nearestInConvex(square, r2.Point{X: 3, Y: 0.25})
	assert.Equal(t, r2.Point{X: 1, Y: 0.25}, q)
	assert.Equal(t, r2.Point{X: 0.5, Y: 0.5}, centroid(square))
}

func TestAngleRegion(t *testing.T) {
	m := &Mesh{opts: Options{MaxAngle: 120}}
	region := m.angleRegion(equilateral)
	require.NotEmpty(t, region)
	assert.True(t, pointInConvex(region, centroid(equilateral)))
	assert.False(t, pointInConvex(region, r2.Point{X: 0.5, Y: -0.3}))

	// Around a triangle the corner angles sum to 60 degrees, so no point
	// keeps both above 40.
	m.opts.MinAngle = 40
	assert.Empty(t, m.angleRegion(equilateral))
}

func TestNewLocation_ReadOnly(t *testing.T) {
	in := closedSquare(2)
	in.Points = append(in.Points, randomPoints(30, 4)...)
	for i := 4; i < len(in.Points); i++ {
		in.Points[i].Point = in.Points[i].Mul(1.8).Add(r2.Point{X: 0.1, Y: 0.1})
	}
	m := build(t, in, WithMaxAngle(110), WithMinAngle(20), WithSteinerBudget(0))
	before := m.Triangles()

	for _, tri := range m.liveTriangles() {
		prop := m.newLocation(tri)
		assert.False(t, math.IsNaN(prop.Point.X) || math.IsNaN(prop.Point.Y))
		assert.Nil(t, prop.Relocate, "input vertices never move")
	}
	if diff := cmp.Diff(before, m.Triangles()); diff != "" {
		t.Errorf("newLocation changed the mesh (-before +after):\n%s", diff)
	}
}

func TestRelocation(t *testing.T) {
	var in Input
	for k := 0; k < 6; k++ {
		a := float64(k) * math.Pi / 3
		in.Points = append(in.Points, Point{Point: r2.Point{X: 2 * math.Cos(a), Y: 2 * math.Sin(a)}})
	}
	m := build(t, in)
	v := m.makeVertex(r2.Point{X: 0.3, Y: 0.2}, FreeVertex)
	tri, result := m.InsertVertex(v, Otri{}, Osub{}, false, false)
	require.Equal(t, Successful, result)

	link, ok := m.vertexLink(tri)
	require.True(t, ok)
	assert.Len(t, link, 6)

	m.quality.relocated = map[*Vertex]bool{}
	prop, ok := m.relocation(tri)
	require.True(t, ok)
	assert.Same(t, v, prop.Relocate)
	assert.InDelta(t, 0, prop.Point.X, 1e-12)
	assert.InDelta(t, 0, prop.Point.Y, 1e-12)
	assert.Nil(t, prop.Attributes)

	m.quality.relocated[v] = true
	_, ok = m.relocation(tri)
	assert.False(t, ok)

	// Hull vertices have no closed link.
	for _, e := range m.liveTriangles() {
		for e.orient = 0; e.orient < 3; e.orient++ {
			if m.Sym(e).IsDummy() {
				_, ok = m.vertexLink(e)
				assert.False(t, ok)
			}
		}
	}
}

func TestRelocate_Refused(t *testing.T) {
	var in Input
	for k := 0; k < 6; k++ {
		a := float64(k) * math.Pi / 3
		in.Points = append(in.Points, Point{Point: r2.Point{X: 2 * math.Cos(a), Y: 2 * math.Sin(a)}})
	}
	m := build(t, in)
	v := m.makeVertex(r2.Point{X: 0.3, Y: 0.2}, FreeVertex)
	_, result := m.InsertVertex(v, Otri{}, Osub{}, false, false)
	require.Equal(t, Successful, result)
	m.quality.relocated = map[*Vertex]bool{}

	// Moving onto a hull corner is refused as a duplicate.
	m.relocate(Proposal{Relocate: v, Point: r2.Point{X: 2, Y: 0}})
	assert.Equal(t, 0, m.Relocations())
	assert.Equal(t, FreeVertex, v.Type)
	assert.Equal(t, r2.Point{X: 0.3, Y: 0.2}, v.Point)
	assert.True(t, m.quality.relocated[v])
	assert.Equal(t, 7, m.NumberOfVertices())
	assert.Equal(t, 6, m.NumberOfTriangles())
	require.NoError(t, m.CheckMesh())
	assert.NoError(t, m.CheckDelaunay())

	// The replacement that never made it in keeps its ID.
	discarded := m.Vertex(v.ID + 1)
	require.NotNil(t, discarded)
	assert.Equal(t, DeadVertex, discarded.Type)

	tri, ok := m.vertexTriangle(v)
	require.True(t, ok)
	assert.Same(t, v, m.Org(tri))

	// An accepted move counts.
	m.quality.relocated = map[*Vertex]bool{}
	m.relocate(Proposal{Relocate: v, Point: r2.Point{X: 0, Y: 0}})
	assert.Equal(t, 1, m.Relocations())
	assert.Equal(t, DeadVertex, v.Type)
	assert.Equal(t, 7, m.NumberOfVertices())
	require.NoError(t, m.CheckMesh())
}

func TestMeanAttrs(t *testing.T) {
	vs := []*Vertex{{Attributes: []float64{1, 4}}, {Attributes: []float64{3, 0}}}
	assert.Equal(t, []float64{2, 2}, meanAttrs(vs))
	vs = append(vs, &Vertex{})
	assert.Nil(t, meanAttrs(vs))
}
