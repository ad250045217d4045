package mesh

import (
	"math"
	"testing"

	"github.com/golang/geo/r2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func closedSquare(size float64) Input {
	return Input{
		Points: pts(0, 0, size, 0, size, size, 0, size),
		Segments: []InputSegment{
			{P0: 0, P1: 1, Label: 1}, {P0: 1, P1: 2, Label: 1},
			{P0: 2, P1: 3, Label: 1}, {P0: 3, P1: 0, Label: 1},
		},
	}
}

func TestRefine_NoBounds(t *testing.T) {
	for _, in := range []Input{closedSquare(1), annulus(), {Points: randomPoints(80, 2)}} {
		m := build(t, in, WithQuality())
		assert.Equal(t, 0, m.Steiner())
		assert.Equal(t, 0, m.Relocations())
	}
}

func TestRefine_MinAngle(t *testing.T) {
	for _, alg := range algorithms {
		t.Run(alg.String(), func(t *testing.T) {
			m := build(t, annulus(), WithAlgorithm(alg), WithMinAngle(20), WithSteinerBudget(5000))
			assert.NoError(t, m.CheckDelaunay())
			require.Less(t, m.Steiner(), 5000)
			assert.Greater(t, m.Steiner(), 0)

			s, err := m.Statistics()
			require.NoError(t, err)
			assert.GreaterOrEqual(t, s.MinAngle, 20-1e-9)

			hole := r2.RectFromPoints(r2.Point{X: 1, Y: 1}, r2.Point{X: 2, Y: 2})
			for _, tri := range m.Triangles() {
				assert.False(t, hole.InteriorContainsPoint(centroidOf(m, tri)))
			}
		})
	}
}

func TestRefine_MinAngleWithoutOffCenters(t *testing.T) {
	m := build(t, closedSquare(1), WithMinAngle(25), WithOffCenter(false), WithSteinerBudget(5000))
	s, err := m.Statistics()
	require.NoError(t, err)
	assert.GreaterOrEqual(t, s.MinAngle, 25-1e-9)
}

func TestRefine_MaxArea(t *testing.T) {
	m := build(t, closedSquare(4), WithMaxArea(0.1))
	s, err := m.Statistics()
	require.NoError(t, err)
	assert.LessOrEqual(t, s.MaxArea, 0.1)
	assert.GreaterOrEqual(t, float64(m.NumberOfTriangles()), 16/0.1)
	assert.NoError(t, m.CheckDelaunay())

	// Vertices on the boundary carry its label.
	for _, v := range m.Vertices() {
		if v.Type == SegmentVertex {
			assert.Equal(t, 1, v.Label)
		}
	}
}

func TestRefine_SegmentsStayCovered(t *testing.T) {
	in := closedSquare(2)
	// Label each side on its own so coverage counts it once.
	for i := range in.Segments {
		in.Segments[i].Label = i + 1
	}
	in.Points = append(in.Points, pts(0.5, 0.5, 1.5, 1.5)...)
	in.Segments = append(in.Segments, InputSegment{P0: 4, P1: 5, Label: 6})
	m := build(t, in, WithMinAngle(25), WithMaxArea(0.05), WithSteinerBudget(5000))

	a, b := r2.Point{X: 0.5, Y: 0.5}, r2.Point{X: 1.5, Y: 1.5}
	assert.InDelta(t, dist(a, b), coverage(t, m, a, b, 6), 1e-9)
	corners := []r2.Point{{X: 0, Y: 0}, {X: 2, Y: 0}, {X: 2, Y: 2}, {X: 0, Y: 2}}
	for i, c := range corners {
		assert.InDelta(t, 2, coverage(t, m, c, corners[(i+1)%4], i+1), 1e-9, "side %d", i+1)
	}
}

func TestRefine_BudgetZero(t *testing.T) {
	// A triangle with a one degree angle.
	in := Input{
		Points: pts(0, 0, 1, 0, 1, math.Tan(math.Pi/180)),
		Segments: []InputSegment{
			{P0: 0, P1: 1}, {P0: 1, P1: 2}, {P0: 2, P1: 0},
		},
	}
	m := build(t, in, WithMinAngle(20), WithSteinerBudget(0))
	assert.Equal(t, 0, m.Steiner())
	assert.Equal(t, 1, m.NumberOfTriangles())

	m = build(t, in, WithMinAngle(20), WithSteinerBudget(25))
	assert.LessOrEqual(t, m.Steiner(), 25)
	assert.Greater(t, m.NumberOfTriangles(), 1)
}

func TestRefine_MaxAngle(t *testing.T) {
	in := closedSquare(3)
	in.Points = append(in.Points, randomPoints(40, 9)...)
	for i := 4; i < len(in.Points); i++ {
		in.Points[i].Point = in.Points[i].Mul(2.6).Add(r2.Point{X: 0.2, Y: 0.2})
	}
	m := build(t, in, WithMaxAngle(120), WithSteinerBudget(3000))
	assert.NoError(t, m.CheckDelaunay())
	assert.LessOrEqual(t, m.Steiner(), 3000)

	s, err := m.Statistics()
	require.NoError(t, err)
	if m.Steiner() < 3000 {
		assert.LessOrEqual(t, s.MaxAngle, 120+1e-9)
	}
}

func TestRefine_Attributes(t *testing.T) {
	in := closedSquare(1)
	for i := range in.Points {
		p := in.Points[i]
		in.Points[i].Attributes = []float64{p.X + 2*p.Y}
	}
	m := build(t, in, WithMaxArea(0.02))
	require.Greater(t, m.Steiner(), 0)
	// The attribute is linear, so interpolation reproduces it exactly.
	for _, v := range m.Vertices() {
		require.Len(t, v.Attributes, 1)
		assert.InDelta(t, v.X+2*v.Y, v.Attributes[0], 1e-9)
	}
}

func TestRefine_Deterministic(t *testing.T) {
	in := annulus()
	a := build(t, in, WithMinAngle(25), WithSteinerBudget(2000))
	b := build(t, in, WithMinAngle(25), WithSteinerBudget(2000))
	assert.Equal(t, a.Steiner(), b.Steiner())
	assert.Equal(t, triangleSet(a.Triangles()), triangleSet(b.Triangles()))
}
