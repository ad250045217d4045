package mesh

import (
	"container/heap"
	"math"
	"math/rand"
	"testing"

	"github.com/golang/geo/r2"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTriangulate_NearlyCocircular(t *testing.T) {
	// 0.1 and 0.9 are not exact in binary, so the eight points are only
	// nearly cocircular in groups of four.
	in := Input{Points: pts(0, 0, 1, 0, 1, 1, 0, 1, 0.1, 0.1, 0.9, 0.9, 0.1, 0.9, 0.9, 0.1)}
	for _, alg := range algorithms {
		t.Run(alg.String(), func(t *testing.T) {
			m := build(t, in, WithAlgorithm(alg))
			assert.NoError(t, m.CheckDelaunay())
			assert.Equal(t, 10, m.NumberOfTriangles())
		})
	}
}

func TestTriangulate_Lattice(t *testing.T) {
	rnd := rand.New(rand.NewSource(3))
	for i := 0; i < 300; i++ {
		n := 4 + rnd.Intn(20)
		points := make([]Point, n)
		for j := range points {
			points[j] = Point{Point: r2.Point{X: float64(rnd.Intn(11)) * 0.1, Y: float64(rnd.Intn(11)) * 0.1}}
		}
		for _, alg := range algorithms {
			m, err := New(Input{Points: points}, WithAlgorithm(alg))
			require.NoError(t, err)
			err = m.Triangulate()
			if errors.Is(err, ErrCollinear) || errors.Is(err, ErrTooFewVertices) {
				continue
			}
			require.NoError(t, err, "input %d, %v", i, alg)
			require.NoError(t, m.CheckMesh(), "input %d, %v", i, alg)
			require.NoError(t, m.CheckDelaunay(), "input %d, %v", i, alg)
		}
	}
}

func TestTriangulate_Star(t *testing.T) {
	var in Input
	for i := 0; i < 10; i++ {
		r := 5.0
		if i%2 == 1 {
			r = 2
		}
		a := 2 * math.Pi * float64(i) / 10
		in.Points = append(in.Points, Point{Point: r2.Point{X: r * math.Cos(a), Y: r * math.Sin(a)}})
		in.Segments = append(in.Segments, InputSegment{P0: i, P1: (i + 1) % 10, Label: 1})
	}
	for _, alg := range algorithms {
		t.Run(alg.String(), func(t *testing.T) {
			m := build(t, in, WithAlgorithm(alg))
			assert.NoError(t, m.CheckDelaunay())
			assert.Equal(t, 8, m.NumberOfTriangles())
		})
	}
}

func TestTriangulate_DuplicateKeepsLowestID(t *testing.T) {
	// Vertices 1, 3 and 5 share a position, as do 2 and 6.
	in := Input{Points: pts(0, 0, 1, 0, 1, 1, 1, 0, 0, 1, 1, 0, 1, 1)}
	for _, alg := range algorithms {
		t.Run(alg.String(), func(t *testing.T) {
			m := build(t, in, WithAlgorithm(alg))
			for id, want := range map[int]bool{1: true, 2: true, 3: false, 5: false, 6: false} {
				assert.Equal(t, want, m.Vertex(id).Type != UndeadVertex, "vertex %d", id)
			}
			for _, tri := range m.Triangles() {
				for _, id := range tri.Vertices {
					assert.Contains(t, []int{0, 1, 2, 4}, id)
				}
			}
		})
	}
}

func TestEventHeap_Order(t *testing.T) {
	a := &Vertex{Point: r2.Point{X: 1, Y: 1}, ID: 4}
	b := &Vertex{Point: r2.Point{X: 1, Y: 1}, ID: 2}
	c := &Vertex{Point: r2.Point{X: 0, Y: 1}, ID: 9}
	d := &Vertex{Point: r2.Point{X: 5, Y: 0}, ID: 7}
	var h eventHeap
	for _, v := range []*Vertex{a, b, c, d} {
		heap.Push(&h, &sweepEvent{x: v.X, y: v.Y, vertex: v})
	}
	heap.Push(&h, &sweepEvent{x: -100, y: 1})

	var got []*Vertex
	for h.Len() > 0 {
		got = append(got, heap.Pop(&h).(*sweepEvent).vertex)
	}
	assert.Equal(t, []*Vertex{d, nil, c, b, a}, got)
}
