package geom

import (
	"math"
	"testing"

	"github.com/golang/geo/r2"
	"github.com/stretchr/testify/assert"
)

func TestOrient2D(t *testing.T) {
	var p Predicates
	tests := []struct {
		name    string
		a, b, c r2.Point
		want    int
	}{
		{"ccw", r2.Point{X: 0, Y: 0}, r2.Point{X: 1, Y: 0}, r2.Point{X: 0, Y: 1}, 1},
		{"cw", r2.Point{X: 0, Y: 0}, r2.Point{X: 0, Y: 1}, r2.Point{X: 1, Y: 0}, -1},
		{"collinear", r2.Point{X: 0, Y: 0}, r2.Point{X: 1, Y: 1}, r2.Point{X: 2, Y: 2}, 0},
		{"collinear far out", r2.Point{X: 1e10, Y: 1e10}, r2.Point{X: 2e10, Y: 2e10}, r2.Point{X: 3e10, Y: 3e10}, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, sign(p.Orient2D(tt.a, tt.b, tt.c)))
		})
	}
	assert.Equal(t, int64(len(tests)), p.Counters.Orient)
}

func TestOrient2D_Area(t *testing.T) {
	var p Predicates
	got := p.Orient2D(r2.Point{X: 0, Y: 0}, r2.Point{X: 4, Y: 0}, r2.Point{X: 0, Y: 3})
	assert.InDelta(t, 12, got, 1e-12)
}

// Points nearly on the line y = x, spaced by single ulps, are the classic
// case where the naive determinant returns inconsistent signs.
func TestOrient2D_NearDegenerateIsConsistent(t *testing.T) {
	var p Predicates
	a := r2.Point{X: 12, Y: 12}
	b := r2.Point{X: 24, Y: 24}
	base := 0.5
	for i := 0; i < 64; i++ {
		for j := 0; j < 64; j++ {
			c := r2.Point{
				X: base + float64(i)*math.Nextafter(base, 1) - float64(i)*base,
				Y: base + float64(j)*math.Nextafter(base, 1) - float64(j)*base,
			}
			s1 := sign(p.Orient2D(a, b, c))
			s2 := sign(p.Orient2D(b, c, a))
			s3 := sign(p.Orient2D(c, a, b))
			assert.Equal(t, s1, s2)
			assert.Equal(t, s1, s3)
			assert.Equal(t, -s1, sign(p.Orient2D(b, a, c)))
		}
	}
	assert.Positive(t, p.Counters.ExactOrient)
}

func TestOrient2D_ExactMatchesRational(t *testing.T) {
	var p Predicates
	a := r2.Point{X: 0.1, Y: 0.1}
	b := r2.Point{X: 0.3, Y: 0.3}
	c := r2.Point{X: 0.2, Y: 0.2}
	assert.Equal(t, sign(exactOrient(a, b, c)), sign(p.Orient2D(a, b, c)))
}

func TestInCircle(t *testing.T) {
	var p Predicates
	a := r2.Point{X: 0, Y: 0}
	b := r2.Point{X: 1, Y: 0}
	c := r2.Point{X: 0, Y: 1}

	assert.Equal(t, 1, sign(p.InCircle(a, b, c, r2.Point{X: 0.5, Y: 0.5})))
	assert.Equal(t, -1, sign(p.InCircle(a, b, c, r2.Point{X: 2, Y: 2})))
	// (1,1) is on the circumcircle of the right triangle.
	assert.Equal(t, 0, sign(p.InCircle(a, b, c, r2.Point{X: 1, Y: 1})))
	// Reversing the orientation reverses the sign.
	assert.Equal(t, -1, sign(p.InCircle(a, c, b, r2.Point{X: 0.5, Y: 0.5})))
}

func TestInCircle_CocircularLargeOffset(t *testing.T) {
	var p Predicates
	off := 1e8
	a := r2.Point{X: off, Y: off}
	b := r2.Point{X: off + 1, Y: off}
	c := r2.Point{X: off + 1, Y: off + 1}
	d := r2.Point{X: off, Y: off + 1}
	assert.Equal(t, 0, sign(p.InCircle(a, b, c, d)))
}

func TestCircumcenter(t *testing.T) {
	var p Predicates
	org := r2.Point{X: 0, Y: 0}
	dest := r2.Point{X: 2, Y: 0}
	apex := r2.Point{X: 0, Y: 2}

	center, xi, eta := p.Circumcenter(org, dest, apex, 0)
	assert.InDelta(t, 1, center.X, 1e-12)
	assert.InDelta(t, 1, center.Y, 1e-12)
	assert.InDelta(t, 0.5, xi, 1e-12)
	assert.InDelta(t, 0.5, eta, 1e-12)
}

func TestCircumcenter_OffCenterIsCloser(t *testing.T) {
	var p Predicates
	// A tall triangle whose circumcenter lies far from its short edge.
	org := r2.Point{X: 0, Y: 0}
	dest := r2.Point{X: 1, Y: 0}
	apex := r2.Point{X: 0.5, Y: 3}

	cc, _, _ := p.Circumcenter(org, dest, apex, 0)
	off, _, _ := p.Circumcenter(org, dest, apex, 0.2)

	mid := r2.Point{X: 0.5, Y: 0}
	assert.Less(t, off.Sub(mid).Norm(), cc.Sub(mid).Norm())
	assert.InDelta(t, 0.5, off.X, 1e-12)
	assert.InDelta(t, 0.2, off.Y, 1e-12)
}

func sign(v float64) int {
	switch {
	case v > 0:
		return 1
	case v < 0:
		return -1
	}
	return 0
}
