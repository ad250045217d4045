// Package geom provides the robust geometric predicates the mesher relies on.
//
// A wrong sign from an orientation or in-circle test is not a small numerical
// error: it permanently corrupts the mesh topology. Every predicate here first
// evaluates in floating point, compares the result against a static error
// bound, and only when the sign cannot be trusted re-evaluates the same
// determinant exactly with math/big rationals. Exact zeros are returned as
// zeros; deciding what a tie means is the caller's job.
package geom

import (
	"math"
	"math/big"

	"github.com/golang/geo/r2"
)

// Machine epsilon for float64 rounding (half an ulp of 1).
const epsilon = 1.1102230246251565e-16

// Static error bounds from Shewchuk, "Adaptive Precision Floating-Point
// Arithmetic and Fast Robust Geometric Predicates".
var (
	ccwErrBoundA = (3.0 + 16.0*epsilon) * epsilon
	iccErrBoundA = (10.0 + 96.0*epsilon) * epsilon
)

// Counters records how often each predicate ran, and how often the float
// filter failed and exact arithmetic was needed. They belong to one
// Predicates value, which in turn belongs to one mesh.
type Counters struct {
	Orient        int64
	InCircle      int64
	Circumcenter  int64
	ExactOrient   int64
	ExactInCircle int64
}

// Predicates evaluates geometric tests and keeps instance-scoped counters.
// The zero value is ready to use.
type Predicates struct {
	Counters Counters

	// NoExact disables the exact fallback. Only useful for benchmarking the
	// float path; the mesher never sets it.
	NoExact bool
}

// Orient2D returns a positive value if a, b, c occur in counterclockwise
// order, a negative value if clockwise, and zero if collinear. The magnitude
// approximates twice the signed area of the triangle.
func (p *Predicates) Orient2D(a, b, c r2.Point) float64 {
	p.Counters.Orient++

	detLeft := (a.X - c.X) * (b.Y - c.Y)
	detRight := (a.Y - c.Y) * (b.X - c.X)
	det := detLeft - detRight

	if p.NoExact {
		return det
	}

	var detSum float64
	if detLeft > 0 {
		if detRight <= 0 {
			return det
		}
		detSum = detLeft + detRight
	} else if detLeft < 0 {
		if detRight >= 0 {
			return det
		}
		detSum = -detLeft - detRight
	} else {
		return det
	}

	if det >= ccwErrBoundA*detSum || -det >= ccwErrBoundA*detSum {
		return det
	}

	p.Counters.ExactOrient++
	return exactOrient(a, b, c)
}

// InCircle returns a positive value if d lies inside the circle passing
// through a, b and c, a negative value if it lies outside, and zero if the
// four points are cocircular. a, b and c must be in counterclockwise order,
// or the sign of the result is reversed.
func (p *Predicates) InCircle(a, b, c, d r2.Point) float64 {
	p.Counters.InCircle++

	adx := a.X - d.X
	bdx := b.X - d.X
	cdx := c.X - d.X
	ady := a.Y - d.Y
	bdy := b.Y - d.Y
	cdy := c.Y - d.Y

	bdxcdy := bdx * cdy
	cdxbdy := cdx * bdy
	alift := adx*adx + ady*ady

	cdxady := cdx * ady
	adxcdy := adx * cdy
	blift := bdx*bdx + bdy*bdy

	adxbdy := adx * bdy
	bdxady := bdx * ady
	clift := cdx*cdx + cdy*cdy

	det := alift*(bdxcdy-cdxbdy) + blift*(cdxady-adxcdy) + clift*(adxbdy-bdxady)

	if p.NoExact {
		return det
	}

	permanent := (math.Abs(bdxcdy)+math.Abs(cdxbdy))*alift +
		(math.Abs(cdxady)+math.Abs(adxcdy))*blift +
		(math.Abs(adxbdy)+math.Abs(bdxady))*clift
	errBound := iccErrBoundA * permanent
	if det > errBound || -det > errBound {
		return det
	}

	p.Counters.ExactInCircle++
	return exactInCircle(a, b, c, d)
}

// Circumcenter finds the circumcenter of the triangle org, dest, apex. When
// offConstant is positive the result is an off-center: a point on the
// bisector of the shortest edge, closer to that edge than the circumcenter,
// which produces fewer slivers during refinement.
//
// Xi and Eta are the coordinates of the result relative to the triangle,
// expressed in the basis (dest-org, apex-org). They let callers test whether
// the point fell into the triangle without another orientation test.
func (p *Predicates) Circumcenter(org, dest, apex r2.Point, offConstant float64) (center r2.Point, xi, eta float64) {
	p.Counters.Circumcenter++

	xdo := dest.X - org.X
	ydo := dest.Y - org.Y
	xao := apex.X - org.X
	yao := apex.Y - org.Y
	dodist := xdo*xdo + ydo*ydo
	aodist := xao*xao + yao*yao
	dadist := (dest.X-apex.X)*(dest.X-apex.X) + (dest.Y-apex.Y)*(dest.Y-apex.Y)

	var denominator float64
	if p.NoExact {
		denominator = 0.5 / (xdo*yao - xao*ydo)
	} else {
		// Use the robust area so that nearly degenerate triangles still get a
		// finite, correctly signed center.
		denominator = 0.5 / p.Orient2D(dest, apex, org)
	}

	dx := (yao*dodist - ydo*aodist) * denominator
	dy := (xdo*aodist - xao*dodist) * denominator

	// Off-centers sit on the bisector of the shortest edge.
	if dodist < aodist && dodist < dadist {
		if offConstant > 0 {
			dxoff := 0.5*xdo - offConstant*ydo
			dyoff := 0.5*ydo + offConstant*xdo
			if dxoff*dxoff+dyoff*dyoff < dx*dx+dy*dy {
				dx, dy = dxoff, dyoff
			}
		}
	} else if aodist < dadist {
		if offConstant > 0 {
			dxoff := 0.5*xao + offConstant*yao
			dyoff := 0.5*yao - offConstant*xao
			if dxoff*dxoff+dyoff*dyoff < dx*dx+dy*dy {
				dx, dy = dxoff, dyoff
			}
		}
	} else {
		if offConstant > 0 {
			dxoff := 0.5*(apex.X-dest.X) - offConstant*(apex.Y-dest.Y)
			dyoff := 0.5*(apex.Y-dest.Y) + offConstant*(apex.X-dest.X)
			if dxoff*dxoff+dyoff*dyoff < (dx-xdo)*(dx-xdo)+(dy-ydo)*(dy-ydo) {
				dx = xdo + dxoff
				dy = ydo + dyoff
			}
		}
	}

	center = r2.Point{X: org.X + dx, Y: org.Y + dy}
	xi = (yao*dx - xao*dy) * (2.0 * denominator)
	eta = (xdo*dy - ydo*dx) * (2.0 * denominator)
	return center, xi, eta
}

func exactOrient(a, b, c r2.Point) float64 {
	acx := ratSub(a.X, c.X)
	bcy := ratSub(b.Y, c.Y)
	acy := ratSub(a.Y, c.Y)
	bcx := ratSub(b.X, c.X)

	left := new(big.Rat).Mul(acx, bcy)
	right := new(big.Rat).Mul(acy, bcx)
	return ratToFloat(left.Sub(left, right))
}

func exactInCircle(a, b, c, d r2.Point) float64 {
	adx, ady := ratSub(a.X, d.X), ratSub(a.Y, d.Y)
	bdx, bdy := ratSub(b.X, d.X), ratSub(b.Y, d.Y)
	cdx, cdy := ratSub(c.X, d.X), ratSub(c.Y, d.Y)

	alift := lift(adx, ady)
	blift := lift(bdx, bdy)
	clift := lift(cdx, cdy)

	det := new(big.Rat).Mul(alift, cross(bdx, bdy, cdx, cdy))
	det.Add(det, new(big.Rat).Mul(blift, cross(cdx, cdy, adx, ady)))
	det.Add(det, new(big.Rat).Mul(clift, cross(adx, ady, bdx, bdy)))
	return ratToFloat(det)
}

// cross returns ux*vy - vx*uy.
func cross(ux, uy, vx, vy *big.Rat) *big.Rat {
	l := new(big.Rat).Mul(ux, vy)
	r := new(big.Rat).Mul(vx, uy)
	return l.Sub(l, r)
}

func lift(x, y *big.Rat) *big.Rat {
	xx := new(big.Rat).Mul(x, x)
	yy := new(big.Rat).Mul(y, y)
	return xx.Add(xx, yy)
}

func ratSub(a, b float64) *big.Rat {
	ra := new(big.Rat).SetFloat64(a)
	rb := new(big.Rat).SetFloat64(b)
	return ra.Sub(ra, rb)
}

// ratToFloat converts an exact determinant to float64 without losing its
// sign to underflow.
func ratToFloat(r *big.Rat) float64 {
	f, _ := r.Float64()
	if f == 0 && r.Sign() != 0 {
		return float64(r.Sign()) * math.SmallestNonzeroFloat64
	}
	return f
}
