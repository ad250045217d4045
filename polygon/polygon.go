// Package polygon converts sets of simple polygons into mesh input.
//
// Solid polygons wind counterclockwise and holes wind clockwise. Holes may
// contain further solids, to any depth. Polygons must not cross each other;
// none of this is validated.
package polygon

import (
	"math"

	"github.com/golang/geo/r2"

	"github.com/osuushi/trimesh/mesh"
)

type Polygon struct {
	Points []r2.Point
}

type List []Polygon

// Often we want to treat an array as a circular buffer. This gives the modular
// index given length n, but unlike the raw modulo operator, it only gives
// positive values.
func CircularIndex(i, n int) int {
	return (i%n + n) % n
}

func (poly Polygon) Reverse() Polygon {
	out := Polygon{Points: make([]r2.Point, len(poly.Points))}
	for i, p := range poly.Points {
		out.Points[len(poly.Points)-1-i] = p
	}
	return out
}

// SignedArea is positive for counterclockwise polygons.
func (poly Polygon) SignedArea() float64 {
	area := 0.0
	for i, p := range poly.Points {
		q := poly.Points[CircularIndex(i+1, len(poly.Points))]
		area += p.Cross(q)
	}
	return area / 2
}

func (poly Polygon) IsCW() bool {
	return poly.SignedArea() < 0
}

// Winding rule point-in-polygon.
func (poly Polygon) ContainsPointByEvenOdd(p r2.Point) bool {
	return poly.CrossingCount(p)%2 == 1
}

// CrossingCount counts the edges crossed by a ray from p in the +X direction.
func (poly Polygon) CrossingCount(p r2.Point) int {
	count := 0
	for i, u := range poly.Points {
		w := poly.Points[CircularIndex(i+1, len(poly.Points))]
		if (u.Y > p.Y) == (w.Y > p.Y) {
			continue
		}
		x := u.X + (p.Y-u.Y)*(w.X-u.X)/(w.Y-u.Y)
		if x > p.X {
			count++
		}
	}
	return count
}

// ContainsPointByEvenOdd reports whether p is inside the filled area of the
// list.
func (list List) ContainsPointByEvenOdd(p r2.Point) bool {
	count := 0
	for _, poly := range list {
		count += poly.CrossingCount(p)
	}
	return count%2 == 1
}

// Input builds mesh input with every polygon edge as a segment carrying the
// polygon's label (its index plus one) and a hole seed inside each clockwise
// polygon.
func (list List) Input() mesh.Input {
	var in mesh.Input
	for i, poly := range list {
		n := len(poly.Points)
		if n < 3 {
			continue
		}
		base := len(in.Points)
		for _, p := range poly.Points {
			in.Points = append(in.Points, mesh.Point{Point: p, Label: i + 1})
		}
		for j := 0; j < n; j++ {
			in.Segments = append(in.Segments, mesh.InputSegment{
				P0:    base + j,
				P1:    base + CircularIndex(j+1, n),
				Label: i + 1,
			})
		}
		if poly.IsCW() {
			in.Holes = append(in.Holes, list.innerPoint(i))
		}
	}
	return in
}

// innerPoint finds a point just inside polygon i, near an ear, and closer
// to the ear's corner than any other polygon comes.
func (list List) innerPoint(i int) r2.Point {
	poly := list[i]
	if poly.IsCW() {
		poly = poly.Reverse()
	}
	n := len(poly.Points)
	v, c := poly.Points[0], poly.Points[0]
	for j := 0; j < n; j++ {
		u, w := poly.Points[CircularIndex(j-1, n)], poly.Points[CircularIndex(j+1, n)]
		v = poly.Points[j]
		if v.Sub(u).Cross(w.Sub(v)) > 0 && poly.isEar(j) {
			c = r2.Point{X: (u.X + v.X + w.X) / 3, Y: (u.Y + v.Y + w.Y) / 3}
			break
		}
	}

	d := math.Inf(1)
	for k, other := range list {
		if k == i {
			continue
		}
		for j, a := range other.Points {
			b := other.Points[CircularIndex(j+1, len(other.Points))]
			d = math.Min(d, segmentDistance(v, a, b))
		}
	}
	t := 1.0
	if l := c.Sub(v).Norm(); l > 0 && d/2 < l {
		t = d / 2 / l
	}
	return v.Add(c.Sub(v).Mul(t))
}

// isEar reports whether no other vertex lies in the triangle formed by
// vertex j and its neighbors.
func (poly Polygon) isEar(j int) bool {
	n := len(poly.Points)
	u, v, w := poly.Points[CircularIndex(j-1, n)], poly.Points[j], poly.Points[CircularIndex(j+1, n)]
	for k, p := range poly.Points {
		if k == j || k == CircularIndex(j-1, n) || k == CircularIndex(j+1, n) {
			continue
		}
		if v.Sub(u).Cross(p.Sub(u)) >= 0 && w.Sub(v).Cross(p.Sub(v)) >= 0 && u.Sub(w).Cross(p.Sub(w)) >= 0 {
			return false
		}
	}
	return true
}

func segmentDistance(p, a, b r2.Point) float64 {
	d := b.Sub(a)
	l := d.Dot(d)
	if l == 0 {
		return p.Sub(a).Norm()
	}
	s := math.Max(0, math.Min(1, p.Sub(a).Dot(d)/l))
	return p.Sub(a.Add(d.Mul(s))).Norm()
}
