package mesh

import (
	"math"

	"github.com/golang/geo/r2"
)

// Proposal is where refinement should put a new vertex to fix a bad
// triangle. Xi and Eta locate Point in the basis of the triangle's edges
// from its origin. When Relocate is set, the vertex should instead be moved
// to Point and given Attributes.
type Proposal struct {
	Point      r2.Point
	Xi, Eta    float64
	Relocate   *Vertex
	Attributes []float64
}

// Grid resolution for the sampled fallback.
const sampleSteps = 8

// newLocation proposes a repair for the bad triangle t. It only reads the
// mesh.
func (m *Mesh) newLocation(t Otri) Proposal {
	if p, ok := m.relocation(t); ok {
		return p
	}

	org, dest, apex := m.Org(t), m.Dest(t), m.Apex(t)
	c, xi, eta := m.pred.Circumcenter(org.Point, dest.Point, apex.Point, m.quality.offConstant)
	prop := Proposal{Point: c, Xi: xi, Eta: eta}
	if m.opts.MaxAngle <= 0 {
		return prop
	}

	ring := m.triangleRing(t)
	if !insideRing(ring, c) {
		// The new vertex reaches past the neighbors; the ring says nothing
		// about the triangles it will make.
		return prop
	}
	region := m.angleRegion(ring)
	switch {
	case len(region) == 0:
		prop.Point = m.bestSample(ring, org.Point, dest.Point, apex.Point)
	case pointInConvex(region, c):
		return prop
	default:
		q := nearestInConvex(region, c)
		g := centroid(region)
		prop.Point = r2.Point{X: q.X + 0.1*(g.X-q.X), Y: q.Y + 0.1*(g.Y-q.Y)}
	}
	prop.Xi, prop.Eta = edgeCoords(org.Point, dest.Point, apex.Point, prop.Point)
	return prop
}

// triangleRing lists, counterclockwise, the corners of t and the far corners
// of its neighbors. An edge with no neighbor, or bound to a subsegment,
// contributes only its endpoints.
func (m *Mesh) triangleRing(t Otri) []r2.Point {
	ring := make([]r2.Point, 0, 6)
	for i := 0; i < 3; i++ {
		ring = append(ring, m.Org(t).Point)
		n := m.Sym(t)
		if !n.IsDummy() && m.SegPivot(t).IsDummy() {
			ring = append(ring, m.Apex(n).Point)
		}
		t = t.Lnext()
	}
	return ring
}

func insideRing(ring []r2.Point, p r2.Point) bool {
	for i, u := range ring {
		if orient(u, ring[(i+1)%len(ring)], p) <= 0 {
			return false
		}
	}
	return true
}

// angleRegion is the set of points that, joined to every ring vertex, make
// no angle at the ring larger than the maximum angle, nor smaller than the
// minimum angle. It is an intersection of half-planes, clipped from the
// bounding box of the ring.
func (m *Mesh) angleRegion(ring []r2.Point) []r2.Point {
	rect := r2.RectFromPoints(ring...)
	poly := []r2.Point{
		rect.Lo(),
		{X: rect.X.Hi, Y: rect.Y.Lo},
		rect.Hi(),
		{X: rect.X.Lo, Y: rect.Y.Hi},
	}
	maxA := m.opts.MaxAngle * math.Pi / 180
	minA := m.opts.MinAngle * math.Pi / 180
	for i, u := range ring {
		w := ring[(i+1)%len(ring)]
		poly = clipHalfPlane(poly, u, w)
		// At u the angle is measured counterclockwise from u->w; at w,
		// clockwise from w->u.
		poly = clipHalfPlane(poly, rotateAbout(u, w, maxA), u)
		poly = clipHalfPlane(poly, w, rotateAbout(w, u, -maxA))
		if minA > 0 {
			poly = clipHalfPlane(poly, u, rotateAbout(u, w, minA))
			poly = clipHalfPlane(poly, rotateAbout(w, u, -minA), w)
		}
		if len(poly) < 3 {
			return nil
		}
	}
	return poly
}

// bestSample searches a barycentric grid over the triangle for the point
// whose worst ring triangle has the smallest maximum angle.
func (m *Mesh) bestSample(ring []r2.Point, a, b, c r2.Point) r2.Point {
	best := r2.Point{X: (a.X + b.X + c.X) / 3, Y: (a.Y + b.Y + c.Y) / 3}
	bestScore := ringMaxAngle(ring, best)
	for i := 1; i < sampleSteps; i++ {
		for j := 1; i+j < sampleSteps; j++ {
			s := float64(i) / sampleSteps
			u := float64(j) / sampleSteps
			p := r2.Point{
				X: a.X + s*(b.X-a.X) + u*(c.X-a.X),
				Y: a.Y + s*(b.Y-a.Y) + u*(c.Y-a.Y),
			}
			if !insideRing(ring, p) {
				continue
			}
			if score := ringMaxAngle(ring, p); score < bestScore {
				best, bestScore = p, score
			}
		}
	}
	return best
}

func ringMaxAngle(ring []r2.Point, p r2.Point) float64 {
	worst := 0.0
	for i, u := range ring {
		_, hi := angles(u, ring[(i+1)%len(ring)], p)
		worst = math.Max(worst, hi)
	}
	return worst
}

// relocation proposes moving a free corner of t to the centroid of its
// neighbors, when that leaves every triangle around it inside the angle
// bounds and improves on the triangles there now.
func (m *Mesh) relocation(t Otri) (Proposal, bool) {
	for i := 0; i < 3; i++ {
		v := m.Org(t)
		if v.Type == FreeVertex && !m.quality.relocated[v] {
			if link, ok := m.vertexLink(t); ok {
				ring := make([]r2.Point, len(link))
				for j, u := range link {
					ring[j] = u.Point
				}
				if p, ok := m.betterPosition(v.Point, ring); ok {
					return Proposal{Point: p, Relocate: v, Attributes: meanAttrs(link)}, true
				}
			}
		}
		t = t.Lnext()
	}
	return Proposal{}, false
}

// vertexLink lists, counterclockwise, the neighbors of the origin of t. It
// fails for vertices on the boundary or on a subsegment.
func (m *Mesh) vertexLink(t Otri) ([]*Vertex, bool) {
	var link []*Vertex
	e := t
	for {
		if !m.SegPivot(e).IsDummy() {
			return nil, false
		}
		link = append(link, m.Dest(e))
		e = m.Onext(e)
		if e.IsDummy() {
			return nil, false
		}
		if e == t {
			return link, true
		}
	}
}

// meanAttrs averages the attributes of vs, matching a position at their
// centroid.
func meanAttrs(vs []*Vertex) []float64 {
	n := len(vs[0].Attributes)
	if n == 0 {
		return nil
	}
	out := make([]float64, n)
	for _, v := range vs {
		if len(v.Attributes) != n {
			return nil
		}
		for i, a := range v.Attributes {
			out[i] += a
		}
	}
	for i := range out {
		out[i] /= float64(len(vs))
	}
	return out
}

func (m *Mesh) betterPosition(at r2.Point, link []r2.Point) (r2.Point, bool) {
	var p r2.Point
	for _, q := range link {
		p.X += q.X
		p.Y += q.Y
	}
	p = p.Mul(1 / float64(len(link)))
	if p == at || !insideRing(link, p) {
		return r2.Point{}, false
	}

	oldMin, _ := starAngles(link, at)
	newMin, newMax := starAngles(link, p)
	if newMin <= oldMin {
		return r2.Point{}, false
	}
	if m.opts.MinAngle > 0 && newMin < m.opts.MinAngle*math.Pi/180 {
		return r2.Point{}, false
	}
	if m.opts.MaxAngle > 0 && newMax > m.opts.MaxAngle*math.Pi/180 {
		return r2.Point{}, false
	}
	return p, true
}

// starAngles is the smallest and largest angle of the triangles joining p to
// each edge of link.
func starAngles(link []r2.Point, p r2.Point) (lo, hi float64) {
	lo = math.Pi
	for i, u := range link {
		a, b := angles(u, link[(i+1)%len(link)], p)
		lo = math.Min(lo, a)
		hi = math.Max(hi, b)
	}
	return lo, hi
}

// angles returns the smallest and largest angle of the triangle a, b, c in
// radians.
func angles(a, b, c r2.Point) (lo, hi float64) {
	at := func(p, q, r r2.Point) float64 {
		u, v := q.Sub(p), r.Sub(p)
		return math.Abs(math.Atan2(u.Cross(v), u.Dot(v)))
	}
	x, y := at(a, b, c), at(b, c, a)
	z := math.Pi - x - y
	return math.Min(x, math.Min(y, z)), math.Max(x, math.Max(y, z))
}

// orient is the inexact orientation test. The optimizer only ranks
// candidate positions, and insertion revalidates whatever it picks.
func orient(a, b, c r2.Point) float64 {
	return (a.X-c.X)*(b.Y-c.Y) - (a.Y-c.Y)*(b.X-c.X)
}

// rotateAbout turns q around p by theta radians counterclockwise.
func rotateAbout(p, q r2.Point, theta float64) r2.Point {
	d := q.Sub(p)
	s, c := math.Sincos(theta)
	return r2.Point{X: p.X + c*d.X - s*d.Y, Y: p.Y + s*d.X + c*d.Y}
}

// clipHalfPlane keeps the part of the convex polygon poly to the left of
// the directed line a->b.
func clipHalfPlane(poly []r2.Point, a, b r2.Point) []r2.Point {
	if len(poly) == 0 {
		return nil
	}
	out := make([]r2.Point, 0, len(poly)+1)
	prev := poly[len(poly)-1]
	prevSide := orient(a, b, prev)
	for _, cur := range poly {
		side := orient(a, b, cur)
		if (side >= 0) != (prevSide >= 0) {
			t := prevSide / (prevSide - side)
			out = append(out, r2.Point{X: prev.X + t*(cur.X-prev.X), Y: prev.Y + t*(cur.Y-prev.Y)})
		}
		if side >= 0 {
			out = append(out, cur)
		}
		prev, prevSide = cur, side
	}
	return out
}

func pointInConvex(poly []r2.Point, p r2.Point) bool {
	for i, u := range poly {
		if orient(u, poly[(i+1)%len(poly)], p) < 0 {
			return false
		}
	}
	return true
}

func nearestInConvex(poly []r2.Point, p r2.Point) r2.Point {
	best := poly[0]
	bestD := dist2(p, best)
	for i, u := range poly {
		w := poly[(i+1)%len(poly)]
		d := w.Sub(u)
		l := d.Dot(d)
		if l == 0 {
			continue
		}
		s := math.Max(0, math.Min(1, p.Sub(u).Dot(d)/l))
		q := u.Add(d.Mul(s))
		if dq := dist2(p, q); dq < bestD {
			best, bestD = q, dq
		}
	}
	return best
}

func centroid(poly []r2.Point) r2.Point {
	var c r2.Point
	for _, p := range poly {
		c = c.Add(p)
	}
	return c.Mul(1 / float64(len(poly)))
}

// edgeCoords expresses p in the basis (b-a, c-a).
func edgeCoords(a, b, c, p r2.Point) (xi, eta float64) {
	u, v, d := b.Sub(a), c.Sub(a), p.Sub(a)
	det := u.Cross(v)
	return d.Cross(v) / det, u.Cross(d) / det
}
