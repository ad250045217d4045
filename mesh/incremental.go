package mesh

import (
	"github.com/golang/geo/r2"
	"go.uber.org/zap"
)

// incrementalDelaunay inserts the vertices one at a time into a triangle
// large enough to hold them all, then removes the bounding triangle. It
// returns the number of hull edges.
func (m *Mesh) incrementalDelaunay() int {
	m.boundingTriangle()
	for _, v := range m.vertices[:m.inputCount] {
		if _, result := m.InsertVertex(v, Otri{}, Osub{}, false, false); result == Duplicate {
			v.Type = UndeadVertex
			m.undeads++
			m.logger.Debug("duplicate vertex ignored", zap.Stringer("vertex", v))
		}
	}
	return m.removeBoundingTriangle()
}

func (m *Mesh) boundingTriangle() {
	lo, hi := m.bounds.Lo(), m.bounds.Hi()
	width := hi.X - lo.X
	if h := hi.Y - lo.Y; h > width {
		width = h
	}
	if width == 0 {
		width = 1
	}
	m.infVertices[0] = &Vertex{Point: r2.Point{X: lo.X - 50*width, Y: lo.Y - 40*width}, ID: -1}
	m.infVertices[1] = &Vertex{Point: r2.Point{X: hi.X + 50*width, Y: lo.Y - 40*width}, ID: -2}
	m.infVertices[2] = &Vertex{Point: r2.Point{X: 0.5 * (lo.X + hi.X), Y: hi.Y + 60*width}, ID: -3}

	t := m.makeTriangle()
	m.setOrg(t, m.infVertices[0])
	m.setDest(t, m.infVertices[1])
	m.setApex(t, m.infVertices[2])
	m.tris[0].neighbors[0] = t
}

// removeBoundingTriangle deletes every triangle touching a bounding vertex.
// What remains may miss a few slivers of the convex hull when hull vertices
// are nearly collinear, so the hull is then filled in and the new triangles
// are made Delaunay by flipping.
func (m *Mesh) removeBoundingTriangle() int {
	var anchor Otri
	for _, t := range m.liveTriangles() {
		if !m.touchesInf(t) {
			continue
		}
		for t.orient = 0; t.orient < 3; t.orient++ {
			n := m.Sym(t)
			if n.IsDummy() || m.touchesInf(n) {
				continue
			}
			m.dissolve(n)
			anchor = n
		}
		m.killTriangle(t)
	}
	m.infVertices = [3]*Vertex{}
	m.tris[0].neighbors[0] = anchor
	if anchor.IsDummy() {
		return 0
	}

	added := m.fillHull(anchor)
	m.legalize(added)
	m.recentTri = Otri{}
	return m.countHull()
}

func (m *Mesh) touchesInf(t Otri) bool {
	tr := &m.tris[t.tri]
	return m.isInfVertex(tr.vertices[0]) || m.isInfVertex(tr.vertices[1]) || m.isInfVertex(tr.vertices[2])
}

// nextHullEdge returns the hull edge that follows h counterclockwise. Hull
// edges have the mesh on their left.
func (m *Mesh) nextHullEdge(h Otri) Otri {
	h = h.Lnext()
	for n := m.Oprev(h); !n.IsDummy(); n = m.Oprev(h) {
		h = n
	}
	return h
}

// fillHull adds a triangle at every reflex hull vertex until the hull is
// convex. It returns the triangles added.
func (m *Mesh) fillHull(start Otri) []Otri {
	hull := 1
	for h := m.nextHullEdge(start); h != start; h = m.nextHullEdge(h) {
		hull++
	}

	var added []Otri
	h := start
	for stable := 0; stable < hull && hull > 3; {
		n := m.nextHullEdge(h)
		a, b, c := m.Org(h), m.Dest(h), m.Dest(n)
		if m.ccw(a, b, c) >= 0 {
			h = n
			stable++
			continue
		}
		// b is reflex: cover it with the triangle (a, c, b).
		t := m.makeTriangle()
		m.setOrg(t, a)
		m.setDest(t, c)
		m.setApex(t, b)
		m.bond(t.Lnext(), n)
		m.bond(t.Lprev(), h)
		m.dissolve(t)
		m.tris[0].neighbors[0] = t
		added = append(added, t)
		h = t
		hull--
		stable = 0
	}
	return added
}

// legalize flips non-Delaunay edges, starting from the edges of the given
// triangles, until every edge is locally Delaunay.
func (m *Mesh) legalize(tris []Otri) {
	var stack []Otri
	for _, t := range tris {
		for t.orient = 0; t.orient < 3; t.orient++ {
			stack = append(stack, t)
		}
	}
	for len(stack) > 0 {
		e := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if m.isDead(e) {
			continue
		}
		top := m.Sym(e)
		if top.IsDummy() {
			continue
		}
		if m.checkSegments && !m.SegPivot(e).IsDummy() {
			continue
		}
		if m.inCircle(m.Org(e), m.Dest(e), m.Apex(e), m.Apex(top)) <= 0 {
			continue
		}
		m.flip(e)
		stack = append(stack, e.Lnext(), e.Lprev(), top.Lnext(), top.Lprev())
	}
}
