package mesh

import (
	"math"

	"github.com/golang/geo/r2"
)

// LocateResult describes where a point landed.
type LocateResult int

const (
	InTriangle LocateResult = iota
	OnEdge
	OnVertex
	Outside
)

func (r LocateResult) String() string {
	switch r {
	case InTriangle:
		return "in triangle"
	case OnEdge:
		return "on edge"
	case OnVertex:
		return "on vertex"
	}
	return "outside"
}

// Random samples per cube of the triangle count used to pick a starting
// triangle for point location.
const sampleFactor = 11

func (m *Mesh) ccw(a, b, c *Vertex) float64 {
	return m.pred.Orient2D(a.Point, b.Point, c.Point)
}

func (m *Mesh) ccwPoint(a, b *Vertex, p r2.Point) float64 {
	return m.pred.Orient2D(a.Point, b.Point, p)
}

func (m *Mesh) inCircle(a, b, c, d *Vertex) float64 {
	return m.pred.InCircle(a.Point, b.Point, c.Point, d.Point)
}

// hullAnchor returns an edge of a live hull triangle that faces the outside.
func (m *Mesh) hullAnchor() Otri {
	anchor := m.tris[0].neighbors[0]
	if !anchor.IsDummy() && !m.isDead(anchor) && m.Sym(anchor).IsDummy() {
		return anchor
	}
	for _, t := range m.liveTriangles() {
		for t.orient = 0; t.orient < 3; t.orient++ {
			if m.Sym(t).IsDummy() {
				m.tris[0].neighbors[0] = t
				return t
			}
		}
	}
	return Otri{}
}

// preciseLocate walks in a straight line from start toward p. The walk
// starts with p to the left of (or on) the edge start. If stopAtSubseg is
// set the walk refuses to cross subsegments and reports Outside at the
// blocking edge.
func (m *Mesh) preciseLocate(p r2.Point, start Otri, stopAtSubseg bool) (Otri, LocateResult) {
	t := start
	forg := m.Org(t)
	fdest := m.Dest(t)
	fapex := m.Apex(t)
	for steps := 0; ; steps++ {
		if steps > 4*len(m.tris)+16 {
			fatalf(ErrLocate, "walk toward (%g, %g) does not terminate", p.X, p.Y)
		}
		if fapex.Point == p {
			return t.Lprev(), OnVertex
		}
		destOrient := m.ccwPoint(forg, fapex, p)
		orgOrient := m.ccwPoint(fapex, fdest, p)

		var moveLeft bool
		if destOrient > 0 {
			if orgOrient > 0 {
				// Both edges face p; pick the one whose direction agrees
				// best with the walk.
				moveLeft = (fapex.X-p.X)*(fdest.X-forg.X)+(fapex.Y-p.Y)*(fdest.Y-forg.Y) > 0
			} else {
				moveLeft = true
			}
		} else {
			if orgOrient > 0 {
				moveLeft = false
			} else {
				if destOrient == 0 {
					return t.Lprev(), OnEdge
				}
				if orgOrient == 0 {
					return t.Lnext(), OnEdge
				}
				return t, InTriangle
			}
		}

		var backtrack Otri
		if moveLeft {
			backtrack = t.Lprev()
			fdest = fapex
		} else {
			backtrack = t.Lnext()
			forg = fapex
		}
		t = m.Sym(backtrack)

		if m.checkSegments && stopAtSubseg && !m.SegPivot(backtrack).IsDummy() {
			return backtrack, Outside
		}
		if t.IsDummy() {
			return backtrack, Outside
		}
		fapex = m.Apex(t)
	}
}

// Locate finds the triangle containing p. The search starts from the
// closest of start, the most recently created triangle and a few random
// samples. For OnVertex the returned edge has the vertex as origin; for
// OnEdge p lies on the returned edge.
func (m *Mesh) Locate(p r2.Point, start Otri) (Otri, LocateResult) {
	if start.IsDummy() || m.isDead(start) {
		start = m.hullAnchor()
		if start.IsDummy() {
			fatalf(ErrLocate, "mesh has no triangles")
		}
	}
	searchTri := start
	searchDist := dist2(p, m.Org(searchTri).Point)

	if !m.recentTri.IsDummy() && !m.isDead(m.recentTri) {
		torg := m.Org(m.recentTri)
		if torg != nil {
			if torg.Point == p {
				return m.recentTri, OnVertex
			}
			if d := dist2(p, torg.Point); d < searchDist {
				searchTri = m.recentTri
				searchDist = d
			}
		}
	}

	samples := 1
	for sampleFactor*samples*samples*samples < m.liveTris {
		samples++
	}
	for i := 0; i < samples && len(m.tris) > 1; i++ {
		id := 1 + m.rand.Intn(len(m.tris)-1)
		if m.tris[id].dead {
			continue
		}
		sample := Otri{tri: id}
		torg := m.Org(sample)
		if torg == nil {
			continue
		}
		if d := dist2(p, torg.Point); d < searchDist {
			searchTri = sample
			searchDist = d
		}
	}

	torg := m.Org(searchTri)
	tdest := m.Dest(searchTri)
	if torg.Point == p {
		return searchTri, OnVertex
	}
	if tdest.Point == p {
		return searchTri.Lnext(), OnVertex
	}
	ahead := m.ccwPoint(torg, tdest, p)
	if ahead < 0 {
		// Turn around so that p is to the left of the edge.
		sym := m.Sym(searchTri)
		if sym.IsDummy() {
			return searchTri, Outside
		}
		searchTri = sym
	} else if ahead == 0 {
		if (torg.X < p.X) == (p.X < tdest.X) && (torg.Y < p.Y) == (p.Y < tdest.Y) {
			return searchTri, OnEdge
		}
	}
	return m.preciseLocate(p, searchTri, false)
}

func dist2(a, b r2.Point) float64 {
	dx := a.X - b.X
	dy := a.Y - b.Y
	return dx*dx + dy*dy
}

func dist(a, b r2.Point) float64 {
	return math.Sqrt(dist2(a, b))
}
