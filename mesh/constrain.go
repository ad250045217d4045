package mesh

import (
	"github.com/golang/geo/r2"
	"go.uber.org/zap"
)

// Default label for hull edges that are not part of an input segment.
const hullLabel = 1

type direction int

const (
	within direction = iota
	leftCollinear
	rightCollinear
)

// formSkeleton recovers the input segments and, unless the input segments
// define the domain, binds subsegments around the convex hull.
func (m *Mesh) formSkeleton() {
	m.checkSegments = true
	poly := m.opts.EnforceSegments && len(m.segments) > 0
	if poly {
		m.makeVertexMap()
		for i, s := range m.segments {
			a := m.vertices[s.P0]
			b := m.vertices[s.P1]
			if a.Point == b.Point {
				m.logger.Warn("segment endpoints coincide; segment skipped",
					zap.Int("segment", i), zap.Stringer("vertex", a))
				continue
			}
			m.insertSegment(a, b, s.Label)
		}
		m.logger.Debug("segments recovered", zap.Int("subsegments", m.liveSubsegs))
	}
	if m.opts.ConvexHull || !poly {
		m.markHull()
	}
}

// insertSubseg binds a new subsegment to the edge t, unless one is there
// already. The subsegment runs from the destination of t to its origin.
func (m *Mesh) insertSubseg(t Otri, label int) {
	org := m.Org(t)
	dest := m.Dest(t)
	if org.Label == 0 {
		org.Label = label
	}
	if dest.Label == 0 {
		dest.Label = label
	}
	s := m.SegPivot(t)
	if s.IsDummy() {
		s = m.makeSubseg()
		m.setSubOrg(s, dest)
		m.setSubDest(s, org)
		m.setSegOrg(s, dest)
		m.setSegDest(s, org)
		m.segBond(t, s)
		m.segBond(m.Sym(t), s.Sym())
		m.setLabel(s, label)
	} else if m.Label(s) == 0 {
		m.setLabel(s, label)
	}
}

// markHull binds a subsegment to every hull edge.
func (m *Mesh) markHull() {
	start := m.hullAnchor()
	if start.IsDummy() {
		return
	}
	h := start
	for {
		m.insertSubseg(h, hullLabel)
		h = m.nextHullEdge(h)
		if h == start {
			return
		}
	}
}

// findDirection rotates t around its origin until the direction toward p
// lies between its edge and its apex, and reports whether p is collinear
// with either.
func (m *Mesh) findDirection(t Otri, p *Vertex) (Otri, direction) {
	start := m.Org(t)
	rightV := m.Dest(t)
	leftV := m.Apex(t)
	leftCCW := m.ccw(p, start, leftV)
	leftFlag := leftCCW > 0
	rightCCW := m.ccw(start, p, rightV)
	rightFlag := rightCCW > 0
	if leftFlag && rightFlag {
		// t faces directly away from p; go whichever way is not the hull.
		if m.Onext(t).IsDummy() {
			leftFlag = false
		} else {
			rightFlag = false
		}
	}
	for leftFlag {
		t = m.Onext(t)
		if t.IsDummy() {
			fatalf(ErrTopology, "no triangle on the path from %v to %v", start, p)
		}
		leftV = m.Apex(t)
		rightCCW = leftCCW
		leftCCW = m.ccw(p, start, leftV)
		leftFlag = leftCCW > 0
	}
	for rightFlag {
		t = m.Oprev(t)
		if t.IsDummy() {
			fatalf(ErrTopology, "no triangle on the path from %v to %v", start, p)
		}
		rightV = m.Dest(t)
		leftCCW = rightCCW
		rightCCW = m.ccw(start, p, rightV)
		rightFlag = rightCCW > 0
	}
	switch {
	case leftCCW == 0:
		return t, leftCollinear
	case rightCCW == 0:
		return t, rightCollinear
	}
	return t, within
}

// segmentIntersection splits the subsegment crossing the edge t at the
// point where the new segment from the apex of t toward end crosses it.
// On return t points from the new vertex toward the apex.
func (m *Mesh) segmentIntersection(t Otri, s Osub, end *Vertex) Otri {
	end1 := m.Apex(t)
	torg := m.Org(t)
	tdest := m.Dest(t)
	tx := tdest.X - torg.X
	ty := tdest.Y - torg.Y
	ex := end.X - end1.X
	ey := end.Y - end1.Y
	etx := torg.X - end.X
	ety := torg.Y - end.Y
	denom := ty*ex - tx*ey
	if denom == 0 {
		fatalf(ErrParallel, "segment %v-%v and edge %v-%v", end1, end, torg, tdest)
	}
	split := (ey*etx - ex*ety) / denom

	v := m.makeVertex(r2.Point{X: torg.X + split*tx, Y: torg.Y + split*ty}, InputVertex)
	v.Attributes = lerpAttrs(torg.Attributes, tdest.Attributes, split)
	v.Label = m.Label(s)

	if _, result := m.InsertVertex(v, t, s, false, false); result != Successful {
		fatalf(ErrTopology, "splitting segment at crossing %v: %v", v, result)
	}
	m.spendSteiner()

	// The crossed segment becomes two input segments that meet at v.
	s = s.Sym()
	oppo := m.subPivot(s)
	m.dissolveSubAt(s)
	m.dissolveSubAt(oppo)
	for ; !s.IsDummy(); s = m.subNext(s) {
		m.setSegOrg(s, v)
	}
	for ; !oppo.IsDummy(); oppo = m.subNext(oppo) {
		m.setSegOrg(oppo, v)
	}

	// Flips may have moved things; find the edge from v toward end1 again.
	t, _ = m.findDirection(v.tri, end1)
	if m.Apex(t).Point == end1.Point {
		t = m.Onext(t)
	} else if m.Dest(t).Point != end1.Point {
		fatalf(ErrTopology, "after splitting a segment at %v", v)
	}
	return t
}

// dissolveSubAt detaches s from the subsegment adjoining it at its origin.
func (m *Mesh) dissolveSubAt(s Osub) {
	m.subsegs[s.seg].subsegs[s.orient] = Osub{}
}

// scoutSegment walks from the origin of t toward end, binding subsegments to
// mesh edges that already lie on the segment. It reports whether the whole
// segment was recovered. Otherwise t is left at the blocking triangle.
func (m *Mesh) scoutSegment(t Otri, end *Vertex, label int) (Otri, bool) {
	for {
		var collinear direction
		t, collinear = m.findDirection(t, end)
		rightV := m.Dest(t)
		leftV := m.Apex(t)
		switch {
		case leftV.Point == end.Point:
			m.insertSubseg(t.Lprev(), label)
			return t, true
		case rightV.Point == end.Point:
			m.insertSubseg(t, label)
			return t, true
		case collinear == leftCollinear:
			// A vertex between the endpoints; continue from it.
			t = t.Lprev()
			m.insertSubseg(t, label)
		case collinear == rightCollinear:
			m.insertSubseg(t, label)
			t = t.Lnext()
		default:
			cross := t.Lnext()
			s := m.SegPivot(cross)
			if s.IsDummy() {
				return t, false
			}
			// Crossing another segment: split both there.
			t = m.segmentIntersection(cross, s, end)
			m.insertSubseg(t, label)
		}
	}
}

// insertSegment recovers the segment a-b, splitting it or the segments it
// crosses as needed.
func (m *Mesh) insertSegment(a, b *Vertex, label int) {
	t1 := m.endpointTriangle(a)
	m.recentTri = t1
	t1, done := m.scoutSegment(t1, b, label)
	if done {
		return
	}
	a = m.Org(t1)

	t2 := m.endpointTriangle(b)
	m.recentTri = t2
	t2, done = m.scoutSegment(t2, a, label)
	if done {
		return
	}
	b = m.Org(t2)

	m.constrainedEdge(t1, b, label)
}

func (m *Mesh) endpointTriangle(v *Vertex) Otri {
	t, ok := m.vertexTriangle(v)
	if !ok {
		fatalf(ErrLocate, "segment endpoint %v is not in the mesh", v)
	}
	return t
}

// constrainedEdge forces the edge from the origin of start to end into the
// mesh by flipping away the edges that cross it, then restores the Delaunay
// property on both sides.
func (m *Mesh) constrainedEdge(start Otri, end *Vertex, label int) {
	end1 := m.Org(start)
	fixup := start.Lnext()
	m.flip(fixup)

	collision := false
	for done := false; !done; {
		far := m.Org(fixup)
		if far.Point == end.Point {
			fixup2 := m.Oprev(fixup)
			fixup = m.delaunayFixup(fixup, false)
			m.delaunayFixup(fixup2, true)
			done = true
			continue
		}
		area := m.ccw(end1, end, far)
		if area == 0 {
			// A vertex on the segment: stop here and recover the rest later.
			collision = true
			fixup2 := m.Oprev(fixup)
			fixup = m.delaunayFixup(fixup, false)
			m.delaunayFixup(fixup2, true)
			done = true
			continue
		}
		if area > 0 {
			m.delaunayFixup(m.Oprev(fixup), true)
			fixup = fixup.Lprev()
		} else {
			fixup = m.Oprev(m.delaunayFixup(fixup, false))
		}
		if s := m.SegPivot(fixup); s.IsDummy() {
			m.flip(fixup)
		} else {
			collision = true
			fixup = m.segmentIntersection(fixup, s, end)
			done = true
		}
	}

	m.insertSubseg(fixup, label)
	if collision {
		if t, ok := m.scoutSegment(fixup, end, label); !ok {
			m.constrainedEdge(t, end, label)
		}
	}
}

// delaunayFixup restores the Delaunay property on one side of a newly
// forced edge by flipping edges of the cavity it walked through. It returns
// fixup, re-aimed at the same edge after the flips.
func (m *Mesh) delaunayFixup(fixup Otri, leftSide bool) Otri {
	near := fixup.Lnext()
	far := m.Sym(near)
	if far.IsDummy() {
		return fixup
	}
	if !m.SegPivot(near).IsDummy() {
		return fixup
	}
	apexV := m.Apex(near)
	leftV := m.Org(near)
	rightV := m.Dest(near)
	farV := m.Apex(far)
	if leftSide {
		if m.ccw(apexV, leftV, farV) <= 0 {
			return fixup
		}
	} else if m.ccw(farV, rightV, apexV) <= 0 {
		return fixup
	}
	if m.ccw(rightV, leftV, farV) > 0 {
		// The quadrilateral is convex; flip only if not locally Delaunay.
		if m.inCircle(leftV, farV, rightV, apexV) <= 0 {
			return fixup
		}
	}
	m.flip(near)
	fixup = m.delaunayFixup(fixup.Lprev(), leftSide)
	m.delaunayFixup(far, leftSide)
	return fixup
}

func lerpAttrs(a, b []float64, t float64) []float64 {
	if len(a) == 0 || len(a) != len(b) {
		return nil
	}
	out := make([]float64, len(a))
	for i := range a {
		out[i] = a[i] + t*(b[i]-a[i])
	}
	return out
}
