package mesh

import (
	"github.com/pkg/errors"
)

// CheckMesh verifies the topology of the mesh: every triangle is
// counterclockwise, neighbor links are mutual and agree on their shared
// edge, and subsegments sit on the edges they claim. It reports the first
// problem found and how many there were.
func (m *Mesh) CheckMesh() error {
	var first error
	problems := 0
	fail := func(format string, args ...interface{}) {
		if first == nil {
			first = errors.Wrapf(ErrTopology, format, args...)
		}
		problems++
	}

	hull := 0
	for _, t := range m.liveTriangles() {
		for t.orient = 0; t.orient < 3; t.orient++ {
			org, dest, apex := m.Org(t), m.Dest(t), m.Apex(t)
			if org == nil || dest == nil || apex == nil {
				fail("triangle %v has a missing vertex", t)
				continue
			}
			if t.orient == 0 && m.ccw(org, dest, apex) <= 0 {
				fail("triangle %v is inverted: %v %v %v", t, org, dest, apex)
			}

			n := m.Sym(t)
			if n.IsDummy() {
				hull++
			} else {
				switch {
				case m.isDead(n):
					fail("triangle %v has dead neighbor %v", t, n)
				case m.Sym(n) != t:
					fail("triangle %v and %v disagree on adjacency", t, n)
				case m.Org(n) != dest || m.Dest(n) != org:
					fail("triangle %v and %v disagree on their shared edge", t, n)
				}
			}

			s := m.SegPivot(t)
			if s.IsDummy() {
				continue
			}
			if m.subsegs[s.seg].dead {
				fail("triangle %v holds dead subsegment %v", t, s)
				continue
			}
			a, b := m.SubOrg(s), m.SubDest(s)
			if !(a == org && b == dest) && !(a == dest && b == org) {
				fail("subsegment %v (%v, %v) does not lie on edge %v", s, a, b, t)
			}
			if !n.IsDummy() && m.SegPivot(n).seg != s.seg {
				fail("edge %v has a subsegment on one side only", t)
			}
		}
	}
	if hull != m.hullSize {
		fail("hull has %d edges, recorded %d", hull, m.hullSize)
	}

	if first != nil {
		return errors.WithMessagef(first, "%d problems", problems)
	}
	return nil
}

// CheckDelaunay verifies that every edge not bound to a subsegment is
// locally Delaunay, which makes the mesh constrained Delaunay.
func (m *Mesh) CheckDelaunay() error {
	var first error
	problems := 0
	for _, t := range m.liveTriangles() {
		for t.orient = 0; t.orient < 3; t.orient++ {
			n := m.Sym(t)
			if n.IsDummy() || n.tri < t.tri || !m.SegPivot(t).IsDummy() {
				continue
			}
			org, dest, apex, far := m.Org(t), m.Dest(t), m.Apex(t), m.Apex(n)
			if m.inCircle(org, dest, apex, far) > 0 {
				if first == nil {
					first = errors.Errorf("trimesh: edge %v-%v is not locally Delaunay (triangles %v, %v)",
						org, dest, t, n)
				}
				problems++
			}
		}
	}
	if first != nil {
		return errors.WithMessagef(first, "%d problems", problems)
	}
	return nil
}
