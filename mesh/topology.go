package mesh

import (
	"fmt"

	"github.com/osuushi/trimesh/dbg"
)

// Triangles and subsegments live in append-only arenas owned by the Mesh and
// are referred to by index. Slot 0 of each arena is a sentinel: the dummy
// triangle stands for "outside the mesh" and the dummy subsegment for "no
// segment here". Zero-valued handles therefore always point at a sentinel and
// navigation never needs a nil check.
//
// The dummy triangle's first neighbor slot is overwritten whenever a hull
// triangle is bonded to the outside, so it always holds some hull triangle.
// Point location uses it as a fallback starting point.

var (
	plus1Mod3  = [3]int{1, 2, 0}
	minus1Mod3 = [3]int{2, 0, 1}
)

// Triangle is an arena slot. Vertex i is the apex of orientation i, and
// neighbor i lies across the edge opposite vertex i.
type Triangle struct {
	id        int
	vertices  [3]*Vertex
	neighbors [3]Otri
	subsegs   [3]Osub
	region    int
	area      float64
	infected  bool
	dead      bool
}

// Segment is a subsegment: one mesh edge of a possibly subdivided input
// segment. Vertices 0 and 1 are the current endpoints, 2 and 3 the endpoints
// of the original segment, which survive splitting.
type Segment struct {
	id        int
	vertices  [4]*Vertex
	subsegs   [2]Osub
	triangles [2]Otri
	label     int
	dead      bool
}

// Otri is an oriented triangle: a directed edge cursor. It is a small value
// and all navigation returns a new one.
type Otri struct {
	tri    int
	orient int
}

// Osub is an oriented subsegment.
type Osub struct {
	seg    int
	orient int
}

// IsDummy reports whether t refers to the outside of the mesh.
func (t Otri) IsDummy() bool { return t.tri == 0 }

func (t Otri) Lnext() Otri { return Otri{t.tri, plus1Mod3[t.orient]} }
func (t Otri) Lprev() Otri { return Otri{t.tri, minus1Mod3[t.orient]} }

// ID is the arena index of the triangle.
func (t Otri) ID() int { return t.tri }

func (t Otri) String() string {
	return fmt.Sprintf("%s/%d", dbg.Handle('t', t.tri), t.orient)
}

// IsDummy reports whether s is the "no segment" sentinel.
func (s Osub) IsDummy() bool { return s.seg == 0 }

func (s Osub) Sym() Osub { return Osub{s.seg, 1 - s.orient} }

func (s Osub) ID() int { return s.seg }

func (s Osub) String() string {
	return fmt.Sprintf("%s/%d", dbg.Handle('s', s.seg), s.orient)
}

// Triangle navigation.

func (m *Mesh) Org(t Otri) *Vertex  { return m.tris[t.tri].vertices[plus1Mod3[t.orient]] }
func (m *Mesh) Dest(t Otri) *Vertex { return m.tris[t.tri].vertices[minus1Mod3[t.orient]] }
func (m *Mesh) Apex(t Otri) *Vertex { return m.tris[t.tri].vertices[t.orient] }

func (m *Mesh) setOrg(t Otri, v *Vertex)  { m.tris[t.tri].vertices[plus1Mod3[t.orient]] = v }
func (m *Mesh) setDest(t Otri, v *Vertex) { m.tris[t.tri].vertices[minus1Mod3[t.orient]] = v }
func (m *Mesh) setApex(t Otri, v *Vertex) { m.tris[t.tri].vertices[t.orient] = v }

// Sym returns the same edge seen from the neighboring triangle.
func (m *Mesh) Sym(t Otri) Otri { return m.tris[t.tri].neighbors[t.orient] }

// Onext rotates counterclockwise around the origin.
func (m *Mesh) Onext(t Otri) Otri { return m.Sym(t.Lprev()) }

// Oprev rotates clockwise around the origin.
func (m *Mesh) Oprev(t Otri) Otri { return m.Sym(t).Lnext() }

// Dnext rotates counterclockwise around the destination.
func (m *Mesh) Dnext(t Otri) Otri { return m.Sym(t).Lprev() }

// Dprev rotates clockwise around the destination.
func (m *Mesh) Dprev(t Otri) Otri { return m.Sym(t.Lnext()) }

// Rnext moves one edge counterclockwise about the adjacent triangle.
func (m *Mesh) Rnext(t Otri) Otri { return m.Sym(m.Sym(t).Lnext()) }

// Rprev moves one edge clockwise about the adjacent triangle.
func (m *Mesh) Rprev(t Otri) Otri { return m.Sym(m.Sym(t).Lprev()) }

func (m *Mesh) bond(a, b Otri) {
	m.tris[a.tri].neighbors[a.orient] = b
	m.tris[b.tri].neighbors[b.orient] = a
}

// dissolve detaches a from its neighbor without touching the neighbor.
func (m *Mesh) dissolve(a Otri) {
	m.tris[a.tri].neighbors[a.orient] = Otri{}
}

// SegPivot returns the subsegment bound to the edge, or the dummy.
func (m *Mesh) SegPivot(t Otri) Osub { return m.tris[t.tri].subsegs[t.orient] }

// segBond binds s and t to each other. Bonding to the dummy triangle
// records only the subsegment's side.
func (m *Mesh) segBond(t Otri, s Osub) {
	if !t.IsDummy() {
		m.tris[t.tri].subsegs[t.orient] = s
	}
	m.subsegs[s.seg].triangles[s.orient] = t
}

func (m *Mesh) segDissolve(t Otri) {
	m.tris[t.tri].subsegs[t.orient] = Osub{}
}

func (m *Mesh) infect(t Otri)            { m.tris[t.tri].infected = true }
func (m *Mesh) uninfect(t Otri)          { m.tris[t.tri].infected = false }
func (m *Mesh) isInfected(t Otri) bool   { return m.tris[t.tri].infected }
func (m *Mesh) isDead(t Otri) bool       { return m.tris[t.tri].dead }
func (m *Mesh) region(t Otri) int        { return m.tris[t.tri].region }
func (m *Mesh) setRegion(t Otri, r int)  { m.tris[t.tri].region = r }
func (m *Mesh) areaBound(t Otri) float64 { return m.tris[t.tri].area }

func (m *Mesh) setAreaBound(t Otri, a float64) { m.tris[t.tri].area = a }

// Subsegment navigation.

func (m *Mesh) SubOrg(s Osub) *Vertex  { return m.subsegs[s.seg].vertices[s.orient] }
func (m *Mesh) SubDest(s Osub) *Vertex { return m.subsegs[s.seg].vertices[1-s.orient] }

// SegOrg and SegDest return the endpoints of the original input segment.
func (m *Mesh) SegOrg(s Osub) *Vertex  { return m.subsegs[s.seg].vertices[2+s.orient] }
func (m *Mesh) SegDest(s Osub) *Vertex { return m.subsegs[s.seg].vertices[3-s.orient] }

func (m *Mesh) setSubOrg(s Osub, v *Vertex)  { m.subsegs[s.seg].vertices[s.orient] = v }
func (m *Mesh) setSubDest(s Osub, v *Vertex) { m.subsegs[s.seg].vertices[1-s.orient] = v }
func (m *Mesh) setSegOrg(s Osub, v *Vertex)  { m.subsegs[s.seg].vertices[2+s.orient] = v }
func (m *Mesh) setSegDest(s Osub, v *Vertex) { m.subsegs[s.seg].vertices[3-s.orient] = v }

// subPivot returns the adjoining subsegment at the origin end.
func (m *Mesh) subPivot(s Osub) Osub { return m.subsegs[s.seg].subsegs[s.orient] }

// subNext returns the adjoining subsegment at the destination end.
func (m *Mesh) subNext(s Osub) Osub { return m.subsegs[s.seg].subsegs[1-s.orient] }

func (m *Mesh) subBond(a, b Osub) {
	m.subsegs[a.seg].subsegs[a.orient] = b
	m.subsegs[b.seg].subsegs[b.orient] = a
}

// TriPivot returns the triangle on the left of the subsegment.
func (m *Mesh) TriPivot(s Osub) Otri { return m.subsegs[s.seg].triangles[s.orient] }

func (m *Mesh) triDissolve(s Osub) {
	m.subsegs[s.seg].triangles[s.orient] = Otri{}
}

func (m *Mesh) Label(s Osub) int           { return m.subsegs[s.seg].label }
func (m *Mesh) setLabel(s Osub, label int) { m.subsegs[s.seg].label = label }
