package mesh

import (
	"container/heap"
	"math"

	"github.com/golang/geo/r2"
	"go.uber.org/zap"
)

// Ruppert's refinement. Encroached subsegments are split first, always;
// then bad triangles are split at their off-centers (or wherever the
// optimizer proposes) in order of increasing shortest edge. A new vertex
// that would encroach upon a subsegment is taken back out, and the
// subsegment is split instead.

type qualityState struct {
	steiner     int
	relocations int
	// steinerLeft counts down from the budget; negative means unlimited.
	steinerLeft int

	encroached []encroachedSub
	bad        badQueue
	seq        int

	// goodAngle is cos^2 of the minimum angle, maxCos the cosine of the
	// maximum angle.
	goodAngle   float64
	maxCos      float64
	offConstant float64
	diametral   bool

	relocated map[*Vertex]bool
}

type encroachedSub struct {
	sub       Osub
	org, dest *Vertex
}

type badTriangle struct {
	tri             Otri
	key             float64
	org, dest, apex *Vertex
	seq             int
}

type badQueue []*badTriangle

func (q badQueue) Len() int { return len(q) }

func (q badQueue) Less(i, j int) bool {
	if q[i].key != q[j].key {
		return q[i].key < q[j].key
	}
	return q[i].seq < q[j].seq
}

func (q badQueue) Swap(i, j int)       { q[i], q[j] = q[j], q[i] }
func (q *badQueue) Push(x interface{}) { *q = append(*q, x.(*badTriangle)) }

func (q *badQueue) Pop() interface{} {
	old := *q
	b := old[len(old)-1]
	*q = old[:len(old)-1]
	return b
}

func (m *Mesh) hasQualityBounds() bool {
	o := &m.opts
	return o.MinAngle > 0 || o.MaxAngle > 0 || o.MaxArea > 0 || o.VarArea
}

func (m *Mesh) enforceQuality() {
	q := &m.quality
	cosMin := math.Cos(m.opts.MinAngle * math.Pi / 180)
	q.goodAngle = cosMin * cosMin
	if cosMin == 1 || !m.opts.OffCenter {
		q.offConstant = 0
	} else {
		q.offConstant = 0.475 * math.Sqrt((1+cosMin)/(1-cosMin))
	}
	q.maxCos = -1
	if m.opts.MaxAngle > 0 {
		q.maxCos = math.Cos(m.opts.MaxAngle * math.Pi / 180)
	}
	q.diametral = m.opts.MinAngle > 0 || m.opts.MaxAngle > 0
	q.relocated = make(map[*Vertex]bool)

	m.checkQuality = true
	defer func() {
		m.checkQuality = false
		m.flipStack = m.flipStack[:0]
		q.encroached = nil
		q.bad = nil
	}()

	for _, s := range m.liveSubsegments() {
		m.checkSegEncroach(s)
	}
	m.splitEncSegs(false)

	if m.hasQualityBounds() {
		for _, t := range m.liveTriangles() {
			m.testTriangle(t)
		}
		for q.bad.Len() > 0 && q.steinerLeft != 0 {
			b := heap.Pop(&q.bad).(*badTriangle)
			m.splitBadTriangle(b)
			if len(q.encroached) > 0 {
				// Try this triangle again once the subsegments are split.
				heap.Push(&q.bad, b)
				m.splitEncSegs(true)
			}
		}
	}

	fields := []zap.Field{
		zap.Int("steiner", q.steiner),
		zap.Int("relocations", q.relocations),
		zap.Int("triangles", m.liveTris),
	}
	if q.steinerLeft == 0 && (q.bad.Len() > 0 || len(q.encroached) > 0) {
		m.logger.Warn("steiner budget exhausted before refinement finished",
			append(fields, zap.Int("bad", q.bad.Len()), zap.Int("encroached", len(q.encroached)))...)
		return
	}
	m.logger.Debug("refinement finished", fields...)
}

func (m *Mesh) spendSteiner() {
	m.quality.steiner++
	if m.quality.steinerLeft > 0 {
		m.quality.steinerLeft--
	}
}

func (m *Mesh) enqueueEncroached(s Osub) {
	m.quality.encroached = append(m.quality.encroached, encroachedSub{
		sub:  s,
		org:  m.SubOrg(s),
		dest: m.SubDest(s),
	})
}

// checkSegEncroach reports whether a vertex on either side of s lies inside
// its diametral circle, and queues s if so.
func (m *Mesh) checkSegEncroach(s Osub) bool {
	if !m.quality.diametral {
		return false
	}
	org := m.SubOrg(s)
	dest := m.SubDest(s)
	encroached := 0
	side := s
	for i := 0; i < 2; i++ {
		if n := m.TriPivot(side); !n.IsDummy() && !m.isDead(n) {
			if apex := m.Apex(n); apex != nil {
				dot := (org.X-apex.X)*(dest.X-apex.X) + (org.Y-apex.Y)*(dest.Y-apex.Y)
				if dot < 0 && encroached == 0 {
					encroached = i + 1
				}
			}
		}
		side = side.Sym()
	}
	switch encroached {
	case 1:
		m.enqueueEncroached(s)
	case 2:
		m.enqueueEncroached(s.Sym())
	}
	return encroached != 0
}

// testTriangle queues t if it is too large or has an angle out of bounds.
func (m *Mesh) testTriangle(t Otri) {
	q := &m.quality
	if m.isDead(t) {
		return
	}
	torg, tdest, tapex := m.Org(t), m.Dest(t), m.Apex(t)
	if torg == nil || tdest == nil || tapex == nil {
		return
	}
	dxod := torg.X - tdest.X
	dyod := torg.Y - tdest.Y
	dxda := tdest.X - tapex.X
	dyda := tdest.Y - tapex.Y
	dxao := tapex.X - torg.X
	dyao := tapex.Y - torg.Y
	dxod2 := dxod*dxod + dyod*dyod
	dxda2 := dxda*dxda + dyda*dyda
	dxao2 := dxao*dxao + dyao*dyao

	// The smallest angle is opposite the shortest edge; dot is its cos^2.
	var minEdge, dot float64
	var base1, base2 *Vertex
	var edge Otri
	switch {
	case dxod2 < dxda2 && dxod2 < dxao2:
		minEdge = dxod2
		dot = dxda*dxao + dyda*dyao
		dot = dot * dot / (dxda2 * dxao2)
		base1, base2, edge = torg, tdest, t
	case dxda2 < dxao2:
		minEdge = dxda2
		dot = dxod*dxao + dyod*dyao
		dot = dot * dot / (dxod2 * dxao2)
		base1, base2, edge = tdest, tapex, t.Lnext()
	default:
		minEdge = dxao2
		dot = dxod*dxda + dyod*dyda
		dot = dot * dot / (dxod2 * dxda2)
		base1, base2, edge = tapex, torg, t.Lprev()
	}

	area := 0.5 * (dxod*dyda - dyod*dxda)
	if m.opts.MaxArea > 0 && area > m.opts.MaxArea {
		m.enqueueBad(t, minEdge, torg, tdest, tapex)
		return
	}
	if m.opts.VarArea && m.areaBound(t) > 0 && area > m.areaBound(t) {
		m.enqueueBad(t, minEdge, torg, tdest, tapex)
		return
	}

	if q.maxCos > -1 {
		// The largest angle is opposite the longest edge.
		a2, b2, c2 := dxod2, dxda2, dxao2
		if b2 > a2 {
			a2, b2 = b2, a2
		}
		if c2 > a2 {
			a2, c2 = c2, a2
		}
		if cosMax := (b2 + c2 - a2) / (2 * math.Sqrt(b2*c2)); cosMax < q.maxCos {
			m.enqueueBad(t, minEdge, torg, tdest, tapex)
			return
		}
	}

	if m.opts.MinAngle <= 0 || dot <= q.goodAngle {
		return
	}
	// A small angle between two input segments cannot be fixed. Splitting a
	// triangle whose shortest edge spans such an angle, with both ends at the
	// same distance from the apex of the angle, only makes it worse.
	if base1.Type == SegmentVertex && base2.Type == SegmentVertex && m.spansSmallInputAngle(edge, base1, base2) {
		return
	}
	m.enqueueBad(t, minEdge, torg, tdest, tapex)
}

// spansSmallInputAngle reports whether edge (base1 to base2) joins two
// segments that meet at a common vertex, at equal distances from it.
func (m *Mesh) spansSmallInputAngle(edge Otri, base1, base2 *Vertex) bool {
	if !m.SegPivot(edge).IsDummy() {
		return false
	}
	limit := 3 * len(m.tris)
	var org1, dest1, org2, dest2 *Vertex
	t := edge
	for i := 0; ; i++ {
		t = m.Oprev(t)
		if t.IsDummy() || i > limit {
			return false
		}
		if s := m.SegPivot(t); !s.IsDummy() {
			org1, dest1 = m.SegOrg(s), m.SegDest(s)
			break
		}
	}
	t = edge
	for i := 0; ; i++ {
		t = m.Dnext(t)
		if t.IsDummy() || i > limit {
			return false
		}
		if s := m.SegPivot(t); !s.IsDummy() {
			org2, dest2 = m.SegOrg(s), m.SegDest(s)
			break
		}
	}
	var join *Vertex
	switch {
	case dest1.Point == org2.Point:
		join = dest1
	case org1.Point == dest2.Point:
		join = org1
	default:
		return false
	}
	d1 := dist2(base1.Point, join.Point)
	d2 := dist2(base2.Point, join.Point)
	return d1 < 1.001*d2 && d1 > 0.999*d2
}

func (m *Mesh) enqueueBad(t Otri, key float64, org, dest, apex *Vertex) {
	q := &m.quality
	q.seq++
	heap.Push(&q.bad, &badTriangle{tri: t, key: key, org: org, dest: dest, apex: apex, seq: q.seq})
}

// splitEncSegs splits queued subsegments until none are encroached or the
// Steiner budget runs out.
func (m *Mesh) splitEncSegs(triFlaws bool) {
	q := &m.quality
	for len(q.encroached) > 0 && q.steinerLeft != 0 {
		e := q.encroached[0]
		q.encroached = q.encroached[1:]
		s := e.sub
		if m.subsegs[s.seg].dead || m.SubOrg(s) != e.org || m.SubDest(s) != e.dest {
			continue
		}
		eorg, edest := e.org, e.dest

		enc := m.TriPivot(s)
		test := enc.Lnext()
		acuteOrg := !m.SegPivot(test).IsDummy()
		test = test.Lnext()
		acuteDest := !m.SegPivot(test).IsDummy()

		// Free vertices inside the diametral circle are removed first; their
		// replacements would encroach again.
		if !acuteOrg && !acuteDest {
			apex := m.Apex(enc)
			for apex.Type == FreeVertex && encroaches(eorg, edest, apex) {
				m.deleteVertex(test)
				enc = m.TriPivot(s)
				apex = m.Apex(enc)
				test = enc.Lprev()
			}
		}
		if test = m.Sym(enc); !test.IsDummy() {
			test = test.Lnext()
			acuteDest2 := !m.SegPivot(test).IsDummy()
			acuteDest = acuteDest || acuteDest2
			test = test.Lnext()
			acuteOrg2 := !m.SegPivot(test).IsDummy()
			acuteOrg = acuteOrg || acuteOrg2
			if !acuteOrg2 && !acuteDest2 {
				apex := m.Org(test)
				for apex.Type == FreeVertex && encroaches(eorg, edest, apex) {
					m.deleteVertex(test)
					test = m.Sym(enc)
					apex = m.Apex(test)
					test = test.Lprev()
				}
			}
		}

		// Split at a power of two from a shared vertex so that the pieces
		// of segments meeting at a small angle line up on concentric shells.
		split := 0.5
		if acuteOrg || acuteDest {
			length := dist(eorg.Point, edest.Point)
			pow := 1.0
			for length > 3*pow {
				pow *= 2
			}
			for length < 1.5*pow {
				pow *= 0.5
			}
			split = pow / length
			if acuteDest {
				split = 1 - split
			}
		}

		p := r2.Point{X: eorg.X + split*(edest.X-eorg.X), Y: eorg.Y + split*(edest.Y-eorg.Y)}
		if p == eorg.Point || p == edest.Point {
			m.logger.Warn("subsegment too short to split",
				zap.Stringer("org", eorg), zap.Stringer("dest", edest))
			continue
		}
		v := m.makeVertex(p, SegmentVertex)
		v.Attributes = lerpAttrs(eorg.Attributes, edest.Attributes, split)
		v.Label = m.Label(s)

		if _, result := m.InsertVertex(v, enc, s, true, triFlaws); result != Successful && result != Encroaching {
			fatalf(ErrTopology, "splitting encroached subsegment at %v: %v", v, result)
		}
		m.spendSteiner()
		m.checkSegEncroach(s)
		m.checkSegEncroach(m.subNext(s))
	}
}

func encroaches(org, dest, apex *Vertex) bool {
	return (org.X-apex.X)*(dest.X-apex.X)+(org.Y-apex.Y)*(dest.Y-apex.Y) < 0
}

// splitBadTriangle inserts a new vertex into (or relocates a vertex of) a
// queued triangle, if it is still in the mesh.
func (m *Mesh) splitBadTriangle(b *badTriangle) {
	t := b.tri
	if m.isDead(t) || m.Org(t) != b.org || m.Dest(t) != b.dest || m.Apex(t) != b.apex {
		return
	}

	prop := m.newLocation(t)
	if prop.Relocate != nil {
		m.relocate(prop)
		return
	}
	p := prop.Point
	if p == b.org.Point || p == b.dest.Point || p == b.apex.Point {
		m.logger.Warn("new vertex coincides with a triangle corner",
			zap.Float64("x", p.X), zap.Float64("y", p.Y))
		return
	}

	v := m.makeVertex(p, FreeVertex)
	v.Attributes = baryAttrs(b.org.Attributes, b.dest.Attributes, b.apex.Attributes, prop.Xi, prop.Eta)
	// Start point location from an edge the new vertex is to the left of.
	if prop.Eta < prop.Xi {
		t = t.Lprev()
	}
	_, result := m.InsertVertex(v, t, Osub{}, true, true)
	switch result {
	case Successful:
		m.spendSteiner()
	case Encroaching:
		m.undoVertex()
		m.discardVertex(v)
	case Violating:
		m.discardVertex(v)
	case Duplicate:
		m.logger.Warn("new vertex duplicates an existing one", zap.Stringer("vertex", v))
		m.discardVertex(v)
	}
}

// relocate moves a free vertex by deleting it and inserting a replacement.
func (m *Mesh) relocate(prop Proposal) {
	old := prop.Relocate
	t, ok := m.vertexTriangle(old)
	if !ok {
		return
	}
	m.deleteVertex(t)
	v := m.makeVertex(prop.Point, FreeVertex)
	v.Attributes = prop.Attributes

	if _, result := m.InsertVertex(v, Otri{}, Osub{}, true, true); result == Duplicate || result == Violating {
		// The mesh is unchanged by a refused insertion, so the old position
		// is still inside the cavity the deletion left.
		m.discardVertex(v)
		old.Type = FreeVertex
		if _, restored := m.InsertVertex(old, Otri{}, Osub{}, false, true); restored != Successful {
			fatalf(ErrTopology, "cannot restore %v after a refused relocation (%v)", old, restored)
		}
		m.quality.relocated[old] = true
		m.logger.Debug("relocation refused", zap.Stringer("vertex", old), zap.Stringer("result", result))
		return
	}
	m.quality.relocated[v] = true
	m.quality.relocations++
	m.logger.Debug("vertex relocated", zap.Stringer("from", old), zap.Stringer("to", v))
}

// discardVertex drops a vertex that never made it into the mesh. Its slot
// stays, so IDs are never reused.
func (m *Mesh) discardVertex(v *Vertex) {
	v.Type = DeadVertex
	v.tri = Otri{}
}

func baryAttrs(a, b, c []float64, xi, eta float64) []float64 {
	if len(a) == 0 || len(a) != len(b) || len(a) != len(c) {
		return nil
	}
	out := make([]float64, len(a))
	for i := range a {
		out[i] = a[i] + xi*(b[i]-a[i]) + eta*(c[i]-a[i])
	}
	return out
}
