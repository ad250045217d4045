package mesh

import (
	"go.uber.org/zap"
)

// InsertResult is the outcome of InsertVertex.
type InsertResult int

const (
	// Successful means the vertex is in the mesh and the mesh is Delaunay.
	Successful InsertResult = iota
	// Encroaching means the vertex was inserted but sits inside the
	// diametral circle of a subsegment, which has been queued for splitting.
	Encroaching
	// Violating means the vertex lies on a subsegment or beyond one and was
	// not inserted. The subsegment is queued when segment flaws are checked.
	Violating
	// Duplicate means a vertex already sits at the same coordinates.
	Duplicate
)

func (r InsertResult) String() string {
	switch r {
	case Successful:
		return "successful"
	case Encroaching:
		return "encroaching"
	case Violating:
		return "violating"
	}
	return "duplicate"
}

type flipKind int

const (
	flipEdge       flipKind = iota
	flipSplitTri            // one triangle became three
	flipSplitEdge           // two triangles became four
)

type flipRecord struct {
	tri  Otri
	kind flipKind
}

// flip replaces the edge e = (a, b) shared by triangles (a, b, c) and
// (b, a, d) with the edge (d, c). Afterwards e is the edge d -> c.
func (m *Mesh) flip(e Otri) {
	right := m.Org(e)
	left := m.Dest(e)
	bot := m.Apex(e)
	top := m.Sym(e)
	far := m.Apex(top)

	topLeft := top.Lprev()
	topLCasing := m.Sym(topLeft)
	topRight := top.Lnext()
	topRCasing := m.Sym(topRight)
	botLeft := e.Lnext()
	botLCasing := m.Sym(botLeft)
	botRight := e.Lprev()
	botRCasing := m.Sym(botRight)

	// Rotate the quadrilateral a quarter turn counterclockwise.
	m.bond(topLeft, botLCasing)
	m.bond(botLeft, botRCasing)
	m.bond(botRight, topRCasing)
	m.bond(topRight, topLCasing)

	if m.checkSegments {
		topLSub := m.SegPivot(topLeft)
		botLSub := m.SegPivot(botLeft)
		botRSub := m.SegPivot(botRight)
		topRSub := m.SegPivot(topRight)
		m.moveSubseg(topRight, topLSub)
		m.moveSubseg(topLeft, botLSub)
		m.moveSubseg(botLeft, botRSub)
		m.moveSubseg(botRight, topRSub)
	}

	m.setOrg(e, far)
	m.setDest(e, bot)
	m.setApex(e, right)
	m.setOrg(top, bot)
	m.setDest(top, far)
	m.setApex(top, left)
}

// unflip is the inverse of flip: it turns the quadrilateral back a quarter
// turn clockwise.
func (m *Mesh) unflip(e Otri) {
	right := m.Org(e)
	left := m.Dest(e)
	bot := m.Apex(e)
	top := m.Sym(e)
	far := m.Apex(top)

	topLeft := top.Lprev()
	topLCasing := m.Sym(topLeft)
	topRight := top.Lnext()
	topRCasing := m.Sym(topRight)
	botLeft := e.Lnext()
	botLCasing := m.Sym(botLeft)
	botRight := e.Lprev()
	botRCasing := m.Sym(botRight)

	m.bond(topLeft, topRCasing)
	m.bond(botLeft, topLCasing)
	m.bond(botRight, botLCasing)
	m.bond(topRight, botRCasing)

	if m.checkSegments {
		topLSub := m.SegPivot(topLeft)
		botLSub := m.SegPivot(botLeft)
		botRSub := m.SegPivot(botRight)
		topRSub := m.SegPivot(topRight)
		m.moveSubseg(botLeft, topLSub)
		m.moveSubseg(botRight, botLSub)
		m.moveSubseg(topRight, botRSub)
		m.moveSubseg(topLeft, topRSub)
	}

	m.setOrg(e, bot)
	m.setDest(e, far)
	m.setApex(e, left)
	m.setOrg(top, far)
	m.setDest(top, bot)
	m.setApex(top, right)
}

// moveSubseg binds s to t, or clears t if s is the dummy.
func (m *Mesh) moveSubseg(t Otri, s Osub) {
	if s.IsDummy() {
		m.segDissolve(t)
	} else {
		m.segBond(t, s)
	}
}

// copyTriangleAttrs copies the region and area bound of src to dst.
func (m *Mesh) copyTriangleAttrs(dst, src Otri) {
	m.tris[dst.tri].region = m.tris[src.tri].region
	m.tris[dst.tri].area = m.tris[src.tri].area
}

// InsertVertex adds v to the mesh and restores the (constrained) Delaunay
// property by flipping edges.
//
// If splitSeg is not the dummy, v lies on the edge start and splits both it
// and the subsegment splitSeg bound to it. Otherwise v is located starting
// from start, or from the hull when start is the dummy. With segmentFlaws
// set, subsegments the new vertex encroaches upon are queued, and so is a
// subsegment that blocks it. With triFlaws set, every triangle created is
// tested for quality.
//
// The returned handle has v as its origin when the insertion succeeded, or
// points at the obstruction otherwise.
func (m *Mesh) InsertVertex(v *Vertex, start Otri, splitSeg Osub, segmentFlaws, triFlaws bool) (Otri, InsertResult) {
	var horiz Otri
	var where LocateResult
	switch {
	case !splitSeg.IsDummy():
		horiz = start
		where = OnEdge
	case start.IsDummy():
		horiz, where = m.Locate(v.Point, m.anyLiveTriangle())
	default:
		horiz, where = m.preciseLocate(v.Point, start, true)
	}

	if where == OnVertex {
		m.recentTri = horiz
		return horiz, Duplicate
	}
	if where == Outside {
		if segmentFlaws {
			if s := m.SegPivot(horiz); !s.IsDummy() {
				m.enqueueEncroached(s)
			}
		}
		m.recentTri = horiz
		return horiz, Violating
	}

	if where == OnEdge {
		if m.checkSegments && splitSeg.IsDummy() {
			if broken := m.SegPivot(horiz); !broken.IsDummy() {
				if segmentFlaws {
					m.enqueueEncroached(broken)
				}
				m.recentTri = horiz
				return horiz, Violating
			}
		}
		horiz = m.splitEdge(v, horiz, splitSeg)
	} else {
		horiz = m.splitTriangle(v, horiz)
	}

	return m.restoreDelaunay(v, horiz, segmentFlaws, triFlaws)
}

// splitTriangle puts v inside the triangle horiz, making three triangles out
// of one. It returns the edge opposite v in the original slot.
func (m *Mesh) splitTriangle(v *Vertex, horiz Otri) Otri {
	botLeft := horiz.Lnext()
	botRight := horiz.Lprev()
	botLCasing := m.Sym(botLeft)
	botRCasing := m.Sym(botRight)

	newBotLeft := m.makeTriangle()
	newBotRight := m.makeTriangle()

	right := m.Org(horiz)
	left := m.Dest(horiz)
	bot := m.Apex(horiz)
	m.setOrg(newBotLeft, left)
	m.setDest(newBotLeft, bot)
	m.setApex(newBotLeft, v)
	m.setOrg(newBotRight, bot)
	m.setDest(newBotRight, right)
	m.setApex(newBotRight, v)
	m.setApex(horiz, v)
	m.copyTriangleAttrs(newBotLeft, horiz)
	m.copyTriangleAttrs(newBotRight, horiz)

	if m.checkSegments {
		if s := m.SegPivot(botLeft); !s.IsDummy() {
			m.segDissolve(botLeft)
			m.segBond(newBotLeft, s)
		}
		if s := m.SegPivot(botRight); !s.IsDummy() {
			m.segDissolve(botRight)
			m.segBond(newBotRight, s)
		}
	}

	m.bond(newBotLeft, botLCasing)
	m.bond(newBotRight, botRCasing)
	newBotLeft = newBotLeft.Lnext()
	newBotRight = newBotRight.Lprev()
	m.bond(newBotLeft, newBotRight)
	newBotLeft = newBotLeft.Lnext()
	m.bond(botLeft, newBotLeft)
	newBotRight = newBotRight.Lprev()
	m.bond(botRight, newBotRight)

	if m.checkQuality {
		m.flipStack = append(m.flipStack[:0], flipRecord{horiz, flipSplitTri})
	}
	return horiz
}

// splitEdge puts v on the edge horiz, splitting the triangles on both sides.
// When splitSeg is given the subsegment is split as well. It returns an edge
// opposite v.
func (m *Mesh) splitEdge(v *Vertex, horiz Otri, splitSeg Osub) Otri {
	botRight := horiz.Lprev()
	botRCasing := m.Sym(botRight)
	topRight := m.Sym(horiz)
	mirror := !topRight.IsDummy()

	var topRCasing, newTopRight Otri
	if mirror {
		topRight = topRight.Lnext()
		topRCasing = m.Sym(topRight)
		newTopRight = m.makeTriangle()
	} else {
		// v lands on the hull, which gains an edge.
		m.hullSize++
	}
	newBotRight := m.makeTriangle()

	right := m.Org(horiz)
	bot := m.Apex(horiz)
	m.setOrg(newBotRight, bot)
	m.setDest(newBotRight, right)
	m.setApex(newBotRight, v)
	m.setOrg(horiz, v)
	m.copyTriangleAttrs(newBotRight, botRight)
	if mirror {
		topVertex := m.Dest(topRight)
		m.setOrg(newTopRight, right)
		m.setDest(newTopRight, topVertex)
		m.setApex(newTopRight, v)
		m.setOrg(topRight, v)
		m.copyTriangleAttrs(newTopRight, topRight)
	}

	if m.checkSegments {
		if s := m.SegPivot(botRight); !s.IsDummy() {
			m.segDissolve(botRight)
			m.segBond(newBotRight, s)
		}
		if mirror {
			if s := m.SegPivot(topRight); !s.IsDummy() {
				m.segDissolve(topRight)
				m.segBond(newTopRight, s)
			}
		}
	}

	m.bond(newBotRight, botRCasing)
	newBotRight = newBotRight.Lprev()
	m.bond(newBotRight, botRight)
	newBotRight = newBotRight.Lprev()
	if mirror {
		m.bond(newTopRight, topRCasing)
		newTopRight = newTopRight.Lnext()
		m.bond(newTopRight, topRight)
		newTopRight = newTopRight.Lnext()
		m.bond(newTopRight, newBotRight)
	}

	if !splitSeg.IsDummy() {
		// splitSeg now ends at v; a new subsegment covers the rest.
		m.setSubDest(splitSeg, v)
		segOrg := m.SegOrg(splitSeg)
		segDest := m.SegDest(splitSeg)
		splitSeg = splitSeg.Sym()
		rightSub := m.subPivot(splitSeg)
		m.insertSubseg(newBotRight, m.Label(splitSeg))
		newSub := m.SegPivot(newBotRight)
		m.setSegOrg(newSub, segOrg)
		m.setSegDest(newSub, segDest)
		m.subBond(splitSeg, newSub)
		newSub = newSub.Sym()
		m.subBond(newSub, rightSub)
		splitSeg = splitSeg.Sym()
		if v.Label == 0 {
			v.Label = m.Label(splitSeg)
		}
	}

	if m.checkQuality {
		m.flipStack = append(m.flipStack[:0], flipRecord{horiz, flipSplitEdge})
	}
	return horiz.Lnext()
}

// restoreDelaunay walks the edges opposite the new vertex v counterclockwise,
// flipping those that are not locally Delaunay, until it is back at the first
// edge or reaches the hull.
func (m *Mesh) restoreDelaunay(v *Vertex, horiz Otri, segmentFlaws, triFlaws bool) (Otri, InsertResult) {
	result := Successful
	first := m.Org(horiz)
	right := first
	left := m.Dest(horiz)

	for {
		doFlip := true
		if m.checkSegments {
			if s := m.SegPivot(horiz); !s.IsDummy() {
				doFlip = false
				if segmentFlaws && m.checkSegEncroach(s) {
					result = Encroaching
				}
			}
		}
		if doFlip {
			top := m.Sym(horiz)
			if top.IsDummy() {
				doFlip = false
			} else {
				far := m.Apex(top)
				switch {
				case m.isInfVertex(left):
					doFlip = m.ccw(v, right, far) > 0
				case m.isInfVertex(right):
					doFlip = m.ccw(far, left, v) > 0
				case m.isInfVertex(far):
					doFlip = false
				default:
					doFlip = m.inCircle(left, v, right, far) > 0
				}
				if doFlip {
					area := m.mergedAreaBound(horiz, top)
					m.flip(horiz)
					if m.opts.VarArea {
						m.setAreaBound(horiz, area)
						m.setAreaBound(top, area)
					}
					if m.checkQuality {
						m.flipStack = append(m.flipStack, flipRecord{horiz, flipEdge})
					}
					horiz = horiz.Lprev()
					left = far
				}
			}
		}
		if !doFlip {
			if triFlaws {
				m.testTriangle(horiz)
			}
			horiz = horiz.Lnext()
			next := m.Sym(horiz)
			if left == first || next.IsDummy() {
				out := horiz.Lnext()
				m.recentTri = out
				v.tri = out
				return out, result
			}
			horiz = next.Lnext()
			right = left
			left = m.Dest(horiz)
		}
	}
}

// mergedAreaBound is the area bound two triangles share after a flip.
func (m *Mesh) mergedAreaBound(a, b Otri) float64 {
	aa := m.areaBound(a)
	ab := m.areaBound(b)
	if aa <= 0 || ab <= 0 {
		return -1
	}
	return 0.5 * (aa + ab)
}

func (m *Mesh) isInfVertex(v *Vertex) bool {
	return v != nil && (v == m.infVertices[0] || v == m.infVertices[1] || v == m.infVertices[2])
}

// undoVertex reverses the most recent insertion using the flip stack.
func (m *Mesh) undoVertex() {
	for len(m.flipStack) > 0 {
		rec := m.flipStack[len(m.flipStack)-1]
		m.flipStack = m.flipStack[:len(m.flipStack)-1]
		t := rec.tri

		switch rec.kind {
		case flipEdge:
			m.unflip(t)

		case flipSplitTri:
			botLeft := m.Dprev(t).Lnext()
			botRight := m.Onext(t).Lprev()
			botLCasing := m.Sym(botLeft)
			botRCasing := m.Sym(botRight)
			bot := m.Dest(botLeft)

			m.setApex(t, bot)
			t = t.Lnext()
			m.bond(t, botLCasing)
			m.moveSubseg(t, m.SegPivot(botLeft))
			t = t.Lnext()
			m.bond(t, botRCasing)
			m.moveSubseg(t, m.SegPivot(botRight))

			m.killTriangle(botLeft)
			m.killTriangle(botRight)

		case flipSplitEdge:
			glue := t.Lprev()
			botRight := m.Sym(glue).Lnext()
			botRCasing := m.Sym(botRight)
			right := m.Dest(botRight)

			m.setOrg(t, right)
			m.bond(glue, botRCasing)
			m.moveSubseg(glue, m.SegPivot(botRight))
			m.killTriangle(botRight)

			glue = m.Sym(t)
			if !glue.IsDummy() {
				glue = glue.Lnext()
				topRight := m.Dnext(glue)
				topRCasing := m.Sym(topRight)
				m.setOrg(glue, right)
				m.bond(glue, topRCasing)
				m.moveSubseg(glue, m.SegPivot(topRight))
				m.killTriangle(topRight)
			} else {
				m.hullSize--
			}
		}
	}
	m.recentTri = Otri{}
	m.logger.Debug("insertion undone")
}

// vertexTriangle returns an edge whose origin is v.
func (m *Mesh) vertexTriangle(v *Vertex) (Otri, bool) {
	if !v.tri.IsDummy() && !m.isDead(v.tri) && m.Org(v.tri) == v {
		return v.tri, true
	}
	t, where := m.Locate(v.Point, m.anyLiveTriangle())
	if where != OnVertex {
		m.logger.Debug("vertex not in mesh", zap.Stringer("vertex", v))
		return Otri{}, false
	}
	v.tri = t
	return t, true
}

// makeVertexMap points every vertex at a triangle it belongs to.
func (m *Mesh) makeVertexMap() {
	for _, t := range m.liveTriangles() {
		for t.orient = 0; t.orient < 3; t.orient++ {
			if v := m.Org(t); v != nil {
				v.tri = t
			}
		}
	}
}
