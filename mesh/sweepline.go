package mesh

import (
	"container/heap"
	"math"

	"github.com/golang/geo/r2"
	"go.uber.org/zap"
)

// The sweep-line builder is Fortune's algorithm run on the triangulation
// directly. A horizontal line sweeps upward. Vertex events add a vertex to
// the front, a chain of ghost triangles bounding the triangulation so far.
// Circle events fire when the line passes the top of the circumcircle of
// three consecutive front vertices, and remove the middle one from the front
// with a flip. A splay tree of front edges, sampled at random, speeds up
// finding where a new vertex meets the front.

// One front edge in sampleRate is added to the splay tree.
const sampleRate = 10

type sweepEvent struct {
	x, y   float64
	vertex *Vertex // nil for circle events
	tri    Otri    // the ghost a circle event flips
	index  int
}

// frontEdge names a ghost by its two real vertices. A directed edge belongs
// to one triangle only, and the name does not depend on which vertex slots
// the ghost uses, so flips elsewhere in the front leave it intact.
type frontEdge struct {
	dest, apex *Vertex
}

type eventHeap []*sweepEvent

func (h eventHeap) Len() int { return len(h) }

// Less orders events bottom to top, then left to right. Coincident vertices
// come out lowest ID first, so that copy is the one kept.
func (h eventHeap) Less(i, j int) bool {
	a, b := h[i], h[j]
	if a.y != b.y {
		return a.y < b.y
	}
	if a.x != b.x {
		return a.x < b.x
	}
	if a.vertex == nil || b.vertex == nil {
		return a.vertex == nil && b.vertex != nil
	}
	return a.vertex.ID < b.vertex.ID
}

func (h eventHeap) Swap(i, j int) {
	h[i], h[j] = h[j], h[i]
	h[i].index = i
	h[j].index = j
}

func (h *eventHeap) Push(x interface{}) {
	e := x.(*sweepEvent)
	e.index = len(*h)
	*h = append(*h, e)
}

func (h *eventHeap) Pop() interface{} {
	old := *h
	e := old[len(old)-1]
	*h = old[:len(old)-1]
	e.index = -1
	return e
}

type splayNode struct {
	keyEdge     Otri
	keyDest     *Vertex
	left, right *splayNode
}

// sweep holds the state of one sweep-line run.
type sweep struct {
	m      *Mesh
	events eventHeap
	// circle holds the pending circle event of each ghost.
	circle  map[frontEdge]*sweepEvent
	root    *splayNode
	xMinExt float64
}

func (m *Mesh) sweepLineDelaunay() int {
	lo, hi := m.bounds.Lo(), m.bounds.Hi()
	s := &sweep{
		m:       m,
		circle:  make(map[frontEdge]*sweepEvent),
		xMinExt: 10*lo.X - 9*hi.X,
	}
	s.events = make(eventHeap, 0, 3*m.inputCount/2)
	for _, v := range m.vertices[:m.inputCount] {
		heap.Push(&s.events, &sweepEvent{x: v.X, y: v.Y, vertex: v})
	}

	left := m.makeTriangle()
	right := m.makeTriangle()
	m.bond(left, right)
	left, right = left.Lnext(), right.Lprev()
	m.bond(left, right)
	left, right = left.Lnext(), right.Lprev()
	m.bond(left, right)

	first := heap.Pop(&s.events).(*sweepEvent).vertex
	var second *Vertex
	for {
		if s.events.Len() == 0 {
			fatal(ErrTooFewVertices)
		}
		second = heap.Pop(&s.events).(*sweepEvent).vertex
		if second.Point != first.Point {
			break
		}
		m.markDuplicate(second)
	}
	m.setOrg(left, first)
	m.setDest(left, second)
	m.setOrg(right, second)
	m.setDest(right, first)
	bottommost := left.Lprev()
	last := second

	var farLeftTri, farRightTri Otri
	for s.events.Len() > 0 {
		ev := heap.Pop(&s.events).(*sweepEvent)
		check := true

		if ev.vertex == nil {
			flipTri := ev.tri
			if s.circle[s.front(flipTri)] != ev {
				// The front moved on without this event being removed.
				continue
			}
			delete(s.circle, s.front(flipTri))
			farLeftTri = m.Oprev(flipTri)
			s.killEvent(farLeftTri)
			farRightTri = m.Onext(flipTri)
			s.killEvent(farRightTri)
			if farLeftTri == bottommost {
				bottommost = flipTri.Lprev()
			}
			m.flip(flipTri)
			m.setApex(flipTri, nil)
			left = flipTri.Lprev()
			right = flipTri.Lnext()
			farLeftTri = m.Sym(left)
			if m.rand.Intn(sampleRate) == 0 {
				flipTri = m.Sym(flipTri)
				s.root = s.circleTopInsert(s.root, left, m.Dest(flipTri), m.Apex(flipTri), m.Org(flipTri), ev.y)
			}
		} else {
			v := ev.vertex
			if v.Point == last.Point {
				m.markDuplicate(v)
				check = false
			} else {
				last = v
				var search Otri
				var farRightFlag bool
				search, farRightFlag = s.frontLocate(bottommost, v.Point)
				s.killEvent(search)

				farRightTri = search
				farLeftTri = m.Sym(search)
				left = m.makeTriangle()
				right = m.makeTriangle()
				connect := m.Dest(farRightTri)
				m.setOrg(left, connect)
				m.setDest(left, v)
				m.setOrg(right, v)
				m.setDest(right, connect)
				m.bond(left, right)
				left, right = left.Lnext(), right.Lprev()
				m.bond(left, right)
				left, right = left.Lnext(), right.Lprev()
				m.bond(left, farLeftTri)
				m.bond(right, farRightTri)
				if !farRightFlag && farRightTri == bottommost {
					bottommost = left
				}
				if m.rand.Intn(sampleRate) == 0 {
					s.root = s.splayInsert(s.root, left, v.Point)
				}
			}
		}

		if check {
			lv, mv, rv := m.Apex(farLeftTri), m.Dest(left), m.Apex(left)
			if lv != nil && mv != nil && rv != nil {
				if test := m.ccw(lv, mv, rv); test > 0 {
					s.addCircleEvent(left, circleTop(lv.Point, mv.Point, rv.Point, test))
				}
			}
			lv, mv, rv = m.Apex(right), m.Org(right), m.Apex(farRightTri)
			if lv != nil && mv != nil && rv != nil {
				if test := m.ccw(lv, mv, rv); test > 0 {
					s.addCircleEvent(farRightTri, circleTop(lv.Point, mv.Point, rv.Point, test))
				}
			}
		}
	}

	hull := m.removeGhosts(bottommost.Lprev())
	// Events are ordered by circle tops computed in floating point, so
	// nearly cocircular vertices can be processed out of order. Fix the few
	// edges that leaves behind with the exact test.
	m.legalize(m.liveTriangles())
	return hull
}

func (m *Mesh) markDuplicate(v *Vertex) {
	v.Type = UndeadVertex
	m.undeads++
	m.logger.Debug("duplicate vertex ignored", zap.Stringer("vertex", v))
}

// front names the ghost t, whose origin is nil.
func (s *sweep) front(t Otri) frontEdge {
	return frontEdge{dest: s.m.Dest(t), apex: s.m.Apex(t)}
}

func (s *sweep) addCircleEvent(t Otri, top float64) {
	ev := &sweepEvent{x: s.xMinExt, y: top, tri: t}
	heap.Push(&s.events, ev)
	s.circle[s.front(t)] = ev
}

// killEvent removes the circle event stored at the ghost t, if any. The
// front changed there, so the three vertices are no longer consecutive.
func (s *sweep) killEvent(t Otri) {
	key := s.front(t)
	ev, ok := s.circle[key]
	if !ok {
		return
	}
	delete(s.circle, key)
	if ev.index >= 0 {
		heap.Remove(&s.events, ev.index)
	}
}

// rightOfHyperbola reports whether p lies to the right of the hyperbola
// traced by the front edge as the sweep line moves up.
func (s *sweep) rightOfHyperbola(front Otri, p r2.Point) bool {
	leftV := s.m.Dest(front)
	rightV := s.m.Apex(front)
	if leftV.Y < rightV.Y || (leftV.Y == rightV.Y && leftV.X < rightV.X) {
		if p.X >= rightV.X {
			return true
		}
	} else if p.X <= leftV.X {
		return false
	}
	dxa := leftV.X - p.X
	dya := leftV.Y - p.Y
	dxb := rightV.X - p.X
	dyb := rightV.Y - p.Y
	return dya*(dxb*dxb+dyb*dyb) > dyb*(dxa*dxa+dya*dya)
}

// circleTop is the y coordinate of the top of the circle through a, b, c.
func circleTop(a, b, c r2.Point, ccwabc float64) float64 {
	xac := a.X - c.X
	yac := a.Y - c.Y
	xbc := b.X - c.X
	ybc := b.Y - c.Y
	xab := a.X - b.X
	yab := a.Y - b.Y
	aclen2 := xac*xac + yac*yac
	bclen2 := xbc*xbc + ybc*ybc
	ablen2 := xab*xab + yab*yab
	return c.Y + (xac*bclen2-xbc*aclen2+math.Sqrt(aclen2*bclen2*ablen2))/(2*ccwabc)
}

// splay searches the tree for the front edge just left of p, recording in
// found the last edge p was right of. Nodes whose edges have since left the
// front are dropped along the way.
func (s *sweep) splay(root *splayNode, p r2.Point, found *Otri) *splayNode {
	if root == nil {
		return nil
	}
	if s.m.Dest(root.keyEdge) == root.keyDest {
		rightOfRoot := s.rightOfHyperbola(root.keyEdge, p)
		var child *splayNode
		if rightOfRoot {
			*found = root.keyEdge
			child = root.right
		} else {
			child = root.left
		}
		if child == nil {
			return root
		}
		if s.m.Dest(child.keyEdge) != child.keyDest {
			child = s.splay(child, p, found)
			if child == nil {
				if rightOfRoot {
					root.right = nil
				} else {
					root.left = nil
				}
				return root
			}
		}
		rightOfChild := s.rightOfHyperbola(child.keyEdge, p)
		var grandchild *splayNode
		if rightOfChild {
			*found = child.keyEdge
			grandchild = s.splay(child.right, p, found)
			child.right = grandchild
		} else {
			grandchild = s.splay(child.left, p, found)
			child.left = grandchild
		}
		if grandchild == nil {
			if rightOfRoot {
				root.right = child.left
				child.left = root
			} else {
				root.left = child.right
				child.right = root
			}
			return child
		}
		if rightOfChild {
			if rightOfRoot {
				root.right = child.left
				child.left = root
			} else {
				root.left = grandchild.right
				grandchild.right = root
			}
			child.right = grandchild.left
			grandchild.left = child
		} else {
			if rightOfRoot {
				root.right = grandchild.left
				grandchild.left = root
			} else {
				root.left = child.right
				child.right = root
			}
			child.left = grandchild.right
			grandchild.right = child
		}
		return grandchild
	}

	// Stale node: splice its subtrees together.
	l := s.splay(root.left, p, found)
	r := s.splay(root.right, p, found)
	switch {
	case l == nil:
		return r
	case r == nil:
		return l
	case l.right == nil:
		l.right = r.left
		r.left = l
		return r
	case r.left == nil:
		r.left = l.right
		l.right = r
		return l
	}
	lr := l.right
	for lr.right != nil {
		lr = lr.right
	}
	lr.right = r
	return l
}

func (s *sweep) splayInsert(root *splayNode, key Otri, p r2.Point) *splayNode {
	n := &splayNode{keyEdge: key, keyDest: s.m.Dest(key)}
	switch {
	case root == nil:
	case s.rightOfHyperbola(root.keyEdge, p):
		n.left = root
		n.right = root.right
		root.right = nil
	default:
		n.left = root.left
		n.right = root
		root.left = nil
	}
	return n
}

// circleTopInsert adds the front edge created by a circle event, keyed at the
// top of the circle through a, b and c.
func (s *sweep) circleTopInsert(root *splayNode, key Otri, a, b, c *Vertex, topY float64) *splayNode {
	ccwabc := s.m.ccw(a, b, c)
	xac := a.X - c.X
	yac := a.Y - c.Y
	xbc := b.X - c.X
	ybc := b.Y - c.Y
	aclen2 := xac*xac + yac*yac
	bclen2 := xbc*xbc + ybc*ybc
	p := r2.Point{X: c.X - (yac*bclen2-ybc*aclen2)/(2*ccwabc), Y: topY}
	var ignored Otri
	return s.splayInsert(s.splay(root, p, &ignored), key, p)
}

// frontLocate finds the front edge above which p enters. farRight reports
// that the walk wrapped around to the bottommost edge.
func (s *sweep) frontLocate(bottommost Otri, p r2.Point) (Otri, bool) {
	search := bottommost
	s.root = s.splay(s.root, p, &search)
	farRight := false
	for !farRight && s.rightOfHyperbola(search, p) {
		search = s.m.Onext(search)
		farRight = search == bottommost
	}
	return search, farRight
}
