package mesh

import (
	"sort"

	"go.uber.org/zap"
)

// The divide-and-conquer builder follows Guibas and Stolfi with Dwyer's
// alternating cuts: the sorted vertex list is recursively split at medians,
// alternating between vertical and horizontal cuts, and sub-triangulations
// are merged bottom up. While building, each triangulation is wrapped in a
// ring of ghost triangles that have one nil vertex, so the hull can be walked
// like any other edge.

func (m *Mesh) divConqDelaunay() int {
	sorted := make([]*Vertex, m.inputCount)
	copy(sorted, m.vertices[:m.inputCount])
	sort.Slice(sorted, func(i, j int) bool {
		a, b := sorted[i], sorted[j]
		return a.lexLess(b) || a.Point == b.Point && a.ID < b.ID
	})

	// Drop duplicates; they stay in the vertex list as undead vertices. The
	// copy with the lowest ID survives.
	n := 0
	for j := 1; j < len(sorted); j++ {
		if sorted[n].Point == sorted[j].Point {
			sorted[j].Type = UndeadVertex
			m.undeads++
			m.logger.Debug("duplicate vertex ignored", zap.Stringer("vertex", sorted[j]))
			continue
		}
		n++
		sorted[n] = sorted[j]
	}
	sorted = sorted[:n+1]

	// Re-sort each half in alternating axes.
	divider := len(sorted) >> 1
	if len(sorted)-divider >= 2 {
		if divider >= 2 {
			m.alternateAxes(sorted[:divider], 1)
		}
		m.alternateAxes(sorted[divider:], 1)
	}

	farLeft, _ := m.divConqRecurse(sorted, 0)
	return m.removeGhosts(farLeft)
}

// alternateAxes arranges a so that each recursive half is split at its
// median along alternating axes. Subsets of two or three vertices are always
// sorted by x, which the base cases rely on.
func (m *Mesh) alternateAxes(a []*Vertex, axis int) {
	divider := len(a) >> 1
	if len(a) <= 3 {
		axis = 0
	}
	vertexMedian(a, divider, axis)
	if len(a)-divider >= 2 {
		if divider >= 2 {
			m.alternateAxes(a[:divider], 1-axis)
		}
		m.alternateAxes(a[divider:], 1-axis)
	}
}

func axisLess(a, b *Vertex, axis int) bool {
	if axis == 0 {
		return a.X < b.X || (a.X == b.X && a.Y < b.Y)
	}
	return a.Y < b.Y || (a.Y == b.Y && a.X < b.X)
}

// vertexMedian partially sorts a so that a[median] is in its sorted
// position along axis, with no larger element before it and no smaller
// after.
func vertexMedian(a []*Vertex, median, axis int) {
	lo, hi := 0, len(a)-1
	for hi > lo {
		if hi-lo == 1 {
			if axisLess(a[hi], a[lo], axis) {
				a[lo], a[hi] = a[hi], a[lo]
			}
			return
		}
		mid := lo + (hi-lo)>>1
		pivot := a[mid]
		a[mid], a[hi] = a[hi], a[mid]
		store := lo
		for i := lo; i < hi; i++ {
			if axisLess(a[i], pivot, axis) {
				a[i], a[store] = a[store], a[i]
				store++
			}
		}
		a[store], a[hi] = a[hi], a[store]
		switch {
		case store == median:
			return
		case store < median:
			lo = store + 1
		default:
			hi = store - 1
		}
	}
}

// divConqRecurse triangulates a and returns the ghost edges at the leftmost
// and rightmost vertices: farLeft has the leftmost vertex as origin and
// farRight the rightmost as destination.
func (m *Mesh) divConqRecurse(a []*Vertex, axis int) (farLeft, farRight Otri) {
	switch len(a) {
	case 2:
		farLeft = m.makeTriangle()
		m.setOrg(farLeft, a[0])
		m.setDest(farLeft, a[1])
		farRight = m.makeTriangle()
		m.setOrg(farRight, a[1])
		m.setDest(farRight, a[0])
		m.bond(farLeft, farRight)
		farLeft = farLeft.Lprev()
		farRight = farRight.Lnext()
		m.bond(farLeft, farRight)
		farLeft = farLeft.Lprev()
		farRight = farRight.Lnext()
		m.bond(farLeft, farRight)
		return farRight.Lprev(), farRight

	case 3:
		mid := m.makeTriangle()
		t1 := m.makeTriangle()
		t2 := m.makeTriangle()
		t3 := m.makeTriangle()
		area := m.ccw(a[0], a[1], a[2])
		if area == 0 {
			// Collinear: two edges, all apices nil.
			m.setOrg(mid, a[0])
			m.setDest(mid, a[1])
			m.setOrg(t1, a[1])
			m.setDest(t1, a[0])
			m.setOrg(t2, a[2])
			m.setDest(t2, a[1])
			m.setOrg(t3, a[1])
			m.setDest(t3, a[2])
			m.bond(mid, t1)
			m.bond(t2, t3)
			mid, t1, t2, t3 = mid.Lnext(), t1.Lprev(), t2.Lnext(), t3.Lprev()
			m.bond(mid, t3)
			m.bond(t1, t2)
			mid, t1, t2, t3 = mid.Lnext(), t1.Lprev(), t2.Lnext(), t3.Lprev()
			m.bond(mid, t1)
			m.bond(t2, t3)
			return t1, t2
		}

		// One real triangle, mid, wrapped in three ghosts.
		m.setOrg(mid, a[0])
		m.setDest(t1, a[0])
		m.setOrg(t3, a[0])
		if area > 0 {
			m.setDest(mid, a[1])
			m.setOrg(t1, a[1])
			m.setDest(t2, a[1])
			m.setApex(mid, a[2])
			m.setOrg(t2, a[2])
			m.setDest(t3, a[2])
		} else {
			m.setDest(mid, a[2])
			m.setOrg(t1, a[2])
			m.setDest(t2, a[2])
			m.setApex(mid, a[1])
			m.setOrg(t2, a[1])
			m.setDest(t3, a[1])
		}
		m.bond(mid, t1)
		mid = mid.Lnext()
		m.bond(mid, t2)
		mid = mid.Lnext()
		m.bond(mid, t3)
		t1 = t1.Lprev()
		t2 = t2.Lnext()
		m.bond(t1, t2)
		t1 = t1.Lprev()
		t3 = t3.Lprev()
		m.bond(t1, t3)
		t2 = t2.Lnext()
		t3 = t3.Lprev()
		m.bond(t2, t3)
		farLeft = t1
		if area > 0 {
			farRight = t2
		} else {
			farRight = farLeft.Lnext()
		}
		return farLeft, farRight
	}

	divider := len(a) >> 1
	farLeft, innerLeft := m.divConqRecurse(a[:divider], 1-axis)
	innerRight, farRight := m.divConqRecurse(a[divider:], 1-axis)
	return m.mergeHulls(farLeft, innerLeft, innerRight, farRight, axis)
}

// mergeHulls knits two adjacent triangulations together, walking up the gap
// between them from the lower common tangent to the upper one.
func (m *Mesh) mergeHulls(farLeft, innerLeft, innerRight, farRight Otri, axis int) (Otri, Otri) {
	innerLeftDest := m.Dest(innerLeft)
	innerLeftApex := m.Apex(innerLeft)
	innerRightOrg := m.Org(innerRight)
	innerRightApex := m.Apex(innerRight)

	if axis == 1 {
		// After a horizontal cut the extremal vertices are the bottommost and
		// topmost of each hull rather than leftmost and rightmost.
		farLeftPt := m.Org(farLeft)
		farLeftApex := m.Apex(farLeft)
		farRightPt := m.Dest(farRight)
		for farLeftApex.Y < farLeftPt.Y {
			farLeft = m.Sym(farLeft.Lnext())
			farLeftPt = farLeftApex
			farLeftApex = m.Apex(farLeft)
		}
		check := m.Sym(innerLeft)
		checkVertex := m.Apex(check)
		for checkVertex.Y > innerLeftDest.Y {
			innerLeft = check.Lnext()
			innerLeftApex = innerLeftDest
			innerLeftDest = checkVertex
			check = m.Sym(innerLeft)
			checkVertex = m.Apex(check)
		}
		for innerRightApex.Y < innerRightOrg.Y {
			innerRight = m.Sym(innerRight.Lnext())
			innerRightOrg = innerRightApex
			innerRightApex = m.Apex(innerRight)
		}
		check = m.Sym(farRight)
		checkVertex = m.Apex(check)
		for checkVertex.Y > farRightPt.Y {
			farRight = check.Lnext()
			farRightPt = checkVertex
			check = m.Sym(farRight)
			checkVertex = m.Apex(check)
		}
	}

	// Find the lower common tangent.
	for changed := true; changed; {
		changed = false
		if m.ccw(innerLeftDest, innerLeftApex, innerRightOrg) > 0 {
			innerLeft = m.Sym(innerLeft.Lprev())
			innerLeftDest = innerLeftApex
			innerLeftApex = m.Apex(innerLeft)
			changed = true
		}
		if m.ccw(innerRightApex, innerRightOrg, innerLeftDest) > 0 {
			innerRight = m.Sym(innerRight.Lnext())
			innerRightOrg = innerRightApex
			innerRightApex = m.Apex(innerRight)
			changed = true
		}
	}

	leftCand := m.Sym(innerLeft)
	rightCand := m.Sym(innerRight)

	// The bottom ghost triangle of the merged hull.
	base := m.makeTriangle()
	m.bond(base, innerLeft)
	base = base.Lnext()
	m.bond(base, innerRight)
	base = base.Lnext()
	m.setOrg(base, innerRightOrg)
	m.setDest(base, innerLeftDest)

	if innerLeftDest == m.Org(farLeft) {
		farLeft = base.Lnext()
	}
	if innerRightOrg == m.Dest(farRight) {
		farRight = base.Lprev()
	}

	lowerLeft := innerLeftDest
	lowerRight := innerRightOrg
	upperLeft := m.Apex(leftCand)
	upperRight := m.Apex(rightCand)

	for {
		// Either side may still expose a new vertex after the other moves,
		// so both must be finished.
		leftFinished := m.ccw(upperLeft, lowerLeft, lowerRight) <= 0
		rightFinished := m.ccw(upperRight, lowerLeft, lowerRight) <= 0
		if leftFinished && rightFinished {
			// The top ghost triangle.
			next := m.makeTriangle()
			m.setOrg(next, lowerLeft)
			m.setDest(next, lowerRight)
			m.bond(next, base)
			next = next.Lnext()
			m.bond(next, rightCand)
			next = next.Lnext()
			m.bond(next, leftCand)

			if axis == 1 {
				// Restore leftmost and rightmost extremal vertices.
				farLeftPt := m.Org(farLeft)
				farRightPt := m.Dest(farRight)
				farRightApex := m.Apex(farRight)
				check := m.Sym(farLeft)
				checkVertex := m.Apex(check)
				for checkVertex.X < farLeftPt.X {
					farLeft = check.Lprev()
					farLeftPt = checkVertex
					check = m.Sym(farLeft)
					checkVertex = m.Apex(check)
				}
				for farRightApex.X > farRightPt.X {
					farRight = m.Sym(farRight.Lprev())
					farRightPt = farRightApex
					farRightApex = m.Apex(farRight)
				}
			}
			return farLeft, farRight
		}

		if !leftFinished {
			// Remove left edges that are not Delaunay with respect to the
			// knitting edge.
			next := m.Sym(leftCand.Lprev())
			nextApex := m.Apex(next)
			if nextApex != nil {
				bad := m.inCircle(lowerLeft, lowerRight, upperLeft, nextApex) > 0
				for bad {
					next = next.Lnext()
					topCasing := m.Sym(next)
					next = next.Lnext()
					sideCasing := m.Sym(next)
					m.bond(next, topCasing)
					m.bond(leftCand, sideCasing)
					leftCand = leftCand.Lnext()
					outerCasing := m.Sym(leftCand)
					next = next.Lprev()
					m.bond(next, outerCasing)
					m.setOrg(leftCand, lowerLeft)
					m.setDest(leftCand, nil)
					m.setApex(leftCand, nextApex)
					m.setOrg(next, nil)
					m.setDest(next, upperLeft)
					m.setApex(next, nextApex)
					upperLeft = nextApex
					next = sideCasing
					nextApex = m.Apex(next)
					bad = nextApex != nil && m.inCircle(lowerLeft, lowerRight, upperLeft, nextApex) > 0
				}
			}
		}

		if !rightFinished {
			next := m.Sym(rightCand.Lnext())
			nextApex := m.Apex(next)
			if nextApex != nil {
				bad := m.inCircle(lowerLeft, lowerRight, upperRight, nextApex) > 0
				for bad {
					next = next.Lprev()
					topCasing := m.Sym(next)
					next = next.Lprev()
					sideCasing := m.Sym(next)
					m.bond(next, topCasing)
					m.bond(rightCand, sideCasing)
					rightCand = rightCand.Lprev()
					outerCasing := m.Sym(rightCand)
					next = next.Lnext()
					m.bond(next, outerCasing)
					m.setOrg(rightCand, nil)
					m.setDest(rightCand, lowerRight)
					m.setApex(rightCand, nextApex)
					m.setOrg(next, upperRight)
					m.setDest(next, nil)
					m.setApex(next, nextApex)
					upperRight = nextApex
					next = sideCasing
					nextApex = m.Apex(next)
					bad = nextApex != nil && m.inCircle(lowerLeft, lowerRight, upperRight, nextApex) > 0
				}
			}
		}

		if leftFinished || (!rightFinished && m.inCircle(upperLeft, lowerLeft, lowerRight, upperRight) > 0) {
			// Knit lowerLeft to upperRight.
			m.bond(base, rightCand)
			base = rightCand.Lprev()
			m.setDest(base, lowerLeft)
			lowerRight = upperRight
			rightCand = m.Sym(base)
			upperRight = m.Apex(rightCand)
		} else {
			// Knit upperLeft to lowerRight.
			m.bond(base, leftCand)
			base = leftCand.Lnext()
			m.setOrg(base, lowerRight)
			lowerLeft = upperLeft
			leftCand = m.Sym(base)
			upperLeft = m.Apex(leftCand)
		}
	}
}

// removeGhosts deletes the ghost ring around a finished triangulation and
// returns the number of hull edges.
func (m *Mesh) removeGhosts(startGhost Otri) int {
	// A real hull edge to start point location from.
	m.tris[0].neighbors[0] = m.Sym(startGhost.Lprev())

	hull := 0
	e := startGhost
	for {
		hull++
		dead := e.Lnext()
		e = m.Sym(e.Lprev())
		if !m.opts.EnforceSegments || len(m.segments) == 0 {
			if !e.IsDummy() {
				if org := m.Org(e); org.Label == 0 {
					org.Label = 1
				}
			}
		}
		m.dissolve(e)
		e = m.Sym(dead)
		m.killTriangle(dead)
		if e == startGhost {
			break
		}
	}
	return hull
}
