package mesh

// deleteVertex removes the origin of t from the mesh and retriangulates the
// hole it leaves. The vertex must be interior and not on any subsegment.
func (m *Mesh) deleteVertex(t Otri) {
	del := m.Org(t)
	del.Type = DeadVertex
	del.tri = Otri{}

	edgeCount := 1
	for c := m.Onext(t); c != t; c = m.Onext(c) {
		if c.IsDummy() {
			fatalf(ErrTopology, "deleting hull vertex %v", del)
		}
		edgeCount++
	}

	if edgeCount > 3 {
		// Flip edges away until only three triangles surround the vertex.
		first := m.Onext(t)
		last := m.Oprev(t)
		m.triangulatePolygon(first, last, edgeCount, false, m.checkQuality)
	}

	// Splice out two of the three remaining triangles.
	right := t.Lprev()
	leftTri := m.Dnext(t)
	leftCasing := m.Sym(leftTri)
	rightTri := m.Oprev(right)
	rightCasing := m.Sym(rightTri)
	m.bond(t, leftCasing)
	m.bond(right, rightCasing)
	if s := m.SegPivot(leftTri); !s.IsDummy() {
		m.segBond(t, s)
	}
	if s := m.SegPivot(rightTri); !s.IsDummy() {
		m.segBond(right, s)
	}

	m.setOrg(t, m.Org(leftTri))
	if m.checkQuality {
		m.testTriangle(t)
	}
	m.killTriangle(leftTri)
	m.killTriangle(rightTri)
	m.recentTri = t
}

// triangulatePolygon finds a Delaunay triangulation of the polygon whose
// vertices are the destinations of the edges from first counterclockwise
// to last, plus the apex of last. All those edges share one origin. The
// polygon is triangulated by flipping them, so that afterwards only first,
// last and one more edge remain at the origin.
func (m *Mesh) triangulatePolygon(first, last Otri, edgeCount int, doFlip, triFlaws bool) Otri {
	leftBase := m.Apex(last)
	rightBase := m.Dest(first)

	// Find the vertex that makes the Delaunay triangle with the base.
	best := m.Onext(first)
	bestVertex := m.Dest(best)
	test := best
	bestNumber := 1
	for i := 2; i <= edgeCount-2; i++ {
		test = m.Onext(test)
		tv := m.Dest(test)
		if m.inCircle(leftBase, rightBase, bestVertex, tv) > 0 {
			best = test
			bestVertex = tv
			bestNumber = i
		}
	}

	if bestNumber > 1 {
		// The smaller polygon on the right.
		m.triangulatePolygon(first, m.Oprev(best), bestNumber+1, true, triFlaws)
	}
	if bestNumber < edgeCount-2 {
		// The smaller polygon on the left. best may be lost to flips, so find
		// it again from its neighbor.
		temp := m.Sym(best)
		m.triangulatePolygon(best, last, edgeCount-bestNumber, true, triFlaws)
		best = m.Sym(temp)
	}
	if doFlip {
		m.flip(best)
		if triFlaws {
			m.testTriangle(m.Sym(best))
		}
	}
	return best
}

// DeleteVertex removes a free interior vertex, leaving a Delaunay mesh.
func (m *Mesh) DeleteVertex(v *Vertex) (err error) {
	defer func() {
		if recovered := HandlePanicRecover(recover()); recovered != nil {
			err = recovered
		}
	}()
	t, ok := m.vertexTriangle(v)
	if !ok {
		fatalf(ErrLocate, "vertex %v is not in the mesh", v)
	}
	for c := m.Onext(t); ; c = m.Onext(c) {
		if c.IsDummy() {
			fatalf(ErrTopology, "vertex %v is on the hull", v)
		}
		if !m.SegPivot(c).IsDummy() {
			fatalf(ErrTopology, "vertex %v is on a segment", v)
		}
		if c == t {
			break
		}
	}
	m.deleteVertex(t)
	return nil
}
