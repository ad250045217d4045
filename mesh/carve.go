package mesh

import (
	"github.com/golang/geo/r2"
	"go.uber.org/zap"
)

// carveHoles removes the triangles outside the segments and inside holes,
// then spreads region IDs and area bounds.
func (m *Mesh) carveHoles() {
	var viri []Otri
	if !m.opts.ConvexHull {
		viri = m.infectHull(viri)
	}

	for _, h := range m.holes {
		if t, ok := m.locateSeed(h); ok && !m.isInfected(t) {
			m.infect(t)
			viri = append(viri, t)
		}
	}

	// Regions are located before the plague, which may kill the triangles
	// found here; those are skipped afterwards.
	regionTris := make([]Otri, len(m.regions))
	for i, r := range m.regions {
		if t, ok := m.locateSeed(r.Point); ok && !m.isInfected(t) {
			regionTris[i] = t
		}
	}

	if len(viri) > 0 {
		m.plague(viri)
	}

	for i, r := range m.regions {
		t := regionTris[i]
		if t.IsDummy() || m.isDead(t) {
			m.logger.Debug("region seed not in mesh", zap.Int("region", r.ID))
			continue
		}
		m.regionPlague(t, r.ID, r.Area)
	}
	m.recentTri = Otri{}
	m.logger.Debug("holes carved",
		zap.Int("triangles", m.liveTris),
		zap.Int("undead", m.undeads))
}

// locateSeed finds the triangle containing a hole or region point.
func (m *Mesh) locateSeed(p r2.Point) (Otri, bool) {
	if !m.bounds.ContainsPoint(p) {
		return Otri{}, false
	}
	start := m.hullAnchor()
	if start.IsDummy() {
		return Otri{}, false
	}
	if m.ccwPoint(m.Org(start), m.Dest(start), p) <= 0 {
		return Otri{}, false
	}
	t, where := m.Locate(p, start)
	if where == Outside {
		return Otri{}, false
	}
	return t, true
}

// infectHull marks every hull triangle not protected by a subsegment.
func (m *Mesh) infectHull(viri []Otri) []Otri {
	start := m.hullAnchor()
	if start.IsDummy() {
		return viri
	}
	h := start
	for {
		if !m.isInfected(h) {
			if s := m.SegPivot(h); s.IsDummy() {
				m.infect(h)
				viri = append(viri, h)
			} else if m.Label(s) == 0 {
				m.setLabel(s, hullLabel)
				for _, v := range []*Vertex{m.Org(h), m.Dest(h)} {
					if v.Label == 0 {
						v.Label = hullLabel
					}
				}
			}
		}
		h = m.nextHullEdge(h)
		if h == start {
			return viri
		}
	}
}

// plague spreads the infection from viri to every triangle reachable without
// crossing a subsegment, then deletes the infected triangles. Subsegments
// with infected triangles on both sides die as well, and so do vertices left
// with no live triangle.
func (m *Mesh) plague(viri []Otri) {
	for i := 0; i < len(viri); i++ {
		t := viri[i]
		for t.orient = 0; t.orient < 3; t.orient++ {
			n := m.Sym(t)
			s := m.SegPivot(t)
			if n.IsDummy() || m.isInfected(n) {
				if !s.IsDummy() {
					m.killSubseg(s)
					if !n.IsDummy() {
						m.segDissolve(n)
					}
				}
				continue
			}
			if s.IsDummy() {
				m.infect(n)
				viri = append(viri, n)
				continue
			}
			// The neighbor is protected; detach the subsegment from t.
			m.triDissolve(s)
			if m.Label(s) == 0 {
				m.setLabel(s, hullLabel)
			}
			for _, v := range []*Vertex{m.Org(n), m.Dest(n)} {
				if v.Label == 0 {
					v.Label = hullLabel
				}
			}
		}
	}

	for _, t := range viri {
		for t.orient = 0; t.orient < 3; t.orient++ {
			v := m.Org(t)
			if v == nil {
				continue
			}
			// Walk around v and clear it from infected triangles; it survives
			// if any live triangle still uses it.
			kill := true
			m.setOrg(t, nil)
			n := m.Onext(t)
			for !n.IsDummy() && n != t {
				if m.isInfected(n) {
					m.setOrg(n, nil)
				} else {
					kill = false
				}
				n = m.Onext(n)
			}
			if n.IsDummy() {
				for n = m.Oprev(t); !n.IsDummy(); n = m.Oprev(n) {
					if m.isInfected(n) {
						m.setOrg(n, nil)
					} else {
						kill = false
					}
				}
			}
			if kill {
				v.Type = UndeadVertex
				v.tri = Otri{}
				m.undeads++
			}
		}

		for t.orient = 0; t.orient < 3; t.orient++ {
			n := m.Sym(t)
			if n.IsDummy() {
				m.hullSize--
			} else {
				m.dissolve(n)
				m.hullSize++
				if !m.isInfected(n) {
					m.tris[0].neighbors[0] = n
				}
			}
		}
		m.killTriangle(t)
	}
}

// regionPlague spreads a region ID, and with VarArea an area bound, from t
// to every triangle reachable without crossing a subsegment.
func (m *Mesh) regionPlague(t Otri, id int, area float64) {
	viri := []Otri{t}
	m.infect(t)
	for i := 0; i < len(viri); i++ {
		t := viri[i]
		m.setRegion(t, id)
		if m.opts.VarArea && area > 0 {
			m.setAreaBound(t, area)
		}
		for t.orient = 0; t.orient < 3; t.orient++ {
			n := m.Sym(t)
			if !n.IsDummy() && !m.isInfected(n) && m.SegPivot(t).IsDummy() {
				m.infect(n)
				viri = append(viri, n)
			}
		}
	}
	for _, t := range viri {
		m.uninfect(t)
	}
}
