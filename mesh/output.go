package mesh

import (
	"math"

	"github.com/osuushi/trimesh/geom"
)

// TriangleInfo is a read-only view of one triangle. Vertices are listed
// counterclockwise by ID; neighbor i lies across the edge opposite vertex i
// and is -1 on the boundary.
type TriangleInfo struct {
	ID        int
	Vertices  [3]int
	Neighbors [3]int
	Region    int
	// AreaBound is the area constraint inherited from a region, or -1.
	AreaBound float64
}

// SegmentInfo is a read-only view of one subsegment.
type SegmentInfo struct {
	ID        int
	Endpoints [2]int
	Label     int
}

// Edge is one mesh edge. Label is the label of the subsegment on it, or 0.
type Edge struct {
	P0, P1 int
	Label  int
}

// Vertices returns the vertices that take part in the triangulation,
// ordered by ID. Duplicates and deleted vertices are left out, so IDs may
// have gaps.
func (m *Mesh) Vertices() []*Vertex {
	out := make([]*Vertex, 0, len(m.vertices))
	for _, v := range m.vertices {
		if v.Type != DeadVertex && v.Type != UndeadVertex {
			out = append(out, v)
		}
	}
	return out
}

func (m *Mesh) NumberOfVertices() int {
	n := 0
	for _, v := range m.vertices {
		if v.Type != DeadVertex && v.Type != UndeadVertex {
			n++
		}
	}
	return n
}

// Vertex returns the vertex with the given ID, or nil.
func (m *Mesh) Vertex(id int) *Vertex {
	if id < 0 || id >= len(m.vertices) {
		return nil
	}
	return m.vertices[id]
}

func (m *Mesh) Triangles() []TriangleInfo {
	out := make([]TriangleInfo, 0, m.liveTris)
	for _, t := range m.liveTriangles() {
		tr := &m.tris[t.tri]
		info := TriangleInfo{ID: t.tri, Region: tr.region, AreaBound: tr.area}
		for i := 0; i < 3; i++ {
			info.Vertices[i] = tr.vertices[i].ID
			info.Neighbors[i] = -1
			if n := tr.neighbors[i]; !n.IsDummy() {
				info.Neighbors[i] = n.tri
			}
		}
		out = append(out, info)
	}
	return out
}

func (m *Mesh) NumberOfTriangles() int { return m.liveTris }

func (m *Mesh) Segments() []SegmentInfo {
	out := make([]SegmentInfo, 0, m.liveSubsegs)
	for _, s := range m.liveSubsegments() {
		out = append(out, SegmentInfo{
			ID:        s.seg,
			Endpoints: [2]int{m.SubOrg(s).ID, m.SubDest(s).ID},
			Label:     m.Label(s),
		})
	}
	return out
}

func (m *Mesh) NumberOfSegments() int { return m.liveSubsegs }

// Edges lists every mesh edge once.
func (m *Mesh) Edges() []Edge {
	out := make([]Edge, 0, m.NumberOfEdges())
	for _, t := range m.liveTriangles() {
		for t.orient = 0; t.orient < 3; t.orient++ {
			n := m.Sym(t)
			if !n.IsDummy() && n.tri < t.tri {
				continue
			}
			e := Edge{P0: m.Org(t).ID, P1: m.Dest(t).ID}
			if s := m.SegPivot(t); !s.IsDummy() {
				e.Label = m.Label(s)
			}
			out = append(out, e)
		}
	}
	return out
}

// NumberOfEdges follows from Euler's formula: every triangle has three
// edges, interior edges are shared and hull edges are not.
func (m *Mesh) NumberOfEdges() int { return (3*m.liveTris + m.hullSize) / 2 }

func (m *Mesh) HullSize() int { return m.hullSize }

// Counters reports how often each geometric predicate ran on this mesh.
func (m *Mesh) Counters() geom.Counters { return m.pred.Counters }

// Steiner is the number of vertices added by segment recovery and
// refinement.
func (m *Mesh) Steiner() int { return m.quality.steiner }

// Relocations is the number of free vertices refinement moved instead of
// adding a new one.
func (m *Mesh) Relocations() int { return m.quality.relocations }

func (m *Mesh) Triangulated() bool { return m.triangulated }

func (m *Mesh) Options() Options { return m.opts }

// Stats summarizes the shape of the triangles.
type Stats struct {
	// Angles in degrees.
	MinAngle, MaxAngle float64
	MinArea, MaxArea   float64
	ShortestEdge       float64
	LongestEdge        float64
}

// Statistics measures every live triangle. It fails before a successful
// Triangulate.
func (m *Mesh) Statistics() (Stats, error) {
	if !m.triangulated {
		return Stats{}, ErrNotTriangulated
	}
	s := Stats{
		MinAngle:     180,
		MinArea:      math.Inf(1),
		ShortestEdge: math.Inf(1),
	}
	for _, t := range m.liveTriangles() {
		a, b, c := m.Org(t).Point, m.Dest(t).Point, m.Apex(t).Point
		lo, hi := angles(a, b, c)
		s.MinAngle = math.Min(s.MinAngle, lo*180/math.Pi)
		s.MaxAngle = math.Max(s.MaxAngle, hi*180/math.Pi)
		area := 0.5 * orient(a, b, c)
		s.MinArea = math.Min(s.MinArea, area)
		s.MaxArea = math.Max(s.MaxArea, area)
		for _, l := range []float64{dist(a, b), dist(b, c), dist(c, a)} {
			s.ShortestEdge = math.Min(s.ShortestEdge, l)
			s.LongestEdge = math.Max(s.LongestEdge, l)
		}
	}
	return s, nil
}
