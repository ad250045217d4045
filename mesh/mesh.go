// Package mesh builds and refines planar constrained Delaunay triangulations.
//
// One Mesh owns every vertex, triangle and subsegment it creates, the
// predicate counters, and the random source used by point location. All
// algorithms (the three Delaunay builders, segment recovery, hole carving and
// quality refinement) mutate the same mesh through a handful of primitives:
// insert a vertex, flip an edge, delete a vertex, bind or dissolve a
// subsegment. Nothing here is safe for concurrent use.
package mesh

import (
	"math"
	"math/rand"

	"github.com/golang/geo/r2"
	"github.com/pkg/errors"
	"go.uber.org/zap"

	"github.com/osuushi/trimesh/geom"
)

// Point is an input vertex.
type Point struct {
	r2.Point
	Attributes []float64
	Label      int
}

// InputSegment joins two input points by index.
type InputSegment struct {
	P0, P1 int
	Label  int
}

// Region marks the connected area containing Point. Triangles found there
// get the region ID, and with VarArea the area bound, if positive.
type Region struct {
	r2.Point
	ID   int
	Area float64
}

// Input is a planar straight line graph plus holes and region markers.
type Input struct {
	Points   []Point
	Segments []InputSegment
	Holes    []r2.Point
	Regions  []Region
}

type Mesh struct {
	opts   Options
	logger *zap.Logger
	pred   geom.Predicates
	rand   *rand.Rand

	// vertices holds every vertex ever created, indexed by ID. Input vertices
	// come first, so their IDs match their input indices.
	vertices []*Vertex
	tris     []Triangle
	subsegs  []Segment

	liveTris    int
	liveSubsegs int
	inputCount  int
	undeads     int
	hullSize    int
	bounds      r2.Rect

	segments []InputSegment
	holes    []r2.Point
	regions  []Region

	// recentTri is where point location starts; updated by every insertion.
	recentTri Otri

	// checkSegments is set once subsegments exist, so insertion must respect
	// them. checkQuality is set while refining, so insertion queues new
	// flaws.
	checkSegments bool
	checkQuality  bool

	// flipStack records the flips made by the current insertion so that an
	// encroaching insertion can be undone.
	flipStack []flipRecord

	// Vertices of the bounding triangle used by the incremental builder.
	infVertices [3]*Vertex

	quality qualityState

	triangulated bool
}

// New copies the input into a fresh mesh. Nothing is triangulated until
// Triangulate is called.
func New(input Input, opts ...Option) (*Mesh, error) {
	o := defaultOptions()
	for _, set := range opts {
		if err := set(&o); err != nil {
			return nil, err
		}
	}

	m := &Mesh{
		opts:    o,
		logger:  o.Logger,
		rand:    rand.New(rand.NewSource(o.Seed)), //nolint:gosec
		tris:    make([]Triangle, 1, 2*len(input.Points)+1),
		subsegs: make([]Segment, 1, len(input.Segments)+1),
	}
	m.tris[0].area = -1
	m.bounds = r2.EmptyRect()
	m.quality.steinerLeft = o.SteinerBudget

	for i, p := range input.Points {
		if math.IsNaN(p.X) || math.IsNaN(p.Y) || math.IsInf(p.X, 0) || math.IsInf(p.Y, 0) {
			return nil, errors.Errorf("trimesh: point %d has non-finite coordinates", i)
		}
		v := &Vertex{
			Point:      p.Point,
			Attributes: append([]float64(nil), p.Attributes...),
			ID:         i,
			Label:      p.Label,
			Type:       InputVertex,
		}
		m.vertices = append(m.vertices, v)
		m.bounds = m.bounds.AddPoint(p.Point)
	}
	m.inputCount = len(m.vertices)

	for i, s := range input.Segments {
		if s.P0 < 0 || s.P0 >= len(input.Points) || s.P1 < 0 || s.P1 >= len(input.Points) {
			return nil, errors.Errorf("trimesh: segment %d has invalid endpoints (%d, %d)", i, s.P0, s.P1)
		}
		m.segments = append(m.segments, s)
	}
	m.holes = append(m.holes, input.Holes...)
	m.regions = append(m.regions, input.Regions...)

	return m, nil
}

// Triangulate runs the configured builder, recovers the segments, carves
// holes and refines. Fatal conditions are returned as errors wrapping one of
// the Err* values.
func (m *Mesh) Triangulate() (err error) {
	defer func() {
		if recovered := HandlePanicRecover(recover()); recovered != nil {
			err = recovered
		}
	}()
	m.triangulate()
	return nil
}

func (m *Mesh) triangulate() {
	if m.triangulated {
		fatalf(ErrTopology, "mesh is already triangulated")
	}
	m.checkInput()

	log := m.logger.With(zap.Stringer("algorithm", m.opts.Algorithm))
	switch m.opts.Algorithm {
	case Incremental:
		m.hullSize = m.incrementalDelaunay()
	case SweepLine:
		m.hullSize = m.sweepLineDelaunay()
	default:
		m.hullSize = m.divConqDelaunay()
	}
	log.Debug("delaunay triangulation built",
		zap.Int("triangles", m.liveTris),
		zap.Int("hull", m.hullSize),
		zap.Int("duplicates", m.undeads))

	if m.liveTris == 0 {
		// Only reachable if the collinearity check above disagrees with the
		// builder, which would mean broken predicates.
		fatal(ErrCollinear)
	}

	m.formSkeleton()
	if m.opts.EnforceSegments && len(m.segments) > 0 || len(m.holes) > 0 || len(m.regions) > 0 {
		m.carveHoles()
	}
	m.hullSize = m.countHull()

	if m.opts.Quality {
		m.enforceQuality()
	}
	m.hullSize = m.countHull()
	m.triangulated = true

	log.Debug("mesh complete",
		zap.Int("vertices", m.NumberOfVertices()),
		zap.Int("triangles", m.liveTris),
		zap.Int("subsegments", m.liveSubsegs),
		zap.Int("steiner", m.quality.steiner),
		zap.Int("relocations", m.quality.relocations))
}

// checkInput rejects inputs no builder can triangulate. Fewer than three
// distinct positions is too few; three or more on one line are collinear.
func (m *Mesh) checkInput() {
	var a, b *Vertex
	third := false
	for _, v := range m.vertices {
		if a == nil {
			a = v
			continue
		}
		if v.Point == a.Point {
			continue
		}
		if b == nil {
			b = v
			continue
		}
		if v.Point == b.Point {
			continue
		}
		if m.pred.Orient2D(a.Point, b.Point, v.Point) != 0 {
			return
		}
		third = true
	}
	if !third {
		fatalf(ErrTooFewVertices, "got %d vertices, fewer than three distinct", len(m.vertices))
	}
	fatal(ErrCollinear)
}

// Arena management.

func (m *Mesh) makeTriangle() Otri {
	id := len(m.tris)
	m.tris = append(m.tris, Triangle{id: id, area: -1})
	m.liveTris++
	return Otri{tri: id}
}

func (m *Mesh) killTriangle(t Otri) {
	tr := &m.tris[t.tri]
	if tr.dead {
		return
	}
	tr.dead = true
	m.liveTris--
}

func (m *Mesh) makeSubseg() Osub {
	id := len(m.subsegs)
	m.subsegs = append(m.subsegs, Segment{id: id})
	m.liveSubsegs++
	return Osub{seg: id}
}

func (m *Mesh) killSubseg(s Osub) {
	sg := &m.subsegs[s.seg]
	if sg.dead {
		return
	}
	sg.dead = true
	m.liveSubsegs--
}

// makeVertex creates a Steiner vertex.
func (m *Mesh) makeVertex(p r2.Point, typ VertexType) *Vertex {
	v := &Vertex{Point: p, ID: len(m.vertices), Type: typ}
	m.vertices = append(m.vertices, v)
	return v
}

// liveTriangles returns a handle to every live triangle, in creation order.
func (m *Mesh) liveTriangles() []Otri {
	out := make([]Otri, 0, m.liveTris)
	for i := 1; i < len(m.tris); i++ {
		if !m.tris[i].dead {
			out = append(out, Otri{tri: i})
		}
	}
	return out
}

func (m *Mesh) liveSubsegments() []Osub {
	out := make([]Osub, 0, m.liveSubsegs)
	for i := 1; i < len(m.subsegs); i++ {
		if !m.subsegs[i].dead {
			out = append(out, Osub{seg: i})
		}
	}
	return out
}

func (m *Mesh) countHull() int {
	n := 0
	for _, t := range m.liveTriangles() {
		for t.orient = 0; t.orient < 3; t.orient++ {
			if m.Sym(t).IsDummy() {
				n++
			}
		}
	}
	return n
}

// anyLiveTriangle returns some live triangle, preferring the hull anchor kept
// in the dummy triangle.
func (m *Mesh) anyLiveTriangle() Otri {
	anchor := m.tris[0].neighbors[0]
	if !anchor.IsDummy() && !m.isDead(anchor) {
		return anchor
	}
	for i := len(m.tris) - 1; i > 0; i-- {
		if !m.tris[i].dead {
			return Otri{tri: i}
		}
	}
	return Otri{}
}
