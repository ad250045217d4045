// Package trimesh generates planar constrained Delaunay meshes.
//
// Give it points, optionally joined by segments, with holes and region
// markers, and it builds the constrained Delaunay triangulation. Ask for
// quality and it refines the mesh until no angle is below a bound, no angle
// is above a bound, or no triangle is larger than an area bound.
//
// The mesh package holds the full API. This package re-exports the common
// part of it, and adds a polygon convenience in the spirit of ear clippers:
// solid polygons wind counterclockwise, holes wind clockwise.
package trimesh

import (
	"github.com/golang/geo/r2"

	"github.com/osuushi/trimesh/mesh"
	"github.com/osuushi/trimesh/polygon"
)

type (
	Mesh         = mesh.Mesh
	Input        = mesh.Input
	Point        = mesh.Point
	InputSegment = mesh.InputSegment
	Region       = mesh.Region
	Option       = mesh.Option
	Algorithm    = mesh.Algorithm
)

const (
	DivideAndConquer = mesh.DivideAndConquer
	Incremental      = mesh.Incremental
	SweepLine        = mesh.SweepLine
)

var (
	WithAlgorithm       = mesh.WithAlgorithm
	WithMinAngle        = mesh.WithMinAngle
	WithMaxAngle        = mesh.WithMaxAngle
	WithMaxArea         = mesh.WithMaxArea
	WithVarArea         = mesh.WithVarArea
	WithQuality         = mesh.WithQuality
	WithSteinerBudget   = mesh.WithSteinerBudget
	WithOffCenter       = mesh.WithOffCenter
	WithConvexHull      = mesh.WithConvexHull
	WithEnforceSegments = mesh.WithEnforceSegments
	WithSeed            = mesh.WithSeed
	WithLogger          = mesh.WithLogger
)

// Triangulate meshes the input.
func Triangulate(in Input, opts ...Option) (*Mesh, error) {
	m, err := mesh.New(in, opts...)
	if err != nil {
		return nil, err
	}
	if err := m.Triangulate(); err != nil {
		return nil, err
	}
	return m, nil
}

type Triangle struct {
	Points [3]r2.Point
}

// TriangulatePolygons covers a set of simple polygons with triangles.
//
// The polygons must not intersect. Solid polygons give their points in
// counterclockwise order and holes in clockwise order; the order of the
// polygons is irrelevant. Without quality options the triangles use only the
// polygon points.
func TriangulatePolygons(polygons [][]r2.Point, opts ...Option) (result []Triangle, err error) {
	defer func() {
		if recovered := mesh.HandlePanicRecover(recover()); recovered != nil {
			result = nil
			err = recovered
		}
	}()
	list := make(polygon.List, len(polygons))
	for i, points := range polygons {
		list[i] = polygon.Polygon{Points: points}
	}
	m, err := Triangulate(list.Input(), opts...)
	if err != nil {
		return nil, err
	}
	for _, tri := range m.Triangles() {
		var t Triangle
		for i, id := range tri.Vertices {
			t.Points[i] = m.Vertex(id).Point
		}
		result = append(result, t)
	}
	return result, nil
}
