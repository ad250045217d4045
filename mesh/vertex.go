package mesh

import (
	"fmt"

	"github.com/golang/geo/r2"
)

type VertexType int

const (
	InputVertex VertexType = iota
	SegmentVertex
	FreeVertex
	DeadVertex
	// UndeadVertex marks a duplicate input. It keeps its number but is never
	// part of the triangulation.
	UndeadVertex
)

func (t VertexType) String() string {
	switch t {
	case InputVertex:
		return "input"
	case SegmentVertex:
		return "segment"
	case FreeVertex:
		return "free"
	case DeadVertex:
		return "dead"
	case UndeadVertex:
		return "undead"
	}
	return fmt.Sprintf("VertexType(%d)", int(t))
}

// Vertex is a mesh node. Identity is by exact coordinate equality; two
// vertices at the same coordinates never both take part in a triangulation.
type Vertex struct {
	r2.Point
	Attributes []float64
	ID         int
	Label      int
	Type       VertexType

	// Some triangle incident to this vertex, used to restart point location
	// after local edits. May be stale.
	tri Otri
}

func (v *Vertex) String() string {
	return fmt.Sprintf("v%d(%g, %g)", v.ID, v.X, v.Y)
}

// lexLess reports whether v sorts before other in (x, y) lexicographic order.
func (v *Vertex) lexLess(other *Vertex) bool {
	return v.X < other.X || (v.X == other.X && v.Y < other.Y)
}
