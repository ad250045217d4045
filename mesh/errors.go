package mesh

import (
	"github.com/pkg/errors"
)

// Threading errors through the recursive builders and the segment recovery
// code would obscure the algorithms. Fatal conditions panic with a meshError
// instead, and Triangulate recovers them into an ordinary error. These
// conditions mean malformed input or a broken invariant; nothing retries them.

var (
	ErrTooFewVertices  = errors.New("trimesh: input must have at least three distinct vertices")
	ErrCollinear       = errors.New("trimesh: input vertices are all collinear")
	ErrLocate          = errors.New("trimesh: point location failed")
	ErrParallel        = errors.New("trimesh: attempt to find intersection of parallel segments")
	ErrTopology        = errors.New("trimesh: topological inconsistency")
	ErrNotTriangulated = errors.New("trimesh: mesh has not been triangulated")
)

type meshError struct {
	error
}

func (e meshError) Unwrap() error { return e.error }

// fatalf aborts the triangulation with an error wrapping kind.
func fatalf(kind error, format string, args ...interface{}) {
	panic(meshError{errors.Wrapf(kind, format, args...)})
}

func fatal(kind error) {
	panic(meshError{errors.WithStack(kind)})
}

// HandlePanicRecover turns a recovered fatal mesh error back into an error.
// Any other panic is re-raised.
func HandlePanicRecover(r interface{}) error {
	if r != nil {
		if err, ok := r.(meshError); ok {
			return err.error
		}
		panic(r)
	}
	return nil
}
