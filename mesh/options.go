package mesh

import (
	"fmt"
	"math"

	"github.com/pkg/errors"
	"go.uber.org/zap"
)

// Algorithm selects the Delaunay construction strategy.
type Algorithm int

const (
	DivideAndConquer Algorithm = iota
	Incremental
	SweepLine
)

func (a Algorithm) String() string {
	switch a {
	case DivideAndConquer:
		return "divide-and-conquer"
	case Incremental:
		return "incremental"
	case SweepLine:
		return "sweep-line"
	}
	return fmt.Sprintf("Algorithm(%d)", int(a))
}

// ParseAlgorithm accepts the names produced by Algorithm.String.
func ParseAlgorithm(s string) (Algorithm, error) {
	for _, a := range []Algorithm{DivideAndConquer, Incremental, SweepLine} {
		if a.String() == s {
			return a, nil
		}
	}
	return 0, errors.Errorf("trimesh: unknown algorithm %q", s)
}

// Options is the configuration bundle for a mesh. Build it with Option
// functions; the zero value is not the default.
type Options struct {
	Algorithm Algorithm

	// Quality enables refinement. It is switched on by any of the quality
	// options below.
	Quality bool
	// MinAngle is the minimum angle in degrees refinement tries to reach.
	MinAngle float64
	// MaxAngle is the maximum angle in degrees, 0 to disable.
	MaxAngle float64
	// MaxArea is a global triangle area bound, negative to disable.
	MaxArea float64
	// VarArea honors the per-region area bounds of the input regions.
	VarArea bool
	// SteinerBudget caps the number of Steiner points, negative for no cap.
	SteinerBudget int
	// OffCenter places new vertices at off-centers instead of circumcenters.
	OffCenter bool

	// ConvexHull keeps every triangle of the convex hull of the input, even
	// outside the segments.
	ConvexHull bool
	// EnforceSegments recovers the input segments. When false the segment
	// list is ignored and the result is a plain Delaunay triangulation.
	EnforceSegments bool

	// Seed drives the random choices made by point location and the
	// sweep-line builder.
	Seed int64

	Logger *zap.Logger
}

// Option configures a Mesh.
type Option func(*Options) error

func defaultOptions() Options {
	return Options{
		Algorithm:       DivideAndConquer,
		MaxArea:         -1,
		SteinerBudget:   -1,
		OffCenter:       true,
		EnforceSegments: true,
		Seed:            1,
		Logger:          zap.NewNop(),
	}
}

func WithAlgorithm(a Algorithm) Option {
	return func(o *Options) error {
		if a < DivideAndConquer || a > SweepLine {
			return errors.Errorf("WithAlgorithm: unknown algorithm %d", int(a))
		}
		o.Algorithm = a
		return nil
	}
}

// WithMinAngle requests refinement until no angle is smaller than deg.
// Angles above 60 degrees cannot be satisfied by any triangle.
func WithMinAngle(deg float64) Option {
	return func(o *Options) error {
		if deg < 0 || deg > 60 || math.IsNaN(deg) {
			return errors.Errorf("WithMinAngle: angle %v out of range [0, 60]", deg)
		}
		o.MinAngle = deg
		o.Quality = true
		return nil
	}
}

// WithMaxAngle bounds the largest angle. Zero disables the bound.
func WithMaxAngle(deg float64) Option {
	return func(o *Options) error {
		if deg != 0 && (deg <= 60 || deg >= 180 || math.IsNaN(deg)) {
			return errors.Errorf("WithMaxAngle: angle %v out of range (60, 180)", deg)
		}
		o.MaxAngle = deg
		if deg != 0 {
			o.Quality = true
		}
		return nil
	}
}

// WithMaxArea bounds every triangle's area. A bound that is not positive
// disables the global bound and leaves the quality switch alone.
func WithMaxArea(area float64) Option {
	return func(o *Options) error {
		if math.IsNaN(area) {
			return errors.Errorf("WithMaxArea: area %v is not a number", area)
		}
		if area <= 0 {
			o.MaxArea = -1
			return nil
		}
		o.MaxArea = area
		o.Quality = true
		return nil
	}
}

func WithVarArea() Option {
	return func(o *Options) error {
		o.VarArea = true
		o.Quality = true
		return nil
	}
}

// WithQuality switches refinement on without changing any bound.
func WithQuality() Option {
	return func(o *Options) error {
		o.Quality = true
		return nil
	}
}

func WithSteinerBudget(n int) Option {
	return func(o *Options) error {
		o.SteinerBudget = n
		return nil
	}
}

func WithOffCenter(enabled bool) Option {
	return func(o *Options) error {
		o.OffCenter = enabled
		return nil
	}
}

func WithConvexHull() Option {
	return func(o *Options) error {
		o.ConvexHull = true
		return nil
	}
}

func WithEnforceSegments(enabled bool) Option {
	return func(o *Options) error {
		o.EnforceSegments = enabled
		return nil
	}
}

func WithSeed(seed int64) Option {
	return func(o *Options) error {
		o.Seed = seed
		return nil
	}
}

// WithLogger sets the logger. A nil logger restores the silent default.
func WithLogger(l *zap.Logger) Option {
	return func(o *Options) error {
		if l == nil {
			l = zap.NewNop()
		}
		o.Logger = l
		return nil
	}
}
