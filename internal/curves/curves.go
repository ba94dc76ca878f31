// Package curves is the pure curve engine: sampling, phase shifting,
// composition, simplification, and the late clamp. Every function is
// stateless and total over well-formed inputs; determinism of the whole
// compiler rests on this package never consulting anything but its
// arguments.
package curves

import (
	"math"

	"github.com/bluewatersql/twinklr/internal/domain/entities"
)

// Evaluate computes a curve's value at normalized time t. Native shapes
// evaluate in closed form; point curves interpolate linearly. t outside
// [0,1] is clamped to the domain (callers control wrapping explicitly
// via SampleOpts).
func Evaluate(c entities.Curve, t float64) float64 {
	if t < 0 {
		t = 0
	} else if t > 1 {
		t = 1
	}
	if c.IsNative() {
		return evaluateNative(c.Shape(), c.Params(), t)
	}
	return interpolatePoints(c, t)
}

func evaluateNative(shape entities.NativeShape, params entities.NativeParams, t float64) float64 {
	switch shape {
	case entities.ShapeHold:
		return params.Level
	case entities.ShapeLinear:
		return t
	case entities.ShapeEaseInOut:
		return t * t * (3 - 2*t)
	case entities.ShapeSine:
		cycles := params.Cycles
		if cycles == 0 {
			cycles = 1
		}
		// Centered on 0.5 with equal endpoints at whole cycles, so SINE
		// loops cleanly.
		return 0.5 + 0.5*math.Sin(2*math.Pi*(cycles*t+params.Phase))
	default:
		// Unreachable for constructor-validated curves.
		return 0
	}
}

func interpolatePoints(c entities.Curve, t float64) float64 {
	n := c.Len()
	first := c.PointAt(0)
	last := c.PointAt(n - 1)
	if t <= first.T {
		return first.V
	}
	if t >= last.T {
		return last.V
	}

	// Binary search for the first point with T > t.
	lo, hi := 0, n-1
	for lo+1 < hi {
		mid := (lo + hi) / 2
		if c.PointAt(mid).T <= t {
			lo = mid
		} else {
			hi = mid
		}
	}

	a, b := c.PointAt(lo), c.PointAt(hi)
	if b.T == a.T {
		return b.V
	}
	frac := (t - a.T) / (b.T - a.T)
	return a.V + frac*(b.V-a.V)
}

// SampleOpts controls grid sampling. The zero value of Offset/Reversed
// yields a plain forward sample.
type SampleOpts struct {
	// N is the grid resolution; samples land on t = i/N for i in [0,N).
	N int
	// Offset is a normalized phase shift applied before evaluation.
	Offset float64
	// Wrap selects modulo-1 wrapping for shifted times; when false the
	// shifted time clips to [0,1].
	Wrap bool
	// Reversed evaluates the curve at 1-t, which is how ping-pong
	// backward traversal re-samples (never by reversing point order).
	Reversed bool
	// Span narrows the traversed portion of the curve's domain; a
	// truncated occurrence with Span s plays [0,s] of the forward curve
	// (or [1-s,1] reversed) across its shortened time range. Zero means
	// the full domain.
	Span float64
}

// Sample evaluates a curve on n evenly spaced grid points over [0,1).
// Fixed per-channel-family resolutions keep phase offsets exact index
// rotations; see SampleWith for the shifted variants.
func Sample(c entities.Curve, n int) ([]entities.CurvePoint, error) {
	return SampleWith(c, SampleOpts{N: n})
}

// SampleWith regenerates the sample grid and evaluates the base curve at
// each transformed time. This is the mandated phase-shift strategy:
// existing point times are never mutated or re-sorted.
func SampleWith(c entities.Curve, opts SampleOpts) ([]entities.CurvePoint, error) {
	if opts.N < 2 {
		return nil, &entities.SchemaViolationError{
			Field:  "sample.n",
			Reason: "sample resolution must be at least 2",
		}
	}
	if c.IsZero() {
		return nil, &entities.SchemaViolationError{
			Field:  "sample.curve",
			Reason: "cannot sample the zero curve",
		}
	}

	out := make([]entities.CurvePoint, opts.N)
	for i := 0; i < opts.N; i++ {
		t := float64(i) / float64(opts.N)
		out[i] = entities.CurvePoint{T: t, V: Evaluate(c, TransformedTime(opts, t))}
	}
	return out, nil
}

// TransformedTime maps a grid time t to the source-curve time the
// options select: span scaling, reversal, phase offset, then wrap or
// clip. Evaluating at TransformedTime(opts, i/N) reproduces sample i of
// SampleWith exactly.
func TransformedTime(opts SampleOpts, t float64) float64 {
	span := opts.Span
	if span <= 0 || span > 1 {
		span = 1
	}
	src := t * span
	if opts.Reversed {
		src = 1 - src
	}
	src += opts.Offset
	if opts.Wrap {
		src = math.Mod(src, 1)
		if src < 0 {
			src += 1
		}
	} else if src < 0 {
		src = 0
	} else if src > 1 {
		src = 1
	}
	return src
}

// PhaseShift samples a curve with a normalized time offset. With a grid
// of n samples and a grid-aligned offset, the result equals the plain
// sample rotated by round(n*offset) indices.
func PhaseShift(c entities.Curve, offsetNorm float64, wrap bool, n int) ([]entities.CurvePoint, error) {
	return SampleWith(c, SampleOpts{N: n, Offset: offsetNorm, Wrap: wrap})
}
