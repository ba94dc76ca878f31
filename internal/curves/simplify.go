package curves

import (
	"math"

	"github.com/bluewatersql/twinklr/internal/domain/entities"
)

// SimplifyOpts scales the metric RDP works in. With ST=SV=1 the
// tolerance is measured directly in the normalized (t,v) square;
// Epsilon defaults to one DMX step (1/255) so simplification can never
// introduce a visible value error.
type SimplifyOpts struct {
	ST       float64
	SV       float64
	Epsilon  float64
	EpsilonT float64
}

// DefaultSimplifyOpts returns the standard tolerance configuration.
func DefaultSimplifyOpts() SimplifyOpts {
	return SimplifyOpts{ST: 1, SV: 1, Epsilon: 1.0 / 255.0, EpsilonT: 0}
}

// Simplify runs deterministic Ramer-Douglas-Peucker over a sampled
// polyline in the scaled (t*ST, v*SV) space. Endpoints are kept exactly;
// interior points survive only where the perpendicular distance to the
// simplified chord exceeds Epsilon. The result has strictly increasing
// t (duplicate times within EpsilonT collapse toward the earlier point,
// endpoints always win).
func Simplify(points []entities.CurvePoint, opts SimplifyOpts) []entities.CurvePoint {
	if len(points) <= 2 {
		out := make([]entities.CurvePoint, len(points))
		copy(out, points)
		return out
	}

	keep := make([]bool, len(points))
	keep[0] = true
	keep[len(points)-1] = true
	rdp(points, 0, len(points)-1, opts, keep)

	out := make([]entities.CurvePoint, 0, len(points))
	for i, p := range points {
		if keep[i] {
			out = append(out, p)
		}
	}
	return enforceIncreasingT(out, opts.EpsilonT)
}

// rdp marks survivors in the span (i,j), exclusive of the endpoints
// which are already kept.
func rdp(points []entities.CurvePoint, i, j int, opts SimplifyOpts, keep []bool) {
	if j-i < 2 {
		return
	}

	ax := points[i].T * opts.ST
	ay := points[i].V * opts.SV
	bx := points[j].T * opts.ST
	by := points[j].V * opts.SV

	maxDist := 0.0
	maxIdx := -1
	for k := i + 1; k < j; k++ {
		d := perpendicularDistance(points[k].T*opts.ST, points[k].V*opts.SV, ax, ay, bx, by)
		if d > maxDist {
			maxDist = d
			maxIdx = k
		}
	}

	if maxIdx >= 0 && maxDist > opts.Epsilon {
		keep[maxIdx] = true
		rdp(points, i, maxIdx, opts, keep)
		rdp(points, maxIdx, j, opts, keep)
	}
}

// perpendicularDistance is the distance from point p to the segment ab.
func perpendicularDistance(px, py, ax, ay, bx, by float64) float64 {
	dx := bx - ax
	dy := by - ay
	lenSq := dx*dx + dy*dy
	if lenSq == 0 {
		return math.Hypot(px-ax, py-ay)
	}
	// Project onto the segment, clamping to its extent.
	u := ((px-ax)*dx + (py-ay)*dy) / lenSq
	if u < 0 {
		u = 0
	} else if u > 1 {
		u = 1
	}
	cx := ax + u*dx
	cy := ay + u*dy
	return math.Hypot(px-cx, py-cy)
}

// enforceIncreasingT drops points whose time does not advance past the
// previous survivor by more than epsT. The final point is never dropped;
// its predecessor gives way instead.
func enforceIncreasingT(points []entities.CurvePoint, epsT float64) []entities.CurvePoint {
	if len(points) <= 2 {
		return points
	}
	out := points[:1]
	for i := 1; i < len(points); i++ {
		if points[i].T-out[len(out)-1].T > epsT {
			out = append(out, points[i])
		} else if i == len(points)-1 {
			if len(out) > 1 {
				out[len(out)-1] = points[i]
			} else {
				out = append(out, points[i])
			}
		}
	}
	return out
}
