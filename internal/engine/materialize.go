package engine

import (
	"github.com/bluewatersql/twinklr/internal/curves"
	"github.com/bluewatersql/twinklr/internal/domain/entities"
)

// Materialization is the export-side half of the clamp-late contract:
// segments carry normalized curves plus composition hints all the way
// here, and only here do values become DMX and get clamped. An exporter
// with its own materializer must follow the same formulas.

// MaterializeAt evaluates one segment at normalized time t within its
// range, returning the clamped DMX value.
func MaterializeAt(seg *entities.ChannelSegment, t float64) float64 {
	if seg.StaticValue != nil {
		return curves.ClampLate(*seg.StaticValue, seg.ClampMin, seg.ClampMax)
	}

	v := curves.Evaluate(*seg.Curve, t)
	return curves.ClampLate(compose(seg, v), seg.ClampMin, seg.ClampMax)
}

// Materialize samples a segment into n DMX values across its time
// range. When the segment's conservative bounds prove every value in
// range, the clamp pass is skipped.
func Materialize(seg *entities.ChannelSegment, n int) ([]float64, error) {
	out := make([]float64, n)

	if seg.StaticValue != nil {
		v := curves.ClampLate(*seg.StaticValue, seg.ClampMin, seg.ClampMax)
		for i := range out {
			out[i] = v
		}
		return out, nil
	}

	samples, err := curves.Sample(*seg.Curve, n)
	if err != nil {
		return nil, err
	}
	for i, p := range samples {
		out[i] = compose(seg, p.V)
	}

	if curves.SampleBounds(out).Within(seg.ClampMin, seg.ClampMax) {
		return out, nil
	}
	return curves.ClampLateAll(out, seg.ClampMin, seg.ClampMax), nil
}

// compose applies the segment's composition hints to one normalized
// curve value.
func compose(seg *entities.ChannelSegment, v float64) float64 {
	switch {
	case seg.OffsetCentered:
		// v=0.5 means exactly the baseline.
		return *seg.Base + (v-0.5)**seg.Amplitude
	case seg.Base != nil && seg.Amplitude != nil:
		// Absolute curve over a range: lerp(min, max, v).
		return *seg.Base + v**seg.Amplitude
	default:
		return v
	}
}
