package curves

// Bounds is a conservative value range tracked alongside a transformed
// curve. When a segment's bounds provably sit inside the clamp window,
// the exporter may skip clamping entirely.
type Bounds struct {
	Min float64
	Max float64
}

// Within reports whether the tracked range sits inside [lo,hi].
func (b Bounds) Within(lo, hi float64) bool {
	return b.Min >= lo && b.Max <= hi
}

// Scale maps the bounds through v*scale + offset. Negative scales swap
// the extremes.
func (b Bounds) Scale(scale, offset float64) Bounds {
	lo := b.Min*scale + offset
	hi := b.Max*scale + offset
	if lo > hi {
		lo, hi = hi, lo
	}
	return Bounds{Min: lo, Max: hi}
}

// ClampLate clamps a single value into [lo,hi]. This is the only place
// in the pipeline where values are clamped, and it runs once, at the
// materialization boundary after all transforms. Idempotent.
func ClampLate(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// ClampLateAll clamps a value slice in place and returns it.
func ClampLateAll(vs []float64, lo, hi float64) []float64 {
	for i, v := range vs {
		vs[i] = ClampLate(v, lo, hi)
	}
	return vs
}

// SampleBounds computes the observed min/max of sampled values.
func SampleBounds(vs []float64) Bounds {
	if len(vs) == 0 {
		return Bounds{}
	}
	b := Bounds{Min: vs[0], Max: vs[0]}
	for _, v := range vs[1:] {
		if v < b.Min {
			b.Min = v
		}
		if v > b.Max {
			b.Max = v
		}
	}
	return b
}
