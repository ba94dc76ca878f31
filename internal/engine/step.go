// Package engine orchestrates choreography compilation: the step
// compiler turns one step occurrence into IR channel segments, and the
// template compiler schedules, fans out, and canonically orders the
// result. Everything below this package is pure; this is the only layer
// allowed to coordinate.
package engine

import (
	"fmt"
	"math"

	"github.com/bluewatersql/twinklr/internal/config"
	"github.com/bluewatersql/twinklr/internal/curves"
	"github.com/bluewatersql/twinklr/internal/domain/entities"
	"github.com/bluewatersql/twinklr/internal/domain/services"
	"github.com/bluewatersql/twinklr/internal/domain/values"
)

// StepCompiler compiles one step occurrence into channel segments. It
// owns no state beyond the injected resolvers and tunables; compiling
// the same occurrence twice yields identical segments.
type StepCompiler struct {
	geometry *services.GeometryResolver
	movement *services.MovementResolver
	dimmer   *services.DimmerResolver
	phase    *services.PhaseOffsetCalculator
	tunables config.Tunables
}

// NewStepCompiler creates a step compiler with explicitly injected
// resolvers. No process-wide registries: the lookup surface is exactly
// what the caller wires in.
func NewStepCompiler(tunables config.Tunables) *StepCompiler {
	return &StepCompiler{
		geometry: services.NewGeometryResolver(),
		movement: services.NewMovementResolver(),
		dimmer:   services.NewDimmerResolver(),
		phase:    services.NewPhaseOffsetCalculator(),
		tunables: tunables,
	}
}

// CompileOccurrence resolves one occurrence against the rig and emits
// one segment per (fixture, channel). closures carries the per-channel
// continuity fixes computed by LoopContinuity; nil for occurrences
// outside the loop body.
func (sc *StepCompiler) CompileOccurrence(
	t *entities.Template,
	occ services.StepOccurrence,
	rig *entities.RigProfile,
	closures map[values.Channel]float64,
) ([]entities.ChannelSegment, error) {
	step := occ.Step

	fixtures, ok := rig.Group(step.Group)
	if !ok {
		return nil, &entities.CompositionError{StepID: step.ID, Reason: "unknown group: " + step.Group}
	}
	if len(fixtures) == 0 {
		return nil, &entities.CompositionError{StepID: step.ID, Reason: "group resolves to no fixtures: " + step.Group}
	}

	poses, err := sc.geometry.Resolve(step.ID, step.Geometry, fixtures, rig)
	if err != nil {
		return nil, err
	}
	moveShape, err := sc.movement.Resolve(step.Movement)
	if err != nil {
		return nil, err
	}
	dimShape, err := sc.dimmer.Resolve(step.Dimmer)
	if err != nil {
		return nil, err
	}
	offsets, err := sc.phase.Compute(step.ID, step.Phase, fixtures, step.Timing.DurationBars, rig)
	if err != nil {
		return nil, err
	}

	wrap := true
	if step.Phase != nil {
		wrap = step.Phase.Wrap
	}

	// Count fixtures per offset: only fixtures sharing an offset may be
	// flagged groupable, never fixtures with distinct phase offsets.
	offsetCount := map[float64]int{}
	for _, fixture := range fixtures {
		offsetCount[offsets[fixture]]++
	}

	segments := make([]entities.ChannelSegment, 0, len(fixtures)*3)
	for _, fixture := range fixtures {
		cal, ok := rig.Calibration(fixture)
		if !ok {
			return nil, &entities.CompositionError{StepID: step.ID, Fixture: fixture, Reason: "fixture has no calibration"}
		}

		groupable := offsetCount[offsets[fixture]] > 1
		opts := curves.SampleOpts{
			Offset:   offsets[fixture],
			Wrap:     wrap,
			Reversed: occ.Reversed,
			Span:     occ.Span,
		}

		fixtureSegments, err := sc.compileFixture(occ, fixture, poses[fixture], cal, t.Safety, moveShape, dimShape, opts, closures, groupable)
		if err != nil {
			return nil, err
		}
		segments = append(segments, fixtureSegments...)
	}

	for i := range segments {
		if err := segments[i].Validate(); err != nil {
			return nil, fmt.Errorf("step %s emitted invalid segment: %w", step.ID, err)
		}
	}
	return segments, nil
}

// LoopContinuity runs the boundary check for one loop step's resolved
// curves and returns the per-channel closure fractions plus the
// auto-fix warnings. It runs once per compiled loop curve: phase shifts
// cannot change a curve's boundary delta, so every occurrence of the
// step shares the result.
func (sc *StepCompiler) LoopContinuity(
	t *entities.Template,
	step entities.TemplateStep,
	barMs float64,
) (map[values.Channel]float64, []string, error) {
	moveShape, err := sc.movement.Resolve(step.Movement)
	if err != nil {
		return nil, nil, err
	}
	dimShape, err := sc.dimmer.Resolve(step.Dimmer)
	if err != nil {
		return nil, nil, err
	}

	checker := newContinuityChecker(sc.tunables.Continuity)
	durationMs := step.Timing.DurationBars * barMs
	pingPong := t.Repeat.Mode.Equals(values.RepeatPingPong)
	checks := []struct {
		channel   values.Channel
		curve     entities.Curve
		amplitude float64
	}{
		{values.ChannelPan, moveShape.Pan, moveShape.PanAmplitude},
		{values.ChannelTilt, moveShape.Tilt, moveShape.TiltAmplitude},
		{values.ChannelDimmer, dimShape.Curve, 1},
	}

	closures := map[values.Channel]float64{}
	var warnings []string
	for _, check := range checks {
		if check.amplitude == 0 || check.curve.IsZero() {
			continue
		}
		closure, warns, err := checker.Check(step.ID, check.channel, check.curve, durationMs, barMs, pingPong)
		if err != nil {
			return nil, nil, err
		}
		warnings = append(warnings, warns...)
		closures[check.channel] = closure
	}
	return closures, warnings, nil
}

// compileFixture emits the PAN/TILT/DIMMER segments for one fixture.
func (sc *StepCompiler) compileFixture(
	occ services.StepOccurrence,
	fixture string,
	pose services.BasePose,
	cal entities.FixtureCalibration,
	safety entities.SafetyDefaults,
	moveShape services.MovementShape,
	dimShape services.DimmerShape,
	opts curves.SampleOpts,
	closures map[values.Channel]float64,
	groupable bool,
) ([]entities.ChannelSegment, error) {
	out := make([]entities.ChannelSegment, 0, 3)

	hold := occ.Kind == services.OccurrenceHold || occ.Kind == services.OccurrenceFadeOut

	pan, err := sc.movementSegment(occ, fixture, values.ChannelPan, moveShape.Pan,
		pose.PanDMX, moveShape.PanAmplitude*(cal.PanMax-cal.PanMin), cal.PanMin, cal.PanMax, opts, closures, groupable, hold)
	if err != nil {
		return nil, err
	}
	out = append(out, pan)

	tilt, err := sc.movementSegment(occ, fixture, values.ChannelTilt, moveShape.Tilt,
		pose.TiltDMX, moveShape.TiltAmplitude*(cal.TiltMax-cal.TiltMin), cal.TiltMin, cal.TiltMax, opts, closures, groupable, hold)
	if err != nil {
		return nil, err
	}
	out = append(out, tilt)

	dimmer, err := sc.dimmerSegment(occ, fixture, dimShape, cal, safety, opts, closures, groupable, hold)
	if err != nil {
		return nil, err
	}
	out = append(out, dimmer)

	return out, nil
}

// movementSegment emits an offset-centered segment: the exporter
// materializes dmx = base + (v-0.5)*amplitude, clamped late into the
// fixture's calibrated range.
func (sc *StepCompiler) movementSegment(
	occ services.StepOccurrence,
	fixture string,
	channel values.Channel,
	curve entities.Curve,
	baseDMX, amplitudeDMX, clampMin, clampMax float64,
	opts curves.SampleOpts,
	closures map[values.Channel]float64,
	groupable bool,
	hold bool,
) (entities.ChannelSegment, error) {
	seg := entities.ChannelSegment{
		FixtureID: fixture,
		Channel:   channel,
		T0Ms:      occ.StartMs,
		T1Ms:      occ.EndMs,
		ClampMin:  clampMin,
		ClampMax:  clampMax,
	}

	if amplitudeDMX == 0 {
		seg.StaticValue = &baseDMX
		return seg, nil
	}

	if hold {
		// Freeze the last frame the referenced traversal emitted.
		v := lastSampleValue(curve, opts, sc.tunables.MovementResolution)
		static := baseDMX + (v-0.5)*amplitudeDMX
		seg.StaticValue = &static
		return seg, nil
	}

	opts.N = sc.tunables.MovementResolution
	samples, err := curves.SampleWith(curve, opts)
	if err != nil {
		return entities.ChannelSegment{}, err
	}
	if !occ.Loop {
		// Loop samples tile on [0,1); one-shot traversals need the
		// terminal value explicitly.
		samples = append(samples, entities.CurvePoint{T: 1, V: terminalValue(curve, opts)})
	}
	samples = applyClosure(samples, closures[channel])
	samples = curves.Simplify(samples, sc.simplifyOpts())

	simplified, err := entities.NewPointsCurve(samples)
	if err != nil {
		return entities.ChannelSegment{}, err
	}
	seg.Curve = &simplified
	seg.OffsetCentered = true
	seg.Base = &baseDMX
	seg.Amplitude = &amplitudeDMX
	seg.Groupable = groupable
	return seg, nil
}

// dimmerSegment emits an absolute segment: dmx = base + v*amplitude,
// i.e. lerp(minDMX, maxDMX, v). Safety floors/ceilings become the clamp
// bounds; they are enforced nowhere else.
func (sc *StepCompiler) dimmerSegment(
	occ services.StepOccurrence,
	fixture string,
	dimShape services.DimmerShape,
	cal entities.FixtureCalibration,
	safety entities.SafetyDefaults,
	opts curves.SampleOpts,
	closures map[values.Channel]float64,
	groupable bool,
	hold bool,
) (entities.ChannelSegment, error) {
	dimRange := cal.DimmerMax - cal.DimmerMin
	minDMX := cal.DimmerMin + dimShape.MinNorm*dimRange
	maxDMX := cal.DimmerMin + dimShape.MaxNorm*dimRange

	clampMin := cal.DimmerMin + safety.DimmerFloorNorm*dimRange
	clampMax := cal.DimmerMax
	if safety.DimmerCeilingNorm > 0 {
		clampMax = cal.DimmerMin + safety.DimmerCeilingNorm*dimRange
	}

	seg := entities.ChannelSegment{
		FixtureID: fixture,
		Channel:   values.ChannelDimmer,
		T0Ms:      occ.StartMs,
		T1Ms:      occ.EndMs,
		ClampMin:  clampMin,
		ClampMax:  clampMax,
	}

	base := minDMX
	amplitude := maxDMX - minDMX

	switch {
	case occ.Kind == services.OccurrenceFadeOut:
		// Ramp from the held intensity down to the clamp floor. The
		// envelope modulates the fade span above the floor, then the
		// floor offsets it back into absolute terms.
		held := base + lastSampleValue(dimShape.Curve, opts, sc.tunables.DimmerResolution)*amplitude
		if held < clampMin {
			held = clampMin
		}
		if dimRange == 0 {
			seg.StaticValue = &clampMin
			return seg, nil
		}
		envelope := fadeEnvelope(sc.tunables.EnvelopeResolution)
		spanNorm := (held - clampMin) / dimRange
		floorNorm := (clampMin - cal.DimmerMin) / dimRange
		mixed, err := curves.Compose(curves.ComposeMultiply, constSamples(envelope, spanNorm), envelope)
		if err != nil {
			return entities.ChannelSegment{}, err
		}
		mixed, err = curves.Compose(curves.ComposeAdd, mixed, constSamples(envelope, floorNorm))
		if err != nil {
			return entities.ChannelSegment{}, err
		}
		fade, err := entities.NewPointsCurve(mixed)
		if err != nil {
			return entities.ChannelSegment{}, err
		}
		seg.Curve = &fade
		fadeBase := cal.DimmerMin
		fadeAmp := dimRange
		seg.Base = &fadeBase
		seg.Amplitude = &fadeAmp
		return seg, nil

	case hold:
		static := base + lastSampleValue(dimShape.Curve, opts, sc.tunables.DimmerResolution)*amplitude
		seg.StaticValue = &static
		return seg, nil

	case dimShape.Curve.IsNative() && dimShape.Curve.Shape() == entities.ShapeHold:
		static := base + dimShape.Curve.Params().Level*amplitude
		seg.StaticValue = &static
		return seg, nil
	}

	opts.N = sc.tunables.DimmerResolution
	samples, err := curves.SampleWith(dimShape.Curve, opts)
	if err != nil {
		return entities.ChannelSegment{}, err
	}
	if !occ.Loop {
		samples = append(samples, entities.CurvePoint{T: 1, V: terminalValue(dimShape.Curve, opts)})
	}
	samples = applyClosure(samples, closures[values.ChannelDimmer])
	samples = curves.Simplify(samples, sc.simplifyOpts())

	simplified, err := entities.NewPointsCurve(samples)
	if err != nil {
		return entities.ChannelSegment{}, err
	}
	seg.Curve = &simplified
	seg.Base = &base
	seg.Amplitude = &amplitude
	seg.Groupable = groupable
	return seg, nil
}

// lastSampleValue evaluates a curve at the final grid time of a sampled
// traversal. Loop grids tile the half-open [0,1), so the last frame a
// traversal emits is the sample at (n-1)/n, never t=1; holds freeze
// that frame.
func lastSampleValue(curve entities.Curve, opts curves.SampleOpts, n int) float64 {
	t := float64(n-1) / float64(n)
	return curves.Evaluate(curve, curves.TransformedTime(opts, t))
}

// terminalValue evaluates a curve at t=1 under the occurrence's
// transform. One-shot traversals append it explicitly because the
// sample grid covers only [0,1). t=1 stays t=1: wrapping only folds
// values outside the domain.
func terminalValue(curve entities.Curve, opts curves.SampleOpts) float64 {
	span := opts.Span
	if span <= 0 || span > 1 {
		span = 1
	}
	src := span
	if opts.Reversed {
		src = 1 - src
	}
	src += opts.Offset
	if opts.Wrap && (src < 0 || src > 1) {
		src = math.Mod(src, 1)
		if src < 0 {
			src++
		}
	}
	return curves.Evaluate(curve, src)
}

// fadeEnvelope is the smooth closing ramp used by FADE_OUT remainders:
// 1 down to 0 along an ease-in-out, sampled on an endpoint-inclusive
// grid so the fade lands exactly on the floor.
func fadeEnvelope(resolution int) []entities.CurvePoint {
	points := make([]entities.CurvePoint, resolution)
	for i := range resolution {
		t := float64(i) / float64(resolution-1)
		points[i] = entities.CurvePoint{T: t, V: 1 - t*t*(3-2*t)}
	}
	return points
}

// constSamples builds a constant-level overlay on the same grid as ref.
func constSamples(ref []entities.CurvePoint, level float64) []entities.CurvePoint {
	out := make([]entities.CurvePoint, len(ref))
	for i, p := range ref {
		out[i] = entities.CurvePoint{T: p.T, V: level}
	}
	return out
}

func (sc *StepCompiler) simplifyOpts() curves.SimplifyOpts {
	return curves.SimplifyOpts{
		ST:       sc.tunables.Simplify.ST,
		SV:       sc.tunables.Simplify.SV,
		Epsilon:  sc.tunables.Simplify.Epsilon,
		EpsilonT: sc.tunables.Simplify.EpsilonT,
	}
}
