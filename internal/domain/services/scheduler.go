package services

import (
	"github.com/bluewatersql/twinklr/internal/domain/entities"
	"github.com/bluewatersql/twinklr/internal/domain/values"
)

// OccurrenceKind tags how the step compiler should treat an occurrence.
type OccurrenceKind string

// Occurrence kinds.
const (
	// OccurrencePlay traverses the step's curves over the time range.
	OccurrencePlay OccurrenceKind = "PLAY"
	// OccurrenceHold freezes the end state of the referenced traversal
	// for the whole time range (HOLD_LAST_POSE remainder).
	OccurrenceHold OccurrenceKind = "HOLD"
	// OccurrenceFadeOut holds pose while ramping the dimmer to zero
	// (FADE_OUT remainder).
	OccurrenceFadeOut OccurrenceKind = "FADE_OUT"
)

// StepOccurrence is one concrete placement of a template step on the
// playback timeline.
type StepOccurrence struct {
	Step    entities.TemplateStep
	StartMs int64
	EndMs   int64
	// Reversed marks backward ping-pong traversal. Reversal is realized
	// by re-sampling the curve at 1-t, never by reversing point order.
	Reversed bool
	// Span is the fraction of the step's normalized time actually
	// played; below 1 the occurrence was truncated at the window edge.
	Span float64
	Kind OccurrenceKind
	// Cycle is the index of the repeat cycle the occurrence belongs to.
	Cycle int
	// Loop marks occurrences of the repeating body, which are subject
	// to loop-continuity validation.
	Loop bool
}

// RepeatScheduler expands a template's cycle into concrete step
// occurrences across an arbitrary playback window. Pure state machine
// over (RepeatContract, window); all times in milliseconds.
type RepeatScheduler struct{}

// NewRepeatScheduler creates a new repeat scheduler service.
func NewRepeatScheduler() *RepeatScheduler {
	return &RepeatScheduler{}
}

// Schedule produces the ordered occurrence list for a window of
// windowMs, with barMs converting the template's musical timing.
func (s *RepeatScheduler) Schedule(t *entities.Template, windowMs int64, barMs float64) ([]StepOccurrence, error) {
	if windowMs <= 0 {
		return nil, &entities.SchemaViolationError{Doc: t.ID, Field: "window", Reason: "playback window must be positive"}
	}
	if barMs <= 0 {
		return nil, &entities.SchemaViolationError{Doc: t.ID, Field: "bar_ms", Reason: "bar duration must be positive"}
	}

	if !t.Repeat.Repeatable {
		return s.scheduleOnce(t, windowMs, barMs), nil
	}

	body := t.LoopSteps()
	cycleMs := int64(t.Repeat.CycleBars * barMs)
	if cycleMs <= 0 {
		return nil, &entities.SchemaViolationError{Doc: t.ID, Field: "repeat.cycle_bars", Reason: "cycle duration rounds to zero"}
	}
	for _, step := range body {
		if step.Timing.StartBars+step.Timing.DurationBars > t.Repeat.CycleBars {
			return nil, &entities.SchemaViolationError{
				Doc:    t.ID,
				Field:  "steps." + step.ID + ".timing",
				Reason: "loop step extends past the cycle length",
			}
		}
	}

	if t.Repeat.Mode.Equals(values.RepeatPingPong) {
		return s.schedulePingPong(t, body, windowMs, cycleMs, barMs)
	}
	return s.scheduleJoiner(t, body, windowMs, cycleMs, barMs)
}

// scheduleOnce plays every step a single time, truncating at the window.
func (s *RepeatScheduler) scheduleOnce(t *entities.Template, windowMs int64, barMs float64) []StepOccurrence {
	out := make([]StepOccurrence, 0, len(t.Steps))
	for _, step := range t.Steps {
		occ, ok := placeStep(step, 0, windowMs, barMs, false, 0, false)
		if ok {
			out = append(out, occ)
		}
	}
	return out
}

// schedulePingPong fills the window with forward+backward cycle pairs.
// A full ping-pong cycle is 2*cycleMs.
func (s *RepeatScheduler) schedulePingPong(t *entities.Template, body []entities.TemplateStep, windowMs, cycleMs int64, barMs float64) ([]StepOccurrence, error) {
	fullCycle := 2 * cycleMs
	numFull := windowMs / fullCycle
	remainder := windowMs % fullCycle

	var out []StepOccurrence
	for c := int64(0); c < numFull; c++ {
		base := c * fullCycle
		out = append(out, s.pass(t, body, base, windowMs, barMs, false, int(c))...)
		out = append(out, s.pass(t, body, base+cycleMs, windowMs, barMs, true, int(c))...)
	}

	if remainder == 0 {
		return out, nil
	}

	switch t.Repeat.Remainder {
	case values.RemainderTruncate:
		base := numFull * fullCycle
		out = append(out, s.pass(t, body, base, windowMs, barMs, false, int(numFull))...)
		if remainder > cycleMs {
			out = append(out, s.pass(t, body, base+cycleMs, windowMs, barMs, true, int(numFull))...)
		}

	case values.RemainderHoldLastPose, values.RemainderFadeOut:
		kind := OccurrenceHold
		if t.Repeat.Remainder.Equals(values.RemainderFadeOut) {
			kind = OccurrenceFadeOut
		}
		// After whole cycles the last frame is the backward traversal's
		// end, which is the loop body's opening pose.
		out = append(out, StepOccurrence{
			Step:     body[0],
			StartMs:  numFull * fullCycle,
			EndMs:    windowMs,
			Reversed: true,
			Span:     1,
			Kind:     kind,
			Cycle:    int(numFull),
			Loop:     false,
		})
	}

	return out, nil
}

// scheduleJoiner concatenates forward cycles; the transition back to the
// loop start is authored inside the body (a boundary step at the cycle's
// end), so each cycle is exactly cycleMs long.
func (s *RepeatScheduler) scheduleJoiner(t *entities.Template, body []entities.TemplateStep, windowMs, cycleMs int64, barMs float64) ([]StepOccurrence, error) {
	numFull := windowMs / cycleMs
	remainder := windowMs % cycleMs

	var out []StepOccurrence
	for c := int64(0); c < numFull; c++ {
		out = append(out, s.pass(t, body, c*cycleMs, windowMs, barMs, false, int(c))...)
	}

	if remainder == 0 {
		return out, nil
	}

	switch t.Repeat.Remainder {
	case values.RemainderTruncate:
		out = append(out, s.pass(t, body, numFull*cycleMs, windowMs, barMs, false, int(numFull))...)

	case values.RemainderHoldLastPose, values.RemainderFadeOut:
		kind := OccurrenceHold
		if t.Repeat.Remainder.Equals(values.RemainderFadeOut) {
			kind = OccurrenceFadeOut
		}
		last := body[len(body)-1]
		out = append(out, StepOccurrence{
			Step:    last,
			StartMs: numFull * cycleMs,
			EndMs:   windowMs,
			Span:    1,
			Kind:    kind,
			Cycle:   int(numFull),
			Loop:    false,
		})
	}

	return out, nil
}

// pass schedules one traversal of the body starting at baseMs, cutting
// at limitMs. Backward passes mirror step placement inside the cycle.
func (s *RepeatScheduler) pass(t *entities.Template, body []entities.TemplateStep, baseMs, limitMs int64, barMs float64, reversed bool, cycle int) []StepOccurrence {
	out := make([]StepOccurrence, 0, len(body))
	for _, step := range body {
		startBars := step.Timing.StartBars
		if reversed {
			startBars = t.Repeat.CycleBars - step.Timing.StartBars - step.Timing.DurationBars
		}
		occ, ok := placeStep(step, baseMs+int64(startBars*barMs), limitMs, barMs, reversed, cycle, true)
		if ok {
			out = append(out, occ)
		}
	}
	return out
}

// placeStep builds one occurrence, truncating it at limitMs. Returns
// false when the step starts at or past the limit.
func placeStep(step entities.TemplateStep, startMs, limitMs int64, barMs float64, reversed bool, cycle int, loop bool) (StepOccurrence, bool) {
	if !loop {
		startMs += int64(step.Timing.StartBars * barMs)
	}
	durMs := int64(step.Timing.DurationBars * barMs)
	endMs := startMs + durMs
	if startMs >= limitMs || durMs <= 0 {
		return StepOccurrence{}, false
	}

	span := 1.0
	if endMs > limitMs {
		span = float64(limitMs-startMs) / float64(durMs)
		endMs = limitMs
	}

	return StepOccurrence{
		Step:     step,
		StartMs:  startMs,
		EndMs:    endMs,
		Reversed: reversed,
		Span:     span,
		Kind:     OccurrencePlay,
		Cycle:    cycle,
		Loop:     loop,
	}, true
}
