package entities

import (
	"fmt"

	"github.com/bluewatersql/twinklr/internal/domain/values"
)

// SchemaViolationError indicates a malformed template or rig structure,
// detected either at document ingestion or by an entity constructor.
// Always fatal; no partial IR is produced.
type SchemaViolationError struct {
	Doc    string
	Field  string
	Reason string
}

func (e *SchemaViolationError) Error() string {
	if e.Doc != "" {
		return fmt.Sprintf("schema violation in %s: %s: %s", e.Doc, e.Field, e.Reason)
	}
	return fmt.Sprintf("schema violation: %s: %s", e.Field, e.Reason)
}

// CompositionError indicates a step that cannot be resolved against the
// rig: empty target group, unbound role, or a missing pose/aim token.
// Fatal for the compile call.
type CompositionError struct {
	StepID  string
	Fixture string
	Reason  string
}

func (e *CompositionError) Error() string {
	if e.Fixture != "" {
		return fmt.Sprintf("composition error in step %s (fixture %s): %s", e.StepID, e.Fixture, e.Reason)
	}
	return fmt.Sprintf("composition error in step %s: %s", e.StepID, e.Reason)
}

// ContinuityViolationError indicates a loop-boundary or ping-pong
// turnaround tolerance breach. Fatal only under the strict policy; the
// default policy auto-fixes and logs instead of returning this.
type ContinuityViolationError struct {
	StepID    string
	Fixture   string
	Channel   values.Channel
	Delta     float64
	Tolerance float64
}

func (e *ContinuityViolationError) Error() string {
	return fmt.Sprintf(
		"loop continuity violation in step %s (fixture %s, channel %s): delta %.6f exceeds tolerance %.6f",
		e.StepID, e.Fixture, e.Channel, e.Delta, e.Tolerance,
	)
}

// RangeAssertionError indicates a curve value escaped [0,1] before the
// late-clamp stage. This is a resolver/composer bug, never an authoring
// problem, and is always fatal. Clamping it early would hide the defect.
type RangeAssertionError struct {
	Context string
	Value   float64
}

func (e *RangeAssertionError) Error() string {
	return fmt.Sprintf("range assertion failed in %s: value %.6f outside [0,1]", e.Context, e.Value)
}
