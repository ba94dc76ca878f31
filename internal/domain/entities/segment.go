package entities

import (
	"github.com/bluewatersql/twinklr/internal/domain/values"
)

// ChannelSegment is the compiler's output unit: one fixture, one
// channel, one time range, one static value or curve. Segments carry
// normalized values plus the composition hints the exporter needs to
// materialize DMX (clamp-late: no value is clamped before export).
type ChannelSegment struct {
	FixtureID string         `json:"fixture_id"`
	Channel   values.Channel `json:"channel"`
	T0Ms      int64          `json:"t0_ms"`
	T1Ms      int64          `json:"t1_ms"`

	// Exactly one of StaticValue / Curve is set.
	StaticValue *float64 `json:"static_value,omitempty"`
	Curve       *Curve   `json:"curve,omitempty"`

	// Movement composition hints: dmx = Base + (v-0.5)*Amplitude.
	// OffsetCentered implies Base and Amplitude are present.
	OffsetCentered bool     `json:"offset_centered,omitempty"`
	Base           *float64 `json:"base,omitempty"`
	Amplitude      *float64 `json:"amplitude,omitempty"`

	// Export-time clamp bounds in DMX space.
	ClampMin float64 `json:"clamp_min"`
	ClampMax float64 `json:"clamp_max"`

	// Groupable marks fixtures whose resulting curves are identical and
	// may be merged downstream. Never set across distinct phase offsets.
	Groupable bool `json:"groupable,omitempty"`
}

// Validate enforces the IR invariants. The compiler calls this on every
// segment it emits; a failure here is a compiler bug surfacing early.
func (s *ChannelSegment) Validate() error {
	if s.FixtureID == "" {
		return &SchemaViolationError{Field: "segment.fixture_id", Reason: "fixture id cannot be empty"}
	}
	if s.Channel.IsZero() {
		return &SchemaViolationError{Field: "segment.channel", Reason: "channel is required"}
	}
	if s.T0Ms > s.T1Ms {
		return &SchemaViolationError{Field: "segment.t0_ms", Reason: "t0 must not exceed t1"}
	}
	if (s.StaticValue == nil) == (s.Curve == nil) {
		return &SchemaViolationError{Field: "segment", Reason: "exactly one of static_value and curve must be set"}
	}
	if s.OffsetCentered && (s.Base == nil || s.Amplitude == nil) {
		return &SchemaViolationError{Field: "segment", Reason: "offset_centered requires base and amplitude"}
	}
	if s.ClampMin > s.ClampMax {
		return &SchemaViolationError{Field: "segment.clamp_min", Reason: "clamp_min must not exceed clamp_max"}
	}
	return nil
}

// Less defines the canonical IR ordering: (fixture_id, channel, t0_ms).
// The orchestrator sorts with this regardless of execution order.
func (s *ChannelSegment) Less(other *ChannelSegment) bool {
	if s.FixtureID != other.FixtureID {
		return s.FixtureID < other.FixtureID
	}
	if s.Channel.Order() != other.Channel.Order() {
		return s.Channel.Order() < other.Channel.Order()
	}
	return s.T0Ms < other.T0Ms
}
