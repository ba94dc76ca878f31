package values

import (
	"fmt"
	"strings"
)

// RepeatMode selects how a template's loop body fills a playback window.
type RepeatMode struct {
	value string
}

// Predefined repeat modes
var (
	RepeatPingPong = RepeatMode{"PING_PONG"}
	RepeatJoiner   = RepeatMode{"JOINER"}
)

// NewRepeatMode creates a RepeatMode from string
func NewRepeatMode(s string) (RepeatMode, error) {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "PING_PONG":
		return RepeatPingPong, nil
	case "JOINER":
		return RepeatJoiner, nil
	default:
		return RepeatMode{}, fmt.Errorf("invalid repeat mode: %s", s)
	}
}

// MustNewRepeatMode creates a RepeatMode or panics (for tests/constants)
func MustNewRepeatMode(s string) RepeatMode {
	m, err := NewRepeatMode(s)
	if err != nil {
		panic(err)
	}
	return m
}

// String returns the string representation
func (m RepeatMode) String() string { return m.value }

// IsZero returns true if this is the zero value
func (m RepeatMode) IsZero() bool { return m.value == "" }

// Equals checks if two repeat modes are equal
func (m RepeatMode) Equals(other RepeatMode) bool { return m.value == other.value }

// RemainderPolicy decides what happens to the tail of a playback window
// that does not hold a full repeat cycle.
type RemainderPolicy struct {
	value string
}

// Predefined remainder policies
var (
	RemainderTruncate     = RemainderPolicy{"TRUNCATE"}
	RemainderHoldLastPose = RemainderPolicy{"HOLD_LAST_POSE"}
	RemainderFadeOut      = RemainderPolicy{"FADE_OUT"}
)

// NewRemainderPolicy creates a RemainderPolicy from string
func NewRemainderPolicy(s string) (RemainderPolicy, error) {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "TRUNCATE":
		return RemainderTruncate, nil
	case "HOLD_LAST_POSE":
		return RemainderHoldLastPose, nil
	case "FADE_OUT":
		return RemainderFadeOut, nil
	case "":
		// Templates that never repeat may omit the policy.
		return RemainderTruncate, nil
	default:
		return RemainderPolicy{}, fmt.Errorf("invalid remainder policy: %s", s)
	}
}

// MustNewRemainderPolicy creates a RemainderPolicy or panics (for tests/constants)
func MustNewRemainderPolicy(s string) RemainderPolicy {
	p, err := NewRemainderPolicy(s)
	if err != nil {
		panic(err)
	}
	return p
}

// String returns the string representation
func (p RemainderPolicy) String() string { return p.value }

// IsZero returns true if this is the zero value
func (p RemainderPolicy) IsZero() bool { return p.value == "" }

// Equals checks if two remainder policies are equal
func (p RemainderPolicy) Equals(other RemainderPolicy) bool { return p.value == other.value }
