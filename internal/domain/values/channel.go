// Package values contains domain value objects that encapsulate
// primitive types with validation and such.
package values

import (
	"fmt"
	"strings"
)

// Channel identifies a controllable fixture channel.
// Enforces the closed channel set and provides canonical ordering.
type Channel struct {
	value channelKind
}

// channelKind is the internal representation
type channelKind int

const (
	channelUnknown channelKind = 0
	channelPan     channelKind = 1
	channelTilt    channelKind = 2
	channelDimmer  channelKind = 3
)

// Predefined channel values
var (
	ChannelPan    = Channel{channelPan}
	ChannelTilt   = Channel{channelTilt}
	ChannelDimmer = Channel{channelDimmer}
)

// NewChannel creates a Channel from string
func NewChannel(s string) (Channel, error) {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "PAN":
		return ChannelPan, nil
	case "TILT":
		return ChannelTilt, nil
	case "DIMMER":
		return ChannelDimmer, nil
	default:
		return Channel{}, fmt.Errorf("invalid channel: %s", s)
	}
}

// MustNewChannel creates a Channel or panics (for tests/constants)
func MustNewChannel(s string) Channel {
	c, err := NewChannel(s)
	if err != nil {
		panic(err)
	}
	return c
}

// String returns the string representation
func (c Channel) String() string {
	switch c.value {
	case channelPan:
		return "PAN"
	case channelTilt:
		return "TILT"
	case channelDimmer:
		return "DIMMER"
	default:
		return ""
	}
}

// Order returns the numeric rank used for canonical IR ordering.
func (c Channel) Order() int {
	return int(c.value)
}

// IsZero returns true if this is the zero value
func (c Channel) IsZero() bool {
	return c.value == channelUnknown
}

// Equals checks if two channels are equal
func (c Channel) Equals(other Channel) bool {
	return c.value == other.value
}

// MarshalJSON implements json.Marshaler
func (c Channel) MarshalJSON() ([]byte, error) {
	return []byte(`"` + c.String() + `"`), nil
}

// UnmarshalJSON implements json.Unmarshaler
func (c *Channel) UnmarshalJSON(data []byte) error {
	str := string(data)
	if len(str) < 2 || str[0] != '"' || str[len(str)-1] != '"' {
		return fmt.Errorf("invalid channel JSON: %s", str)
	}
	ch, err := NewChannel(str[1 : len(str)-1])
	if err != nil {
		return err
	}
	*c = ch
	return nil
}
