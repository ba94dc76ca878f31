package values

import (
	"fmt"
	"strings"
)

// PhaseMode selects how per-fixture phase offsets are derived for a step.
type PhaseMode struct {
	value string
}

// Predefined phase modes
var (
	PhaseNone       = PhaseMode{"NONE"}
	PhaseGroupOrder = PhaseMode{"GROUP_ORDER"}
)

// NewPhaseMode creates a PhaseMode from string
func NewPhaseMode(s string) (PhaseMode, error) {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "", "NONE":
		return PhaseNone, nil
	case "GROUP_ORDER":
		return PhaseGroupOrder, nil
	default:
		return PhaseMode{}, fmt.Errorf("invalid phase mode: %s", s)
	}
}

// MustNewPhaseMode creates a PhaseMode or panics (for tests/constants)
func MustNewPhaseMode(s string) PhaseMode {
	m, err := NewPhaseMode(s)
	if err != nil {
		panic(err)
	}
	return m
}

// String returns the string representation
func (m PhaseMode) String() string { return m.value }

// IsZero returns true if this is the zero value
func (m PhaseMode) IsZero() bool { return m.value == "" }

// Equals checks if two phase modes are equal
func (m PhaseMode) Equals(other PhaseMode) bool { return m.value == other.value }

// Distribution shapes how phase offsets spread across an ordered fixture set.
type Distribution struct {
	value string
}

// Predefined distributions
var (
	DistributionLinear = Distribution{"LINEAR"}
)

// NewDistribution creates a Distribution from string
func NewDistribution(s string) (Distribution, error) {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "", "LINEAR":
		return DistributionLinear, nil
	default:
		return Distribution{}, fmt.Errorf("invalid distribution: %s", s)
	}
}

// MustNewDistribution creates a Distribution or panics (for tests/constants)
func MustNewDistribution(s string) Distribution {
	d, err := NewDistribution(s)
	if err != nil {
		panic(err)
	}
	return d
}

// String returns the string representation
func (d Distribution) String() string { return d.value }

// IsZero returns true if this is the zero value
func (d Distribution) IsZero() bool { return d.value == "" }

// Equals checks if two distributions are equal
func (d Distribution) Equals(other Distribution) bool { return d.value == other.value }
