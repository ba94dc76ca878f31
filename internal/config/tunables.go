// Package config provides the ingestion boundary for choreography
// documents: YAML loading, JSON Schema validation, schema-version
// gating, and the compiler's tunable configuration.
package config

import (
	"fmt"
	"os"

	"github.com/goccy/go-yaml"
)

// Continuity failure policies.
const (
	ContinuityWarnFix = "warn_fix"
	ContinuityStrict  = "strict"
	ContinuitySilent  = "silent"
)

// Tunables are the compiler's internal configuration: sampling
// resolutions per channel family, simplification tolerances, and
// loop-continuity enforcement. Not part of the template schema.
type Tunables struct {
	// Sampling resolutions. Fixed per channel family so phase offsets
	// stay exact index rotations.
	MovementResolution int `yaml:"movement_resolution"`
	DimmerResolution   int `yaml:"dimmer_resolution"`
	EnvelopeResolution int `yaml:"envelope_resolution"`

	Simplify   SimplifyTunables   `yaml:"simplify"`
	Continuity ContinuityTunables `yaml:"continuity"`

	// Parallel compilation of step occurrences.
	Parallel           bool `yaml:"parallel"`
	MaxConcurrentSteps int  `yaml:"max_concurrent_steps"`
}

// SimplifyTunables configure the RDP pass.
type SimplifyTunables struct {
	ST       float64 `yaml:"st"`
	SV       float64 `yaml:"sv"`
	Epsilon  float64 `yaml:"epsilon"`
	EpsilonT float64 `yaml:"epsilon_t"`
}

// ContinuityTunables configure loop-boundary validation.
type ContinuityTunables struct {
	Epsilon0 float64 `yaml:"epsilon0"`
	Epsilon1 float64 `yaml:"epsilon1"`
	CheckC1  bool    `yaml:"check_c1"`
	Policy   string  `yaml:"policy"`
}

// DefaultTunables returns the standard configuration: one DMX step of
// simplification tolerance and the warn+auto-fix continuity policy.
func DefaultTunables() Tunables {
	return Tunables{
		MovementResolution: 64,
		DimmerResolution:   32,
		EnvelopeResolution: 5,
		Simplify: SimplifyTunables{
			ST:       1,
			SV:       1,
			Epsilon:  1.0 / 255.0,
			EpsilonT: 0,
		},
		Continuity: ContinuityTunables{
			Epsilon0: 1.0 / 255.0,
			Epsilon1: 2.0 / 255.0,
			CheckC1:  false,
			Policy:   ContinuityWarnFix,
		},
		Parallel:           true,
		MaxConcurrentSteps: 8,
	}
}

// LoadTunables loads tunables from a YAML file, applying defaults for
// the whole file when it does not exist.
func LoadTunables(path string) (Tunables, error) {
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return DefaultTunables(), nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return Tunables{}, fmt.Errorf("failed to read tunables: %w", err)
	}

	tun := DefaultTunables()
	if err := yaml.Unmarshal(data, &tun); err != nil {
		return Tunables{}, fmt.Errorf("failed to parse tunables: %w", err)
	}

	if err := tun.Validate(); err != nil {
		return Tunables{}, err
	}
	return tun, nil
}

// Validate rejects configurations the compiler cannot honor.
func (t Tunables) Validate() error {
	if t.MovementResolution < 2 || t.DimmerResolution < 2 || t.EnvelopeResolution < 2 {
		return fmt.Errorf("sampling resolutions must be at least 2")
	}
	if t.Simplify.Epsilon <= 0 {
		return fmt.Errorf("simplify epsilon must be positive")
	}
	if t.Simplify.EpsilonT < 0 {
		return fmt.Errorf("simplify epsilon_t cannot be negative")
	}
	if t.Continuity.Epsilon0 <= 0 || t.Continuity.Epsilon1 <= 0 {
		return fmt.Errorf("continuity tolerances must be positive")
	}
	switch t.Continuity.Policy {
	case ContinuityWarnFix, ContinuityStrict, ContinuitySilent:
	default:
		return fmt.Errorf("unknown continuity policy: %s", t.Continuity.Policy)
	}
	if t.MaxConcurrentSteps < 0 {
		return fmt.Errorf("max_concurrent_steps cannot be negative")
	}
	return nil
}
