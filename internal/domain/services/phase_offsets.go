package services

import (
	"github.com/bluewatersql/twinklr/internal/domain/entities"
	"github.com/bluewatersql/twinklr/internal/domain/values"
)

// PhaseOffsetCalculator derives per-fixture time shifts from a rig chase
// order and a spread duration, expressed as fractions of the step's
// duration.
type PhaseOffsetCalculator struct{}

// NewPhaseOffsetCalculator creates a new phase offset calculator service.
func NewPhaseOffsetCalculator() *PhaseOffsetCalculator {
	return &PhaseOffsetCalculator{}
}

// Compute returns offsets for every target fixture. Mode NONE yields all
// zeros. Mode GROUP_ORDER filters the named order down to the targets,
// preserving the order's relative sequence: orders encode spatial intent
// (e.g. OUTSIDE_IN) and are never re-sorted by fixture id.
func (p *PhaseOffsetCalculator) Compute(
	stepID string,
	spec *entities.PhaseOffsetSpec,
	fixtures []string,
	durationBars float64,
	rig *entities.RigProfile,
) (map[string]float64, error) {
	offsets := make(map[string]float64, len(fixtures))
	for _, fixture := range fixtures {
		offsets[fixture] = 0
	}

	if spec == nil || spec.Mode.Equals(values.PhaseNone) || spec.Mode.IsZero() {
		return offsets, nil
	}

	order, ok := rig.Order(spec.Order)
	if !ok {
		return nil, &entities.CompositionError{
			StepID: stepID,
			Reason: "unknown order: " + spec.Order,
		}
	}

	target := make(map[string]bool, len(fixtures))
	for _, fixture := range fixtures {
		target[fixture] = true
	}

	filtered := make([]string, 0, len(fixtures))
	for _, fixture := range order {
		if target[fixture] {
			filtered = append(filtered, fixture)
		}
	}
	if len(filtered) <= 1 {
		return offsets, nil
	}

	if durationBars <= 0 {
		return nil, &entities.CompositionError{
			StepID: stepID,
			Reason: "phase spread requires a positive step duration",
		}
	}
	spreadNorm := spec.SpreadBars / durationBars

	// LINEAR is the only distribution today; the enum exists so rigs
	// can adopt new spreads without template changes.
	n := len(filtered)
	for i, fixture := range filtered {
		offsets[fixture] = float64(i) / float64(n-1) * spreadNorm
	}

	return offsets, nil
}
