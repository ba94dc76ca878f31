package services

import (
	"fmt"

	"github.com/bluewatersql/twinklr/internal/domain/entities"
	"github.com/bluewatersql/twinklr/internal/domain/values"
)

// Canonical patch layer names, lowest precedence first.
const (
	LayerBase     = "base"
	LayerPreset   = "preset"
	LayerModifier = "modifier"
	LayerPerCycle = "per_cycle"
)

// PatchLayer names one overlay in the precedence chain.
type PatchLayer struct {
	Name  string
	Patch *entities.TemplatePatch
}

// Provenance records which layer last set each field, keyed by a dotted
// field path. Carried as a parallel metadata map for debugging; never
// interleaved with the template data itself.
type Provenance map[string]string

// TemplatePatcher applies preset/modifier/per-cycle overlays to a base
// template with fixed precedence. This is a DOMAIN SERVICE because the
// precedence and merge rules are business rules.
//
// Merge Semantics:
//   - Scalar fields: overlay wins when set (pointer fields)
//   - Step patches: merged key-wise by step id
//   - Geometry/movement/dimmer/phase specs: replaced as whole values
//   - Safety clamps: never applied here; enforcement is export-time only
//
// Inputs are never mutated; Apply returns a new Template.
type TemplatePatcher struct{}

// NewTemplatePatcher creates a new template patcher service.
func NewTemplatePatcher() *TemplatePatcher {
	return &TemplatePatcher{}
}

// Apply folds the layers onto the base in order. Nil patches are
// skipped, so callers can pass the full base/preset/modifier/per-cycle
// chain unconditionally. Returns a NEW template and the provenance map.
func (p *TemplatePatcher) Apply(base *entities.Template, layers ...PatchLayer) (*entities.Template, Provenance, error) {
	result := DeepCopyTemplate(base)
	prov := Provenance{}

	for _, layer := range layers {
		if layer.Patch == nil {
			continue
		}
		if err := p.applyOne(result, layer, prov); err != nil {
			return nil, nil, err
		}
	}

	if err := result.Validate(); err != nil {
		return nil, nil, fmt.Errorf("patched template invalid: %w", err)
	}
	return result, prov, nil
}

// applyOne merges a single overlay into the working copy (mutates the
// copy; Apply owns it).
func (p *TemplatePatcher) applyOne(t *entities.Template, layer PatchLayer, prov Provenance) error {
	patch := layer.Patch

	if patch.Repeat != nil {
		if patch.Repeat.CycleBars != nil {
			t.Repeat.CycleBars = *patch.Repeat.CycleBars
			prov["repeat.cycle_bars"] = layer.Name
		}
		if patch.Repeat.Remainder != nil {
			policy, err := values.NewRemainderPolicy(*patch.Repeat.Remainder)
			if err != nil {
				return &entities.SchemaViolationError{
					Doc:    t.ID,
					Field:  "patch." + layer.Name + ".repeat.remainder",
					Reason: err.Error(),
				}
			}
			t.Repeat.Remainder = policy
			prov["repeat.remainder"] = layer.Name
		}
	}

	if patch.Safety != nil {
		if patch.Safety.DimmerFloorNorm != nil {
			t.Safety.DimmerFloorNorm = *patch.Safety.DimmerFloorNorm
			prov["safety.dimmer_floor_norm"] = layer.Name
		}
		if patch.Safety.DimmerCeilingNorm != nil {
			t.Safety.DimmerCeilingNorm = *patch.Safety.DimmerCeilingNorm
			prov["safety.dimmer_ceiling_norm"] = layer.Name
		}
	}

	for stepID, sp := range patch.Steps {
		idx := -1
		for i := range t.Steps {
			if t.Steps[i].ID == stepID {
				idx = i
				break
			}
		}
		if idx < 0 {
			return &entities.SchemaViolationError{
				Doc:    t.ID,
				Field:  "patch." + layer.Name + ".steps",
				Reason: "unknown step id: " + stepID,
			}
		}
		p.applyStepPatch(&t.Steps[idx], stepID, sp, layer.Name, prov)
	}

	return nil
}

func (p *TemplatePatcher) applyStepPatch(step *entities.TemplateStep, stepID string, sp entities.StepPatch, layerName string, prov Provenance) {
	prefix := "steps." + stepID + "."

	if sp.Group != nil {
		step.Group = *sp.Group
		prov[prefix+"group"] = layerName
	}
	if sp.StartBars != nil {
		step.Timing.StartBars = *sp.StartBars
		prov[prefix+"timing.start_bars"] = layerName
	}
	if sp.DurationBars != nil {
		step.Timing.DurationBars = *sp.DurationBars
		prov[prefix+"timing.duration_bars"] = layerName
	}
	if sp.Phase != nil {
		phase := *sp.Phase
		step.Phase = &phase
		prov[prefix+"phase"] = layerName
	}
	if sp.Geometry != nil {
		step.Geometry = *sp.Geometry
		prov[prefix+"geometry"] = layerName
	}
	if sp.Movement != nil {
		movement := *sp.Movement
		step.Movement = &movement
		prov[prefix+"movement"] = layerName
	}
	if sp.Dimmer != nil {
		dimmer := *sp.Dimmer
		step.Dimmer = &dimmer
		prov[prefix+"dimmer"] = layerName
	}
}
