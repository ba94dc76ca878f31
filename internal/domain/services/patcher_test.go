package services

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bluewatersql/twinklr/internal/domain/entities"
	"github.com/bluewatersql/twinklr/internal/domain/values"
)

func baseTemplate() *entities.Template {
	return &entities.Template{
		ID: "wave",
		Repeat: entities.RepeatContract{
			Repeatable: true,
			Mode:       values.RepeatPingPong,
			CycleBars:  2,
			Remainder:  values.RemainderTruncate,
		},
		Safety: entities.SafetyDefaults{DimmerFloorNorm: 0.05},
		Steps: []entities.TemplateStep{
			{
				ID:       "sweep",
				Group:    "ALL",
				Timing:   entities.BaseTiming{StartBars: 0, DurationBars: 2},
				Geometry: entities.GeometrySpec{Pose: "HOME"},
				Movement: &entities.MovementSpec{Kind: entities.MovementSway, Intensity: 0.5},
				Dimmer:   &entities.DimmerSpec{Kind: entities.DimmerHold, MaxNorm: 1},
			},
		},
	}
}

func floatPtr(v float64) *float64 { return &v }

func Test_TemplatePatcher_Apply_NoLayers(t *testing.T) {
	t.Parallel()

	patcher := NewTemplatePatcher()
	base := baseTemplate()

	result, prov, err := patcher.Apply(base)
	require.NoError(t, err)

	assert.Equal(t, base.ID, result.ID)
	assert.Empty(t, prov)
}

func Test_TemplatePatcher_Apply_Precedence(t *testing.T) {
	t.Parallel()

	patcher := NewTemplatePatcher()

	preset := &entities.TemplatePatch{
		Safety: &entities.SafetyPatch{DimmerFloorNorm: floatPtr(0.1)},
	}
	modifier := &entities.TemplatePatch{
		Safety: &entities.SafetyPatch{DimmerFloorNorm: floatPtr(0.2)},
	}

	result, prov, err := patcher.Apply(baseTemplate(),
		PatchLayer{Name: LayerPreset, Patch: preset},
		PatchLayer{Name: LayerModifier, Patch: modifier},
	)
	require.NoError(t, err)

	// Later layers win; provenance records the winner.
	assert.Equal(t, 0.2, result.Safety.DimmerFloorNorm)
	assert.Equal(t, LayerModifier, prov["safety.dimmer_floor_norm"])
}

func Test_TemplatePatcher_Apply_StepScalarOverride(t *testing.T) {
	t.Parallel()

	patcher := NewTemplatePatcher()

	patch := &entities.TemplatePatch{
		Steps: map[string]entities.StepPatch{
			"sweep": {DurationBars: floatPtr(1)},
		},
	}

	result, prov, err := patcher.Apply(baseTemplate(), PatchLayer{Name: LayerPreset, Patch: patch})
	require.NoError(t, err)

	step, _ := result.Step("sweep")
	assert.Equal(t, 1.0, step.Timing.DurationBars)
	assert.Equal(t, 0.0, step.Timing.StartBars)
	assert.Equal(t, LayerPreset, prov["steps.sweep.timing.duration_bars"])
}

func Test_TemplatePatcher_Apply_SpecReplacesWhole(t *testing.T) {
	t.Parallel()

	patcher := NewTemplatePatcher()

	// The patch movement omits intensity; the base value must NOT leak
	// through, because specs replace as whole value objects.
	patch := &entities.TemplatePatch{
		Steps: map[string]entities.StepPatch{
			"sweep": {Movement: &entities.MovementSpec{Kind: entities.MovementCircle}},
		},
	}

	result, _, err := patcher.Apply(baseTemplate(), PatchLayer{Name: LayerModifier, Patch: patch})
	require.NoError(t, err)

	step, _ := result.Step("sweep")
	assert.Equal(t, entities.MovementCircle, step.Movement.Kind)
	assert.Equal(t, 0.0, step.Movement.Intensity)
}

func Test_TemplatePatcher_Apply_UnknownStepFails(t *testing.T) {
	t.Parallel()

	patcher := NewTemplatePatcher()

	patch := &entities.TemplatePatch{
		Steps: map[string]entities.StepPatch{
			"missing": {DurationBars: floatPtr(1)},
		},
	}

	_, _, err := patcher.Apply(baseTemplate(), PatchLayer{Name: LayerPreset, Patch: patch})
	require.Error(t, err)

	var schemaErr *entities.SchemaViolationError
	assert.ErrorAs(t, err, &schemaErr)
}

func Test_TemplatePatcher_Apply_DoesNotMutateBase(t *testing.T) {
	t.Parallel()

	patcher := NewTemplatePatcher()
	base := baseTemplate()

	patch := &entities.TemplatePatch{
		Repeat: &entities.RepeatPatch{CycleBars: floatPtr(8)},
		Steps: map[string]entities.StepPatch{
			"sweep": {
				Movement: &entities.MovementSpec{Kind: entities.MovementNod},
			},
		},
	}

	result, _, err := patcher.Apply(base, PatchLayer{Name: LayerPerCycle, Patch: patch})
	require.NoError(t, err)

	assert.Equal(t, 8.0, result.Repeat.CycleBars)
	assert.Equal(t, 2.0, base.Repeat.CycleBars)
	assert.Equal(t, entities.MovementSway, base.Steps[0].Movement.Kind)
}

func Test_TemplatePatcher_Apply_InvalidResultFails(t *testing.T) {
	t.Parallel()

	patcher := NewTemplatePatcher()

	// Zero duration passes the patch merge but fails final validation.
	patch := &entities.TemplatePatch{
		Steps: map[string]entities.StepPatch{
			"sweep": {DurationBars: floatPtr(0)},
		},
	}

	_, _, err := patcher.Apply(baseTemplate(), PatchLayer{Name: LayerModifier, Patch: patch})
	assert.Error(t, err)
}

func Test_TemplatePatcher_Apply_RemainderOverride(t *testing.T) {
	t.Parallel()

	patcher := NewTemplatePatcher()
	remainder := "FADE_OUT"

	patch := &entities.TemplatePatch{
		Repeat: &entities.RepeatPatch{Remainder: &remainder},
	}

	result, prov, err := patcher.Apply(baseTemplate(), PatchLayer{Name: LayerPreset, Patch: patch})
	require.NoError(t, err)

	assert.True(t, result.Repeat.Remainder.Equals(values.RemainderFadeOut))
	assert.Equal(t, LayerPreset, prov["repeat.remainder"])
}
