package services

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bluewatersql/twinklr/internal/curves"
	"github.com/bluewatersql/twinklr/internal/domain/entities"
)

func Test_MovementResolver_Resolve_NilSpecIsStatic(t *testing.T) {
	t.Parallel()

	m := NewMovementResolver()

	shape, err := m.Resolve(nil)
	require.NoError(t, err)

	assert.Equal(t, 0.0, shape.PanAmplitude)
	assert.Equal(t, 0.0, shape.TiltAmplitude)
	// Centered hold: zero delta when materialized offset-centered.
	assert.Equal(t, 0.5, curves.Evaluate(shape.Pan, 0.3))
}

func Test_MovementResolver_Resolve_Kinds(t *testing.T) {
	tests := []struct {
		name     string
		kind     entities.MovementKind
		wantPan  float64
		wantTilt float64
	}{
		{"static", entities.MovementStatic, 0, 0},
		{"sway", entities.MovementSway, swayPanAmplitude, 0},
		{"nod", entities.MovementNod, 0, nodTiltAmplitude},
		{"circle", entities.MovementCircle, circleAmplitude, circleAmplitude},
		{"figure eight", entities.MovementFigureEight, figurePanAmplitude, figureTiltAmplitude},
	}

	m := NewMovementResolver()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			shape, err := m.Resolve(&entities.MovementSpec{Kind: tt.kind})
			require.NoError(t, err)

			assert.InDelta(t, tt.wantPan, shape.PanAmplitude, 1e-12)
			assert.InDelta(t, tt.wantTilt, shape.TiltAmplitude, 1e-12)
		})
	}
}

func Test_MovementResolver_Resolve_IntensityScalesAmplitude(t *testing.T) {
	t.Parallel()

	m := NewMovementResolver()

	shape, err := m.Resolve(&entities.MovementSpec{Kind: entities.MovementSway, Intensity: 0.5})
	require.NoError(t, err)

	assert.InDelta(t, swayPanAmplitude*0.5, shape.PanAmplitude, 1e-12)
}

func Test_MovementResolver_Resolve_CircleTiltLagsQuarterPeriod(t *testing.T) {
	t.Parallel()

	m := NewMovementResolver()

	shape, err := m.Resolve(&entities.MovementSpec{Kind: entities.MovementCircle})
	require.NoError(t, err)

	// At t=0 pan sits at center while tilt is at its peak: a circle, not
	// a diagonal.
	assert.InDelta(t, 0.5, curves.Evaluate(shape.Pan, 0), 1e-12)
	assert.InDelta(t, 1.0, curves.Evaluate(shape.Tilt, 0), 1e-12)
}

func Test_MovementResolver_Resolve_FigureEightDoublesTiltCycles(t *testing.T) {
	t.Parallel()

	m := NewMovementResolver()

	shape, err := m.Resolve(&entities.MovementSpec{Kind: entities.MovementFigureEight, Cycles: 1})
	require.NoError(t, err)

	assert.Equal(t, 1.0, shape.Pan.Params().Cycles)
	assert.Equal(t, 2.0, shape.Tilt.Params().Cycles)
}

func Test_MovementResolver_Resolve_CustomCurveDrivesPan(t *testing.T) {
	t.Parallel()

	m := NewMovementResolver()
	custom := entities.MustNewPointsCurve([]entities.CurvePoint{{T: 0, V: 0.5}, {T: 1, V: 0.5}})

	shape, err := m.Resolve(&entities.MovementSpec{Custom: &custom})
	require.NoError(t, err)

	assert.True(t, shape.Pan.IsPoints())
	assert.InDelta(t, customAmplitude, shape.PanAmplitude, 1e-12)
	assert.Equal(t, 0.0, shape.TiltAmplitude)
}

func Test_MovementResolver_Resolve_UnknownKindFails(t *testing.T) {
	t.Parallel()

	m := NewMovementResolver()

	_, err := m.Resolve(&entities.MovementSpec{Kind: "WOBBLE"})
	require.Error(t, err)

	var schemaErr *entities.SchemaViolationError
	assert.ErrorAs(t, err, &schemaErr)
}
