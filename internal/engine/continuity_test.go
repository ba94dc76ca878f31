package engine

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bluewatersql/twinklr/internal/config"
	"github.com/bluewatersql/twinklr/internal/domain/entities"
	"github.com/bluewatersql/twinklr/internal/domain/values"
)

func continuityTunables(policy string) config.ContinuityTunables {
	tun := config.DefaultTunables().Continuity
	tun.Policy = policy
	return tun
}

func Test_ContinuityChecker_Check_CleanLoopPasses(t *testing.T) {
	t.Parallel()

	checker := newContinuityChecker(continuityTunables(config.ContinuityWarnFix))
	sine := entities.MustNewNativeCurve(entities.ShapeSine, entities.NativeParams{Cycles: 1})

	closure, warnings, err := checker.Check("s1", values.ChannelPan, sine, 4000, 500, false)
	require.NoError(t, err)

	assert.Equal(t, 0.0, closure)
	assert.Empty(t, warnings)
}

func Test_ContinuityChecker_Check_WarnFixReturnsClosure(t *testing.T) {
	t.Parallel()

	checker := newContinuityChecker(continuityTunables(config.ContinuityWarnFix))
	// y(0)=0, y(1)=0.5: a clear boundary jump.
	ramp := entities.MustNewPointsCurve([]entities.CurvePoint{{T: 0, V: 0}, {T: 1, V: 0.5}})

	closure, warnings, err := checker.Check("s1", values.ChannelDimmer, ramp, 4000, 500, false)
	require.NoError(t, err)

	// min(1/16 bar, 100ms) = min(31.25, 100) = 31.25ms of 4000ms.
	assert.InDelta(t, 31.25/4000, closure, 1e-9)
	require.Len(t, warnings, 1)
	assert.Contains(t, warnings[0], "s1")
	assert.Contains(t, warnings[0], "DIMMER")
}

func Test_ContinuityChecker_Check_StrictFails(t *testing.T) {
	t.Parallel()

	checker := newContinuityChecker(continuityTunables(config.ContinuityStrict))
	ramp := entities.MustNewPointsCurve([]entities.CurvePoint{{T: 0, V: 0}, {T: 1, V: 0.5}})

	_, _, err := checker.Check("s1", values.ChannelDimmer, ramp, 4000, 500, false)
	require.Error(t, err)

	var contErr *entities.ContinuityViolationError
	require.ErrorAs(t, err, &contErr)
	assert.InDelta(t, 0.5, contErr.Delta, 1e-9)
}

func Test_ContinuityChecker_Check_SilentFixesQuietly(t *testing.T) {
	t.Parallel()

	checker := newContinuityChecker(continuityTunables(config.ContinuitySilent))
	ramp := entities.MustNewPointsCurve([]entities.CurvePoint{{T: 0, V: 0}, {T: 1, V: 0.5}})

	closure, warnings, err := checker.Check("s1", values.ChannelDimmer, ramp, 4000, 500, false)
	require.NoError(t, err)

	assert.Greater(t, closure, 0.0)
	assert.Empty(t, warnings)
}

func Test_ContinuityChecker_Check_C1DetectsDerivativeMismatch(t *testing.T) {
	t.Parallel()

	tun := continuityTunables(config.ContinuityStrict)
	tun.CheckC1 = true
	checker := newContinuityChecker(tun)

	// C0-continuous tent (both boundary values 0) with a derivative
	// break: rising at t=0, falling at t=1.
	tent := entities.MustNewPointsCurve([]entities.CurvePoint{
		{T: 0, V: 0}, {T: 0.5, V: 1}, {T: 1, V: 0},
	})

	_, _, err := checker.Check("s1", values.ChannelPan, tent, 4000, 500, false)
	assert.Error(t, err)
}

func Test_ClosureNorm(t *testing.T) {
	tests := []struct {
		name       string
		durationMs float64
		barMs      float64
		want       float64
	}{
		{"sixteenth bar wins", 4000, 500, 31.25 / 4000},
		{"100ms cap wins", 4000, 4000, 100.0 / 4000},
		{"capped at full step", 10, 4000, 1},
		{"zero duration", 0, 500, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.InDelta(t, tt.want, closureNorm(tt.durationMs, tt.barMs), 1e-12)
		})
	}
}

func Test_ApplyClosure(t *testing.T) {
	t.Parallel()

	samples := []entities.CurvePoint{
		{T: 0, V: 0.2},
		{T: 0.5, V: 0.8},
		{T: 0.95, V: 0.9},
	}

	out := applyClosure(samples, 0.1)

	// The tail past 1-closure is replaced by a return to the opening
	// value at t=1.
	require.Len(t, out, 3)
	assert.Equal(t, entities.CurvePoint{T: 0, V: 0.2}, out[0])
	assert.Equal(t, entities.CurvePoint{T: 0.5, V: 0.8}, out[1])
	assert.Equal(t, entities.CurvePoint{T: 1, V: 0.2}, out[2])
}

func Test_ApplyClosure_ZeroClosureIsIdentity(t *testing.T) {
	t.Parallel()

	samples := []entities.CurvePoint{{T: 0, V: 0.2}, {T: 0.5, V: 0.8}}
	assert.Equal(t, samples, applyClosure(samples, 0))
}
