package curves

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bluewatersql/twinklr/internal/domain/entities"
)

func samplesOf(vs ...float64) []entities.CurvePoint {
	out := make([]entities.CurvePoint, len(vs))
	for i, v := range vs {
		out[i] = entities.CurvePoint{T: float64(i) / float64(len(vs)), V: v}
	}
	return out
}

func Test_Compose_Operators(t *testing.T) {
	tests := []struct {
		name    string
		op      ComposeOp
		base    []float64
		overlay []float64
		want    []float64
	}{
		{"multiply", ComposeMultiply, []float64{1, 0.5, 0}, []float64{0.5, 0.5, 0.5}, []float64{0.5, 0.25, 0}},
		{"add", ComposeAdd, []float64{0.1, 0.2, 0.3}, []float64{0.2, 0.2, 0.2}, []float64{0.3, 0.4, 0.5}},
		{"override", ComposeOverride, []float64{0.1, 0.2, 0.3}, []float64{0.9, 0.8, 0.7}, []float64{0.9, 0.8, 0.7}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out, err := Compose(tt.op, samplesOf(tt.base...), samplesOf(tt.overlay...))
			require.NoError(t, err)

			require.Len(t, out, len(tt.want))
			for i, want := range tt.want {
				assert.InDelta(t, want, out[i].V, 1e-12, "sample %d", i)
			}
		})
	}
}

func Test_Compose_PreservesBase(t *testing.T) {
	t.Parallel()

	base := samplesOf(0.5, 0.5)
	_, err := Compose(ComposeMultiply, base, samplesOf(0.1, 0.1))
	require.NoError(t, err)

	assert.Equal(t, 0.5, base[0].V)
	assert.Equal(t, 0.5, base[1].V)
}

func Test_Compose_RangeEscapeFails(t *testing.T) {
	t.Parallel()

	_, err := Compose(ComposeAdd, samplesOf(0.8, 0.8), samplesOf(0.5, 0.5))
	require.Error(t, err)

	var rangeErr *entities.RangeAssertionError
	assert.ErrorAs(t, err, &rangeErr)
}

func Test_Compose_LengthMismatchFails(t *testing.T) {
	t.Parallel()

	_, err := Compose(ComposeMultiply, samplesOf(0.5, 0.5), samplesOf(0.5, 0.5, 0.5))
	require.Error(t, err)

	var schemaErr *entities.SchemaViolationError
	assert.ErrorAs(t, err, &schemaErr)
}
