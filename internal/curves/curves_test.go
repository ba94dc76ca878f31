package curves

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bluewatersql/twinklr/internal/domain/entities"
)

func Test_Evaluate_NativeShapes(t *testing.T) {
	tests := []struct {
		name  string
		curve entities.Curve
		t     float64
		want  float64
	}{
		{"hold level", entities.MustNewNativeCurve(entities.ShapeHold, entities.NativeParams{Level: 0.7}), 0.3, 0.7},
		{"linear midpoint", entities.MustNewNativeCurve(entities.ShapeLinear, entities.NativeParams{}), 0.5, 0.5},
		{"ease start", entities.MustNewNativeCurve(entities.ShapeEaseInOut, entities.NativeParams{}), 0, 0},
		{"ease midpoint", entities.MustNewNativeCurve(entities.ShapeEaseInOut, entities.NativeParams{}), 0.5, 0.5},
		{"ease end", entities.MustNewNativeCurve(entities.ShapeEaseInOut, entities.NativeParams{}), 1, 1},
		{"sine start", entities.MustNewNativeCurve(entities.ShapeSine, entities.NativeParams{}), 0, 0.5},
		{"sine quarter", entities.MustNewNativeCurve(entities.ShapeSine, entities.NativeParams{}), 0.25, 1},
		{"sine end loops", entities.MustNewNativeCurve(entities.ShapeSine, entities.NativeParams{}), 1, 0.5},
		{"sine two cycles", entities.MustNewNativeCurve(entities.ShapeSine, entities.NativeParams{Cycles: 2}), 0.125, 1},
		{"sine quarter phase", entities.MustNewNativeCurve(entities.ShapeSine, entities.NativeParams{Phase: 0.25}), 0, 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.InDelta(t, tt.want, Evaluate(tt.curve, tt.t), 1e-12)
		})
	}
}

func Test_Evaluate_PointsInterpolation(t *testing.T) {
	curve := entities.MustNewPointsCurve([]entities.CurvePoint{
		{T: 0, V: 0},
		{T: 0.5, V: 1},
		{T: 1, V: 0},
	})

	tests := []struct {
		name string
		t    float64
		want float64
	}{
		{"first point", 0, 0},
		{"between first pair", 0.25, 0.5},
		{"peak", 0.5, 1},
		{"between second pair", 0.75, 0.5},
		{"last point", 1, 0},
		{"before domain clamps", -0.5, 0},
		{"after domain clamps", 1.5, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.InDelta(t, tt.want, Evaluate(curve, tt.t), 1e-12)
		})
	}
}

func Test_SampleWith_GridAlignedOffsetIsExactRotation(t *testing.T) {
	t.Parallel()

	curve := entities.MustNewNativeCurve(entities.ShapeSine, entities.NativeParams{})
	const n = 64

	plain, err := Sample(curve, n)
	require.NoError(t, err)

	shifted, err := SampleWith(curve, SampleOpts{N: n, Offset: 0.25, Wrap: true})
	require.NoError(t, err)

	// Offset 0.25 on a 64-point grid is exactly 16 indices, bit for bit.
	for i := 0; i < n; i++ {
		assert.Equal(t, plain[(i+16)%n].V, shifted[i].V, "sample %d", i)
		assert.Equal(t, plain[i].T, shifted[i].T, "time %d", i)
	}
}

func Test_SampleWith_Reversed(t *testing.T) {
	t.Parallel()

	curve := entities.MustNewNativeCurve(entities.ShapeLinear, entities.NativeParams{})

	samples, err := SampleWith(curve, SampleOpts{N: 8, Reversed: true})
	require.NoError(t, err)

	for i, p := range samples {
		assert.InDelta(t, 1-float64(i)/8, p.V, 1e-12, "sample %d", i)
	}
}

func Test_SampleWith_SpanTruncates(t *testing.T) {
	t.Parallel()

	curve := entities.MustNewNativeCurve(entities.ShapeLinear, entities.NativeParams{})

	samples, err := SampleWith(curve, SampleOpts{N: 8, Span: 0.5})
	require.NoError(t, err)

	// Span 0.5 plays only the first half of the curve across the grid.
	for i, p := range samples {
		assert.InDelta(t, float64(i)/8*0.5, p.V, 1e-12, "sample %d", i)
	}
}

func Test_SampleWith_ClipsWithoutWrap(t *testing.T) {
	t.Parallel()

	curve := entities.MustNewNativeCurve(entities.ShapeLinear, entities.NativeParams{})

	samples, err := SampleWith(curve, SampleOpts{N: 4, Offset: 0.75, Wrap: false})
	require.NoError(t, err)

	// t=0.5 and beyond shift past the domain and clip to the end value.
	assert.InDelta(t, 0.75, samples[0].V, 1e-12)
	assert.InDelta(t, 1.0, samples[2].V, 1e-12)
	assert.InDelta(t, 1.0, samples[3].V, 1e-12)
}

func Test_SampleWith_RejectsTinyGrids(t *testing.T) {
	t.Parallel()

	curve := entities.MustNewNativeCurve(entities.ShapeLinear, entities.NativeParams{})

	_, err := SampleWith(curve, SampleOpts{N: 1})
	require.Error(t, err)

	var schemaErr *entities.SchemaViolationError
	assert.ErrorAs(t, err, &schemaErr)
}

func Test_TransformedTime_MatchesSampleGrid(t *testing.T) {
	t.Parallel()

	curve := entities.MustNewNativeCurve(entities.ShapeSine, entities.NativeParams{})
	opts := []SampleOpts{
		{N: 32},
		{N: 32, Reversed: true},
		{N: 32, Offset: 0.3, Wrap: true},
		{N: 32, Offset: 0.3, Wrap: true, Reversed: true},
		{N: 32, Offset: -0.7, Wrap: true},
		{N: 32, Offset: 0.75, Wrap: false},
		{N: 32, Span: 0.4, Reversed: true},
	}

	for _, o := range opts {
		samples, err := SampleWith(curve, o)
		require.NoError(t, err)

		for i, p := range samples {
			got := Evaluate(curve, TransformedTime(o, float64(i)/float64(o.N)))
			assert.Equal(t, p.V, got, "opts %+v sample %d", o, i)
		}
	}
}

func Test_PhaseShift_NegativeOffsetWraps(t *testing.T) {
	t.Parallel()

	curve := entities.MustNewNativeCurve(entities.ShapeSine, entities.NativeParams{})
	const n = 64

	plain, err := Sample(curve, n)
	require.NoError(t, err)

	shifted, err := PhaseShift(curve, -0.25, true, n)
	require.NoError(t, err)

	for i := 0; i < n; i++ {
		assert.InDelta(t, plain[(i+n-16)%n].V, shifted[i].V, 1e-12, "sample %d", i)
	}
}

func Test_Evaluate_SineStaysInUnitRange(t *testing.T) {
	t.Parallel()

	curve := entities.MustNewNativeCurve(entities.ShapeSine, entities.NativeParams{Cycles: 3, Phase: 0.1})
	for i := 0; i <= 1000; i++ {
		v := Evaluate(curve, float64(i)/1000)
		assert.GreaterOrEqual(t, v, -1e-12)
		assert.LessOrEqual(t, v, 1+1e-12)
	}
}
