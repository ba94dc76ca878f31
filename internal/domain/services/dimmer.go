package services

import (
	"github.com/bluewatersql/twinklr/internal/domain/entities"
)

// blinkEdge is the normalized width of a BLINK transition edge; square
// waves are authored as steep ramps so point times stay increasing.
const blinkEdge = 0.01

// DimmerShape is the resolved absolute intensity behavior for one step:
// a normalized curve plus the range it maps onto. The step compiler
// turns the range into DMX per fixture (dmx = lerp(minDMX, maxDMX, v)).
type DimmerShape struct {
	Curve   entities.Curve
	MinNorm float64
	MaxNorm float64
}

// DimmerResolver produces absolute intensity curves. Deterministic given
// (kind, params, cycles).
type DimmerResolver struct{}

// NewDimmerResolver creates a new dimmer resolver service.
func NewDimmerResolver() *DimmerResolver {
	return &DimmerResolver{}
}

// Resolve dispatches on the dimmer kind. A nil spec holds full
// intensity across the fixture's calibrated range.
func (d *DimmerResolver) Resolve(spec *entities.DimmerSpec) (DimmerShape, error) {
	if spec == nil {
		return DimmerShape{
			Curve:   entities.MustNewNativeCurve(entities.ShapeHold, entities.NativeParams{Level: 1}),
			MinNorm: 0,
			MaxNorm: 1,
		}, nil
	}

	maxNorm := spec.MaxNorm
	if maxNorm == 0 && spec.MinNorm == 0 {
		maxNorm = 1
	}
	cycles := spec.Cycles
	if cycles == 0 {
		cycles = 1
	}

	shape := DimmerShape{MinNorm: spec.MinNorm, MaxNorm: maxNorm}

	if spec.Custom != nil {
		shape.Curve = *spec.Custom
		return shape, nil
	}

	switch spec.Kind {
	case entities.DimmerHold:
		level := spec.Level
		if level == 0 {
			level = 1
		}
		shape.Curve = entities.MustNewNativeCurve(entities.ShapeHold, entities.NativeParams{Level: level})

	case entities.DimmerPulse:
		shape.Curve = entities.MustNewNativeCurve(entities.ShapeSine, entities.NativeParams{Cycles: cycles})

	case entities.DimmerRampUp:
		shape.Curve = entities.MustNewNativeCurve(entities.ShapeLinear, entities.NativeParams{})

	case entities.DimmerRampDown:
		shape.Curve = entities.MustNewPointsCurve([]entities.CurvePoint{{T: 0, V: 1}, {T: 1, V: 0}})

	case entities.DimmerBlink:
		shape.Curve = blinkCurve(cycles)

	case entities.DimmerBreathe:
		// Quarter-period lag starts and ends dark, peaking mid-cycle.
		shape.Curve = entities.MustNewNativeCurve(entities.ShapeSine, entities.NativeParams{
			Phase:  -0.25,
			Cycles: cycles,
		})

	default:
		return DimmerShape{}, &entities.SchemaViolationError{
			Field:  "dimmer.kind",
			Reason: "unknown dimmer kind: " + string(spec.Kind),
		}
	}

	return shape, nil
}

// blinkCurve authors a square-ish on/off wave as a point set with steep
// edges. On for the first half of each cycle, off for the second.
func blinkCurve(cycles float64) entities.Curve {
	n := int(cycles)
	if n < 1 {
		n = 1
	}
	period := 1.0 / float64(n)
	edge := blinkEdge * period

	points := make([]entities.CurvePoint, 0, n*4+1)
	for k := 0; k < n; k++ {
		start := float64(k) * period
		mid := start + period/2
		points = append(points,
			entities.CurvePoint{T: start, V: 1},
			entities.CurvePoint{T: mid - edge, V: 1},
			entities.CurvePoint{T: mid, V: 0},
			entities.CurvePoint{T: start + period - edge, V: 0},
		)
	}
	points = append(points, entities.CurvePoint{T: 1, V: 1})
	return entities.MustNewPointsCurve(points)
}
