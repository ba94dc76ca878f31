package services

import (
	"github.com/bluewatersql/twinklr/internal/domain/entities"
)

// Per-kind amplitude fractions of the fixture's usable channel range at
// full intensity. Movement shapes never exceed these; intensity scales
// them down linearly.
const (
	swayPanAmplitude    = 0.50
	nodTiltAmplitude    = 0.30
	circleAmplitude     = 0.30
	figurePanAmplitude  = 0.40
	figureTiltAmplitude = 0.20
	customAmplitude     = 0.50
)

// MovementShape is the resolved temporal delta for one step: an
// offset-centered curve per movement channel (v=0.5 means zero delta)
// plus the normalized amplitude fraction the step compiler scales into
// DMX per fixture. A zero amplitude disables the channel.
type MovementShape struct {
	Pan           entities.Curve
	Tilt          entities.Curve
	PanAmplitude  float64
	TiltAmplitude float64
}

// MovementResolver produces offset-centered delta curves around the
// geometry baseline, independent of geometry. Deterministic given
// (kind, params, intensity, cycles); never encodes formation.
type MovementResolver struct{}

// NewMovementResolver creates a new movement resolver service.
func NewMovementResolver() *MovementResolver {
	return &MovementResolver{}
}

// Resolve dispatches on the movement kind. A nil spec or STATIC kind
// yields centered holds with zero amplitude.
func (m *MovementResolver) Resolve(spec *entities.MovementSpec) (MovementShape, error) {
	centered := entities.MustNewNativeCurve(entities.ShapeHold, entities.NativeParams{Level: 0.5})

	if spec == nil {
		return MovementShape{Pan: centered, Tilt: centered}, nil
	}

	intensity := spec.Intensity
	if intensity == 0 {
		intensity = 1
	}
	cycles := spec.Cycles
	if cycles == 0 {
		cycles = 1
	}

	if spec.Custom != nil {
		return MovementShape{
			Pan:          *spec.Custom,
			Tilt:         centered,
			PanAmplitude: customAmplitude * intensity,
		}, nil
	}

	sine := func(phase float64) entities.Curve {
		return entities.MustNewNativeCurve(entities.ShapeSine, entities.NativeParams{
			Phase:  spec.Phase + phase,
			Cycles: cycles,
		})
	}

	switch spec.Kind {
	case entities.MovementStatic:
		return MovementShape{Pan: centered, Tilt: centered}, nil

	case entities.MovementSway:
		return MovementShape{
			Pan:          sine(0),
			Tilt:         centered,
			PanAmplitude: swayPanAmplitude * intensity,
		}, nil

	case entities.MovementNod:
		return MovementShape{
			Pan:           centered,
			Tilt:          sine(0),
			TiltAmplitude: nodTiltAmplitude * intensity,
		}, nil

	case entities.MovementCircle:
		// Quarter-period tilt lag draws a circle instead of a diagonal.
		return MovementShape{
			Pan:           sine(0),
			Tilt:          sine(0.25),
			PanAmplitude:  circleAmplitude * intensity,
			TiltAmplitude: circleAmplitude * intensity,
		}, nil

	case entities.MovementFigureEight:
		tilt := entities.MustNewNativeCurve(entities.ShapeSine, entities.NativeParams{
			Phase:  spec.Phase + 0.25,
			Cycles: cycles * 2,
		})
		return MovementShape{
			Pan:           sine(0),
			Tilt:          tilt,
			PanAmplitude:  figurePanAmplitude * intensity,
			TiltAmplitude: figureTiltAmplitude * intensity,
		}, nil

	default:
		return MovementShape{}, &entities.SchemaViolationError{
			Field:  "movement.kind",
			Reason: "unknown movement kind: " + string(spec.Kind),
		}
	}
}
