package curves

import (
	"fmt"

	"github.com/bluewatersql/twinklr/internal/domain/entities"
)

// ComposeOp selects how sampled curves combine.
type ComposeOp string

// The closed set of composition operators.
const (
	ComposeMultiply ComposeOp = "multiply"
	ComposeAdd      ComposeOp = "add"
	ComposeOverride ComposeOp = "override"
)

// Compose combines same-length sample slices pointwise. Composition
// runs after phase shifting and before simplification; the pipeline
// order (generate, shift, modulate, simplify) is fixed, because
// simplifying earlier destroys the shared grid that makes phase offsets
// exact.
//
// Values escaping [0,1] under add trip a RangeAssertionError: that is a
// resolver bug, and clamping it here would hide it until export.
func Compose(op ComposeOp, base []entities.CurvePoint, overlays ...[]entities.CurvePoint) ([]entities.CurvePoint, error) {
	if len(base) == 0 {
		return nil, &entities.SchemaViolationError{
			Field:  "compose.base",
			Reason: "base sample set is empty",
		}
	}

	out := make([]entities.CurvePoint, len(base))
	copy(out, base)

	for oi, overlay := range overlays {
		if len(overlay) != len(out) {
			return nil, &entities.SchemaViolationError{
				Field:  "compose.overlays",
				Reason: fmt.Sprintf("overlay %d has %d samples, want %d", oi, len(overlay), len(out)),
			}
		}
		for i := range out {
			switch op {
			case ComposeMultiply:
				out[i].V *= overlay[i].V
			case ComposeAdd:
				out[i].V += overlay[i].V
			case ComposeOverride:
				out[i].V = overlay[i].V
			default:
				return nil, &entities.SchemaViolationError{
					Field:  "compose.op",
					Reason: "unknown compose op: " + string(op),
				}
			}
			if out[i].V < 0 || out[i].V > 1 {
				return nil, &entities.RangeAssertionError{
					Context: fmt.Sprintf("compose(%s) sample %d", op, i),
					Value:   out[i].V,
				}
			}
		}
	}
	return out, nil
}
