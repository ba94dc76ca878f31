// Package entities contains the domain model for choreography
// compilation: curves, templates, rig profiles, and the IR segments the
// compiler emits. All entities are constructor-validated and treated as
// immutable afterwards.
package entities

import (
	"encoding/json"
	"fmt"
)

// CurvePoint is one sample of a normalized curve. Both coordinates live
// in [0,1]. Immutable value type.
type CurvePoint struct {
	T float64 `json:"t" yaml:"t"`
	V float64 `json:"v" yaml:"v"`
}

// NativeShape identifies a built-in closed-form curve shape.
type NativeShape string

// The closed set of native shapes. Anything richer is authored as a
// Points curve upstream (see the config loader's expression curves).
const (
	ShapeHold      NativeShape = "HOLD"
	ShapeLinear    NativeShape = "LINEAR"
	ShapeEaseInOut NativeShape = "EASE_IN_OUT"
	ShapeSine      NativeShape = "SINE"
)

// Valid reports whether the shape is one of the built-in set.
func (s NativeShape) Valid() bool {
	switch s {
	case ShapeHold, ShapeLinear, ShapeEaseInOut, ShapeSine:
		return true
	}
	return false
}

// NativeParams carries the parameters of a native shape. Unused fields
// are ignored by shapes that do not read them.
type NativeParams struct {
	// Level is the held value for HOLD.
	Level float64 `json:"level,omitempty" yaml:"level,omitempty"`
	// Phase shifts periodic shapes by a fraction of one period.
	Phase float64 `json:"phase,omitempty" yaml:"phase,omitempty"`
	// Cycles repeats periodic shapes within the unit interval.
	// Zero means one cycle.
	Cycles float64 `json:"cycles,omitempty" yaml:"cycles,omitempty"`
}

// curveKind is the internal tag of the Curve variant.
type curveKind int

const (
	curvePoints curveKind = iota + 1
	curveNative
)

// Curve is a tagged variant: either an ordered point set (t
// non-decreasing, at least two points) or a native closed-form shape.
// Construct with NewPointsCurve or NewNativeCurve; the zero Curve is
// invalid.
type Curve struct {
	kind   curveKind
	points []CurvePoint
	shape  NativeShape
	params NativeParams
}

// NewPointsCurve validates and wraps an ordered point set.
func NewPointsCurve(points []CurvePoint) (Curve, error) {
	if len(points) < 2 {
		return Curve{}, &SchemaViolationError{
			Field:  "curve.points",
			Reason: "points curve requires at least 2 points",
		}
	}
	prev := points[0]
	for i, p := range points {
		if p.T < 0 || p.T > 1 || p.V < 0 || p.V > 1 {
			return Curve{}, &SchemaViolationError{
				Field:  "curve.points",
				Reason: "point coordinates must be in [0,1]",
			}
		}
		if i > 0 && p.T < prev.T {
			return Curve{}, &SchemaViolationError{
				Field:  "curve.points",
				Reason: "point times must be non-decreasing",
			}
		}
		prev = p
	}
	owned := make([]CurvePoint, len(points))
	copy(owned, points)
	return Curve{kind: curvePoints, points: owned}, nil
}

// MustNewPointsCurve wraps points or panics (for tests/constants)
func MustNewPointsCurve(points []CurvePoint) Curve {
	c, err := NewPointsCurve(points)
	if err != nil {
		panic(err)
	}
	return c
}

// NewNativeCurve validates and wraps a native shape.
func NewNativeCurve(shape NativeShape, params NativeParams) (Curve, error) {
	if !shape.Valid() {
		return Curve{}, &SchemaViolationError{
			Field:  "curve.shape",
			Reason: "unknown native shape: " + string(shape),
		}
	}
	if shape == ShapeHold && (params.Level < 0 || params.Level > 1) {
		return Curve{}, &SchemaViolationError{
			Field:  "curve.params.level",
			Reason: "HOLD level must be in [0,1]",
		}
	}
	return Curve{kind: curveNative, shape: shape, params: params}, nil
}

// MustNewNativeCurve wraps a native shape or panics (for tests/constants)
func MustNewNativeCurve(shape NativeShape, params NativeParams) Curve {
	c, err := NewNativeCurve(shape, params)
	if err != nil {
		panic(err)
	}
	return c
}

// IsZero returns true for the invalid zero Curve.
func (c Curve) IsZero() bool { return c.kind == 0 }

// IsPoints reports whether the curve is a point-set variant.
func (c Curve) IsPoints() bool { return c.kind == curvePoints }

// IsNative reports whether the curve is a native-shape variant.
func (c Curve) IsNative() bool { return c.kind == curveNative }

// Points returns a copy of the point set (nil for native curves).
func (c Curve) Points() []CurvePoint {
	if c.kind != curvePoints {
		return nil
	}
	out := make([]CurvePoint, len(c.points))
	copy(out, c.points)
	return out
}

// PointAt returns the i-th point without copying the whole set.
func (c Curve) PointAt(i int) CurvePoint { return c.points[i] }

// Len returns the number of points (0 for native curves).
func (c Curve) Len() int { return len(c.points) }

// Shape returns the native shape tag ("" for point curves).
func (c Curve) Shape() NativeShape { return c.shape }

// Params returns the native shape parameters.
func (c Curve) Params() NativeParams { return c.params }

// curveJSON is the wire form of a Curve. Exactly one of points / shape
// is present.
type curveJSON struct {
	Points []CurvePoint `json:"points,omitempty"`
	Shape  NativeShape  `json:"shape,omitempty"`
	Params NativeParams `json:"params,omitzero"`
}

// MarshalJSON serializes the curve variant.
func (c Curve) MarshalJSON() ([]byte, error) {
	switch c.kind {
	case curvePoints:
		return json.Marshal(curveJSON{Points: c.points})
	case curveNative:
		return json.Marshal(curveJSON{Shape: c.shape, Params: c.params})
	default:
		return nil, fmt.Errorf("cannot marshal zero curve")
	}
}

// UnmarshalJSON reconstructs the curve variant through the validating
// constructors.
func (c *Curve) UnmarshalJSON(data []byte) error {
	var wire curveJSON
	if err := json.Unmarshal(data, &wire); err != nil {
		return err
	}
	var (
		parsed Curve
		err    error
	)
	if len(wire.Points) > 0 {
		parsed, err = NewPointsCurve(wire.Points)
	} else {
		parsed, err = NewNativeCurve(wire.Shape, wire.Params)
	}
	if err != nil {
		return err
	}
	*c = parsed
	return nil
}
