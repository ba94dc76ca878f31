package entities

// CurveSpec is the document-facing form of a curve, as authored in
// template YAML. Exactly one authoring style is used per spec:
//
//   - points: an explicit point list
//   - shape:  a native closed-form shape plus params
//   - expr:   an expression over t, compiled and sampled at load time
//
// The loader turns every spec into a Curve before the compiler runs;
// nothing past the ingestion boundary sees a CurveSpec.
type CurveSpec struct {
	Points []CurvePoint `yaml:"points,omitempty" json:"points,omitempty"`

	Shape  string  `yaml:"shape,omitempty" json:"shape,omitempty"`
	Level  float64 `yaml:"level,omitempty" json:"level,omitempty"`
	Phase  float64 `yaml:"phase,omitempty" json:"phase,omitempty"`
	Cycles float64 `yaml:"cycles,omitempty" json:"cycles,omitempty"`

	Expr    string `yaml:"expr,omitempty" json:"expr,omitempty"`
	Samples int    `yaml:"samples,omitempty" json:"samples,omitempty"`
}

// IsExpr reports whether the spec is expression-authored. Expression
// specs need the loader's expression compiler; Resolve rejects them.
func (s *CurveSpec) IsExpr() bool { return s.Expr != "" }

// Resolve builds the Curve described by a points or native spec.
func (s *CurveSpec) Resolve() (Curve, error) {
	switch {
	case s.IsExpr():
		return Curve{}, &SchemaViolationError{
			Field:  "curve.expr",
			Reason: "expression curves must be compiled by the loader",
		}
	case len(s.Points) > 0 && s.Shape != "":
		return Curve{}, &SchemaViolationError{
			Field:  "curve",
			Reason: "curve cannot declare both points and shape",
		}
	case len(s.Points) > 0:
		return NewPointsCurve(s.Points)
	case s.Shape != "":
		return NewNativeCurve(NativeShape(s.Shape), NativeParams{
			Level:  s.Level,
			Phase:  s.Phase,
			Cycles: s.Cycles,
		})
	default:
		return Curve{}, &SchemaViolationError{
			Field:  "curve",
			Reason: "curve must declare points, shape, or expr",
		}
	}
}
