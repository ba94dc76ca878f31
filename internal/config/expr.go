package config

import (
	"fmt"
	"math"

	"github.com/expr-lang/expr"

	"github.com/bluewatersql/twinklr/internal/domain/entities"
)

const (
	defaultExprSamples = 64
	maxExprSamples     = 4096

	// Float round-off this small is forgiven, anything larger is an
	// authoring error.
	exprRangeSlack = 1e-9
)

// compileExprCurve compiles an expression-authored curve spec and
// samples it into a Points curve. The expression sees t in [0,1] and the
// constant pi; it runs once per sample at load time, so the compiled
// core never evaluates expressions.
func compileExprCurve(field string, spec *entities.CurveSpec) (entities.Curve, error) {
	n := spec.Samples
	if n == 0 {
		n = defaultExprSamples
	}
	if n < 2 || n > maxExprSamples {
		return entities.Curve{}, &entities.SchemaViolationError{
			Field:  field + ".samples",
			Reason: fmt.Sprintf("samples must be in [2,%d]", maxExprSamples),
		}
	}

	env := map[string]any{
		"t":  0.0,
		"pi": math.Pi,
	}
	program, err := expr.Compile(spec.Expr, expr.Env(env), expr.AsFloat64())
	if err != nil {
		return entities.Curve{}, &entities.SchemaViolationError{
			Field:  field + ".expr",
			Reason: "expression does not compile: " + err.Error(),
		}
	}

	points := make([]entities.CurvePoint, n)
	for i := range n {
		t := float64(i) / float64(n-1)
		env["t"] = t

		out, err := expr.Run(program, env)
		if err != nil {
			return entities.Curve{}, &entities.SchemaViolationError{
				Field:  field + ".expr",
				Reason: fmt.Sprintf("evaluation failed at t=%.4f: %s", t, err.Error()),
			}
		}
		v := out.(float64)
		if math.IsNaN(v) || v < -exprRangeSlack || v > 1+exprRangeSlack {
			return entities.Curve{}, &entities.SchemaViolationError{
				Field:  field + ".expr",
				Reason: fmt.Sprintf("value %.4f at t=%.4f escapes [0,1]", v, t),
			}
		}
		points[i] = entities.CurvePoint{T: t, V: math.Min(1, math.Max(0, v))}
	}

	return entities.NewPointsCurve(points)
}

// resolveCurveSpec turns a document curve spec into a Curve, routing
// expression specs through the expression compiler.
func resolveCurveSpec(field string, spec *entities.CurveSpec) (entities.Curve, error) {
	if spec.IsExpr() {
		if len(spec.Points) > 0 || spec.Shape != "" {
			return entities.Curve{}, &entities.SchemaViolationError{
				Field:  field,
				Reason: "expr curves cannot also declare points or shape",
			}
		}
		return compileExprCurve(field, spec)
	}
	return spec.Resolve()
}
