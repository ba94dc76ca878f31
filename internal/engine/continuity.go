package engine

import (
	"fmt"
	"math"

	"github.com/bluewatersql/twinklr/internal/config"
	"github.com/bluewatersql/twinklr/internal/curves"
	"github.com/bluewatersql/twinklr/internal/domain/entities"
	"github.com/bluewatersql/twinklr/internal/domain/values"
)

// derivativeStep is the finite-difference step used for the optional C1
// check; Points curves carry no analytic derivative.
const derivativeStep = 1e-3

// continuityChecker validates loop curves at their boundary before any
// simplification error could mask a mismatch.
type continuityChecker struct {
	tunables config.ContinuityTunables
}

func newContinuityChecker(tunables config.ContinuityTunables) *continuityChecker {
	return &continuityChecker{tunables: tunables}
}

// Check validates C0 (and optionally C1) at the loop boundary of one
// resolved curve. On violation the configured policy decides: strict
// returns a ContinuityViolationError, warn_fix returns the closure
// fraction to apply at materialization plus a warning, silent fixes
// without the warning. A zero closure means the curve loops cleanly.
func (c *continuityChecker) Check(
	stepID string,
	channel values.Channel,
	curve entities.Curve,
	durationMs, barMs float64,
	pingPong bool,
) (float64, []string, error) {
	y0 := curves.Evaluate(curve, 0)
	y1 := curves.Evaluate(curve, 1)
	delta := math.Abs(y1 - y0)

	violated := delta > c.tunables.Epsilon0
	tolerance := c.tunables.Epsilon0

	if !violated && c.tunables.CheckC1 {
		d0 := (curves.Evaluate(curve, derivativeStep) - y0) / derivativeStep
		d1 := (y1 - curves.Evaluate(curve, 1-derivativeStep)) / derivativeStep
		if math.Abs(d1-d0) > c.tunables.Epsilon1 {
			violated = true
			delta = math.Abs(d1 - d0)
			tolerance = c.tunables.Epsilon1
		}
		// Ping-pong turnarounds must additionally be flat, or the
		// direction change shows as a cusp.
		if !violated && pingPong && (math.Abs(d0) > c.tunables.Epsilon1 || math.Abs(d1) > c.tunables.Epsilon1) {
			violated = true
			delta = max(math.Abs(d0), math.Abs(d1))
			tolerance = c.tunables.Epsilon1
		}
	}

	if !violated {
		return 0, nil, nil
	}

	if c.tunables.Policy == config.ContinuityStrict {
		return 0, nil, &entities.ContinuityViolationError{
			StepID:    stepID,
			Channel:   channel,
			Delta:     delta,
			Tolerance: tolerance,
		}
	}

	closure := closureNorm(durationMs, barMs)
	var warnings []string
	if c.tunables.Policy == config.ContinuityWarnFix {
		warnings = append(warnings, fmt.Sprintf(
			"step %s channel %s: loop boundary delta %.6f exceeds %.6f; inserting %.4f closure transition",
			stepID, channel, delta, tolerance, closure,
		))
	}
	return closure, warnings, nil
}

// closureNorm returns the auto-fix transition length as a fraction of
// the step: min(1/16 bar, 100ms), never mutating the authored template.
func closureNorm(durationMs, barMs float64) float64 {
	closureMs := barMs / 16
	if closureMs > 100 {
		closureMs = 100
	}
	if durationMs <= 0 {
		return 0
	}
	norm := closureMs / durationMs
	if norm > 1 {
		norm = 1
	}
	return norm
}

// applyClosure blends the tail of a sample set back to its opening
// value across the closure fraction. Applied to materialized samples
// only; the authored curve is untouched.
func applyClosure(samples []entities.CurvePoint, closure float64) []entities.CurvePoint {
	if closure <= 0 || len(samples) < 2 {
		return samples
	}
	cut := 1 - closure
	out := samples[:0]
	for _, p := range samples {
		if p.T <= cut {
			out = append(out, p)
		}
	}
	if len(out) == 0 {
		out = append(out, samples[0])
	}
	return append(out, entities.CurvePoint{T: 1, V: samples[0].V})
}
