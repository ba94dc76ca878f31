package entities

import (
	"fmt"

	"github.com/bluewatersql/twinklr/internal/domain/values"
)

// MovementKind identifies a movement shape variant. Each kind is a
// temporal delta shape only; formation lives in geometry poses.
type MovementKind string

// The closed set of movement kinds.
const (
	MovementStatic      MovementKind = "STATIC"
	MovementSway        MovementKind = "SWAY"
	MovementNod         MovementKind = "NOD"
	MovementCircle      MovementKind = "CIRCLE"
	MovementFigureEight MovementKind = "FIGURE_EIGHT"
)

// Valid reports whether the kind is one of the built-in set.
func (k MovementKind) Valid() bool {
	switch k {
	case MovementStatic, MovementSway, MovementNod, MovementCircle, MovementFigureEight:
		return true
	}
	return false
}

// DimmerKind identifies a dimmer behavior variant.
type DimmerKind string

// The closed set of dimmer kinds.
const (
	DimmerHold     DimmerKind = "HOLD"
	DimmerPulse    DimmerKind = "PULSE"
	DimmerRampUp   DimmerKind = "RAMP_UP"
	DimmerRampDown DimmerKind = "RAMP_DOWN"
	DimmerBlink    DimmerKind = "BLINK"
	DimmerBreathe  DimmerKind = "BREATHE"
)

// Valid reports whether the kind is one of the built-in set.
func (k DimmerKind) Valid() bool {
	switch k {
	case DimmerHold, DimmerPulse, DimmerRampUp, DimmerRampDown, DimmerBlink, DimmerBreathe:
		return true
	}
	return false
}

// Template is the rig-agnostic choreography description. It references
// roles and groups only, never fixture ids or DMX addresses.
//
// Aggregate Boundary:
// - Template is the root
// - Steps are entities within the aggregate (identified by ID)
// - Specs (geometry/movement/dimmer/phase) are value objects within Steps
//
// Invariants Enforced:
// - Step IDs are unique and non-empty
// - Loop step IDs reference existing steps, and in a repeatable
//   template every step belongs to the loop body
// - Timing durations are positive
// - Spec kinds are members of their closed sets
type Template struct {
	ID      string         `yaml:"id" json:"id"`
	Name    string         `yaml:"name,omitempty" json:"name,omitempty"`
	Roles   []string       `yaml:"roles,omitempty" json:"roles,omitempty"`
	Groups  []string       `yaml:"groups,omitempty" json:"groups,omitempty"`
	Repeat  RepeatContract `yaml:"repeat" json:"repeat"`
	Safety  SafetyDefaults `yaml:"safety,omitempty" json:"safety,omitempty"`
	Steps   []TemplateStep `yaml:"steps" json:"steps"`
}

// RepeatContract declares how the template's loop body may be repeated
// across a playback window.
type RepeatContract struct {
	Repeatable   bool                   `yaml:"repeatable" json:"repeatable"`
	Mode         values.RepeatMode      `yaml:"-" json:"-"`
	ModeRaw      string                 `yaml:"mode,omitempty" json:"mode,omitempty"`
	CycleBars    float64                `yaml:"cycle_bars,omitempty" json:"cycle_bars,omitempty"`
	LoopStepIDs  []string               `yaml:"loop_steps,omitempty" json:"loop_steps,omitempty"`
	Remainder    values.RemainderPolicy `yaml:"-" json:"-"`
	RemainderRaw string                 `yaml:"remainder,omitempty" json:"remainder,omitempty"`
}

// SafetyDefaults are template-declared floors/caps. They are advisory:
// the only hard guarantee is the export-time clamp, which consumes these
// as segment clamp bounds.
type SafetyDefaults struct {
	DimmerFloorNorm   float64 `yaml:"dimmer_floor_norm,omitempty" json:"dimmer_floor_norm,omitempty"`
	DimmerCeilingNorm float64 `yaml:"dimmer_ceiling_norm,omitempty" json:"dimmer_ceiling_norm,omitempty"`
}

// BaseTiming places a step inside one template cycle, in musical bars.
type BaseTiming struct {
	StartBars    float64 `yaml:"start_bars" json:"start_bars"`
	DurationBars float64 `yaml:"duration_bars" json:"duration_bars"`
}

// PhaseOffsetSpec derives per-fixture time shifts from a rig chase order.
type PhaseOffsetSpec struct {
	Mode            values.PhaseMode    `yaml:"-" json:"-"`
	ModeRaw         string              `yaml:"mode,omitempty" json:"mode,omitempty"`
	Order           string              `yaml:"order,omitempty" json:"order,omitempty"`
	SpreadBars      float64             `yaml:"spread_bars,omitempty" json:"spread_bars,omitempty"`
	Distribution    values.Distribution `yaml:"-" json:"-"`
	DistributionRaw string              `yaml:"distribution,omitempty" json:"distribution,omitempty"`
	Wrap            bool                `yaml:"wrap" json:"wrap"`
}

// GeometrySpec selects the static spatial baseline for a step.
type GeometrySpec struct {
	Pose    string `yaml:"pose" json:"pose"`
	AimZone string `yaml:"aim_zone,omitempty" json:"aim_zone,omitempty"`
}

// MovementSpec selects the offset-centered temporal delta shape.
// A custom Points curve (e.g. authored as an expression upstream) may
// replace the built-in kind; v=0.5 still means zero delta.
type MovementSpec struct {
	Kind      MovementKind `yaml:"kind" json:"kind"`
	Intensity float64      `yaml:"intensity,omitempty" json:"intensity,omitempty"`
	Cycles    float64      `yaml:"cycles,omitempty" json:"cycles,omitempty"`
	Phase     float64      `yaml:"phase,omitempty" json:"phase,omitempty"`
	CurveRaw  *CurveSpec   `yaml:"curve,omitempty" json:"curve,omitempty"`
	Custom    *Curve       `yaml:"-" json:"-"`
}

// DimmerSpec selects the absolute intensity behavior.
type DimmerSpec struct {
	Kind     DimmerKind `yaml:"kind" json:"kind"`
	MinNorm  float64    `yaml:"min_norm" json:"min_norm"`
	MaxNorm  float64    `yaml:"max_norm" json:"max_norm"`
	Cycles   float64    `yaml:"cycles,omitempty" json:"cycles,omitempty"`
	Level    float64    `yaml:"level,omitempty" json:"level,omitempty"`
	CurveRaw *CurveSpec `yaml:"curve,omitempty" json:"curve,omitempty"`
	Custom   *Curve     `yaml:"-" json:"-"`
}

// TemplateStep is one choreography step targeting a rig group.
type TemplateStep struct {
	ID       string           `yaml:"id" json:"id"`
	Group    string           `yaml:"group" json:"group"`
	Timing   BaseTiming       `yaml:"timing" json:"timing"`
	Phase    *PhaseOffsetSpec `yaml:"phase,omitempty" json:"phase,omitempty"`
	Geometry GeometrySpec     `yaml:"geometry" json:"geometry"`
	Movement *MovementSpec    `yaml:"movement,omitempty" json:"movement,omitempty"`
	Dimmer   *DimmerSpec      `yaml:"dimmer,omitempty" json:"dimmer,omitempty"`
}

// TemplateDoc bundles a template with its named presets, as loaded from
// one document.
type TemplateDoc struct {
	SchemaVersion string                   `yaml:"schema_version" json:"schema_version"`
	Template      Template                 `yaml:"template" json:"template"`
	Presets       map[string]TemplatePatch `yaml:"presets,omitempty" json:"presets,omitempty"`
}

// TemplatePatch is a partial overlay applied to a template: preset,
// modifier, or per-cycle patch. Unset fields inherit from the layer
// below; step patches are keyed by step id.
type TemplatePatch struct {
	Name   string               `yaml:"name,omitempty" json:"name,omitempty"`
	Repeat *RepeatPatch         `yaml:"repeat,omitempty" json:"repeat,omitempty"`
	Safety *SafetyPatch         `yaml:"safety,omitempty" json:"safety,omitempty"`
	Steps  map[string]StepPatch `yaml:"steps,omitempty" json:"steps,omitempty"`
}

// RepeatPatch overrides individual repeat-contract fields.
type RepeatPatch struct {
	CycleBars *float64 `yaml:"cycle_bars,omitempty" json:"cycle_bars,omitempty"`
	Remainder *string  `yaml:"remainder,omitempty" json:"remainder,omitempty"`
}

// SafetyPatch overrides individual safety defaults.
type SafetyPatch struct {
	DimmerFloorNorm   *float64 `yaml:"dimmer_floor_norm,omitempty" json:"dimmer_floor_norm,omitempty"`
	DimmerCeilingNorm *float64 `yaml:"dimmer_ceiling_norm,omitempty" json:"dimmer_ceiling_norm,omitempty"`
}

// StepPatch overrides fields of one step. Scalar fields override
// individually; the geometry/movement/dimmer/phase specs replace as
// whole value objects when present.
type StepPatch struct {
	Group        *string          `yaml:"group,omitempty" json:"group,omitempty"`
	StartBars    *float64         `yaml:"start_bars,omitempty" json:"start_bars,omitempty"`
	DurationBars *float64         `yaml:"duration_bars,omitempty" json:"duration_bars,omitempty"`
	Phase        *PhaseOffsetSpec `yaml:"phase,omitempty" json:"phase,omitempty"`
	Geometry     *GeometrySpec    `yaml:"geometry,omitempty" json:"geometry,omitempty"`
	Movement     *MovementSpec    `yaml:"movement,omitempty" json:"movement,omitempty"`
	Dimmer       *DimmerSpec      `yaml:"dimmer,omitempty" json:"dimmer,omitempty"`
}

// ===== TEMPLATE AGGREGATE ROOT METHODS =====

// Validate enforces aggregate invariants. Raw enum strings must already
// be resolved (see ResolveEnums); validation runs on the typed fields.
func (t *Template) Validate() error {
	if t.ID == "" {
		return &SchemaViolationError{Field: "template.id", Reason: "template id cannot be empty"}
	}
	if len(t.Steps) == 0 {
		return &SchemaViolationError{Doc: t.ID, Field: "steps", Reason: "template has no steps"}
	}

	stepIDs := make(map[string]bool, len(t.Steps))
	for i, step := range t.Steps {
		if err := step.validate(); err != nil {
			return fmt.Errorf("step %d (%s): %w", i, step.ID, err)
		}
		if stepIDs[step.ID] {
			return &SchemaViolationError{Doc: t.ID, Field: "steps", Reason: "duplicate step id: " + step.ID}
		}
		stepIDs[step.ID] = true
	}

	if t.Repeat.Repeatable {
		if t.Repeat.Mode.IsZero() {
			return &SchemaViolationError{Doc: t.ID, Field: "repeat.mode", Reason: "repeatable template requires a mode"}
		}
		if t.Repeat.CycleBars <= 0 {
			return &SchemaViolationError{Doc: t.ID, Field: "repeat.cycle_bars", Reason: "cycle length must be positive"}
		}
		for _, id := range t.Repeat.LoopStepIDs {
			if !stepIDs[id] {
				return &SchemaViolationError{Doc: t.ID, Field: "repeat.loop_steps", Reason: "unknown step id: " + id}
			}
		}
		// The scheduler tiles only the loop body; a step outside it
		// would never be scheduled, so reject it rather than drop an
		// authored step without trace.
		if len(t.Repeat.LoopStepIDs) > 0 {
			loop := make(map[string]bool, len(t.Repeat.LoopStepIDs))
			for _, id := range t.Repeat.LoopStepIDs {
				loop[id] = true
			}
			for _, step := range t.Steps {
				if !loop[step.ID] {
					return &SchemaViolationError{
						Doc:    t.ID,
						Field:  "repeat.loop_steps",
						Reason: "step " + step.ID + " is outside the loop body and would never play",
					}
				}
			}
		}
	}

	if t.Safety.DimmerFloorNorm < 0 || t.Safety.DimmerFloorNorm > 1 {
		return &SchemaViolationError{Doc: t.ID, Field: "safety.dimmer_floor_norm", Reason: "must be in [0,1]"}
	}
	if t.Safety.DimmerCeilingNorm != 0 {
		if t.Safety.DimmerCeilingNorm < t.Safety.DimmerFloorNorm || t.Safety.DimmerCeilingNorm > 1 {
			return &SchemaViolationError{Doc: t.ID, Field: "safety.dimmer_ceiling_norm", Reason: "must be in [floor,1]"}
		}
	}

	return nil
}

func (s *TemplateStep) validate() error {
	if s.ID == "" {
		return &SchemaViolationError{Field: "step.id", Reason: "step id cannot be empty"}
	}
	if s.Group == "" {
		return &SchemaViolationError{Field: "step.group", Reason: "step group cannot be empty"}
	}
	if s.Timing.DurationBars <= 0 {
		return &SchemaViolationError{Field: "step.timing.duration_bars", Reason: "duration must be positive"}
	}
	if s.Timing.StartBars < 0 {
		return &SchemaViolationError{Field: "step.timing.start_bars", Reason: "start cannot be negative"}
	}
	if s.Geometry.Pose == "" {
		return &SchemaViolationError{Field: "step.geometry.pose", Reason: "pose token cannot be empty"}
	}
	if s.Phase != nil {
		if s.Phase.Mode.Equals(values.PhaseGroupOrder) {
			if s.Phase.Order == "" {
				return &SchemaViolationError{Field: "step.phase.order", Reason: "GROUP_ORDER requires an order name"}
			}
			if s.Phase.SpreadBars < 0 {
				return &SchemaViolationError{Field: "step.phase.spread_bars", Reason: "spread cannot be negative"}
			}
		}
	}
	if s.Movement != nil {
		if s.Movement.Custom == nil && !s.Movement.Kind.Valid() {
			return &SchemaViolationError{Field: "step.movement.kind", Reason: "unknown movement kind: " + string(s.Movement.Kind)}
		}
		if s.Movement.Intensity < 0 || s.Movement.Intensity > 1 {
			return &SchemaViolationError{Field: "step.movement.intensity", Reason: "must be in [0,1]"}
		}
		if s.Movement.Cycles < 0 {
			return &SchemaViolationError{Field: "step.movement.cycles", Reason: "cycles cannot be negative"}
		}
	}
	if s.Dimmer != nil {
		if s.Dimmer.Custom == nil && !s.Dimmer.Kind.Valid() {
			return &SchemaViolationError{Field: "step.dimmer.kind", Reason: "unknown dimmer kind: " + string(s.Dimmer.Kind)}
		}
		if s.Dimmer.MinNorm < 0 || s.Dimmer.MaxNorm > 1 || s.Dimmer.MinNorm > s.Dimmer.MaxNorm {
			return &SchemaViolationError{Field: "step.dimmer", Reason: "requires 0 <= min_norm <= max_norm <= 1"}
		}
		if s.Dimmer.Cycles < 0 {
			return &SchemaViolationError{Field: "step.dimmer.cycles", Reason: "cycles cannot be negative"}
		}
	}
	return nil
}

// ResolveEnums converts raw enum strings (as decoded from YAML) into
// typed values. Called once by the loader before Validate.
func (t *Template) ResolveEnums() error {
	if t.Repeat.ModeRaw != "" {
		mode, err := values.NewRepeatMode(t.Repeat.ModeRaw)
		if err != nil {
			return &SchemaViolationError{Doc: t.ID, Field: "repeat.mode", Reason: err.Error()}
		}
		t.Repeat.Mode = mode
	}
	policy, err := values.NewRemainderPolicy(t.Repeat.RemainderRaw)
	if err != nil {
		return &SchemaViolationError{Doc: t.ID, Field: "repeat.remainder", Reason: err.Error()}
	}
	t.Repeat.Remainder = policy

	for i := range t.Steps {
		if t.Steps[i].Phase == nil {
			continue
		}
		if err := t.Steps[i].Phase.ResolveEnums(); err != nil {
			return fmt.Errorf("step %s: %w", t.Steps[i].ID, err)
		}
	}
	return nil
}

// ResolveEnums converts the phase spec's raw strings to typed values.
func (p *PhaseOffsetSpec) ResolveEnums() error {
	mode, err := values.NewPhaseMode(p.ModeRaw)
	if err != nil {
		return &SchemaViolationError{Field: "phase.mode", Reason: err.Error()}
	}
	p.Mode = mode
	dist, err := values.NewDistribution(p.DistributionRaw)
	if err != nil {
		return &SchemaViolationError{Field: "phase.distribution", Reason: err.Error()}
	}
	p.Distribution = dist
	return nil
}

// Step returns the step with the given id.
func (t *Template) Step(id string) (TemplateStep, bool) {
	for _, s := range t.Steps {
		if s.ID == id {
			return s, true
		}
	}
	return TemplateStep{}, false
}

// LoopSteps returns the steps forming the repeatable loop body, in
// declared order. When the contract names no loop steps, the whole step
// list is the body.
func (t *Template) LoopSteps() []TemplateStep {
	if len(t.Repeat.LoopStepIDs) == 0 {
		out := make([]TemplateStep, len(t.Steps))
		copy(out, t.Steps)
		return out
	}
	wanted := make(map[string]bool, len(t.Repeat.LoopStepIDs))
	for _, id := range t.Repeat.LoopStepIDs {
		wanted[id] = true
	}
	out := make([]TemplateStep, 0, len(wanted))
	for _, s := range t.Steps {
		if wanted[s.ID] {
			out = append(out, s)
		}
	}
	return out
}
