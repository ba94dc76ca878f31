package engine

import (
	"context"
	"fmt"
	"log/slog"
	"sort"

	"golang.org/x/sync/errgroup"

	"github.com/bluewatersql/twinklr/internal/config"
	"github.com/bluewatersql/twinklr/internal/domain/entities"
	"github.com/bluewatersql/twinklr/internal/domain/services"
	"github.com/bluewatersql/twinklr/internal/domain/values"
)

// Compiler is the template compiler: the only orchestrating component.
// Everything it calls is pure; determinism comes from the canonical
// output ordering, never from execution order.
type Compiler struct {
	tunables  config.Tunables
	logger    *slog.Logger
	patcher   *services.TemplatePatcher
	scheduler *services.RepeatScheduler
	steps     *StepCompiler
}

// NewCompiler creates a compiler with the given tunables. A nil logger
// falls back to slog.Default().
func NewCompiler(tunables config.Tunables, logger *slog.Logger) *Compiler {
	if logger == nil {
		logger = slog.Default()
	}
	return &Compiler{
		tunables:  tunables,
		logger:    logger,
		patcher:   services.NewTemplatePatcher(),
		scheduler: services.NewRepeatScheduler(),
		steps:     NewStepCompiler(tunables),
	}
}

// CompileRequest carries one compile call's immutable inputs.
type CompileRequest struct {
	Doc      *entities.TemplateDoc
	PresetID string
	// Modifiers apply after the preset, in order.
	Modifiers []*entities.TemplatePatch
	// PerCycle applies last, above all modifiers.
	PerCycle *entities.TemplatePatch
	Rig      *entities.RigProfile
	WindowMs int64
	// BarMs converts the template's musical timing; supplied by the
	// caller's beat mapping.
	BarMs float64
}

// Compile runs the full pipeline: patch, schedule, compile every step
// occurrence, then order the IR canonically. Two compiles of the same
// request produce byte-identical segment lists.
func (c *Compiler) Compile(ctx context.Context, req CompileRequest) (*CompileResult, error) {
	if req.Doc == nil {
		return nil, &entities.SchemaViolationError{Field: "request.doc", Reason: "template doc is required"}
	}
	if req.Rig == nil {
		return nil, &entities.SchemaViolationError{Field: "request.rig", Reason: "rig profile is required"}
	}

	layers, err := c.patchLayers(req)
	if err != nil {
		return nil, err
	}
	patched, provenance, err := c.patcher.Apply(&req.Doc.Template, layers...)
	if err != nil {
		return nil, err
	}

	if err := c.checkRigReferences(patched, req.Rig); err != nil {
		return nil, err
	}

	occurrences, err := c.scheduler.Schedule(patched, req.WindowMs, req.BarMs)
	if err != nil {
		return nil, err
	}

	result := NewCompileResult(patched.ID, req.PresetID, provenance)

	// Continuity runs once per compiled loop curve, not per occurrence:
	// every occurrence of a loop step replays the same curve, so the
	// closure fractions and warnings are shared across cycles.
	closures := map[string]map[values.Channel]float64{}
	for _, occ := range occurrences {
		if !occ.Loop {
			continue
		}
		if _, ok := closures[occ.Step.ID]; ok {
			continue
		}
		stepClosures, warnings, err := c.steps.LoopContinuity(patched, occ.Step, req.BarMs)
		if err != nil {
			return nil, err
		}
		result.Warnings = append(result.Warnings, warnings...)
		closures[occ.Step.ID] = stepClosures
	}
	occClosures := func(occ services.StepOccurrence) map[values.Channel]float64 {
		if !occ.Loop {
			return nil
		}
		return closures[occ.Step.ID]
	}

	// Step occurrences share no data; each goroutine writes to its own
	// index, so the fan-out needs no locks.
	perOccurrence := make([][]entities.ChannelSegment, len(occurrences))

	if c.tunables.Parallel && len(occurrences) > 1 {
		g, gctx := errgroup.WithContext(ctx)
		if c.tunables.MaxConcurrentSteps > 0 {
			g.SetLimit(c.tunables.MaxConcurrentSteps)
		}
		for i, occ := range occurrences {
			g.Go(func() error {
				if err := gctx.Err(); err != nil {
					return err
				}
				segments, err := c.steps.CompileOccurrence(patched, occ, req.Rig, occClosures(occ))
				if err != nil {
					return fmt.Errorf("occurrence %d (step %s): %w", i, occ.Step.ID, err)
				}
				perOccurrence[i] = segments
				return nil
			})
		}
		if err := g.Wait(); err != nil {
			return nil, err
		}
	} else {
		for i, occ := range occurrences {
			segments, err := c.steps.CompileOccurrence(patched, occ, req.Rig, occClosures(occ))
			if err != nil {
				return nil, fmt.Errorf("occurrence %d (step %s): %w", i, occ.Step.ID, err)
			}
			perOccurrence[i] = segments
		}
	}

	for i := range perOccurrence {
		result.Segments = append(result.Segments, perOccurrence[i]...)
	}

	// Canonical ordering: (fixture_id, channel, t0_ms). This is what
	// makes output independent of scheduling.
	sort.SliceStable(result.Segments, func(a, b int) bool {
		return result.Segments[a].Less(&result.Segments[b])
	})

	for _, warning := range result.Warnings {
		c.logger.Warn("continuity auto-fix", "compile_id", result.ID, "detail", warning)
	}
	c.logger.Debug("compile complete",
		"compile_id", result.ID,
		"template", patched.ID,
		"occurrences", len(occurrences),
		"segments", len(result.Segments),
	)

	return result, nil
}

// patchLayers assembles the fixed-precedence overlay chain.
func (c *Compiler) patchLayers(req CompileRequest) ([]services.PatchLayer, error) {
	var layers []services.PatchLayer

	if req.PresetID != "" {
		preset, ok := req.Doc.Presets[req.PresetID]
		if !ok {
			return nil, &entities.SchemaViolationError{
				Doc:    req.Doc.Template.ID,
				Field:  "presets",
				Reason: "unknown preset: " + req.PresetID,
			}
		}
		layers = append(layers, services.PatchLayer{Name: services.LayerPreset, Patch: &preset})
	}
	for _, modifier := range req.Modifiers {
		layers = append(layers, services.PatchLayer{Name: services.LayerModifier, Patch: modifier})
	}
	if req.PerCycle != nil {
		layers = append(layers, services.PatchLayer{Name: services.LayerPerCycle, Patch: req.PerCycle})
	}
	return layers, nil
}

// checkRigReferences fails fast when the template targets groups or
// orders the rig does not provide.
func (c *Compiler) checkRigReferences(t *entities.Template, rig *entities.RigProfile) error {
	for _, step := range t.Steps {
		if _, ok := rig.Group(step.Group); !ok {
			return &entities.CompositionError{StepID: step.ID, Reason: "unknown group: " + step.Group}
		}
		if step.Phase != nil && step.Phase.Order != "" {
			if _, ok := rig.Order(step.Phase.Order); !ok {
				return &entities.CompositionError{StepID: step.ID, Reason: "unknown order: " + step.Phase.Order}
			}
		}
	}
	return nil
}
