package services

import (
	"github.com/bluewatersql/twinklr/internal/domain/entities"
)

// These functions provide deep copying of template structures. The
// patcher mutates only copies made here, so callers' inputs stay
// immutable for the life of a compile.

// DeepCopyTemplate creates a completely independent copy of a template.
func DeepCopyTemplate(original *entities.Template) *entities.Template {
	if original == nil {
		return nil
	}

	copied := *original
	copied.Roles = CopyStringSlice(original.Roles)
	copied.Groups = CopyStringSlice(original.Groups)
	copied.Repeat.LoopStepIDs = CopyStringSlice(original.Repeat.LoopStepIDs)
	copied.Steps = CopySteps(original.Steps)
	return &copied
}

// CopyStringSlice creates an independent copy of a string slice.
func CopyStringSlice(src []string) []string {
	if src == nil {
		return nil
	}
	dst := make([]string, len(src))
	copy(dst, src)
	return dst
}

// CopySteps creates independent copies of template steps, including
// their optional spec pointers.
func CopySteps(src []entities.TemplateStep) []entities.TemplateStep {
	if src == nil {
		return nil
	}
	dst := make([]entities.TemplateStep, len(src))
	for i, step := range src {
		copied := step
		if step.Phase != nil {
			phase := *step.Phase
			copied.Phase = &phase
		}
		if step.Movement != nil {
			movement := *step.Movement
			copied.Movement = &movement
		}
		if step.Dimmer != nil {
			dimmer := *step.Dimmer
			copied.Dimmer = &dimmer
		}
		dst[i] = copied
	}
	return dst
}
