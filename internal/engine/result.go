package engine

import (
	"time"

	"github.com/bluewatersql/twinklr/internal/domain/entities"
	"github.com/bluewatersql/twinklr/internal/domain/services"
	"github.com/bluewatersql/twinklr/internal/domain/values"
)

// CompileResult is one compile call's output: the canonically ordered
// IR plus the metadata an exporter or operator needs to trace it.
type CompileResult struct {
	ID         values.CompileID          `json:"compile_id"`
	TemplateID string                    `json:"template_id"`
	PresetID   string                    `json:"preset_id,omitempty"`
	CompiledAt time.Time                 `json:"compiled_at"`
	Segments   []entities.ChannelSegment `json:"segments"`
	Warnings   []string                  `json:"warnings,omitempty"`
	Provenance services.Provenance       `json:"provenance,omitempty"`
}

// NewCompileResult creates an empty result with a fresh compile ID.
func NewCompileResult(templateID, presetID string, provenance services.Provenance) *CompileResult {
	return &CompileResult{
		ID:         values.NewCompileID(),
		TemplateID: templateID,
		PresetID:   presetID,
		CompiledAt: time.Now().UTC(),
		Provenance: provenance,
	}
}

// FixtureIDs returns the distinct fixtures present in the IR, in
// canonical (sorted) order.
func (r *CompileResult) FixtureIDs() []string {
	seen := map[string]bool{}
	var out []string
	for _, seg := range r.Segments {
		if !seen[seg.FixtureID] {
			seen[seg.FixtureID] = true
			out = append(out, seg.FixtureID)
		}
	}
	return out
}
