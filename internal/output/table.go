package output

import (
	"fmt"
	"io"
	"time"

	"github.com/bluewatersql/twinklr/internal/engine"
)

// TableFormatter writes a human-readable summary of the compile result.
type TableFormatter struct {
	writer io.Writer
}

// NewTableFormatter creates a new table formatter.
func NewTableFormatter(w io.Writer) *TableFormatter {
	return &TableFormatter{writer: w}
}

// Format writes the compile result as a summary table.
func (f *TableFormatter) Format(result *engine.CompileResult) error {
	fmt.Fprintf(f.writer, "Template: %s\n", result.TemplateID)
	if result.PresetID != "" {
		fmt.Fprintf(f.writer, "Preset:   %s\n", result.PresetID)
	}
	fmt.Fprintf(f.writer, "Compiled: %s (%s)\n", result.CompiledAt.Format(time.RFC3339), result.ID)
	fmt.Fprintln(f.writer)

	if len(result.Segments) == 0 {
		fmt.Fprintln(f.writer, "No segments compiled.")
		return nil
	}

	fmt.Fprintf(f.writer, "%-10s %-8s %-8s %-8s %-8s %s\n",
		"FIXTURE", "CHANNEL", "T0_MS", "T1_MS", "KIND", "DETAIL")
	for _, seg := range result.Segments {
		kind, detail := "curve", ""
		switch {
		case seg.StaticValue != nil:
			kind = "static"
			detail = fmt.Sprintf("value=%.1f", *seg.StaticValue)
		case seg.Curve != nil && seg.Curve.IsPoints():
			detail = fmt.Sprintf("points=%d", len(seg.Curve.Points()))
		case seg.Curve != nil:
			detail = string(seg.Curve.Shape())
		}
		fmt.Fprintf(f.writer, "%-10s %-8s %-8d %-8d %-8s %s clamp=[%.0f,%.0f]\n",
			seg.FixtureID, seg.Channel, seg.T0Ms, seg.T1Ms, kind, detail, seg.ClampMin, seg.ClampMax)
	}

	fmt.Fprintf(f.writer, "\n%d segments across %d fixtures\n",
		len(result.Segments), len(result.FixtureIDs()))

	if len(result.Warnings) > 0 {
		fmt.Fprintln(f.writer)
		fmt.Fprintln(f.writer, "Warnings:")
		for _, w := range result.Warnings {
			fmt.Fprintf(f.writer, "  - %s\n", w)
		}
	}
	return nil
}
