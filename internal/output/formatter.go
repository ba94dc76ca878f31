// Package output renders compile results for terminals and files: JSON
// for downstream exporters, YAML for human diffing, and a summary table
// for quick inspection.
package output

import (
	"fmt"
	"io"

	"github.com/bluewatersql/twinklr/internal/engine"
)

// Formatter writes one compile result to its writer.
type Formatter interface {
	Format(result *engine.CompileResult) error
}

// Options tune formatter behavior where a format supports it.
type Options struct {
	// Indent pretty-prints JSON output.
	Indent bool
}

// NewFormatter returns a formatter for the given format name.
func NewFormatter(format string, w io.Writer, opts Options) (Formatter, error) {
	switch format {
	case "json":
		return NewJSONFormatter(w, opts.Indent), nil
	case "yaml":
		return NewYAMLFormatter(w), nil
	case "table":
		return NewTableFormatter(w), nil
	default:
		return nil, fmt.Errorf("unknown format: %s (supported: %v)", format, SupportedFormats())
	}
}

// SupportedFormats returns the available format names.
func SupportedFormats() []string {
	return []string{"json", "yaml", "table"}
}
