package output

import (
	"encoding/json"
	"io"

	"github.com/bluewatersql/twinklr/internal/engine"
)

// JSONFormatter writes the compile result as JSON, the canonical IR
// interchange form.
type JSONFormatter struct {
	writer io.Writer
	indent bool
}

// NewJSONFormatter creates a new JSON formatter. If indent is true, the
// output is pretty-printed.
func NewJSONFormatter(w io.Writer, indent bool) *JSONFormatter {
	return &JSONFormatter{writer: w, indent: indent}
}

// Format writes the compile result as JSON.
func (f *JSONFormatter) Format(result *engine.CompileResult) error {
	var data []byte
	var err error

	if f.indent {
		data, err = json.MarshalIndent(result, "", "  ")
	} else {
		data, err = json.Marshal(result)
	}
	if err != nil {
		return err
	}

	if _, err := f.writer.Write(data); err != nil {
		return err
	}
	_, err = f.writer.Write([]byte("\n"))
	return err
}
