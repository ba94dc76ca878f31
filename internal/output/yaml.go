package output

import (
	"encoding/json"
	"io"

	"github.com/goccy/go-yaml"

	"github.com/bluewatersql/twinklr/internal/engine"
)

// YAMLFormatter writes the compile result as YAML. The result is
// bridged through its JSON form so curve and id marshaling stays
// identical across both formats.
type YAMLFormatter struct {
	writer io.Writer
}

// NewYAMLFormatter creates a new YAML formatter.
func NewYAMLFormatter(w io.Writer) *YAMLFormatter {
	return &YAMLFormatter{writer: w}
}

// Format writes the compile result as YAML.
func (f *YAMLFormatter) Format(result *engine.CompileResult) error {
	jsonBytes, err := json.Marshal(result)
	if err != nil {
		return err
	}
	yamlBytes, err := yaml.JSONToYAML(jsonBytes)
	if err != nil {
		return err
	}
	_, err = f.writer.Write(yamlBytes)
	return err
}
