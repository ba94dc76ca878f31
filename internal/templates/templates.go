// Package templates provides embedded starter documents for scaffolding
// a new choreography project.
package templates

import (
	"bytes"
	"embed"
	"fmt"
	"strings"
	"text/template"
)

//go:embed starter/*.tmpl
var starterFiles embed.FS

// StarterData parameterizes the starter documents.
type StarterData struct {
	// Name is the kebab-case project name (e.g. "club-night").
	Name string
	// Title is the display name rendered into the template document.
	Title string
}

// NewStarterData derives render data from a project name.
func NewStarterData(name string) StarterData {
	words := strings.Split(name, "-")
	for i, w := range words {
		if w != "" {
			words[i] = strings.ToUpper(w[:1]) + w[1:]
		}
	}
	return StarterData{Name: name, Title: strings.Join(words, " ")}
}

// RenderTemplate renders the starter template document.
func RenderTemplate(data StarterData) ([]byte, error) {
	return render("starter/template.yaml.tmpl", data)
}

// RenderRig renders the starter rig profile.
func RenderRig(data StarterData) ([]byte, error) {
	return render("starter/rig.yaml.tmpl", data)
}

func render(path string, data StarterData) ([]byte, error) {
	content, err := starterFiles.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading starter %s: %w", path, err)
	}
	tmpl, err := template.New(path).Parse(string(content))
	if err != nil {
		return nil, fmt.Errorf("parsing starter %s: %w", path, err)
	}

	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, data); err != nil {
		return nil, fmt.Errorf("rendering starter %s: %w", path, err)
	}
	return buf.Bytes(), nil
}
