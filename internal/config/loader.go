package config

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/Masterminds/semver/v3"
	"github.com/goccy/go-yaml"
	jsonschema "github.com/santhosh-tekuri/jsonschema/v5"

	"github.com/bluewatersql/twinklr/internal/domain/entities"
)

// schemaVersionRange is the document versions this build understands.
// Minor/patch bumps within the major are compatible.
var schemaVersionRange = mustConstraint("^1")

func mustConstraint(expr string) *semver.Constraints {
	c, err := semver.NewConstraint(expr)
	if err != nil {
		panic(err)
	}
	return c
}

// TemplateLoader loads template documents from YAML files.
type TemplateLoader struct{}

// NewTemplateLoader creates a new template loader.
func NewTemplateLoader() *TemplateLoader {
	return &TemplateLoader{}
}

// Load loads and validates a template document from a YAML file.
func (l *TemplateLoader) Load(path string) (*entities.TemplateDoc, error) {
	data, err := readDocument(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read template: %w", err)
	}
	return l.loadBytes(data)
}

// LoadFromReader loads a template document from an io.Reader.
func (l *TemplateLoader) LoadFromReader(r io.Reader) (*entities.TemplateDoc, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("failed to read template: %w", err)
	}
	return l.loadBytes(data)
}

func (l *TemplateLoader) loadBytes(data []byte) (*entities.TemplateDoc, error) {
	schema, err := compileSchema("template.schema.json", templateSchema)
	if err != nil {
		return nil, err
	}
	if err := validateDocument(schema, "template", data); err != nil {
		return nil, err
	}

	var doc entities.TemplateDoc
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("failed to decode template YAML: %w", err)
	}

	if err := checkSchemaVersion(doc.Template.ID, doc.SchemaVersion); err != nil {
		return nil, err
	}
	if err := resolveTemplateCurves(&doc); err != nil {
		return nil, err
	}
	if err := doc.Template.ResolveEnums(); err != nil {
		return nil, err
	}
	if err := doc.Template.Validate(); err != nil {
		return nil, err
	}
	return &doc, nil
}

// rigDocument is the YAML-facing shape of a rig profile file.
type rigDocument struct {
	SchemaVersion string  `yaml:"schema_version"`
	Rig           rigBody `yaml:"rig"`
}

type rigBody struct {
	Name        string                                    `yaml:"name"`
	Fixtures    []string                                  `yaml:"fixtures"`
	Roles       map[string]string                         `yaml:"roles"`
	Groups      map[string][]string                       `yaml:"groups"`
	Orders      map[string][]string                       `yaml:"orders"`
	Calibration map[string]entities.FixtureCalibration    `yaml:"calibration"`
	Poses       map[string]map[string]entities.PoseTarget `yaml:"poses"`
	AimZones    map[string]float64                        `yaml:"aim_zones"`
}

// RigLoader loads rig profiles from YAML files.
type RigLoader struct{}

// NewRigLoader creates a new rig loader.
func NewRigLoader() *RigLoader {
	return &RigLoader{}
}

// Load loads and validates a rig profile from a YAML file.
func (l *RigLoader) Load(path string) (*entities.RigProfile, error) {
	data, err := readDocument(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read rig: %w", err)
	}
	return l.loadBytes(data)
}

// LoadFromReader loads a rig profile from an io.Reader.
func (l *RigLoader) LoadFromReader(r io.Reader) (*entities.RigProfile, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("failed to read rig: %w", err)
	}
	return l.loadBytes(data)
}

func (l *RigLoader) loadBytes(data []byte) (*entities.RigProfile, error) {
	schema, err := compileSchema("rig.schema.json", rigSchema)
	if err != nil {
		return nil, err
	}
	if err := validateDocument(schema, "rig", data); err != nil {
		return nil, err
	}

	var doc rigDocument
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("failed to decode rig YAML: %w", err)
	}
	if err := checkSchemaVersion(doc.Rig.Name, doc.SchemaVersion); err != nil {
		return nil, err
	}

	return entities.NewRigProfile(entities.RigProfileParams{
		Name:         doc.Rig.Name,
		Fixtures:     doc.Rig.Fixtures,
		RoleBindings: doc.Rig.Roles,
		Groups:       doc.Rig.Groups,
		Orders:       doc.Rig.Orders,
		Calibration:  doc.Rig.Calibration,
		Poses:        doc.Rig.Poses,
		AimZones:     doc.Rig.AimZones,
	})
}

// LoadTemplateDoc loads a template document from a YAML file.
func LoadTemplateDoc(path string) (*entities.TemplateDoc, error) {
	return NewTemplateLoader().Load(path)
}

// LoadTemplateDocFromReader loads a template document from a reader.
func LoadTemplateDocFromReader(r io.Reader) (*entities.TemplateDoc, error) {
	return NewTemplateLoader().LoadFromReader(r)
}

// LoadRigProfile loads a rig profile from a YAML file.
func LoadRigProfile(path string) (*entities.RigProfile, error) {
	return NewRigLoader().Load(path)
}

// LoadRigProfileFromReader loads a rig profile from a reader.
func LoadRigProfileFromReader(r io.Reader) (*entities.RigProfile, error) {
	return NewRigLoader().LoadFromReader(r)
}

// readDocument opens a document without following paths outside its
// directory.
func readDocument(path string) ([]byte, error) {
	dir := filepath.Dir(path)
	base := filepath.Base(path)

	root, err := os.OpenRoot(dir)
	if err != nil {
		return nil, err
	}
	defer func() {
		_ = root.Close()
	}()

	file, err := root.Open(base)
	if err != nil {
		return nil, err
	}
	defer func() {
		_ = file.Close()
	}()

	return io.ReadAll(file)
}

// validateDocument runs structural schema validation on raw YAML. The
// document is bridged through JSON so the validator sees JSON-typed
// values.
func validateDocument(schema *jsonschema.Schema, docKind string, data []byte) error {
	jsonBytes, err := yaml.YAMLToJSON(data)
	if err != nil {
		return &entities.SchemaViolationError{Doc: docKind, Field: "(document)", Reason: "not valid YAML: " + err.Error()}
	}
	var value any
	if err := json.Unmarshal(jsonBytes, &value); err != nil {
		return &entities.SchemaViolationError{Doc: docKind, Field: "(document)", Reason: err.Error()}
	}
	return validateAgainstSchema(schema, docKind, value)
}

// checkSchemaVersion gates documents on the compatible version range.
func checkSchemaVersion(doc, version string) error {
	v, err := semver.NewVersion(version)
	if err != nil {
		return &entities.SchemaViolationError{
			Doc:    doc,
			Field:  "schema_version",
			Reason: fmt.Sprintf("%q is not a valid semantic version", version),
		}
	}
	if !schemaVersionRange.Check(v) {
		return &entities.SchemaViolationError{
			Doc:    doc,
			Field:  "schema_version",
			Reason: fmt.Sprintf("version %s is outside the supported range %s", version, schemaVersionRange),
		}
	}
	return nil
}

// resolveTemplateCurves compiles every document curve spec, in the base
// template and in preset step patches, into a Curve.
func resolveTemplateCurves(doc *entities.TemplateDoc) error {
	for i := range doc.Template.Steps {
		step := &doc.Template.Steps[i]
		if err := resolveSpecCurves("steps."+step.ID, step.Movement, step.Dimmer); err != nil {
			return err
		}
	}
	for name, patch := range doc.Presets {
		for id, sp := range patch.Steps {
			field := fmt.Sprintf("presets.%s.steps.%s", name, id)
			if err := resolveSpecCurves(field, sp.Movement, sp.Dimmer); err != nil {
				return err
			}
		}
	}
	return nil
}

func resolveSpecCurves(field string, movement *entities.MovementSpec, dimmer *entities.DimmerSpec) error {
	if movement != nil && movement.CurveRaw != nil {
		curve, err := resolveCurveSpec(field+".movement.curve", movement.CurveRaw)
		if err != nil {
			return err
		}
		movement.Custom = &curve
	}
	if dimmer != nil && dimmer.CurveRaw != nil {
		curve, err := resolveCurveSpec(field+".dimmer.curve", dimmer.CurveRaw)
		if err != nil {
			return err
		}
		dimmer.Custom = &curve
	}
	return nil
}
