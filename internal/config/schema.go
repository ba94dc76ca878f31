package config

import (
	"fmt"
	"strings"

	jsonschema "github.com/santhosh-tekuri/jsonschema/v5"

	"github.com/bluewatersql/twinklr/internal/domain/entities"
)

// Structural schemas for the two document kinds. Validation runs on the
// decoded YAML before any entity constructor sees the data, so broken
// documents fail with instance paths instead of deep constructor errors.

const templateSchema = `{
  "$schema": "https://json-schema.org/draft/2020-12/schema",
  "type": "object",
  "required": ["schema_version", "template"],
  "properties": {
    "schema_version": {"type": "string"},
    "template": {
      "type": "object",
      "required": ["id", "steps"],
      "properties": {
        "id": {"type": "string", "minLength": 1},
        "name": {"type": "string"},
        "roles": {"type": "array", "items": {"type": "string"}},
        "groups": {"type": "array", "items": {"type": "string"}},
        "repeat": {
          "type": "object",
          "properties": {
            "repeatable": {"type": "boolean"},
            "mode": {"enum": ["PING_PONG", "JOINER"]},
            "cycle_bars": {"type": "number", "exclusiveMinimum": 0},
            "loop_steps": {"type": "array", "items": {"type": "string"}},
            "remainder": {"enum": ["TRUNCATE", "HOLD_LAST_POSE", "FADE_OUT"]}
          }
        },
        "safety": {
          "type": "object",
          "properties": {
            "dimmer_floor_norm": {"type": "number", "minimum": 0, "maximum": 1},
            "dimmer_ceiling_norm": {"type": "number", "minimum": 0, "maximum": 1}
          }
        },
        "steps": {
          "type": "array",
          "minItems": 1,
          "items": {
            "type": "object",
            "required": ["id", "group", "timing", "geometry"],
            "properties": {
              "id": {"type": "string", "minLength": 1},
              "group": {"type": "string", "minLength": 1},
              "timing": {
                "type": "object",
                "required": ["duration_bars"],
                "properties": {
                  "start_bars": {"type": "number", "minimum": 0},
                  "duration_bars": {"type": "number", "exclusiveMinimum": 0}
                }
              },
              "phase": {
                "type": "object",
                "properties": {
                  "mode": {"enum": ["NONE", "GROUP_ORDER"]},
                  "order": {"type": "string"},
                  "spread_bars": {"type": "number", "minimum": 0},
                  "distribution": {"enum": ["LINEAR"]},
                  "wrap": {"type": "boolean"}
                }
              },
              "geometry": {
                "type": "object",
                "required": ["pose"],
                "properties": {
                  "pose": {"type": "string", "minLength": 1},
                  "aim_zone": {"type": "string"}
                }
              },
              "movement": {
                "type": "object",
                "properties": {
                  "kind": {"enum": ["STATIC", "SWAY", "NOD", "CIRCLE", "FIGURE_EIGHT"]},
                  "intensity": {"type": "number", "minimum": 0, "maximum": 1},
                  "cycles": {"type": "number", "minimum": 0},
                  "phase": {"type": "number"},
                  "curve": {"$ref": "#/$defs/curve"}
                }
              },
              "dimmer": {
                "type": "object",
                "properties": {
                  "kind": {"enum": ["HOLD", "PULSE", "RAMP_UP", "RAMP_DOWN", "BLINK", "BREATHE"]},
                  "min_norm": {"type": "number", "minimum": 0, "maximum": 1},
                  "max_norm": {"type": "number", "minimum": 0, "maximum": 1},
                  "cycles": {"type": "number", "minimum": 0},
                  "level": {"type": "number", "minimum": 0, "maximum": 1},
                  "curve": {"$ref": "#/$defs/curve"}
                }
              }
            }
          }
        }
      }
    },
    "presets": {
      "type": "object",
      "additionalProperties": {"type": "object"}
    }
  },
  "$defs": {
    "curve": {
      "type": "object",
      "properties": {
        "points": {
          "type": "array",
          "minItems": 2,
          "items": {
            "type": "object",
            "required": ["t", "v"],
            "properties": {
              "t": {"type": "number", "minimum": 0, "maximum": 1},
              "v": {"type": "number", "minimum": 0, "maximum": 1}
            }
          }
        },
        "shape": {"enum": ["HOLD", "LINEAR", "EASE_IN_OUT", "SINE"]},
        "level": {"type": "number", "minimum": 0, "maximum": 1},
        "phase": {"type": "number"},
        "cycles": {"type": "number", "minimum": 0},
        "expr": {"type": "string", "minLength": 1},
        "samples": {"type": "integer", "minimum": 2, "maximum": 4096}
      }
    }
  }
}`

const rigSchema = `{
  "$schema": "https://json-schema.org/draft/2020-12/schema",
  "type": "object",
  "required": ["schema_version", "rig"],
  "properties": {
    "schema_version": {"type": "string"},
    "rig": {
      "type": "object",
      "required": ["name", "fixtures", "calibration"],
      "properties": {
        "name": {"type": "string", "minLength": 1},
        "fixtures": {
          "type": "array",
          "minItems": 1,
          "items": {"type": "string", "minLength": 1}
        },
        "roles": {
          "type": "object",
          "additionalProperties": {"type": "string", "minLength": 1}
        },
        "groups": {
          "type": "object",
          "additionalProperties": {"type": "array", "items": {"type": "string"}}
        },
        "orders": {
          "type": "object",
          "additionalProperties": {"type": "array", "items": {"type": "string"}}
        },
        "calibration": {
          "type": "object",
          "additionalProperties": {
            "type": "object",
            "properties": {
              "pan_min": {"type": "number"},
              "pan_max": {"type": "number"},
              "pan_center": {"type": "number"},
              "tilt_min": {"type": "number"},
              "tilt_max": {"type": "number"},
              "tilt_center": {"type": "number"},
              "dimmer_min": {"type": "number"},
              "dimmer_max": {"type": "number"}
            }
          }
        },
        "poses": {
          "type": "object",
          "additionalProperties": {
            "type": "object",
            "additionalProperties": {
              "type": "object",
              "required": ["pan_norm", "tilt_norm"],
              "properties": {
                "pan_norm": {"type": "number", "minimum": 0, "maximum": 1},
                "tilt_norm": {"type": "number", "minimum": 0, "maximum": 1}
              }
            }
          }
        },
        "aim_zones": {
          "type": "object",
          "additionalProperties": {"type": "number", "minimum": 0, "maximum": 1}
        }
      }
    }
  }
}`

// compileSchema compiles an embedded schema document once per call site.
func compileSchema(name, source string) (*jsonschema.Schema, error) {
	compiler := jsonschema.NewCompiler()
	compiler.Draft = jsonschema.Draft2020
	if err := compiler.AddResource(name, strings.NewReader(source)); err != nil {
		return nil, fmt.Errorf("failed to add schema resource %s: %w", name, err)
	}
	schema, err := compiler.Compile(name)
	if err != nil {
		return nil, fmt.Errorf("failed to compile schema %s: %w", name, err)
	}
	return schema, nil
}

// validateAgainstSchema runs structural validation and folds the result
// into the schema-violation taxonomy with instance paths preserved.
func validateAgainstSchema(schema *jsonschema.Schema, doc string, value any) error {
	err := schema.Validate(value)
	if err == nil {
		return nil
	}
	if verr, ok := err.(*jsonschema.ValidationError); ok {
		return &entities.SchemaViolationError{
			Doc:    doc,
			Field:  "(document)",
			Reason: formatValidationError(verr),
		}
	}
	return &entities.SchemaViolationError{Doc: doc, Field: "(document)", Reason: err.Error()}
}

// formatValidationError flattens nested schema errors into one readable
// message, one line per leaf cause.
func formatValidationError(err *jsonschema.ValidationError) string {
	var messages []string

	var collect func(*jsonschema.ValidationError)
	collect = func(e *jsonschema.ValidationError) {
		if len(e.Causes) == 0 && e.Message != "" {
			location := e.InstanceLocation
			if location == "" {
				location = "(root)"
			}
			messages = append(messages, fmt.Sprintf("%s: %s", location, e.Message))
		}
		for _, cause := range e.Causes {
			collect(cause)
		}
	}
	collect(err)

	if len(messages) == 0 {
		return "structural validation failed"
	}
	return strings.Join(messages, "; ")
}
