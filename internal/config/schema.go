// Embedded JSON Schema for scenario files. YAML documents are bridged
// through JSON before validation so the validator sees canonical types.
package config

import (
	"encoding/json"
	"fmt"

	"github.com/santhosh-tekuri/jsonschema/v5"
	"gopkg.in/yaml.v3"
)

const scenarioSchema = `{
  "$schema": "https://json-schema.org/draft/2020-12/schema",
  "type": "object",
  "additionalProperties": false,
  "properties": {
    "seed": {"type": "integer"},
    "ticks": {"type": "integer", "minimum": 0},
    "time_window": {"type": "integer", "minimum": 0},
    "grid": {
      "type": "object",
      "additionalProperties": false,
      "properties": {
        "radius": {"type": "integer", "minimum": 1},
        "field_seed": {"type": "integer"}
      }
    },
    "agents": {
      "type": "object",
      "additionalProperties": false,
      "properties": {
        "commuters_per_tick": {"type": "integer", "minimum": 0},
        "spawn_ticks": {"type": "integer", "minimum": 0},
        "speculators": {"type": "integer", "minimum": 0},
        "commuter_budget": {"type": "number", "minimum": 0},
        "speculator_markup": {"type": "number"},
        "deadline": {"type": "integer", "minimum": 0}
      }
    },
    "output": {
      "type": "object",
      "additionalProperties": false,
      "properties": {
        "sqlite": {"type": "string"},
        "jsonl": {"type": "string"}
      }
    }
  }
}`

var compiledSchema = jsonschema.MustCompileString("scenario.schema.json", scenarioSchema)

// validateSchema checks a raw YAML document against the scenario schema.
func validateSchema(b []byte) error {
	var doc any
	if err := yaml.Unmarshal(b, &doc); err != nil {
		return fmt.Errorf("parse: %w", err)
	}

	// Round-trip through JSON so the validator sees json.Unmarshal
	// types rather than yaml.v3 ones.
	j, err := json.Marshal(doc)
	if err != nil {
		return fmt.Errorf("encode: %w", err)
	}
	var v any
	if err := json.Unmarshal(j, &v); err != nil {
		return fmt.Errorf("decode: %w", err)
	}

	if err := compiledSchema.Validate(v); err != nil {
		return fmt.Errorf("schema: %w", err)
	}
	return nil
}
