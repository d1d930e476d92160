package hydrate

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/santhosh-tekuri/jsonschema/v5"
)

// snapshotSchema is the structural contract for incoming snapshot documents.
// Probability and intensity fields declare their closed intervals here, so a
// bad hydration fails loudly before the first tick instead of seeding an
// invariant violation.
const snapshotSchema = `{
  "$schema": "https://json-schema.org/draft/2020-12/schema",
  "type": "object",
  "required": ["version", "tick", "classes", "territories", "relations"],
  "properties": {
    "version": {"const": 1},
    "tick": {"type": "integer", "minimum": 0},
    "classes": {
      "type": "array",
      "items": {
        "type": "object",
        "required": ["id", "role", "wealth", "organization", "consciousness", "population"],
        "properties": {
          "id": {"type": "string", "minLength": 1},
          "name": {"type": "string"},
          "role": {"type": "string"},
          "wealth": {"type": "number", "minimum": 0},
          "organization": {"type": "number", "minimum": 0, "maximum": 1},
          "consciousness": {"type": "number", "minimum": -1, "maximum": 1},
          "population": {"type": "number", "exclusiveMinimum": 0},
          "repression": {"type": "number", "minimum": 0, "maximum": 1},
          "acquiesce_p": {"type": "number", "minimum": 0, "maximum": 1},
          "revolt_p": {"type": "number", "minimum": 0, "maximum": 1},
          "alignment": {"enum": ["unaligned", "repression", "liberation"]},
          "drift_accum": {"type": "number", "minimum": 0},
          "path_gain": {"type": "number", "minimum": 1},
          "home": {"type": "string"}
        }
      }
    },
    "territories": {
      "type": "array",
      "items": {
        "type": "object",
        "required": ["id", "sector", "population", "biocapacity"],
        "properties": {
          "id": {"type": "string", "minLength": 1},
          "name": {"type": "string"},
          "sector": {"type": "string"},
          "heat": {"type": "number", "minimum": 0, "maximum": 1},
          "population": {"type": "number", "minimum": 0},
          "biocapacity": {"type": "number", "exclusiveMinimum": 0},
          "draw": {"type": "number", "minimum": 0},
          "overshoot": {"type": "number", "minimum": 0}
        }
      }
    },
    "relations": {
      "type": "array",
      "items": {
        "type": "object",
        "required": ["id", "kind", "source", "target", "strength"],
        "properties": {
          "id": {"type": "string", "minLength": 1},
          "kind": {"enum": ["extraction", "tenancy", "solidarity", "adjacency", "repression"]},
          "source": {"type": "string", "minLength": 1},
          "target": {"type": "string", "minLength": 1},
          "strength": {"type": "number", "minimum": 0, "maximum": 1},
          "flow": {"type": "number", "minimum": 0}
        }
      }
    },
    "contradictions": {
      "type": "array",
      "items": {
        "type": "object",
        "required": ["id", "pole_a", "pole_b", "intensity", "stage"],
        "properties": {
          "id": {"type": "string", "minLength": 1},
          "pole_a": {"type": "string", "minLength": 1},
          "pole_b": {"type": "string", "minLength": 1},
          "intensity": {"type": "number", "minimum": 0, "maximum": 1},
          "stage": {"enum": ["latent", "active", "critical", "resolved", "ruptured"]},
          "ticks_at_ceiling": {"type": "integer", "minimum": 0},
          "transition_tick": {"type": "integer", "minimum": 0}
        }
      }
    }
  }
}`

var compiledSchema = mustCompileSchema()

func mustCompileSchema() *jsonschema.Schema {
	c := jsonschema.NewCompiler()
	if err := c.AddResource("snapshot.schema.json", bytes.NewReader([]byte(snapshotSchema))); err != nil {
		panic(err)
	}
	s, err := c.Compile("snapshot.schema.json")
	if err != nil {
		panic(err)
	}
	return s
}

func validateSchema(raw []byte) error {
	var v any
	if err := json.Unmarshal(raw, &v); err != nil {
		return fmt.Errorf("snapshot is not valid JSON: %v", err)
	}
	if err := compiledSchema.Validate(v); err != nil {
		return fmt.Errorf("snapshot schema: %v", err)
	}
	return nil
}
