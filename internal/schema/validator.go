// Package schema validates catalog documents against the canonical
// collection schema before they are persisted.
package schema

import (
	"encoding/json"
	"fmt"
	"sync"

	"github.com/santhosh-tekuri/jsonschema/v5"

	"github.com/norland/catena/internal/models"
)

const collectionSchema = `{
  "$schema": "https://json-schema.org/draft/2020-12/schema",
  "type": "object",
  "required": ["version", "templates"],
  "properties": {
    "version": {"const": "2"},
    "templates": {
      "type": "array",
      "items": {
        "type": "object",
        "required": ["title"],
        "properties": {
          "title": {"type": "string", "minLength": 1},
          "description": {"type": "string"},
          "image": {"type": "string"},
          "logo": {"type": "string"},
          "platform": {"type": "string"},
          "restart_policy": {"type": "string"},
          "categories": {"type": "array", "items": {"type": "string"}},
          "env": {
            "type": "array",
            "items": {
              "type": "object",
              "required": ["name"],
              "properties": {
                "name": {"type": "string"},
                "default": {"type": "string"}
              }
            }
          },
          "ports": {
            "type": "array",
            "items": {
              "type": "object",
              "minProperties": 1,
              "maxProperties": 1,
              "additionalProperties": {"type": "string"}
            }
          },
          "volumes": {
            "type": "array",
            "items": {
              "type": "object",
              "required": ["container"],
              "properties": {
                "container": {"type": "string"},
                "bind": {"type": "string"}
              }
            }
          },
          "note": {"type": "string"},
          "administrator_only": {"type": "boolean"},
          "repository": {
            "type": "object",
            "properties": {
              "url": {"type": "string"},
              "stackfile": {"type": "string"}
            }
          }
        }
      }
    }
  }
}`

var (
	compileOnce sync.Once
	compiled    *jsonschema.Schema
	compileErr  error
)

func schemaInstance() (*jsonschema.Schema, error) {
	compileOnce.Do(func() {
		compiled, compileErr = jsonschema.CompileString("catalog.schema.json", collectionSchema)
	})
	return compiled, compileErr
}

// ValidateCollection checks a collection against the canonical schema.
func ValidateCollection(c *models.Collection) error {
	s, err := schemaInstance()
	if err != nil {
		return fmt.Errorf("schema: compile: %w", err)
	}

	raw, err := json.Marshal(c)
	if err != nil {
		return fmt.Errorf("schema: encode collection: %w", err)
	}
	var doc any
	if err := json.Unmarshal(raw, &doc); err != nil {
		return fmt.Errorf("schema: decode collection: %w", err)
	}

	if err := s.Validate(doc); err != nil {
		return fmt.Errorf("schema: %w", err)
	}
	return nil
}
