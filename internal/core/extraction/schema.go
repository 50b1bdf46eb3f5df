package extraction

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/santhosh-tekuri/jsonschema/v5"
)

// primaryDocumentSchema describes the document the primary prompt asks for.
// Mismatches are reported, not rejected.
const primaryDocumentSchema = `{
  "$schema": "http://json-schema.org/draft-07/schema#",
  "type": "object",
  "definitions": {
    "person": {
      "oneOf": [
        {"type": "string"},
        {
          "type": "object",
          "required": ["name"],
          "properties": {
            "name": {"type": "string"},
            "email": {"type": ["string", "null"]},
            "confidence": {"type": ["number", "null"]}
          }
        }
      ]
    },
    "coordinate": {"type": ["number", "string", "null"]}
  },
  "properties": {
    "artifact": {
      "type": "object",
      "properties": {
        "subject": {"type": ["string", "null"]},
        "sent_datetime": {"type": ["string", "null"]},
        "artifact_purpose": {"type": ["string", "null"]}
      }
    },
    "sender": {
      "anyOf": [{"$ref": "#/definitions/person"}, {"type": "null"}]
    },
    "recipients": {"type": "array", "items": {"$ref": "#/definitions/person"}},
    "mentioned": {"type": "array", "items": {"$ref": "#/definitions/person"}},
    "entities": {
      "type": "array",
      "items": {
        "type": "object",
        "required": ["entity_value"],
        "properties": {
          "entity_type": {"type": ["string", "null"]},
          "entity_value": {"type": "string"},
          "context": {"type": ["string", "null"]}
        }
      }
    },
    "locations": {
      "type": "array",
      "items": {
        "type": "object",
        "required": ["location_name"],
        "properties": {
          "location_name": {"type": "string"},
          "latitude": {"$ref": "#/definitions/coordinate"},
          "longitude": {"$ref": "#/definitions/coordinate"},
          "context": {"type": ["string", "null"]}
        }
      }
    }
  }
}`

var primarySchema = mustCompile("primary.json", primaryDocumentSchema)

func mustCompile(name, schema string) *jsonschema.Schema {
	compiler := jsonschema.NewCompiler()
	if err := compiler.AddResource(name, strings.NewReader(schema)); err != nil {
		panic(fmt.Sprintf("add schema %s: %v", name, err))
	}
	return compiler.MustCompile(name)
}

// checkPrimaryShape validates a primary document against
// primaryDocumentSchema.
func checkPrimaryShape(data string) error {
	var v any
	if err := json.Unmarshal([]byte(data), &v); err != nil {
		return fmt.Errorf("unmarshal data: %w", err)
	}
	if err := primarySchema.Validate(v); err != nil {
		return fmt.Errorf("json does not match schema: %w", err)
	}
	return nil
}
