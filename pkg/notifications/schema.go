package notifications

import (
	"fmt"
	"strings"

	"github.com/xeipuuv/gojsonschema"
)

const payloadSchema = `{
  "$schema": "http://json-schema.org/draft-07/schema#",
  "type": "object",
  "additionalProperties": false,
  "required": ["username", "channel", "blocks"],
  "properties": {
    "username": {"type": "string", "minLength": 1},
    "channel": {"type": "string"},
    "blocks": {
      "type": "array",
      "minItems": 2,
      "items": {
        "type": "object",
        "additionalProperties": false,
        "required": ["type"],
        "properties": {
          "type": {"const": "section"},
          "text": {"$ref": "#/definitions/text"},
          "fields": {
            "type": "array",
            "minItems": 1,
            "items": {"$ref": "#/definitions/text"}
          }
        },
        "oneOf": [
          {"required": ["text"]},
          {"required": ["fields"]}
        ]
      }
    }
  },
  "definitions": {
    "text": {
      "type": "object",
      "additionalProperties": false,
      "required": ["type", "text"],
      "properties": {
        "type": {"const": "mrkdwn"},
        "text": {"type": "string"}
      }
    }
  }
}`

// Validate checks a webhook payload against the message wire format.
func Validate(payload []byte) error {
	schemaLoader := gojsonschema.NewStringLoader(payloadSchema)
	documentLoader := gojsonschema.NewBytesLoader(payload)

	result, err := gojsonschema.Validate(schemaLoader, documentLoader)
	if err != nil {
		return fmt.Errorf("cannot validate json schema %s", err)
	}

	if !result.Valid() {
		errs := strings.Builder{}
		for _, desc := range result.Errors() {
			errs.WriteString(fmt.Sprintf("- %s\n", desc))
		}
		return fmt.Errorf("schema validation failed: \n%s", errs.String())
	}

	return nil
}
