package llm

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/generative-ai-go/genai"
)

// jsonSchema is the subset of JSON Schema that maps onto a Gemini response schema.
type jsonSchema struct {
	Type        json.RawMessage        `json:"type"`
	Description string                 `json:"description"`
	Enum        []string               `json:"enum"`
	Items       *jsonSchema            `json:"items"`
	Properties  map[string]*jsonSchema `json:"properties"`
	Required    []string               `json:"required"`
}

// ErrInvalidSchema marks a response schema that could not be converted. It is
// a local fault, raised before any request reaches the provider.
var ErrInvalidSchema = errors.New("invalid response schema")

// ToGenaiSchema converts a JSON Schema document into a Gemini response schema.
// Keywords Gemini cannot express (minItems, pattern, additionalProperties) are
// dropped here and enforced by validating the response afterwards.
func ToGenaiSchema(doc []byte) (*genai.Schema, error) {
	var root jsonSchema
	if err := json.Unmarshal(doc, &root); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidSchema, err)
	}
	schema, err := convertSchema(&root, "(root)")
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidSchema, err)
	}
	return schema, nil
}

func convertSchema(s *jsonSchema, path string) (*genai.Schema, error) {
	typeName, nullable, err := parseSchemaType(s.Type)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}

	out := &genai.Schema{
		Description: s.Description,
		Nullable:    nullable,
	}

	switch typeName {
	case "string":
		out.Type = genai.TypeString
		if len(s.Enum) > 0 {
			out.Format = "enum"
			out.Enum = s.Enum
		}
	case "number":
		out.Type = genai.TypeNumber
	case "integer":
		out.Type = genai.TypeInteger
	case "boolean":
		out.Type = genai.TypeBoolean
	case "array":
		out.Type = genai.TypeArray
		if s.Items == nil {
			return nil, fmt.Errorf("%s: array schema without items", path)
		}
		items, err := convertSchema(s.Items, path+"[]")
		if err != nil {
			return nil, err
		}
		out.Items = items
	case "object":
		out.Type = genai.TypeObject
		if len(s.Properties) > 0 {
			out.Properties = make(map[string]*genai.Schema, len(s.Properties))
			for name, prop := range s.Properties {
				converted, err := convertSchema(prop, path+"."+name)
				if err != nil {
					return nil, err
				}
				out.Properties[name] = converted
			}
		}
		out.Required = s.Required
	default:
		return nil, fmt.Errorf("%s: unsupported schema type %q", path, typeName)
	}

	return out, nil
}

// parseSchemaType accepts "type": "x" or "type": ["x", "null"].
func parseSchemaType(raw json.RawMessage) (string, bool, error) {
	if len(raw) == 0 {
		return "", false, fmt.Errorf("missing type")
	}

	var single string
	if err := json.Unmarshal(raw, &single); err == nil {
		return single, false, nil
	}

	var many []string
	if err := json.Unmarshal(raw, &many); err != nil {
		return "", false, fmt.Errorf("type must be a string or list of strings")
	}

	var typeName string
	nullable := false
	for _, t := range many {
		if t == "null" {
			nullable = true
			continue
		}
		if typeName != "" {
			return "", false, fmt.Errorf("union types are not supported: %v", many)
		}
		typeName = t
	}
	if typeName == "" {
		return "", false, fmt.Errorf("type list has no non-null member")
	}
	return typeName, nullable, nil
}
