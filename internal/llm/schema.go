package llm

import "github.com/amolnak/GuidanceMind/constants"

// BuildGuidanceJSONSchema returns the accepted response shape as a generic map.
// Every field is optional and may hold any JSON value; only the top level must
// be an object. Objects in scalar fields are kept as compact JSON text.
func BuildGuidanceJSONSchema() map[string]any {
	scalar := map[string]any{"type": []string{"string", "number", "boolean", "null", "array", "object"}}
	props := make(map[string]any, len(constants.RequiredFields)+1)
	for _, f := range constants.RequiredFields {
		props[f] = scalar
	}
	props[constants.FieldKeyQuestions] = map[string]any{
		"type": []string{"string", "array", "object", "null"},
	}
	props[constants.FieldCentersInvolved] = map[string]any{
		"type": []string{"string", "array", "object", "null"},
	}
	return map[string]any{
		"type":       "object",
		"properties": props,
	}
}
