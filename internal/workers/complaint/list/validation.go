package complaintlist

import "complaint-portal/internal/common/validation"

func GetInputSchema() validation.JSONSchema {
	return validation.JSONSchema{
		Type: "object",
		Properties: map[string]validation.Property{
			"category": {
				Type:    "string",
				Pattern: validation.StringPtr(`^(?i)(lab|icc)?$`),
			},
		},
		AdditionalProperties: true,
	}
}

func GetOutputSchema() validation.JSONSchema {
	return validation.JSONSchema{
		Type:     "object",
		Required: []string{"complaints", "count"},
		Properties: map[string]validation.Property{
			"complaints": {
				Type: "array",
				Items: &validation.Property{
					Type:     "object",
					Required: []string{"id", "category", "status", "createdAt"},
				},
			},
			"count": {Type: "integer", Minimum: validation.FloatPtr(0)},
		},
		AdditionalProperties: false,
	}
}
