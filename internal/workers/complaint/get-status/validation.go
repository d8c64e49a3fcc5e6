package complaintgetstatus

import "complaint-portal/internal/common/validation"

func GetInputSchema() validation.JSONSchema {
	return validation.JSONSchema{
		Type:     "object",
		Required: []string{"complaintId"},
		Properties: map[string]validation.Property{
			"complaintId": {
				Type:      "string",
				MinLength: validation.IntPtr(1),
				MaxLength: validation.IntPtr(64),
			},
		},
		AdditionalProperties: true,
	}
}

func GetOutputSchema() validation.JSONSchema {
	return validation.JSONSchema{
		Type:     "object",
		Required: []string{"complaintId", "status"},
		Properties: map[string]validation.Property{
			"complaintId": {Type: "string"},
			"status":      {Type: "string", Enum: []string{"pending", "in_progress", "resolved"}},
		},
		AdditionalProperties: false,
	}
}
