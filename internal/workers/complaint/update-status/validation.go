package complaintupdatestatus

import "complaint-portal/internal/common/validation"

func GetInputSchema() validation.JSONSchema {
	return validation.JSONSchema{
		Type:     "object",
		Required: []string{"complaintId", "status"},
		Properties: map[string]validation.Property{
			"complaintId": {
				Type:      "string",
				MinLength: validation.IntPtr(1),
				MaxLength: validation.IntPtr(64),
			},
			"status": {
				Type:        "string",
				Description: "Target status; case-insensitive",
				Pattern:     validation.StringPtr(`^(?i)(pending|in_progress|resolved)$`),
			},
		},
		AdditionalProperties: true,
	}
}

func GetOutputSchema() validation.JSONSchema {
	return validation.JSONSchema{
		Type:     "object",
		Required: []string{"complaintId", "status", "notificationSent"},
		Properties: map[string]validation.Property{
			"complaintId":           {Type: "string"},
			"status":                {Type: "string", Enum: []string{"pending", "in_progress", "resolved"}},
			"notificationSent":      {Type: "boolean"},
			"notificationErrorCode": {Type: "string", Enum: []string{"CONFIGURATION_MISSING", "DELIVERY_FAILURE"}},
			"notificationError":     {Type: "string"},
		},
		AdditionalProperties: false,
	}
}
