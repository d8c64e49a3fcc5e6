package statusemail

import "complaint-portal/internal/common/validation"

func GetInputSchema() validation.JSONSchema {
	return validation.JSONSchema{
		Type:     "object",
		Required: []string{"recipientEmail", "complaintType", "studentName", "status", "complaintId"},
		Properties: map[string]validation.Property{
			"recipientEmail": {
				Type:      "string",
				Format:    "email",
				MaxLength: validation.IntPtr(255),
			},
			"complaintType": {
				Type:        "string",
				Description: "Display label, e.g. Lab or ICC",
				MinLength:   validation.IntPtr(1),
				MaxLength:   validation.IntPtr(50),
			},
			"studentName": {
				Type:      "string",
				MinLength: validation.IntPtr(1),
				MaxLength: validation.IntPtr(200),
			},
			"status": {
				Type:      "string",
				MinLength: validation.IntPtr(1),
				MaxLength: validation.IntPtr(50),
			},
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
		Required: []string{"sent"},
		Properties: map[string]validation.Property{
			"sent":         {Type: "boolean"},
			"errorCode":    {Type: "string", Enum: []string{"CONFIGURATION_MISSING", "DELIVERY_FAILURE"}},
			"errorDetails": {Type: "string"},
			"sentAt":       {Type: "string"},
		},
		AdditionalProperties: false,
	}
}
