package complaintsubmit

import "complaint-portal/internal/common/validation"

// GetInputSchema allows additional properties: Zeebe hands the worker every
// process variable in scope, not only the form fields.
func GetInputSchema() validation.JSONSchema {
	return validation.JSONSchema{
		Type:     "object",
		Required: []string{"category", "name", "roll_number", "stream", "phone", "email", "complaint"},
		Properties: map[string]validation.Property{
			"category": {
				Type: "string",
				Enum: []string{"lab", "icc"},
			},
			"name": {
				Type:      "string",
				MinLength: validation.IntPtr(1),
				MaxLength: validation.IntPtr(200),
			},
			"roll_number": {
				Type:      "string",
				MinLength: validation.IntPtr(1),
				MaxLength: validation.IntPtr(50),
			},
			"stream": {
				Type:      "string",
				MinLength: validation.IntPtr(1),
				MaxLength: validation.IntPtr(100),
			},
			"phone": {
				Type:      "string",
				MinLength: validation.IntPtr(10),
				MaxLength: validation.IntPtr(20),
			},
			"email": {
				Type:      "string",
				Format:    "email",
				MaxLength: validation.IntPtr(255),
			},
			"lab_number": {
				Type:      "string",
				MaxLength: validation.IntPtr(50),
			},
			"complaint": {
				Type:        "string",
				Description: "Free text description of the problem",
				MinLength:   validation.IntPtr(10),
				MaxLength:   validation.IntPtr(5000),
			},
			"photo_base64": {
				Type:        "string",
				Description: "Optional photo for lab complaints",
			},
		},
		AdditionalProperties: true,
	}
}

func GetOutputSchema() validation.JSONSchema {
	return validation.JSONSchema{
		Type:     "object",
		Required: []string{"complaintId", "category", "status", "createdAt"},
		Properties: map[string]validation.Property{
			"complaintId": {Type: "string"},
			"category":    {Type: "string", Enum: []string{"lab", "icc"}},
			"status":      {Type: "string", Enum: []string{"pending"}},
			"createdAt":   {Type: "string"},
		},
		AdditionalProperties: false,
	}
}
