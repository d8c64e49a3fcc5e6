package complaintlist

import (
	"time"

	"complaint-portal/internal/models"
)

// Input filters by desk. An empty category lists every complaint.
type Input struct {
	Category string `json:"category,omitempty"`
}

// Summary is one dashboard row. The photo itself stays in the database;
// HasPhoto tells the dashboard whether to fetch it.
type Summary struct {
	ID         string `json:"id"`
	Category   string `json:"category"`
	Name       string `json:"name"`
	RollNumber string `json:"rollNumber"`
	Stream     string `json:"stream"`
	Phone      string `json:"phone"`
	Email      string `json:"email"`
	LabNumber  string `json:"labNumber,omitempty"`
	Complaint  string `json:"complaint"`
	HasPhoto   bool   `json:"hasPhoto"`
	Status     string `json:"status"`
	CreatedAt  string `json:"createdAt"`
	UpdatedAt  string `json:"updatedAt"`
}

func toSummary(c *models.Complaint) Summary {
	return Summary{
		ID:         c.ID,
		Category:   string(c.Category),
		Name:       c.Name,
		RollNumber: c.RollNumber,
		Stream:     c.Stream,
		Phone:      c.Phone,
		Email:      c.Email,
		LabNumber:  c.LabNumber,
		Complaint:  c.Description,
		HasPhoto:   c.PhotoBase64 != "",
		Status:     string(c.Status),
		CreatedAt:  c.CreatedAt.Format(time.RFC3339),
		UpdatedAt:  c.UpdatedAt.Format(time.RFC3339),
	}
}

type Output struct {
	Complaints []Summary `json:"complaints"`
	Count      int       `json:"count"`
}
