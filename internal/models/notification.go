package models

// NotificationRequest carries everything needed to tell a student their
// complaint changed status. It is transient and never persisted.
type NotificationRequest struct {
	RecipientEmail string `json:"recipientEmail"`
	ComplaintType  string `json:"complaintType"`
	StudentName    string `json:"studentName"`
	Status         string `json:"status"`
	ComplaintID    string `json:"complaintId"`
}

// NewStatusNotification builds the request for a complaint's current status.
func NewStatusNotification(c *Complaint) NotificationRequest {
	return NotificationRequest{
		RecipientEmail: c.Email,
		ComplaintType:  c.Category.Label(),
		StudentName:    c.Name,
		Status:         string(c.Status),
		ComplaintID:    c.ID,
	}
}
