package statusemail

import "complaint-portal/internal/models"

type Input struct {
	RecipientEmail string `json:"recipientEmail"`
	ComplaintType  string `json:"complaintType"`
	StudentName    string `json:"studentName"`
	Status         string `json:"status"`
	ComplaintID    string `json:"complaintId"`
}

func (i *Input) toRequest() models.NotificationRequest {
	return models.NotificationRequest{
		RecipientEmail: i.RecipientEmail,
		ComplaintType:  i.ComplaintType,
		StudentName:    i.StudentName,
		Status:         i.Status,
		ComplaintID:    i.ComplaintID,
	}
}

type Output struct {
	Sent         bool   `json:"sent"`
	ErrorCode    string `json:"errorCode,omitempty"`
	ErrorDetails string `json:"errorDetails,omitempty"`
	SentAt       string `json:"sentAt,omitempty"`
}
