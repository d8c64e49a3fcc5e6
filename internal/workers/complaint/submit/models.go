package complaintsubmit

import "complaint-portal/internal/complaint"

// Input mirrors the student complaint form.
type Input struct {
	Category    string `json:"category"`
	Name        string `json:"name"`
	RollNumber  string `json:"roll_number"`
	Stream      string `json:"stream"`
	Phone       string `json:"phone"`
	Email       string `json:"email"`
	LabNumber   string `json:"lab_number,omitempty"`
	Complaint   string `json:"complaint"`
	PhotoBase64 string `json:"photo_base64,omitempty"`
}

func (i *Input) toSubmitInput() complaint.SubmitInput {
	return complaint.SubmitInput{
		Category:    i.Category,
		Name:        i.Name,
		RollNumber:  i.RollNumber,
		Stream:      i.Stream,
		Phone:       i.Phone,
		Email:       i.Email,
		LabNumber:   i.LabNumber,
		Description: i.Complaint,
		PhotoBase64: i.PhotoBase64,
	}
}

type Output struct {
	ComplaintID string `json:"complaintId"`
	Category    string `json:"category"`
	Status      string `json:"status"`
	CreatedAt   string `json:"createdAt"`
}
