package complaintgetstatus

type Input struct {
	ComplaintID string `json:"complaintId"`
}

type Output struct {
	ComplaintID string `json:"complaintId"`
	Status      string `json:"status"`
}
