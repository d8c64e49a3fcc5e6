package complaintupdatestatus

type Input struct {
	ComplaintID string `json:"complaintId"`
	Status      string `json:"status"`
}

// Output reports the persisted status. The notification fields are
// informational: a failed email never fails the job.
type Output struct {
	ComplaintID              string `json:"complaintId"`
	Status                   string `json:"status"`
	NotificationSent         bool   `json:"notificationSent"`
	NotificationErrorCode    string `json:"notificationErrorCode,omitempty"`
	NotificationErrorDetails string `json:"notificationError,omitempty"`
}
