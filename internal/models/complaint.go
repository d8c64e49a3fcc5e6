package models

import "time"

// Category identifies which admin desk owns a complaint.
type Category string

const (
	CategoryLab Category = "lab"
	CategoryICC Category = "icc"
)

// Label is the human-readable name used in notification subjects.
func (c Category) Label() string {
	switch c {
	case CategoryLab:
		return "Lab"
	case CategoryICC:
		return "ICC"
	default:
		return string(c)
	}
}

func (c Category) Valid() bool {
	return c == CategoryLab || c == CategoryICC
}

// Status is the lifecycle state of a complaint.
type Status string

const (
	StatusPending    Status = "pending"
	StatusInProgress Status = "in_progress"
	StatusResolved   Status = "resolved"
)

// Statuses lists every accepted status in lifecycle order.
var Statuses = []Status{StatusPending, StatusInProgress, StatusResolved}

func (s Status) Valid() bool {
	for _, known := range Statuses {
		if s == known {
			return true
		}
	}
	return false
}

type Complaint struct {
	ID          string    `json:"id"`
	Category    Category  `json:"category"`
	Name        string    `json:"name"`
	RollNumber  string    `json:"roll_number"`
	Stream      string    `json:"stream"`
	Phone       string    `json:"phone"`
	Email       string    `json:"email"`
	LabNumber   string    `json:"lab_number,omitempty"`
	Description string    `json:"complaint"`
	PhotoBase64 string    `json:"photo_base64,omitempty"`
	Status      Status    `json:"status"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}
