package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCategory(t *testing.T) {
	assert.Equal(t, "Lab", CategoryLab.Label())
	assert.Equal(t, "ICC", CategoryICC.Label())
	assert.Equal(t, "hostel", Category("hostel").Label())

	assert.True(t, CategoryLab.Valid())
	assert.False(t, Category("hostel").Valid())
}

func TestStatusValid(t *testing.T) {
	for _, s := range Statuses {
		assert.True(t, s.Valid(), s)
	}
	assert.False(t, Status("closed").Valid())
	assert.False(t, Status("").Valid())
}

func TestNewStatusNotification(t *testing.T) {
	c := &Complaint{
		ID:       "c-42",
		Category: CategoryICC,
		Name:     "Alice",
		Email:    "alice@school.edu",
		Status:   StatusInProgress,
	}

	assert.Equal(t, NotificationRequest{
		RecipientEmail: "alice@school.edu",
		ComplaintType:  "ICC",
		StudentName:    "Alice",
		Status:         "in_progress",
		ComplaintID:    "c-42",
	}, NewStatusNotification(c))
}
