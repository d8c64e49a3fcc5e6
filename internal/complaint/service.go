// Package complaint owns the complaint lifecycle: submission, lookup and
// status changes. A status change notifies the student on a best-effort basis.
package complaint

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"

	"complaint-portal/internal/common/errors"
	"complaint-portal/internal/common/logger"
	"complaint-portal/internal/common/metrics"
	"complaint-portal/internal/common/validation"
	"complaint-portal/internal/models"
	"complaint-portal/internal/notification"
)

const minDescriptionLength = 10

type Store interface {
	Create(ctx context.Context, c *models.Complaint) error
	GetByID(ctx context.Context, id string) (*models.Complaint, error)
	List(ctx context.Context, category models.Category) ([]*models.Complaint, error)
	UpdateStatus(ctx context.Context, id string, status models.Status, at time.Time) (*models.Complaint, error)
}

type StatusStore interface {
	Get(ctx context.Context, id string) (models.Status, bool, error)
	Set(ctx context.Context, id string, status models.Status) error
	Delete(ctx context.Context, id string) error
}

// Notifier is satisfied by *notification.Sender.
type Notifier interface {
	SendStatusUpdate(ctx context.Context, req models.NotificationRequest) notification.Result
}

type ServiceDependencies struct {
	Store    Store
	Cache    StatusStore
	Notifier Notifier
	Logger   logger.Logger
	Now      func() time.Time
}

// SubmitInput is what a student fills in on the complaint form.
type SubmitInput struct {
	Category    string `json:"category"`
	Name        string `json:"name"`
	RollNumber  string `json:"roll_number"`
	Stream      string `json:"stream"`
	Phone       string `json:"phone"`
	Email       string `json:"email"`
	LabNumber   string `json:"lab_number,omitempty"`
	Description string `json:"complaint"`
	PhotoBase64 string `json:"photo_base64,omitempty"`
}

// StatusUpdateOutcome reports a persisted status change together with what
// happened to the notification. NotificationError is nil when the email went
// out.
type StatusUpdateOutcome struct {
	Complaint         *models.Complaint
	NotificationSent  bool
	NotificationError *errors.StandardError
}

type Service struct {
	store    Store
	cache    StatusStore
	notifier Notifier
	logger   logger.Logger
	now      func() time.Time
}

func NewService(deps ServiceDependencies) *Service {
	s := &Service{
		store:    deps.Store,
		cache:    deps.Cache,
		notifier: deps.Notifier,
		logger:   deps.Logger,
		now:      deps.Now,
	}
	if s.logger == nil {
		s.logger = logger.NewNoOpLogger()
	}
	if s.now == nil {
		s.now = time.Now
	}
	return s
}

func (s *Service) Submit(ctx context.Context, in SubmitInput) (*models.Complaint, error) {
	c, err := s.buildComplaint(in)
	if err != nil {
		return nil, err
	}

	if err := s.store.Create(ctx, c); err != nil {
		s.logger.Error("Failed to store complaint", map[string]interface{}{
			"category": string(c.Category),
			"error":    err.Error(),
		})
		return nil, err
	}
	s.cacheStatus(ctx, c.ID, c.Status)

	s.logger.Info("Complaint submitted", map[string]interface{}{
		"complaintId": c.ID,
		"category":    string(c.Category),
	})
	return c, nil
}

func (s *Service) buildComplaint(in SubmitInput) (*models.Complaint, error) {
	category := models.Category(strings.ToLower(strings.TrimSpace(in.Category)))
	if !category.Valid() {
		return nil, errors.NewInvalidCategoryError(in.Category)
	}

	in.Name = strings.TrimSpace(in.Name)
	in.RollNumber = strings.TrimSpace(in.RollNumber)
	in.Stream = strings.TrimSpace(in.Stream)
	in.Phone = strings.TrimSpace(in.Phone)
	in.Email = strings.TrimSpace(in.Email)
	in.LabNumber = strings.TrimSpace(in.LabNumber)
	in.Description = strings.TrimSpace(in.Description)

	var problems []string
	required := []struct{ field, value string }{
		{"name", in.Name},
		{"roll_number", in.RollNumber},
		{"stream", in.Stream},
		{"phone", in.Phone},
		{"email", in.Email},
		{"complaint", in.Description},
	}
	for _, r := range required {
		if r.value == "" {
			problems = append(problems, r.field+" is required")
		}
	}
	if in.Email != "" && !validation.ValidateEmail(in.Email) {
		problems = append(problems, "email is not a valid address")
	}
	if in.Phone != "" && !validation.ValidatePhone(in.Phone) {
		problems = append(problems, "phone must have at least 10 digits")
	}
	if in.Description != "" && len([]rune(in.Description)) < minDescriptionLength {
		problems = append(problems, "complaint must be at least 10 characters")
	}
	if category == models.CategoryLab && in.LabNumber == "" {
		problems = append(problems, "lab_number is required for lab complaints")
	}
	if len(problems) > 0 {
		return nil, errors.NewValidationFailedError(strings.Join(problems, "; "))
	}

	// Lab number and photo only exist on the lab form.
	if category == models.CategoryICC {
		in.LabNumber = ""
		in.PhotoBase64 = ""
	}

	now := s.now().UTC()
	return &models.Complaint{
		ID:          uuid.New().String(),
		Category:    category,
		Name:        in.Name,
		RollNumber:  in.RollNumber,
		Stream:      in.Stream,
		Phone:       in.Phone,
		Email:       in.Email,
		LabNumber:   in.LabNumber,
		Description: in.Description,
		PhotoBase64: in.PhotoBase64,
		Status:      models.StatusPending,
		CreatedAt:   now,
		UpdatedAt:   now,
	}, nil
}

func (s *Service) Get(ctx context.Context, id string) (*models.Complaint, error) {
	return s.store.GetByID(ctx, id)
}

// List returns complaints newest first; an empty category means all.
func (s *Service) List(ctx context.Context, category string) ([]*models.Complaint, error) {
	cat := models.Category(strings.ToLower(category))
	if cat != "" && !cat.Valid() {
		return nil, errors.NewInvalidCategoryError(category)
	}
	return s.store.List(ctx, cat)
}

// GetStatus reads through the status cache. A broken cache degrades to a
// database read.
func (s *Service) GetStatus(ctx context.Context, id string) (models.Status, error) {
	if s.cache != nil {
		status, ok, err := s.cache.Get(ctx, id)
		switch {
		case err != nil:
			metrics.StatusCacheLookups.WithLabelValues("error").Inc()
			s.logger.Warn("Status cache read failed", map[string]interface{}{
				"complaintId": id,
				"error":       err.Error(),
			})
		case ok:
			metrics.StatusCacheLookups.WithLabelValues("hit").Inc()
			return status, nil
		default:
			metrics.StatusCacheLookups.WithLabelValues("miss").Inc()
		}
	}

	c, err := s.store.GetByID(ctx, id)
	if err != nil {
		return "", err
	}
	s.cacheStatus(ctx, c.ID, c.Status)
	return c.Status, nil
}

// UpdateStatus persists the new status and then emails the student. Only the
// persistence step can fail the call; the email outcome is reported in the
// returned StatusUpdateOutcome.
func (s *Service) UpdateStatus(ctx context.Context, id string, status string) (*StatusUpdateOutcome, error) {
	st := models.Status(strings.ToLower(strings.TrimSpace(status)))
	if !st.Valid() {
		return nil, errors.NewInvalidStatusError(status)
	}

	c, err := s.store.UpdateStatus(ctx, id, st, s.now().UTC())
	if err != nil {
		return nil, err
	}
	metrics.ComplaintStatusUpdates.WithLabelValues(string(c.Category), string(c.Status)).Inc()
	s.invalidateStatus(ctx, c.ID)

	s.logger.Info("Complaint status updated", map[string]interface{}{
		"complaintId": c.ID,
		"status":      string(c.Status),
	})

	outcome := &StatusUpdateOutcome{Complaint: c}
	if s.notifier == nil {
		return outcome, nil
	}

	result := s.notifier.SendStatusUpdate(ctx, models.NewStatusNotification(c))
	outcome.NotificationSent = result.Sent
	outcome.NotificationError = result.Err
	if !result.Sent {
		s.logger.Warn("Status updated without notification", map[string]interface{}{
			"complaintId": c.ID,
			"errorCode":   string(result.Code()),
		})
	}
	return outcome, nil
}

func (s *Service) cacheStatus(ctx context.Context, id string, status models.Status) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Set(ctx, id, status); err != nil {
		s.logger.Warn("Status cache write failed", map[string]interface{}{
			"complaintId": id,
			"error":       err.Error(),
		})
	}
}

// invalidateStatus drops the cached status so the next GetStatus reads the
// committed row.
func (s *Service) invalidateStatus(ctx context.Context, id string) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Delete(ctx, id); err != nil {
		s.logger.Warn("Status cache invalidation failed", map[string]interface{}{
			"complaintId": id,
			"error":       err.Error(),
		})
	}
}
