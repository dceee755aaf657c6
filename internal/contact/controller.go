package contact

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"go.uber.org/zap"

	"github.com/MarkoPoloResearchLab/aquabrain/internal/model"
)

var (
	// ErrSubmissionInProgress is returned when Submit is called while an earlier submission is pending.
	ErrSubmissionInProgress = errors.New("contact: submission in progress")
	// ErrPersistFailed wraps failures of the persistence collaborator.
	ErrPersistFailed = errors.New("contact: persist contact request")
)

// Persister stores contact requests and records their notification outcome.
type Persister interface {
	CreateContactRequest(ctx context.Context, request *model.ContactRequest) error
	UpdateNotificationStatus(ctx context.Context, requestID string, status string) error
}

// Notifier dispatches the notification emails for a persisted contact request and reports the delivery status.
type Notifier interface {
	NotifyContactRequest(ctx context.Context, request model.ContactRequest) (string, error)
}

// Outcome describes a completed submission.
type Outcome struct {
	Notice             Notice
	RecordID           string
	NotificationStatus string
}

// Option customizes a Controller.
type Option func(*Controller)

// WithClock overrides the time source used for SubmittedAt.
func WithClock(now func() time.Time) Option {
	return func(controller *Controller) {
		if now != nil {
			controller.now = now
		}
	}
}

// Controller owns one contact draft and drives it through validation, persistence and notification.
// At most one submission runs at a time.
type Controller struct {
	persister  Persister
	notifier   Notifier
	logger     *zap.Logger
	now        func() time.Time
	draftMutex sync.Mutex
	draft      Draft
	submitting atomic.Bool
}

// NewController constructs a Controller with an empty draft.
func NewController(persister Persister, notifier Notifier, logger *zap.Logger, options ...Option) *Controller {
	if logger == nil {
		logger = zap.NewNop()
	}
	controller := &Controller{
		persister: persister,
		notifier:  notifier,
		logger:    logger,
		now:       time.Now,
	}
	for _, option := range options {
		option(controller)
	}
	return controller
}

// UpdateField sets one attribute of the draft.
func (controller *Controller) UpdateField(field Field, value string) {
	controller.draftMutex.Lock()
	defer controller.draftMutex.Unlock()
	controller.draft.set(field, value)
}

// SetDraft replaces the whole draft.
func (controller *Controller) SetDraft(draft Draft) {
	controller.draftMutex.Lock()
	defer controller.draftMutex.Unlock()
	controller.draft = draft
}

// Draft returns a snapshot of the current draft.
func (controller *Controller) Draft() Draft {
	controller.draftMutex.Lock()
	defer controller.draftMutex.Unlock()
	return controller.draft
}

// Submitting reports whether a submission is pending.
func (controller *Controller) Submitting() bool {
	return controller.submitting.Load()
}

// Submit validates the draft, persists it, then notifies. The draft is cleared only after a successful persist.
// Notification failures are logged and recorded on the stored request but never fail the submission.
func (controller *Controller) Submit(ctx context.Context) (Outcome, error) {
	if !controller.submitting.CompareAndSwap(false, true) {
		return Outcome{}, ErrSubmissionInProgress
	}
	defer controller.submitting.Store(false)

	draft := controller.Draft().Normalized()
	if validationErr := Validate(draft); validationErr != nil {
		var fieldErr *ValidationError
		if errors.As(validationErr, &fieldErr) {
			return Outcome{Notice: validationNotice(fieldErr)}, validationErr
		}
		return Outcome{Notice: failureNotice()}, validationErr
	}

	record := model.ContactRequest{
		Name:               draft.Name,
		Email:              draft.Email,
		Phone:              draft.Phone,
		Objective:          draft.Objective,
		Subject:            draft.Subject,
		Message:            draft.Message,
		SubmittedAt:        controller.now().UTC(),
		NotificationStatus: model.NotificationStatusPending,
	}
	if controller.persister == nil {
		return Outcome{Notice: failureNotice()}, fmt.Errorf("%w: no persister configured", ErrPersistFailed)
	}
	if persistErr := controller.persister.CreateContactRequest(ctx, &record); persistErr != nil {
		controller.logger.Warn("save_contact_request", zap.Error(persistErr))
		return Outcome{Notice: failureNotice()}, fmt.Errorf("%w: %w", ErrPersistFailed, persistErr)
	}

	notificationStatus := controller.notify(ctx, record)
	controller.clearDraft(draft)

	return Outcome{
		Notice:             successNotice(),
		RecordID:           record.ID,
		NotificationStatus: notificationStatus,
	}, nil
}

// notify runs once the record is committed. The caller's cancellation is detached so a dropped
// connection cannot abort the dispatch or leave the stored status pending; per-send timeouts still apply.
func (controller *Controller) notify(requestCtx context.Context, record model.ContactRequest) string {
	ctx := context.WithoutCancel(requestCtx)
	if controller.notifier == nil {
		controller.logger.Warn("contact_notification_skipped", zap.String("contact_request_id", record.ID))
		return model.NotificationStatusPending
	}

	status, notifyErr := controller.notifier.NotifyContactRequest(ctx, record)
	if notifyErr != nil {
		controller.logger.Warn("contact_notification_failed", zap.Error(notifyErr), zap.String("contact_request_id", record.ID))
	}
	if !model.IsKnownNotificationStatus(status) || status == model.NotificationStatusPending {
		status = model.NotificationStatusFailed
	}

	if updateErr := controller.persister.UpdateNotificationStatus(ctx, record.ID, status); updateErr != nil {
		controller.logger.Warn("update_contact_notification_status", zap.Error(updateErr), zap.String("contact_request_id", record.ID))
	}
	return status
}

// clearDraft resets the draft unless it was edited after the submitted snapshot was taken.
func (controller *Controller) clearDraft(submitted Draft) {
	controller.draftMutex.Lock()
	defer controller.draftMutex.Unlock()
	if controller.draft.Normalized() == submitted {
		controller.draft = Draft{}
	}
}
