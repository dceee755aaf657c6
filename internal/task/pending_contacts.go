package task

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/MarkoPoloResearchLab/aquabrain/internal/model"
	"github.com/MarkoPoloResearchLab/aquabrain/internal/storage"
)

const (
	// PendingContactJobName labels the pending contact check in logs.
	PendingContactJobName = "pending_contact_check"

	defaultPendingContactAge = 10 * time.Minute
	pendingContactCheckLimit = 100
	logEventContactPending   = "contact_notification_pending"
	logFieldContactRequestID = "contact_request_id"
	logFieldSubmittedAt      = "submitted_at"
	logFieldEmail            = "email"
	logFieldSubject          = "subject"
)

// ContactRequestLister reads stored contact requests.
type ContactRequestLister interface {
	ListContactRequests(ctx context.Context, filter storage.ContactRequestListFilter) ([]model.ContactRequest, error)
}

// PendingContactMonitor reports contact requests whose notification never completed,
// which happens when the process stops between persisting a request and notifying about it.
// It only reports; nothing is resent automatically.
type PendingContactMonitor struct {
	lister     ContactRequestLister
	logger     *zap.Logger
	staleAfter time.Duration
	now        func() time.Time
}

func NewPendingContactMonitor(logger *zap.Logger, lister ContactRequestLister, staleAfter time.Duration) *PendingContactMonitor {
	if logger == nil {
		logger = zap.NewNop()
	}
	if staleAfter <= 0 {
		staleAfter = defaultPendingContactAge
	}
	return &PendingContactMonitor{
		lister:     lister,
		logger:     logger,
		staleAfter: staleAfter,
		now:        time.Now,
	}
}

// StalePending returns pending requests submitted longer ago than the monitor's threshold, newest first.
func (monitor *PendingContactMonitor) StalePending(ctx context.Context) ([]model.ContactRequest, error) {
	return monitor.lister.ListContactRequests(ctx, storage.ContactRequestListFilter{
		Status:          model.NotificationStatusPending,
		Limit:           pendingContactCheckLimit,
		SubmittedBefore: monitor.now().Add(-monitor.staleAfter),
	})
}

// Run logs one warning per stale pending request.
func (monitor *PendingContactMonitor) Run(ctx context.Context) error {
	requests, listErr := monitor.StalePending(ctx)
	if listErr != nil {
		return listErr
	}
	for _, request := range requests {
		monitor.logger.Warn(logEventContactPending,
			zap.String(logFieldContactRequestID, request.ID),
			zap.Time(logFieldSubmittedAt, request.SubmittedAt),
			zap.String(logFieldEmail, request.Email),
			zap.String(logFieldSubject, request.Subject),
		)
	}
	return nil
}
