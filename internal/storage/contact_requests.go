package storage

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"gorm.io/gorm"

	"github.com/MarkoPoloResearchLab/aquabrain/internal/model"
)

const (
	defaultContactRequestListLimit = 50
	maximumContactRequestListLimit = 500
)

var (
	// ErrNilContactRequest indicates a create call without a record.
	ErrNilContactRequest = errors.New("storage: nil contact request")
	// ErrContactRequestNotFound indicates no contact request matched the identifier.
	ErrContactRequestNotFound = errors.New("storage: contact request not found")
	// ErrUnknownNotificationStatus indicates a status outside the recorded notification states.
	ErrUnknownNotificationStatus = errors.New("storage: unknown notification status")
)

// ContactRequestListFilter narrows ListContactRequests results.
type ContactRequestListFilter struct {
	Status string
	Limit  int
	// SubmittedBefore, when set, keeps only requests submitted strictly earlier.
	SubmittedBefore time.Time
}

// ContactRequestStore persists contact requests through gorm.
type ContactRequestStore struct {
	database *gorm.DB
}

// NewContactRequestStore constructs a store backed by database.
func NewContactRequestStore(database *gorm.DB) *ContactRequestStore {
	return &ContactRequestStore{database: database}
}

// CreateContactRequest inserts request, assigning an identifier and a pending notification status when absent.
func (store *ContactRequestStore) CreateContactRequest(ctx context.Context, request *model.ContactRequest) error {
	if request == nil {
		return ErrNilContactRequest
	}
	if strings.TrimSpace(request.ID) == "" {
		request.ID = NewID()
	}
	if strings.TrimSpace(request.NotificationStatus) == "" {
		request.NotificationStatus = model.NotificationStatusPending
	}
	if createErr := store.database.WithContext(ctx).Create(request).Error; createErr != nil {
		return fmt.Errorf("storage: create contact request: %w", createErr)
	}
	return nil
}

// UpdateNotificationStatus records the outcome of the notification dispatch for a stored request.
func (store *ContactRequestStore) UpdateNotificationStatus(ctx context.Context, requestID string, status string) error {
	normalizedStatus := strings.TrimSpace(status)
	if !model.IsKnownNotificationStatus(normalizedStatus) {
		return fmt.Errorf("%w: %q", ErrUnknownNotificationStatus, status)
	}
	result := store.database.WithContext(ctx).
		Model(&model.ContactRequest{}).
		Where("id = ?", strings.TrimSpace(requestID)).
		Update("notification_status", normalizedStatus)
	if result.Error != nil {
		return fmt.Errorf("storage: update notification status: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return ErrContactRequestNotFound
	}
	return nil
}

// ListContactRequests returns stored requests, newest first.
func (store *ContactRequestStore) ListContactRequests(ctx context.Context, filter ContactRequestListFilter) ([]model.ContactRequest, error) {
	limit := filter.Limit
	if limit <= 0 {
		limit = defaultContactRequestListLimit
	}
	if limit > maximumContactRequestListLimit {
		limit = maximumContactRequestListLimit
	}

	query := store.database.WithContext(ctx).Order("submitted_at DESC").Limit(limit)
	normalizedStatus := strings.TrimSpace(filter.Status)
	if normalizedStatus != "" {
		if !model.IsKnownNotificationStatus(normalizedStatus) {
			return nil, fmt.Errorf("%w: %q", ErrUnknownNotificationStatus, filter.Status)
		}
		query = query.Where("notification_status = ?", normalizedStatus)
	}
	if !filter.SubmittedBefore.IsZero() {
		query = query.Where("submitted_at < ?", filter.SubmittedBefore)
	}

	var requests []model.ContactRequest
	if findErr := query.Find(&requests).Error; findErr != nil {
		return nil, fmt.Errorf("storage: list contact requests: %w", findErr)
	}
	return requests, nil
}
