package httpapi

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/MarkoPoloResearchLab/aquabrain/internal/contact"
)

const (
	// ContactAPIRoutePath accepts contact requests from script clients.
	ContactAPIRoutePath = "/api/contact"

	errorValueRateLimited      = "rate_limited"
	errorValueInvalidJSON      = "invalid_json"
	errorValueValidationFailed = "validation_failed"
	errorValueSaveFailed       = "save_failed"
	statusValueOK              = "ok"
)

// ContactAPIHandlers submits JSON contact requests through a fresh contact.Controller per request.
type ContactAPIHandlers struct {
	logger      *zap.Logger
	persister   contact.Persister
	notifier    contact.Notifier
	rateLimiter *ipRateLimiter
}

// NewContactAPIHandlers constructs the contact JSON API. A nil notifier leaves stored requests pending.
func NewContactAPIHandlers(logger *zap.Logger, persister contact.Persister, notifier contact.Notifier) *ContactAPIHandlers {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ContactAPIHandlers{
		logger:      logger,
		persister:   persister,
		notifier:    notifier,
		rateLimiter: newIPRateLimiter(defaultRateWindow, defaultMaxRequestsPerIPPerWindow),
	}
}

func (handlers *ContactAPIHandlers) CreateContactRequest(context *gin.Context) {
	if handlers.rateLimiter.isRateLimited(context.ClientIP()) {
		context.JSON(http.StatusTooManyRequests, gin.H{jsonKeyError: errorValueRateLimited})
		return
	}

	var draft contact.Draft
	if bindErr := context.ShouldBindJSON(&draft); bindErr != nil {
		context.JSON(http.StatusBadRequest, gin.H{jsonKeyError: errorValueInvalidJSON})
		return
	}

	controller := contact.NewController(handlers.persister, handlers.notifier, handlers.logger)
	controller.SetDraft(draft)
	outcome, submitErr := controller.Submit(context.Request.Context())
	respondToSubmission(context, outcome, submitErr)
}

func respondToSubmission(context *gin.Context, outcome contact.Outcome, submitErr error) {
	var validationError *contact.ValidationError
	switch {
	case submitErr == nil:
		context.JSON(http.StatusOK, gin.H{
			"status":             statusValueOK,
			"id":                 outcome.RecordID,
			"notificationStatus": outcome.NotificationStatus,
			"notice":             outcome.Notice,
		})
	case errors.As(submitErr, &validationError):
		context.JSON(http.StatusBadRequest, gin.H{
			jsonKeyError: errorValueValidationFailed,
			"field":      validationError.Field,
			"rule":       validationError.Rule,
			"message":    validationError.Message,
		})
	default:
		context.JSON(http.StatusInternalServerError, gin.H{
			jsonKeyError: errorValueSaveFailed,
			"message":    outcome.Notice.Description,
		})
	}
}
