package httpapi

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/MarkoPoloResearchLab/aquabrain/internal/notifications"
)

const (
	// DispatchRoutePath is the public path of the notification dispatcher endpoint.
	DispatchRoutePath = "/functions/v1/send-contact-notification"

	dispatchAllowOriginValue  = "*"
	dispatchAllowHeadersValue = "authorization, x-client-info, apikey, content-type"
	headerAllowOrigin         = "Access-Control-Allow-Origin"
	headerAllowHeaders        = "Access-Control-Allow-Headers"
	errorMessageInvalidJSON   = "invalid JSON body"

	logEventDispatchFailed   = "contact_dispatch_failed"
	logEventDispatchRejected = "contact_dispatch_rejected"
)

var dispatchCORSAllowedHeaders = []string{"authorization", "x-client-info", "apikey", "content-type"}

// ContactDispatcher sends the team notification and visitor confirmation for one payload.
type ContactDispatcher interface {
	Dispatch(ctx context.Context, payload notifications.ContactPayload) (notifications.DispatchResult, error)
}

// DispatchHandlers exposes the dispatcher as a stateless HTTP function.
type DispatchHandlers struct {
	logger     *zap.Logger
	dispatcher ContactDispatcher
}

// NewDispatchHandlers constructs dispatcher endpoint handlers.
func NewDispatchHandlers(logger *zap.Logger, dispatcher ContactDispatcher) *DispatchHandlers {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &DispatchHandlers{logger: logger, dispatcher: dispatcher}
}

// DispatchCORS allows browser calls from any origin with the headers sent by hosted-function clients.
func DispatchCORS() gin.HandlerFunc {
	return cors.New(cors.Config{
		AllowAllOrigins:  true,
		AllowMethods:     []string{http.MethodPost, http.MethodOptions},
		AllowHeaders:     dispatchCORSAllowedHeaders,
		AllowCredentials: false,
		MaxAge:           12 * time.Hour,
	})
}

// Preflight answers OPTIONS requests that carry no Origin header and therefore bypass DispatchCORS.
func (handlers *DispatchHandlers) Preflight(context *gin.Context) {
	setDispatchCORSHeaders(context)
	context.Status(http.StatusOK)
}

// SendContactNotification decodes a contact payload and runs one dispatch.
// Precondition failures answer 500 with {"error": message}; a completed attempt answers 200 with both slots.
func (handlers *DispatchHandlers) SendContactNotification(context *gin.Context) {
	setDispatchCORSHeaders(context)

	var payload notifications.ContactPayload
	if bindErr := context.ShouldBindJSON(&payload); bindErr != nil {
		handlers.logger.Warn(logEventDispatchRejected, zap.Error(bindErr))
		context.JSON(http.StatusInternalServerError, gin.H{jsonKeyError: errorMessageInvalidJSON})
		return
	}

	if handlers.dispatcher == nil {
		context.JSON(http.StatusInternalServerError, gin.H{jsonKeyError: notifications.ErrProviderNotConfigured.Error()})
		return
	}

	result, dispatchErr := handlers.dispatcher.Dispatch(context.Request.Context(), payload)
	if dispatchErr != nil {
		logEvent := logEventDispatchFailed
		if errors.Is(dispatchErr, notifications.ErrInvalidPayload) {
			logEvent = logEventDispatchRejected
		}
		handlers.logger.Warn(logEvent, zap.Error(dispatchErr))
		context.JSON(http.StatusInternalServerError, gin.H{jsonKeyError: dispatchErr.Error()})
		return
	}

	context.JSON(http.StatusOK, result)
}

func setDispatchCORSHeaders(context *gin.Context) {
	context.Header(headerAllowOrigin, dispatchAllowOriginValue)
	context.Header(headerAllowHeaders, dispatchAllowHeadersValue)
}
