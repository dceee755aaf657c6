package httpapi

import (
	"net/http"
	"strings"
	"unicode/utf8"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/MarkoPoloResearchLab/aquabrain/internal/chat"
)

const (
	ChatAPIRoutePath      = "/api/chat"
	ChatWhatsAppRoutePath = "/chat/whatsapp"

	chatQueryText                 = "text"
	errorValueMissingMessage      = "missing_message"
	errorValueMessageTooLong      = "message_too_long"
	errorValueWhatsAppUnavailable = "whatsapp_unavailable"
	chatRateWindowMultiplier      = 5
)

// ChatResponder answers one widget message.
type ChatResponder interface {
	Reply(message string) chat.Reply
}

type chatRequest struct {
	Message string `json:"message"`
}

// ChatHandlers serves the simulated chat widget.
type ChatHandlers struct {
	logger      *zap.Logger
	responder   ChatResponder
	links       chat.LinkBuilder
	rateLimiter *ipRateLimiter
}

// NewChatHandlers constructs chat widget handlers.
func NewChatHandlers(logger *zap.Logger, responder ChatResponder, links chat.LinkBuilder) *ChatHandlers {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ChatHandlers{
		logger:      logger,
		responder:   responder,
		links:       links,
		rateLimiter: newIPRateLimiter(defaultRateWindow, defaultMaxRequestsPerIPPerWindow*chatRateWindowMultiplier),
	}
}

// Reply answers {"message": ...} with {"reply", "whatsappUrl", "matched"}.
func (handlers *ChatHandlers) Reply(context *gin.Context) {
	if handlers.rateLimiter.isRateLimited(context.ClientIP()) {
		context.JSON(http.StatusTooManyRequests, gin.H{jsonKeyError: errorValueRateLimited})
		return
	}

	var request chatRequest
	if bindErr := context.ShouldBindJSON(&request); bindErr != nil {
		context.JSON(http.StatusBadRequest, gin.H{jsonKeyError: errorValueInvalidJSON})
		return
	}
	message := strings.TrimSpace(request.Message)
	if message == "" {
		context.JSON(http.StatusBadRequest, gin.H{jsonKeyError: errorValueMissingMessage})
		return
	}
	if utf8.RuneCountInString(message) > chat.MessageMaxLength {
		context.JSON(http.StatusBadRequest, gin.H{jsonKeyError: errorValueMessageTooLong})
		return
	}

	reply := handlers.responder.Reply(message)
	handlers.logger.Debug("chat_reply", zap.Bool("matched", reply.Matched))
	context.JSON(http.StatusOK, reply)
}

// RedirectToWhatsApp sends the visitor to the WhatsApp conversation, prefilled with the optional text query.
func (handlers *ChatHandlers) RedirectToWhatsApp(context *gin.Context) {
	var target string
	if handlers.links != nil {
		target = handlers.links.WhatsAppURL(context.Query(chatQueryText))
	}
	if target == "" {
		context.JSON(http.StatusNotFound, gin.H{jsonKeyError: errorValueWhatsAppUnavailable})
		return
	}
	context.Redirect(http.StatusFound, target)
}
