package notifications

import (
	"context"
	"errors"
	"fmt"
	"reflect"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

const (
	defaultTeamRecipient      = "aquabrain57@gmail.com"
	defaultTeamSender         = "AQUABRAIN Contact <onboarding@resend.dev>"
	defaultConfirmationSender = "AQUABRAIN <onboarding@resend.dev>"
	defaultSendTimeout        = 15 * time.Second

	teamSubjectPrefix          = "[Contact] "
	confirmationSubjectPattern = "Nous avons bien reçu votre message - %s"

	emailTagTeamNotification    = "contact-team"
	emailTagVisitorConfirmation = "contact-confirmation"
)

var (
	// ErrProviderNotConfigured indicates dispatch was attempted without an email provider credential.
	ErrProviderNotConfigured = errors.New("notifications: email provider not configured")
	// ErrInvalidPayload indicates the payload is missing a required field.
	ErrInvalidPayload = errors.New("notifications: invalid contact payload")
)

// DispatcherConfig configures recipients, senders and branding of the two emails.
type DispatcherConfig struct {
	TeamRecipient      string
	TeamSender         string
	ConfirmationSender string
	CredentialKey      string
	SendTimeout        time.Duration
	Branding           Branding
}

// DefaultBranding returns the company details used when none are configured.
func DefaultBranding() Branding {
	return Branding{
		Name:         "AQUABRAIN",
		Tagline:      "Expert en Aquaculture",
		Location:     "Lomé, Togo",
		SupportEmail: defaultTeamRecipient,
		SupportPhone: "+228 79 68 79 66",
	}
}

// Dispatcher turns one contact payload into a team notification and a visitor confirmation.
// It holds no per-request state and is safe for concurrent use.
type Dispatcher struct {
	logger   *zap.Logger
	provider EmailProvider
	config   DispatcherConfig
	validate *validator.Validate
}

// NewDispatcher constructs a Dispatcher. A nil provider makes every dispatch fail with ErrProviderNotConfigured.
func NewDispatcher(logger *zap.Logger, provider EmailProvider, config DispatcherConfig) *Dispatcher {
	if logger == nil {
		logger = zap.NewNop()
	}
	if strings.TrimSpace(config.TeamRecipient) == "" {
		config.TeamRecipient = defaultTeamRecipient
	}
	if strings.TrimSpace(config.TeamSender) == "" {
		config.TeamSender = defaultTeamSender
	}
	if strings.TrimSpace(config.ConfirmationSender) == "" {
		config.ConfirmationSender = defaultConfirmationSender
	}
	if strings.TrimSpace(config.CredentialKey) == "" {
		config.CredentialKey = CredentialKeyResend
	}
	if config.SendTimeout <= 0 {
		config.SendTimeout = defaultSendTimeout
	}
	if strings.TrimSpace(config.Branding.Name) == "" {
		config.Branding = DefaultBranding()
	}

	validate := validator.New()
	validate.RegisterTagNameFunc(func(field reflect.StructField) string {
		name, _, _ := strings.Cut(field.Tag.Get("json"), ",")
		if name == "" || name == "-" {
			return field.Name
		}
		return name
	})

	return &Dispatcher{
		logger:   logger,
		provider: provider,
		config:   config,
		validate: validate,
	}
}

// Ready reports whether an email provider is configured.
func (dispatcher *Dispatcher) Ready() bool {
	return dispatcher != nil && dispatcher.provider != nil
}

// Dispatch validates payload, renders both emails and sends them concurrently.
// Preconditions fail before any send. Once sending starts, per-send failures are reported in their slot
// and never prevent the other send.
func (dispatcher *Dispatcher) Dispatch(ctx context.Context, payload ContactPayload) (DispatchResult, error) {
	if !dispatcher.Ready() {
		credentialKey := CredentialKeyResend
		if dispatcher != nil {
			credentialKey = dispatcher.config.CredentialKey
		}
		return DispatchResult{}, fmt.Errorf("%w: %s is not configured", ErrProviderNotConfigured, credentialKey)
	}

	normalized := payload.Normalized()
	if validationErr := dispatcher.validatePayload(normalized); validationErr != nil {
		return DispatchResult{}, validationErr
	}

	teamHTML, teamRenderErr := RenderTeamNotification(normalized)
	if teamRenderErr != nil {
		return DispatchResult{}, teamRenderErr
	}
	confirmationHTML, confirmationRenderErr := RenderVisitorConfirmation(normalized, dispatcher.config.Branding)
	if confirmationRenderErr != nil {
		return DispatchResult{}, confirmationRenderErr
	}

	dispatcher.logger.Info("contact_notification_dispatch",
		zap.String("name", normalized.Name),
		zap.String("email", normalized.Email),
		zap.String("subject", normalized.Subject),
	)

	teamMessage := EmailMessage{
		From:    dispatcher.config.TeamSender,
		To:      []string{dispatcher.config.TeamRecipient},
		Subject: teamSubjectPrefix + normalized.Subject,
		HTML:    teamHTML,
		Tag:     emailTagTeamNotification,
	}
	confirmationMessage := EmailMessage{
		From:    dispatcher.config.ConfirmationSender,
		To:      []string{normalized.Email},
		Subject: fmt.Sprintf(confirmationSubjectPattern, dispatcher.config.Branding.Name),
		HTML:    confirmationHTML,
		Tag:     emailTagVisitorConfirmation,
	}

	var teamOutcome, confirmationOutcome EmailOutcome
	var sends errgroup.Group
	sends.Go(func() error {
		teamOutcome = dispatcher.send(ctx, teamMessage)
		return nil
	})
	sends.Go(func() error {
		confirmationOutcome = dispatcher.send(ctx, confirmationMessage)
		return nil
	})
	_ = sends.Wait()

	return DispatchResult{
		Success:           true,
		TeamEmail:         teamOutcome,
		ConfirmationEmail: confirmationOutcome,
	}, nil
}

func (dispatcher *Dispatcher) send(ctx context.Context, message EmailMessage) (outcome EmailOutcome) {
	defer func() {
		if recovered := recover(); recovered != nil {
			dispatcher.logger.Error("contact_email_panic", zap.String("tag", message.Tag), zap.Any("panic", recovered))
			outcome = failedOutcome(fmt.Sprintf("provider panic: %v", recovered))
		}
	}()

	sendCtx, cancel := context.WithTimeout(ctx, dispatcher.config.SendTimeout)
	defer cancel()

	identifier, sendErr := dispatcher.provider.SendEmail(sendCtx, message)
	if sendErr != nil {
		dispatcher.logger.Warn("contact_email_failed", zap.String("tag", message.Tag), zap.Error(sendErr))
		return failedOutcome(sendErr.Error())
	}
	dispatcher.logger.Info("contact_email_sent", zap.String("tag", message.Tag), zap.String("email_id", identifier))
	return succeededOutcome(identifier)
}

func (dispatcher *Dispatcher) validatePayload(payload ContactPayload) error {
	validationErr := dispatcher.validate.Struct(payload)
	if validationErr == nil {
		return nil
	}
	var fieldErrors validator.ValidationErrors
	if errors.As(validationErr, &fieldErrors) && len(fieldErrors) > 0 {
		return fmt.Errorf("%w: missing required field %s", ErrInvalidPayload, fieldErrors[0].Field())
	}
	return fmt.Errorf("%w: %w", ErrInvalidPayload, validationErr)
}
