package notifications

import (
	"context"
	"errors"
	"fmt"
	"strings"
)

const (
	ProviderNameResend   = "resend"
	ProviderNamePostmark = "postmark"

	CredentialKeyResend   = "RESEND_API_KEY"
	CredentialKeyPostmark = "POSTMARK_SERVER_TOKEN"
)

var (
	// ErrMissingCredential indicates the provider API key was not supplied.
	ErrMissingCredential = errors.New("notifications: missing provider credential")
	// ErrUnsupportedProvider indicates an unknown provider name.
	ErrUnsupportedProvider = errors.New("notifications: unsupported email provider")
	// ErrProviderRejected indicates the provider answered without an identifier.
	ErrProviderRejected = errors.New("notifications: provider rejected email")
)

// EmailMessage is one outbound transactional email.
type EmailMessage struct {
	From    string
	To      []string
	Subject string
	HTML    string
	Tag     string
}

// EmailProvider sends transactional email and returns the provider-assigned identifier.
type EmailProvider interface {
	SendEmail(ctx context.Context, message EmailMessage) (string, error)
}

// ProviderConfig selects and configures an EmailProvider.
type ProviderConfig struct {
	Name                 string
	ResendAPIKey         string
	ResendBaseURL        string
	PostmarkServerToken  string
	PostmarkAccountToken string
	PostmarkBaseURL      string
}

// CredentialKey names the configuration key holding the credential of the selected provider.
func (config ProviderConfig) CredentialKey() string {
	if normalizeProviderName(config.Name) == ProviderNamePostmark {
		return CredentialKeyPostmark
	}
	return CredentialKeyResend
}

// NewEmailProvider builds the provider named in config. An empty name selects Resend.
func NewEmailProvider(config ProviderConfig) (EmailProvider, error) {
	switch normalizeProviderName(config.Name) {
	case ProviderNameResend:
		provider, providerErr := NewResendProvider(config.ResendAPIKey, config.ResendBaseURL)
		if providerErr != nil {
			return nil, providerErr
		}
		return provider, nil
	case ProviderNamePostmark:
		provider, providerErr := NewPostmarkProvider(config.PostmarkServerToken, config.PostmarkAccountToken, config.PostmarkBaseURL)
		if providerErr != nil {
			return nil, providerErr
		}
		return provider, nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedProvider, config.Name)
	}
}

func normalizeProviderName(name string) string {
	normalized := strings.ToLower(strings.TrimSpace(name))
	if normalized == "" {
		return ProviderNameResend
	}
	return normalized
}
