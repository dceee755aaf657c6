package notifications

import (
	"context"
	"fmt"
	"net/url"
	"strings"

	"github.com/resend/resend-go/v2"
)

// ResendProvider sends email through the Resend API.
type ResendProvider struct {
	client *resend.Client
}

// NewResendProvider creates a Resend-backed provider. baseURL overrides the API endpoint when non-empty.
func NewResendProvider(apiKey string, baseURL string) (*ResendProvider, error) {
	trimmedKey := strings.TrimSpace(apiKey)
	if trimmedKey == "" {
		return nil, fmt.Errorf("%w: %s", ErrMissingCredential, CredentialKeyResend)
	}
	client := resend.NewClient(trimmedKey)
	trimmedBaseURL := strings.TrimSpace(baseURL)
	if trimmedBaseURL != "" {
		if !strings.HasSuffix(trimmedBaseURL, "/") {
			trimmedBaseURL += "/"
		}
		parsedURL, parseErr := url.Parse(trimmedBaseURL)
		if parseErr != nil {
			return nil, fmt.Errorf("notifications: parse resend base url: %w", parseErr)
		}
		client.BaseURL = parsedURL
	}
	return &ResendProvider{client: client}, nil
}

// SendEmail implements EmailProvider.
func (provider *ResendProvider) SendEmail(ctx context.Context, message EmailMessage) (string, error) {
	request := &resend.SendEmailRequest{
		From:    message.From,
		To:      message.To,
		Subject: message.Subject,
		Html:    message.HTML,
	}

	response, sendErr := provider.client.Emails.SendWithContext(ctx, request)
	if sendErr != nil {
		return "", fmt.Errorf("resend: %w", sendErr)
	}
	if response == nil || strings.TrimSpace(response.Id) == "" {
		return "", ErrProviderRejected
	}
	return response.Id, nil
}
