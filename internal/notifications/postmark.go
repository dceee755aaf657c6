package notifications

import (
	"context"
	"fmt"
	"strings"

	"github.com/mrz1836/postmark"
)

// PostmarkProvider sends email through Postmark's transactional API.
type PostmarkProvider struct {
	client *postmark.Client
}

// NewPostmarkProvider creates a Postmark-backed provider. baseURL overrides the API endpoint when non-empty.
func NewPostmarkProvider(serverToken string, accountToken string, baseURL string) (*PostmarkProvider, error) {
	trimmedToken := strings.TrimSpace(serverToken)
	if trimmedToken == "" {
		return nil, fmt.Errorf("%w: %s", ErrMissingCredential, CredentialKeyPostmark)
	}
	client := postmark.NewClient(trimmedToken, strings.TrimSpace(accountToken))
	if trimmedBaseURL := strings.TrimRight(strings.TrimSpace(baseURL), "/"); trimmedBaseURL != "" {
		client.BaseURL = trimmedBaseURL
	}
	return &PostmarkProvider{client: client}, nil
}

// SendEmail implements EmailProvider.
func (provider *PostmarkProvider) SendEmail(ctx context.Context, message EmailMessage) (string, error) {
	response, sendErr := provider.client.SendEmail(ctx, postmark.Email{
		From:       message.From,
		To:         strings.Join(message.To, ","),
		Subject:    message.Subject,
		HTMLBody:   message.HTML,
		Tag:        message.Tag,
		TrackOpens: false,
	})
	if sendErr != nil {
		return "", fmt.Errorf("postmark: %w", sendErr)
	}
	if response.ErrorCode > 0 {
		return "", fmt.Errorf("%w: postmark error %d - %s", ErrProviderRejected, response.ErrorCode, response.Message)
	}
	if strings.TrimSpace(response.MessageID) == "" {
		return "", ErrProviderRejected
	}
	return response.MessageID, nil
}
