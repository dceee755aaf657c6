package notifications

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/MarkoPoloResearchLab/aquabrain/internal/model"
)

const (
	defaultClientTimeout    = 45 * time.Second
	clientResponseBodyLimit = 1 << 20
	headerAuthorization     = "Authorization"
	headerContentType       = "Content-Type"
	contentTypeJSON         = "application/json"
)

var (
	// ErrMissingEndpoint indicates a Client without a dispatcher URL.
	ErrMissingEndpoint = errors.New("notifications: missing dispatcher endpoint")
	// ErrDispatchRejected indicates the remote dispatcher answered with a non-success status.
	ErrDispatchRejected = errors.New("notifications: dispatcher rejected request")
)

// ClientConfig configures a Client.
type ClientConfig struct {
	Endpoint   string
	AuthToken  string
	Timeout    time.Duration
	HTTPClient *http.Client
}

// Client invokes a remote dispatcher endpoint over HTTP.
type Client struct {
	endpoint   string
	authToken  string
	httpClient *http.Client
}

// NewClient constructs a Client for config.Endpoint.
func NewClient(config ClientConfig) (*Client, error) {
	endpoint := strings.TrimSpace(config.Endpoint)
	if endpoint == "" {
		return nil, ErrMissingEndpoint
	}
	httpClient := config.HTTPClient
	if httpClient == nil {
		timeout := config.Timeout
		if timeout <= 0 {
			timeout = defaultClientTimeout
		}
		httpClient = &http.Client{Timeout: timeout}
	}
	return &Client{
		endpoint:   endpoint,
		authToken:  strings.TrimSpace(config.AuthToken),
		httpClient: httpClient,
	}, nil
}

type dispatchErrorResponse struct {
	Error string `json:"error"`
}

// Dispatch posts payload to the remote dispatcher and decodes its aggregate result.
func (client *Client) Dispatch(ctx context.Context, payload ContactPayload) (DispatchResult, error) {
	encodedPayload, encodeErr := json.Marshal(payload)
	if encodeErr != nil {
		return DispatchResult{}, fmt.Errorf("notifications: encode payload: %w", encodeErr)
	}

	request, requestErr := http.NewRequestWithContext(ctx, http.MethodPost, client.endpoint, bytes.NewReader(encodedPayload))
	if requestErr != nil {
		return DispatchResult{}, fmt.Errorf("notifications: build dispatch request: %w", requestErr)
	}
	request.Header.Set(headerContentType, contentTypeJSON)
	if client.authToken != "" {
		request.Header.Set(headerAuthorization, "Bearer "+client.authToken)
	}

	response, doErr := client.httpClient.Do(request)
	if doErr != nil {
		return DispatchResult{}, fmt.Errorf("notifications: call dispatcher: %w", doErr)
	}
	defer response.Body.Close()

	body, readErr := io.ReadAll(io.LimitReader(response.Body, clientResponseBodyLimit))
	if readErr != nil {
		return DispatchResult{}, fmt.Errorf("notifications: read dispatcher response: %w", readErr)
	}

	if response.StatusCode != http.StatusOK {
		var errorResponse dispatchErrorResponse
		if json.Unmarshal(body, &errorResponse) == nil && errorResponse.Error != "" {
			return DispatchResult{}, fmt.Errorf("%w: %d %s", ErrDispatchRejected, response.StatusCode, errorResponse.Error)
		}
		return DispatchResult{}, fmt.Errorf("%w: %d", ErrDispatchRejected, response.StatusCode)
	}

	var result DispatchResult
	if decodeErr := json.Unmarshal(body, &result); decodeErr != nil {
		return DispatchResult{}, fmt.Errorf("notifications: decode dispatcher response: %w", decodeErr)
	}
	return result, nil
}

// NotifyContactRequest implements the contact notifier contract over HTTP.
func (client *Client) NotifyContactRequest(ctx context.Context, request model.ContactRequest) (string, error) {
	result, dispatchErr := client.Dispatch(ctx, PayloadFromContactRequest(request))
	if dispatchErr != nil {
		return model.NotificationStatusFailed, dispatchErr
	}
	return DeliveryStatus(result), resultError(result)
}
