package notifications

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/MarkoPoloResearchLab/aquabrain/internal/model"
)

const (
	testTeamRecipient = "team@aquabrain.example"
	testVisitorEmail  = "awa@example.com"
)

type recordingProvider struct {
	mutex    sync.Mutex
	messages []EmailMessage
	failures map[string]error
	block    bool
}

func (provider *recordingProvider) SendEmail(ctx context.Context, message EmailMessage) (string, error) {
	provider.mutex.Lock()
	provider.messages = append(provider.messages, message)
	failure := provider.failures[message.Tag]
	block := provider.block
	provider.mutex.Unlock()

	if block {
		<-ctx.Done()
		return "", ctx.Err()
	}
	if failure != nil {
		return "", failure
	}
	return "id-" + message.Tag, nil
}

func (provider *recordingProvider) sent() []EmailMessage {
	provider.mutex.Lock()
	defer provider.mutex.Unlock()
	result := make([]EmailMessage, len(provider.messages))
	copy(result, provider.messages)
	return result
}

func (provider *recordingProvider) messageByTag(testingT *testing.T, tag string) EmailMessage {
	testingT.Helper()
	for _, message := range provider.sent() {
		if message.Tag == tag {
			return message
		}
	}
	testingT.Fatalf("no message with tag %s", tag)
	return EmailMessage{}
}

func roundTripPayload() ContactPayload {
	return ContactPayload{
		Name:      "Awa Touré",
		Email:     testVisitorEmail,
		Phone:     "+22890000000",
		Objective: "formation",
		Subject:   "Demande de formation",
		Message:   "Je souhaite une formation.",
	}
}

func newTestDispatcher(provider EmailProvider) *Dispatcher {
	return NewDispatcher(zap.NewNop(), provider, DispatcherConfig{TeamRecipient: testTeamRecipient})
}

func TestDispatchSendsTeamNotificationAndConfirmation(testingT *testing.T) {
	provider := &recordingProvider{}
	dispatcher := newTestDispatcher(provider)

	result, dispatchErr := dispatcher.Dispatch(context.Background(), roundTripPayload())
	require.NoError(testingT, dispatchErr)
	require.True(testingT, result.Success)
	require.Equal(testingT, "id-"+emailTagTeamNotification, result.TeamEmail.ID)
	require.Nil(testingT, result.TeamEmail.Error)
	require.Equal(testingT, "id-"+emailTagVisitorConfirmation, result.ConfirmationEmail.ID)
	require.Nil(testingT, result.ConfirmationEmail.Error)
	require.Equal(testingT, model.NotificationStatusDelivered, DeliveryStatus(result))

	require.Len(testingT, provider.sent(), 2)

	teamMessage := provider.messageByTag(testingT, emailTagTeamNotification)
	require.Equal(testingT, []string{testTeamRecipient}, teamMessage.To)
	require.Equal(testingT, defaultTeamSender, teamMessage.From)
	require.Equal(testingT, "[Contact] Demande de formation", teamMessage.Subject)
	require.Contains(testingT, teamMessage.HTML, "&#43;22890000000")
	require.Contains(testingT, teamMessage.HTML, "Formation")
	require.Contains(testingT, teamMessage.HTML, "Je souhaite une formation.")

	confirmationMessage := provider.messageByTag(testingT, emailTagVisitorConfirmation)
	require.Equal(testingT, []string{testVisitorEmail}, confirmationMessage.To)
	require.Equal(testingT, defaultConfirmationSender, confirmationMessage.From)
	require.Equal(testingT, "Nous avons bien reçu votre message - AQUABRAIN", confirmationMessage.Subject)
	require.Contains(testingT, confirmationMessage.HTML, "Bonjour Awa Touré,")
	require.Contains(testingT, confirmationMessage.HTML, "&#43;228 79 68 79 66")
}

func TestDispatchMissingRequiredFieldSendsNothing(testingT *testing.T) {
	testCases := []struct {
		name          string
		mutate        func(*ContactPayload)
		expectedField string
	}{
		{name: "subject", mutate: func(payload *ContactPayload) { payload.Subject = "" }, expectedField: "subject"},
		{name: "name", mutate: func(payload *ContactPayload) { payload.Name = "  " }, expectedField: "name"},
		{name: "email", mutate: func(payload *ContactPayload) { payload.Email = "" }, expectedField: "email"},
		{name: "message", mutate: func(payload *ContactPayload) { payload.Message = "" }, expectedField: "message"},
	}

	for _, testCase := range testCases {
		testingT.Run(testCase.name, func(testingT *testing.T) {
			provider := &recordingProvider{}
			dispatcher := newTestDispatcher(provider)
			payload := roundTripPayload()
			testCase.mutate(&payload)

			_, dispatchErr := dispatcher.Dispatch(context.Background(), payload)
			require.ErrorIs(testingT, dispatchErr, ErrInvalidPayload)
			require.Contains(testingT, dispatchErr.Error(), testCase.expectedField)
			require.Empty(testingT, provider.sent())
		})
	}
}

func TestDispatchWithoutProviderFailsBeforeSending(testingT *testing.T) {
	dispatcher := NewDispatcher(zap.NewNop(), nil, DispatcherConfig{})
	require.False(testingT, dispatcher.Ready())

	_, dispatchErr := dispatcher.Dispatch(context.Background(), roundTripPayload())
	require.ErrorIs(testingT, dispatchErr, ErrProviderNotConfigured)
	require.Contains(testingT, dispatchErr.Error(), "RESEND_API_KEY is not configured")

	postmarkDispatcher := NewDispatcher(zap.NewNop(), nil, DispatcherConfig{CredentialKey: CredentialKeyPostmark})
	_, postmarkErr := postmarkDispatcher.Dispatch(context.Background(), roundTripPayload())
	require.Contains(testingT, postmarkErr.Error(), "POSTMARK_SERVER_TOKEN is not configured")
}

func TestDispatchPartialFailureReportsBothSlots(testingT *testing.T) {
	provider := &recordingProvider{failures: map[string]error{
		emailTagVisitorConfirmation: errors.New("recipient rejected"),
	}}
	dispatcher := newTestDispatcher(provider)

	result, dispatchErr := dispatcher.Dispatch(context.Background(), roundTripPayload())
	require.NoError(testingT, dispatchErr)
	require.True(testingT, result.Success)
	require.Equal(testingT, "id-"+emailTagTeamNotification, result.TeamEmail.ID)
	require.Empty(testingT, result.ConfirmationEmail.ID)
	require.NotNil(testingT, result.ConfirmationEmail.Error)
	require.Equal(testingT, "recipient rejected", result.ConfirmationEmail.Error.Message)
	require.Equal(testingT, model.NotificationStatusPartial, DeliveryStatus(result))
	require.Len(testingT, provider.sent(), 2)
}

func TestDispatchBothSendsFailing(testingT *testing.T) {
	provider := &recordingProvider{failures: map[string]error{
		emailTagTeamNotification:    errors.New("quota exceeded"),
		emailTagVisitorConfirmation: errors.New("quota exceeded"),
	}}
	result, dispatchErr := newTestDispatcher(provider).Dispatch(context.Background(), roundTripPayload())
	require.NoError(testingT, dispatchErr)
	require.True(testingT, result.Success)
	require.Equal(testingT, model.NotificationStatusFailed, DeliveryStatus(result))
}

func TestDispatchBoundsEachSendWithTimeout(testingT *testing.T) {
	provider := &recordingProvider{block: true}
	dispatcher := NewDispatcher(zap.NewNop(), provider, DispatcherConfig{SendTimeout: 20 * time.Millisecond})

	result, dispatchErr := dispatcher.Dispatch(context.Background(), roundTripPayload())
	require.NoError(testingT, dispatchErr)
	require.NotNil(testingT, result.TeamEmail.Error)
	require.NotNil(testingT, result.ConfirmationEmail.Error)
	require.Contains(testingT, result.TeamEmail.Error.Message, "deadline exceeded")
}

func TestDispatchOmitsAbsentOptionalFields(testingT *testing.T) {
	provider := &recordingProvider{}
	dispatcher := newTestDispatcher(provider)
	payload := roundTripPayload()
	payload.Phone = ""
	payload.Objective = ""

	_, dispatchErr := dispatcher.Dispatch(context.Background(), payload)
	require.NoError(testingT, dispatchErr)

	for _, message := range provider.sent() {
		require.NotContains(testingT, message.HTML, "undefined")
		require.NotContains(testingT, message.HTML, "<no value>")
	}
	teamMessage := provider.messageByTag(testingT, emailTagTeamNotification)
	require.NotContains(testingT, teamMessage.HTML, "Téléphone")
	require.NotContains(testingT, teamMessage.HTML, "Objectif")
}

func TestDeliveryStatusForUnsuccessfulResult(testingT *testing.T) {
	require.Equal(testingT, model.NotificationStatusFailed, DeliveryStatus(DispatchResult{}))
	require.Equal(testingT, model.NotificationStatusFailed, DeliveryStatus(DispatchResult{
		TeamEmail:         EmailOutcome{ID: "team"},
		ConfirmationEmail: EmailOutcome{ID: "confirmation"},
	}))
}
