package notifications

import (
	"strings"

	"github.com/MarkoPoloResearchLab/aquabrain/internal/model"
)

// ContactPayload is the JSON body accepted by the dispatcher endpoint.
type ContactPayload struct {
	Name      string `json:"name" validate:"required"`
	Email     string `json:"email" validate:"required"`
	Phone     string `json:"phone,omitempty"`
	Objective string `json:"objective,omitempty"`
	Subject   string `json:"subject" validate:"required"`
	Message   string `json:"message" validate:"required"`
}

// Normalized returns a copy with surrounding whitespace removed.
func (payload ContactPayload) Normalized() ContactPayload {
	return ContactPayload{
		Name:      strings.TrimSpace(payload.Name),
		Email:     strings.TrimSpace(payload.Email),
		Phone:     strings.TrimSpace(payload.Phone),
		Objective: strings.TrimSpace(payload.Objective),
		Subject:   strings.TrimSpace(payload.Subject),
		Message:   strings.TrimSpace(payload.Message),
	}
}

// PayloadFromContactRequest builds the dispatcher payload for a stored request.
func PayloadFromContactRequest(request model.ContactRequest) ContactPayload {
	return ContactPayload{
		Name:      request.Name,
		Email:     request.Email,
		Phone:     request.Phone,
		Objective: request.Objective,
		Subject:   request.Subject,
		Message:   request.Message,
	}
}

// EmailError carries the provider failure for one send.
type EmailError struct {
	Message string `json:"message"`
}

// EmailOutcome is the result slot of one send: a provider identifier or an error.
type EmailOutcome struct {
	ID    string      `json:"id,omitempty"`
	Error *EmailError `json:"error,omitempty"`
}

// Failed reports whether the send did not produce a provider identifier.
func (outcome EmailOutcome) Failed() bool {
	return outcome.Error != nil || strings.TrimSpace(outcome.ID) == ""
}

func succeededOutcome(identifier string) EmailOutcome {
	return EmailOutcome{ID: identifier}
}

func failedOutcome(message string) EmailOutcome {
	return EmailOutcome{Error: &EmailError{Message: message}}
}

// DispatchResult aggregates both sends of one dispatch.
type DispatchResult struct {
	Success           bool         `json:"success"`
	TeamEmail         EmailOutcome `json:"teamEmail"`
	ConfirmationEmail EmailOutcome `json:"confirmationEmail"`
}

// DeliveryStatus summarizes result as a stored notification status.
func DeliveryStatus(result DispatchResult) string {
	teamFailed := result.TeamEmail.Failed()
	confirmationFailed := result.ConfirmationEmail.Failed()
	switch {
	case !result.Success:
		return model.NotificationStatusFailed
	case !teamFailed && !confirmationFailed:
		return model.NotificationStatusDelivered
	case teamFailed && confirmationFailed:
		return model.NotificationStatusFailed
	default:
		return model.NotificationStatusPartial
	}
}
