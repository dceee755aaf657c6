package notifications

import (
	"context"
	"errors"
	"fmt"

	"github.com/MarkoPoloResearchLab/aquabrain/internal/model"
)

// LocalNotifier runs the dispatcher in-process for a stored contact request.
type LocalNotifier struct {
	dispatcher *Dispatcher
}

// NewLocalNotifier wraps dispatcher.
func NewLocalNotifier(dispatcher *Dispatcher) *LocalNotifier {
	return &LocalNotifier{dispatcher: dispatcher}
}

// NotifyContactRequest dispatches both emails and reports the resulting notification status.
func (notifier *LocalNotifier) NotifyContactRequest(ctx context.Context, request model.ContactRequest) (string, error) {
	result, dispatchErr := notifier.dispatcher.Dispatch(ctx, PayloadFromContactRequest(request))
	if dispatchErr != nil {
		return model.NotificationStatusFailed, dispatchErr
	}
	return DeliveryStatus(result), resultError(result)
}

// resultError joins the per-slot failures of result, or returns nil when both sends succeeded.
func resultError(result DispatchResult) error {
	var slotErrors []error
	if result.TeamEmail.Failed() {
		slotErrors = append(slotErrors, fmt.Errorf("team email: %s", outcomeMessage(result.TeamEmail)))
	}
	if result.ConfirmationEmail.Failed() {
		slotErrors = append(slotErrors, fmt.Errorf("confirmation email: %s", outcomeMessage(result.ConfirmationEmail)))
	}
	return errors.Join(slotErrors...)
}

func outcomeMessage(outcome EmailOutcome) string {
	if outcome.Error != nil && outcome.Error.Message != "" {
		return outcome.Error.Message
	}
	return "no identifier returned"
}
