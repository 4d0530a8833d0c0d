package dispatcher

import (
	"context"

	"github.com/spicon/registration/internal/application/port"
	"github.com/spicon/registration/internal/domain/entity"
	"github.com/spicon/registration/internal/domain/event"
)

// RegistrationNotifier publishes outcome events instead of delivering the
// notifications itself. Subscribed handlers (the email sender) run off the
// request path.
type RegistrationNotifier struct {
	dispatcher Dispatcher
}

// NewRegistrationNotifier creates a notifier backed by the dispatcher
func NewRegistrationNotifier(d Dispatcher) *RegistrationNotifier {
	return &RegistrationNotifier{dispatcher: d}
}

// NotifyApproved raises a registration.approved event. Delivery failures
// surface in handler logs, never here.
func (n *RegistrationNotifier) NotifyApproved(ctx context.Context, rec *entity.PaymentRecord) error {
	n.dispatcher.DispatchAsync(ctx, event.NewRegistrationApproved(rec))
	return nil
}

// NotifyRejected raises a registration.rejected event
func (n *RegistrationNotifier) NotifyRejected(ctx context.Context, rec *entity.PaymentRecord) error {
	n.dispatcher.DispatchAsync(ctx, event.NewRegistrationRejected(rec))
	return nil
}

var _ port.RegistrationNotifier = (*RegistrationNotifier)(nil)
