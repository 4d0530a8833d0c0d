package port

import (
	"context"

	"github.com/spicon/registration/internal/domain/entity"
)

// RegistrationNotifier informs a registrant of the outcome of their
// registration: the issued unique id on approval, the reason on
// rejection. Delivery is best effort; failures must not roll back the
// decision.
type RegistrationNotifier interface {
	NotifyApproved(ctx context.Context, rec *entity.PaymentRecord) error
	NotifyRejected(ctx context.Context, rec *entity.PaymentRecord) error
}
