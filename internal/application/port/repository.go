package port

import (
	"context"
	"time"

	"github.com/spicon/registration/internal/domain/entity"
)

// PaymentRecordRepository defines persistence operations for PaymentRecord
type PaymentRecordRepository interface {
	// Create persists a new record together with any opening transactions
	Create(ctx context.Context, rec *entity.PaymentRecord) error

	// GetByID loads a record with its full transaction history
	GetByID(ctx context.Context, id string) (*entity.PaymentRecord, error)

	// FindByMobile returns the record with the given mobile number, or
	// entity.ErrNotFound
	FindByMobile(ctx context.Context, mobile string) (*entity.PaymentRecord, error)

	// FindByName returns the first record with the given name, or
	// entity.ErrNotFound
	FindByName(ctx context.Context, name string) (*entity.PaymentRecord, error)

	// List returns records ordered by creation time, newest first
	List(ctx context.Context, limit, offset int) ([]*entity.PaymentRecord, error)

	// Update persists the record's scalar fields, including the derived
	// financial state. Transactions are appended separately.
	Update(ctx context.Context, rec *entity.PaymentRecord) error

	// AppendTransaction inserts one installment row
	AppendTransaction(ctx context.Context, txn *entity.Transaction) error

	// SetApproved marks a pending record approved and assigns its unique id
	// in one statement. Returns entity.ErrConflict if the id is already
	// taken (unique index) so the caller can recompute and retry.
	SetApproved(ctx context.Context, id, uniqueID, approvedBy string, at time.Time) error

	// SetRejected marks a pending record rejected with a reason
	SetRejected(ctx context.Context, id, reason, rejectedBy string, at time.Time) error

	// IssuedUniqueIDs returns the unique ids of all approved records in a
	// region; the allocator narrows them to its prefix scope
	IssuedUniqueIDs(ctx context.Context, region entity.Region) ([]string, error)

	// Totals returns the summed totalAmount and paidAmount across all records
	Totals(ctx context.Context) (totalAmount, totalPaid int64, err error)

	// Delete removes a record and its transactions
	Delete(ctx context.Context, id string) error
}

// ExpenseSummary aggregates worker requests per status
type ExpenseSummary struct {
	Total           int   `json:"total"`
	Pending         int   `json:"pending"`
	Approved        int   `json:"approved"`
	Rejected        int   `json:"rejected"`
	Paid            int   `json:"paid"`
	TotalAmount     int64 `json:"total_amount"`
	TotalPaidAmount int64 `json:"total_paid_amount"`
}

// WorkerRequestRepository defines persistence operations for WorkerRequest
type WorkerRequestRepository interface {
	Create(ctx context.Context, req *entity.WorkerRequest) error
	GetByID(ctx context.Context, id string) (*entity.WorkerRequest, error)
	ListByWorker(ctx context.Context, workerID string) ([]*entity.WorkerRequest, error)
	List(ctx context.Context) ([]*entity.WorkerRequest, error)
	Update(ctx context.Context, req *entity.WorkerRequest) error
	Summary(ctx context.Context) (*ExpenseSummary, error)
}

// UserRepository defines persistence operations for User
type UserRepository interface {
	Create(ctx context.Context, user *entity.User) error
	GetByID(ctx context.Context, id string) (*entity.User, error)

	// FindForLogin returns users whose username or email matches, optionally
	// narrowed by role and region (empty values mean no filter). More than
	// one user may share a username; the caller picks by password.
	FindForLogin(ctx context.Context, usernameOrEmail string, role entity.Role, region entity.Region) ([]*entity.User, error)

	// List returns every committee account, newest first
	List(ctx context.Context) ([]*entity.User, error)

	// ExistsByEmail reports whether a user with the email is registered
	ExistsByEmail(ctx context.Context, email string) (bool, error)
}

// TransactionManager runs a function within a store transaction. The
// transactional context must be passed to every repository call inside fn;
// rollback happens on any error or panic.
type TransactionManager interface {
	WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error
}
