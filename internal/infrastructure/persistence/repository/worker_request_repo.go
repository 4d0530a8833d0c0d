package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/spicon/registration/internal/application/port"
	"github.com/spicon/registration/internal/domain/entity"
	"github.com/spicon/registration/internal/infrastructure/persistence/sqlite"
)

// WorkerRequestRepository implements port.WorkerRequestRepository on sqlite.
// Image file name lists are stored as JSON arrays; they are opaque to SQL.
type WorkerRequestRepository struct {
	db     *sqlite.DB
	logger *zap.Logger
}

// NewWorkerRequestRepository creates a new worker request repository
func NewWorkerRequestRepository(db *sqlite.DB, logger *zap.Logger) port.WorkerRequestRepository {
	return &WorkerRequestRepository{
		db:     db,
		logger: logger,
	}
}

const requestColumns = `
	id, worker_id, region, title, amount, description, status,
	worker_images, cashier_images, extra_requested, return_requested,
	approved_at, approved_by, rejected_at, rejection_reason,
	paid_at, paid_by, payment_note, received_at,
	created_at, updated_at
`

// Create persists a new expense claim
func (r *WorkerRequestRepository) Create(ctx context.Context, req *entity.WorkerRequest) error {
	workerImages, err := encodeImages(req.WorkerImages)
	if err != nil {
		return err
	}
	cashierImages, err := encodeImages(req.CashierImages)
	if err != nil {
		return err
	}

	query := `
		INSERT INTO worker_requests (` + requestColumns + `)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`

	_, err = r.db.Executor(ctx).ExecContext(ctx, query,
		req.ID,
		req.WorkerID,
		req.Region.String(),
		req.Title,
		req.Amount,
		nullString(req.Description),
		req.Status,
		workerImages,
		cashierImages,
		req.ExtraRequested,
		req.ReturnRequested,
		nullTime(req.ApprovedAt),
		nullString(req.ApprovedBy),
		nullTime(req.RejectedAt),
		nullString(req.RejectionReason),
		nullTime(req.PaidAt),
		nullString(req.PaidBy),
		nullString(req.PaymentNote),
		nullTime(req.ReceivedAt),
		req.CreatedAt,
		req.UpdatedAt,
	)
	if err != nil {
		r.logger.Error("Failed to create worker request",
			zap.String("request_id", req.ID),
			zap.Error(err))
		return sqlite.MapErr(fmt.Errorf("create worker request: %w", err))
	}
	return nil
}

// GetByID loads a request by id
func (r *WorkerRequestRepository) GetByID(ctx context.Context, id string) (*entity.WorkerRequest, error) {
	query := `SELECT ` + requestColumns + ` FROM worker_requests WHERE id = ?`

	req, err := scanRequest(r.db.Executor(ctx).QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("%w: worker request %s", entity.ErrNotFound, id)
		}
		return nil, sqlite.MapErr(fmt.Errorf("get worker request: %w", err))
	}
	return req, nil
}

// ListByWorker returns one worker's requests, newest first
func (r *WorkerRequestRepository) ListByWorker(ctx context.Context, workerID string) ([]*entity.WorkerRequest, error) {
	query := `
		SELECT ` + requestColumns + `
		FROM worker_requests
		WHERE worker_id = ?
		ORDER BY created_at DESC, id DESC
	`
	return r.list(ctx, query, workerID)
}

// List returns all requests, newest first
func (r *WorkerRequestRepository) List(ctx context.Context) ([]*entity.WorkerRequest, error) {
	query := `
		SELECT ` + requestColumns + `
		FROM worker_requests
		ORDER BY created_at DESC, id DESC
	`
	return r.list(ctx, query)
}

func (r *WorkerRequestRepository) list(ctx context.Context, query string, args ...interface{}) ([]*entity.WorkerRequest, error) {
	rows, err := r.db.Executor(ctx).QueryContext(ctx, query, args...)
	if err != nil {
		return nil, sqlite.MapErr(fmt.Errorf("list worker requests: %w", err))
	}
	defer rows.Close()

	var out []*entity.WorkerRequest
	for rows.Next() {
		req, err := scanRequest(rows)
		if err != nil {
			return nil, fmt.Errorf("scan worker request: %w", err)
		}
		out = append(out, req)
	}
	return out, rows.Err()
}

// Update persists the request's current state
func (r *WorkerRequestRepository) Update(ctx context.Context, req *entity.WorkerRequest) error {
	workerImages, err := encodeImages(req.WorkerImages)
	if err != nil {
		return err
	}
	cashierImages, err := encodeImages(req.CashierImages)
	if err != nil {
		return err
	}

	query := `
		UPDATE worker_requests SET
			title = ?, amount = ?, description = ?, status = ?,
			worker_images = ?, cashier_images = ?,
			extra_requested = ?, return_requested = ?,
			approved_at = ?, approved_by = ?, rejected_at = ?, rejection_reason = ?,
			paid_at = ?, paid_by = ?, payment_note = ?, received_at = ?,
			updated_at = ?
		WHERE id = ?
	`

	result, err := r.db.Executor(ctx).ExecContext(ctx, query,
		req.Title,
		req.Amount,
		nullString(req.Description),
		req.Status,
		workerImages,
		cashierImages,
		req.ExtraRequested,
		req.ReturnRequested,
		nullTime(req.ApprovedAt),
		nullString(req.ApprovedBy),
		nullTime(req.RejectedAt),
		nullString(req.RejectionReason),
		nullTime(req.PaidAt),
		nullString(req.PaidBy),
		nullString(req.PaymentNote),
		nullTime(req.ReceivedAt),
		req.UpdatedAt,
		req.ID,
	)
	if err != nil {
		r.logger.Error("Failed to update worker request",
			zap.String("request_id", req.ID),
			zap.Error(err))
		return sqlite.MapErr(fmt.Errorf("update worker request: %w", err))
	}
	return requireRowAffected(result, "worker request", req.ID)
}

// Summary counts requests per status and sums their amounts
func (r *WorkerRequestRepository) Summary(ctx context.Context) (*port.ExpenseSummary, error) {
	query := `
		SELECT
			COUNT(*),
			COALESCE(SUM(status = ?), 0),
			COALESCE(SUM(status = ?), 0),
			COALESCE(SUM(status = ?), 0),
			COALESCE(SUM(status = ?), 0),
			COALESCE(SUM(amount), 0),
			COALESCE(SUM(CASE WHEN status = ? THEN amount ELSE 0 END), 0)
		FROM worker_requests
	`

	var summary port.ExpenseSummary
	err := r.db.Executor(ctx).QueryRowContext(ctx, query,
		entity.RequestPending,
		entity.RequestApproved,
		entity.RequestRejected,
		entity.RequestPaid,
		entity.RequestPaid,
	).Scan(
		&summary.Total,
		&summary.Pending,
		&summary.Approved,
		&summary.Rejected,
		&summary.Paid,
		&summary.TotalAmount,
		&summary.TotalPaidAmount,
	)
	if err != nil {
		return nil, sqlite.MapErr(fmt.Errorf("worker request summary: %w", err))
	}
	return &summary, nil
}

func scanRequest(row rowScanner) (*entity.WorkerRequest, error) {
	var req entity.WorkerRequest
	var region string
	var description, approvedBy, rejectionReason, paidBy, paymentNote sql.NullString
	var workerImages, cashierImages sql.NullString
	var approvedAt, rejectedAt, paidAt, receivedAt sql.NullTime

	err := row.Scan(
		&req.ID,
		&req.WorkerID,
		&region,
		&req.Title,
		&req.Amount,
		&description,
		&req.Status,
		&workerImages,
		&cashierImages,
		&req.ExtraRequested,
		&req.ReturnRequested,
		&approvedAt,
		&approvedBy,
		&rejectedAt,
		&rejectionReason,
		&paidAt,
		&paidBy,
		&paymentNote,
		&receivedAt,
		&req.CreatedAt,
		&req.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	req.Region = entity.Region(region)
	req.Description = description.String
	req.ApprovedBy = approvedBy.String
	req.RejectionReason = rejectionReason.String
	req.PaidBy = paidBy.String
	req.PaymentNote = paymentNote.String
	if approvedAt.Valid {
		req.ApprovedAt = &approvedAt.Time
	}
	if rejectedAt.Valid {
		req.RejectedAt = &rejectedAt.Time
	}
	if paidAt.Valid {
		req.PaidAt = &paidAt.Time
	}
	if receivedAt.Valid {
		req.ReceivedAt = &receivedAt.Time
	}

	if req.WorkerImages, err = decodeImages(workerImages.String); err != nil {
		return nil, fmt.Errorf("worker images for %s: %w", req.ID, err)
	}
	if req.CashierImages, err = decodeImages(cashierImages.String); err != nil {
		return nil, fmt.Errorf("cashier images for %s: %w", req.ID, err)
	}
	return &req, nil
}

func encodeImages(names []string) (string, error) {
	if len(names) == 0 {
		return "[]", nil
	}
	b, err := json.Marshal(names)
	if err != nil {
		return "", fmt.Errorf("encode image list: %w", err)
	}
	return string(b), nil
}

func decodeImages(raw string) ([]string, error) {
	if raw == "" || raw == "[]" {
		return nil, nil
	}
	var names []string
	if err := json.Unmarshal([]byte(raw), &names); err != nil {
		return nil, err
	}
	return names, nil
}
