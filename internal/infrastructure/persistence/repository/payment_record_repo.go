package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/mattn/go-sqlite3"
	"go.uber.org/zap"

	"github.com/spicon/registration/internal/application/port"
	"github.com/spicon/registration/internal/domain/entity"
	"github.com/spicon/registration/internal/infrastructure/persistence/sqlite"
)

// PaymentRecordRepository implements port.PaymentRecordRepository on sqlite
type PaymentRecordRepository struct {
	db     *sqlite.DB
	logger *zap.Logger
}

// NewPaymentRecordRepository creates a new payment record repository
func NewPaymentRecordRepository(db *sqlite.DB, logger *zap.Logger) port.PaymentRecordRepository {
	return &PaymentRecordRepository{
		db:     db,
		logger: logger,
	}
}

const recordColumns = `
	id, region, name, email, mobile, district, group_type,
	spouse_name, family_size, arrival_day,
	total_amount, paid_amount, balance, payment_status,
	registration_status, unique_id, approved_at, approved_by,
	rejected_at, rejected_by, rejection_reason,
	payment_screenshot, created_at, updated_at
`

// Create persists a new record together with any opening transactions
func (r *PaymentRecordRepository) Create(ctx context.Context, rec *entity.PaymentRecord) error {
	query := `
		INSERT INTO payment_records (` + recordColumns + `)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`

	_, err := r.db.Executor(ctx).ExecContext(ctx, query,
		rec.ID,
		rec.Region.String(),
		rec.Name,
		nullString(rec.Email),
		nullString(rec.Mobile),
		nullString(rec.District),
		rec.GroupType,
		nullString(rec.SpouseName),
		rec.FamilySize,
		nullString(rec.ArrivalDay),
		rec.TotalAmount,
		rec.PaidAmount,
		rec.Balance,
		rec.PaymentStatus,
		rec.RegistrationStatus,
		nullString(rec.UniqueID),
		nullTime(rec.ApprovedAt),
		nullString(rec.ApprovedBy),
		nullTime(rec.RejectedAt),
		nullString(rec.RejectedBy),
		nullString(rec.RejectionReason),
		nullString(rec.PaymentScreenshot),
		rec.CreatedAt,
		rec.UpdatedAt,
	)
	if err != nil {
		r.logger.Error("Failed to create payment record",
			zap.String("record_id", rec.ID),
			zap.Error(err))
		return sqlite.MapErr(fmt.Errorf("create payment record: %w", err))
	}

	for i := range rec.Transactions {
		rec.Transactions[i].RecordID = rec.ID
		if err := r.AppendTransaction(ctx, &rec.Transactions[i]); err != nil {
			return err
		}
	}
	return nil
}

// GetByID loads a record with its full transaction history
func (r *PaymentRecordRepository) GetByID(ctx context.Context, id string) (*entity.PaymentRecord, error) {
	query := `SELECT ` + recordColumns + ` FROM payment_records WHERE id = ?`

	rec, err := scanRecord(r.db.Executor(ctx).QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("%w: payment record %s", entity.ErrNotFound, id)
		}
		return nil, sqlite.MapErr(fmt.Errorf("get payment record: %w", err))
	}

	if err := r.loadTransactions(ctx, rec); err != nil {
		return nil, err
	}
	return rec, nil
}

// FindByMobile returns the record with the given mobile number
func (r *PaymentRecordRepository) FindByMobile(ctx context.Context, mobile string) (*entity.PaymentRecord, error) {
	query := `SELECT ` + recordColumns + ` FROM payment_records WHERE mobile = ? LIMIT 1`
	return r.findOne(ctx, query, mobile)
}

// FindByName returns the first record with the given name
func (r *PaymentRecordRepository) FindByName(ctx context.Context, name string) (*entity.PaymentRecord, error) {
	query := `SELECT ` + recordColumns + ` FROM payment_records WHERE name = ? LIMIT 1`
	return r.findOne(ctx, query, name)
}

func (r *PaymentRecordRepository) findOne(ctx context.Context, query string, arg interface{}) (*entity.PaymentRecord, error) {
	rec, err := scanRecord(r.db.Executor(ctx).QueryRowContext(ctx, query, arg))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("%w: payment record for %v", entity.ErrNotFound, arg)
		}
		return nil, sqlite.MapErr(fmt.Errorf("find payment record: %w", err))
	}
	if err := r.loadTransactions(ctx, rec); err != nil {
		return nil, err
	}
	return rec, nil
}

// List returns records ordered by creation time, newest first.
// Transaction histories are not loaded; list views only show the derived
// financial state.
func (r *PaymentRecordRepository) List(ctx context.Context, limit, offset int) ([]*entity.PaymentRecord, error) {
	if limit <= 0 {
		limit = 50
	}

	query := `
		SELECT ` + recordColumns + `
		FROM payment_records
		ORDER BY created_at DESC, id DESC
		LIMIT ? OFFSET ?
	`

	rows, err := r.db.Executor(ctx).QueryContext(ctx, query, limit, offset)
	if err != nil {
		return nil, sqlite.MapErr(fmt.Errorf("list payment records: %w", err))
	}
	defer rows.Close()

	var out []*entity.PaymentRecord
	for rows.Next() {
		rec, err := scanRecord(rows)
		if err != nil {
			return nil, fmt.Errorf("scan payment record: %w", err)
		}
		out = append(out, rec)
	}
	return out, rows.Err()
}

// Update persists the record's scalar fields, including the derived
// financial state
func (r *PaymentRecordRepository) Update(ctx context.Context, rec *entity.PaymentRecord) error {
	query := `
		UPDATE payment_records SET
			name = ?, email = ?, mobile = ?, district = ?, group_type = ?,
			spouse_name = ?, family_size = ?, arrival_day = ?,
			total_amount = ?, paid_amount = ?, balance = ?, payment_status = ?,
			payment_screenshot = ?, updated_at = ?
		WHERE id = ?
	`

	result, err := r.db.Executor(ctx).ExecContext(ctx, query,
		rec.Name,
		nullString(rec.Email),
		nullString(rec.Mobile),
		nullString(rec.District),
		rec.GroupType,
		nullString(rec.SpouseName),
		rec.FamilySize,
		nullString(rec.ArrivalDay),
		rec.TotalAmount,
		rec.PaidAmount,
		rec.Balance,
		rec.PaymentStatus,
		nullString(rec.PaymentScreenshot),
		rec.UpdatedAt,
		rec.ID,
	)
	if err != nil {
		r.logger.Error("Failed to update payment record",
			zap.String("record_id", rec.ID),
			zap.Error(err))
		return sqlite.MapErr(fmt.Errorf("update payment record: %w", err))
	}
	return requireRowAffected(result, "payment record", rec.ID)
}

// AppendTransaction inserts one installment row
func (r *PaymentRecordRepository) AppendTransaction(ctx context.Context, txn *entity.Transaction) error {
	query := `
		INSERT INTO payment_transactions (record_id, amount, note, occurred_at)
		VALUES (?, ?, ?, ?)
	`

	result, err := r.db.Executor(ctx).ExecContext(ctx, query,
		txn.RecordID,
		txn.Amount,
		nullString(txn.Note),
		txn.OccurredAt,
	)
	if err != nil {
		r.logger.Error("Failed to append transaction",
			zap.String("record_id", txn.RecordID),
			zap.Int64("amount", txn.Amount),
			zap.Error(err))
		return sqlite.MapErr(fmt.Errorf("append transaction: %w", err))
	}

	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("transaction id: %w", err)
	}
	txn.ID = id
	return nil
}

// SetApproved marks a pending record approved and assigns its unique id.
// The WHERE clause keeps it a no-op on non-pending records, and the unique
// index on unique_id turns a duplicate into entity.ErrConflict.
func (r *PaymentRecordRepository) SetApproved(ctx context.Context, id, uniqueID, approvedBy string, at time.Time) error {
	query := `
		UPDATE payment_records SET
			registration_status = ?, unique_id = ?, approved_by = ?,
			approved_at = ?, updated_at = ?
		WHERE id = ? AND registration_status = ?
	`

	result, err := r.db.Executor(ctx).ExecContext(ctx, query,
		entity.RegistrationApproved,
		uniqueID,
		approvedBy,
		at,
		at,
		id,
		entity.RegistrationPending,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("%w: unique id %s already issued", entity.ErrConflict, uniqueID)
		}
		r.logger.Error("Failed to approve payment record",
			zap.String("record_id", id),
			zap.String("unique_id", uniqueID),
			zap.Error(err))
		return sqlite.MapErr(fmt.Errorf("approve payment record: %w", err))
	}
	return requireRowAffected(result, "pending payment record", id)
}

// SetRejected marks a pending record rejected with a reason
func (r *PaymentRecordRepository) SetRejected(ctx context.Context, id, reason, rejectedBy string, at time.Time) error {
	query := `
		UPDATE payment_records SET
			registration_status = ?, rejection_reason = ?, rejected_by = ?,
			rejected_at = ?, updated_at = ?
		WHERE id = ? AND registration_status = ?
	`

	result, err := r.db.Executor(ctx).ExecContext(ctx, query,
		entity.RegistrationRejected,
		reason,
		rejectedBy,
		at,
		at,
		id,
		entity.RegistrationPending,
	)
	if err != nil {
		return sqlite.MapErr(fmt.Errorf("reject payment record: %w", err))
	}
	return requireRowAffected(result, "pending payment record", id)
}

// IssuedUniqueIDs returns the unique ids of all approved records in a region
func (r *PaymentRecordRepository) IssuedUniqueIDs(ctx context.Context, region entity.Region) ([]string, error) {
	query := `
		SELECT unique_id FROM payment_records
		WHERE region = ? AND registration_status = ? AND unique_id IS NOT NULL
	`

	rows, err := r.db.Executor(ctx).QueryContext(ctx, query, region.String(), entity.RegistrationApproved)
	if err != nil {
		return nil, sqlite.MapErr(fmt.Errorf("issued unique ids: %w", err))
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

// Totals returns the summed totalAmount and paidAmount across all records
func (r *PaymentRecordRepository) Totals(ctx context.Context) (int64, int64, error) {
	query := `
		SELECT COALESCE(SUM(total_amount), 0), COALESCE(SUM(paid_amount), 0)
		FROM payment_records
	`

	var total, paid int64
	if err := r.db.Executor(ctx).QueryRowContext(ctx, query).Scan(&total, &paid); err != nil {
		return 0, 0, sqlite.MapErr(fmt.Errorf("payment totals: %w", err))
	}
	return total, paid, nil
}

// Delete removes a record; its transactions cascade
func (r *PaymentRecordRepository) Delete(ctx context.Context, id string) error {
	result, err := r.db.Executor(ctx).ExecContext(ctx, `DELETE FROM payment_records WHERE id = ?`, id)
	if err != nil {
		return sqlite.MapErr(fmt.Errorf("delete payment record: %w", err))
	}
	return requireRowAffected(result, "payment record", id)
}

func (r *PaymentRecordRepository) loadTransactions(ctx context.Context, rec *entity.PaymentRecord) error {
	query := `
		SELECT id, record_id, amount, note, occurred_at
		FROM payment_transactions
		WHERE record_id = ?
		ORDER BY occurred_at ASC, id ASC
	`

	rows, err := r.db.Executor(ctx).QueryContext(ctx, query, rec.ID)
	if err != nil {
		return sqlite.MapErr(fmt.Errorf("load transactions: %w", err))
	}
	defer rows.Close()

	for rows.Next() {
		var txn entity.Transaction
		var note sql.NullString
		if err := rows.Scan(&txn.ID, &txn.RecordID, &txn.Amount, &note, &txn.OccurredAt); err != nil {
			return fmt.Errorf("scan transaction: %w", err)
		}
		txn.Note = note.String
		rec.Transactions = append(rec.Transactions, txn)
	}
	return rows.Err()
}

// rowScanner abstracts *sql.Row and *sql.Rows for the shared scan
type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanRecord(row rowScanner) (*entity.PaymentRecord, error) {
	var rec entity.PaymentRecord
	var region string
	var email, mobile, district, spouseName, arrivalDay sql.NullString
	var uniqueID, approvedBy, rejectedBy, rejectionReason, screenshot sql.NullString
	var approvedAt, rejectedAt sql.NullTime

	err := row.Scan(
		&rec.ID,
		&region,
		&rec.Name,
		&email,
		&mobile,
		&district,
		&rec.GroupType,
		&spouseName,
		&rec.FamilySize,
		&arrivalDay,
		&rec.TotalAmount,
		&rec.PaidAmount,
		&rec.Balance,
		&rec.PaymentStatus,
		&rec.RegistrationStatus,
		&uniqueID,
		&approvedAt,
		&approvedBy,
		&rejectedAt,
		&rejectedBy,
		&rejectionReason,
		&screenshot,
		&rec.CreatedAt,
		&rec.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	rec.Region = entity.Region(region)
	rec.Email = email.String
	rec.Mobile = mobile.String
	rec.District = district.String
	rec.SpouseName = spouseName.String
	rec.ArrivalDay = arrivalDay.String
	rec.UniqueID = uniqueID.String
	rec.ApprovedBy = approvedBy.String
	rec.RejectedBy = rejectedBy.String
	rec.RejectionReason = rejectionReason.String
	rec.PaymentScreenshot = screenshot.String
	if approvedAt.Valid {
		rec.ApprovedAt = &approvedAt.Time
	}
	if rejectedAt.Valid {
		rec.RejectedAt = &rejectedAt.Time
	}
	return &rec, nil
}

func nullString(s string) sql.NullString {
	if s == "" {
		return sql.NullString{}
	}
	return sql.NullString{String: s, Valid: true}
}

func nullTime(t *time.Time) sql.NullTime {
	if t == nil {
		return sql.NullTime{}
	}
	return sql.NullTime{Time: *t, Valid: true}
}

func requireRowAffected(result sql.Result, kind, id string) error {
	n, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return fmt.Errorf("%w: %s %s", entity.ErrNotFound, kind, id)
	}
	return nil
}

func isUniqueViolation(err error) bool {
	var se sqlite3.Error
	if !errors.As(err, &se) {
		return false
	}
	return se.ExtendedCode == sqlite3.ErrConstraintUnique ||
		se.ExtendedCode == sqlite3.ErrConstraintPrimaryKey
}
