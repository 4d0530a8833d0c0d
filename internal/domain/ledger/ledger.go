// Package ledger keeps a payment record's financial summary consistent with
// its append-only transaction history. Pure arithmetic, no I/O.
package ledger

import (
	"fmt"
	"time"

	"github.com/spicon/registration/internal/domain/entity"
)

// Recalculate rederives PaidAmount, Balance and PaymentStatus from the
// record's transactions and TotalAmount. Idempotent. Summation is
// authoritative: negative amounts in persisted history are summed as-is
// rather than rejected here; Append is the validation boundary.
func Recalculate(rec *entity.PaymentRecord) {
	var paid int64
	for _, t := range rec.Transactions {
		paid += t.Amount
	}

	rec.PaidAmount = paid
	rec.Balance = rec.TotalAmount - paid
	if rec.Balance <= 0 {
		rec.PaymentStatus = entity.PaymentStatusPaid
	} else {
		rec.PaymentStatus = entity.PaymentStatusPartial
	}
}

// Append validates and appends an installment, then recalculates. This is
// the only way to add a transaction, so the derived fields can never go
// stale after a mutation.
func Append(rec *entity.PaymentRecord, amount int64, note string, at time.Time) error {
	if amount <= 0 {
		return fmt.Errorf("%w: transaction amount must be positive, got %d", entity.ErrValidation, amount)
	}

	if at.IsZero() {
		at = time.Now()
	}

	rec.Transactions = append(rec.Transactions, entity.Transaction{
		RecordID:   rec.ID,
		Amount:     amount,
		Note:       note,
		OccurredAt: at,
	})

	Recalculate(rec)
	return nil
}

// SetTotalAmount updates the fee owed and recalculates
func SetTotalAmount(rec *entity.PaymentRecord, amount int64) error {
	if amount < 0 {
		return fmt.Errorf("%w: total amount must not be negative, got %d", entity.ErrValidation, amount)
	}

	rec.TotalAmount = amount
	Recalculate(rec)
	return nil
}
