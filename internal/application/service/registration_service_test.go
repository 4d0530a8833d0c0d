package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/spicon/registration/internal/domain/entity"
)

func newRegistrationService(repo *fakePaymentRepo) RegistrationService {
	return NewRegistrationService(repo, passthroughTxManager{}, mockLogger{})
}

func TestRegister(t *testing.T) {
	tests := []struct {
		name    string
		input   RegisterInput
		wantErr error
	}{
		{
			name: "minimal valid registration",
			input: RegisterInput{
				Region:      entity.RegionEast,
				Name:        "A. Kumar",
				GroupType:   "Family",
				TotalAmount: 5000,
			},
		},
		{
			name: "with opening installment",
			input: RegisterInput{
				Region:      entity.RegionWest,
				Name:        "B. Rao",
				GroupType:   "Couple",
				TotalAmount: 5000,
				AmountPaid:  2000,
				PaymentNote: "Txn: UPI-1234",
			},
		},
		{
			name: "missing region",
			input: RegisterInput{
				Name:        "C. Devi",
				GroupType:   "Family",
				TotalAmount: 5000,
			},
			wantErr: entity.ErrValidation,
		},
		{
			name: "missing name",
			input: RegisterInput{
				Region:      entity.RegionEast,
				GroupType:   "Family",
				TotalAmount: 5000,
			},
			wantErr: entity.ErrValidation,
		},
		{
			name: "missing group type",
			input: RegisterInput{
				Region:      entity.RegionEast,
				Name:        "D. Reddy",
				TotalAmount: 5000,
			},
			wantErr: entity.ErrValidation,
		},
		{
			name: "negative fee",
			input: RegisterInput{
				Region:      entity.RegionEast,
				Name:        "E. Lakshmi",
				GroupType:   "Family",
				TotalAmount: -1,
			},
			wantErr: entity.ErrValidation,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := newRegistrationService(newFakePaymentRepo())

			rec, err := svc.Register(context.Background(), tt.input)
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("Register() error = %v, want %v", err, tt.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatalf("Register() error = %v", err)
			}

			if rec.ID == "" {
				t.Error("record id not assigned")
			}
			if rec.RegistrationStatus != entity.RegistrationPending {
				t.Errorf("status = %q, want pending", rec.RegistrationStatus)
			}
			if tt.input.AmountPaid > 0 {
				if rec.PaidAmount != tt.input.AmountPaid {
					t.Errorf("PaidAmount = %d, want %d", rec.PaidAmount, tt.input.AmountPaid)
				}
				if len(rec.Transactions) != 1 {
					t.Errorf("transactions = %d, want 1", len(rec.Transactions))
				}
			} else {
				if rec.PaidAmount != 0 || len(rec.Transactions) != 0 {
					t.Error("unexpected opening transaction")
				}
			}
			if rec.Balance != rec.TotalAmount-rec.PaidAmount {
				t.Errorf("Balance = %d, want %d", rec.Balance, rec.TotalAmount-rec.PaidAmount)
			}
		})
	}
}

func TestAddTransaction(t *testing.T) {
	repo := newFakePaymentRepo()
	svc := newRegistrationService(repo)
	ctx := context.Background()

	created, err := svc.Register(ctx, RegisterInput{
		Region:      entity.RegionEast,
		Name:        "A. Kumar",
		GroupType:   "Family",
		TotalAmount: 5000,
	})
	if err != nil {
		t.Fatalf("Register() error = %v", err)
	}

	rec, err := svc.AddTransaction(ctx, created.ID, 2000, "first installment")
	if err != nil {
		t.Fatalf("AddTransaction() error = %v", err)
	}
	if rec.PaidAmount != 2000 || rec.Balance != 3000 || rec.PaymentStatus != entity.PaymentStatusPartial {
		t.Errorf("derived state = (%d, %d, %s), want (2000, 3000, partial)",
			rec.PaidAmount, rec.Balance, rec.PaymentStatus)
	}

	rec, err = svc.AddTransaction(ctx, created.ID, 3000, "final installment")
	if err != nil {
		t.Fatalf("AddTransaction() error = %v", err)
	}
	if rec.PaymentStatus != entity.PaymentStatusPaid || rec.Balance != 0 {
		t.Errorf("derived state = (%d, %s), want (0, paid)", rec.Balance, rec.PaymentStatus)
	}

	// persisted state matches the returned record
	stored, _ := repo.GetByID(ctx, created.ID)
	if stored.PaidAmount != 5000 || stored.PaymentStatus != entity.PaymentStatusPaid {
		t.Errorf("stored derived state = (%d, %s), want (5000, paid)", stored.PaidAmount, stored.PaymentStatus)
	}
}

func TestAddTransaction_RejectsNonPositiveAmounts(t *testing.T) {
	repo := newFakePaymentRepo()
	svc := newRegistrationService(repo)
	ctx := context.Background()

	created, _ := svc.Register(ctx, RegisterInput{
		Region: entity.RegionEast, Name: "A. Kumar", GroupType: "Family", TotalAmount: 5000,
	})

	for _, amount := range []int64{0, -500} {
		if _, err := svc.AddTransaction(ctx, created.ID, amount, ""); !errors.Is(err, entity.ErrValidation) {
			t.Errorf("AddTransaction(%d) error = %v, want ErrValidation", amount, err)
		}
	}

	stored, _ := repo.GetByID(ctx, created.ID)
	if len(stored.Transactions) != 0 {
		t.Error("rejected transaction was persisted")
	}
}

func TestAddTransaction_NotFound(t *testing.T) {
	svc := newRegistrationService(newFakePaymentRepo())

	_, err := svc.AddTransaction(context.Background(), "missing", 100, "")
	if !errors.Is(err, entity.ErrNotFound) {
		t.Errorf("AddTransaction(missing) error = %v, want ErrNotFound", err)
	}
}

func TestUpdateDetails_RecalculatesOnFeeChange(t *testing.T) {
	repo := newFakePaymentRepo()
	svc := newRegistrationService(repo)
	ctx := context.Background()

	created, _ := svc.Register(ctx, RegisterInput{
		Region: entity.RegionEast, Name: "A. Kumar", GroupType: "Family",
		TotalAmount: 5000, AmountPaid: 3000,
	})

	newTotal := int64(3000)
	rec, err := svc.UpdateDetails(ctx, created.ID, UpdateDetailsInput{TotalAmount: &newTotal})
	if err != nil {
		t.Fatalf("UpdateDetails() error = %v", err)
	}
	if rec.Balance != 0 || rec.PaymentStatus != entity.PaymentStatusPaid {
		t.Errorf("derived state = (%d, %s), want (0, paid)", rec.Balance, rec.PaymentStatus)
	}
}

func TestUpdateDetails_RejectsEmptyName(t *testing.T) {
	repo := newFakePaymentRepo()
	svc := newRegistrationService(repo)
	ctx := context.Background()

	created, _ := svc.Register(ctx, RegisterInput{
		Region: entity.RegionEast, Name: "A. Kumar", GroupType: "Family", TotalAmount: 5000,
	})

	empty := "  "
	if _, err := svc.UpdateDetails(ctx, created.ID, UpdateDetailsInput{Name: &empty}); !errors.Is(err, entity.ErrValidation) {
		t.Errorf("UpdateDetails(empty name) error = %v, want ErrValidation", err)
	}
}

func TestDelete(t *testing.T) {
	repo := newFakePaymentRepo()
	svc := newRegistrationService(repo)
	ctx := context.Background()

	created, _ := svc.Register(ctx, RegisterInput{
		Region: entity.RegionEast, Name: "A. Kumar", GroupType: "Family", TotalAmount: 5000,
	})

	if err := svc.Delete(ctx, created.ID); err != nil {
		t.Fatalf("Delete() error = %v", err)
	}
	if _, err := svc.Get(ctx, created.ID); !errors.Is(err, entity.ErrNotFound) {
		t.Errorf("Get after Delete error = %v, want ErrNotFound", err)
	}
}

func TestRegister_OpeningInstallmentTimestamp(t *testing.T) {
	svc := newRegistrationService(newFakePaymentRepo())

	paidAt := time.Date(2026, 1, 15, 0, 0, 0, 0, time.UTC)
	rec, err := svc.Register(context.Background(), RegisterInput{
		Region: entity.RegionEast, Name: "A. Kumar", GroupType: "Family",
		TotalAmount: 5000, AmountPaid: 1000, DateOfPayment: paidAt,
	})
	if err != nil {
		t.Fatalf("Register() error = %v", err)
	}
	if !rec.Transactions[0].OccurredAt.Equal(paidAt) {
		t.Errorf("OccurredAt = %v, want %v", rec.Transactions[0].OccurredAt, paidAt)
	}
}
