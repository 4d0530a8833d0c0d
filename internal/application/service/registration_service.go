package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/spicon/registration/internal/application/port"
	"github.com/spicon/registration/internal/domain/entity"
	"github.com/spicon/registration/internal/domain/ledger"
	"github.com/spicon/registration/pkg/utils"
)

// Logger interface for minimal logging dependency
type Logger interface {
	Info(msg string, keysAndValues ...interface{})
	Error(msg string, keysAndValues ...interface{})
}

// RegisterInput carries the registration form
type RegisterInput struct {
	Region     entity.Region
	Name       string
	Email      string
	Mobile     string
	District   string
	GroupType  string
	SpouseName string
	FamilySize int
	ArrivalDay string

	TotalAmount int64

	// Optional opening installment paid with the form
	AmountPaid    int64
	PaymentNote   string
	DateOfPayment time.Time

	PaymentScreenshot string
}

// UpdateDetailsInput carries editable record fields; nil means unchanged
type UpdateDetailsInput struct {
	Name        *string
	Email       *string
	Mobile      *string
	District    *string
	GroupType   *string
	TotalAmount *int64
}

// RegistrationService manages payment records and their transaction ledger
type RegistrationService interface {
	Register(ctx context.Context, input RegisterInput) (*entity.PaymentRecord, error)
	Get(ctx context.Context, id string) (*entity.PaymentRecord, error)
	List(ctx context.Context, limit, offset int) ([]*entity.PaymentRecord, error)
	AddTransaction(ctx context.Context, id string, amount int64, note string) (*entity.PaymentRecord, error)
	UpdateDetails(ctx context.Context, id string, input UpdateDetailsInput) (*entity.PaymentRecord, error)
	AttachScreenshot(ctx context.Context, id, storedName string) error
	Delete(ctx context.Context, id string) error
}

type registrationServiceImpl struct {
	records   port.PaymentRecordRepository
	txManager port.TransactionManager
	logger    Logger
}

// NewRegistrationService creates a new RegistrationService
func NewRegistrationService(
	records port.PaymentRecordRepository,
	txManager port.TransactionManager,
	logger Logger,
) RegistrationService {
	return &registrationServiceImpl{
		records:   records,
		txManager: txManager,
		logger:    logger,
	}
}

// Register creates a payment record in pending state, with the opening
// installment (if any) already on the ledger
func (s *registrationServiceImpl) Register(ctx context.Context, input RegisterInput) (*entity.PaymentRecord, error) {
	if err := validateRegisterInput(input); err != nil {
		return nil, err
	}

	now := time.Now()
	rec := &entity.PaymentRecord{
		ID:                 uuid.NewString(),
		Region:             input.Region,
		Name:               strings.TrimSpace(input.Name),
		Email:              input.Email,
		Mobile:             input.Mobile,
		District:           input.District,
		GroupType:          input.GroupType,
		SpouseName:         input.SpouseName,
		FamilySize:         input.FamilySize,
		ArrivalDay:         input.ArrivalDay,
		RegistrationStatus: entity.RegistrationPending,
		PaymentScreenshot:  input.PaymentScreenshot,
		CreatedAt:          now,
		UpdatedAt:          now,
	}

	if err := ledger.SetTotalAmount(rec, input.TotalAmount); err != nil {
		return nil, err
	}

	if input.AmountPaid > 0 {
		if err := ledger.Append(rec, input.AmountPaid, input.PaymentNote, input.DateOfPayment); err != nil {
			return nil, err
		}
	}

	if err := s.records.Create(ctx, rec); err != nil {
		s.logger.Error("Failed to create payment record", "error", err, "name", rec.Name)
		return nil, fmt.Errorf("create payment record: %w", err)
	}

	s.logger.Info("Payment record created",
		"id", rec.ID,
		"region", rec.Region.String(),
		"group_type", rec.GroupType,
		"total_amount", rec.TotalAmount)
	return rec, nil
}

// Get retrieves a record with its transaction history
func (s *registrationServiceImpl) Get(ctx context.Context, id string) (*entity.PaymentRecord, error) {
	rec, err := s.records.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	return rec, nil
}

// List returns records newest first; reads are lock-free
func (s *registrationServiceImpl) List(ctx context.Context, limit, offset int) ([]*entity.PaymentRecord, error) {
	return s.records.List(ctx, limit, offset)
}

// AddTransaction appends an installment and persists the recalculated
// financial state atomically
func (s *registrationServiceImpl) AddTransaction(ctx context.Context, id string, amount int64, note string) (*entity.PaymentRecord, error) {
	var rec *entity.PaymentRecord

	err := s.txManager.WithTransaction(ctx, func(txCtx context.Context) error {
		var err error
		rec, err = s.records.GetByID(txCtx, id)
		if err != nil {
			return err
		}

		if err := ledger.Append(rec, amount, note, time.Now()); err != nil {
			return err
		}

		txn := &rec.Transactions[len(rec.Transactions)-1]
		if err := s.records.AppendTransaction(txCtx, txn); err != nil {
			return fmt.Errorf("append transaction: %w", err)
		}

		rec.UpdatedAt = time.Now()
		if err := s.records.Update(txCtx, rec); err != nil {
			return fmt.Errorf("update record: %w", err)
		}
		return nil
	})
	if err != nil {
		s.logger.Error("Failed to add transaction", "error", err, "record_id", id, "amount", amount)
		return nil, err
	}

	s.logger.Info("Installment recorded",
		"record_id", id,
		"amount", amount,
		"paid_amount", rec.PaidAmount,
		"balance", rec.Balance,
		"status", rec.PaymentStatus)
	return rec, nil
}

// UpdateDetails edits registrant fields and, if the fee changed,
// recalculates the derived state in the same transaction
func (s *registrationServiceImpl) UpdateDetails(ctx context.Context, id string, input UpdateDetailsInput) (*entity.PaymentRecord, error) {
	var rec *entity.PaymentRecord

	err := s.txManager.WithTransaction(ctx, func(txCtx context.Context) error {
		var err error
		rec, err = s.records.GetByID(txCtx, id)
		if err != nil {
			return err
		}

		if input.Name != nil {
			if strings.TrimSpace(*input.Name) == "" {
				return fmt.Errorf("%w: name must not be empty", entity.ErrValidation)
			}
			rec.Name = strings.TrimSpace(*input.Name)
		}
		if input.Email != nil {
			rec.Email = *input.Email
		}
		if input.Mobile != nil {
			rec.Mobile = *input.Mobile
		}
		if input.District != nil {
			rec.District = *input.District
		}
		if input.GroupType != nil {
			rec.GroupType = *input.GroupType
		}
		if input.TotalAmount != nil {
			if err := ledger.SetTotalAmount(rec, *input.TotalAmount); err != nil {
				return err
			}
		}

		rec.UpdatedAt = time.Now()
		if err := s.records.Update(txCtx, rec); err != nil {
			return fmt.Errorf("update record: %w", err)
		}
		return nil
	})
	if err != nil {
		s.logger.Error("Failed to update payment record", "error", err, "record_id", id)
		return nil, err
	}

	return rec, nil
}

// AttachScreenshot stores the uploaded payment screenshot file name
func (s *registrationServiceImpl) AttachScreenshot(ctx context.Context, id, storedName string) error {
	return s.txManager.WithTransaction(ctx, func(txCtx context.Context) error {
		rec, err := s.records.GetByID(txCtx, id)
		if err != nil {
			return err
		}
		rec.PaymentScreenshot = storedName
		rec.UpdatedAt = time.Now()
		return s.records.Update(txCtx, rec)
	})
}

// Delete removes a record; administrative use only
func (s *registrationServiceImpl) Delete(ctx context.Context, id string) error {
	if err := s.records.Delete(ctx, id); err != nil {
		s.logger.Error("Failed to delete payment record", "error", err, "record_id", id)
		return err
	}
	s.logger.Info("Payment record deleted", "record_id", id)
	return nil
}

func validateRegisterInput(input RegisterInput) error {
	if !input.Region.IsValid() {
		return fmt.Errorf("%w: unknown region %q", entity.ErrValidation, input.Region)
	}
	if strings.TrimSpace(input.Name) == "" {
		return fmt.Errorf("%w: name is required", entity.ErrValidation)
	}
	if strings.TrimSpace(input.GroupType) == "" {
		return fmt.Errorf("%w: group type is required", entity.ErrValidation)
	}
	if input.TotalAmount < 0 {
		return fmt.Errorf("%w: total amount must not be negative", entity.ErrValidation)
	}
	if input.AmountPaid < 0 {
		return fmt.Errorf("%w: amount paid must not be negative", entity.ErrValidation)
	}
	if input.Email != "" {
		if err := utils.ValidateEmail(input.Email); err != nil {
			return fmt.Errorf("%w: %v", entity.ErrValidation, err)
		}
	}
	if input.Mobile != "" {
		if err := utils.ValidateMobile(input.Mobile); err != nil {
			return fmt.Errorf("%w: %v", entity.ErrValidation, err)
		}
	}
	return nil
}
