package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/spicon/registration/internal/application/port"
	appwf "github.com/spicon/registration/internal/application/workflow"
	"github.com/spicon/registration/internal/domain/entity"
	domainwf "github.com/spicon/registration/internal/domain/workflow"
	"github.com/spicon/registration/pkg/utils"
)

// SubmitExpenseInput carries a new worker expense claim
type SubmitExpenseInput struct {
	WorkerID    string
	Region      entity.Region
	Title       string
	Amount      int64
	Description string
	Images      []string
}

// PayExpenseInput carries the cashier payout details
type PayExpenseInput struct {
	PaidBy string
	Note   string
	Images []string
}

// ExpenseService runs the worker expense workflow. Every status change
// fires the expense state machine first; a disallowed transition surfaces
// as entity.ErrConflict rather than silently overwriting the status.
type ExpenseService interface {
	Submit(ctx context.Context, input SubmitExpenseInput) (*entity.WorkerRequest, error)
	Get(ctx context.Context, id string) (*entity.WorkerRequest, error)
	ListAll(ctx context.Context) ([]*entity.WorkerRequest, error)
	ListByWorker(ctx context.Context, workerID string) ([]*entity.WorkerRequest, error)
	Approve(ctx context.Context, id, approvedBy string) (*entity.WorkerRequest, error)
	Reject(ctx context.Context, id, reason string) (*entity.WorkerRequest, error)
	Pay(ctx context.Context, id string, input PayExpenseInput) (*entity.WorkerRequest, error)
	ConfirmReceived(ctx context.Context, id string) (*entity.WorkerRequest, error)
	RequestExtra(ctx context.Context, id string, amount int64) (*entity.WorkerRequest, error)
	RequestReturn(ctx context.Context, id string, amount int64) (*entity.WorkerRequest, error)
}

type expenseServiceImpl struct {
	requests  port.WorkerRequestRepository
	txManager port.TransactionManager
	logger    Logger
}

// NewExpenseService creates a new ExpenseService
func NewExpenseService(
	requests port.WorkerRequestRepository,
	txManager port.TransactionManager,
	logger Logger,
) ExpenseService {
	return &expenseServiceImpl{
		requests:  requests,
		txManager: txManager,
		logger:    logger,
	}
}

// Submit creates a pending expense claim
func (s *expenseServiceImpl) Submit(ctx context.Context, input SubmitExpenseInput) (*entity.WorkerRequest, error) {
	if strings.TrimSpace(input.WorkerID) == "" {
		return nil, fmt.Errorf("%w: worker id is required", entity.ErrValidation)
	}
	if strings.TrimSpace(input.Title) == "" {
		return nil, fmt.Errorf("%w: title is required", entity.ErrValidation)
	}
	if err := utils.ValidateAmount(input.Amount); err != nil {
		return nil, fmt.Errorf("%w: %v", entity.ErrValidation, err)
	}
	if !input.Region.IsValid() {
		return nil, fmt.Errorf("%w: unknown region %q", entity.ErrValidation, input.Region)
	}

	now := time.Now()
	req := &entity.WorkerRequest{
		ID:           uuid.NewString(),
		WorkerID:     input.WorkerID,
		Region:       input.Region,
		Title:        utils.SanitizeString(input.Title),
		Amount:       input.Amount,
		Description:  utils.SanitizeString(input.Description),
		Status:       entity.RequestPending,
		WorkerImages: input.Images,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	if err := s.requests.Create(ctx, req); err != nil {
		s.logger.Error("Failed to create worker request", "error", err, "worker_id", input.WorkerID)
		return nil, fmt.Errorf("create worker request: %w", err)
	}

	s.logger.Info("Worker request submitted",
		"request_id", req.ID,
		"worker_id", req.WorkerID,
		"amount", req.Amount)
	return req, nil
}

// Get retrieves a request by id
func (s *expenseServiceImpl) Get(ctx context.Context, id string) (*entity.WorkerRequest, error) {
	return s.requests.GetByID(ctx, id)
}

// ListAll returns all requests, newest first
func (s *expenseServiceImpl) ListAll(ctx context.Context) ([]*entity.WorkerRequest, error) {
	return s.requests.List(ctx)
}

// ListByWorker returns a worker's own requests, newest first
func (s *expenseServiceImpl) ListByWorker(ctx context.Context, workerID string) ([]*entity.WorkerRequest, error) {
	return s.requests.ListByWorker(ctx, workerID)
}

// Approve moves pending -> approved
func (s *expenseServiceImpl) Approve(ctx context.Context, id, approvedBy string) (*entity.WorkerRequest, error) {
	return s.transition(ctx, id, domainwf.TriggerApprove, func(req *entity.WorkerRequest, now time.Time) error {
		req.ApprovedAt = &now
		req.ApprovedBy = approvedBy
		return nil
	})
}

// Reject moves pending -> rejected; terminal
func (s *expenseServiceImpl) Reject(ctx context.Context, id, reason string) (*entity.WorkerRequest, error) {
	return s.transition(ctx, id, domainwf.TriggerReject, func(req *entity.WorkerRequest, now time.Time) error {
		req.RejectedAt = &now
		req.RejectionReason = reason
		return nil
	})
}

// Pay moves approved -> paid, recording the cashier's proof images
func (s *expenseServiceImpl) Pay(ctx context.Context, id string, input PayExpenseInput) (*entity.WorkerRequest, error) {
	return s.transition(ctx, id, domainwf.TriggerPay, func(req *entity.WorkerRequest, now time.Time) error {
		req.PaidAt = &now
		req.PaidBy = input.PaidBy
		req.PaymentNote = input.Note
		req.CashierImages = append(req.CashierImages, input.Images...)
		return nil
	})
}

// ConfirmReceived moves paid -> received; terminal
func (s *expenseServiceImpl) ConfirmReceived(ctx context.Context, id string) (*entity.WorkerRequest, error) {
	return s.transition(ctx, id, domainwf.TriggerConfirmReceive, func(req *entity.WorkerRequest, now time.Time) error {
		req.ReceivedAt = &now
		return nil
	})
}

// RequestExtra records an extra-amount request. The branch has no
// automated follow-up; it waits for manual resolution.
func (s *expenseServiceImpl) RequestExtra(ctx context.Context, id string, amount int64) (*entity.WorkerRequest, error) {
	if amount <= 0 {
		return nil, fmt.Errorf("%w: amount must be positive", entity.ErrValidation)
	}
	return s.transition(ctx, id, domainwf.TriggerRequestExtra, func(req *entity.WorkerRequest, now time.Time) error {
		req.ExtraRequested = amount
		return nil
	})
}

// RequestReturn records a return-amount request; same dead-end branch as
// RequestExtra
func (s *expenseServiceImpl) RequestReturn(ctx context.Context, id string, amount int64) (*entity.WorkerRequest, error) {
	if amount <= 0 {
		return nil, fmt.Errorf("%w: amount must be positive", entity.ErrValidation)
	}
	return s.transition(ctx, id, domainwf.TriggerRequestReturn, func(req *entity.WorkerRequest, now time.Time) error {
		req.ReturnRequested = amount
		return nil
	})
}

// transition loads the request, fires the trigger against the expense
// machine, applies side effects and persists, all in one transaction
func (s *expenseServiceImpl) transition(
	ctx context.Context,
	id string,
	trigger domainwf.Trigger,
	apply func(req *entity.WorkerRequest, now time.Time) error,
) (*entity.WorkerRequest, error) {
	var req *entity.WorkerRequest

	err := s.txManager.WithTransaction(ctx, func(txCtx context.Context) error {
		var err error
		req, err = s.requests.GetByID(txCtx, id)
		if err != nil {
			return err
		}

		machine, err := appwf.BuildExpenseMachine(req.Status)
		if err != nil {
			return fmt.Errorf("%w: request status %q", entity.ErrConflict, req.Status)
		}

		newState, err := machine.Fire(trigger)
		if err != nil {
			return fmt.Errorf("%w: cannot %s a %s request", entity.ErrConflict, trigger, req.Status)
		}

		now := time.Now()
		req.Status = newState.String()
		req.UpdatedAt = now
		if err := apply(req, now); err != nil {
			return err
		}

		return s.requests.Update(txCtx, req)
	})
	if err != nil {
		s.logger.Error("Worker request transition failed",
			"error", err, "request_id", id, "trigger", trigger.String())
		return nil, err
	}

	s.logger.Info("Worker request transitioned",
		"request_id", req.ID,
		"trigger", trigger.String(),
		"status", req.Status)
	return req, nil
}
