package service

import (
	"context"
	"fmt"

	"github.com/spicon/registration/internal/application/port"
)

// PaymentSummary aggregates the financial position across all payment
// records. Reads are lock-free and may trail in-flight writes.
type PaymentSummary struct {
	TotalAmount int64 `json:"total_amount"`
	TotalPaid   int64 `json:"total_paid"`
	Balance     int64 `json:"balance"`
}

// SummaryService produces the cashier and admin dashboard aggregates
type SummaryService interface {
	PaymentSummary(ctx context.Context) (*PaymentSummary, error)
	ExpenseSummary(ctx context.Context) (*port.ExpenseSummary, error)
}

type summaryServiceImpl struct {
	records  port.PaymentRecordRepository
	requests port.WorkerRequestRepository
	logger   Logger
}

// NewSummaryService creates a new SummaryService
func NewSummaryService(
	records port.PaymentRecordRepository,
	requests port.WorkerRequestRepository,
	logger Logger,
) SummaryService {
	return &summaryServiceImpl{
		records:  records,
		requests: requests,
		logger:   logger,
	}
}

// PaymentSummary sums fee totals and collected amounts over all records
func (s *summaryServiceImpl) PaymentSummary(ctx context.Context) (*PaymentSummary, error) {
	total, paid, err := s.records.Totals(ctx)
	if err != nil {
		s.logger.Error("Failed to load payment totals", "error", err)
		return nil, fmt.Errorf("payment totals: %w", err)
	}

	return &PaymentSummary{
		TotalAmount: total,
		TotalPaid:   paid,
		Balance:     total - paid,
	}, nil
}

// ExpenseSummary counts worker requests per status and sums their amounts
func (s *summaryServiceImpl) ExpenseSummary(ctx context.Context) (*port.ExpenseSummary, error) {
	summary, err := s.requests.Summary(ctx)
	if err != nil {
		s.logger.Error("Failed to load expense summary", "error", err)
		return nil, fmt.Errorf("expense summary: %w", err)
	}
	return summary, nil
}
