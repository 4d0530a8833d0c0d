package service

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/xuri/excelize/v2"

	"github.com/spicon/registration/internal/application/port"
	"github.com/spicon/registration/internal/domain/entity"
	"github.com/spicon/registration/internal/domain/ledger"
)

// ImportResult reports what happened to one spreadsheet row
type ImportResult struct {
	Row      int    `json:"row"`
	Action   string `json:"action"` // created, updated, skipped
	RecordID string `json:"record_id,omitempty"`
	Name     string `json:"name,omitempty"`
	Reason   string `json:"reason,omitempty"`
}

// ImportService bulk-loads payment records from an Excel workbook. Rows
// are matched to existing records by mobile number, falling back to name;
// matches get the paid amount appended as an installment, everything else
// becomes a new pending record.
type ImportService interface {
	Import(ctx context.Context, r io.Reader) ([]ImportResult, error)
}

type importServiceImpl struct {
	records   port.PaymentRecordRepository
	txManager port.TransactionManager
	logger    Logger
}

// NewImportService creates a new ImportService
func NewImportService(
	records port.PaymentRecordRepository,
	txManager port.TransactionManager,
	logger Logger,
) ImportService {
	return &importServiceImpl{
		records:   records,
		txManager: txManager,
		logger:    logger,
	}
}

// Import reads the first sheet of the workbook. The first row is the
// header; recognized columns (case-insensitive): name, phone/mobile,
// region, group type, total amount/amount, paid amount/paid.
func (s *importServiceImpl) Import(ctx context.Context, r io.Reader) ([]ImportResult, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, fmt.Errorf("%w: not a readable workbook: %v", entity.ErrValidation, err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, fmt.Errorf("%w: workbook has no sheets", entity.ErrValidation)
	}

	rows, err := f.GetRows(sheets[0])
	if err != nil {
		return nil, fmt.Errorf("read sheet %q: %w", sheets[0], err)
	}
	if len(rows) < 2 {
		return nil, fmt.Errorf("%w: workbook has no data rows", entity.ErrValidation)
	}

	columns := headerIndex(rows[0])
	results := make([]ImportResult, 0, len(rows)-1)

	for i, row := range rows[1:] {
		rowNum := i + 2 // 1-based, after the header
		result := s.importRow(ctx, columns, row, rowNum)
		results = append(results, result)
	}

	s.logger.Info("Workbook import finished", "rows", len(results))
	return results, nil
}

func (s *importServiceImpl) importRow(ctx context.Context, columns map[string]int, row []string, rowNum int) ImportResult {
	name := strings.TrimSpace(cell(row, columns, "name"))
	if name == "" {
		return ImportResult{Row: rowNum, Action: "skipped", Reason: "missing name"}
	}

	mobile := strings.TrimSpace(cell(row, columns, "phone", "mobile"))
	totalAmount := parseAmount(cell(row, columns, "total amount", "totalamount", "amount"))
	paidAmount := parseAmount(cell(row, columns, "paid amount", "paidamount", "paid"))

	existing, err := s.findExisting(ctx, mobile, name)
	if err != nil {
		return ImportResult{Row: rowNum, Action: "skipped", Name: name, Reason: err.Error()}
	}

	if existing != nil {
		if err := s.updateExisting(ctx, existing, totalAmount, paidAmount, rowNum); err != nil {
			s.logger.Error("Import row update failed", "error", err, "row", rowNum, "record_id", existing.ID)
			return ImportResult{Row: rowNum, Action: "skipped", Name: name, Reason: err.Error()}
		}
		return ImportResult{Row: rowNum, Action: "updated", RecordID: existing.ID, Name: name}
	}

	region := entity.Region(strings.TrimSpace(cell(row, columns, "region")))
	if !region.IsValid() {
		return ImportResult{Row: rowNum, Action: "skipped", Name: name, Reason: "unknown region"}
	}

	rec := &entity.PaymentRecord{
		ID:                 uuid.NewString(),
		Region:             region,
		Name:               name,
		Mobile:             mobile,
		District:           strings.TrimSpace(cell(row, columns, "district")),
		GroupType:          strings.TrimSpace(cell(row, columns, "group type", "grouptype")),
		RegistrationStatus: entity.RegistrationPending,
		CreatedAt:          time.Now(),
		UpdatedAt:          time.Now(),
	}
	if rec.GroupType == "" {
		rec.GroupType = "General"
	}

	if err := ledger.SetTotalAmount(rec, totalAmount); err != nil {
		return ImportResult{Row: rowNum, Action: "skipped", Name: name, Reason: err.Error()}
	}
	if paidAmount > 0 {
		if err := ledger.Append(rec, paidAmount, fmt.Sprintf("imported row %d", rowNum), time.Now()); err != nil {
			return ImportResult{Row: rowNum, Action: "skipped", Name: name, Reason: err.Error()}
		}
	}

	if err := s.records.Create(ctx, rec); err != nil {
		s.logger.Error("Import row create failed", "error", err, "row", rowNum, "name", name)
		return ImportResult{Row: rowNum, Action: "skipped", Name: name, Reason: "store error"}
	}

	return ImportResult{Row: rowNum, Action: "created", RecordID: rec.ID, Name: name}
}

func (s *importServiceImpl) findExisting(ctx context.Context, mobile, name string) (*entity.PaymentRecord, error) {
	if mobile != "" {
		rec, err := s.records.FindByMobile(ctx, mobile)
		if err == nil {
			return rec, nil
		}
		if !isNotFound(err) {
			return nil, err
		}
	}

	rec, err := s.records.FindByName(ctx, name)
	if err == nil {
		return rec, nil
	}
	if !isNotFound(err) {
		return nil, err
	}
	return nil, nil
}

func (s *importServiceImpl) updateExisting(ctx context.Context, rec *entity.PaymentRecord, totalAmount, paidAmount int64, rowNum int) error {
	return s.txManager.WithTransaction(ctx, func(txCtx context.Context) error {
		fresh, err := s.records.GetByID(txCtx, rec.ID)
		if err != nil {
			return err
		}

		if paidAmount > 0 {
			if err := ledger.Append(fresh, paidAmount, fmt.Sprintf("imported row %d", rowNum), time.Now()); err != nil {
				return err
			}
			txn := &fresh.Transactions[len(fresh.Transactions)-1]
			if err := s.records.AppendTransaction(txCtx, txn); err != nil {
				return err
			}
		}

		if totalAmount > 0 {
			if err := ledger.SetTotalAmount(fresh, totalAmount); err != nil {
				return err
			}
		}

		fresh.UpdatedAt = time.Now()
		if err := s.records.Update(txCtx, fresh); err != nil {
			return err
		}

		*rec = *fresh
		return nil
	})
}

// headerIndex maps lowercased, trimmed header names to column positions
func headerIndex(header []string) map[string]int {
	columns := make(map[string]int, len(header))
	for i, h := range header {
		key := strings.ToLower(strings.TrimSpace(h))
		if key != "" {
			columns[key] = i
		}
	}
	return columns
}

// cell returns the first non-empty value among the candidate column names
func cell(row []string, columns map[string]int, names ...string) string {
	for _, name := range names {
		if idx, ok := columns[name]; ok && idx < len(row) {
			if v := row[idx]; v != "" {
				return v
			}
		}
	}
	return ""
}

func parseAmount(raw string) int64 {
	raw = strings.TrimSpace(strings.ReplaceAll(raw, ",", ""))
	if raw == "" {
		return 0
	}
	if n, err := strconv.ParseInt(raw, 10, 64); err == nil {
		return n
	}
	// Spreadsheets often format whole amounts as decimals
	if fl, err := strconv.ParseFloat(raw, 64); err == nil {
		return int64(fl)
	}
	return 0
}

func isNotFound(err error) bool {
	return errors.Is(err, entity.ErrNotFound)
}
