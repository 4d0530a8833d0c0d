package service

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/xuri/excelize/v2"

	"github.com/spicon/registration/internal/domain/entity"
)

func buildWorkbook(t *testing.T, rows [][]interface{}) *bytes.Buffer {
	t.Helper()
	f := excelize.NewFile()
	defer f.Close()

	sheet := f.GetSheetName(0)
	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		if err != nil {
			t.Fatalf("cell name: %v", err)
		}
		if err := f.SetSheetRow(sheet, cell, &row); err != nil {
			t.Fatalf("set row: %v", err)
		}
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		t.Fatalf("write workbook: %v", err)
	}
	return buf
}

func TestImport_CreatesNewRecords(t *testing.T) {
	repo := newFakePaymentRepo()
	svc := NewImportService(repo, passthroughTxManager{}, mockLogger{})

	buf := buildWorkbook(t, [][]interface{}{
		{"Name", "Phone", "Region", "Group Type", "Total Amount", "Paid Amount"},
		{"A. Kumar", "9000000001", "East Rayalaseema", "Family", "5,000", "2000"},
		{"B. Rao", "9000000002", "West Rayalaseema", "Couple", "3000", ""},
	})

	results, err := svc.Import(context.Background(), buf)
	if err != nil {
		t.Fatalf("Import() error = %v", err)
	}
	if len(results) != 2 {
		t.Fatalf("results = %d, want 2", len(results))
	}
	for _, res := range results {
		if res.Action != "created" {
			t.Errorf("row %d action = %q (%s), want created", res.Row, res.Action, res.Reason)
		}
	}

	rec, err := repo.FindByMobile(context.Background(), "9000000001")
	if err != nil {
		t.Fatalf("imported record not found: %v", err)
	}
	if rec.TotalAmount != 5000 || rec.PaidAmount != 2000 || rec.Balance != 3000 {
		t.Errorf("financials = (%d, %d, %d), want (5000, 2000, 3000)", rec.TotalAmount, rec.PaidAmount, rec.Balance)
	}
	if rec.RegistrationStatus != entity.RegistrationPending {
		t.Errorf("status = %q, want pending", rec.RegistrationStatus)
	}
}

func TestImport_UpdatesExistingByMobile(t *testing.T) {
	repo := newFakePaymentRepo()
	regs := newRegistrationService(repo)
	svc := NewImportService(repo, passthroughTxManager{}, mockLogger{})
	ctx := context.Background()

	created, err := regs.Register(ctx, RegisterInput{
		Region: entity.RegionEast, Name: "A. Kumar", Mobile: "9000000001",
		GroupType: "Family", TotalAmount: 5000, AmountPaid: 1000,
	})
	if err != nil {
		t.Fatalf("Register() error = %v", err)
	}

	buf := buildWorkbook(t, [][]interface{}{
		{"Name", "Phone", "Region", "Paid Amount"},
		{"A Kumar (sheet spelling)", "9000000001", "East Rayalaseema", "2500"},
	})

	results, err := svc.Import(ctx, buf)
	if err != nil {
		t.Fatalf("Import() error = %v", err)
	}
	if results[0].Action != "updated" || results[0].RecordID != created.ID {
		t.Fatalf("result = %+v, want update of %s", results[0], created.ID)
	}

	rec, _ := repo.GetByID(ctx, created.ID)
	if rec.PaidAmount != 3500 || len(rec.Transactions) != 2 {
		t.Errorf("after import: paid=%d txns=%d, want 3500 and 2", rec.PaidAmount, len(rec.Transactions))
	}
}

func TestImport_MatchesByNameWithoutMobile(t *testing.T) {
	repo := newFakePaymentRepo()
	regs := newRegistrationService(repo)
	svc := NewImportService(repo, passthroughTxManager{}, mockLogger{})
	ctx := context.Background()

	created, err := regs.Register(ctx, RegisterInput{
		Region: entity.RegionEast, Name: "B. Rao", GroupType: "Couple", TotalAmount: 3000,
	})
	if err != nil {
		t.Fatalf("Register() error = %v", err)
	}

	buf := buildWorkbook(t, [][]interface{}{
		{"Name", "Paid Amount"},
		{"B. Rao", "3000"},
	})

	results, err := svc.Import(ctx, buf)
	if err != nil {
		t.Fatalf("Import() error = %v", err)
	}
	if results[0].Action != "updated" || results[0].RecordID != created.ID {
		t.Fatalf("result = %+v, want update of %s", results[0], created.ID)
	}

	rec, _ := repo.GetByID(ctx, created.ID)
	if rec.PaymentStatus != entity.PaymentStatusPaid {
		t.Errorf("status = %q, want paid", rec.PaymentStatus)
	}
}

func TestImport_SkipsBadRows(t *testing.T) {
	repo := newFakePaymentRepo()
	svc := NewImportService(repo, passthroughTxManager{}, mockLogger{})

	buf := buildWorkbook(t, [][]interface{}{
		{"Name", "Phone", "Region", "Total Amount"},
		{"", "9000000009", "East Rayalaseema", "5000"},
		{"C. Devi", "9000000003", "Nellore", "5000"},
		{"D. Reddy", "9000000004", "East Rayalaseema", "5000"},
	})

	results, err := svc.Import(context.Background(), buf)
	if err != nil {
		t.Fatalf("Import() error = %v", err)
	}

	if results[0].Action != "skipped" || !strings.Contains(results[0].Reason, "name") {
		t.Errorf("row 2 = %+v, want skipped for missing name", results[0])
	}
	if results[1].Action != "skipped" || !strings.Contains(results[1].Reason, "region") {
		t.Errorf("row 3 = %+v, want skipped for unknown region", results[1])
	}
	if results[2].Action != "created" {
		t.Errorf("row 4 = %+v, want created", results[2])
	}
}

func TestImport_RejectsUnreadableInput(t *testing.T) {
	svc := NewImportService(newFakePaymentRepo(), passthroughTxManager{}, mockLogger{})

	_, err := svc.Import(context.Background(), strings.NewReader("not a workbook"))
	if err == nil {
		t.Fatal("Import(garbage) expected error")
	}
}

func TestImport_RejectsEmptyWorkbook(t *testing.T) {
	svc := NewImportService(newFakePaymentRepo(), passthroughTxManager{}, mockLogger{})

	buf := buildWorkbook(t, [][]interface{}{
		{"Name", "Phone"},
	})
	if _, err := svc.Import(context.Background(), buf); err == nil {
		t.Fatal("Import(header only) expected error")
	}
}
