package export

import (
	"bytes"
	"context"
	"errors"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/xuri/excelize/v2"

	"github.com/koyamadev/stockkeeper-backend/internal/reports"
	"github.com/koyamadev/stockkeeper-backend/pkg/logger"
)

type stubSummaries struct {
	summary reports.MonthlySummary
	err     error
}

func (s *stubSummaries) MonthlySummary(context.Context, int, int) (*reports.MonthlySummary, error) {
	if s.err != nil {
		return nil, s.err
	}
	return &s.summary, nil
}

func fixtureSummary() reports.MonthlySummary {
	return reports.MonthlySummary{
		Year:  2024,
		Month: 3,
		Label: "2024-03",
		Suppliers: []reports.SupplierRow{{
			SupplierName:      "acme",
			PreviousBalance:   decimal.NewFromInt(1000),
			Purchase:          decimal.NewFromInt(90),
			PurchaseTax:       decimal.NewFromInt(99),
			Usage:             decimal.NewFromInt(30),
			CalculatedBalance: decimal.NewFromInt(1060),
			DisplayStock:      decimal.NewFromInt(500),
		}},
		GrandTotal: reports.SupplierRow{
			Purchase: decimal.NewFromInt(90),
			Usage:    decimal.NewFromInt(30),
		},
		Products: []reports.ProductRow{{
			ProductName:      "beans",
			SupplierName:     "acme",
			UnitPrice:        decimal.NewFromInt(100),
			PrevMonthStock:   1,
			Purchase:         10,
			Usage:            8,
			ThisMonthBalance: 3,
			CurrentStock:     5,
			Diff:             2,
		}},
	}
}

func newTestService(t *testing.T, src summarySource) Service {
	t.Helper()
	svc, err := NewService(src, logger.New(logger.Options{ServiceName: "export-test"}))
	if err != nil {
		t.Fatalf("construct service: %v", err)
	}
	return svc
}

func TestMonthlyWorkbookLayout(t *testing.T) {
	svc := newTestService(t, &stubSummaries{summary: fixtureSummary()})

	data, filename, err := svc.MonthlyWorkbook(context.Background(), 2024, 3)
	if err != nil {
		t.Fatalf("workbook: %v", err)
	}
	if filename != "summary-2024-03.xlsx" {
		t.Fatalf("unexpected filename %q", filename)
	}

	f, err := excelize.OpenReader(bytes.NewReader(data))
	if err != nil {
		t.Fatalf("reopen workbook: %v", err)
	}
	defer f.Close()

	checks := []struct {
		sheet, cell, want string
	}{
		{"Suppliers", "A1", "Supplier"},
		{"Suppliers", "A2", "acme"},
		{"Suppliers", "C2", "90.00"},
		{"Suppliers", "D2", "99.00"},
		{"Suppliers", "G2", "1060.00"},
		{"Suppliers", "A3", "TOTAL"},
		{"Suppliers", "C3", "90.00"},
		{"Products", "A2", "beans"},
		{"Products", "H2", "3"},
		{"Products", "I2", "5"},
		{"Products", "J2", "2"},
	}
	for _, c := range checks {
		got, err := f.GetCellValue(c.sheet, c.cell)
		if err != nil {
			t.Fatalf("read %s!%s: %v", c.sheet, c.cell, err)
		}
		if got != c.want {
			t.Errorf("%s!%s = %q, want %q", c.sheet, c.cell, got, c.want)
		}
	}

	sheets := f.GetSheetList()
	for _, name := range sheets {
		if name == "Sheet1" {
			t.Fatalf("default sheet should be removed, got %v", sheets)
		}
	}
}

func TestMonthlyWorkbookPropagatesSummaryError(t *testing.T) {
	svc := newTestService(t, &stubSummaries{err: errors.New("invalid month")})
	if _, _, err := svc.MonthlyWorkbook(context.Background(), 2024, 13); err == nil {
		t.Fatalf("expected error")
	}
}
