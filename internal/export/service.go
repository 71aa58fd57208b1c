package export

import (
	"bytes"
	"context"
	"fmt"

	"github.com/xuri/excelize/v2"

	"github.com/koyamadev/stockkeeper-backend/internal/reports"
	pkgerrors "github.com/koyamadev/stockkeeper-backend/pkg/errors"
	"github.com/koyamadev/stockkeeper-backend/pkg/logger"
)

const (
	suppliersSheet = "Suppliers"
	productsSheet  = "Products"
)

// ContentType is the MIME type for the generated workbooks.
const ContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

// Service renders monthly summaries as XLSX workbooks.
type Service interface {
	MonthlyWorkbook(ctx context.Context, year, month int) ([]byte, string, error)
}

type summarySource interface {
	MonthlySummary(ctx context.Context, year, month int) (*reports.MonthlySummary, error)
}

type service struct {
	summaries summarySource
	log       *logger.Logger
}

func NewService(summaries summarySource, log *logger.Logger) (Service, error) {
	if summaries == nil {
		return nil, pkgerrors.New(pkgerrors.CodeInternal, "export service requires a summary source")
	}
	if log == nil {
		return nil, pkgerrors.New(pkgerrors.CodeInternal, "export service requires a logger")
	}
	return &service{summaries: summaries, log: log}, nil
}

// MonthlyWorkbook returns the workbook bytes and a download filename.
func (s *service) MonthlyWorkbook(ctx context.Context, year, month int) ([]byte, string, error) {
	summary, err := s.summaries.MonthlySummary(ctx, year, month)
	if err != nil {
		return nil, "", err
	}

	f := excelize.NewFile()
	defer f.Close()

	if err := writeSuppliersSheet(f, summary); err != nil {
		return nil, "", pkgerrors.Wrap(pkgerrors.CodeInternal, err, "writing suppliers sheet")
	}
	if err := writeProductsSheet(f, summary); err != nil {
		return nil, "", pkgerrors.Wrap(pkgerrors.CodeInternal, err, "writing products sheet")
	}
	// Drop excelize's default sheet so the workbook opens on suppliers.
	if err := f.DeleteSheet("Sheet1"); err != nil {
		return nil, "", pkgerrors.Wrap(pkgerrors.CodeInternal, err, "removing default sheet")
	}

	var buf bytes.Buffer
	if err := f.Write(&buf); err != nil {
		return nil, "", pkgerrors.Wrap(pkgerrors.CodeInternal, err, "serializing workbook")
	}

	filename := fmt.Sprintf("summary-%s.xlsx", summary.Label)
	return buf.Bytes(), filename, nil
}

func writeSuppliersSheet(f *excelize.File, summary *reports.MonthlySummary) error {
	if _, err := f.NewSheet(suppliersSheet); err != nil {
		return err
	}

	header := []any{
		"Supplier", "Previous Balance", "Purchase", "Purchase (Tax)",
		"Stock In", "Usage", "Balance", "Display Stock",
	}
	if err := f.SetSheetRow(suppliersSheet, "A1", &header); err != nil {
		return err
	}

	rows := append([]reports.SupplierRow{}, summary.Suppliers...)
	rows = append(rows, summary.GrandTotal)
	for i, row := range rows {
		name := row.SupplierName
		if i == len(rows)-1 {
			name = "TOTAL"
		}
		cells := []any{
			name,
			row.PreviousBalance.StringFixed(2),
			row.Purchase.StringFixed(2),
			row.PurchaseTax.StringFixed(2),
			row.StockIn.StringFixed(2),
			row.Usage.StringFixed(2),
			row.CalculatedBalance.StringFixed(2),
			row.DisplayStock.StringFixed(2),
		}
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		if err := f.SetSheetRow(suppliersSheet, cell, &cells); err != nil {
			return err
		}
	}
	return nil
}

func writeProductsSheet(f *excelize.File, summary *reports.MonthlySummary) error {
	if _, err := f.NewSheet(productsSheet); err != nil {
		return err
	}

	header := []any{
		"Product", "Supplier", "Unit Price", "Prev Month Stock",
		"Purchase", "Stock In", "Usage", "Balance", "Counted", "Diff",
		"Min Stock", "Shortage", "Order Amount",
	}
	if err := f.SetSheetRow(productsSheet, "A1", &header); err != nil {
		return err
	}

	for i, row := range summary.Products {
		cells := []any{
			row.ProductName,
			row.SupplierName,
			row.UnitPrice.StringFixed(2),
			row.PrevMonthStock,
			row.Purchase,
			row.StockIn,
			row.Usage,
			row.ThisMonthBalance,
			row.CurrentStock,
			row.Diff,
			row.MinStock,
			row.Shortage,
			row.OrderAmount.StringFixed(2),
		}
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		if err := f.SetSheetRow(productsSheet, cell, &cells); err != nil {
			return err
		}
	}
	return nil
}
