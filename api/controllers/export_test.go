package controllers

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	exportsvc "github.com/koyamadev/stockkeeper-backend/internal/export"
)

type stubExportService struct {
	err error
}

func (s *stubExportService) MonthlyWorkbook(_ context.Context, year, month int) ([]byte, string, error) {
	if s.err != nil {
		return nil, "", s.err
	}
	return []byte("workbook-bytes"), "summary-2024-11.xlsx", nil
}

func TestExportMonthlySummary(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/api/v1/reports/export?year=2024&month=11", nil)
	rec := httptest.NewRecorder()
	ExportMonthlySummary(&stubExportService{}, time.UTC, testLogger()).ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if got := rec.Header().Get("Content-Type"); got != exportsvc.ContentType {
		t.Fatalf("unexpected content type %q", got)
	}
	if got := rec.Header().Get("Content-Disposition"); got != `attachment; filename="summary-2024-11.xlsx"` {
		t.Fatalf("unexpected disposition %q", got)
	}
	if rec.Body.String() != "workbook-bytes" {
		t.Fatalf("unexpected body %q", rec.Body.String())
	}
}
