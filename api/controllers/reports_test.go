package controllers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	reportsvc "github.com/koyamadev/stockkeeper-backend/internal/reports"
)

type stubReportService struct {
	year, month int
	err         error
}

func (s *stubReportService) MonthlySummary(_ context.Context, year, month int) (*reportsvc.MonthlySummary, error) {
	s.year, s.month = year, month
	if s.err != nil {
		return nil, s.err
	}
	return &reportsvc.MonthlySummary{Year: year, Month: month}, nil
}

func (s *stubReportService) Shortages(context.Context) ([]reportsvc.ShortageItem, error) {
	if s.err != nil {
		return nil, s.err
	}
	return []reportsvc.ShortageItem{}, nil
}

func TestMonthlySummaryReport(t *testing.T) {
	logg := testLogger()

	t.Run("forwards explicit year and month", func(t *testing.T) {
		stub := &stubReportService{}
		req := httptest.NewRequest(http.MethodGet, "/api/v1/reports/summary?year=2024&month=11", nil)
		rec := httptest.NewRecorder()
		MonthlySummaryReport(stub, time.UTC, logg).ServeHTTP(rec, req)
		if rec.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
		}
		if stub.year != 2024 || stub.month != 11 {
			t.Fatalf("expected 2024-11 forwarded, got %d-%d", stub.year, stub.month)
		}
	})

	t.Run("defaults to current month", func(t *testing.T) {
		stub := &stubReportService{}
		req := httptest.NewRequest(http.MethodGet, "/api/v1/reports/summary", nil)
		rec := httptest.NewRecorder()
		MonthlySummaryReport(stub, time.UTC, logg).ServeHTTP(rec, req)
		if rec.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d", rec.Code)
		}
		now := time.Now().UTC()
		if stub.year != now.Year() || stub.month != int(now.Month()) {
			t.Fatalf("expected current month default, got %d-%d", stub.year, stub.month)
		}
	})

	t.Run("rejects out-of-range month", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/api/v1/reports/summary?year=2024&month=13", nil)
		rec := httptest.NewRecorder()
		MonthlySummaryReport(&stubReportService{}, time.UTC, logg).ServeHTTP(rec, req)
		if rec.Code != http.StatusBadRequest {
			t.Fatalf("expected 400 for month 13, got %d", rec.Code)
		}
	})
}

func TestSupplierSummaryReport(t *testing.T) {
	logg := testLogger()

	stub := &stubReportService{}
	req := httptest.NewRequest(http.MethodGet, "/api/v1/reports/suppliers?year=2024&month=7", nil)
	rec := httptest.NewRecorder()
	SupplierSummaryReport(stub, time.UTC, logg).ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	if stub.year != 2024 || stub.month != 7 {
		t.Fatalf("expected 2024-7 forwarded, got %d-%d", stub.year, stub.month)
	}

	var envelope struct {
		Data supplierReportView `json:"data"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &envelope); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if envelope.Data.Year != 2024 || envelope.Data.Month != 7 {
		t.Fatalf("expected period header in view, got %d-%d", envelope.Data.Year, envelope.Data.Month)
	}
}

func TestProductSummaryReport(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/api/v1/reports/products?year=2024&month=13", nil)
	rec := httptest.NewRecorder()
	ProductSummaryReport(&stubReportService{}, time.UTC, testLogger()).ServeHTTP(rec, req)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for month 13, got %d", rec.Code)
	}
}

func TestShortageReport(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/api/v1/reports/shortages", nil)
	rec := httptest.NewRecorder()
	ShortageReport(&stubReportService{}, testLogger()).ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
}
