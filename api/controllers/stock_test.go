package controllers

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/google/uuid"

	ledgersvc "github.com/koyamadev/stockkeeper-backend/internal/ledger"
	"github.com/koyamadev/stockkeeper-backend/pkg/enums"
	"github.com/koyamadev/stockkeeper-backend/pkg/pagination"
)

type stubLedgerService struct {
	adjusted *ledgersvc.AdjustStockInput
	cleared  bool
	params   pagination.Params
}

func (s *stubLedgerService) AdjustStock(_ context.Context, input ledgersvc.AdjustStockInput) (*ledgersvc.AdjustStockResult, error) {
	s.adjusted = &input
	return &ledgersvc.AdjustStockResult{}, nil
}

func (s *stubLedgerService) GetStock(_ context.Context, productID uuid.UUID) (*ledgersvc.StockDTO, error) {
	return &ledgersvc.StockDTO{ProductID: productID}, nil
}

func (s *stubLedgerService) ListStock(context.Context) ([]ledgersvc.StockDTO, error) {
	return nil, nil
}

func (s *stubLedgerService) ListTransactions(_ context.Context, params pagination.Params) (*ledgersvc.TransactionPage, error) {
	s.params = params
	return &ledgersvc.TransactionPage{}, nil
}

func (s *stubLedgerService) Snapshot(context.Context) (*ledgersvc.Snapshot, error) {
	return &ledgersvc.Snapshot{}, nil
}

func (s *stubLedgerService) ClearAll(context.Context) error {
	s.cleared = true
	return nil
}

func TestAdjustStock(t *testing.T) {
	logg := testLogger()
	productID := uuid.New()

	t.Run("records outbound usage", func(t *testing.T) {
		stub := &stubLedgerService{}
		body := `{"type":"out","sub_type":"usage","quantity":3,"operator":"mei"}`
		req := httptest.NewRequest(http.MethodPost, "/api/v1/stock/"+productID.String()+"/adjust", strings.NewReader(body))
		req = withURLParam(req, "productId", productID.String())
		rec := httptest.NewRecorder()
		AdjustStock(stub, logg).ServeHTTP(rec, req)
		if rec.Code != http.StatusCreated {
			t.Fatalf("expected 201, got %d: %s", rec.Code, rec.Body.String())
		}
		if stub.adjusted == nil {
			t.Fatal("expected AdjustStock to be invoked")
		}
		if stub.adjusted.ProductID != productID {
			t.Fatalf("expected product %s, got %s", productID, stub.adjusted.ProductID)
		}
		if stub.adjusted.Type != enums.TxnTypeOut || stub.adjusted.SubType != enums.TxnSubTypeUsage {
			t.Fatalf("unexpected movement kind: %+v", stub.adjusted)
		}
		if stub.adjusted.Quantity != 3 {
			t.Fatalf("expected quantity 3, got %d", stub.adjusted.Quantity)
		}
	})

	t.Run("parses occurred_at", func(t *testing.T) {
		stub := &stubLedgerService{}
		body := `{"type":"in","sub_type":"purchase","quantity":10,"occurred_at":"2025-03-05T09:30:00Z"}`
		req := httptest.NewRequest(http.MethodPost, "/api/v1/stock/"+productID.String()+"/adjust", strings.NewReader(body))
		req = withURLParam(req, "productId", productID.String())
		rec := httptest.NewRecorder()
		AdjustStock(stub, logg).ServeHTTP(rec, req)
		if rec.Code != http.StatusCreated {
			t.Fatalf("expected 201, got %d: %s", rec.Code, rec.Body.String())
		}
		if stub.adjusted.OccurredAt == nil || stub.adjusted.OccurredAt.Day() != 5 {
			t.Fatalf("expected occurred_at to be parsed, got %+v", stub.adjusted.OccurredAt)
		}
	})

	t.Run("rejects unknown type", func(t *testing.T) {
		body := `{"type":"sideways","quantity":3}`
		req := httptest.NewRequest(http.MethodPost, "/api/v1/stock/"+productID.String()+"/adjust", strings.NewReader(body))
		req = withURLParam(req, "productId", productID.String())
		rec := httptest.NewRecorder()
		AdjustStock(&stubLedgerService{}, logg).ServeHTTP(rec, req)
		if rec.Code != http.StatusBadRequest {
			t.Fatalf("expected 400 for unknown type, got %d", rec.Code)
		}
	})

	t.Run("rejects zero quantity", func(t *testing.T) {
		body := `{"type":"in","quantity":0}`
		req := httptest.NewRequest(http.MethodPost, "/api/v1/stock/"+productID.String()+"/adjust", strings.NewReader(body))
		req = withURLParam(req, "productId", productID.String())
		rec := httptest.NewRecorder()
		AdjustStock(&stubLedgerService{}, logg).ServeHTTP(rec, req)
		if rec.Code != http.StatusBadRequest {
			t.Fatalf("expected 400 for zero quantity, got %d", rec.Code)
		}
	})
}

func TestGetStockRejectsBadID(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/api/v1/stock/nope", nil)
	req = withURLParam(req, "productId", "nope")
	rec := httptest.NewRecorder()
	GetStock(&stubLedgerService{}, testLogger()).ServeHTTP(rec, req)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
}
