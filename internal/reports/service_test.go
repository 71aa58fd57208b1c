package reports

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/koyamadev/stockkeeper-backend/internal/aggregation"
	"github.com/koyamadev/stockkeeper-backend/internal/ledger"
	"github.com/koyamadev/stockkeeper-backend/pkg/db/models"
	"github.com/koyamadev/stockkeeper-backend/pkg/enums"
	pkgerrors "github.com/koyamadev/stockkeeper-backend/pkg/errors"
)

type stubSnapshots struct {
	calls    int
	snapshot *ledger.Snapshot
	err      error
}

func (s *stubSnapshots) Snapshot(ctx context.Context) (*ledger.Snapshot, error) {
	s.calls++
	if s.err != nil {
		return nil, s.err
	}
	return s.snapshot, nil
}

type memoryStore struct {
	data    map[string]string
	version int64
}

func newMemoryStore() *memoryStore {
	return &memoryStore{data: make(map[string]string)}
}

func (m *memoryStore) Get(_ context.Context, key string) (string, error) {
	if value, ok := m.data[key]; ok {
		return value, nil
	}
	return "", errors.New("miss")
}

func (m *memoryStore) Set(_ context.Context, key string, value any, _ time.Duration) error {
	m.data[key] = value.(string)
	return nil
}

func (m *memoryStore) SummaryKey(version int64, month string) string {
	return fmt.Sprintf("sk:summary:v%d:%s", version, month)
}

func (m *memoryStore) SummaryVersion(_ context.Context) (int64, error) {
	return m.version, nil
}

func (m *memoryStore) BumpSummaryVersion(_ context.Context) error {
	m.version++
	return nil
}

func snapshotFixture() *ledger.Snapshot {
	supplier := models.Supplier{ID: uuid.New(), Name: "acme"}
	product := models.Product{
		ID:         uuid.New(),
		SupplierID: supplier.ID,
		Name:       "beans",
		UnitPrice:  decimal.NewFromInt(100),
		MinStock:   5,
	}
	loc, _ := time.LoadLocation("Asia/Tokyo")
	return &ledger.Snapshot{
		Suppliers:   []models.Supplier{supplier},
		Products:    []models.Product{product},
		StockLevels: []models.StockLevel{{ProductID: product.ID, Quantity: 2}},
		Transactions: []models.Transaction{{
			ID:         uuid.New(),
			ProductID:  product.ID,
			Type:       enums.TxnTypeIn,
			SubType:    enums.TxnSubTypePurchase,
			Quantity:   3,
			OccurredAt: time.Date(2024, time.March, 5, 9, 0, 0, 0, loc),
		}},
	}
}

func newTestService(t *testing.T, snapshots *stubSnapshots, cache *Cache) Service {
	t.Helper()
	loc, err := time.LoadLocation("Asia/Tokyo")
	if err != nil {
		t.Fatalf("loading location: %v", err)
	}
	builder, err := NewBuilder(loc, aggregation.DefaultNoteClassifier(nil, nil))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	svc, err := NewService(snapshots, builder, cache, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	return svc
}

func TestMonthlySummaryComputesWithoutCache(t *testing.T) {
	snapshots := &stubSnapshots{snapshot: snapshotFixture()}
	svc := newTestService(t, snapshots, nil)

	summary, err := svc.MonthlySummary(context.Background(), 2024, 3)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if summary.Label != "2024-03" {
		t.Fatalf("unexpected label %q", summary.Label)
	}
	if len(summary.Products) != 1 || summary.Products[0].Purchase != 3 {
		t.Fatalf("unexpected products %+v", summary.Products)
	}
}

func TestMonthlySummaryReadsThroughCache(t *testing.T) {
	store := newMemoryStore()
	cache, err := NewCache(store, time.Minute)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	snapshots := &stubSnapshots{snapshot: snapshotFixture()}
	svc := newTestService(t, snapshots, cache)
	ctx := context.Background()

	if _, err := svc.MonthlySummary(ctx, 2024, 3); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, err := svc.MonthlySummary(ctx, 2024, 3); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if snapshots.calls != 1 {
		t.Fatalf("second read must hit the cache, got %d snapshot loads", snapshots.calls)
	}

	// A mutation bumps the generation; the next read recomputes.
	if err := cache.InvalidateSummaries(ctx); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, err := svc.MonthlySummary(ctx, 2024, 3); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if snapshots.calls != 2 {
		t.Fatalf("invalidation must force a recompute, got %d snapshot loads", snapshots.calls)
	}
}

func TestMonthlySummaryCachedCopySurvivesRoundTrip(t *testing.T) {
	store := newMemoryStore()
	cache, err := NewCache(store, time.Minute)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	snapshots := &stubSnapshots{snapshot: snapshotFixture()}
	svc := newTestService(t, snapshots, cache)
	ctx := context.Background()

	first, err := svc.MonthlySummary(ctx, 2024, 3)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	second, err := svc.MonthlySummary(ctx, 2024, 3)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if !second.GrandTotal.Purchase.Equal(first.GrandTotal.Purchase) {
		t.Fatalf("cached amounts must round-trip: %s vs %s",
			second.GrandTotal.Purchase, first.GrandTotal.Purchase)
	}
	if len(second.Products) != len(first.Products) {
		t.Fatalf("cached products must round-trip: %d vs %d", len(second.Products), len(first.Products))
	}
}

func TestMonthlySummaryInvalidMonth(t *testing.T) {
	snapshots := &stubSnapshots{snapshot: snapshotFixture()}
	svc := newTestService(t, snapshots, nil)

	_, err := svc.MonthlySummary(context.Background(), 2024, 0)
	var coded *pkgerrors.Error
	if !errors.As(err, &coded) || coded.Code() != pkgerrors.CodeValidation {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestShortagesDelegatesToBuilder(t *testing.T) {
	snapshots := &stubSnapshots{snapshot: snapshotFixture()}
	svc := newTestService(t, snapshots, nil)

	items, err := svc.Shortages(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(items) != 1 || items[0].Shortage != 3 {
		t.Fatalf("expected one shortage of 3, got %+v", items)
	}
}
