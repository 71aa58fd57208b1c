package aggregation

import (
	"math/rand"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/koyamadev/stockkeeper-backend/internal/period"
	"github.com/koyamadev/stockkeeper-backend/pkg/db/models"
	"github.com/koyamadev/stockkeeper-backend/pkg/enums"
)

func at(year int, month time.Month, day, hour int) time.Time {
	return time.Date(year, month, day, hour, 0, 0, 0, time.Local)
}

func txn(productID uuid.UUID, txnType enums.TxnType, subType enums.TxnSubType, qty int, occurred time.Time) models.Transaction {
	return models.Transaction{
		ID:         uuid.New(),
		ProductID:  productID,
		Type:       txnType,
		SubType:    subType,
		Quantity:   qty,
		OccurredAt: occurred,
	}
}

func fixedPrice(price int64) PriceFunc {
	p := decimal.NewFromInt(price)
	return func(uuid.UUID) decimal.Decimal { return p }
}

func TestSumClassifiedTotals(t *testing.T) {
	productID := uuid.New()
	txns := []models.Transaction{
		txn(productID, enums.TxnTypeIn, enums.TxnSubTypePurchase, 10, at(2024, 3, 5, 9)),
		txn(productID, enums.TxnTypeIn, enums.TxnSubTypeNone, 4, at(2024, 3, 6, 9)),
		txn(productID, enums.TxnTypeIn, enums.TxnSubTypeStockIn, 2, at(2024, 3, 7, 9)),
		txn(productID, enums.TxnTypeOut, enums.TxnSubTypeUsage, 8, at(2024, 3, 20, 9)),
		txn(productID, enums.TxnTypeOut, enums.TxnSubTypeAdjustment, 99, at(2024, 3, 21, 9)),
	}

	totals := Sum(txns)
	if totals.Purchase != 14 {
		t.Fatalf("purchase = %d, want 14 (absent subtype counts as purchase)", totals.Purchase)
	}
	if totals.StockIn != 2 {
		t.Fatalf("stockIn = %d, want 2", totals.StockIn)
	}
	if totals.Usage != 8 {
		t.Fatalf("usage = %d, want 8 (adjustment excluded)", totals.Usage)
	}
	if totals.Net() != 8 {
		t.Fatalf("net = %d, want 8", totals.Net())
	}
}

func TestSumPricedUsesEachProductsOwnPrice(t *testing.T) {
	p1 := uuid.New()
	p2 := uuid.New()
	prices := map[uuid.UUID]decimal.Decimal{
		p1: decimal.NewFromInt(10),
		p2: decimal.NewFromInt(20),
	}
	priceOf := func(id uuid.UUID) decimal.Decimal {
		if price, ok := prices[id]; ok {
			return price
		}
		return decimal.Zero
	}

	txns := []models.Transaction{
		txn(p1, enums.TxnTypeIn, enums.TxnSubTypePurchase, 5, at(2024, 3, 5, 9)),
		txn(p2, enums.TxnTypeIn, enums.TxnSubTypePurchase, 2, at(2024, 3, 6, 9)),
		txn(p1, enums.TxnTypeOut, enums.TxnSubTypeUsage, 3, at(2024, 3, 20, 9)),
	}

	amounts := SumPriced(txns, priceOf)
	if !amounts.Purchase.Equal(decimal.NewFromInt(90)) {
		t.Fatalf("purchase amount = %s, want 90 (5x10 + 2x20, never an average price)", amounts.Purchase)
	}
	if !amounts.Usage.Equal(decimal.NewFromInt(30)) {
		t.Fatalf("usage amount = %s, want 30", amounts.Usage)
	}
	if !amounts.Change().Equal(decimal.NewFromInt(60)) {
		t.Fatalf("change = %s, want 60", amounts.Change())
	}
}

func TestReplayBalanceDeterministicAndOrderInsensitive(t *testing.T) {
	productID := uuid.New()
	cutoff := at(2024, 3, 31, 23)
	txns := []models.Transaction{
		txn(productID, enums.TxnTypeIn, enums.TxnSubTypePurchase, 10, at(2024, 1, 5, 9)),
		txn(productID, enums.TxnTypeOut, enums.TxnSubTypeUsage, 4, at(2024, 2, 10, 9)),
		txn(productID, enums.TxnTypeIn, enums.TxnSubTypeStockIn, 3, at(2024, 3, 1, 9)),
		txn(productID, enums.TxnTypeOut, enums.TxnSubTypeAdjustment, 2, at(2024, 3, 15, 9)),
	}
	priceOf := fixedPrice(100)

	first := ReplayBalance(txns, priceOf, cutoff)
	second := ReplayBalance(txns, priceOf, cutoff)
	if !first.Equal(second) {
		t.Fatalf("replay not deterministic: %s vs %s", first, second)
	}
	// (10 - 4 + 3 - 2) x 100; adjustments count in the raw balance.
	if !first.Equal(decimal.NewFromInt(700)) {
		t.Fatalf("balance = %s, want 700", first)
	}

	shuffled := make([]models.Transaction, len(txns))
	copy(shuffled, txns)
	rng := rand.New(rand.NewSource(42))
	for i := 0; i < 10; i++ {
		rng.Shuffle(len(shuffled), func(a, b int) {
			shuffled[a], shuffled[b] = shuffled[b], shuffled[a]
		})
		if got := ReplayBalance(shuffled, priceOf, cutoff); !got.Equal(first) {
			t.Fatalf("shuffle changed balance: %s vs %s", got, first)
		}
	}
}

func TestReplayBalanceCutoffIsInclusive(t *testing.T) {
	productID := uuid.New()
	cutoff := time.Date(2024, 2, 29, 23, 59, 59, 0, time.Local)
	onCutoff := txn(productID, enums.TxnTypeIn, enums.TxnSubTypePurchase, 1, cutoff)
	afterCutoff := txn(productID, enums.TxnTypeIn, enums.TxnSubTypePurchase, 1, cutoff.Add(time.Second))
	priceOf := fixedPrice(10)

	if got := ReplayBalance([]models.Transaction{onCutoff}, priceOf, cutoff); !got.Equal(decimal.NewFromInt(10)) {
		t.Fatalf("transaction on the cutoff instant must count, got %s", got)
	}
	if got := ReplayBalance([]models.Transaction{afterCutoff}, priceOf, cutoff); !got.IsZero() {
		t.Fatalf("transaction one second past the cutoff must not count, got %s", got)
	}
}

func TestOrphanTransactionsAggregateWithZeroAmount(t *testing.T) {
	orphan := uuid.New()
	priceOf := func(id uuid.UUID) decimal.Decimal { return decimal.Zero }

	txns := []models.Transaction{
		txn(orphan, enums.TxnTypeIn, enums.TxnSubTypePurchase, 7, at(2024, 3, 5, 9)),
	}

	totals := Sum(txns)
	if totals.Purchase != 7 {
		t.Fatalf("orphan quantity must still be counted, got %d", totals.Purchase)
	}
	amounts := SumPriced(txns, priceOf)
	if !amounts.Purchase.IsZero() {
		t.Fatalf("orphan amount must be zero, got %s", amounts.Purchase)
	}
	if got := ReplayBalance(txns, priceOf, at(2024, 4, 1, 0)); !got.IsZero() {
		t.Fatalf("orphan replay balance must be zero, got %s", got)
	}
}

func TestInRangeUsesInclusiveMonthEnd(t *testing.T) {
	bounds, err := period.MonthBounds(time.Local, 2024, 3)
	if err != nil {
		t.Fatalf("MonthBounds: %v", err)
	}
	productID := uuid.New()
	lastInstant := txn(productID, enums.TxnTypeOut, enums.TxnSubTypeUsage, 1, bounds.End)
	nextMonth := txn(productID, enums.TxnTypeOut, enums.TxnSubTypeUsage, 1, bounds.End.Add(time.Second))

	got := InRange([]models.Transaction{lastInstant, nextMonth}, bounds)
	if len(got) != 1 || !got[0].OccurredAt.Equal(bounds.End) {
		t.Fatalf("expected only the end-of-month transaction, got %d rows", len(got))
	}
}

func TestCustomerBreakdownGroupsAndSorts(t *testing.T) {
	productID := uuid.New()
	cust := func(s string) *string { return &s }
	priceOf := fixedPrice(10)

	a := txn(productID, enums.TxnTypeOut, enums.TxnSubTypeUsage, 2, at(2024, 3, 5, 9))
	a.CustomerID = cust("acme")
	b := txn(productID, enums.TxnTypeOut, enums.TxnSubTypeUsage, 5, at(2024, 3, 6, 9))
	b.CustomerID = cust("bolt")
	c := txn(productID, enums.TxnTypeOut, enums.TxnSubTypeUsage, 1, at(2024, 3, 7, 9))
	c.CustomerID = cust("acme")
	ignored := txn(productID, enums.TxnTypeOut, enums.TxnSubTypeAdjustment, 9, at(2024, 3, 8, 9))

	rows := CustomerBreakdown([]models.Transaction{a, b, c, ignored}, priceOf)
	if len(rows) != 2 {
		t.Fatalf("expected 2 customers, got %d", len(rows))
	}
	if rows[0].CustomerID != "bolt" || rows[0].Quantity != 5 {
		t.Fatalf("expected bolt first with qty 5, got %+v", rows[0])
	}
	if rows[1].CustomerID != "acme" || rows[1].Quantity != 3 {
		t.Fatalf("expected acme with qty 3, got %+v", rows[1])
	}
	if !rows[1].Amount.Equal(decimal.NewFromInt(30)) {
		t.Fatalf("acme amount = %s, want 30", rows[1].Amount)
	}
}

func TestReplayQuantitySignedSum(t *testing.T) {
	productID := uuid.New()
	txns := []models.Transaction{
		txn(productID, enums.TxnTypeIn, enums.TxnSubTypePurchase, 10, at(2024, 2, 5, 9)),
		txn(productID, enums.TxnTypeOut, enums.TxnSubTypeUsage, 3, at(2024, 2, 10, 9)),
		txn(productID, enums.TxnTypeOut, enums.TxnSubTypeAdjustment, 1, at(2024, 2, 11, 9)),
	}
	if got := ReplayQuantity(txns); got != 6 {
		t.Fatalf("replay quantity = %d, want 6", got)
	}
}
