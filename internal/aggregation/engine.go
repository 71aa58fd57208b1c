package aggregation

import (
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/koyamadev/stockkeeper-backend/internal/period"
	"github.com/koyamadev/stockkeeper-backend/pkg/db/models"
	"github.com/koyamadev/stockkeeper-backend/pkg/enums"
)

// PriceFunc resolves a product's unit price. Implementations must return zero
// for unknown products so orphaned ledger rows aggregate without error.
type PriceFunc func(productID uuid.UUID) decimal.Decimal

// Totals holds classified quantity sums for one transaction slice. The same
// fold serves every granularity: week, day, month, product, supplier.
type Totals struct {
	Purchase int
	StockIn  int
	Usage    int
}

// Net is the signed quantity change the classified entries imply.
func (t Totals) Net() int {
	return t.Purchase + t.StockIn - t.Usage
}

// Sum folds a transaction slice into classified quantity totals.
func Sum(txns []models.Transaction) Totals {
	var totals Totals
	for _, txn := range txns {
		switch Classify(txn) {
		case ClassPurchase:
			totals.Purchase += txn.Quantity
		case ClassStockIn:
			totals.StockIn += txn.Quantity
		case ClassUsage:
			totals.Usage += txn.Quantity
		}
	}
	return totals
}

// Amounts holds classified currency sums.
type Amounts struct {
	Purchase decimal.Decimal
	StockIn  decimal.Decimal
	Usage    decimal.Decimal
}

// Change is purchase + stock-in - usage.
func (a Amounts) Change() decimal.Decimal {
	return a.Purchase.Add(a.StockIn).Sub(a.Usage)
}

// Add returns the field-wise sum of two amount sets.
func (a Amounts) Add(b Amounts) Amounts {
	return Amounts{
		Purchase: a.Purchase.Add(b.Purchase),
		StockIn:  a.StockIn.Add(b.StockIn),
		Usage:    a.Usage.Add(b.Usage),
	}
}

// Monetize converts quantity totals into currency amounts at one unit price.
// Only valid when every counted transaction shares the product.
func Monetize(t Totals, unitPrice decimal.Decimal) Amounts {
	return Amounts{
		Purchase: decimal.NewFromInt(int64(t.Purchase)).Mul(unitPrice),
		StockIn:  decimal.NewFromInt(int64(t.StockIn)).Mul(unitPrice),
		Usage:    decimal.NewFromInt(int64(t.Usage)).Mul(unitPrice),
	}
}

// SumPriced folds a mixed-product slice into currency amounts, pricing each
// transaction with its own product's unit price. Supplier-level rollups go
// through here; prices are never averaged across a supplier's products.
func SumPriced(txns []models.Transaction, priceOf PriceFunc) Amounts {
	amounts := Amounts{
		Purchase: decimal.Zero,
		StockIn:  decimal.Zero,
		Usage:    decimal.Zero,
	}
	for _, txn := range txns {
		amount := decimal.NewFromInt(int64(txn.Quantity)).Mul(priceOf(txn.ProductID))
		switch Classify(txn) {
		case ClassPurchase:
			amounts.Purchase = amounts.Purchase.Add(amount)
		case ClassStockIn:
			amounts.StockIn = amounts.StockIn.Add(amount)
		case ClassUsage:
			amounts.Usage = amounts.Usage.Add(amount)
		}
	}
	return amounts
}

// ReplayBalance recomputes the signed currency balance by replaying every
// transaction dated on or before cutoff: in adds quantity x price, out
// subtracts, regardless of subtype. This is a full replay on purpose; the
// history is small and a cache would have to be invalidated on every append.
func ReplayBalance(txns []models.Transaction, priceOf PriceFunc, cutoff time.Time) decimal.Decimal {
	balance := decimal.Zero
	for _, txn := range txns {
		if txn.OccurredAt.After(cutoff) {
			continue
		}
		amount := decimal.NewFromInt(int64(txn.Quantity)).Mul(priceOf(txn.ProductID))
		switch txn.Type {
		case enums.TxnTypeIn:
			balance = balance.Add(amount)
		case enums.TxnTypeOut:
			balance = balance.Sub(amount)
		}
	}
	return balance
}

// ReplayQuantity is the quantity counterpart of ReplayBalance over an
// already-filtered slice: in adds, out subtracts, all subtypes.
func ReplayQuantity(txns []models.Transaction) int {
	total := 0
	for _, txn := range txns {
		switch txn.Type {
		case enums.TxnTypeIn:
			total += txn.Quantity
		case enums.TxnTypeOut:
			total -= txn.Quantity
		}
	}
	return total
}

// InRange filters a slice down to transactions inside the window,
// end-inclusive. Ordering is by OccurredAt only; insertion order is a display
// concern the engine ignores.
func InRange(txns []models.Transaction, bounds period.Bounds) []models.Transaction {
	var out []models.Transaction
	for _, txn := range txns {
		if bounds.Contains(txn.OccurredAt) {
			out = append(out, txn)
		}
	}
	return out
}

// ForProduct filters a slice down to one product's transactions.
func ForProduct(txns []models.Transaction, productID uuid.UUID) []models.Transaction {
	var out []models.Transaction
	for _, txn := range txns {
		if txn.ProductID == productID {
			out = append(out, txn)
		}
	}
	return out
}

// CustomerUsage is one customer's usage share of a product for a period.
type CustomerUsage struct {
	CustomerID string
	Quantity   int
	Amount     decimal.Decimal
}

// CustomerBreakdown groups usage rows by customer. Rows without a customer
// are grouped under the empty ID. Output is sorted by quantity descending,
// then customer ID, so repeated runs are stable.
func CustomerBreakdown(txns []models.Transaction, priceOf PriceFunc) []CustomerUsage {
	byCustomer := make(map[string]*CustomerUsage)
	for _, txn := range txns {
		if Classify(txn) != ClassUsage {
			continue
		}
		id := ""
		if txn.CustomerID != nil {
			id = *txn.CustomerID
		}
		entry, ok := byCustomer[id]
		if !ok {
			entry = &CustomerUsage{CustomerID: id, Amount: decimal.Zero}
			byCustomer[id] = entry
		}
		entry.Quantity += txn.Quantity
		entry.Amount = entry.Amount.Add(decimal.NewFromInt(int64(txn.Quantity)).Mul(priceOf(txn.ProductID)))
	}

	out := make([]CustomerUsage, 0, len(byCustomer))
	for _, entry := range byCustomer {
		out = append(out, *entry)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Quantity != out[j].Quantity {
			return out[i].Quantity > out[j].Quantity
		}
		return out[i].CustomerID < out[j].CustomerID
	})
	return out
}
