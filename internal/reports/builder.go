package reports

import (
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/koyamadev/stockkeeper-backend/internal/aggregation"
	"github.com/koyamadev/stockkeeper-backend/internal/ledger"
	"github.com/koyamadev/stockkeeper-backend/internal/period"
	"github.com/koyamadev/stockkeeper-backend/pkg/db/models"
)

// UnknownSupplierName labels products whose supplier row no longer exists.
const UnknownSupplierName = "unknown"

// taxRate is the consumption tax multiplier applied to purchase amounts for
// display. It never feeds back into balances.
var taxRate = decimal.NewFromFloat(1.1)

// Builder derives monthly summaries from a ledger snapshot. It holds no
// state beyond the calendar location and the note rule list, so one instance
// serves every request.
type Builder struct {
	loc   *time.Location
	notes aggregation.NoteClassifier
}

// NewBuilder wires a summary builder.
func NewBuilder(loc *time.Location, notes aggregation.NoteClassifier) (*Builder, error) {
	if loc == nil {
		return nil, fmt.Errorf("calendar location is required")
	}
	return &Builder{loc: loc, notes: notes}, nil
}

// Build computes the full reconciliation report for one calendar month.
func (b *Builder) Build(snapshot *ledger.Snapshot, year, month int, now time.Time) (*MonthlySummary, error) {
	bounds, err := period.MonthBounds(b.loc, year, month)
	if err != nil {
		return nil, err
	}
	prevBounds, err := period.PrevMonthBounds(b.loc, year, month)
	if err != nil {
		return nil, err
	}
	weekBuckets, err := period.WeekBuckets(b.loc, year, month)
	if err != nil {
		return nil, err
	}
	dayBuckets, err := period.DayBuckets(b.loc, year, month)
	if err != nil {
		return nil, err
	}

	idx := indexSnapshot(snapshot)

	summary := &MonthlySummary{
		Year:        year,
		Month:       month,
		Label:       fmt.Sprintf("%04d-%02d", year, month),
		GeneratedAt: now,
		Suppliers:   b.supplierRows(idx, bounds, prevBounds),
		Products:    b.productRows(idx, bounds, prevBounds, weekBuckets, dayBuckets),
	}
	summary.GrandTotal = grandTotal(summary.Suppliers)
	return summary, nil
}

// Shortages lists every product below its minimum stock threshold, worst
// first.
func (b *Builder) Shortages(snapshot *ledger.Snapshot) []ShortageItem {
	idx := indexSnapshot(snapshot)

	items := make([]ShortageItem, 0)
	for _, product := range idx.products {
		live := idx.stock[product.ID]
		shortage := product.MinStock - live
		if shortage <= 0 {
			continue
		}
		items = append(items, ShortageItem{
			ProductID:    product.ID,
			ProductName:  product.Name,
			SupplierName: idx.supplierName(product.SupplierID),
			CurrentStock: live,
			MinStock:     product.MinStock,
			Shortage:     shortage,
			ReorderQty:   product.ReorderQty,
			OrderAmount:  decimal.NewFromInt(int64(shortage)).Mul(product.UnitPrice),
		})
	}

	sort.Slice(items, func(i, j int) bool {
		if items[i].Shortage != items[j].Shortage {
			return items[i].Shortage > items[j].Shortage
		}
		return items[i].ProductName < items[j].ProductName
	})
	return items
}

// snapshotIndex is the snapshot reshaped into the lookups the fold needs.
type snapshotIndex struct {
	suppliers     []models.Supplier
	products      []models.Product
	supplierNames map[uuid.UUID]string
	bySupplier    map[uuid.UUID][]models.Product
	stock         map[uuid.UUID]int
	txnsByProduct map[uuid.UUID][]models.Transaction
	priceOf       aggregation.PriceFunc
}

func indexSnapshot(snapshot *ledger.Snapshot) *snapshotIndex {
	idx := &snapshotIndex{
		supplierNames: make(map[uuid.UUID]string),
		bySupplier:    make(map[uuid.UUID][]models.Product),
		stock:         make(map[uuid.UUID]int),
		txnsByProduct: make(map[uuid.UUID][]models.Transaction),
	}
	if snapshot == nil {
		idx.priceOf = func(uuid.UUID) decimal.Decimal { return decimal.Zero }
		return idx
	}

	idx.suppliers = append(idx.suppliers, snapshot.Suppliers...)
	sort.Slice(idx.suppliers, func(i, j int) bool {
		return idx.suppliers[i].Name < idx.suppliers[j].Name
	})
	for _, supplier := range idx.suppliers {
		idx.supplierNames[supplier.ID] = supplier.Name
	}

	idx.products = append(idx.products, snapshot.Products...)
	sort.Slice(idx.products, func(i, j int) bool {
		return idx.products[i].Name < idx.products[j].Name
	})

	prices := make(map[uuid.UUID]decimal.Decimal, len(idx.products))
	for _, product := range idx.products {
		prices[product.ID] = product.UnitPrice
		key := product.SupplierID
		if _, known := idx.supplierNames[key]; !known {
			key = uuid.Nil
		}
		idx.bySupplier[key] = append(idx.bySupplier[key], product)
	}
	// Orphaned ledger rows price at zero rather than erroring.
	idx.priceOf = func(productID uuid.UUID) decimal.Decimal {
		if price, ok := prices[productID]; ok {
			return price
		}
		return decimal.Zero
	}

	for _, level := range snapshot.StockLevels {
		idx.stock[level.ProductID] = level.Quantity
	}
	for _, txn := range snapshot.Transactions {
		idx.txnsByProduct[txn.ProductID] = append(idx.txnsByProduct[txn.ProductID], txn)
	}
	return idx
}

func (idx *snapshotIndex) supplierName(id uuid.UUID) string {
	if name, ok := idx.supplierNames[id]; ok {
		return name
	}
	return UnknownSupplierName
}

func (idx *snapshotIndex) supplierTxns(supplierKey uuid.UUID) []models.Transaction {
	var txns []models.Transaction
	for _, product := range idx.bySupplier[supplierKey] {
		txns = append(txns, idx.txnsByProduct[product.ID]...)
	}
	return txns
}

// supplierRows builds one monetary line per supplier that has products, plus
// an "unknown" line when dangling products exist. Suppliers without products
// are excluded rather than rendered as zero rows.
func (b *Builder) supplierRows(idx *snapshotIndex, bounds, prevBounds period.Bounds) []SupplierRow {
	rows := make([]SupplierRow, 0, len(idx.suppliers))
	for _, supplier := range idx.suppliers {
		if len(idx.bySupplier[supplier.ID]) == 0 {
			continue
		}
		rows = append(rows, b.supplierRow(idx, supplier.ID, supplier.Name, bounds, prevBounds))
	}
	if len(idx.bySupplier[uuid.Nil]) > 0 {
		rows = append(rows, b.supplierRow(idx, uuid.Nil, UnknownSupplierName, bounds, prevBounds))
	}
	return rows
}

func (b *Builder) supplierRow(idx *snapshotIndex, supplierKey uuid.UUID, name string, bounds, prevBounds period.Bounds) SupplierRow {
	txns := idx.supplierTxns(supplierKey)

	previous := aggregation.ReplayBalance(txns, idx.priceOf, prevBounds.End)
	amounts := aggregation.SumPriced(aggregation.InRange(txns, bounds), idx.priceOf)
	change := amounts.Change()

	displayStock := decimal.Zero
	for _, product := range idx.bySupplier[supplierKey] {
		qty := decimal.NewFromInt(int64(idx.stock[product.ID]))
		displayStock = displayStock.Add(qty.Mul(product.UnitPrice))
	}

	return SupplierRow{
		SupplierID:        supplierKey,
		SupplierName:      name,
		PreviousBalance:   previous,
		Purchase:          amounts.Purchase,
		PurchaseTax:       amounts.Purchase.Mul(taxRate),
		StockIn:           amounts.StockIn,
		Usage:             amounts.Usage,
		Change:            change,
		CalculatedBalance: previous.Add(change),
		DisplayStock:      displayStock,
		ActualStock:       displayStock,
	}
}

func grandTotal(rows []SupplierRow) SupplierRow {
	total := SupplierRow{
		SupplierName:      "total",
		PreviousBalance:   decimal.Zero,
		Purchase:          decimal.Zero,
		PurchaseTax:       decimal.Zero,
		StockIn:           decimal.Zero,
		Usage:             decimal.Zero,
		Change:            decimal.Zero,
		CalculatedBalance: decimal.Zero,
		DisplayStock:      decimal.Zero,
		ActualStock:       decimal.Zero,
	}
	for _, row := range rows {
		total.PreviousBalance = total.PreviousBalance.Add(row.PreviousBalance)
		total.Purchase = total.Purchase.Add(row.Purchase)
		total.PurchaseTax = total.PurchaseTax.Add(row.PurchaseTax)
		total.StockIn = total.StockIn.Add(row.StockIn)
		total.Usage = total.Usage.Add(row.Usage)
		total.Change = total.Change.Add(row.Change)
		total.CalculatedBalance = total.CalculatedBalance.Add(row.CalculatedBalance)
		total.DisplayStock = total.DisplayStock.Add(row.DisplayStock)
		total.ActualStock = total.ActualStock.Add(row.ActualStock)
	}
	return total
}

func (b *Builder) productRows(idx *snapshotIndex, bounds, prevBounds period.Bounds, weeks []period.WeekBucket, days []period.DayBucket) []ProductRow {
	rows := make([]ProductRow, 0, len(idx.products))
	for _, product := range idx.products {
		txns := idx.txnsByProduct[product.ID]
		monthTxns := aggregation.InRange(txns, bounds)
		totals := aggregation.Sum(monthTxns)

		// The quantity carry-forward covers one month only; this asymmetry
		// with the cumulative monetary balance is deliberate.
		prevStock := aggregation.ReplayQuantity(aggregation.InRange(txns, prevBounds))
		balance := prevStock + totals.Net()

		live := idx.stock[product.ID]
		shortage := product.MinStock - live
		if shortage < 0 {
			shortage = 0
		}

		noteQty := aggregation.NoteQuantities(monthTxns, b.notes)

		row := ProductRow{
			ProductID:        product.ID,
			SupplierID:       product.SupplierID,
			ProductName:      product.Name,
			SupplierName:     idx.supplierName(product.SupplierID),
			UnitPrice:        product.UnitPrice,
			PrevMonthStock:   prevStock,
			Purchase:         totals.Purchase,
			StockIn:          totals.StockIn,
			Usage:            totals.Usage,
			ThisMonthBalance: balance,
			CurrentStock:     live,
			Diff:             live - balance,
			MinStock:         product.MinStock,
			Shortage:         shortage,
			OrderAmount:      decimal.NewFromInt(int64(shortage)).Mul(product.UnitPrice),
			ClaimQty:         noteQty[aggregation.NoteTagClaim],
			FactoryQty:       noteQty[aggregation.NoteTagFactory],
			Customers:        customerRows(monthTxns, idx.priceOf),
			Weekly:           weeklySeries(txns, weeks),
			Daily:            dailySeries(txns, days),
		}
		rows = append(rows, row)
	}
	return rows
}

func customerRows(txns []models.Transaction, priceOf aggregation.PriceFunc) []CustomerUsageRow {
	breakdown := aggregation.CustomerBreakdown(txns, priceOf)
	rows := make([]CustomerUsageRow, 0, len(breakdown))
	for _, usage := range breakdown {
		rows = append(rows, CustomerUsageRow{
			CustomerID: usage.CustomerID,
			Quantity:   usage.Quantity,
			Amount:     usage.Amount,
		})
	}
	return rows
}

func weeklySeries(txns []models.Transaction, buckets []period.WeekBucket) []SeriesPoint {
	points := make([]SeriesPoint, 0, len(buckets))
	for _, bucket := range buckets {
		totals := aggregation.Sum(aggregation.InRange(txns, bucket.Bounds))
		points = append(points, SeriesPoint{
			Label:    bucket.Label,
			Start:    bucket.Start,
			End:      bucket.End,
			Purchase: totals.Purchase,
			StockIn:  totals.StockIn,
			Usage:    totals.Usage,
		})
	}
	return points
}

func dailySeries(txns []models.Transaction, buckets []period.DayBucket) []SeriesPoint {
	points := make([]SeriesPoint, 0, len(buckets))
	for _, bucket := range buckets {
		totals := aggregation.Sum(aggregation.InRange(txns, bucket.Bounds))
		points = append(points, SeriesPoint{
			Label:    bucket.Label,
			Start:    bucket.Start,
			End:      bucket.End,
			Purchase: totals.Purchase,
			StockIn:  totals.StockIn,
			Usage:    totals.Usage,
		})
	}
	return points
}
