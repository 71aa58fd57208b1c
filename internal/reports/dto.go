package reports

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// MonthlySummary is the full reconciliation report for one calendar month.
type MonthlySummary struct {
	Year        int           `json:"year"`
	Month       int           `json:"month"`
	Label       string        `json:"label"`
	GeneratedAt time.Time     `json:"generatedAt"`
	Suppliers   []SupplierRow `json:"suppliers"`
	GrandTotal  SupplierRow   `json:"grandTotal"`
	Products    []ProductRow  `json:"products"`
}

// SupplierRow is one supplier's monetary reconciliation line.
type SupplierRow struct {
	SupplierID   uuid.UUID `json:"supplierId"`
	SupplierName string    `json:"supplierName"`

	// PreviousBalance replays every transaction of the supplier's products
	// since inception up to the end of the previous month.
	PreviousBalance decimal.Decimal `json:"previousBalance"`

	Purchase    decimal.Decimal `json:"purchase"`
	PurchaseTax decimal.Decimal `json:"purchaseTax"`
	StockIn     decimal.Decimal `json:"stockIn"`
	Usage       decimal.Decimal `json:"usage"`

	Change            decimal.Decimal `json:"change"`
	CalculatedBalance decimal.Decimal `json:"calculatedBalance"`

	// DisplayStock and ActualStock are both live-quantity valuations. They
	// are kept as separate fields; the physical count workflow that would
	// make them diverge writes through stock adjustments today.
	DisplayStock decimal.Decimal `json:"displayStock"`
	ActualStock  decimal.Decimal `json:"actualStock"`
}

// ProductRow is one product's quantity reconciliation line.
type ProductRow struct {
	ProductID    uuid.UUID       `json:"productId"`
	SupplierID   uuid.UUID       `json:"supplierId"`
	ProductName  string          `json:"productName"`
	SupplierName string          `json:"supplierName"`
	UnitPrice    decimal.Decimal `json:"unitPrice"`

	// PrevMonthStock replays only the previous month's quantities, not the
	// whole history. The monetary side carries forward cumulatively; the
	// quantity side does not.
	PrevMonthStock int `json:"prevMonthStock"`

	Purchase int `json:"purchase"`
	StockIn  int `json:"stockIn"`
	Usage    int `json:"usage"`

	ThisMonthBalance int `json:"thisMonthBalance"`
	CurrentStock     int `json:"currentStock"`

	// Diff is live stock minus the calculated balance. It is reported, never
	// written back.
	Diff int `json:"diff"`

	MinStock    int             `json:"minStock"`
	Shortage    int             `json:"shortage"`
	OrderAmount decimal.Decimal `json:"orderAmount"`

	ClaimQty   int `json:"claimQty"`
	FactoryQty int `json:"factoryQty"`

	Customers []CustomerUsageRow `json:"customers,omitempty"`
	Weekly    []SeriesPoint      `json:"weekly"`
	Daily     []SeriesPoint      `json:"daily"`
}

// CustomerUsageRow is one customer's usage share for a product and month.
type CustomerUsageRow struct {
	CustomerID string          `json:"customerId"`
	Quantity   int             `json:"quantity"`
	Amount     decimal.Decimal `json:"amount"`
}

// SeriesPoint is one bucket of a per-week or per-day quantity series.
type SeriesPoint struct {
	Label    string    `json:"label"`
	Start    time.Time `json:"start"`
	End      time.Time `json:"end"`
	Purchase int       `json:"purchase"`
	StockIn  int       `json:"stockIn"`
	Usage    int       `json:"usage"`
}

// ShortageItem is one product below its minimum stock threshold.
type ShortageItem struct {
	ProductID    uuid.UUID       `json:"productId"`
	ProductName  string          `json:"productName"`
	SupplierName string          `json:"supplierName"`
	CurrentStock int             `json:"currentStock"`
	MinStock     int             `json:"minStock"`
	Shortage     int             `json:"shortage"`
	ReorderQty   *int            `json:"reorderQty,omitempty"`
	OrderAmount  decimal.Decimal `json:"orderAmount"`
}
