package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"github.com/shopspring/decimal"
)

// Product is a tracked inventory item. SupplierID may dangle after a supplier
// is removed; read paths render the supplier name as "unknown" in that case.
type Product struct {
	ID         uuid.UUID       `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	SupplierID uuid.UUID       `gorm:"column:supplier_id;type:uuid;not null"`
	Name       string          `gorm:"column:name;not null"`
	UnitPrice  decimal.Decimal `gorm:"column:unit_price;type:numeric(12,2);not null"`
	MinStock   int             `gorm:"column:min_stock;not null;default:0"`
	IdealStock *int            `gorm:"column:ideal_stock"`
	ReorderQty *int            `gorm:"column:reorder_qty"`
	LeadDays   *int            `gorm:"column:lead_days"`
	Category   *string         `gorm:"column:category"`
	Barcode    *string         `gorm:"column:barcode"`
	Tags       pq.StringArray  `gorm:"column:tags;type:text[]"`
	Stock      *StockLevel     `gorm:"foreignKey:ProductID;constraint:OnDelete:CASCADE"`
	CreatedAt  time.Time       `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt  time.Time       `gorm:"column:updated_at;autoUpdateTime"`
}
