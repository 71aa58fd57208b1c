package models

import (
	"time"

	"github.com/google/uuid"
)

// StockLevel caches the physical count per product. It is mutated directly by
// stock adjustments and is NOT derived from the transaction ledger; the two
// drifting apart is expected and surfaced by reconciliation as the diff.
type StockLevel struct {
	ProductID     uuid.UUID  `gorm:"column:product_id;type:uuid;primaryKey"`
	Quantity      int        `gorm:"column:quantity;not null;default:0"`
	LastUpdated   time.Time  `gorm:"column:last_updated;autoUpdateTime"`
	LastOrderedAt *time.Time `gorm:"column:last_ordered_at"`
}
