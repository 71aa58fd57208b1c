package models

import (
	"time"

	"github.com/google/uuid"
)

// Supplier is the vendor a product is sourced from. Suppliers referenced by
// transactions stay immutable apart from renames.
type Supplier struct {
	ID        uuid.UUID `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	Name      string    `gorm:"column:name;not null"`
	CreatedAt time.Time `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt time.Time `gorm:"column:updated_at;autoUpdateTime"`
}
