package suppliers

import (
	"time"

	"github.com/google/uuid"

	"github.com/koyamadev/stockkeeper-backend/pkg/db/models"
)

// SupplierDTO is the API projection of a supplier.
type SupplierDTO struct {
	ID           uuid.UUID `json:"id"`
	Name         string    `json:"name"`
	ProductCount int       `json:"productCount"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
}

// CreateSupplierInput carries the fields for a new supplier.
type CreateSupplierInput struct {
	Name string
}

// UpdateSupplierInput renames an existing supplier.
type UpdateSupplierInput struct {
	ID   uuid.UUID
	Name string
}

func newSupplier(name string) *models.Supplier {
	return &models.Supplier{ID: uuid.New(), Name: name}
}

func toSupplierDTO(supplier models.Supplier, productCount int) SupplierDTO {
	return SupplierDTO{
		ID:           supplier.ID,
		Name:         supplier.Name,
		ProductCount: productCount,
		CreatedAt:    supplier.CreatedAt,
		UpdatedAt:    supplier.UpdatedAt,
	}
}
