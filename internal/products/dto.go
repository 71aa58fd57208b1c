package products

import (
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"github.com/shopspring/decimal"

	"github.com/koyamadev/stockkeeper-backend/pkg/db/models"
)

// ProductDTO is the API projection of a product plus its live stock counter.
type ProductDTO struct {
	ID            uuid.UUID       `json:"id"`
	SupplierID    uuid.UUID       `json:"supplierId"`
	Name          string          `json:"name"`
	UnitPrice     decimal.Decimal `json:"unitPrice"`
	MinStock      int             `json:"minStock"`
	IdealStock    *int            `json:"idealStock,omitempty"`
	ReorderQty    *int            `json:"reorderQty,omitempty"`
	LeadDays      *int            `json:"leadDays,omitempty"`
	Category      *string         `json:"category,omitempty"`
	Barcode       *string         `json:"barcode,omitempty"`
	Tags          []string        `json:"tags,omitempty"`
	CurrentStock  int             `json:"currentStock"`
	LastOrderedAt *time.Time      `json:"lastOrderedAt,omitempty"`
	CreatedAt     time.Time       `json:"createdAt"`
	UpdatedAt     time.Time       `json:"updatedAt"`
}

// CreateProductInput carries the fields for a new product.
type CreateProductInput struct {
	SupplierID   uuid.UUID
	Name         string
	UnitPrice    decimal.Decimal
	MinStock     int
	IdealStock   *int
	ReorderQty   *int
	LeadDays     *int
	Category     *string
	Barcode      *string
	Tags         []string
	InitialStock int
}

// UpdateProductInput mutates an existing product. Nil pointers leave the
// corresponding field untouched.
type UpdateProductInput struct {
	ID         uuid.UUID
	Name       *string
	UnitPrice  *decimal.Decimal
	MinStock   *int
	IdealStock *int
	ReorderQty *int
	LeadDays   *int
	Category   *string
	Barcode    *string
	Tags       []string
}

// ImportRow is one line of a bulk catalog import. Suppliers are resolved by
// name and created on the fly when missing.
type ImportRow struct {
	SupplierName string
	Name         string
	UnitPrice    decimal.Decimal
	MinStock     int
	InitialStock int
	Category     *string
	Barcode      *string
}

// ImportResult summarizes a bulk import run.
type ImportResult struct {
	ProductsCreated  int `json:"productsCreated"`
	SuppliersCreated int `json:"suppliersCreated"`
	RowsSkipped      int `json:"rowsSkipped"`
}

func toProductDTO(product models.Product, stock *models.StockLevel) ProductDTO {
	dto := ProductDTO{
		ID:         product.ID,
		SupplierID: product.SupplierID,
		Name:       product.Name,
		UnitPrice:  product.UnitPrice,
		MinStock:   product.MinStock,
		IdealStock: product.IdealStock,
		ReorderQty: product.ReorderQty,
		LeadDays:   product.LeadDays,
		Category:   product.Category,
		Barcode:    product.Barcode,
		Tags:       []string(product.Tags),
		CreatedAt:  product.CreatedAt,
		UpdatedAt:  product.UpdatedAt,
	}
	if stock != nil {
		dto.CurrentStock = stock.Quantity
		dto.LastOrderedAt = stock.LastOrderedAt
	}
	return dto
}

func newProduct(input CreateProductInput) *models.Product {
	return &models.Product{
		ID:         uuid.New(),
		SupplierID: input.SupplierID,
		Name:       input.Name,
		UnitPrice:  input.UnitPrice,
		MinStock:   input.MinStock,
		IdealStock: input.IdealStock,
		ReorderQty: input.ReorderQty,
		LeadDays:   input.LeadDays,
		Category:   input.Category,
		Barcode:    input.Barcode,
		Tags:       pq.StringArray(input.Tags),
	}
}
