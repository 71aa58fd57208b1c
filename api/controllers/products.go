package controllers

import (
	"net/http"
	"strings"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/koyamadev/stockkeeper-backend/api/responses"
	"github.com/koyamadev/stockkeeper-backend/api/validators"
	productsvc "github.com/koyamadev/stockkeeper-backend/internal/products"
	pkgerrors "github.com/koyamadev/stockkeeper-backend/pkg/errors"
	"github.com/koyamadev/stockkeeper-backend/pkg/logger"
)

func ListProducts(svc productsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "product service unavailable"))
			return
		}

		products, err := svc.List(r.Context())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, products)
	}
}

func GetProduct(svc productsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "product service unavailable"))
			return
		}

		id, err := parseIDParam(r, "productId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		product, err := svc.Get(r.Context(), id)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, product)
	}
}

func CreateProduct(svc productsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "product service unavailable"))
			return
		}

		var payload createProductRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		input, err := payload.toCreateInput()
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		product, err := svc.Create(r.Context(), input)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccessStatus(w, http.StatusCreated, product)
	}
}

func UpdateProduct(svc productsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "product service unavailable"))
			return
		}

		id, err := parseIDParam(r, "productId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var payload updateProductRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		input, err := payload.toUpdateInput(id)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		product, err := svc.Update(r.Context(), input)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, product)
	}
}

func DeleteProduct(svc productsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "product service unavailable"))
			return
		}

		id, err := parseIDParam(r, "productId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		if err := svc.Delete(r.Context(), id); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, map[string]string{"status": "deleted"})
	}
}

// ImportProducts ingests a bulk product list, creating unknown suppliers on
// the fly and skipping rows that collide with existing product names.
func ImportProducts(svc productsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "product service unavailable"))
			return
		}

		var payload importProductsRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		rows, err := payload.toImportRows()
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		result, err := svc.Import(r.Context(), rows)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, result)
	}
}

type createProductRequest struct {
	SupplierID   string   `json:"supplier_id" validate:"required,uuid"`
	Name         string   `json:"name" validate:"required"`
	UnitPrice    string   `json:"unit_price" validate:"required"`
	MinStock     int      `json:"min_stock" validate:"min=0"`
	IdealStock   *int     `json:"ideal_stock,omitempty" validate:"omitempty,min=0"`
	ReorderQty   *int     `json:"reorder_qty,omitempty" validate:"omitempty,min=1"`
	LeadDays     *int     `json:"lead_days,omitempty" validate:"omitempty,min=0"`
	Category     *string  `json:"category,omitempty"`
	Barcode      *string  `json:"barcode,omitempty"`
	Tags         []string `json:"tags,omitempty" validate:"omitempty,dive,required"`
	InitialStock int      `json:"initial_stock" validate:"min=0"`
}

func (r createProductRequest) toCreateInput() (productsvc.CreateProductInput, error) {
	supplierID, err := uuid.Parse(strings.TrimSpace(r.SupplierID))
	if err != nil {
		return productsvc.CreateProductInput{}, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid supplier id")
	}

	price, err := parsePrice(r.UnitPrice)
	if err != nil {
		return productsvc.CreateProductInput{}, err
	}

	return productsvc.CreateProductInput{
		SupplierID:   supplierID,
		Name:         strings.TrimSpace(r.Name),
		UnitPrice:    price,
		MinStock:     r.MinStock,
		IdealStock:   r.IdealStock,
		ReorderQty:   r.ReorderQty,
		LeadDays:     r.LeadDays,
		Category:     r.Category,
		Barcode:      r.Barcode,
		Tags:         r.Tags,
		InitialStock: r.InitialStock,
	}, nil
}

type updateProductRequest struct {
	Name       *string  `json:"name,omitempty"`
	UnitPrice  *string  `json:"unit_price,omitempty"`
	MinStock   *int     `json:"min_stock,omitempty" validate:"omitempty,min=0"`
	IdealStock *int     `json:"ideal_stock,omitempty" validate:"omitempty,min=0"`
	ReorderQty *int     `json:"reorder_qty,omitempty" validate:"omitempty,min=1"`
	LeadDays   *int     `json:"lead_days,omitempty" validate:"omitempty,min=0"`
	Category   *string  `json:"category,omitempty"`
	Barcode    *string  `json:"barcode,omitempty"`
	Tags       []string `json:"tags,omitempty" validate:"omitempty,dive,required"`
}

func (r updateProductRequest) toUpdateInput(id uuid.UUID) (productsvc.UpdateProductInput, error) {
	input := productsvc.UpdateProductInput{
		ID:         id,
		Name:       r.Name,
		MinStock:   r.MinStock,
		IdealStock: r.IdealStock,
		ReorderQty: r.ReorderQty,
		LeadDays:   r.LeadDays,
		Category:   r.Category,
		Barcode:    r.Barcode,
		Tags:       r.Tags,
	}
	if r.UnitPrice != nil {
		price, err := parsePrice(*r.UnitPrice)
		if err != nil {
			return productsvc.UpdateProductInput{}, err
		}
		input.UnitPrice = &price
	}
	return input, nil
}

type importProductsRequest struct {
	Rows []importProductRow `json:"rows" validate:"required,min=1,dive"`
}

type importProductRow struct {
	SupplierName string  `json:"supplier_name" validate:"required"`
	Name         string  `json:"name" validate:"required"`
	UnitPrice    string  `json:"unit_price" validate:"required"`
	MinStock     int     `json:"min_stock" validate:"min=0"`
	InitialStock int     `json:"initial_stock" validate:"min=0"`
	Category     *string `json:"category,omitempty"`
	Barcode      *string `json:"barcode,omitempty"`
}

func (r importProductsRequest) toImportRows() ([]productsvc.ImportRow, error) {
	rows := make([]productsvc.ImportRow, 0, len(r.Rows))
	for _, row := range r.Rows {
		price, err := parsePrice(row.UnitPrice)
		if err != nil {
			return nil, err
		}
		rows = append(rows, productsvc.ImportRow{
			SupplierName: strings.TrimSpace(row.SupplierName),
			Name:         strings.TrimSpace(row.Name),
			UnitPrice:    price,
			MinStock:     row.MinStock,
			InitialStock: row.InitialStock,
			Category:     row.Category,
			Barcode:      row.Barcode,
		})
	}
	return rows, nil
}

func parsePrice(raw string) (decimal.Decimal, error) {
	price, err := decimal.NewFromString(strings.TrimSpace(raw))
	if err != nil {
		return decimal.Decimal{}, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid unit price")
	}
	if price.IsNegative() {
		return decimal.Decimal{}, pkgerrors.New(pkgerrors.CodeValidation, "unit price must not be negative")
	}
	return price, nil
}
