package products

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"gorm.io/gorm"

	"github.com/koyamadev/stockkeeper-backend/pkg/db/models"
	pkgerrors "github.com/koyamadev/stockkeeper-backend/pkg/errors"
)

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

// SummaryInvalidator drops cached monthly summaries after a catalog mutation.
type SummaryInvalidator interface {
	InvalidateSummaries(ctx context.Context) error
}

// Service exposes product catalog operations.
type Service interface {
	List(ctx context.Context) ([]ProductDTO, error)
	Get(ctx context.Context, id uuid.UUID) (*ProductDTO, error)
	Create(ctx context.Context, input CreateProductInput) (*ProductDTO, error)
	Update(ctx context.Context, input UpdateProductInput) (*ProductDTO, error)
	Delete(ctx context.Context, id uuid.UUID) error
	Import(ctx context.Context, rows []ImportRow) (*ImportResult, error)
}

type service struct {
	repo        Repository
	tx          txRunner
	invalidator SummaryInvalidator
}

// NewService wires the product service. The invalidator is optional.
func NewService(repo Repository, tx txRunner, invalidator SummaryInvalidator) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("product repository is required")
	}
	if tx == nil {
		return nil, fmt.Errorf("transaction runner is required")
	}
	return &service{repo: repo, tx: tx, invalidator: invalidator}, nil
}

func (s *service) List(ctx context.Context) ([]ProductDTO, error) {
	rows, err := s.repo.List(ctx)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "listing products")
	}
	levels, err := s.repo.StockLevels(ctx)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "loading stock levels")
	}

	dtos := make([]ProductDTO, 0, len(rows))
	for _, product := range rows {
		var stock *models.StockLevel
		if level, ok := levels[product.ID]; ok {
			stock = &level
		}
		dtos = append(dtos, toProductDTO(product, stock))
	}
	return dtos, nil
}

func (s *service) Get(ctx context.Context, id uuid.UUID) (*ProductDTO, error) {
	if id == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "product id is required")
	}

	product, err := s.repo.Find(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "product not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "loading product")
	}

	levels, err := s.repo.StockLevels(ctx)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "loading stock levels")
	}

	var stock *models.StockLevel
	if level, ok := levels[product.ID]; ok {
		stock = &level
	}
	dto := toProductDTO(*product, stock)
	return &dto, nil
}

func (s *service) Create(ctx context.Context, input CreateProductInput) (*ProductDTO, error) {
	if err := validateCreateInput(input); err != nil {
		return nil, err
	}
	input.Name = strings.TrimSpace(input.Name)

	product := newProduct(input)
	stock := &models.StockLevel{ProductID: product.ID, Quantity: input.InitialStock}

	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		if err := repo.Create(ctx, product); err != nil {
			return fmt.Errorf("creating product: %w", err)
		}
		return repo.SaveStockLevel(ctx, stock)
	})
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "creating product")
	}

	s.invalidate(ctx)
	dto := toProductDTO(*product, stock)
	return &dto, nil
}

func (s *service) Update(ctx context.Context, input UpdateProductInput) (*ProductDTO, error) {
	if input.ID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "product id is required")
	}

	product, err := s.repo.Find(ctx, input.ID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "product not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "loading product")
	}

	if err := applyUpdate(product, input); err != nil {
		return nil, err
	}

	if err := s.repo.Update(ctx, product); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "updating product")
	}

	s.invalidate(ctx)

	levels, err := s.repo.StockLevels(ctx)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "loading stock levels")
	}
	var stock *models.StockLevel
	if level, ok := levels[product.ID]; ok {
		stock = &level
	}
	dto := toProductDTO(*product, stock)
	return &dto, nil
}

// Delete removes the product and its stock counter. The transaction ledger
// keeps any rows that reference the product; aggregation treats them as
// orphans with zero unit price.
func (s *service) Delete(ctx context.Context, id uuid.UUID) error {
	if id == uuid.Nil {
		return pkgerrors.New(pkgerrors.CodeValidation, "product id is required")
	}

	if _, err := s.repo.Find(ctx, id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return pkgerrors.New(pkgerrors.CodeNotFound, "product not found")
		}
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "loading product")
	}

	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		return s.repo.WithTx(tx).Delete(ctx, id)
	})
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "deleting product")
	}

	s.invalidate(ctx)
	return nil
}

// Import loads a catalog dump in one transaction. Suppliers are resolved by
// name and created when missing. Rows without a name or supplier are skipped
// rather than failing the batch.
func (s *service) Import(ctx context.Context, rows []ImportRow) (*ImportResult, error) {
	if len(rows) == 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "import requires at least one row")
	}

	result := &ImportResult{}
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		supplierIDs := map[string]uuid.UUID{}

		for _, row := range rows {
			name := strings.TrimSpace(row.Name)
			supplierName := strings.TrimSpace(row.SupplierName)
			if name == "" || supplierName == "" {
				result.RowsSkipped++
				continue
			}

			supplierID, ok := supplierIDs[supplierName]
			if !ok {
				id, created, err := resolveSupplier(ctx, repo, supplierName)
				if err != nil {
					return err
				}
				if created {
					result.SuppliersCreated++
				}
				supplierIDs[supplierName] = id
				supplierID = id
			}

			product := &models.Product{
				ID:         uuid.New(),
				SupplierID: supplierID,
				Name:       name,
				UnitPrice:  row.UnitPrice,
				MinStock:   row.MinStock,
				Category:   row.Category,
				Barcode:    row.Barcode,
				Tags:       pq.StringArray(nil),
			}
			if err := repo.Create(ctx, product); err != nil {
				return fmt.Errorf("creating product %q: %w", name, err)
			}
			if err := repo.SaveStockLevel(ctx, &models.StockLevel{
				ProductID: product.ID,
				Quantity:  row.InitialStock,
			}); err != nil {
				return fmt.Errorf("seeding stock for %q: %w", name, err)
			}
			result.ProductsCreated++
		}
		return nil
	})
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "importing catalog")
	}

	s.invalidate(ctx)
	return result, nil
}

func resolveSupplier(ctx context.Context, repo Repository, name string) (uuid.UUID, bool, error) {
	supplier, err := repo.SupplierByName(ctx, name)
	if err == nil {
		return supplier.ID, false, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return uuid.Nil, false, fmt.Errorf("resolving supplier %q: %w", name, err)
	}

	created := &models.Supplier{ID: uuid.New(), Name: name}
	if err := repo.CreateSupplier(ctx, created); err != nil {
		return uuid.Nil, false, fmt.Errorf("creating supplier %q: %w", name, err)
	}
	return created.ID, true, nil
}

func (s *service) invalidate(ctx context.Context) {
	if s.invalidator == nil {
		return
	}
	_ = s.invalidator.InvalidateSummaries(ctx)
}

func validateCreateInput(input CreateProductInput) error {
	if input.SupplierID == uuid.Nil {
		return pkgerrors.New(pkgerrors.CodeValidation, "supplier id is required")
	}
	if strings.TrimSpace(input.Name) == "" {
		return pkgerrors.New(pkgerrors.CodeValidation, "product name is required")
	}
	if input.UnitPrice.IsNegative() {
		return pkgerrors.New(pkgerrors.CodeValidation, "unit price must not be negative")
	}
	if input.MinStock < 0 {
		return pkgerrors.New(pkgerrors.CodeValidation, "min stock must not be negative")
	}
	if input.InitialStock < 0 {
		return pkgerrors.New(pkgerrors.CodeValidation, "initial stock must not be negative")
	}
	return nil
}

func applyUpdate(product *models.Product, input UpdateProductInput) error {
	if input.Name != nil {
		name := strings.TrimSpace(*input.Name)
		if name == "" {
			return pkgerrors.New(pkgerrors.CodeValidation, "product name is required")
		}
		product.Name = name
	}
	if input.UnitPrice != nil {
		if input.UnitPrice.IsNegative() {
			return pkgerrors.New(pkgerrors.CodeValidation, "unit price must not be negative")
		}
		product.UnitPrice = *input.UnitPrice
	}
	if input.MinStock != nil {
		if *input.MinStock < 0 {
			return pkgerrors.New(pkgerrors.CodeValidation, "min stock must not be negative")
		}
		product.MinStock = *input.MinStock
	}
	if input.IdealStock != nil {
		product.IdealStock = input.IdealStock
	}
	if input.ReorderQty != nil {
		product.ReorderQty = input.ReorderQty
	}
	if input.LeadDays != nil {
		product.LeadDays = input.LeadDays
	}
	if input.Category != nil {
		product.Category = input.Category
	}
	if input.Barcode != nil {
		product.Barcode = input.Barcode
	}
	if input.Tags != nil {
		product.Tags = pq.StringArray(input.Tags)
	}
	return nil
}
