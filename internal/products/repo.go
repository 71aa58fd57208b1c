package products

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/koyamadev/stockkeeper-backend/pkg/db/models"
)

// Repository exposes product persistence plus the supplier lookups the
// import path needs.
type Repository interface {
	WithTx(tx *gorm.DB) Repository

	Create(ctx context.Context, product *models.Product) error
	Update(ctx context.Context, product *models.Product) error
	Delete(ctx context.Context, id uuid.UUID) error
	Find(ctx context.Context, id uuid.UUID) (*models.Product, error)
	List(ctx context.Context) ([]models.Product, error)

	StockLevels(ctx context.Context) (map[uuid.UUID]models.StockLevel, error)
	SaveStockLevel(ctx context.Context, level *models.StockLevel) error
	DeleteStockLevel(ctx context.Context, productID uuid.UUID) error

	SupplierByName(ctx context.Context, name string) (*models.Supplier, error)
	CreateSupplier(ctx context.Context, supplier *models.Supplier) error
}

type repository struct {
	db *gorm.DB
}

// NewRepository builds a product repository bound to the provided DB.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repository{db: tx}
}

func (r *repository) Create(ctx context.Context, product *models.Product) error {
	if product.ID == uuid.Nil {
		product.ID = uuid.New()
	}
	return r.db.WithContext(ctx).Omit("Stock").Create(product).Error
}

func (r *repository) Update(ctx context.Context, product *models.Product) error {
	return r.db.WithContext(ctx).Omit("Stock").Save(product).Error
}

// Delete removes the product and its stock row. Ledger rows referencing the
// product are left in place on purpose.
func (r *repository) Delete(ctx context.Context, id uuid.UUID) error {
	if err := r.DeleteStockLevel(ctx, id); err != nil {
		return err
	}
	return r.db.WithContext(ctx).Where("id = ?", id).Delete(&models.Product{}).Error
}

func (r *repository) Find(ctx context.Context, id uuid.UUID) (*models.Product, error) {
	var product models.Product
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&product).Error; err != nil {
		return nil, err
	}
	return &product, nil
}

func (r *repository) List(ctx context.Context) ([]models.Product, error) {
	var products []models.Product
	if err := r.db.WithContext(ctx).Order("name ASC").Find(&products).Error; err != nil {
		return nil, err
	}
	return products, nil
}

func (r *repository) StockLevels(ctx context.Context) (map[uuid.UUID]models.StockLevel, error) {
	var levels []models.StockLevel
	if err := r.db.WithContext(ctx).Find(&levels).Error; err != nil {
		return nil, err
	}

	byProduct := make(map[uuid.UUID]models.StockLevel, len(levels))
	for _, level := range levels {
		byProduct[level.ProductID] = level
	}
	return byProduct, nil
}

func (r *repository) SaveStockLevel(ctx context.Context, level *models.StockLevel) error {
	return r.db.WithContext(ctx).Save(level).Error
}

func (r *repository) DeleteStockLevel(ctx context.Context, productID uuid.UUID) error {
	return r.db.WithContext(ctx).Where("product_id = ?", productID).Delete(&models.StockLevel{}).Error
}

func (r *repository) SupplierByName(ctx context.Context, name string) (*models.Supplier, error) {
	var supplier models.Supplier
	if err := r.db.WithContext(ctx).Where("name = ?", name).First(&supplier).Error; err != nil {
		return nil, err
	}
	return &supplier, nil
}

func (r *repository) CreateSupplier(ctx context.Context, supplier *models.Supplier) error {
	if supplier.ID == uuid.Nil {
		supplier.ID = uuid.New()
	}
	return r.db.WithContext(ctx).Create(supplier).Error
}
