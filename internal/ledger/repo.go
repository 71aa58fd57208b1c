package ledger

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/koyamadev/stockkeeper-backend/pkg/db/models"
	"github.com/koyamadev/stockkeeper-backend/pkg/pagination"
)

// Repository exposes persistence for the transaction ledger and the stock
// quantity table. The ledger is append-only: there is no update or per-row
// delete, only Create and the full wipe.
type Repository interface {
	WithTx(tx *gorm.DB) Repository

	CreateTransaction(ctx context.Context, txn *models.Transaction) error
	ListTransactions(ctx context.Context, params pagination.Params) ([]models.Transaction, error)
	AllTransactions(ctx context.Context) ([]models.Transaction, error)

	GetStockLevel(ctx context.Context, productID uuid.UUID) (*models.StockLevel, error)
	GetStockLevelForUpdate(ctx context.Context, productID uuid.UUID) (*models.StockLevel, error)
	SaveStockLevel(ctx context.Context, level *models.StockLevel) error
	AllStockLevels(ctx context.Context) ([]models.StockLevel, error)

	AllSuppliers(ctx context.Context) ([]models.Supplier, error)
	AllProducts(ctx context.Context) ([]models.Product, error)
	FindProduct(ctx context.Context, productID uuid.UUID) (*models.Product, error)

	ClearLedger(ctx context.Context) error
}

type repository struct {
	db *gorm.DB
}

// NewRepository builds a ledger repository bound to the provided DB.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repository{db: tx}
}

func (r *repository) CreateTransaction(ctx context.Context, txn *models.Transaction) error {
	if txn.ID == uuid.Nil {
		txn.ID = uuid.New()
	}
	return r.db.WithContext(ctx).Create(txn).Error
}

// ListTransactions pages through the ledger in reverse insertion order.
// Display ordering only; aggregation re-filters by OccurredAt.
func (r *repository) ListTransactions(ctx context.Context, params pagination.Params) ([]models.Transaction, error) {
	query := r.db.WithContext(ctx).
		Order("created_at DESC, id DESC").
		Limit(pagination.LimitWithBuffer(params.Limit))

	if params.Cursor != "" {
		cursor, err := pagination.ParseCursor(params.Cursor)
		if err != nil {
			return nil, err
		}
		if cursor != nil {
			query = query.Where(
				"(created_at < ?) OR (created_at = ? AND id < ?)",
				cursor.CreatedAt, cursor.CreatedAt, cursor.ID,
			)
		}
	}

	var txns []models.Transaction
	if err := query.Find(&txns).Error; err != nil {
		return nil, err
	}
	return txns, nil
}

func (r *repository) AllTransactions(ctx context.Context) ([]models.Transaction, error) {
	var txns []models.Transaction
	if err := r.db.WithContext(ctx).Order("occurred_at ASC").Find(&txns).Error; err != nil {
		return nil, err
	}
	return txns, nil
}

func (r *repository) GetStockLevel(ctx context.Context, productID uuid.UUID) (*models.StockLevel, error) {
	var level models.StockLevel
	err := r.db.WithContext(ctx).Where("product_id = ?", productID).First(&level).Error
	if err != nil {
		return nil, err
	}
	return &level, nil
}

// GetStockLevelForUpdate takes a row lock so concurrent adjustments serialize.
// sqlite has no FOR UPDATE; its writer lock covers the same ground.
func (r *repository) GetStockLevelForUpdate(ctx context.Context, productID uuid.UUID) (*models.StockLevel, error) {
	query := r.db.WithContext(ctx)
	if r.db.Dialector.Name() == "postgres" {
		query = query.Clauses(clause.Locking{Strength: "UPDATE"})
	}

	var level models.StockLevel
	if err := query.Where("product_id = ?", productID).First(&level).Error; err != nil {
		return nil, err
	}
	return &level, nil
}

func (r *repository) SaveStockLevel(ctx context.Context, level *models.StockLevel) error {
	level.LastUpdated = time.Now()
	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "product_id"}},
			UpdateAll: true,
		}).
		Create(level).Error
}

func (r *repository) AllStockLevels(ctx context.Context) ([]models.StockLevel, error) {
	var levels []models.StockLevel
	if err := r.db.WithContext(ctx).Find(&levels).Error; err != nil {
		return nil, err
	}
	return levels, nil
}

func (r *repository) AllSuppliers(ctx context.Context) ([]models.Supplier, error) {
	var suppliers []models.Supplier
	if err := r.db.WithContext(ctx).Find(&suppliers).Error; err != nil {
		return nil, err
	}
	return suppliers, nil
}

func (r *repository) AllProducts(ctx context.Context) ([]models.Product, error) {
	var products []models.Product
	if err := r.db.WithContext(ctx).Find(&products).Error; err != nil {
		return nil, err
	}
	return products, nil
}

func (r *repository) FindProduct(ctx context.Context, productID uuid.UUID) (*models.Product, error) {
	var product models.Product
	err := r.db.WithContext(ctx).Where("id = ?", productID).First(&product).Error
	if err != nil {
		return nil, err
	}
	return &product, nil
}

// ClearLedger wipes the transaction ledger and the stock table. This is the
// only delete the ledger supports.
func (r *repository) ClearLedger(ctx context.Context) error {
	if err := r.db.WithContext(ctx).Where("1 = 1").Delete(&models.Transaction{}).Error; err != nil {
		return err
	}
	return r.db.WithContext(ctx).Where("1 = 1").Delete(&models.StockLevel{}).Error
}
