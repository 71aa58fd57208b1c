package ledger

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	pkgerrors "github.com/koyamadev/stockkeeper-backend/pkg/errors"
	"github.com/koyamadev/stockkeeper-backend/pkg/pagination"
)

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

// SummaryInvalidator drops cached monthly summaries after a ledger mutation.
type SummaryInvalidator interface {
	InvalidateSummaries(ctx context.Context) error
}

// Service exposes the write path of the ledger plus the snapshot reads the
// rollup engine and reports are built on.
type Service interface {
	AdjustStock(ctx context.Context, input AdjustStockInput) (*AdjustStockResult, error)
	GetStock(ctx context.Context, productID uuid.UUID) (*StockDTO, error)
	ListStock(ctx context.Context) ([]StockDTO, error)
	ListTransactions(ctx context.Context, params pagination.Params) (*TransactionPage, error)
	Snapshot(ctx context.Context) (*Snapshot, error)
	ClearAll(ctx context.Context) error
}

type service struct {
	repo        Repository
	tx          txRunner
	invalidator SummaryInvalidator
}

// NewService wires the ledger service. The invalidator is optional.
func NewService(repo Repository, tx txRunner, invalidator SummaryInvalidator) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("ledger repository is required")
	}
	if tx == nil {
		return nil, fmt.Errorf("transaction runner is required")
	}
	return &service{repo: repo, tx: tx, invalidator: invalidator}, nil
}

// AdjustStock appends exactly one ledger row and moves the stock counter by
// the same quantity inside a single transaction. Stock never goes below zero;
// the ledger row still records the full requested quantity.
func (s *service) AdjustStock(ctx context.Context, input AdjustStockInput) (*AdjustStockResult, error) {
	if err := validateAdjustInput(input); err != nil {
		return nil, err
	}

	if _, err := s.repo.FindProduct(ctx, input.ProductID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "product not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "loading product")
	}

	occurredAt := time.Now()
	if input.OccurredAt != nil {
		occurredAt = *input.OccurredAt
	}

	txn := newTransaction(input, occurredAt)
	var stock StockDTO

	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)

		if err := repo.CreateTransaction(ctx, &txn); err != nil {
			return fmt.Errorf("appending ledger row: %w", err)
		}

		level, err := repo.GetStockLevelForUpdate(ctx, input.ProductID)
		if err != nil {
			if !errors.Is(err, gorm.ErrRecordNotFound) {
				return fmt.Errorf("loading stock level: %w", err)
			}
			level = newStockLevel(input.ProductID)
		}

		delta := input.Quantity
		if input.Type.IsOutbound() {
			delta = -delta
		}
		level.Quantity += delta
		if level.Quantity < 0 {
			level.Quantity = 0
		}
		if input.Type.IsInbound() {
			now := occurredAt
			level.LastOrderedAt = &now
		}

		if err := repo.SaveStockLevel(ctx, level); err != nil {
			return fmt.Errorf("saving stock level: %w", err)
		}

		stock = toStockDTO(*level)
		return nil
	})
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "adjusting stock")
	}

	s.invalidate(ctx)

	return &AdjustStockResult{
		Transaction: toTransactionDTO(txn),
		Stock:       stock,
	}, nil
}

// GetStock reads the live counter for one product. A product with no stock
// row yet reads as zero rather than not found.
func (s *service) GetStock(ctx context.Context, productID uuid.UUID) (*StockDTO, error) {
	if productID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "product id is required")
	}

	level, err := s.repo.GetStockLevel(ctx, productID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return &StockDTO{ProductID: productID}, nil
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "loading stock level")
	}

	dto := toStockDTO(*level)
	return &dto, nil
}

func (s *service) ListStock(ctx context.Context) ([]StockDTO, error) {
	levels, err := s.repo.AllStockLevels(ctx)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "listing stock levels")
	}

	dtos := make([]StockDTO, 0, len(levels))
	for _, level := range levels {
		dtos = append(dtos, toStockDTO(level))
	}
	return dtos, nil
}

func (s *service) ListTransactions(ctx context.Context, params pagination.Params) (*TransactionPage, error) {
	txns, err := s.repo.ListTransactions(ctx, params)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "listing transactions")
	}

	limit := pagination.NormalizeLimit(params.Limit)
	page := &TransactionPage{Transactions: make([]TransactionDTO, 0, len(txns))}

	for i, txn := range txns {
		if i == limit {
			last := txns[i-1]
			page.NextCursor = pagination.EncodeCursor(pagination.Cursor{
				CreatedAt: last.CreatedAt,
				ID:        last.ID,
			})
			break
		}
		page.Transactions = append(page.Transactions, toTransactionDTO(txn))
	}
	return page, nil
}

// Snapshot reads all four tables in one shot for the rollup engine.
func (s *service) Snapshot(ctx context.Context) (*Snapshot, error) {
	suppliers, err := s.repo.AllSuppliers(ctx)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "loading suppliers")
	}
	products, err := s.repo.AllProducts(ctx)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "loading products")
	}
	levels, err := s.repo.AllStockLevels(ctx)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "loading stock levels")
	}
	txns, err := s.repo.AllTransactions(ctx)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "loading transactions")
	}

	return &Snapshot{
		Suppliers:    suppliers,
		Products:     products,
		StockLevels:  levels,
		Transactions: txns,
	}, nil
}

// ClearAll wipes transactions and stock levels. Products and suppliers stay.
func (s *service) ClearAll(ctx context.Context) error {
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		return s.repo.WithTx(tx).ClearLedger(ctx)
	})
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "clearing ledger")
	}

	s.invalidate(ctx)
	return nil
}

func (s *service) invalidate(ctx context.Context) {
	if s.invalidator == nil {
		return
	}
	_ = s.invalidator.InvalidateSummaries(ctx)
}

func validateAdjustInput(input AdjustStockInput) error {
	if input.ProductID == uuid.Nil {
		return pkgerrors.New(pkgerrors.CodeValidation, "product id is required")
	}
	if input.Quantity <= 0 {
		return pkgerrors.New(pkgerrors.CodeValidation, "quantity must be positive")
	}
	if !input.Type.IsValid() {
		return pkgerrors.New(pkgerrors.CodeValidation, "invalid transaction type")
	}
	if !input.SubType.IsValid() {
		return pkgerrors.New(pkgerrors.CodeValidation, "invalid transaction sub type")
	}
	return nil
}
