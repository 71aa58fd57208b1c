package ledger

import (
	"time"

	"github.com/google/uuid"

	"github.com/koyamadev/stockkeeper-backend/pkg/db/models"
	"github.com/koyamadev/stockkeeper-backend/pkg/enums"
)

// AdjustStockInput carries one stock movement to be appended to the ledger.
type AdjustStockInput struct {
	ProductID  uuid.UUID
	Type       enums.TxnType
	SubType    enums.TxnSubType
	Quantity   int
	OccurredAt *time.Time
	CustomerID *string
	Operator   *string
	Note       *string
}

// TransactionDTO is the API projection of a ledger row.
type TransactionDTO struct {
	ID         uuid.UUID        `json:"id"`
	ProductID  uuid.UUID        `json:"productId"`
	Type       enums.TxnType    `json:"type"`
	SubType    enums.TxnSubType `json:"subType"`
	Quantity   int              `json:"quantity"`
	OccurredAt time.Time        `json:"occurredAt"`
	CustomerID *string          `json:"customerId,omitempty"`
	Operator   *string          `json:"operator,omitempty"`
	Note       *string          `json:"note,omitempty"`
	CreatedAt  time.Time        `json:"createdAt"`
}

// StockDTO is the API projection of a stock level row.
type StockDTO struct {
	ProductID     uuid.UUID  `json:"productId"`
	Quantity      int        `json:"quantity"`
	LastUpdated   time.Time  `json:"lastUpdated"`
	LastOrderedAt *time.Time `json:"lastOrderedAt,omitempty"`
}

// AdjustStockResult returns both rows touched by a stock movement.
type AdjustStockResult struct {
	Transaction TransactionDTO `json:"transaction"`
	Stock       StockDTO       `json:"stock"`
}

// TransactionPage is one page of the ledger in reverse insertion order.
type TransactionPage struct {
	Transactions []TransactionDTO `json:"transactions"`
	NextCursor   string           `json:"nextCursor,omitempty"`
}

// Snapshot is a point-in-time read of every table the rollup engine needs.
type Snapshot struct {
	Suppliers    []models.Supplier
	Products     []models.Product
	StockLevels  []models.StockLevel
	Transactions []models.Transaction
}

func newTransaction(input AdjustStockInput, occurredAt time.Time) models.Transaction {
	return models.Transaction{
		ID:         uuid.New(),
		ProductID:  input.ProductID,
		Type:       input.Type,
		SubType:    input.SubType,
		Quantity:   input.Quantity,
		OccurredAt: occurredAt,
		CustomerID: input.CustomerID,
		Operator:   input.Operator,
		Note:       input.Note,
	}
}

func newStockLevel(productID uuid.UUID) *models.StockLevel {
	return &models.StockLevel{ProductID: productID}
}

func toTransactionDTO(txn models.Transaction) TransactionDTO {
	return TransactionDTO{
		ID:         txn.ID,
		ProductID:  txn.ProductID,
		Type:       txn.Type,
		SubType:    txn.SubType,
		Quantity:   txn.Quantity,
		OccurredAt: txn.OccurredAt,
		CustomerID: txn.CustomerID,
		Operator:   txn.Operator,
		Note:       txn.Note,
		CreatedAt:  txn.CreatedAt,
	}
}

func toStockDTO(level models.StockLevel) StockDTO {
	return StockDTO{
		ProductID:     level.ProductID,
		Quantity:      level.Quantity,
		LastUpdated:   level.LastUpdated,
		LastOrderedAt: level.LastOrderedAt,
	}
}
