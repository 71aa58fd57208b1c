package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/koyamadev/stockkeeper-backend/pkg/enums"
)

// Transaction is an immutable ledger entry. Rows are append-only: nothing
// updates or deletes them individually, and rows referencing deleted products
// are kept and tolerated by aggregation. OccurredAt drives all period math;
// CreatedAt only drives display ordering.
type Transaction struct {
	ID         uuid.UUID        `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	ProductID  uuid.UUID        `gorm:"column:product_id;type:uuid;not null"`
	Type       enums.TxnType    `gorm:"column:type;type:txn_type_enum;not null"`
	SubType    enums.TxnSubType `gorm:"column:sub_type;type:txn_subtype_enum;not null;default:''"`
	Quantity   int              `gorm:"column:quantity;not null"`
	OccurredAt time.Time        `gorm:"column:occurred_at;not null"`
	CustomerID *string          `gorm:"column:customer_id"`
	Operator   *string          `gorm:"column:operator"`
	Note       *string          `gorm:"column:note"`
	CreatedAt  time.Time        `gorm:"column:created_at;autoCreateTime"`
}
