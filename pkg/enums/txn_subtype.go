package enums

import "fmt"

// TxnSubType maps to the txn_subtype_enum enum in Postgres. The empty value
// is legal: ledger rows imported from older data carry no subtype.
type TxnSubType string

const (
	TxnSubTypeNone       TxnSubType = ""
	TxnSubTypePurchase   TxnSubType = "purchase"
	TxnSubTypeStockIn    TxnSubType = "stock_in"
	TxnSubTypeUsage      TxnSubType = "usage"
	TxnSubTypeAdjustment TxnSubType = "adjustment"
)

var validTxnSubTypes = []TxnSubType{
	TxnSubTypeNone,
	TxnSubTypePurchase,
	TxnSubTypeStockIn,
	TxnSubTypeUsage,
	TxnSubTypeAdjustment,
}

// IsValid reports whether the value matches the canonical subtype enum.
// The empty subtype is considered valid.
func (t TxnSubType) IsValid() bool {
	for _, candidate := range validTxnSubTypes {
		if candidate == t {
			return true
		}
	}
	return false
}

// ParseTxnSubType converts raw input into TxnSubType.
func ParseTxnSubType(value string) (TxnSubType, error) {
	for _, candidate := range validTxnSubTypes {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid transaction subtype %q", value)
}
