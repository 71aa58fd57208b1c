package enums

import "fmt"

// TxnType maps to the txn_type_enum enum in Postgres.
type TxnType string

const (
	TxnTypeIn  TxnType = "in"
	TxnTypeOut TxnType = "out"
)

var validTxnTypes = []TxnType{
	TxnTypeIn,
	TxnTypeOut,
}

// IsValid reports whether the value matches the canonical transaction type enum.
func (t TxnType) IsValid() bool {
	for _, candidate := range validTxnTypes {
		if candidate == t {
			return true
		}
	}
	return false
}

// IsInbound reports whether the movement adds stock.
func (t TxnType) IsInbound() bool {
	return t == TxnTypeIn
}

// IsOutbound reports whether the movement removes stock.
func (t TxnType) IsOutbound() bool {
	return t == TxnTypeOut
}

// ParseTxnType converts raw input into TxnType.
func ParseTxnType(value string) (TxnType, error) {
	for _, candidate := range validTxnTypes {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid transaction type %q", value)
}
