package aggregation

import (
	"strings"

	"github.com/koyamadev/stockkeeper-backend/pkg/db/models"
	"github.com/koyamadev/stockkeeper-backend/pkg/enums"
)

// Class is the monetary rollup bucket a ledger entry falls into. Every
// transaction lands in exactly one class.
type Class int

const (
	// ClassIgnored covers out-transactions that are neither usage nor
	// relevant to monetary rollups (adjustments, untagged outs).
	ClassIgnored Class = iota
	// ClassPurchase is an in-transaction that is not a stock-in receipt.
	// An absent subtype on an in-transaction still counts as a purchase.
	ClassPurchase
	// ClassStockIn is an inventory-adjustment receipt, excluded from
	// purchase totals.
	ClassStockIn
	// ClassUsage is an out-transaction consuming inventory.
	ClassUsage
)

// Classify buckets a ledger entry for monetary rollups.
func Classify(txn models.Transaction) Class {
	switch txn.Type {
	case enums.TxnTypeIn:
		if txn.SubType == enums.TxnSubTypeStockIn {
			return ClassStockIn
		}
		return ClassPurchase
	case enums.TxnTypeOut:
		if txn.SubType == enums.TxnSubTypeUsage {
			return ClassUsage
		}
	}
	return ClassIgnored
}

// NoteRule tags transactions whose free-text note contains any of the
// substrings. The upstream ledger guarantees no structured classification for
// these, so the match stays a swappable rule list rather than an enum.
type NoteRule struct {
	Tag        string
	Substrings []string
}

// NoteClassifier is an ordered rule list; the first matching rule wins.
type NoteClassifier []NoteRule

const (
	NoteTagClaim   = "claim"
	NoteTagFactory = "factory"
)

// DefaultNoteClassifier carries the claim / factory-use substrings observed
// in production ledgers. Deployments override it through configuration.
func DefaultNoteClassifier(claimSubstrings, factorySubstrings []string) NoteClassifier {
	return NoteClassifier{
		{Tag: NoteTagClaim, Substrings: claimSubstrings},
		{Tag: NoteTagFactory, Substrings: factorySubstrings},
	}
}

// Tag returns the tag of the first rule matching the note.
func (c NoteClassifier) Tag(note string) (string, bool) {
	for _, rule := range c {
		for _, sub := range rule.Substrings {
			if sub != "" && strings.Contains(note, sub) {
				return rule.Tag, true
			}
		}
	}
	return "", false
}

// NoteQuantities sums out-transaction quantities per note tag.
func NoteQuantities(txns []models.Transaction, classifier NoteClassifier) map[string]int {
	result := make(map[string]int)
	for _, txn := range txns {
		if txn.Type != enums.TxnTypeOut || txn.Note == nil {
			continue
		}
		if tag, ok := classifier.Tag(*txn.Note); ok {
			result[tag] += txn.Quantity
		}
	}
	return result
}
