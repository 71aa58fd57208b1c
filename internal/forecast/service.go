package forecast

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/koyamadev/stockkeeper-backend/internal/aggregation"
	"github.com/koyamadev/stockkeeper-backend/internal/ledger"
	"github.com/koyamadev/stockkeeper-backend/pkg/db/models"
	pkgerrors "github.com/koyamadev/stockkeeper-backend/pkg/errors"
	"github.com/koyamadev/stockkeeper-backend/pkg/logger"
)

// usageWindowDays is the trailing window the average daily usage is taken over.
const usageWindowDays = 30

const systemPrompt = "You are an inventory planner for a small business. " +
	"Given per-product stock and usage figures, reply with a JSON object " +
	`{"products":[{"productId":"...","suggestedOrderQty":0,"rationale":"..."}]}. ` +
	"Only include products that need reordering."

// Service produces restocking forecasts.
type Service interface {
	Forecast(ctx context.Context) ([]Record, error)
}

type snapshotSource interface {
	Snapshot(ctx context.Context) (*ledger.Snapshot, error)
}

type completer interface {
	Complete(ctx context.Context, systemPrompt, userPrompt string) (string, error)
}

type service struct {
	snapshots snapshotSource
	llm       completer
	log       *logger.Logger
	now       func() time.Time
}

// NewService wires the forecast service. The completer may be nil; forecasts
// then carry the local projections without model advice.
func NewService(snapshots snapshotSource, llm completer, log *logger.Logger) (Service, error) {
	if snapshots == nil {
		return nil, pkgerrors.New(pkgerrors.CodeInternal, "forecast service requires a snapshot source")
	}
	if log == nil {
		return nil, pkgerrors.New(pkgerrors.CodeInternal, "forecast service requires a logger")
	}
	return &service{
		snapshots: snapshots,
		llm:       llm,
		log:       log,
		now:       time.Now,
	}, nil
}

func (s *service) Forecast(ctx context.Context) ([]Record, error) {
	snapshot, err := s.snapshots.Snapshot(ctx)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "loading snapshot")
	}

	records := s.project(snapshot)
	if s.llm == nil || len(records) == 0 {
		return records, nil
	}

	content, err := s.llm.Complete(ctx, systemPrompt, buildUserPrompt(records))
	if err != nil {
		// Local projections still stand when the model is unreachable.
		s.log.Warn(ctx, "forecast model call failed: "+err.Error())
		return records, nil
	}
	applyAdvice(ctx, records, content, s.log)
	return records, nil
}

// project computes the model-free part of each record from the ledger.
func (s *service) project(snapshot *ledger.Snapshot) []Record {
	stock := make(map[uuid.UUID]int, len(snapshot.StockLevels))
	for _, level := range snapshot.StockLevels {
		stock[level.ProductID] = level.Quantity
	}

	windowEnd := s.now()
	windowStart := windowEnd.AddDate(0, 0, -usageWindowDays)

	records := make([]Record, 0, len(snapshot.Products))
	for _, product := range snapshot.Products {
		txns := aggregation.ForProduct(snapshot.Transactions, product.ID)
		usage := trailingUsage(txns, windowStart, windowEnd)
		avg := decimal.NewFromInt(int64(usage)).Div(decimal.NewFromInt(usageWindowDays))

		record := Record{
			ProductID:     product.ID,
			ProductName:   product.Name,
			CurrentStock:  stock[product.ID],
			AvgDailyUsage: avg,
		}
		record.DaysUntilStockout = DaysUntilStockout(record.CurrentStock, avg)
		records = append(records, record)
	}

	sort.Slice(records, func(i, j int) bool {
		return soonerStockout(records[i], records[j])
	})
	return records
}

// DaysUntilStockout projects how many days the current stock lasts at the
// given average daily usage. Zero or negative usage yields nil rather than
// an infinite or negative projection.
func DaysUntilStockout(currentStock int, avgDailyUsage decimal.Decimal) *int {
	if avgDailyUsage.LessThanOrEqual(decimal.Zero) {
		return nil
	}
	if currentStock <= 0 {
		zero := 0
		return &zero
	}
	days := int(decimal.NewFromInt(int64(currentStock)).Div(avgDailyUsage).IntPart())
	return &days
}

func trailingUsage(txns []models.Transaction, from, to time.Time) int {
	total := 0
	for _, txn := range txns {
		if txn.OccurredAt.Before(from) || txn.OccurredAt.After(to) {
			continue
		}
		if txn.Type.IsOutbound() {
			total += txn.Quantity
		}
	}
	return total
}

func soonerStockout(a, b Record) bool {
	switch {
	case a.DaysUntilStockout == nil && b.DaysUntilStockout == nil:
		return a.ProductName < b.ProductName
	case a.DaysUntilStockout == nil:
		return false
	case b.DaysUntilStockout == nil:
		return true
	case *a.DaysUntilStockout != *b.DaysUntilStockout:
		return *a.DaysUntilStockout < *b.DaysUntilStockout
	default:
		return a.ProductName < b.ProductName
	}
}

func buildUserPrompt(records []Record) string {
	var sb strings.Builder
	sb.WriteString("Current inventory figures (trailing ")
	fmt.Fprintf(&sb, "%d-day usage):\n", usageWindowDays)
	for _, r := range records {
		fmt.Fprintf(&sb, "- %s (id %s): stock %d, avg daily usage %s", r.ProductName, r.ProductID, r.CurrentStock, r.AvgDailyUsage.StringFixed(2))
		if r.DaysUntilStockout != nil {
			fmt.Fprintf(&sb, ", stockout in ~%d days", *r.DaysUntilStockout)
		}
		sb.WriteString("\n")
	}
	return sb.String()
}

func applyAdvice(ctx context.Context, records []Record, content string, log *logger.Logger) {
	var advice modelAdvice
	if err := json.Unmarshal([]byte(content), &advice); err != nil {
		log.Warn(ctx, "forecast model returned unparseable advice")
		return
	}

	byProduct := make(map[uuid.UUID]productAdvice, len(advice.Products))
	for _, p := range advice.Products {
		id, err := uuid.Parse(p.ProductID)
		if err != nil {
			continue
		}
		byProduct[id] = p
	}

	for i := range records {
		p, ok := byProduct[records[i].ProductID]
		if !ok {
			continue
		}
		if p.SuggestedOrderQty > 0 {
			records[i].SuggestedOrderQty = p.SuggestedOrderQty
		}
		records[i].Rationale = p.Rationale
	}
}
