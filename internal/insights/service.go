package insights

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/koyamadev/stockkeeper-backend/internal/reports"
	pkgerrors "github.com/koyamadev/stockkeeper-backend/pkg/errors"
	"github.com/koyamadev/stockkeeper-backend/pkg/logger"
)

const systemPrompt = "You are a financial analyst for a small business. " +
	"Given a monthly inventory reconciliation, reply with a JSON object " +
	`{"narrative":"...","highlights":["..."]}. Write plainly for an owner, ` +
	"flag suppliers with unusual balance swings and products whose physical " +
	"count drifts from the ledger."

// Narrative is the model-written monthly commentary.
type Narrative struct {
	Year        int       `json:"year"`
	Month       int       `json:"month"`
	Label       string    `json:"label"`
	GeneratedAt time.Time `json:"generatedAt"`
	Narrative   string    `json:"narrative"`
	Highlights  []string  `json:"highlights,omitempty"`
}

// Service turns a monthly summary into narrative commentary.
type Service interface {
	MonthlyNarrative(ctx context.Context, year, month int) (Narrative, error)
}

type summarySource interface {
	MonthlySummary(ctx context.Context, year, month int) (*reports.MonthlySummary, error)
}

type completer interface {
	Complete(ctx context.Context, systemPrompt, userPrompt string) (string, error)
}

type service struct {
	summaries summarySource
	llm       completer
	log       *logger.Logger
	now       func() time.Time
}

func NewService(summaries summarySource, llm completer, log *logger.Logger) (Service, error) {
	if summaries == nil {
		return nil, pkgerrors.New(pkgerrors.CodeInternal, "insights service requires a summary source")
	}
	if llm == nil {
		return nil, pkgerrors.New(pkgerrors.CodeInternal, "insights service requires a completion client")
	}
	if log == nil {
		return nil, pkgerrors.New(pkgerrors.CodeInternal, "insights service requires a logger")
	}
	return &service{
		summaries: summaries,
		llm:       llm,
		log:       log,
		now:       time.Now,
	}, nil
}

func (s *service) MonthlyNarrative(ctx context.Context, year, month int) (Narrative, error) {
	summary, err := s.summaries.MonthlySummary(ctx, year, month)
	if err != nil {
		return Narrative{}, err
	}

	content, err := s.llm.Complete(ctx, systemPrompt, describeSummary(summary))
	if err != nil {
		return Narrative{}, err
	}

	narrative, highlights := parseNarrative(content)
	if narrative == "" {
		return Narrative{}, pkgerrors.New(pkgerrors.CodeDependency, "narrative model returned an empty report")
	}

	return Narrative{
		Year:        summary.Year,
		Month:       summary.Month,
		Label:       summary.Label,
		GeneratedAt: s.now().UTC(),
		Narrative:   narrative,
		Highlights:  highlights,
	}, nil
}

// describeSummary flattens the reconciliation into prompt text. Monetary
// values are already decimal strings; no float rounding happens here.
func describeSummary(summary *reports.MonthlySummary) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "Month %s\n\nSuppliers:\n", summary.Label)
	for _, row := range summary.Suppliers {
		fmt.Fprintf(&sb, "- %s: previous balance %s, purchases %s, usage %s, month-end balance %s\n",
			row.SupplierName,
			row.PreviousBalance.StringFixed(2),
			row.Purchase.StringFixed(2),
			row.Usage.StringFixed(2),
			row.CalculatedBalance.StringFixed(2),
		)
	}
	fmt.Fprintf(&sb, "Grand total purchases %s, usage %s\n",
		summary.GrandTotal.Purchase.StringFixed(2),
		summary.GrandTotal.Usage.StringFixed(2),
	)

	sb.WriteString("\nProducts with ledger drift or shortage:\n")
	flagged := 0
	for _, row := range summary.Products {
		if row.Diff == 0 && row.Shortage == 0 {
			continue
		}
		flagged++
		fmt.Fprintf(&sb, "- %s: counted %d, ledger says %d (diff %+d), shortage %d\n",
			row.ProductName, row.CurrentStock, row.ThisMonthBalance, row.Diff, row.Shortage)
	}
	if flagged == 0 {
		sb.WriteString("- none\n")
	}
	return sb.String()
}

func parseNarrative(content string) (string, []string) {
	var parsed struct {
		Narrative  string   `json:"narrative"`
		Highlights []string `json:"highlights"`
	}
	if err := json.Unmarshal([]byte(content), &parsed); err != nil {
		// Some models reply with bare prose despite the JSON instruction.
		return strings.TrimSpace(content), nil
	}
	return strings.TrimSpace(parsed.Narrative), parsed.Highlights
}
