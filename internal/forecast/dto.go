package forecast

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Record is the per-product forecast returned to callers. DaysUntilStockout
// is nil when the trailing usage is zero; it is never infinite or negative.
type Record struct {
	ProductID         uuid.UUID       `json:"productId"`
	ProductName       string          `json:"productName"`
	CurrentStock      int             `json:"currentStock"`
	AvgDailyUsage     decimal.Decimal `json:"avgDailyUsage"`
	DaysUntilStockout *int            `json:"daysUntilStockout,omitempty"`
	SuggestedOrderQty int             `json:"suggestedOrderQty"`
	Rationale         string          `json:"rationale,omitempty"`
}

// chat wire types for the OpenAI-compatible completions endpoint.

type chatRequest struct {
	Model          string              `json:"model"`
	Messages       []chatMessage       `json:"messages"`
	Temperature    float64             `json:"temperature"`
	MaxTokens      int                 `json:"max_tokens,omitempty"`
	ResponseFormat *chatResponseFormat `json:"response_format,omitempty"`
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatResponseFormat struct {
	Type string `json:"type"`
}

type chatResponse struct {
	Choices []chatChoice `json:"choices"`
}

type chatChoice struct {
	Message chatMessage `json:"message"`
}

// modelAdvice is the strict JSON shape we ask the model to return.
type modelAdvice struct {
	Products []productAdvice `json:"products"`
}

type productAdvice struct {
	ProductID         string `json:"productId"`
	SuggestedOrderQty int    `json:"suggestedOrderQty"`
	Rationale         string `json:"rationale"`
}
