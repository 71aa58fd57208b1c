package controllers

import (
	"net/http"
	"strings"
	"time"

	"github.com/koyamadev/stockkeeper-backend/api/responses"
	"github.com/koyamadev/stockkeeper-backend/api/validators"
	ledgersvc "github.com/koyamadev/stockkeeper-backend/internal/ledger"
	"github.com/koyamadev/stockkeeper-backend/pkg/enums"
	pkgerrors "github.com/koyamadev/stockkeeper-backend/pkg/errors"
	"github.com/koyamadev/stockkeeper-backend/pkg/logger"
)

func ListStock(svc ledgersvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "ledger service unavailable"))
			return
		}

		stock, err := svc.ListStock(r.Context())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, stock)
	}
}

func GetStock(svc ledgersvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "ledger service unavailable"))
			return
		}

		id, err := parseIDParam(r, "productId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		stock, err := svc.GetStock(r.Context(), id)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, stock)
	}
}

// AdjustStock appends a movement to the ledger and moves the live counter.
func AdjustStock(svc ledgersvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "ledger service unavailable"))
			return
		}

		id, err := parseIDParam(r, "productId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var payload adjustStockRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		input, err := payload.toInput()
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		input.ProductID = id

		result, err := svc.AdjustStock(r.Context(), input)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccessStatus(w, http.StatusCreated, result)
	}
}

type adjustStockRequest struct {
	Type       string  `json:"type" validate:"required,oneof=in out"`
	SubType    string  `json:"sub_type,omitempty"`
	Quantity   int     `json:"quantity" validate:"required,min=1"`
	OccurredAt *string `json:"occurred_at,omitempty"`
	CustomerID *string `json:"customer_id,omitempty"`
	Operator   *string `json:"operator,omitempty"`
	Note       *string `json:"note,omitempty"`
}

func (r adjustStockRequest) toInput() (ledgersvc.AdjustStockInput, error) {
	txnType, err := enums.ParseTxnType(strings.TrimSpace(r.Type))
	if err != nil {
		return ledgersvc.AdjustStockInput{}, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid type")
	}

	subType, err := enums.ParseTxnSubType(strings.TrimSpace(r.SubType))
	if err != nil {
		return ledgersvc.AdjustStockInput{}, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid sub_type")
	}

	input := ledgersvc.AdjustStockInput{
		Type:       txnType,
		SubType:    subType,
		Quantity:   r.Quantity,
		CustomerID: r.CustomerID,
		Operator:   r.Operator,
		Note:       r.Note,
	}

	if r.OccurredAt != nil {
		occurred, err := time.Parse(time.RFC3339, strings.TrimSpace(*r.OccurredAt))
		if err != nil {
			return ledgersvc.AdjustStockInput{}, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid occurred_at")
		}
		input.OccurredAt = &occurred
	}

	return input, nil
}
