package controllers

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/koyamadev/stockkeeper-backend/api/responses"
	ledgersvc "github.com/koyamadev/stockkeeper-backend/internal/ledger"
	pkgerrors "github.com/koyamadev/stockkeeper-backend/pkg/errors"
	"github.com/koyamadev/stockkeeper-backend/pkg/logger"
	"github.com/koyamadev/stockkeeper-backend/pkg/pagination"
)

// ListTransactions pages through the ledger in reverse insertion order.
func ListTransactions(svc ledgersvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "ledger service unavailable"))
			return
		}

		var params pagination.Params
		if limitStr := strings.TrimSpace(r.URL.Query().Get("limit")); limitStr != "" {
			value, err := strconv.Atoi(limitStr)
			if err != nil || value <= 0 {
				responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeValidation, "limit must be a positive integer"))
				return
			}
			params.Limit = value
		}
		if cursor := strings.TrimSpace(r.URL.Query().Get("cursor")); cursor != "" {
			params.Cursor = cursor
		}

		page, err := svc.ListTransactions(r.Context(), params)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, page)
	}
}

// ClearTransactions wipes the ledger and every stock counter. The caller
// must pass confirm=true to acknowledge the wipe.
func ClearTransactions(svc ledgersvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "ledger service unavailable"))
			return
		}

		if strings.TrimSpace(r.URL.Query().Get("confirm")) != "true" {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeValidation, "pass confirm=true to clear the ledger"))
			return
		}

		if err := svc.ClearAll(r.Context()); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		logg.Warn(r.Context(), "ledger.cleared")
		responses.WriteSuccess(w, map[string]string{"status": "cleared"})
	}
}
