package controllers

import (
	"net/http"
	"time"

	"github.com/koyamadev/stockkeeper-backend/api/responses"
	"github.com/koyamadev/stockkeeper-backend/api/validators"
	insightsvc "github.com/koyamadev/stockkeeper-backend/internal/insights"
	pkgerrors "github.com/koyamadev/stockkeeper-backend/pkg/errors"
	"github.com/koyamadev/stockkeeper-backend/pkg/logger"
)

// MonthlyNarrative turns the month rollup into a short written summary.
func MonthlyNarrative(svc insightsvc.Service, loc *time.Location, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "insights service unavailable"))
			return
		}

		year, month, err := validators.ParseYearMonth(r, loc)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		narrative, err := svc.MonthlyNarrative(r.Context(), year, month)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, narrative)
	}
}
