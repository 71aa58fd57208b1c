package controllers

import (
	"net/http"

	"github.com/koyamadev/stockkeeper-backend/api/responses"
	forecastsvc "github.com/koyamadev/stockkeeper-backend/internal/forecast"
	pkgerrors "github.com/koyamadev/stockkeeper-backend/pkg/errors"
	"github.com/koyamadev/stockkeeper-backend/pkg/logger"
)

// RunForecast computes stockout projections for every product, optionally
// enriched with model-suggested order quantities.
func RunForecast(svc forecastsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "forecast service unavailable"))
			return
		}

		records, err := svc.Forecast(r.Context())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, records)
	}
}
