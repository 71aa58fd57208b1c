package controllers

import (
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/koyamadev/stockkeeper-backend/api/responses"
	"github.com/koyamadev/stockkeeper-backend/api/validators"
	exportsvc "github.com/koyamadev/stockkeeper-backend/internal/export"
	pkgerrors "github.com/koyamadev/stockkeeper-backend/pkg/errors"
	"github.com/koyamadev/stockkeeper-backend/pkg/logger"
)

// ExportMonthlySummary streams the month rollup as an xlsx download.
func ExportMonthlySummary(svc exportsvc.Service, loc *time.Location, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "export service unavailable"))
			return
		}

		year, month, err := validators.ParseYearMonth(r, loc)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		workbook, filename, err := svc.MonthlyWorkbook(r.Context(), year, month)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		w.Header().Set("Content-Type", exportsvc.ContentType)
		w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
		w.Header().Set("Content-Length", strconv.Itoa(len(workbook)))
		w.WriteHeader(http.StatusOK)
		if _, err := w.Write(workbook); err != nil {
			logg.Error(r.Context(), "export.write_failed", err)
		}
	}
}
