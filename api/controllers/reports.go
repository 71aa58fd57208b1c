package controllers

import (
	"net/http"
	"time"

	"github.com/koyamadev/stockkeeper-backend/api/responses"
	"github.com/koyamadev/stockkeeper-backend/api/validators"
	reportsvc "github.com/koyamadev/stockkeeper-backend/internal/reports"
	pkgerrors "github.com/koyamadev/stockkeeper-backend/pkg/errors"
	"github.com/koyamadev/stockkeeper-backend/pkg/logger"
)

// MonthlySummaryReport serves the month rollup. Year and month default to the
// current month in the configured report timezone.
func MonthlySummaryReport(svc reportsvc.Service, loc *time.Location, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "report service unavailable"))
			return
		}

		year, month, err := validators.ParseYearMonth(r, loc)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		summary, err := svc.MonthlySummary(r.Context(), year, month)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, summary)
	}
}

type supplierReportView struct {
	Year       int                     `json:"year"`
	Month      int                     `json:"month"`
	Label      string                  `json:"label"`
	Suppliers  []reportsvc.SupplierRow `json:"suppliers"`
	GrandTotal reportsvc.SupplierRow   `json:"grandTotal"`
}

type productReportView struct {
	Year     int                    `json:"year"`
	Month    int                    `json:"month"`
	Label    string                 `json:"label"`
	Products []reportsvc.ProductRow `json:"products"`
}

// SupplierSummaryReport serves the supplier side of the month rollup.
func SupplierSummaryReport(svc reportsvc.Service, loc *time.Location, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "report service unavailable"))
			return
		}

		year, month, err := validators.ParseYearMonth(r, loc)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		summary, err := svc.MonthlySummary(r.Context(), year, month)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, supplierReportView{
			Year:       summary.Year,
			Month:      summary.Month,
			Label:      summary.Label,
			Suppliers:  summary.Suppliers,
			GrandTotal: summary.GrandTotal,
		})
	}
}

// ProductSummaryReport serves the product side of the month rollup.
func ProductSummaryReport(svc reportsvc.Service, loc *time.Location, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "report service unavailable"))
			return
		}

		year, month, err := validators.ParseYearMonth(r, loc)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		summary, err := svc.MonthlySummary(r.Context(), year, month)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, productReportView{
			Year:     summary.Year,
			Month:    summary.Month,
			Label:    summary.Label,
			Products: summary.Products,
		})
	}
}

// ShortageReport lists every product sitting at or under its minimum stock.
func ShortageReport(svc reportsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "report service unavailable"))
			return
		}

		items, err := svc.Shortages(r.Context())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, items)
	}
}
