package routes

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/koyamadev/stockkeeper-backend/api/controllers"
	"github.com/koyamadev/stockkeeper-backend/api/middleware"
	authsvc "github.com/koyamadev/stockkeeper-backend/internal/auth"
	exportsvc "github.com/koyamadev/stockkeeper-backend/internal/export"
	forecastsvc "github.com/koyamadev/stockkeeper-backend/internal/forecast"
	insightsvc "github.com/koyamadev/stockkeeper-backend/internal/insights"
	ledgersvc "github.com/koyamadev/stockkeeper-backend/internal/ledger"
	productsvc "github.com/koyamadev/stockkeeper-backend/internal/products"
	reportsvc "github.com/koyamadev/stockkeeper-backend/internal/reports"
	supplierssvc "github.com/koyamadev/stockkeeper-backend/internal/suppliers"
	"github.com/koyamadev/stockkeeper-backend/pkg/config"
	"github.com/koyamadev/stockkeeper-backend/pkg/logger"
	"github.com/koyamadev/stockkeeper-backend/pkg/redis"
)

// RouterParams bundles everything the HTTP surface needs. Optional services
// may be nil; their routes then answer with a 500 instead of panicking.
type RouterParams struct {
	Config    *config.Config
	Logger    *logger.Logger
	DB        controllers.Pinger
	Redis     *redis.Client
	ReportLoc *time.Location
	Auth      authsvc.Service
	Suppliers supplierssvc.Service
	Products  productsvc.Service
	Ledger    ledgersvc.Service
	Reports   reportsvc.Service
	Export    exportsvc.Service
	Forecast  forecastsvc.Service
	Insights  insightsvc.Service
}

func NewRouter(p RouterParams) http.Handler {
	cfg := p.Config
	logg := p.Logger

	loc := p.ReportLoc
	if loc == nil {
		loc = time.Local
	}

	r := chi.NewRouter()
	r.Use(
		middleware.Recoverer(logg),
		middleware.RequestID(logg),
		middleware.Logging(logg),
	)

	loginPolicy := middleware.NewAuthRateLimitPolicy(
		"login",
		cfg.AuthRateLimit.LoginWindow,
		cfg.AuthRateLimit.LoginIPLimit,
		cfg.AuthRateLimit.LoginUserLimit,
	)

	r.Route("/health", func(r chi.Router) {
		r.Get("/live", controllers.HealthLive(cfg))
		r.Get("/ready", controllers.HealthReady(cfg, p.DB, pingerOrNil(p.Redis), logg))
	})

	loginLimiter := middleware.AuthRateLimit(loginPolicy, nil, logg)
	if p.Redis != nil {
		loginLimiter = middleware.AuthRateLimit(loginPolicy, p.Redis, logg)
	}

	r.Route("/api/v1/auth", func(r chi.Router) {
		r.With(loginLimiter).Post("/login", controllers.AuthLogin(p.Auth, logg))
	})

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(middleware.Auth(cfg.JWT, logg))

		r.Route("/suppliers", func(r chi.Router) {
			r.Get("/", controllers.ListSuppliers(p.Suppliers, logg))
			r.Post("/", controllers.CreateSupplier(p.Suppliers, logg))
			r.Get("/{supplierId}", controllers.GetSupplier(p.Suppliers, logg))
			r.Put("/{supplierId}", controllers.UpdateSupplier(p.Suppliers, logg))
			r.Delete("/{supplierId}", controllers.DeleteSupplier(p.Suppliers, logg))
		})

		r.Route("/products", func(r chi.Router) {
			r.Get("/", controllers.ListProducts(p.Products, logg))
			r.Post("/", controllers.CreateProduct(p.Products, logg))
			r.Post("/import", controllers.ImportProducts(p.Products, logg))
			r.Get("/{productId}", controllers.GetProduct(p.Products, logg))
			r.Put("/{productId}", controllers.UpdateProduct(p.Products, logg))
			r.Delete("/{productId}", controllers.DeleteProduct(p.Products, logg))
		})

		r.Route("/stock", func(r chi.Router) {
			r.Get("/", controllers.ListStock(p.Ledger, logg))
			r.Get("/{productId}", controllers.GetStock(p.Ledger, logg))
			r.Post("/{productId}/adjust", controllers.AdjustStock(p.Ledger, logg))
		})

		r.Route("/transactions", func(r chi.Router) {
			r.Get("/", controllers.ListTransactions(p.Ledger, logg))
			r.Delete("/", controllers.ClearTransactions(p.Ledger, logg))
		})

		r.Route("/reports", func(r chi.Router) {
			r.Get("/summary", controllers.MonthlySummaryReport(p.Reports, loc, logg))
			r.Get("/suppliers", controllers.SupplierSummaryReport(p.Reports, loc, logg))
			r.Get("/products", controllers.ProductSummaryReport(p.Reports, loc, logg))
			r.Get("/export", controllers.ExportMonthlySummary(p.Export, loc, logg))
			r.Get("/shortages", controllers.ShortageReport(p.Reports, logg))
			r.Post("/narrative", controllers.MonthlyNarrative(p.Insights, loc, logg))
		})

		r.Post("/forecast", controllers.RunForecast(p.Forecast, logg))
	})

	return r
}

// pingerOrNil keeps a typed-nil Redis client from sneaking through the
// Pinger interface as non-nil.
func pingerOrNil(client *redis.Client) controllers.Pinger {
	if client == nil {
		return nil
	}
	return client
}
