package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/rogerio-castellano/pharmacy-dashboard/internal/http/handlers"
	rl "github.com/rogerio-castellano/pharmacy-dashboard/internal/http/rate_limiter"
	"github.com/rogerio-castellano/pharmacy-dashboard/internal/models"
	httpSwagger "github.com/swaggo/http-swagger/v2"
	"go.uber.org/zap"

	_ "github.com/rogerio-castellano/pharmacy-dashboard/docs"
)

// NewRouter mounts every route. limiter may be nil to disable rate limiting.
func NewRouter(limiter *rl.Limiter, logger *zap.Logger) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(RequestLogger(logger))
	r.Use(middleware.Recoverer)
	if limiter != nil {
		r.Use(limiter.Middleware)
	}

	r.Post("/login", handlers.LoginHandler)
	r.Get("/products", handlers.GetProductsHandler)
	r.Get("/products/{id}", handlers.GetProductByIDHandler)
	r.Get("/sales", handlers.GetSalesHandler)
	r.Get("/swagger/*", httpSwagger.Handler(httpSwagger.URL("/swagger/doc.json")))

	r.Group(func(r chi.Router) {
		r.Use(AuthMiddleware)

		r.Post("/sales", handlers.RecordSaleHandler)
		r.Get("/reports/snapshot", handlers.GetReportSnapshotHandler)
		r.Get("/reports/series", handlers.GetSalesSeriesHandler)
		r.Get("/stats/{entity}", handlers.GetEntityStatsHandler)
		r.Get("/export/{collection}", handlers.ExportCollectionHandler)

		r.Group(func(r chi.Router) {
			r.Use(RequireRole(models.RoleAdmin, models.RolePharmacist))
			r.Post("/products", handlers.CreateProductHandler)
			r.Post("/products/import", handlers.ImportProductsHandler)
			r.Put("/products/{id}", handlers.UpdateProductHandler)
			r.Delete("/products/{id}", handlers.DeleteProductHandler)
			r.Post("/products/{id}/adjust", handlers.AdjustProductQuantityHandler)
		})

		r.With(RequireRole(models.RoleAdmin)).Post("/admin/users", handlers.CreateUserHandler)
	})

	return r
}
