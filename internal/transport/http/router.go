// Package http assembles the API router: middleware chain, public CRM
// routes, the JWT-protected employee management routes, Prometheus metrics
// and the health endpoint.
package http

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	customerhandler "olivecrm/internal/customer/handler"
	employeehandler "olivecrm/internal/employee/handler"
	"olivecrm/internal/ingest"
	"olivecrm/internal/mailer"
	newsletterhandler "olivecrm/internal/newsletter/handler"
	orderhandler "olivecrm/internal/order/handler"
	platformmetrics "olivecrm/internal/platform/metrics"
	"olivecrm/internal/platform/middleware"
	producthandler "olivecrm/internal/product/handler"
	"olivecrm/pkg/platform/httputil"
)

// Deps carries everything the router mounts.
type Deps struct {
	Logger  *slog.Logger
	Metrics *platformmetrics.Metrics
	Tokens  middleware.TokenValidator

	Orders      *orderhandler.Handler
	Customers   *customerhandler.Handler
	Products    *producthandler.Handler
	Newsletters *newsletterhandler.Handler
	Employees   *employeehandler.Handler
	Ingest      *ingest.Handler
	Mail        *mailer.Handler

	// HealthCheck pings backing services; nil means nothing extra to check.
	HealthCheck func(ctx context.Context) error
}

// NewRouter builds the full chi router.
func NewRouter(d Deps) chi.Router {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RequestTime)
	r.Use(middleware.Device)
	r.Use(middleware.Recovery(d.Logger))
	r.Use(middleware.Logger(d.Logger))
	r.Use(middleware.Latency(d.Metrics))

	r.Route("/api", func(api chi.Router) {
		d.Orders.Register(api)
		d.Customers.Register(api)
		d.Products.Register(api)
		d.Newsletters.Register(api)
		d.Ingest.Register(api)
		d.Mail.Register(api)
		d.Employees.RegisterLogin(api)

		api.Group(func(protected chi.Router) {
			protected.Use(middleware.RequireAuth(d.Tokens, d.Logger))
			d.Employees.Register(protected)
		})
	})

	r.Handle("/metrics", promhttp.Handler())
	r.Get("/healthz", healthHandler(d.HealthCheck))

	return r
}

func healthHandler(check func(ctx context.Context) error) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if check != nil {
			if err := check(r.Context()); err != nil {
				httputil.WriteJSON(w, http.StatusServiceUnavailable, map[string]string{
					"status": "degraded",
					"error":  err.Error(),
				})
				return
			}
		}
		httputil.WriteJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	}
}
