// main wires high-level dependencies, exposes the HTTP router, and keeps the
// server lifecycle small. Business logic lives in the internal service
// packages; main only decides which store backends to plug in.
package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"golang.org/x/sync/errgroup"

	"olivecrm/internal/auth"
	"olivecrm/internal/auth/session"
	customerhandler "olivecrm/internal/customer/handler"
	customersvc "olivecrm/internal/customer/service"
	customerstore "olivecrm/internal/customer/store"
	employeehandler "olivecrm/internal/employee/handler"
	employeesvc "olivecrm/internal/employee/service"
	employeestore "olivecrm/internal/employee/store"
	"olivecrm/internal/ingest"
	"olivecrm/internal/mailer"
	newsletterhandler "olivecrm/internal/newsletter/handler"
	newslettersvc "olivecrm/internal/newsletter/service"
	newsletterstore "olivecrm/internal/newsletter/store"
	orderhandler "olivecrm/internal/order/handler"
	ordermetrics "olivecrm/internal/order/metrics"
	ordersvc "olivecrm/internal/order/service"
	orderstore "olivecrm/internal/order/store"
	"olivecrm/internal/platform/config"
	"olivecrm/internal/platform/httpserver"
	"olivecrm/internal/platform/logger"
	platformmetrics "olivecrm/internal/platform/metrics"
	"olivecrm/internal/platform/postgres"
	platformredis "olivecrm/internal/platform/redis"
	producthandler "olivecrm/internal/product/handler"
	productsvc "olivecrm/internal/product/service"
	productstore "olivecrm/internal/product/store"
	transporthttp "olivecrm/internal/transport/http"
	dErrors "olivecrm/pkg/domain-errors"
	"olivecrm/pkg/platform/sentinel"
)

func main() {
	cfg := config.FromEnv()
	log := logger.New()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var (
		orderStore      ordersvc.Store
		customerStore   customersvc.Store
		productStore    productsvc.Store
		newsletterStore newslettersvc.Store
		employeeStore   employeesvc.Store

		healthChecks []func(ctx context.Context) error
	)

	if cfg.DatabaseURL != "" {
		db, err := postgres.Open(cfg.DatabaseURL)
		if err != nil {
			log.Error("postgres connection failed", "error", err)
			os.Exit(1)
		}
		defer db.Close()

		orders := orderstore.NewPostgres(db)
		customers := customerstore.NewPostgres(db)
		products := productstore.NewPostgres(db)
		newsletters := newsletterstore.NewPostgres(db)
		employees := employeestore.NewPostgres(db)
		for _, ensure := range []func(context.Context) error{
			customers.EnsureSchema,
			products.EnsureSchema,
			orders.EnsureSchema,
			newsletters.EnsureSchema,
			employees.EnsureSchema,
		} {
			if err := ensure(ctx); err != nil {
				log.Error("schema migration failed", "error", err)
				os.Exit(1)
			}
		}

		orderStore = orders
		customerStore = customers
		productStore = products
		newsletterStore = newsletters
		employeeStore = employees
		healthChecks = append(healthChecks, db.PingContext)
	} else {
		log.Info("DATABASE_URL not set, using in-memory stores")
		orderStore = orderstore.NewInMemory()
		customerStore = customerstore.NewInMemory()
		productStore = productstore.NewInMemory()
		newsletterStore = newsletterstore.NewInMemory()
		employeeStore = employeestore.NewInMemory()
	}

	var sessions session.Store = session.NewInMemory()
	redisClient, err := platformredis.New(cfg.RedisURL)
	if err != nil {
		log.Error("redis connection failed", "error", err)
		os.Exit(1)
	}
	if redisClient != nil {
		defer redisClient.Close()
		sessions = session.NewRedisStore(redisClient.Client)
		healthChecks = append(healthChecks, redisClient.Health)
	}

	reqMetrics := platformmetrics.New()
	orderMetrics := ordermetrics.New()
	tokens := auth.NewTokenService(cfg.JWTSigningKey, cfg.SessionTTL)

	customerService := customersvc.New(customerStore, log)
	productService := productsvc.New(productStore, log)
	newsletterService := newslettersvc.New(newsletterStore, log)
	employeeService := employeesvc.New(employeeStore, sessions, tokens, cfg.SessionTTL, log)
	orderService := ordersvc.New(orderStore, productCatalog{products: productService}, customerService, log, orderMetrics)
	ingestService := ingest.New(customerService, productService, orderStore, log)
	smtpSender := mailer.NewSMTPSender(cfg.SMTP.Host, cfg.SMTP.Port, cfg.SMTP.FromAddr, cfg.SMTP.Password)

	router := transporthttp.NewRouter(transporthttp.Deps{
		Logger:  log,
		Metrics: reqMetrics,
		Tokens:  tokens,

		Orders:      orderhandler.New(orderService, log),
		Customers:   customerhandler.New(customerService, log),
		Products:    producthandler.New(productService, log),
		Newsletters: newsletterhandler.New(newsletterService, log),
		Employees:   employeehandler.New(employeeService, log),
		Ingest:      ingest.NewHandler(ingestService, log),
		Mail:        mailer.NewHandler(smtpSender, log),

		HealthCheck: combineChecks(healthChecks),
	})

	srv := httpserver.New(cfg.Addr, router)

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		log.Info("starting olivecrm", "addr", cfg.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		return employeeService.RunStatusSweeper(ctx)
	})
	g.Go(func() error {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		log.Error("server exited", "error", err)
		os.Exit(1)
	}
	log.Info("shutdown complete")
}

// productCatalog adapts the product service to the order domain's catalog
// port. The order service branches on the storage sentinel, so the coded
// not-found error is translated back.
type productCatalog struct {
	products *productsvc.Service
}

func (c productCatalog) ProductInfo(ctx context.Context, productID int) (ordersvc.ProductInfo, error) {
	p, err := c.products.Get(ctx, productID)
	if err != nil {
		if dErrors.HasCode(err, dErrors.CodeNotFound) {
			return ordersvc.ProductInfo{}, sentinel.ErrNotFound
		}
		return ordersvc.ProductInfo{}, err
	}
	name := p.ProductName
	if p.ProductVariant != "" {
		name += " " + p.ProductVariant
	}
	return ordersvc.ProductInfo{ID: p.ID, Name: name, UnitPrice: p.IndividualPrice}, nil
}

func combineChecks(checks []func(ctx context.Context) error) func(ctx context.Context) error {
	if len(checks) == 0 {
		return nil
	}
	return func(ctx context.Context) error {
		for _, check := range checks {
			if err := check(ctx); err != nil {
				return err
			}
		}
		return nil
	}
}
