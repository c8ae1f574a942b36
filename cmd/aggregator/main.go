// Command aggregator runs the contact aggregation engine: an HTTP surface
// for synchronous aggregation and suggestion queries, plus the background
// scheduler that drives debounced passes over unaggregated raw contacts.
package main

import (
	"context"
	stdlog "log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/google/uuid"

	"portal_final_backend/internal/contacts"
	apphttp "portal_final_backend/internal/http"
	"portal_final_backend/internal/http/router"
	"portal_final_backend/platform/config"
	"portal_final_backend/platform/db"
	"portal_final_backend/platform/events"
	"portal_final_backend/platform/logger"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		stdlog.Fatalf("load config: %v", err)
	}

	log := logger.New(cfg.Env)
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := db.RunMigrations(ctx, cfg, "migrations"); err != nil {
		log.Error("run migrations", "error", err)
		os.Exit(1)
	}

	pool, err := db.NewPool(ctx, cfg)
	if err != nil {
		log.Error("connect to database", "error", err)
		os.Exit(1)
	}
	defer pool.Close()

	bus := events.NewInMemoryBus(log)

	// The host provider is organization-scoped; a single-tenant deployment
	// uses the nil organization. Multi-tenant deployments construct one
	// contacts.Module per organization.
	mod := contacts.New(pool, cfg, bus, log, uuid.Nil)

	schCtx, cancelSch := context.WithCancel(context.Background())
	defer cancelSch()
	go mod.Scheduler.Run(schCtx)
	defer mod.Scheduler.Stop()

	app := &apphttp.App{
		Config:   cfg,
		Logger:   log,
		Health:   poolHealth{pool: pool},
		EventBus: bus,
		Modules:  []apphttp.Module{mod.Handler},
	}

	server := &http.Server{
		Addr:    cfg.GetHTTPAddr(),
		Handler: router.New(app),
	}

	go func() {
		log.Info("aggregator listening", "addr", cfg.GetHTTPAddr())
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error("http server failed", "error", err)
		}
	}()

	<-ctx.Done()
	log.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error("graceful shutdown failed", "error", err)
	}
}

// poolHealth adapts the pgxpool connection pool to apphttp.HealthChecker.
type poolHealth struct {
	pool interface {
		Ping(ctx context.Context) error
	}
}

func (h poolHealth) Ping(ctx context.Context) error { return h.pool.Ping(ctx) }
