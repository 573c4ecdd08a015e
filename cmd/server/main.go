// Command server runs the tribune moderation service: the sanction HTTP API,
// the expiration sweeper, the notification dispatcher and the audit outbox
// publisher, all sharing one lifecycle.
package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"golang.org/x/sync/errgroup"

	"tribune/internal/audit"
	"tribune/internal/audit/outbox"
	auditpg "tribune/internal/audit/store/postgres"
	"tribune/internal/enforcement"
	"tribune/internal/jwtauth"
	"tribune/internal/notify"
	"tribune/internal/platform/config"
	"tribune/internal/platform/httpserver"
	"tribune/internal/platform/logger"
	"tribune/internal/platform/metrics"
	"tribune/internal/platform/middleware"
	"tribune/internal/platform/postgres"
	platformredis "tribune/internal/platform/redis"
	"tribune/internal/sanction"
	"tribune/internal/sanction/handler"
	sanctionpg "tribune/internal/sanction/store/postgres"
	"tribune/internal/sanction/sweeper"
	"tribune/internal/user"
	userpg "tribune/internal/user/store/postgres"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run() error {
	cfg := config.FromEnv()
	log := logger.New()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	db, err := postgres.Open(cfg.PostgresURL)
	if err != nil {
		return fmt.Errorf("connect postgres: %w", err)
	}
	if db != nil {
		defer db.Close()
		if err := postgres.Migrate(ctx, db); err != nil {
			return fmt.Errorf("migrate schema: %w", err)
		}
	} else {
		log.Warn("no postgres URL configured, using in-memory stores")
	}

	// Stores. Without Postgres everything lives in memory, which is only
	// suitable for local development.
	var (
		userStore     user.Store
		sanctionStore sanction.Store
		auditStore    audit.Store
	)
	if db != nil {
		userStore = userpg.New(db)
		sanctionStore = sanctionpg.New(db)
		auditStore = auditpg.New(db)
	} else {
		userStore = user.NewInMemoryStore()
		sanctionStore = sanction.NewInMemoryStore()
		auditStore = audit.NewInMemoryStore()
	}
	auditPublisher := audit.NewPublisher(auditStore)

	m := metrics.New()

	serviceOpts := []sanction.Option{
		sanction.WithLogger(log),
		sanction.WithMetrics(m),
	}

	if cfg.Redis.URL != "" {
		rc, err := platformredis.New(cfg.Redis)
		if err != nil {
			return fmt.Errorf("connect redis: %w", err)
		}
		defer rc.Close()
		serviceOpts = append(serviceOpts, sanction.WithCache(enforcement.NewCache(rc.Client)))
		log.Info("enforcement cache enabled", "redis_url", cfg.Redis.URL)
	}

	dispatcher := notify.NewDispatcher(notify.NewInMemoryStore(), cfg.NotifyBuffer, log)
	serviceOpts = append(serviceOpts, sanction.WithNotifier(dispatcher))

	svc, err := sanction.New(sanctionStore, userStore, auditPublisher, serviceOpts...)
	if err != nil {
		return fmt.Errorf("build sanction service: %w", err)
	}

	sweep := sweeper.New(sanctionStore, userStore, auditPublisher, cfg.SweepInterval,
		sweeper.WithLogger(log),
		sweeper.WithMetrics(m),
		sweeper.WithInitialDelay(cfg.SweepInitialDelay),
	)

	jwtService := jwtauth.NewService(cfg.JWTSigningKey, "tribune")

	router := chi.NewRouter()
	router.Use(
		middleware.Recovery(log),
		middleware.RequestID,
		middleware.Logger(log),
		middleware.Latency(m),
		middleware.Timeout(30*time.Second),
		middleware.ClientMetadata,
	)
	router.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
	router.Method(http.MethodGet, "/metrics", promhttp.Handler())
	router.Group(func(r chi.Router) {
		r.Use(middleware.ContentTypeJSON, middleware.RequireAuth(jwtService, log))
		handler.New(svc, log).Register(r)
	})

	srv := httpserver.New(cfg.Addr, router)

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		log.Info("starting tribune", "addr", cfg.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})
	g.Go(func() error {
		err := sweep.Run(gctx)
		if errors.Is(err, context.Canceled) {
			return nil
		}
		return err
	})
	g.Go(func() error {
		err := dispatcher.Run(gctx)
		if errors.Is(err, context.Canceled) {
			return nil
		}
		return err
	})

	// The outbox publisher relays persisted audit events to Kafka; it only
	// makes sense when both stores behind it exist.
	if db != nil && len(cfg.Kafka.Brokers) > 0 {
		pub, err := outbox.New(db, cfg.Kafka.Brokers, cfg.Kafka.AuditTopic, cfg.Kafka.PollInterval, log)
		if err != nil {
			return fmt.Errorf("build outbox publisher: %w", err)
		}
		g.Go(func() error {
			err := pub.Run(gctx)
			if errors.Is(err, context.Canceled) {
				return nil
			}
			return err
		})
	}

	if err := g.Wait(); err != nil {
		return err
	}
	log.Info("tribune stopped")
	return nil
}
