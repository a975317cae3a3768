// Command server runs the case risk classification service: it loads the case
// database, wires the classification pipeline to its oracle and audit store,
// and serves the HTTP API until interrupted.
package main

import (
	"context"
	"database/sql"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"
	"golang.org/x/sync/errgroup"

	_ "github.com/lib/pq"

	"casetrail/internal/audit"
	"casetrail/internal/audit/kafka"
	auditpg "casetrail/internal/audit/store/postgres"
	"casetrail/internal/cases"
	"casetrail/internal/oracle"
	"casetrail/internal/pipeline"
	"casetrail/internal/pipeline/metrics"
	"casetrail/internal/sla"
	httptransport "casetrail/internal/transport/http"
	"casetrail/internal/validate"
	"casetrail/pkg/platform/config"
	"casetrail/pkg/platform/httpserver"
	"casetrail/pkg/platform/logger"
	"casetrail/pkg/platform/middleware/auth"
)

func main() {
	if err := run(); err != nil {
		slog.Error("server exited", "error", err)
		os.Exit(1)
	}
}

func run() error {
	cfg := config.FromEnv()
	log := logger.New(slog.LevelInfo)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	source, err := cases.LoadFile(cfg.CaseFile)
	if err != nil {
		return err
	}
	log.Info("case database loaded", "file", cfg.CaseFile)

	// Audit store: postgres when configured, in-memory otherwise.
	var store audit.Store
	if cfg.PostgresDSN != "" {
		db, err := sql.Open("postgres", cfg.PostgresDSN)
		if err != nil {
			return err
		}
		defer db.Close()
		pgStore := auditpg.New(db)
		if err := pgStore.Migrate(ctx); err != nil {
			return err
		}
		store = pgStore
		log.Info("audit store ready", "backend", "postgres")
	} else {
		store = audit.NewInMemoryStore()
		log.Warn("audit store is in-memory; records will not survive a restart")
	}
	recorder := audit.NewRecorder(store, log)

	// Decision fan-out: kafka when brokers are configured, otherwise a no-op
	// worker that just drains the outbox.
	var sink audit.Sink = audit.NoopSink{}
	if len(cfg.KafkaBrokers) > 0 {
		kafkaSink, err := kafka.NewSink(cfg.KafkaBrokers, cfg.KafkaTopic)
		if err != nil {
			return err
		}
		defer kafkaSink.Close()
		sink = kafkaSink
		log.Info("decision fan-out enabled", "topic", cfg.KafkaTopic)
	}
	worker := audit.NewWorker(recorder.Outbox(), sink, log)

	// Classification strategies. The fallback is always present; the remote
	// oracle is primary only when fully configured.
	fallback := oracle.NewFallback()
	var primary oracle.Classifier = fallback
	if !cfg.FallbackOnly() {
		primary = oracle.NewRemote(oracle.RemoteConfig{
			Endpoint:    cfg.OracleEndpoint,
			APIKey:      cfg.OracleAPIKey,
			Timeout:     cfg.OracleTimeout,
			MaxFailures: cfg.BreakerMaxFailures,
			Cooldown:    cfg.BreakerCooldown,
		}, log)
		log.Info("remote oracle enabled", "endpoint", cfg.OracleEndpoint)
	} else {
		log.Info("running in fallback-only mode")
	}

	evaluator, err := sla.NewEvaluator(sla.WithBuffer(cfg.SLABuffer))
	if err != nil {
		return err
	}

	validatorOpts := []validate.Option{}
	if !cfg.ClampConfidence {
		validatorOpts = append(validatorOpts, validate.WithClamping(false))
	}

	serviceOpts := []pipeline.Option{pipeline.WithMetrics(metrics.New())}
	if cfg.RedisAddr != "" {
		rdb := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr, Password: cfg.RedisPassword})
		defer rdb.Close()
		serviceOpts = append(serviceOpts, pipeline.WithCache(oracle.NewVerdictCache(rdb, cfg.CacheTTL)))
		log.Info("verdict cache enabled", "addr", cfg.RedisAddr, "ttl", cfg.CacheTTL)
	}

	service, err := pipeline.NewService(
		source,
		evaluator,
		primary,
		fallback,
		validate.New(validatorOpts...),
		recorder,
		log,
		serviceOpts...,
	)
	if err != nil {
		return err
	}

	handler := httptransport.New(service, source, recorder, log)
	router := httptransport.NewRouter(handler, auth.NewValidator(cfg.JWTSigningKey))
	srv := httpserver.New(cfg.Addr, router, cfg.OracleTimeout)

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		return worker.Run(gctx)
	})

	g.Go(func() error {
		log.Info("starting casetrail", "addr", cfg.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})

	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	log.Info("casetrail stopped")
	return nil
}
