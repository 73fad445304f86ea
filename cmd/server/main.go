package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/joho/godotenv"
	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"leicca/internal/anchoring"
	anchoringhandler "leicca/internal/anchoring/handler"
	anchoringmetrics "leicca/internal/anchoring/metrics"
	"leicca/internal/auditlog"
	auditloghandler "leicca/internal/auditlog/handler"
	auditlogmetrics "leicca/internal/auditlog/metrics"
	"leicca/internal/chainquery"
	chainqueryhandler "leicca/internal/chainquery/handler"
	chainquerymetrics "leicca/internal/chainquery/metrics"
	"leicca/internal/classification"
	classificationhandler "leicca/internal/classification/handler"
	classificationmetrics "leicca/internal/classification/metrics"
	"leicca/internal/evidence"
	evidencehandler "leicca/internal/evidence/handler"
	"leicca/internal/platform/config"
	"leicca/internal/platform/httpserver"
	"leicca/internal/platform/logger"
	"leicca/internal/platform/redis"
	"leicca/pkg/platform/middleware/auth"
	"leicca/pkg/platform/middleware/requestid"
	"leicca/pkg/platform/middleware/requesttime"
)

// main wires the dependency graph and owns the server lifecycle. Business
// logic lives in the internal packages.
func main() {
	_ = godotenv.Load()

	log := logger.New()

	cfg, err := config.FromEnv()
	if err != nil {
		fatal(log, "configuration invalid", err)
	}
	log.Info("starting leicca", "config", cfg.String())

	redisClient, err := redis.New(cfg.Redis)
	if err != nil {
		fatal(log, "redis connection failed", err)
	}
	if redisClient != nil {
		defer redisClient.Close()
	}

	// Chain query singleton: one rate limiter for the whole process.
	chainMetrics := chainquerymetrics.New()
	source := chainquery.NewHTTPSource(cfg.Chain.SourceURL, &http.Client{Timeout: cfg.Chain.RequestTimeout})
	cacheOpts := []chainquery.Option{
		chainquery.WithLogger(log),
		chainquery.WithMetrics(chainMetrics),
		chainquery.WithRateLimit(cfg.Chain.RequestsPerSecond, cfg.Chain.Burst),
	}
	if redisClient != nil {
		cacheOpts = append(cacheOpts, chainquery.WithProofStore(chainquery.NewRedisProofStore(redisClient)))
	}
	cache := chainquery.Shared(source, cacheOpts...)
	tracker := chainquery.NewTracker(cache, cfg.Chain.ConfirmationThreshold, chainMetrics)

	var auditStore auditlog.Store = auditlog.NewMemoryStore()
	if cfg.Postgres.DSN != "" {
		pgStore, err := auditlog.NewPostgresStore(cfg.Postgres.DSN)
		if err != nil {
			fatal(log, "audit database connection failed", err)
		}
		defer pgStore.Close()
		auditStore = pgStore
	}

	auditOpts := []auditlog.Option{
		auditlog.WithLogger(log),
		auditlog.WithMetrics(auditlogmetrics.New()),
	}
	if len(cfg.Kafka.Brokers) > 0 {
		publisher, err := auditlog.NewKafkaPublisher(cfg.Kafka.Brokers, cfg.Kafka.Topic, log)
		if err != nil {
			fatal(log, "kafka connection failed", err)
		}
		defer publisher.Close()
		auditOpts = append(auditOpts, auditlog.WithPublisher(publisher))
	}

	anchorer := anchoring.NewWalletAnchorer(cfg.Anchoring.WalletURL, cfg.Anchoring.WalletKey, cfg.Anchoring.Basket, nil)
	coordinator := anchoring.NewCoordinator(anchorer, tracker, cfg.Anchoring.ExplorerURL, cfg.Anchoring.Basket,
		anchoring.WithLogger(log),
		anchoring.WithMetrics(anchoringmetrics.New()),
	)

	auditService := auditlog.NewService(auditStore, coordinator, auditOpts...)
	coordinator.SetRecorder(auditService)

	var evidenceStore evidence.Store = evidence.NewMemoryStore()
	if cfg.Evidence.MinioEndpoint != "" {
		minioClient, err := minio.New(cfg.Evidence.MinioEndpoint, &minio.Options{
			Creds:  credentials.NewStaticV4(cfg.Evidence.MinioAccessKey, cfg.Evidence.MinioSecretKey, ""),
			Secure: cfg.Evidence.MinioUseSSL,
		})
		if err != nil {
			fatal(log, "minio connection failed", err)
		}
		store, err := evidence.NewMinioStore(context.Background(), minioClient, cfg.Evidence.Bucket)
		if err != nil {
			fatal(log, "evidence bucket setup failed", err)
		}
		evidenceStore = store
	}
	evidenceService := evidence.NewService(evidenceStore, log, evidence.WithRecorder(auditService))

	panels, err := classification.LoadDir(cfg.PanelsDir)
	if err != nil {
		fatal(log, "panel definitions invalid", err)
	}
	engine := classification.NewEngine(panels,
		classification.WithLogger(log),
		classification.WithMetrics(classificationmetrics.New()),
	)
	log.Info("classification panels loaded", "count", len(panels))

	tokens := auth.NewTokenService(cfg.Server.JWTSigningKey, "leicca")

	router := chi.NewRouter()
	router.Use(chimiddleware.Recoverer)
	router.Use(requestid.RequestID)
	router.Use(requesttime.RequestTime)

	router.Handle("/metrics", promhttp.Handler())
	router.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})

	chainqueryhandler.New(cache, tracker, log).Register(router)
	classificationhandler.New(engine, log).Register(router)
	evidencehandler.New(evidenceService, log).Register(router)

	// Anchoring and the audit trail carry sensitive payloads; token required.
	router.Group(func(r chi.Router) {
		r.Use(auth.RequireToken(tokens, log))
		anchoringhandler.New(coordinator, log).Register(r)
		auditloghandler.New(auditService, log).Register(r)
	})

	srv := httpserver.New(cfg.Server.Addr, router)

	go func() {
		log.Info("listening", "addr", cfg.Server.Addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			fatal(log, "server error", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit

	log.Info("shutting down")
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		fatal(log, "graceful shutdown failed", err)
	}
}

func fatal(log *slog.Logger, msg string, err error) {
	log.Error(msg, "error", err)
	os.Exit(1)
}
