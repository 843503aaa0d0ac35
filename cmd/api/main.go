package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/otel"
	"go.uber.org/zap"

	"github.com/josefzacek/skills-getting-started-with-github-copilot/internal/api"
	"github.com/josefzacek/skills-getting-started-with-github-copilot/internal/catalog"
	"github.com/josefzacek/skills-getting-started-with-github-copilot/internal/config"
	"github.com/josefzacek/skills-getting-started-with-github-copilot/internal/domain"
	"github.com/josefzacek/skills-getting-started-with-github-copilot/internal/logging"
	"github.com/josefzacek/skills-getting-started-with-github-copilot/internal/observability"
	"github.com/josefzacek/skills-getting-started-with-github-copilot/internal/publisher"
	"github.com/josefzacek/skills-getting-started-with-github-copilot/internal/registry"
	httptransport "github.com/josefzacek/skills-getting-started-with-github-copilot/internal/transport/http"
	"github.com/josefzacek/skills-getting-started-with-github-copilot/internal/web"
)

type eventPublisher interface {
	domain.EventPublisher
	Close() error
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic(err)
	}

	logger, err := logging.New(cfg.LogLevel, cfg.LogFormat)
	if err != nil {
		panic(err)
	}
	defer func() { _ = logger.Sync() }()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	seed, err := buildCatalog(ctx, cfg, logger)
	if err != nil {
		logger.Fatal("failed to load activity catalog", zap.Error(err))
	}

	reg, err := registry.NewInMemoryRegistry(seed)
	if err != nil {
		logger.Fatal("invalid activity catalog", zap.Error(err))
	}
	for _, a := range reg.List(ctx) {
		observability.RecordEnrollment(a.Name, len(a.Participants), a.MaxParticipants)
	}

	var pub eventPublisher = publisher.Noop{}
	if cfg.EventsEnabled() {
		pub = publisher.NewKafkaPublisher(cfg.KafkaBrokers, cfg.KafkaTopic)
		logger.Info("publishing registration events", zap.Strings("brokers", cfg.KafkaBrokers), zap.String("topic", cfg.KafkaTopic))
	}
	defer func() {
		if err := pub.Close(); err != nil {
			logger.Warn("publisher close failed", zap.Error(err))
		}
	}()

	var serviceOpts []domain.Option
	if cfg.TracingEnabled {
		tp := observability.NewTracerProvider("activities-api", logger.Named("trace"))
		otel.SetTracerProvider(tp)
		serviceOpts = append(serviceOpts, domain.WithTracerProvider(tp))
		defer func() {
			if err := tp.Shutdown(context.Background()); err != nil {
				logger.Warn("tracer shutdown failed", zap.Error(err))
			}
		}()
	}

	service := domain.NewService(reg, pub, logger.Named("domain"), serviceOpts...)

	mux := http.NewServeMux()
	api.NewHandler(service, logger.Named("api")).RegisterRoutes(mux)
	web.RegisterRoutes(mux)
	mux.Handle("GET /metrics", promhttp.Handler())

	server := httptransport.NewServer(httptransport.ServerConfig{
		Address:      cfg.HTTPAddress,
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
		IdleTimeout:  cfg.IdleTimeout,
	}, httptransport.Chain(mux,
		httptransport.RequestLogger(logger.Named("http")),
		httptransport.CORS(cfg.CORSAllowedOrigin),
	), logger.Named("http"))

	shutdownCh := make(chan os.Signal, 1)
	signal.Notify(shutdownCh, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		logger.Info("activities api listening", zap.String("address", cfg.HTTPAddress), zap.Int("activities", len(seed)))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("server error", zap.Error(err))
		}
	}()

	<-shutdownCh
	logger.Info("shutdown requested")
	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("graceful shutdown failed", zap.Error(err))
	}
}

// buildCatalog picks the seed source: Postgres, then a catalog file, then the built-in roster.
func buildCatalog(ctx context.Context, cfg config.Config, logger *zap.Logger) ([]domain.Activity, error) {
	switch {
	case cfg.CatalogPostgresURL != "":
		pool, err := pgxpool.New(ctx, cfg.CatalogPostgresURL)
		if err != nil {
			return nil, err
		}
		defer pool.Close()
		logger.Info("loading catalog from postgres")
		return catalog.NewPostgresSource(pool).Load(ctx)
	case cfg.CatalogPath != "":
		logger.Info("loading catalog from file", zap.String("path", cfg.CatalogPath))
		return catalog.LoadFile(cfg.CatalogPath)
	default:
		return catalog.Default(), nil
	}
}
