package cli

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/wealthdesk/wealthdesk/internal/application/crm"
	"github.com/wealthdesk/wealthdesk/internal/application/insights"
	appportfolio "github.com/wealthdesk/wealthdesk/internal/application/portfolio"
	"github.com/wealthdesk/wealthdesk/internal/application/schedule"
	"github.com/wealthdesk/wealthdesk/internal/config"
	domainportfolio "github.com/wealthdesk/wealthdesk/internal/domain/portfolio"
	"github.com/wealthdesk/wealthdesk/internal/infrastructure/database/postgres"
	"github.com/wealthdesk/wealthdesk/internal/infrastructure/database/postgres/repositories"
	"github.com/wealthdesk/wealthdesk/internal/infrastructure/database/redis"
	"github.com/wealthdesk/wealthdesk/internal/infrastructure/messaging/kafka"
	"github.com/wealthdesk/wealthdesk/internal/infrastructure/monitoring/logging"
	"github.com/wealthdesk/wealthdesk/internal/infrastructure/monitoring/prometheus"
	httpserver "github.com/wealthdesk/wealthdesk/internal/interfaces/http"
	"github.com/wealthdesk/wealthdesk/internal/interfaces/http/handlers"
	"github.com/wealthdesk/wealthdesk/internal/interfaces/http/middleware"
)

func newServeCmd(opts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the wealthdesk API server",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(opts)
			if err != nil {
				return err
			}
			logger, err := newLogger(cfg)
			if err != nil {
				return err
			}
			return runServer(cmd.Context(), cfg, logger)
		},
	}
}

// runServer wires every layer together and blocks until a termination
// signal arrives or the listener fails.
func runServer(ctx context.Context, cfg *config.Config, logger logging.Logger) error {
	logger.Info("starting wealthdesk",
		logging.String("version", Version),
		logging.Int("port", cfg.Server.Port),
	)

	conn, err := postgres.NewConnection(cfg.Database, logger.Named("postgres"))
	if err != nil {
		return err
	}
	defer conn.Close()

	// Redis is an optimization, not a dependency: without it every read
	// goes to Postgres and the rate limiter fails open.
	checkers := map[string]handlers.HealthChecker{"postgres": conn}
	var cache redis.Cache = redis.NopCache{}
	redisClient, err := redis.NewClient(cfg.Redis, logger.Named("redis"))
	if err != nil {
		logger.Warn("redis unavailable, caching disabled", logging.Err(err))
	} else {
		defer redisClient.Close()
		checkers["redis"] = redisClient
		cache = redis.NewCache(redisClient,
			redis.WithPrefix(cfg.Redis.KeyPrefix),
			redis.WithDefaultTTL(cfg.Redis.DefaultTTL),
		)
	}

	var publisher kafka.Publisher = kafka.NopPublisher{}
	if cfg.Kafka.Enabled {
		producer, err := kafka.NewProducer(cfg.Kafka, logger.Named("kafka"))
		if err != nil {
			return err
		}
		defer producer.Close()
		publisher = producer
	}

	metrics := prometheus.NewMetrics()
	engine := domainportfolio.NewEngine(
		domainportfolio.WithGrowthRate(cfg.Portfolio.AssumedGrowthRate),
	)

	clientRepo := repositories.NewPostgresClientRepo(conn, logger.Named("clients"))
	txnRepo := repositories.NewPostgresTransactionRepo(conn, logger.Named("transactions"))
	taskRepo := repositories.NewPostgresTaskRepo(conn, logger.Named("tasks"))
	apptRepo := repositories.NewPostgresAppointmentRepo(conn, logger.Named("appointments"))

	crmService := crm.NewService(clientRepo, publisher, logger.Named("crm"))
	portfolioService := appportfolio.NewService(
		clientRepo, txnRepo, engine, cache, publisher, metrics,
		logger.Named("portfolio"), cfg.Portfolio.SummaryCacheTTL,
	)
	scheduleService := schedule.NewService(taskRepo, apptRepo, clientRepo, publisher, logger.Named("schedule"))
	insightsService := insights.NewService(
		clientRepo, txnRepo, engine, cache,
		logger.Named("insights"), cfg.Portfolio.SummaryCacheTTL,
	)

	routerCfg := httpserver.RouterConfig{
		ClientHandler:    handlers.NewClientHandler(crmService),
		PortfolioHandler: handlers.NewPortfolioHandler(portfolioService),
		ScheduleHandler:  handlers.NewScheduleHandler(scheduleService),
		InsightsHandler:  handlers.NewInsightsHandler(insightsService),
		HealthHandler:    handlers.NewHealthHandler(checkers),
		CORS:             middleware.DefaultCORSConfig(),
		Logger:           logger.Named("http"),
		Metrics:          metrics,
	}
	if cfg.RateLimit.Enabled {
		routerCfg.RateLimiter = middleware.NewRateLimiter(cache, cfg.RateLimit, metrics, logger.Named("ratelimit"))
	}

	server := httpserver.NewServer(cfg.Server, httpserver.NewRouter(routerCfg), logger)

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() { errCh <- server.Start() }()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	logger.Info("shutdown signal received")
	if err := server.Stop(context.Background()); err != nil {
		logger.Error("server shutdown failed", logging.Err(err))
		return err
	}
	logger.Info("wealthdesk stopped")
	return nil
}
