// Package main is the entry point for the soil water API server.
//
// Startup loads the configuration, connects to Postgres, selects the event
// and metrics backends, and serves the chi router until SIGINT or SIGTERM.
package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/cloudwatch"
	"github.com/aws/aws-sdk-go-v2/service/sqs"
	"github.com/go-chi/chi/v5"

	"soilwater/internal/analysis"
	"soilwater/internal/api/handlers"
	"soilwater/internal/auth"
	"soilwater/internal/billing"
	"soilwater/internal/config"
	"soilwater/internal/core"
	"soilwater/internal/db"
	"soilwater/internal/events"
	"soilwater/internal/telemetry"
	"soilwater/internal/types"
)

const (
	shutdownDrain       = 15 * time.Second
	metricFlushInterval = time.Minute
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "fatal: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	var provider config.SecretProvider
	if os.Getenv("APP_ENV") != "local" {
		provider = config.NewSSMProvider(os.Getenv("AWS_REGION"))
	}
	cfg, err := config.LoadConfig(provider)
	if err != nil {
		return fmt.Errorf("loading configuration: %w", err)
	}

	logger := newLogger(cfg.LogLevel)
	logger.Info("soilwater API starting",
		"environment", cfg.Environment,
		"version", cfg.Build.Version,
		"commit", cfg.Build.Commit,
		"port", cfg.Server.Port,
		"events_backend", cfg.Events.Backend,
		"metrics_backend", cfg.Observability.MetricsBackend,
	)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	pool, err := db.NewPool(ctx, db.PoolConfig{
		URL:               cfg.Database.URL.Unmask(),
		MaxConns:          cfg.Database.MaxConns,
		MinConns:          cfg.Database.MinConns,
		MaxConnLifetime:   cfg.Database.MaxConnLifetime,
		HealthCheckPeriod: cfg.Database.HealthCheckPeriod,
	})
	if err != nil {
		return fmt.Errorf("connecting to database: %w", err)
	}
	defer pool.Close()

	pingCtx, cancel := context.WithTimeout(ctx, cfg.Database.AcquireTimeout)
	err = pool.Ping(pingCtx)
	cancel()
	if err != nil {
		return fmt.Errorf("pinging database: %w", err)
	}

	var awsCfg *aws.Config
	loadAWS := func() (aws.Config, error) {
		if awsCfg != nil {
			return *awsCfg, nil
		}
		c, err := loadAWSConfig(ctx, cfg.AWS)
		if err != nil {
			return aws.Config{}, err
		}
		awsCfg = &c
		return c, nil
	}

	publisher, closePublisher, err := newPublisher(ctx, cfg, loadAWS, logger)
	if err != nil {
		return err
	}
	defer closePublisher()

	analyses := db.NewAnalysisRepository(pool)
	plans := billing.NewStaticPlanRegistry()

	srv, err := core.NewServer(cfg, logger)
	if err != nil {
		return fmt.Errorf("creating server: %w", err)
	}

	var recorder analysis.Recorder
	switch cfg.Observability.MetricsBackend {
	case types.MetricsBackendCloudWatch:
		c, err := loadAWS()
		if err != nil {
			return err
		}
		cw := telemetry.NewCloudWatchCollector(cloudwatch.NewFromConfig(c), cfg.Observability.MetricNamespace, types.NewSlogLogger(logger), types.RealClock{})
		flushCtx, stopFlush := context.WithCancel(ctx)
		done := make(chan struct{})
		go func() {
			defer close(done)
			cw.Run(flushCtx, metricFlushInterval)
		}()
		defer func() {
			stopFlush()
			<-done
		}()
		srv.Metrics, recorder = cw, cw
	case types.MetricsBackendPrometheus:
		prom := telemetry.NewPrometheusCollector()
		srv.Metrics, recorder = prom, prom
		srv.MetricsHandler = prom.Handler()
	}

	svc := analysis.NewService(analysis.Deps{
		History:   analyses,
		Quota:     billing.NewQuotaEnforcer(analyses, plans, types.RealClock{}),
		Plans:     plans,
		Publisher: publisher,
		Metrics:   recorder,
		Logger:    logger,
		Clock:     types.RealClock{},
	}, analysis.Config{
		BatchConcurrency:       cfg.Analysis.BatchConcurrency,
		HistoryBreakerFailures: cfg.Analysis.HistoryBreakerFailures,
		HistoryBreakerCooldown: cfg.Analysis.HistoryBreakerCooldown,
	})

	srv.Authenticator = auth.NewAPIKeyAuthenticator(db.NewAPIKeyRepository(pool), nil, logger)
	srv.AuthGuard = auth.NewFailureGuard(auth.DefaultGuardConfig(), types.RealClock{}, logger)
	srv.RateLimitStore = core.NewMemoryRateLimitStore(types.RealClock{})
	srv.HealthProbes = []core.HealthProbe{
		core.ProbeFunc{ProbeName: "database", Fn: pool.Ping},
	}

	soilHandler := handlers.NewSoilHandler(svc, srv.Validator, logger)
	srv.V1RouteRegistrars = append(srv.V1RouteRegistrars, func(r chi.Router) {
		r.Route("/soil", soilHandler.RegisterRoutes)
	})
	srv.MountRoutes()

	return srv.Serve(ctx, ":"+cfg.Server.Port, shutdownDrain)
}

// newPublisher returns the analysis event publisher for the configured
// backend and a function that releases it.
func newPublisher(ctx context.Context, cfg *config.Config, loadAWS func() (aws.Config, error), logger *slog.Logger) (analysis.Publisher, func(), error) {
	switch cfg.Events.Backend {
	case types.EventBackendMQTT:
		p, err := events.DialMQTT(ctx, events.MQTTConfig{
			BrokerURL:      cfg.Events.MQTTBrokerURL,
			ClientID:       cfg.Events.MQTTClientID,
			Username:       cfg.Events.MQTTUsername,
			Password:       cfg.Events.MQTTPassword,
			TopicPrefix:    cfg.Events.MQTTTopicPrefix,
			ConnectTimeout: cfg.Events.MQTTConnectTimeout,
		}, logger)
		if err != nil {
			return nil, nil, fmt.Errorf("connecting to MQTT broker: %w", err)
		}
		return p, p.Close, nil
	case types.EventBackendSQS:
		c, err := loadAWS()
		if err != nil {
			return nil, nil, err
		}
		return events.NewSQSPublisher(sqs.NewFromConfig(c), cfg.AWS.AnalysisQueueURL), func() {}, nil
	default:
		return events.Noop{}, func() {}, nil
	}
}

func loadAWSConfig(ctx context.Context, c config.AWSConfig) (aws.Config, error) {
	opts := []func(*awsconfig.LoadOptions) error{awsconfig.WithRegion(c.Region)}
	if c.EndpointURL != "" {
		opts = append(opts, awsconfig.WithBaseEndpoint(c.EndpointURL))
	}
	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return aws.Config{}, fmt.Errorf("loading AWS config: %w", err)
	}
	return awsCfg, nil
}

func newLogger(level string) *slog.Logger {
	var lvl slog.Level
	switch level {
	case "debug":
		lvl = slog.LevelDebug
	case "warn":
		lvl = slog.LevelWarn
	case "error":
		lvl = slog.LevelError
	default:
		lvl = slog.LevelInfo
	}

	return slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: lvl}))
}
