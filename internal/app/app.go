package app

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/benbjohnson/clock"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"google.golang.org/api/option"
	"gorm.io/gorm"

	"github.com/johnquangdev/interview-scheduler/internal/adapter/repository"
	"github.com/johnquangdev/interview-scheduler/internal/infrastructure/cache"
	"github.com/johnquangdev/interview-scheduler/internal/infrastructure/database"
	googlecalendar "github.com/johnquangdev/interview-scheduler/internal/infrastructure/external/calendar"
	"github.com/johnquangdev/interview-scheduler/internal/infrastructure/external/mailer"
	"github.com/johnquangdev/interview-scheduler/internal/infrastructure/external/oauth"
	"github.com/johnquangdev/interview-scheduler/internal/infrastructure/storage"
	"github.com/johnquangdev/interview-scheduler/internal/usecase/calendar"
	"github.com/johnquangdev/interview-scheduler/internal/usecase/extraction"
	"github.com/johnquangdev/interview-scheduler/internal/usecase/notification"
	"github.com/johnquangdev/interview-scheduler/internal/usecase/pipeline"
	"github.com/johnquangdev/interview-scheduler/internal/usecase/transcript"
	"github.com/johnquangdev/interview-scheduler/pkg/callprovider"
	"github.com/johnquangdev/interview-scheduler/pkg/config"
	"github.com/johnquangdev/interview-scheduler/pkg/llm"
)

// lockPrefix namespaces run locks in a shared Redis
const lockPrefix = "interview-scheduler:lock:"

// App is the wired service shared by the API server and the operator CLI
type App struct {
	Config   *config.Config
	Logger   *zap.Logger
	DB       *gorm.DB
	Store    *repository.MeetingRepository
	Provider *callprovider.Client
	Pipeline *pipeline.Orchestrator
	Registry *prometheus.Registry

	closers []func() error
}

// NewLogger builds the process logger: JSON in production, console otherwise
func NewLogger(cfg *config.Config) (*zap.Logger, error) {
	level, err := zapcore.ParseLevel(cfg.LogLevel)
	if err != nil {
		return nil, fmt.Errorf("invalid LOG_LEVEL %q: %w", cfg.LogLevel, err)
	}

	zcfg := zap.NewDevelopmentConfig()
	if cfg.Server.Environment == "production" {
		zcfg = zap.NewProductionConfig()
	}
	zcfg.Level = zap.NewAtomicLevelAt(level)
	return zcfg.Build()
}

// OpenStore connects to the database, applies migrations when configured and returns the repository.
// SQLite databases are always migrated.
func OpenStore(cfg *config.Config, logger *zap.Logger) (*gorm.DB, *repository.MeetingRepository, error) {
	db, err := database.Open(cfg, logger)
	if err != nil {
		return nil, nil, err
	}
	if cfg.Database.AutoMigrate || cfg.Database.Driver == database.DriverSQLite {
		if _, err := database.Migrate(db, cfg.Database.Driver, logger); err != nil {
			database.CloseDB(db)
			return nil, nil, err
		}
	}
	return db, repository.NewMeetingRepository(db), nil
}

// New wires every collaborator of the pipeline from configuration
func New(ctx context.Context, cfg *config.Config, logger *zap.Logger) (*App, error) {
	a := &App{Config: cfg, Logger: logger}

	loc, err := time.LoadLocation(cfg.Calendar.TimeZone)
	if err != nil {
		return nil, fmt.Errorf("invalid CALENDAR_TIME_ZONE %q: %w", cfg.Calendar.TimeZone, err)
	}

	db, store, err := OpenStore(cfg, logger)
	if err != nil {
		return nil, err
	}
	a.DB, a.Store = db, store
	a.closers = append(a.closers, func() error { return database.CloseDB(db) })

	locker, err := a.newLocker(cfg)
	if err != nil {
		a.Close()
		return nil, err
	}

	googleProvider := oauth.NewGoogleProvider(cfg.Calendar.ClientID, cfg.Calendar.ClientSecret)
	calendarOpts := []option.ClientOption{
		option.WithTokenSource(googleProvider.TokenSource(ctx, cfg.Calendar.RefreshToken)),
	}
	if cfg.Calendar.Endpoint != "" {
		calendarOpts = append(calendarOpts, option.WithEndpoint(cfg.Calendar.Endpoint))
	}
	events, err := googlecalendar.NewGoogleCalendar(ctx, cfg.Calendar.CalendarID, calendarOpts...)
	if err != nil {
		a.Close()
		return nil, err
	}

	smtp, err := mailer.NewSMTPMailer(&cfg.Mail)
	if err != nil {
		a.Close()
		return nil, err
	}

	a.Registry = prometheus.NewRegistry()
	a.Registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	metrics := pipeline.MustNewMetrics(a.Registry)

	a.Provider = callprovider.NewClient(&cfg.CallProvider)
	llmClient := llm.NewClient(&cfg.LLM)
	clk := clock.New()

	deps := pipeline.Deps{
		Fetcher:   transcript.NewFetcher(a.Provider, logger.Named("fetcher")),
		Extractor: extraction.NewExtractor(llmClient, extraction.NewParser(loc), clk, logger.Named("extractor")),
		Store:     store,
		Scheduler: calendar.NewScheduler(events, loc, clk, logger.Named("calendar")),
		Dispatcher: notification.NewDispatcher(smtp, notification.Options{
			From:        cfg.Mail.From,
			CC:          cfg.Mail.CC,
			MaxAttempts: cfg.Mail.MaxAttempts,
			BaseDelay:   cfg.Mail.BaseDelay,
		}, metrics, logger.Named("notification")),
		Locker:  locker,
		Metrics: metrics,
		Clock:   clk,
		Logger:  logger.Named("pipeline"),
	}

	if cfg.Archive.Enabled {
		archive, err := storage.NewMinIOClient(&cfg.Archive)
		if err != nil {
			a.Close()
			return nil, err
		}
		if err := archive.EnsureBucket(ctx); err != nil {
			logger.Warn("call archive bucket unavailable, archiving will be retried per call", zap.Error(err))
		}
		deps.Archiver = archive
	}

	a.Pipeline = pipeline.NewOrchestrator(deps, pipeline.Options{
		FallbackTime:     cfg.Pipeline.FallbackTime,
		RunTimeout:       cfg.Pipeline.RunTimeout,
		BatchConcurrency: cfg.Pipeline.BatchConcurrency,
	})

	logger.Info("pipeline initialized",
		zap.String("db_driver", cfg.Database.Driver),
		zap.Bool("redis_locks", cfg.Redis.Enabled),
		zap.Bool("archive", cfg.Archive.Enabled),
		zap.String("time_zone", loc.String()),
	)
	return a, nil
}

func (a *App) newLocker(cfg *config.Config) (*cache.Locker, error) {
	if cfg.Redis.Enabled {
		client, err := cache.NewRedisClient(cfg)
		if err != nil {
			return nil, err
		}
		a.closers = append(a.closers, client.Close)
		return cache.NewLocker(cache.NewRedisStore(client), lockPrefix, cfg.Redis.LockTTL), nil
	}

	mem := cache.NewMemoryStore()
	a.closers = append(a.closers, func() error {
		mem.Close()
		return nil
	})
	return cache.NewLocker(mem, lockPrefix, cfg.Redis.LockTTL), nil
}

// Close releases connections in reverse order of acquisition
func (a *App) Close() error {
	var errs []error
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i](); err != nil {
			errs = append(errs, err)
		}
	}
	a.closers = nil
	return errors.Join(errs...)
}
