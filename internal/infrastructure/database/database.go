package database

import (
	"embed"
	"fmt"
	"time"

	"github.com/glebarez/sqlite"
	migrate "github.com/rubenv/sql-migrate"
	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/johnquangdev/interview-scheduler/internal/domain/entities"
	"github.com/johnquangdev/interview-scheduler/pkg/config"
)

//go:embed migrations/*.sql
var migrationsFS embed.FS

const (
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite"
)

// Open creates a database connection using GORM for the configured driver
func Open(cfg *config.Config, log *zap.Logger) (*gorm.DB, error) {
	var dialector gorm.Dialector
	switch cfg.Database.Driver {
	case DriverSQLite:
		dialector = sqlite.Open(cfg.Database.SqlitePath)
	case DriverPostgres, "":
		dialector = postgres.Open(cfg.GetDatabaseDSN())
	default:
		return nil, fmt.Errorf("unsupported database driver %q", cfg.Database.Driver)
	}

	// Configure GORM logger
	gormLogger := logger.Default.LogMode(logger.Warn)
	if cfg.Server.Environment == "production" {
		gormLogger = logger.Default.LogMode(logger.Error)
	}

	db, err := gorm.Open(dialector, &gorm.Config{
		Logger: gormLogger,
		NowFunc: func() time.Time {
			return time.Now().UTC()
		},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	// Get generic database object to configure connection pool
	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get database object: %w", err)
	}

	if cfg.Database.Driver == DriverSQLite {
		// sqlite serialises writers; one connection avoids SQLITE_BUSY
		sqlDB.SetMaxOpenConns(1)
	} else {
		sqlDB.SetMaxOpenConns(cfg.Database.MaxConns)
		sqlDB.SetMaxIdleConns(cfg.Database.MinConns)
		sqlDB.SetConnMaxLifetime(time.Hour)
	}

	// Test connection
	if err := sqlDB.Ping(); err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	log.Info("database connected", zap.String("driver", cfg.Database.Driver))
	return db, nil
}

// Migrate brings the schema up to date. PostgreSQL uses the embedded sql-migrate
// files; SQLite, used for local runs and tests, uses GORM AutoMigrate.
func Migrate(db *gorm.DB, driver string, log *zap.Logger) (int, error) {
	if driver == DriverSQLite {
		if err := AutoMigrate(db); err != nil {
			return 0, err
		}
		log.Info("applied auto migration")
		return 0, nil
	}

	sqlDB, err := db.DB()
	if err != nil {
		return 0, fmt.Errorf("failed to get db connection during migrate up: %w", err)
	}

	n, err := migrate.Exec(sqlDB, "postgres", MigrationSource(), migrate.Up)
	if err != nil {
		return 0, fmt.Errorf("failed to apply migration: %w", err)
	}

	log.Info("applied migrations", zap.Int("count", n))
	return n, nil
}

// Rollback reverts up to steps applied PostgreSQL migrations
func Rollback(db *gorm.DB, driver string, steps int, log *zap.Logger) (int, error) {
	if driver == DriverSQLite {
		return 0, fmt.Errorf("rollback is not supported for %s", driver)
	}
	if steps < 1 {
		return 0, fmt.Errorf("steps must be positive, got %d", steps)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return 0, fmt.Errorf("failed to get db connection during migrate down: %w", err)
	}

	n, err := migrate.ExecMax(sqlDB, "postgres", MigrationSource(), migrate.Down, steps)
	if err != nil {
		return 0, fmt.Errorf("failed to roll back migration: %w", err)
	}

	log.Info("rolled back migrations", zap.Int("count", n))
	return n, nil
}

// MigrationSource returns the embedded PostgreSQL migrations
func MigrationSource() migrate.MigrationSource {
	return &migrate.EmbedFileSystemMigrationSource{
		FileSystem: migrationsFS,
		Root:       "migrations",
	}
}

// AutoMigrate creates or updates tables from the entity definitions
func AutoMigrate(db *gorm.DB) error {
	if err := db.AutoMigrate(&entities.CallTranscript{}, &entities.MeetingRecord{}); err != nil {
		return fmt.Errorf("failed to auto migrate: %w", err)
	}
	return nil
}

// CloseDB closes the database connection
func CloseDB(db *gorm.DB) error {
	sqlDB, err := db.DB()
	if err != nil {
		return fmt.Errorf("failed to get database object: %w", err)
	}

	if err := sqlDB.Close(); err != nil {
		return fmt.Errorf("failed to close database: %w", err)
	}
	return nil
}
