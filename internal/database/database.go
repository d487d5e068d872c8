package database

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/charmbracelet/log"
	_ "github.com/jackc/pgx/v5/stdlib"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"github.com/Tomlord1122/buyareco-backend/internal/config"
	"github.com/Tomlord1122/buyareco-backend/internal/domain"
	"github.com/Tomlord1122/buyareco-backend/internal/logging"
)

// Service exposes the gorm handle plus pool lifecycle and health.
type Service interface {
	Health() map[string]string
	Migrate(ctx context.Context) error
	Close() error
	GetDB() *gorm.DB
}

type service struct {
	db     *gorm.DB
	name   string
	logger *log.Logger
}

// New opens the Postgres pool described by cfg.
func New(cfg config.DatabaseConfig, logger *log.Logger) (Service, error) {
	db, err := gorm.Open(postgres.Open(cfg.DSN()), &gorm.Config{
		Logger:         logging.Gorm(logger, cfg.SlowThreshold.Duration),
		TranslateError: true,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get underlying sql.DB: %w", err)
	}
	sqlDB.SetMaxIdleConns(cfg.MaxIdleConns)
	sqlDB.SetMaxOpenConns(cfg.MaxOpenConns)
	sqlDB.SetConnMaxLifetime(cfg.ConnMaxLifetime.Duration)

	return NewWithDB(db, cfg.Name, logger), nil
}

// NewWithDB wraps an already opened gorm handle.
func NewWithDB(db *gorm.DB, name string, logger *log.Logger) Service {
	return &service{db: db, name: name, logger: logger}
}

func (s *service) GetDB() *gorm.DB {
	return s.db
}

// Migrate creates or updates every table the service owns.
func (s *service) Migrate(ctx context.Context) error {
	s.logger.Info("running auto-migration", "models", len(domain.Models()))
	if err := s.db.WithContext(ctx).AutoMigrate(domain.Models()...); err != nil {
		return fmt.Errorf("auto-migrate: %w", err)
	}
	return nil
}

func (s *service) Health() map[string]string {
	ctx, cancel := context.WithTimeout(context.Background(), 1*time.Second)
	defer cancel()

	stats := make(map[string]string)
	sqlDB, err := s.db.DB()
	if err != nil {
		stats["status"] = "down"
		stats["error"] = fmt.Sprintf("failed to get underlying DB for health check: %v", err)
		s.logger.Error("health check", "err", err)
		return stats
	}

	if err := sqlDB.PingContext(ctx); err != nil {
		stats["status"] = "down"
		stats["error"] = fmt.Sprintf("db down: %v", err)
		s.logger.Error("db down", "err", err)
		return stats
	}

	stats["status"] = "up"
	stats["message"] = "It's healthy"

	dbStats := sqlDB.Stats()
	stats["open_connections"] = strconv.Itoa(dbStats.OpenConnections)
	stats["in_use"] = strconv.Itoa(dbStats.InUse)
	stats["idle"] = strconv.Itoa(dbStats.Idle)
	stats["wait_count"] = strconv.FormatInt(dbStats.WaitCount, 10)
	stats["wait_duration"] = dbStats.WaitDuration.String()
	stats["max_idle_closed"] = strconv.FormatInt(dbStats.MaxIdleClosed, 10)
	stats["max_lifetime_closed"] = strconv.FormatInt(dbStats.MaxLifetimeClosed, 10)

	switch {
	case dbStats.MaxLifetimeClosed > int64(dbStats.OpenConnections)/2:
		stats["message"] = "Many connections are being closed due to max lifetime, consider increasing ConnMaxLifetime."
	case dbStats.MaxIdleClosed > int64(dbStats.OpenConnections)/2 && dbStats.OpenConnections > dbStats.Idle:
		stats["message"] = "Many idle connections are being closed, consider revising MaxIdleConns."
	case dbStats.WaitCount > 1000:
		stats["message"] = "The database has a high number of wait events, indicating potential bottlenecks."
	case dbStats.OpenConnections > 80:
		stats["message"] = "The database is experiencing heavy load."
	}

	return stats
}

func (s *service) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	s.logger.Info("closing connection pool", "database", s.name)
	return sqlDB.Close()
}
