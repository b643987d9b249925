package db

import (
	"fmt"
	"strings"
	"time"

	"gorm.io/gorm"
	gormLogger "gorm.io/gorm/logger"

	"github.com/yungbote/studynotion-backend/internal/platform/logger"
)

const (
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite"
)

type PostgresConfig struct {
	Host     string
	Port     string
	User     string
	Password string
	Name     string
	SSLMode  string
}

func (c PostgresConfig) DSN() string {
	ssl := c.SSLMode
	if ssl == "" {
		ssl = "disable"
	}
	return fmt.Sprintf("postgres://%s:%s@%s:%s/%s?sslmode=%s", c.User, c.Password, c.Host, c.Port, c.Name, ssl)
}

type Config struct {
	Driver     string
	Postgres   PostgresConfig
	SQLitePath string
}

// Open connects with the configured driver. It does not migrate.
func Open(log *logger.Logger, cfg Config) (*gorm.DB, error) {
	switch strings.ToLower(strings.TrimSpace(cfg.Driver)) {
	case "", DriverPostgres:
		svc, err := NewPostgresService(log, cfg.Postgres)
		if err != nil {
			return nil, err
		}
		return svc.DB(), nil
	case DriverSQLite:
		svc, err := NewSQLiteService(log, cfg.SQLitePath)
		if err != nil {
			return nil, err
		}
		return svc.DB(), nil
	default:
		return nil, fmt.Errorf("unsupported DB_DRIVER %q (allowed: %s, %s)", cfg.Driver, DriverPostgres, DriverSQLite)
	}
}

// gormConfig routes gorm's own warnings (slow queries, driver errors) into the app logger.
func gormConfig(log *logger.Logger) *gorm.Config {
	return &gorm.Config{
		DisableForeignKeyConstraintWhenMigrating: true,
		Logger: gormLogger.New(
			gormWriter{log: log.With("component", "gorm")},
			gormLogger.Config{
				SlowThreshold:             time.Second,
				LogLevel:                  gormLogger.Warn,
				IgnoreRecordNotFoundError: true,
				Colorful:                  false,
			},
		),
	}
}

type gormWriter struct {
	log *logger.Logger
}

func (w gormWriter) Printf(format string, args ...interface{}) {
	w.log.Warn(strings.TrimSpace(fmt.Sprintf(format, args...)))
}
