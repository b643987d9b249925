package db

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/yungbote/studynotion-backend/internal/platform/logger"
)

// SQLiteService backs single-node development and the repository tests.
type SQLiteService struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewSQLiteService(log *logger.Logger, path string) (*SQLiteService, error) {
	serviceLog := log.With("service", "SQLiteService")
	path = strings.TrimSpace(path)
	if path == "" {
		return nil, fmt.Errorf("SQLITE_PATH required for sqlite driver")
	}
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create sqlite dir: %w", err)
		}
	}
	db, err := OpenSQLite(path, gormConfig(log))
	if err != nil {
		return nil, err
	}
	serviceLog.Info("SQLite opened", "path", path)
	return &SQLiteService{db: db, log: serviceLog}, nil
}

func (s *SQLiteService) DB() *gorm.DB { return s.db }

// OpenSQLite opens path with a single writer connection and a busy timeout so
// concurrent request goroutines queue instead of failing with SQLITE_BUSY.
func OpenSQLite(path string, cfg *gorm.Config) (*gorm.DB, error) {
	dsn := fmt.Sprintf("file:%s?_busy_timeout=5000&_journal_mode=WAL&_foreign_keys=off", path)
	db, err := gorm.Open(sqlite.Open(dsn), cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to open sqlite %s: %w", path, err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("sqlite pool: %w", err)
	}
	sqlDB.SetMaxOpenConns(1)
	return db, nil
}
