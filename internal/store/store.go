package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/glebarez/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/mkravets/shopcore/internal/models"
)

// Store is the embedded entity store: a single sqlite file plus an
// in-process change hub feeding live queries.
type Store struct {
	DB  *gorm.DB
	hub *hub
}

func configurePool(sqlDB *sql.DB) {
	// sqlite has a single writer; one never-recycled connection also
	// keeps ":memory:" databases from splitting per connection and
	// holds session pragmas for the process lifetime.
	sqlDB.SetMaxOpenConns(1)
	sqlDB.SetConnMaxLifetime(0)
}

// Open opens (creating if needed) the store at path. Foreign keys are
// enforced so cascade rules from the model declarations hold at the
// engine level.
func Open(ctx context.Context, path string) (*Store, error) {
	if path == "" {
		return nil, fmt.Errorf("store path is empty")
	}

	dsn := path + "?_pragma=foreign_keys(1)&_pragma=busy_timeout(5000)"
	return open(ctx, dsn)
}

// OpenMemory opens a throwaway in-memory store, used by tests and the
// guest preview mode.
func OpenMemory(ctx context.Context) (*Store, error) {
	return open(ctx, ":memory:")
}

func open(ctx context.Context, dsn string) (*Store, error) {
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		NowFunc: func() time.Time { return time.Now().UTC() },
		Logger:  logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		return nil, fmt.Errorf("open store: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("get sql.DB: %w", err)
	}
	configurePool(sqlDB)

	pingCtx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	if err := sqlDB.PingContext(pingCtx); err != nil {
		return nil, fmt.Errorf("ping store: %w", err)
	}

	if err := db.Exec("PRAGMA foreign_keys = ON").Error; err != nil {
		return nil, fmt.Errorf("enable foreign keys: %w", err)
	}

	if err := db.AutoMigrate(models.All()...); err != nil {
		return nil, fmt.Errorf("migrate store: %w", err)
	}

	return &Store{DB: db, hub: newHub()}, nil
}

// Touch tells the hub that rows in the given tables may have changed.
// Repositories call it after every successful mutation.
func (s *Store) Touch(tables ...string) {
	s.hub.touch(tables...)
}

// Subscribe returns a coalescing notification channel that fires when
// any of the given tables is touched. The returned cancel func must be
// called when the subscriber goes away.
func (s *Store) Subscribe(tables ...string) (<-chan struct{}, func()) {
	return s.hub.subscribe(tables...)
}

func (s *Store) Close() error {
	sqlDB, err := s.DB.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
