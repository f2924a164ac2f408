// Package sqlstore persists marketplace records in a relational database
// through gorm. The default dialect is SQLite.
package sqlstore

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/glebarez/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/zhouzirui/marketplace/backend/internal/model/market"
)

// Config describes how to open the database.
type Config struct {
	DSN          string
	MaxOpenConns int
	Logger       *slog.Logger
}

// Store implements market.Store on top of gorm.
type Store struct {
	db     *gorm.DB
	users  *repository[market.User]
	orders *repository[market.Order]
	offers *repository[market.Offer]
}

var _ market.Store = (*Store)(nil)

// models lists the tables in dependency order.
var models = []any{&market.User{}, &market.Order{}, &market.Offer{}}

// Open connects to the database and creates any missing tables. It never
// drops existing data; use Reset for that.
func Open(cfg Config) (*Store, error) {
	if strings.TrimSpace(cfg.DSN) == "" {
		return nil, errors.New("sqlstore: empty DSN")
	}

	gormCfg := &gorm.Config{
		TranslateError: true,
		Logger:         gormlogger.Discard,
	}
	if cfg.Logger != nil {
		gormCfg.Logger = gormlogger.New(slogWriter{cfg.Logger}, gormlogger.Config{
			SlowThreshold:             200 * time.Millisecond,
			LogLevel:                  gormlogger.Warn,
			IgnoreRecordNotFoundError: true,
		})
	}

	db, err := gorm.Open(sqlite.Open(cfg.DSN), gormCfg)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("database handle: %w", err)
	}
	switch {
	case isMemoryDSN(cfg.DSN):
		// Every new connection to an in-memory database sees a fresh schema.
		sqlDB.SetMaxOpenConns(1)
	case cfg.MaxOpenConns > 0:
		sqlDB.SetMaxOpenConns(cfg.MaxOpenConns)
	}

	if err := db.AutoMigrate(models...); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("migrate schema: %w", err)
	}

	return &Store{
		db:     db,
		users:  &repository[market.User]{db: db, collection: market.CollectionUsers},
		orders: &repository[market.Order]{db: db, collection: market.CollectionOrders},
		offers: &repository[market.Offer]{db: db, collection: market.CollectionOffers},
	}, nil
}

func (s *Store) Users() market.Repository[market.User]   { return s.users }
func (s *Store) Orders() market.Repository[market.Order] { return s.orders }
func (s *Store) Offers() market.Repository[market.Offer] { return s.offers }

// Reset drops every table and recreates the schema.
func (s *Store) Reset(ctx context.Context) error {
	db := s.db.WithContext(ctx)
	if err := db.Migrator().DropTable(models...); err != nil {
		return fmt.Errorf("drop tables: %w", err)
	}
	if err := db.AutoMigrate(models...); err != nil {
		return fmt.Errorf("create tables: %w", err)
	}
	return nil
}

// Ping checks the database connection.
func (s *Store) Ping(ctx context.Context) error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.PingContext(ctx)
}

// Close releases the connection pool.
func (s *Store) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

func isMemoryDSN(dsn string) bool {
	return strings.Contains(dsn, ":memory:") || strings.Contains(dsn, "mode=memory")
}

// slogWriter adapts slog to gorm's printf-style logger.
type slogWriter struct {
	logger *slog.Logger
}

func (w slogWriter) Printf(format string, args ...any) {
	w.logger.Warn(fmt.Sprintf(format, args...), "component", "gorm")
}
