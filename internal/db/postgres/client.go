// Package postgres implements db.Store over PostgreSQL with pgvector.
package postgres

import (
	"context"
	"fmt"
	"time"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/praxis-cloud/ragcore/internal/db"
)

// Compile-time check: Store implements db.Store.
var _ db.Store = (*Store)(nil)

// Config holds connection parameters for a Postgres store.
type Config struct {
	DSN string
	// Debug logs every SQL statement; keep off outside development.
	Debug bool
}

// Store implements db.Store via gorm over PostgreSQL.
type Store struct {
	db *gorm.DB
}

// NewStore connects to PostgreSQL.
func NewStore(cfg Config) (*Store, error) {
	if cfg.DSN == "" {
		return nil, fmt.Errorf("dsn is required")
	}

	logLevel := logger.Warn
	if cfg.Debug {
		logLevel = logger.Info
	}

	gdb, err := gorm.Open(postgres.Open(cfg.DSN), &gorm.Config{
		Logger: logger.Default.LogMode(logLevel),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect: %w", err)
	}

	return &Store{db: gdb}, nil
}

// Ping checks database connectivity.
func (s *Store) Ping(ctx context.Context) error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return &db.Error{Op: db.OpPing, Err: err}
	}
	if err := sqlDB.PingContext(ctx); err != nil {
		return &db.Error{Op: db.OpPing, Err: err}
	}
	return nil
}

// Close releases the underlying connection pool.
func (s *Store) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

// WaitForReady polls Ping until the store responds or timeout expires.
func (s *Store) WaitForReady(ctx context.Context, timeout time.Duration) error {
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	ticker := time.NewTicker(100 * time.Millisecond)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return fmt.Errorf("timeout waiting for database: %w", ctx.Err())
		case <-ticker.C:
			if err := s.Ping(ctx); err == nil {
				return nil
			}
		}
	}
}

// Migrate creates the pgvector extension, the tables, and the search indexes.
// All statements are idempotent, so it is safe to run at every boot.
func (s *Store) Migrate(ctx context.Context) error {
	gdb := s.db.WithContext(ctx)

	// The extension must exist before AutoMigrate sees the vector column type.
	if err := gdb.Exec("CREATE EXTENSION IF NOT EXISTS vector").Error; err != nil {
		return translate(db.OpMigrate, err)
	}

	if err := gdb.AutoMigrate(&documentRow{}, &chunkRow{}); err != nil {
		return translate(db.OpMigrate, err)
	}

	// HNSW over cosine distance; AutoMigrate cannot express operator classes.
	if err := gdb.Exec(
		"CREATE INDEX IF NOT EXISTS idx_document_chunks_embedding " +
			"ON document_chunks USING hnsw (embedding vector_cosine_ops)",
	).Error; err != nil {
		return translate(db.OpMigrate, err)
	}

	return nil
}
