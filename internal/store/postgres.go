package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/lib/pq"
)

type PostgresStore struct {
	db    *sql.DB
	table string
}

// NewPostgres opens dsn with the pgx driver and migrates the ledger table.
func NewPostgres(dsn, table string) (*PostgresStore, error) {
	db, err := sql.Open("pgx", dsn)
	if err != nil {
		return nil, err
	}
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("postgres ping: %w", err)
	}
	s, err := NewPostgresWithDB(ctx, db, table)
	if err != nil {
		_ = db.Close()
		return nil, err
	}
	return s, nil
}

// NewPostgresWithDB wraps an open handle and ensures the table exists.
func NewPostgresWithDB(ctx context.Context, db *sql.DB, table string) (*PostgresStore, error) {
	if table == "" {
		table = "uploads"
	}
	s := &PostgresStore{db: db, table: pq.QuoteIdentifier(table)}
	if err := s.migrate(ctx); err != nil {
		return nil, err
	}
	return s, nil
}

func (s *PostgresStore) migrate(ctx context.Context) error {
	stmt := fmt.Sprintf(`CREATE TABLE IF NOT EXISTS %s (
		filename TEXT PRIMARY KEY,
		size BIGINT NOT NULL,
		uploaded_at TIMESTAMPTZ NOT NULL DEFAULT now()
	)`, s.table)
	if _, err := s.db.ExecContext(ctx, stmt); err != nil {
		return fmt.Errorf("failed to create ledger table: %w", err)
	}
	return nil
}

// RecordUpload upserts the row for u.Filename.
func (s *PostgresStore) RecordUpload(ctx context.Context, u Upload) error {
	if u.UploadedAt.IsZero() {
		u.UploadedAt = time.Now().UTC()
	}
	q := fmt.Sprintf(`INSERT INTO %s (filename, size, uploaded_at) VALUES ($1, $2, $3)
		ON CONFLICT (filename) DO UPDATE SET size = EXCLUDED.size, uploaded_at = EXCLUDED.uploaded_at`, s.table)
	if _, err := s.db.ExecContext(ctx, q, u.Filename, u.Size, u.UploadedAt); err != nil {
		return fmt.Errorf("record upload %s: %w", u.Filename, err)
	}
	return nil
}

func (s *PostgresStore) Close() error {
	return s.db.Close()
}
