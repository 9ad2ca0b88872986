package order

import (
	"context"
	"embed"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	migrate "github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/pgx/v5"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

//go:embed migrations/*.sql
var migrationsFS embed.FS

// Migrate applies the order schema migrations against the database.
func Migrate(databaseURL string) error {
	src, err := iofs.New(migrationsFS, "migrations")
	if err != nil {
		return fmt.Errorf("load migrations: %w", err)
	}
	m, err := migrate.NewWithSourceInstance("iofs", src, pgxURL(databaseURL))
	if err != nil {
		return fmt.Errorf("init migrations: %w", err)
	}
	defer func() { _, _ = m.Close() }()
	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("apply migrations: %w", err)
	}
	return nil
}

func pgxURL(u string) string {
	if rest, ok := strings.CutPrefix(u, "postgres://"); ok {
		return "pgx5://" + rest
	}
	if rest, ok := strings.CutPrefix(u, "postgresql://"); ok {
		return "pgx5://" + rest
	}
	return u
}

// PGStore keeps orders in Postgres as JSON documents. The record itself is
// the source of truth; id, status and timestamps are lifted into columns for
// lookup and filtering.
type PGStore struct {
	Pool *pgxpool.Pool
}

func (s PGStore) Create(ctx context.Context, rec Record) (Record, error) {
	doc, err := json.Marshal(rec)
	if err != nil {
		return Record{}, err
	}
	_, err = s.Pool.Exec(ctx,
		`INSERT INTO sales_orders (id, status, doc, created_at, updated_at) VALUES ($1, $2, $3, $4, $5)`,
		rec.ID, string(rec.Status), doc, rec.CreatedAt, rec.UpdatedAt)
	if err != nil {
		return Record{}, fmt.Errorf("insert order: %w", err)
	}
	return rec, nil
}

func (s PGStore) Get(ctx context.Context, id string) (Record, error) {
	var doc []byte
	err := s.Pool.QueryRow(ctx, `SELECT doc FROM sales_orders WHERE id = $1`, id).Scan(&doc)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Record{}, ErrNotFound
		}
		return Record{}, fmt.Errorf("load order: %w", err)
	}
	var rec Record
	if err := json.Unmarshal(doc, &rec); err != nil {
		return Record{}, fmt.Errorf("decode order %s: %w", id, err)
	}
	return rec, nil
}

func (s PGStore) List(ctx context.Context, status Status) ([]Record, error) {
	query := `SELECT doc FROM sales_orders ORDER BY created_at DESC`
	args := []any{}
	if status != "" {
		query = `SELECT doc FROM sales_orders WHERE status = $1 ORDER BY created_at DESC`
		args = append(args, string(status))
	}
	rows, err := s.Pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list orders: %w", err)
	}
	defer rows.Close()

	records := make([]Record, 0)
	for rows.Next() {
		var doc []byte
		if err := rows.Scan(&doc); err != nil {
			return nil, err
		}
		var rec Record
		if err := json.Unmarshal(doc, &rec); err != nil {
			return nil, fmt.Errorf("decode order: %w", err)
		}
		records = append(records, rec)
	}
	return records, rows.Err()
}

func (s PGStore) Update(ctx context.Context, rec Record) (Record, error) {
	rec.UpdatedAt = latest(rec.UpdatedAt, rec.CreatedAt)
	doc, err := json.Marshal(rec)
	if err != nil {
		return Record{}, err
	}
	tag, err := s.Pool.Exec(ctx,
		`UPDATE sales_orders SET status = $2, doc = $3, updated_at = $4 WHERE id = $1`,
		rec.ID, string(rec.Status), doc, rec.UpdatedAt)
	if err != nil {
		return Record{}, fmt.Errorf("update order: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return Record{}, ErrNotFound
	}
	return rec, nil
}

func (s PGStore) Delete(ctx context.Context, id string) error {
	tag, err := s.Pool.Exec(ctx, `DELETE FROM sales_orders WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete order: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func latest(a, b time.Time) time.Time {
	if a.After(b) {
		return a
	}
	return b
}
