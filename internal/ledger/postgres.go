// postgres.go - PostgreSQL ledger backend (pgx pool + squirrel)

package ledger

import (
	"context"
	"errors"
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"

	"github.com/troncalnet/receipt_bot_whatsapp/internal/common"
	"github.com/troncalnet/receipt_bot_whatsapp/internal/models"
)

const paymentsTable = "payments"

const createPaymentsTable = `
CREATE TABLE IF NOT EXISTS payments (
	id         BIGSERIAL PRIMARY KEY,
	ts         TIMESTAMPTZ NOT NULL,
	nombre     TEXT NOT NULL DEFAULT '',
	cedula     TEXT NOT NULL DEFAULT '',
	monto      TEXT NOT NULL DEFAULT '',
	fecha      TEXT NOT NULL DEFAULT '',
	documento  TEXT NOT NULL DEFAULT '',
	banco      TEXT NOT NULL DEFAULT '',
	image_ref  TEXT NOT NULL DEFAULT '',
	hash       TEXT
)`

const createPaymentsHashIndex = `CREATE UNIQUE INDEX IF NOT EXISTS payments_hash_key ON payments (hash) WHERE hash <> ''`

// uniqueViolation is the PostgreSQL SQLSTATE for unique_violation
const uniqueViolation = "23505"

var psql = squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar)

// PostgresBackend stores entries in the payments table
type PostgresBackend struct {
	db *pgxpool.Pool
}

// NewPool opens and pings a pgx pool for databaseURL
func NewPool(ctx context.Context, databaseURL string) (*pgxpool.Pool, error) {
	poolConfig, err := pgxpool.ParseConfig(databaseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse database config: %w", err)
	}
	pool, err := pgxpool.NewWithConfig(ctx, poolConfig)
	if err != nil {
		return nil, fmt.Errorf("failed to create connection pool: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}
	common.Logger().Info("✅ Connected to PostgreSQL", zap.String("database", poolConfig.ConnConfig.Database))
	return pool, nil
}

// NewPostgresBackend creates the payments table when missing
func NewPostgresBackend(ctx context.Context, db *pgxpool.Pool) (*PostgresBackend, error) {
	if _, err := db.Exec(ctx, createPaymentsTable); err != nil {
		return nil, fmt.Errorf("failed to create payments table: %w", err)
	}
	if _, err := db.Exec(ctx, createPaymentsHashIndex); err != nil {
		return nil, fmt.Errorf("failed to create payments hash index: %w", err)
	}
	return &PostgresBackend{db: db}, nil
}

// Append implements Backend
func (b *PostgresBackend) Append(ctx context.Context, e models.LedgerEntry) error {
	query := psql.Insert(paymentsTable).
		Columns("ts", "nombre", "cedula", "monto", "fecha", "documento", "banco", "image_ref", "hash").
		Values(e.Timestamp, e.ClientName, e.ClientID, e.Amount, e.Date, e.Document, e.Bank, e.ImageRef, e.Hash)

	sql, args, err := query.ToSql()
	if err != nil {
		return err
	}

	if _, err := b.db.Exec(ctx, sql, args...); err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
			return ErrDuplicate
		}
		return fmt.Errorf("failed to insert payment: %w", err)
	}
	return nil
}

// Hashes implements Backend
func (b *PostgresBackend) Hashes(ctx context.Context) (map[string]struct{}, error) {
	sql, args, err := psql.Select("hash").
		From(paymentsTable).
		Where(squirrel.NotEq{"hash": ""}).
		Where(squirrel.NotEq{"hash": nil}).
		ToSql()
	if err != nil {
		return nil, err
	}

	rows, err := b.db.Query(ctx, sql, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list payment hashes: %w", err)
	}
	defer rows.Close()

	hashes := make(map[string]struct{})
	for rows.Next() {
		var h string
		if err := rows.Scan(&h); err != nil {
			return nil, err
		}
		hashes[h] = struct{}{}
	}
	return hashes, rows.Err()
}

// Entries implements Backend
func (b *PostgresBackend) Entries(ctx context.Context) ([]models.LedgerEntry, error) {
	sql, args, err := psql.Select("ts", "nombre", "cedula", "monto", "fecha", "documento", "banco", "image_ref", "COALESCE(hash, '')").
		From(paymentsTable).
		OrderBy("id ASC").
		ToSql()
	if err != nil {
		return nil, err
	}

	rows, err := b.db.Query(ctx, sql, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query payments: %w", err)
	}
	defer rows.Close()

	var entries []models.LedgerEntry
	for rows.Next() {
		var e models.LedgerEntry
		if err := rows.Scan(&e.Timestamp, &e.ClientName, &e.ClientID, &e.Amount, &e.Date, &e.Document, &e.Bank, &e.ImageRef, &e.Hash); err != nil {
			return nil, err
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}
