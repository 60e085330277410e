// Package storage persists the local round-up transfer history in SQLite.
package storage

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"

	"roundup/internal/core"
)

// SQLiteRepository stores executed round-up transfers and their sync state.
type SQLiteRepository struct {
	db *sql.DB
}

// NewSQLiteRepository opens (creating if needed) the database at dbPath and
// applies pending migrations.
func NewSQLiteRepository(dbPath string) (*SQLiteRepository, error) {
	if dir := filepath.Dir(dbPath); dir != "." && dir != "" {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("create db directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	if err := RunMigrations(dbPath); err != nil {
		db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	return &SQLiteRepository{db: db}, nil
}

func (r *SQLiteRepository) Close() error {
	if r.db != nil {
		return r.db.Close()
	}
	return nil
}

// RecordTransfer inserts a transfer row and returns its local id. A zero
// TransferID gets a fresh UUID so each row has a stable ledger identity.
func (r *SQLiteRepository) RecordTransfer(ctx context.Context, record core.TransferRecord) (int64, error) {
	if record.TransferID == uuid.Nil {
		record.TransferID = uuid.New()
	}
	if record.CreatedAt.IsZero() {
		record.CreatedAt = time.Now()
	}

	result, err := r.db.ExecContext(ctx, `
		INSERT INTO transfers (account_id, goal_id, transfer_id, currency, minor_units, interval_start, interval_end, created_at, synced)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, 0)`,
		record.AccountID.String(),
		record.GoalID.String(),
		record.TransferID.String(),
		record.Amount.Currency,
		record.Amount.MinorUnits,
		record.IntervalStart,
		record.IntervalEnd,
		record.CreatedAt,
	)
	if err != nil {
		return 0, fmt.Errorf("insert transfer: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("last insert id: %w", err)
	}

	slog.InfoContext(ctx, "Transfer saved to SQLite",
		"id", id,
		"account_id", record.AccountID,
		"goal_id", record.GoalID,
		"minor_units", record.Amount.MinorUnits)

	return id, nil
}

// GetTransfer loads one transfer row by local id.
func (r *SQLiteRepository) GetTransfer(ctx context.Context, id int64) (core.TransferRecord, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT id, account_id, goal_id, transfer_id, currency, minor_units, interval_start, interval_end, created_at, synced
		FROM transfers WHERE id = ?`, id)
	return scanTransfer(row)
}

// ListUnsynced returns up to limit transfers that have not reached the
// ledger yet, oldest first.
func (r *SQLiteRepository) ListUnsynced(ctx context.Context, limit int) ([]core.TransferRecord, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, account_id, goal_id, transfer_id, currency, minor_units, interval_start, interval_end, created_at, synced
		FROM transfers WHERE synced = 0 ORDER BY id LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("query unsynced transfers: %w", err)
	}
	defer rows.Close()

	var records []core.TransferRecord
	for rows.Next() {
		record, err := scanTransfer(rows)
		if err != nil {
			return nil, err
		}
		records = append(records, record)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate unsynced transfers: %w", err)
	}
	return records, nil
}

// MarkSynced flags a transfer as delivered to the ledger.
func (r *SQLiteRepository) MarkSynced(ctx context.Context, id int64) error {
	if _, err := r.db.ExecContext(ctx, `UPDATE transfers SET synced = 1 WHERE id = ?`, id); err != nil {
		return fmt.Errorf("mark transfer synced: %w", err)
	}
	slog.InfoContext(ctx, "Transfer marked as synced", "id", id)
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanTransfer(row rowScanner) (core.TransferRecord, error) {
	var (
		record                        core.TransferRecord
		accountID, goalID, transferID string
		intervalStart, intervalEnd    sql.NullTime
		synced                        int64
	)
	err := row.Scan(
		&record.ID,
		&accountID,
		&goalID,
		&transferID,
		&record.Amount.Currency,
		&record.Amount.MinorUnits,
		&intervalStart,
		&intervalEnd,
		&record.CreatedAt,
		&synced,
	)
	if err != nil {
		return core.TransferRecord{}, fmt.Errorf("scan transfer: %w", err)
	}

	if record.AccountID, err = uuid.Parse(accountID); err != nil {
		return core.TransferRecord{}, fmt.Errorf("parse account id: %w", err)
	}
	if record.GoalID, err = uuid.Parse(goalID); err != nil {
		return core.TransferRecord{}, fmt.Errorf("parse goal id: %w", err)
	}
	if record.TransferID, err = uuid.Parse(transferID); err != nil {
		return core.TransferRecord{}, fmt.Errorf("parse transfer id: %w", err)
	}
	if intervalStart.Valid {
		record.IntervalStart = intervalStart.Time
	}
	if intervalEnd.Valid {
		record.IntervalEnd = intervalEnd.Time
	}
	record.Synced = synced != 0
	return record, nil
}
