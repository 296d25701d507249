package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/mattn/go-sqlite3"

	apperrors "trade-report/internal/errors"
	"trade-report/internal/models"
	"trade-report/pkg/utils"
)

// SQLiteStore implements TradeStore using SQLite.
type SQLiteStore struct {
	db    *sql.DB
	now   func() time.Time
	retry utils.RetryConfig
}

// NewSQLiteStore creates a new SQLite-based trade store.
func NewSQLiteStore(dbPath string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite3", dbPath+"?_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		return nil, apperrors.NewStoreError("open", err)
	}

	db.SetMaxOpenConns(10)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(time.Hour)

	store := &SQLiteStore{
		db:  db,
		now: time.Now,
		retry: utils.RetryConfig{
			MaxAttempts:   4,
			InitialDelay:  50 * time.Millisecond,
			MaxDelay:      time.Second,
			BackoffFactor: 2,
			Retryable:     isBusy,
		},
	}

	if err := store.initSchema(); err != nil {
		db.Close()
		return nil, apperrors.NewStoreError("init schema", err)
	}

	return store, nil
}

// initSchema creates all required tables and indexes.
func (s *SQLiteStore) initSchema() error {
	schema := `
	-- One row per imported document
	CREATE TABLE IF NOT EXISTS imports (
		id TEXT PRIMARY KEY,
		owner_id TEXT NOT NULL,
		strategy_name TEXT,
		document TEXT,
		imported_count INTEGER NOT NULL,
		skipped_count INTEGER NOT NULL,
		created_at DATETIME NOT NULL
	);

	-- Trades recovered from reports
	CREATE TABLE IF NOT EXISTS trades (
		id TEXT PRIMARY KEY,
		import_id TEXT NOT NULL,
		owner_id TEXT NOT NULL,
		strategy_name TEXT,
		symbol TEXT NOT NULL,
		side TEXT NOT NULL,
		entry_price REAL NOT NULL,
		exit_price REAL NOT NULL,
		profit_loss REAL NOT NULL,
		profit_loss_r REAL NOT NULL DEFAULT 0,
		date DATETIME NOT NULL,
		notes TEXT,
		source TEXT NOT NULL,
		created_at DATETIME NOT NULL,
		UNIQUE(owner_id, symbol, entry_price, exit_price, profit_loss, date),
		FOREIGN KEY (import_id) REFERENCES imports(id)
	);

	CREATE INDEX IF NOT EXISTS idx_trades_owner_date ON trades(owner_id, date);
	CREATE INDEX IF NOT EXISTS idx_trades_symbol ON trades(symbol);
	CREATE INDEX IF NOT EXISTS idx_imports_owner ON imports(owner_id, created_at);
	`

	_, err := s.db.Exec(schema)
	return err
}

// SaveImported stores the trades of one document in a single transaction.
// The transaction is retried while another connection holds the database lock.
func (s *SQLiteStore) SaveImported(ctx context.Context, req ImportRequest) (*ImportBatch, error) {
	if req.OwnerID == "" {
		return nil, apperrors.NewValidationError("owner_id", req.OwnerID, "owner is required")
	}

	batch := &ImportBatch{
		ID:           uuid.NewString(),
		OwnerID:      req.OwnerID,
		StrategyName: req.StrategyName,
		Document:     req.Document,
		CreatedAt:    s.now().UTC(),
	}

	ids, err := utils.RetryWithResult(ctx, s.retry, func() ([]string, error) {
		return s.saveBatch(ctx, req, batch)
	})
	if err != nil {
		return nil, err
	}

	for i, id := range ids {
		if id == "" {
			continue
		}
		t := &req.Trades[i]
		t.ID, t.OwnerID, t.StrategyName, t.CreatedAt = id, req.OwnerID, req.StrategyName, batch.CreatedAt
	}
	return batch, nil
}

// saveBatch runs one import transaction and returns the IDs assigned to the
// inserted trades; skipped duplicates get an empty ID.
func (s *SQLiteStore) saveBatch(ctx context.Context, req ImportRequest, batch *ImportBatch) ([]string, error) {
	batch.ImportedCount, batch.SkippedCount = 0, 0

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, apperrors.NewStoreError("begin import", err)
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx, `
		INSERT OR IGNORE INTO trades (id, import_id, owner_id, strategy_name, symbol, side, entry_price, exit_price, profit_loss, profit_loss_r, date, notes, source, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		return nil, apperrors.NewStoreError("prepare import", err)
	}
	defer stmt.Close()

	ids := make([]string, len(req.Trades))
	for i, t := range req.Trades {
		id := uuid.NewString()
		res, err := stmt.ExecContext(ctx, id, batch.ID, req.OwnerID, req.StrategyName,
			t.Symbol, string(t.Side), t.EntryPrice, t.ExitPrice, t.ProfitLoss, t.ProfitLossR,
			t.Date.UTC(), t.Notes, t.Source, batch.CreatedAt)
		if err != nil {
			return nil, apperrors.NewStoreError("insert trade", err)
		}
		if n, _ := res.RowsAffected(); n == 0 {
			batch.SkippedCount++
			continue
		}
		ids[i] = id
		batch.ImportedCount++
	}

	_, err = tx.ExecContext(ctx, `
		INSERT INTO imports (id, owner_id, strategy_name, document, imported_count, skipped_count, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`, batch.ID, batch.OwnerID, batch.StrategyName, batch.Document, batch.ImportedCount, batch.SkippedCount, batch.CreatedAt)
	if err != nil {
		return nil, apperrors.NewStoreError("insert import", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, apperrors.NewStoreError("commit import", err)
	}
	return ids, nil
}

// isBusy reports whether err comes from SQLite lock contention.
func isBusy(err error) bool {
	var sqliteErr sqlite3.Error
	if !errors.As(err, &sqliteErr) {
		return false
	}
	return sqliteErr.Code == sqlite3.ErrBusy || sqliteErr.Code == sqlite3.ErrLocked
}

// ListTrades retrieves trades from the database, newest first.
func (s *SQLiteStore) ListTrades(ctx context.Context, filter TradeFilter) ([]models.TradeRecord, error) {
	query := "SELECT id, owner_id, strategy_name, symbol, side, entry_price, exit_price, profit_loss, profit_loss_r, date, notes, source, created_at FROM trades WHERE 1=1"
	args := []interface{}{}

	if filter.OwnerID != "" {
		query += " AND owner_id = ?"
		args = append(args, filter.OwnerID)
	}
	if filter.StrategyName != "" {
		query += " AND strategy_name = ?"
		args = append(args, filter.StrategyName)
	}
	if filter.Symbol != "" {
		query += " AND symbol = ?"
		args = append(args, filter.Symbol)
	}
	if filter.Side != "" {
		query += " AND side = ?"
		args = append(args, string(filter.Side))
	}
	if !filter.StartDate.IsZero() {
		query += " AND date >= ?"
		args = append(args, filter.StartDate.UTC())
	}
	if !filter.EndDate.IsZero() {
		query += " AND date <= ?"
		args = append(args, filter.EndDate.UTC())
	}

	query += " ORDER BY date DESC, symbol"
	if filter.Limit > 0 {
		query += " LIMIT ?"
		args = append(args, filter.Limit)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, apperrors.NewStoreError("query trades", err)
	}
	defer rows.Close()

	var trades []models.TradeRecord
	for rows.Next() {
		var t models.TradeRecord
		var side string
		var strategy, notes sql.NullString
		if err := rows.Scan(&t.ID, &t.OwnerID, &strategy, &t.Symbol, &side, &t.EntryPrice, &t.ExitPrice,
			&t.ProfitLoss, &t.ProfitLossR, &t.Date, &notes, &t.Source, &t.CreatedAt); err != nil {
			return nil, apperrors.NewStoreError("scan trade", err)
		}
		t.Side = models.TradeSide(side)
		t.StrategyName = strategy.String
		t.Notes = notes.String
		trades = append(trades, t)
	}
	if err := rows.Err(); err != nil {
		return nil, apperrors.NewStoreError("iterate trades", err)
	}
	return trades, nil
}

// ListImports returns the most recent import batches of an owner.
func (s *SQLiteStore) ListImports(ctx context.Context, ownerID string, limit int) ([]ImportBatch, error) {
	query := "SELECT id, owner_id, strategy_name, document, imported_count, skipped_count, created_at FROM imports WHERE owner_id = ? ORDER BY created_at DESC"
	args := []interface{}{ownerID}
	if limit > 0 {
		query += " LIMIT ?"
		args = append(args, limit)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, apperrors.NewStoreError("query imports", err)
	}
	defer rows.Close()

	var batches []ImportBatch
	for rows.Next() {
		var b ImportBatch
		var strategy, document sql.NullString
		if err := rows.Scan(&b.ID, &b.OwnerID, &strategy, &document, &b.ImportedCount, &b.SkippedCount, &b.CreatedAt); err != nil {
			return nil, apperrors.NewStoreError("scan import", err)
		}
		b.StrategyName = strategy.String
		b.Document = document.String
		batches = append(batches, b)
	}
	if err := rows.Err(); err != nil {
		return nil, apperrors.NewStoreError("iterate imports", err)
	}
	return batches, nil
}

// Close closes the database connection.
func (s *SQLiteStore) Close() error {
	if err := s.db.Close(); err != nil {
		return fmt.Errorf("closing trade store: %w", err)
	}
	return nil
}
