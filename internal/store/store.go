// Package store provides data persistence interfaces and implementations.
package store

import (
	"context"
	"time"

	"trade-report/internal/models"
)

// TradeStore persists imported trades.
type TradeStore interface {
	// SaveImported assigns IDs and ownership to the trades of one document and
	// stores them. Trades already stored for the same owner are skipped.
	SaveImported(ctx context.Context, req ImportRequest) (*ImportBatch, error)
	ListTrades(ctx context.Context, filter TradeFilter) ([]models.TradeRecord, error)
	ListImports(ctx context.Context, ownerID string, limit int) ([]ImportBatch, error)

	Close() error
}

// ImportRequest is one document's worth of parsed trades.
type ImportRequest struct {
	OwnerID      string
	StrategyName string
	Document     string
	Trades       []models.TradeRecord
}

// ImportBatch records the outcome of one SaveImported call.
type ImportBatch struct {
	ID            string    `json:"id" yaml:"id"`
	OwnerID       string    `json:"owner_id" yaml:"owner_id"`
	StrategyName  string    `json:"strategy_name" yaml:"strategy_name"`
	Document      string    `json:"document" yaml:"document"`
	ImportedCount int       `json:"imported_count" yaml:"imported_count"`
	SkippedCount  int       `json:"skipped_count" yaml:"skipped_count"`
	CreatedAt     time.Time `json:"created_at" yaml:"created_at"`
}

// TradeFilter represents filters for querying trades.
type TradeFilter struct {
	OwnerID      string
	StrategyName string
	Symbol       string
	Side         models.TradeSide
	StartDate    time.Time
	EndDate      time.Time
	Limit        int
}
