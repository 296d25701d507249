package models

import "time"

// TradeSide is the direction of an imported trade.
type TradeSide string

const (
	SideLong  TradeSide = "long"
	SideShort TradeSide = "short"
)

// SourceImport tags records produced by the report importer.
const SourceImport = "import"

// TradeRecord represents a closed trade recovered from a broker report.
// ID and OwnerID stay empty until the record is persisted.
type TradeRecord struct {
	ID           string    `json:"id,omitempty" yaml:"id,omitempty"`
	OwnerID      string    `json:"owner_id,omitempty" yaml:"owner_id,omitempty"`
	StrategyName string    `json:"strategy_name,omitempty" yaml:"strategy_name,omitempty"`
	Symbol       string    `json:"symbol" yaml:"symbol" validate:"required,max=15"`
	Side         TradeSide `json:"side" yaml:"side" validate:"oneof=long short"`
	EntryPrice   float64   `json:"entry_price" yaml:"entry_price" validate:"gt=0"`
	ExitPrice    float64   `json:"exit_price" yaml:"exit_price" validate:"gt=0"`
	ProfitLoss   float64   `json:"profit_loss" yaml:"profit_loss"`
	ProfitLossR  float64   `json:"profit_loss_r" yaml:"profit_loss_r"`
	Date         time.Time `json:"date" yaml:"date" validate:"required"`
	Notes        string    `json:"notes" yaml:"notes"`
	Source       string    `json:"source" yaml:"source"`
	CreatedAt    time.Time `json:"created_at,omitempty" yaml:"created_at,omitempty"`
}

// TradeIdentity is the key two records must share to be treated as the same trade.
type TradeIdentity struct {
	Symbol     string
	EntryPrice float64
	ExitPrice  float64
	ProfitLoss float64
	Date       int64
}

// Identity returns the deduplication key of the record.
func (t TradeRecord) Identity() TradeIdentity {
	return TradeIdentity{
		Symbol:     t.Symbol,
		EntryPrice: t.EntryPrice,
		ExitPrice:  t.ExitPrice,
		ProfitLoss: t.ProfitLoss,
		Date:       t.Date.Unix(),
	}
}

// IsWin reports whether the trade closed in profit.
func (t TradeRecord) IsWin() bool {
	return t.ProfitLoss > 0
}
