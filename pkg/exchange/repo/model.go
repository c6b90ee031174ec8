package repo

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/joripage/exchange-core/pkg/exchange"
)

// Trade is the persisted form of one executed fill.
type Trade struct {
	ID         uint64          `gorm:"primaryKey;autoIncrement"`
	Symbol     string          `gorm:"size:32;index:idx_trades_symbol_executed_at"`
	AskOrderID string          `gorm:"size:36"`
	BidOrderID string          `gorm:"size:36"`
	Price      decimal.Decimal `gorm:"type:numeric(32,16)"`
	Size       decimal.Decimal `gorm:"type:numeric(32,16)"`
	ExecutedAt time.Time       `gorm:"index:idx_trades_symbol_executed_at"`
	CreatedAt  time.Time
}

func (Trade) TableName() string {
	return "trades"
}

func FromExchangeTrade(t exchange.Trade) *Trade {
	return &Trade{
		Symbol:     t.Symbol,
		AskOrderID: t.AskOrderID.String(),
		BidOrderID: t.BidOrderID.String(),
		Price:      t.Price,
		Size:       t.Size,
		ExecutedAt: t.ExecutedAt,
	}
}
