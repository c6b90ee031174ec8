package orderbook

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// BookOrder is one resting order flattened with its level price.
type BookOrder struct {
	ID        uuid.UUID       `json:"id"`
	Price     decimal.Decimal `json:"price"`
	Size      decimal.Decimal `json:"size"`
	Timestamp int64           `json:"timestamp"`
}

// Snapshot is a point-in-time copy of the whole book, best price first on
// both sides and arrival order within a level. It shares no state with the
// live book.
type Snapshot struct {
	Asks           []BookOrder     `json:"asks"`
	Bids           []BookOrder     `json:"bids"`
	AskTotalVolume decimal.Decimal `json:"ask_total_volume"`
	BidTotalVolume decimal.Decimal `json:"bid_total_volume"`
}

// DepthLevel aggregates one price level.
type DepthLevel struct {
	Price  decimal.Decimal `json:"price"`
	Volume decimal.Decimal `json:"volume"`
	Orders int             `json:"orders"`
}

// Depth is the per-level aggregate view of the book, best price first.
type Depth struct {
	Asks []DepthLevel `json:"asks"`
	Bids []DepthLevel `json:"bids"`
}

func (s *bookSide) snapshotOrders() []BookOrder {
	out := []BookOrder{}
	s.ascend(func(limit *Limit) bool {
		for _, order := range limit.Orders() {
			out = append(out, BookOrder{
				ID:        order.ID,
				Price:     limit.price,
				Size:      order.Size,
				Timestamp: order.Timestamp,
			})
		}
		return true
	})
	return out
}

func (s *bookSide) depthLevels(levels int) []DepthLevel {
	out := []DepthLevel{}
	s.ascend(func(limit *Limit) bool {
		out = append(out, DepthLevel{
			Price:  limit.price,
			Volume: limit.totalVolume,
			Orders: limit.Len(),
		})
		return levels <= 0 || len(out) < levels
	})
	return out
}

func (ob *OrderBook) Snapshot() Snapshot {
	return Snapshot{
		Asks:           ob.asks.snapshotOrders(),
		Bids:           ob.bids.snapshotOrders(),
		AskTotalVolume: ob.asks.totalVolume,
		BidTotalVolume: ob.bids.totalVolume,
	}
}

// Depth returns up to levels price levels per side; levels <= 0 means all.
func (ob *OrderBook) Depth(levels int) Depth {
	return Depth{
		Asks: ob.asks.depthLevels(levels),
		Bids: ob.bids.depthLevels(levels),
	}
}
