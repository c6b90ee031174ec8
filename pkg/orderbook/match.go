package orderbook

import "github.com/shopspring/decimal"

// Match is one trade leg. Ask and Bid are snapshots of both orders taken
// after the fill was applied, so the consumed quantity is already gone from
// their sizes. Price is always the resting order's limit price.
type Match struct {
	Ask        Order
	Bid        Order
	SizeFilled decimal.Decimal
	Price      decimal.Decimal
}

// Maker returns the snapshot of the resting order given the aggressor's side.
func (m Match) Maker(takerSide Side) Order {
	if takerSide == Bid {
		return m.Ask
	}
	return m.Bid
}

// Taker returns the snapshot of the aggressing order.
func (m Match) Taker(takerSide Side) Order {
	if takerSide == Bid {
		return m.Bid
	}
	return m.Ask
}
