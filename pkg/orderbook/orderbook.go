package orderbook

import (
	"github.com/google/btree"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

const limitTreeDegree = 16

// bookSide is one half of the book: its price levels ordered best first and
// the side's aggregate resting volume. Asks sort ascending and bids
// descending, so Ascend on either tree walks best price first and both sides
// share one matching and cancellation code path.
type bookSide struct {
	side        Side
	limits      *btree.BTreeG[*Limit]
	totalVolume decimal.Decimal
}

func newBookSide(side Side) *bookSide {
	less := func(a, b *Limit) bool { return a.price.LessThan(b.price) }
	if side == Bid {
		less = func(a, b *Limit) bool { return a.price.GreaterThan(b.price) }
	}
	return &bookSide{
		side:   side,
		limits: btree.NewG(limitTreeDegree, less),
	}
}

func (s *bookSide) limit(price decimal.Decimal) (*Limit, bool) {
	return s.limits.Get(&Limit{price: price})
}

func (s *bookSide) getOrCreateLimit(price decimal.Decimal) *Limit {
	if limit, ok := s.limit(price); ok {
		return limit
	}
	limit := NewLimit(price)
	s.limits.ReplaceOrInsert(limit)
	return limit
}

func (s *bookSide) removeLimit(price decimal.Decimal) {
	s.limits.Delete(&Limit{price: price})
}

// ascend visits the side's limits best price first until fn returns false.
func (s *bookSide) ascend(fn func(*Limit) bool) {
	s.limits.Ascend(fn)
}

type orderLocation struct {
	side  Side
	price decimal.Decimal
}

// OrderBook is a single-instrument limit order book with an embedded
// price-time matching engine. It is not safe for concurrent use; the caller
// serializes mutations and keeps reads out of their way.
type OrderBook struct {
	asks *bookSide
	bids *bookSide

	// locations mirrors per-limit membership: an entry exists iff the order
	// is resident in the limit it points at.
	locations map[uuid.UUID]orderLocation
}

func New() *OrderBook {
	return &OrderBook{
		asks:      newBookSide(Ask),
		bids:      newBookSide(Bid),
		locations: make(map[uuid.UUID]orderLocation),
	}
}

func (ob *OrderBook) sideOf(side Side) *bookSide {
	if side == Bid {
		return ob.bids
	}
	return ob.asks
}

func (ob *OrderBook) AskTotalVolume() decimal.Decimal {
	return ob.asks.totalVolume
}

func (ob *OrderBook) BidTotalVolume() decimal.Decimal {
	return ob.bids.totalVolume
}

// PlaceLimitOrder rests an order at the given price. It cannot fail: the
// limit is created on first use and the location index, the limit membership
// and the side volume move in one step.
func (ob *OrderBook) PlaceLimitOrder(price decimal.Decimal, order *Order) {
	side := ob.sideOf(order.Side)

	ob.locations[order.ID] = orderLocation{side: order.Side, price: price}
	side.totalVolume = side.totalVolume.Add(order.Size)
	side.getOrCreateLimit(price).AddOrder(order)
}

// CancelOrder removes a resting order and returns it. The location entry is
// dropped before the limit is touched so a partial failure can never leave a
// stale pointer into a limit that no longer holds the order.
func (ob *OrderBook) CancelOrder(id uuid.UUID) (*Order, error) {
	loc, ok := ob.locations[id]
	if !ok {
		return nil, &OrderNotFoundError{ID: id}
	}
	delete(ob.locations, id)

	side := ob.sideOf(loc.side)
	limit, ok := side.limit(loc.price)
	if !ok {
		return nil, &LimitNotFoundError{Price: loc.price}
	}

	order, ok := limit.RemoveOrder(id)
	if !ok {
		return nil, &OrderNotFoundError{ID: id}
	}

	side.totalVolume = side.totalVolume.Sub(order.Size)
	if limit.IsEmpty() {
		side.removeLimit(loc.price)
	}

	return order, nil
}

// PlaceMarketOrder fills the incoming order against the opposing side, best
// price first. It either rejects up front with NotEnoughVolume and mutates
// nothing, or fully fills the order and returns every match in execution
// order. Levels emptied by the sweep are pruned after the walk, not while
// the tree is being iterated.
func (ob *OrderBook) PlaceMarketOrder(order *Order) ([]Match, error) {
	opposite := ob.sideOf(order.Side.Opposite())
	if order.Size.GreaterThan(opposite.totalVolume) {
		return nil, &NotEnoughVolumeError{
			Side:           order.Side,
			ExpectedVolume: order.Size,
			ActualVolume:   opposite.totalVolume,
		}
	}

	var matches []Match
	var emptiedPrices []decimal.Decimal

	opposite.ascend(func(limit *Limit) bool {
		remainingBefore := order.Size
		limitMatches := limit.Fill(order)

		filled := remainingBefore.Sub(order.Size)
		opposite.totalVolume = opposite.totalVolume.Sub(filled)

		for _, m := range limitMatches {
			if maker := m.Maker(order.Side); maker.IsFilled() {
				delete(ob.locations, maker.ID)
			}
		}
		matches = append(matches, limitMatches...)

		if limit.IsEmpty() {
			emptiedPrices = append(emptiedPrices, limit.price)
		}
		return !order.IsFilled()
	})

	for _, price := range emptiedPrices {
		opposite.removeLimit(price)
	}

	return matches, nil
}
