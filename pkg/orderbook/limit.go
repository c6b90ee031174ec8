package orderbook

import (
	"container/list"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Limit holds every resting order at one exact price. Orders are reachable
// two ways over the same owned set: by id for O(1) removal, and through an
// arrival-ordered queue that enforces time priority during matching. The
// queue elements point at the single owned Order instance, never a copy.
type Limit struct {
	price       decimal.Decimal
	queue       *list.List // *Order, oldest arrival at the front
	byID        map[uuid.UUID]*list.Element
	totalVolume decimal.Decimal
}

func NewLimit(price decimal.Decimal) *Limit {
	return &Limit{
		price: price,
		queue: list.New(),
		byID:  make(map[uuid.UUID]*list.Element),
	}
}

func (l *Limit) Price() decimal.Decimal {
	return l.price
}

// TotalVolume is maintained incrementally on insert, remove and fill. It is
// never recomputed by scanning.
func (l *Limit) TotalVolume() decimal.Decimal {
	return l.totalVolume
}

func (l *Limit) Len() int {
	return l.queue.Len()
}

func (l *Limit) IsEmpty() bool {
	return l.queue.Len() == 0
}

// AddOrder inserts an order the caller guarantees is not already resident.
// Arrivals carry non-decreasing timestamps, so insertion lands at the back;
// the short backward scan only settles same-timestamp ties by id.
func (l *Limit) AddOrder(order *Order) {
	at := l.queue.Back()
	for at != nil && order.arrivedBefore(at.Value.(*Order)) {
		at = at.Prev()
	}

	var el *list.Element
	if at == nil {
		el = l.queue.PushFront(order)
	} else {
		el = l.queue.InsertAfter(order, at)
	}

	l.byID[order.ID] = el
	l.totalVolume = l.totalVolume.Add(order.Size)
}

// RemoveOrder takes an order out of both indices and returns it. A missing
// id is a normal outcome, the order may already have been consumed.
func (l *Limit) RemoveOrder(id uuid.UUID) (*Order, bool) {
	el, ok := l.byID[id]
	if !ok {
		return nil, false
	}

	order := el.Value.(*Order)
	l.queue.Remove(el)
	delete(l.byID, id)
	l.totalVolume = l.totalVolume.Sub(order.Size)

	return order, true
}

// Orders returns the resident orders in arrival order. The slice is fresh
// but the pointers alias the owned orders; callers must not mutate them.
func (l *Limit) Orders() []*Order {
	out := make([]*Order, 0, l.queue.Len())
	for el := l.queue.Front(); el != nil; el = el.Next() {
		out = append(out, el.Value.(*Order))
	}
	return out
}

// Fill matches the aggressor against resident orders strictly oldest first
// until either the aggressor or the level is exhausted. Fully consumed
// residents are unlinked after the walk so the queue is stable while it is
// being traversed.
func (l *Limit) Fill(aggressor *Order) []Match {
	var matches []Match
	var filledIDs []uuid.UUID

	for el := l.queue.Front(); el != nil; el = el.Next() {
		resting := el.Value.(*Order)
		matches = append(matches, l.matchOrders(aggressor, resting))

		if resting.IsFilled() {
			filledIDs = append(filledIDs, resting.ID)
		}
		if aggressor.IsFilled() {
			break
		}
	}

	for _, id := range filledIDs {
		l.RemoveOrder(id)
	}

	return matches
}

func (l *Limit) matchOrders(aggressor, resting *Order) Match {
	var bid, ask *Order
	if aggressor.Side == Bid {
		bid, ask = aggressor, resting
	} else {
		bid, ask = resting, aggressor
	}

	sizeFilled := decimal.Min(aggressor.Size, resting.Size)
	aggressor.Size = aggressor.Size.Sub(sizeFilled)
	resting.Size = resting.Size.Sub(sizeFilled)
	l.totalVolume = l.totalVolume.Sub(sizeFilled)

	return Match{
		Ask:        *ask,
		Bid:        *bid,
		SizeFilled: sizeFilled,
		Price:      l.price,
	}
}
