package orderbook

import (
	"bytes"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type Side int

const (
	Bid Side = iota
	Ask
)

func (s Side) String() string {
	if s == Bid {
		return "bid"
	}
	return "ask"
}

// Opposite returns the side an incoming order matches against.
func (s Side) Opposite() Side {
	if s == Bid {
		return Ask
	}
	return Bid
}

// Order is one resting or incoming order. Size is the remaining quantity and
// is only decremented by the matching path; everything else is immutable.
type Order struct {
	ID        uuid.UUID
	Side      Side
	Size      decimal.Decimal
	Timestamp int64
}

func NewOrder(side Side, size decimal.Decimal) *Order {
	return &Order{
		ID:        uuid.New(),
		Side:      side,
		Size:      size,
		Timestamp: time.Now().UnixNano(),
	}
}

func NewBid(size decimal.Decimal) *Order {
	return NewOrder(Bid, size)
}

func NewAsk(size decimal.Decimal) *Order {
	return NewOrder(Ask, size)
}

func (o *Order) IsFilled() bool {
	return o.Size.IsZero()
}

// arrivedBefore orders by timestamp, ties broken by id. It defines time
// priority among orders resting at the same price.
func (o *Order) arrivedBefore(other *Order) bool {
	if o.Timestamp != other.Timestamp {
		return o.Timestamp < other.Timestamp
	}
	return bytes.Compare(o.ID[:], other.ID[:]) < 0
}
