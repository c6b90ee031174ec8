package orderbook

import (
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// ErrInconsistentState reports an invariant violation that should be
// structurally impossible. Callers must treat it as fatal, never retry it.
var ErrInconsistentState = errors.New("inconsistent order book state")

// OrderNotFoundError reports a cancel or removal referencing an id that is
// not resident in the book. Recoverable, no mutation happened.
type OrderNotFoundError struct {
	ID uuid.UUID
}

func (e *OrderNotFoundError) Error() string {
	return fmt.Sprintf("order %s not found", e.ID)
}

// LimitNotFoundError reports that the order index pointed at a price level
// absent from the book. Like ErrInconsistentState this is an internal
// failure, not a caller error.
type LimitNotFoundError struct {
	Price decimal.Decimal
}

func (e *LimitNotFoundError) Error() string {
	return fmt.Sprintf("limit at price %s not found", e.Price)
}

// NotEnoughVolumeError rejects a market order larger than the opposing
// side's resting volume. The book is untouched when it is returned.
type NotEnoughVolumeError struct {
	Side           Side
	ExpectedVolume decimal.Decimal
	ActualVolume   decimal.Decimal
}

func (e *NotEnoughVolumeError) Error() string {
	return fmt.Sprintf("not enough total volume in %s = %s, expected at least %s",
		e.Side.Opposite(), e.ActualVolume, e.ExpectedVolume)
}
