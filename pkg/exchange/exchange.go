package exchange

import (
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/joripage/exchange-core/pkg/orderbook"
)

var (
	errInvalidOrderSize  = errors.New("order size must be positive")
	errInvalidOrderPrice = errors.New("order price must be positive")
)

// Trade is one executed fill tagged with its instrument, emitted to
// registered listeners.
type Trade struct {
	Symbol     string          `json:"symbol"`
	TakerSide  orderbook.Side  `json:"-"`
	AskOrderID uuid.UUID       `json:"ask_order_id"`
	BidOrderID uuid.UUID       `json:"bid_order_id"`
	Price      decimal.Decimal `json:"price"`
	Size       decimal.Decimal `json:"size"`
	ExecutedAt time.Time       `json:"executed_at"`
}

// TradeListener receives every batch of trades one matching call produced.
type TradeListener func(trades []Trade)

// instrument pairs one order book with the lock that serializes access to
// it. Mutations take the write lock; snapshot and depth reads share the read
// lock. The whole book is the unit of atomicity, there is no per-level
// locking.
type instrument struct {
	mu   sync.RWMutex
	book *orderbook.OrderBook
}

// Exchange routes orders to one book per instrument symbol, creating books
// on first use.
type Exchange struct {
	instruments sync.Map // symbol -> *instrument

	mu        sync.Mutex
	listeners []TradeListener
}

func New(symbols ...string) *Exchange {
	ex := &Exchange{}
	for _, symbol := range symbols {
		ex.getOrCreateInstrument(symbol)
	}
	return ex
}

func (ex *Exchange) getOrCreateInstrument(symbol string) *instrument {
	if val, ok := ex.instruments.Load(symbol); ok {
		return val.(*instrument)
	}
	actual, _ := ex.instruments.LoadOrStore(symbol, &instrument{book: orderbook.New()})
	return actual.(*instrument)
}

// RegisterTradeListener subscribes fn to trades from every instrument,
// current and future.
func (ex *Exchange) RegisterTradeListener(fn TradeListener) {
	ex.mu.Lock()
	defer ex.mu.Unlock()
	ex.listeners = append(ex.listeners, fn)
}

func (ex *Exchange) emitTrades(trades []Trade) {
	if len(trades) == 0 {
		return
	}
	ex.mu.Lock()
	listeners := make([]TradeListener, len(ex.listeners))
	copy(listeners, ex.listeners)
	ex.mu.Unlock()

	for _, fn := range listeners {
		fn(trades)
	}
}

func tradesFromMatches(symbol string, takerSide orderbook.Side, matches []orderbook.Match) []Trade {
	now := time.Now()
	trades := make([]Trade, 0, len(matches))
	for _, m := range matches {
		trades = append(trades, Trade{
			Symbol:     symbol,
			TakerSide:  takerSide,
			AskOrderID: m.Ask.ID,
			BidOrderID: m.Bid.ID,
			Price:      m.Price,
			Size:       m.SizeFilled,
			ExecutedAt: now,
		})
	}
	return trades
}

// PlaceLimitOrder rests a new order on the symbol's book and returns it.
func (ex *Exchange) PlaceLimitOrder(symbol string, side orderbook.Side, size, price decimal.Decimal) (*orderbook.Order, error) {
	if !size.IsPositive() {
		return nil, errInvalidOrderSize
	}
	if !price.IsPositive() {
		return nil, errInvalidOrderPrice
	}

	inst := ex.getOrCreateInstrument(symbol)
	order := orderbook.NewOrder(side, size)

	inst.mu.Lock()
	inst.book.PlaceLimitOrder(price, order)
	inst.mu.Unlock()

	return order, nil
}

// PlaceMarketOrder fills a new order against the symbol's book. The matches
// are returned in execution order and fanned out to trade listeners.
func (ex *Exchange) PlaceMarketOrder(symbol string, side orderbook.Side, size decimal.Decimal) (*orderbook.Order, []orderbook.Match, error) {
	if !size.IsPositive() {
		return nil, nil, errInvalidOrderSize
	}

	inst := ex.getOrCreateInstrument(symbol)
	order := orderbook.NewOrder(side, size)

	inst.mu.Lock()
	matches, err := inst.book.PlaceMarketOrder(order)
	inst.mu.Unlock()
	if err != nil {
		return nil, nil, err
	}

	ex.emitTrades(tradesFromMatches(symbol, side, matches))
	return order, matches, nil
}

// CancelOrder removes a resting order from the symbol's book.
func (ex *Exchange) CancelOrder(symbol string, id uuid.UUID) (*orderbook.Order, error) {
	inst := ex.getOrCreateInstrument(symbol)

	inst.mu.Lock()
	defer inst.mu.Unlock()
	return inst.book.CancelOrder(id)
}

// Snapshot returns a detached copy of the symbol's book.
func (ex *Exchange) Snapshot(symbol string) orderbook.Snapshot {
	inst := ex.getOrCreateInstrument(symbol)

	inst.mu.RLock()
	defer inst.mu.RUnlock()
	return inst.book.Snapshot()
}

// Depth returns the aggregated per-level view of the symbol's book.
func (ex *Exchange) Depth(symbol string, levels int) orderbook.Depth {
	inst := ex.getOrCreateInstrument(symbol)

	inst.mu.RLock()
	defer inst.mu.RUnlock()
	return inst.book.Depth(levels)
}

// Instruments lists every symbol with a live book.
func (ex *Exchange) Instruments() []string {
	var symbols []string
	ex.instruments.Range(func(k, _ any) bool {
		symbols = append(symbols, k.(string))
		return true
	})
	return symbols
}
