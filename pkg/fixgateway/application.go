package fixgateway

import (
	"sync"

	"github.com/google/uuid"
	"github.com/quickfixgo/enum"
	"github.com/quickfixgo/field"
	"github.com/quickfixgo/fix44/executionreport"
	"github.com/quickfixgo/fix44/newordersingle"
	"github.com/quickfixgo/fix44/ordercancelrequest"
	"github.com/quickfixgo/quickfix"
	"github.com/quickfixgo/tag"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/joripage/exchange-core/pkg/exchange"
	"github.com/joripage/exchange-core/pkg/orderbook"
)

const (
	queueSize    = 100_000
	decimalScale = 8
)

// Application implements the quickfix.Application interface and translates
// FIX 4.4 order entry into exchange calls.
type Application struct {
	*quickfix.MessageRouter
	exchange   *exchange.Exchange
	dispatcher chan *inboundMsg

	mu     sync.Mutex
	orders map[string]*orderRef // ClOrdID -> engine order
}

type inboundMsg struct {
	msg       *quickfix.Message
	sessionID quickfix.SessionID
}

// orderRef ties a client order id to the engine's identity so cancels can be
// routed without exposing engine uuids over FIX.
type orderRef struct {
	id       uuid.UUID
	symbol   string
	side     enum.Side
	orderQty decimal.Decimal
}

func newApplication(ex *exchange.Exchange) *Application {
	app := &Application{
		MessageRouter: quickfix.NewMessageRouter(),
		exchange:      ex,
		dispatcher:    make(chan *inboundMsg, queueSize),
		orders:        make(map[string]*orderRef),
	}

	app.AddRoute(newordersingle.Route(app.onNewOrderSingle))
	app.AddRoute(ordercancelrequest.Route(app.onOrderCancelRequest))

	go app.runDispatcher()

	return app
}

// OnCreate implemented as part of Application interface
func (a *Application) OnCreate(sessionID quickfix.SessionID) {}

// OnLogon implemented as part of Application interface
func (a *Application) OnLogon(sessionID quickfix.SessionID) {}

// OnLogout implemented as part of Application interface
func (a *Application) OnLogout(sessionID quickfix.SessionID) {}

// ToAdmin implemented as part of Application interface
func (a *Application) ToAdmin(msg *quickfix.Message, sessionID quickfix.SessionID) {}

// ToApp implemented as part of Application interface
func (a *Application) ToApp(msg *quickfix.Message, sessionID quickfix.SessionID) error {
	return nil
}

// FromAdmin implemented as part of Application interface
func (a *Application) FromAdmin(msg *quickfix.Message, sessionID quickfix.SessionID) quickfix.MessageRejectError {
	return nil
}

// FromApp queues incoming application messages; the dispatcher serializes
// routing so session threads never run matching directly.
func (a *Application) FromApp(msg *quickfix.Message, sessionID quickfix.SessionID) quickfix.MessageRejectError {
	a.dispatcher <- &inboundMsg{msg, sessionID}
	return nil
}

func (a *Application) runDispatcher() {
	for msg := range a.dispatcher {
		if err := a.Route(msg.msg, msg.sessionID); err != nil {
			msgType, _ := msg.msg.Header.GetString(tag.MsgType)
			clOrdID, _ := msg.msg.Body.GetString(tag.ClOrdID)
			zap.S().Warnf("route fix message fail: msgType=%s clOrdID=%s err=%+v", msgType, clOrdID, err)
		}
	}
}

func (a *Application) onNewOrderSingle(msg newordersingle.NewOrderSingle, sessionID quickfix.SessionID) quickfix.MessageRejectError {
	clOrdID, _ := msg.GetClOrdID()
	symbol, _ := msg.GetSymbol()
	fixSide, _ := msg.GetSide()
	ordType, _ := msg.GetOrdType()
	price, _ := msg.GetPrice()
	orderQty, _ := msg.GetOrderQty()

	side := orderbook.Ask
	if fixSide == enum.Side_BUY {
		side = orderbook.Bid
	}

	switch ordType {
	case enum.OrdType_LIMIT:
		order, err := a.exchange.PlaceLimitOrder(symbol, side, orderQty, price)
		if err != nil {
			a.sendReject(sessionID, clOrdID, symbol, fixSide, orderQty, err.Error())
			return nil
		}
		a.trackOrder(clOrdID, &orderRef{id: order.ID, symbol: symbol, side: fixSide, orderQty: orderQty})
		a.sendNew(sessionID, clOrdID, order.ID.String(), symbol, fixSide, orderQty)

	case enum.OrdType_MARKET:
		order, matches, err := a.exchange.PlaceMarketOrder(symbol, side, orderQty)
		if err != nil {
			a.sendReject(sessionID, clOrdID, symbol, fixSide, orderQty, err.Error())
			return nil
		}
		a.sendFilled(sessionID, clOrdID, order.ID.String(), symbol, fixSide, orderQty, matches)

	default:
		a.sendReject(sessionID, clOrdID, symbol, fixSide, orderQty, "unsupported order type")
	}

	return nil
}

func (a *Application) onOrderCancelRequest(msg ordercancelrequest.OrderCancelRequest, sessionID quickfix.SessionID) quickfix.MessageRejectError {
	clOrdID, _ := msg.GetClOrdID()
	origClOrdID, _ := msg.GetOrigClOrdID()
	symbol, _ := msg.GetSymbol()
	fixSide, _ := msg.GetSide()

	ref := a.takeOrder(origClOrdID)
	if ref == nil {
		a.sendReject(sessionID, clOrdID, symbol, fixSide, decimal.Zero, "unknown original client order id")
		return nil
	}

	order, err := a.exchange.CancelOrder(ref.symbol, ref.id)
	if err != nil {
		a.sendReject(sessionID, clOrdID, symbol, fixSide, ref.orderQty, err.Error())
		return nil
	}

	a.sendCanceled(sessionID, clOrdID, ref.id.String(), ref.symbol, ref.side, ref.orderQty, order.Size)
	return nil
}

func (a *Application) trackOrder(clOrdID string, ref *orderRef) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.orders[clOrdID] = ref
}

func (a *Application) takeOrder(clOrdID string) *orderRef {
	a.mu.Lock()
	defer a.mu.Unlock()
	ref, ok := a.orders[clOrdID]
	if !ok {
		return nil
	}
	delete(a.orders, clOrdID)
	return ref
}

func (a *Application) sendNew(sessionID quickfix.SessionID, clOrdID, orderID, symbol string, side enum.Side, orderQty decimal.Decimal) {
	report := executionreport.New(
		field.NewOrderID(orderID),
		field.NewExecID(uuid.NewString()),
		field.NewExecType(enum.ExecType_NEW),
		field.NewOrdStatus(enum.OrdStatus_NEW),
		field.NewSide(side),
		field.NewLeavesQty(orderQty, decimalScale),
		field.NewCumQty(decimal.Zero, decimalScale),
		field.NewAvgPx(decimal.Zero, decimalScale),
	)
	report.SetClOrdID(clOrdID)
	report.SetSymbol(symbol)
	report.SetOrderQty(orderQty, decimalScale)
	a.send(report.ToMessage(), sessionID)
}

func (a *Application) sendFilled(sessionID quickfix.SessionID, clOrdID, orderID, symbol string, side enum.Side, orderQty decimal.Decimal, matches []orderbook.Match) {
	filled := decimal.Zero
	notional := decimal.Zero
	for _, m := range matches {
		filled = filled.Add(m.SizeFilled)
		notional = notional.Add(m.SizeFilled.Mul(m.Price))
	}
	avgPx := decimal.Zero
	if !filled.IsZero() {
		avgPx = notional.Div(filled)
	}

	report := executionreport.New(
		field.NewOrderID(orderID),
		field.NewExecID(uuid.NewString()),
		field.NewExecType(enum.ExecType_TRADE),
		field.NewOrdStatus(enum.OrdStatus_FILLED),
		field.NewSide(side),
		field.NewLeavesQty(orderQty.Sub(filled), decimalScale),
		field.NewCumQty(filled, decimalScale),
		field.NewAvgPx(avgPx, decimalScale),
	)
	report.SetClOrdID(clOrdID)
	report.SetSymbol(symbol)
	report.SetOrderQty(orderQty, decimalScale)
	a.send(report.ToMessage(), sessionID)
}

func (a *Application) sendCanceled(sessionID quickfix.SessionID, clOrdID, orderID, symbol string, side enum.Side, orderQty, remaining decimal.Decimal) {
	report := executionreport.New(
		field.NewOrderID(orderID),
		field.NewExecID(uuid.NewString()),
		field.NewExecType(enum.ExecType_CANCELED),
		field.NewOrdStatus(enum.OrdStatus_CANCELED),
		field.NewSide(side),
		field.NewLeavesQty(decimal.Zero, decimalScale),
		field.NewCumQty(orderQty.Sub(remaining), decimalScale),
		field.NewAvgPx(decimal.Zero, decimalScale),
	)
	report.SetClOrdID(clOrdID)
	report.SetSymbol(symbol)
	report.SetOrderQty(orderQty, decimalScale)
	a.send(report.ToMessage(), sessionID)
}

func (a *Application) sendReject(sessionID quickfix.SessionID, clOrdID, symbol string, side enum.Side, orderQty decimal.Decimal, reason string) {
	report := executionreport.New(
		field.NewOrderID("NONE"),
		field.NewExecID(uuid.NewString()),
		field.NewExecType(enum.ExecType_REJECTED),
		field.NewOrdStatus(enum.OrdStatus_REJECTED),
		field.NewSide(side),
		field.NewLeavesQty(decimal.Zero, decimalScale),
		field.NewCumQty(decimal.Zero, decimalScale),
		field.NewAvgPx(decimal.Zero, decimalScale),
	)
	report.SetClOrdID(clOrdID)
	report.SetSymbol(symbol)
	report.SetOrderQty(orderQty, decimalScale)
	report.SetText(reason)
	a.send(report.ToMessage(), sessionID)
}

func (a *Application) send(msg *quickfix.Message, sessionID quickfix.SessionID) {
	if err := quickfix.SendToTarget(msg, sessionID); err != nil {
		zap.S().Warnf("send execution report fail: %+v", err)
	}
}
