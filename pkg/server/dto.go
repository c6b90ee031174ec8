package server

import (
	"github.com/shopspring/decimal"

	"github.com/joripage/exchange-core/pkg/orderbook"
)

// Decimal fields travel as strings so no precision is lost between the wire
// and the engine.
type placeOrderRequest struct {
	Type  string `json:"type" binding:"required,oneof=limit market"`
	Side  string `json:"side" binding:"required,oneof=bid ask"`
	Size  string `json:"size" binding:"required"`
	Price string `json:"price"`
}

type matchResponse struct {
	AskOrderID string          `json:"ask_order_id"`
	BidOrderID string          `json:"bid_order_id"`
	Price      decimal.Decimal `json:"price"`
	SizeFilled decimal.Decimal `json:"size_filled"`
}

type placeOrderResponse struct {
	OrderID string          `json:"order_id"`
	Matches []matchResponse `json:"matches,omitempty"`
}

type cancelOrderResponse struct {
	OrderID string          `json:"order_id"`
	Size    decimal.Decimal `json:"size"`
}

func sideFromString(s string) orderbook.Side {
	if s == "bid" {
		return orderbook.Bid
	}
	return orderbook.Ask
}

func toMatchResponses(matches []orderbook.Match) []matchResponse {
	out := make([]matchResponse, 0, len(matches))
	for _, m := range matches {
		out = append(out, matchResponse{
			AskOrderID: m.Ask.ID.String(),
			BidOrderID: m.Bid.ID.String(),
			Price:      m.Price,
			SizeFilled: m.SizeFilled,
		})
	}
	return out
}
