package server

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/joripage/exchange-core/pkg/exchange"
	"github.com/joripage/exchange-core/pkg/exchange/repo"
)

func newTestServer() *Server {
	return New(":0", exchange.New("eth_usdt"))
}

func doJSON(s *Server, method, path, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	w := httptest.NewRecorder()
	s.engine.ServeHTTP(w, req)
	return w
}

func TestPlaceLimitOrderHTTP(t *testing.T) {
	s := newTestServer()

	w := doJSON(s, http.MethodPost, "/order-book/eth_usdt/orders",
		`{"type":"limit","side":"ask","size":"5","price":"100"}`)
	if w.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d body=%s", w.Code, w.Body)
	}

	var resp struct {
		OrderID string `json:"order_id"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("bad response body: %v", err)
	}
	if resp.OrderID == "" {
		t.Error("expected an order id in the response")
	}

	w = doJSON(s, http.MethodGet, "/order-book/eth_usdt", "")
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	var snap struct {
		Asks           []json.RawMessage `json:"asks"`
		AskTotalVolume string            `json:"ask_total_volume"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &snap); err != nil {
		t.Fatalf("bad snapshot body: %v", err)
	}
	if len(snap.Asks) != 1 || snap.AskTotalVolume != "5" {
		t.Errorf("expected 1 ask with total volume 5, got %d/%s", len(snap.Asks), snap.AskTotalVolume)
	}
}

func TestPlaceMarketOrderHTTP(t *testing.T) {
	s := newTestServer()

	doJSON(s, http.MethodPost, "/order-book/eth_usdt/orders",
		`{"type":"limit","side":"ask","size":"5","price":"100"}`)

	w := doJSON(s, http.MethodPost, "/order-book/eth_usdt/orders",
		`{"type":"market","side":"bid","size":"5"}`)
	if w.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d body=%s", w.Code, w.Body)
	}

	var resp struct {
		Matches []struct {
			Price      string `json:"price"`
			SizeFilled string `json:"size_filled"`
		} `json:"matches"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("bad response body: %v", err)
	}
	if len(resp.Matches) != 1 {
		t.Fatalf("expected 1 match, got %d", len(resp.Matches))
	}
	if resp.Matches[0].Price != "100" || resp.Matches[0].SizeFilled != "5" {
		t.Errorf("expected 5 filled at 100, got %+v", resp.Matches[0])
	}
}

func TestMarketOrderRejectedHTTP(t *testing.T) {
	s := newTestServer()

	doJSON(s, http.MethodPost, "/order-book/eth_usdt/orders",
		`{"type":"limit","side":"ask","size":"2","price":"100"}`)

	w := doJSON(s, http.MethodPost, "/order-book/eth_usdt/orders",
		`{"type":"market","side":"bid","size":"5"}`)
	if w.Code != http.StatusUnprocessableEntity {
		t.Fatalf("expected 422, got %d body=%s", w.Code, w.Body)
	}

	var resp struct {
		Side           string `json:"side"`
		ExpectedVolume string `json:"expected_volume"`
		ActualVolume   string `json:"actual_volume"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("bad response body: %v", err)
	}
	if resp.Side != "bid" || resp.ExpectedVolume != "5" || resp.ActualVolume != "2" {
		t.Errorf("unexpected rejection payload: %+v", resp)
	}
}

func TestCancelOrderHTTP(t *testing.T) {
	s := newTestServer()

	w := doJSON(s, http.MethodPost, "/order-book/eth_usdt/orders",
		`{"type":"limit","side":"bid","size":"3","price":"99"}`)
	var placed struct {
		OrderID string `json:"order_id"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &placed); err != nil {
		t.Fatalf("bad response body: %v", err)
	}

	path := fmt.Sprintf("/order-book/eth_usdt/orders/%s", placed.OrderID)
	if w := doJSON(s, http.MethodDelete, path, ""); w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d body=%s", w.Code, w.Body)
	}
	if w := doJSON(s, http.MethodDelete, path, ""); w.Code != http.StatusNotFound {
		t.Errorf("second cancel should 404, got %d", w.Code)
	}
}

func TestBadRequestsHTTP(t *testing.T) {
	s := newTestServer()

	cases := []struct {
		name string
		body string
	}{
		{"unknown type", `{"type":"stop","side":"bid","size":"1","price":"1"}`},
		{"unknown side", `{"type":"limit","side":"long","size":"1","price":"1"}`},
		{"missing size", `{"type":"limit","side":"bid","price":"1"}`},
		{"bad size", `{"type":"limit","side":"bid","size":"abc","price":"1"}`},
		{"bad price", `{"type":"limit","side":"bid","size":"1","price":"x"}`},
		{"float drift risk rejected as text", `{"type":"limit","side":"bid","size":"1e","price":"1"}`},
	}
	for _, tc := range cases {
		w := doJSON(s, http.MethodPost, "/order-book/eth_usdt/orders", tc.body)
		if w.Code != http.StatusBadRequest {
			t.Errorf("%s: expected 400, got %d", tc.name, w.Code)
		}
	}

	if w := doJSON(s, http.MethodDelete, "/order-book/eth_usdt/orders/not-a-uuid", ""); w.Code != http.StatusBadRequest {
		t.Errorf("bad uuid should 400, got %d", w.Code)
	}
}

func TestDepthHTTP(t *testing.T) {
	s := newTestServer()
	doJSON(s, http.MethodPost, "/order-book/eth_usdt/orders",
		`{"type":"limit","side":"ask","size":"2","price":"101"}`)
	doJSON(s, http.MethodPost, "/order-book/eth_usdt/orders",
		`{"type":"limit","side":"ask","size":"3","price":"100"}`)

	w := doJSON(s, http.MethodGet, "/order-book/eth_usdt/depth?levels=1", "")
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	var depth struct {
		Asks []struct {
			Price  string `json:"price"`
			Volume string `json:"volume"`
		} `json:"asks"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &depth); err != nil {
		t.Fatalf("bad body: %v", err)
	}
	if len(depth.Asks) != 1 || depth.Asks[0].Price != "100" || depth.Asks[0].Volume != "3" {
		t.Errorf("expected best ask level 3@100, got %+v", depth.Asks)
	}
}

type staticTradeRepo struct {
	trades []*repo.Trade
}

func (s *staticTradeRepo) Create(_ context.Context, record *repo.Trade) (*repo.Trade, error) {
	return record, nil
}

func (s *staticTradeRepo) BulkCreate(_ context.Context, records []*repo.Trade) ([]*repo.Trade, error) {
	return records, nil
}

func (s *staticTradeRepo) ListBySymbol(_ context.Context, symbol string, _ int) ([]*repo.Trade, error) {
	var out []*repo.Trade
	for _, t := range s.trades {
		if t.Symbol == symbol {
			out = append(out, t)
		}
	}
	return out, nil
}

func TestTradesHTTP(t *testing.T) {
	s := newTestServer()

	if w := doJSON(s, http.MethodGet, "/order-book/eth_usdt/trades", ""); w.Code != http.StatusNotFound {
		t.Errorf("trades without a repo should 404, got %d", w.Code)
	}

	s.SetTradeRepo(&staticTradeRepo{trades: []*repo.Trade{
		{Symbol: "eth_usdt"},
		{Symbol: "btc_usdt"},
	}})

	w := doJSON(s, http.MethodGet, "/order-book/eth_usdt/trades", "")
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	var resp struct {
		Data []struct {
			Symbol string `json:"Symbol"`
		} `json:"data"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("bad body: %v", err)
	}
	if len(resp.Data) != 1 || resp.Data[0].Symbol != "eth_usdt" {
		t.Errorf("expected only eth_usdt trades, got %+v", resp.Data)
	}
}
