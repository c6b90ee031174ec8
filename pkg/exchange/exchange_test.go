package exchange

import (
	"errors"
	"fmt"
	"sync"
	"testing"

	"github.com/shopspring/decimal"

	"github.com/joripage/exchange-core/pkg/orderbook"
)

func d(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func TestInstrumentIsolation(t *testing.T) {
	ex := New()

	if _, err := ex.PlaceLimitOrder("eth_usdt", orderbook.Ask, d("5"), d("100")); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	// liquidity on one instrument must not serve another
	_, _, err := ex.PlaceMarketOrder("btc_usdt", orderbook.Bid, d("5"))
	var nev *orderbook.NotEnoughVolumeError
	if !errors.As(err, &nev) {
		t.Fatalf("expected NotEnoughVolumeError on empty instrument, got %v", err)
	}

	_, matches, err := ex.PlaceMarketOrder("eth_usdt", orderbook.Bid, d("5"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(matches) != 1 {
		t.Fatalf("expected 1 match, got %d", len(matches))
	}
}

func TestTradeListener(t *testing.T) {
	ex := New("eth_usdt")

	var got []Trade
	ex.RegisterTradeListener(func(trades []Trade) {
		got = append(got, trades...)
	})

	ask, _ := ex.PlaceLimitOrder("eth_usdt", orderbook.Ask, d("3"), d("100"))
	taker, _, err := ex.PlaceMarketOrder("eth_usdt", orderbook.Bid, d("3"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(got) != 1 {
		t.Fatalf("expected 1 trade, got %d", len(got))
	}
	trade := got[0]
	if trade.Symbol != "eth_usdt" {
		t.Errorf("expected symbol eth_usdt, got %s", trade.Symbol)
	}
	if trade.AskOrderID != ask.ID || trade.BidOrderID != taker.ID {
		t.Errorf("trade leg ids do not match the orders: %+v", trade)
	}
	if !trade.Price.Equal(d("100")) || !trade.Size.Equal(d("3")) {
		t.Errorf("expected 3 at 100, got %s at %s", trade.Size, trade.Price)
	}
}

func TestRejectedMarketOrderEmitsNoTrades(t *testing.T) {
	ex := New("eth_usdt")
	ex.RegisterTradeListener(func(trades []Trade) {
		t.Fatalf("expected no trades, got %d", len(trades))
	})

	_, _, err := ex.PlaceMarketOrder("eth_usdt", orderbook.Bid, d("1"))
	if err == nil {
		t.Fatal("expected rejection on empty book")
	}
}

func TestInvalidOrderInput(t *testing.T) {
	ex := New()

	if _, err := ex.PlaceLimitOrder("eth_usdt", orderbook.Bid, d("0"), d("100")); err == nil {
		t.Error("zero size limit order must be rejected")
	}
	if _, err := ex.PlaceLimitOrder("eth_usdt", orderbook.Bid, d("1"), d("-5")); err == nil {
		t.Error("negative price limit order must be rejected")
	}
	if _, _, err := ex.PlaceMarketOrder("eth_usdt", orderbook.Bid, d("-1")); err == nil {
		t.Error("negative size market order must be rejected")
	}
}

func TestCancelRoutesToBook(t *testing.T) {
	ex := New("eth_usdt")
	order, _ := ex.PlaceLimitOrder("eth_usdt", orderbook.Bid, d("2"), d("99"))

	cancelled, err := ex.CancelOrder("eth_usdt", order.ID)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cancelled.ID != order.ID {
		t.Errorf("expected cancelled order %s, got %s", order.ID, cancelled.ID)
	}

	var onf *orderbook.OrderNotFoundError
	if _, err := ex.CancelOrder("eth_usdt", order.ID); !errors.As(err, &onf) {
		t.Errorf("expected OrderNotFoundError, got %v", err)
	}
}

func TestSnapshotAndDepth(t *testing.T) {
	ex := New("eth_usdt")
	ex.PlaceLimitOrder("eth_usdt", orderbook.Ask, d("5"), d("101"))
	ex.PlaceLimitOrder("eth_usdt", orderbook.Bid, d("3"), d("100"))

	snap := ex.Snapshot("eth_usdt")
	if len(snap.Asks) != 1 || len(snap.Bids) != 1 {
		t.Fatalf("expected 1 order per side, got %d/%d", len(snap.Asks), len(snap.Bids))
	}

	depth := ex.Depth("eth_usdt", 10)
	if len(depth.Asks) != 1 || !depth.Asks[0].Volume.Equal(d("5")) {
		t.Errorf("bad ask depth: %+v", depth.Asks)
	}
}

func TestConcurrentMixedOperations(t *testing.T) {
	ex := New("eth_usdt")

	var wg sync.WaitGroup
	for i := 0; i < 200; i++ {
		wg.Add(3)
		go func(i int) {
			defer wg.Done()
			symbol := fmt.Sprintf("sym_%d", i%4)
			ex.PlaceLimitOrder(symbol, orderbook.Ask, d("1"), d("100"))
		}(i)
		go func(i int) {
			defer wg.Done()
			symbol := fmt.Sprintf("sym_%d", i%4)
			ex.PlaceMarketOrder(symbol, orderbook.Bid, d("1"))
		}(i)
		go func(i int) {
			defer wg.Done()
			ex.Snapshot(fmt.Sprintf("sym_%d", i%4))
		}(i)
	}
	wg.Wait()

	// whatever interleaving happened, per-book accounting must still hold
	for _, symbol := range ex.Instruments() {
		snap := ex.Snapshot(symbol)
		sum := decimal.Zero
		for _, o := range snap.Asks {
			sum = sum.Add(o.Size)
		}
		if !sum.Equal(snap.AskTotalVolume) {
			t.Fatalf("%s ask volume drift: %s vs %s", symbol, snap.AskTotalVolume, sum)
		}
	}
}
