package feed

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/gammazero/deque"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/joripage/exchange-core/pkg/exchange"
	"github.com/joripage/exchange-core/pkg/exchange/repo"
)

type Config struct {
	Channel       string
	MaxBatch      int
	FlushInterval time.Duration
}

// Feed fans executed trades out of the matching path: listeners enqueue,
// a background drain publishes to a redis channel and persists through the
// trade repository. Matching is never blocked or failed by the feed; on a
// downstream error the batch is logged and dropped.
type Feed struct {
	client    *redis.Client
	tradeRepo repo.ITrade
	cfg       Config

	mu     sync.Mutex
	buf    deque.Deque[exchange.Trade]
	notify chan struct{}
}

// New builds a feed. Either sink may be nil to disable it.
func New(client *redis.Client, tradeRepo repo.ITrade, cfg Config) *Feed {
	if cfg.Channel == "" {
		cfg.Channel = "trades"
	}
	if cfg.MaxBatch <= 0 {
		cfg.MaxBatch = 500
	}
	if cfg.FlushInterval <= 0 {
		cfg.FlushInterval = 50 * time.Millisecond
	}
	return &Feed{
		client:    client,
		tradeRepo: tradeRepo,
		cfg:       cfg,
		notify:    make(chan struct{}, 1),
	}
}

// Enqueue buffers a batch of trades and returns immediately. It satisfies
// exchange.TradeListener.
func (f *Feed) Enqueue(trades []exchange.Trade) {
	if len(trades) == 0 {
		return
	}

	f.mu.Lock()
	for _, t := range trades {
		f.buf.PushBack(t)
	}
	f.mu.Unlock()

	select {
	case f.notify <- struct{}{}:
	default:
	}
}

// Run drains the buffer until ctx is cancelled. A final drain runs on the
// way out so a clean shutdown does not strand buffered trades.
func (f *Feed) Run(ctx context.Context) {
	ticker := time.NewTicker(f.cfg.FlushInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			f.drain(context.Background())
			return
		case <-f.notify:
			f.drain(ctx)
		case <-ticker.C:
			f.drain(ctx)
		}
	}
}

func (f *Feed) drain(ctx context.Context) {
	for {
		batch := f.takeBatch()
		if len(batch) == 0 {
			return
		}
		f.publish(ctx, batch)
		f.persist(ctx, batch)
	}
}

func (f *Feed) takeBatch() []exchange.Trade {
	f.mu.Lock()
	defer f.mu.Unlock()

	n := f.buf.Len()
	if n > f.cfg.MaxBatch {
		n = f.cfg.MaxBatch
	}
	batch := make([]exchange.Trade, 0, n)
	for i := 0; i < n; i++ {
		batch = append(batch, f.buf.PopFront())
	}
	return batch
}

func (f *Feed) publish(ctx context.Context, batch []exchange.Trade) {
	if f.client == nil {
		return
	}
	for _, trade := range batch {
		payload, err := json.Marshal(trade)
		if err != nil {
			zap.S().Errorf("marshal trade fail: %+v", err)
			continue
		}
		if err := f.client.Publish(ctx, f.cfg.Channel, payload).Err(); err != nil {
			zap.S().Warnf("publish trade fail: %+v", err)
		}
	}
}

func (f *Feed) persist(ctx context.Context, batch []exchange.Trade) {
	if f.tradeRepo == nil {
		return
	}
	records := make([]*repo.Trade, 0, len(batch))
	for _, trade := range batch {
		records = append(records, repo.FromExchangeTrade(trade))
	}
	if _, err := f.tradeRepo.BulkCreate(ctx, records); err != nil {
		zap.S().Warnf("persist %d trades fail: %+v", len(records), err)
	}
}
