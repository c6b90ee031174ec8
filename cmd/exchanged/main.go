package main

import (
	"context"
	"flag"
	"net/http"
	_ "net/http/pprof"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/joripage/exchange-core/config"
	"github.com/joripage/exchange-core/pkg/exchange"
	"github.com/joripage/exchange-core/pkg/exchange/feed"
	"github.com/joripage/exchange-core/pkg/exchange/repo"
	"github.com/joripage/exchange-core/pkg/fixgateway"
	postgres_wrapper "github.com/joripage/exchange-core/pkg/infra/postgres"
	redis_wrapper "github.com/joripage/exchange-core/pkg/infra/redis"
	"github.com/joripage/exchange-core/pkg/logging"
	"github.com/joripage/exchange-core/pkg/server"
)

func main() {
	var configFile string
	flag.StringVar(&configFile, "config-file", "", "Specify config file path")
	flag.Parse()

	cfg, err := config.Load(configFile)
	if err != nil {
		panic(err)
	}

	logger, err := logging.InitLog(cfg.ServiceName, cfg.Environment, cfg.LogLevel)
	if err != nil {
		panic(err)
	}
	defer logger.Sync() // nolint

	if cfg.PprofAddr != "" {
		go func() {
			if err := http.ListenAndServe(cfg.PprofAddr, nil); err != nil {
				zap.S().Warnf("pprof listener stopped: %+v", err)
			}
		}()
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	ex := exchange.New(cfg.Instruments...)

	var tradeRepo repo.ITrade
	if cfg.TradeDB != nil {
		db, err := postgres_wrapper.InitPostgresWithBackoff(cfg.TradeDB)
		if err != nil {
			zap.S().Fatalf("init trade db fail: %+v", err)
		}
		tradeRepo = repo.NewRepo(db).Trade()
	}

	var redisClient *redis.Client
	if cfg.Redis != nil {
		redisClient, err = redis_wrapper.InitRedis(cfg.Redis)
		if err != nil {
			zap.S().Fatalf("init redis fail: %+v", err)
		}
	}

	if redisClient != nil || tradeRepo != nil {
		tradeFeed := feed.New(redisClient, tradeRepo, feed.Config{Channel: cfg.TradeChannel})
		ex.RegisterTradeListener(tradeFeed.Enqueue)
		go tradeFeed.Run(ctx)
	}

	httpServer := server.New(cfg.HTTPAddr, ex)
	if tradeRepo != nil {
		httpServer.SetTradeRepo(tradeRepo)
	}
	go func() {
		zap.S().Infof("http server listening on %s", cfg.HTTPAddr)
		if err := httpServer.Start(); err != nil {
			zap.S().Fatalf("http server stopped: %+v", err)
		}
	}()

	var fixGateway *fixgateway.Gateway
	if cfg.FIXConfig != "" {
		fixGateway = fixgateway.NewGateway(&fixgateway.Config{ConfigFilepath: cfg.FIXConfig}, ex)
		if err := fixGateway.Start(); err != nil {
			zap.S().Fatalf("start fix gateway fail: %+v", err)
		}
		zap.S().Info("fix gateway started")
	}

	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM)
	<-sigs
	zap.S().Info("shutting down...")

	if fixGateway != nil {
		fixGateway.Stop()
	}
	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		zap.S().Warnf("http shutdown fail: %+v", err)
	}

	zap.S().Info("exited cleanly")
}
