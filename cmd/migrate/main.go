package main

import (
	"flag"

	_ "github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	"go.uber.org/zap"

	"github.com/joripage/exchange-core/config"
	"github.com/joripage/exchange-core/pkg/infra"
	"github.com/joripage/exchange-core/pkg/logging"
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

	if cfg.TradeDB == nil {
		zap.S().Fatal("trade_db config is required to migrate")
	}

	if err := infra.Migrate("file://migrations", cfg.TradeDB.MigrationConnURL); err != nil {
		zap.S().Fatalf("migrate fail: %+v", err)
	}
}
