package config

import (
	"os"

	"go.uber.org/zap"
	"gopkg.in/yaml.v3"

	postgres_wrapper "github.com/joripage/exchange-core/pkg/infra/postgres"
	redis_wrapper "github.com/joripage/exchange-core/pkg/infra/redis"
)

type AppConfig struct {
	ServiceName string   `yaml:"service_name"`
	Environment string   `yaml:"environment"`
	LogLevel    string   `yaml:"log_level"`
	HTTPAddr    string   `yaml:"http_addr"`
	PprofAddr   string   `yaml:"pprof_addr"`
	FIXConfig   string   `yaml:"fix_config"`
	Instruments []string `yaml:"instruments"`

	TradeChannel string                           `yaml:"trade_channel"`
	TradeDB      *postgres_wrapper.PostgresConfig `yaml:"trade_db"`
	Redis        *redis_wrapper.RedisConfig       `yaml:"redis"`
}

// Load load config from file and environment variables.
func Load(filePath string) (*AppConfig, error) {
	if len(filePath) == 0 {
		filePath = os.Getenv("CONFIG_FILE")
	}

	sugar := zap.S().With("func", "config.Load", "filePath", filePath)
	sugar.Debug("Load config...")

	configBytes, err := os.ReadFile(filePath)
	if err != nil {
		sugar.Error("Failed to load config file")
		return nil, err
	}
	configBytes = []byte(os.ExpandEnv(string(configBytes)))

	cfg := &AppConfig{}
	if err := yaml.Unmarshal(configBytes, cfg); err != nil {
		sugar.Error("Failed to parse config file")
		return nil, err
	}

	if cfg.Environment == "" {
		cfg.Environment = "local"
	}
	if cfg.HTTPAddr == "" {
		cfg.HTTPAddr = ":8080"
	}

	zap.S().Debugf("config: %+v", cfg)

	return cfg, nil
}
