package logging

import (
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// InitLog configures the global zap logger for the process. Plumbing code
// logs through zap.S()/zap.L(); the matching core itself never logs, its
// errors surface as typed results and are logged at the boundary.
func InitLog(serviceName, environment, level string) (*zap.Logger, error) {
	var config zap.Config
	if environment == "local" {
		config = zap.NewDevelopmentConfig()
	} else {
		config = zap.NewProductionConfig()
	}

	parsedLevel, err := zapcore.ParseLevel(level)
	if err != nil {
		parsedLevel = zapcore.InfoLevel
	}
	config.Level = zap.NewAtomicLevelAt(parsedLevel)
	config.EncoderConfig.TimeKey = "timestamp"
	config.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder

	logger, err := config.Build()
	if err != nil {
		return nil, err
	}
	logger = logger.With(zap.String("service", serviceName))

	zap.ReplaceGlobals(logger)
	return logger, nil
}
