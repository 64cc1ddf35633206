package logger

import (
	"os"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// NewLogger builds the development logger with ISO8601 timestamps.
// LOG_LEVEL (debug, info, warn, error) overrides the default debug level.
func NewLogger() *zap.Logger {
	loggerConfig := zap.NewDevelopmentConfig()
	loggerConfig.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder

	if level := os.Getenv("LOG_LEVEL"); level != "" {
		if parsed, err := zapcore.ParseLevel(level); err == nil {
			loggerConfig.Level = zap.NewAtomicLevelAt(parsed)
		}
	}

	logger, err := loggerConfig.Build()
	if nil != err {
		panic(err)
	}

	return logger.Named("assetdb")
}
