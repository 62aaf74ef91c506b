package utils

import (
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

const logTimestampLayout = "15:04:05.000"

// NewApplicationLogger constructs a zap logger configured for human-readable console output.
func NewApplicationLogger() (*zap.Logger, error) {
	config := zap.NewProductionConfig()
	config.Encoding = "console"
	config.DisableCaller = true
	config.DisableStacktrace = true
	config.EncoderConfig.EncodeLevel = zapcore.CapitalLevelEncoder
	config.EncoderConfig.TimeKey = ""
	config.EncoderConfig.NameKey = ""
	config.EncoderConfig.CallerKey = ""
	config.EncoderConfig.MessageKey = "message"
	config.EncoderConfig.StacktraceKey = ""
	return config.Build()
}

// NewVerboseLogger is NewApplicationLogger with debug level and timestamps enabled,
// used by long-running commands such as watch.
func NewVerboseLogger() (*zap.Logger, error) {
	config := zap.NewDevelopmentConfig()
	config.Encoding = "console"
	config.DisableCaller = true
	config.DisableStacktrace = true
	config.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
	config.EncoderConfig.EncodeTime = zapcore.TimeEncoderOfLayout(logTimestampLayout)
	config.EncoderConfig.NameKey = ""
	config.EncoderConfig.CallerKey = ""
	return config.Build()
}
