package logging

import (
	"fmt"
	"os"
	"strings"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gopkg.in/natefinch/lumberjack.v2"
)

// Params configures the process logger.
type Params struct {
	Production bool
	Level      string
	// LogFile, when set, additionally writes JSON logs to a rotated file.
	LogFile string
}

// New builds the zap logger: JSON in production, coloured console output
// otherwise.
func New(params Params) (*zap.Logger, error) {
	var cfg zap.Config
	if params.Production {
		cfg = zap.NewProductionConfig()
	} else {
		cfg = zap.NewDevelopmentConfig()
		cfg.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
	}

	level, err := ParseLevel(params.Level, params.Production)
	if err != nil {
		return nil, err
	}
	cfg.Level = zap.NewAtomicLevelAt(level)

	logger, err := cfg.Build()
	if err != nil {
		return nil, fmt.Errorf("build logger: %w", err)
	}
	if params.LogFile == "" {
		return logger, nil
	}

	fileName := params.LogFile
	if !strings.HasSuffix(fileName, ".log") {
		fileName += ".log"
	}
	fileSink := zapcore.AddSync(&lumberjack.Logger{
		Filename:   fileName,
		MaxSize:    50, // megabytes
		MaxBackups: 10,
		LocalTime:  false,
		Compress:   true,
	})
	fileEncoder := zapcore.NewJSONEncoder(zap.NewProductionEncoderConfig())
	fileCore := zapcore.NewCore(fileEncoder, fileSink, cfg.Level)

	return logger.WithOptions(zap.WrapCore(func(c zapcore.Core) zapcore.Core {
		return zapcore.NewTee(c, fileCore)
	})), nil
}

// ParseLevel maps a config string to a zap level. An empty string selects
// info in production and debug otherwise.
func ParseLevel(level string, production bool) (zapcore.Level, error) {
	if strings.TrimSpace(level) == "" {
		if production {
			return zapcore.InfoLevel, nil
		}
		return zapcore.DebugLevel, nil
	}
	var l zapcore.Level
	if err := l.UnmarshalText([]byte(strings.ToLower(strings.TrimSpace(level)))); err != nil {
		return zapcore.InfoLevel, fmt.Errorf("invalid log level %q: %w", level, err)
	}
	return l, nil
}

// Sync flushes buffered entries; stdout/stderr sync errors are expected on
// some platforms and ignored.
func Sync(logger *zap.Logger) {
	if err := logger.Sync(); err != nil && !isStdSyncErr(err) {
		fmt.Fprintf(os.Stderr, "failed to sync logger: %v\n", err)
	}
}

func isStdSyncErr(err error) bool {
	msg := err.Error()
	return strings.Contains(msg, "/dev/stdout") || strings.Contains(msg, "/dev/stderr") ||
		strings.Contains(msg, "invalid argument") || strings.Contains(msg, "inappropriate ioctl")
}
