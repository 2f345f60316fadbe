package logging

import (
	"io"
	"os"
	"sort"
	"strings"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

type Logger struct {
	sugar *zap.SugaredLogger
}

func parseLevel(levelStr string) zapcore.Level {
	switch strings.ToLower(strings.TrimSpace(levelStr)) {
	case "debug":
		return zapcore.DebugLevel
	case "warn", "warning":
		return zapcore.WarnLevel
	case "error":
		return zapcore.ErrorLevel
	}
	return zapcore.InfoLevel
}

// NewLogger writes JSON lines to stderr at the given level.
func NewLogger(levelStr string) *Logger {
	return NewLoggerWithWriter(levelStr, os.Stderr)
}

func NewLoggerWithWriter(levelStr string, w io.Writer) *Logger {
	encCfg := zapcore.EncoderConfig{
		TimeKey:        "ts",
		LevelKey:       "level",
		MessageKey:     "msg",
		NameKey:        "logger",
		EncodeLevel:    zapcore.LowercaseLevelEncoder,
		EncodeTime:     zapcore.ISO8601TimeEncoder,
		EncodeDuration: zapcore.MillisDurationEncoder,
		LineEnding:     zapcore.DefaultLineEnding,
	}
	core := zapcore.NewCore(
		zapcore.NewJSONEncoder(encCfg),
		zapcore.AddSync(w),
		zap.NewAtomicLevelAt(parseLevel(levelStr)),
	)
	return &Logger{sugar: zap.New(core).Sugar()}
}

func NewNop() *Logger {
	return &Logger{sugar: zap.NewNop().Sugar()}
}

func (l *Logger) WithComponent(name string) *Logger {
	return &Logger{sugar: l.sugar.With("component", name)}
}

func (l *Logger) With(fields map[string]any) *Logger {
	return &Logger{sugar: l.sugar.With(flatten(fields)...)}
}

func (l *Logger) Debug(format string, args ...interface{}) { l.sugar.Debugf(format, args...) }
func (l *Logger) Info(format string, args ...interface{})  { l.sugar.Infof(format, args...) }
func (l *Logger) Warn(format string, args ...interface{})  { l.sugar.Warnf(format, args...) }
func (l *Logger) Error(format string, args ...interface{}) { l.sugar.Errorf(format, args...) }

func (l *Logger) Debugw(msg string, fields map[string]any) { l.sugar.Debugw(msg, flatten(fields)...) }
func (l *Logger) Infow(msg string, fields map[string]any)  { l.sugar.Infow(msg, flatten(fields)...) }
func (l *Logger) Warnw(msg string, fields map[string]any)  { l.sugar.Warnw(msg, flatten(fields)...) }
func (l *Logger) Errorw(msg string, fields map[string]any) { l.sugar.Errorw(msg, flatten(fields)...) }

func (l *Logger) Sync() error {
	return l.sugar.Sync()
}

func flatten(fields map[string]any) []interface{} {
	keys := make([]string, 0, len(fields))
	for k := range fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	kv := make([]interface{}, 0, len(fields)*2)
	for _, k := range keys {
		kv = append(kv, k, fields[k])
	}
	return kv
}
