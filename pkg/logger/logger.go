// Package logger содержит интерфейс логгера приложения и его реализацию поверх zap.
package logger

import (
	"fmt"
	"io"
	"os"
	"strings"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Logger — логгер, который передаётся во все компоненты приложения.
type Logger interface {
	Debugf(format string, args ...any)
	Infof(format string, args ...any)
	Warnf(format string, args ...any)
	Errorf(err error, format string, args ...any)
	With(args ...any) Logger
}

// ZapLogger реализует Logger поверх zap.SugaredLogger.
type ZapLogger struct {
	log *zap.SugaredLogger
}

// NewZapLogger создаёт JSON-логгер в stdout, уровень берётся из LOG_LEVEL.
func NewZapLogger() (*ZapLogger, error) {
	config := zap.NewProductionConfig()
	config.Level = zap.NewAtomicLevelAt(ParseLevel(os.Getenv("LOG_LEVEL")))
	config.DisableStacktrace = true

	log, err := config.Build()
	if err != nil {
		return nil, err
	}

	return &ZapLogger{log: log.Sugar()}, nil
}

func NewZapLoggerWithWriter(w io.Writer, level zapcore.Level) *ZapLogger {
	core := zapcore.NewCore(
		zapcore.NewJSONEncoder(zap.NewProductionEncoderConfig()),
		zapcore.AddSync(w),
		level,
	)
	return &ZapLogger{log: zap.New(core).Sugar()}
}

// ParseLevel переводит строковый уровень в zapcore.Level, по умолчанию info.
func ParseLevel(s string) zapcore.Level {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return zapcore.DebugLevel
	case "warn", "warning":
		return zapcore.WarnLevel
	case "error":
		return zapcore.ErrorLevel
	default:
		return zapcore.InfoLevel
	}
}

func (l *ZapLogger) Debugf(format string, args ...any) {
	l.log.Debugf(format, args...)
}

func (l *ZapLogger) Infof(format string, args ...any) {
	l.log.Infof(format, args...)
}

func (l *ZapLogger) Warnf(format string, args ...any) {
	l.log.Warnf(format, args...)
}

func (l *ZapLogger) Errorf(err error, format string, args ...any) {
	msg := format
	if len(args) > 0 {
		msg = fmt.Sprintf(format, args...)
	}

	l.log.Errorw(msg, zap.Error(err))
}

// With возвращает логгер с дополнительными полями (пары ключ-значение).
func (l *ZapLogger) With(args ...any) Logger {
	return &ZapLogger{log: l.log.With(args...)}
}

// Sync сбрасывает буферы логгера, вызывается перед выходом.
func (l *ZapLogger) Sync() error {
	return l.log.Sync()
}

// Nop — логгер, который ничего не пишет. Используется в тестах.
type Nop struct{}

func NewNop() Nop { return Nop{} }

func (Nop) Debugf(string, ...any)        {}
func (Nop) Infof(string, ...any)         {}
func (Nop) Warnf(string, ...any)         {}
func (Nop) Errorf(error, string, ...any) {}
func (n Nop) With(...any) Logger         { return n }
