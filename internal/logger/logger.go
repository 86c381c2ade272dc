package logger

import (
	"time"

	"github.com/getsentry/sentry-go"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// New builds the production logger. With a Sentry DSN, warnings and errors
// are also reported to Sentry tagged with release.
func New(dsn, release string) (*zap.SugaredLogger, error) {
	zapLogger, err := zap.NewProduction()
	if err != nil {
		return nil, err
	}

	if dsn != "" {
		sentryOption, err := Sentry(dsn, release)
		if err != nil {
			return nil, err
		}

		zapLogger = zapLogger.WithOptions(sentryOption)
	}

	return zapLogger.Sugar(), nil
}

// Flush waits for buffered log entries and queued Sentry events.
func Flush(log *zap.SugaredLogger) {
	_ = log.Sync()
	sentry.Flush(10 * time.Second)
}

func Sentry(dsn, release string) (zap.Option, error) {
	err := sentry.Init(sentry.ClientOptions{
		Dsn:     dsn,
		Release: release,
	})
	if err != nil {
		return nil, err
	}

	return zap.Hooks(func(entry zapcore.Entry) error {
		if entry.Level < zapcore.WarnLevel {
			return nil
		}

		sentry.CaptureEvent(Event(entry))
		return nil
	}), nil
}

// Event converts a log entry into a Sentry event.
func Event(entry zapcore.Entry) *sentry.Event {
	event := sentry.NewEvent()
	event.Timestamp = entry.Time
	event.Logger = entry.LoggerName
	event.Message = entry.Message
	event.Level = SentryLevel(entry.Level)
	event.Extra = map[string]any{
		"Stack":  entry.Stack,
		"Caller": entry.Caller.String(),
	}

	return event
}

func SentryLevel(zapLevel zapcore.Level) sentry.Level {
	switch zapLevel {
	case zapcore.DebugLevel:
		return sentry.LevelDebug
	case zapcore.WarnLevel:
		return sentry.LevelWarning
	case zapcore.ErrorLevel:
		return sentry.LevelError
	case zapcore.DPanicLevel, zapcore.PanicLevel, zapcore.FatalLevel:
		return sentry.LevelFatal
	}

	return sentry.LevelInfo
}
