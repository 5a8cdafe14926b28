package cache

import "github.com/rs/zerolog"

// Logger receives backend failures. Cache operations never return errors,
// a failing backend degrades to misses.
type Logger interface {
	Error(msg string, err error)
}

type zerologLogger struct {
	logger zerolog.Logger
}

// NewZerologLogger adapts a zerolog logger to the Logger interface.
func NewZerologLogger(logger zerolog.Logger) Logger {
	return zerologLogger{logger: logger.With().Str("component", "cache").Logger()}
}

func (z zerologLogger) Error(msg string, err error) {
	z.logger.Warn().Err(err).Msg(msg)
}
