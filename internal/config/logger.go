package config

import (
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/rs/zerolog"
)

// DefaultLogFile returns the log path next to the running executable, e.g. /usr/local/bin/subgrab.log.
func DefaultLogFile() string {
	exe, err := os.Executable()
	if err != nil {
		return "subgrab.log"
	}
	return strings.TrimSuffix(exe, filepath.Ext(exe)) + ".log"
}

// NewLogger builds the process logger. Events are appended to the configured log file
// as JSON lines; when LogConsole is set they are also written to stderr in
// human-readable form. The returned closer releases the log file.
func NewLogger(cfg *Config) (zerolog.Logger, io.Closer, error) {
	path := cfg.LogFile
	if path == "" {
		path = DefaultLogFile()
	}

	file, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return zerolog.Nop(), nil, err
	}

	var out io.Writer = file
	if cfg.LogConsole {
		out = zerolog.MultiLevelWriter(file, zerolog.ConsoleWriter{
			Out:     os.Stderr,
			NoColor: false,
		})
	}

	logger := zerolog.New(out).With().Timestamp().Logger()

	// Parse and set log level from config
	level := zerolog.InfoLevel // default
	if cfg.LogLevel != "" {
		if parsedLevel, err := zerolog.ParseLevel(cfg.LogLevel); err == nil {
			level = parsedLevel
		} else {
			logger.Warn().Str("invalid_level", cfg.LogLevel).Msg("Invalid log level, using default 'info'")
		}
	}
	logger = logger.Level(level)

	logger.Debug().Str("level", level.String()).Str("file", path).Msg("Logging configured")
	return logger, file, nil
}
