// internal/logger/logger.go
package logger

import (
	"io"
	"os"
	"time"

	"github.com/isdelr/user-directory/internal/config"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"gopkg.in/natefinch/lumberjack.v2"
)

// Init configures the global zerolog logger. The returned closer flushes the
// rotating log file, if one was configured.
func Init(cfg config.LogConfig) io.Closer {
	// Use ConsoleWriter for human-readable, colorized output in development
	var out io.Writer = zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339}

	var file *lumberjack.Logger
	if cfg.File != "" {
		file = &lumberjack.Logger{
			Filename:   cfg.File,
			MaxSize:    cfg.MaxSizeMB,
			MaxBackups: cfg.MaxBackups,
			MaxAge:     cfg.MaxAgeDays,
			Compress:   true,
		}
		// The file gets plain JSON lines.
		out = zerolog.MultiLevelWriter(out, file)
	}

	zerolog.SetGlobalLevel(ParseLevel(cfg.Level))

	// Add a hook to include the caller's file and line number
	log.Logger = zerolog.New(out).With().Timestamp().Caller().Logger()

	if file == nil {
		return nopCloser{}
	}
	return file
}

// ParseLevel maps a level name to a zerolog level, falling back to info.
func ParseLevel(level string) zerolog.Level {
	lvl, err := zerolog.ParseLevel(level)
	if err != nil || level == "" {
		return zerolog.InfoLevel
	}
	return lvl
}

type nopCloser struct{}

func (nopCloser) Close() error { return nil }
