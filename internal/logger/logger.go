package logger

import (
	"io"
	"os"
	"time"

	"github.com/rs/zerolog"
	gormlogger "gorm.io/gorm/logger"

	"github.com/yukikurage/task-rest-api/internal/config"
)

// New builds the application logger from configuration.
func New(cfg *config.Config) zerolog.Logger {
	return NewWithWriter(cfg, os.Stdout)
}

// NewWithWriter builds the application logger writing to w.
func NewWithWriter(cfg *config.Config, w io.Writer) zerolog.Logger {
	level, err := zerolog.ParseLevel(cfg.LogLevel)
	if err != nil || level == zerolog.NoLevel {
		level = zerolog.InfoLevel
	}

	if cfg.LogFormat == "console" {
		w = zerolog.ConsoleWriter{Out: w, TimeFormat: time.DateTime}
	}

	return zerolog.New(w).
		Level(level).
		With().
		Timestamp().
		Str("service", cfg.ProjectName).
		Logger()
}

// Gorm adapts a zerolog logger for gorm. Only warnings (slow queries) and
// errors are reported; record-not-found is expected control flow here.
func Gorm(l zerolog.Logger) gormlogger.Interface {
	w := gormWriter{l: l.With().Str("component", "gorm").Logger()}
	return gormlogger.New(w, gormlogger.Config{
		SlowThreshold:             200 * time.Millisecond,
		LogLevel:                  gormlogger.Warn,
		IgnoreRecordNotFoundError: true,
		Colorful:                  false,
	})
}

type gormWriter struct {
	l zerolog.Logger
}

// Printf receives gorm's already filtered warn and error lines.
func (w gormWriter) Printf(format string, args ...interface{}) {
	w.l.Warn().Msgf(format, args...)
}
