// Package logging configures logrus and carries request scoped entries on a context.
package logging

import (
	"context"
	"io"
	"os"

	"github.com/sirupsen/logrus"
	"gorm.io/gorm/logger"
)

type contextKey int

const entryKey contextKey = iota

// Setup configures the standard logrus logger.
// level is a logrus level name; format is "json" or "text".
func Setup(level, format string, out io.Writer) error {
	lvl, err := logrus.ParseLevel(level)
	if err != nil {
		return err
	}
	if out == nil {
		out = os.Stdout
	}

	logrus.SetOutput(out)
	logrus.SetLevel(lvl)
	if format == "text" {
		logrus.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	} else {
		logrus.SetFormatter(&logrus.JSONFormatter{})
	}
	return nil
}

// WithEntry returns a copy of ctx carrying entry.
func WithEntry(ctx context.Context, entry *logrus.Entry) context.Context {
	return context.WithValue(ctx, entryKey, entry)
}

// FromContext returns the entry stored on ctx, or one from the standard logger.
func FromContext(ctx context.Context) *logrus.Entry {
	if ctx != nil {
		if entry, ok := ctx.Value(entryKey).(*logrus.Entry); ok && entry != nil {
			return entry
		}
	}
	return logrus.NewEntry(logrus.StandardLogger())
}

// GormLevel maps the application log level onto gorm's SQL logging level.
func GormLevel(level string) logger.LogLevel {
	switch level {
	case "debug", "trace":
		return logger.Info
	case "error", "fatal", "panic":
		return logger.Error
	default:
		return logger.Warn
	}
}
