// Package logging builds the service logger and adapts it for gorm.
package logging

import (
	"io"
	"os"
	"time"

	"github.com/charmbracelet/log"
	gormlogger "gorm.io/gorm/logger"
)

// New creates a timestamped [log.Logger] writing to w (stderr when nil) at
// the named level. Unknown levels fall back to info.
func New(w io.Writer, level string) *log.Logger {
	if w == nil {
		w = os.Stderr
	}
	lvl, err := log.ParseLevel(level)
	if err != nil {
		lvl = log.InfoLevel
	}
	return log.NewWithOptions(w, log.Options{
		ReportTimestamp: true,
		TimeFormat:      time.DateTime,
		Level:           lvl,
	})
}

// Gorm returns a gorm logger that writes through l. SQL traces are only
// emitted when l is at debug level.
func Gorm(l *log.Logger, slowThreshold time.Duration) gormlogger.Interface {
	level := gormlogger.Warn
	if l.GetLevel() <= log.DebugLevel {
		level = gormlogger.Info
	}
	std := l.WithPrefix("gorm").StandardLog(log.StandardLogOptions{ForceLevel: log.InfoLevel})
	return gormlogger.New(std, gormlogger.Config{
		SlowThreshold:             slowThreshold,
		LogLevel:                  level,
		IgnoreRecordNotFoundError: true,
		Colorful:                  false,
	})
}
