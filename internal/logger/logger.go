// Package logger provides leveled logging for the restgate CLI.
// Messages are quiet by default; --verbose raises the level to debug and
// --log-file sends everything to a rotating file instead of stderr.
package logger

import (
	"context"
	"io"
	"os"
	"sync"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"gopkg.in/natefinch/lumberjack.v2"
)

// quietLevel is the level used when verbose mode is off.
const quietLevel = logrus.ErrorLevel

var (
	mu      sync.RWMutex
	verbose bool
	log     = newLogger()
)

func newLogger() *logrus.Logger {
	l := logrus.New()
	l.SetOutput(os.Stderr)
	l.SetFormatter(&logrus.TextFormatter{
		FullTimestamp:   true,
		TimestampFormat: "2006-01-02 15:04:05",
	})
	l.SetLevel(quietLevel)
	return l
}

// SetVerbose enables or disables verbose logging.
func SetVerbose(v bool) {
	mu.Lock()
	defer mu.Unlock()
	verbose = v
	if v {
		log.SetLevel(logrus.DebugLevel)
	} else {
		log.SetLevel(quietLevel)
	}
}

// IsVerbose returns true if verbose mode is enabled.
func IsVerbose() bool {
	mu.RLock()
	defer mu.RUnlock()
	return verbose
}

// SetLevel sets the level by name ("debug", "info", "warn", "error").
func SetLevel(name string) error {
	lvl, err := logrus.ParseLevel(name)
	if err != nil {
		return err
	}
	mu.Lock()
	defer mu.Unlock()
	log.SetLevel(lvl)
	verbose = lvl >= logrus.DebugLevel
	return nil
}

// SetOutput sets the output writer for logs.
// Defaults to os.Stderr. Useful for testing.
func SetOutput(w io.Writer) {
	mu.Lock()
	defer mu.Unlock()
	log.SetOutput(w)
}

// SetFile routes logs to a size-rotated file. The returned closer flushes
// and closes it.
func SetFile(path string) io.Closer {
	sink := &lumberjack.Logger{
		Filename:   path,
		MaxSize:    10, // megabytes
		MaxBackups: 3,
		MaxAge:     28, // days
	}
	SetOutput(sink)
	return sink
}

// Debug logs at debug level.
func Debug(format string, args ...any) {
	log.Debugf(format, args...)
}

// Section logs a section header at debug level.
func Section(name string) {
	log.Debugf("=== %s ===", name)
}

// Info logs at info level.
func Info(format string, args ...any) {
	log.Infof(format, args...)
}

// Warn logs at warning level.
func Warn(format string, args ...any) {
	log.Warnf(format, args...)
}

// Error logs at error level.
func Error(format string, args ...any) {
	log.Errorf(format, args...)
}

type ctxKey struct{}

// WithOperation returns a context carrying a log entry tagged with the
// operation name and a fresh operation id. An existing entry is reused.
func WithOperation(ctx context.Context, op string) (context.Context, *logrus.Entry) {
	if entry, ok := ctx.Value(ctxKey{}).(*logrus.Entry); ok {
		return ctx, entry
	}
	entry := log.WithFields(logrus.Fields{
		"op":           op,
		"operation_id": uuid.NewString(),
	})
	return context.WithValue(ctx, ctxKey{}, entry), entry
}

// FromContext returns the entry stored by WithOperation, or an untagged
// entry when there is none.
func FromContext(ctx context.Context) *logrus.Entry {
	if ctx != nil {
		if entry, ok := ctx.Value(ctxKey{}).(*logrus.Entry); ok {
			return entry
		}
	}
	return logrus.NewEntry(log)
}
