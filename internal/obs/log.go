package obs

import (
	"io"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"
)

var (
	loggerOnce sync.Once
	logger     zerolog.Logger
)

// InitLogger initialises the shared structured logger. Only the first call has
// any effect; later calls return the already-built instance.
func InitLogger(level string, pretty bool, out io.Writer) zerolog.Logger {
	loggerOnce.Do(func() {
		zerolog.TimeFieldFormat = time.RFC3339Nano
		if out == nil {
			out = os.Stdout
		}
		if pretty {
			out = zerolog.ConsoleWriter{Out: out, TimeFormat: time.RFC3339}
		}
		logger = zerolog.New(out).Level(parseLevel(level)).With().Timestamp().Logger()
	})
	return logger
}

// Logger returns the shared structured logger used across the service. The
// pointer lets callers chain level methods directly on the return value.
func Logger() *zerolog.Logger {
	InitLogger("info", false, nil)
	return &logger
}

func parseLevel(s string) zerolog.Level {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "trace":
		return zerolog.TraceLevel
	case "debug":
		return zerolog.DebugLevel
	case "warn", "warning":
		return zerolog.WarnLevel
	case "error":
		return zerolog.ErrorLevel
	default:
		return zerolog.InfoLevel
	}
}
