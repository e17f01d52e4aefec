package logging

import (
	"io"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"sync/atomic"
)

// Options controls the process-wide logger.
type Options struct {
	Level string
	JSON  bool
	// Output defaults to stderr; tests capture logs through it.
	Output io.Writer
}

var def atomic.Value

func init() {
	cfg := &slog.HandlerOptions{Level: slog.LevelInfo}
	def.Store(slog.New(slog.NewTextHandler(os.Stderr, cfg)))
}

// Configure replaces the process-wide logger.
func Configure(opts Options) {
	out := opts.Output
	if out == nil {
		out = os.Stderr
	}
	cfg := &slog.HandlerOptions{Level: parseLevel(opts.Level)}
	var h slog.Handler
	if opts.JSON {
		h = slog.NewJSONHandler(out, cfg)
	} else {
		h = slog.NewTextHandler(out, cfg)
	}
	def.Store(slog.New(h))
}

// L returns the current process-wide logger.
func L() *slog.Logger {
	l, _ := def.Load().(*slog.Logger)
	return l
}

// InitFromEnv configures logging from DBTX_LOG_LEVEL and DBTX_LOG_JSON.
func InitFromEnv() {
	jsonOut := false
	if b, err := strconv.ParseBool(strings.TrimSpace(os.Getenv("DBTX_LOG_JSON"))); err == nil {
		jsonOut = b
	}
	Configure(Options{Level: os.Getenv("DBTX_LOG_LEVEL"), JSON: jsonOut})
}

func parseLevel(s string) slog.Level {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
