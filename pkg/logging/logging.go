package logging

import (
	"io"
	"log/slog"
	"os"

	"github.com/solux-cash/solux-backend/pkg/env"
)

// Setup builds the process-wide logger: human-readable text in dev/test,
// JSON in prod. The optional path appends to a log file alongside stderr.
func Setup(mode env.Mode, path string) (*slog.Logger, func() error) {
	out := io.Writer(os.Stderr)
	cleanup := func() error { return nil }

	if path != "" {
		f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
		if err == nil {
			out = io.MultiWriter(os.Stderr, f)
			cleanup = f.Close
		} else {
			slog.Error("failed to open log file, falling back to stderr", "path", path, "error", err)
		}
	}

	opts := &slog.HandlerOptions{Level: mode.SlogLevel()}

	var handler slog.Handler
	if mode == env.Prod {
		handler = slog.NewJSONHandler(out, opts)
	} else {
		handler = slog.NewTextHandler(out, opts)
	}

	return slog.New(handler), cleanup
}
