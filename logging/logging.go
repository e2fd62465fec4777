// Package logging builds the process logger
// The terminal owns stdout, so records go to a file or nowhere
package logging

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"time"

	"golang.org/x/time/rate"
)

// Discard returns a logger that drops every record
func Discard() *slog.Logger {
	return slog.New(slog.DiscardHandler)
}

// New opens path for appending and returns a text logger writing to it
// An empty path returns a discarding logger and a no-op closer
func New(path string, level slog.Level) (*slog.Logger, io.Closer, error) {
	if path == "" {
		return Discard(), nopCloser{}, nil
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return nil, nil, fmt.Errorf("open log file: %w", err)
	}
	h := slog.NewTextHandler(f, &slog.HandlerOptions{Level: level})
	return slog.New(h), f, nil
}

type nopCloser struct{}

func (nopCloser) Close() error { return nil }

// ParseLevel accepts debug, info, warn and error, case insensitive
func ParseLevel(s string) (slog.Level, error) {
	var l slog.Level
	if err := l.UnmarshalText([]byte(strings.TrimSpace(s))); err != nil {
		return slog.LevelInfo, fmt.Errorf("invalid log level %q", s)
	}
	return l, nil
}

// Throttled logs a recurring condition at most once per interval
// Used for transient I/O failures that would otherwise log every tick
type Throttled struct {
	log *slog.Logger
	s   rate.Sometimes
}

// NewThrottled wraps log, letting the first record through and then one per interval
func NewThrottled(log *slog.Logger, interval time.Duration) *Throttled {
	return &Throttled{
		log: log,
		s:   rate.Sometimes{First: 1, Interval: interval},
	}
}

// Warn logs at warning level when the interval allows it
func (t *Throttled) Warn(msg string, args ...any) {
	t.s.Do(func() {
		t.log.Warn(msg, args...)
	})
}
