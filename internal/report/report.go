// Package report carries non-fatal warnings out of resolution.
package report

import (
	"log/slog"
	"sync"
)

// Reporter receives warnings. Implementations must not block resolution.
type Reporter interface {
	Warn(msg string)
}

// Discard drops every warning.
var Discard Reporter = discard{}

type discard struct{}

func (discard) Warn(string) {}

// Logger writes warnings to a slog logger at Warn level.
type Logger struct {
	log *slog.Logger
}

func NewLogger(log *slog.Logger) *Logger {
	return &Logger{log: log}
}

func (l *Logger) Warn(msg string) {
	l.log.Warn(msg)
}

// Collector keeps every warning it sees and optionally forwards them.
type Collector struct {
	mu       sync.Mutex
	warnings []string
	next     Reporter
}

// NewCollector returns a Collector forwarding to next, which may be nil.
func NewCollector(next Reporter) *Collector {
	return &Collector{next: next}
}

func (c *Collector) Warn(msg string) {
	c.mu.Lock()
	c.warnings = append(c.warnings, msg)
	c.mu.Unlock()
	if c.next != nil {
		c.next.Warn(msg)
	}
}

// Warnings returns a copy of the collected warnings.
func (c *Collector) Warnings() []string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]string(nil), c.warnings...)
}
