package diag

import (
	"fmt"
	"sync"

	"github.com/sirupsen/logrus"
)

// Sink receives non-fatal diagnostics emitted during generation. All
// recoverable conditions are reported here instead of being printed
// directly, so callers (and tests) decide where they end up.
type Sink interface {
	// Warnf reports a recoverable condition that changed the output
	// (skipped parameter, fallback type, near-empty record).
	Warnf(format string, args ...any)
	// Infof reports progress information.
	Infof(format string, args ...any)
	// Debugf reports detail only useful with verbose output enabled.
	Debugf(format string, args ...any)
}

// Nop discards all diagnostics. It is the default when no sink is wired.
type Nop struct{}

func (Nop) Warnf(string, ...any)  {}
func (Nop) Infof(string, ...any)  {}
func (Nop) Debugf(string, ...any) {}

var _ Sink = Nop{}

// Logrus adapts a *logrus.Logger to the Sink interface.
type Logrus struct {
	Logger *logrus.Logger
}

// NewLogrus returns a Sink backed by the given logger, falling back to
// the logrus standard logger when nil.
func NewLogrus(logger *logrus.Logger) *Logrus {
	if logger == nil {
		logger = logrus.StandardLogger()
	}
	return &Logrus{Logger: logger}
}

func (l *Logrus) Warnf(format string, args ...any)  { l.Logger.Warnf(format, args...) }
func (l *Logrus) Infof(format string, args ...any)  { l.Logger.Infof(format, args...) }
func (l *Logrus) Debugf(format string, args ...any) { l.Logger.Debugf(format, args...) }

var _ Sink = (*Logrus)(nil)

// Entry is a single recorded diagnostic.
type Entry struct {
	Level   string // "warn", "info" or "debug"
	Message string
}

// Recorder captures diagnostics in memory so tests can assert on them.
type Recorder struct {
	mu      sync.Mutex
	entries []Entry
}

func (r *Recorder) record(level, format string, args ...any) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.entries = append(r.entries, Entry{Level: level, Message: fmt.Sprintf(format, args...)})
}

func (r *Recorder) Warnf(format string, args ...any)  { r.record("warn", format, args...) }
func (r *Recorder) Infof(format string, args ...any)  { r.record("info", format, args...) }
func (r *Recorder) Debugf(format string, args ...any) { r.record("debug", format, args...) }

// Entries returns a copy of everything recorded so far.
func (r *Recorder) Entries() []Entry {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]Entry, len(r.entries))
	copy(out, r.entries)
	return out
}

// Warnings returns the messages of all recorded warnings, in order.
func (r *Recorder) Warnings() []string {
	var out []string
	for _, e := range r.Entries() {
		if e.Level == "warn" {
			out = append(out, e.Message)
		}
	}
	return out
}

var _ Sink = (*Recorder)(nil)
