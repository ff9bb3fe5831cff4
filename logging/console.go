package logging

import (
	"log/slog"
	"sort"
	"sync"
	"time"
)

// DefaultConsoleLines is how many entries a session's console keeps.
const DefaultConsoleLines = 200

// LogEntry represents a single captured log record.
type LogEntry struct {
	Time       time.Time      `json:"time"`
	Level      string         `json:"level"`
	Message    string         `json:"message"`
	Attributes map[string]any `json:"attributes,omitempty"`
}

// Console keeps a bounded trace of log entries per session. It is what the
// debug console shows for a browser.
type Console struct {
	mu       sync.RWMutex
	maxLines int
	sessions map[string][]LogEntry
}

// NewConsole creates a Console that keeps at most maxLines entries per
// session. maxLines <= 0 uses DefaultConsoleLines.
func NewConsole(maxLines int) *Console {
	if maxLines <= 0 {
		maxLines = DefaultConsoleLines
	}
	return &Console{
		maxLines: maxLines,
		sessions: make(map[string][]LogEntry),
	}
}

// Add appends an entry to the session's trace, dropping the oldest entry
// once the trace is full.
func (c *Console) Add(sessionID string, entry LogEntry) {
	c.mu.Lock()
	defer c.mu.Unlock()

	lines := append(c.sessions[sessionID], entry)
	if over := len(lines) - c.maxLines; over > 0 {
		lines = append(lines[:0:0], lines[over:]...)
	}
	c.sessions[sessionID] = lines
}

// Lines returns a copy of the session's trace, oldest first.
func (c *Console) Lines(sessionID string) []LogEntry {
	c.mu.RLock()
	defer c.mu.RUnlock()

	lines, ok := c.sessions[sessionID]
	if !ok {
		return nil
	}
	result := make([]LogEntry, len(lines))
	copy(result, lines)
	return result
}

// Sessions returns the ids of every session with a trace, sorted.
func (c *Console) Sessions() []string {
	c.mu.RLock()
	defer c.mu.RUnlock()

	ids := make([]string, 0, len(c.sessions))
	for id := range c.sessions {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// Remove drops the session's trace.
func (c *Console) Remove(sessionID string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.sessions, sessionID)
}

// LoggerForSession wraps base so that every record is also captured in the
// session's trace. Records are tagged with a session attribute.
func (c *Console) LoggerForSession(base *slog.Logger, sessionID string) *slog.Logger {
	return slog.New(NewCapturingHandler(base.Handler(), c, sessionID)).With("session", sessionID)
}
