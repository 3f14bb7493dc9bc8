// Package history keeps an optional log of installer runs in BoltDB.
// Nothing in the update decision reads it.
package history

import (
	"fmt"
	"time"
)

// Entry represents a single installer run.
type Entry struct {
	ID        string    `json:"id"`
	Timestamp time.Time `json:"timestamp"`
	Action    string    `json:"action"`         // install, update, replace or download
	From      string    `json:"from,omitempty"` // empty when nothing was installed
	To        string    `json:"to"`
	Package   string    `json:"package"`
	Platform  string    `json:"platform"`
	DryRun    bool      `json:"dry_run,omitempty"`
	Success   bool      `json:"success"`
	Error     string    `json:"error,omitempty"`
}

// NewEntry creates a new history entry.
func NewEntry(action, from, to, pkg, platform string) *Entry {
	now := time.Now()
	return &Entry{
		ID:        generateID(now),
		Timestamp: now,
		Action:    action,
		From:      from,
		To:        to,
		Package:   pkg,
		Platform:  platform,
	}
}

// MarkSuccess marks the entry as successful.
func (e *Entry) MarkSuccess() {
	e.Success = true
	e.Error = ""
}

// MarkFailed marks the entry as failed with an error message.
func (e *Entry) MarkFailed(err error) {
	e.Success = false
	if err != nil {
		e.Error = err.Error()
	}
}

func generateID(t time.Time) string {
	return t.Format("20060102150405.000000")
}

// FormatTime returns a human-readable timestamp.
func (e *Entry) FormatTime() string {
	return e.Timestamp.Format("2006-01-02 15:04:05")
}

// Status is "success", "failed" or "dry-run".
func (e *Entry) Status() string {
	switch {
	case e.DryRun:
		return "dry-run"
	case e.Success:
		return "success"
	default:
		return "failed"
	}
}

// Transition renders the version change, e.g. "V7.92k -> V7.94a".
func (e *Entry) Transition() string {
	if e.From == "" {
		return e.To
	}
	return fmt.Sprintf("%s -> %s", e.From, e.To)
}

// Summary returns a brief summary of the run.
func (e *Entry) Summary() string {
	return fmt.Sprintf("%s %s %s [%s] (%s)", e.FormatTime(), e.Action, e.Transition(), e.Platform, e.Status())
}
