// Package report writes a per-cycle JSONL audit log of refresh events.
package report

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"
)

// EventType represents the type of event
type EventType string

const (
	EventRebuild EventType = "rebuild"
	EventResolve EventType = "resolve"
	EventDetail  EventType = "detail"
	EventSkip    EventType = "skip"
	EventError   EventType = "error"
)

// EventLevel represents the severity level
type EventLevel string

const (
	LevelDebug   EventLevel = "debug"
	LevelInfo    EventLevel = "info"
	LevelWarning EventLevel = "warning"
	LevelError   EventLevel = "error"
)

var levelPriority = map[EventLevel]int{
	LevelDebug:   0,
	LevelInfo:    1,
	LevelWarning: 2,
	LevelError:   3,
}

// Event represents a single event in a refresh cycle
type Event struct {
	Timestamp time.Time  `json:"ts"`
	Level     EventLevel `json:"level"`
	Event     EventType  `json:"event"`
	Title     string     `json:"title,omitempty"`
	FeedID    int64      `json:"feed_id,omitempty"`
	Score     float64    `json:"score,omitempty"`
	Exact     bool       `json:"exact,omitempty"`
	Stage     string     `json:"stage,omitempty"`
	Reason    string     `json:"reason,omitempty"`
	Error     string     `json:"error,omitempty"`
}

// EventLogger writes events to a JSONL file.
// A nil logger is valid and discards everything.
type EventLogger struct {
	file     *os.File
	encoder  *json.Encoder
	mu       sync.Mutex
	path     string
	minLevel EventLevel
}

// NewEventLogger creates a new event logger with a minimum log level
func NewEventLogger(outputDir string, minLevel EventLevel) (*EventLogger, error) {
	if err := os.MkdirAll(outputDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create output directory: %w", err)
	}

	timestamp := time.Now().Format("20060102-150405")
	path := filepath.Join(outputDir, fmt.Sprintf("refresh-%s.jsonl", timestamp))

	file, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("failed to create event log: %w", err)
	}

	return &EventLogger{
		file:     file,
		encoder:  json.NewEncoder(file),
		path:     path,
		minLevel: minLevel,
	}, nil
}

// Log writes an event to the JSONL file
func (l *EventLogger) Log(event *Event) error {
	if l == nil || l.file == nil {
		return nil
	}

	if levelPriority[event.Level] < levelPriority[l.minLevel] {
		return nil
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now()
	}

	if err := l.encoder.Encode(event); err != nil {
		return fmt.Errorf("failed to encode event: %w", err)
	}

	return nil
}

// LogRebuild logs the start-of-cycle snapshot clear
func (l *EventLogger) LogRebuild(titleCount int) error {
	return l.Log(&Event{
		Level:  LevelInfo,
		Event:  EventRebuild,
		Reason: fmt.Sprintf("%d distinct titles", titleCount),
	})
}

// LogResolve logs a resolution outcome; feedID 0 means no confident match
func (l *EventLogger) LogResolve(title string, feedID int64, score float64, exact bool) error {
	level := LevelInfo
	reason := ""
	if feedID == 0 {
		level = LevelWarning
		reason = "no confident match"
	}
	return l.Log(&Event{
		Level:  level,
		Event:  EventResolve,
		Title:  title,
		FeedID: feedID,
		Score:  score,
		Exact:  exact,
		Reason: reason,
	})
}

// LogDetail logs a detail-fetch outcome
func (l *EventLogger) LogDetail(title string, feedID int64, err error) error {
	level := LevelInfo
	errMsg := ""
	if err != nil {
		level = LevelError
		errMsg = err.Error()
	}
	return l.Log(&Event{
		Level:  level,
		Event:  EventDetail,
		Title:  title,
		FeedID: feedID,
		Error:  errMsg,
	})
}

// LogSkip logs a title skipped before resolution
func (l *EventLogger) LogSkip(title, reason string) error {
	return l.Log(&Event{
		Level:  LevelDebug,
		Event:  EventSkip,
		Title:  title,
		Reason: reason,
	})
}

// LogError logs a per-title failure
func (l *EventLogger) LogError(title, stage string, err error) error {
	return l.Log(&Event{
		Level: LevelError,
		Event: EventError,
		Title: title,
		Stage: stage,
		Error: err.Error(),
	})
}

// Close flushes and closes the event log
func (l *EventLogger) Close() error {
	if l == nil || l.file == nil {
		return nil
	}
	return l.file.Close()
}

// Path returns the event log file path
func (l *EventLogger) Path() string {
	if l == nil {
		return ""
	}
	return l.path
}
