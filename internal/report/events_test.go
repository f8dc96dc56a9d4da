package report

import (
	"bufio"
	"encoding/json"
	"errors"
	"os"
	"testing"
)

func TestEventLoggerWritesJSONL(t *testing.T) {
	logger, err := NewEventLogger(t.TempDir(), LevelInfo)
	if err != nil {
		t.Fatalf("failed to create logger: %v", err)
	}

	if err := logger.LogRebuild(2); err != nil {
		t.Fatalf("log rebuild failed: %v", err)
	}
	if err := logger.LogResolve("The Daily", 920666, 1.0, true); err != nil {
		t.Fatalf("log resolve failed: %v", err)
	}
	if err := logger.LogResolve("NoSuchShow123", 0, 0.41, false); err != nil {
		t.Fatalf("log miss failed: %v", err)
	}
	if err := logger.LogError("Morbid", "detail", errors.New("boom")); err != nil {
		t.Fatalf("log error failed: %v", err)
	}
	if err := logger.Close(); err != nil {
		t.Fatalf("close failed: %v", err)
	}

	file, err := os.Open(logger.Path())
	if err != nil {
		t.Fatalf("failed to open log: %v", err)
	}
	defer file.Close()

	var events []Event
	scanner := bufio.NewScanner(file)
	for scanner.Scan() {
		var e Event
		if err := json.Unmarshal(scanner.Bytes(), &e); err != nil {
			t.Fatalf("invalid JSONL line %q: %v", scanner.Text(), err)
		}
		events = append(events, e)
	}

	if len(events) != 4 {
		t.Fatalf("expected 4 events, got %d", len(events))
	}
	if events[1].Event != EventResolve || events[1].FeedID != 920666 || !events[1].Exact {
		t.Errorf("unexpected resolve event: %+v", events[1])
	}
	if events[2].Level != LevelWarning || events[2].Reason != "no confident match" {
		t.Errorf("unexpected miss event: %+v", events[2])
	}
	if events[3].Stage != "detail" || events[3].Error != "boom" {
		t.Errorf("unexpected error event: %+v", events[3])
	}
}

func TestEventLoggerFiltersByLevel(t *testing.T) {
	logger, err := NewEventLogger(t.TempDir(), LevelWarning)
	if err != nil {
		t.Fatalf("failed to create logger: %v", err)
	}

	if err := logger.LogSkip("  ", "empty title"); err != nil { // debug, filtered
		t.Fatalf("log skip failed: %v", err)
	}
	if err := logger.LogResolve("The Daily", 1, 1, true); err != nil { // info, filtered
		t.Fatalf("log resolve failed: %v", err)
	}
	if err := logger.LogError("Morbid", "store", errors.New("boom")); err != nil {
		t.Fatalf("log error failed: %v", err)
	}
	logger.Close()

	data, err := os.ReadFile(logger.Path())
	if err != nil {
		t.Fatalf("failed to read log: %v", err)
	}

	var e Event
	if err := json.Unmarshal(data, &e); err != nil {
		t.Fatalf("expected exactly one JSON line, got %q", data)
	}
	if e.Event != EventError {
		t.Errorf("expected only the error event, got %+v", e)
	}
}

func TestNilEventLoggerIsSafe(t *testing.T) {
	var logger *EventLogger

	if err := logger.LogResolve("x", 1, 1, true); err != nil {
		t.Errorf("nil logger Log returned error: %v", err)
	}
	if err := logger.Close(); err != nil {
		t.Errorf("nil logger Close returned error: %v", err)
	}
	if logger.Path() != "" {
		t.Errorf("nil logger Path should be empty")
	}
}
