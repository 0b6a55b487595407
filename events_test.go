package main

import (
	"bufio"
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"
)

func countLines(t *testing.T, path string) int {
	t.Helper()
	file, err := os.Open(path)
	if err != nil {
		t.Fatalf("open log: %v", err)
	}
	defer file.Close()
	n := 0
	scanner := bufio.NewScanner(file)
	for scanner.Scan() {
		n++
	}
	return n
}

func TestEventLogWritesJSONLines(t *testing.T) {
	dir := t.TempDir()
	events := NewEventLog(dir)
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

	events.Log(now, "room_created", "maze", "4821", 1)
	events.Log(now, "room_expired", "maze", "4821", 0)

	path := filepath.Join(dir, "events-2025-06-01.log")
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("log file missing: %v", err)
	}

	var first map[string]any
	firstLine := data
	if i := bytes.IndexByte(firstLine, '\n'); i >= 0 {
		firstLine = firstLine[:i]
	}
	if err := json.Unmarshal(firstLine, &first); err != nil {
		t.Fatalf("line is not json: %v", err)
	}
	if first["event"] != "room_created" || first["room"] != "4821" {
		t.Errorf("unexpected line: %v", first)
	}
	if first["player"] != float64(1) {
		t.Errorf("expected player 1, got %v", first["player"])
	}
	if countLines(t, path) != 2 {
		t.Errorf("expected 2 lines")
	}
}

func TestEventLogCapsPerRoomPerMinute(t *testing.T) {
	dir := t.TempDir()
	events := NewEventLog(dir)
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

	for i := 0; i < maxEventsPerRoomMin+40; i++ {
		events.Log(now, "player_joined", "snake", "1111", 1)
	}
	// A different room in the same minute is unaffected.
	events.Log(now, "room_created", "snake", "2222", 1)

	path := filepath.Join(dir, "events-2025-06-01.log")
	if got := countLines(t, path); got != maxEventsPerRoomMin+1 {
		t.Errorf("expected %d lines, got %d", maxEventsPerRoomMin+1, got)
	}
}

func TestNilEventLogDropsEverything(t *testing.T) {
	var events *EventLog
	events.Log(time.Now(), "room_created", "maze", "1234", 1)
}
