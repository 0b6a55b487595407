package main

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"sync"
	"time"

	"github.com/rs/zerolog"
)

// Analytics event log: one JSON line per room lifecycle event, in daily
// files under the configured directory. Heavily capped so a hot room
// cannot fill the disk, and every failure is swallowed; analytics must
// never take the game server down with it.

const (
	eventRetentionDays   = 7
	maxEventsPerDay      = 20000
	maxEventsPerRoomMin  = 120
	eventCleanupInterval = 6 * time.Hour
)

var eventFilePattern = regexp.MustCompile(`^events-(\d{4}-\d{2}-\d{2})\.log$`)

type EventLog struct {
	mu sync.Mutex

	dir     string
	date    string
	file    *os.File
	logger  zerolog.Logger
	cleaned time.Time

	dayCount      int
	perRoomMinute map[string]int
}

// NewEventLog returns nil when no directory is configured; a nil log
// drops everything.
func NewEventLog(dir string) *EventLog {
	if dir == "" {
		return nil
	}
	return &EventLog{dir: dir, perRoomMinute: make(map[string]int)}
}

func (e *EventLog) Log(now time.Time, event, gameID, roomCode string, playerID int) {
	if e == nil {
		return
	}
	e.mu.Lock()
	defer e.mu.Unlock()

	if !e.rollover(now) {
		return
	}
	if !e.canLog(gameID, roomCode, now) {
		return
	}
	e.dayCount++

	entry := e.logger.Log().
		Time("ts", now).
		Str("event", event).
		Str("game", gameID).
		Str("room", roomCode)
	if playerID != 0 {
		entry = entry.Int("player", playerID)
	}
	entry.Send()
}

// rollover opens the current day's file, creating the directory on
// demand, and prunes expired files at most every few hours.
func (e *EventLog) rollover(now time.Time) bool {
	stamp := now.UTC().Format("2006-01-02")
	if e.date == stamp && e.file != nil {
		if now.Sub(e.cleaned) > eventCleanupInterval {
			e.cleanup(now)
		}
		return true
	}

	if err := os.MkdirAll(e.dir, 0o755); err != nil {
		LogEventLogFailure(err)
		return false
	}
	if e.file != nil {
		e.file.Close()
	}
	path := filepath.Join(e.dir, fmt.Sprintf("events-%s.log", stamp))
	file, err := os.OpenFile(path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		LogEventLogFailure(err)
		e.file = nil
		return false
	}

	e.date = stamp
	e.file = file
	e.logger = zerolog.New(file)
	e.dayCount = 0
	e.perRoomMinute = make(map[string]int)
	e.cleanup(now)
	return true
}

func (e *EventLog) canLog(gameID, roomCode string, now time.Time) bool {
	if e.dayCount >= maxEventsPerDay {
		return false
	}
	key := fmt.Sprintf("%s:%s:%d", gameID, roomCode, now.Unix()/60)
	e.perRoomMinute[key]++
	return e.perRoomMinute[key] <= maxEventsPerRoomMin
}

func (e *EventLog) cleanup(now time.Time) {
	e.cleaned = now
	entries, err := os.ReadDir(e.dir)
	if err != nil {
		return
	}
	cutoff := now.Add(-eventRetentionDays * 24 * time.Hour)
	for _, entry := range entries {
		m := eventFilePattern.FindStringSubmatch(entry.Name())
		if m == nil {
			continue
		}
		day, err := time.Parse("2006-01-02", m[1])
		if err != nil || !day.Before(cutoff) {
			continue
		}
		os.Remove(filepath.Join(e.dir, entry.Name()))
	}
}
