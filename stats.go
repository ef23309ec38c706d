// Package main - stats.go
//
// This file implements session statistics: simple counters over the current
// run (detections, dispatched actions, kills, loot drops, whispers) plus
// uptime. The tray status line and the Discord session summary read from
// here, and ExportSummary produces the JSON session log.
package main

import (
	"encoding/json"
	"sync"
	"time"
)

// SessionStats holds runtime counters for the current session.
type SessionStats struct {
	startTime  time.Time
	detections int
	dispatches int
	kills      int
	lootDrops  int
	whispers   int
	lastState  string
	mu         sync.RWMutex
}

// StatsSnapshot is an immutable copy of the counters, JSON round-trippable.
type StatsSnapshot struct {
	StartTime  time.Time `json:"start_time"`
	Uptime     string    `json:"uptime"`
	Detections int       `json:"detections"`
	Dispatches int       `json:"dispatches"`
	Kills      int       `json:"kills"`
	LootDrops  int       `json:"loot_drops"`
	Whispers   int       `json:"whispers"`
	LastState  string    `json:"last_state,omitempty"`
}

// NewSessionStats creates stats anchored at now.
func NewSessionStats() *SessionStats {
	return &SessionStats{startTime: time.Now()}
}

// AddDetection records one classified state.
func (s *SessionStats) AddDetection(state string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.detections++
	s.lastState = state
}

// AddDispatch records one executed handler.
func (s *SessionStats) AddDispatch() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.dispatches++
}

// AddKill records one kill.
func (s *SessionStats) AddKill() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.kills++
}

// AddLoot records one loot drop.
func (s *SessionStats) AddLoot() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.lootDrops++
}

// AddWhisper records one received whisper.
func (s *SessionStats) AddWhisper() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.whispers++
}

// Snapshot returns a copy of the current counters.
func (s *SessionStats) Snapshot() StatsSnapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return StatsSnapshot{
		StartTime:  s.startTime,
		Uptime:     FormatDuration(time.Since(s.startTime)),
		Detections: s.detections,
		Dispatches: s.dispatches,
		Kills:      s.kills,
		LootDrops:  s.lootDrops,
		Whispers:   s.whispers,
		LastState:  s.lastState,
	}
}

// ExportSummary returns the session counters as indented JSON.
func (s *SessionStats) ExportSummary() ([]byte, error) {
	return json.MarshalIndent(s.Snapshot(), "", "  ")
}
