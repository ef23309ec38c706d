// Package main - lockout.go
//
// This file implements instance lockout timers: per-character, per-instance
// cooldowns preventing repeat entry to a game activity until a timestamp
// elapses.
//
// Lifecycle:
//   - CanEnter is true for any (character, instance) pair with no recorded
//     expiry, or one whose expiry has passed
//   - RecordCompletion stores now + duration as the expiry; the pair is
//     locked out immediately afterwards
//   - expired entries are pruned on save
//
// Persisted as data/lockouts.json: {"character": {"instance": "RFC3339"}}.
// The file is rewritten on every change; at a handful of instances per
// character there is nothing to optimize.
package main

import (
	"encoding/json"
	"os"
	"path/filepath"
	"sync"
	"time"
)

// LockoutTracker tracks per-character instance lockout expiries.
type LockoutTracker struct {
	path    string
	entries map[string]map[string]time.Time
	mu      sync.Mutex
}

// NewLockoutTracker loads the tracker from path; a missing or corrupt file
// starts empty (logged, never fatal).
func NewLockoutTracker(path string) *LockoutTracker {
	lt := &LockoutTracker{
		path:    path,
		entries: make(map[string]map[string]time.Time),
	}

	raw, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return lt
	}
	if err != nil {
		LogError("Failed to read lockout file: %v", err)
		return lt
	}
	if err := json.Unmarshal(raw, &lt.entries); err != nil {
		LogError("Failed to parse lockout file, starting empty: %v", err)
		lt.entries = make(map[string]map[string]time.Time)
	}
	return lt
}

// CanEnter reports whether the character may enter the instance now.
func (lt *LockoutTracker) CanEnter(character, instance string) bool {
	lt.mu.Lock()
	defer lt.mu.Unlock()

	expiry, ok := lt.entries[character][instance]
	if !ok {
		return true
	}
	return time.Now().After(expiry)
}

// Remaining returns the time left on a lockout, zero when enterable.
func (lt *LockoutTracker) Remaining(character, instance string) time.Duration {
	lt.mu.Lock()
	defer lt.mu.Unlock()

	expiry, ok := lt.entries[character][instance]
	if !ok {
		return 0
	}
	remaining := time.Until(expiry)
	if remaining < 0 {
		return 0
	}
	return remaining
}

// RecordCompletion locks the character out of the instance for duration,
// starting now, and persists the change.
func (lt *LockoutTracker) RecordCompletion(character, instance string, duration time.Duration) {
	lt.mu.Lock()
	if lt.entries[character] == nil {
		lt.entries[character] = make(map[string]time.Time)
	}
	expiry := time.Now().Add(duration)
	lt.entries[character][instance] = expiry
	lt.mu.Unlock()

	LogInfo("Lockout recorded: %s/%s until %s", character, instance, expiry.Format(time.RFC3339))
	if err := lt.Save(); err != nil {
		LogError("Failed to save lockouts: %v", err)
	}
}

// Save prunes expired entries and rewrites the lockout file.
func (lt *LockoutTracker) Save() error {
	lt.mu.Lock()
	now := time.Now()
	for character, instances := range lt.entries {
		for instance, expiry := range instances {
			if now.After(expiry) {
				delete(instances, instance)
			}
		}
		if len(instances) == 0 {
			delete(lt.entries, character)
		}
	}
	raw, err := json.MarshalIndent(lt.entries, "", "  ")
	lt.mu.Unlock()
	if err != nil {
		return err
	}

	if err := os.MkdirAll(filepath.Dir(lt.path), 0755); err != nil {
		return err
	}
	return os.WriteFile(lt.path, raw, 0666)
}

// DefaultLockoutPath returns the default lockout file location.
func DefaultLockoutPath() string {
	return filepath.Join(dataDir, "lockouts.json")
}
