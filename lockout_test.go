package main

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLockoutLifecycle(t *testing.T) {
	path := filepath.Join(t.TempDir(), "lockouts.json")
	tracker := NewLockoutTracker(path)

	if !tracker.CanEnter("Aria", "Wolf Den") {
		t.Fatal("fresh tracker should allow entry")
	}
	if tracker.Remaining("Aria", "Wolf Den") != 0 {
		t.Error("fresh tracker should report zero remaining")
	}

	tracker.RecordCompletion("Aria", "Wolf Den", time.Hour)

	if tracker.CanEnter("Aria", "Wolf Den") {
		t.Error("entry should be locked immediately after completion")
	}
	remaining := tracker.Remaining("Aria", "Wolf Den")
	if remaining <= 0 || remaining > time.Hour {
		t.Errorf("Remaining = %v, want within (0, 1h]", remaining)
	}

	// Other characters and instances are unaffected.
	if !tracker.CanEnter("Brin", "Wolf Den") {
		t.Error("lockout leaked to another character")
	}
	if !tracker.CanEnter("Aria", "Spider Cave") {
		t.Error("lockout leaked to another instance")
	}
}

func TestLockoutExpiry(t *testing.T) {
	path := filepath.Join(t.TempDir(), "lockouts.json")
	tracker := NewLockoutTracker(path)

	// Expiry in the past.
	tracker.entries["Aria"] = map[string]time.Time{
		"Wolf Den": time.Now().Add(-time.Minute),
	}

	if !tracker.CanEnter("Aria", "Wolf Den") {
		t.Error("expired lockout should allow entry")
	}
	if tracker.Remaining("Aria", "Wolf Den") != 0 {
		t.Error("expired lockout should report zero remaining")
	}
}

func TestLockoutSaveLoadRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "lockouts.json")

	tracker := NewLockoutTracker(path)
	tracker.RecordCompletion("Aria", "Wolf Den", time.Hour)

	reloaded := NewLockoutTracker(path)
	if reloaded.CanEnter("Aria", "Wolf Den") {
		t.Error("lockout lost across save/load")
	}
}

func TestLockoutSavePrunesExpired(t *testing.T) {
	path := filepath.Join(t.TempDir(), "lockouts.json")
	tracker := NewLockoutTracker(path)

	tracker.entries["Aria"] = map[string]time.Time{
		"Wolf Den":    time.Now().Add(-time.Minute),
		"Spider Cave": time.Now().Add(time.Hour),
	}
	tracker.entries["Brin"] = map[string]time.Time{
		"Wolf Den": time.Now().Add(-time.Hour),
	}

	if err := tracker.Save(); err != nil {
		t.Fatalf("Save: %v", err)
	}

	raw, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read saved file: %v", err)
	}
	var saved map[string]map[string]time.Time
	if err := json.Unmarshal(raw, &saved); err != nil {
		t.Fatalf("saved file is not valid JSON: %v", err)
	}

	if _, ok := saved["Brin"]; ok {
		t.Error("character with only expired lockouts should be pruned")
	}
	if _, ok := saved["Aria"]["Wolf Den"]; ok {
		t.Error("expired lockout should be pruned on save")
	}
	if _, ok := saved["Aria"]["Spider Cave"]; !ok {
		t.Error("active lockout missing from saved file")
	}
}

func TestLockoutCorruptFileStartsEmpty(t *testing.T) {
	path := filepath.Join(t.TempDir(), "lockouts.json")
	if err := os.WriteFile(path, []byte("{not json"), 0666); err != nil {
		t.Fatal(err)
	}

	tracker := NewLockoutTracker(path)
	if !tracker.CanEnter("Aria", "Wolf Den") {
		t.Error("corrupt file should yield an empty tracker")
	}
}
