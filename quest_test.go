package main

import (
	"path/filepath"
	"testing"
	"time"
)

func TestParseLootLines(t *testing.T) {
	text := "You receive 3x Wolf Pelt\n" +
		"You loot Rusted Dagger\n" +
		"You obtain 12 Silk Thread\n" +
		"Mira receives Wolf Pelt\n" +
		"some scenery text"

	records := ParseLootLines(text)
	if len(records) != 3 {
		t.Fatalf("parsed %d records, want 3: %+v", len(records), records)
	}

	tests := []struct {
		item     string
		quantity int
	}{
		{"Wolf Pelt", 3},
		{"Rusted Dagger", 1},
		{"Silk Thread", 12},
	}
	for i, want := range tests {
		if records[i].Item != want.item {
			t.Errorf("record[%d].Item = %q, want %q", i, records[i].Item, want.item)
		}
		if records[i].Quantity != want.quantity {
			t.Errorf("record[%d].Quantity = %d, want %d", i, records[i].Quantity, want.quantity)
		}
	}
}

func TestParseLootLinesEmpty(t *testing.T) {
	if records := ParseLootLines("nothing lootable here"); records != nil {
		t.Errorf("parsed %v from non-loot text", records)
	}
}

func newTestQuestBehavior(t *testing.T) *QuestBehavior {
	t.Helper()
	dir := t.TempDir()
	lockouts := NewLockoutTracker(filepath.Join(dir, "lockouts.json"))
	loot := NewLootLogger(dir)
	notifier := NewDiscordNotifier("")
	return NewQuestBehavior(lockouts, loot, notifier)
}

func TestQuestBehaviorStateTransitions(t *testing.T) {
	qb := newTestQuestBehavior(t)
	config := NewConfig()

	if qb.GetState() != "Idle" {
		t.Errorf("initial state = %q, want Idle", qb.GetState())
	}

	// A dispatched dialogue moves to Responding.
	rec := &DetectedDialogue{State: StateQuestOffer, Text: "1. Accept"}
	if err := qb.Run(rec, true, nil, nil, config, NewSessionStats()); err != nil {
		t.Fatalf("Run: %v", err)
	}
	if qb.GetState() != "Responding" {
		t.Errorf("state = %q, want Responding", qb.GetState())
	}

	// Same dialogue, handler suppressed: Waiting.
	if err := qb.Run(rec, false, nil, nil, config, NewSessionStats()); err != nil {
		t.Fatalf("Run: %v", err)
	}
	if qb.GetState() != "Waiting" {
		t.Errorf("state = %q, want Waiting", qb.GetState())
	}

	// Screen cleared but within the settle window: still Waiting.
	if err := qb.Run(nil, false, nil, nil, config, NewSessionStats()); err != nil {
		t.Fatalf("Run: %v", err)
	}
	if qb.GetState() != "Waiting" {
		t.Errorf("state = %q, want Waiting during settle", qb.GetState())
	}

	// Settle window elapsed: Idle.
	qb.lastHandled = time.Now().Add(-2 * settleDelay)
	if err := qb.Run(nil, false, nil, nil, config, NewSessionStats()); err != nil {
		t.Fatalf("Run: %v", err)
	}
	if qb.GetState() != "Idle" {
		t.Errorf("state = %q, want Idle after settle", qb.GetState())
	}
}

func TestQuestLockedInstance(t *testing.T) {
	qb := newTestQuestBehavior(t)
	config := NewConfig()
	config.CharacterName = "Aria"
	config.LockoutHours = map[string]int{"Wolf Den": 20, "Spider Cave": 20}

	text := "Enter the Wolf Den and cull the pack?\n1. Accept\n2. Decline"

	if instance, locked := qb.lockedInstance(text, config); locked {
		t.Errorf("no completion recorded yet, got locked instance %q", instance)
	}

	qb.lockouts.RecordCompletion("Aria", "Wolf Den", 20*time.Hour)

	instance, locked := qb.lockedInstance(text, config)
	if !locked {
		t.Fatal("instance should be locked after completion")
	}
	if instance != "Wolf Den" {
		t.Errorf("locked instance = %q, want Wolf Den", instance)
	}

	// Text mentioning only an unlocked instance stays enterable.
	if _, locked := qb.lockedInstance("Clear the Spider Cave?", config); locked {
		t.Error("Spider Cave has no lockout and should be enterable")
	}
}

func TestContainsFold(t *testing.T) {
	if !containsFold("Enter the WOLF DEN now", "wolf den") {
		t.Error("containsFold should be case-insensitive")
	}
	if containsFold("Wolf Den", "spider cave") {
		t.Error("containsFold matched an absent needle")
	}
}
