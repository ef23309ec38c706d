// Package main - quest.go
//
// This file implements the Quest behavior: dialogue progression through NPC
// conversations, quest offers and turn-ins.
//
// State Machine States:
//   - Idle: no dialogue on screen
//   - Responding: a dialogue was classified this cycle and its handler ran
//   - Waiting: a dialogue was handled recently, waiting for the screen to
//     settle before trusting the next classification
//
// Most of the actual responding is the dispatcher's job (canned responses
// bound from the pattern registry). This behavior layers the bookkeeping on
// top: loot records parsed from loot windows, lockout recording on quest
// completion inside a known instance, and a lockout guard that backs out of
// quest offers for instances the character cannot enter yet.
package main

import (
	"regexp"
	"strconv"
	"strings"
	"time"
)

// settleDelay is how long the screen gets to settle after a handled dialogue
// before the next classification is trusted.
const settleDelay = 1500 * time.Millisecond

// lootReceived matches loot lines like "You receive 3x Wolf Pelt" or
// "You loot Rusted Dagger".
var lootReceived = regexp.MustCompile(`(?i)you\s+(?:receive|loot|obtain)\s+(?:(\d+)x?\s+)?([A-Za-z][\w' -]{2,40})`)

// QuestState represents the current state of the quest behavior
type QuestState int

const (
	QuestStateIdle QuestState = iota
	QuestStateResponding
	QuestStateWaiting
)

// String returns the string representation of the state
func (s QuestState) String() string {
	switch s {
	case QuestStateIdle:
		return "Idle"
	case QuestStateResponding:
		return "Responding"
	case QuestStateWaiting:
		return "Waiting"
	default:
		return "Unknown"
	}
}

// QuestBehavior drives dialogue progression with loot and lockout bookkeeping.
type QuestBehavior struct {
	state       QuestState
	lastHandled time.Time

	lockouts *LockoutTracker
	loot     *LootLogger
	notifier *DiscordNotifier
}

// NewQuestBehavior creates a quest behavior over the shared services.
func NewQuestBehavior(lockouts *LockoutTracker, loot *LootLogger, notifier *DiscordNotifier) *QuestBehavior {
	return &QuestBehavior{
		state:    QuestStateIdle,
		lockouts: lockouts,
		loot:     loot,
		notifier: notifier,
	}
}

// GetState returns the current state name
func (qb *QuestBehavior) GetState() string {
	return qb.state.String()
}

// Stop resets behavior state
func (qb *QuestBehavior) Stop() {
	qb.state = QuestStateIdle
}

// Attach registers quest bookkeeping handlers on a fresh dispatcher.
// Called once per mode activation, after BindResponses.
func (qb *QuestBehavior) Attach(dispatcher *ActionDispatcher, registry *PatternRegistry, input *InputController, config *Config, stats *SessionStats) {
	// Quest offers get a lockout guard in front of the canned response:
	// offers that would re-enter a locked instance are declined with escape.
	if pattern, ok := registry.Get(StateQuestOffer); ok {
		canned := ResponseHandler(input, pattern.Response)
		dispatcher.Register(StateQuestOffer, func(rec *DetectedDialogue) error {
			if instance, locked := qb.lockedInstance(rec.Text, config); locked {
				remaining := qb.lockouts.Remaining(config.CharacterName, instance)
				LogInfo("Declining quest offer for %q, locked out for %s", instance, FormatDuration(remaining))
				return input.PressKey("escape")
			}
			return canned(rec)
		})
	}

	// Quest completion inside a known instance starts its lockout.
	dispatcher.Wrap(StateQuestComplete, func(rec *DetectedDialogue) error {
		for instance, hours := range config.LockoutHours {
			if hours > 0 && containsFold(rec.Text, instance) {
				qb.lockouts.RecordCompletion(config.CharacterName, instance, time.Duration(hours)*time.Hour)
			}
		}
		return nil
	})

	// Loot windows feed the loot log.
	dispatcher.Wrap(StateLootWindow, func(rec *DetectedDialogue) error {
		for _, lootRec := range ParseLootLines(rec.Text) {
			lootRec.Source = rec.State
			if err := qb.loot.Record(lootRec); err != nil {
				LogError("Failed to record loot: %v", err)
				continue
			}
			stats.AddLoot()
			qb.notifier.NotifyLoot(lootRec)
		}
		return nil
	})
}

// Run executes one iteration of quest behavior. rec is the current cycle's
// detection (may be nil), dispatched reports whether its handler ran.
func (qb *QuestBehavior) Run(rec *DetectedDialogue, dispatched bool, detector *DialogueDetector, input *InputController, config *Config, stats *SessionStats) error {
	switch {
	case dispatched:
		qb.state = QuestStateResponding
		qb.lastHandled = time.Now()
	case rec != nil && rec.State != "":
		// Dialogue still on screen, handler suppressed; keep waiting.
		qb.state = QuestStateWaiting
	case time.Since(qb.lastHandled) < settleDelay:
		qb.state = QuestStateWaiting
	default:
		qb.state = QuestStateIdle
	}
	return nil
}

// lockedInstance returns the first configured instance mentioned in the
// dialogue text that the character is still locked out of.
func (qb *QuestBehavior) lockedInstance(text string, config *Config) (string, bool) {
	for instance := range config.LockoutHours {
		if containsFold(text, instance) && !qb.lockouts.CanEnter(config.CharacterName, instance) {
			return instance, true
		}
	}
	return "", false
}

// ParseLootLines extracts loot records from loot window text.
func ParseLootLines(text string) []LootRecord {
	var records []LootRecord
	for _, line := range strings.Split(text, "\n") {
		m := lootReceived.FindStringSubmatch(line)
		if m == nil {
			continue
		}
		quantity := 1
		if m[1] != "" {
			if n, err := strconv.Atoi(m[1]); err == nil && n > 0 {
				quantity = n
			}
		}
		records = append(records, LootRecord{
			Item:      strings.TrimSpace(m[2]),
			Quantity:  quantity,
			Timestamp: time.Now(),
		})
	}
	return records
}

func containsFold(haystack, needle string) bool {
	return strings.Contains(strings.ToLower(haystack), strings.ToLower(needle))
}
