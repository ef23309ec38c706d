// Package main - combat.go
//
// This file implements the Combat behavior: reading the target nameplate
// text, cycling attack keys, and the weapon-swap heuristic.
//
// State Machine States:
//   - Scanning: no target text readable
//   - Engaging: target present, attack keys cycling
//   - Recovering: player health below the retreat threshold
//
// Health values come from OCR over the nameplate regions ("Wolf 57%",
// "HP 43%"); a percentage that fails to parse is treated as unknown and the
// behavior keeps its previous assessment for that cycle.
package main

import (
	"regexp"
	"strconv"
	"time"
)

// percentValue pulls the first 0-100 percentage out of nameplate text.
var percentValue = regexp.MustCompile(`(\d{1,3})\s*%`)

// swapCooldown prevents weapon-swap spam while the target hovers around
// the threshold.
const swapCooldown = 10 * time.Second

// CombatState represents the current state of the combat behavior
type CombatState int

const (
	CombatStateScanning CombatState = iota
	CombatStateEngaging
	CombatStateRecovering
)

// String returns the string representation of the state
func (s CombatState) String() string {
	switch s {
	case CombatStateScanning:
		return "Scanning"
	case CombatStateEngaging:
		return "Engaging"
	case CombatStateRecovering:
		return "Recovering"
	default:
		return "Unknown"
	}
}

// CombatBehavior cycles attack keys against the current target.
type CombatBehavior struct {
	state       CombatState
	attackIndex int
	hadTarget   bool
	lastSwap    time.Time
	attackPace  *RateLimiter
}

// NewCombatBehavior creates a combat behavior.
func NewCombatBehavior() *CombatBehavior {
	return &CombatBehavior{
		state:      CombatStateScanning,
		attackPace: NewRateLimiter(1200 * time.Millisecond),
	}
}

// GetState returns the current state name
func (cb *CombatBehavior) GetState() string {
	return cb.state.String()
}

// Stop resets behavior state
func (cb *CombatBehavior) Stop() {
	cb.state = CombatStateScanning
	cb.hadTarget = false
}

// Attach is a no-op: combat adds no dialogue handlers beyond the canned
// responses already bound from the registry.
func (cb *CombatBehavior) Attach(dispatcher *ActionDispatcher, registry *PatternRegistry, input *InputController, config *Config, stats *SessionStats) {
}

// Run executes one iteration of combat behavior.
func (cb *CombatBehavior) Run(rec *DetectedDialogue, dispatched bool, detector *DialogueDetector, input *InputController, config *Config, stats *SessionStats) error {
	// Player health check first: retreat overrides everything.
	if hp, ok := cb.readPercent(detector, config.PlayerRegion); ok && hp <= config.RetreatThreshold {
		cb.state = CombatStateRecovering
		LogWarn("Player health %d%% below retreat threshold %d%%", hp, config.RetreatThreshold)
		return input.PressKey(config.RetreatKey)
	}
	if cb.state == CombatStateRecovering {
		cb.state = CombatStateScanning
	}

	targetHP, hasTarget := cb.readPercent(detector, config.TargetRegion)
	if !hasTarget {
		if cb.hadTarget {
			// Target text vanished after engagement: count the kill.
			stats.AddKill()
			LogInfo("Target lost after engagement, counting kill")
		}
		cb.hadTarget = false
		cb.state = CombatStateScanning
		return nil
	}

	cb.state = CombatStateEngaging
	cb.hadTarget = true

	if targetHP <= config.WeaponSwapThreshold && time.Since(cb.lastSwap) > swapCooldown && config.WeaponSwapKey != "" {
		cb.lastSwap = time.Now()
		LogInfo("Target at %d%%, swapping weapons", targetHP)
		if err := input.PressKey(config.WeaponSwapKey); err != nil {
			return err
		}
	}

	if cb.attackPace.Allow() && len(config.AttackKeys) > 0 {
		key := config.AttackKeys[cb.attackIndex%len(config.AttackKeys)]
		cb.attackIndex++
		return input.PressKey(key)
	}
	return nil
}

// readPercent OCRs a region and extracts a 0-100 percentage, if any.
func (cb *CombatBehavior) readPercent(detector *DialogueDetector, region Region) (int, bool) {
	if region.Empty() {
		return 0, false
	}
	text, err := detector.ReadRegion(region)
	if err != nil {
		LogDebug("Nameplate read failed: %v", err)
		return 0, false
	}

	m := percentValue.FindStringSubmatch(text)
	if m == nil {
		return 0, false
	}
	value, err := strconv.Atoi(m[1])
	if err != nil || value > 100 {
		return 0, false
	}
	return value, true
}
