// Package main - patterns.go
//
// This file implements the dialogue/state pattern registry: the lookup table
// that turns noisy OCR text into a named UI state.
//
// A StatePattern couples a state name with the evidence required to claim it:
//   - Phrases: substrings that must appear in the OCR text (case-insensitive).
//     The registry's match ratio controls how many are required; 1.0 means
//     all of them, lower values tolerate OCR dropouts.
//   - Patterns: optional regular expressions that must ALL match, used when
//     a substring is too weak (e.g. distinguishing "quest complete" from
//     "quest completed by another party member").
//   - Priority: higher-priority states win when several match the same text.
//   - Response: the canned action dispatched when the state is detected.
//
// The registry ships with built-in states for the common game prompts and can
// be extended or overridden from a JSON pattern file under data/.
package main

import (
	"encoding/json"
	"fmt"
	"os"
	"regexp"
	"sort"
	"strings"
	"sync"
)

// StateResponse describes the canned action bound to a detected state.
// Exactly one of Key, ClickOption or Click is normally set.
type StateResponse struct {
	Key         string `json:"key,omitempty"`          // keyboard key to tap
	ClickOption int    `json:"click_option,omitempty"` // dialogue option number to click (1-based)
	Click       *Point `json:"click,omitempty"`        // absolute screen point to click
	DelayMs     int    `json:"delay_ms,omitempty"`     // pause before acting
}

// Empty reports whether the response carries no action.
func (r StateResponse) Empty() bool {
	return r.Key == "" && r.ClickOption == 0 && r.Click == nil
}

// StatePattern is one registry entry: state name -> required evidence.
type StatePattern struct {
	Name     string        `json:"name"`
	Phrases  []string      `json:"phrases"`
	Patterns []string      `json:"patterns,omitempty"`
	Priority int           `json:"priority,omitempty"`
	Response StateResponse `json:"response,omitempty"`

	regexes []*regexp.Regexp
}

// PatternRegistry maps OCR text to named states.
type PatternRegistry struct {
	patterns map[string]*StatePattern
	minRatio float64
	mu       sync.RWMutex
}

// NewPatternRegistry creates an empty registry. minRatio is the fraction of a
// pattern's phrases that must be present for a match; values outside (0, 1]
// are clamped to 1.0 (exact matching).
func NewPatternRegistry(minRatio float64) *PatternRegistry {
	if minRatio <= 0 || minRatio > 1 {
		minRatio = 1.0
	}
	return &PatternRegistry{
		patterns: make(map[string]*StatePattern),
		minRatio: minRatio,
	}
}

// Register adds or replaces a state pattern. Regex sources are compiled
// case-insensitively; a pattern with neither phrases nor regexes is rejected.
func (pr *PatternRegistry) Register(p StatePattern) error {
	if p.Name == "" {
		return fmt.Errorf("pattern has no state name")
	}
	if len(p.Phrases) == 0 && len(p.Patterns) == 0 {
		return fmt.Errorf("pattern %q has no phrases or regexes", p.Name)
	}

	p.regexes = make([]*regexp.Regexp, 0, len(p.Patterns))
	for _, src := range p.Patterns {
		re, err := regexp.Compile("(?i)" + src)
		if err != nil {
			return fmt.Errorf("pattern %q has invalid regex %q: %w", p.Name, src, err)
		}
		p.regexes = append(p.regexes, re)
	}

	pr.mu.Lock()
	defer pr.mu.Unlock()
	pr.patterns[p.Name] = &p
	return nil
}

// Unregister removes a state pattern by name.
func (pr *PatternRegistry) Unregister(name string) {
	pr.mu.Lock()
	defer pr.mu.Unlock()
	delete(pr.patterns, name)
}

// States returns the registered state names, sorted.
func (pr *PatternRegistry) States() []string {
	pr.mu.RLock()
	defer pr.mu.RUnlock()

	names := make([]string, 0, len(pr.patterns))
	for name := range pr.patterns {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Get returns a registered pattern by name.
func (pr *PatternRegistry) Get(name string) (*StatePattern, bool) {
	pr.mu.RLock()
	defer pr.mu.RUnlock()
	p, ok := pr.patterns[name]
	return p, ok
}

// Match classifies OCR text against the registry.
//
// Returns the winning pattern and its phrase score. Among patterns meeting
// the ratio (and whose regexes all match), the highest priority wins; ties
// break on score, then name for determinism. Empty text never matches.
func (pr *PatternRegistry) Match(text string) (*StatePattern, float64, bool) {
	normalized := strings.ToLower(strings.TrimSpace(text))
	if normalized == "" {
		return nil, 0, false
	}

	pr.mu.RLock()
	defer pr.mu.RUnlock()

	var best *StatePattern
	var bestScore float64

	for _, p := range pr.patterns {
		score, ok := pr.score(normalized, text, p)
		if !ok {
			continue
		}
		if best == nil ||
			p.Priority > best.Priority ||
			(p.Priority == best.Priority && score > bestScore) ||
			(p.Priority == best.Priority && score == bestScore && p.Name < best.Name) {
			best = p
			bestScore = score
		}
	}

	if best == nil {
		return nil, 0, false
	}
	return best, bestScore, true
}

// score computes the phrase hit ratio and checks regex requirements.
func (pr *PatternRegistry) score(normalized, raw string, p *StatePattern) (float64, bool) {
	for _, re := range p.regexes {
		if !re.MatchString(raw) {
			return 0, false
		}
	}

	if len(p.Phrases) == 0 {
		return 1.0, true
	}

	hits := 0
	for _, phrase := range p.Phrases {
		if strings.Contains(normalized, strings.ToLower(phrase)) {
			hits++
		}
	}
	score := float64(hits) / float64(len(p.Phrases))
	if score+1e-9 < pr.minRatio {
		return score, false
	}
	return score, true
}

// LoadPatternsFile merges patterns from a JSON file into the registry.
// The file is a JSON array of StatePattern objects; entries with a name
// already registered replace the built-in.
func (pr *PatternRegistry) LoadPatternsFile(path string) error {
	raw, err := os.ReadFile(path)
	if err != nil {
		return err
	}

	var patterns []StatePattern
	if err := json.Unmarshal(raw, &patterns); err != nil {
		return fmt.Errorf("failed to parse pattern file %s: %w", path, err)
	}

	for _, p := range patterns {
		if err := pr.Register(p); err != nil {
			return err
		}
	}
	LogInfo("Loaded %d patterns from %s", len(patterns), path)
	return nil
}

// Built-in state names. Handlers and behaviors refer to these constants so a
// typo fails at compile time rather than silently never matching.
const (
	StateQuestOffer     = "quest_offer"
	StateQuestComplete  = "quest_complete"
	StateContinuePrompt = "continue_prompt"
	StateVendorScreen   = "vendor_screen"
	StateLootWindow     = "loot_window"
	StateDeathPrompt    = "death_prompt"
	StateLockoutNotice  = "lockout_notice"
	StateLevelUp        = "level_up"
)

// DefaultPatterns returns the built-in state patterns for the common game
// prompts. Phrase choices favor words the OCR engine reads reliably at game
// font sizes; anything ambiguous gets a confirming regex instead.
func DefaultPatterns() []StatePattern {
	return []StatePattern{
		{
			Name:     StateQuestOffer,
			Phrases:  []string{"quest", "accept"},
			Patterns: []string{`accept|decline`},
			Priority: 10,
			Response: StateResponse{ClickOption: 1, DelayMs: 400},
		},
		{
			Name:     StateQuestComplete,
			Phrases:  []string{"quest complete"},
			Priority: 20,
			Response: StateResponse{Key: "enter", DelayMs: 300},
		},
		{
			Name:     StateContinuePrompt,
			Phrases:  []string{"press", "continue"},
			Priority: 5,
			Response: StateResponse{Key: "space", DelayMs: 200},
		},
		{
			Name:     StateVendorScreen,
			Phrases:  []string{"buy", "sell"},
			Patterns: []string{`\d+\s*(?:gold|silver|copper|g|s|c)\b`},
			Priority: 8,
		},
		{
			Name:     StateLootWindow,
			Phrases:  []string{"loot"},
			Patterns: []string{`loot(?:ed)?\s`},
			Priority: 8,
			Response: StateResponse{Key: "f", DelayMs: 250},
		},
		{
			Name:     StateDeathPrompt,
			Phrases:  []string{"you have died"},
			Priority: 30,
			Response: StateResponse{ClickOption: 1, DelayMs: 1000},
		},
		{
			Name:     StateLockoutNotice,
			Phrases:  []string{"cannot enter", "lockout"},
			Priority: 15,
			Response: StateResponse{Key: "escape", DelayMs: 300},
		},
		{
			Name:     StateLevelUp,
			Phrases:  []string{"congratulations", "level"},
			Priority: 12,
		},
	}
}

// NewDefaultRegistry builds a registry preloaded with the built-in patterns.
func NewDefaultRegistry(minRatio float64) *PatternRegistry {
	registry := NewPatternRegistry(minRatio)
	for _, p := range DefaultPatterns() {
		if err := registry.Register(p); err != nil {
			LogError("Failed to register built-in pattern %s: %v", p.Name, err)
		}
	}
	return registry
}
