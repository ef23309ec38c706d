package main

import (
	"os"
	"path/filepath"
	"testing"
)

func TestMatchCaseInsensitive(t *testing.T) {
	registry := NewDefaultRegistry(1.0)

	pattern, score, ok := registry.Match("QUEST COMPLETE!\nReward: 120 XP")
	if !ok {
		t.Fatal("expected a match for quest complete text")
	}
	if pattern.Name != StateQuestComplete {
		t.Errorf("matched %q, want %q", pattern.Name, StateQuestComplete)
	}
	if score != 1.0 {
		t.Errorf("score = %v, want 1.0", score)
	}
}

func TestMatchEmptyText(t *testing.T) {
	registry := NewDefaultRegistry(1.0)

	if _, _, ok := registry.Match(""); ok {
		t.Error("empty text should never match")
	}
	if _, _, ok := registry.Match("   \n  "); ok {
		t.Error("whitespace-only text should never match")
	}
}

func TestMatchPriorityOrdering(t *testing.T) {
	registry := NewPatternRegistry(1.0)
	mustRegister(t, registry, StatePattern{
		Name:     "low",
		Phrases:  []string{"shared phrase"},
		Priority: 1,
	})
	mustRegister(t, registry, StatePattern{
		Name:     "high",
		Phrases:  []string{"shared phrase"},
		Priority: 9,
	})

	pattern, _, ok := registry.Match("some shared phrase here")
	if !ok {
		t.Fatal("expected a match")
	}
	if pattern.Name != "high" {
		t.Errorf("matched %q, want the higher-priority state", pattern.Name)
	}
}

// death_prompt outranks continue_prompt when a death dialogue also contains
// "press ... continue" wording.
func TestMatchBuiltinPriorities(t *testing.T) {
	registry := NewDefaultRegistry(1.0)

	pattern, _, ok := registry.Match("You have died.\nPress accept to continue")
	if !ok {
		t.Fatal("expected a match")
	}
	if pattern.Name != StateDeathPrompt {
		t.Errorf("matched %q, want %q", pattern.Name, StateDeathPrompt)
	}
}

func TestMatchFuzzyRatio(t *testing.T) {
	// OCR dropped one of the two phrases.
	text := "New Qvest available for you"

	strict := NewPatternRegistry(1.0)
	mustRegister(t, strict, StatePattern{
		Name:    "offer",
		Phrases: []string{"quest", "available"},
	})
	if _, _, ok := strict.Match(text); ok {
		t.Error("strict registry should reject a half match")
	}

	fuzzy := NewPatternRegistry(0.5)
	mustRegister(t, fuzzy, StatePattern{
		Name:    "offer",
		Phrases: []string{"quest", "available"},
	})
	pattern, score, ok := fuzzy.Match(text)
	if !ok {
		t.Fatal("fuzzy registry should accept a half match")
	}
	if pattern.Name != "offer" {
		t.Errorf("matched %q, want offer", pattern.Name)
	}
	if score != 0.5 {
		t.Errorf("score = %v, want 0.5", score)
	}
}

func TestMatchRegexRequired(t *testing.T) {
	registry := NewPatternRegistry(1.0)
	mustRegister(t, registry, StatePattern{
		Name:     "vendor",
		Phrases:  []string{"buy"},
		Patterns: []string{`\d+\s*gold`},
	})

	if _, _, ok := registry.Match("buy something nice"); ok {
		t.Error("phrase hit without regex match should not classify")
	}
	if _, _, ok := registry.Match("Buy: Rusted Dagger 120 gold"); !ok {
		t.Error("phrase plus regex should classify")
	}
}

func TestRegisterRejectsEmptyPattern(t *testing.T) {
	registry := NewPatternRegistry(1.0)

	if err := registry.Register(StatePattern{Name: "empty"}); err == nil {
		t.Error("pattern with no evidence should be rejected")
	}
	if err := registry.Register(StatePattern{Phrases: []string{"x"}}); err == nil {
		t.Error("pattern with no name should be rejected")
	}
	if err := registry.Register(StatePattern{Name: "bad", Patterns: []string{"("}}); err == nil {
		t.Error("invalid regex should be rejected")
	}
}

func TestLoadPatternsFileOverridesBuiltin(t *testing.T) {
	path := filepath.Join(t.TempDir(), "patterns.json")
	content := `[
  {"name": "quest_offer", "phrases": ["special offer"], "priority": 50,
   "response": {"key": "enter"}},
  {"name": "custom_state", "phrases": ["arena queue"], "response": {"key": "q"}}
]`
	if err := os.WriteFile(path, []byte(content), 0666); err != nil {
		t.Fatal(err)
	}

	registry := NewDefaultRegistry(1.0)
	if err := registry.LoadPatternsFile(path); err != nil {
		t.Fatalf("LoadPatternsFile: %v", err)
	}

	pattern, ok := registry.Get(StateQuestOffer)
	if !ok {
		t.Fatal("quest_offer missing after merge")
	}
	if pattern.Priority != 50 || pattern.Response.Key != "enter" {
		t.Errorf("built-in was not overridden: %+v", pattern)
	}

	if _, ok := registry.Get("custom_state"); !ok {
		t.Error("custom state missing after merge")
	}
}

func TestUnregister(t *testing.T) {
	registry := NewDefaultRegistry(1.0)
	registry.Unregister(StateLevelUp)

	if _, ok := registry.Get(StateLevelUp); ok {
		t.Error("state still present after Unregister")
	}
	if _, _, ok := registry.Match("Congratulations! You reached level 12"); ok {
		t.Error("unregistered state still matches")
	}
}

func mustRegister(t *testing.T, registry *PatternRegistry, p StatePattern) {
	t.Helper()
	if err := registry.Register(p); err != nil {
		t.Fatalf("Register(%s): %v", p.Name, err)
	}
}
