// Package main - dispatcher.go
//
// This file implements the action dispatcher: the lookup table from detected
// state name to handler function, plus the dedup logic that makes a
// persistent dialogue dispatch exactly once.
//
// Dedup Semantics:
// A dialogue box stays on screen across many polling iterations, so the same
// state is detected repeatedly. The dispatcher remembers the last dispatched
// state and suppresses repeats until either the state changes, the dialogue
// disappears (the main loop calls ClearLast), or the repeat window elapses
// (covers dialogues that genuinely reappear, like chained continue prompts).
//
// Handlers:
// Most handlers come from BindResponses, which turns each registered
// pattern's canned StateResponse into a key press or click. Behaviors layer
// their own handlers on top for states that need bookkeeping (loot logging,
// lockout recording, price capture).
package main

import (
	"fmt"
	"sync"
	"time"
)

// HandlerFunc reacts to one detected dialogue state.
type HandlerFunc func(*DetectedDialogue) error

// ActionDispatcher maps detected states to handlers with repeat suppression.
type ActionDispatcher struct {
	handlers    map[string]HandlerFunc
	repeatAfter time.Duration

	lastState    string
	lastDispatch time.Time
	mu           sync.Mutex
}

// NewActionDispatcher creates a dispatcher. repeatAfter is the window during
// which a repeated detection of the same state is suppressed.
func NewActionDispatcher(repeatAfter time.Duration) *ActionDispatcher {
	return &ActionDispatcher{
		handlers:    make(map[string]HandlerFunc),
		repeatAfter: repeatAfter,
	}
}

// Register binds a handler to a state name, replacing any existing one.
func (ad *ActionDispatcher) Register(state string, fn HandlerFunc) {
	ad.mu.Lock()
	defer ad.mu.Unlock()
	ad.handlers[state] = fn
}

// Wrap chains fn after the currently registered handler for state, so
// behaviors can add bookkeeping without losing the canned response.
func (ad *ActionDispatcher) Wrap(state string, fn HandlerFunc) {
	ad.mu.Lock()
	prev := ad.handlers[state]
	ad.mu.Unlock()

	ad.Register(state, func(rec *DetectedDialogue) error {
		if prev != nil {
			if err := prev(rec); err != nil {
				return err
			}
		}
		return fn(rec)
	})
}

// Registered reports whether a handler exists for the state.
func (ad *ActionDispatcher) Registered(state string) bool {
	ad.mu.Lock()
	defer ad.mu.Unlock()
	_, ok := ad.handlers[state]
	return ok
}

// Dispatch routes a detection to its handler. Returns whether the handler
// ran. A nil record, empty state, unmapped state, or suppressed repeat all
// return (false, nil); handler errors are returned after logging.
func (ad *ActionDispatcher) Dispatch(rec *DetectedDialogue) (bool, error) {
	if rec == nil || rec.State == "" {
		return false, nil
	}

	ad.mu.Lock()
	if rec.State == ad.lastState && time.Since(ad.lastDispatch) < ad.repeatAfter {
		ad.mu.Unlock()
		LogDebug("Suppressed repeat dispatch for state %q", rec.State)
		return false, nil
	}
	handler, ok := ad.handlers[rec.State]
	if !ok {
		ad.mu.Unlock()
		LogDebug("No handler registered for state %q", rec.State)
		return false, nil
	}
	ad.lastState = rec.State
	ad.lastDispatch = time.Now()
	ad.mu.Unlock()

	LogInfo("Dispatching handler for state %q", rec.State)
	if err := handler(rec); err != nil {
		LogError("Handler for state %q failed: %v", rec.State, err)
		return true, err
	}
	return true, nil
}

// ClearLast forgets the last dispatched state. The main loop calls this when
// the screen shows no dialogue, so the next appearance dispatches again.
func (ad *ActionDispatcher) ClearLast() {
	ad.mu.Lock()
	defer ad.mu.Unlock()
	ad.lastState = ""
	ad.lastDispatch = time.Time{}
}

// BindResponses registers a response handler for every pattern in the
// registry that carries a canned response.
func (ad *ActionDispatcher) BindResponses(registry *PatternRegistry, input *InputController) {
	for _, name := range registry.States() {
		pattern, ok := registry.Get(name)
		if !ok || pattern.Response.Empty() {
			continue
		}
		ad.Register(name, ResponseHandler(input, pattern.Response))
	}
}

// ResponseHandler builds a handler that executes a canned StateResponse.
func ResponseHandler(input *InputController, resp StateResponse) HandlerFunc {
	return func(rec *DetectedDialogue) error {
		if resp.DelayMs > 0 {
			time.Sleep(time.Duration(Jitter(resp.DelayMs, resp.DelayMs/5)) * time.Millisecond)
		}

		switch {
		case resp.Key != "":
			return input.PressKey(resp.Key)
		case resp.ClickOption > 0:
			p, err := OptionClickPoint(rec, resp.ClickOption)
			if err != nil {
				return err
			}
			return input.Click(p)
		case resp.Click != nil:
			return input.Click(*resp.Click)
		}
		return nil
	}
}

// OptionClickPoint estimates the screen point of a numbered dialogue option.
// Options render as evenly spaced lines in the lower half of the dialogue
// bounds; the estimate targets the line's vertical center, horizontally
// centered in the box.
func OptionClickPoint(rec *DetectedDialogue, number int) (Point, error) {
	if len(rec.Options) == 0 {
		return Point{}, fmt.Errorf("state %q has no parsed options", rec.State)
	}

	index := -1
	for i, opt := range rec.Options {
		if opt.Number == number {
			index = i
			break
		}
	}
	if index < 0 {
		return Point{}, fmt.Errorf("option %d not present in state %q", number, rec.State)
	}

	b := rec.Bounds
	step := b.H / (len(rec.Options) + 1)
	return Point{
		X: b.X + b.W/2,
		Y: b.Y + step*(index+1),
	}, nil
}
