// Package main - input.go
//
// This file implements synthetic keyboard/mouse input via robotgo.
//
// All game interaction funnels through InputController so that:
//   - every injected action is logged with its trigger
//   - actions are rate limited (a stuck state cannot hammer the keyboard)
//   - coordinates and delays carry small random jitter
//
// Keys are robotgo key names ("space", "enter", "escape", "1", "f"...).
package main

import (
	"fmt"
	"time"

	"github.com/go-vgo/robotgo"
)

// minActionGap is the floor between any two injected actions.
const minActionGap = 150 * time.Millisecond

// InputController injects keyboard and mouse input.
type InputController struct {
	limiter     *RateLimiter
	clickJitter int // max pixel offset applied to click coordinates
}

// NewInputController creates an input controller with default pacing.
func NewInputController() *InputController {
	return &InputController{
		limiter:     NewRateLimiter(minActionGap),
		clickJitter: 3,
	}
}

// PressKey taps a single key.
func (ic *InputController) PressKey(key string) error {
	if key == "" {
		return fmt.Errorf("empty key")
	}
	ic.pace()

	if err := robotgo.KeyTap(key); err != nil {
		LogError("Key tap %q failed: %v", key, err)
		return err
	}
	LogInfo("Pressed key %q", key)
	return nil
}

// TypeText types a string, used for chat replies.
func (ic *InputController) TypeText(text string) error {
	if text == "" {
		return nil
	}
	ic.pace()

	robotgo.TypeStr(text)
	LogInfo("Typed %d characters", len(text))
	return nil
}

// Click moves the cursor to p (with jitter) and left-clicks.
func (ic *InputController) Click(p Point) error {
	ic.pace()

	x := Jitter(p.X, ic.clickJitter)
	y := Jitter(p.Y, ic.clickJitter)
	robotgo.Move(x, y)
	robotgo.MilliSleep(Jitter(60, 20))
	robotgo.Click("left", false)

	LogInfo("Clicked at (%d, %d)", x, y)
	return nil
}

// RightClick moves the cursor to p (with jitter) and right-clicks.
func (ic *InputController) RightClick(p Point) error {
	ic.pace()

	x := Jitter(p.X, ic.clickJitter)
	y := Jitter(p.Y, ic.clickJitter)
	robotgo.Move(x, y)
	robotgo.MilliSleep(Jitter(60, 20))
	robotgo.Click("right", false)

	LogInfo("Right-clicked at (%d, %d)", x, y)
	return nil
}

// pace blocks until the minimum action gap has elapsed.
func (ic *InputController) pace() {
	for !ic.limiter.Allow() {
		time.Sleep(20 * time.Millisecond)
	}
}
