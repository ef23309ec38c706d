// Package main - tray.go
//
// This file implements the system tray UI for runtime configuration.
// Uses getlantern/systray library for cross-platform tray menu support.
//
// Menu Structure:
//   Quest Bot
//   ├─ Status: Mode | State | Detections | Uptime (read-only)
//   ├─ Mode
//   │  ├─ Stop (idle, detection continues)
//   │  ├─ Quest (dialogue progression)
//   │  ├─ Combat (attack rotation)
//   │  └─ Trade (vendor scraping and buying)
//   ├─ Capture Frequency
//   │  ├─ Continuous (0ms)
//   │  ├─ 1 Second (default)
//   │  ├─ 2 Seconds
//   │  ├─ 3 Seconds
//   │  └─ 4 Seconds
//   └─ Quit (graceful shutdown)
//
// Auto-Save:
// All configuration changes trigger immediate SaveState() to persist settings.
//
// Lifecycle:
//   1. NewTrayApp: Create instance with bot reference
//   2. Run: Start systray (blocking call)
//   3. onReady: Initialize menu structure, start the bot's main loop
//   4. handleEvents: Listen for user interactions (infinite loop)
package main

import (
	"fmt"

	"github.com/getlantern/systray"
)

// TrayApp manages the system tray application and user interface.
type TrayApp struct {
	bot *Bot

	// Menu items
	statusItem *systray.MenuItem

	// Mode items
	stopItem   *systray.MenuItem
	questItem  *systray.MenuItem
	combatItem *systray.MenuItem
	tradeItem  *systray.MenuItem

	// Capture frequency items
	captureFreqItems [5]*systray.MenuItem // Continuous, 1s, 2s, 3s, 4s
}

// NewTrayApp creates a new tray application
func NewTrayApp(bot *Bot) *TrayApp {
	return &TrayApp{
		bot: bot,
	}
}

// Run starts the tray application
func (t *TrayApp) Run() {
	LogInfo("Starting system tray application")
	systray.Run(t.onReady, func() {
		LogInfo("System tray onExit callback triggered")
		if t.bot != nil {
			t.bot.StopBehavior()
		}
		LogInfo("System tray exit complete")
	})
	LogInfo("System tray Run() returned")
}

// onReady is called when the tray is ready
func (t *TrayApp) onReady() {
	systray.SetTitle("Quest Bot")
	systray.SetTooltip("OCR quest automation")

	// Status (read-only)
	t.statusItem = systray.AddMenuItem("Status: Starting...", "Current bot status")
	t.statusItem.Disable()

	systray.AddSeparator()

	// Mode selection
	modeMenu := systray.AddMenuItem("Mode", "Select bot mode")
	t.stopItem = modeMenu.AddSubMenuItem("Stop", "Stop all actions")
	t.questItem = modeMenu.AddSubMenuItem("Quest", "Progress NPC dialogues automatically")
	t.combatItem = modeMenu.AddSubMenuItem("Combat", "Cycle attack keys against targets")
	t.tradeItem = modeMenu.AddSubMenuItem("Trade", "Scrape vendor prices and buy listed items")
	t.checkMode(t.bot.config.GetMode())

	systray.AddSeparator()

	// Capture frequency configuration
	captureFreqMenu := systray.AddMenuItem("Capture Frequency", "Configure capture frequency")
	t.captureFreqItems[0] = captureFreqMenu.AddSubMenuItemCheckbox("Continuous (0ms)", "", false)
	t.captureFreqItems[1] = captureFreqMenu.AddSubMenuItemCheckbox("1 Second", "", false)
	t.captureFreqItems[2] = captureFreqMenu.AddSubMenuItemCheckbox("2 Seconds", "", false)
	t.captureFreqItems[3] = captureFreqMenu.AddSubMenuItemCheckbox("3 Seconds", "", false)
	t.captureFreqItems[4] = captureFreqMenu.AddSubMenuItemCheckbox("4 Seconds", "", false)
	t.updateCaptureFreqCheckmarks()

	systray.AddSeparator()

	// Quit
	quitItem := systray.AddMenuItem("Quit", "Quit the application")

	// Start event loop
	go t.handleEvents(quitItem)

	LogInfo("System tray initialized")

	// Start main loop in background after tray is ready
	go func() {
		t.bot.StartMainLoop()
		LogInfo("Main loop started")
	}()
}

// handleEvents handles tray menu events
func (t *TrayApp) handleEvents(quitItem *systray.MenuItem) {
	// Start goroutines for handling capture frequency clicks
	intervals := []int{0, 1000, 2000, 3000, 4000}
	for i := 0; i < 5; i++ {
		go t.handleCaptureFreqClick(intervals[i], t.captureFreqItems[i])
	}

	for {
		select {
		case <-t.stopItem.ClickedCh:
			t.onModeClicked("Stop")
		case <-t.questItem.ClickedCh:
			t.onModeClicked("Quest")
		case <-t.combatItem.ClickedCh:
			t.onModeClicked("Combat")
		case <-t.tradeItem.ClickedCh:
			t.onModeClicked("Trade")
		case <-quitItem.ClickedCh:
			LogInfo("Quit requested by user")
			t.bot.Shutdown()
		}
	}
}

// onModeClicked handles mode selection
func (t *TrayApp) onModeClicked(mode string) {
	LogInfo("Mode changed to: %s", mode)
	t.checkMode(mode)
	t.bot.ChangeMode(mode)
	t.bot.SaveState()
}

// checkMode updates the mode item checkmarks.
func (t *TrayApp) checkMode(mode string) {
	t.stopItem.Uncheck()
	t.questItem.Uncheck()
	t.combatItem.Uncheck()
	t.tradeItem.Uncheck()

	switch mode {
	case "Quest":
		t.questItem.Check()
	case "Combat":
		t.combatItem.Check()
	case "Trade":
		t.tradeItem.Check()
	default:
		t.stopItem.Check()
	}
}

// handleCaptureFreqClick handles capture frequency selection
func (t *TrayApp) handleCaptureFreqClick(intervalMs int, item *systray.MenuItem) {
	for range item.ClickedCh {
		LogInfo("Capture interval changed to %dms", intervalMs)
		t.bot.config.SetCaptureInterval(intervalMs)
		t.updateCaptureFreqCheckmarks()
		t.bot.SaveState()
	}
}

// updateCaptureFreqCheckmarks syncs the frequency checkmarks with config.
func (t *TrayApp) updateCaptureFreqCheckmarks() {
	intervals := []int{0, 1000, 2000, 3000, 4000}
	current := t.bot.config.GetCaptureInterval()
	for i, item := range t.captureFreqItems {
		if item == nil {
			continue
		}
		if intervals[i] == current {
			item.Check()
		} else {
			item.Uncheck()
		}
	}
}

// UpdateStatus updates the read-only status line. Called every iteration.
func (t *TrayApp) UpdateStatus(mode, behaviorState string) {
	if t.statusItem == nil {
		return
	}
	snap := t.bot.stats.Snapshot()
	status := fmt.Sprintf("Status: %s", mode)
	if behaviorState != "" {
		status += fmt.Sprintf(" (%s)", behaviorState)
	}
	status += fmt.Sprintf(" | Detections: %d | Uptime: %s", snap.Detections, snap.Uptime)
	t.statusItem.SetTitle(status)
}
