// Package main - hotkeys.go
//
// This file implements global hotkeys so the bot can be controlled while the
// game window has focus (the tray is unreachable without alt-tabbing):
//   - F8: toggle pause/resume of the main loop
//   - F10: quit with the same graceful shutdown as the tray quit item
//
// Uses robotn/gohook for OS-level key capture. The hook event loop blocks
// forever, so it runs inside SafeGo; hook.End() during shutdown releases the
// OS hook.
package main

import (
	hook "github.com/robotn/gohook"
)

// HotkeyListener binds the global pause and quit keys.
type HotkeyListener struct {
	bot *Bot
}

// NewHotkeyListener creates a listener bound to the bot.
func NewHotkeyListener(bot *Bot) *HotkeyListener {
	return &HotkeyListener{bot: bot}
}

// Start registers the hotkeys and runs the hook event loop in the background.
func (hl *HotkeyListener) Start() {
	hook.Register(hook.KeyDown, []string{"f8"}, func(e hook.Event) {
		paused := hl.bot.TogglePause()
		if paused {
			LogInfo("F8 pressed, bot paused")
		} else {
			LogInfo("F8 pressed, bot resumed")
		}
	})

	hook.Register(hook.KeyDown, []string{"f10"}, func(e hook.Event) {
		LogInfo("F10 pressed, shutting down")
		hl.bot.Shutdown()
	})

	SafeGo(func() {
		LogInfo("Hotkey listener started (F8 pause, F10 quit)")
		evChan := hook.Start()
		<-hook.Process(evChan)
		LogInfo("Hotkey listener stopped")
	})
}

// Stop releases the OS-level hook.
func (hl *HotkeyListener) Stop() {
	hook.End()
}
