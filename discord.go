// Package main - discord.go
//
// This file implements optional Discord webhook notifications for loot
// drops, incoming whispers and session summaries.
//
// The notifier is fire-and-forget: a failed post is logged as a warning and
// the bot carries on. With an empty webhook URL every method is a no-op, so
// callers never need to check whether notifications are configured.
package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"time"
)

// DiscordNotifier posts formatted messages to a Discord webhook.
type DiscordNotifier struct {
	webhookURL string
	username   string
	client     *http.Client
}

// NewDiscordNotifier creates a notifier. An empty URL disables it.
func NewDiscordNotifier(webhookURL string) *DiscordNotifier {
	return &DiscordNotifier{
		webhookURL: webhookURL,
		username:   "quest-bot",
		client:     &http.Client{Timeout: 10 * time.Second},
	}
}

// Enabled reports whether a webhook URL is configured.
func (dn *DiscordNotifier) Enabled() bool {
	return dn.webhookURL != ""
}

// Notify posts a plain content message.
func (dn *DiscordNotifier) Notify(content string) {
	if !dn.Enabled() || content == "" {
		return
	}

	payload, err := json.Marshal(map[string]string{
		"username": dn.username,
		"content":  content,
	})
	if err != nil {
		LogWarn("Failed to encode Discord payload: %v", err)
		return
	}

	resp, err := dn.client.Post(dn.webhookURL, "application/json", bytes.NewReader(payload))
	if err != nil {
		LogWarn("Discord webhook post failed: %v", err)
		return
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		LogWarn("Discord webhook returned status %d", resp.StatusCode)
		return
	}
	LogDebug("Discord notification sent (%d bytes)", len(payload))
}

// NotifyLoot posts a loot drop message.
func (dn *DiscordNotifier) NotifyLoot(rec LootRecord) {
	msg := fmt.Sprintf("**Loot**: %dx %s", rec.Quantity, rec.Item)
	if rec.Zone != "" {
		msg += fmt.Sprintf(" (%s)", rec.Zone)
	}
	dn.Notify(msg)
}

// NotifyWhisper posts an incoming whisper.
func (dn *DiscordNotifier) NotifyWhisper(ev WhisperEvent) {
	dn.Notify(fmt.Sprintf("**Whisper** from %s: %s", ev.Sender, ev.Message))
}

// NotifySummary posts a session summary.
func (dn *DiscordNotifier) NotifySummary(stats *SessionStats) {
	s := stats.Snapshot()
	dn.Notify(fmt.Sprintf(
		"**Session summary**: uptime %s, %d detections, %d actions, %d kills, %d loot drops",
		s.Uptime, s.Detections, s.Dispatches, s.Kills, s.LootDrops,
	))
}
