// Package main - whisper.go
//
// This file implements the whisper monitor: the one background goroutine in
// the bot. It polls the chat region's OCR text on its own interval, extracts
// whisper lines, and pushes them into a buffered channel for the main loop
// to drain (log + Discord notification).
//
// Coordination Model:
// There is none beyond the channel and a stop signal, by design. The monitor
// shares the TextReader with the main loop and simply serializes on its
// mutex. If the events channel is full the oldest behavior is to drop the
// new event with a warning rather than block the monitor.
//
// Dedup:
// The chat region keeps old lines on screen, so the same whisper is OCR'd on
// every poll. The monitor remembers the last extracted line per sender and
// only emits when the line changes.
package main

import (
	"regexp"
	"strings"
	"time"
)

// whisperLine matches chat lines like:
//
//	Oskar whispers, 'got room in the group?'
//	Mira tells you: heading to the vendor
var whisperLine = regexp.MustCompile(`(?i)(\w+)\s+(?:whispers|tells you)[,:]?\s*'?(.+?)'?\s*$`)

// WhisperMonitor polls the chat region for incoming whispers.
type WhisperMonitor struct {
	capturer ScreenCapturer
	reader   TextReader
	region   Region
	interval time.Duration

	events chan WhisperEvent
	stop   chan struct{}

	lastLine map[string]string // sender -> last seen message
}

// NewWhisperMonitor creates a monitor for the given chat region.
func NewWhisperMonitor(capturer ScreenCapturer, reader TextReader, region Region, interval time.Duration) *WhisperMonitor {
	if interval <= 0 {
		interval = 2 * time.Second
	}
	return &WhisperMonitor{
		capturer: capturer,
		reader:   reader,
		region:   region,
		interval: interval,
		events:   make(chan WhisperEvent, 32),
		stop:     make(chan struct{}),
		lastLine: make(map[string]string),
	}
}

// Events returns the channel the main loop drains.
func (wm *WhisperMonitor) Events() <-chan WhisperEvent {
	return wm.events
}

// Start launches the polling goroutine. Call Stop to terminate it.
func (wm *WhisperMonitor) Start() {
	LogInfo("Whisper monitor started (interval %v)", wm.interval)
	SafeGo(wm.loop)
}

// Stop signals the polling goroutine to exit.
func (wm *WhisperMonitor) Stop() {
	select {
	case <-wm.stop:
		// already stopped
	default:
		close(wm.stop)
	}
}

func (wm *WhisperMonitor) loop() {
	ticker := time.NewTicker(wm.interval)
	defer ticker.Stop()

	for {
		select {
		case <-wm.stop:
			LogInfo("Whisper monitor stopped")
			return
		case <-ticker.C:
			wm.poll()
		}
	}
}

// poll runs one OCR pass over the chat region and queues new whispers.
func (wm *WhisperMonitor) poll() {
	img, err := wm.capturer.CaptureRegion(wm.region.Rect())
	if err != nil {
		LogWarn("Whisper monitor capture failed: %v", err)
		return
	}

	text, err := wm.reader.ReadText(img)
	if err != nil {
		LogWarn("Whisper monitor OCR failed: %v", err)
		return
	}
	if text == "" {
		return
	}

	for _, event := range ExtractWhispers(text) {
		if wm.lastLine[event.Sender] == event.Message {
			continue
		}
		wm.lastLine[event.Sender] = event.Message

		select {
		case wm.events <- event:
			LogInfo("Whisper from %s: %s", event.Sender, event.Message)
		default:
			LogWarn("Whisper queue full, dropping event from %s", event.Sender)
		}
	}
}

// ExtractWhispers parses whisper lines out of chat region OCR text.
func ExtractWhispers(text string) []WhisperEvent {
	var events []WhisperEvent
	for _, line := range strings.Split(text, "\n") {
		m := whisperLine.FindStringSubmatch(line)
		if m == nil {
			continue
		}
		events = append(events, WhisperEvent{
			Sender:    m[1],
			Message:   strings.TrimSpace(m[2]),
			Raw:       strings.TrimSpace(line),
			Timestamp: time.Now(),
		})
	}
	return events
}
