package main

import (
	"testing"
	"time"
)

func TestExtractWhispers(t *testing.T) {
	text := "Oskar whispers, 'got room in the group?'\n" +
		"[Guild] Tam: selling pelts cheap\n" +
		"Mira tells you: heading to the vendor\n" +
		"You receive 3x Wolf Pelt"

	events := ExtractWhispers(text)
	if len(events) != 2 {
		t.Fatalf("extracted %d whispers, want 2: %+v", len(events), events)
	}

	if events[0].Sender != "Oskar" {
		t.Errorf("sender = %q, want Oskar", events[0].Sender)
	}
	if events[0].Message != "got room in the group?" {
		t.Errorf("message = %q", events[0].Message)
	}
	if events[1].Sender != "Mira" {
		t.Errorf("sender = %q, want Mira", events[1].Sender)
	}
	if events[1].Message != "heading to the vendor" {
		t.Errorf("message = %q", events[1].Message)
	}
}

func TestExtractWhispersNoMatches(t *testing.T) {
	if events := ExtractWhispers("just scenery text\nno chat here"); events != nil {
		t.Errorf("extracted %v from non-chat text", events)
	}
}

// The chat region keeps old lines on screen, so repeated polls of the same
// text must emit each whisper once.
func TestWhisperMonitorDedup(t *testing.T) {
	reader := &fakeReader{text: "Oskar whispers, 'got room in the group?'"}
	monitor := NewWhisperMonitor(&fakeCapturer{}, reader, Region{X: 10, Y: 560, W: 480, H: 150}, 5*time.Millisecond)

	monitor.Start()
	defer monitor.Stop()

	// First poll emits the event.
	select {
	case ev := <-monitor.Events():
		if ev.Sender != "Oskar" {
			t.Errorf("sender = %q, want Oskar", ev.Sender)
		}
	case <-time.After(time.Second):
		t.Fatal("no whisper event within 1s")
	}

	// Give the monitor several more polls over the unchanged text.
	time.Sleep(30 * time.Millisecond)
	select {
	case ev := <-monitor.Events():
		t.Errorf("duplicate event emitted for unchanged chat text: %+v", ev)
	default:
	}
}

func TestWhisperMonitorStopIdempotent(t *testing.T) {
	reader := &fakeReader{}
	monitor := NewWhisperMonitor(&fakeCapturer{}, reader, Region{W: 100, H: 100}, 5*time.Millisecond)

	monitor.Start()
	monitor.Stop()
	monitor.Stop() // second call must not panic on the closed channel
}

func TestWhisperMonitorDefaultInterval(t *testing.T) {
	monitor := NewWhisperMonitor(&fakeCapturer{}, &fakeReader{}, Region{}, 0)
	if monitor.interval != 2*time.Second {
		t.Errorf("interval = %v, want the 2s default", monitor.interval)
	}
}
