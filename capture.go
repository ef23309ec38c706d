// Package main - capture.go
//
// This file wraps the OS screenshot API behind a small interface so the
// detection pipeline (and its tests) never talk to the screen directly.
//
// Production implementation uses github.com/kbinani/screenshot, which reads
// straight from the display without moving the cursor or focusing windows.
// Capture is synchronous and blocks the caller for its duration, typically
// 10-50ms for a dialogue-sized region.
package main

import (
	"fmt"
	"image"

	"github.com/kbinani/screenshot"
)

// ScreenCapturer captures rectangular regions of the screen.
type ScreenCapturer interface {
	// CaptureRegion returns the pixels inside rect, in screen coordinates.
	CaptureRegion(rect image.Rectangle) (image.Image, error)
	// Bounds returns the full bounds of the capture target.
	Bounds() image.Rectangle
}

// DisplayCapturer captures from a physical display.
type DisplayCapturer struct {
	display int
}

// NewDisplayCapturer creates a capturer for the given display index.
func NewDisplayCapturer(display int) (*DisplayCapturer, error) {
	n := screenshot.NumActiveDisplays()
	if n == 0 {
		return nil, fmt.Errorf("no active displays found")
	}
	if display < 0 || display >= n {
		LogWarn("Display %d not available (%d active), falling back to display 0", display, n)
		display = 0
	}
	return &DisplayCapturer{display: display}, nil
}

// Bounds returns the bounds of the configured display.
func (dc *DisplayCapturer) Bounds() image.Rectangle {
	return screenshot.GetDisplayBounds(dc.display)
}

// CaptureRegion captures the given rectangle, clipped to the display bounds.
func (dc *DisplayCapturer) CaptureRegion(rect image.Rectangle) (image.Image, error) {
	clipped := rect.Intersect(dc.Bounds())
	if clipped.Empty() {
		return nil, fmt.Errorf("capture region %v is outside display bounds %v", rect, dc.Bounds())
	}

	img, err := screenshot.CaptureRect(clipped)
	if err != nil {
		return nil, fmt.Errorf("screenshot failed: %w", err)
	}
	return img, nil
}
