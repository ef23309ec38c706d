// Package main - detector.go
//
// This file implements the dialogue/state detection core: capture a screen
// region, preprocess it, extract text via OCR, and classify the text against
// the pattern registry.
//
// Detection Pipeline (one call to Detect):
//   1. Resolve the OCR region: template anchor hit if enabled, else the
//      configured fixed region
//   2. Capture the region (synchronous, blocks the caller)
//   3. Preprocess + OCR (ocr.go)
//   4. Match against the registry (patterns.go)
//   5. Parse numbered dialogue options out of the matched text
//
// Result Semantics:
//   - (nil, err): capture or OCR failed; the caller logs and skips this cycle
//   - (nil, nil): no text on screen, nothing to classify
//   - (record with State == "", nil): text present but no registered pattern
//     matched; the raw text is preserved for behaviors that parse it directly
//   - (record with State != "", nil): a state was classified
//
// Error Handling:
// Failures never propagate beyond the record: log via the shared logger and
// return the empty value, letting the polling loop continue.
package main

import (
	"image"
	"regexp"
	"strconv"
	"strings"
	"time"
)

// optionLine matches numbered dialogue options like "1. Accept", "2) Decline"
// or "3] Tell me more".
var optionLine = regexp.MustCompile(`^\s*(\d+)\s*[.)\]:]\s*(\S.*?)\s*$`)

// anchorPadding grows the anchored template hit to cover the dialogue body,
// since the template only marks the frame's top-left ornament.
const anchorPadding = 24

// DialogueDetector captures a screen region, OCRs it and classifies the text.
type DialogueDetector struct {
	capturer ScreenCapturer
	reader   TextReader
	registry *PatternRegistry

	region     Region
	anchor     *TemplateAnchor
	anchorName string
}

// NewDialogueDetector wires the detection pipeline together. region is the
// fixed OCR region used when no template anchor is configured or it misses.
func NewDialogueDetector(capturer ScreenCapturer, reader TextReader, registry *PatternRegistry, region Region) *DialogueDetector {
	return &DialogueDetector{
		capturer: capturer,
		reader:   reader,
		registry: registry,
		region:   region,
	}
}

// SetAnchor enables template anchoring for the named template.
func (d *DialogueDetector) SetAnchor(anchor *TemplateAnchor, name string) {
	d.anchor = anchor
	d.anchorName = name
}

// SetRegion replaces the fixed OCR region.
func (d *DialogueDetector) SetRegion(region Region) {
	d.region = region
}

// Registry returns the pattern registry backing this detector.
func (d *DialogueDetector) Registry() *PatternRegistry {
	return d.registry
}

// Detect runs one detection cycle. See the file header for result semantics.
func (d *DialogueDetector) Detect() (*DetectedDialogue, error) {
	timer := NewTimer("detect")
	defer timer.Log()

	rect := d.resolveRegion()

	img, err := d.capturer.CaptureRegion(rect)
	if err != nil {
		LogError("Failed to capture dialogue region: %v", err)
		return nil, err
	}

	text, err := d.reader.ReadText(img)
	if err != nil {
		LogError("OCR failed on dialogue region: %v", err)
		return nil, err
	}
	if text == "" {
		LogDebug("Dialogue region produced no text")
		return nil, nil
	}
	LogDebug("Dialogue OCR text: %q", text)

	record := &DetectedDialogue{
		Text:      text,
		Bounds:    RegionFromRect(rect),
		Timestamp: time.Now(),
	}

	pattern, score, ok := d.registry.Match(text)
	if !ok {
		return record, nil
	}

	record.State = pattern.Name
	record.Confidence = score
	record.Options = ExtractOptions(text)

	LogInfo("Detected state %q (confidence %.2f, %d options)", record.State, record.Confidence, len(record.Options))
	DumpFrame("match-"+record.State, img)
	return record, nil
}

// ReadRegion captures and OCRs an arbitrary screen region. Used by behaviors
// that parse raw text (target nameplates, vendor price lines) without going
// through state classification.
func (d *DialogueDetector) ReadRegion(region Region) (string, error) {
	img, err := d.capturer.CaptureRegion(region.Rect())
	if err != nil {
		return "", err
	}
	return d.reader.ReadText(img)
}

// resolveRegion picks the OCR rectangle for this cycle: the template anchor
// hit when enabled and found, the fixed region otherwise.
func (d *DialogueDetector) resolveRegion() image.Rectangle {
	if d.anchor == nil || d.anchorName == "" {
		return d.region.Rect()
	}

	frame, err := d.capturer.CaptureRegion(d.capturer.Bounds())
	if err != nil {
		LogWarn("Full-frame capture for anchoring failed, using fixed region: %v", err)
		return d.region.Rect()
	}

	hit, ok := d.anchor.Locate(frame, d.anchorName)
	if !ok {
		return d.region.Rect()
	}

	// Anchor marks the frame corner; extend to the configured region's size.
	anchored := image.Rect(
		hit.Min.X-anchorPadding,
		hit.Min.Y-anchorPadding,
		hit.Min.X-anchorPadding+d.region.W,
		hit.Min.Y-anchorPadding+d.region.H,
	)
	return anchored.Intersect(d.capturer.Bounds())
}

// ExtractOptions parses numbered dialogue options out of OCR text,
// one per line.
func ExtractOptions(text string) []DialogueOption {
	var options []DialogueOption
	for _, line := range strings.Split(text, "\n") {
		m := optionLine.FindStringSubmatch(line)
		if m == nil {
			continue
		}
		n, err := strconv.Atoi(m[1])
		if err != nil || n <= 0 || n > 20 {
			continue
		}
		options = append(options, DialogueOption{Number: n, Text: m[2]})
	}
	return options
}
