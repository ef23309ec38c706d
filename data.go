// Package main - data.go
//
// This file defines core data structures used throughout the bot application.
//
// Major Data Categories:
//
// 1. Geometric Types:
//    - Point: 2D screen coordinates
//    - Region: rectangular screen area convertible to image.Rectangle
//
// 2. Detection Records:
//    - DetectedDialogue: a classified UI state with extracted text, option
//      list, confidence and timestamp
//    - DialogueOption: a numbered choice parsed from dialogue text
//    - WhisperEvent: a chat whisper picked up by the background monitor
//
// 3. Data Records (flat JSON):
//    - LootRecord: one looted item
//    - PriceRecord: one observed vendor price
//
// 4. Configuration:
//    - Config: all bot settings (mode, regions, thresholds, keys, webhook)
//    - PersistentData: container saved to data/config.json
//
// Thread Safety:
// Config uses RWMutex for concurrent access (tray handlers and the main loop
// read/write it concurrently). All other types are value types and should be
// copied when shared.
package main

import (
	"image"
	"sync"
	"time"
)

// Point represents a 2D coordinate in screen space.
type Point struct {
	X int
	Y int
}

// Region represents a rectangular screen area. Stored in config as four
// numbers (left, top, width, height) so it stays editable by hand.
type Region struct {
	X int `json:"x"`
	Y int `json:"y"`
	W int `json:"w"`
	H int `json:"h"`
}

// Rect converts the region to an image.Rectangle.
func (r Region) Rect() image.Rectangle {
	return image.Rect(r.X, r.Y, r.X+r.W, r.Y+r.H)
}

// Center returns the center point of the region.
func (r Region) Center() Point {
	return Point{X: r.X + r.W/2, Y: r.Y + r.H/2}
}

// Empty reports whether the region has no area.
func (r Region) Empty() bool {
	return r.W <= 0 || r.H <= 0
}

// RegionFromRect converts an image.Rectangle back to a Region.
func RegionFromRect(rect image.Rectangle) Region {
	return Region{X: rect.Min.X, Y: rect.Min.Y, W: rect.Dx(), H: rect.Dy()}
}

// DialogueOption is a numbered choice parsed from dialogue text,
// e.g. "1. Accept the quest" or "2) Decline".
type DialogueOption struct {
	Number int    `json:"number"`
	Text   string `json:"text"`
}

// DetectedDialogue records one successful state classification.
//
// Confidence is the fraction of the pattern's phrases found in the OCR text:
// 1.0 for a full match, lower when the registry's match ratio allows partial
// phrase hits (fuzzy matching against noisy OCR output).
type DetectedDialogue struct {
	State      string           `json:"state"`
	Text       string           `json:"text"`
	Options    []DialogueOption `json:"options,omitempty"`
	Bounds     Region           `json:"bounds"`
	Confidence float64          `json:"confidence"`
	Timestamp  time.Time        `json:"timestamp"`
}

// WhisperEvent is one whisper line extracted from the chat region.
type WhisperEvent struct {
	Sender    string    `json:"sender"`
	Message   string    `json:"message"`
	Raw       string    `json:"raw"`
	Timestamp time.Time `json:"timestamp"`
}

// LootRecord is one looted item, appended to the daily loot log.
type LootRecord struct {
	Item      string    `json:"item"`
	Quantity  int       `json:"quantity"`
	Source    string    `json:"source,omitempty"`
	Zone      string    `json:"zone,omitempty"`
	Timestamp time.Time `json:"timestamp"`
}

// PriceRecord is one observed vendor price.
type PriceRecord struct {
	Item      string    `json:"item"`
	Vendor    string    `json:"vendor,omitempty"`
	Price     int       `json:"price"`
	Timestamp time.Time `json:"timestamp"`
}

// Config holds bot configuration
type Config struct {
	Mode string // "Stop", "Quest", "Combat" or "Trade"

	// Character identity (keys loot logs and lockout timers)
	CharacterName string

	// Screen regions (fixed fallbacks when template anchoring is off or misses)
	DialogueRegion Region
	ChatRegion     Region
	TargetRegion   Region
	PlayerRegion   Region

	// Capture frequency in milliseconds (0 = continuous)
	CaptureInterval int

	// OCR settings
	OCRLanguage   string
	OCRWhitelist  string
	MinMatchRatio float64 // fraction of pattern phrases required, 0-1

	// Template anchoring
	UseTemplateAnchor bool
	TemplateDir       string
	TemplateThreshold float32

	// Whisper monitor
	WhisperInterval int // milliseconds between chat region polls

	// Combat settings
	AttackKeys          []string
	WeaponSwapKey       string
	WeaponSwapThreshold int // swap weapons when target HP% falls below this
	RetreatKey          string
	RetreatThreshold    int // retreat when player HP% falls below this

	// Trade settings
	VendorBuyItems []string

	// Lockout durations per instance name, in hours
	LockoutHours map[string]int

	// Price cache expiry in hours
	PriceTTLHours int

	// Discord webhook URL, empty disables notifications
	DiscordWebhookURL string

	mu sync.RWMutex
}

// NewConfig creates default configuration
func NewConfig() *Config {
	return &Config{
		Mode:                "Stop",
		CharacterName:       "default",
		DialogueRegion:      Region{X: 250, Y: 120, W: 520, H: 360},
		ChatRegion:          Region{X: 10, Y: 560, W: 480, H: 150},
		TargetRegion:        Region{X: 320, Y: 20, W: 360, H: 60},
		PlayerRegion:        Region{X: 10, Y: 10, W: 280, H: 60},
		CaptureInterval:     1000,
		OCRLanguage:         "eng",
		OCRWhitelist:        "",
		MinMatchRatio:       1.0,
		UseTemplateAnchor:   false,
		TemplateDir:         "templates",
		TemplateThreshold:   0.82,
		WhisperInterval:     2000,
		AttackKeys:          []string{"1", "2"},
		WeaponSwapKey:       "x",
		WeaponSwapThreshold: 35,
		RetreatKey:          "r",
		RetreatThreshold:    20,
		VendorBuyItems:      []string{},
		LockoutHours:        map[string]int{},
		PriceTTLHours:       72,
		DiscordWebhookURL:   "",
	}
}

// GetMode safely returns current mode
func (c *Config) GetMode() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.Mode
}

// SetMode safely sets the mode
func (c *Config) SetMode(mode string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.Mode = mode
}

// GetCaptureInterval safely returns the capture interval in milliseconds.
func (c *Config) GetCaptureInterval() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.CaptureInterval
}

// SetCaptureInterval safely sets the capture interval in milliseconds.
func (c *Config) SetCaptureInterval(ms int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.CaptureInterval = ms
}

// PersistentData holds all data that should be saved
type PersistentData struct {
	Config *Config `json:"config"`
}

// NewPersistentData creates a new persistent data structure
func NewPersistentData() *PersistentData {
	return &PersistentData{
		Config: NewConfig(),
	}
}
