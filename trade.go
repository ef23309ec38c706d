// Package main - trade.go
//
// This file implements the Trade behavior: vendor screen scraping into the
// price cache plus canned buying of configured items.
//
// When the detector classifies a vendor screen, every price line in the OCR
// text ("Rusted Dagger   120 gold") is recorded into the price cache. Items
// on the configured buy list are then purchased by clicking their parsed
// option line, at most once per vendor visit.
package main

import (
	"regexp"
	"strconv"
	"strings"
	"time"
)

// priceLine matches vendor listing lines: item name, then a price with an
// optional currency word.
var priceLine = regexp.MustCompile(`(?i)^\s*(?:\d+\s*[.)\]:]\s*)?([A-Za-z][\w' -]{2,40}?)\s+(\d{1,7})\s*(?:gold|silver|copper|g|s|c)?\s*$`)

// TradeState represents the current state of the trade behavior
type TradeState int

const (
	TradeStateIdle TradeState = iota
	TradeStateScanning
	TradeStateBuying
)

// String returns the string representation of the state
func (s TradeState) String() string {
	switch s {
	case TradeStateIdle:
		return "Idle"
	case TradeStateScanning:
		return "Scanning"
	case TradeStateBuying:
		return "Buying"
	default:
		return "Unknown"
	}
}

// TradeBehavior scrapes vendor screens and buys configured items.
type TradeBehavior struct {
	state  TradeState
	prices *PriceCache

	// bought tracks items purchased during the current vendor visit so the
	// same screen does not trigger repeat purchases. Cleared when the vendor
	// screen disappears.
	bought map[string]bool
}

// NewTradeBehavior creates a trade behavior over the shared price cache.
func NewTradeBehavior(prices *PriceCache) *TradeBehavior {
	return &TradeBehavior{
		state:  TradeStateIdle,
		prices: prices,
		bought: make(map[string]bool),
	}
}

// GetState returns the current state name
func (tb *TradeBehavior) GetState() string {
	return tb.state.String()
}

// Stop resets behavior state
func (tb *TradeBehavior) Stop() {
	tb.state = TradeStateIdle
	tb.bought = make(map[string]bool)
}

// Attach registers the vendor screen scraper on a fresh dispatcher.
func (tb *TradeBehavior) Attach(dispatcher *ActionDispatcher, registry *PatternRegistry, input *InputController, config *Config, stats *SessionStats) {
	dispatcher.Wrap(StateVendorScreen, func(rec *DetectedDialogue) error {
		recorded := 0
		for _, priceRec := range ParsePriceLines(rec.Text) {
			tb.prices.Record(priceRec)
			recorded++
		}
		LogInfo("Vendor screen scraped: %d price lines", recorded)

		return tb.buyConfigured(rec, input, config)
	})
}

// Run executes one iteration of trade behavior.
func (tb *TradeBehavior) Run(rec *DetectedDialogue, dispatched bool, detector *DialogueDetector, input *InputController, config *Config, stats *SessionStats) error {
	if rec != nil && rec.State == StateVendorScreen {
		if dispatched {
			tb.state = TradeStateBuying
		} else {
			tb.state = TradeStateScanning
		}
		return nil
	}

	// Vendor screen gone: next visit may buy again.
	if tb.state != TradeStateIdle {
		tb.bought = make(map[string]bool)
		tb.state = TradeStateIdle
	}
	return nil
}

// buyConfigured clicks the option line of each buy-list item present on the
// vendor screen, once per visit.
func (tb *TradeBehavior) buyConfigured(rec *DetectedDialogue, input *InputController, config *Config) error {
	for _, want := range config.VendorBuyItems {
		if tb.bought[want] {
			continue
		}
		for _, opt := range rec.Options {
			if !containsFold(opt.Text, want) {
				continue
			}
			p, err := OptionClickPoint(rec, opt.Number)
			if err != nil {
				LogWarn("Cannot click buy option for %q: %v", want, err)
				break
			}
			LogInfo("Buying %q (option %d)", want, opt.Number)
			if err := input.Click(p); err != nil {
				return err
			}
			tb.bought[want] = true
			break
		}
	}
	return nil
}

// ParsePriceLines extracts price records from vendor screen text.
func ParsePriceLines(text string) []PriceRecord {
	var records []PriceRecord
	for _, line := range strings.Split(text, "\n") {
		m := priceLine.FindStringSubmatch(line)
		if m == nil {
			continue
		}
		item := strings.TrimSpace(m[1])
		// Skip header-ish lines the regex cannot distinguish from items.
		if strings.EqualFold(item, "buy") || strings.EqualFold(item, "sell") {
			continue
		}
		price, err := strconv.Atoi(m[2])
		if err != nil || price <= 0 {
			continue
		}
		records = append(records, PriceRecord{
			Item:      item,
			Price:     price,
			Timestamp: time.Now(),
		})
	}
	return records
}
