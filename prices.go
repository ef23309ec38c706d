// Package main - prices.go
//
// This file implements the vendor price cache: observed prices keyed by item
// name, expiring by timestamp. The trade behavior records every price line
// it OCRs off a vendor screen; lookups answer "what did this usually sell
// for" when deciding whether a vendor's offer is worth taking.
//
// Persisted as data/prices.json, rewritten on every change.
package main

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"
)

// PriceCache stores observed vendor prices with TTL expiry.
type PriceCache struct {
	path    string
	ttl     time.Duration
	entries map[string][]PriceRecord // normalized item name -> observations
	mu      sync.Mutex
}

// NewPriceCache loads the cache from path; entries already expired are
// dropped at load. A missing or corrupt file starts empty.
func NewPriceCache(path string, ttl time.Duration) *PriceCache {
	pc := &PriceCache{
		path:    path,
		ttl:     ttl,
		entries: make(map[string][]PriceRecord),
	}

	raw, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return pc
	}
	if err != nil {
		LogError("Failed to read price cache: %v", err)
		return pc
	}
	if err := json.Unmarshal(raw, &pc.entries); err != nil {
		LogError("Failed to parse price cache, starting empty: %v", err)
		pc.entries = make(map[string][]PriceRecord)
	}
	pc.prune()
	return pc
}

// Record stores one observation and persists the cache.
func (pc *PriceCache) Record(rec PriceRecord) {
	if rec.Item == "" || rec.Price <= 0 {
		return
	}
	if rec.Timestamp.IsZero() {
		rec.Timestamp = time.Now()
	}
	key := normalizeItem(rec.Item)

	pc.mu.Lock()
	pc.entries[key] = append(pc.entries[key], rec)
	pc.mu.Unlock()

	LogDebug("Price recorded: %s = %d", rec.Item, rec.Price)
	if err := pc.Save(); err != nil {
		LogError("Failed to save price cache: %v", err)
	}
}

// Lookup returns the most recent non-expired observation for an item.
func (pc *PriceCache) Lookup(item string) (PriceRecord, bool) {
	pc.mu.Lock()
	defer pc.mu.Unlock()

	var best PriceRecord
	found := false
	cutoff := time.Now().Add(-pc.ttl)
	for _, rec := range pc.entries[normalizeItem(item)] {
		if rec.Timestamp.Before(cutoff) {
			continue
		}
		if !found || rec.Timestamp.After(best.Timestamp) {
			best = rec
			found = true
		}
	}
	return best, found
}

// Save prunes expired observations and rewrites the cache file.
func (pc *PriceCache) Save() error {
	pc.mu.Lock()
	pc.prune()
	raw, err := json.MarshalIndent(pc.entries, "", "  ")
	pc.mu.Unlock()
	if err != nil {
		return err
	}

	if err := os.MkdirAll(filepath.Dir(pc.path), 0755); err != nil {
		return err
	}
	return os.WriteFile(pc.path, raw, 0666)
}

// prune drops expired observations. Caller holds the lock (or is loading).
func (pc *PriceCache) prune() {
	cutoff := time.Now().Add(-pc.ttl)
	for key, recs := range pc.entries {
		kept := recs[:0]
		for _, rec := range recs {
			if !rec.Timestamp.Before(cutoff) {
				kept = append(kept, rec)
			}
		}
		if len(kept) == 0 {
			delete(pc.entries, key)
		} else {
			pc.entries[key] = kept
		}
	}
}

func normalizeItem(item string) string {
	return strings.ToLower(strings.TrimSpace(item))
}

// DefaultPricePath returns the default price cache location.
func DefaultPricePath() string {
	return filepath.Join(dataDir, "prices.json")
}
