package main

import (
	"path/filepath"
	"testing"
	"time"
)

func TestPriceRecordAndLookup(t *testing.T) {
	path := filepath.Join(t.TempDir(), "prices.json")
	cache := NewPriceCache(path, 72*time.Hour)

	cache.Record(PriceRecord{Item: "Rusted Dagger", Price: 120})
	cache.Record(PriceRecord{Item: "Rusted Dagger", Price: 140})

	rec, ok := cache.Lookup("rusted dagger")
	if !ok {
		t.Fatal("Lookup missed a recorded item (case-insensitive)")
	}
	if rec.Price != 140 {
		t.Errorf("Price = %d, want the most recent observation 140", rec.Price)
	}

	if _, ok := cache.Lookup("Never Seen"); ok {
		t.Error("Lookup hit an item that was never recorded")
	}
}

func TestPriceRecordRejectsInvalid(t *testing.T) {
	path := filepath.Join(t.TempDir(), "prices.json")
	cache := NewPriceCache(path, time.Hour)

	cache.Record(PriceRecord{Item: "", Price: 100})
	cache.Record(PriceRecord{Item: "Free Stuff", Price: 0})

	if _, ok := cache.Lookup("free stuff"); ok {
		t.Error("zero-price record should have been rejected")
	}
}

func TestPriceTTLExpiry(t *testing.T) {
	path := filepath.Join(t.TempDir(), "prices.json")
	cache := NewPriceCache(path, time.Hour)

	cache.Record(PriceRecord{
		Item:      "Old Listing",
		Price:     50,
		Timestamp: time.Now().Add(-2 * time.Hour),
	})

	if _, ok := cache.Lookup("Old Listing"); ok {
		t.Error("expired observation should not be returned")
	}
}

func TestPricePersistence(t *testing.T) {
	path := filepath.Join(t.TempDir(), "prices.json")

	cache := NewPriceCache(path, 72*time.Hour)
	cache.Record(PriceRecord{Item: "Wolf Pelt", Price: 8})

	reloaded := NewPriceCache(path, 72*time.Hour)
	rec, ok := reloaded.Lookup("Wolf Pelt")
	if !ok {
		t.Fatal("price lost across save/load")
	}
	if rec.Price != 8 {
		t.Errorf("Price = %d, want 8", rec.Price)
	}
}

func TestPriceLoadDropsExpired(t *testing.T) {
	path := filepath.Join(t.TempDir(), "prices.json")

	cache := NewPriceCache(path, 72*time.Hour)
	cache.Record(PriceRecord{
		Item:      "Stale Listing",
		Price:     30,
		Timestamp: time.Now().Add(-100 * time.Hour),
	})
	cache.Record(PriceRecord{Item: "Fresh Listing", Price: 60})

	reloaded := NewPriceCache(path, 72*time.Hour)
	if _, ok := reloaded.Lookup("Stale Listing"); ok {
		t.Error("expired entry survived the reload prune")
	}
	if _, ok := reloaded.Lookup("Fresh Listing"); !ok {
		t.Error("fresh entry lost during reload")
	}
}
