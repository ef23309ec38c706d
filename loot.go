// Package main - loot.go
//
// This file implements the loot logger: an append-only, per-day JSON-lines
// file under logs/ plus an in-memory session list exportable as a JSON array.
//
// Each record is one line of JSON so a crashed session never corrupts
// earlier entries, and the daily files can be concatenated or fed to jq
// without any framing. ExportSession returns the session's records as a
// round-trippable JSON array.
package main

import (
	"bufio"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"
)

// LootLogger appends loot records to daily JSON-lines files.
type LootLogger struct {
	dir     string
	session []LootRecord
	mu      sync.Mutex
}

// NewLootLogger creates a logger writing under dir.
func NewLootLogger(dir string) *LootLogger {
	return &LootLogger{dir: dir}
}

// Record appends one loot record to today's file and the session list.
func (ll *LootLogger) Record(rec LootRecord) error {
	if rec.Timestamp.IsZero() {
		rec.Timestamp = time.Now()
	}
	if rec.Quantity <= 0 {
		rec.Quantity = 1
	}

	ll.mu.Lock()
	defer ll.mu.Unlock()
	ll.session = append(ll.session, rec)

	if err := os.MkdirAll(ll.dir, 0755); err != nil {
		return err
	}

	path := filepath.Join(ll.dir, fmt.Sprintf("loot-%s.jsonl", rec.Timestamp.Format("2006-01-02")))
	file, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0666)
	if err != nil {
		return err
	}
	defer file.Close()

	line, err := json.Marshal(rec)
	if err != nil {
		return err
	}
	if _, err := file.Write(append(line, '\n')); err != nil {
		return err
	}

	LogInfo("Loot recorded: %dx %s", rec.Quantity, rec.Item)
	return nil
}

// Session returns a copy of this session's records.
func (ll *LootLogger) Session() []LootRecord {
	ll.mu.Lock()
	defer ll.mu.Unlock()
	out := make([]LootRecord, len(ll.session))
	copy(out, ll.session)
	return out
}

// ExportSession returns the session's records as an indented JSON array.
func (ll *LootLogger) ExportSession() ([]byte, error) {
	ll.mu.Lock()
	defer ll.mu.Unlock()
	return json.MarshalIndent(ll.session, "", "  ")
}

// ReadDay loads every record from one day's file, oldest first.
// A missing file yields an empty slice.
func (ll *LootLogger) ReadDay(day time.Time) ([]LootRecord, error) {
	path := filepath.Join(ll.dir, fmt.Sprintf("loot-%s.jsonl", day.Format("2006-01-02")))
	file, err := os.Open(path)
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	defer file.Close()

	var records []LootRecord
	scanner := bufio.NewScanner(file)
	for scanner.Scan() {
		line := scanner.Bytes()
		if len(line) == 0 {
			continue
		}
		var rec LootRecord
		if err := json.Unmarshal(line, &rec); err != nil {
			LogWarn("Skipping malformed loot line: %v", err)
			continue
		}
		records = append(records, rec)
	}
	return records, scanner.Err()
}
