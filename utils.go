// Package main - utils.go
//
// This file provides utility helpers used throughout the bot.
// Includes performance timing, rate limiting, goroutine panic recovery,
// and small math/formatting helpers.
//
// Timer objects are used to measure:
//   - Main loop iteration time
//   - Screenshot capture
//   - OCR extraction (typically the slowest step, 100-400ms)
//
// SafeGo Usage:
// All long-running goroutines use SafeGo so a panic in one subsystem
// (whisper monitor, hotkey listener, tray handler) is logged and the rest
// of the bot continues operating.
package main

import (
	"fmt"
	"math/rand"
	"sync"
	"time"
)

// Timer provides performance timing functionality
type Timer struct {
	name      string
	startTime time.Time
}

// NewTimer creates and starts a new timer with given name
func NewTimer(name string) *Timer {
	return &Timer{
		name:      name,
		startTime: time.Now(),
	}
}

// Elapsed returns the elapsed time since timer creation
func (t *Timer) Elapsed() time.Duration {
	return time.Since(t.startTime)
}

// Log logs the elapsed time with the timer name
func (t *Timer) Log() {
	LogDebug("Timer [%s]: %v", t.name, t.Elapsed())
}

// FormatDuration formats a duration into human-readable string
func FormatDuration(d time.Duration) string {
	hours := int(d.Hours())
	minutes := int(d.Minutes()) % 60
	seconds := int(d.Seconds()) % 60

	if hours > 0 {
		return fmt.Sprintf("%dh %dm %ds", hours, minutes, seconds)
	} else if minutes > 0 {
		return fmt.Sprintf("%dm %ds", minutes, seconds)
	}
	return fmt.Sprintf("%ds", seconds)
}

// Clamp restricts a value between min and max
func Clamp(value, min, max int) int {
	if value < min {
		return min
	}
	if value > max {
		return max
	}
	return value
}

// Jitter returns n offset by a uniform random amount in [-spread, spread].
// Used to humanize click coordinates and key delays.
func Jitter(n, spread int) int {
	if spread <= 0 {
		return n
	}
	return n + rand.Intn(2*spread+1) - spread
}

// SafeGo runs a function in a goroutine with panic recovery
func SafeGo(fn func()) {
	go func() {
		defer func() {
			if r := recover(); r != nil {
				LogError("Panic recovered in goroutine: %v", r)
			}
		}()
		fn()
	}()
}

// RateLimiter limits execution rate
type RateLimiter struct {
	lastExec time.Time
	interval time.Duration
	mu       sync.Mutex
}

// NewRateLimiter creates a new rate limiter with specified interval
func NewRateLimiter(interval time.Duration) *RateLimiter {
	return &RateLimiter{
		interval: interval,
	}
}

// Allow checks if enough time has passed since last execution
func (rl *RateLimiter) Allow() bool {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	now := time.Now()
	if now.Sub(rl.lastExec) >= rl.interval {
		rl.lastExec = now
		return true
	}
	return false
}

// Reset resets the rate limiter
func (rl *RateLimiter) Reset() {
	rl.mu.Lock()
	defer rl.mu.Unlock()
	rl.lastExec = time.Time{}
}
