// Package main - debug.go
//
// This file implements centralized logging and debug image dumps.
//
// Logging System:
//   - Thread-safe file logging to logs/quest-bot.log
//   - Four log levels: DEBUG, INFO, WARN, ERROR
//   - Microsecond timestamps for performance analysis
//   - File is truncated (cleared) on each startup
//   - Global logger instance accessible via convenience functions
//
// Debug Image Dumps:
// When debug mode is enabled, every capture that produced an OCR match is
// saved as a PNG under logs/frames/ so pattern phrases and region bounds can
// be tuned against what the OCR engine actually saw.
//
// Logging Conventions:
//   - DEBUG: per-iteration detail (capture timing, raw OCR text, match scores)
//   - INFO: important events (startup, mode changes, dispatches, loot)
//   - WARN: non-critical issues (webhook failure, OCR empty result)
//   - ERROR: serious problems (capture failure, file access errors)
package main

import (
	"fmt"
	"image"
	"log"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/vcaesar/imgo"
)

const logDir = "logs"

// Logger provides thread-safe logging functionality to a session log file.
//
// The log file is truncated (O_TRUNC) on each startup so it always contains
// only the current session's messages.
type Logger struct {
	file   *os.File
	logger *log.Logger
	debug  bool
	mu     sync.Mutex
}

var globalLogger *Logger

// InitLogger initializes the global logger writing to logs/quest-bot.log.
// The log file is truncated (cleared) on each startup.
func InitLogger(debug bool) error {
	if err := os.MkdirAll(logDir, 0755); err != nil {
		return fmt.Errorf("failed to create log directory: %w", err)
	}

	file, err := os.OpenFile(filepath.Join(logDir, "quest-bot.log"), os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0666)
	if err != nil {
		return fmt.Errorf("failed to open log file: %w", err)
	}

	globalLogger = &Logger{
		file:   file,
		logger: log.New(file, "", log.LstdFlags|log.Lmicroseconds),
		debug:  debug,
	}

	globalLogger.Info("Logger initialized (log file cleared)")
	return nil
}

// CloseLogger closes the log file
func CloseLogger() {
	if globalLogger != nil && globalLogger.file != nil {
		globalLogger.Info("Logger closing")
		globalLogger.file.Close()
	}
}

// Debug logs debug level messages (suppressed unless debug mode is on)
func (l *Logger) Debug(format string, v ...interface{}) {
	if !l.debug {
		return
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	l.logger.Printf("[DEBUG] "+format, v...)
}

// Info logs info level messages
func (l *Logger) Info(format string, v ...interface{}) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.logger.Printf("[INFO] "+format, v...)
}

// Warn logs warning level messages
func (l *Logger) Warn(format string, v ...interface{}) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.logger.Printf("[WARN] "+format, v...)
}

// Error logs error level messages
func (l *Logger) Error(format string, v ...interface{}) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.logger.Printf("[ERROR] "+format, v...)
}

// LogDebug is a convenience function for debug logging
func LogDebug(format string, v ...interface{}) {
	if globalLogger != nil {
		globalLogger.Debug(format, v...)
	}
}

// LogInfo is a convenience function for info logging
func LogInfo(format string, v ...interface{}) {
	if globalLogger != nil {
		globalLogger.Info(format, v...)
	}
}

// LogWarn is a convenience function for warning logging
func LogWarn(format string, v ...interface{}) {
	if globalLogger != nil {
		globalLogger.Warn(format, v...)
	}
}

// LogError is a convenience function for error logging
func LogError(format string, v ...interface{}) {
	if globalLogger != nil {
		globalLogger.Error(format, v...)
	}
}

// DebugEnabled reports whether debug mode is active.
func DebugEnabled() bool {
	return globalLogger != nil && globalLogger.debug
}

// DumpFrame saves a captured image under logs/frames/ for offline tuning.
// No-op unless debug mode is enabled. Failures are logged and ignored.
func DumpFrame(tag string, img image.Image) {
	if !DebugEnabled() || img == nil {
		return
	}

	dir := filepath.Join(logDir, "frames")
	if err := os.MkdirAll(dir, 0755); err != nil {
		LogWarn("Failed to create frame dump directory: %v", err)
		return
	}

	name := filepath.Join(dir, fmt.Sprintf("%s-%s.png", tag, time.Now().Format("150405.000")))
	if err := imgo.Save(name, img); err != nil {
		LogWarn("Failed to save debug frame %s: %v", name, err)
		return
	}
	LogDebug("Saved debug frame: %s", name)
}
