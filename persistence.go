// Package main - persistence.go
//
// This file implements configuration persistence. Uses JSON with 2-space
// indentation for human-readable, hand-editable storage under data/.
//
// Save Triggers:
//   - User changes configuration via system tray
//   - Graceful shutdown (quit button, signal handler)
//
// Load Behavior:
//   - If data/config.json exists: load configuration
//   - If file doesn't exist: use default configuration
//   - If file is corrupted: log error, use defaults
//
// Load errors are logged but never prevent bot startup.
package main

import (
	"encoding/json"
	"os"
	"path/filepath"
)

const dataDir = "data"

// SaveData saves configuration to the given path.
func SaveData(path string, data *PersistentData) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return err
	}

	file, err := os.Create(path)
	if err != nil {
		return err
	}
	defer file.Close()

	encoder := json.NewEncoder(file)
	encoder.SetIndent("", "  ")
	if err := encoder.Encode(data); err != nil {
		return err
	}

	LogInfo("Data saved to %s", path)
	return nil
}

// LoadData loads configuration from the given path, falling back to defaults
// when the file is missing or corrupted.
func LoadData(path string) (*PersistentData, error) {
	if _, err := os.Stat(path); os.IsNotExist(err) {
		LogInfo("No existing config file, creating new configuration")
		return NewPersistentData(), nil
	}

	file, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	var data PersistentData
	if err := json.NewDecoder(file).Decode(&data); err != nil {
		LogError("Failed to decode config file: %v", err)
		return NewPersistentData(), nil
	}
	if data.Config == nil {
		data.Config = NewConfig()
	}

	LogInfo("Data loaded from %s", path)
	return &data, nil
}

// DefaultConfigPath returns the default config file location.
func DefaultConfigPath() string {
	return filepath.Join(dataDir, "config.json")
}
