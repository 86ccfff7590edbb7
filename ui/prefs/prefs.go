// Package prefs provides JSON-based application preferences.
package prefs

import (
	"encoding/json"
	"os"
	"path/filepath"
	"sync"
)

const prefsFile = "preferences.json"

// Prefs stores window-level preferences that survive restarts. Generation
// settings live in their own YAML file; this is only GUI convenience
// state.
type Prefs struct {
	mu   sync.Mutex
	path string

	LastImageDir  string `json:"last_image_dir"`
	LastOutputDir string `json:"last_output_dir"`
	SettingsPath  string `json:"settings_path"`
}

// Load reads preferences from ~/.config/litho-lamp/preferences.json.
// Returns empty preferences if the file doesn't exist.
func Load() *Prefs {
	p := &Prefs{}

	configDir, err := os.UserConfigDir()
	if err != nil {
		configDir = filepath.Join(os.Getenv("HOME"), ".config")
	}
	p.path = filepath.Join(configDir, "litho-lamp", prefsFile)

	data, err := os.ReadFile(p.path)
	if err != nil {
		return p
	}
	_ = json.Unmarshal(data, p)
	return p
}

// Save writes preferences to disk.
func (p *Prefs) Save() error {
	p.mu.Lock()
	data, err := json.MarshalIndent(p, "", "  ")
	p.mu.Unlock()
	if err != nil {
		return err
	}

	if err := os.MkdirAll(filepath.Dir(p.path), 0o755); err != nil {
		return err
	}
	return os.WriteFile(p.path, data, 0o644)
}
