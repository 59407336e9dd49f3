package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func TestLoad_CreatesDefaultFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if _, err := os.Stat(path); err != nil {
		t.Fatalf("default config not written: %v", err)
	}

	if cfg.Target.WindowTitle != "Path of Exile 2" {
		t.Errorf("window title = %q", cfg.Target.WindowTitle)
	}
	if cfg.Target.ReloadCommand != "/reloaditemfilter" {
		t.Errorf("reload command = %q", cfg.Target.ReloadCommand)
	}
	if cfg.Target.SettleDelay() != 100*time.Millisecond {
		t.Errorf("settle delay = %v", cfg.Target.SettleDelay())
	}
	if cfg.Path() != path {
		t.Errorf("Path() = %q, want %q", cfg.Path(), path)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("default config invalid: %v", err)
	}
}

func TestLoad_FileOverridesDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	content := `
[target]
window_title = "Path of Exile"
settle_delay_ms = 250

[web]
port = 50000
`
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	if cfg.Target.WindowTitle != "Path of Exile" {
		t.Errorf("window title = %q", cfg.Target.WindowTitle)
	}
	if cfg.Target.SettleDelayMs != 250 {
		t.Errorf("settle delay = %d", cfg.Target.SettleDelayMs)
	}
	// Keys missing from the file keep their defaults.
	if cfg.Target.ReloadCommand != "/reloaditemfilter" {
		t.Errorf("reload command = %q", cfg.Target.ReloadCommand)
	}
	if cfg.Web.Port != 50000 || !cfg.Web.Enabled {
		t.Errorf("web = %+v", cfg.Web)
	}
}

func TestLoad_EnvOverridesFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	t.Setenv("RELOADBRIDGE_TARGET_WINDOW_TITLE", "Notepad")
	t.Setenv("RELOADBRIDGE_TARGET_SETTLE_DELAY_MS", "40")

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Target.WindowTitle != "Notepad" {
		t.Errorf("window title = %q, want env override", cfg.Target.WindowTitle)
	}
	if cfg.Target.SettleDelayMs != 40 {
		t.Errorf("settle delay = %d, want 40", cfg.Target.SettleDelayMs)
	}
}

func TestSave_RoundTripsThroughLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	edited := cfg.Clone()
	edited.Target.ReloadCommand = "/itemfilter"
	edited.Hotkey.Combo = "ctrl+shift+r"
	if err := edited.Save(); err != nil {
		t.Fatalf("Save: %v", err)
	}

	again, err := Load(path)
	if err != nil {
		t.Fatalf("reload: %v", err)
	}
	if again.Target.ReloadCommand != "/itemfilter" || again.Hotkey.Combo != "ctrl+shift+r" {
		t.Errorf("saved values lost: %+v %+v", again.Target, again.Hotkey)
	}
	if cfg.Target.ReloadCommand != "/reloaditemfilter" {
		t.Errorf("Clone shares state with its source")
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(c *Config)
		wantErr string
	}{
		{"defaults", func(c *Config) {}, ""},
		{"empty title", func(c *Config) { c.Target.WindowTitle = "  " }, "window_title"},
		{"empty command", func(c *Config) { c.Target.ReloadCommand = "" }, "reload_command"},
		{"negative delay", func(c *Config) { c.Target.SettleDelayMs = -1 }, "settle_delay_ms"},
		{"huge delay", func(c *Config) { c.Target.SettleDelayMs = 60000 }, "settle_delay_ms"},
		{"bad port", func(c *Config) { c.Web.Port = 70000 }, "web.port"},
		{"bad port ignored when disabled", func(c *Config) { c.Web.Enabled = false; c.Web.Port = 0 }, ""},
		{"bad hotkey", func(c *Config) { c.Hotkey.Combo = "r" }, "hotkey.combo"},
		{"unknown hotkey key", func(c *Config) { c.Hotkey.Combo = "ctrl+foo" }, "unknown key"},
		{"known hotkey key", func(c *Config) { c.Hotkey.Combo = "ctrl+shift+f5" }, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(cfg)
			err := cfg.Validate()
			if tt.wantErr == "" {
				if err != nil {
					t.Fatalf("unexpected error: %v", err)
				}
				return
			}
			if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
				t.Fatalf("err = %v, want mention of %q", err, tt.wantErr)
			}
		})
	}
}

func TestParseHotkey(t *testing.T) {
	tests := []struct {
		combo   string
		want    KeyCombo
		wantErr bool
	}{
		{"ctrl+shift+r", KeyCombo{Ctrl: true, Shift: true, Key: "r"}, false},
		{"Alt+F5", KeyCombo{Alt: true, Key: "f5"}, false},
		{"ctrl+win", KeyCombo{Ctrl: true, Win: true}, false},
		{"r", KeyCombo{}, true},
		{"r+ctrl", KeyCombo{}, true},
		{"ctrl+", KeyCombo{}, true},
		{"", KeyCombo{}, true},
	}

	for _, tt := range tests {
		got, err := ParseHotkey(tt.combo)
		if (err != nil) != tt.wantErr {
			t.Fatalf("ParseHotkey(%q) err = %v, wantErr %v", tt.combo, err, tt.wantErr)
		}
		if !tt.wantErr && got != tt.want {
			t.Errorf("ParseHotkey(%q) = %+v, want %+v", tt.combo, got, tt.want)
		}
	}
}

func TestReadFile_IgnoresEnvOverrides(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	t.Setenv("RELOADBRIDGE_TARGET_SETTLE_DELAY_MS", "500")

	effective, err := Load(path)
	if err != nil {
		t.Fatal(err)
	}
	if effective.Target.SettleDelayMs != 500 {
		t.Fatalf("env override not applied: %d", effective.Target.SettleDelayMs)
	}

	onDisk, err := ReadFile(path)
	if err != nil {
		t.Fatalf("ReadFile: %v", err)
	}
	if onDisk.Target.SettleDelayMs != 100 || onDisk.Path() != path {
		t.Errorf("ReadFile = delay %d path %q", onDisk.Target.SettleDelayMs, onDisk.Path())
	}
}
