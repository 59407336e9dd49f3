package config

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/spf13/viper"

	"markestedt/reloadbridge/platform"
)

// EnvPrefix prefixes environment overrides, e.g. RELOADBRIDGE_TARGET_WINDOW_TITLE.
const EnvPrefix = "RELOADBRIDGE"

type Config struct {
	Target  TargetConfig  `toml:"target" mapstructure:"target"`
	Hotkey  HotkeyConfig  `toml:"hotkey" mapstructure:"hotkey"`
	Web     WebConfig     `toml:"web" mapstructure:"web"`
	Storage StorageConfig `toml:"storage" mapstructure:"storage"`
	Tray    TrayConfig    `toml:"tray" mapstructure:"tray"`
	Log     LogConfig     `toml:"log" mapstructure:"log"`

	path string
}

// TargetConfig identifies the game window and what gets typed into it.
type TargetConfig struct {
	WindowTitle   string `toml:"window_title" mapstructure:"window_title"`
	ReloadCommand string `toml:"reload_command" mapstructure:"reload_command"`
	SettleDelayMs int    `toml:"settle_delay_ms" mapstructure:"settle_delay_ms"`
	MaxCommandLen int    `toml:"max_command_len" mapstructure:"max_command_len"`
}

// SettleDelay is the pause between focusing the window and injecting input.
func (t TargetConfig) SettleDelay() time.Duration {
	return time.Duration(t.SettleDelayMs) * time.Millisecond
}

type HotkeyConfig struct {
	// Combo is empty when the global hotkey is disabled.
	Combo string `toml:"combo" mapstructure:"combo"`
}

type WebConfig struct {
	Enabled        bool     `toml:"enabled" mapstructure:"enabled"`
	Port           int      `toml:"port" mapstructure:"port"`
	AllowedOrigins []string `toml:"allowed_origins" mapstructure:"allowed_origins"`
}

type StorageConfig struct {
	Enabled bool `toml:"enabled" mapstructure:"enabled"`
}

type TrayConfig struct {
	Enabled bool `toml:"enabled" mapstructure:"enabled"`
}

type LogConfig struct {
	Level    string `toml:"level" mapstructure:"level"`
	File     string `toml:"file" mapstructure:"file"`
	RotateMB int    `toml:"rotate_mb" mapstructure:"rotate_mb"`
	Keep     int    `toml:"keep" mapstructure:"keep"`
}

// Default configuration
func defaultConfig() *Config {
	return &Config{
		Target: TargetConfig{
			WindowTitle:   "Path of Exile 2",
			ReloadCommand: "/reloaditemfilter",
			SettleDelayMs: 100,
			MaxCommandLen: 256,
		},
		Hotkey: HotkeyConfig{
			Combo: "",
		},
		Web: WebConfig{
			Enabled:        true,
			Port:           47821,
			AllowedOrigins: []string{"tauri://localhost", "http://tauri.localhost"},
		},
		Storage: StorageConfig{
			Enabled: true,
		},
		Tray: TrayConfig{
			Enabled: true,
		},
		Log: LogConfig{
			Level:    "info",
			File:     "",
			RotateMB: 10,
			Keep:     5,
		},
	}
}

// Default returns a configuration populated with defaults and no backing file.
func Default() *Config {
	return defaultConfig()
}

// ConfigDir returns the per-user directory holding config, database and logs.
func ConfigDir() (string, error) {
	base := os.Getenv("APPDATA")
	if base == "" {
		dir, err := os.UserConfigDir()
		if err != nil {
			return "", fmt.Errorf("failed to resolve config directory: %w", err)
		}
		base = dir
	}

	dir := filepath.Join(base, "reloadbridge")
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", fmt.Errorf("failed to create config directory: %w", err)
	}
	return dir, nil
}

// ConfigPath returns the path to the configuration file
func ConfigPath() (string, error) {
	dir, err := ConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "config.toml"), nil
}

// Load reads the TOML file at path (ConfigPath when empty), creating it with
// defaults first if it does not exist. Environment variables override file values.
func Load(path string) (*Config, error) {
	if path == "" {
		p, err := ConfigPath()
		if err != nil {
			return nil, err
		}
		path = p
	}

	if _, err := os.Stat(path); errors.Is(err, os.ErrNotExist) {
		if err := save(path, defaultConfig()); err != nil {
			return nil, fmt.Errorf("failed to create default config: %w", err)
		}
	}

	v := viper.New()
	v.SetConfigFile(path)
	v.SetConfigType("toml")
	setDefaults(v, defaultConfig())
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("failed to read config %s: %w", path, err)
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("failed to decode config: %w", err)
	}
	cfg.path = path

	return cfg, nil
}

// ReadFile decodes the TOML file at path over the defaults, ignoring
// environment overrides. Edits saved from it keep the file free of values that
// only came from the environment.
func ReadFile(path string) (*Config, error) {
	cfg := defaultConfig()
	if _, err := toml.DecodeFile(path, cfg); err != nil {
		return nil, fmt.Errorf("failed to read config %s: %w", path, err)
	}
	cfg.path = path
	return cfg, nil
}

func setDefaults(v *viper.Viper, d *Config) {
	v.SetDefault("target.window_title", d.Target.WindowTitle)
	v.SetDefault("target.reload_command", d.Target.ReloadCommand)
	v.SetDefault("target.settle_delay_ms", d.Target.SettleDelayMs)
	v.SetDefault("target.max_command_len", d.Target.MaxCommandLen)
	v.SetDefault("hotkey.combo", d.Hotkey.Combo)
	v.SetDefault("web.enabled", d.Web.Enabled)
	v.SetDefault("web.port", d.Web.Port)
	v.SetDefault("web.allowed_origins", d.Web.AllowedOrigins)
	v.SetDefault("storage.enabled", d.Storage.Enabled)
	v.SetDefault("tray.enabled", d.Tray.Enabled)
	v.SetDefault("log.level", d.Log.Level)
	v.SetDefault("log.file", d.Log.File)
	v.SetDefault("log.rotate_mb", d.Log.RotateMB)
	v.SetDefault("log.keep", d.Log.Keep)
}

// Path returns the file the configuration was loaded from.
func (c *Config) Path() string {
	return c.path
}

// Save writes the configuration back to the file it was loaded from.
func (c *Config) Save() error {
	if c.path == "" {
		return fmt.Errorf("config has no backing file")
	}
	return save(c.path, c)
}

// Clone returns a deep copy that can be edited without affecting c.
func (c *Config) Clone() *Config {
	out := *c
	out.Web.AllowedOrigins = append([]string(nil), c.Web.AllowedOrigins...)
	return &out
}

// Validate checks values that would make a reload misbehave.
func (c *Config) Validate() error {
	var errs []error

	if strings.TrimSpace(c.Target.WindowTitle) == "" {
		errs = append(errs, fmt.Errorf("target.window_title must not be empty"))
	}
	if strings.TrimSpace(c.Target.ReloadCommand) == "" {
		errs = append(errs, fmt.Errorf("target.reload_command must not be empty"))
	}
	if c.Target.SettleDelayMs < 0 || c.Target.SettleDelayMs > 10000 {
		errs = append(errs, fmt.Errorf("target.settle_delay_ms must be between 0 and 10000, got %d", c.Target.SettleDelayMs))
	}
	if c.Target.MaxCommandLen <= 0 {
		errs = append(errs, fmt.Errorf("target.max_command_len must be positive, got %d", c.Target.MaxCommandLen))
	}
	if c.Web.Enabled && (c.Web.Port <= 0 || c.Web.Port > 65535) {
		errs = append(errs, fmt.Errorf("web.port out of range: %d", c.Web.Port))
	}
	if c.Hotkey.Combo != "" {
		kc, err := ParseHotkey(c.Hotkey.Combo)
		if err == nil {
			_, err = platform.VKCode(kc.Key)
		}
		if err != nil {
			errs = append(errs, fmt.Errorf("hotkey.combo: %w", err))
		}
	}

	return errors.Join(errs...)
}

// Encode writes the configuration as TOML.
func (c *Config) Encode(w io.Writer) error {
	return toml.NewEncoder(w).Encode(c)
}

// save writes the configuration to the TOML file
func save(path string, cfg *Config) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := cfg.Encode(f); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

// KeyCombo represents a parsed keyboard combination
type KeyCombo struct {
	Ctrl  bool
	Shift bool
	Alt   bool
	Win   bool
	Key   string
}

// ParseHotkey parses a hotkey combo string like "ctrl+shift+r" or "ctrl+win"
func ParseHotkey(combo string) (KeyCombo, error) {
	var kc KeyCombo
	combo = strings.TrimSpace(combo)
	if combo == "" {
		return kc, fmt.Errorf("empty hotkey combo")
	}

	parts := strings.Split(strings.ToLower(combo), "+")
	for i, part := range parts {
		part = strings.TrimSpace(part)

		switch part {
		case "ctrl", "control":
			kc.Ctrl = true
		case "shift":
			kc.Shift = true
		case "alt":
			kc.Alt = true
		case "win", "windows":
			kc.Win = true
		default:
			// Only the last part may be a plain key
			if i != len(parts)-1 || part == "" {
				return kc, fmt.Errorf("unknown modifier: %q", part)
			}
			kc.Key = part
		}
	}

	if !kc.Ctrl && !kc.Shift && !kc.Alt && !kc.Win {
		return kc, fmt.Errorf("hotkey %q needs at least one modifier", combo)
	}

	return kc, nil
}
