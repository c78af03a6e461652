// Package config loads and validates the sensenote configuration file.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Duration is a time.Duration that reads "300ms" style values from YAML.
type Duration time.Duration

// Std returns the value as a time.Duration.
func (d Duration) Std() time.Duration {
	return time.Duration(d)
}

func (d *Duration) UnmarshalYAML(value *yaml.Node) error {
	var raw string
	if err := value.Decode(&raw); err != nil {
		return fmt.Errorf("config: duration must be a string such as \"300ms\"")
	}
	parsed, err := time.ParseDuration(raw)
	if err != nil {
		return fmt.Errorf("config: invalid duration %q: %w", raw, err)
	}
	*d = Duration(parsed)
	return nil
}

func (d Duration) MarshalYAML() (interface{}, error) {
	return time.Duration(d).String(), nil
}

// Config is the root configuration, read from ~/.sensenote/config.yaml.
type Config struct {
	// DataDir roots everything sensenote writes: the anchor store, the page
	// cache, and session logs.
	DataDir string `yaml:"data_dir" json:"data_dir"`

	Capture  CaptureConfig  `yaml:"capture" json:"capture"`
	Restore  RestoreConfig  `yaml:"restore" json:"restore"`
	Menu     MenuConfig     `yaml:"menu" json:"menu"`
	Sites    SitesConfig    `yaml:"sites" json:"sites"`
	Snapshot SnapshotConfig `yaml:"snapshot" json:"snapshot"`
}

// CaptureConfig controls how selections become anchors.
type CaptureConfig struct {
	// ContextLength is the context window width in runes on each side of the
	// exact text.
	ContextLength int `yaml:"context_length" json:"context_length"`

	// SettleDelay is how long a selection must sit unchanged before it is
	// read, so half-finished drags are not captured.
	SettleDelay Duration `yaml:"settle_delay" json:"settle_delay"`

	DefaultColor string   `yaml:"default_color" json:"default_color"`
	Palette      []string `yaml:"palette" json:"palette"`
}

// RestoreConfig controls restoration and the scroll-to-highlight retry loop.
type RestoreConfig struct {
	ScrollAttempts int      `yaml:"scroll_attempts" json:"scroll_attempts"`
	ScrollDelay    Duration `yaml:"scroll_delay" json:"scroll_delay"`
}

// MenuConfig controls the selection menu and dialogs.
type MenuConfig struct {
	// SuppressionWindow is how long outside clicks are swallowed after a
	// surface opens, so the click that opened it cannot also dismiss it.
	SuppressionWindow Duration `yaml:"suppression_window" json:"suppression_window"`
}

// SitesConfig holds the allow and deny globs deciding where capture is
// enabled. Deny wins; an empty allow list allows every site not denied.
type SitesConfig struct {
	Allowed []string `yaml:"allowed" json:"allowed"`
	Denied  []string `yaml:"denied" json:"denied"`
}

// SnapshotConfig controls the page fetcher.
type SnapshotConfig struct {
	Headless bool     `yaml:"headless" json:"headless"`
	Timeout  Duration `yaml:"timeout" json:"timeout"`
}

// Default returns the configuration used when no file exists.
func Default() *Config {
	return &Config{
		Capture: CaptureConfig{
			ContextLength: 50,
			SettleDelay:   Duration(150 * time.Millisecond),
			DefaultColor:  "#ffe066",
			Palette:       []string{"#ffe066", "#90ee90", "#add8e6", "#ffb6c1", "#e6ccff"},
		},
		Restore: RestoreConfig{
			ScrollAttempts: 10,
			ScrollDelay:    Duration(300 * time.Millisecond),
		},
		Menu: MenuConfig{
			SuppressionWindow: Duration(300 * time.Millisecond),
		},
		Snapshot: SnapshotConfig{
			Headless: true,
			Timeout:  Duration(30 * time.Second),
		},
	}
}

// DefaultPath returns the standard config file location.
func DefaultPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("config: resolve home directory: %w", err)
	}
	return filepath.Join(home, ".sensenote", "config.yaml"), nil
}

// Load reads the configuration at path, layered over the defaults. A missing
// file yields the defaults unchanged.
func Load(path string) (*Config, error) {
	cfg := Default()
	b, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		if err := cfg.finish(); err != nil {
			return nil, err
		}
		return cfg, nil
	}
	if err != nil {
		return nil, fmt.Errorf("config: read %s: %w", path, err)
	}
	if err := yaml.Unmarshal(b, cfg); err != nil {
		return nil, fmt.Errorf("config: parse %s: %w", path, err)
	}
	if err := cfg.finish(); err != nil {
		return nil, fmt.Errorf("config: %s: %w", path, err)
	}
	return cfg, nil
}

// finish fills derived defaults and validates.
func (c *Config) finish() error {
	if c.DataDir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return fmt.Errorf("config: resolve home directory: %w", err)
		}
		c.DataDir = filepath.Join(home, ".sensenote")
	}
	if c.Capture.DefaultColor == "" && len(c.Capture.Palette) > 0 {
		c.Capture.DefaultColor = c.Capture.Palette[0]
	}
	return c.Validate()
}

// Validate checks the configuration for values the rest of the system cannot
// work with.
func (c *Config) Validate() error {
	if c.Capture.ContextLength < 0 {
		return fmt.Errorf("capture.context_length cannot be negative")
	}
	if c.Capture.SettleDelay < 0 {
		return fmt.Errorf("capture.settle_delay cannot be negative")
	}
	if c.Restore.ScrollAttempts < 1 {
		return fmt.Errorf("restore.scroll_attempts must be at least 1")
	}
	if c.Restore.ScrollDelay < 0 {
		return fmt.Errorf("restore.scroll_delay cannot be negative")
	}
	if c.Menu.SuppressionWindow < 0 {
		return fmt.Errorf("menu.suppression_window cannot be negative")
	}
	if c.Snapshot.Timeout <= 0 {
		return fmt.Errorf("snapshot.timeout must be positive")
	}
	for _, color := range append([]string{c.Capture.DefaultColor}, c.Capture.Palette...) {
		if color != "" && !strings.HasPrefix(color, "#") {
			return fmt.Errorf("color %q must be a #rrggbb value", color)
		}
	}
	if _, err := c.SiteRules(); err != nil {
		return err
	}
	return nil
}

// StorePath returns the anchor store location under the data directory.
func (c *Config) StorePath() string {
	return filepath.Join(c.DataDir, "anchors.json")
}

// PagesDir returns the page cache directory.
func (c *Config) PagesDir() string {
	return filepath.Join(c.DataDir, "pages")
}

// LogsDir returns the session log directory.
func (c *Config) LogsDir() string {
	return filepath.Join(c.DataDir, "logs")
}
