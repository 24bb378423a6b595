// Package config loads cmdbar settings.
//
// Settings come from built-in defaults, then a TOML file (by default
// $XDG_CONFIG_HOME/cmdbar/config.toml), then CMDBAR_* environment
// variables. Command-line flags are applied by the caller.
//
//	[log]
//	level = "debug"
//	file = "cmdbar.log"
//
//	[palette]
//	limit = 50
//
//	[match]
//	position_weight = 100
//	spread_weight = 100
//
//	[catalog]
//	menu = "menu.yaml"
//	scripts = "scripts"
//	script_timeout = "5s"
//	watch = true
//
//	[ui]
//	width = 80
//	height = 10
//	highlight = "yellow"
//
// Relative paths from the file or the defaults are resolved against the
// directory of the config file. Paths from the environment are used as
// given, relative to the working directory.
package config

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/pelletier/go-toml/v2"

	"github.com/dshills/cmdbar/internal/logging"
	"github.com/dshills/cmdbar/internal/match"
)

// Config holds all settings.
type Config struct {
	Log     LogConfig     `toml:"log"`
	Palette PaletteConfig `toml:"palette"`
	Match   MatchConfig   `toml:"match"`
	Catalog CatalogConfig `toml:"catalog"`
	UI      UIConfig      `toml:"ui"`

	// Path is the file the settings were read from, if any.
	Path string `toml:"-"`
}

// LogConfig configures logging.
type LogConfig struct {
	Level string `toml:"level"`
	File  string `toml:"file"`
}

// PaletteConfig configures the command bar.
type PaletteConfig struct {
	// Limit caps the number of candidates. Zero means unlimited.
	Limit int `toml:"limit"`
}

// MatchConfig tunes scoring.
type MatchConfig struct {
	PositionWeight int `toml:"position_weight"`
	SpreadWeight   int `toml:"spread_weight"`
}

// CatalogConfig locates catalog sources.
type CatalogConfig struct {
	Menu          string   `toml:"menu"`
	Scripts       string   `toml:"scripts"`
	Outline       string   `toml:"outline"`
	ScriptTimeout Duration `toml:"script_timeout"`
	Watch         bool     `toml:"watch"`
}

// UIConfig configures the terminal UI.
type UIConfig struct {
	Width     int    `toml:"width"`
	Height    int    `toml:"height"`
	Prompt    string `toml:"prompt"`
	Highlight string `toml:"highlight"`
	Selected  string `toml:"selected"`
}

// Duration is a time.Duration written as a string such as "5s".
type Duration time.Duration

// UnmarshalText parses a duration string.
func (d *Duration) UnmarshalText(text []byte) error {
	v, err := time.ParseDuration(string(text))
	if err != nil {
		return err
	}
	*d = Duration(v)
	return nil
}

// MarshalText formats the duration.
func (d Duration) MarshalText() ([]byte, error) {
	return []byte(time.Duration(d).String()), nil
}

// Std returns the duration as a time.Duration.
func (d Duration) Std() time.Duration {
	return time.Duration(d)
}

// MaxWeight bounds the match weights so that typical scores stay well
// inside one scoring tier.
var MaxWeight = match.DefaultWeights().Tier / 1000

// Dir returns the default configuration directory.
func Dir() string {
	if dir := os.Getenv("XDG_CONFIG_HOME"); dir != "" {
		return filepath.Join(dir, "cmdbar")
	}
	if home, err := os.UserHomeDir(); err == nil {
		return filepath.Join(home, ".config", "cmdbar")
	}
	return filepath.Join(".", ".cmdbar")
}

// DefaultPath returns the default configuration file path.
func DefaultPath() string {
	return filepath.Join(Dir(), "config.toml")
}

// Default returns the built-in settings.
func Default() *Config {
	w := match.DefaultWeights()
	return &Config{
		Log: LogConfig{
			Level: "info",
		},
		Palette: PaletteConfig{
			Limit: 50,
		},
		Match: MatchConfig{
			PositionWeight: w.Position,
			SpreadWeight:   w.Spread,
		},
		Catalog: CatalogConfig{
			Menu:          "menu.yaml",
			Scripts:       "scripts",
			ScriptTimeout: Duration(5 * time.Second),
			Watch:         true,
		},
		UI: UIConfig{
			Width:     80,
			Height:    10,
			Prompt:    "> ",
			Highlight: "yellow",
			Selected:  "navy",
		},
	}
}

// Load reads settings from path over the defaults, applies environment
// overrides and validates the result. An empty path means DefaultPath.
// A missing file is not an error.
func Load(path string) (*Config, error) {
	if path == "" {
		path = DefaultPath()
	}

	cfg := Default()
	data, err := os.ReadFile(path)
	switch {
	case err == nil:
		if err := decode(path, data, cfg); err != nil {
			return nil, err
		}
		cfg.Path = path
	case os.IsNotExist(err):
	default:
		return nil, fmt.Errorf("reading config file %s: %w", path, err)
	}

	cfg.resolvePaths(filepath.Dir(path))
	if err := cfg.ApplyEnv(os.LookupEnv); err != nil {
		return nil, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// decode overlays TOML data onto cfg, rejecting unknown keys.
func decode(path string, data []byte, cfg *Config) error {
	dec := toml.NewDecoder(bytes.NewReader(data))
	dec.DisallowUnknownFields()
	if err := dec.Decode(cfg); err != nil {
		perr := &ParseError{Path: path, Message: err.Error(), Err: err}
		var derr *toml.DecodeError
		if errors.As(err, &derr) {
			perr.Line, perr.Column = derr.Position()
		}
		var serr *toml.StrictMissingError
		if errors.As(err, &serr) && len(serr.Errors) > 0 {
			perr.Line, perr.Column = serr.Errors[0].Position()
			perr.Message = "unknown key " + strings.Join(serr.Errors[0].Key(), ".")
		}
		return perr
	}
	return nil
}

// envMapping maps environment variables to setters.
var envMapping = map[string]func(c *Config, v string) error{
	"CMDBAR_LOG_LEVEL": func(c *Config, v string) error { c.Log.Level = v; return nil },
	"CMDBAR_LOG_FILE":  func(c *Config, v string) error { c.Log.File = v; return nil },
	"CMDBAR_MENU":      func(c *Config, v string) error { c.Catalog.Menu = v; return nil },
	"CMDBAR_SCRIPTS":   func(c *Config, v string) error { c.Catalog.Scripts = v; return nil },
	"CMDBAR_OUTLINE":   func(c *Config, v string) error { c.Catalog.Outline = v; return nil },
	"CMDBAR_LIMIT": func(c *Config, v string) error {
		n, err := strconv.Atoi(strings.TrimSpace(v))
		if err != nil {
			return invalid("CMDBAR_LIMIT", v, "not an integer")
		}
		c.Palette.Limit = n
		return nil
	},
	"CMDBAR_WATCH": func(c *Config, v string) error {
		b, err := strconv.ParseBool(strings.TrimSpace(v))
		if err != nil {
			return invalid("CMDBAR_WATCH", v, "not a boolean")
		}
		c.Catalog.Watch = b
		return nil
	},
}

// ApplyEnv applies CMDBAR_* overrides using lookup.
func (c *Config) ApplyEnv(lookup func(string) (string, bool)) error {
	for name, set := range envMapping {
		v, ok := lookup(name)
		if !ok {
			continue
		}
		if err := set(c, v); err != nil {
			return err
		}
	}
	return nil
}

// resolvePaths makes relative catalog and log paths relative to dir.
func (c *Config) resolvePaths(dir string) {
	for _, p := range []*string{&c.Catalog.Menu, &c.Catalog.Scripts, &c.Catalog.Outline, &c.Log.File} {
		if *p != "" && !filepath.IsAbs(*p) {
			*p = filepath.Join(dir, *p)
		}
	}
}

// Validate checks ranges and enumerations.
func (c *Config) Validate() error {
	if _, err := logging.ParseLevel(c.Log.Level); err != nil {
		return invalid("log.level", c.Log.Level, "must be debug, info, warn, or error")
	}
	if c.Palette.Limit < 0 {
		return invalid("palette.limit", c.Palette.Limit, "must not be negative")
	}
	if c.Match.PositionWeight <= 0 || c.Match.PositionWeight > MaxWeight {
		return invalid("match.position_weight", c.Match.PositionWeight, "must be between 1 and %d", MaxWeight)
	}
	if c.Match.SpreadWeight <= 0 || c.Match.SpreadWeight > MaxWeight {
		return invalid("match.spread_weight", c.Match.SpreadWeight, "must be between 1 and %d", MaxWeight)
	}
	if c.Catalog.ScriptTimeout <= 0 {
		return invalid("catalog.script_timeout", c.Catalog.ScriptTimeout.Std(), "must be positive")
	}
	if c.UI.Width < 20 {
		return invalid("ui.width", c.UI.Width, "must be at least 20")
	}
	if c.UI.Height < 1 {
		return invalid("ui.height", c.UI.Height, "must be at least 1")
	}
	return nil
}

// LogLevel returns the parsed log level.
func (c *Config) LogLevel() logging.Level {
	level, _ := logging.ParseLevel(c.Log.Level)
	return level
}

// MatchOptions returns matcher options for these settings.
func (c *Config) MatchOptions() match.Options {
	w := match.DefaultWeights()
	w.Position = c.Match.PositionWeight
	w.Spread = c.Match.SpreadWeight
	return match.Options{Weights: w, Limit: c.Palette.Limit}
}
