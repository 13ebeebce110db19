// Package config loads erdsync settings from a TOML file.
//
// The file lives at $XDG_CONFIG_HOME/erdsync/config.toml (falling back to
// ~/.config/erdsync/config.toml). A missing file is not an error; every
// field has a default and command-line flags override what the file says.
//
//	[layout]
//	center_x = 400
//	center_y = 300
//
//	[editor]
//	debounce_ms = 250
//
//	[server]
//	addr  = ":8080"
//	store = "redis"
//	redis_addr = "localhost:6379"
package config

import (
	"os"
	"path/filepath"
	"time"

	"github.com/BurntSushi/toml"

	apperr "github.com/matzehuels/erdsync/pkg/errors"
	"github.com/matzehuels/erdsync/pkg/layout"
	"github.com/matzehuels/erdsync/pkg/render"
)

const appName = "erdsync"

// Store backends for editing sessions.
const (
	StoreMemory = "memory"
	StoreFile   = "file"
	StoreRedis  = "redis"
	StoreMongo  = "mongo"
)

// Config is the root of the config file.
type Config struct {
	Layout LayoutConfig `toml:"layout"`
	Editor EditorConfig `toml:"editor"`
	Render RenderConfig `toml:"render"`
	Server ServerConfig `toml:"server"`
}

// LayoutConfig tunes the spiral used for nodes without coordinates. The
// center defaults to (400, 300); an explicit center_x = 0 or center_y = 0
// is kept. Zero or omitted base_radius, step and growth use their defaults.
type LayoutConfig struct {
	CenterX    float64 `toml:"center_x"`
	CenterY    float64 `toml:"center_y"`
	BaseRadius float64 `toml:"base_radius"`
	Step       float64 `toml:"step"`
	Growth     float64 `toml:"growth"`
}

// EditorConfig tunes the live editing loop.
type EditorConfig struct {
	DebounceMS int `toml:"debounce_ms"`
}

// RenderConfig sets render defaults.
type RenderConfig struct {
	Formats  []string `toml:"formats"`
	Detailed bool     `toml:"detailed"`
}

// ServerConfig configures `erdsync serve`.
type ServerConfig struct {
	Addr       string `toml:"addr"`
	Store      string `toml:"store"`
	SessionDir string `toml:"session_dir"`
	RedisAddr  string `toml:"redis_addr"`
	MongoURI   string `toml:"mongo_uri"`
}

// Default returns the configuration used when no file exists.
func Default() Config {
	l := layout.DefaultConfig()
	return Config{
		Layout: LayoutConfig{
			CenterX:    l.CenterX,
			CenterY:    l.CenterY,
			BaseRadius: l.BaseRadius,
			Step:       l.Step,
			Growth:     l.Growth,
		},
		Editor: EditorConfig{DebounceMS: 300},
		Render: RenderConfig{Formats: []string{string(render.FormatSVG)}},
		Server: ServerConfig{
			Addr:      ":8080",
			Store:     StoreMemory,
			RedisAddr: "localhost:6379",
			MongoURI:  "mongodb://localhost:27017",
		},
	}
}

// Load reads path on top of the defaults. An empty path means the XDG
// location; a missing file at the XDG location yields the defaults, while a
// missing file named explicitly is an error.
func Load(path string) (Config, error) {
	cfg := Default()
	explicit := path != ""
	if !explicit {
		p, err := Path()
		if err != nil {
			return cfg, nil
		}
		path = p
	}

	if _, err := toml.DecodeFile(path, &cfg); err != nil {
		if !explicit && os.IsNotExist(err) {
			return cfg, nil
		}
		return cfg, apperr.Wrap(apperr.ErrCodeInvalidInput, err, "load config %s", path)
	}
	if err := cfg.Validate(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

// Validate checks values the decoder cannot.
func (c Config) Validate() error {
	if c.Editor.DebounceMS < 0 {
		return apperr.New(apperr.ErrCodeInvalidInput, "editor.debounce_ms must not be negative")
	}
	for _, f := range c.Render.Formats {
		if _, err := render.ParseFormat(f); err != nil {
			return err
		}
	}
	for name, v := range map[string]float64{
		"layout.base_radius": c.Layout.BaseRadius,
		"layout.step":        c.Layout.Step,
		"layout.growth":      c.Layout.Growth,
	} {
		if v < 0 {
			return apperr.New(apperr.ErrCodeInvalidInput, "%s must not be negative", name)
		}
	}
	switch c.Server.Store {
	case StoreMemory, StoreFile, StoreRedis, StoreMongo:
	default:
		return apperr.New(apperr.ErrCodeInvalidInput, "server.store: unknown backend %q", c.Server.Store)
	}
	return nil
}

// LayoutConfig converts the [layout] section for the parser.
func (c Config) LayoutConfig() layout.Config {
	return layout.Config{
		CenterX:    c.Layout.CenterX,
		CenterY:    c.Layout.CenterY,
		BaseRadius: c.Layout.BaseRadius,
		Step:       c.Layout.Step,
		Growth:     c.Layout.Growth,
		CenterSet:  true,
	}
}

// Debounce returns the editor debounce delay.
func (c Config) Debounce() time.Duration {
	return time.Duration(c.Editor.DebounceMS) * time.Millisecond
}

// Path returns the default config file location.
func Path() (string, error) {
	if home := os.Getenv("XDG_CONFIG_HOME"); home != "" {
		return filepath.Join(home, appName, "config.toml"), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".config", appName, "config.toml"), nil
}

// Write encodes cfg to path, creating parent directories.
func Write(path string, cfg Config) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := toml.NewEncoder(f).Encode(cfg); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}
