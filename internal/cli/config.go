package cli

import (
	"os"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/charmbracelet/log"

	"github.com/matzehuels/flowchart/pkg/errors"
	"github.com/matzehuels/flowchart/pkg/session"
)

// Layout engine names accepted in config and on the command line.
const (
	EngineLayered  = "layered"
	EngineGraphviz = "graphviz"
)

// Config is the contents of flowchart.toml.
//
//	[layout]
//	engine = "graphviz"
//	column_gap = 80.0
//	cache_ttl = "24h"
//
//	[server]
//	addr = ":8080"
//	session_ttl = "30m"
//
//	[log]
//	level = "debug"
type Config struct {
	Layout LayoutConfig `toml:"layout"`
	Server ServerConfig `toml:"server"`
	Log    LogConfig    `toml:"log"`
}

// LayoutConfig selects and tunes the layout engine.
type LayoutConfig struct {
	Engine    string  `toml:"engine"`
	ColumnGap float64 `toml:"column_gap"` // 0 keeps the engine default
	RowGap    float64 `toml:"row_gap"`    // 0 keeps the engine default
	Cache     bool    `toml:"cache"`
	CacheTTL  string  `toml:"cache_ttl"`
}

// ServerConfig configures `flowchart serve`.
type ServerConfig struct {
	Addr       string `toml:"addr"`
	SessionTTL string `toml:"session_ttl"`
}

// LogConfig sets the default log level. --verbose wins over it.
type LogConfig struct {
	Level string `toml:"level"`
}

// DefaultConfig returns the settings used when no file is present.
func DefaultConfig() Config {
	return Config{
		Layout: LayoutConfig{
			Engine:   EngineLayered,
			Cache:    true,
			CacheTTL: "24h",
		},
		Server: ServerConfig{
			Addr:       ":8080",
			SessionTTL: session.DefaultTTL.String(),
		},
	}
}

// LoadConfig decodes path over DefaultConfig. A missing file yields the
// defaults unless required is set.
func LoadConfig(path string, required bool) (Config, error) {
	cfg := DefaultConfig()
	if path == "" {
		return cfg, nil
	}
	if _, err := os.Stat(path); os.IsNotExist(err) && !required {
		return cfg, nil
	}
	if _, err := toml.DecodeFile(path, &cfg); err != nil {
		return cfg, errors.Wrap(errors.ErrCodeInvalidFormat, err, "read config %s", path)
	}
	return cfg, nil
}

// Validate checks enumerations and durations.
func (c Config) Validate() error {
	switch c.Layout.Engine {
	case EngineLayered, EngineGraphviz:
	default:
		return errors.New(errors.ErrCodeInvalidInput, "unknown layout engine %q", c.Layout.Engine)
	}
	if c.Layout.ColumnGap < 0 || c.Layout.RowGap < 0 {
		return errors.New(errors.ErrCodeInvalidInput, "layout gaps must not be negative")
	}
	for name, v := range map[string]string{
		"layout.cache_ttl":   c.Layout.CacheTTL,
		"server.session_ttl": c.Server.SessionTTL,
	} {
		if v == "" {
			continue
		}
		if _, err := time.ParseDuration(v); err != nil {
			return errors.Wrap(errors.ErrCodeInvalidInput, err, "%s", name)
		}
	}
	if c.Log.Level != "" {
		if _, err := log.ParseLevel(c.Log.Level); err != nil {
			return errors.Wrap(errors.ErrCodeInvalidInput, err, "log.level")
		}
	}
	return nil
}

func (l LayoutConfig) cacheTTL() time.Duration {
	d, _ := time.ParseDuration(l.CacheTTL)
	return d
}

func (s ServerConfig) sessionTTL() time.Duration {
	d, err := time.ParseDuration(s.SessionTTL)
	if err != nil || d <= 0 {
		return session.DefaultTTL
	}
	return d
}

func (l LogConfig) level() (log.Level, bool) {
	if l.Level == "" {
		return 0, false
	}
	level, err := log.ParseLevel(strings.ToLower(l.Level))
	return level, err == nil
}
