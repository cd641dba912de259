package cli

import (
	"context"
	"io"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/flowchart/pkg/errors"
	"github.com/matzehuels/flowchart/pkg/layout"
	"github.com/matzehuels/flowchart/pkg/session"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "flowchart.toml")
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestLoadConfig(t *testing.T) {
	path := writeConfig(t, `
[layout]
engine = "graphviz"
column_gap = 144.0
cache = false

[server]
addr = "127.0.0.1:9000"
session_ttl = "5m"

[log]
level = "debug"
`)

	cfg, err := LoadConfig(path, true)
	if err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}
	if err := cfg.Validate(); err != nil {
		t.Fatalf("Validate: %v", err)
	}
	if cfg.Layout.Engine != EngineGraphviz || cfg.Layout.ColumnGap != 144 || cfg.Layout.Cache {
		t.Errorf("layout = %+v", cfg.Layout)
	}
	if cfg.Layout.CacheTTL != "24h" {
		t.Errorf("cache_ttl = %q, want default 24h", cfg.Layout.CacheTTL)
	}
	if cfg.Server.Addr != "127.0.0.1:9000" || cfg.Server.sessionTTL() != 5*time.Minute {
		t.Errorf("server = %+v", cfg.Server)
	}
	if level, ok := cfg.Log.level(); !ok || level != log.DebugLevel {
		t.Errorf("log level = %v, %v", level, ok)
	}
}

func TestLoadConfigMissing(t *testing.T) {
	path := filepath.Join(t.TempDir(), "absent.toml")

	cfg, err := LoadConfig(path, false)
	if err != nil {
		t.Fatalf("optional missing file: %v", err)
	}
	if cfg != DefaultConfig() {
		t.Errorf("got %+v, want defaults", cfg)
	}

	if _, err := LoadConfig(path, true); err == nil {
		t.Error("required missing file should fail")
	}
}

func TestLoadConfigMalformed(t *testing.T) {
	path := writeConfig(t, "[layout\nengine = ")
	_, err := LoadConfig(path, true)
	if !errors.Is(err, errors.ErrCodeInvalidFormat) {
		t.Errorf("err = %v, want INVALID_FORMAT", err)
	}
}

func TestConfigValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr bool
	}{
		{"defaults", func(*Config) {}, false},
		{"graphviz", func(c *Config) { c.Layout.Engine = EngineGraphviz }, false},
		{"unknown engine", func(c *Config) { c.Layout.Engine = "spring" }, true},
		{"negative gap", func(c *Config) { c.Layout.RowGap = -1 }, true},
		{"bad cache ttl", func(c *Config) { c.Layout.CacheTTL = "soon" }, true},
		{"bad session ttl", func(c *Config) { c.Server.SessionTTL = "1 hour" }, true},
		{"bad log level", func(c *Config) { c.Log.Level = "loud" }, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(&cfg)
			err := cfg.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestSessionTTLFallback(t *testing.T) {
	if got := (ServerConfig{}).sessionTTL(); got != session.DefaultTTL {
		t.Errorf("sessionTTL() = %v, want %v", got, session.DefaultTTL)
	}
}

func TestLayoutFlagOverridesConfig(t *testing.T) {
	t.Setenv("XDG_CACHE_HOME", t.TempDir())
	path := writeConfig(t, "[layout]\nengine = \"graphviz\"\n")

	c := New(io.Discard, LogInfo)
	root := c.RootCommand()
	root.SetOut(io.Discard)
	root.SetArgs([]string{"--config", path, "--layout", "layered", "cache", "path"})
	if err := root.ExecuteContext(context.Background()); err != nil {
		t.Fatal(err)
	}
	if c.Config.Layout.Engine != EngineLayered {
		t.Errorf("engine = %q, want %q", c.Config.Layout.Engine, EngineLayered)
	}
}

func TestConfigLogLevel(t *testing.T) {
	t.Setenv("XDG_CACHE_HOME", t.TempDir())
	path := writeConfig(t, "[log]\nlevel = \"warn\"\n")

	c := New(io.Discard, LogInfo)
	root := c.RootCommand()
	root.SetOut(io.Discard)
	root.SetArgs([]string{"--config", path, "cache", "path"})
	if err := root.ExecuteContext(context.Background()); err != nil {
		t.Fatal(err)
	}
	if got := c.Logger.GetLevel(); got != log.WarnLevel {
		t.Errorf("level = %v, want warn", got)
	}
}

func TestNewLayouter(t *testing.T) {
	tests := []struct {
		name    string
		cfg     LayoutConfig
		noCache bool
		want    string
	}{
		{"layered default gaps", LayoutConfig{Engine: EngineLayered}, true, "layered(80,40)"},
		{"layered custom gaps", LayoutConfig{Engine: EngineLayered, ColumnGap: 100, RowGap: 20}, true, "layered(100,20)"},
		{"graphviz", LayoutConfig{Engine: EngineGraphviz, ColumnGap: 144}, true, "graphviz(2,0.5)"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := New(io.Discard, LogInfo)
			c.Config.Layout = tt.cfg
			l, err := c.newLayouter(tt.noCache)
			if err != nil {
				t.Fatal(err)
			}
			if l.Name() != tt.want {
				t.Errorf("Name() = %q, want %q", l.Name(), tt.want)
			}
		})
	}

	t.Run("cached", func(t *testing.T) {
		t.Setenv("XDG_CACHE_HOME", t.TempDir())
		c := New(io.Discard, LogInfo)
		l, err := c.newLayouter(false)
		if err != nil {
			t.Fatal(err)
		}
		if _, ok := l.(*layout.Cached); !ok {
			t.Errorf("newLayouter(false) = %T, want *layout.Cached", l)
		}
	})

	t.Run("unknown", func(t *testing.T) {
		c := New(io.Discard, LogInfo)
		c.Config.Layout.Engine = "spring"
		if _, err := c.newLayouter(true); !errors.Is(err, errors.ErrCodeInvalidInput) {
			t.Errorf("err = %v, want INVALID_INPUT", err)
		}
	})
}
