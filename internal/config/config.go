package config

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/pbaille/daemon/internal/daemonmd"
	"github.com/pbaille/daemon/internal/generate"
)

// EnvAllowedHosts lists extra preview hostnames, comma-separated.
const EnvAllowedHosts = "ALLOWED_HOSTS"

// Config holds build settings. Zero values fall back to the defaults in
// Default(); a daemon.yaml at the project root may override them.
type Config struct {
	// Output overrides the generated data file path (relative to the project root).
	Output string `yaml:"output"`

	// Fallback overrides the example daemon.md path (relative to the project root).
	Fallback string `yaml:"fallback"`

	// Tagline is the hero tagline.
	Tagline string `yaml:"tagline"`

	// ToolCount is emitted as the toolCount constant.
	ToolCount int `yaml:"tool_count"`

	Server Server `yaml:"server"`
}

// Server configures the preview API.
type Server struct {
	Addr string `yaml:"addr"`

	// AllowedHosts are accepted in addition to localhost and *.local.
	AllowedHosts []string `yaml:"allowed_hosts"`
}

// Default returns the built-in settings.
func Default() Config {
	return Config{
		Tagline:   daemonmd.DefaultTagline,
		ToolCount: generate.DefaultToolCount,
		Server: Server{
			Addr: "0.0.0.0:5177",
		},
	}
}

// Load reads a YAML config file over Default(). A missing file is not an error.
func Load(path string) (Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			slog.Debug("no config file, using defaults",
				"component", "config",
				"operation", "load",
				"path", path)
			return cfg, nil
		}
		return cfg, fmt.Errorf("config: load: %w", err)
	}

	var file Config
	if err := yaml.Unmarshal(data, &file); err != nil {
		return cfg, fmt.Errorf("config: load %s: %w", path, err)
	}
	cfg.merge(file)

	slog.Info("config loaded", "component", "config", "operation", "load", "path", path)
	return cfg, nil
}

func (c *Config) merge(o Config) {
	if o.Output != "" {
		c.Output = o.Output
	}
	if o.Fallback != "" {
		c.Fallback = o.Fallback
	}
	if o.Tagline != "" {
		c.Tagline = o.Tagline
	}
	if o.ToolCount > 0 {
		c.ToolCount = o.ToolCount
	}
	if o.Server.Addr != "" {
		c.Server.Addr = o.Server.Addr
	}
	c.Server.AllowedHosts = append(c.Server.AllowedHosts, o.Server.AllowedHosts...)
}

// WithEnvHosts appends the hosts listed in ALLOWED_HOSTS. Empty entries are skipped.
func (c Config) WithEnvHosts(getenv func(string) string) Config {
	hosts := append([]string(nil), c.Server.AllowedHosts...)
	for _, h := range strings.Split(getenv(EnvAllowedHosts), ",") {
		if h = strings.TrimSpace(h); h != "" {
			hosts = append(hosts, h)
		}
	}
	c.Server.AllowedHosts = hosts
	return c
}
