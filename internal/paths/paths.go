package paths

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
)

// Environment variables read by FromEnv.
const (
	EnvDaemonPath    = "DAEMON_MD_PATH"
	EnvXDGConfigHome = "XDG_CONFIG_HOME"
	EnvHome          = "HOME"
)

const (
	daemonSubpath   = "daemon/daemon.md"
	fallbackSubpath = "public/daemon.example.md"
	outputSubpath   = "src/generated/daemon-data.ts"
)

// ErrSourceNotFound means neither the primary nor the fallback daemon.md exists.
var ErrSourceNotFound = errors.New("daemon.md not found")

// Config holds the inputs to path resolution. All fields are plain values so
// resolution never reads the process environment itself.
type Config struct {
	Override    string // explicit daemon.md path
	ConfigHome  string // XDG config home; empty means Home/.config
	Home        string
	ProjectRoot string
}

// FromEnv builds a Config from an environment lookup such as os.Getenv.
func FromEnv(getenv func(string) string, projectRoot string) Config {
	return Config{
		Override:    getenv(EnvDaemonPath),
		ConfigHome:  getenv(EnvXDGConfigHome),
		Home:        getenv(EnvHome),
		ProjectRoot: projectRoot,
	}
}

// Primary returns the daemon.md path to try first.
func (c Config) Primary() string {
	if c.Override != "" {
		return c.Override
	}
	return filepath.Join(c.configHome(), filepath.FromSlash(daemonSubpath))
}

// Fallback returns the example daemon.md bundled with the site.
func (c Config) Fallback() string {
	return filepath.Join(c.ProjectRoot, filepath.FromSlash(fallbackSubpath))
}

// Output returns the generated data file path.
func (c Config) Output() string {
	return filepath.Join(c.ProjectRoot, filepath.FromSlash(outputSubpath))
}

// ConfigDir returns the daemon directory under the config home.
func (c Config) ConfigDir() string {
	return filepath.Join(c.configHome(), "daemon")
}

func (c Config) configHome() string {
	if c.ConfigHome != "" {
		return c.ConfigHome
	}
	return filepath.Join(c.Home, ".config")
}

// Source is a located daemon.md.
type Source struct {
	Path       string
	IsFallback bool
}

// Locate picks the first of primary and fallback that exists.
func Locate(primary, fallback string) (Source, error) {
	if exists(primary) {
		return Source{Path: primary}, nil
	}
	slog.Debug("primary daemon.md missing",
		"component", "paths",
		"operation", "locate",
		"path", primary)

	if exists(fallback) {
		return Source{Path: fallback, IsFallback: true}, nil
	}
	return Source{}, fmt.Errorf("%w: neither %s nor %s exists", ErrSourceNotFound, primary, fallback)
}

func exists(path string) bool {
	if path == "" {
		return false
	}
	info, err := os.Stat(path)
	if err != nil {
		if !errors.Is(err, fs.ErrNotExist) {
			slog.Warn("stat failed",
				"component", "paths",
				"operation", "locate",
				"path", path,
				"error", err)
		}
		return false
	}
	return !info.IsDir()
}
