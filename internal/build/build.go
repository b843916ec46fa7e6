package build

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/pbaille/daemon/internal/config"
	"github.com/pbaille/daemon/internal/daemonmd"
	"github.com/pbaille/daemon/internal/domain"
	"github.com/pbaille/daemon/internal/generate"
	"github.com/pbaille/daemon/internal/paths"
	"github.com/pbaille/daemon/internal/platform"
)

const artifactPerm = 0644

// Recorder stores build history. Implemented by *store.Store.
type Recorder interface {
	RecordBuild(b domain.Build) (*domain.Build, error)
}

// Options configures a pipeline run.
type Options struct {
	Paths    paths.Config
	Config   config.Config
	// OpenRecorder is called only after the artifact is written.
	// Optional; may return nil.
	OpenRecorder func() Recorder
	Now      func() time.Time // defaults to time.Now
	Out      io.Writer        // progress lines; defaults to io.Discard
}

// Result describes a completed run.
type Result struct {
	Source     paths.Source
	OutputPath string
	Sections   domain.Sections
	Daemon     domain.DaemonData
	Hero       domain.HeroData
	Checksum   string
}

// FallbackPath is the example daemon.md, honoring a configured override.
func (o Options) FallbackPath() string {
	return o.rooted(o.Config.Fallback, o.Paths.Fallback())
}

// OutputPath is the generated module path, honoring a configured override.
func (o Options) OutputPath() string {
	return o.rooted(o.Config.Output, o.Paths.Output())
}

func (o Options) rooted(p, def string) string {
	if p == "" {
		return def
	}
	if filepath.IsAbs(p) {
		return p
	}
	return filepath.Join(o.Paths.ProjectRoot, p)
}

// Load locates daemon.md and parses it without writing anything.
func Load(opts Options) (paths.Source, string, domain.Sections, error) {
	out := opts.out()
	primary := opts.Paths.Primary()
	fallback := opts.FallbackPath()

	src, err := paths.Locate(primary, fallback)
	if err != nil {
		return src, "", nil, err
	}
	if src.IsFallback {
		fmt.Fprintf(out, "Primary path not found: %s\n", primary)
		fmt.Fprintf(out, "Falling back to: %s\n", fallback)
	}
	fmt.Fprintf(out, "Source: %s\n", src.Path)

	data, err := os.ReadFile(src.Path)
	if err != nil {
		return src, "", nil, fmt.Errorf("read %s: %w", src.Path, err)
	}
	content := string(data)
	return src, content, daemonmd.ParseSections(content), nil
}

// Run executes the whole pipeline: locate, parse, transform, render and
// write the generated module. Nothing is written unless every step before
// the write succeeds.
func Run(opts Options) (*Result, error) {
	out := opts.out()
	now := time.Now
	if opts.Now != nil {
		now = opts.Now
	}

	fmt.Fprintln(out, "Parsing daemon.md...")

	src, content, sections, err := Load(opts)
	if err != nil {
		return nil, err
	}
	fmt.Fprintf(out, "Found %d sections\n", len(sections))

	started := now()
	res := &Result{
		Source:     src,
		OutputPath: opts.OutputPath(),
		Sections:   sections,
		Daemon:     daemonmd.Transform(sections, content, started),
		Hero:       daemonmd.ExtractHero(sections, opts.Config.Tagline),
	}

	toolCount := opts.Config.ToolCount
	if toolCount <= 0 {
		toolCount = generate.DefaultToolCount
	}
	rendered, err := generate.Render(generate.Artifact{
		Source:      src.Path,
		GeneratedAt: started,
		Daemon:      res.Daemon,
		Hero:        res.Hero,
		ToolCount:   toolCount,
	})
	if err != nil {
		return nil, err
	}

	if err := platform.WriteFileAtomic(res.OutputPath, rendered, artifactPerm); err != nil {
		return nil, err
	}
	sum := sha256.Sum256(rendered)
	res.Checksum = hex.EncodeToString(sum[:])

	fmt.Fprintf(out, "Generated: %s\n", res.OutputPath)
	fmt.Fprintf(out, "  - %d books\n", len(res.Daemon.FavoriteBooks))
	fmt.Fprintf(out, "  - %d movies\n", len(res.Daemon.FavoriteMovies))
	fmt.Fprintf(out, "  - %d TELOS items\n", len(res.Daemon.Telos))
	fmt.Fprintf(out, "  - %d projects\n", len(res.Daemon.WhatImBuilding))

	slog.Info("daemon data generated",
		"component", "build",
		"operation", "run",
		"source", src.Path,
		"fallback", src.IsFallback,
		"output", res.OutputPath,
		"sections", len(sections))

	if opts.OpenRecorder != nil {
		if r := opts.OpenRecorder(); r != nil {
			record(r, res, started)
		}
	}

	return res, nil
}

// record saves history; failures are logged and never fail the build.
func record(r Recorder, res *Result, at time.Time) {
	b, err := r.RecordBuild(domain.Build{
		SourcePath:   res.Source.Path,
		OutputPath:   res.OutputPath,
		SectionCount: len(res.Sections),
		TelosCount:   len(res.Daemon.Telos),
		BookCount:    len(res.Daemon.FavoriteBooks),
		MovieCount:   len(res.Daemon.FavoriteMovies),
		ProjectCount: len(res.Daemon.WhatImBuilding),
		LastUpdated:  res.Daemon.LastUpdated,
		Checksum:     res.Checksum,
		GeneratedAt:  at,
	})
	if err != nil {
		slog.Warn("build history not recorded",
			"component", "build",
			"operation", "record",
			"error", err)
		return
	}
	slog.Debug("build recorded", "component", "build", "operation", "record", "id", b.ID)
}

func (o Options) out() io.Writer {
	if o.Out == nil {
		return io.Discard
	}
	return o.Out
}
