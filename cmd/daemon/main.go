package main

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/pbaille/daemon/internal/api"
	"github.com/pbaille/daemon/internal/build"
	"github.com/pbaille/daemon/internal/config"
	"github.com/pbaille/daemon/internal/daemonmd"
	"github.com/pbaille/daemon/internal/paths"
	"github.com/pbaille/daemon/internal/store"
	"github.com/spf13/cobra"
)

var (
	rootDir    string
	configPath string
	dbPath     string
	verbose    bool
)

func main() {
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr, os.Getenv))
}

// run executes the CLI and returns the process exit code.
func run(args []string, stdout, stderr io.Writer, getenv func(string) string) int {
	rootCmd := newRootCmd(stdout, getenv)
	rootCmd.SetArgs(args)
	rootCmd.SetOut(stdout)
	rootCmd.SetErr(stderr)

	if err := rootCmd.Execute(); err != nil {
		if errors.Is(err, paths.ErrSourceNotFound) {
			fmt.Fprintf(stderr, "Error: %v\n", err)
			fmt.Fprintln(stderr, "Create your daemon.md at ~/.config/daemon/daemon.md")
			fmt.Fprintln(stderr, "See docs/SETUP.md for instructions.")
			return 1
		}
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return 1
	}
	return 0
}

func newRootCmd(stdout io.Writer, getenv func(string) string) *cobra.Command {
	rootCmd := &cobra.Command{
		Use:           "daemon",
		Short:         "Build-time parser for daemon.md profiles",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			level := slog.LevelWarn
			if verbose {
				level = slog.LevelDebug
			}
			slog.SetDefault(slog.New(slog.NewTextHandler(cmd.ErrOrStderr(), &slog.HandlerOptions{Level: level})))
		},
	}

	cwd, _ := os.Getwd()
	rootCmd.PersistentFlags().StringVar(&rootDir, "root", cwd, "site project root")
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "YAML config file (default <root>/daemon.yaml)")
	rootCmd.PersistentFlags().StringVar(&dbPath, "db", defaultDBPath(getenv), "build history database (empty disables history)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "debug logging")

	parse := parseCmd(stdout, getenv)
	rootCmd.RunE = parse.RunE

	rootCmd.AddCommand(parse)
	rootCmd.AddCommand(sectionsCmd(stdout, getenv))
	rootCmd.AddCommand(historyCmd(stdout))
	rootCmd.AddCommand(serveCmd(getenv))

	return rootCmd
}

func defaultDBPath(getenv func(string) string) string {
	cfg := paths.FromEnv(getenv, "")
	if cfg.Home == "" && cfg.ConfigHome == "" {
		return ""
	}
	return filepath.Join(cfg.ConfigDir(), "builds.db")
}

func buildOptions(stdout io.Writer, getenv func(string) string) (build.Options, error) {
	cfgFile := configPath
	if cfgFile == "" {
		cfgFile = filepath.Join(rootDir, "daemon.yaml")
	}
	cfg, err := config.Load(cfgFile)
	if err != nil {
		return build.Options{}, err
	}
	return build.Options{
		Paths:  paths.FromEnv(getenv, rootDir),
		Config: cfg.WithEnvHosts(getenv),
		Out:    stdout,
	}, nil
}

// openStore opens the history store, or returns nil when disabled or unavailable.
func openStore() *store.Store {
	if dbPath == "" {
		return nil
	}
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		slog.Warn("build history unavailable", "component", "cli", "path", dbPath, "error", err)
		return nil
	}
	s, err := store.New(dbPath)
	if err != nil {
		slog.Warn("build history unavailable", "component", "cli", "path", dbPath, "error", err)
		return nil
	}
	return s
}

func parseCmd(stdout io.Writer, getenv func(string) string) *cobra.Command {
	return &cobra.Command{
		Use:   "parse",
		Short: "Parse daemon.md and generate the site data module",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			opts, err := buildOptions(stdout, getenv)
			if err != nil {
				return err
			}
			var s *store.Store
			opts.OpenRecorder = func() build.Recorder {
				if s = openStore(); s == nil {
					return nil
				}
				return s
			}

			_, err = build.Run(opts)
			if s != nil {
				s.Close()
			}
			return err
		},
	}
}

func sectionsCmd(stdout io.Writer, getenv func(string) string) *cobra.Command {
	return &cobra.Command{
		Use:   "sections",
		Short: "Show the published sections of daemon.md",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			opts, err := buildOptions(io.Discard, getenv)
			if err != nil {
				return err
			}
			src, _, sections, err := build.Load(opts)
			if err != nil {
				return err
			}

			names := make([]string, 0, len(sections))
			for name := range sections {
				names = append(names, name)
			}
			sort.Strings(names)

			fmt.Fprintf(stdout, "Source: %s\n", src.Path)
			for _, name := range names {
				fmt.Fprintf(stdout, "[%s]  %s\n", name, truncate(sections[name], 60))
			}
			return nil
		},
	}
}

func historyCmd(stdout io.Writer) *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "history [id]",
		Short: "List recent builds, or show one build by id prefix",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if dbPath == "" {
				return errors.New("build history is disabled (--db is empty)")
			}
			s, err := store.New(dbPath)
			if err != nil {
				return err
			}
			defer s.Close()

			if len(args) == 1 {
				return showBuild(stdout, s, args[0])
			}

			builds, err := s.ListBuilds(limit, 0)
			if err != nil {
				return err
			}

			if len(builds) == 0 {
				fmt.Fprintln(stdout, "No builds yet. Run 'daemon parse' to create one.")
				return nil
			}

			for _, b := range builds {
				fmt.Fprintf(stdout, "%s  %s  %2d sections  %s\n",
					shortID(b.ID), b.GeneratedAt.Local().Format("2006-01-02 15:04:05"), b.SectionCount, b.SourcePath)
			}
			return nil
		},
	}

	cmd.Flags().IntVarP(&limit, "limit", "n", 20, "number of builds to show")
	return cmd
}

// showBuild prints the build whose id starts with prefix
func showBuild(stdout io.Writer, s *store.Store, prefix string) error {
	builds, err := s.ListBuilds(100, 0)
	if err != nil {
		return err
	}

	var found string
	for _, b := range builds {
		if strings.HasPrefix(b.ID, prefix) {
			found = b.ID
			break
		}
	}
	if found == "" {
		return fmt.Errorf("build not found: %s", prefix)
	}

	b, err := s.GetBuild(found)
	if err != nil {
		return err
	}

	fmt.Fprintf(stdout, "ID:           %s\n", b.ID)
	fmt.Fprintf(stdout, "Generated:    %s\n", b.GeneratedAt.Local().Format("2006-01-02 15:04:05"))
	fmt.Fprintf(stdout, "Source:       %s\n", b.SourcePath)
	fmt.Fprintf(stdout, "Output:       %s\n", b.OutputPath)
	fmt.Fprintf(stdout, "Last updated: %s\n", b.LastUpdated)
	fmt.Fprintf(stdout, "Sections:     %d\n", b.SectionCount)
	fmt.Fprintf(stdout, "  - %d books\n", b.BookCount)
	fmt.Fprintf(stdout, "  - %d movies\n", b.MovieCount)
	fmt.Fprintf(stdout, "  - %d TELOS items\n", b.TelosCount)
	fmt.Fprintf(stdout, "  - %d projects\n", b.ProjectCount)
	fmt.Fprintf(stdout, "Checksum:     %s\n", b.Checksum)
	return nil
}

// shortID abbreviates a build id for listings
func shortID(id string) string {
	if len(id) <= 8 {
		return id
	}
	return id[:8]
}

func serveCmd(getenv func(string) string) *cobra.Command {
	var addr string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the live preview API",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			opts, err := buildOptions(io.Discard, getenv)
			if err != nil {
				return err
			}
			if addr == "" {
				addr = opts.Config.Server.Addr
			}

			load := func() (*api.Snapshot, error) {
				_, content, sections, err := build.Load(opts)
				if err != nil {
					return nil, err
				}
				return &api.Snapshot{
					Sections: sections,
					Daemon:   daemonmd.Transform(sections, content, time.Now()),
					Hero:     daemonmd.ExtractHero(sections, opts.Config.Tagline),
				}, nil
			}

			var builds api.BuildLister
			// Note: don't defer s.Close() as server runs indefinitely
			if s := openStore(); s != nil {
				builds = s
			}

			server := api.New(load, builds, addr, opts.Config.Server.AllowedHosts)
			return server.Run()
		},
	}

	cmd.Flags().StringVarP(&addr, "addr", "a", "", "server address (default from config, 0.0.0.0:5177)")
	return cmd
}

func truncate(s string, max int) string {
	s = strings.ReplaceAll(s, "\n", " ")
	if len(s) <= max {
		return s
	}
	return s[:max-3] + "..."
}
