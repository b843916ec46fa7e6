package config

import (
	"os"
	"path/filepath"
	"reflect"
	"testing"

	"github.com/pbaille/daemon/internal/daemonmd"
	"github.com/pbaille/daemon/internal/generate"
)

func TestLoad_missingFileUsesDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "daemon.yaml"))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if !reflect.DeepEqual(cfg, Default()) {
		t.Fatalf("got %+v, want defaults", cfg)
	}
}

func TestLoad_overrides(t *testing.T) {
	path := filepath.Join(t.TempDir(), "daemon.yaml")
	data := `
output: build/daemon-data.ts
tagline: Always on
tool_count: 20
server:
  addr: 127.0.0.1:9000
  allowed_hosts: [box.tail.net]
`
	if err := os.WriteFile(path, []byte(data), 0644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Output != "build/daemon-data.ts" {
		t.Errorf("Output = %q", cfg.Output)
	}
	if cfg.Fallback != "" {
		t.Errorf("Fallback = %q, want empty", cfg.Fallback)
	}
	if cfg.Tagline != "Always on" {
		t.Errorf("Tagline = %q", cfg.Tagline)
	}
	if cfg.ToolCount != 20 {
		t.Errorf("ToolCount = %d", cfg.ToolCount)
	}
	if cfg.Server.Addr != "127.0.0.1:9000" {
		t.Errorf("Addr = %q", cfg.Server.Addr)
	}
	if !reflect.DeepEqual(cfg.Server.AllowedHosts, []string{"box.tail.net"}) {
		t.Errorf("AllowedHosts = %q", cfg.Server.AllowedHosts)
	}
}

func TestLoad_invalidYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "daemon.yaml")
	if err := os.WriteFile(path, []byte("tool_count: [nope"), 0644); err != nil {
		t.Fatal(err)
	}
	if _, err := Load(path); err == nil {
		t.Fatal("expected error for invalid YAML")
	}
}

func TestWithEnvHosts(t *testing.T) {
	cfg := Default()
	cfg.Server.AllowedHosts = []string{"from-file"}

	got := cfg.WithEnvHosts(func(k string) string {
		if k == EnvAllowedHosts {
			return "myhost,, otherhost ,"
		}
		return ""
	})
	want := []string{"from-file", "myhost", "otherhost"}
	if !reflect.DeepEqual(got.Server.AllowedHosts, want) {
		t.Fatalf("AllowedHosts = %q, want %q", got.Server.AllowedHosts, want)
	}

	none := Default().WithEnvHosts(func(string) string { return "" })
	if len(none.Server.AllowedHosts) != 0 {
		t.Fatalf("expected no hosts, got %q", none.Server.AllowedHosts)
	}
}

func TestDefault_sharesBuildConstants(t *testing.T) {
	cfg := Default()
	if cfg.Tagline != daemonmd.DefaultTagline {
		t.Errorf("Tagline = %q, want %q", cfg.Tagline, daemonmd.DefaultTagline)
	}
	if cfg.ToolCount != generate.DefaultToolCount {
		t.Errorf("ToolCount = %d, want %d", cfg.ToolCount, generate.DefaultToolCount)
	}
}
