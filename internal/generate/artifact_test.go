package generate

import (
	"reflect"
	"strings"
	"testing"
	"time"

	"github.com/pbaille/daemon/internal/daemonmd"
)

func testArtifact() Artifact {
	content := "[ABOUT]\nI like <b>bold</b> & \"quotes\".\n[MISSION]\nBuild good things. Forever.\n" +
		"[TELOS]\n- P0: do X\n- just text\n- M1: do Y\n[FAVORITE_BOOKS]\n- Dune\n\n*Last updated: 2024-03-15*\n"
	sections := daemonmd.ParseSections(content)
	return Artifact{
		Source:      "/home/u/.config/daemon/daemon.md",
		GeneratedAt: time.Date(2024, 3, 16, 9, 5, 0, 0, time.UTC),
		Daemon:      daemonmd.Transform(sections, content, time.Now()),
		Hero:        daemonmd.ExtractHero(sections, ""),
		ToolCount:   DefaultToolCount,
	}
}

func TestRender_layout(t *testing.T) {
	out, err := Render(testArtifact())
	if err != nil {
		t.Fatalf("Render: %v", err)
	}
	s := string(out)

	wantInOrder := []string{
		"AUTO-GENERATED FILE - DO NOT EDIT",
		"Generated from: /home/u/.config/daemon/daemon.md",
		"Generated: 2024-03-16T09:05:00.000Z",
		`import type { DaemonData, HeroData } from "../types/daemon.types";`,
		"export const daemonData: DaemonData = {\n\t\"about\": ",
		"export const heroData: HeroData = {\n\t\"tagline\": \"The Context You Keep\"",
		"export const toolCount = 14;\n",
	}
	pos := 0
	for _, want := range wantInOrder {
		i := strings.Index(s[pos:], want)
		if i < 0 {
			t.Fatalf("missing (or out of order) %q in:\n%s", want, s)
		}
		pos += i + len(want)
	}

	if !strings.Contains(s, "<b>bold</b> &") {
		t.Errorf("HTML characters were escaped:\n%s", s)
	}
	if !strings.Contains(s, "\"favoriteTv\": [],") {
		t.Errorf("empty list should render as []:\n%s", s)
	}
}

func TestReadArtifact_roundTrip(t *testing.T) {
	a := testArtifact()
	out, err := Render(a)
	if err != nil {
		t.Fatalf("Render: %v", err)
	}

	d, h, err := ReadArtifact(out)
	if err != nil {
		t.Fatalf("ReadArtifact: %v", err)
	}
	if !reflect.DeepEqual(d, a.Daemon) {
		t.Errorf("daemon data mismatch:\n got %+v\nwant %+v", d, a.Daemon)
	}
	if h != a.Hero {
		t.Errorf("hero mismatch: got %+v, want %+v", h, a.Hero)
	}
}

func TestReadArtifact_missingDeclaration(t *testing.T) {
	if _, _, err := ReadArtifact([]byte("export const toolCount = 14;")); err == nil {
		t.Fatal("expected error for module without data literals")
	}
}
