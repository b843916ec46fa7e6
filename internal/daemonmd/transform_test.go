package daemonmd

import (
	"reflect"
	"testing"
	"time"
)

const sample = `# My daemon

[ABOUT]
Engineer and writer.

[MISSION]
Build good things. Forever.

[CURRENT_LOCATION]
Lisbon, Portugal

[TELOS]
- P0: Ship the book
- Not tagged
- M1: Run a marathon

[FAVORITE_BOOKS]
- Dune
- Neuromancer

[FAVORITE_MOVIES]
- Alien

[PREFERENCES]
Some prose first.
- Tabs

[DAILY_ROUTINE]
- Write
- Run

[PROJECTS].unpublished
- Secret project

[CONTACT]
hello@example.com

*Last updated: 2024-03-15*
`

func TestTransform(t *testing.T) {
	sections := ParseSections(sample)
	got := Transform(sections, sample, time.Now())

	if got.About != "Engineer and writer." {
		t.Errorf("About = %q", got.About)
	}
	if got.Mission != "Build good things. Forever." {
		t.Errorf("Mission = %q", got.Mission)
	}
	if !reflect.DeepEqual(got.Telos, []string{"P0: Ship the book", "M1: Run a marathon"}) {
		t.Errorf("Telos = %q", got.Telos)
	}
	if !reflect.DeepEqual(got.FavoriteBooks, []string{"Dune", "Neuromancer"}) {
		t.Errorf("FavoriteBooks = %q", got.FavoriteBooks)
	}
	if !reflect.DeepEqual(got.Preferences, []string{"Tabs"}) {
		t.Errorf("Preferences = %q", got.Preferences)
	}
	if !reflect.DeepEqual(got.DailyRoutine, []string{"Write", "Run"}) {
		t.Errorf("DailyRoutine = %q", got.DailyRoutine)
	}
	if len(got.Projects) != 0 {
		t.Errorf("Projects = %q, want empty (unpublished)", got.Projects)
	}
	if got.FavoriteTv == nil || len(got.FavoriteTv) != 0 {
		t.Errorf("FavoriteTv = %#v, want empty non-nil slice", got.FavoriteTv)
	}
	if got.Resume != "" {
		t.Errorf("Resume = %q, want empty", got.Resume)
	}
	// The footer sits inside CONTACT but text fields keep it verbatim.
	if got.Contact != "hello@example.com\n\n*Last updated: 2024-03-15*" {
		t.Errorf("Contact = %q", got.Contact)
	}
	if got.LastUpdated != "2024-03-15" {
		t.Errorf("LastUpdated = %q", got.LastUpdated)
	}
}

func TestTransform_dailyRoutineSentinel(t *testing.T) {
	tests := []struct {
		name    string
		content string
		want    []string
	}{
		{"Sentinel", "Honestly, No fixed routine these days.\n- ignored", []string{NoFixedRoutine}},
		{"SentinelLowercase", "no fixed routine", []string{NoFixedRoutine}},
		{"List", "- Wake\n- Code", []string{"Wake", "Code"}},
		{"Prose", "I wake up and code.", []string{}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Transform(map[string]string{SectionDailyRoutine: tt.content}, "", time.Now())
			if !reflect.DeepEqual(got.DailyRoutine, tt.want) {
				t.Fatalf("DailyRoutine = %q, want %q", got.DailyRoutine, tt.want)
			}
		})
	}
}

func TestSubtitle(t *testing.T) {
	tests := []struct {
		mission string
		want    string
	}{
		{"Build good things. Forever.", "Build good things."},
		{"", ""},
		{"No period at all", "No period at all."},
		{"   . starts with a period", ""},
		{"  padded first.  second", "padded first."},
	}
	for _, tt := range tests {
		if got := Subtitle(tt.mission); got != tt.want {
			t.Errorf("Subtitle(%q) = %q, want %q", tt.mission, got, tt.want)
		}
	}
}

func TestExtractHero(t *testing.T) {
	sections := map[string]string{
		SectionMission:         "Build good things. Forever.",
		SectionCurrentLocation: "Lisbon",
	}

	hero := ExtractHero(sections, "")
	if hero.Tagline != DefaultTagline {
		t.Errorf("Tagline = %q", hero.Tagline)
	}
	if hero.Location != "Lisbon" {
		t.Errorf("Location = %q", hero.Location)
	}
	if hero.Subtitle != "Build good things." {
		t.Errorf("Subtitle = %q", hero.Subtitle)
	}

	if got := ExtractHero(nil, "Custom").Tagline; got != "Custom" {
		t.Errorf("custom tagline = %q", got)
	}
}
