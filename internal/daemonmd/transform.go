package daemonmd

import (
	"strings"
	"time"

	"github.com/pbaille/daemon/internal/domain"
)

// Section header names understood by Transform.
const (
	SectionAbout           = "ABOUT"
	SectionCurrentLocation = "CURRENT_LOCATION"
	SectionMission         = "MISSION"
	SectionTelos           = "TELOS"
	SectionWhatImBuilding  = "WHAT_IM_BUILDING"
	SectionWhoIAm          = "WHO_I_AM"
	SectionFavoriteBooks   = "FAVORITE_BOOKS"
	SectionFavoriteMovies  = "FAVORITE_MOVIES"
	SectionFavoriteTv      = "FAVORITE_TV"
	SectionPreferences     = "PREFERENCES"
	SectionDailyRoutine    = "DAILY_ROUTINE"
	SectionProjects        = "PROJECTS"
	SectionResume          = "RESUME"
	SectionContact         = "CONTACT"
	SectionPhilosophy      = "PHILOSOPHY"
)

// DefaultTagline is the hero tagline used when none is configured
const DefaultTagline = "The Context You Keep"

// NoFixedRoutine replaces the daily routine list when the section says so
const NoFixedRoutine = "No fixed routine"

// Transform maps parsed sections onto DaemonData. raw is the full document,
// searched for the last-updated footer.
func Transform(sections domain.Sections, raw string, now time.Time) domain.DaemonData {
	return domain.DaemonData{
		About:           sections[SectionAbout],
		Mission:         sections[SectionMission],
		Telos:           ParseTelos(sections[SectionTelos]),
		CurrentLocation: sections[SectionCurrentLocation],
		Philosophy:      sections[SectionPhilosophy],
		WhatImBuilding:  ParseList(sections[SectionWhatImBuilding]),
		WhoIAm:          sections[SectionWhoIAm],
		Preferences:     ParseList(sections[SectionPreferences]),
		DailyRoutine:    dailyRoutine(sections[SectionDailyRoutine]),
		FavoriteBooks:   ParseList(sections[SectionFavoriteBooks]),
		FavoriteMovies:  ParseList(sections[SectionFavoriteMovies]),
		FavoriteTv:      ParseList(sections[SectionFavoriteTv]),
		Projects:        ParseList(sections[SectionProjects]),
		Resume:          sections[SectionResume],
		Contact:         sections[SectionContact],
		LastUpdated:     ParseLastUpdated(raw, now),
	}
}

func dailyRoutine(content string) []string {
	if strings.Contains(strings.ToLower(content), strings.ToLower(NoFixedRoutine)) {
		return []string{NoFixedRoutine}
	}
	return ParseList(content)
}

// ExtractHero builds the hero summary. An empty tagline falls back to
// DefaultTagline.
func ExtractHero(sections domain.Sections, tagline string) domain.HeroData {
	if tagline == "" {
		tagline = DefaultTagline
	}
	return domain.HeroData{
		Tagline:  tagline,
		Location: sections[SectionCurrentLocation],
		Subtitle: Subtitle(sections[SectionMission]),
	}
}

// Subtitle returns the first sentence of mission with its period restored.
func Subtitle(mission string) string {
	first, _, _ := strings.Cut(mission, ".")
	first = strings.TrimSpace(first)
	if first == "" {
		return ""
	}
	return first + "."
}
