package domain

import "time"

// Sections maps a section header name (e.g. "ABOUT") to its trimmed body
type Sections map[string]string

// DaemonData is the processed profile consumed by the site components.
// Field order matches the generated TypeScript literal.
type DaemonData struct {
	About           string   `json:"about"`
	Mission         string   `json:"mission"`
	Telos           []string `json:"telos"`
	CurrentLocation string   `json:"currentLocation"`
	Philosophy      string   `json:"philosophy"`
	WhatImBuilding  []string `json:"whatImBuilding"`
	WhoIAm          string   `json:"whoIAm"`
	Preferences     []string `json:"preferences"`
	DailyRoutine    []string `json:"dailyRoutine"`
	FavoriteBooks   []string `json:"favoriteBooks"`
	FavoriteMovies  []string `json:"favoriteMovies"`
	FavoriteTv      []string `json:"favoriteTv"`
	Projects        []string `json:"projects"`
	Resume          string   `json:"resume"`
	Contact         string   `json:"contact"`
	LastUpdated     string   `json:"lastUpdated"`
}

// HeroData is the subset shown in the landing hero
type HeroData struct {
	Tagline  string `json:"tagline"`
	Location string `json:"location"`
	Subtitle string `json:"subtitle"`
}

// Build records one successful generation run
type Build struct {
	ID           string    `json:"id"`
	SourcePath   string    `json:"source_path"`
	OutputPath   string    `json:"output_path"`
	SectionCount int       `json:"section_count"`
	TelosCount   int       `json:"telos_count"`
	BookCount    int       `json:"book_count"`
	MovieCount   int       `json:"movie_count"`
	ProjectCount int       `json:"project_count"`
	LastUpdated  string    `json:"last_updated"`
	Checksum     string    `json:"checksum"`
	GeneratedAt  time.Time `json:"generated_at"`
}
