package store

import (
	"database/sql"
	_ "embed"
	"fmt"
	"time"

	"github.com/google/uuid"
	_ "github.com/mattn/go-sqlite3"
	"github.com/pbaille/daemon/internal/domain"
)

//go:embed schema.sql
var schema string

const buildColumns = `id, source_path, output_path, section_count, telos_count, book_count,
	movie_count, project_count, last_updated, checksum, generated_at`

// Store keeps the build history
type Store struct {
	db *sql.DB
}

// New opens (or creates) the history database at dbPath
func New(dbPath string) (*Store, error) {
	db, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("init schema: %w", err)
	}

	return &Store{db: db}, nil
}

// Close closes the database connection
func (s *Store) Close() error {
	return s.db.Close()
}

// RecordBuild stores b, assigning an ID and timestamp when missing
func (s *Store) RecordBuild(b domain.Build) (*domain.Build, error) {
	if b.ID == "" {
		b.ID = uuid.New().String()
	}
	if b.GeneratedAt.IsZero() {
		b.GeneratedAt = time.Now()
	}

	_, err := s.db.Exec(
		"INSERT INTO builds ("+buildColumns+") VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)",
		b.ID, b.SourcePath, b.OutputPath, b.SectionCount, b.TelosCount, b.BookCount,
		b.MovieCount, b.ProjectCount, b.LastUpdated, b.Checksum, b.GeneratedAt.UTC(),
	)
	if err != nil {
		return nil, fmt.Errorf("insert build: %w", err)
	}

	return &b, nil
}

// GetBuild retrieves a build by ID
func (s *Store) GetBuild(id string) (*domain.Build, error) {
	b, err := scanBuild(s.db.QueryRow("SELECT "+buildColumns+" FROM builds WHERE id = ?", id))
	if err != nil {
		return nil, fmt.Errorf("get build: %w", err)
	}
	return b, nil
}

// ListBuilds returns recent builds, newest first
func (s *Store) ListBuilds(limit, offset int) ([]domain.Build, error) {
	rows, err := s.db.Query(
		"SELECT "+buildColumns+" FROM builds ORDER BY generated_at DESC LIMIT ? OFFSET ?",
		limit, offset,
	)
	if err != nil {
		return nil, fmt.Errorf("list builds: %w", err)
	}
	defer rows.Close()

	var builds []domain.Build
	for rows.Next() {
		b, err := scanBuild(rows)
		if err != nil {
			return nil, fmt.Errorf("scan build: %w", err)
		}
		builds = append(builds, *b)
	}

	return builds, rows.Err()
}

// LatestBuild returns the most recent build, or nil when none exist
func (s *Store) LatestBuild() (*domain.Build, error) {
	builds, err := s.ListBuilds(1, 0)
	if err != nil {
		return nil, err
	}
	if len(builds) == 0 {
		return nil, nil
	}
	return &builds[0], nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanBuild(row scanner) (*domain.Build, error) {
	var b domain.Build
	err := row.Scan(&b.ID, &b.SourcePath, &b.OutputPath, &b.SectionCount, &b.TelosCount,
		&b.BookCount, &b.MovieCount, &b.ProjectCount, &b.LastUpdated, &b.Checksum, &b.GeneratedAt)
	if err != nil {
		return nil, err
	}
	return &b, nil
}
