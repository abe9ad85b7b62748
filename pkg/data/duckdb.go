package data

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	_ "github.com/marcboeker/go-duckdb/v2"
)

const schema = `
CREATE TABLE IF NOT EXISTS settings (
	key   VARCHAR PRIMARY KEY,
	value VARCHAR NOT NULL
);
CREATE SEQUENCE IF NOT EXISTS merges_id_seq;
CREATE TABLE IF NOT EXISTS merges (
	id          INTEGER PRIMARY KEY DEFAULT nextval('merges_id_seq'),
	output_path VARCHAR NOT NULL,
	sources     INTEGER NOT NULL,
	pages       INTEGER NOT NULL,
	created_at  TIMESTAMP NOT NULL
);
`

// InitDuckDB opens (creating if needed) the settings database at path.
func InitDuckDB(path string) (*sql.DB, error) {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("failed to create db directory: %w", err)
		}
	}

	db, err := sql.Open("duckdb", path)
	if err != nil {
		return nil, err
	}

	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to apply schema: %w", err)
	}

	return db, nil
}

// Repository persists user settings and the merge history. The core engine
// never touches it; commands read defaults from it and record results.
type Repository struct {
	db *sql.DB
}

func NewRepository(db *sql.DB) *Repository {
	return &Repository{db: db}
}

// DefaultDBPath is where the CLI keeps its settings database.
func DefaultDBPath() string {
	homeDir, _ := os.UserHomeDir()
	return filepath.Join(homeDir, ".comicmerge", "comicmerge.db")
}

func (r *Repository) GetSetting(key string) (string, error) {
	var value string
	err := r.db.QueryRow(`SELECT value FROM settings WHERE key = ?`, key).Scan(&value)
	if err == sql.ErrNoRows {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("failed to read setting %s: %w", key, err)
	}
	return value, nil
}

func (r *Repository) SetSetting(key, value string) error {
	_, err := r.db.Exec(
		`INSERT INTO settings (key, value) VALUES (?, ?)
		 ON CONFLICT (key) DO UPDATE SET value = excluded.value`, key, value)
	if err != nil {
		return fmt.Errorf("failed to save setting %s: %w", key, err)
	}
	return nil
}

// LastFormats returns the format selection from the previous run, or the
// full supported set when none was saved.
func (r *Repository) LastFormats() ([]string, error) {
	value, err := r.GetSetting("last_formats")
	if err != nil {
		return nil, err
	}
	if value == "" {
		return append([]string(nil), SupportedFormats...), nil
	}

	var formats []string
	for _, f := range strings.Split(value, ",") {
		f = strings.TrimSpace(f)
		if IsSupportedFormat(f) {
			formats = append(formats, f)
		}
	}
	if len(formats) == 0 {
		return append([]string(nil), SupportedFormats...), nil
	}
	return formats, nil
}

func (r *Repository) SetLastFormats(formats []string) error {
	return r.SetSetting("last_formats", strings.Join(formats, ","))
}

func (r *Repository) DefaultOutputDir() (string, error) {
	return r.GetSetting("output_dir")
}

func (r *Repository) SetDefaultOutputDir(dir string) error {
	return r.SetSetting("output_dir", dir)
}

// MergeRecord is one row of the merge history.
type MergeRecord struct {
	ID         int
	OutputPath string
	Sources    int
	Pages      int
	CreatedAt  time.Time
}

func (r *Repository) RecordMerge(outputPath string, sources, pages int) error {
	_, err := r.db.Exec(
		`INSERT INTO merges (output_path, sources, pages, created_at) VALUES (?, ?, ?, ?)`,
		outputPath, sources, pages, time.Now())
	if err != nil {
		return fmt.Errorf("failed to record merge: %w", err)
	}
	return nil
}

func (r *Repository) ListMerges() ([]MergeRecord, error) {
	rows, err := r.db.Query(
		`SELECT id, output_path, sources, pages, created_at FROM merges ORDER BY created_at DESC`)
	if err != nil {
		return nil, fmt.Errorf("failed to list merges: %w", err)
	}
	defer rows.Close()

	var records []MergeRecord
	for rows.Next() {
		var rec MergeRecord
		if err := rows.Scan(&rec.ID, &rec.OutputPath, &rec.Sources, &rec.Pages, &rec.CreatedAt); err != nil {
			return nil, err
		}
		records = append(records, rec)
	}
	return records, rows.Err()
}
