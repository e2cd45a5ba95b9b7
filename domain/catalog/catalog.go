// Package catalog keeps a sqlite record of every annotation saved, so a
// later run can skip images that were already handled.
package catalog

import (
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "github.com/mattn/go-sqlite3"
)

const schema = `
CREATE TABLE IF NOT EXISTS annotations (
	image TEXT PRIMARY KEY,
	boxes INTEGER NOT NULL,
	json_path TEXT,
	image_path TEXT,
	saved_at TEXT
);`

// Entry is one saved annotation.
type Entry struct {
	Image     string // source image base name
	Boxes     int
	JSONPath  string
	ImagePath string
	SavedAt   time.Time
}

// Catalog wraps the sqlite database.
type Catalog struct {
	db *sql.DB
}

// Open creates the database file and schema if needed.
func Open(path string) (*Catalog, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("create catalog dir: %w", err)
	}
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("open catalog %s: %w", path, err)
	}
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("init catalog %s: %w", path, err)
	}
	return &Catalog{db: db}, nil
}

func (c *Catalog) Close() error { return c.db.Close() }

// Record inserts or replaces the entry for e.Image.
func (c *Catalog) Record(e Entry) error {
	if e.SavedAt.IsZero() {
		e.SavedAt = time.Now()
	}
	_, err := c.db.Exec(`
		INSERT OR REPLACE INTO annotations (image, boxes, json_path, image_path, saved_at)
		VALUES (?, ?, ?, ?, ?)`,
		e.Image, e.Boxes, e.JSONPath, e.ImagePath, e.SavedAt.UTC().Format(time.RFC3339))
	if err != nil {
		return fmt.Errorf("record %s: %w", e.Image, err)
	}
	return nil
}

// Annotated reports whether image has a saved entry.
func (c *Catalog) Annotated(image string) (bool, error) {
	var n int
	if err := c.db.QueryRow("SELECT COUNT(*) FROM annotations WHERE image = ?", image).Scan(&n); err != nil {
		return false, fmt.Errorf("lookup %s: %w", image, err)
	}
	return n > 0, nil
}

// Lookup returns the entry for image; ok is false when none exists.
func (c *Catalog) Lookup(image string) (Entry, bool, error) {
	var (
		e       Entry
		savedAt string
	)
	err := c.db.QueryRow(
		"SELECT image, boxes, json_path, image_path, saved_at FROM annotations WHERE image = ?", image,
	).Scan(&e.Image, &e.Boxes, &e.JSONPath, &e.ImagePath, &savedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return Entry{}, false, nil
	}
	if err != nil {
		return Entry{}, false, fmt.Errorf("lookup %s: %w", image, err)
	}
	if t, perr := time.Parse(time.RFC3339, savedAt); perr == nil {
		e.SavedAt = t
	}
	return e, true, nil
}

// Count is the number of images with a saved entry.
func (c *Catalog) Count() (int, error) {
	var n int
	if err := c.db.QueryRow("SELECT COUNT(*) FROM annotations").Scan(&n); err != nil {
		return 0, fmt.Errorf("count annotations: %w", err)
	}
	return n, nil
}
