// Package componentdb persists metadata about installed LaTeX
// components (packages, classes, their provided commands and
// environments) to a single JSON file, loaded once at startup and
// refreshed as the workspace discovers new components. It plays the role
// the teacher fills with pgx/sqlite/redis for application data, but
// spec.md is explicit that this server owns exactly one cache file, so
// persistence here is a plain atomic JSON write rather than a database
// driver — see DESIGN.md for why the teacher's SQL stack was not reused.
package componentdb

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"go.uber.org/zap"
)

// Component describes one discovered LaTeX package or class.
type Component struct {
	Name         string   `json:"name"`
	FileNames    []string `json:"file_names"`
	Commands     []string `json:"commands"`
	Environments []string `json:"environments"`
}

// fileFormat is the on-disk JSON shape. Versioned so a future schema
// change can detect and migrate or discard stale caches.
type fileFormat struct {
	Version    int         `json:"version"`
	Components []Component `json:"components"`
}

const currentVersion = 1

// DB is the in-memory component database, keyed by component name, with
// atomic load/save to a backing JSON file.
type DB struct {
	mu     sync.RWMutex
	byName map[string]Component
	path   string
	logger *zap.Logger
}

// New creates an empty DB backed by path. Load must be called to
// populate it from disk.
func New(path string, logger *zap.Logger) *DB {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &DB{byName: make(map[string]Component), path: path, logger: logger}
}

// Load reads path into the DB. A missing file is not an error — the DB
// simply starts empty, matching spec.md's "best-effort cache" framing.
func (db *DB) Load() error {
	data, err := os.ReadFile(db.path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("read component db: %w", err)
	}

	var ff fileFormat
	if err := json.Unmarshal(data, &ff); err != nil {
		db.logger.Warn("discarding unreadable component db", zap.String("path", db.path), zap.Error(err))
		return nil
	}
	if ff.Version != currentVersion {
		db.logger.Info("discarding component db with unsupported version",
			zap.Int("found", ff.Version), zap.Int("want", currentVersion))
		return nil
	}

	db.mu.Lock()
	defer db.mu.Unlock()
	for _, c := range ff.Components {
		db.byName[c.Name] = c
	}
	return nil
}

// Put inserts or replaces a component. It does not write through to
// disk; call Save explicitly (the orchestrator does this on an interval
// and at shutdown).
func (db *DB) Put(c Component) {
	db.mu.Lock()
	defer db.mu.Unlock()
	db.byName[c.Name] = c
}

// Get returns the component named name, if known.
func (db *DB) Get(name string) (Component, bool) {
	db.mu.RLock()
	defer db.mu.RUnlock()
	c, ok := db.byName[name]
	return c, ok
}

// All returns every known component.
func (db *DB) All() []Component {
	db.mu.RLock()
	defer db.mu.RUnlock()

	out := make([]Component, 0, len(db.byName))
	for _, c := range db.byName {
		out = append(out, c)
	}
	return out
}

// Save writes the DB to its backing file atomically: marshal to a
// temporary file in the same directory, then rename over the
// destination, so a crash or concurrent reader never observes a
// partially written cache.
func (db *DB) Save() error {
	db.mu.RLock()
	ff := fileFormat{Version: currentVersion, Components: make([]Component, 0, len(db.byName))}
	for _, c := range db.byName {
		ff.Components = append(ff.Components, c)
	}
	db.mu.RUnlock()

	data, err := json.MarshalIndent(ff, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal component db: %w", err)
	}

	dir := filepath.Dir(db.path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create component db directory: %w", err)
	}
	tmp, err := os.CreateTemp(dir, ".texlab-componentdb-*.tmp")
	if err != nil {
		return fmt.Errorf("create temp component db: %w", err)
	}
	tmpPath := tmp.Name()
	defer os.Remove(tmpPath)

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("write temp component db: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close temp component db: %w", err)
	}

	if err := os.Rename(tmpPath, db.path); err != nil {
		return fmt.Errorf("rename component db into place: %w", err)
	}
	return nil
}
