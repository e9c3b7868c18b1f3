package database

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite" // SQLite driver

	"github.com/serpharvest/serpharvest/internal/model"
)

// FileName is the database file name inside the data directory.
const FileName = "serpharvest.db"

// HarvestDB provides SQLite-based storage for harvest runs.
type HarvestDB struct {
	db     *sql.DB
	dbPath string
}

// Options configures HarvestDB behavior.
type Options struct {
	// CreateIfNotExists creates the database file if it doesn't exist.
	CreateIfNotExists bool

	// EnableWAL enables Write-Ahead Logging. Recommended.
	EnableWAL bool
}

// DefaultOptions returns the default database options.
func DefaultOptions() Options {
	return Options{
		CreateIfNotExists: true,
		EnableWAL:         true,
	}
}

// Open opens or creates a HarvestDB in the specified directory.
// If CreateIfNotExists is false and the database doesn't exist, an
// error is returned.
func Open(dbDir string, opts Options) (*HarvestDB, error) {
	dbPath := filepath.Join(dbDir, FileName)

	if !opts.CreateIfNotExists {
		if _, err := os.Stat(dbPath); os.IsNotExist(err) {
			return nil, fmt.Errorf("database not found at %s", dbPath)
		} else if err != nil {
			return nil, fmt.Errorf("failed to check database path: %w", err)
		}
	} else {
		if err := os.MkdirAll(dbDir, 0750); err != nil {
			return nil, fmt.Errorf("failed to create database directory: %w", err)
		}
	}

	// modernc.org/sqlite connection strings: mode=rw refuses to create
	// new files, mode=rwc allows it.
	dsn := dbPath + "?mode=rw"
	if opts.CreateIfNotExists {
		dsn = dbPath + "?mode=rwc"
	}

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// SQLite only supports one writer.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(time.Hour)

	hdb := &HarvestDB{
		db:     db,
		dbPath: dbPath,
	}

	if opts.EnableWAL {
		if _, err := db.ExecContext(context.Background(), "PRAGMA journal_mode=WAL"); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("failed to enable WAL mode: %w", err)
		}
	}

	if err := hdb.createTables(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to create tables: %w", err)
	}

	return hdb, nil
}

// Close closes the database connection.
func (hdb *HarvestDB) Close() error {
	return hdb.db.Close()
}

// Path returns the database file path.
func (hdb *HarvestDB) Path() string {
	return hdb.dbPath
}

// createTables creates the database schema if it doesn't exist.
func (hdb *HarvestDB) createTables() error {
	schema := `
	-- One row per completed run
	CREATE TABLE IF NOT EXISTS runs (
		id TEXT PRIMARY KEY,
		kind TEXT NOT NULL,
		language TEXT,
		country TEXT,
		seeds TEXT NOT NULL,
		max_depth INTEGER DEFAULT 0,
		generated_at DATETIME NOT NULL,
		task_count INTEGER DEFAULT 0,
		failed_tasks INTEGER DEFAULT 0
	);

	CREATE INDEX IF NOT EXISTS idx_runs_generated ON runs(generated_at);
	CREATE INDEX IF NOT EXISTS idx_runs_kind ON runs(kind);

	-- Result pages, one row per keyword/page pair
	CREATE TABLE IF NOT EXISTS serp_results (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		run_id TEXT NOT NULL REFERENCES runs(id) ON DELETE CASCADE,
		keyword TEXT NOT NULL,
		page INTEGER NOT NULL,
		result_json TEXT NOT NULL,
		UNIQUE(run_id, keyword, page)
	);

	CREATE INDEX IF NOT EXISTS idx_serp_run ON serp_results(run_id);
	CREATE INDEX IF NOT EXISTS idx_serp_keyword ON serp_results(keyword);

	-- Discovered keywords, one row per node
	CREATE TABLE IF NOT EXISTS keywords (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		run_id TEXT NOT NULL REFERENCES runs(id) ON DELETE CASCADE,
		keyword TEXT NOT NULL,
		depth INTEGER NOT NULL,
		parent TEXT,
		relevance INTEGER DEFAULT 0,
		type TEXT,
		source_query TEXT,
		discovered_at DATETIME,
		UNIQUE(run_id, keyword)
	);

	CREATE INDEX IF NOT EXISTS idx_keywords_run ON keywords(run_id);
	CREATE INDEX IF NOT EXISTS idx_keywords_depth ON keywords(depth);
	`

	_, err := hdb.db.ExecContext(context.Background(), schema)
	return err
}

// SaveRun stores a run with its result pages and discovered keywords in
// one transaction. Saving the same run ID twice is an error.
func (hdb *HarvestDB) SaveRun(ctx context.Context, meta model.RunMetadata, results []model.SerpResult, nodes []model.KeywordNode) error {
	seedsJSON, err := json.Marshal(meta.Seeds)
	if err != nil {
		return fmt.Errorf("failed to serialize seeds: %w", err)
	}

	tx, err := hdb.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck // rollback after commit is a no-op

	_, err = tx.ExecContext(ctx, `
	INSERT INTO runs (id, kind, language, country, seeds, max_depth, generated_at, task_count, failed_tasks)
	VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	`,
		meta.ID,
		string(meta.Kind),
		meta.Language,
		meta.Country,
		string(seedsJSON),
		meta.MaxDepth,
		meta.GeneratedAt.UTC().Format(time.RFC3339),
		meta.TaskCount,
		meta.FailedTasks,
	)
	if err != nil {
		return fmt.Errorf("failed to insert run: %w", err)
	}

	for i := range results {
		resultJSON, err := json.Marshal(&results[i])
		if err != nil {
			return fmt.Errorf("failed to serialize result for %q: %w", results[i].Keyword, err)
		}
		_, err = tx.ExecContext(ctx, `
		INSERT INTO serp_results (run_id, keyword, page, result_json)
		VALUES (?, ?, ?, ?)
		`, meta.ID, results[i].Keyword, results[i].Page, string(resultJSON))
		if err != nil {
			return fmt.Errorf("failed to insert result for %q: %w", results[i].Keyword, err)
		}
	}

	for i := range nodes {
		n := &nodes[i]
		_, err = tx.ExecContext(ctx, `
		INSERT INTO keywords (run_id, keyword, depth, parent, relevance, type, source_query, discovered_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		`,
			meta.ID,
			n.Keyword,
			n.Depth,
			n.Parent,
			n.Relevance,
			n.Type,
			n.SourceQuery,
			n.DiscoveredAt.UTC().Format(time.RFC3339),
		)
		if err != nil {
			return fmt.Errorf("failed to insert keyword %q: %w", n.Keyword, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit run: %w", err)
	}
	return nil
}

// ListRuns returns run metadata, newest first.
func (hdb *HarvestDB) ListRuns(ctx context.Context) ([]model.RunMetadata, error) {
	rows, err := hdb.db.QueryContext(ctx, `
	SELECT id, kind, language, country, seeds, max_depth, generated_at, task_count, failed_tasks
	FROM runs
	ORDER BY generated_at DESC
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to list runs: %w", err)
	}
	defer rows.Close()

	var runs []model.RunMetadata
	for rows.Next() {
		meta, err := scanRun(rows)
		if err != nil {
			return nil, err
		}
		runs = append(runs, meta)
	}
	return runs, rows.Err()
}

// GetRun retrieves one run's metadata. Returns nil when the ID is
// unknown.
func (hdb *HarvestDB) GetRun(ctx context.Context, id string) (*model.RunMetadata, error) {
	row := hdb.db.QueryRowContext(ctx, `
	SELECT id, kind, language, country, seeds, max_depth, generated_at, task_count, failed_tasks
	FROM runs
	WHERE id = ?
	`, id)

	meta, err := scanRun(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &meta, nil
}

// GetResults retrieves a run's result pages ordered by keyword and page.
func (hdb *HarvestDB) GetResults(ctx context.Context, runID string) ([]model.SerpResult, error) {
	rows, err := hdb.db.QueryContext(ctx, `
	SELECT result_json FROM serp_results
	WHERE run_id = ?
	ORDER BY keyword, page
	`, runID)
	if err != nil {
		return nil, fmt.Errorf("failed to get results: %w", err)
	}
	defer rows.Close()

	var results []model.SerpResult
	for rows.Next() {
		var raw string
		if err := rows.Scan(&raw); err != nil {
			return nil, fmt.Errorf("failed to scan result: %w", err)
		}
		var res model.SerpResult
		if err := json.Unmarshal([]byte(raw), &res); err != nil {
			return nil, fmt.Errorf("failed to parse stored result: %w", err)
		}
		results = append(results, res)
	}
	return results, rows.Err()
}

// GetKeywords retrieves a run's discovered keywords ordered by depth and
// discovery time.
func (hdb *HarvestDB) GetKeywords(ctx context.Context, runID string) ([]model.KeywordNode, error) {
	rows, err := hdb.db.QueryContext(ctx, `
	SELECT keyword, depth, parent, relevance, type, source_query, discovered_at
	FROM keywords
	WHERE run_id = ?
	ORDER BY depth, discovered_at
	`, runID)
	if err != nil {
		return nil, fmt.Errorf("failed to get keywords: %w", err)
	}
	defer rows.Close()

	var nodes []model.KeywordNode
	for rows.Next() {
		var n model.KeywordNode
		var discovered string
		if err := rows.Scan(&n.Keyword, &n.Depth, &n.Parent, &n.Relevance, &n.Type, &n.SourceQuery, &discovered); err != nil {
			return nil, fmt.Errorf("failed to scan keyword: %w", err)
		}
		n.DiscoveredAt = parseTimestamp(discovered)
		nodes = append(nodes, n)
	}
	return nodes, rows.Err()
}

// DeleteRun removes a run and its results.
func (hdb *HarvestDB) DeleteRun(ctx context.Context, id string) error {
	// ON DELETE CASCADE needs foreign keys enabled per connection;
	// delete children explicitly instead.
	tx, err := hdb.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck // rollback after commit is a no-op

	for _, stmt := range []string{
		"DELETE FROM serp_results WHERE run_id = ?",
		"DELETE FROM keywords WHERE run_id = ?",
		"DELETE FROM runs WHERE id = ?",
	} {
		if _, err := tx.ExecContext(ctx, stmt, id); err != nil {
			return fmt.Errorf("failed to delete run: %w", err)
		}
	}
	return tx.Commit()
}

// rowScanner abstracts sql.Row and sql.Rows for scanRun.
type rowScanner interface {
	Scan(dest ...any) error
}

// scanRun reads one runs row into metadata.
func scanRun(row rowScanner) (model.RunMetadata, error) {
	var meta model.RunMetadata
	var kind, seedsJSON, generated string

	err := row.Scan(
		&meta.ID,
		&kind,
		&meta.Language,
		&meta.Country,
		&seedsJSON,
		&meta.MaxDepth,
		&generated,
		&meta.TaskCount,
		&meta.FailedTasks,
	)
	if err != nil {
		return model.RunMetadata{}, err
	}

	meta.Kind = model.RunKind(kind)
	meta.GeneratedAt = parseTimestamp(generated)
	if err := json.Unmarshal([]byte(seedsJSON), &meta.Seeds); err != nil {
		return model.RunMetadata{}, fmt.Errorf("failed to parse stored seeds: %w", err)
	}
	return meta, nil
}

// timestampFormats contains the timestamp formats that SQLite may return.
// The order matters: more specific formats should come first.
var timestampFormats = []string{
	"2006-01-02 15:04:05",     // SQLite default datetime format
	"2006-01-02T15:04:05Z",    // ISO 8601 with Z suffix
	"2006-01-02T15:04:05",     // ISO 8601 without timezone
	time.RFC3339,              // Full RFC3339 format
	time.RFC3339Nano,          // RFC3339 with nanoseconds
	"2006-01-02 15:04:05.999", // SQLite with milliseconds
}

// parseTimestamp attempts to parse a timestamp string using multiple
// formats. SQLite may return timestamps in different formats depending
// on configuration. Returns zero time when nothing matches.
func parseTimestamp(s string) time.Time {
	for _, format := range timestampFormats {
		if t, err := time.Parse(format, s); err == nil {
			return t
		}
	}
	return time.Time{}
}
