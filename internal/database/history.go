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

	"github.com/nao1215/blackbird/internal/model"
)

// FileName is the database file created inside the database directory.
const FileName = "blackbird.db"

// timestampLayout has a fixed width so stored timestamps sort as text.
const timestampLayout = "2006-01-02T15:04:05.000000000Z07:00"

// ErrRunNotFound is returned when a run ID does not exist.
var ErrRunNotFound = errors.New("run not found")

// HistoryDB stores past search runs.
type HistoryDB struct {
	db     *sql.DB
	dbPath string
}

// Options configures HistoryDB behavior.
type Options struct {
	// CreateIfNotExists creates the directory and database file if missing.
	CreateIfNotExists bool

	// EnableWAL enables Write-Ahead Logging.
	EnableWAL bool
}

// DefaultOptions returns the default database options.
func DefaultOptions() Options {
	return Options{
		CreateIfNotExists: true,
		EnableWAL:         true,
	}
}

// Open opens or creates the history database in dbDir.
func Open(dbDir string, opts Options) (*HistoryDB, error) {
	dbPath := filepath.Join(dbDir, FileName)

	if !opts.CreateIfNotExists {
		if _, err := os.Stat(dbPath); os.IsNotExist(err) {
			return nil, fmt.Errorf("database not found at %s: %w", dbPath, err)
		} else if err != nil {
			return nil, fmt.Errorf("failed to check database path: %w", err)
		}
	} else if err := os.MkdirAll(dbDir, 0o750); err != nil {
		return nil, fmt.Errorf("failed to create database directory: %w", err)
	}

	dsn := dbPath + "?mode=rw"
	if opts.CreateIfNotExists {
		dsn = dbPath + "?mode=rwc"
	}

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(time.Hour)

	hdb := &HistoryDB{db: db, dbPath: dbPath}

	if opts.EnableWAL {
		if _, err := db.ExecContext(context.Background(), "PRAGMA journal_mode=WAL"); err != nil {
			_ = db.Close() //nolint:errcheck // open error takes precedence
			return nil, fmt.Errorf("failed to enable WAL mode: %w", err)
		}
	}

	if err := hdb.createTables(context.Background()); err != nil {
		_ = db.Close() //nolint:errcheck // open error takes precedence
		return nil, fmt.Errorf("failed to create tables: %w", err)
	}
	return hdb, nil
}

// Path returns the database file path.
func (h *HistoryDB) Path() string {
	return h.dbPath
}

// Close closes the database connection.
func (h *HistoryDB) Close() error {
	return h.db.Close()
}

func (h *HistoryDB) createTables(ctx context.Context) error {
	schema := `
	CREATE TABLE IF NOT EXISTS runs (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		username TEXT NOT NULL,
		timestamp TEXT NOT NULL,
		elapsed_ms INTEGER NOT NULL,
		total INTEGER NOT NULL,
		found INTEGER NOT NULL,
		errors INTEGER NOT NULL,
		result_json TEXT NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_runs_username ON runs(username);
	CREATE INDEX IF NOT EXISTS idx_runs_timestamp ON runs(timestamp);

	CREATE TABLE IF NOT EXISTS found_accounts (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		run_id INTEGER NOT NULL REFERENCES runs(id) ON DELETE CASCADE,
		username TEXT NOT NULL,
		site TEXT NOT NULL,
		url TEXT NOT NULL,
		category TEXT,
		timestamp TEXT NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_found_username ON found_accounts(username);
	CREATE INDEX IF NOT EXISTS idx_found_site ON found_accounts(site);
	`
	_, err := h.db.ExecContext(ctx, schema)
	return err
}

// SaveRun stores rs and its found accounts in one transaction and returns
// the new run ID.
func (h *HistoryDB) SaveRun(ctx context.Context, rs *model.ResultSet) (id int64, err error) {
	resultJSON, err := json.Marshal(rs)
	if err != nil {
		return 0, fmt.Errorf("failed to serialize result set: %w", err)
	}

	tx, err := h.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback() //nolint:errcheck // the insert error is returned
		}
	}()

	timestamp := rs.Date.UTC().Format(timestampLayout)
	counts := rs.Counts()

	result, err := tx.ExecContext(ctx, `
	INSERT INTO runs (username, timestamp, elapsed_ms, total, found, errors, result_json)
	VALUES (?, ?, ?, ?, ?, ?, ?)
	`,
		rs.Username,
		timestamp,
		rs.Elapsed.Milliseconds(),
		counts.Total,
		counts.Found,
		counts.Error,
		string(resultJSON),
	)
	if err != nil {
		return 0, fmt.Errorf("failed to save run: %w", err)
	}
	id, err = result.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("failed to get run id: %w", err)
	}

	for _, o := range rs.Found() {
		if _, err = tx.ExecContext(ctx, `
		INSERT INTO found_accounts (run_id, username, site, url, category, timestamp)
		VALUES (?, ?, ?, ?, ?, ?)
		`, id, rs.Username, o.Site, o.URL, o.Category, timestamp); err != nil {
			return 0, fmt.Errorf("failed to save found account %s: %w", o.Site, err)
		}
	}

	if err = tx.Commit(); err != nil {
		return 0, fmt.Errorf("failed to commit run: %w", err)
	}
	return id, nil
}

// ListUsernames returns every searched username in alphabetical order.
func (h *HistoryDB) ListUsernames(ctx context.Context) ([]string, error) {
	rows, err := h.db.QueryContext(ctx, `SELECT DISTINCT username FROM runs ORDER BY username`)
	if err != nil {
		return nil, fmt.Errorf("failed to list usernames: %w", err)
	}
	defer rows.Close()

	var usernames []string
	for rows.Next() {
		var username string
		if err := rows.Scan(&username); err != nil {
			return nil, fmt.Errorf("failed to scan username: %w", err)
		}
		usernames = append(usernames, username)
	}
	return usernames, rows.Err()
}

// RunMetadata summarizes a stored run without its outcomes.
type RunMetadata struct {
	ID        int64
	Username  string
	Timestamp time.Time
	Elapsed   time.Duration
	Total     int
	Found     int
	Errors    int
}

// GetRunHistory returns the runs for username, newest first.
func (h *HistoryDB) GetRunHistory(ctx context.Context, username string) ([]RunMetadata, error) {
	rows, err := h.db.QueryContext(ctx, `
	SELECT id, username, timestamp, elapsed_ms, total, found, errors
	FROM runs
	WHERE username = ?
	ORDER BY timestamp DESC, id DESC
	`, username)
	if err != nil {
		return nil, fmt.Errorf("failed to get run history: %w", err)
	}
	defer rows.Close()

	var results []RunMetadata
	for rows.Next() {
		var meta RunMetadata
		var timestamp string
		var elapsedMS int64
		if err := rows.Scan(&meta.ID, &meta.Username, &timestamp, &elapsedMS, &meta.Total, &meta.Found, &meta.Errors); err != nil {
			return nil, fmt.Errorf("failed to scan run metadata: %w", err)
		}
		meta.Timestamp = parseTimestamp(timestamp)
		meta.Elapsed = time.Duration(elapsedMS) * time.Millisecond
		results = append(results, meta)
	}
	return results, rows.Err()
}

// GetRun returns the stored result set with the given ID.
func (h *HistoryDB) GetRun(ctx context.Context, id int64) (*model.ResultSet, error) {
	var resultJSON string
	err := h.db.QueryRowContext(ctx, `SELECT result_json FROM runs WHERE id = ?`, id).Scan(&resultJSON)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: %d", ErrRunNotFound, id)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get run: %w", err)
	}
	return decodeResultSet(resultJSON)
}

// GetLatestRuns returns up to n result sets for username, newest first.
func (h *HistoryDB) GetLatestRuns(ctx context.Context, username string, n int) ([]*model.ResultSet, error) {
	rows, err := h.db.QueryContext(ctx, `
	SELECT result_json FROM runs
	WHERE username = ?
	ORDER BY timestamp DESC, id DESC
	LIMIT ?
	`, username, n)
	if err != nil {
		return nil, fmt.Errorf("failed to get latest runs: %w", err)
	}
	defer rows.Close()

	var results []*model.ResultSet
	for rows.Next() {
		var resultJSON string
		if err := rows.Scan(&resultJSON); err != nil {
			return nil, fmt.Errorf("failed to scan run: %w", err)
		}
		rs, err := decodeResultSet(resultJSON)
		if err != nil {
			continue // skip malformed rows
		}
		results = append(results, rs)
	}
	return results, rows.Err()
}

// Sighting aggregates how often a site reported an account for a username.
type Sighting struct {
	Site      string
	URL       string
	Category  string
	FirstSeen time.Time
	LastSeen  time.Time
	Count     int
}

// GetSightings returns every site that ever reported username as found,
// ordered by site name.
func (h *HistoryDB) GetSightings(ctx context.Context, username string) ([]Sighting, error) {
	rows, err := h.db.QueryContext(ctx, `
	SELECT site, MAX(url), MAX(COALESCE(category, '')), MIN(timestamp), MAX(timestamp), COUNT(*)
	FROM found_accounts
	WHERE username = ?
	GROUP BY site
	ORDER BY site
	`, username)
	if err != nil {
		return nil, fmt.Errorf("failed to get sightings: %w", err)
	}
	defer rows.Close()

	var results []Sighting
	for rows.Next() {
		var s Sighting
		var first, last string
		if err := rows.Scan(&s.Site, &s.URL, &s.Category, &first, &last, &s.Count); err != nil {
			return nil, fmt.Errorf("failed to scan sighting: %w", err)
		}
		s.FirstSeen = parseTimestamp(first)
		s.LastSeen = parseTimestamp(last)
		results = append(results, s)
	}
	return results, rows.Err()
}

func decodeResultSet(data string) (*model.ResultSet, error) {
	var rs model.ResultSet
	if err := json.Unmarshal([]byte(data), &rs); err != nil {
		return nil, fmt.Errorf("failed to parse run: %w", err)
	}
	return &rs, nil
}

// timestampFormats lists the layouts accepted for stored timestamps, most
// specific first.
var timestampFormats = []string{
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02 15:04:05",
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05.999",
}

// parseTimestamp returns the zero time when s matches no known layout.
func parseTimestamp(s string) time.Time {
	for _, format := range timestampFormats {
		if t, err := time.Parse(format, s); err == nil {
			return t
		}
	}
	return time.Time{}
}
