package db

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"
)

const dbFile = ".easygest/pos.db"

// localKeyBase is the first primary key handed to records created offline.
// Server-assigned ids live far below this range, so a locally keyed row can
// never shadow a pulled server row before the push round-trip re-keys it.
const localKeyBase = 1_000_000_000

// DB wraps the local sqlite store holding all syncable collections plus the
// generic config collection.
type DB struct {
	conn    *sql.DB
	baseDir string
}

// Open opens an existing database and applies any pending migrations.
func Open(baseDir string) (*DB, error) {
	dbPath := filepath.Join(baseDir, dbFile)

	if _, err := os.Stat(dbPath); os.IsNotExist(err) {
		return nil, fmt.Errorf("database not found: run 'bp init' first")
	}

	conn, err := openConn(dbPath)
	if err != nil {
		return nil, err
	}

	db := &DB{conn: conn, baseDir: baseDir}
	if err := db.migrate(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}
	return db, nil
}

// Initialize creates the database file and schema.
func Initialize(baseDir string) (*DB, error) {
	dbPath := filepath.Join(baseDir, dbFile)

	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, fmt.Errorf("create db dir: %w", err)
	}

	conn, err := openConn(dbPath)
	if err != nil {
		return nil, err
	}

	if _, err := conn.Exec(schema); err != nil {
		conn.Close()
		return nil, fmt.Errorf("create schema: %w", err)
	}

	db := &DB{conn: conn, baseDir: baseDir}
	if err := db.migrate(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}
	return db, nil
}

// InitializeInMemory creates a throwaway store for tests.
func InitializeInMemory() (*DB, error) {
	conn, err := openConn(":memory:")
	if err != nil {
		return nil, err
	}
	if _, err := conn.Exec(schema); err != nil {
		conn.Close()
		return nil, fmt.Errorf("create schema: %w", err)
	}
	db := &DB{conn: conn}
	if err := db.migrate(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}
	return db, nil
}

func openConn(dbPath string) (*sql.DB, error) {
	conn, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	// WAL allows concurrent reads while writes are serialized
	if _, err := conn.Exec("PRAGMA journal_mode=WAL"); err != nil {
		conn.Close()
		return nil, fmt.Errorf("enable WAL mode: %w", err)
	}
	if _, err := conn.Exec("PRAGMA busy_timeout=500"); err != nil {
		conn.Close()
		return nil, fmt.Errorf("set busy timeout: %w", err)
	}
	conn.Exec("PRAGMA synchronous=NORMAL")

	return conn, nil
}

// migrate records the schema version and applies any future migrations.
func (db *DB) migrate() error {
	if _, err := db.conn.Exec(`CREATE TABLE IF NOT EXISTS schema_migrations (
		version INTEGER PRIMARY KEY,
		applied_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
	)`); err != nil {
		return err
	}

	var current int
	err := db.conn.QueryRow(`SELECT COALESCE(MAX(version), 0) FROM schema_migrations`).Scan(&current)
	if err != nil {
		return err
	}
	if current >= SchemaVersion {
		return nil
	}

	_, err = db.conn.Exec(`INSERT INTO schema_migrations (version) VALUES (?)`, SchemaVersion)
	return err
}

// Close closes the database.
func (db *DB) Close() error {
	return db.conn.Close()
}

// BaseDir returns the base directory for the database.
func (db *DB) BaseDir() string {
	return db.baseDir
}

// Conn exposes the underlying connection for transactions.
func (db *DB) Conn() *sql.DB {
	return db.conn
}

// nextLocalKey allocates a primary key for a record created before its
// server id is known. Keys start at localKeyBase and grow monotonically.
func (db *DB) nextLocalKey(table string) (int64, error) {
	var next int64
	query := fmt.Sprintf(`SELECT COALESCE(MAX(id)+1, %d) FROM %s WHERE id >= %d`, localKeyBase, table, localKeyBase)
	if err := db.conn.QueryRow(query).Scan(&next); err != nil {
		return 0, fmt.Errorf("allocate local key for %s: %w", table, err)
	}
	return next, nil
}

// rekey moves a row from its provisional local key to its server-assigned
// id. If a pulled copy already occupies the server id, the provisional row
// wins (it carries the state the server just confirmed) and the stale copy
// is dropped first.
func (db *DB) rekey(table string, oldID, newID int64) error {
	if oldID == newID {
		return nil
	}
	tx, err := db.conn.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err := tx.Exec(fmt.Sprintf(`DELETE FROM %s WHERE id = ?`, table), newID); err != nil {
		return fmt.Errorf("clear stale row %s/%d: %w", table, newID, err)
	}
	if _, err := tx.Exec(fmt.Sprintf(`UPDATE %s SET id = ? WHERE id = ?`, table), newID, oldID); err != nil {
		return fmt.Errorf("rekey %s/%d -> %d: %w", table, oldID, newID, err)
	}
	return tx.Commit()
}

// parseTime tries the timestamp formats sqlite hands back.
func parseTime(s string) (time.Time, error) {
	formats := []string{
		time.RFC3339Nano,
		time.RFC3339,
		"2006-01-02 15:04:05.999999999-07:00",
		"2006-01-02 15:04:05.999999999",
		"2006-01-02 15:04:05",
	}
	for _, f := range formats {
		if t, err := time.Parse(f, s); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognized timestamp format: %q", s)
}

func scanNullTime(ns sql.NullString) (*time.Time, error) {
	if !ns.Valid || ns.String == "" {
		return nil, nil
	}
	t, err := parseTime(ns.String)
	if err != nil {
		return nil, err
	}
	return &t, nil
}

func fmtTime(t time.Time) string {
	return t.UTC().Format(time.RFC3339Nano)
}

func fmtTimePtr(t *time.Time) any {
	if t == nil {
		return nil
	}
	return fmtTime(*t)
}
