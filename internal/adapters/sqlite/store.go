package sqlite

import (
    "context"
    "database/sql"
    "fmt"
    "os"
    "path/filepath"

    _ "modernc.org/sqlite"
)

// Store is the embedded single-node job store. All workers in the process
// share one *sql.DB; claim exclusivity rests on conditional updates, not on
// connection-level locking, so pool size does not matter for correctness.
type Store struct {
    db *sql.DB
}

// Open creates or opens the database file and ensures the schema exists.
func Open(path string) (*Store, error) {
    if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
        return nil, err
    }
    dsn := fmt.Sprintf("file:%s?_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)&_pragma=foreign_keys(1)", path)
    db, err := sql.Open("sqlite", dsn)
    if err != nil {
        return nil, err
    }
    s := &Store{db: db}
    if err := s.bootstrap(); err != nil {
        _ = db.Close()
        return nil, err
    }
    return s, nil
}

func (s *Store) Close() error { return s.db.Close() }

// Ping verifies store connectivity.
func (s *Store) Ping(ctx context.Context) error { return s.db.PingContext(ctx) }

func (s *Store) bootstrap() error {
    schema := `
        CREATE TABLE IF NOT EXISTS jobs (
        id          TEXT PRIMARY KEY,
        status      TEXT NOT NULL,          -- queued|running|succeeded|failed
        progress    INTEGER NOT NULL DEFAULT 0,
        input_path  TEXT NOT NULL,
        result      TEXT,
        error       TEXT NOT NULL DEFAULT '',
        attempts    INTEGER NOT NULL DEFAULT 0,
        created_at  TIMESTAMP NOT NULL,
        updated_at  TIMESTAMP NOT NULL
        );
        CREATE INDEX IF NOT EXISTS idx_jobs_status_created ON jobs(status, created_at);
    `
    _, err := s.db.Exec(schema)
    return err
}
