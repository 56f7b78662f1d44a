package session

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	_ "modernc.org/sqlite" // SQLite driver

	"github.com/dgallion1/learnaloud/internal/document"
	"github.com/dgallion1/learnaloud/internal/session/migrations"
)

// SQLiteStore persists sessions in a SQLite database so they survive
// restarts. Document, outline and state are stored as JSON columns.
type SQLiteStore struct {
	db   *sql.DB
	path string
	ttl  time.Duration

	// writeMu serialises read-modify-write state updates.
	writeMu sync.Mutex
}

// OpenSQLite opens (creating if needed) the database at path and runs
// pending migrations.
func OpenSQLite(path string, ttl time.Duration) (*SQLiteStore, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return nil, fmt.Errorf("creating data directory: %w", err)
	}

	db, err := sql.Open("sqlite", path+"?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	s := &SQLiteStore{db: db, path: path, ttl: ttl}
	if err := s.migrate(migrations.FS); err != nil {
		db.Close()
		return nil, fmt.Errorf("running migrations: %w", err)
	}
	return s, nil
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

// Path returns the database file path.
func (s *SQLiteStore) Path() string {
	return s.path
}

func (s *SQLiteStore) migrate(fsys fs.FS) error {
	_, err := s.db.Exec(`
		CREATE TABLE IF NOT EXISTS schema_migrations (
			version INTEGER PRIMARY KEY,
			applied_at DATETIME DEFAULT CURRENT_TIMESTAMP
		)
	`)
	if err != nil {
		return fmt.Errorf("creating schema_migrations table: %w", err)
	}

	var current int
	if err := s.db.QueryRow("SELECT COALESCE(MAX(version), 0) FROM schema_migrations").Scan(&current); err != nil {
		return fmt.Errorf("getting current version: %w", err)
	}

	entries, err := fs.ReadDir(fsys, ".")
	if err != nil {
		return fmt.Errorf("reading migrations directory: %w", err)
	}
	var upFiles []string
	for _, e := range entries {
		if strings.HasSuffix(e.Name(), ".up.sql") {
			upFiles = append(upFiles, e.Name())
		}
	}
	sort.Strings(upFiles)

	for _, name := range upFiles {
		var version int
		if _, err := fmt.Sscanf(name, "%d_", &version); err != nil {
			continue
		}
		if version <= current {
			continue
		}
		content, err := fs.ReadFile(fsys, name)
		if err != nil {
			return fmt.Errorf("reading migration %s: %w", name, err)
		}
		if _, err := s.db.Exec(string(content)); err != nil {
			return fmt.Errorf("executing migration %s: %w", name, err)
		}
		if _, err := s.db.Exec("INSERT INTO schema_migrations (version) VALUES (?)", version); err != nil {
			return fmt.Errorf("recording migration %s: %w", name, err)
		}
	}
	return nil
}

func (s *SQLiteStore) Put(ctx context.Context, sess *Session) error {
	docJSON, err := json.Marshal(sess.Document)
	if err != nil {
		return fmt.Errorf("marshalling document: %w", err)
	}
	outlineJSON, err := json.Marshal(sess.Outline)
	if err != nil {
		return fmt.Errorf("marshalling outline: %w", err)
	}
	stateJSON, err := json.Marshal(sess.State.Clone())
	if err != nil {
		return fmt.Errorf("marshalling state: %w", err)
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO sessions (id, filename, file_path, total_pages, document, outline, state, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			filename = excluded.filename,
			file_path = excluded.file_path,
			total_pages = excluded.total_pages,
			document = excluded.document,
			outline = excluded.outline,
			state = excluded.state,
			updated_at = excluded.updated_at
	`, sess.ID, sess.Filename, sess.FilePath, sess.TotalPages,
		string(docJSON), string(outlineJSON), string(stateJSON),
		sess.CreatedAt.UnixMilli(), sess.UpdatedAt.UnixMilli())
	if err != nil {
		return fmt.Errorf("saving session: %w", err)
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanSession(row rowScanner) (*Session, error) {
	var (
		sess                         Session
		docJSON, outJSON, stJSON     string
		createdMillis, updatedMillis int64
	)
	err := row.Scan(&sess.ID, &sess.Filename, &sess.FilePath, &sess.TotalPages,
		&docJSON, &outJSON, &stJSON, &createdMillis, &updatedMillis)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("scanning session: %w", err)
	}

	var doc document.Document
	if err := json.Unmarshal([]byte(docJSON), &doc); err != nil {
		return nil, fmt.Errorf("unmarshalling document: %w", err)
	}
	sess.Document = &doc
	if err := json.Unmarshal([]byte(outJSON), &sess.Outline); err != nil {
		return nil, fmt.Errorf("unmarshalling outline: %w", err)
	}
	if err := json.Unmarshal([]byte(stJSON), &sess.State); err != nil {
		return nil, fmt.Errorf("unmarshalling state: %w", err)
	}
	sess.State = sess.State.Clone()
	sess.CreatedAt = time.UnixMilli(createdMillis).UTC()
	sess.UpdatedAt = time.UnixMilli(updatedMillis).UTC()
	return &sess, nil
}

const selectSession = `
	SELECT id, filename, file_path, total_pages, document, outline, state, created_at, updated_at
	FROM sessions WHERE id = ?`

func (s *SQLiteStore) Get(ctx context.Context, id string) (*Session, error) {
	return scanSession(s.db.QueryRowContext(ctx, selectSession, id))
}

func (s *SQLiteStore) Delete(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, "DELETE FROM sessions WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("deleting session: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *SQLiteStore) UpdateState(ctx context.Context, id string, fn func(*Session, *State) error) (State, error) {
	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	sess, err := s.Get(ctx, id)
	if err != nil {
		return State{}, err
	}
	st := sess.State.Clone()
	if err := fn(sess, &st); err != nil {
		return State{}, err
	}
	stateJSON, err := json.Marshal(st)
	if err != nil {
		return State{}, fmt.Errorf("marshalling state: %w", err)
	}
	_, err = s.db.ExecContext(ctx,
		"UPDATE sessions SET state = ?, updated_at = ? WHERE id = ?",
		string(stateJSON), time.Now().UTC().UnixMilli(), id)
	if err != nil {
		return State{}, fmt.Errorf("updating state: %w", err)
	}
	return st, nil
}

// Cleanup deletes sessions idle past the TTL. A zero TTL keeps everything.
func (s *SQLiteStore) Cleanup(ctx context.Context) ([]string, error) {
	if s.ttl <= 0 {
		return nil, nil
	}
	cutoff := time.Now().Add(-s.ttl).UnixMilli()

	rows, err := s.db.QueryContext(ctx, "SELECT id FROM sessions WHERE updated_at < ?", cutoff)
	if err != nil {
		return nil, fmt.Errorf("querying expired sessions: %w", err)
	}
	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			rows.Close()
			return nil, fmt.Errorf("scanning session id: %w", err)
		}
		ids = append(ids, id)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating expired sessions: %w", err)
	}

	for _, id := range ids {
		if _, err := s.db.ExecContext(ctx, "DELETE FROM sessions WHERE id = ?", id); err != nil {
			return nil, fmt.Errorf("deleting session %s: %w", id, err)
		}
	}
	return ids, nil
}
