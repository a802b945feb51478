package out

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"pomo/internal/modules/pomodoro/domain"
	pomodoroout "pomo/internal/modules/pomodoro/port/out"

	_ "modernc.org/sqlite"
)

const timeLayout = "2006-01-02T15:04:05.000Z07:00"

type SQLiteSessionStore struct {
	db *sql.DB
}

func NewSQLiteSessionStore(dbPath string) (pomodoroout.SessionStore, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0o755); err != nil {
		return nil, fmt.Errorf("create db dir: %w", err)
	}
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	store := &SQLiteSessionStore{db: db}
	if err := store.ensureSchema(context.Background()); err != nil {
		_ = db.Close()
		return nil, err
	}
	return store, nil
}

func (s *SQLiteSessionStore) Close() error {
	return s.db.Close()
}

func (s *SQLiteSessionStore) ensureSchema(ctx context.Context) error {
	const ddl = `
CREATE TABLE IF NOT EXISTS sessions (
  id TEXT PRIMARY KEY,
  kind TEXT NOT NULL,
  mode TEXT NOT NULL,
  duration_seconds INTEGER NOT NULL,
  completed_at TEXT NOT NULL,
  completed_unix INTEGER NOT NULL
);
CREATE INDEX IF NOT EXISTS sessions_completed_idx ON sessions (completed_unix);
`
	if _, err := s.db.ExecContext(ctx, ddl); err != nil {
		return fmt.Errorf("create sessions table: %w", err)
	}
	return nil
}

func (s *SQLiteSessionStore) Append(ctx context.Context, session domain.Session) error {
	const stmt = `
INSERT INTO sessions (id, kind, mode, duration_seconds, completed_at, completed_unix)
VALUES (?, ?, ?, ?, ?, ?);
`
	_, err := s.db.ExecContext(ctx, stmt,
		session.ID,
		string(session.Kind),
		string(session.Mode),
		int64(session.Duration/time.Second),
		session.CompletedAt.Format(timeLayout),
		session.CompletedAt.UnixMilli(),
	)
	if err != nil {
		return fmt.Errorf("insert session: %w", err)
	}
	return nil
}

func (s *SQLiteSessionStore) Recent(ctx context.Context, limit int) ([]domain.Session, error) {
	const query = `
SELECT id, kind, mode, duration_seconds, completed_at FROM sessions
ORDER BY completed_unix DESC, rowid DESC
LIMIT ?;
`
	return s.query(ctx, query, limit)
}

func (s *SQLiteSessionStore) Since(ctx context.Context, since time.Time) ([]domain.Session, error) {
	const query = `
SELECT id, kind, mode, duration_seconds, completed_at FROM sessions
WHERE completed_unix >= ?
ORDER BY completed_unix ASC, rowid ASC;
`
	return s.query(ctx, query, since.UnixMilli())
}

func (s *SQLiteSessionStore) query(ctx context.Context, query string, args ...any) ([]domain.Session, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query sessions: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var sessions []domain.Session
	for rows.Next() {
		var (
			session     domain.Session
			kind, mode  string
			seconds     int64
			completedAt string
		)
		if err := rows.Scan(&session.ID, &kind, &mode, &seconds, &completedAt); err != nil {
			return nil, fmt.Errorf("scan session: %w", err)
		}
		at, err := time.Parse(timeLayout, completedAt)
		if err != nil {
			return nil, fmt.Errorf("parse completed_at for %s: %w", session.ID, err)
		}
		session.Mode = domain.Mode(mode)
		if err := session.Mode.Validate(); err != nil {
			return nil, fmt.Errorf("session %s: %w", session.ID, err)
		}
		session.Kind = domain.Kind(kind)
		if session.Kind != session.Mode.Kind() {
			return nil, fmt.Errorf("session %s: kind %q does not match mode %q", session.ID, kind, mode)
		}
		session.Duration = time.Duration(seconds) * time.Second
		session.CompletedAt = at
		sessions = append(sessions, session)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate sessions: %w", err)
	}
	return sessions, nil
}
