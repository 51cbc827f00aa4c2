package prefs

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/shandysiswandi/shield/internal/pkg/goerror"
	"github.com/shandysiswandi/shield/internal/pkg/instrument"

	_ "modernc.org/sqlite"
)

const sqliteSchema = `CREATE TABLE IF NOT EXISTS onboarding_preferences (
	device_id            TEXT PRIMARY KEY,
	onboarding_completed INTEGER NOT NULL DEFAULT 0,
	last_phone           TEXT NOT NULL DEFAULT '',
	updated_at           INTEGER NOT NULL DEFAULT 0
)`

// modernc.org/sqlite applies each _pragma on every new connection.
const sqlitePragmas = "?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)&_pragma=synchronous(NORMAL)"

// SQLite keeps preferences in a local database file.
type SQLite struct {
	tracing
	db *sql.DB
}

// OpenSQLite opens (or creates) the database at path. ":memory:" is accepted.
func OpenSQLite(ctx context.Context, path string, ins instrument.Instrumentation) (*SQLite, error) {
	path = strings.TrimSpace(path)
	if path == "" {
		return nil, errors.New("prefs: sqlite path is required")
	}

	dsn := path
	if path != ":memory:" {
		dsn = filepath.Clean(path) + sqlitePragmas
	}

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("prefs: open sqlite: %w", err)
	}
	// a single connection keeps ":memory:" databases shared and writes serialized
	db.SetMaxOpenConns(1)

	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("prefs: ping sqlite: %w", err)
	}
	if _, err := db.ExecContext(ctx, sqliteSchema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("prefs: create sqlite schema: %w", err)
	}

	return &SQLite{tracing: tracing{ins: ins, driver: DriverSQLite}, db: db}, nil
}

func (s *SQLite) Close() error {
	return s.db.Close()
}

func (s *SQLite) mapError(err error) error {
	if errors.Is(err, sql.ErrNoRows) {
		return goerror.ErrNotFound
	}
	return err
}

func (s *SQLite) OnboardingCompleted(ctx context.Context, deviceID string) (_ bool, err error) {
	ctx, span := s.startSpan(ctx, "OnboardingCompleted", deviceID)
	defer func() { s.endSpan(span, err) }()

	var completed bool
	err = s.db.QueryRowContext(ctx,
		`SELECT onboarding_completed FROM onboarding_preferences WHERE device_id = ?`,
		deviceID,
	).Scan(&completed)
	return orDefault(completed, s.mapError(err))
}

func (s *SQLite) SetOnboardingCompleted(ctx context.Context, deviceID string, completed bool) (err error) {
	ctx, span := s.startSpan(ctx, "SetOnboardingCompleted", deviceID)
	defer func() { s.endSpan(span, err) }()

	_, err = s.db.ExecContext(ctx,
		`INSERT INTO onboarding_preferences (device_id, onboarding_completed, updated_at) VALUES (?, ?, ?)
		 ON CONFLICT (device_id) DO UPDATE SET onboarding_completed = excluded.onboarding_completed, updated_at = excluded.updated_at`,
		deviceID, completed, time.Now().UnixMilli(),
	)
	return err
}

func (s *SQLite) LastPhoneNumber(ctx context.Context, deviceID string) (_ string, err error) {
	ctx, span := s.startSpan(ctx, "LastPhoneNumber", deviceID)
	defer func() { s.endSpan(span, err) }()

	var phone string
	err = s.db.QueryRowContext(ctx,
		`SELECT last_phone FROM onboarding_preferences WHERE device_id = ?`,
		deviceID,
	).Scan(&phone)
	return orDefault(phone, s.mapError(err))
}

func (s *SQLite) SetLastPhoneNumber(ctx context.Context, deviceID, phone string) (err error) {
	ctx, span := s.startSpan(ctx, "SetLastPhoneNumber", deviceID)
	defer func() { s.endSpan(span, err) }()

	_, err = s.db.ExecContext(ctx,
		`INSERT INTO onboarding_preferences (device_id, last_phone, updated_at) VALUES (?, ?, ?)
		 ON CONFLICT (device_id) DO UPDATE SET last_phone = excluded.last_phone, updated_at = excluded.updated_at`,
		deviceID, phone, time.Now().UnixMilli(),
	)
	return err
}
