package prefs

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/shandysiswandi/shield/internal/pkg/goerror"
	"github.com/shandysiswandi/shield/internal/pkg/instrument"
)

// PgxConn is the subset of *pgxpool.Pool the store uses.
type PgxConn interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

const pgSchema = `CREATE TABLE IF NOT EXISTS onboarding_preferences (
	device_id            TEXT PRIMARY KEY,
	onboarding_completed BOOLEAN NOT NULL DEFAULT FALSE,
	last_phone           TEXT NOT NULL DEFAULT '',
	updated_at           TIMESTAMPTZ NOT NULL DEFAULT NOW()
)`

// Postgres stores one row per device in onboarding_preferences.
type Postgres struct {
	tracing
	conn PgxConn
}

// NewPostgres creates the table when it does not exist.
func NewPostgres(ctx context.Context, conn PgxConn, ins instrument.Instrumentation) (*Postgres, error) {
	if _, err := conn.Exec(ctx, pgSchema); err != nil {
		return nil, fmt.Errorf("prefs: create postgres schema: %w", err)
	}
	return &Postgres{tracing: tracing{ins: ins, driver: DriverPostgres}, conn: conn}, nil
}

// Close is a no-op; the pool is owned by the app.
func (p *Postgres) Close() error { return nil }

func (p *Postgres) mapError(err error) error {
	if errors.Is(err, pgx.ErrNoRows) {
		return goerror.ErrNotFound
	}
	return err
}

func (p *Postgres) OnboardingCompleted(ctx context.Context, deviceID string) (_ bool, err error) {
	ctx, span := p.startSpan(ctx, "OnboardingCompleted", deviceID)
	defer func() { p.endSpan(span, err) }()

	var completed bool
	err = p.conn.QueryRow(ctx,
		`SELECT onboarding_completed FROM onboarding_preferences WHERE device_id = $1`,
		deviceID,
	).Scan(&completed)
	return orDefault(completed, p.mapError(err))
}

func (p *Postgres) SetOnboardingCompleted(ctx context.Context, deviceID string, completed bool) (err error) {
	ctx, span := p.startSpan(ctx, "SetOnboardingCompleted", deviceID)
	defer func() { p.endSpan(span, err) }()

	_, err = p.conn.Exec(ctx,
		`INSERT INTO onboarding_preferences (device_id, onboarding_completed) VALUES ($1, $2)
		 ON CONFLICT (device_id) DO UPDATE SET onboarding_completed = EXCLUDED.onboarding_completed, updated_at = NOW()`,
		deviceID, completed,
	)
	return err
}

func (p *Postgres) LastPhoneNumber(ctx context.Context, deviceID string) (_ string, err error) {
	ctx, span := p.startSpan(ctx, "LastPhoneNumber", deviceID)
	defer func() { p.endSpan(span, err) }()

	var phone string
	err = p.conn.QueryRow(ctx,
		`SELECT last_phone FROM onboarding_preferences WHERE device_id = $1`,
		deviceID,
	).Scan(&phone)
	return orDefault(phone, p.mapError(err))
}

func (p *Postgres) SetLastPhoneNumber(ctx context.Context, deviceID, phone string) (err error) {
	ctx, span := p.startSpan(ctx, "SetLastPhoneNumber", deviceID)
	defer func() { p.endSpan(span, err) }()

	_, err = p.conn.Exec(ctx,
		`INSERT INTO onboarding_preferences (device_id, last_phone) VALUES ($1, $2)
		 ON CONFLICT (device_id) DO UPDATE SET last_phone = EXCLUDED.last_phone, updated_at = NOW()`,
		deviceID, phone,
	)
	return err
}
