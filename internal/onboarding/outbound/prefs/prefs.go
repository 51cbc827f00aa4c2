// Package prefs persists per-device onboarding preferences: whether the
// intro has been completed and the last phone number a code was sent to.
package prefs

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/shandysiswandi/shield/internal/pkg/goerror"
	"github.com/shandysiswandi/shield/internal/pkg/instrument"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// Namespace prefixes every stored key, like a preferences file name.
const Namespace = "shield_prefs"

const (
	keyOnboardingCompleted = "onboarding_completed"
	keyLastPhone           = "last_phone"
)

const (
	DriverMemory   = "memory"
	DriverRedis    = "redis"
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite"
)

// ErrUnknownDriver is returned by New for an unsupported prefs.driver.
var ErrUnknownDriver = errors.New("prefs: unknown driver")

// Store is implemented by every driver. Missing values read as false and "".
type Store interface {
	io.Closer

	OnboardingCompleted(ctx context.Context, deviceID string) (bool, error)
	SetOnboardingCompleted(ctx context.Context, deviceID string, completed bool) error
	LastPhoneNumber(ctx context.Context, deviceID string) (string, error)
	SetLastPhoneNumber(ctx context.Context, deviceID, phone string) error
}

type tracing struct {
	ins    instrument.Instrumentation
	driver string
}

func (t tracing) startSpan(ctx context.Context, name, deviceID string) (context.Context, trace.Span) {
	return t.ins.Tracer("onboarding.outbound.prefs").Start(ctx, name, trace.WithAttributes(
		attribute.String("prefs.driver", t.driver),
		attribute.String("device_id", deviceID),
	))
}

func (t tracing) endSpan(span trace.Span, err error) {
	if err != nil && !errors.Is(err, goerror.ErrNotFound) {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	span.End()
}

// orDefault turns ErrNotFound into a nil error so callers see the zero value.
func orDefault[T any](v T, err error) (T, error) {
	if errors.Is(err, goerror.ErrNotFound) {
		var zero T
		return zero, nil
	}
	return v, err
}

// Options carries what each driver needs. Only the selected driver's fields
// are read.
type Options struct {
	Redis    RedisClient
	Postgres PgxConn
	SQLite   string
}

// New returns the Store for driver.
func New(ctx context.Context, driver string, opts Options, ins instrument.Instrumentation) (Store, error) {
	if ins == nil {
		ins = instrument.NewNoop()
	}

	switch strings.ToLower(strings.TrimSpace(driver)) {
	case "", DriverMemory:
		return NewMemory(ins), nil
	case DriverRedis:
		if opts.Redis == nil {
			return nil, fmt.Errorf("prefs: redis client is required")
		}
		return NewRedis(opts.Redis, ins), nil
	case DriverPostgres:
		if opts.Postgres == nil {
			return nil, fmt.Errorf("prefs: postgres pool is required")
		}
		return NewPostgres(ctx, opts.Postgres, ins)
	case DriverSQLite:
		return OpenSQLite(ctx, opts.SQLite, ins)
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnknownDriver, driver)
	}
}
