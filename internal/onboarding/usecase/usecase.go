package usecase

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/shandysiswandi/shield/internal/onboarding/otpflow"
	"github.com/shandysiswandi/shield/internal/pkg/clock"
	"github.com/shandysiswandi/shield/internal/pkg/config"
	"github.com/shandysiswandi/shield/internal/pkg/goroutine"
	"github.com/shandysiswandi/shield/internal/pkg/instrument"
	"github.com/shandysiswandi/shield/internal/pkg/uid"
	"github.com/shandysiswandi/shield/internal/pkg/validator"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"
)

const publishTimeout = 5 * time.Second

type repoPrefs interface {
	OnboardingCompleted(ctx context.Context, deviceID string) (bool, error)
	SetOnboardingCompleted(ctx context.Context, deviceID string, completed bool) error
	LastPhoneNumber(ctx context.Context, deviceID string) (string, error)
	SetLastPhoneNumber(ctx context.Context, deviceID, phone string) error
}

type repoMessaging interface {
	PublishCodeRequested(ctx context.Context, msg CodeRequestedEvent) error
	PublishPhoneVerified(ctx context.Context, msg PhoneVerifiedEvent) error
}

// codeSource yields the code the verifier currently accepts for a phone.
type codeSource interface {
	Code(ctx context.Context, phone string) (string, error)
}

type Usecase struct {
	repoPrefs     repoPrefs
	repoMessaging repoMessaging
	cfg           config.Config
	uuid          uid.StringID
	clock         clock.Clocker
	validator     validator.Validator
	verifier      otpflow.Verifier
	devCode       codeSource
	goroutine     *goroutine.Manager
	ins           instrument.Instrumentation
	metrics       metrics
	flows         *registry
	streamMu      sync.RWMutex
	streams       map[string]map[*subscriber]struct{}
}

type Dependency struct {
	RepoPrefs     repoPrefs
	RepoMessaging repoMessaging
	Config        config.Config
	UUID          uid.StringID
	Clock         clock.Clocker
	Validator     validator.Validator
	Verifier      otpflow.Verifier
	DevCode       codeSource
	Goroutine     *goroutine.Manager
	Instrument    instrument.Instrumentation
}

func New(dep Dependency) *Usecase {
	if dep.Verifier == nil {
		dep.Verifier = otpflow.NewStaticVerifier("")
	}
	if dep.DevCode == nil {
		dep.DevCode = StaticCode(otpflow.DefaultAcceptedCode)
	}

	return &Usecase{
		repoPrefs:     dep.RepoPrefs,
		repoMessaging: dep.RepoMessaging,
		cfg:           dep.Config,
		uuid:          dep.UUID,
		clock:         dep.Clock,
		validator:     dep.Validator,
		verifier:      dep.Verifier,
		devCode:       dep.DevCode,
		goroutine:     dep.Goroutine,
		ins:           dep.Instrument,
		metrics:       newMetrics(dep.Instrument.Meter("onboarding.usecase")),
		flows:         newRegistry(),
		streams:       make(map[string]map[*subscriber]struct{}),
	}
}

func (s *Usecase) startSpan(ctx context.Context, name string) (context.Context, trace.Span) {
	return s.ins.Tracer("onboarding.usecase").Start(ctx, name)
}

type metrics struct {
	codesRequested metric.Int64Counter
	verifications  metric.Int64Counter
	activeFlows    metric.Int64UpDownCounter
}

func newMetrics(meter metric.Meter) metrics {
	var m metrics
	var err error

	m.codesRequested, err = meter.Int64Counter("onboarding.codes.requested",
		metric.WithDescription("Number of verification codes requested, including resends"))
	if err != nil {
		slog.Warn("failed to create metric", "name", "onboarding.codes.requested", "error", err)
	}

	m.verifications, err = meter.Int64Counter("onboarding.verifications",
		metric.WithDescription("Number of resolved verifications by result"))
	if err != nil {
		slog.Warn("failed to create metric", "name", "onboarding.verifications", "error", err)
	}

	m.activeFlows, err = meter.Int64UpDownCounter("onboarding.flows.active",
		metric.WithDescription("Number of onboarding flows held in memory"))
	if err != nil {
		slog.Warn("failed to create metric", "name", "onboarding.flows.active", "error", err)
	}

	return m
}

func (m metrics) codeRequested(ctx context.Context) {
	if m.codesRequested != nil {
		m.codesRequested.Add(ctx, 1)
	}
}

func (m metrics) verified(ctx context.Context, result string) {
	if m.verifications != nil {
		m.verifications.Add(ctx, 1, metric.WithAttributeSet(resultAttr(result)))
	}
}

func (m metrics) flowDelta(ctx context.Context, n int64) {
	if m.activeFlows != nil {
		m.activeFlows.Add(ctx, n)
	}
}
