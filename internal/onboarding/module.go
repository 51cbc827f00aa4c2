package onboarding

import (
	"context"
	"fmt"
	"strings"

	"github.com/shandysiswandi/shield/internal/onboarding/entity"
	"github.com/shandysiswandi/shield/internal/onboarding/inbound"
	"github.com/shandysiswandi/shield/internal/onboarding/otpflow"
	"github.com/shandysiswandi/shield/internal/onboarding/outbound/mq"
	"github.com/shandysiswandi/shield/internal/onboarding/outbound/prefs"
	"github.com/shandysiswandi/shield/internal/onboarding/usecase"
	"github.com/shandysiswandi/shield/internal/pkg/clock"
	"github.com/shandysiswandi/shield/internal/pkg/config"
	"github.com/shandysiswandi/shield/internal/pkg/goroutine"
	"github.com/shandysiswandi/shield/internal/pkg/hash"
	"github.com/shandysiswandi/shield/internal/pkg/instrument"
	"github.com/shandysiswandi/shield/internal/pkg/messaging"
	"github.com/shandysiswandi/shield/internal/pkg/otp"
	"github.com/shandysiswandi/shield/internal/pkg/router"
	"github.com/shandysiswandi/shield/internal/pkg/uid"
	"github.com/shandysiswandi/shield/internal/pkg/validator"
)

const (
	VerifierStatic = "static"
	VerifierTOTP   = "totp"
)

type Dependency struct {
	Ctx        context.Context            `validate:"required"`
	Prefs      prefs.Store                `validate:"required"`
	Messaging  messaging.Publisher        `validate:"required"`
	Config     config.Config              `validate:"required"`
	Instrument instrument.Instrumentation `validate:"required"`
	UUID       uid.StringID               `validate:"required"`
	Clock      clock.Clocker              `validate:"required"`
	Goroutine  *goroutine.Manager         `validate:"required"`
	Validator  validator.Validator        `validate:"required"`
	Router     *router.Router             `validate:"required"`
	HMAC       hash.Hash                  `validate:"required"`
	Totp       otp.OTP                    `validate:"required"`
}

func New(dep Dependency) error {
	if err := dep.Validator.Validate(dep); err != nil {
		return err
	}

	verifier, devCode, err := newVerifier(dep)
	if err != nil {
		return err
	}

	uc := usecase.New(usecase.Dependency{
		RepoPrefs:     dep.Prefs,
		RepoMessaging: mq.NewMessaging(dep.Messaging, dep.Instrument),
		Config:        dep.Config,
		UUID:          dep.UUID,
		Clock:         dep.Clock,
		Validator:     dep.Validator,
		Verifier:      verifier,
		DevCode:       devCode,
		Goroutine:     dep.Goroutine,
		Instrument:    dep.Instrument,
	})

	inbound.RegisterHTTPEndpoint(dep.Router, uc)

	if !uc.StartJanitor(dep.Ctx) {
		return fmt.Errorf("onboarding: failed to start flow janitor")
	}

	return nil
}

type codeSource interface {
	Code(ctx context.Context, phone string) (string, error)
}

// newVerifier picks the verifier named by onboarding.verifier.driver and the
// source of the codes it accepts.
func newVerifier(dep Dependency) (otpflow.Verifier, codeSource, error) {
	switch driver := strings.ToLower(strings.TrimSpace(dep.Config.GetString("onboarding.verifier.driver"))); driver {
	case "", VerifierStatic:
		code := strings.TrimSpace(dep.Config.GetString("onboarding.verifier.static_code"))
		if code == "" {
			code = otpflow.DefaultAcceptedCode
		}
		if len(code) != entity.OtpLength || !entity.IsDigits(code) {
			return nil, nil, fmt.Errorf("onboarding: static_code must be %d digits", entity.OtpLength)
		}
		return otpflow.NewStaticVerifier(code), usecase.StaticCode(code), nil

	case VerifierTOTP:
		v := usecase.NewTOTPVerifier(dep.HMAC, dep.Totp, dep.Clock)
		return v, v, nil

	default:
		return nil, nil, fmt.Errorf("onboarding: unknown verifier driver %q", driver)
	}
}
