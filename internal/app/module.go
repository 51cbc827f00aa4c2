package app

import (
	"log/slog"
	"os"

	"github.com/shandysiswandi/shield/internal/onboarding"
)

func (a *App) initModules() {
	if err := onboarding.New(onboarding.Dependency{
		Ctx:        a.ctx,
		Prefs:      a.prefs,
		Messaging:  a.messaging,
		Config:     a.config,
		Instrument: a.ins,
		UUID:       a.uuid,
		Clock:      a.clock,
		Goroutine:  a.goroutine,
		Validator:  a.validator,
		Router:     a.router,
		HMAC:       a.hmac,
		Totp:       a.totp,
	}); err != nil {
		slog.Error("failed to init module onboarding", "error", err)
		os.Exit(1)
	}
}
