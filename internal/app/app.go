package app

import (
	"context"
	"net/http"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
	"github.com/shandysiswandi/shield/internal/onboarding/outbound/prefs"
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

// App wires dependencies and manages service lifecycle.
type App struct {
	ctx    context.Context
	cancel context.CancelFunc

	// configuration
	config config.Config
	ins    instrument.Instrumentation

	// libraries
	goroutine *goroutine.Manager
	validator validator.Validator
	clock     clock.Clocker
	hmac      hash.Hash
	uuid      uid.StringID
	totp      otp.OTP

	// resources, dbConn and cacheConn are only opened when the prefs driver needs them
	dbConn    *pgxpool.Pool
	cacheConn *redis.Client
	prefs     prefs.Store
	messaging messaging.Publisher

	// server
	router     *router.Router
	httpServer *http.Server
	sseServer  *http.Server

	//
	closers []struct {
		name string
		fn   func(context.Context) error
	}
}

// New initializes the application with default wiring and returns an App instance.
func New() *App {
	ctx, cancel := context.WithCancel(context.Background())
	app := &App{
		ctx:    ctx,
		cancel: cancel,
	}

	app.initConfig()
	app.initInstrument()
	app.initLibraries()
	app.initDatabase()
	app.initCache()
	app.initPrefs()
	app.initMessaging()
	app.initHTTPServer()
	app.initModules()
	app.initClosers()

	return app
}
