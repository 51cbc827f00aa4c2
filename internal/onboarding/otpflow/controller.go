package otpflow

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/shandysiswandi/shield/internal/onboarding/entity"
	"github.com/shandysiswandi/shield/internal/pkg/clock"
)

const (
	defaultVerifyDelay  = 1500 * time.Millisecond
	defaultInvalidFlash = 1200 * time.Millisecond
	defaultCallTimeout  = 5 * time.Second
	countdownTickPeriod = time.Second
)

// PhoneStore persists the last phone number a code was requested for.
type PhoneStore interface {
	SetLastPhoneNumber(ctx context.Context, phone string) error
}

// Config configures a Controller. Zero values select the defaults.
type Config struct {
	// ID names the flow in logs.
	ID string

	Clock    clock.Clocker
	Store    PhoneStore
	Verifier Verifier

	// ResendSeconds is where the resend countdown starts. Default 60.
	ResendSeconds int
	// VerifyDelay is how long Verify waits before consulting the Verifier.
	// Default 1500 ms.
	VerifyDelay time.Duration
	// InvalidFlash is how long InvalidAttempt stays set after a rejected
	// code. Default 1200 ms; negative keeps it set until the next input.
	InvalidFlash time.Duration
	// CallTimeout bounds Store and Verifier calls. Default 5 s.
	CallTimeout time.Duration

	// OnComplete runs once, after the flow reaches StageVerified.
	OnComplete func()
	// OnChange receives every new state, in order. It is called with the
	// controller locked and must not block or call back into the controller.
	OnChange func(entity.VerificationState)
	// OnCodeRequested runs after RequestCode or Resend sends a code.
	OnCodeRequested func(phone string)
}

type slot struct {
	timer clock.Timer
	gen   uint64
}

func (s *slot) cancel() {
	if s.timer != nil {
		s.timer.Stop()
		s.timer = nil
	}
	s.gen++
}

// effects are collected under the lock. OnChange fires in commit; the rest
// runs in apply once the lock is released.
type effects struct {
	changed   bool
	state     entity.VerificationState
	savePhone string
	requested string
	completed bool
}

// Controller drives one phone verification flow.
type Controller struct {
	cfg Config

	mu        sync.Mutex
	state     entity.VerificationState
	countdown slot
	verify    slot
	flash     slot
	closed    bool
	completed bool
}

// New returns a Controller in StagePhoneEntry.
func New(cfg Config) *Controller {
	if cfg.Clock == nil {
		cfg.Clock = clock.New()
	}
	if cfg.Verifier == nil {
		cfg.Verifier = NewStaticVerifier("")
	}
	if cfg.ResendSeconds <= 0 {
		cfg.ResendSeconds = entity.ResendSeconds
	}
	if cfg.VerifyDelay <= 0 {
		cfg.VerifyDelay = defaultVerifyDelay
	}
	if cfg.InvalidFlash == 0 {
		cfg.InvalidFlash = defaultInvalidFlash
	}
	if cfg.CallTimeout <= 0 {
		cfg.CallTimeout = defaultCallTimeout
	}

	return &Controller{cfg: cfg, state: entity.NewVerificationState(cfg.ResendSeconds)}
}

// State returns a snapshot of the current state.
func (c *Controller) State() entity.VerificationState {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// Closed reports whether Close has been called.
func (c *Controller) Closed() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.closed
}

// acceptsInput reports whether user operations may change the state.
func (c *Controller) acceptsInput() bool {
	return !c.closed && c.state.Stage != entity.StageVerifying && c.state.Stage != entity.StageVerified
}

// mutate runs fn under the lock when the flow accepts input, then runs the
// resulting effects and returns the new snapshot.
func (c *Controller) mutate(fn func(fx *effects)) entity.VerificationState {
	c.mu.Lock()
	var fx effects
	if c.acceptsInput() {
		fn(&fx)
	}
	c.commit(&fx)
	c.mu.Unlock()

	c.apply(fx)
	return fx.state
}

// commit snapshots the state into fx and publishes it. Callers hold c.mu.
func (c *Controller) commit(fx *effects) {
	fx.state = c.state
	if fx.changed && c.cfg.OnChange != nil {
		c.cfg.OnChange(fx.state)
	}
}

func (c *Controller) apply(fx effects) {
	if fx.savePhone != "" && c.cfg.Store != nil {
		ctx, cancel := context.WithTimeout(context.Background(), c.cfg.CallTimeout)
		if err := c.cfg.Store.SetLastPhoneNumber(ctx, fx.savePhone); err != nil {
			slog.Warn("failed to persist last phone number", "flow_id", c.cfg.ID, "error", err)
		}
		cancel()
	}
	if fx.requested != "" && c.cfg.OnCodeRequested != nil {
		c.cfg.OnCodeRequested(fx.requested)
	}
	if fx.completed && c.cfg.OnComplete != nil {
		c.cfg.OnComplete()
	}
}

// SetPhoneNumber replaces the phone number when input is at most 10 digits.
func (c *Controller) SetPhoneNumber(input string) entity.VerificationState {
	return c.mutate(func(fx *effects) {
		if len(input) > entity.PhoneLength || !entity.IsDigits(input) {
			return
		}
		c.state.PhoneNumber = input
		c.state.ErrorMessage = ""
		fx.changed = true
	})
}

// RequestCode sends a code to a complete phone number and starts the resend
// countdown. An incomplete number only sets the error message.
func (c *Controller) RequestCode() entity.VerificationState {
	return c.mutate(func(fx *effects) {
		fx.changed = true
		if len(c.state.PhoneNumber) != entity.PhoneLength {
			c.state.ErrorMessage = entity.MsgInvalidPhone
			return
		}

		c.state.Stage = entity.StageOtpSent
		c.state.ErrorMessage = ""
		c.restartCountdown()

		fx.savePhone = c.state.PhoneNumber
		fx.requested = c.state.PhoneNumber
	})
}

// SetOtpCode replaces the code when input is at most 6 digits. It also clears
// the invalid-attempt flag.
func (c *Controller) SetOtpCode(input string) entity.VerificationState {
	return c.mutate(func(fx *effects) {
		if len(input) > entity.OtpLength || !entity.IsDigits(input) {
			return
		}
		c.state.OtpCode = input
		c.state.ErrorMessage = ""
		c.state.InvalidAttempt = false
		c.flash.cancel()
		fx.changed = true
	})
}

// Verify moves a complete code to StageVerifying and resolves it after the
// verification delay. It is ignored while a verification is in flight.
func (c *Controller) Verify() entity.VerificationState {
	return c.mutate(func(fx *effects) {
		fx.changed = true
		if len(c.state.OtpCode) != entity.OtpLength {
			c.state.ErrorMessage = entity.MsgIncompleteOtp
			return
		}

		prev := c.state.Stage
		phone, code := c.state.PhoneNumber, c.state.OtpCode

		c.state.Stage = entity.StageVerifying
		c.state.ErrorMessage = ""
		c.schedule(&c.verify, c.cfg.VerifyDelay, func(gen uint64) {
			c.resolve(gen, prev, phone, code)
		})
	})
}

// Resend restarts the countdown once it has reached zero. Otherwise it does
// nothing.
func (c *Controller) Resend() entity.VerificationState {
	return c.mutate(func(fx *effects) {
		if !c.state.CanResend {
			return
		}

		c.state.OtpCode = ""
		c.state.ErrorMessage = ""
		c.state.InvalidAttempt = false
		c.flash.cancel()
		c.restartCountdown()

		fx.changed = true
		fx.requested = c.state.PhoneNumber
	})
}

// ResetToPhoneEntry keeps the phone number, restores every other field and
// cancels all pending timers. A verified flow is not reset.
func (c *Controller) ResetToPhoneEntry() entity.VerificationState {
	c.mu.Lock()
	var fx effects
	if !c.closed && c.state.Stage != entity.StageVerified {
		c.cancelAll()
		phone := c.state.PhoneNumber
		c.state = entity.NewVerificationState(c.cfg.ResendSeconds)
		c.state.PhoneNumber = phone
		fx.changed = true
	}
	c.commit(&fx)
	c.mu.Unlock()

	c.apply(fx)
	return fx.state
}

// Close cancels every pending timer. Operations after Close leave the state
// untouched.
func (c *Controller) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.closed = true
	c.cancelAll()
	return nil
}

func (c *Controller) cancelAll() {
	c.countdown.cancel()
	c.verify.cancel()
	c.flash.cancel()
}

// schedule replaces whatever s holds with a timer firing fn after d.
func (c *Controller) schedule(s *slot, d time.Duration, fn func(gen uint64)) {
	s.cancel()
	gen := s.gen
	s.timer = c.cfg.Clock.AfterFunc(d, func() { fn(gen) })
}

func (c *Controller) restartCountdown() {
	c.state.SecondsUntilResend = c.cfg.ResendSeconds
	c.state.CanResend = false
	c.schedule(&c.countdown, countdownTickPeriod, c.tick)
}

// live reports whether a callback of generation gen in s may still act.
func (c *Controller) live(s *slot, gen uint64) bool {
	return !c.closed && s.gen == gen
}

func (c *Controller) tick(gen uint64) {
	c.mu.Lock()
	if !c.live(&c.countdown, gen) {
		c.mu.Unlock()
		return
	}

	c.state.SecondsUntilResend--
	if c.state.SecondsUntilResend <= 0 {
		c.state.SecondsUntilResend = 0
		c.state.CanResend = true
		c.countdown.timer = nil
	} else {
		c.countdown.timer = c.cfg.Clock.AfterFunc(countdownTickPeriod, func() { c.tick(gen) })
	}
	fx := effects{changed: true}
	c.commit(&fx)
	c.mu.Unlock()

	c.apply(fx)
}

func (c *Controller) resolve(gen uint64, prev entity.Stage, phone, code string) {
	ctx, cancel := context.WithTimeout(context.Background(), c.cfg.CallTimeout)
	accepted, err := c.cfg.Verifier.Verify(ctx, phone, code)
	cancel()

	c.mu.Lock()
	if !c.live(&c.verify, gen) {
		c.mu.Unlock()
		return
	}
	c.verify.timer = nil

	fx := effects{changed: true}
	switch {
	case err != nil:
		slog.Error("failed to verify otp", "flow_id", c.cfg.ID, "error", err)
		c.state.Stage = prev
		c.state.ErrorMessage = entity.MsgVerificationDown

	case accepted:
		c.state.Stage = entity.StageVerified
		c.state.ErrorMessage = ""
		c.state.InvalidAttempt = false
		c.countdown.cancel()
		c.flash.cancel()
		if !c.completed {
			c.completed = true
			fx.completed = true
		}

	default:
		c.state.Stage = prev
		c.state.InvalidAttempt = true
		c.state.ErrorMessage = entity.MsgInvalidOtp
		c.state.OtpCode = ""
		if c.cfg.InvalidFlash > 0 {
			c.schedule(&c.flash, c.cfg.InvalidFlash, c.clearInvalid)
		}
	}
	c.commit(&fx)
	c.mu.Unlock()

	c.apply(fx)
}

func (c *Controller) clearInvalid(gen uint64) {
	c.mu.Lock()
	if !c.live(&c.flash, gen) {
		c.mu.Unlock()
		return
	}
	c.flash.timer = nil
	c.state.InvalidAttempt = false
	fx := effects{changed: true}
	c.commit(&fx)
	c.mu.Unlock()

	c.apply(fx)
}
