package usecase

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/shandysiswandi/shield/internal/onboarding/entity"
	"github.com/shandysiswandi/shield/internal/onboarding/outbound/prefs"
	"github.com/shandysiswandi/shield/internal/pkg/clock"
	"github.com/shandysiswandi/shield/internal/pkg/config"
	"github.com/shandysiswandi/shield/internal/pkg/goerror"
	"github.com/shandysiswandi/shield/internal/pkg/goroutine"
	"github.com/shandysiswandi/shield/internal/pkg/hash"
	"github.com/shandysiswandi/shield/internal/pkg/instrument"
	"github.com/shandysiswandi/shield/internal/pkg/otp"
	"github.com/shandysiswandi/shield/internal/pkg/uid"
	"github.com/shandysiswandi/shield/internal/pkg/validator"
)

const testDevice = "device-1"

type fakeMessaging struct {
	mu        sync.Mutex
	requested []CodeRequestedEvent
	verified  []PhoneVerifiedEvent
	err       error
}

func (f *fakeMessaging) PublishCodeRequested(_ context.Context, msg CodeRequestedEvent) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.requested = append(f.requested, msg)
	return f.err
}

func (f *fakeMessaging) PublishPhoneVerified(_ context.Context, msg PhoneVerifiedEvent) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.verified = append(f.verified, msg)
	return f.err
}

type testEnv struct {
	uc    *Usecase
	clk   *clock.Fake
	prefs *prefs.Memory
	msg   *fakeMessaging
	gm    *goroutine.Manager
}

func newTestEnv(t *testing.T, yaml string, mod func(*Dependency)) *testEnv {
	t.Helper()

	cfg, err := config.NewViperFromBytes("yaml", []byte(yaml))
	if err != nil {
		t.Fatalf("config: %v", err)
	}
	v, err := validator.NewV10Validator()
	if err != nil {
		t.Fatalf("validator: %v", err)
	}

	env := &testEnv{
		clk:   clock.NewFake(time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)),
		prefs: prefs.NewMemory(instrument.NewNoop()),
		msg:   &fakeMessaging{},
		gm:    goroutine.NewManager(10),
	}
	dep := Dependency{
		RepoPrefs:     env.prefs,
		RepoMessaging: env.msg,
		Config:        cfg,
		UUID:          uid.NewUUID(),
		Clock:         env.clk,
		Validator:     v,
		Goroutine:     env.gm,
		Instrument:    instrument.NewNoop(),
	}
	if mod != nil {
		mod(&dep)
	}
	env.uc = New(dep)
	t.Cleanup(func() { _ = env.gm.Wait() })
	return env
}

func (e *testEnv) start(t *testing.T) *FlowOutput {
	t.Helper()

	out, err := e.uc.StartFlow(context.Background(), DeviceInput{DeviceID: testDevice})
	if err != nil {
		t.Fatalf("StartFlow() error = %v", err)
	}
	return out
}

func flowIn(id string) FlowInput {
	return FlowInput{FlowID: id, DeviceID: testDevice}
}

func assertCode(t *testing.T, err error, want goerror.Code) {
	t.Helper()

	ge, ok := goerror.As(err)
	if !ok {
		t.Fatalf("error = %v, want *goerror.Error", err)
	}
	if ge.Code() != want {
		t.Fatalf("error code = %v, want %v", ge.Code(), want)
	}
}

func TestStartFlow(t *testing.T) {
	env := newTestEnv(t, "", nil)
	_ = env.prefs.SetLastPhoneNumber(context.Background(), testDevice, "9876543210")

	out := env.start(t)

	if !uid.IsUUID(out.ID) {
		t.Fatalf("ID = %q, want a UUID", out.ID)
	}
	if out.LastPhoneHint != "9876543210" {
		t.Fatalf("LastPhoneHint = %q", out.LastPhoneHint)
	}
	if out.State.Stage != entity.StagePhoneEntry || out.State.PhoneNumber != "" {
		t.Fatalf("State = %+v", out.State)
	}
	if out.Navigation.Current != entity.DestOtp || !out.Navigation.CanGoBack {
		t.Fatalf("Navigation = %+v", out.Navigation)
	}
	if got := env.uc.Stats(); got.Active != 1 || got.Started != 1 {
		t.Fatalf("Stats() = %+v", got)
	}
}

func TestStartFlow_InvalidDevice(t *testing.T) {
	env := newTestEnv(t, "", nil)

	_, err := env.uc.StartFlow(context.Background(), DeviceInput{DeviceID: "bad id!"})
	assertCode(t, err, goerror.CodeInvalidInput)
}

func TestLookup_NotFound(t *testing.T) {
	env := newTestEnv(t, "", nil)
	out := env.start(t)

	tests := []struct {
		name string
		in   FlowInput
	}{
		{name: "malformed id", in: flowIn("not-a-uuid")},
		{name: "unknown id", in: flowIn(uid.NewUUID().Generate())},
		{name: "other device", in: FlowInput{FlowID: out.ID, DeviceID: "device-2"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := env.uc.GetFlow(context.Background(), tt.in)
			if !errors.Is(err, goerror.ErrNotFound) {
				t.Fatalf("GetFlow() error = %v, want not found", err)
			}
		})
	}
}

func TestFlow_Scenario(t *testing.T) {
	env := newTestEnv(t, "", nil)
	ctx := context.Background()
	id := env.start(t).ID

	out, _ := env.uc.SetPhoneNumber(ctx, SetPhoneNumberInput{FlowInput: flowIn(id), Phone: "98765abc"})
	if out.State.PhoneNumber != "" {
		t.Fatalf("non-digit phone accepted: %+v", out.State)
	}

	out, _ = env.uc.RequestCode(ctx, flowIn(id))
	if out.State.ErrorMessage != entity.MsgInvalidPhone {
		t.Fatalf("ErrorMessage = %q", out.State.ErrorMessage)
	}

	_, _ = env.uc.SetPhoneNumber(ctx, SetPhoneNumberInput{FlowInput: flowIn(id), Phone: "9876543210"})
	out, _ = env.uc.RequestCode(ctx, flowIn(id))
	if out.State.Stage != entity.StageOtpSent || out.State.SecondsUntilResend != 60 {
		t.Fatalf("after RequestCode state = %+v", out.State)
	}
	if phone, _ := env.prefs.LastPhoneNumber(ctx, testDevice); phone != "9876543210" {
		t.Fatalf("stored phone = %q", phone)
	}

	_, _ = env.uc.SetOtpCode(ctx, SetOtpCodeInput{FlowInput: flowIn(id), Code: "000000"})
	out, _ = env.uc.Verify(ctx, flowIn(id))
	if out.State.Stage != entity.StageVerifying {
		t.Fatalf("Verify() stage = %v", out.State.Stage)
	}

	env.clk.Advance(1500 * time.Millisecond)
	out, _ = env.uc.GetFlow(ctx, flowIn(id))
	if out.State.Stage != entity.StageOtpSent || !out.State.InvalidAttempt || out.State.ErrorMessage != entity.MsgInvalidOtp {
		t.Fatalf("after rejected code state = %+v", out.State)
	}

	_, _ = env.uc.SetOtpCode(ctx, SetOtpCodeInput{FlowInput: flowIn(id), Code: "123456"})
	_, _ = env.uc.Verify(ctx, flowIn(id))
	env.clk.Advance(1500 * time.Millisecond)

	out, _ = env.uc.GetFlow(ctx, flowIn(id))
	if out.State.Stage != entity.StageVerified {
		t.Fatalf("after accepted code state = %+v", out.State)
	}
	if out.Navigation.Current != entity.DestSuccess {
		t.Fatalf("Navigation = %+v", out.Navigation)
	}

	if err := env.gm.Wait(); err != nil {
		t.Fatalf("Wait() error = %v", err)
	}
	if len(env.msg.requested) != 1 || env.msg.requested[0].Phone != "9876543210" {
		t.Fatalf("code requested events = %+v", env.msg.requested)
	}
	if len(env.msg.verified) != 1 || env.msg.verified[0].FlowID != id {
		t.Fatalf("phone verified events = %+v", env.msg.verified)
	}
}

func TestFlow_ResendAndReset(t *testing.T) {
	env := newTestEnv(t, "onboarding:\n  resend_seconds: 3\n", nil)
	ctx := context.Background()
	id := env.start(t).ID

	_, _ = env.uc.SetPhoneNumber(ctx, SetPhoneNumberInput{FlowInput: flowIn(id), Phone: "9876543210"})
	_, _ = env.uc.RequestCode(ctx, flowIn(id))

	out, _ := env.uc.Resend(ctx, flowIn(id))
	if out.State.CanResend || out.State.SecondsUntilResend != 3 {
		t.Fatalf("Resend() before countdown ended changed state: %+v", out.State)
	}

	env.clk.Advance(3 * time.Second)
	out, _ = env.uc.Resend(ctx, flowIn(id))
	if out.State.CanResend || out.State.SecondsUntilResend != 3 {
		t.Fatalf("Resend() state = %+v", out.State)
	}

	out, _ = env.uc.ResetToPhoneEntry(ctx, flowIn(id))
	if out.State.Stage != entity.StagePhoneEntry || out.State.PhoneNumber != "9876543210" {
		t.Fatalf("ResetToPhoneEntry() state = %+v", out.State)
	}
	if env.clk.Pending() != 0 {
		t.Fatalf("pending timers after reset = %d", env.clk.Pending())
	}
}

func TestCloseFlow(t *testing.T) {
	env := newTestEnv(t, "", nil)
	ctx := context.Background()
	id := env.start(t).ID

	_, _ = env.uc.SetPhoneNumber(ctx, SetPhoneNumberInput{FlowInput: flowIn(id), Phone: "9876543210"})
	_, _ = env.uc.RequestCode(ctx, flowIn(id))

	if err := env.uc.CloseFlow(ctx, flowIn(id)); err != nil {
		t.Fatalf("CloseFlow() error = %v", err)
	}
	if env.clk.Pending() != 0 {
		t.Fatalf("pending timers after close = %d", env.clk.Pending())
	}
	if _, err := env.uc.GetFlow(ctx, flowIn(id)); !errors.Is(err, goerror.ErrNotFound) {
		t.Fatalf("GetFlow() after close error = %v", err)
	}
	if err := env.uc.CloseFlow(ctx, flowIn(id)); !errors.Is(err, goerror.ErrNotFound) {
		t.Fatalf("second CloseFlow() error = %v", err)
	}
	if got := env.uc.Stats(); got.Active != 0 || got.Removed != 1 {
		t.Fatalf("Stats() = %+v", got)
	}
}

func TestSweepIdleFlows(t *testing.T) {
	env := newTestEnv(t, "onboarding:\n  flow_idle_ttl_minutes: 10\n", nil)
	ctx := context.Background()

	idle := env.start(t).ID
	env.clk.Advance(6 * time.Minute)
	busy := env.start(t).ID
	env.clk.Advance(5 * time.Minute)
	_, _ = env.uc.GetFlow(ctx, flowIn(busy))

	if n := env.uc.SweepIdleFlows(ctx); n != 1 {
		t.Fatalf("SweepIdleFlows() = %d, want 1", n)
	}
	if _, err := env.uc.GetFlow(ctx, flowIn(idle)); !errors.Is(err, goerror.ErrNotFound) {
		t.Fatalf("idle flow survived: %v", err)
	}
	if _, err := env.uc.GetFlow(ctx, flowIn(busy)); err != nil {
		t.Fatalf("busy flow removed: %v", err)
	}
}

func TestJanitorInterval(t *testing.T) {
	env := newTestEnv(t, "onboarding:\n  flow_idle_ttl_minutes: 2\n", nil)
	if got := env.uc.janitorInterval(); got != 30*time.Second {
		t.Fatalf("janitorInterval() = %v", got)
	}

	env = newTestEnv(t, "", nil)
	if got := env.uc.janitorInterval(); got != time.Minute {
		t.Fatalf("default janitorInterval() = %v", got)
	}
}

func TestStreamFlow(t *testing.T) {
	env := newTestEnv(t, "", nil)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	id := env.start(t).ID

	stream, err := env.uc.StreamFlow(ctx, flowIn(id))
	if err != nil {
		t.Fatalf("StreamFlow() error = %v", err)
	}

	first := <-stream
	if first.FlowID != id || first.State.Stage != entity.StagePhoneEntry {
		t.Fatalf("first event = %+v", first)
	}

	_, _ = env.uc.SetPhoneNumber(ctx, SetPhoneNumberInput{FlowInput: flowIn(id), Phone: "98765"})
	evt := <-stream
	if evt.State.PhoneNumber != "98765" {
		t.Fatalf("change event = %+v", evt)
	}

	if err := env.uc.CloseFlow(ctx, flowIn(id)); err != nil {
		t.Fatalf("CloseFlow() error = %v", err)
	}
	if _, ok := <-stream; ok {
		t.Fatal("stream still open after CloseFlow")
	}
}

func TestStreamFlow_ContextDone(t *testing.T) {
	env := newTestEnv(t, "", nil)
	ctx, cancel := context.WithCancel(context.Background())
	id := env.start(t).ID

	stream, err := env.uc.StreamFlow(ctx, flowIn(id))
	if err != nil {
		t.Fatalf("StreamFlow() error = %v", err)
	}
	<-stream
	cancel()

	select {
	case _, ok := <-stream:
		if ok {
			t.Fatal("unexpected event after cancel")
		}
	case <-time.After(time.Second):
		t.Fatal("stream not closed after cancel")
	}
}

func TestSubscribe_FlowRemovedAfterLookup(t *testing.T) {
	env := newTestEnv(t, "", nil)
	ctx := context.Background()
	id := env.start(t).ID

	f, err := env.uc.lookup(ctx, flowIn(id))
	if err != nil {
		t.Fatalf("lookup() error = %v", err)
	}
	env.uc.removeFlow(ctx, f, "closed")

	sub := env.uc.subscribe(f)
	if first, ok := <-sub.ch; !ok || first.FlowID != id {
		t.Fatalf("first event = %+v, %v", first, ok)
	}
	if _, ok := <-sub.ch; ok {
		t.Fatal("subscriber of a removed flow left open")
	}

	env.uc.streamMu.RLock()
	defer env.uc.streamMu.RUnlock()
	if _, ok := env.uc.streams[id]; ok {
		t.Fatal("removed flow still has registered streams")
	}
}

func TestIntro(t *testing.T) {
	env := newTestEnv(t, "", nil)
	ctx := context.Background()

	out, err := env.uc.Intro(ctx, DeviceInput{DeviceID: testDevice})
	if err != nil {
		t.Fatalf("Intro() error = %v", err)
	}
	if out.Start != entity.DestOnboarding || out.Completed {
		t.Fatalf("Intro() = %+v", out)
	}
	if len(out.Intro.Pages) != 3 {
		t.Fatalf("pages = %d, want 3", len(out.Intro.Pages))
	}

	id := env.start(t).ID
	nav, err := env.uc.CompleteIntro(ctx, DeviceInput{DeviceID: testDevice})
	if err != nil {
		t.Fatalf("CompleteIntro() error = %v", err)
	}
	if nav.Current != entity.DestOtp || nav.CanGoBack {
		t.Fatalf("CompleteIntro() = %+v", nav)
	}

	out, _ = env.uc.Intro(ctx, DeviceInput{DeviceID: testDevice})
	if out.Start != entity.DestOtp || !out.Completed {
		t.Fatalf("Intro() after complete = %+v", out)
	}

	flow, _ := env.uc.GetFlow(ctx, flowIn(id))
	if flow.Navigation.CanGoBack {
		t.Fatal("open flow still allows going back after intro completed")
	}
}

func TestIntro_ConfiguredPages(t *testing.T) {
	yaml := `
onboarding:
  intro:
    pages:
      - id: first
        image: img_a
        title: First page
      - image: img_b
        title: Second page
      - id: untitled
`
	env := newTestEnv(t, yaml, nil)

	out, err := env.uc.Intro(context.Background(), DeviceInput{DeviceID: testDevice})
	if err != nil {
		t.Fatalf("Intro() error = %v", err)
	}

	want := []entity.IntroPage{
		{ID: "first", Image: "img_a", Title: "First page"},
		{ID: "page_2", Image: "img_b", Title: "Second page"},
	}
	if len(out.Intro.Pages) != len(want) {
		t.Fatalf("pages = %+v", out.Intro.Pages)
	}
	for i := range want {
		if out.Intro.Pages[i] != want[i] {
			t.Fatalf("page %d = %+v, want %+v", i, out.Intro.Pages[i], want[i])
		}
	}
}

func TestDevCode(t *testing.T) {
	ctx := context.Background()

	t.Run("disabled", func(t *testing.T) {
		env := newTestEnv(t, "", nil)
		id := env.start(t).ID

		_, err := env.uc.DevCode(ctx, flowIn(id))
		if !errors.Is(err, goerror.ErrNotFound) {
			t.Fatalf("DevCode() error = %v, want not found", err)
		}
	})

	t.Run("static", func(t *testing.T) {
		env := newTestEnv(t, "onboarding:\n  dev_code:\n    enabled: true\n", nil)
		id := env.start(t).ID

		_, err := env.uc.DevCode(ctx, flowIn(id))
		assertCode(t, err, goerror.CodeInvalidInput)

		_, _ = env.uc.SetPhoneNumber(ctx, SetPhoneNumberInput{FlowInput: flowIn(id), Phone: "9876543210"})
		out, err := env.uc.DevCode(ctx, flowIn(id))
		if err != nil {
			t.Fatalf("DevCode() error = %v", err)
		}
		if out.Code != "123456" || out.Phone != "9876543210" {
			t.Fatalf("DevCode() = %+v", out)
		}
	})

	t.Run("totp", func(t *testing.T) {
		env := newTestEnv(t, "onboarding:\n  dev_code:\n    enabled: true\n", func(dep *Dependency) {
			v := NewTOTPVerifier(hash.NewHMACSHA256("server-secret"), otp.NewTOTP(30, 1, 6), dep.Clock)
			dep.Verifier = v
			dep.DevCode = v
		})
		id := env.start(t).ID

		_, _ = env.uc.SetPhoneNumber(ctx, SetPhoneNumberInput{FlowInput: flowIn(id), Phone: "9876543210"})
		_, _ = env.uc.RequestCode(ctx, flowIn(id))

		code, err := env.uc.DevCode(ctx, flowIn(id))
		if err != nil {
			t.Fatalf("DevCode() error = %v", err)
		}

		_, _ = env.uc.SetOtpCode(ctx, SetOtpCodeInput{FlowInput: flowIn(id), Code: code.Code})
		_, _ = env.uc.Verify(ctx, flowIn(id))
		env.clk.Advance(1500 * time.Millisecond)

		out, _ := env.uc.GetFlow(ctx, flowIn(id))
		if out.State.Stage != entity.StageVerified {
			t.Fatalf("TOTP dev code not accepted: %+v", out.State)
		}
	})
}

func TestTOTPVerifier(t *testing.T) {
	clk := clock.NewFake(time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC))
	v := NewTOTPVerifier(hash.NewHMACSHA256("server-secret"), otp.NewTOTP(30, 1, 6), clk)
	ctx := context.Background()

	code, err := v.Code(ctx, "9876543210")
	if err != nil {
		t.Fatalf("Code() error = %v", err)
	}
	if len(code) != 6 {
		t.Fatalf("Code() = %q, want 6 digits", code)
	}

	if ok, err := v.Verify(ctx, "9876543210", code); err != nil || !ok {
		t.Fatalf("Verify(own code) = %v, %v", ok, err)
	}

	other, _ := v.Code(ctx, "1112223334")
	if other != code {
		if ok, _ := v.Verify(ctx, "9876543210", other); ok {
			t.Fatal("code of another phone accepted")
		}
	}

	clk.Advance(5 * time.Minute)
	if ok, _ := v.Verify(ctx, "9876543210", code); ok {
		t.Fatal("expired code accepted")
	}

	cancelled, cancel := context.WithCancel(ctx)
	cancel()
	if _, err := v.Verify(cancelled, "9876543210", code); !errors.Is(err, context.Canceled) {
		t.Fatalf("Verify() with cancelled ctx error = %v", err)
	}
}

type flakyPrefs struct {
	*prefs.Memory
	mu    sync.Mutex
	fails int
	calls int
}

func (f *flakyPrefs) SetLastPhoneNumber(ctx context.Context, deviceID, phone string) error {
	f.mu.Lock()
	f.calls++
	fail := f.calls <= f.fails
	f.mu.Unlock()

	if fail {
		return errors.New("store unavailable")
	}
	return f.Memory.SetLastPhoneNumber(ctx, deviceID, phone)
}

func TestDeviceStore_Retry(t *testing.T) {
	p := &flakyPrefs{Memory: prefs.NewMemory(instrument.NewNoop()), fails: 2}
	s := &deviceStore{prefs: p, deviceID: testDevice}

	if err := s.SetLastPhoneNumber(context.Background(), "9876543210"); err != nil {
		t.Fatalf("SetLastPhoneNumber() error = %v", err)
	}
	if p.calls != 3 {
		t.Fatalf("calls = %d, want 3", p.calls)
	}

	p = &flakyPrefs{Memory: prefs.NewMemory(instrument.NewNoop()), fails: 10}
	s = &deviceStore{prefs: p, deviceID: testDevice}
	if err := s.SetLastPhoneNumber(context.Background(), "9876543210"); err == nil {
		t.Fatal("expected error after retries are exhausted")
	}
	if p.calls != 3 {
		t.Fatalf("calls = %d, want 3", p.calls)
	}
}
