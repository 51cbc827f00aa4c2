package usecase

import (
	"context"
	"log/slog"

	"github.com/shandysiswandi/shield/internal/onboarding/entity"
	"github.com/shandysiswandi/shield/internal/onboarding/otpflow"
	"github.com/shandysiswandi/shield/internal/pkg/goerror"
	"github.com/shandysiswandi/shield/internal/pkg/uid"
	"go.uber.org/atomic"
)

type DeviceInput struct {
	DeviceID string `validate:"required,device_id"`
}

type FlowInput struct {
	FlowID   string
	DeviceID string `validate:"required,device_id"`
}

type SetPhoneNumberInput struct {
	FlowInput
	Phone string
}

type SetOtpCodeInput struct {
	FlowInput
	Code string
}

type FlowOutput struct {
	ID            string
	DeviceID      string
	State         entity.VerificationState
	Navigation    entity.Navigation
	LastPhoneHint string
}

var errFlowNotFound = goerror.NewNotFound("Flow not found")

// StartFlow creates a flow for the device in StagePhoneEntry.
func (s *Usecase) StartFlow(ctx context.Context, in DeviceInput) (*FlowOutput, error) {
	ctx, span := s.startSpan(ctx, "StartFlow")
	defer span.End()

	if err := s.validator.Validate(in); err != nil {
		return nil, goerror.NewInvalidInput(err)
	}

	completed, err := s.repoPrefs.OnboardingCompleted(ctx, in.DeviceID)
	if err != nil {
		slog.WarnContext(ctx, "failed to repo get onboarding completed", "device_id", in.DeviceID, "error", err)
	}

	hint, err := s.repoPrefs.LastPhoneNumber(ctx, in.DeviceID)
	if err != nil {
		slog.WarnContext(ctx, "failed to repo get last phone number", "device_id", in.DeviceID, "error", err)
	}

	now := s.clock.Now()
	f := &flow{
		id:        s.uuid.Generate(),
		deviceID:  in.DeviceID,
		completed: atomic.NewBool(completed),
		touched:   atomic.NewTime(now),
		lastStage: entity.StagePhoneEntry,
	}
	f.ctrl = otpflow.New(otpflow.Config{
		ID:              f.id,
		Clock:           s.clock,
		Store:           &deviceStore{prefs: s.repoPrefs, deviceID: in.DeviceID},
		Verifier:        s.verifier,
		ResendSeconds:   s.cfg.GetInt("onboarding.resend_seconds"),
		VerifyDelay:     s.cfg.GetMillisecond("onboarding.verify_delay_ms"),
		InvalidFlash:    s.cfg.GetMillisecond("onboarding.invalid_flash_ms"),
		OnChange:        func(st entity.VerificationState) { s.onChange(f, st) },
		OnCodeRequested: func(phone string) { s.onCodeRequested(f, phone) },
		OnComplete:      func() { s.onComplete(f) },
	})

	s.flows.add(f)
	s.metrics.flowDelta(ctx, 1)

	slog.InfoContext(ctx, "onboarding flow started", "flow_id", f.id, "device_id", f.deviceID)

	out := s.output(f, f.ctrl.State())
	out.LastPhoneHint = hint
	return out, nil
}

func (s *Usecase) GetFlow(ctx context.Context, in FlowInput) (*FlowOutput, error) {
	ctx, span := s.startSpan(ctx, "GetFlow")
	defer span.End()

	f, err := s.lookup(ctx, in)
	if err != nil {
		return nil, err
	}

	return s.output(f, f.ctrl.State()), nil
}

func (s *Usecase) SetPhoneNumber(ctx context.Context, in SetPhoneNumberInput) (*FlowOutput, error) {
	return s.run(ctx, "SetPhoneNumber", in.FlowInput, func(c *otpflow.Controller) entity.VerificationState {
		return c.SetPhoneNumber(in.Phone)
	})
}

func (s *Usecase) RequestCode(ctx context.Context, in FlowInput) (*FlowOutput, error) {
	return s.run(ctx, "RequestCode", in, (*otpflow.Controller).RequestCode)
}

func (s *Usecase) SetOtpCode(ctx context.Context, in SetOtpCodeInput) (*FlowOutput, error) {
	return s.run(ctx, "SetOtpCode", in.FlowInput, func(c *otpflow.Controller) entity.VerificationState {
		return c.SetOtpCode(in.Code)
	})
}

func (s *Usecase) Verify(ctx context.Context, in FlowInput) (*FlowOutput, error) {
	return s.run(ctx, "Verify", in, (*otpflow.Controller).Verify)
}

func (s *Usecase) Resend(ctx context.Context, in FlowInput) (*FlowOutput, error) {
	return s.run(ctx, "Resend", in, (*otpflow.Controller).Resend)
}

func (s *Usecase) ResetToPhoneEntry(ctx context.Context, in FlowInput) (*FlowOutput, error) {
	return s.run(ctx, "ResetToPhoneEntry", in, (*otpflow.Controller).ResetToPhoneEntry)
}

// CloseFlow cancels the flow's timers, ends its streams and forgets it.
func (s *Usecase) CloseFlow(ctx context.Context, in FlowInput) error {
	ctx, span := s.startSpan(ctx, "CloseFlow")
	defer span.End()

	f, err := s.lookup(ctx, in)
	if err != nil {
		return err
	}

	s.removeFlow(ctx, f, "closed")
	return nil
}

// Stats reports how many flows are held and how many have come and gone.
func (s *Usecase) Stats() RegistryStats {
	return s.flows.stats()
}

func (s *Usecase) run(ctx context.Context, name string, in FlowInput, op func(*otpflow.Controller) entity.VerificationState) (*FlowOutput, error) {
	ctx, span := s.startSpan(ctx, name)
	defer span.End()

	f, err := s.lookup(ctx, in)
	if err != nil {
		return nil, err
	}

	return s.output(f, op(f.ctrl)), nil
}

// lookup finds a flow owned by the device and marks it as used. Unknown,
// malformed and foreign ids all read as not found.
func (s *Usecase) lookup(ctx context.Context, in FlowInput) (*flow, error) {
	if err := s.validator.Validate(in); err != nil {
		return nil, goerror.NewInvalidInput(err)
	}

	if !uid.IsUUID(in.FlowID) {
		return nil, errFlowNotFound
	}

	f, ok := s.flows.get(in.FlowID)
	if !ok {
		return nil, errFlowNotFound
	}
	if f.deviceID != in.DeviceID {
		slog.WarnContext(ctx, "flow requested by another device", "flow_id", in.FlowID, "device_id", in.DeviceID)
		return nil, errFlowNotFound
	}

	f.touch(s.clock.Now())
	return f, nil
}

func (s *Usecase) output(f *flow, st entity.VerificationState) *FlowOutput {
	return &FlowOutput{
		ID:         f.id,
		DeviceID:   f.deviceID,
		State:      st,
		Navigation: f.navigation(st),
	}
}

func (s *Usecase) removeFlow(ctx context.Context, f *flow, reason string) {
	if _, ok := s.flows.remove(f.id); !ok {
		return
	}

	_ = f.ctrl.Close()
	s.closeStreams(f.id)
	s.metrics.flowDelta(ctx, -1)

	slog.InfoContext(ctx, "onboarding flow removed", "flow_id", f.id, "device_id", f.deviceID, "reason", reason)
}

// onChange runs with the flow's controller locked, once per state change.
func (s *Usecase) onChange(f *flow, st entity.VerificationState) {
	now := s.clock.Now()
	f.touch(now)

	if f.lastStage == entity.StageVerifying && st.Stage != entity.StageVerifying {
		switch {
		case st.Stage == entity.StageVerified:
			s.metrics.verified(context.Background(), resultAccepted)
		case st.InvalidAttempt:
			s.metrics.verified(context.Background(), resultRejected)
		case st.ErrorMessage == entity.MsgVerificationDown:
			s.metrics.verified(context.Background(), resultError)
		}
	}
	f.lastStage = st.Stage

	s.broadcast(StreamEvent{
		FlowID:     f.id,
		State:      st,
		Navigation: f.navigation(st),
		At:         now,
	})
}

func (s *Usecase) onCodeRequested(f *flow, phone string) {
	s.metrics.codeRequested(context.Background())

	slog.Info("verification code requested", "flow_id", f.id, "device_id", f.deviceID)

	evt := CodeRequestedEvent{FlowID: f.id, DeviceID: f.deviceID, Phone: phone}
	s.publish("publish code requested", f.id, func(ctx context.Context) error {
		return s.repoMessaging.PublishCodeRequested(ctx, evt)
	})
}

func (s *Usecase) onComplete(f *flow) {
	st := f.ctrl.State()

	slog.Info("phone number verified", "flow_id", f.id, "device_id", f.deviceID)

	evt := PhoneVerifiedEvent{FlowID: f.id, DeviceID: f.deviceID, Phone: st.PhoneNumber, VerifiedAt: s.clock.Now()}
	s.publish("publish phone verified", f.id, func(ctx context.Context) error {
		return s.repoMessaging.PublishPhoneVerified(ctx, evt)
	})
}
