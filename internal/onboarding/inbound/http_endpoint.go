package inbound

import (
	"github.com/shandysiswandi/shield/internal/onboarding/usecase"
	"github.com/shandysiswandi/shield/internal/pkg/router"
)

type HTTPEndpoint struct {
	uc uc
}

// Health reports liveness and the flow registry counters.
func (h *HTTPEndpoint) Health(r *router.Request) (any, error) {
	return HealthResponse{Status: "ok", Flows: h.uc.Stats()}, nil
}

// Intro returns the intro pages and where the device should start.
func (h *HTTPEndpoint) Intro(r *router.Request) (any, error) {
	out, err := h.uc.Intro(r.Context(), usecase.DeviceInput{DeviceID: r.DeviceID()})
	if err != nil {
		return nil, err
	}

	return IntroResponse{
		Pages:               out.Intro.Pages,
		Consent:             out.Intro.Consent,
		Success:             out.Intro.Success,
		StartDestination:    out.Start,
		OnboardingCompleted: out.Completed,
	}, nil
}

// CompleteIntro marks onboarding as completed for the device.
func (h *HTTPEndpoint) CompleteIntro(r *router.Request) (any, error) {
	nav, err := h.uc.CompleteIntro(r.Context(), usecase.DeviceInput{DeviceID: r.DeviceID()})
	if err != nil {
		return nil, err
	}

	return NavigationResponse{Navigation: *nav}, nil
}

func (h *HTTPEndpoint) StartFlow(r *router.Request) (any, error) {
	out, err := h.uc.StartFlow(r.Context(), usecase.DeviceInput{DeviceID: r.DeviceID()})
	if err != nil {
		return nil, err
	}

	return StartFlowResponse{FlowResponse: toFlowResponse(out)}, nil
}

func (h *HTTPEndpoint) GetFlow(r *router.Request) (any, error) {
	return flowResult(h.uc.GetFlow(r.Context(), flowInput(r)))
}

func (h *HTTPEndpoint) SetPhoneNumber(r *router.Request) (any, error) {
	var req SetPhoneNumberRequest
	if err := r.DecodeBody(&req); err != nil {
		return nil, err
	}

	return flowResult(h.uc.SetPhoneNumber(r.Context(), usecase.SetPhoneNumberInput{
		FlowInput: flowInput(r),
		Phone:     req.PhoneNumber,
	}))
}

func (h *HTTPEndpoint) RequestCode(r *router.Request) (any, error) {
	return flowResult(h.uc.RequestCode(r.Context(), flowInput(r)))
}

func (h *HTTPEndpoint) SetOtpCode(r *router.Request) (any, error) {
	var req SetOtpCodeRequest
	if err := r.DecodeBody(&req); err != nil {
		return nil, err
	}

	return flowResult(h.uc.SetOtpCode(r.Context(), usecase.SetOtpCodeInput{
		FlowInput: flowInput(r),
		Code:      req.OtpCode,
	}))
}

func (h *HTTPEndpoint) Verify(r *router.Request) (any, error) {
	return flowResult(h.uc.Verify(r.Context(), flowInput(r)))
}

func (h *HTTPEndpoint) Resend(r *router.Request) (any, error) {
	return flowResult(h.uc.Resend(r.Context(), flowInput(r)))
}

func (h *HTTPEndpoint) ResetToPhoneEntry(r *router.Request) (any, error) {
	return flowResult(h.uc.ResetToPhoneEntry(r.Context(), flowInput(r)))
}

// CloseFlow cancels the flow's timers and forgets it.
func (h *HTTPEndpoint) CloseFlow(r *router.Request) (any, error) {
	return nil, h.uc.CloseFlow(r.Context(), flowInput(r))
}

// DevCode exposes the currently accepted code when dev codes are enabled.
func (h *HTTPEndpoint) DevCode(r *router.Request) (any, error) {
	out, err := h.uc.DevCode(r.Context(), flowInput(r))
	if err != nil {
		return nil, err
	}

	return DevCodeResponse{PhoneNumber: out.Phone, OtpCode: out.Code}, nil
}

func flowInput(r *router.Request) usecase.FlowInput {
	return usecase.FlowInput{FlowID: r.GetParam("id"), DeviceID: r.DeviceID()}
}

func flowResult(out *usecase.FlowOutput, err error) (any, error) {
	if err != nil {
		return nil, err
	}
	return toFlowResponse(out), nil
}
