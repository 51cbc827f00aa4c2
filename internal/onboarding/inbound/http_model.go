package inbound

import (
	"net/http"

	"github.com/shandysiswandi/shield/internal/onboarding/entity"
	"github.com/shandysiswandi/shield/internal/onboarding/usecase"
)

type HealthResponse struct {
	Status string                `json:"status"`
	Flows  usecase.RegistryStats `json:"flows"`
}

type IntroResponse struct {
	Pages               []entity.IntroPage `json:"pages"`
	Consent             entity.ConsentPage `json:"consent"`
	Success             entity.SuccessPage `json:"success"`
	StartDestination    entity.Destination `json:"start_destination"`
	OnboardingCompleted bool               `json:"onboarding_completed"`
}

type NavigationResponse struct {
	entity.Navigation
}

func (NavigationResponse) Message() string { return "onboarding completed" }

type SetPhoneNumberRequest struct {
	PhoneNumber string `json:"phone_number"`
}

type SetOtpCodeRequest struct {
	OtpCode string `json:"otp_code"`
}

type FlowResponse struct {
	ID            string                   `json:"id"`
	State         entity.VerificationState `json:"state"`
	Navigation    entity.Navigation        `json:"navigation"`
	LastPhoneHint string                   `json:"last_phone_hint,omitempty"`
}

type StartFlowResponse struct {
	FlowResponse
}

func (StartFlowResponse) StatusCode() int { return http.StatusCreated }
func (StartFlowResponse) Message() string { return "onboarding flow started" }

type DevCodeResponse struct {
	PhoneNumber string `json:"phone_number"`
	OtpCode     string `json:"otp_code"`
}

func toFlowResponse(out *usecase.FlowOutput) FlowResponse {
	return FlowResponse{
		ID:            out.ID,
		State:         out.State,
		Navigation:    out.Navigation,
		LastPhoneHint: out.LastPhoneHint,
	}
}
