package tests

import (
	"net/http"
	"testing"
)

type introData struct {
	Pages []struct {
		ID    string `json:"id"`
		Image string `json:"image"`
		Title string `json:"title"`
	} `json:"pages"`
	StartDestination    string `json:"start_destination"`
	OnboardingCompleted bool   `json:"onboarding_completed"`
}

func TestOnboardingIntro(t *testing.T) {
	device := uniqueDevice("intro")

	status, body := doJSON(t, http.MethodGet, "/api/v1/onboarding/intro", nil, device)
	if status != http.StatusOK {
		t.Fatalf("intro status = %d", status)
	}
	var intro introData
	decodeSuccess(t, body, &intro)
	if len(intro.Pages) == 0 || intro.StartDestination != "onboarding" || intro.OnboardingCompleted {
		t.Fatalf("intro = %+v", intro)
	}

	status, _ = doJSON(t, http.MethodPost, "/api/v1/onboarding/intro/complete", nil, device)
	if status != http.StatusOK {
		t.Fatalf("complete status = %d", status)
	}

	_, body = doJSON(t, http.MethodGet, "/api/v1/onboarding/intro", nil, device)
	decodeSuccess(t, body, &intro)
	if intro.StartDestination != "otp" || !intro.OnboardingCompleted {
		t.Fatalf("intro after complete = %+v", intro)
	}
}

func TestOnboardingIntro_MissingDevice(t *testing.T) {
	status, body := doJSON(t, http.MethodGet, "/api/v1/onboarding/intro", nil, "")
	if status != http.StatusUnprocessableEntity {
		t.Fatalf("status = %d, want 422", status)
	}
	if env := decodeError(t, body); len(env.Error) == 0 {
		t.Fatalf("error = %+v", env)
	}
}
