package tests

import (
	"fmt"
	"net/http"
	"testing"
	"time"
)

type flowState struct {
	PhoneNumber        string `json:"phone_number"`
	OtpCode            string `json:"otp_code"`
	Stage              string `json:"stage"`
	ErrorMessage       string `json:"error_message"`
	InvalidAttempt     bool   `json:"invalid_attempt"`
	SecondsUntilResend int    `json:"seconds_until_resend"`
	CanResend          bool   `json:"can_resend"`
}

type flowData struct {
	ID         string    `json:"id"`
	State      flowState `json:"state"`
	Navigation struct {
		Current   string `json:"current"`
		Next      string `json:"next"`
		CanGoBack bool   `json:"can_go_back"`
	} `json:"navigation"`
	LastPhoneHint string `json:"last_phone_hint"`
}

func uniqueDevice(prefix string) string {
	return fmt.Sprintf("%s-%d", prefix, time.Now().UnixNano())
}

func flowPath(id, suffix string) string {
	return "/api/v1/onboarding/flows/" + id + suffix
}

func startFlow(t *testing.T, device string) flowData {
	t.Helper()

	status, body := doJSON(t, http.MethodPost, "/api/v1/onboarding/flows", nil, device)
	if status != http.StatusCreated {
		t.Fatalf("start flow failed: status=%d message=%q", status, decodeError(t, body).Message)
	}

	var data flowData
	decodeSuccess(t, body, &data)
	t.Cleanup(func() {
		doJSON(t, http.MethodDelete, flowPath(data.ID, ""), nil, device)
	})

	return data
}

func flowCall(t *testing.T, method, path string, payload any, device string) flowData {
	t.Helper()

	status, body := doJSON(t, method, path, payload, device)
	if status != http.StatusOK {
		t.Fatalf("%s %s: status=%d message=%q", method, path, status, decodeError(t, body).Message)
	}

	var data flowData
	decodeSuccess(t, body, &data)
	return data
}

// waitResolved polls the flow until it leaves the verifying stage.
func waitResolved(t *testing.T, id, device string) flowData {
	t.Helper()

	deadline := time.Now().Add(5 * time.Second)
	for time.Now().Before(deadline) {
		data := flowCall(t, http.MethodGet, flowPath(id, ""), nil, device)
		if data.State.Stage != "verifying" {
			return data
		}
		time.Sleep(200 * time.Millisecond)
	}

	t.Fatal("flow still verifying after 5s")
	return flowData{}
}
