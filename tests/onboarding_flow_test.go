package tests

import (
	"net/http"
	"testing"
)

func TestOnboardingFlow_RejectThenAccept(t *testing.T) {
	device := uniqueDevice("flow")
	flow := startFlow(t, device)

	if flow.State.Stage != "phone_entry" || flow.State.SecondsUntilResend != 60 {
		t.Fatalf("initial state = %+v", flow.State)
	}

	data := flowCall(t, http.MethodPost, flowPath(flow.ID, "/code"), nil, device)
	if data.State.ErrorMessage != "Enter valid 10-digit phone number" {
		t.Fatalf("code without phone = %+v", data.State)
	}

	flowCall(t, http.MethodPut, flowPath(flow.ID, "/phone"), map[string]string{"phone_number": "9876543210"}, device)
	data = flowCall(t, http.MethodPost, flowPath(flow.ID, "/code"), nil, device)
	if data.State.Stage != "otp_sent" || data.State.CanResend {
		t.Fatalf("after code = %+v", data.State)
	}

	data = flowCall(t, http.MethodPost, flowPath(flow.ID, "/verify"), nil, device)
	if data.State.ErrorMessage != "Please enter complete 6-digit OTP" {
		t.Fatalf("verify without code = %+v", data.State)
	}

	flowCall(t, http.MethodPut, flowPath(flow.ID, "/otp"), map[string]string{"otp_code": "000000"}, device)
	flowCall(t, http.MethodPost, flowPath(flow.ID, "/verify"), nil, device)
	data = waitResolved(t, flow.ID, device)
	if data.State.Stage != "otp_sent" || data.State.ErrorMessage != "Invalid OTP. Please try again." || data.State.OtpCode != "" {
		t.Fatalf("after wrong code = %+v", data.State)
	}

	code := "123456"
	if status, body := doJSON(t, http.MethodGet, flowPath(flow.ID, "/dev-code"), nil, device); status == http.StatusOK {
		var dev struct {
			OtpCode string `json:"otp_code"`
		}
		decodeSuccess(t, body, &dev)
		code = dev.OtpCode
	}

	flowCall(t, http.MethodPut, flowPath(flow.ID, "/otp"), map[string]string{"otp_code": code}, device)
	flowCall(t, http.MethodPost, flowPath(flow.ID, "/verify"), nil, device)
	data = waitResolved(t, flow.ID, device)
	if data.State.Stage != "verified" || data.Navigation.Current != "success" {
		t.Fatalf("after right code = %+v", data)
	}

	again := startFlow(t, device)
	if again.LastPhoneHint != "9876543210" {
		t.Fatalf("last phone hint = %q", again.LastPhoneHint)
	}
}

func TestOnboardingFlow_Ownership(t *testing.T) {
	flow := startFlow(t, uniqueDevice("owner"))

	status, _ := doJSON(t, http.MethodGet, flowPath(flow.ID, ""), nil, uniqueDevice("intruder"))
	if status != http.StatusNotFound {
		t.Fatalf("foreign device status = %d, want 404", status)
	}
}

func TestOnboardingFlow_Close(t *testing.T) {
	device := uniqueDevice("close")
	flow := startFlow(t, device)

	status, _ := doJSON(t, http.MethodDelete, flowPath(flow.ID, ""), nil, device)
	if status != http.StatusNoContent {
		t.Fatalf("close status = %d", status)
	}

	status, _ = doJSON(t, http.MethodPost, flowPath(flow.ID, "/code"), nil, device)
	if status != http.StatusNotFound {
		t.Fatalf("op after close status = %d, want 404", status)
	}
}

func TestOnboardingFlow_MalformedBody(t *testing.T) {
	device := uniqueDevice("body")
	flow := startFlow(t, device)

	status, _ := doJSON(t, http.MethodPut, flowPath(flow.ID, "/phone"), map[string]int{"phone": 1}, device)
	if status != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", status)
	}
}
