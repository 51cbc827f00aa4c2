package entity

import (
	"encoding/json"
	"testing"
)

func TestIsDigits(t *testing.T) {
	tests := map[string]bool{
		"":           true,
		"0123456789": true,
		"12a":        false,
		"١٢٣":        false,
		" 1":         false,
		"-1":         false,
	}
	for in, want := range tests {
		if got := IsDigits(in); got != want {
			t.Errorf("IsDigits(%q) = %v, want %v", in, got, want)
		}
	}
}

func TestStageJSON(t *testing.T) {
	b, err := json.Marshal(VerificationState{Stage: StageOtpSent})
	if err != nil {
		t.Fatalf("Marshal() error = %v", err)
	}

	var out map[string]any
	_ = json.Unmarshal(b, &out)
	if out["stage"] != "otp_sent" {
		t.Fatalf("stage = %v", out["stage"])
	}
	if _, ok := out["error_message"]; ok {
		t.Fatal("empty error_message should be omitted")
	}

	var st Stage
	if err := st.UnmarshalText([]byte("verified")); err != nil || st != StageVerified {
		t.Fatalf("UnmarshalText() = %v, %v", st, err)
	}
	if err := st.UnmarshalText([]byte("nope")); err == nil {
		t.Fatal("UnmarshalText(nope) should fail")
	}
	if _, err := Stage(9).MarshalText(); err == nil {
		t.Fatal("MarshalText(9) should fail")
	}
}

func TestNavigation(t *testing.T) {
	if StartDestination(false) != DestOnboarding || StartDestination(true) != DestOtp {
		t.Fatal("StartDestination mismatch")
	}

	nav := NavigationFor(StageOtpSent, false)
	if nav.Current != DestOtp || nav.Next != DestSuccess || !nav.CanGoBack {
		t.Fatalf("NavigationFor(otp_sent, false) = %+v", nav)
	}
	if NavigationFor(StagePhoneEntry, true).CanGoBack {
		t.Fatal("back should be blocked once onboarding is completed")
	}
	if NavigationFor(StageVerified, false).Current != DestSuccess {
		t.Fatal("verified flow should land on success")
	}
}

func TestDefaultIntro(t *testing.T) {
	in := DefaultIntro()
	if len(in.Pages) != 3 || len(in.Consent.Points) != 3 {
		t.Fatalf("DefaultIntro() = %+v", in)
	}
	if in.Consent.ConfirmLabel != "I understand" {
		t.Fatalf("ConfirmLabel = %q", in.Consent.ConfirmLabel)
	}
}
