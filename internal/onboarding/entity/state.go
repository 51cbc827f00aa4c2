package entity

const (
	PhoneLength   = 10
	OtpLength     = 6
	ResendSeconds = 60
)

// Messages surfaced through VerificationState.ErrorMessage.
const (
	MsgInvalidPhone     = "Enter valid 10-digit phone number"
	MsgIncompleteOtp    = "Please enter complete 6-digit OTP"
	MsgInvalidOtp       = "Invalid OTP. Please try again."
	MsgVerificationDown = "Unable to verify OTP. Please try again."
)

// VerificationState is the snapshot of one OTP flow.
type VerificationState struct {
	PhoneNumber        string `json:"phone_number"`
	OtpCode            string `json:"otp_code"`
	Stage              Stage  `json:"stage"`
	ErrorMessage       string `json:"error_message,omitempty"`
	InvalidAttempt     bool   `json:"invalid_attempt"`
	SecondsUntilResend int    `json:"seconds_until_resend"`
	CanResend          bool   `json:"can_resend"`
}

// NewVerificationState returns the state of a freshly started flow.
func NewVerificationState(resendSeconds int) VerificationState {
	return VerificationState{Stage: StagePhoneEntry, SecondsUntilResend: resendSeconds}
}

// IsDigits reports whether s consists of ASCII digits only. The empty string
// qualifies.
func IsDigits(s string) bool {
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return false
		}
	}
	return true
}
