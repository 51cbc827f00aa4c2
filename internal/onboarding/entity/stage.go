package entity

import "fmt"

// Stage is the step an OTP flow is on.
type Stage int

const (
	StagePhoneEntry Stage = iota
	StageOtpSent
	StageVerifying
	StageVerified
)

func (s Stage) String() string {
	switch s {
	case StagePhoneEntry:
		return "phone_entry"
	case StageOtpSent:
		return "otp_sent"
	case StageVerifying:
		return "verifying"
	case StageVerified:
		return "verified"
	default:
		return "unknown"
	}
}

func (s Stage) MarshalText() ([]byte, error) {
	if s < StagePhoneEntry || s > StageVerified {
		return nil, fmt.Errorf("entity: invalid stage %d", int(s))
	}
	return []byte(s.String()), nil
}

func (s *Stage) UnmarshalText(b []byte) error {
	for st := StagePhoneEntry; st <= StageVerified; st++ {
		if st.String() == string(b) {
			*s = st
			return nil
		}
	}
	return fmt.Errorf("entity: unknown stage %q", b)
}
