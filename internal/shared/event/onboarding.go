package event

const OnboardingCodeRequestedDestination string = "onboarding.code_requested"
const OnboardingPhoneVerifiedDestination string = "onboarding.phone_verified"

type OnboardingCodeRequestedMessage struct {
	FlowID   string `json:"flow_id"`
	DeviceID string `json:"device_id"`
	Phone    string `json:"phone"`
}

type OnboardingPhoneVerifiedMessage struct {
	FlowID     string `json:"flow_id"`
	DeviceID   string `json:"device_id"`
	Phone      string `json:"phone"`
	VerifiedAt int64  `json:"verified_at"`
}
