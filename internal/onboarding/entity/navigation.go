package entity

// Destination is a screen of the onboarding navigation graph.
type Destination string

const (
	DestOnboarding     Destination = "onboarding"
	DestMainOnboarding Destination = "main_onboarding"
	DestOtp            Destination = "otp"
	DestSuccess        Destination = "success"
)

// StartDestination is where a device lands when the app opens.
func StartDestination(completed bool) Destination {
	if completed {
		return DestOtp
	}
	return DestOnboarding
}

// CanGoBackFromOtp reports whether the otp screen may pop back to the intro.
func CanGoBackFromOtp(completed bool) bool {
	return !completed
}

// Navigation tells the client where it is and where it may go next.
type Navigation struct {
	Current   Destination `json:"current"`
	Next      Destination `json:"next,omitempty"`
	CanGoBack bool        `json:"can_go_back"`
}

// NavigationFor derives the navigation of a flow in stage st.
func NavigationFor(st Stage, completed bool) Navigation {
	if st == StageVerified {
		return Navigation{Current: DestSuccess}
	}
	return Navigation{Current: DestOtp, Next: DestSuccess, CanGoBack: CanGoBackFromOtp(completed)}
}
