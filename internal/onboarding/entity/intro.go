package entity

// IntroPage is one slide of the intro carousel.
type IntroPage struct {
	ID    string `json:"id"`
	Image string `json:"image"`
	Title string `json:"title"`
}

// ConsentPage is the page the user confirms before entering the OTP step.
type ConsentPage struct {
	Title        string   `json:"title"`
	Subtitle     string   `json:"subtitle"`
	Points       []string `json:"points"`
	ConfirmLabel string   `json:"confirm_label"`
}

// SuccessPage is shown once the phone number is verified.
type SuccessPage struct {
	Title    string `json:"title"`
	Subtitle string `json:"subtitle"`
}

// Intro bundles the static onboarding content.
type Intro struct {
	Pages   []IntroPage `json:"pages"`
	Consent ConsentPage `json:"consent"`
	Success SuccessPage `json:"success"`
}

// DefaultIntro returns the content shipped with the app.
func DefaultIntro() Intro {
	return Intro{
		Pages: []IntroPage{
			{ID: "alerts", Image: "onboarding_1", Title: "Get instant alerts for scam calls, suspicious texts, harmful apps, and breaches"},
			{ID: "family", Image: "onboarding_2", Title: "Protect your family from scams with real-time alerts and safety monitoring"},
			{ID: "recovery", Image: "onboarding_3", Title: "Recover lost money if tricked, with Shield Protect up to Rs 1,00,000"},
		},
		Consent: ConsentPage{
			Title:    "Private by Design.\nYou're in Control.",
			Subtitle: "Shield protects you from scams, risky links, and harmful apps, all while keeping your data private and secure.",
			Points: []string{
				"All checks happen on your phone; contacts and chats stay private.",
				"We request only permissions needed to keep you safe.",
				"Control your data access anytime. We never sell your information.",
			},
			ConfirmLabel: "I understand",
		},
		Success: SuccessPage{
			Title:    "Your phone is\nverified securely.",
			Subtitle: "You can now proceed with your account setup",
		},
	}
}
