package inbound

import (
	"net/http"

	"github.com/shandysiswandi/shield/internal/pkg/router"
)

func RegisterHTTPEndpoint(r *router.Router, uc uc) {
	end := &HTTPEndpoint{uc: uc}
	device := r.RequireDevice()

	r.GET("/health", end.Health)

	r.GET("/api/v1/onboarding/intro", end.Intro, device)
	r.POST("/api/v1/onboarding/intro/complete", end.CompleteIntro, device)

	r.POST("/api/v1/onboarding/flows", end.StartFlow, device)
	r.GET("/api/v1/onboarding/flows/:id", end.GetFlow, device)
	r.DELETE("/api/v1/onboarding/flows/:id", end.CloseFlow, device)
	r.PUT("/api/v1/onboarding/flows/:id/phone", end.SetPhoneNumber, device)
	r.POST("/api/v1/onboarding/flows/:id/code", end.RequestCode, device)
	r.PUT("/api/v1/onboarding/flows/:id/otp", end.SetOtpCode, device)
	r.POST("/api/v1/onboarding/flows/:id/verify", end.Verify, device)
	r.POST("/api/v1/onboarding/flows/:id/resend", end.Resend, device)
	r.POST("/api/v1/onboarding/flows/:id/reset", end.ResetToPhoneEntry, device)
	r.GET("/api/v1/onboarding/flows/:id/dev-code", end.DevCode, device)

	r.GETRaw("/api/v1/onboarding/flows/:id/stream", http.HandlerFunc(end.StreamFlow), device)
}
