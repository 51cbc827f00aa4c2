package inbound

import (
	"context"

	"github.com/shandysiswandi/shield/internal/onboarding/entity"
	"github.com/shandysiswandi/shield/internal/onboarding/usecase"
)

type ucStream interface {
	StreamFlow(ctx context.Context, in usecase.FlowInput) (<-chan usecase.StreamEvent, error)
}

type uc interface {
	ucStream

	Stats() usecase.RegistryStats

	Intro(ctx context.Context, in usecase.DeviceInput) (*usecase.IntroOutput, error)
	CompleteIntro(ctx context.Context, in usecase.DeviceInput) (*entity.Navigation, error)

	StartFlow(ctx context.Context, in usecase.DeviceInput) (*usecase.FlowOutput, error)
	GetFlow(ctx context.Context, in usecase.FlowInput) (*usecase.FlowOutput, error)
	SetPhoneNumber(ctx context.Context, in usecase.SetPhoneNumberInput) (*usecase.FlowOutput, error)
	RequestCode(ctx context.Context, in usecase.FlowInput) (*usecase.FlowOutput, error)
	SetOtpCode(ctx context.Context, in usecase.SetOtpCodeInput) (*usecase.FlowOutput, error)
	Verify(ctx context.Context, in usecase.FlowInput) (*usecase.FlowOutput, error)
	Resend(ctx context.Context, in usecase.FlowInput) (*usecase.FlowOutput, error)
	ResetToPhoneEntry(ctx context.Context, in usecase.FlowInput) (*usecase.FlowOutput, error)
	CloseFlow(ctx context.Context, in usecase.FlowInput) error
	DevCode(ctx context.Context, in usecase.FlowInput) (*usecase.DevCodeOutput, error)
}
