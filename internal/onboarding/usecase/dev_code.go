package usecase

import (
	"context"
	"log/slog"

	"github.com/shandysiswandi/shield/internal/onboarding/entity"
	"github.com/shandysiswandi/shield/internal/pkg/goerror"
)

type DevCodeOutput struct {
	Phone string
	Code  string
}

// DevCode returns the code currently accepted for the flow's phone. It reads
// as not found unless onboarding.dev_code.enabled is set.
func (s *Usecase) DevCode(ctx context.Context, in FlowInput) (*DevCodeOutput, error) {
	ctx, span := s.startSpan(ctx, "DevCode")
	defer span.End()

	if !s.cfg.GetBool("onboarding.dev_code.enabled") {
		return nil, goerror.NewNotFound("Not found")
	}

	f, err := s.lookup(ctx, in)
	if err != nil {
		return nil, err
	}

	phone := f.ctrl.State().PhoneNumber
	if len(phone) != entity.PhoneLength {
		return nil, goerror.NewBusiness(entity.MsgInvalidPhone, goerror.CodeInvalidInput)
	}

	code, err := s.devCode.Code(ctx, phone)
	if err != nil {
		slog.ErrorContext(ctx, "failed to generate dev code", "flow_id", f.id, "error", err)
		return nil, goerror.NewServer(err)
	}

	return &DevCodeOutput{Phone: phone, Code: code}, nil
}
