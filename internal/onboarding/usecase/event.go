package usecase

import (
	"context"
	"log/slog"
	"time"

	"go.opentelemetry.io/otel/attribute"
)

type CodeRequestedEvent struct {
	FlowID   string
	DeviceID string
	Phone    string
}

type PhoneVerifiedEvent struct {
	FlowID     string
	DeviceID   string
	Phone      string
	VerifiedAt time.Time
}

const (
	resultAccepted = "accepted"
	resultRejected = "rejected"
	resultError    = "error"
)

func resultAttr(result string) attribute.Set {
	return attribute.NewSet(attribute.String("result", result))
}

// publish sends an event in the background. Failures are logged only.
func (s *Usecase) publish(name string, flowID string, fn func(ctx context.Context) error) {
	ok := s.goroutine.Go(context.Background(), name, func(ctx context.Context) error {
		ctx, cancel := context.WithTimeout(ctx, publishTimeout)
		defer cancel()

		if err := fn(ctx); err != nil {
			slog.ErrorContext(ctx, "failed to publish onboarding event", "event", name, "flow_id", flowID, "error", err)
		}
		return nil
	})
	if !ok {
		slog.Warn("onboarding event dropped", "event", name, "flow_id", flowID)
	}
}
