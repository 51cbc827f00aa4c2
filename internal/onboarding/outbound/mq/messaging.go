package mq

import (
	"context"
	"encoding/json"

	"github.com/shandysiswandi/shield/internal/onboarding/usecase"
	"github.com/shandysiswandi/shield/internal/pkg/instrument"
	"github.com/shandysiswandi/shield/internal/pkg/messaging"
	"github.com/shandysiswandi/shield/internal/shared/event"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

const keyOfCorrelationID string = "cID"

type Messaging struct {
	client messaging.Publisher
	ins    instrument.Instrumentation
}

func NewMessaging(client messaging.Publisher, ins instrument.Instrumentation) *Messaging {
	return &Messaging{client: client, ins: ins}
}

func (m *Messaging) PublishCodeRequested(ctx context.Context, msg usecase.CodeRequestedEvent) error {
	ctx, span := m.ins.Tracer("onboarding.outbound.mq").Start(ctx, "PublishCodeRequested")
	defer span.End()

	body, err := json.Marshal(event.OnboardingCodeRequestedMessage{
		FlowID:   msg.FlowID,
		DeviceID: msg.DeviceID,
		Phone:    msg.Phone,
	})
	if err != nil {
		return fail(span, err)
	}

	return m.publish(ctx, span, event.OnboardingCodeRequestedDestination, msg.FlowID, body)
}

func (m *Messaging) PublishPhoneVerified(ctx context.Context, msg usecase.PhoneVerifiedEvent) error {
	ctx, span := m.ins.Tracer("onboarding.outbound.mq").Start(ctx, "PublishPhoneVerified")
	defer span.End()

	body, err := json.Marshal(event.OnboardingPhoneVerifiedMessage{
		FlowID:     msg.FlowID,
		DeviceID:   msg.DeviceID,
		Phone:      msg.Phone,
		VerifiedAt: msg.VerifiedAt.Unix(),
	})
	if err != nil {
		return fail(span, err)
	}

	return m.publish(ctx, span, event.OnboardingPhoneVerifiedDestination, msg.FlowID, body)
}

func (m *Messaging) publish(ctx context.Context, span trace.Span, dest, key string, body []byte) error {
	cID := instrument.GetCorrelationID(ctx)
	if _, err := m.client.Publish(ctx, dest, messaging.OutgoingMessage{
		Body:    body,
		Key:     []byte(key),
		Headers: []messaging.Header{{Key: keyOfCorrelationID, Value: []byte(cID)}},
	}); err != nil {
		return fail(span, err)
	}

	return nil
}

func fail(span trace.Span, err error) error {
	span.RecordError(err)
	span.SetStatus(codes.Error, err.Error())
	return err
}
