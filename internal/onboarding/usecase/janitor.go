package usecase

import (
	"context"
	"time"
)

const (
	defaultFlowIdleTTL = 30 * time.Minute
	maxJanitorInterval = time.Minute
)

// StartJanitor removes idle flows in the background until ctx is done.
func (s *Usecase) StartJanitor(ctx context.Context) bool {
	return s.goroutine.Go(ctx, "onboarding flow janitor", func(ctx context.Context) error {
		ticker := time.NewTicker(s.janitorInterval())
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-ticker.C:
				s.SweepIdleFlows(ctx)
			}
		}
	})
}

// SweepIdleFlows removes every flow untouched for longer than
// onboarding.flow_idle_ttl_minutes and returns how many it removed.
func (s *Usecase) SweepIdleFlows(ctx context.Context) int {
	ctx, span := s.startSpan(ctx, "SweepIdleFlows")
	defer span.End()

	idle := s.flows.idle(s.clock.Now().Add(-s.flowIdleTTL()))
	for _, f := range idle {
		s.removeFlow(ctx, f, "idle")
	}

	return len(idle)
}

func (s *Usecase) flowIdleTTL() time.Duration {
	if ttl := s.cfg.GetMinute("onboarding.flow_idle_ttl_minutes"); ttl > 0 {
		return ttl
	}
	return defaultFlowIdleTTL
}

func (s *Usecase) janitorInterval() time.Duration {
	return min(s.flowIdleTTL()/4, maxJanitorInterval)
}
