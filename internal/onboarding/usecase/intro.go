package usecase

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/samber/lo"
	"github.com/shandysiswandi/shield/internal/onboarding/entity"
	"github.com/shandysiswandi/shield/internal/pkg/goerror"
)

type IntroOutput struct {
	Intro     entity.Intro
	Start     entity.Destination
	Completed bool
}

// Intro returns the onboarding content and where the device should start.
func (s *Usecase) Intro(ctx context.Context, in DeviceInput) (*IntroOutput, error) {
	ctx, span := s.startSpan(ctx, "Intro")
	defer span.End()

	if err := s.validator.Validate(in); err != nil {
		return nil, goerror.NewInvalidInput(err)
	}

	completed, err := s.repoPrefs.OnboardingCompleted(ctx, in.DeviceID)
	if err != nil {
		slog.WarnContext(ctx, "failed to repo get onboarding completed", "device_id", in.DeviceID, "error", err)
	}

	return &IntroOutput{
		Intro:     s.intro(),
		Start:     entity.StartDestination(completed),
		Completed: completed,
	}, nil
}

// CompleteIntro records that the device confirmed the main onboarding page.
func (s *Usecase) CompleteIntro(ctx context.Context, in DeviceInput) (*entity.Navigation, error) {
	ctx, span := s.startSpan(ctx, "CompleteIntro")
	defer span.End()

	if err := s.validator.Validate(in); err != nil {
		return nil, goerror.NewInvalidInput(err)
	}

	if err := s.repoPrefs.SetOnboardingCompleted(ctx, in.DeviceID, true); err != nil {
		slog.ErrorContext(ctx, "failed to repo set onboarding completed", "device_id", in.DeviceID, "error", err)
		return nil, goerror.NewServer(err)
	}

	for _, f := range s.flows.byDevice(in.DeviceID) {
		f.completed.Store(true)
	}

	nav := entity.NavigationFor(entity.StagePhoneEntry, true)
	return &nav, nil
}

// intro returns the default content with pages replaced by
// onboarding.intro.pages when that list holds at least one usable page.
func (s *Usecase) intro() entity.Intro {
	out := entity.DefaultIntro()

	items, ok := s.cfg.Sub("onboarding.intro.pages").([]any)
	if !ok {
		return out
	}

	pages := lo.FilterMap(items, func(item any, i int) (entity.IntroPage, bool) {
		m, ok := item.(map[string]any)
		if !ok {
			return entity.IntroPage{}, false
		}

		page := entity.IntroPage{
			ID:    stringOf(m, "id"),
			Image: stringOf(m, "image"),
			Title: stringOf(m, "title"),
		}
		if page.Title == "" {
			return entity.IntroPage{}, false
		}
		if page.ID == "" {
			page.ID = fmt.Sprintf("page_%d", i+1)
		}
		return page, true
	})
	if len(pages) > 0 {
		out.Pages = pages
	}

	return out
}

func stringOf(m map[string]any, key string) string {
	v, _ := m[key].(string)
	return strings.TrimSpace(v)
}
