package usecase

import (
	"context"
	"time"

	"github.com/sethvargo/go-retry"
)

const (
	storeRetryBase = 50 * time.Millisecond
	storeRetryMax  = 2
)

// deviceStore binds the preference store to one device for a controller.
// Writes are retried a few times before the controller gives up and logs.
type deviceStore struct {
	prefs    repoPrefs
	deviceID string
}

func (d *deviceStore) SetLastPhoneNumber(ctx context.Context, phone string) error {
	b := retry.WithMaxRetries(storeRetryMax, retry.NewExponential(storeRetryBase))

	return retry.Do(ctx, b, func(ctx context.Context) error {
		if err := d.prefs.SetLastPhoneNumber(ctx, d.deviceID, phone); err != nil {
			return retry.RetryableError(err)
		}
		return nil
	})
}
