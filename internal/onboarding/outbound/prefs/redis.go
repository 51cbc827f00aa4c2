package prefs

import (
	"context"
	"errors"
	"strconv"

	"github.com/redis/go-redis/v9"
	"github.com/shandysiswandi/shield/internal/pkg/goerror"
	"github.com/shandysiswandi/shield/internal/pkg/instrument"
)

// RedisClient is the subset of *redis.Client the store uses.
type RedisClient interface {
	HGet(ctx context.Context, key, field string) *redis.StringCmd
	HSet(ctx context.Context, key string, values ...any) *redis.IntCmd
}

// Redis stores each device as a hash at "shield_prefs:<device id>".
type Redis struct {
	tracing
	client RedisClient
}

func NewRedis(client RedisClient, ins instrument.Instrumentation) *Redis {
	return &Redis{tracing: tracing{ins: ins, driver: DriverRedis}, client: client}
}

// Close is a no-op; the client is owned by the app.
func (r *Redis) Close() error { return nil }

func redisKey(deviceID string) string {
	return Namespace + ":" + deviceID
}

func (r *Redis) hget(ctx context.Context, deviceID, field string) (string, error) {
	v, err := r.client.HGet(ctx, redisKey(deviceID), field).Result()
	if errors.Is(err, redis.Nil) {
		return "", goerror.ErrNotFound
	}
	return v, err
}

func (r *Redis) OnboardingCompleted(ctx context.Context, deviceID string) (_ bool, err error) {
	ctx, span := r.startSpan(ctx, "OnboardingCompleted", deviceID)
	defer func() { r.endSpan(span, err) }()

	raw, err := r.hget(ctx, deviceID, keyOnboardingCompleted)
	if err != nil {
		return orDefault(false, err)
	}
	return strconv.ParseBool(raw)
}

func (r *Redis) SetOnboardingCompleted(ctx context.Context, deviceID string, completed bool) (err error) {
	ctx, span := r.startSpan(ctx, "SetOnboardingCompleted", deviceID)
	defer func() { r.endSpan(span, err) }()

	return r.client.HSet(ctx, redisKey(deviceID), keyOnboardingCompleted, strconv.FormatBool(completed)).Err()
}

func (r *Redis) LastPhoneNumber(ctx context.Context, deviceID string) (_ string, err error) {
	ctx, span := r.startSpan(ctx, "LastPhoneNumber", deviceID)
	defer func() { r.endSpan(span, err) }()

	return orDefault(r.hget(ctx, deviceID, keyLastPhone))
}

func (r *Redis) SetLastPhoneNumber(ctx context.Context, deviceID, phone string) (err error) {
	ctx, span := r.startSpan(ctx, "SetLastPhoneNumber", deviceID)
	defer func() { r.endSpan(span, err) }()

	return r.client.HSet(ctx, redisKey(deviceID), keyLastPhone, phone).Err()
}
