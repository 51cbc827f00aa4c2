package usecase

import (
	"context"
	"encoding/base32"

	"github.com/shandysiswandi/shield/internal/pkg/clock"
	"github.com/shandysiswandi/shield/internal/pkg/hash"
	"github.com/shandysiswandi/shield/internal/pkg/otp"
)

var secretEncoding = base32.StdEncoding.WithPadding(base32.NoPadding)

// TOTPVerifier accepts the current time-based code of a per-phone secret.
// The secret is derived from a keyed hash of the phone, so nothing is stored.
type TOTPVerifier struct {
	hash  hash.Hash
	otp   otp.OTP
	clock clock.Clocker
}

func NewTOTPVerifier(h hash.Hash, o otp.OTP, c clock.Clocker) *TOTPVerifier {
	return &TOTPVerifier{hash: h, otp: o, clock: c}
}

func (v *TOTPVerifier) Verify(ctx context.Context, phone, code string) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}

	secret, err := v.secret(phone)
	if err != nil {
		return false, err
	}

	return v.otp.Validate(code, secret, v.clock.Now()), nil
}

// Code returns the code Verify accepts for phone right now.
func (v *TOTPVerifier) Code(ctx context.Context, phone string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	secret, err := v.secret(phone)
	if err != nil {
		return "", err
	}

	return v.otp.GenerateCode(secret, v.clock.Now())
}

func (v *TOTPVerifier) secret(phone string) (string, error) {
	sum, err := v.hash.Hash(phone)
	if err != nil {
		return "", err
	}
	return secretEncoding.EncodeToString(sum), nil
}

// StaticCode is the code source paired with a static verifier.
type StaticCode string

func (c StaticCode) Code(ctx context.Context, _ string) (string, error) {
	return string(c), ctx.Err()
}
