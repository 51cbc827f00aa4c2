package otpflow

import (
	"context"
	"crypto/subtle"
)

// DefaultAcceptedCode is the code StaticVerifier accepts when none is configured.
const DefaultAcceptedCode = "123456"

// Verifier decides whether code is the right passcode for phone.
type Verifier interface {
	Verify(ctx context.Context, phone, code string) (bool, error)
}

// StaticVerifier accepts a single fixed code for every phone.
type StaticVerifier struct {
	code string
}

// NewStaticVerifier returns a verifier accepting code, or DefaultAcceptedCode
// when code is empty.
func NewStaticVerifier(code string) *StaticVerifier {
	if code == "" {
		code = DefaultAcceptedCode
	}
	return &StaticVerifier{code: code}
}

func (s *StaticVerifier) Verify(ctx context.Context, _, code string) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}
	return subtle.ConstantTimeCompare([]byte(code), []byte(s.code)) == 1, nil
}
