package otp

import (
	"time"

	"github.com/pquerna/otp"
	"github.com/pquerna/otp/totp"
)

// OTP validates and produces passcodes for a base32 secret.
type OTP interface {
	Validate(code, secret string, at time.Time) bool
	GenerateCode(secret string, at time.Time) (string, error)
}

// TOTP implements OTP with RFC 6238 SHA1 codes.
type TOTP struct {
	period uint
	skew   uint
	digits otp.Digits
}

// NewTOTP falls back to 6 digits, a 30 s period and a skew of 1 step when
// given zero or unsupported values.
func NewTOTP(period, skew uint, digits int) *TOTP {
	d := otp.Digits(digits)
	if d != otp.DigitsSix && d != otp.DigitsEight {
		d = otp.DigitsSix
	}

	if period == 0 {
		period = 30
	}

	if skew == 0 {
		skew = 1
	}

	return &TOTP{period: period, skew: skew, digits: d}
}

func (o *TOTP) opts() totp.ValidateOpts {
	return totp.ValidateOpts{
		Period:    o.period,
		Skew:      o.skew,
		Digits:    o.digits,
		Algorithm: otp.AlgorithmSHA1,
	}
}

// Validate checks whether code is valid for secret at the given time.
func (o *TOTP) Validate(code, secret string, at time.Time) bool {
	ok, err := totp.ValidateCustom(code, secret, at, o.opts())
	return ok && err == nil
}

// GenerateCode returns the code for secret at the given time.
func (o *TOTP) GenerateCode(secret string, at time.Time) (string, error) {
	return totp.GenerateCodeCustom(secret, at, o.opts())
}
