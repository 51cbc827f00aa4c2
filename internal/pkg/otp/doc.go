// Package otp generates and validates time-based one-time passcodes (TOTP).
package otp
