// Package hash derives keyed digests. The onboarding TOTP verifier uses it to
// turn a phone number into a stable per-phone secret.
package hash

// Hash produces and checks digests of a string.
type Hash interface {
	Hash(str string) ([]byte, error)
	Verify(hashed, str string) bool
}
