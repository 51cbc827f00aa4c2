// Package otpflow implements the phone verification state machine of the
// onboarding flow: phone entry, code sent, verifying, verified.
//
// A Controller owns one VerificationState. Every operation is serialized on
// the controller and reports failures through the state, never as an error.
// Delayed work (resend countdown, verification delay, invalid-attempt flash)
// runs on cancellable timers from a clock.Clocker; each timer slot holds at
// most one live timer and a generation number so a stale callback is dropped.
package otpflow
