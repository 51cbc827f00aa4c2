// Package clock provides a tiny time abstraction.
//
// Production code should depend on the Clocker interface instead of calling
// time.Now() or time.AfterFunc() directly. Tests swap in a Fake clock whose
// time only moves when Advance is called, so countdowns and delayed callbacks
// run deterministically.
package clock
