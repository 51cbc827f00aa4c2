// Package uid generates identifiers for flows and events.
package uid

// StringID generates string identifiers.
type StringID interface {
	Generate() string
}
