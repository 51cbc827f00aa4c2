// Package validator checks request and dependency structs against their
// `validate` tags and reports failures as a snake_case field map.
package validator

// Validator is what modules depend on.
type Validator interface {
	Validate(data any) error
}
