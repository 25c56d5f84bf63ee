package spec

import "errors"

// ErrorCode categorizes loader and validation errors for clearer handling
// and messaging.
type ErrorCode string

const (
	InputError      ErrorCode = "InputError"
	ParseError      ErrorCode = "ParseError"
	ValidationError ErrorCode = "ValidationError"
)

// SpecError is a structured error with optional location and JSON Pointer.
type SpecError struct {
	Code        ErrorCode
	Message     string
	Location    string // file path
	JSONPointer string // e.g. "#/paths/~1pets/get"
	Cause       error
}

func (e *SpecError) Error() string { return e.Message }
func (e *SpecError) Unwrap() error { return e.Cause }

func asSpecError(err error, target **SpecError) bool {
	return errors.As(err, target)
}
