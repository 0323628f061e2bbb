package errors

import "errors"

// Failure classifications shared by the domain services and the HTTP layer.
const (
	CodeInvalidInput          = "invalid_input"
	CodeNoImageryFound        = "no_imagery_found"
	CodeMalformedAIResponse   = "malformed_ai_response"
	CodeSchemaValidationError = "schema_validation_error"
	CodeUnsupportedMode       = "unsupported_mode"
	CodeNotFound              = "not_found"
	CodeUpstream              = "upstream_error"
	CodeArchiveDisabled       = "archive_disabled"
	CodeConflict              = "conflict"
)

// AppError encodes domain specific error details.
type AppError struct {
	Code    string
	Message string
	Err     error
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return e.Message + ": " + e.Err.Error()
	}
	return e.Message
}

func (e *AppError) Unwrap() error {
	return e.Err
}

// Wrap produces a new AppError instance.
func Wrap(code, message string, err error) error {
	if err == nil {
		return &AppError{Code: code, Message: message}
	}
	return &AppError{Code: code, Message: message, Err: err}
}

// IsCode helps handler differentiate failures.
func IsCode(err error, code string) bool {
	return CodeOf(err) == code
}

// CodeOf returns the classification of err, or "" when err carries none.
func CodeOf(err error) string {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Code
	}
	return ""
}
