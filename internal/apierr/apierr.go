package apierr

import "net/http"

// Error is an error that knows which HTTP status and machine code it maps to.
type Error struct {
	Status  int
	Code    string
	Err     error
	Details any
}

func (e *Error) Error() string {
	if e == nil || e.Err == nil {
		return ""
	}
	return e.Err.Error()
}

func (e *Error) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}

func New(status int, code string, err error) *Error {
	return &Error{Status: status, Code: code, Err: err}
}

// WithDetails attaches diagnostic data that is safe to show to the caller.
func (e *Error) WithDetails(details any) *Error {
	e.Details = details
	return e
}

func BadRequest(code string, err error) *Error { return New(http.StatusBadRequest, code, err) }
func NotFound(code string, err error) *Error   { return New(http.StatusNotFound, code, err) }
func Forbidden(code string, err error) *Error  { return New(http.StatusForbidden, code, err) }
