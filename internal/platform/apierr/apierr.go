package apierr

import (
	"errors"
	"fmt"
	"net/http"

	apperr "github.com/yungbote/atlas-backend/internal/pkg/errors"
)

// Error carries the HTTP status and stable error code a handler should
// answer with. The wrapped error keeps the sentinel for errors.Is checks.
type Error struct {
	Status int
	Code   string
	Err    error
}

func (e *Error) Error() string {
	if e == nil {
		return ""
	}
	if e.Err != nil {
		return e.Err.Error()
	}
	if e.Code != "" {
		return e.Code
	}
	if e.Status != 0 {
		return fmt.Sprintf("api error (%d)", e.Status)
	}
	return "api error"
}

func (e *Error) Unwrap() error { return e.Err }

func New(status int, code string, err error) *Error {
	return &Error{Status: status, Code: code, Err: err}
}

func NotFound(code, format string, args ...any) *Error {
	return New(http.StatusNotFound, code, fmt.Errorf(format+": %w", append(args, apperr.ErrNotFound)...))
}

func Invalid(code, format string, args ...any) *Error {
	return New(http.StatusBadRequest, code, fmt.Errorf(format+": %w", append(args, apperr.ErrInvalidArgument)...))
}

func Conflict(code, format string, args ...any) *Error {
	return New(http.StatusConflict, code, fmt.Errorf(format+": %w", append(args, apperr.ErrConflict)...))
}

// As returns the *Error inside err, if any.
func As(err error) (*Error, bool) {
	var e *Error
	if errors.As(err, &e) && e != nil {
		return e, true
	}
	return nil, false
}
