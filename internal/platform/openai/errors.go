package openai

import (
	"errors"
	"fmt"

	apperrors "github.com/yungbote/atlas-backend/internal/pkg/errors"
)

type Reason string

const (
	ReasonDisabled   Reason = "disabled"
	ReasonNetwork    Reason = "network"
	ReasonTimeout    Reason = "timeout"
	ReasonHTTPStatus Reason = "http_status"
	ReasonDecode     Reason = "decode"
	ReasonEmpty      Reason = "empty"
)

// CompletionError says why a completion produced no usable text. Callers
// that only care about usable/not usable can test for ErrUpstreamUnavailable.
type CompletionError struct {
	Reason Reason
	Status int
	Err    error
}

func (e *CompletionError) Error() string {
	msg := "completion " + string(e.Reason)
	if e.Status != 0 {
		msg = fmt.Sprintf("%s (status %d)", msg, e.Status)
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *CompletionError) Unwrap() error { return e.Err }

func (e *CompletionError) Is(target error) bool {
	return target == apperrors.ErrUpstreamUnavailable
}

// ReasonOf returns the failure reason carried by err, or "" if none.
func ReasonOf(err error) Reason {
	var ce *CompletionError
	if errors.As(err, &ce) {
		return ce.Reason
	}
	return ""
}
