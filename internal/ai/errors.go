package ai

import (
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/anthropics/anthropic-sdk-go"

	"github.com/GnDu/RECEW/internal/transport"
)

// Local errors. These indicate a programming or configuration mistake rather than a transient
// condition, so they are always returned to the caller.
var (
	ErrInvalidRole       = errors.New("invalid role")
	ErrSamplingModeUnset = errors.New("must specify either temperature or top_p")
	ErrUnexpectedReply   = errors.New("unexpected reply shape")
	ErrEmptyAPIKey       = errors.New("api key file is empty")
)

// ErrorKind classifies a failed remote call
type ErrorKind int

const (
	KindConnectivity ErrorKind = iota // service unreachable, timed out or cancelled
	KindRateLimit                     // 429
	KindStatus                        // any other non-2xx status
)

var errorKindNames = [...]string{
	KindConnectivity: "connectivity",
	KindRateLimit:    "rate_limit",
	KindStatus:       "status",
}

func (k ErrorKind) String() string {
	if int(k) >= 0 && int(k) < len(errorKindNames) {
		return errorKindNames[k]
	}
	return fmt.Sprintf("unknown(%d)", k)
}

// Error is a failed remote call
type Error struct {
	Kind       ErrorKind
	StatusCode int           // zero for connectivity failures
	Body       string        // raw response body if available
	RetryAfter time.Duration // server hint on rate limit failures; never acted on here
	Cause      error
}

func (e *Error) Error() string {
	switch e.Kind {
	case KindConnectivity:
		return fmt.Sprintf("ai [%s]: %v", e.Kind, e.Cause)
	default:
		return fmt.Sprintf("ai [%s]: status %d: %s", e.Kind, e.StatusCode, e.Body)
	}
}

func (e *Error) Unwrap() error {
	return e.Cause
}

// classifyError maps an error returned by the SDK onto the closed set of remote failures
func classifyError(err error) *Error {
	var apiErr *anthropic.Error
	if !errors.As(err, &apiErr) {
		return &Error{Kind: KindConnectivity, Cause: err}
	}

	if apiErr.StatusCode == http.StatusTooManyRequests {
		var retryAfter time.Duration
		if apiErr.Response != nil {
			retryAfter = transport.RetryAfter(apiErr.Response.Header)
		}
		return &Error{
			Kind:       KindRateLimit,
			StatusCode: apiErr.StatusCode,
			Body:       apiErr.RawJSON(),
			RetryAfter: retryAfter,
			Cause:      err,
		}
	}

	return &Error{
		Kind:       KindStatus,
		StatusCode: apiErr.StatusCode,
		Body:       apiErr.RawJSON(),
		Cause:      err,
	}
}
