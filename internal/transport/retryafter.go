// Package transport holds HTTP helpers shared by the Anthropic client.
package transport

import (
	"net/http"
	"strconv"
	"time"
)

// RetryAfter returns the wait a server asked for in its retry-after header, or zero if the header is
// missing, malformed or already in the past. The header may hold either seconds or an HTTP date.
func RetryAfter(header http.Header) time.Duration {
	return retryAfterAt(header, time.Now())
}

func retryAfterAt(header http.Header, now time.Time) time.Duration {
	retryAfterStr := header.Get("retry-after")
	if retryAfterStr == "" {
		return 0
	}

	var waitDuration time.Duration
	// Try parsing as seconds
	if seconds, err := strconv.Atoi(retryAfterStr); err == nil {
		waitDuration = time.Duration(seconds) * time.Second
	} else if retryTime, err := time.Parse(time.RFC1123, retryAfterStr); err == nil {
		waitDuration = retryTime.Sub(now)
	}

	if waitDuration < 0 {
		return 0
	}
	return waitDuration
}
