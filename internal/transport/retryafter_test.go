package transport

import (
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func header(value string) http.Header {
	h := http.Header{}
	if value != "" {
		h.Set("Retry-After", value)
	}
	return h
}

func TestRetryAfter_Seconds(t *testing.T) {
	assert.Equal(t, 7*time.Second, RetryAfter(header("7")))
}

func TestRetryAfter_Missing(t *testing.T) {
	assert.Equal(t, time.Duration(0), RetryAfter(header("")))
}

func TestRetryAfter_Malformed(t *testing.T) {
	assert.Equal(t, time.Duration(0), RetryAfter(header("soon")))
}

func TestRetryAfter_NegativeSeconds(t *testing.T) {
	assert.Equal(t, time.Duration(0), RetryAfter(header("-3")))
}

func TestRetryAfter_HTTPDate(t *testing.T) {
	now := time.Date(2024, 3, 7, 12, 0, 0, 0, time.UTC)
	later := now.Add(90 * time.Second).Format(time.RFC1123)

	assert.Equal(t, 90*time.Second, retryAfterAt(header(later), now))
}

func TestRetryAfter_HTTPDateInPast(t *testing.T) {
	now := time.Date(2024, 3, 7, 12, 0, 0, 0, time.UTC)
	earlier := now.Add(-time.Minute).Format(time.RFC1123)

	assert.Equal(t, time.Duration(0), retryAfterAt(header(earlier), now))
}
