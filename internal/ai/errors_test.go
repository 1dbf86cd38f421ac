package ai

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	anthropt "github.com/anthropics/anthropic-sdk-go/option"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const replyJSON = `{
	"id": "msg_01",
	"type": "message",
	"role": "assistant",
	"model": "claude-3-haiku-20240307",
	"content": [{"type": "text", "text": "The secret is kindness."}],
	"stop_reason": "end_turn",
	"stop_sequence": null,
	"usage": {"input_tokens": 12, "output_tokens": 6}
}`

func writeKeyFile(t *testing.T, contents string) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), "key.txt")
	require.NoError(t, os.WriteFile(path, []byte(contents), 0600))
	return path
}

// newServerConversation creates a conversation that talks to baseURL through the real SDK client
func newServerConversation(t *testing.T, baseURL string, diagnostics *bytes.Buffer) *ConversationClient {
	t.Helper()

	conv, err := NewConversationClient(
		writeKeyFile(t, "  sk-ant-test\n"),
		temperatureSettings(),
		WithRequestOptions(anthropt.WithBaseURL(baseURL)),
		WithDiagnostics(diagnostics),
	)
	require.NoError(t, err)
	return conv
}

func TestNewConversationClient_SendsTrimmedKeyAndPayload(t *testing.T) {
	type captured struct {
		key  string
		body map[string]any
	}
	requests := make(chan captured, 1)
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		c := captured{key: r.Header.Get("x-api-key")}
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&c.body))
		requests <- c
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(replyJSON))
	}))
	defer server.Close()

	conv := newServerConversation(t, server.URL, &bytes.Buffer{})

	reply, err := conv.SendTurn(context.Background(), "Hello Claude, tell me the secret to a good life.", RoleUser)
	require.NoError(t, err)
	assert.Equal(t, DialogueLine{Role: RoleAssistant, Content: "The secret is kindness."}, *reply)

	got := <-requests
	gotBody := got.body
	assert.Equal(t, "sk-ant-test", got.key)
	assert.Equal(t, "claude-3-haiku-20240307", gotBody["model"])
	assert.EqualValues(t, 1024, gotBody["max_tokens"])
	assert.EqualValues(t, 0.2, gotBody["temperature"])
	assert.NotContains(t, gotBody, "top_p")
	messages, ok := gotBody["messages"].([]any)
	require.True(t, ok)
	assert.Len(t, messages, 1)
}

func TestNewConversationClient_EmptyKeyFile(t *testing.T) {
	_, err := NewConversationClient(writeKeyFile(t, " \n\t"), temperatureSettings())
	require.ErrorIs(t, err, ErrEmptyAPIKey)
}

func TestNewConversationClient_MissingKeyFile(t *testing.T) {
	_, err := NewConversationClient(filepath.Join(t.TempDir(), "missing.txt"), temperatureSettings())
	require.ErrorIs(t, err, os.ErrNotExist)
}

func TestNewConversationClient_InvalidSettings(t *testing.T) {
	settings := temperatureSettings()
	settings.MaxTokens = 0

	_, err := NewConversationClient(writeKeyFile(t, "sk-ant-test"), settings)
	require.Error(t, err)
}

func TestClassify_RateLimit(t *testing.T) {
	var requests atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requests.Add(1)
		w.Header().Set("Content-Type", "application/json")
		w.Header().Set("retry-after", "3")
		w.WriteHeader(http.StatusTooManyRequests)
		_, _ = w.Write([]byte(`{"type":"error","error":{"type":"rate_limit_error","message":"slow down"}}`))
	}))
	defer server.Close()

	var diagnostics bytes.Buffer
	conv := newServerConversation(t, server.URL, &diagnostics)

	_, err := conv.SendTurn(context.Background(), "Hi", RoleUser)
	var remoteErr *Error
	require.ErrorAs(t, err, &remoteErr)
	assert.Equal(t, KindRateLimit, remoteErr.Kind)
	assert.Equal(t, http.StatusTooManyRequests, remoteErr.StatusCode)
	assert.Equal(t, 3*time.Second, remoteErr.RetryAfter)

	// No retries
	assert.Equal(t, int32(1), requests.Load())

	reply, err := conv.Say(context.Background(), "Hi", RoleUser)
	require.NoError(t, err)
	assert.Nil(t, reply)
	assert.Equal(t, "A 429 status code was received; we should back off a bit.\n", diagnostics.String())
}

func TestClassify_Status(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = w.Write([]byte(`{"type":"error","error":{"type":"api_error","message":"overloaded"}}`))
	}))
	defer server.Close()

	var diagnostics bytes.Buffer
	conv := newServerConversation(t, server.URL, &diagnostics)

	_, err := conv.SendTurn(context.Background(), "Hi", RoleUser)
	var remoteErr *Error
	require.ErrorAs(t, err, &remoteErr)
	assert.Equal(t, KindStatus, remoteErr.Kind)
	assert.Equal(t, http.StatusInternalServerError, remoteErr.StatusCode)
	assert.Contains(t, remoteErr.Body, "overloaded")

	_, err = conv.Say(context.Background(), "Hi", RoleUser)
	require.NoError(t, err)
	assert.Contains(t, diagnostics.String(), "Another non-200-range status code was received\n500\n")
}

func TestClassify_Unreachable(t *testing.T) {
	server := httptest.NewServer(http.NotFoundHandler())
	baseURL := server.URL
	server.Close()

	conv := newServerConversation(t, baseURL, &bytes.Buffer{})

	reply, err := conv.SendTurn(context.Background(), "Hi", RoleUser)
	assert.Nil(t, reply)
	var remoteErr *Error
	require.ErrorAs(t, err, &remoteErr)
	assert.Equal(t, KindConnectivity, remoteErr.Kind)
	assert.Equal(t, 1, conv.Len())
}

func TestClassify_NonAPIError(t *testing.T) {
	err := classifyError(context.DeadlineExceeded)
	assert.Equal(t, KindConnectivity, err.Kind)
	assert.True(t, errors.Is(err, context.DeadlineExceeded))
}

func TestErrorKind_String(t *testing.T) {
	assert.Equal(t, "connectivity", KindConnectivity.String())
	assert.Equal(t, "rate_limit", KindRateLimit.String())
	assert.Equal(t, "status", KindStatus.String())
	assert.Equal(t, "unknown(9)", ErrorKind(9).String())
}

func TestError_Message(t *testing.T) {
	statusErr := &Error{Kind: KindStatus, StatusCode: 500, Body: "boom"}
	assert.Equal(t, "ai [status]: status 500: boom", statusErr.Error())

	connErr := &Error{Kind: KindConnectivity, Cause: errors.New("refused")}
	assert.Equal(t, "ai [connectivity]: refused", connErr.Error())
}
