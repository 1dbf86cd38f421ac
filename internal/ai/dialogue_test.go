package ai

import (
	"testing"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewDialogueLine_ValidRoles(t *testing.T) {
	for _, role := range []Role{RoleUser, RoleAssistant} {
		line, err := NewDialogueLine(role, "hello")
		require.NoError(t, err)
		assert.Equal(t, role, line.Role)
		assert.Equal(t, "hello", line.Content)
	}
}

func TestNewDialogueLine_InvalidRoles(t *testing.T) {
	for _, role := range []Role{"system", "", "User", "tool"} {
		_, err := NewDialogueLine(role, "hello")
		require.ErrorIs(t, err, ErrInvalidRole, "role %q", role)
	}
}

func TestDialogueLine_String(t *testing.T) {
	line := DialogueLine{Role: RoleUser, Content: "Hi"}
	assert.Equal(t, "user: Hi", line.String())
}

func TestDialogueLine_AsMap(t *testing.T) {
	line := DialogueLine{Role: RoleAssistant, Content: "Hello there"}
	assert.Equal(t, map[string]string{"role": "assistant", "content": "Hello there"}, line.AsMap())
}

func TestDialogueLine_ToParam(t *testing.T) {
	userParam := DialogueLine{Role: RoleUser, Content: "question"}.ToParam()
	assert.Equal(t, anthropic.MessageParamRoleUser, userParam.Role)
	require.Len(t, userParam.Content, 1)
	require.NotNil(t, userParam.Content[0].OfText)
	assert.Equal(t, "question", userParam.Content[0].OfText.Text)

	assistantParam := DialogueLine{Role: RoleAssistant, Content: "answer"}.ToParam()
	assert.Equal(t, anthropic.MessageParamRoleAssistant, assistantParam.Role)
}

func TestDialogueLineFromResponse(t *testing.T) {
	response := newAnthropicResponse(t, anthropic.NewTextBlock("first"), anthropic.NewTextBlock("second"))

	line, err := DialogueLineFromResponse(response)
	require.NoError(t, err)
	assert.Equal(t, DialogueLine{Role: RoleAssistant, Content: "first"}, line)
}

func TestDialogueLineFromResponse_NoContent(t *testing.T) {
	_, err := DialogueLineFromResponse(newAnthropicResponse(t))
	require.ErrorIs(t, err, ErrUnexpectedReply)

	_, err = DialogueLineFromResponse(nil)
	require.ErrorIs(t, err, ErrUnexpectedReply)
}
