package ai

import (
	"context"
	"testing"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestToMarkdown(t *testing.T) {
	sender := &senderStub{
		responses: []*anthropic.Message{newAnthropicResponse(t, anthropic.NewTextBlock("Be kind."))},
	}
	settings := temperatureSettings()
	settings.SystemPrompt = "You are wise.\nAnswer briefly."
	conv := newTestConversation(sender, settings)

	_, err := conv.SendTurn(context.Background(), "What is the secret to a good life?", RoleUser)
	require.NoError(t, err)

	md, err := conv.ToMarkdown()
	require.NoError(t, err)

	assert.Contains(t, md, "# Conversation "+conv.ID())
	assert.Contains(t, md, "- **Model:** claude-3-haiku-20240307")
	assert.Contains(t, md, "- **Turns:** 2")
	assert.Contains(t, md, "> You are wise.\n> Answer briefly.\n")
	assert.Contains(t, md, "## 1. User\n\nWhat is the secret to a good life?\n")
	assert.Contains(t, md, "## 2. Assistant\n\nBe kind.\n")
}

func TestToMarkdown_Empty(t *testing.T) {
	conv := newTestConversation(&senderStub{}, temperatureSettings())

	md, err := conv.ToMarkdown()
	require.NoError(t, err)
	assert.Contains(t, md, "- **Turns:** 0")
	assert.NotContains(t, md, "System prompt")
	assert.NotContains(t, md, "## 1.")
}
