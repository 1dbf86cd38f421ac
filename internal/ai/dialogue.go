package ai

import (
	"fmt"

	"github.com/anthropics/anthropic-sdk-go"
)

// Role is the speaker of a dialogue line
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// Valid reports whether r is one of the two roles the Messages API accepts in a transcript
func (r Role) Valid() bool {
	return r == RoleUser || r == RoleAssistant
}

// DialogueLine is one turn of a conversation
type DialogueLine struct {
	Role    Role   `json:"role"`
	Content string `json:"content"`
}

func NewDialogueLine(role Role, content string) (DialogueLine, error) {
	if !role.Valid() {
		return DialogueLine{}, fmt.Errorf("%w: role is either user or assistant but not %q", ErrInvalidRole, role)
	}
	return DialogueLine{Role: role, Content: content}, nil
}

// DialogueLineFromResponse builds a line from the role and first text segment of a reply
func DialogueLineFromResponse(msg *anthropic.Message) (DialogueLine, error) {
	if msg == nil || len(msg.Content) == 0 {
		return DialogueLine{}, fmt.Errorf("%w: reply has no content", ErrUnexpectedReply)
	}
	return NewDialogueLine(Role(msg.Role), msg.Content[0].Text)
}

// AsMap returns the structured view of the line
func (dl DialogueLine) AsMap() map[string]string {
	return map[string]string{
		"role":    string(dl.Role),
		"content": dl.Content,
	}
}

func (dl DialogueLine) String() string {
	return fmt.Sprintf("%s: %s", dl.Role, dl.Content)
}

// ToParam converts the line into a single-text-block message parameter
func (dl DialogueLine) ToParam() anthropic.MessageParam {
	block := anthropic.NewTextBlock(dl.Content)
	if dl.Role == RoleAssistant {
		return anthropic.NewAssistantMessage(block)
	}
	return anthropic.NewUserMessage(block)
}
