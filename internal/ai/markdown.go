package ai

import (
	"bytes"
	_ "embed"
	"fmt"
	"strings"
	"text/template"
)

//go:embed markdown.tmpl
var conversationMarkdownTemplate string

var markdownTemplate = template.Must(template.New("conversation").Funcs(template.FuncMap{
	"splitLines": func(text string) []string {
		return strings.Split(text, "\n")
	},
	"add": func(a, b int) int {
		return a + b
	},
	"title": func(role Role) string {
		s := string(role)
		if s == "" {
			return s
		}
		return strings.ToUpper(s[:1]) + s[1:]
	},
}).Parse(conversationMarkdownTemplate))

type conversationMarkdownData struct {
	ID           string
	Model        string
	SystemPrompt string
	Lines        []DialogueLine
}

// ToMarkdown renders the transcript as a markdown document, one section per line
func (cc *ConversationClient) ToMarkdown() (string, error) {
	data := conversationMarkdownData{
		ID:           cc.id,
		Model:        string(cc.settings.Model),
		SystemPrompt: cc.settings.SystemPrompt,
		Lines:        cc.Transcript(),
	}

	var buf bytes.Buffer
	if err := markdownTemplate.Execute(&buf, data); err != nil {
		return "", fmt.Errorf("failed to render conversation markdown: %w", err)
	}
	return buf.String(), nil
}
