package cmd

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/glamour"
	"github.com/peterh/liner"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/GnDu/RECEW/internal/ai"
)

var chatRole string

var chatCmd = &cobra.Command{
	Use:   "chat",
	Short: "Hold an interactive conversation",
	Long: `Reads one turn per line and prints each reply. With --role assistant every line is sent
as the start of an assistant turn and Claude continues it.

Type /transcript to print the conversation so far. Ctrl-D or Ctrl-C ends the session.`,
	Args: cobra.NoArgs,
	RunE: runChat,
}

func init() {
	chatCmd.Flags().StringVar(&chatRole, "role", string(ai.RoleUser), "Role of the lines you type (user or assistant)")
	rootCmd.AddCommand(chatCmd)
}

func runChat(cmd *cobra.Command, _ []string) error {
	role := ai.Role(chatRole)
	if !role.Valid() {
		return fmt.Errorf("%w: %q", ai.ErrInvalidRole, chatRole)
	}

	ctx := setupContext()
	out := cmd.OutOrStdout()

	conv, shutdown, err := newConversation(ctx, out)
	if err != nil {
		return err
	}
	defer shutdown()

	line := liner.NewLiner()
	defer line.Close()
	line.SetCtrlCAborts(true)

	for {
		text, err := line.Prompt("> ")
		if errors.Is(err, io.EOF) || errors.Is(err, liner.ErrPromptAborted) {
			return nil
		} else if err != nil {
			return fmt.Errorf("failed to read input: %w", err)
		}

		text = strings.TrimSpace(text)
		if text == "" {
			continue
		}
		line.AppendHistory(text)

		if text == "/transcript" {
			printTranscript(out, conv)
			continue
		}

		reply, err := conv.Say(ctx, text, role)
		if err != nil {
			return err
		}
		printReply(out, reply)

		if ctx.Err() != nil {
			return nil
		}
	}
}

// printTranscript renders the conversation as styled markdown, falling back to plain lines
func printTranscript(out io.Writer, conv *ai.ConversationClient) {
	md, err := conv.ToMarkdown()
	if err == nil {
		var rendered string
		rendered, err = glamour.Render(md, "auto")
		if err == nil {
			fmt.Fprint(out, rendered)
			return
		}
	}
	log.Debug("Failed to render transcript", zap.Error(err))
	for _, dl := range conv.Transcript() {
		fmt.Fprintln(out, dl)
	}
}
