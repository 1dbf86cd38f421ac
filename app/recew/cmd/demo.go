package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/GnDu/RECEW/internal/ai"
)

var demoPrompts = []string{
	"Hello Claude, tell me the secret to a good life.",
	"Then tell me, how to be a good man",
}

var demoCmd = &cobra.Command{
	Use:   "demo",
	Short: "Send two fixed prompts and print the replies",
	Long: `Sends two prompts in one conversation and prints each reply. A failed request is
reported and the demo moves on to the next prompt.`,
	Args: cobra.NoArgs,
	RunE: runDemo,
}

func init() {
	rootCmd.AddCommand(demoCmd)
}

func runDemo(cmd *cobra.Command, _ []string) error {
	ctx := setupContext()
	out := cmd.OutOrStdout()

	conv, shutdown, err := newConversation(ctx, out)
	if err != nil {
		return err
	}
	defer shutdown()

	for _, prompt := range demoPrompts {
		reply, err := conv.Say(ctx, prompt, ai.RoleUser)
		if err != nil {
			return fmt.Errorf("failed to send prompt: %w", err)
		}
		printReply(out, reply)
	}
	return nil
}
