package cmd

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"time"

	"go.uber.org/zap"

	"github.com/GnDu/RECEW/internal/ai"
	"github.com/GnDu/RECEW/internal/telemetry"
)

func setupContext() context.Context {
	ctx, cancel := context.WithCancel(context.Background())

	// Setup graceful shutdown
	interrupt := make(chan os.Signal, 1)
	signal.Notify(interrupt, os.Interrupt)
	go func() {
		<-interrupt
		log.Info("Interrupt signal detected, shutting down gracefully...")
		cancel()
		<-interrupt
		log.Fatal("Forcing shutdown")
	}()

	return ctx
}

// newConversation creates a conversation from the resolved configuration. The returned function flushes
// telemetry and logs and must be called when the conversation is done.
func newConversation(ctx context.Context, diagnostics io.Writer) (*ai.ConversationClient, func(), error) {
	provider, err := telemetry.NewProvider(ctx, cfg.TelemetryConfig(), log)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to create telemetry provider: %w", err)
	}

	shutdown := func() {
		// ctx may already be cancelled by an interrupt
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := provider.Shutdown(shutdownCtx); err != nil {
			log.Warn("Failed to shut down telemetry", zap.Error(err))
		}
		_ = log.Sync()
	}

	conv, err := ai.NewConversationClient(
		cfg.KeyFile,
		cfg.Settings(),
		ai.WithLogger(log),
		ai.WithTracer(provider.Tracer()),
		ai.WithDiagnostics(diagnostics),
	)
	if err != nil {
		shutdown()
		return nil, nil, fmt.Errorf("failed to create conversation: %w", err)
	}

	log.Debug("Conversation started",
		zap.String("conversation_id", conv.ID()),
		zap.String("model", cfg.Model),
		zap.Int64("max_tokens", cfg.MaxTokens),
	)
	return conv, shutdown, nil
}

func printReply(w io.Writer, reply *ai.DialogueLine) {
	if reply == nil {
		fmt.Fprintln(w, "(no reply)")
		return
	}
	fmt.Fprintln(w, reply)
}
