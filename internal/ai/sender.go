package ai

import (
	"context"

	"github.com/anthropics/anthropic-sdk-go"
	anthropt "github.com/anthropics/anthropic-sdk-go/option"
)

// MessageSender sends one request to the Messages API and waits for the complete reply
type MessageSender interface {
	SendMessage(ctx context.Context, params anthropic.MessageNewParams, opts ...anthropt.RequestOption) (*anthropic.Message, error)
}

type BlockingMessageSender struct {
	client anthropic.Client
}

func NewBlockingMessageSender(client anthropic.Client) BlockingMessageSender {
	return BlockingMessageSender{
		client: client,
	}
}

func (bms BlockingMessageSender) SendMessage(
	ctx context.Context,
	params anthropic.MessageNewParams,
	opts ...anthropt.RequestOption,
) (*anthropic.Message, error) {
	return bms.client.Messages.New(ctx, params, opts...)
}
