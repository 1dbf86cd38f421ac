// Package ai keeps a linear conversation with Claude and replays it on every request.
package ai

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/anthropics/anthropic-sdk-go"
	anthropt "github.com/anthropics/anthropic-sdk-go/option"
	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
)

const tracerName = "github.com/GnDu/RECEW/internal/ai"

const (
	ModelClaude3Opus   anthropic.Model = "claude-3-opus-20240229"
	ModelClaude3Sonnet anthropic.Model = "claude-3-sonnet-20240229"
	ModelClaude3Haiku  anthropic.Model = "claude-3-haiku-20240307"
)

// Settings is the static request configuration of a conversation. Optional fields are only sent
// when present: TopP when non-nil, Temperature when non-nil and TopP is nil, SystemPrompt and
// StopSequences when non-empty, TopK when positive.
type Settings struct {
	Model     anthropic.Model
	MaxTokens int64

	TopP        *float64 // Overrides Temperature when both are set
	Temperature *float64

	SystemPrompt  string
	StopSequences []string
	TopK          int64
}

func (s Settings) Validate() error {
	if s.Model == "" {
		return fmt.Errorf("model is required")
	}
	if s.MaxTokens <= 0 {
		return fmt.Errorf("max tokens must be positive, got %d", s.MaxTokens)
	}
	if s.TopK < 0 {
		return fmt.Errorf("top_k must not be negative, got %d", s.TopK)
	}
	return nil
}

// ConversationClient holds a transcript and sends it, in full, on every turn. It is not safe for
// concurrent use.
type ConversationClient struct {
	sender   MessageSender
	settings Settings

	id         string
	transcript []DialogueLine

	logger      *zap.Logger
	tracer      trace.Tracer
	diagnostics io.Writer
	requestOpts []anthropt.RequestOption
}

type Option func(*ConversationClient)

func WithLogger(logger *zap.Logger) Option {
	return func(cc *ConversationClient) {
		cc.logger = logger
	}
}

func WithTracer(tracer trace.Tracer) Option {
	return func(cc *ConversationClient) {
		cc.tracer = tracer
	}
}

// WithDiagnostics sets where Say reports remote failures. Defaults to stdout.
func WithDiagnostics(w io.Writer) Option {
	return func(cc *ConversationClient) {
		cc.diagnostics = w
	}
}

// WithRequestOptions adds SDK options to every request, e.g. a base URL
func WithRequestOptions(opts ...anthropt.RequestOption) Option {
	return func(cc *ConversationClient) {
		cc.requestOpts = append(cc.requestOpts, opts...)
	}
}

// NewConversationClient reads the API key from keyFile and starts an empty conversation against the
// Anthropic API. The SDK's automatic retries are disabled.
func NewConversationClient(keyFile string, settings Settings, opts ...Option) (*ConversationClient, error) {
	if err := settings.Validate(); err != nil {
		return nil, fmt.Errorf("invalid settings: %w", err)
	}

	apiKey, err := readAPIKey(keyFile)
	if err != nil {
		return nil, err
	}

	client := anthropic.NewClient(
		anthropt.WithAPIKey(apiKey),
		anthropt.WithMaxRetries(0),
	)
	return NewConversation(NewBlockingMessageSender(client), settings, opts...), nil
}

// NewConversation starts an empty conversation that sends its requests through sender
func NewConversation(sender MessageSender, settings Settings, opts ...Option) *ConversationClient {
	settings.StopSequences = append([]string(nil), settings.StopSequences...)

	cc := &ConversationClient{
		sender:   sender,
		settings: settings,

		id: uuid.New().String(),

		logger:      zap.NewNop(),
		tracer:      otel.Tracer(tracerName),
		diagnostics: os.Stdout,
	}
	for _, opt := range opts {
		opt(cc)
	}
	cc.logger = cc.logger.With(zap.String("conversation_id", cc.id))

	if settings.TopP != nil && settings.Temperature != nil {
		cc.logger.Warn("Can't define top_p and temperature at the same time, top_p will override temperature",
			zap.Float64("top_p", *settings.TopP),
			zap.Float64("temperature", *settings.Temperature),
		)
	}

	return cc
}

func readAPIKey(keyFile string) (string, error) {
	f, err := os.Open(keyFile)
	if err != nil {
		return "", fmt.Errorf("failed to open api key file: %w", err)
	}
	defer f.Close()

	b, err := io.ReadAll(f)
	if err != nil {
		return "", fmt.Errorf("failed to read api key file: %w", err)
	}
	apiKey := strings.TrimSpace(string(b))
	if apiKey == "" {
		return "", fmt.Errorf("%w: %s", ErrEmptyAPIKey, keyFile)
	}
	return apiKey, nil
}

// SendTurn appends a turn to the transcript, sends the whole transcript and records the reply.
//
// The input turn is recorded before the request is sent and stays recorded if the request fails. When
// both the input and the reply are assistant turns, the reply text is appended to the last line
// instead of becoming a new line. Remote failures are returned as *Error.
func (cc *ConversationClient) SendTurn(ctx context.Context, text string, role Role) (*DialogueLine, error) {
	input, err := NewDialogueLine(role, text)
	if err != nil {
		return nil, err
	}

	ctx, span := cc.tracer.Start(ctx, "ai.SendTurn", trace.WithAttributes(
		attribute.String("conversation.id", cc.id),
		attribute.String("turn.role", string(role)),
	))
	defer span.End()

	cc.transcript = append(cc.transcript, input)
	span.SetAttributes(attribute.Int("transcript.length", len(cc.transcript)))

	params, err := cc.buildParams()
	if err != nil {
		recordError(span, err)
		return nil, err
	}

	cc.logger.Info("Sending conversation...")
	cc.logger.Info("Transcript", zap.Any("messages", cc.transcriptMaps()))

	response, err := cc.sender.SendMessage(ctx, params, cc.requestOpts...)
	if err != nil {
		remoteErr := classifyError(err)
		recordError(span, remoteErr)
		return nil, remoteErr
	}

	if err := cc.recordReply(role, response); err != nil {
		recordError(span, err)
		return nil, err
	}

	last := cc.transcript[len(cc.transcript)-1]
	cc.logger.Info("Got reply", zap.Stringer("reply", last))
	return &last, nil
}

// Say behaves like SendTurn but reports remote failures to the diagnostics writer and returns a nil
// line instead of an error. Local validation errors are still returned.
func (cc *ConversationClient) Say(ctx context.Context, text string, role Role) (*DialogueLine, error) {
	line, err := cc.SendTurn(ctx, text, role)
	var remoteErr *Error
	if errors.As(err, &remoteErr) {
		cc.reportFailure(remoteErr)
		return nil, nil
	}
	return line, err
}

func (cc *ConversationClient) buildParams() (anthropic.MessageNewParams, error) {
	messages := make([]anthropic.MessageParam, 0, len(cc.transcript))
	for _, line := range cc.transcript {
		messages = append(messages, line.ToParam())
	}

	s := cc.settings
	params := anthropic.MessageNewParams{
		Model:     s.Model,
		MaxTokens: s.MaxTokens,
		Messages:  messages,
	}

	switch {
	case s.TopP != nil:
		params.TopP = anthropic.Float(*s.TopP)
	case s.Temperature != nil:
		params.Temperature = anthropic.Float(*s.Temperature)
	default:
		return anthropic.MessageNewParams{}, ErrSamplingModeUnset
	}

	if s.SystemPrompt != "" {
		params.System = []anthropic.TextBlockParam{{Text: s.SystemPrompt}}
	}
	if len(s.StopSequences) > 0 {
		params.StopSequences = s.StopSequences
	}
	if s.TopK > 0 {
		params.TopK = anthropic.Int(s.TopK)
	}

	return params, nil
}

func (cc *ConversationClient) recordReply(inputRole Role, response *anthropic.Message) error {
	if response == nil {
		return fmt.Errorf("%w: empty response", ErrUnexpectedReply)
	}

	// An assistant turn answered by the assistant is a continuation of the same line
	if inputRole == RoleAssistant && Role(response.Role) == RoleAssistant {
		if len(response.Content) == 0 {
			return fmt.Errorf("%w: reply has no content", ErrUnexpectedReply)
		}
		cc.transcript[len(cc.transcript)-1].Content += response.Content[0].Text
		return nil
	}

	if len(response.Content) != 1 {
		return fmt.Errorf("%w: expected exactly one content segment, got %d", ErrUnexpectedReply, len(response.Content))
	}
	line, err := DialogueLineFromResponse(response)
	if err != nil {
		return err
	}
	cc.transcript = append(cc.transcript, line)
	return nil
}

func (cc *ConversationClient) reportFailure(err *Error) {
	w := cc.diagnostics
	switch err.Kind {
	case KindConnectivity:
		fmt.Fprintln(w, "The server could not be reached")
		fmt.Fprintln(w, err.Cause)
	case KindRateLimit:
		fmt.Fprintln(w, "A 429 status code was received; we should back off a bit.")
	default:
		fmt.Fprintln(w, "Another non-200-range status code was received")
		fmt.Fprintln(w, err.StatusCode)
		fmt.Fprintln(w, err.Body)
	}
}

func recordError(span trace.Span, err error) {
	span.RecordError(err)
	span.SetStatus(codes.Error, err.Error())
}

func (cc *ConversationClient) transcriptMaps() []map[string]string {
	maps := make([]map[string]string, 0, len(cc.transcript))
	for _, line := range cc.transcript {
		maps = append(maps, line.AsMap())
	}
	return maps
}

// ID returns the identifier attached to this conversation's logs and spans
func (cc *ConversationClient) ID() string {
	return cc.id
}

func (cc *ConversationClient) Settings() Settings {
	s := cc.settings
	s.StopSequences = append([]string(nil), s.StopSequences...)
	return s
}

// Transcript returns a copy of the conversation so far
func (cc *ConversationClient) Transcript() []DialogueLine {
	return append([]DialogueLine(nil), cc.transcript...)
}

func (cc *ConversationClient) Len() int {
	return len(cc.transcript)
}

// Last returns the most recent line, if any
func (cc *ConversationClient) Last() (DialogueLine, bool) {
	if len(cc.transcript) == 0 {
		return DialogueLine{}, false
	}
	return cc.transcript[len(cc.transcript)-1], true
}
