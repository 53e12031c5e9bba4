// Copyright (C) 2025 Dyne.org foundation
// designed, written and maintained by Denis Roio <jaromil@dyne.org>
//
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as
// published by the Free Software Foundation, either version 3 of the
// License, or (at your option) any later version.
//
// This program is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
// GNU Affero General Public License for more details.
//
// You should have received a copy of the GNU Affero General Public License
// along with this program.  If not, see <https://www.gnu.org/licenses/>.

// Package brain drives the tool-augmented reasoning loop: ask the model,
// parse its response for a tool request, invoke the tool, feed the
// observation back, repeat until a final answer or the iteration bound.
package brain

import (
	"context"
	"net/http"
	"time"

	"github.com/rs/zerolog"
	"github.com/sashabaranov/go-openai"

	"openclaw/internal/config"
)

// Message roles. Observation is synthetic: it is never sent upstream as
// its own role but mapped to a user message carrying the observation
// marker, since OpenAI-compatible APIs have no observation role.
const (
	RoleSystem      = "system"
	RoleUser        = "user"
	RoleAssistant   = "assistant"
	RoleObservation = "observation"
)

// Message is one entry in a conversation, ordered and append-only within
// a single ProcessQuery call.
type Message struct {
	Role      string
	Content   string
	Timestamp time.Time
}

const apologyText = "I'm sorry, I couldn't reach the language model. Please try again later."

// Brain orchestrates conversation rounds against a model and a tool
// registry. It holds no per-query state, so one Brain is safe for
// concurrent ProcessQuery calls.
type Brain struct {
	cfg          *config.Config
	tools        ToolInvoker
	systemPrompt string
	parser       ActionParser
	newClient    ClientFactory
	threads      ThreadStore
	usage        UsageRecorder
	logger       zerolog.Logger
}

// Option configures a Brain.
type Option func(*Brain)

// WithClientFactory overrides how chat clients are built (for testing).
func WithClientFactory(factory ClientFactory) Option {
	return func(b *Brain) { b.newClient = factory }
}

// WithThreadStore enables conversation persistence.
func WithThreadStore(store ThreadStore) Option {
	return func(b *Brain) { b.threads = store }
}

// WithUsageRecorder enables token accounting.
func WithUsageRecorder(rec UsageRecorder) Option {
	return func(b *Brain) { b.usage = rec }
}

// WithActionParser replaces the marker-based action parser, for models
// that emit tool requests in some other shape.
func WithActionParser(parser ActionParser) Option {
	return func(b *Brain) { b.parser = parser }
}

// NewBrain creates an orchestrator over the given configuration and tool
// registry. systemPrompt seeds every conversation.
func NewBrain(cfg *config.Config, tools ToolInvoker, systemPrompt string, logger zerolog.Logger, opts ...Option) *Brain {
	b := &Brain{
		cfg:          cfg,
		tools:        tools,
		systemPrompt: systemPrompt,
		parser:       MarkerParser{},
		newClient:    NewClientForModel,
		logger:       logger,
	}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// NewClientForModel builds a real OpenAI-compatible client for a model.
func NewClientForModel(model config.Model) ChatClient {
	clientConfig := openai.DefaultConfig(model.APIKey())
	if model.BaseURL != "" {
		clientConfig.BaseURL = model.BaseURL
		clientConfig.HTTPClient = &http.Client{}
	}
	return openai.NewClientWithConfig(clientConfig)
}

// Options selects the model and thread for one query. History carries the
// prior thread messages to seed the loop with; zero values fall back to
// the configured defaults.
type Options struct {
	ModelID  string
	ThreadID string
	History  []Message
}

// ProcessQuery runs the reasoning loop for one user query and always
// returns text: the model's final answer, the last assistant message when
// the iteration bound is exhausted, or an apology when the model API is
// unreachable. It never fails past its boundary.
func (b *Brain) ProcessQuery(ctx context.Context, userText string, opts Options) string {
	model, err := b.cfg.ActiveModel(opts.ModelID)
	if err != nil {
		b.logger.Error().Err(err).Str("model", opts.ModelID).Msg("no usable model")
		return apologyText
	}
	client := b.newClient(model)

	messages := make([]Message, 0, len(opts.History)+2)
	messages = append(messages, Message{Role: RoleSystem, Content: b.systemPrompt, Timestamp: time.Now()})
	messages = append(messages, opts.History...)
	messages = append(messages, Message{Role: RoleUser, Content: userText, Timestamp: time.Now()})
	b.persist(opts.ThreadID, RoleUser, userText)

	maxIterations := b.cfg.MaxIterations
	iteration := 0
	for {
		assistantText, err := b.complete(ctx, client, model, messages)
		if err != nil {
			b.logger.Error().Err(err).
				Str("model", model.ID).
				Int("iteration", iteration).
				Msg("model call failed")
			b.persist(opts.ThreadID, RoleAssistant, apologyText)
			return apologyText
		}
		messages = append(messages, Message{Role: RoleAssistant, Content: assistantText, Timestamp: time.Now()})
		b.persist(opts.ThreadID, RoleAssistant, assistantText)

		invocation, ok := b.parser.Parse(assistantText)
		if !ok {
			return assistantText
		}

		b.logger.Debug().
			Str("tool", invocation.Tool).
			Int("iteration", iteration).
			Str("input", truncate(invocation.Input, 120)).
			Msg("invoking tool")
		observation := b.tools.Invoke(ctx, invocation.Tool, invocation.Input)
		messages = append(messages, Message{Role: RoleObservation, Content: observation, Timestamp: time.Now()})
		b.persist(opts.ThreadID, RoleObservation, observation)

		iteration++
		if iteration >= maxIterations {
			b.logger.Warn().
				Int("iterations", iteration).
				Str("tool", invocation.Tool).
				Msg("iteration bound exhausted, returning last assistant message")
			return assistantText
		}
	}
}

// complete performs one model call. The observation marker is passed as a
// stop sequence so the model cannot fabricate tool results.
func (b *Brain) complete(ctx context.Context, client ChatClient, model config.Model, messages []Message) (string, error) {
	req := openai.ChatCompletionRequest{
		Model:    model.ModelID,
		Messages: toWireMessages(messages),
		Stop:     []string{observationMarker},
	}
	if model.Temperature != nil {
		req.Temperature = *model.Temperature
	}
	if model.MaxTokens > 0 {
		req.MaxTokens = model.MaxTokens
	}

	resp, err := client.CreateChatCompletion(ctx, req)
	if err != nil {
		return "", &APIError{Operation: "create_completion", Err: err}
	}
	if len(resp.Choices) == 0 {
		return "", &APIError{Operation: "create_completion", Err: errNoChoices}
	}
	b.recordUsage(model.ID, resp.Usage)
	return resp.Choices[0].Message.Content, nil
}

var errNoChoices = &emptyResponseError{}

type emptyResponseError struct{}

func (*emptyResponseError) Error() string { return "response contains no choices" }

// toWireMessages maps the internal sequence onto OpenAI roles.
// Observations travel as user messages prefixed with the observation
// marker, matching what the model was prompted to expect.
func toWireMessages(messages []Message) []openai.ChatCompletionMessage {
	wire := make([]openai.ChatCompletionMessage, 0, len(messages))
	for _, msg := range messages {
		role := msg.Role
		content := msg.Content
		if role == RoleObservation {
			role = openai.ChatMessageRoleUser
			content = observationMarker + " " + content
		}
		wire = append(wire, openai.ChatCompletionMessage{Role: role, Content: content})
	}
	return wire
}

func (b *Brain) persist(threadID, role, content string) {
	if b.threads == nil || threadID == "" {
		return
	}
	if err := b.threads.AppendMessage(threadID, role, content); err != nil {
		b.logger.Warn().Err(err).Str("thread", threadID).Msg("failed to persist message")
	}
}

func (b *Brain) recordUsage(modelID string, usage openai.Usage) {
	if b.usage == nil {
		return
	}
	if err := b.usage.RecordUsage(modelID, usage.PromptTokens, usage.CompletionTokens); err != nil {
		b.logger.Warn().Err(err).Str("model", modelID).Msg("failed to record usage")
	}
}

func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	return s[:max] + "..."
}
