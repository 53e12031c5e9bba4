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

package brain

import (
	"context"

	"github.com/sashabaranov/go-openai"

	"openclaw/internal/config"
)

// ChatClient interface abstracts the OpenAI-compatible client for testing.
// This enables dependency injection for unit tests without making real API
// calls.
//
// Usage:
//   - Production: NewClientForModel builds a real openai.Client per model
//   - Testing: pass a mock implementation through WithClientFactory
type ChatClient interface {
	CreateChatCompletion(ctx context.Context, req openai.ChatCompletionRequest) (openai.ChatCompletionResponse, error)
}

// ClientFactory builds a chat client for a configured model. Injected so
// tests can substitute a mock without touching the orchestration loop.
type ClientFactory func(model config.Model) ChatClient

// ToolInvoker resolves and runs a named tool, encoding every failure
// (unknown tool, policy denial, execution error) as observation text.
type ToolInvoker interface {
	Invoke(ctx context.Context, name, input string) string
}

// ThreadStore persists conversation messages. Calls are fire-and-forget
// from the loop's perspective: failures are logged, never propagated.
type ThreadStore interface {
	AppendMessage(threadID, role, content string) error
}

// UsageRecorder accumulates token accounting per model. Same
// fire-and-forget contract as ThreadStore.
type UsageRecorder interface {
	RecordUsage(modelID string, promptTokens, completionTokens int) error
}

// Verify that openai.Client implements ChatClient at compile time.
var _ ChatClient = (*openai.Client)(nil)
