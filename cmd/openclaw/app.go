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

package main

import (
	"fmt"

	"github.com/rs/zerolog"

	"openclaw/internal/brain"
	"openclaw/internal/config"
	"openclaw/internal/pyexec"
	"openclaw/internal/sandbox"
	"openclaw/internal/skills"
	"openclaw/internal/store"
	"openclaw/internal/websearch"
	systemprompt "openclaw/system_prompt"
)

// app wires configuration, stores, tools and the reasoning loop together
// for both the REPL and batch modes.
type app struct {
	cfg        *config.Config
	brain      *brain.Brain
	registry   *skills.Registry
	threads    *store.ThreadStore
	usage      *store.UsageStore
	sandboxMgr *sandbox.Manager
	threadID   string
	logger     zerolog.Logger
}

func newApp(cfgPath string, logger zerolog.Logger) (*app, error) {
	cfg, err := config.LoadConfig(cfgPath)
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	for _, warning := range cfg.Validate() {
		logger.Warn().Str("field", warning.Field).Msg(warning.Message)
	}

	prompt := cfg.SystemPrompt
	if prompt == "" {
		prompt, err = systemprompt.Load()
		if err != nil {
			return nil, fmt.Errorf("failed to load system prompt: %w", err)
		}
	}

	threads, err := store.NewThreadStore(cfg.DataDir, logger)
	if err != nil {
		return nil, err
	}
	usage, err := store.NewUsageStore(cfg.DataDir, logger)
	if err != nil {
		return nil, err
	}

	// Sandbox for untrusted code; host execution when unavailable.
	sandboxMgr := initSandbox(cfg, logger)
	var execOpts []pyexec.Option
	if sandboxMgr != nil {
		execOpts = append(execOpts, pyexec.WithRunner(sandboxMgr))
	}
	if cfg.Sandbox.PythonPath != "" {
		execOpts = append(execOpts, pyexec.WithPythonPath(cfg.Sandbox.PythonPath))
	}
	executor := pyexec.NewExecutor(logger, execOpts...)

	registry := skills.NewRegistry()
	skills.RegisterPythonREPL(registry, executor, skills.ExecutorLimits{
		TimeoutSeconds:   cfg.Executor.TimeoutSeconds,
		MemoryLimitBytes: int64(cfg.Executor.MemoryLimitMB) * 1024 * 1024,
		FDLimit:          cfg.Executor.FDLimit,
	})
	searcher := websearch.NewClient(logger, websearch.WithBaseURL(cfg.Search.BaseURL))
	skills.RegisterWebSearch(registry, searcher, cfg.Search.MaxResults)
	for _, name := range registry.Names() {
		registry.SetEnabled(name, cfg.SkillEnabled(name))
	}

	b := brain.NewBrain(cfg, registry, prompt, logger,
		brain.WithThreadStore(threads),
		brain.WithUsageRecorder(usage))

	return &app{
		cfg:        cfg,
		brain:      b,
		registry:   registry,
		threads:    threads,
		usage:      usage,
		sandboxMgr: sandboxMgr,
		threadID:   *threadFlag,
		logger:     logger,
	}, nil
}

// history loads the persisted thread tail for seeding the next query.
func (a *app) history() []brain.Message {
	records, err := a.threads.Load(a.threadID, a.cfg.HistoryMaxMessages)
	if err != nil {
		a.logger.Warn().Err(err).Str("thread", a.threadID).Msg("Failed to load conversation history")
		return nil
	}
	messages := make([]brain.Message, 0, len(records))
	for _, rec := range records {
		messages = append(messages, brain.Message{
			Role:      rec.Role,
			Content:   rec.Content,
			Timestamp: rec.Timestamp,
		})
	}
	return messages
}

func (a *app) close() {
	if a.sandboxMgr != nil {
		if err := a.sandboxMgr.Close(); err != nil {
			a.logger.Warn().Err(err).Msg("Failed to close sandbox")
		}
	}
}
