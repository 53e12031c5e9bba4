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
	"context"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/chzyer/readline"
	"github.com/rs/zerolog"

	"openclaw/internal/brain"
	"openclaw/internal/theme"
)

func runREPLMode(logger zerolog.Logger) {
	logger.Debug().Msg("Running in interactive console mode")

	a, err := newApp(*configPath, logger)
	if err != nil {
		logger.Fatal().Err(err).Msg("Failed to initialize")
	}
	defer a.close()

	themePath := filepath.Join(a.cfg.DataDir, "theme.json")
	loadedTheme, err := theme.LoadTheme(themePath)
	if err != nil {
		logger.Warn().Err(err).Str("path", themePath).Msg("Failed to load theme, using defaults")
		loadedTheme = theme.DefaultTheme()
	}
	colors := loadedTheme.ToColorScheme()

	// Initialize readline with command completion
	rl, err := readline.NewEx(&readline.Config{
		Prompt:          "❯ ",
		HistoryFile:     a.cfg.CommandHistoryFile,
		AutoComplete:    getCommandCompleter(),
		InterruptPrompt: "^C",
		EOFPrompt:       "exit",
	})
	if err != nil {
		logger.Fatal().Err(err).Msg("Failed to initialize readline")
	}
	defer rl.Close()

	// Display header
	colors.Header.Println("OpenClaw personal AI gateway")
	if model, err := a.cfg.ActiveModel(""); err == nil {
		fmt.Printf("Model in use: %s\n", model.ModelID)
	}
	fmt.Printf("Thread: %s\n", a.threadID)
	fmt.Println("Type /help for commands, Ctrl+C or /quit to exit")
	fmt.Println()

	// Main event loop
	for {
		line, err := rl.Readline()
		if err != nil {
			// EOF or interrupt
			logger.Debug().Msg("Readline interrupted")
			break
		}

		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}

		logger.Info().Str("user_input", line).Msg("User input received")

		// Handle slash commands
		if strings.HasPrefix(line, "/") {
			if handleCommand(line, a, colors, logger) {
				// /quit was called
				break
			}
			continue
		}

		handleConversation(line, a, colors, logger)
	}

	logger.Info().Msg("Session ended")
}

// handleConversation runs one reasoning loop for the user's input and
// prints the final answer.
func handleConversation(line string, a *app, colors *theme.ColorScheme, logger zerolog.Logger) {
	start := time.Now()
	answer := a.brain.ProcessQuery(context.Background(), line, brain.Options{
		ThreadID: a.threadID,
		History:  a.history(),
	})
	logger.Info().Dur("duration_ms", time.Since(start)).Msg("Answer produced")

	colors.Assistant.Print("⟫ ")
	fmt.Println(answer)
}

// getCommandCompleter builds a readline completer from available commands
func getCommandCompleter() *readline.PrefixCompleter {
	commands := getAvailableCommands()
	items := make([]readline.PrefixCompleterInterface, len(commands))
	for i, cmd := range commands {
		items[i] = readline.PcItem("/" + cmd.Name)
	}
	return readline.NewPrefixCompleter(items...)
}
