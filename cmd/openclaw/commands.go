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
	"os"
	"strings"
	"text/tabwriter"

	"github.com/rs/zerolog"

	"openclaw/internal/brain"
	"openclaw/internal/theme"
)

// Command represents a slash command
type Command struct {
	Name        string
	Description string
}

// getAvailableCommands returns the list of all slash commands
func getAvailableCommands() []Command {
	return []Command{
		{Name: "help", Description: "Show available commands"},
		{Name: "clear", Description: "Clear conversation history"},
		{Name: "history", Description: "Display conversation history"},
		{Name: "skills", Description: "Show tool enablement"},
		{Name: "models", Description: "List configured models"},
		{Name: "usage", Description: "Show token usage totals"},
		{Name: "debug", Description: "Toggle debug logging"},
		{Name: "quit", Description: "Exit the application"},
		{Name: "exit", Description: "Exit the application"},
	}
}

// handleCommand processes slash commands, returns true if should quit
func handleCommand(input string, a *app, colors *theme.ColorScheme, logger zerolog.Logger) bool {
	cmdName := strings.TrimPrefix(input, "/")
	cmdName = strings.ToLower(strings.TrimSpace(cmdName))

	logger.Debug().Str("command", cmdName).Msg("Executing command")

	switch cmdName {
	case "help":
		showHelp(colors)
		return false

	case "clear":
		if err := a.threads.Clear(a.threadID); err != nil {
			colors.Error.Printf("✗ Failed to clear history: %v\n", err)
		} else {
			colors.Success.Println("✓ Conversation history cleared")
		}
		return false

	case "history":
		showHistory(a, colors)
		return false

	case "skills":
		showSkills(a, colors)
		return false

	case "models":
		showModels(a, colors)
		return false

	case "usage":
		colors.Header.Println("\nToken Usage:")
		fmt.Print(a.usage.Snapshot().Summary())
		fmt.Println()
		return false

	case "debug":
		if zerolog.GlobalLevel() == zerolog.DebugLevel {
			zerolog.SetGlobalLevel(zerolog.InfoLevel)
			colors.Success.Println("✓ Debug logging disabled")
		} else {
			zerolog.SetGlobalLevel(zerolog.DebugLevel)
			colors.Success.Println("✓ Debug logging enabled")
		}
		return false

	case "quit", "exit":
		return true

	default:
		colors.Error.Printf("✗ Unknown command: /%s (type /help for available commands)\n", cmdName)
		return false
	}
}

func showHelp(colors *theme.ColorScheme) {
	colors.Header.Println("\nAvailable Commands:")
	seen := make(map[string]bool)
	for _, cmd := range getAvailableCommands() {
		if seen[cmd.Name] {
			continue
		}
		seen[cmd.Name] = true
		fmt.Printf("  /%-12s - %s\n", cmd.Name, cmd.Description)
	}
	fmt.Println()
}

func showHistory(a *app, colors *theme.ColorScheme) {
	messages := a.history()
	if len(messages) == 0 {
		colors.Error.Println("No conversation history")
		return
	}

	colors.Header.Println("\nConversation History:")
	for _, msg := range messages {
		switch msg.Role {
		case brain.RoleUser:
			colors.User.Print("❯ ")
			fmt.Printf("%s\n", msg.Content)
		case brain.RoleAssistant:
			colors.Assistant.Print("⟫ ")
			fmt.Printf("%s\n", msg.Content)
		case brain.RoleObservation:
			colors.Observation.Print("⊙ ")
			fmt.Printf("%s\n", msg.Content)
		case brain.RoleSystem:
			fmt.Printf("[System] %s\n", msg.Content)
		}
	}
	fmt.Println()
}

func showSkills(a *app, colors *theme.ColorScheme) {
	colors.Header.Println("\nTools:")

	defs := a.registry.Definitions()
	if len(defs) == 0 {
		fmt.Println("No tools available")
		return
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 8, 2, '\t', 0)
	fmt.Fprintln(w, "Tool\tEnabled\tDescription")
	fmt.Fprintln(w, "────\t───────\t───────────")
	for _, def := range defs {
		fmt.Fprintf(w, "%s\t%t\t%s\n", def.ID, a.registry.Enabled(def.ID), def.Description)
	}
	w.Flush()
	fmt.Println()
}

func showModels(a *app, colors *theme.ColorScheme) {
	colors.Header.Println("\nModels:")

	active, _ := a.cfg.ActiveModel("")
	w := tabwriter.NewWriter(os.Stdout, 0, 8, 2, '\t', 0)
	fmt.Fprintln(w, "ID\tModel\tProvider\tActive")
	fmt.Fprintln(w, "──\t─────\t────────\t──────")
	for _, m := range a.cfg.Models {
		marker := ""
		if m.ID == active.ID {
			marker = "✓"
		}
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\n", m.ID, m.ModelID, m.Provider, marker)
	}
	w.Flush()
	fmt.Println()
}
