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

package theme

import (
	"encoding/json"
	"os"

	"github.com/fatih/color"
	"github.com/pterm/pterm"
)

// Theme holds the console color configuration.
type Theme struct {
	HeaderTextColor      string `json:"header_text_color"`
	ChatUserColor        string `json:"chat_user_color"`
	ChatAssistantColor   string `json:"chat_assistant_color"`
	ChatObservationColor string `json:"chat_observation_color"`
	ChatErrorColor       string `json:"chat_error_color"`
	ChatSuccessColor     string `json:"chat_success_color"`
}

// ColorScheme provides pterm and color styles for the REPL.
type ColorScheme struct {
	Header      *pterm.Style
	User        *color.Color
	Assistant   *color.Color
	Observation *color.Color
	Error       *color.Color
	Success     *color.Color
}

// DefaultTheme returns a theme with default values.
func DefaultTheme() *Theme {
	return &Theme{
		HeaderTextColor:      "#cba6f7",
		ChatUserColor:        "#89b4fa",
		ChatAssistantColor:   "#a6e3a1",
		ChatObservationColor: "#fab387",
		ChatErrorColor:       "#f38ba8",
		ChatSuccessColor:     "#a6e3a1",
	}
}

// LoadTheme loads theme configuration from a JSON file. A missing file
// yields the default theme.
func LoadTheme(filepath string) (*Theme, error) {
	theme := DefaultTheme()

	if _, err := os.Stat(filepath); os.IsNotExist(err) {
		return theme, nil
	}

	data, err := os.ReadFile(filepath)
	if err != nil {
		return nil, err
	}
	if err := json.Unmarshal(data, theme); err != nil {
		return nil, err
	}
	return theme, nil
}

// ToColorScheme converts the theme to pterm/color styles, honoring the
// NO_COLOR convention.
func (t *Theme) ToColorScheme() *ColorScheme {
	if _, noColor := os.LookupEnv("NO_COLOR"); noColor {
		return DisabledColorScheme()
	}
	return &ColorScheme{
		Header:      pterm.NewStyle(pterm.FgLightMagenta, pterm.Bold),
		User:        color.New(color.FgCyan),
		Assistant:   color.New(color.FgGreen),
		Observation: color.New(color.FgYellow),
		Error:       color.New(color.FgRed),
		Success:     color.New(color.FgGreen),
	}
}

// DisabledColorScheme returns a color scheme with all colors disabled.
func DisabledColorScheme() *ColorScheme {
	color.NoColor = true

	return &ColorScheme{
		Header:      pterm.NewStyle(),
		User:        color.New(),
		Assistant:   color.New(),
		Observation: color.New(),
		Error:       color.New(),
		Success:     color.New(),
	}
}
