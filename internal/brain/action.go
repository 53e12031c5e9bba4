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

import "strings"

// Literal markers the model uses to request a tool. The loop also passes
// the observation marker as a stop sequence so the model cannot author an
// observation itself.
const (
	actionMarker      = "Action:"
	inputMarker       = "Input:"
	observationMarker = "Observation:"
)

// Invocation is a parsed tool request, ephemeral to one loop round.
type Invocation struct {
	Tool  string
	Input string
}

// ActionParser extracts a tool invocation from a model response. A false
// second return means the response is a final answer.
type ActionParser interface {
	Parse(text string) (Invocation, bool)
}

// MarkerParser is the default ActionParser, scanning for the plain-text
// action and input markers.
type MarkerParser struct{}

var _ ActionParser = MarkerParser{}

func (MarkerParser) Parse(text string) (Invocation, bool) {
	return ParseAction(text)
}

// ParseAction scans a model response for the action and input markers, in
// that order. Both present: the text between them (trimmed) is the tool
// name, the text after the input marker (trimmed, code fences stripped) is
// the tool input. Either missing: the whole response is the final answer.
//
// Splitting takes the first occurrence of each marker, so input text that
// itself contains the literal markers can mis-parse. Known limitation,
// kept until the model side moves to structured tool calls.
func ParseAction(text string) (Invocation, bool) {
	actionIdx := strings.Index(text, actionMarker)
	if actionIdx == -1 {
		return Invocation{}, false
	}
	rest := text[actionIdx+len(actionMarker):]
	inputIdx := strings.Index(rest, inputMarker)
	if inputIdx == -1 {
		return Invocation{}, false
	}
	tool := strings.TrimSpace(rest[:inputIdx])
	input := stripCodeFence(strings.TrimSpace(rest[inputIdx+len(inputMarker):]))
	if tool == "" {
		return Invocation{}, false
	}
	return Invocation{Tool: tool, Input: input}, true
}

// stripCodeFence removes a surrounding triple-backtick fence, including an
// optional language tag on the opening line.
func stripCodeFence(s string) string {
	if !strings.HasPrefix(s, "```") {
		return s
	}
	body := s[3:]
	if idx := strings.IndexByte(body, '\n'); idx != -1 {
		// Opening line holds at most a language tag; drop it.
		if strings.IndexByte(body[:idx], '`') == -1 {
			body = body[idx+1:]
		}
	}
	body = strings.TrimSuffix(strings.TrimRight(body, " \n"), "```")
	return strings.TrimSpace(body)
}
