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

package skills

import (
	"context"
	"encoding/json"
	"fmt"

	"openclaw/internal/pyexec"
	"openclaw/internal/websearch"
)

// PythonREPLArgs describes the python_repl skill input.
type PythonREPLArgs struct {
	Code string `json:"code" jsonschema:"title=code,description=Python code to execute in the sandbox"`
}

// WebSearchArgs describes the web_search skill input.
type WebSearchArgs struct {
	Query string `json:"query" jsonschema:"title=query,description=Search query"`
}

// CodeExecutor runs one snippet; satisfied by pyexec.Executor.
type CodeExecutor interface {
	Execute(ctx context.Context, req pyexec.Request) pyexec.Result
}

// Searcher performs a bounded web lookup; satisfied by websearch.Client.
type Searcher interface {
	Search(ctx context.Context, query string, maxResults int) []websearch.Result
}

// ExecutorLimits carries the resource ceilings applied to every execution.
type ExecutorLimits struct {
	TimeoutSeconds   int
	MemoryLimitBytes int64
	FDLimit          int
}

// RegisterPythonREPL wires the sandboxed executor as the python_repl skill.
func RegisterPythonREPL(r *Registry, exe CodeExecutor, limits ExecutorLimits) {
	r.Register(&Skill{
		ID:          "python_repl",
		Name:        "Python REPL",
		Description: "Execute Python code in an isolated, resource-limited sandbox",
		Parameters:  parametersFor[PythonREPLArgs](),
		Handler: func(ctx context.Context, input string) (string, error) {
			res := exe.Execute(ctx, pyexec.Request{
				Code:             input,
				TimeoutSeconds:   limits.TimeoutSeconds,
				MemoryLimitBytes: limits.MemoryLimitBytes,
				FDLimit:          limits.FDLimit,
			})
			return formatExecution(res), nil
		},
	})
}

// RegisterWebSearch wires the lookup client as the web_search skill.
func RegisterWebSearch(r *Registry, searcher Searcher, maxResults int) {
	r.Register(&Skill{
		ID:          "web_search",
		Name:        "Web Search",
		Description: "Search the web using DuckDuckGo",
		Parameters:  parametersFor[WebSearchArgs](),
		Handler: func(ctx context.Context, input string) (string, error) {
			results := searcher.Search(ctx, input, maxResults)
			if len(results) == 0 {
				return "No results found.", nil
			}
			raw, err := json.Marshal(results)
			if err != nil {
				return "", err
			}
			return string(raw), nil
		},
	})
}

// formatExecution turns an execution result into observation text. Failures
// keep their classification so the model can correct its code and retry.
func formatExecution(res pyexec.Result) string {
	if res.Success {
		return res.Stdout
	}
	detail := res.ErrorDetail
	if detail == "" {
		detail = "execution failed"
	}
	return fmt.Sprintf("Execution failed (%s): %s", res.ErrorKind, detail)
}
