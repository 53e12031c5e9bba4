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

package pyexec

import (
	"bytes"
	"context"
	_ "embed"
	"encoding/json"
	"errors"
	"io"
	"os/exec"
	"strings"
	"time"

	"github.com/criyle/go-sandbox/runner"
	"github.com/rs/zerolog"
)

//go:embed harness.py
var harnessSource string

// WorkerRunner spawns the worker process. The container-backed sandbox
// manager satisfies it on Linux; the default runs on the host via os/exec.
type WorkerRunner interface {
	ExecInSandbox(ctx context.Context, cmd string, args []string, stdin io.Reader, stdout, stderr io.Writer) (runner.Result, error)
}

// Executor validates and runs Python snippets. Safe for concurrent use;
// every Execute call owns its worker process exclusively and guarantees its
// termination before returning.
type Executor struct {
	runner     WorkerRunner
	pythonPath string
	logger     zerolog.Logger
}

// Option configures an Executor.
type Option func(*Executor)

// WithRunner installs a worker runner (container sandbox, or a fake in tests).
func WithRunner(r WorkerRunner) Option {
	return func(e *Executor) { e.runner = r }
}

// WithPythonPath overrides the worker interpreter path.
func WithPythonPath(path string) Option {
	return func(e *Executor) { e.pythonPath = path }
}

// NewExecutor creates an executor that runs workers on the host.
func NewExecutor(logger zerolog.Logger, opts ...Option) *Executor {
	e := &Executor{
		runner:     hostRunner{},
		pythonPath: "python3",
		logger:     logger,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// workerRequest is the wire form handed to the harness on stdin.
type workerRequest struct {
	Code             string `json:"code"`
	TimeoutSeconds   int    `json:"timeout_seconds"`
	MemoryLimitBytes int64  `json:"memory_limit_bytes"`
	FDLimit          int    `json:"fd_limit"`
}

// workerReport is the single JSON line posted by the harness. Kind is set
// when the harness's own validation pass rejected the code.
type workerReport struct {
	OK     bool   `json:"ok"`
	Kind   string `json:"kind"`
	Stdout string `json:"stdout"`
	Stderr string `json:"stderr"`
	Error  string `json:"error"`
}

// Execute validates req.Code and, if it passes, runs it in a fresh worker.
// The worker is waited on with a wall-clock deadline of TimeoutSeconds+1 and
// force-killed if still alive at the deadline.
func (e *Executor) Execute(ctx context.Context, req Request) Result {
	req = normalizeRequest(req)
	if req.TimeoutSeconds <= 0 || req.MemoryLimitBytes <= 0 {
		return rejected("invalid limits: timeout and memory must be positive")
	}

	if err := Validate(req.Code); err != nil {
		var verr *ValidationError
		if errors.As(err, &verr) && verr.ParseFailed() {
			// The in-process parser could not read the snippet; the
			// worker interpreter re-validates with its own ast before
			// executing, so modern syntax is not rejected here.
			e.logger.Debug().Err(err).Msg("parse failed in process, deferring to worker validation")
		} else {
			e.logger.Debug().Err(err).Msg("code rejected by validator")
			return rejected(err.Error())
		}
	}

	payload, err := json.Marshal(workerRequest{
		Code:             req.Code,
		TimeoutSeconds:   req.TimeoutSeconds,
		MemoryLimitBytes: req.MemoryLimitBytes,
		FDLimit:          req.FDLimit,
	})
	if err != nil {
		return Result{ErrorKind: ErrRuntime, ErrorDetail: err.Error()}
	}

	deadline := time.Duration(req.TimeoutSeconds+1) * time.Second
	runCtx, cancel := context.WithTimeout(ctx, deadline)
	defer cancel()

	var stdout, stderr bytes.Buffer
	started := time.Now()
	res, runErr := e.runner.ExecInSandbox(runCtx, e.pythonPath, []string{"-I", "-c", harnessSource},
		bytes.NewReader(payload), &stdout, &stderr)
	elapsed := time.Since(started)

	if runCtx.Err() != nil && errors.Is(runCtx.Err(), context.DeadlineExceeded) {
		e.logger.Warn().Dur("elapsed", elapsed).Msg("worker killed at wall-clock deadline")
		return Result{
			ErrorKind:   ErrTimeout,
			Stderr:      stderr.String(),
			ErrorDetail: "execution timeout",
		}
	}

	report, ok := parseReport(stdout.Bytes())
	if !ok {
		// Worker died without posting a result: an OS limit killed it
		// before it could report.
		detail := strings.TrimSpace(stderr.String())
		if detail == "" {
			detail = res.Error
		}
		if detail == "" && runErr != nil {
			detail = runErr.Error()
		}
		if detail == "" {
			detail = "worker exited without result"
		}
		e.logger.Warn().Str("detail", truncate(detail, 200)).Msg("worker exited abnormally")
		return Result{ErrorKind: ErrResourceExceeded, ErrorDetail: detail}
	}

	if !report.OK {
		if report.Kind == string(ErrValidationRejected) {
			return rejected(report.Error)
		}
		kind := ErrRuntime
		if strings.HasPrefix(report.Error, "MemoryError") {
			kind = ErrResourceExceeded
		}
		return Result{
			Stderr:      report.Stderr,
			ErrorKind:   kind,
			ErrorDetail: report.Error,
		}
	}

	out := report.Stdout
	if out == "" {
		out = NoOutput
	}
	e.logger.Debug().Dur("elapsed", elapsed).Int("stdout_bytes", len(report.Stdout)).Msg("execution complete")
	return Result{
		Success:   true,
		Stdout:    out,
		Stderr:    report.Stderr,
		ErrorKind: ErrNone,
	}
}

func normalizeRequest(req Request) Request {
	if req.TimeoutSeconds == 0 {
		req.TimeoutSeconds = DefaultTimeoutSeconds
	}
	if req.MemoryLimitBytes == 0 {
		req.MemoryLimitBytes = DefaultMemoryLimitBytes
	}
	if req.FDLimit <= 0 {
		req.FDLimit = DefaultFDLimit
	}
	return req
}

// parseReport decodes the last non-empty stdout line as a worker report.
func parseReport(out []byte) (workerReport, bool) {
	lines := bytes.Split(bytes.TrimSpace(out), []byte("\n"))
	for i := len(lines) - 1; i >= 0; i-- {
		line := bytes.TrimSpace(lines[i])
		if len(line) == 0 {
			continue
		}
		var report workerReport
		if err := json.Unmarshal(line, &report); err == nil {
			return report, true
		}
		break
	}
	return workerReport{}, false
}

func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	return s[:max]
}

// hostRunner executes the worker directly on the host.
type hostRunner struct{}

func (hostRunner) ExecInSandbox(ctx context.Context, cmd string, args []string, stdin io.Reader, stdout, stderr io.Writer) (runner.Result, error) {
	c := exec.CommandContext(ctx, cmd, args...)
	c.Stdin = stdin
	c.Stdout = stdout
	c.Stderr = stderr

	err := c.Run()
	if err != nil {
		return runner.Result{
			Status: runner.StatusRunnerError,
			Error:  err.Error(),
		}, err
	}

	return runner.Result{
		Status: runner.StatusNormal,
	}, nil
}
