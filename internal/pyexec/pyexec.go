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

// Package pyexec runs untrusted Python snippets in a freshly spawned,
// resource-limited worker process. Code is validated against an AST deny-list
// before any process is spawned; all failures are reported in the Result,
// never as a panic or error escaping Execute.
package pyexec

// ErrorKind classifies an execution failure.
type ErrorKind string

const (
	ErrNone               ErrorKind = "none"
	ErrValidationRejected ErrorKind = "validation_rejected"
	ErrRuntime            ErrorKind = "runtime_error"
	ErrTimeout            ErrorKind = "timeout"
	ErrResourceExceeded   ErrorKind = "resource_exceeded"
)

// NoOutput is the sentinel stdout value for code that printed nothing.
const NoOutput = "(no output)"

// Request describes one execution of a code snippet.
type Request struct {
	Code             string
	TimeoutSeconds   int
	MemoryLimitBytes int64
	FDLimit          int
}

// Result carries captured output or a classified failure.
// Success implies ErrorKind == ErrNone.
type Result struct {
	Success     bool
	Stdout      string
	Stderr      string
	ErrorKind   ErrorKind
	ErrorDetail string
}

// Default resource ceilings applied when a request leaves them unset.
const (
	DefaultTimeoutSeconds   = 5
	DefaultMemoryLimitBytes = 50 * 1024 * 1024
	DefaultFDLimit          = 32
)

func rejected(detail string) Result {
	return Result{ErrorKind: ErrValidationRejected, ErrorDetail: detail}
}
