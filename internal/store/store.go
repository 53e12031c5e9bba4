// Copyright (C) 2025 Dyne.org foundation
// designed, written and maintained by Denis Roio <jaromil@dyne.org>

// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as
// published by the Free Software Foundation, either version 3 of the
// License, or (at your option) any later version.

// This program is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
// GNU Affero General Public License for more details.

// You should have received a copy of the GNU Affero General Public License
// along with this program.  If not, see <https://www.gnu.org/licenses/>.

// Package store persists conversation threads and token usage under the
// data directory. Threads are append-only JSONL files, one per thread,
// so a crash never loses more than the line being written. Usage is a
// single JSON document rewritten on every update.
package store

import (
	"bufio"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"openclaw/internal/errors"
	"openclaw/internal/paths"
)

// Record is one persisted conversation message.
type Record struct {
	Role      string    `json:"role"`
	Content   string    `json:"content"`
	Timestamp time.Time `json:"ts"`
}

// ThreadStore appends and reloads conversation threads as JSONL files
// under <dataDir>/threads/<id>.jsonl.
type ThreadStore struct {
	dir    string
	mu     sync.Mutex
	logger zerolog.Logger
}

// NewThreadStore creates the threads directory if needed.
func NewThreadStore(dataDir string, logger zerolog.Logger) (*ThreadStore, error) {
	dir := filepath.Join(dataDir, "threads")
	if err := paths.EnsureDir(dir); err != nil {
		return nil, errors.Wrap(errors.CodeStore, "creating threads directory", err)
	}
	return &ThreadStore{dir: dir, logger: logger}, nil
}

func (s *ThreadStore) threadPath(threadID string) (string, error) {
	if err := paths.ValidateFileComponent(threadID); err != nil {
		return "", errors.Wrap(errors.CodeStore, "invalid thread id", err)
	}
	return filepath.Join(s.dir, threadID+".jsonl"), nil
}

// AppendMessage appends a single message to the thread file, creating it
// on first use.
func (s *ThreadStore) AppendMessage(threadID, role, content string) error {
	path, err := s.threadPath(threadID)
	if err != nil {
		return err
	}
	line, err := json.Marshal(Record{Role: role, Content: content, Timestamp: time.Now().UTC()})
	if err != nil {
		return errors.Wrap(errors.CodeStore, "encoding message", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o600)
	if err != nil {
		return errors.Wrap(errors.CodeStore, "opening thread file", err)
	}
	defer f.Close()
	if _, err := f.Write(append(line, '\n')); err != nil {
		return errors.Wrap(errors.CodeStore, "writing message", err)
	}
	return nil
}

// Load returns the thread's messages. When maxMessages is positive only
// the most recent maxMessages records are returned. A missing thread is
// an empty thread, not an error.
func (s *ThreadStore) Load(threadID string, maxMessages int) ([]Record, error) {
	path, err := s.threadPath(threadID)
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, errors.Wrap(errors.CodeStore, "opening thread file", err)
	}
	defer f.Close()

	var records []Record
	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 0, 64*1024), 1<<20)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		var rec Record
		if err := json.Unmarshal([]byte(line), &rec); err != nil {
			// Tolerate a torn trailing line from an interrupted write.
			s.logger.Warn().Str("thread", threadID).Err(err).Msg("skipping corrupt thread record")
			continue
		}
		records = append(records, rec)
	}
	if err := scanner.Err(); err != nil {
		return nil, errors.Wrap(errors.CodeStore, "reading thread file", err)
	}
	if maxMessages > 0 && len(records) > maxMessages {
		records = records[len(records)-maxMessages:]
	}
	return records, nil
}

// Clear removes a thread's persisted messages. Clearing a thread that
// was never written is a no-op.
func (s *ThreadStore) Clear(threadID string) error {
	path, err := s.threadPath(threadID)
	if err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		return errors.Wrap(errors.CodeStore, "removing thread file", err)
	}
	return nil
}

// List returns the known thread ids, sorted.
func (s *ThreadStore) List() ([]string, error) {
	entries, err := os.ReadDir(s.dir)
	if err != nil {
		return nil, errors.Wrap(errors.CodeStore, "listing threads", err)
	}
	var ids []string
	for _, entry := range entries {
		name := entry.Name()
		if entry.IsDir() || !strings.HasSuffix(name, ".jsonl") {
			continue
		}
		ids = append(ids, strings.TrimSuffix(name, ".jsonl"))
	}
	sort.Strings(ids)
	return ids, nil
}

// ModelUsage accumulates token counts for one model.
type ModelUsage struct {
	PromptTokens     int `json:"prompt_tokens"`
	CompletionTokens int `json:"completion_tokens"`
	Requests         int `json:"requests"`
}

// Usage is the persisted accounting document.
type Usage struct {
	TotalPromptTokens     int                   `json:"total_prompt_tokens"`
	TotalCompletionTokens int                   `json:"total_completion_tokens"`
	TotalRequests         int                   `json:"total_requests"`
	PerModel              map[string]ModelUsage `json:"per_model"`
	Daily                 map[string]ModelUsage `json:"daily"`
}

// UsageStore keeps running token totals in <dataDir>/usage.json.
type UsageStore struct {
	path   string
	mu     sync.Mutex
	usage  Usage
	logger zerolog.Logger
}

// NewUsageStore loads existing totals if present.
func NewUsageStore(dataDir string, logger zerolog.Logger) (*UsageStore, error) {
	if err := paths.EnsureDir(dataDir); err != nil {
		return nil, errors.Wrap(errors.CodeStore, "creating data directory", err)
	}
	s := &UsageStore{
		path:   filepath.Join(dataDir, "usage.json"),
		logger: logger,
	}
	raw, err := os.ReadFile(s.path)
	if err != nil {
		if !os.IsNotExist(err) {
			return nil, errors.Wrap(errors.CodeStore, "reading usage file", err)
		}
	} else if err := json.Unmarshal(raw, &s.usage); err != nil {
		// Start fresh rather than refuse to run over a corrupt file.
		logger.Warn().Err(err).Str("path", s.path).Msg("resetting corrupt usage file")
		s.usage = Usage{}
	}
	if s.usage.PerModel == nil {
		s.usage.PerModel = make(map[string]ModelUsage)
	}
	if s.usage.Daily == nil {
		s.usage.Daily = make(map[string]ModelUsage)
	}
	return s, nil
}

// RecordUsage adds one request's token counts and rewrites the file.
func (s *UsageStore) RecordUsage(modelID string, promptTokens, completionTokens int) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.usage.TotalPromptTokens += promptTokens
	s.usage.TotalCompletionTokens += completionTokens
	s.usage.TotalRequests++

	m := s.usage.PerModel[modelID]
	m.PromptTokens += promptTokens
	m.CompletionTokens += completionTokens
	m.Requests++
	s.usage.PerModel[modelID] = m

	day := time.Now().UTC().Format("2006-01-02")
	d := s.usage.Daily[day]
	d.PromptTokens += promptTokens
	d.CompletionTokens += completionTokens
	d.Requests++
	s.usage.Daily[day] = d

	return s.flushLocked()
}

func (s *UsageStore) flushLocked() error {
	raw, err := json.MarshalIndent(s.usage, "", "  ")
	if err != nil {
		return errors.Wrap(errors.CodeStore, "encoding usage", err)
	}
	tmp := s.path + ".tmp"
	if err := os.WriteFile(tmp, raw, 0o600); err != nil {
		return errors.Wrap(errors.CodeStore, "writing usage file", err)
	}
	if err := os.Rename(tmp, s.path); err != nil {
		return errors.Wrap(errors.CodeStore, "replacing usage file", err)
	}
	return nil
}

// Snapshot returns a copy of the current totals.
func (s *UsageStore) Snapshot() Usage {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := s.usage
	out.PerModel = make(map[string]ModelUsage, len(s.usage.PerModel))
	for k, v := range s.usage.PerModel {
		out.PerModel[k] = v
	}
	out.Daily = make(map[string]ModelUsage, len(s.usage.Daily))
	for k, v := range s.usage.Daily {
		out.Daily[k] = v
	}
	return out
}

// Summary renders the totals for interactive display.
func (u Usage) Summary() string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "Requests: %d\n", u.TotalRequests)
	fmt.Fprintf(&sb, "Prompt tokens: %d\n", u.TotalPromptTokens)
	fmt.Fprintf(&sb, "Completion tokens: %d\n", u.TotalCompletionTokens)
	if len(u.PerModel) > 0 {
		sb.WriteString("Per model:\n")
		ids := make([]string, 0, len(u.PerModel))
		for id := range u.PerModel {
			ids = append(ids, id)
		}
		sort.Strings(ids)
		for _, id := range ids {
			m := u.PerModel[id]
			fmt.Fprintf(&sb, "  %s: %d requests, %d prompt, %d completion\n",
				id, m.Requests, m.PromptTokens, m.CompletionTokens)
		}
	}
	return sb.String()
}
