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

package config

import (
	"encoding/json"
	"fmt"
	"os"
)

// Config represents the gateway configuration.
type Config struct {
	ActiveModelID      string                  `json:"active_model_id,omitempty"`
	Models             []Model                 `json:"models"`
	SystemPrompt       string                  `json:"system_prompt,omitempty"`
	Skills             map[string]SkillSetting `json:"skills,omitempty"`
	Executor           Executor                `json:"executor,omitempty"`
	Sandbox            Sandbox                 `json:"sandbox,omitempty"`
	Search             Search                  `json:"search,omitempty"`
	MaxIterations      int                     `json:"max_iterations,omitempty"`
	DataDir            string                  `json:"data_dir,omitempty"`
	HistoryMaxMessages int                     `json:"history_max_messages,omitempty"`
	CommandHistoryFile string                  `json:"command_history_file,omitempty"`
}

// Model describes one configured upstream model.
type Model struct {
	ID           string   `json:"id"`
	Name         string   `json:"name,omitempty"`
	Provider     string   `json:"provider,omitempty"`
	ModelID      string   `json:"model_id"`
	APIKeySource string   `json:"api_key_source,omitempty"`
	APIKeyEnv    string   `json:"api_key_env,omitempty"`
	APIKeyValue  string   `json:"api_key_value,omitempty"`
	BaseURL      string   `json:"base_url,omitempty"`
	MaxTokens    int      `json:"max_tokens,omitempty"`
	Temperature  *float32 `json:"temperature,omitempty"`
}

// SkillSetting toggles a single skill.
type SkillSetting struct {
	Enabled bool `json:"enabled"`
}

// Executor configures resource ceilings for sandboxed code execution.
type Executor struct {
	TimeoutSeconds int `json:"timeout_seconds,omitempty"`
	MemoryLimitMB  int `json:"memory_limit_mb,omitempty"`
	FDLimit        int `json:"fd_limit,omitempty"`
}

// Sandbox configures optional container isolation for the executor worker.
type Sandbox struct {
	Enabled       bool     `json:"enabled,omitempty"`
	PythonPath    string   `json:"python_path,omitempty"`
	ReadOnlyPaths []string `json:"readonly_paths,omitempty"`
	MaskedPaths   []string `json:"masked_paths,omitempty"`
	NonRootUser   bool     `json:"non_root_user,omitempty"`
}

// Search configures the web lookup skill.
type Search struct {
	MaxResults int    `json:"max_results,omitempty"`
	BaseURL    string `json:"base_url,omitempty"`
}

const (
	defaultMaxIterations      = 10
	defaultHistoryMax         = 100
	defaultDataDir            = "data"
	defaultCommandHistoryFile = ".openclaw_history"
	defaultTimeoutSeconds     = 5
	defaultMemoryLimitMB      = 50
	defaultFDLimit            = 32
	defaultSearchMaxResults   = 5
)

// DefaultConfig returns a config with default values.
func DefaultConfig() *Config {
	return &Config{
		ActiveModelID: "default_groq",
		Models: []Model{
			{
				ID:           "default_groq",
				Name:         "Llama3 70B",
				Provider:     "groq",
				ModelID:      "llama3-70b-8192",
				APIKeySource: "env",
				APIKeyEnv:    "GROQ_KEY",
				BaseURL:      "https://api.groq.com/openai/v1",
				MaxTokens:    1024,
			},
		},
		Skills: map[string]SkillSetting{
			"web_search":  {Enabled: true},
			"python_repl": {Enabled: true},
		},
		Executor: Executor{
			TimeoutSeconds: defaultTimeoutSeconds,
			MemoryLimitMB:  defaultMemoryLimitMB,
			FDLimit:        defaultFDLimit,
		},
		Search: Search{
			MaxResults: defaultSearchMaxResults,
		},
		MaxIterations:      defaultMaxIterations,
		DataDir:            defaultDataDir,
		HistoryMaxMessages: defaultHistoryMax,
		CommandHistoryFile: defaultCommandHistoryFile,
	}
}

// LoadConfig loads configuration from a JSON file, applies env overrides,
// and validates required fields. A missing file yields the defaults.
func LoadConfig(filepath string) (*Config, error) {
	config := DefaultConfig()

	if _, err := os.Stat(filepath); err == nil {
		data, err := os.ReadFile(filepath)
		if err != nil {
			return nil, err
		}
		if err := json.Unmarshal(data, config); err != nil {
			return nil, err
		}
	}

	if val := os.Getenv("OPENCLAW_DATA_DIR"); val != "" {
		config.DataDir = val
	}

	config.applyDefaults()

	if len(config.Models) == 0 {
		return nil, fmt.Errorf("at least one model is required (set models in %s)", filepath)
	}

	return config, nil
}

func (c *Config) applyDefaults() {
	if c.MaxIterations <= 0 {
		c.MaxIterations = defaultMaxIterations
	}
	if c.HistoryMaxMessages <= 0 {
		c.HistoryMaxMessages = defaultHistoryMax
	}
	if c.DataDir == "" {
		c.DataDir = defaultDataDir
	}
	if c.CommandHistoryFile == "" {
		c.CommandHistoryFile = defaultCommandHistoryFile
	}
	if c.Executor.TimeoutSeconds <= 0 {
		c.Executor.TimeoutSeconds = defaultTimeoutSeconds
	}
	if c.Executor.MemoryLimitMB <= 0 {
		c.Executor.MemoryLimitMB = defaultMemoryLimitMB
	}
	if c.Executor.FDLimit <= 0 {
		c.Executor.FDLimit = defaultFDLimit
	}
	if c.Search.MaxResults <= 0 {
		c.Search.MaxResults = defaultSearchMaxResults
	}
	if c.Skills == nil {
		c.Skills = map[string]SkillSetting{
			"web_search":  {Enabled: true},
			"python_repl": {Enabled: true},
		}
	}
}

// ActiveModel resolves a model by id, falling back to the configured active
// model and then the first entry.
func (c *Config) ActiveModel(id string) (Model, error) {
	if len(c.Models) == 0 {
		return Model{}, fmt.Errorf("no models configured")
	}
	if id == "" {
		id = c.ActiveModelID
	}
	if id != "" {
		for _, m := range c.Models {
			if m.ID == id || m.ModelID == id {
				return m, nil
			}
		}
	}
	return c.Models[0], nil
}

// APIKey resolves the API key for a model, honoring env indirection.
func (m Model) APIKey() string {
	if m.APIKeySource == "env" || (m.APIKeyValue == "" && m.APIKeyEnv != "") {
		return os.Getenv(m.APIKeyEnv)
	}
	return m.APIKeyValue
}

// SkillEnabled reports whether a skill is switched on in the config.
func (c *Config) SkillEnabled(id string) bool {
	setting, ok := c.Skills[id]
	if !ok {
		return false
	}
	return setting.Enabled
}

// ValidationWarning represents a non-fatal configuration issue.
type ValidationWarning struct {
	Field   string
	Message string
}

// Validate checks the configuration for common issues and returns warnings.
func (c *Config) Validate() []ValidationWarning {
	var warnings []ValidationWarning

	for _, m := range c.Models {
		if m.Temperature != nil {
			temp := *m.Temperature
			if temp < 0 || temp > 2 {
				warnings = append(warnings, ValidationWarning{
					Field:   "models.temperature",
					Message: fmt.Sprintf("temperature %.2f for model %q is outside recommended range [0, 2]", temp, m.ID),
				})
			}
		}
		if m.MaxTokens < 0 {
			warnings = append(warnings, ValidationWarning{
				Field:   "models.max_tokens",
				Message: fmt.Sprintf("max_tokens %d for model %q must be positive", m.MaxTokens, m.ID),
			})
		}
		if m.APIKey() == "" {
			warnings = append(warnings, ValidationWarning{
				Field:   "models.api_key",
				Message: fmt.Sprintf("model %q has no API key (env %q is empty)", m.ID, m.APIKeyEnv),
			})
		}
	}

	if c.ActiveModelID != "" {
		found := false
		for _, m := range c.Models {
			if m.ID == c.ActiveModelID {
				found = true
				break
			}
		}
		if !found {
			warnings = append(warnings, ValidationWarning{
				Field:   "active_model_id",
				Message: fmt.Sprintf("active model %q is not in the models list", c.ActiveModelID),
			})
		}
	}

	if c.Executor.TimeoutSeconds > 60 {
		warnings = append(warnings, ValidationWarning{
			Field:   "executor.timeout_seconds",
			Message: fmt.Sprintf("timeout %d s is unusually long for untrusted code", c.Executor.TimeoutSeconds),
		})
	}

	for id := range c.Skills {
		if id != "web_search" && id != "python_repl" {
			warnings = append(warnings, ValidationWarning{
				Field:   "skills",
				Message: fmt.Sprintf("skill %q is not a known built-in", id),
			})
		}
	}

	return warnings
}
