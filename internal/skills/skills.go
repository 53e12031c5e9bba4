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
	"reflect"
	"sort"
	"sync"

	"github.com/567-labs/instructor-go/pkg/instructor"
)

// HandlerFunc executes a skill against raw input text and returns the
// observation to feed back into the conversation.
type HandlerFunc func(ctx context.Context, input string) (string, error)

// Skill represents a callable capability.
type Skill struct {
	ID          string                 `json:"id"`
	Name        string                 `json:"name"`
	Description string                 `json:"description"`
	Parameters  map[string]interface{} `json:"parameters,omitempty"`
	Handler     HandlerFunc            `json:"-"`
}

// Registry maps skill ids to handlers with per-skill enable flags.
// Safe for concurrent use.
type Registry struct {
	mu      sync.RWMutex
	skills  map[string]*Skill
	enabled map[string]bool
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{
		skills:  make(map[string]*Skill),
		enabled: make(map[string]bool),
	}
}

// Register adds a skill. New skills default to disabled until policy
// enables them.
func (r *Registry) Register(skill *Skill) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.skills[skill.ID] = skill
	if _, ok := r.enabled[skill.ID]; !ok {
		r.enabled[skill.ID] = false
	}
}

// Resolve returns the skill for a name, if registered.
func (r *Registry) Resolve(name string) (*Skill, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	skill, ok := r.skills[name]
	return skill, ok
}

// Enabled reports whether a skill is switched on.
func (r *Registry) Enabled(name string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.enabled[name]
}

// SetEnabled toggles a skill.
func (r *Registry) SetEnabled(name string, enabled bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.enabled[name] = enabled
}

// Names returns all registered skill ids, sorted.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	names := make([]string, 0, len(r.skills))
	for name := range r.skills {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// DisabledObservation is the policy-denial text surfaced to the model when
// it requests a skill that resolves but is switched off.
func DisabledObservation(name string) string {
	return fmt.Sprintf("Tool '%s' is disabled by policy.", name)
}

// UnknownObservation is surfaced when the model requests a skill that does
// not exist.
func (r *Registry) UnknownObservation(name string) string {
	return fmt.Sprintf("Error: tool '%s' not found. Available tools: %v", name, r.Names())
}

// Invoke runs a skill and returns the observation text. Policy denials,
// unknown tools and handler failures are all encoded as ordinary
// observations so the conversation loop never has to special-case them.
func (r *Registry) Invoke(ctx context.Context, name, input string) string {
	skill, ok := r.Resolve(name)
	if !ok {
		return r.UnknownObservation(name)
	}
	if !r.Enabled(name) {
		return DisabledObservation(name)
	}

	observation, err := skill.Handler(ctx, input)
	if err != nil {
		return fmt.Sprintf("Error: %v", err)
	}
	return observation
}

// Definitions exports the skill catalog with parameter schemas, for
// clients that enumerate capabilities.
func (r *Registry) Definitions() []Skill {
	r.mu.RLock()
	defer r.mu.RUnlock()
	defs := make([]Skill, 0, len(r.skills))
	for _, skill := range r.skills {
		defs = append(defs, Skill{
			ID:          skill.ID,
			Name:        skill.Name,
			Description: skill.Description,
			Parameters:  skill.Parameters,
		})
	}
	sort.Slice(defs, func(i, j int) bool { return defs[i].ID < defs[j].ID })
	return defs
}

// parametersFor derives the JSON-schema parameter map for a skill's
// argument struct from its jsonschema field tags. It runs once per skill
// at registration, so a malformed argument type is a programming error
// and panics.
func parametersFor[T any]() map[string]interface{} {
	var args T
	t := reflect.TypeOf(args)
	for t != nil && t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	if t == nil {
		panic("skills: schema requested for nil type")
	}

	schema, err := instructor.NewSchema(t)
	if err != nil {
		panic(fmt.Sprintf("skills: schema for %s: %v", t.Name(), err))
	}
	for _, fn := range schema.Functions {
		if fn.Name != t.Name() {
			continue
		}
		raw, err := json.Marshal(fn.Parameters)
		if err != nil {
			panic(fmt.Sprintf("skills: encode schema for %s: %v", t.Name(), err))
		}
		var params map[string]interface{}
		if err := json.Unmarshal(raw, &params); err != nil {
			panic(fmt.Sprintf("skills: decode schema for %s: %v", t.Name(), err))
		}
		return params
	}
	panic(fmt.Sprintf("skills: no schema definition for %s", t.Name()))
}
