package persona

import (
	"errors"
	"fmt"
	"strings"
)

// Persona selects the system prompt placed in front of every model query.
type Persona string

const (
	Friendly     Persona = "Friendly"
	Serious      Persona = "Serious"
	Coach        Persona = "Coach"
	Motivational Persona = "Motivational"
)

// Default is used when the caller has not picked a persona.
const Default = Friendly

// ErrUnknown is returned by Parse for names outside the closed set.
var ErrUnknown = errors.New("unknown persona")

var systemPrompts = map[Persona]string{
	Friendly:     "You're a warm and engaging conversational partner.",
	Serious:      "You're calm, professional, and concise.",
	Coach:        "You're a fitness and life coach who motivates with clarity.",
	Motivational: "You're inspiring, energetic, and focused on positivity.",
}

// All lists the personas in display order.
func All() []Persona {
	return []Persona{Friendly, Serious, Coach, Motivational}
}

// Parse resolves a persona name case-insensitively. An empty name yields Default.
func Parse(name string) (Persona, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return Default, nil
	}
	for _, p := range All() {
		if strings.EqualFold(string(p), name) {
			return p, nil
		}
	}
	return "", fmt.Errorf("%w: %q", ErrUnknown, name)
}

// SystemPrompt returns the fixed prompt for p. It panics for values that did not
// come from this package; callers validate external input with Parse.
func (p Persona) SystemPrompt() string {
	prompt, ok := systemPrompts[p]
	if !ok {
		panic(fmt.Sprintf("persona: no system prompt for %q", string(p)))
	}
	return prompt
}

// Profile is the public description served to clients.
type Profile struct {
	Name         Persona `json:"name"`
	SystemPrompt string  `json:"systemPrompt"`
	Default      bool    `json:"default,omitempty"`
}

// Profiles returns every persona with its prompt.
func Profiles() []Profile {
	items := make([]Profile, 0, len(systemPrompts))
	for _, p := range All() {
		items = append(items, Profile{Name: p, SystemPrompt: p.SystemPrompt(), Default: p == Default})
	}
	return items
}
