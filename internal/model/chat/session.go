package chat

import "github.com/zhouzirui/pocket-coach/internal/model/persona"

// Session is per-client UI state. Each WebSocket connection and CLI run owns one.
type Session struct {
	Persona      persona.Persona
	StarterShown bool
}

// NewSession starts a session with the given persona and no starter used yet.
func NewSession(p persona.Persona) *Session {
	return &Session{Persona: p}
}

// ShowStarters reports whether the quick-start prompts should be offered:
// only for an empty log that this session has not started from yet.
func (s *Session) ShowStarters(logEmpty bool) bool {
	return logEmpty && !s.StarterShown
}

// Reset clears per-session progress after the log was wiped.
func (s *Session) Reset() {
	s.StarterShown = false
}
