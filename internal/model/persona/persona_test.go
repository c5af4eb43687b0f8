package persona

import (
	"errors"
	"testing"
)

func TestParseIsCaseInsensitive(t *testing.T) {
	p, err := Parse("  coach ")
	if err != nil {
		t.Fatalf("Parse err: %v", err)
	}
	if p != Coach {
		t.Fatalf("expected Coach, got %s", p)
	}
}

func TestParseEmptyYieldsDefault(t *testing.T) {
	p, err := Parse("")
	if err != nil {
		t.Fatalf("Parse err: %v", err)
	}
	if p != Friendly {
		t.Fatalf("expected Friendly default, got %s", p)
	}
}

func TestParseUnknown(t *testing.T) {
	if _, err := Parse("Pirate"); !errors.Is(err, ErrUnknown) {
		t.Fatalf("expected ErrUnknown, got %v", err)
	}
}

func TestEveryPersonaHasPrompt(t *testing.T) {
	for _, p := range All() {
		if p.SystemPrompt() == "" {
			t.Fatalf("persona %s has empty prompt", p)
		}
	}
	if got := Serious.SystemPrompt(); got != "You're calm, professional, and concise." {
		t.Fatalf("unexpected Serious prompt: %q", got)
	}
}

func TestSystemPromptPanicsForUnknown(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Fatal("expected panic for unknown persona")
		}
	}()
	_ = Persona("Pirate").SystemPrompt()
}

func TestProfilesMarkDefault(t *testing.T) {
	profiles := Profiles()
	if len(profiles) != 4 {
		t.Fatalf("expected 4 profiles, got %d", len(profiles))
	}
	if profiles[0].Name != Friendly || !profiles[0].Default {
		t.Fatalf("expected Friendly first and default, got %+v", profiles[0])
	}
	for _, p := range profiles[1:] {
		if p.Default {
			t.Fatalf("unexpected default on %s", p.Name)
		}
	}
}
