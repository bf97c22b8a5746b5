package persona

import (
	"strings"
	"testing"

	"github.com/rhetorlabs/rhetor/internal/core"
)

func TestBuiltin(t *testing.T) {
	personas := Builtin()
	if len(personas) != 2 {
		t.Fatalf("wrong persona count: got %d, want 2", len(personas))
	}

	for _, p := range personas {
		if p.Name == "" || p.Description == "" || p.SystemPrompt == "" {
			t.Errorf("persona %s has empty fields", p.Role)
		}
		if !p.Role.Valid() {
			t.Errorf("persona has invalid role: %s", p.Role)
		}
	}
}

func TestGet(t *testing.T) {
	t.Run("Scientist", func(t *testing.T) {
		p := Get(core.RoleScientist)
		if p == nil {
			t.Fatal("scientist persona not found")
		}
		if !strings.Contains(p.SystemPrompt, "Empirical evidence") {
			t.Error("scientist prompt missing empirical grounding")
		}
	})

	t.Run("Philosopher", func(t *testing.T) {
		p := Get(core.RolePhilosopher)
		if p == nil {
			t.Fatal("philosopher persona not found")
		}
		if !strings.Contains(p.SystemPrompt, "Ethical considerations") {
			t.Error("philosopher prompt missing ethical grounding")
		}
	})

	t.Run("Unknown", func(t *testing.T) {
		if Get(core.Role("Economist")) != nil {
			t.Error("expected nil for unknown role")
		}
	})
}
