package provider

import (
	"context"
	"fmt"
	"strings"
	"sync"
)

// Mock is a provider that generates deterministic responses. It is used by
// the CLI for dry runs and by tests.
type Mock struct {
	cfg Config

	mu    sync.Mutex
	calls int
}

// NewMock creates a new mock provider.
func NewMock(cfg Config) *Mock {
	return &Mock{cfg: cfg}
}

// Name returns the provider identifier.
func (p *Mock) Name() string { return "mock" }

// DisplayName returns the human-friendly name.
func (p *Mock) DisplayName() string { return "Mock (Simulated)" }

// Available always returns true for the mock provider.
func (p *Mock) Available() bool { return true }

// Generate returns a simulated response. Judge prompts get a well-formed
// verdict so a full mock session can complete.
func (p *Mock) Generate(ctx context.Context, prompt string) (string, error) {
	select {
	case <-ctx.Done():
		return "", ctx.Err()
	default:
	}

	if strings.Contains(prompt, "WINNER:") {
		return "SUMMARY: A simulated debate covering both perspectives.\n" +
			"WINNER: Scientist\n" +
			"REASON: The simulated scientist presented marginally more structured points.", nil
	}

	if strings.Contains(prompt, "memory summary") {
		return "The debate continues with both sides presenting simulated positions.", nil
	}

	p.mu.Lock()
	p.calls++
	n := p.calls
	p.mu.Unlock()

	return fmt.Sprintf("Simulated argument %d: position restated with a new emphasis.", n), nil
}

// GenerateWithModel returns a simulated response, ignoring the model.
func (p *Mock) GenerateWithModel(ctx context.Context, prompt, model string) (string, error) {
	return p.Generate(ctx, prompt)
}
