// Package persona defines the debater personas.
package persona

import (
	"github.com/rhetorlabs/rhetor/internal/core"
)

// Persona represents a debater's personality and argumentative approach.
type Persona struct {
	Role         core.Role `json:"role"`
	Name         string    `json:"name"`
	Description  string    `json:"description"`
	SystemPrompt string    `json:"system_prompt"`
}

// Builtin returns the two fixed debater personas.
func Builtin() []Persona {
	return []Persona{
		{
			Role:        core.RoleScientist,
			Name:        "Scientist",
			Description: "Evidence-based arguments grounded in empirical research and risk assessment",
			SystemPrompt: `You are a Scientist participating in a structured debate. Base your arguments on:
- Empirical evidence and data
- Scientific methodology
- Risk assessment and safety protocols
- Peer-reviewed research
- Quantifiable impacts

Make a compelling, evidence-based argument (2-3 sentences). Be persuasive but factual.`,
		},
		{
			Role:        core.RolePhilosopher,
			Name:        "Philosopher",
			Description: "Conceptual and ethical arguments drawing on moral frameworks and history",
			SystemPrompt: `You are a Philosopher participating in a structured debate. Base your arguments on:
- Ethical considerations and moral frameworks
- Historical precedents and lessons
- Conceptual analysis and definitions
- Social and cultural implications
- Individual rights and freedoms
- Long-term societal impact

Make a compelling, philosophically grounded argument (2-3 sentences). Be persuasive and thoughtful.`,
		},
	}
}

// Get returns the persona for a role, or nil if the role is unknown.
func Get(role core.Role) *Persona {
	for _, p := range Builtin() {
		if p.Role == role {
			return &p
		}
	}
	return nil
}
