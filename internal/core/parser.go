package core

import (
	"fmt"
	"strings"
)

// ParseAgentSpec parses an agent specification string.
// Format: provider[/model]
//
// Examples:
//   - "gemini" -> {Provider: "gemini", Model: ""}
//   - "gemini/gemini-2.0-flash" -> {Provider: "gemini", Model: "gemini-2.0-flash"}
//   - "openai/gpt-4o" -> {Provider: "openai", Model: "gpt-4o"}
func ParseAgentSpec(role Role, spec string) (Agent, error) {
	if spec == "" {
		return Agent{}, fmt.Errorf("agent spec cannot be empty")
	}

	parts := strings.SplitN(spec, "/", 2)
	agent := Agent{
		Role:     role,
		Provider: strings.TrimSpace(parts[0]),
	}

	if agent.Provider == "" {
		return Agent{}, fmt.Errorf("provider cannot be empty in spec: %s", spec)
	}

	if len(parts) == 2 {
		agent.Model = strings.TrimSpace(parts[1])
	}

	return agent, nil
}

// ParseRole parses a role name, case-insensitively.
func ParseRole(s string) (Role, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "scientist":
		return RoleScientist, nil
	case "philosopher":
		return RolePhilosopher, nil
	default:
		return "", fmt.Errorf("unknown role: %s", s)
	}
}
