// Package core contains the core domain types for rhetor.
package core

import (
	"time"
)

// SessionStatus represents the current status of a debate session.
type SessionStatus string

const (
	StatusPending    SessionStatus = "pending"
	StatusInProgress SessionStatus = "in_progress"
	StatusCompleted  SessionStatus = "completed"
	StatusFailed     SessionStatus = "failed"
)

// Role identifies one of the two fixed debaters.
type Role string

const (
	RoleScientist   Role = "Scientist"
	RolePhilosopher Role = "Philosopher"
)

// Roles returns the two participating roles in speaking order.
func Roles() [2]Role {
	return [2]Role{RoleScientist, RolePhilosopher}
}

// Valid reports whether r is one of the two participating roles.
func (r Role) Valid() bool {
	return r == RoleScientist || r == RolePhilosopher
}

// Opponent returns the other role.
func (r Role) Opponent() Role {
	if r == RoleScientist {
		return RolePhilosopher
	}
	return RoleScientist
}

// Agent binds a role to the provider and model that speak for it.
type Agent struct {
	Role     Role   `json:"role"`
	Provider string `json:"provider"`
	Model    string `json:"model,omitempty"`
}

// Argument represents a single argument in the debate.
// Immutable once created; owned by its session's ordered sequence.
type Argument struct {
	ID        string    `json:"id"`
	SessionID string    `json:"session_id"`
	Agent     Role      `json:"agent"`
	RoundNum  int       `json:"round_num"` // 1-based, unique, monotonically increasing
	Content   string    `json:"content"`
	CreatedAt time.Time `json:"created_at"`
}

// Session represents one debate session between the two agents.
type Session struct {
	ID             string        `json:"id"`
	Topic          string        `json:"topic"`
	Scientist      Agent         `json:"scientist"`
	Philosopher    Agent         `json:"philosopher"`
	Arguments      []*Argument   `json:"arguments,omitempty"`
	MemorySummary  string        `json:"memory_summary"`
	CurrentRound   int           `json:"current_round"`
	CurrentSpeaker Role          `json:"current_speaker"`
	Rounds         int           `json:"rounds"` // total arguments to produce
	Status         SessionStatus `json:"status"`
	Winner         Role          `json:"winner,omitempty"`
	JudgmentReason string        `json:"judgment_reason,omitempty"`
	FullSummary    string        `json:"full_summary,omitempty"`
	CreatedAt      time.Time     `json:"created_at"`
	UpdatedAt      time.Time     `json:"updated_at"`
	CompletedAt    *time.Time    `json:"completed_at,omitempty"`
}

// AgentFor returns the agent speaking for the given role.
func (s *Session) AgentFor(role Role) Agent {
	if role == RolePhilosopher {
		return s.Philosopher
	}
	return s.Scientist
}

// Judged reports whether the session has a winner and reason set.
func (s *Session) Judged() bool {
	return s.Winner != "" && s.JudgmentReason != ""
}

// Verdict is the outcome of the judging pass.
type Verdict struct {
	Summary string `json:"summary"`
	Winner  Role   `json:"winner"`
	Reason  string `json:"reason"`
}

// SessionSummary is a lightweight representation for listing sessions.
type SessionSummary struct {
	ID            string        `json:"id"`
	Topic         string        `json:"topic"`
	Status        SessionStatus `json:"status"`
	Winner        Role          `json:"winner,omitempty"`
	ArgumentCount int           `json:"argument_count"`
	CreatedAt     time.Time     `json:"created_at"`
}

// NewSessionConfig holds the configuration for creating a new session.
type NewSessionConfig struct {
	Topic               string `json:"topic"`
	ScientistProvider   string `json:"scientist_provider"`
	ScientistModel      string `json:"scientist_model"`
	PhilosopherProvider string `json:"philosopher_provider"`
	PhilosopherModel    string `json:"philosopher_model"`
	Rounds              int    `json:"rounds"`
	FirstSpeaker        Role   `json:"first_speaker"`
}
