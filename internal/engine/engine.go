// Package engine drives debate sessions between the two agents.
package engine

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/rhetorlabs/rhetor/internal/core"
	"github.com/rhetorlabs/rhetor/internal/prompt"
	"github.com/rhetorlabs/rhetor/internal/provider"
	"github.com/rhetorlabs/rhetor/internal/storage"
)

// Engine orchestrates debate sessions.
type Engine struct {
	storage  storage.Storage
	registry *provider.Registry
}

// New creates a new debate engine.
func New(store storage.Storage, registry *provider.Registry) *Engine {
	return &Engine{
		storage:  store,
		registry: registry,
	}
}

// TurnCallback is called after each argument is produced.
type TurnCallback func(arg *core.Argument, session *core.Session)

// CreateSession validates the configuration and persists a pending session.
func (e *Engine) CreateSession(ctx context.Context, config core.NewSessionConfig) (*core.Session, error) {
	slog.Debug("Creating new session", "topic", config.Topic)

	if config.Topic == "" {
		return nil, fmt.Errorf("topic is required")
	}

	if config.ScientistProvider == "" {
		return nil, fmt.Errorf("scientist provider is required")
	}
	provA, err := e.registry.Get(config.ScientistProvider)
	if err != nil {
		return nil, fmt.Errorf("invalid provider for scientist: %w", err)
	}
	if !provA.Available() {
		return nil, fmt.Errorf("provider %s is not available (missing API key)", config.ScientistProvider)
	}

	if config.PhilosopherProvider == "" {
		return nil, fmt.Errorf("philosopher provider is required")
	}
	provB, err := e.registry.Get(config.PhilosopherProvider)
	if err != nil {
		return nil, fmt.Errorf("invalid provider for philosopher: %w", err)
	}
	if !provB.Available() {
		return nil, fmt.Errorf("provider %s is not available (missing API key)", config.PhilosopherProvider)
	}

	rounds := config.Rounds
	if rounds <= 0 {
		rounds = 8
	}

	firstSpeaker := config.FirstSpeaker
	if firstSpeaker == "" {
		firstSpeaker = core.RoleScientist
	}
	if !firstSpeaker.Valid() {
		return nil, fmt.Errorf("invalid first speaker: %s", firstSpeaker)
	}

	now := time.Now()
	session := &core.Session{
		ID:    core.GenerateID(),
		Topic: config.Topic,
		Scientist: core.Agent{
			Role:     core.RoleScientist,
			Provider: config.ScientistProvider,
			Model:    config.ScientistModel,
		},
		Philosopher: core.Agent{
			Role:     core.RolePhilosopher,
			Provider: config.PhilosopherProvider,
			Model:    config.PhilosopherModel,
		},
		MemorySummary:  fmt.Sprintf("Debate Topic: %s", config.Topic),
		CurrentRound:   1,
		CurrentSpeaker: firstSpeaker,
		Rounds:         rounds,
		Status:         core.StatusPending,
		CreatedAt:      now,
		UpdatedAt:      now,
	}

	if err := e.storage.CreateSession(session); err != nil {
		return nil, fmt.Errorf("failed to create session: %w", err)
	}

	return session, nil
}

// RunSession creates a session from the configuration and runs it to
// completion: alternating argument rounds, a summary update after every
// argument, and a final judging pass. Any provider failure aborts the
// session and propagates to the caller.
func (e *Engine) RunSession(ctx context.Context, config core.NewSessionConfig, callback TurnCallback) (*core.Session, error) {
	session, err := e.CreateSession(ctx, config)
	if err != nil {
		return nil, err
	}

	if err := e.Run(ctx, session, callback); err != nil {
		return session, err
	}

	return session, nil
}

// Run executes an existing session from its current round through judgment.
func (e *Engine) Run(ctx context.Context, session *core.Session, callback TurnCallback) error {
	session.Status = core.StatusInProgress
	if err := e.storage.UpdateSession(session); err != nil {
		return fmt.Errorf("failed to update session status: %w", err)
	}

	for session.CurrentRound <= session.Rounds {
		select {
		case <-ctx.Done():
			return e.fail(session, ctx.Err())
		default:
		}

		arg, err := e.executeTurn(ctx, session)
		if err != nil {
			return e.fail(session, err)
		}

		if callback != nil {
			callback(arg, session)
		}

		if err := e.updateSummary(ctx, session, arg); err != nil {
			return e.fail(session, err)
		}

		session.CurrentSpeaker = session.CurrentSpeaker.Opponent()
		session.CurrentRound++

		if err := e.storage.UpdateSession(session); err != nil {
			return e.fail(session, err)
		}
	}

	verdict, err := e.judge(ctx, session)
	if err != nil {
		return e.fail(session, err)
	}

	now := time.Now()
	session.Winner = verdict.Winner
	session.JudgmentReason = verdict.Reason
	session.FullSummary = verdict.Summary
	session.Status = core.StatusCompleted
	session.CompletedAt = &now

	if err := e.storage.UpdateSession(session); err != nil {
		return fmt.Errorf("failed to update session: %w", err)
	}

	slog.Info("Judgment complete", "session_id", session.ID, "winner", session.Winner)
	return nil
}

// executeTurn generates and records the current speaker's argument.
func (e *Engine) executeTurn(ctx context.Context, session *core.Session) (*core.Argument, error) {
	role := session.CurrentSpeaker
	agent := session.AgentFor(role)

	prov, err := e.registry.Get(agent.Provider)
	if err != nil {
		return nil, err
	}

	p, err := prompt.Argument(session, role)
	if err != nil {
		return nil, fmt.Errorf("failed to build argument prompt: %w", err)
	}

	content, err := generate(ctx, prov, p, agent.Model)
	if err != nil {
		return nil, fmt.Errorf("failed to generate argument for %s: %w", role, err)
	}

	arg := &core.Argument{
		ID:        core.GenerateID(),
		SessionID: session.ID,
		Agent:     role,
		RoundNum:  session.CurrentRound,
		Content:   content,
		CreatedAt: time.Now(),
	}

	if err := e.storage.AddArgument(arg); err != nil {
		return nil, fmt.Errorf("failed to save argument: %w", err)
	}
	session.Arguments = append(session.Arguments, arg)

	slog.Info("Argument recorded", "session_id", session.ID, "round", arg.RoundNum, "agent", arg.Agent)
	return arg, nil
}

// updateSummary folds the newest argument into the running memory summary.
func (e *Engine) updateSummary(ctx context.Context, session *core.Session, arg *core.Argument) error {
	p, err := prompt.SummaryUpdate(session, arg)
	if err != nil {
		return fmt.Errorf("failed to build summary prompt: %w", err)
	}

	agent := session.Scientist
	prov, err := e.registry.Get(agent.Provider)
	if err != nil {
		return err
	}

	updated, err := generate(ctx, prov, p, agent.Model)
	if err != nil {
		return fmt.Errorf("failed to update summary after round %d: %w", arg.RoundNum, err)
	}

	session.MemorySummary = updated
	slog.Debug("Memory summary updated", "session_id", session.ID, "round", arg.RoundNum)
	return nil
}

// judge runs the final judging pass over the full transcript and summary.
func (e *Engine) judge(ctx context.Context, session *core.Session) (*core.Verdict, error) {
	p, err := prompt.Judgment(session)
	if err != nil {
		return nil, fmt.Errorf("failed to build judgment prompt: %w", err)
	}

	agent := session.Scientist
	prov, err := e.registry.Get(agent.Provider)
	if err != nil {
		return nil, err
	}

	response, err := generate(ctx, prov, p, agent.Model)
	if err != nil {
		return nil, fmt.Errorf("failed to obtain judgment: %w", err)
	}

	verdict, err := prompt.ParseVerdict(response)
	if err != nil {
		return nil, err
	}

	return verdict, nil
}

// fail marks the session failed and propagates the original error.
func (e *Engine) fail(session *core.Session, cause error) error {
	session.Status = core.StatusFailed
	if err := e.storage.UpdateSession(session); err != nil {
		slog.Error("Failed to mark session failed", "session_id", session.ID, "error", err)
	}
	slog.Error("Session aborted", "session_id", session.ID, "error", cause)
	return cause
}

func generate(ctx context.Context, prov provider.Provider, p, model string) (string, error) {
	if model != "" {
		return prov.GenerateWithModel(ctx, p, model)
	}
	return prov.Generate(ctx, p)
}

// GetSession retrieves a session with its arguments.
func (e *Engine) GetSession(id string) (*core.Session, error) {
	return e.storage.GetSession(id)
}

// ListSessions returns a list of sessions, newest first.
func (e *Engine) ListSessions(limit, offset int) ([]*core.SessionSummary, error) {
	if limit <= 0 {
		limit = 20
	}
	return e.storage.ListSessions(limit, offset)
}

// DeleteSession deletes a session.
func (e *Engine) DeleteSession(id string) error {
	return e.storage.DeleteSession(id)
}
