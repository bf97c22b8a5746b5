package engine

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/rhetorlabs/rhetor/internal/core"
	"github.com/rhetorlabs/rhetor/internal/provider"
	"github.com/rhetorlabs/rhetor/internal/storage"
)

// scriptedProvider answers argument, summary, and judge prompts with
// deterministic, numbered responses and records every prompt it sees.
type scriptedProvider struct {
	mu      sync.Mutex
	prompts []string

	argCalls int
	sumCalls int

	failOnArg     int // fail the Nth argument call, 0 disables
	failOnSummary int // fail the Nth summary call, 0 disables
	judgeResponse string
}

func (m *scriptedProvider) Name() string        { return "mock" }
func (m *scriptedProvider) DisplayName() string { return "mock" }
func (m *scriptedProvider) Available() bool     { return true }

func (m *scriptedProvider) Generate(ctx context.Context, prompt string) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.prompts = append(m.prompts, prompt)

	switch {
	case strings.Contains(prompt, "WINNER:"):
		if m.judgeResponse != "" {
			return m.judgeResponse, nil
		}
		return "SUMMARY: Both sides argued well.\nWINNER: Philosopher\nREASON: Sharper engagement with counterpoints.", nil

	case strings.HasPrefix(prompt, "Update the debate memory summary"):
		m.sumCalls++
		if m.failOnSummary == m.sumCalls {
			return "", fmt.Errorf("summary backend unavailable")
		}
		return fmt.Sprintf("summary v%d", m.sumCalls), nil

	default:
		m.argCalls++
		if m.failOnArg == m.argCalls {
			return "", fmt.Errorf("argument backend unavailable")
		}
		return fmt.Sprintf("argument %d", m.argCalls), nil
	}
}

func (m *scriptedProvider) GenerateWithModel(ctx context.Context, prompt, model string) (string, error) {
	return m.Generate(ctx, prompt)
}

func setupTestEngine(t *testing.T, prov provider.Provider) (*Engine, func()) {
	tmpDir, err := os.MkdirTemp("", "rhetor-engine-test-*")
	if err != nil {
		t.Fatalf("failed to create temp dir: %v", err)
	}

	store, err := storage.NewSQLiteStorage(filepath.Join(tmpDir, "test.db"))
	if err != nil {
		os.RemoveAll(tmpDir)
		t.Fatalf("failed to create storage: %v", err)
	}

	if err := store.Initialize(); err != nil {
		store.Close()
		os.RemoveAll(tmpDir)
		t.Fatalf("failed to initialize storage: %v", err)
	}

	registry := provider.NewRegistry()
	registry.Register(prov)

	eng := New(store, registry)

	cleanup := func() {
		store.Close()
		os.RemoveAll(tmpDir)
	}

	return eng, cleanup
}

func mockSessionConfig(topic string) core.NewSessionConfig {
	return core.NewSessionConfig{
		Topic:               topic,
		ScientistProvider:   "mock",
		PhilosopherProvider: "mock",
	}
}

func TestCreateSession(t *testing.T) {
	eng, cleanup := setupTestEngine(t, &scriptedProvider{})
	defer cleanup()

	ctx := context.Background()

	t.Run("ValidConfig", func(t *testing.T) {
		session, err := eng.CreateSession(ctx, mockSessionConfig("Should AI be regulated?"))
		if err != nil {
			t.Fatalf("failed to create session: %v", err)
		}

		if session.ID == "" {
			t.Error("session ID is empty")
		}
		if session.Status != core.StatusPending {
			t.Errorf("wrong status: got %s", session.Status)
		}
		if session.Rounds != 8 {
			t.Errorf("default rounds wrong: got %d, want 8", session.Rounds)
		}
		if session.CurrentRound != 1 {
			t.Errorf("wrong starting round: got %d", session.CurrentRound)
		}
		if session.CurrentSpeaker != core.RoleScientist {
			t.Errorf("wrong first speaker: got %s", session.CurrentSpeaker)
		}
		if session.MemorySummary != "Debate Topic: Should AI be regulated?" {
			t.Errorf("wrong seeded summary: got %q", session.MemorySummary)
		}
	})

	t.Run("MissingTopic", func(t *testing.T) {
		_, err := eng.CreateSession(ctx, mockSessionConfig(""))
		if err == nil {
			t.Error("expected error for missing topic")
		}
	})

	t.Run("UnknownProvider", func(t *testing.T) {
		config := mockSessionConfig("Test")
		config.ScientistProvider = "nonexistent"
		_, err := eng.CreateSession(ctx, config)
		if err == nil {
			t.Error("expected error for unknown provider")
		}
	})

	t.Run("InvalidFirstSpeaker", func(t *testing.T) {
		config := mockSessionConfig("Test")
		config.FirstSpeaker = core.Role("Economist")
		_, err := eng.CreateSession(ctx, config)
		if err == nil {
			t.Error("expected error for invalid first speaker")
		}
	})

	t.Run("CustomRoundsAndSpeaker", func(t *testing.T) {
		config := mockSessionConfig("Test")
		config.Rounds = 4
		config.FirstSpeaker = core.RolePhilosopher

		session, err := eng.CreateSession(ctx, config)
		if err != nil {
			t.Fatalf("failed: %v", err)
		}
		if session.Rounds != 4 {
			t.Errorf("wrong rounds: got %d, want 4", session.Rounds)
		}
		if session.CurrentSpeaker != core.RolePhilosopher {
			t.Errorf("wrong first speaker: got %s", session.CurrentSpeaker)
		}
	})
}

func TestRunSession(t *testing.T) {
	prov := &scriptedProvider{}
	eng, cleanup := setupTestEngine(t, prov)
	defer cleanup()

	ctx := context.Background()

	var seen []*core.Argument
	callback := func(arg *core.Argument, s *core.Session) {
		seen = append(seen, arg)
	}

	session, err := eng.RunSession(ctx, mockSessionConfig("Test topic"), callback)
	if err != nil {
		t.Fatalf("failed: %v", err)
	}

	if len(session.Arguments) != 8 {
		t.Fatalf("wrong argument count: got %d, want 8", len(session.Arguments))
	}
	if len(seen) != 8 {
		t.Errorf("wrong callback count: got %d, want 8", len(seen))
	}

	for i, arg := range session.Arguments {
		if arg.RoundNum != i+1 {
			t.Errorf("argument %d has round %d, want %d", i, arg.RoundNum, i+1)
		}

		want := core.RoleScientist
		if i%2 == 1 {
			want = core.RolePhilosopher
		}
		if arg.Agent != want {
			t.Errorf("argument %d spoken by %s, want %s", i, arg.Agent, want)
		}
	}

	if session.Status != core.StatusCompleted {
		t.Errorf("wrong status: got %s, want completed", session.Status)
	}
	if session.Winner != core.RolePhilosopher {
		t.Errorf("wrong winner: got %s", session.Winner)
	}
	if session.JudgmentReason == "" {
		t.Error("judgment reason is empty")
	}
	if session.FullSummary == "" {
		t.Error("full summary is empty")
	}
	if session.CompletedAt == nil {
		t.Error("completed_at not set")
	}

	// Stored state matches in-memory state.
	stored, err := eng.GetSession(session.ID)
	if err != nil {
		t.Fatalf("failed to load session: %v", err)
	}
	if stored.Status != core.StatusCompleted {
		t.Errorf("stored status wrong: got %s", stored.Status)
	}
	if len(stored.Arguments) != 8 {
		t.Errorf("stored argument count wrong: got %d", len(stored.Arguments))
	}
	if stored.Winner != core.RolePhilosopher {
		t.Errorf("stored winner wrong: got %s", stored.Winner)
	}
}

func TestRunSessionPhilosopherFirst(t *testing.T) {
	prov := &scriptedProvider{}
	eng, cleanup := setupTestEngine(t, prov)
	defer cleanup()

	config := mockSessionConfig("Test")
	config.Rounds = 2
	config.FirstSpeaker = core.RolePhilosopher

	session, err := eng.RunSession(context.Background(), config, nil)
	if err != nil {
		t.Fatalf("failed: %v", err)
	}

	if session.Arguments[0].Agent != core.RolePhilosopher {
		t.Errorf("first speaker: got %s, want Philosopher", session.Arguments[0].Agent)
	}
	if session.Arguments[1].Agent != core.RoleScientist {
		t.Errorf("second speaker: got %s, want Scientist", session.Arguments[1].Agent)
	}
}

func TestSummaryThreading(t *testing.T) {
	prov := &scriptedProvider{}
	eng, cleanup := setupTestEngine(t, prov)
	defer cleanup()

	session, err := eng.RunSession(context.Background(), mockSessionConfig("Test"), nil)
	if err != nil {
		t.Fatalf("failed: %v", err)
	}

	if prov.sumCalls != 8 {
		t.Errorf("summarizer called %d times, want 8", prov.sumCalls)
	}
	if session.MemorySummary != "summary v8" {
		t.Errorf("final summary wrong: got %q", session.MemorySummary)
	}

	// Each argument prompt after the first must carry the summary produced
	// by the previous turn's update.
	argRound := 0
	for _, p := range prov.prompts {
		if strings.Contains(p, "WINNER:") || strings.HasPrefix(p, "Update the debate memory summary") {
			continue
		}
		argRound++
		if argRound == 1 {
			if !strings.Contains(p, "Debate Topic: Test") {
				t.Errorf("round 1 prompt missing seeded summary")
			}
			continue
		}
		want := fmt.Sprintf("summary v%d", argRound-1)
		if !strings.Contains(p, want) {
			t.Errorf("round %d prompt missing %q", argRound, want)
		}
	}
	if argRound != 8 {
		t.Errorf("saw %d argument prompts, want 8", argRound)
	}
}

func TestRunSessionArgumentFailure(t *testing.T) {
	prov := &scriptedProvider{failOnArg: 3}
	eng, cleanup := setupTestEngine(t, prov)
	defer cleanup()

	session, err := eng.RunSession(context.Background(), mockSessionConfig("Test"), nil)
	if err == nil {
		t.Fatal("expected error from failing provider")
	}
	if !strings.Contains(err.Error(), "argument backend unavailable") {
		t.Errorf("error does not propagate cause: %v", err)
	}

	stored, _ := eng.GetSession(session.ID)
	if stored.Status != core.StatusFailed {
		t.Errorf("wrong status: got %s, want failed", stored.Status)
	}
	if len(stored.Arguments) != 2 {
		t.Errorf("wrong argument count: got %d, want 2", len(stored.Arguments))
	}
}

func TestRunSessionSummaryFailure(t *testing.T) {
	prov := &scriptedProvider{failOnSummary: 1}
	eng, cleanup := setupTestEngine(t, prov)
	defer cleanup()

	session, err := eng.RunSession(context.Background(), mockSessionConfig("Test"), nil)
	if err == nil {
		t.Fatal("expected error from failing summarizer")
	}

	stored, _ := eng.GetSession(session.ID)
	if stored.Status != core.StatusFailed {
		t.Errorf("wrong status: got %s, want failed", stored.Status)
	}
	if len(stored.Arguments) != 1 {
		t.Errorf("wrong argument count: got %d, want 1", len(stored.Arguments))
	}
}

func TestRunSessionMalformedJudgment(t *testing.T) {
	prov := &scriptedProvider{judgeResponse: "The debate was interesting but I cannot decide."}
	eng, cleanup := setupTestEngine(t, prov)
	defer cleanup()

	config := mockSessionConfig("Test")
	config.Rounds = 2

	session, err := eng.RunSession(context.Background(), config, nil)
	if err == nil {
		t.Fatal("expected error for malformed judgment")
	}
	if !strings.Contains(err.Error(), "malformed judgment") {
		t.Errorf("unexpected error: %v", err)
	}

	stored, _ := eng.GetSession(session.ID)
	if stored.Status != core.StatusFailed {
		t.Errorf("wrong status: got %s, want failed", stored.Status)
	}
}

func TestRunSessionCancelled(t *testing.T) {
	prov := &scriptedProvider{}
	eng, cleanup := setupTestEngine(t, prov)
	defer cleanup()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := eng.RunSession(ctx, mockSessionConfig("Test"), nil)
	if err != context.Canceled {
		t.Errorf("expected context.Canceled, got %v", err)
	}
}

func TestListSessions(t *testing.T) {
	eng, cleanup := setupTestEngine(t, &scriptedProvider{})
	defer cleanup()

	ctx := context.Background()
	for i := 0; i < 3; i++ {
		if _, err := eng.CreateSession(ctx, mockSessionConfig("Test")); err != nil {
			t.Fatalf("failed to create session: %v", err)
		}
	}

	sessions, err := eng.ListSessions(10, 0)
	if err != nil {
		t.Fatalf("failed: %v", err)
	}
	if len(sessions) != 3 {
		t.Errorf("wrong count: got %d, want 3", len(sessions))
	}
}

func TestDeleteSession(t *testing.T) {
	eng, cleanup := setupTestEngine(t, &scriptedProvider{})
	defer cleanup()

	session, err := eng.CreateSession(context.Background(), mockSessionConfig("Test"))
	if err != nil {
		t.Fatalf("failed to create session: %v", err)
	}

	if err := eng.DeleteSession(session.ID); err != nil {
		t.Fatalf("failed: %v", err)
	}

	got, _ := eng.GetSession(session.ID)
	if got != nil {
		t.Error("session still exists after deletion")
	}
}
