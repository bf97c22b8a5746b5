package prompt

import (
	"strings"
	"testing"

	"github.com/rhetorlabs/rhetor/internal/core"
)

func TestParseVerdict(t *testing.T) {
	tests := []struct {
		name       string
		response   string
		wantWinner core.Role
		wantReason string
		wantErr    bool
	}{
		{
			name: "WellFormed",
			response: `SUMMARY: A close debate about regulation.
WINNER: Scientist
REASON: Stronger empirical grounding.`,
			wantWinner: core.RoleScientist,
			wantReason: "Stronger empirical grounding.",
		},
		{
			name: "PhilosopherWins",
			response: `SUMMARY: Ethics vs evidence.
WINNER: Philosopher
REASON: Better handling of counterarguments.`,
			wantWinner: core.RolePhilosopher,
			wantReason: "Better handling of counterarguments.",
		},
		{
			name: "QuotedWinner",
			response: `SUMMARY: s
WINNER: "Scientist"
REASON: r`,
			wantWinner: core.RoleScientist,
			wantReason: "r",
		},
		{
			name: "LowercaseWinner",
			response: `SUMMARY: s
WINNER: philosopher
REASON: r`,
			wantWinner: core.RolePhilosopher,
			wantReason: "r",
		},
		{
			name: "SurroundingProse",
			response: `Here is my evaluation of the debate.

SUMMARY: Both sides made strong points.
WINNER: Scientist
REASON: More concrete evidence.

Thank you.`,
			wantWinner: core.RoleScientist,
			wantReason: "More concrete evidence.",
		},
		{
			name:     "MissingWinner",
			response: "SUMMARY: s\nREASON: r",
			wantErr:  true,
		},
		{
			name:     "UnknownWinner",
			response: "SUMMARY: s\nWINNER: Economist\nREASON: r",
			wantErr:  true,
		},
		{
			name:     "MissingReason",
			response: "SUMMARY: s\nWINNER: Scientist",
			wantErr:  true,
		},
		{
			name:     "FreeFormResponse",
			response: "I think the scientist did a better job overall.",
			wantErr:  true,
		},
		{
			name:     "Empty",
			response: "",
			wantErr:  true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			verdict, err := ParseVerdict(tt.response)
			if tt.wantErr {
				if err == nil {
					t.Fatal("expected error")
				}
				if !strings.Contains(err.Error(), "malformed judgment") {
					t.Errorf("unexpected error: %v", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if verdict.Winner != tt.wantWinner {
				t.Errorf("winner: got %s, want %s", verdict.Winner, tt.wantWinner)
			}
			if verdict.Reason != tt.wantReason {
				t.Errorf("reason: got %q, want %q", verdict.Reason, tt.wantReason)
			}
		})
	}
}

func TestParseVerdictEmptySummaryAllowed(t *testing.T) {
	verdict, err := ParseVerdict("WINNER: Scientist\nREASON: r")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if verdict.Summary != "" {
		t.Errorf("summary: got %q, want empty", verdict.Summary)
	}
}
