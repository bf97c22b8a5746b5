// Package prompt builds the prompts sent to providers for each debate step.
package prompt

import (
	"bytes"
	"fmt"
	"strings"
	"text/template"

	"github.com/rhetorlabs/rhetor/internal/core"
	"github.com/rhetorlabs/rhetor/internal/persona"
)

const argumentTemplate = `{{.SystemPrompt}}

Topic: {{.Topic}}

Current Memory Summary: {{.MemorySummary}}

Previous Arguments:
{{.Transcript}}

This is Round {{.Round}} of {{.Rounds}}.

Your task: make a distinct point that advances your position. Do not repeat previous arguments. Stay in character as a {{.RoleLower}}.

Your argument:`

const summaryTemplate = `Update the debate memory summary with the latest argument.

Current Topic: {{.Topic}}

Previous Summary: {{.MemorySummary}}

Latest Argument:
[Round {{.Round}}] {{.Agent}}: {{.Content}}

Provide an updated summary that captures:
1. The main debate topic
2. Key points from both sides
3. Current trajectory of the debate
4. Notable patterns or themes

Keep it concise (3-4 sentences).`

const judgeTemplate = `You are an impartial judge evaluating a structured debate.

Topic: {{.Topic}}

Full Debate Transcript:
{{.Transcript}}

Memory Summary: {{.MemorySummary}}

As the judge, evaluate the debate based on:
1. Logical coherence and consistency
2. Quality and relevance of evidence
3. Persuasiveness of arguments
4. Addressing counterpoints
5. Overall strength of position

Provide:
1. A comprehensive summary of the debate (3-4 sentences)
2. The winner (either "Scientist" or "Philosopher")
3. Detailed reasoning for your decision (2-3 sentences)

Format your response as:
SUMMARY: [your summary]
WINNER: [Scientist or Philosopher]
REASON: [your reasoning]`

// Transcript renders the arguments as a bracketed round-by-round transcript.
func Transcript(arguments []*core.Argument) string {
	var b strings.Builder
	for _, arg := range arguments {
		fmt.Fprintf(&b, "[Round %d] %s: %s\n", arg.RoundNum, arg.Agent, arg.Content)
	}
	return b.String()
}

// Argument builds the prompt for a debater's next argument.
func Argument(session *core.Session, role core.Role) (string, error) {
	p := persona.Get(role)
	if p == nil {
		return "", fmt.Errorf("no persona for role: %s", role)
	}

	return render("argument", argumentTemplate, map[string]interface{}{
		"SystemPrompt":  p.SystemPrompt,
		"Topic":         session.Topic,
		"MemorySummary": session.MemorySummary,
		"Transcript":    Transcript(session.Arguments),
		"Round":         session.CurrentRound,
		"Rounds":        session.Rounds,
		"RoleLower":     strings.ToLower(string(role)),
	})
}

// SummaryUpdate builds the prompt that folds the newest argument into the
// running memory summary.
func SummaryUpdate(session *core.Session, arg *core.Argument) (string, error) {
	return render("summary", summaryTemplate, map[string]interface{}{
		"Topic":         session.Topic,
		"MemorySummary": session.MemorySummary,
		"Round":         arg.RoundNum,
		"Agent":         arg.Agent,
		"Content":       arg.Content,
	})
}

// Judgment builds the prompt for the final judging pass.
func Judgment(session *core.Session) (string, error) {
	return render("judgment", judgeTemplate, map[string]interface{}{
		"Topic":         session.Topic,
		"Transcript":    Transcript(session.Arguments),
		"MemorySummary": session.MemorySummary,
	})
}

func render(name, text string, data map[string]interface{}) (string, error) {
	tmpl, err := template.New(name).Parse(text)
	if err != nil {
		return "", fmt.Errorf("failed to parse %s template: %w", name, err)
	}

	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, data); err != nil {
		return "", fmt.Errorf("failed to execute %s template: %w", name, err)
	}

	return buf.String(), nil
}
