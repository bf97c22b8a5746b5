package export

import (
	"fmt"
	"io"
	"strings"

	"github.com/rhetorlabs/rhetor/internal/core"
)

// MarkdownExporter exports sessions to Markdown format.
type MarkdownExporter struct{}

// Export writes the session as Markdown.
func (e *MarkdownExporter) Export(session *core.Session, w io.Writer) error {
	var sb strings.Builder

	// Title
	sb.WriteString(fmt.Sprintf("# %s\n\n", session.Topic))

	// Metadata
	sb.WriteString("## Debate Information\n\n")
	sb.WriteString(fmt.Sprintf("- **ID:** `%s`\n", session.ID))
	sb.WriteString(fmt.Sprintf("- **Status:** %s\n", session.Status))
	sb.WriteString(fmt.Sprintf("- **Rounds:** %d\n", session.Rounds))
	sb.WriteString(fmt.Sprintf("- **Created:** %s\n", session.CreatedAt.Format("January 2, 2006 at 3:04 PM")))
	if session.CompletedAt != nil {
		sb.WriteString(fmt.Sprintf("- **Completed:** %s\n", session.CompletedAt.Format("January 2, 2006 at 3:04 PM")))
		sb.WriteString(fmt.Sprintf("- **Duration:** %s\n", formatDuration(session.CreatedAt, *session.CompletedAt)))
	}
	sb.WriteString("\n")

	// Participants
	sb.WriteString("## Participants\n\n")
	for _, agent := range []core.Agent{session.Scientist, session.Philosopher} {
		sb.WriteString(fmt.Sprintf("### %s\n", agent.Role))
		sb.WriteString(fmt.Sprintf("- **Provider:** %s\n", agent.Provider))
		if agent.Model != "" {
			sb.WriteString(fmt.Sprintf("- **Model:** %s\n", agent.Model))
		}
		sb.WriteString("\n")
	}

	// Arguments
	sb.WriteString("## Debate\n\n")

	if len(session.Arguments) == 0 {
		sb.WriteString("*No arguments recorded.*\n\n")
	} else {
		for _, arg := range session.Arguments {
			sb.WriteString(fmt.Sprintf("### Round %d - %s\n\n", arg.RoundNum, arg.Agent))
			sb.WriteString(fmt.Sprintf("*%s*\n\n", arg.CreatedAt.Format("3:04 PM")))
			sb.WriteString(arg.Content)
			sb.WriteString("\n\n---\n\n")
		}
	}

	// Memory summary
	if session.MemorySummary != "" {
		sb.WriteString("## Memory Summary\n\n")
		sb.WriteString(session.MemorySummary)
		sb.WriteString("\n\n")
	}

	// Judgment
	if session.Judged() {
		sb.WriteString("## Judgment\n\n")
		sb.WriteString(fmt.Sprintf("**Winner: %s**\n\n", session.Winner))
		if session.FullSummary != "" {
			sb.WriteString(session.FullSummary)
			sb.WriteString("\n\n")
		}
		sb.WriteString(fmt.Sprintf("**Reason:** %s\n\n", session.JudgmentReason))
	}

	// Footer
	sb.WriteString("---\n\n")
	sb.WriteString("*Exported from rhetor*\n")

	_, err := w.Write([]byte(sb.String()))
	return err
}

// FileExtension returns the file extension for Markdown.
func (e *MarkdownExporter) FileExtension() string {
	return "md"
}
