package export

import (
	"encoding/json"
	"fmt"
	"io"
	"time"

	"github.com/rhetorlabs/rhetor/internal/core"
)

// DebateLog is the persisted JSON document for a completed session. Field
// names and shapes are fixed for compatibility with existing consumers.
type DebateLog struct {
	Timestamp      string           `json:"timestamp"`
	Topic          string           `json:"topic"`
	Arguments      []ArgumentRecord `json:"arguments"`
	MemorySummary  string           `json:"memory_summary"`
	FullSummary    string           `json:"full_summary"`
	Winner         string           `json:"winner"`
	JudgmentReason string           `json:"judgment_reason"`
}

// ArgumentRecord is a single argument in the DebateLog.
type ArgumentRecord struct {
	Agent     string `json:"agent"`
	RoundNum  int    `json:"round_num"`
	Content   string `json:"content"`
	Timestamp string `json:"timestamp"`
}

// NewDebateLog builds the log document from a session.
func NewDebateLog(session *core.Session) *DebateLog {
	log := &DebateLog{
		Timestamp:      time.Now().Format(time.RFC3339),
		Topic:          session.Topic,
		Arguments:      make([]ArgumentRecord, 0, len(session.Arguments)),
		MemorySummary:  session.MemorySummary,
		FullSummary:    session.FullSummary,
		Winner:         string(session.Winner),
		JudgmentReason: session.JudgmentReason,
	}

	for _, arg := range session.Arguments {
		log.Arguments = append(log.Arguments, ArgumentRecord{
			Agent:     string(arg.Agent),
			RoundNum:  arg.RoundNum,
			Content:   arg.Content,
			Timestamp: arg.CreatedAt.Format(time.RFC3339),
		})
	}

	return log
}

// Session reconstructs a session from the log document.
func (l *DebateLog) Session() (*core.Session, error) {
	session := &core.Session{
		Topic:          l.Topic,
		MemorySummary:  l.MemorySummary,
		FullSummary:    l.FullSummary,
		Winner:         core.Role(l.Winner),
		JudgmentReason: l.JudgmentReason,
		Status:         core.StatusCompleted,
	}

	for _, rec := range l.Arguments {
		created, err := time.Parse(time.RFC3339, rec.Timestamp)
		if err != nil {
			return nil, fmt.Errorf("invalid argument timestamp: %w", err)
		}
		session.Arguments = append(session.Arguments, &core.Argument{
			Agent:     core.Role(rec.Agent),
			RoundNum:  rec.RoundNum,
			Content:   rec.Content,
			CreatedAt: created,
		})
	}

	return session, nil
}

// ParseDebateLog reads a DebateLog JSON document.
func ParseDebateLog(r io.Reader) (*DebateLog, error) {
	var log DebateLog
	if err := json.NewDecoder(r).Decode(&log); err != nil {
		return nil, fmt.Errorf("failed to parse debate log: %w", err)
	}
	return &log, nil
}

// JSONExporter exports sessions to the compatibility JSON format.
type JSONExporter struct{}

// Export writes the session as JSON.
func (e *JSONExporter) Export(session *core.Session, w io.Writer) error {
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(NewDebateLog(session))
}

// FileExtension returns the file extension for JSON.
func (e *JSONExporter) FileExtension() string {
	return "json"
}
