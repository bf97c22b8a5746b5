package prompt

import (
	"fmt"
	"strings"

	"github.com/rhetorlabs/rhetor/internal/core"
)

// ParseVerdict parses a judge response in the SUMMARY/WINNER/REASON line
// format. A missing or unknown winner, or an empty reason, is a
// malformed-response error.
func ParseVerdict(response string) (*core.Verdict, error) {
	verdict := &core.Verdict{}

	for _, line := range strings.Split(response, "\n") {
		line = strings.TrimSpace(line)
		switch {
		case strings.HasPrefix(line, "SUMMARY:"):
			verdict.Summary = strings.TrimSpace(strings.TrimPrefix(line, "SUMMARY:"))
		case strings.HasPrefix(line, "WINNER:"):
			winner := strings.TrimSpace(strings.TrimPrefix(line, "WINNER:"))
			winner = strings.Trim(winner, `"'`)
			role, err := core.ParseRole(winner)
			if err != nil {
				return nil, fmt.Errorf("malformed judgment: %w", err)
			}
			verdict.Winner = role
		case strings.HasPrefix(line, "REASON:"):
			verdict.Reason = strings.TrimSpace(strings.TrimPrefix(line, "REASON:"))
		}
	}

	if verdict.Winner == "" {
		return nil, fmt.Errorf("malformed judgment: no WINNER line in response")
	}
	if verdict.Reason == "" {
		return nil, fmt.Errorf("malformed judgment: no REASON line in response")
	}

	return verdict, nil
}
