package scorer

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

// Model responses are asked for "Score:" and "Rationale:" lines but models
// drift: decimal commas, bold markers, translated labels. The patterns here
// accept everything observed in practice and reject the rest so the
// fallback decorator can take over.
var (
	scorePattern     = regexp.MustCompile(`(?i)score\s*[:=]?\s*\**\s*(\d+(?:[.,]\d+)?)`)
	rationalePattern = regexp.MustCompile(`(?i)(?:rationale|reason|reasoning|begr[üu]ndung)\s*[:=]\s*(.+)`)
)

// ParseModelResponse extracts a score and rationale from a raw model reply.
// The score is parsed on the model's 1-10 scale and left unclamped; the
// caller applies entity.ClampScore. A reply without a recognizable score is
// an error.
func ParseModelResponse(raw string) (float64, string, error) {
	m := scorePattern.FindStringSubmatch(raw)
	if m == nil {
		return 0, "", fmt.Errorf("no score found in model response")
	}

	score, err := strconv.ParseFloat(strings.ReplaceAll(m[1], ",", "."), 64)
	if err != nil {
		return 0, "", fmt.Errorf("parse score %q: %w", m[1], err)
	}

	rationale := ""
	if rm := rationalePattern.FindStringSubmatch(raw); rm != nil {
		rationale = strings.TrimSpace(rm[1])
	}
	if rationale == "" {
		// Some models reply with the score line alone; keep whatever else
		// was said as the rationale rather than dropping it.
		rationale = strings.TrimSpace(scorePattern.ReplaceAllString(raw, ""))
	}
	if rationale == "" {
		rationale = "model-scored"
	}

	return score, firstLine(rationale), nil
}

func firstLine(s string) string {
	if idx := strings.IndexByte(s, '\n'); idx >= 0 {
		return strings.TrimSpace(s[:idx])
	}
	return s
}
