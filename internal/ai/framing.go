package ai

import (
	"encoding/json"
	"fmt"
	"regexp"
	"strings"

	"github.com/wliublackruvy/agent-based-dev/internal/domain"
	dlerrors "github.com/wliublackruvy/agent-based-dev/internal/errors"
)

// JSONInstruction is appended to the prompt when a role must answer in JSON.
const JSONInstruction = "\n\nIMPORTANT: Output valid JSON only. Do not wrap in markdown blocks."

//nolint:gochecknoglobals // Compiled once
var fencedJSONPattern = regexp.MustCompile("(?s)```(?:json)?\\s*(\\{.*?\\})\\s*```")

// FramePrompt joins the role instruction and the task context into the single
// prompt CLI providers receive.
func FramePrompt(req *domain.GenerationRequest) string {
	var b strings.Builder
	b.WriteString("### System ###\n")
	b.WriteString(req.System)
	b.WriteString("\n\n### User ###\n")
	b.WriteString(UserContent(req))
	return b.String()
}

// UserContent returns the user text, with the JSON instruction appended in
// JSON mode.
func UserContent(req *domain.GenerationRequest) string {
	if req.JSONMode {
		return req.User + JSONInstruction
	}
	return req.User
}

// ExtractJSON pulls a JSON object out of a model answer. A fenced ```json
// block wins; otherwise the span from the first '{' to the last '}' is used.
func ExtractJSON(text string) (string, bool) {
	if m := fencedJSONPattern.FindStringSubmatch(text); m != nil {
		return m[1], true
	}

	start := strings.Index(text, "{")
	end := strings.LastIndex(text, "}")
	if start < 0 || end <= start {
		return "", false
	}
	return text[start : end+1], true
}

// ParseVerdict decodes a reviewer answer. The status is normalized to upper
// case and must be PASS or FAIL.
func ParseVerdict(text string) (domain.Verdict, error) {
	raw, ok := ExtractJSON(text)
	if !ok {
		return domain.Verdict{}, fmt.Errorf("%w: no JSON object in answer", dlerrors.ErrInvalidVerdict)
	}

	var v domain.Verdict
	if err := json.Unmarshal([]byte(raw), &v); err != nil {
		return domain.Verdict{}, fmt.Errorf("%w: %w", dlerrors.ErrInvalidVerdict, err)
	}

	v.Status = strings.ToUpper(strings.TrimSpace(v.Status))
	v.Reason = strings.TrimSpace(v.Reason)
	if v.Status != domain.VerdictPass && v.Status != domain.VerdictFail {
		return domain.Verdict{}, fmt.Errorf("%w: status %q", dlerrors.ErrInvalidVerdict, v.Status)
	}
	return v, nil
}
