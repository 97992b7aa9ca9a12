package domain

import "time"

// GenerationRequest is what a provider receives for one role invocation.
type GenerationRequest struct {
	// Role is the logical role name (coder, reviewer, ...).
	Role string `json:"role"`

	// System is the role instruction text.
	System string `json:"system"`

	// User is the task context for this call.
	User string `json:"user"`

	// Model is the provider-specific model name.
	Model string `json:"model"`

	// Temperature is passed through when the provider supports it.
	Temperature float64 `json:"temperature"`

	// JSONMode asks for a bare JSON answer.
	JSONMode bool `json:"json_mode,omitempty"`

	// Timeout bounds the call; zero means the provider default.
	Timeout time.Duration `json:"timeout"`

	// WorkDir is where CLI providers run.
	WorkDir string `json:"work_dir,omitempty"`
}

// Verdict values returned by the reviewer role.
const (
	VerdictPass = "PASS"
	VerdictFail = "FAIL"
)

// Verdict is the reviewer's structured answer.
type Verdict struct {
	Status string `json:"status"`
	Reason string `json:"reason"`
}

// Passed reports whether the verdict accepts the submission.
func (v Verdict) Passed() bool {
	return v.Status == VerdictPass
}
