package domain

import "time"

// VerificationResult is the outcome of running check files.
// NoChecks is distinct from failure: callers apply their own policy to it.
type VerificationResult struct {
	// Passed is true only when a check command ran and exited zero.
	Passed bool `json:"passed"`

	// NoChecks is set when there was nothing to run.
	NoChecks bool `json:"no_checks,omitempty"`

	// TimedOut is set when the command hit its wall-clock limit.
	TimedOut bool `json:"timed_out,omitempty"`

	// Ecosystem names the toolchain selected by the first check file.
	Ecosystem string `json:"ecosystem,omitempty"`

	// Command is the argv that ran, joined for display.
	Command string `json:"command,omitempty"`

	// ExitCode is the process exit status, -1 when it never ran.
	ExitCode int `json:"exit_code"`

	// Log is the combined stdout and stderr, or a synthetic explanation.
	Log string `json:"log"`

	// Duration is the wall-clock time of the command.
	Duration time.Duration `json:"duration"`
}
