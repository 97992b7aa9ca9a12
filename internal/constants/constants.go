// Package constants provides centralized constant values used throughout devloop.
// This package is the single source of truth for all shared constants and MUST NOT
// import any other internal packages.
package constants

import "time"

// Directory and file names.
const (
	// AppHome is the hidden directory holding global config and logs.
	// It lives in the user's home directory; projects get their own copy
	// for project-level config and prompt overrides.
	AppHome = ".devloop"

	// LogsDir is the directory name where log files are stored.
	LogsDir = "logs"

	// CLILogFileName is the global CLI log, ~/.devloop/logs/devloop.log.
	CLILogFileName = "devloop.log"

	// GlobalConfigName is the name of the global configuration file.
	GlobalConfigName = "config.yaml"

	// ProjectConfigName is the project configuration file inside AppHome.
	ProjectConfigName = "config.yaml"

	// DefaultStorePath is the work-item store, relative to the project root.
	DefaultStorePath = "docs/tasks.json"

	// DefaultRequirementsPath is the requirements document (PRD).
	DefaultRequirementsPath = "docs/PRD.md"

	// DefaultDesignDir holds the generated design documents.
	DefaultDesignDir = "docs/design"

	// DefaultPromptsDir holds optional per-project prompt overrides.
	DefaultPromptsDir = AppHome + "/prompts"

	// LockSuffix is appended to the store path for the save lock file.
	LockSuffix = ".lock"
)

// Engine defaults.
const (
	// DefaultMaxAttempts bounds generation attempts per work item per run.
	DefaultMaxAttempts = 3

	// DefaultMaxTicks bounds orchestrator ticks per run.
	DefaultMaxTicks = 50

	// DefaultFeedbackLimit is the byte cap for log text stored as feedback.
	DefaultFeedbackLimit = 1000
)

// Timeout configurations.
const (
	// DefaultVerificationTimeout is the wall-clock limit for one check command.
	DefaultVerificationTimeout = 120 * time.Second

	// DefaultProviderTimeout is the limit for a single generation call.
	DefaultProviderTimeout = 180 * time.Second

	// LockTimeout bounds the wait for the store lock.
	LockTimeout = 5 * time.Second

	// LockRetryInterval is the delay between lock attempts.
	LockRetryInterval = 50 * time.Millisecond

	// WatchDebounce coalesces bursts of file events.
	WatchDebounce = 500 * time.Millisecond
)

// Retry configuration for transient provider failures.
const (
	// MaxRetryAttempts is the maximum number of provider calls per generation.
	MaxRetryAttempts = 3

	// InitialBackoff is the delay before the first provider retry.
	InitialBackoff = 1 * time.Second
)

// Log rotation settings for the CLI log file.
const (
	// LogMaxSizeMB is the maximum size in megabytes before rotation.
	LogMaxSizeMB = 10

	// LogMaxBackups is the number of rotated files kept.
	LogMaxBackups = 5

	// LogMaxAgeDays is the number of days rotated files are kept.
	LogMaxAgeDays = 30

	// LogCompress enables gzip for rotated files.
	LogCompress = true
)

// File permissions for documents devloop writes into the project.
const (
	// DirPerm is used for directories created under the project root.
	DirPerm = 0o750

	// FilePerm is used for design documents and other generated text.
	FilePerm = 0o644
)
