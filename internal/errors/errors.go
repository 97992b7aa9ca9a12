// Package errors provides centralized error handling for devloop.
//
// This package defines sentinel errors used for programmatic error categorization
// throughout the application. All error types can be checked using errors.Is().
//
// IMPORTANT: This package MUST NOT import any other internal packages.
// Only standard library imports are allowed.
package errors

import "errors"

// Sentinel errors for error categorization.
// These allow callers to check error types with errors.Is().
// All errors use lowercase descriptions per Go conventions.
var (
	// ErrNoDirectives indicates that generation output contained no FILE or
	// DELETE directive. It is a retryable format error, never a no-op success.
	ErrNoDirectives = errors.New("no file directives recognized")

	// ErrPathTraversal indicates a change-set path that is absolute or escapes
	// the project root.
	ErrPathTraversal = errors.New("path escapes project root")

	// ErrEmptyValue indicates that a required string value was empty.
	ErrEmptyValue = errors.New("value cannot be empty")

	// ErrUnknownEcosystem indicates that no check command is registered for a
	// check file's extension.
	ErrUnknownEcosystem = errors.New("unknown check ecosystem")

	// ErrCommandTimeout indicates a check command exceeded its wall-clock limit.
	ErrCommandTimeout = errors.New("command timed out")

	// ErrCommandNotFound indicates that a check or provider binary is not on PATH.
	ErrCommandNotFound = errors.New("command not found")

	// ErrVerificationFailed indicates that check commands ran and reported failure.
	ErrVerificationFailed = errors.New("verification failed")

	// ErrStoreCorrupted indicates the work-item store could not be decoded.
	ErrStoreCorrupted = errors.New("work item store corrupted")

	// ErrLockTimeout indicates the store lock could not be acquired in time.
	ErrLockTimeout = errors.New("timed out waiting for store lock")

	// ErrItemNotFound indicates that no work item has the requested id.
	ErrItemNotFound = errors.New("work item not found")

	// ErrDuplicateItemID indicates two work items share an id.
	ErrDuplicateItemID = errors.New("duplicate work item id")

	// ErrInvalidStatus indicates a work item is in the wrong status for an operation.
	ErrInvalidStatus = errors.New("invalid work item status")

	// ErrInvalidTransition indicates a forbidden status change.
	ErrInvalidTransition = errors.New("invalid status transition")

	// ErrInvalidPlan indicates planning output could not be decoded into work items.
	ErrInvalidPlan = errors.New("invalid plan")

	// ErrRoleNotConfigured indicates no provider is configured for a role.
	ErrRoleNotConfigured = errors.New("role not configured")

	// ErrProviderNotFound indicates a role references an unregistered provider.
	ErrProviderNotFound = errors.New("provider not found")

	// ErrProviderInvocation indicates that a generation provider failed.
	ErrProviderInvocation = errors.New("provider invocation failed")

	// ErrProviderEmptyResponse indicates a provider returned no text.
	ErrProviderEmptyResponse = errors.New("provider returned empty response")

	// ErrAPIKeyMissing indicates a required API key environment variable is unset.
	ErrAPIKeyMissing = errors.New("api key not set")

	// ErrInvalidVerdict indicates the reviewer's answer was not a usable verdict.
	ErrInvalidVerdict = errors.New("invalid review verdict")

	// ErrMissingFile indicates an associated file is absent at review time.
	ErrMissingFile = errors.New("associated file missing")

	// ErrMaxAttemptsExceeded indicates the generation cycle ran out of attempts.
	ErrMaxAttemptsExceeded = errors.New("maximum generation attempts exceeded")

	// ErrStuckLoop indicates the orchestrator hit its tick ceiling.
	ErrStuckLoop = errors.New("tick ceiling reached, possible stuck feedback loop")

	// ErrUserDeclined indicates the operator declined to apply a change set.
	ErrUserDeclined = errors.New("user declined change set")

	// ErrTemplateNotFound indicates a prompt template id is not registered.
	ErrTemplateNotFound = errors.New("prompt template not found")

	// ErrRequirementsMissing indicates the requirements or design document is absent.
	ErrRequirementsMissing = errors.New("requirements document not found")

	// ErrConfigNil indicates that a nil config was passed to validation.
	ErrConfigNil = errors.New("config is nil")

	// ErrConfigInvalidEngine indicates an invalid engine configuration value.
	ErrConfigInvalidEngine = errors.New("invalid engine configuration")

	// ErrConfigInvalidVerification indicates an invalid verification configuration value.
	ErrConfigInvalidVerification = errors.New("invalid verification configuration")

	// ErrConfigInvalidRoles indicates an invalid role configuration value.
	ErrConfigInvalidRoles = errors.New("invalid role configuration")

	// ErrConfigInvalidProvider indicates an invalid provider configuration value.
	ErrConfigInvalidProvider = errors.New("invalid provider configuration")

	// ErrConfigInvalidPaths indicates an invalid paths configuration value.
	ErrConfigInvalidPaths = errors.New("invalid paths configuration")

	// ErrInvalidOutputFormat indicates an unsupported --output value.
	ErrInvalidOutputFormat = errors.New("invalid output format")

	// ErrInvalidArgument indicates a bad command argument.
	ErrInvalidArgument = errors.New("invalid argument")

	// ErrPromptCanceled indicates an interactive prompt was aborted or no
	// terminal was available to show it.
	ErrPromptCanceled = errors.New("prompt canceled")
)

// ExitCode2Error wraps an error that should result in exit code 2 (invalid input).
type ExitCode2Error struct {
	Err error
}

// Error implements the error interface.
func (e *ExitCode2Error) Error() string {
	return e.Err.Error()
}

// Unwrap returns the underlying error.
func (e *ExitCode2Error) Unwrap() error {
	return e.Err
}

// NewExitCode2Error wraps err so the CLI exits with code 2.
func NewExitCode2Error(err error) error {
	if err == nil {
		return nil
	}
	return &ExitCode2Error{Err: err}
}

// IsExitCode2Error reports whether err carries an ExitCode2Error.
func IsExitCode2Error(err error) bool {
	var target *ExitCode2Error
	return errors.As(err, &target)
}
