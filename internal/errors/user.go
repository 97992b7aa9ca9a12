package errors

import "errors"

// ErrorInfo holds user-facing message and suggested action for an error.
type ErrorInfo struct {
	// Message is the user-friendly error description.
	Message string
	// Action is a suggested action to resolve the issue (empty if none).
	Action string
}

type errorEntry struct {
	err  error
	info ErrorInfo
}

// errorInfoEntries maps sentinels to user-facing text. A slice is used because
// wrapped errors need errors.Is traversal in declaration order.
//
//nolint:gochecknoglobals // Pre-built mapping
var errorInfoEntries = []errorEntry{
	// Generation
	{
		err: ErrNoDirectives,
		info: ErrorInfo{
			Message: "The generator answered without any FILE: or DELETE: directive.",
			Action:  "Check the coder prompt template or try a different model for the coder role.",
		},
	},
	{
		err: ErrMaxAttemptsExceeded,
		info: ErrorInfo{
			Message: "Generation gave up after the maximum number of attempts.",
			Action:  "Read the item feedback with 'devloop show <id>', adjust the item, then run 'devloop code' again.",
		},
	},
	{
		err: ErrUserDeclined,
		info: ErrorInfo{
			Message: "Change set was not applied.",
		},
	},
	{
		err: ErrPromptCanceled,
		info: ErrorInfo{
			Message: "Confirmation prompt was canceled.",
			Action:  "Run in a terminal, or pass --yes to apply change sets without asking.",
		},
	},
	{
		err: ErrStuckLoop,
		info: ErrorInfo{
			Message: "The run stopped at its tick ceiling; items keep bouncing between generation and review.",
			Action:  "Inspect items with 'devloop status', or raise engine.max_ticks.",
		},
	},

	// Providers
	{
		err: ErrRoleNotConfigured,
		info: ErrorInfo{
			Message: "No provider is configured for this role.",
			Action:  "Add the role under 'roles:' in .devloop/config.yaml.",
		},
	},
	{
		err: ErrProviderNotFound,
		info: ErrorInfo{
			Message: "A role references a provider that is not available.",
			Action:  "Use one of: codex, qwen, deepseek, ollama, gemini.",
		},
	},
	{
		err: ErrAPIKeyMissing,
		info: ErrorInfo{
			Message: "The provider API key is not set.",
			Action:  "Export the key variable named in providers.<name>.api_key_env.",
		},
	},
	{
		err: ErrProviderInvocation,
		info: ErrorInfo{
			Message: "The generation provider failed.",
			Action:  "Run 'devloop doctor' to check provider tools and credentials.",
		},
	},
	{
		err: ErrCommandNotFound,
		info: ErrorInfo{
			Message: "A required command is not installed.",
			Action:  "Run 'devloop doctor' to see which tools are missing.",
		},
	},

	// Store
	{
		err: ErrStoreCorrupted,
		info: ErrorInfo{
			Message: "The work item store could not be read.",
			Action:  "Fix the JSON in the store file or regenerate it with 'devloop sync'.",
		},
	},
	{
		err: ErrLockTimeout,
		info: ErrorInfo{
			Message: "Another devloop process is writing the work item store.",
			Action:  "Wait for the other process to finish and retry.",
		},
	},
	{
		err: ErrItemNotFound,
		info: ErrorInfo{
			Message: "Work item not found.",
			Action:  "Run 'devloop status' to list item ids.",
		},
	},
	{
		err: ErrRequirementsMissing,
		info: ErrorInfo{
			Message: "The requirements or design document does not exist.",
			Action:  "Create it or point paths.requirements / paths.design_dir at it.",
		},
	},

	// Config
	{
		err: ErrConfigInvalidEngine,
		info: ErrorInfo{
			Message: "Engine configuration is invalid.",
			Action:  "Check engine.max_attempts and engine.max_ticks are positive.",
		},
	},
	{
		err: ErrConfigInvalidRoles,
		info: ErrorInfo{
			Message: "Role configuration is invalid.",
			Action:  "Every role needs a provider and a model.",
		},
	},
}

//nolint:gochecknoglobals // Built once from errorInfoEntries
var errorInfoMap = buildErrorInfoMap()

func buildErrorInfoMap() map[error]ErrorInfo {
	m := make(map[error]ErrorInfo, len(errorInfoEntries))
	for _, entry := range errorInfoEntries {
		m[entry.err] = entry.info
	}
	return m
}

func getErrorInfo(err error) ErrorInfo {
	if info, ok := errorInfoMap[err]; ok {
		return info
	}
	for _, entry := range errorInfoEntries {
		if errors.Is(err, entry.err) {
			return entry.info
		}
	}
	return ErrorInfo{Message: err.Error()}
}

// UserMessage returns a user-friendly message for err.
// Unrecognized errors keep their own message.
func UserMessage(err error) string {
	if err == nil {
		return ""
	}
	return getErrorInfo(err).Message
}

// Actionable returns a user-friendly message and a suggested action.
// The action is empty when there is nothing useful to suggest.
func Actionable(err error) (message, action string) {
	if err == nil {
		return "", ""
	}
	info := getErrorInfo(err)
	return info.Message, info.Action
}
