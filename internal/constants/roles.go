package constants

// Generation roles. Each role is routed to a provider and model by config.
const (
	RoleArchitectBackend  = "architect_backend"
	RoleArchitectFrontend = "architect_frontend"
	RoleTaskBroker        = "task_broker"
	RoleCoder             = "coder"
	RoleReviewer          = "reviewer"
)

// Provider names accepted in role configuration.
const (
	ProviderCodex    = "codex"
	ProviderQwen     = "qwen"
	ProviderDeepSeek = "deepseek"
	ProviderOllama   = "ollama"
	ProviderGemini   = "gemini"
)

// Work item categories used to scope planning.
const (
	CategoryBackend  = "backend"
	CategoryFrontend = "frontend"
)
