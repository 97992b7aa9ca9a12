package prompts

// PromptID identifies a prompt template. It is also the override file name
// (without .tmpl) looked up in the project prompts directory.
type PromptID string

// Prompt identifiers for every generation role.
const (
	// Coder role
	CoderSystem PromptID = "coder_system"
	CoderTask   PromptID = "coder_task"

	// Reviewer role
	ReviewerSystem     PromptID = "reviewer_system"
	ReviewerSubmission PromptID = "reviewer_submission"

	// Architect roles
	ArchitectBackend  PromptID = "architect_backend"
	ArchitectFrontend PromptID = "architect_frontend"
	ArchitectInput    PromptID = "architect_input"

	// Task broker role
	TaskBrokerSystem PromptID = "task_broker_system"
	TaskBrokerInput  PromptID = "task_broker_input"
)

// CoderTaskData is the context for one generation attempt.
type CoderTaskData struct {
	ItemID             string
	Title              string
	Description        string
	AcceptanceCriteria string
	SourceReference    string
	// Feedback is the last rejection reason or failure log.
	Feedback string
	// Design is the design document for the item's category, if any.
	Design string
	// Requirements is the requirements document, if any.
	Requirements string
	// Snapshot is the current source snapshot, set on retries and after rejections.
	Snapshot    string
	Attempt     int
	MaxAttempts int
}

// ReviewData is the reviewer's view of a submission.
type ReviewData struct {
	ItemID             string
	Title              string
	AcceptanceCriteria string
	// Tree is the project file tree.
	Tree string
	// Submission holds the submitted files, each under a header line.
	Submission string
}

// ArchitectData is the input for a design document.
type ArchitectData struct {
	Requirements   string
	ExistingDesign string
	// BackendReference is the backend design the frontend must follow.
	BackendReference string
}

// TaskBrokerData is the input for planning work items from a design.
type TaskBrokerData struct {
	Category string
	Design   string
	// CurrentItems is the JSON encoding of the items already in scope.
	CurrentItems string
}
