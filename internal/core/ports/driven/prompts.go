package driven

// PromptStore provides access to LLM prompt templates.
// Implementations may load prompts from files, embed them in the binary,
// or fetch them from a remote configuration service.
type PromptStore interface {
	// Load returns the prompt template for the given name.
	// Returns the prompt content and any error encountered.
	// If the prompt is not found, implementations should return a sensible default
	// or an error, depending on whether the prompt is required.
	Load(name string) (string, error)

	// Reload clears any cached prompts, forcing fresh loads on next access.
	// This is useful when prompts may have been edited on disk.
	Reload()
}

// Well-known prompt names used throughout the application.
// These constants define the contract between prompt consumers and providers.
const (
	// PromptResumeSystem is the system prompt for answering resume questions.
	// This prompt has no format placeholders.
	PromptResumeSystem = "resume_system"

	// PromptNoContext is the canned answer returned when nothing was retrieved.
	// This prompt has no format placeholders.
	PromptNoContext = "no_context"
)
