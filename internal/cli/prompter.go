package cli

// Prompter is the interactive-input collaborator. The core never renders
// prompts itself; commands ask through this interface so tests can script
// answers.
type Prompter interface {
	Select(label string, items []string, defaultValue string) (int, string, error)
	Prompt(label string) (string, error)
	Confirm(label string, defaultYes bool) (bool, error)
}

// Notifier is the notification sink for success and error messages.
type Notifier interface {
	Successf(format string, args ...interface{})
	Errorf(format string, args ...interface{})
}

// Refresher is invoked after any mutation so presentation layers can
// re-query the store and detector. A nil Refresher is a no-op.
type Refresher func()
