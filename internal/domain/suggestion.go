package domain

// SuggestedTask is an action item proposed from meeting notes. It lives on
// the session until the user picks which suggestions become tasks.
type SuggestedTask struct {
	Title    string
	Details  string
	Assignee string
	Priority Priority
}
