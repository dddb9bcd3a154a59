package application

import (
	"fmt"
	"strings"

	"github.com/bnema/taskmate/internal/domain"
)

func ConfirmationQuestion(pending domain.PendingConfirmation) string {
	return fmt.Sprintf(
		"Did you mean to assign this to '%s'? (I interpreted '%s' as '%s' with %.0f%% confidence). Please confirm or specify the correct name.",
		pending.SuggestedName, pending.Candidate, pending.SuggestedName, pending.Score,
	)
}

func UnrecognizedName(candidate string, roster domain.Roster) string {
	if roster.IsEmpty() {
		return fmt.Sprintf("I couldn't find a team member named '%s': %s.", candidate, domain.ErrEmptyRoster)
	}
	return fmt.Sprintf(
		"I couldn't find a team member named '%s'. Available team members: %s. Please specify the correct name.",
		candidate, roster.String(),
	)
}

// DescribeAdvance renders the user-facing reply for a settled advance.
func DescribeAdvance(result domain.AdvanceResult, roster domain.Roster) string {
	switch result.Outcome {
	case domain.OutcomeApplied:
		return result.Result
	case domain.OutcomeCancelled:
		if result.Previous != nil {
			return fmt.Sprintf("Okay, cancelled: I won't %s.", result.Previous.Intent.Describe())
		}
		return "Okay, cancelled."
	case domain.OutcomeUnrecognized:
		return UnrecognizedName(result.Verdict.Candidate, roster)
	case domain.OutcomeReconfirm:
		if result.Pending != nil {
			return ConfirmationQuestion(*result.Pending)
		}
		return "Please confirm the name."
	case domain.OutcomeNothingToConfirm:
		return "There is nothing waiting for confirmation."
	default:
		return ""
	}
}

func FormatTask(task domain.Task) string {
	return fmt.Sprintf("#%d %s | assignee: %s | status: %s | priority: %s | due: %s",
		task.ID, task.Title, task.Assignee, task.Status, task.Priority, task.DueDate.Format(domain.DateLayout))
}

func FormatTaskList(tasks []domain.Task) string {
	if len(tasks) == 0 {
		return "No tasks found."
	}

	lines := make([]string, 0, len(tasks))
	for _, task := range tasks {
		lines = append(lines, FormatTask(task))
	}
	return fmt.Sprintf("Found %d task(s):\n%s", len(tasks), strings.Join(lines, "\n"))
}

func FormatSuggestions(suggestions []domain.SuggestedTask) string {
	if len(suggestions) == 0 {
		return "I couldn't find any actionable items in those notes."
	}

	lines := make([]string, 0, len(suggestions)+1)
	lines = append(lines, fmt.Sprintf("Suggested %d task(s):", len(suggestions)))
	for i, suggestion := range suggestions {
		line := fmt.Sprintf("%d. %s | assignee: %s | priority: %s", i+1, suggestion.Title, suggestion.Assignee, suggestion.Priority)
		if suggestion.Details != "" {
			line += "\n   " + suggestion.Details
		}
		lines = append(lines, line)
	}
	lines = append(lines, "Reply with the numbers to create (e.g. '1,3' or 'all'), or 'none' to discard them.")
	return strings.Join(lines, "\n")
}

func FormatSuggestionOutcome(outcome SuggestionOutcome) string {
	if outcome.Cancelled {
		return "Okay, discarded the suggested tasks."
	}

	lines := make([]string, 0, len(outcome.Created)+1)
	lines = append(lines, fmt.Sprintf("Created %d task(s):", len(outcome.Created)))
	for _, task := range outcome.Created {
		lines = append(lines, FormatTask(task))
	}
	return strings.Join(lines, "\n")
}
