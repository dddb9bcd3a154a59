package domain

import (
	"fmt"
	"time"
)

type IntentKind string

const (
	IntentCreateTask     IntentKind = "create_task"
	IntentUpdateAssignee IntentKind = "update_assignee"
	IntentAssignAll      IntentKind = "assign_all"
	IntentFilterTasks    IntentKind = "filter_tasks"
)

// Intent is the deferred action replayed once a pending name is settled. The
// confirmation workflow treats it as opaque and hands it back to the applier.
type Intent struct {
	Kind     IntentKind
	TaskID   TaskID
	Title    string
	Priority Priority
	DueDate  time.Time
	Status   Status
}

func (i Intent) Describe() string {
	switch i.Kind {
	case IntentCreateTask:
		return fmt.Sprintf("create task %q", i.Title)
	case IntentUpdateAssignee:
		return fmt.Sprintf("reassign task %d", i.TaskID)
	case IntentAssignAll:
		return "assign all tasks"
	case IntentFilterTasks:
		return "list tasks"
	default:
		return string(i.Kind)
	}
}

type PendingConfirmation struct {
	ID            string
	SessionID     SessionID
	Candidate     string
	SuggestedName string
	Score         float64
	Intent        Intent
	CreatedAt     time.Time
}

type ReplyKind string

const (
	ReplyConfirm   ReplyKind = "confirm"
	ReplyDeny      ReplyKind = "deny"
	ReplyOverride  ReplyKind = "override"
	ReplyUnrelated ReplyKind = "unrelated"
)

// Reply is a classified user answer to an outstanding confirmation question.
type Reply struct {
	Kind ReplyKind
	Name string
}

type Outcome string

const (
	OutcomeApplied          Outcome = "applied"
	OutcomeCancelled        Outcome = "cancelled"
	OutcomeUnrecognized     Outcome = "unrecognized_name"
	OutcomeReconfirm        Outcome = "needs_confirmation"
	OutcomeNothingToConfirm Outcome = "nothing_to_confirm"
	OutcomeNotAReply        Outcome = "not_a_reply"
)

type AdvanceResult struct {
	Outcome      Outcome
	ResolvedName string
	// Result is whatever the intent applier reported on OutcomeApplied.
	Result string
	// Pending is the replacement pending confirmation on OutcomeReconfirm.
	Pending *PendingConfirmation
	// Previous is the pending confirmation this advance settled, if any.
	Previous *PendingConfirmation
	Verdict  Verdict
}
