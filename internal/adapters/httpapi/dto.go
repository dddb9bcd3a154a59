package httpapi

import (
	"time"

	"github.com/bnema/taskmate/internal/domain"
)

type errorResponse struct {
	Error   string      `json:"error"`
	Verdict *verdictDTO `json:"verdict,omitempty"`
}

type taskDTO struct {
	ID          int64  `json:"id"`
	Title       string `json:"title"`
	Assignee    string `json:"assignee"`
	Status      string `json:"status"`
	Priority    string `json:"priority"`
	CreatedAt   string `json:"created_at"`
	DueDate     string `json:"due_date,omitempty"`
	Description string `json:"description,omitempty"`
}

func toTaskDTO(task domain.Task) taskDTO {
	dto := taskDTO{
		ID:          int64(task.ID),
		Title:       task.Title,
		Assignee:    task.Assignee,
		Status:      string(task.Status),
		Priority:    string(task.Priority),
		CreatedAt:   task.CreatedAt.UTC().Format(time.RFC3339),
		Description: task.Description,
	}
	if !task.DueDate.IsZero() {
		dto.DueDate = task.DueDate.Format(domain.DateLayout)
	}
	return dto
}

func toTaskDTOs(tasks []domain.Task) []taskDTO {
	out := make([]taskDTO, 0, len(tasks))
	for _, task := range tasks {
		out = append(out, toTaskDTO(task))
	}
	return out
}

type verdictDTO struct {
	Kind          string  `json:"kind"`
	Candidate     string  `json:"candidate"`
	Name          string  `json:"name,omitempty"`
	SuggestedName string  `json:"suggested_name,omitempty"`
	Score         float64 `json:"score"`
	Message       string  `json:"message,omitempty"`
}

func toVerdictDTO(v domain.Verdict) *verdictDTO {
	return &verdictDTO{
		Kind:          string(v.Kind),
		Candidate:     v.Candidate,
		Name:          v.Name,
		SuggestedName: v.SuggestedName,
		Score:         v.Score,
	}
}

type pendingDTO struct {
	ID            string  `json:"id"`
	Candidate     string  `json:"candidate"`
	SuggestedName string  `json:"suggested_name"`
	Score         float64 `json:"score"`
	Intent        string  `json:"intent"`
	CreatedAt     string  `json:"created_at"`
}

func toPendingDTO(p *domain.PendingConfirmation) *pendingDTO {
	if p == nil {
		return nil
	}
	return &pendingDTO{
		ID:            p.ID,
		Candidate:     p.Candidate,
		SuggestedName: p.SuggestedName,
		Score:         p.Score,
		Intent:        p.Intent.Describe(),
		CreatedAt:     p.CreatedAt.UTC().Format(time.RFC3339),
	}
}

type sessionDTO struct {
	ID           string      `json:"session_id"`
	CreatedAt    string      `json:"created_at"`
	LastAccessed string      `json:"last_accessed"`
	TurnCount    int         `json:"turn_count"`
	MessageCount int         `json:"message_count"`
	Pending      *pendingDTO `json:"pending,omitempty"`
	Suggestions  int         `json:"suggested_tasks"`
}

func toSessionDTO(info domain.SessionInfo) sessionDTO {
	return sessionDTO{
		ID:           string(info.ID),
		CreatedAt:    info.CreatedAt.UTC().Format(time.RFC3339),
		LastAccessed: info.LastAccessed.UTC().Format(time.RFC3339),
		TurnCount:    info.TurnCount,
		MessageCount: info.MessageCount,
		Pending:      toPendingDTO(info.Pending),
		Suggestions:  info.Suggestions,
	}
}

type chatRequest struct {
	Message   string `json:"message" binding:"required"`
	SessionID string `json:"session_id"`
}

type chatResponse struct {
	SessionID string      `json:"session_id"`
	Response  string      `json:"response"`
	Outcome   string      `json:"outcome,omitempty"`
	Pending   *pendingDTO `json:"pending,omitempty"`
	ToolCalls []string    `json:"tool_calls,omitempty"`
}

type createTaskRequest struct {
	Title       string `json:"title" binding:"required"`
	Assignee    string `json:"assignee"`
	Status      string `json:"status"`
	Priority    string `json:"priority"`
	DueDate     string `json:"due_date"`
	Description string `json:"description"`
}

type updateTaskRequest struct {
	Title    *string `json:"title"`
	Assignee *string `json:"assignee"`
	Status   *string `json:"status"`
	Priority *string `json:"priority"`
	DueDate  *string `json:"due_date"`
}

type bulkRequest struct {
	Operation string `json:"operation" binding:"required"`
	Assignee  string `json:"assignee"`
	Status    string `json:"status"`
}

type resolveRequest struct {
	Name string `json:"name" binding:"required"`
}

type replyRequest struct {
	Reply string `json:"reply" binding:"required"`
}

type advanceResponse struct {
	Outcome      string      `json:"outcome"`
	ResolvedName string      `json:"resolved_name,omitempty"`
	Result       string      `json:"result,omitempty"`
	Message      string      `json:"message"`
	Pending      *pendingDTO `json:"pending,omitempty"`
}

type meetingAnalysisRequest struct {
	MeetingContent string `json:"meeting_content" binding:"required"`
	SessionID      string `json:"session_id"`
}

type suggestedTaskDTO struct {
	Number            int    `json:"number"`
	Title             string `json:"title"`
	Details           string `json:"details"`
	SuggestedAssignee string `json:"suggested_assignee"`
	Priority          string `json:"priority"`
}

type meetingAnalysisResponse struct {
	SessionID        string             `json:"session_id"`
	SuggestedTasks   []suggestedTaskDTO `json:"suggested_tasks"`
	TotalSuggestions int                `json:"total_suggestions"`
	Message          string             `json:"message"`
}

func toSuggestedTaskDTOs(suggestions []domain.SuggestedTask) []suggestedTaskDTO {
	out := make([]suggestedTaskDTO, 0, len(suggestions))
	for i, suggestion := range suggestions {
		out = append(out, suggestedTaskDTO{
			Number:            i + 1,
			Title:             suggestion.Title,
			Details:           suggestion.Details,
			SuggestedAssignee: suggestion.Assignee,
			Priority:          string(suggestion.Priority),
		})
	}
	return out
}

type taskSelectionRequest struct {
	Selection string `json:"selection" binding:"required"`
	SessionID string `json:"session_id" binding:"required"`
}

type taskSelectionResponse struct {
	Message      string    `json:"message"`
	CreatedTasks []taskDTO `json:"created_tasks"`
	CreatedCount int       `json:"created_count"`
	Cancelled    bool      `json:"cancelled"`
}
