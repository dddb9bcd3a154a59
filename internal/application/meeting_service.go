package application

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/bnema/taskmate/internal/domain"
	"github.com/bnema/taskmate/internal/ports"
)

const (
	maxSuggestions    = 10
	maxSuggestedTitle = 80
)

type MeetingAnalysis struct {
	SessionID   domain.SessionID
	Suggestions []domain.SuggestedTask
}

type SuggestionOutcome struct {
	SessionID domain.SessionID
	Created   []domain.Task
	Cancelled bool
}

// MeetingService turns meeting notes into suggested tasks kept on the
// session, and creates the ones the user later picks by number.
type MeetingService struct {
	model    ports.ChatModel
	tasks    *TaskService
	confirm  *ConfirmationService
	sessions ports.SessionStore
	clock    ports.Clock
	settings AssistantSettings
	logger   *zap.Logger
	metrics  ports.Metrics
}

func NewMeetingService(model ports.ChatModel, tasks *TaskService, confirm *ConfirmationService, sessions ports.SessionStore, clock ports.Clock, settings AssistantSettings, opts ...Option) *MeetingService {
	if clock == nil {
		clock = ports.SystemClock{}
	}
	if settings.MaxTokens <= 0 {
		settings.MaxTokens = DefaultAssistantSettings().MaxTokens
	}
	o := buildOptions(opts)

	return &MeetingService{
		model:    model,
		tasks:    tasks,
		confirm:  confirm,
		sessions: sessions,
		clock:    clock,
		settings: settings,
		logger:   o.logger,
		metrics:  o.metrics,
	}
}

// Analyze asks the model for action items in notes and stores them on the
// session, replacing earlier suggestions.
func (m *MeetingService) Analyze(ctx context.Context, sessionID domain.SessionID, notes string) (MeetingAnalysis, error) {
	notes = strings.TrimSpace(notes)
	if notes == "" {
		return MeetingAnalysis{}, fmt.Errorf("%w: meeting content is empty", domain.ErrInvalidTask)
	}
	if m.model == nil {
		return MeetingAnalysis{}, domain.ErrModelUnavailable
	}

	roster, err := m.confirm.Roster(ctx)
	if err != nil {
		return MeetingAnalysis{}, err
	}

	start := time.Now()
	resp, err := m.model.Complete(ctx, ports.CompletionRequest{
		Messages: []ports.ChatMessage{
			{Role: ports.MessageRoleSystem, Content: meetingPrompt(roster, m.clock.Now())},
			{Role: ports.MessageRoleUser, Content: notes},
		},
		MaxTokens:   m.settings.MaxTokens,
		Temperature: m.settings.Temperature,
	})
	m.metrics.ObserveCompletion(m.model.ModelName(), time.Since(start), err)
	if err != nil {
		return MeetingAnalysis{}, fmt.Errorf("analyze meeting with %s: %w", m.model.ModelName(), err)
	}

	raw, err := decodeSuggestions(resp.Content)
	if err != nil {
		return MeetingAnalysis{}, err
	}
	suggestions, err := m.normalize(ctx, raw)
	if err != nil {
		return MeetingAnalysis{}, err
	}

	session, err := m.sessions.Update(ctx, sessionID, func(session *domain.Session) error {
		session.Suggestions = suggestions
		return nil
	})
	if err != nil {
		return MeetingAnalysis{}, fmt.Errorf("store suggestions: %w", err)
	}
	m.logger.Info("meeting analyzed", zap.String("session_id", string(session.ID)), zap.Int("suggestions", len(suggestions)))

	return MeetingAnalysis{SessionID: session.ID, Suggestions: suggestions}, nil
}

// Suggestions returns what the session currently holds.
func (m *MeetingService) Suggestions(ctx context.Context, sessionID domain.SessionID) ([]domain.SuggestedTask, error) {
	session, err := m.sessions.Get(ctx, sessionID)
	if err != nil {
		return nil, fmt.Errorf("get session %s: %w", sessionID, err)
	}
	return session.Suggestions, nil
}

// CreateSelected creates the picked suggestions and clears the rest. A
// selection such as "none" clears them without creating anything. When a
// create fails the suggestions not yet created stay on the session.
func (m *MeetingService) CreateSelected(ctx context.Context, sessionID domain.SessionID, selection string) (SuggestionOutcome, error) {
	if _, err := m.sessions.Get(ctx, sessionID); err != nil {
		return SuggestionOutcome{}, fmt.Errorf("%w: analyze meeting content first", domain.ErrNoSuggestions)
	}

	out := SuggestionOutcome{SessionID: sessionID}
	var createErr error
	_, err := m.sessions.Update(ctx, sessionID, func(session *domain.Session) error {
		if len(session.Suggestions) == 0 {
			return fmt.Errorf("%w: analyze meeting content first", domain.ErrNoSuggestions)
		}
		picked, err := ParseSelection(selection, len(session.Suggestions))
		if err != nil {
			return err
		}
		if len(picked) == 0 {
			session.Suggestions = nil
			out.Cancelled = true
			return nil
		}

		for i, idx := range picked {
			suggestion := session.Suggestions[idx]
			task, err := m.tasks.Create(ctx, CreateTaskCommand{
				Title:       suggestion.Title,
				Assignee:    suggestion.Assignee,
				Priority:    suggestion.Priority,
				Description: suggestion.Details,
			})
			if err != nil {
				remaining := make([]domain.SuggestedTask, 0, len(picked)-i)
				for _, left := range picked[i:] {
					remaining = append(remaining, session.Suggestions[left])
				}
				session.Suggestions = remaining
				createErr = fmt.Errorf("create suggested task %d: %w", idx+1, err)
				return nil
			}
			out.Created = append(out.Created, task)
		}
		session.Suggestions = nil
		return nil
	})
	if err != nil {
		return SuggestionOutcome{}, err
	}

	m.logger.Info("suggested tasks settled",
		zap.String("session_id", string(sessionID)),
		zap.Int("created", len(out.Created)),
		zap.Bool("cancelled", out.Cancelled),
	)
	return out, createErr
}

// normalize trims titles, settles priorities and keeps only assignees the
// roster accepts outright; anything else becomes unassigned.
func (m *MeetingService) normalize(ctx context.Context, raw []suggestionPayload) ([]domain.SuggestedTask, error) {
	out := make([]domain.SuggestedTask, 0, len(raw))
	for _, item := range raw {
		title := truncateRunes(strings.TrimSpace(item.Title), maxSuggestedTitle)
		if title == "" {
			continue
		}

		priority, err := domain.ParsePriority(item.Priority)
		if err != nil {
			priority = m.tasks.defaults.Priority
		}

		assignee := domain.Unassigned
		if name := strings.TrimSpace(item.Assignee); name != "" && !domain.IsUnassignedName(name) {
			verdict, err := m.confirm.ResolveName(ctx, name)
			if err != nil {
				return nil, err
			}
			if verdict.IsAccepted() {
				assignee = verdict.Name
			}
		}

		out = append(out, domain.SuggestedTask{
			Title:    title,
			Details:  strings.TrimSpace(item.Details),
			Assignee: assignee,
			Priority: priority,
		})
		if len(out) == maxSuggestions {
			break
		}
	}
	return out, nil
}

type suggestionPayload struct {
	Title    string `json:"title"`
	Details  string `json:"details"`
	Assignee string `json:"assignee"`
	Priority string `json:"priority"`
}

// decodeSuggestions reads {"tasks": [...]} from a model reply that may wrap
// the object in prose or a code fence.
func decodeSuggestions(content string) ([]suggestionPayload, error) {
	start := strings.Index(content, "{")
	end := strings.LastIndex(content, "}")
	if start < 0 || end < start {
		return nil, fmt.Errorf("model reply carries no task list")
	}

	var payload struct {
		Tasks []suggestionPayload `json:"tasks"`
	}
	if err := json.Unmarshal([]byte(content[start:end+1]), &payload); err != nil {
		return nil, fmt.Errorf("decode suggested tasks: %w", err)
	}
	return payload.Tasks, nil
}

func meetingPrompt(roster domain.Roster, now time.Time) string {
	members := roster.String()
	if roster.IsEmpty() {
		members = "(none configured)"
	}

	return strings.Join([]string{
		"You extract actionable tasks from meeting notes for a small team.",
		"Team members: " + members + ".",
		"Today is " + now.Format(domain.DateLayout) + ".",
		`Reply with JSON only, shaped as {"tasks":[{"title":"...","details":"...","assignee":"...","priority":"high|medium|low"}]}.`,
		"Keep titles short. Use 'unassigned' when the notes name no owner. Return an empty list when nothing is actionable.",
	}, "\n")
}

func truncateRunes(s string, limit int) string {
	r := []rune(s)
	if len(r) <= limit {
		return s
	}
	return strings.TrimSpace(string(r[:limit-3])) + "..."
}
