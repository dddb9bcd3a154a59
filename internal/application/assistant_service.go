package application

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/bnema/taskmate/internal/domain"
	"github.com/bnema/taskmate/internal/ports"
)

type AssistantSettings struct {
	MaxTokens   int
	Temperature float64
	// HistoryTurns bounds how many earlier turns are replayed to the model.
	HistoryTurns int
}

func DefaultAssistantSettings() AssistantSettings {
	return AssistantSettings{MaxTokens: 1024, Temperature: 0.1, HistoryTurns: 20}
}

type ChatReply struct {
	SessionID domain.SessionID
	Response  string
	// Outcome is set when the message settled a pending confirmation.
	Outcome   domain.Outcome
	Pending   *domain.PendingConfirmation
	ToolCalls []string
}

// AssistantService runs one conversational turn: a reply to an outstanding
// confirmation is settled locally, anything else goes to the model with the
// task tools attached.
type AssistantService struct {
	model    ports.ChatModel
	confirm  *ConfirmationService
	sessions ports.SessionStore
	tools    *ToolRunner
	meetings *MeetingService
	clock    ports.Clock
	settings AssistantSettings
	logger   *zap.Logger
	metrics  ports.Metrics
}

func NewAssistantService(model ports.ChatModel, tasks *TaskService, confirm *ConfirmationService, sessions ports.SessionStore, clock ports.Clock, settings AssistantSettings, opts ...Option) *AssistantService {
	if clock == nil {
		clock = ports.SystemClock{}
	}
	defaults := DefaultAssistantSettings()
	if settings.MaxTokens <= 0 {
		settings.MaxTokens = defaults.MaxTokens
	}
	if settings.HistoryTurns <= 0 {
		settings.HistoryTurns = defaults.HistoryTurns
	}
	o := buildOptions(opts)

	return &AssistantService{
		model:    model,
		confirm:  confirm,
		sessions: sessions,
		tools:    NewToolRunner(tasks, confirm),
		meetings: NewMeetingService(model, tasks, confirm, sessions, clock, settings, opts...),
		clock:    clock,
		settings: settings,
		logger:   o.logger,
		metrics:  o.metrics,
	}
}

// ModelName is empty when no model is configured.
func (a *AssistantService) ModelName() string {
	if a.model == nil {
		return ""
	}
	return a.model.ModelName()
}

func (a *AssistantService) Chat(ctx context.Context, sessionID domain.SessionID, message string) (ChatReply, error) {
	message = strings.TrimSpace(message)
	if message == "" {
		return ChatReply{}, fmt.Errorf("%w: message is empty", domain.ErrInvalidTask)
	}

	session, created, err := a.sessions.GetOrCreate(ctx, sessionID)
	if err != nil {
		return ChatReply{}, fmt.Errorf("open session: %w", err)
	}
	if created {
		a.logger.Info("session created", zap.String("session_id", string(session.ID)))
	}
	history := session.History
	if err := a.sessions.AppendTurn(ctx, session.ID, domain.Turn{Role: domain.RoleUser, Content: message, At: a.clock.Now()}); err != nil {
		return ChatReply{}, fmt.Errorf("record user turn: %w", err)
	}

	reply := ChatReply{SessionID: session.ID}
	if session.Awaiting() {
		settled, ok, err := a.settle(ctx, session.ID, message)
		if err != nil {
			return ChatReply{}, err
		}
		if ok {
			reply.Response = settled.text
			reply.Outcome = settled.outcome
			reply.Pending = settled.pending
			return reply, a.recordAssistant(ctx, session.ID, reply.Response)
		}
	}

	if len(session.Suggestions) > 0 {
		if _, err := ParseSelection(message, len(session.Suggestions)); err == nil {
			outcome, err := a.meetings.CreateSelected(ctx, session.ID, message)
			if err != nil {
				return ChatReply{}, err
			}
			reply.Response = FormatSuggestionOutcome(outcome)
			return reply, a.recordAssistant(ctx, session.ID, reply.Response)
		}
	}

	if a.model == nil {
		return ChatReply{}, domain.ErrModelUnavailable
	}

	roster, err := a.confirm.Roster(ctx)
	if err != nil {
		return ChatReply{}, err
	}
	messages := a.buildMessages(roster, history, message)

	resp, err := a.complete(ctx, ports.CompletionRequest{
		Messages:    messages,
		Tools:       ToolDefinitions(),
		MaxTokens:   a.settings.MaxTokens,
		Temperature: a.settings.Temperature,
	})
	if err != nil {
		return ChatReply{}, err
	}

	if len(resp.ToolCalls) == 0 {
		reply.Response = strings.TrimSpace(resp.Content)
		return reply, a.recordAssistant(ctx, session.ID, reply.Response)
	}

	results := make([]string, 0, len(resp.ToolCalls))
	for _, call := range resp.ToolCalls {
		reply.ToolCalls = append(reply.ToolCalls, call.Name)
		outcome, err := a.tools.Run(ctx, session.ID, call)
		if err != nil {
			return ChatReply{}, fmt.Errorf("run tool %s: %w", call.Name, err)
		}
		a.logger.Debug("tool executed", zap.String("session_id", string(session.ID)), zap.String("tool", call.Name))
		if outcome.Pending != nil {
			reply.Pending = outcome.Pending
		}
		results = append(results, fmt.Sprintf("%s: %s", call.Name, outcome.Text))
	}

	// A confirmation question goes to the user verbatim.
	if reply.Pending != nil {
		reply.Response = ConfirmationQuestion(*reply.Pending)
		return reply, a.recordAssistant(ctx, session.ID, reply.Response)
	}

	followUp := append(messages,
		ports.ChatMessage{Role: ports.MessageRoleAssistant, Content: strings.TrimSpace(resp.Content)},
		ports.ChatMessage{Role: ports.MessageRoleUser, Content: "Tool results:\n" + strings.Join(results, "\n") + "\nSummarize the results for me."},
	)
	final, err := a.complete(ctx, ports.CompletionRequest{
		Messages:    followUp,
		MaxTokens:   a.settings.MaxTokens,
		Temperature: a.settings.Temperature,
	})
	if err != nil {
		return ChatReply{}, err
	}

	reply.Response = strings.TrimSpace(final.Content)
	if reply.Response == "" {
		reply.Response = strings.Join(results, "\n")
	}
	return reply, a.recordAssistant(ctx, session.ID, reply.Response)
}

type settledTurn struct {
	text    string
	outcome domain.Outcome
	pending *domain.PendingConfirmation
}

func (a *AssistantService) settle(ctx context.Context, sessionID domain.SessionID, message string) (settledTurn, bool, error) {
	result, err := a.confirm.Advance(ctx, sessionID, message)
	if err != nil {
		return settledTurn{}, false, err
	}
	if result.Outcome == domain.OutcomeNotAReply {
		return settledTurn{}, false, nil
	}

	roster, err := a.confirm.Roster(ctx)
	if err != nil {
		return settledTurn{}, false, err
	}

	return settledTurn{text: DescribeAdvance(result, roster), outcome: result.Outcome, pending: result.Pending}, true, nil
}

func (a *AssistantService) complete(ctx context.Context, req ports.CompletionRequest) (ports.CompletionResponse, error) {
	start := time.Now()
	resp, err := a.model.Complete(ctx, req)
	a.metrics.ObserveCompletion(a.model.ModelName(), time.Since(start), err)
	if err != nil {
		return ports.CompletionResponse{}, fmt.Errorf("complete with %s: %w", a.model.ModelName(), err)
	}
	return resp, nil
}

func (a *AssistantService) recordAssistant(ctx context.Context, sessionID domain.SessionID, text string) error {
	if err := a.sessions.AppendTurn(ctx, sessionID, domain.Turn{Role: domain.RoleAssistant, Content: text, At: a.clock.Now()}); err != nil {
		return fmt.Errorf("record assistant turn: %w", err)
	}
	return nil
}

func (a *AssistantService) buildMessages(roster domain.Roster, history []domain.Turn, message string) []ports.ChatMessage {
	if len(history) > a.settings.HistoryTurns {
		history = history[len(history)-a.settings.HistoryTurns:]
	}

	messages := make([]ports.ChatMessage, 0, len(history)+2)
	messages = append(messages, ports.ChatMessage{Role: ports.MessageRoleSystem, Content: SystemPrompt(roster, a.clock.Now())})
	for _, turn := range history {
		role := ports.MessageRoleUser
		if turn.Role == domain.RoleAssistant {
			role = ports.MessageRoleAssistant
		}
		messages = append(messages, ports.ChatMessage{Role: role, Content: turn.Content})
	}
	messages = append(messages, ports.ChatMessage{Role: ports.MessageRoleUser, Content: message})

	return messages
}

func SystemPrompt(roster domain.Roster, now time.Time) string {
	members := roster.String()
	if roster.IsEmpty() {
		members = "(none configured)"
	}

	return strings.Join([]string{
		"You are a task management assistant for a small team.",
		"Team members: " + members + ".",
		"Today is " + now.Format(domain.DateLayout) + ".",
		"Use the tools to read, create and update tasks. Pass assignee names exactly as the user wrote them;",
		"the tools check them against the team list and ask the user to confirm near matches.",
		"Use 'unassigned' for tasks without an owner. Dates are YYYY-MM-DD.",
		"Keep answers short and list tasks with their numbers.",
	}, "\n")
}

func isUserError(err error) bool {
	return errors.Is(err, domain.ErrInvalidTask) || errors.Is(err, domain.ErrTaskNotFound)
}
