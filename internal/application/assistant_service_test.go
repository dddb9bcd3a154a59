package application

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bnema/taskmate/internal/adapters/session/memory"
	"github.com/bnema/taskmate/internal/domain"
	"github.com/bnema/taskmate/internal/ports"
)

type assistantFixture struct {
	assistant *AssistantService
	model     *scriptedModel
	repo      *inMemoryTaskRepo
	sessions  *memory.Store
}

func newAssistantFixture(model *scriptedModel) assistantFixture {
	clock := fixedClock{now: testNow}
	repo := newInMemoryTaskRepo()
	sessions := memory.NewStore(clock)
	tasks := NewTaskService(repo, clock, DefaultTaskDefaults())
	confirm := NewConfirmationService(DefaultResolver(), testRoster(), sessions, tasks, clock)

	var chatModel ports.ChatModel
	if model != nil {
		chatModel = model
	}

	return assistantFixture{
		assistant: NewAssistantService(chatModel, tasks, confirm, sessions, clock, DefaultAssistantSettings()),
		model:     model,
		repo:      repo,
		sessions:  sessions,
	}
}

func createCall(assignee string) ports.ToolCall {
	return ports.ToolCall{ID: "call-1", Name: ToolCreateTask, Arguments: map[string]any{"title": "Write report", "assignee": assignee, "priority": "high"}}
}

func TestChatAmbiguousAssigneeAsksThenConfirmAppliesLocally(t *testing.T) {
	t.Parallel()

	model := &scriptedModel{responses: []ports.CompletionResponse{{ToolCalls: []ports.ToolCall{createCall("Rave")}}}}
	f := newAssistantFixture(model)
	ctx := context.Background()

	first, err := f.assistant.Chat(ctx, "", "create a report task for Rave")
	require.NoError(t, err)
	require.NotEmpty(t, first.SessionID)
	require.NotNil(t, first.Pending)
	assert.Equal(t, "Ravi", first.Pending.SuggestedName)
	assert.Contains(t, first.Response, "Did you mean to assign this to 'Ravi'?")
	assert.Equal(t, 1, model.calls())

	count, err := f.repo.Count(ctx)
	require.NoError(t, err)
	assert.Zero(t, count)

	second, err := f.assistant.Chat(ctx, first.SessionID, "yes")
	require.NoError(t, err)
	assert.Equal(t, domain.OutcomeApplied, second.Outcome)
	assert.Contains(t, second.Response, "assigned to Ravi")
	assert.Equal(t, 1, model.calls())

	task, err := f.repo.GetByID(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, "Ravi", task.Assignee)
	assert.Equal(t, domain.PriorityHigh, task.Priority)

	session, err := f.sessions.Get(ctx, first.SessionID)
	require.NoError(t, err)
	assert.Equal(t, 2, session.TurnCount)
	assert.Len(t, session.History, 4)
	assert.Nil(t, session.Pending)
}

func TestChatDenyCancelsWithoutModel(t *testing.T) {
	t.Parallel()

	model := &scriptedModel{responses: []ports.CompletionResponse{{ToolCalls: []ports.ToolCall{createCall("Rave")}}}}
	f := newAssistantFixture(model)
	ctx := context.Background()

	first, err := f.assistant.Chat(ctx, "s-1", "create a report task for Rave")
	require.NoError(t, err)

	second, err := f.assistant.Chat(ctx, first.SessionID, "no")
	require.NoError(t, err)
	assert.Equal(t, domain.OutcomeCancelled, second.Outcome)
	assert.Contains(t, second.Response, "cancelled")

	count, err := f.repo.Count(ctx)
	require.NoError(t, err)
	assert.Zero(t, count)
}

func TestChatAcceptedAssigneeRunsToolAndSummarizes(t *testing.T) {
	t.Parallel()

	model := &scriptedModel{responses: []ports.CompletionResponse{
		{ToolCalls: []ports.ToolCall{createCall("ravi")}},
		{Content: "Done, the report task belongs to Ravi."},
	}}
	f := newAssistantFixture(model)

	reply, err := f.assistant.Chat(context.Background(), "s-1", "create a report task for ravi")
	require.NoError(t, err)
	assert.Equal(t, "Done, the report task belongs to Ravi.", reply.Response)
	assert.Equal(t, []string{ToolCreateTask}, reply.ToolCalls)
	assert.Nil(t, reply.Pending)
	assert.Equal(t, 2, model.calls())

	task, err := f.repo.GetByID(context.Background(), 1)
	require.NoError(t, err)
	assert.Equal(t, "Ravi", task.Assignee)

	followUp := model.requests[1]
	assert.Empty(t, followUp.Tools)
	assert.Contains(t, followUp.Messages[len(followUp.Messages)-1].Content, "Tool results:")
}

func TestChatUnknownAssigneeExplainsRoster(t *testing.T) {
	t.Parallel()

	model := &scriptedModel{responses: []ports.CompletionResponse{
		{ToolCalls: []ports.ToolCall{createCall("Xyz123")}},
		{Content: ""},
	}}
	f := newAssistantFixture(model)

	reply, err := f.assistant.Chat(context.Background(), "s-1", "create a task for Xyz123")
	require.NoError(t, err)
	assert.Contains(t, reply.Response, "Available team members: Ravi, Ankita, Sam")
}

func TestChatWithoutModel(t *testing.T) {
	t.Parallel()

	f := newAssistantFixture(nil)
	_, err := f.assistant.Chat(context.Background(), "s-1", "hello")
	require.ErrorIs(t, err, domain.ErrModelUnavailable)

	_, err = f.assistant.Chat(context.Background(), "s-1", "   ")
	require.Error(t, err)
}

func TestChatModelErrorIsWrapped(t *testing.T) {
	t.Parallel()

	model := &scriptedModel{err: errors.New("rate limited")}
	f := newAssistantFixture(model)

	_, err := f.assistant.Chat(context.Background(), "s-1", "hello")
	require.ErrorContains(t, err, "rate limited")
}

func TestChatReplaysHistoryWithSystemPrompt(t *testing.T) {
	t.Parallel()

	model := &scriptedModel{responses: []ports.CompletionResponse{{Content: "hi"}, {Content: "again"}}}
	f := newAssistantFixture(model)
	ctx := context.Background()

	_, err := f.assistant.Chat(ctx, "s-1", "hello")
	require.NoError(t, err)
	_, err = f.assistant.Chat(ctx, "s-1", "what now")
	require.NoError(t, err)

	req := model.requests[1]
	require.Len(t, req.Messages, 4)
	assert.Equal(t, ports.MessageRoleSystem, req.Messages[0].Role)
	assert.Contains(t, req.Messages[0].Content, "Ravi, Ankita, Sam")
	assert.Equal(t, "hello", req.Messages[1].Content)
	assert.Equal(t, ports.MessageRoleAssistant, req.Messages[2].Role)
	assert.Equal(t, "what now", req.Messages[3].Content)
	assert.Len(t, req.Tools, 4)
}
