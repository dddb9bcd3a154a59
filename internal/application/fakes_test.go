package application

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/bnema/taskmate/internal/domain"
	"github.com/bnema/taskmate/internal/ports"
)

type fixedClock struct {
	now time.Time
}

func (f fixedClock) Now() time.Time {
	return f.now
}

type steppingClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *steppingClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *steppingClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

var testNow = time.Date(2026, 3, 2, 10, 0, 0, 0, time.UTC)

func testRoster() ports.StaticRoster {
	return ports.StaticRoster(domain.NewRoster("Ravi", "Ankita", "Sam"))
}

type appliedIntent struct {
	Intent domain.Intent
	Name   string
}

type recordingApplier struct {
	mu      sync.Mutex
	applied []appliedIntent
	err     error
}

func (r *recordingApplier) Apply(_ context.Context, intent domain.Intent, resolvedName string) (string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.err != nil {
		return "", r.err
	}
	r.applied = append(r.applied, appliedIntent{Intent: intent, Name: resolvedName})
	return "applied for " + resolvedName, nil
}

func (r *recordingApplier) calls() []appliedIntent {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]appliedIntent, len(r.applied))
	copy(out, r.applied)
	return out
}

type inMemoryTaskRepo struct {
	mu     sync.Mutex
	nextID domain.TaskID
	tasks  map[domain.TaskID]domain.Task
}

func newInMemoryTaskRepo(tasks ...domain.Task) *inMemoryTaskRepo {
	repo := &inMemoryTaskRepo{tasks: map[domain.TaskID]domain.Task{}}
	for _, task := range tasks {
		_, _ = repo.Create(context.Background(), task)
	}
	return repo
}

func (r *inMemoryTaskRepo) Create(_ context.Context, task domain.Task) (domain.Task, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.nextID++
	task.ID = r.nextID
	r.tasks[task.ID] = task
	return task, nil
}

func (r *inMemoryTaskRepo) GetByID(_ context.Context, id domain.TaskID) (domain.Task, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	task, ok := r.tasks[id]
	if !ok {
		return domain.Task{}, domain.ErrTaskNotFound
	}
	return task, nil
}

func (r *inMemoryTaskRepo) List(_ context.Context, filter domain.TaskFilter) ([]domain.Task, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := []domain.Task{}
	for _, task := range r.tasks {
		if filter.Matches(task) {
			out = append(out, task)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (r *inMemoryTaskRepo) Save(_ context.Context, task domain.Task) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.tasks[task.ID]; !ok {
		return domain.ErrTaskNotFound
	}
	r.tasks[task.ID] = task
	return nil
}

func (r *inMemoryTaskRepo) Delete(_ context.Context, id domain.TaskID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.tasks[id]; !ok {
		return domain.ErrTaskNotFound
	}
	delete(r.tasks, id)
	return nil
}

func (r *inMemoryTaskRepo) Count(context.Context) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.tasks), nil
}

type scriptedModel struct {
	mu        sync.Mutex
	responses []ports.CompletionResponse
	requests  []ports.CompletionRequest
	err       error
}

func (m *scriptedModel) Complete(_ context.Context, req ports.CompletionRequest) (ports.CompletionResponse, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.requests = append(m.requests, req)
	if m.err != nil {
		return ports.CompletionResponse{}, m.err
	}
	if len(m.responses) == 0 {
		return ports.CompletionResponse{Content: "ok"}, nil
	}
	resp := m.responses[0]
	m.responses = m.responses[1:]
	return resp, nil
}

func (m *scriptedModel) ModelName() string {
	return "scripted"
}

func (m *scriptedModel) calls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.requests)
}
