package sqlite

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bnema/taskmate/internal/domain"
)

func newTestRepository(t *testing.T) *Repository {
	t.Helper()

	repo, err := Open(filepath.Join(t.TempDir(), "tasks.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = repo.Close() })
	return repo
}

func sampleTask(title, assignee string, status domain.Status) domain.Task {
	return domain.Task{
		Title:     title,
		Assignee:  assignee,
		Status:    status,
		Priority:  domain.PriorityMedium,
		CreatedAt: time.Date(2026, 3, 2, 10, 0, 0, 0, time.UTC),
		DueDate:   time.Date(2026, 3, 9, 0, 0, 0, 0, time.UTC),
	}
}

func TestRepositoryCreateGetRoundTrip(t *testing.T) {
	t.Parallel()

	repo := newTestRepository(t)
	ctx := context.Background()

	created, err := repo.Create(ctx, sampleTask("Write report", "Ravi", domain.StatusPending))
	require.NoError(t, err)
	assert.Equal(t, domain.TaskID(1), created.ID)

	got, err := repo.GetByID(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, created, got)

	_, err = repo.GetByID(ctx, 99)
	require.ErrorIs(t, err, domain.ErrTaskNotFound)
}

func TestRepositoryListFilters(t *testing.T) {
	t.Parallel()

	repo := newTestRepository(t)
	ctx := context.Background()
	for _, task := range []domain.Task{
		sampleTask("a", "Ravi", domain.StatusPending),
		sampleTask("b", "Sam", domain.StatusDone),
		sampleTask("c", "Ravi", domain.StatusDone),
	} {
		_, err := repo.Create(ctx, task)
		require.NoError(t, err)
	}

	all, err := repo.List(ctx, domain.TaskFilter{})
	require.NoError(t, err)
	assert.Len(t, all, 3)

	ravi, err := repo.List(ctx, domain.TaskFilter{Assignee: "ravi"})
	require.NoError(t, err)
	require.Len(t, ravi, 2)
	assert.Equal(t, "a", ravi[0].Title)

	done, err := repo.List(ctx, domain.TaskFilter{Assignee: "Ravi", Status: domain.StatusDone})
	require.NoError(t, err)
	require.Len(t, done, 1)
	assert.Equal(t, "c", done[0].Title)

	none, err := repo.List(ctx, domain.TaskFilter{Priority: domain.PriorityHigh})
	require.NoError(t, err)
	assert.Empty(t, none)

	count, err := repo.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, 3, count)
}

func TestRepositorySaveAndDelete(t *testing.T) {
	t.Parallel()

	repo := newTestRepository(t)
	ctx := context.Background()
	created, err := repo.Create(ctx, sampleTask("a", "Ravi", domain.StatusPending))
	require.NoError(t, err)

	created.Status = domain.StatusInProgress
	created.Assignee = "Sam"
	created.DueDate = time.Time{}
	require.NoError(t, repo.Save(ctx, created))

	got, err := repo.GetByID(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.StatusInProgress, got.Status)
	assert.Equal(t, "Sam", got.Assignee)
	assert.True(t, got.DueDate.IsZero())

	require.NoError(t, repo.Delete(ctx, created.ID))
	require.ErrorIs(t, repo.Delete(ctx, created.ID), domain.ErrTaskNotFound)
	require.ErrorIs(t, repo.Save(ctx, created), domain.ErrTaskNotFound)
}

func TestOpenInMemory(t *testing.T) {
	t.Parallel()

	repo, err := Open(":memory:")
	require.NoError(t, err)
	defer repo.Close()

	_, err = repo.Create(context.Background(), sampleTask("a", "Ravi", domain.StatusPending))
	require.NoError(t, err)
	count, err := repo.Count(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, count)
}
