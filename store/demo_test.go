package store

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDemoData(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	inserted, err := s.LoadDemoData(ctx)
	require.NoError(t, err)
	assert.Equal(t, len(demoTasks), inserted)

	// Demo tasks are hidden from the default listing.
	tasks, err := s.ListTasks(ctx, TaskFilter{})
	require.NoError(t, err)
	assert.Empty(t, tasks)

	tasks, err = s.ListTasks(ctx, TaskFilter{IncludeDemo: true})
	require.NoError(t, err)
	assert.Len(t, tasks, len(demoTasks))

	task, err := s.GetTask(ctx, "CMINTDEV-242")
	require.NoError(t, err)
	assert.True(t, task.IsDemo)
	assert.Equal(t, 2, task.Priority)
	assert.Equal(t, "DEV ONGOING", task.StatusName)
}

func TestLoadDemoDataSkipsExisting(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	_, err := s.LoadDemoData(ctx)
	require.NoError(t, err)

	inserted, err := s.LoadDemoData(ctx)
	require.NoError(t, err)
	assert.Zero(t, inserted)

	tasks, err := s.ListTasks(ctx, TaskFilter{IncludeDemo: true})
	require.NoError(t, err)
	assert.Len(t, tasks, len(demoTasks))
}

func TestClearDemoDataKeepsRealTasks(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	createTask(t, s, "T-1", "real work", 1, 1)

	_, err := s.LoadDemoData(ctx)
	require.NoError(t, err)

	require.NoError(t, s.ClearDemoData(ctx))

	tasks, err := s.ListTasks(ctx, TaskFilter{IncludeDemo: true})
	require.NoError(t, err)
	require.Len(t, tasks, 1)
	assert.Equal(t, "T-1", tasks[0].ID)

	// Demo history went with the demo tasks; the real task keeps its own.
	history, err := s.TaskHistory(ctx, "CMINTDEV-242")
	require.NoError(t, err)
	assert.Empty(t, history)

	history, err = s.TaskHistory(ctx, "T-1")
	require.NoError(t, err)
	assert.Len(t, history, 1)
}

func TestClearAllDataKeepsCategoriesAndStatuses(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	createTask(t, s, "T-1", "real work", 1, 1)
	_, err := s.LoadDemoData(ctx)
	require.NoError(t, err)

	require.NoError(t, s.ClearAllData(ctx))

	tasks, err := s.ListTasks(ctx, TaskFilter{IncludeDemo: true})
	require.NoError(t, err)
	assert.Empty(t, tasks)

	history, err := s.TaskHistory(ctx, "T-1")
	require.NoError(t, err)
	assert.Empty(t, history)

	categories, err := s.ListCategories(ctx)
	require.NoError(t, err)
	assert.Len(t, categories, 6)

	statuses, err := s.ListStatuses(ctx)
	require.NoError(t, err)
	assert.Len(t, statuses, 4)
}
