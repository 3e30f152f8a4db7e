package engine

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTaskLifecycleHappyPath(t *testing.T) {
	e := newTestEngine(t)

	task, err := e.CreateTask(CreateTaskInput{Title: "ingest logs", CreatedBy: "a1"})
	require.NoError(t, err)
	assert.Equal(t, TaskPending, task.Status)

	claimed, err := e.ClaimTask(task.ID, "agent-1")
	require.NoError(t, err)
	assert.Equal(t, TaskClaimed, claimed.Status)
	assert.Equal(t, "agent-1", claimed.AssignedAgent)

	started, err := e.StartTask(task.ID, "agent-1")
	require.NoError(t, err)
	assert.Equal(t, TaskInProgress, started.Status)

	done, err := e.CompleteTask(task.ID, "agent-1", "1000 lines ingested")
	require.NoError(t, err)
	assert.Equal(t, TaskCompleted, done.Status)
	assert.Equal(t, "1000 lines ingested", done.Result)

	events, err := e.TaskEvents(task.ID)
	require.NoError(t, err)
	kinds := make([]TaskEventType, len(events))
	for i, ev := range events {
		kinds[i] = ev.EventType
	}
	assert.Equal(t, []TaskEventType{TaskEventCreated, TaskEventClaimed, TaskEventStarted, TaskEventCompleted}, kinds)
}

func TestTaskClaimRejectsAlreadyClaimed(t *testing.T) {
	e := newTestEngine(t)
	task, err := e.CreateTask(CreateTaskInput{Title: "t"})
	require.NoError(t, err)

	_, err = e.ClaimTask(task.ID, "agent-1")
	require.NoError(t, err)

	_, err = e.ClaimTask(task.ID, "agent-2")
	assert.ErrorIs(t, err, ErrTaskState)
}

func TestTaskStartRejectsWrongClaimant(t *testing.T) {
	e := newTestEngine(t)
	task, err := e.CreateTask(CreateTaskInput{Title: "t"})
	require.NoError(t, err)
	_, err = e.ClaimTask(task.ID, "agent-1")
	require.NoError(t, err)

	_, err = e.StartTask(task.ID, "agent-2")
	assert.ErrorIs(t, err, ErrTaskState)
}

func TestTaskFailFromInProgress(t *testing.T) {
	e := newTestEngine(t)
	task, err := e.CreateTask(CreateTaskInput{Title: "t"})
	require.NoError(t, err)
	_, err = e.ClaimTask(task.ID, "agent-1")
	require.NoError(t, err)
	_, err = e.StartTask(task.ID, "agent-1")
	require.NoError(t, err)

	failed, err := e.FailTask(task.ID, "agent-1", "network error")
	require.NoError(t, err)
	assert.Equal(t, TaskFailed, failed.Status)
	assert.Equal(t, "network error", failed.Result)
}
