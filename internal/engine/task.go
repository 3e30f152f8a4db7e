package engine

import (
	"fmt"
	"time"
)

// CreateTaskInput is the caller-supplied shape for CreateTask.
type CreateTaskInput struct {
	Title                string
	Description          string
	Priority             int
	RequiredCapabilities []string
	CreatedBy            string
	Dependencies         []uint64
	Deadline             *time.Time
	Metadata             string
}

// CreateTask allocates an id and stores a new Task in state Pending.
func (e *Engine) CreateTask(in CreateTaskInput) (Task, error) {
	if in.Title == "" {
		return Task{}, fmt.Errorf("%w: title is required", ErrValidation)
	}
	now := time.Now().UTC()
	id := e.alloc.next(kindTask)
	t := Task{
		ID:                   id,
		Title:                in.Title,
		Description:          in.Description,
		Status:               TaskPending,
		Priority:             in.Priority,
		RequiredCapabilities: append([]string(nil), in.RequiredCapabilities...),
		CreatedBy:            in.CreatedBy,
		Dependencies:         append([]uint64(nil), in.Dependencies...),
		CreatedAt:            now,
		UpdatedAt:            now,
		Deadline:             in.Deadline,
		Metadata:             in.Metadata,
	}
	e.store.tasks.insert(id, t)
	e.appendTaskEvent(id, TaskEventCreated, in.CreatedBy, "")
	return t, nil
}

// GetTask returns the task with the given id.
func (e *Engine) GetTask(id uint64) (Task, error) {
	t, ok := e.store.tasks.get(id)
	if !ok {
		return Task{}, ErrNotFound
	}
	return t, nil
}

// ListTasks returns a snapshot of every task.
func (e *Engine) ListTasks() []Task {
	return e.store.tasks.iterSnapshot()
}

// TaskEvents returns the ordered event log for a task.
func (e *Engine) TaskEvents(taskID uint64) ([]TaskEvent, error) {
	if _, ok := e.store.tasks.get(taskID); !ok {
		return nil, ErrNotFound
	}
	return e.store.taskEvents.list(taskID), nil
}

func (e *Engine) appendTaskEvent(taskID uint64, kind TaskEventType, agentID, details string) {
	e.store.taskEvents.append(taskID, TaskEvent{
		ID:        e.alloc.next(kindTaskEvent),
		TaskID:    taskID,
		EventType: kind,
		AgentID:   agentID,
		Details:   details,
		Timestamp: time.Now().UTC(),
	})
}

// ClaimTask transitions Pending -> Claimed. Requires the task to be
// currently unclaimed.
func (e *Engine) ClaimTask(taskID uint64, agentID string) (Task, error) {
	return e.transitionTask(taskID, TaskEventClaimed, func(t Task) (Task, error) {
		if t.Status != TaskPending {
			return t, fmt.Errorf("%w: task is %s, not pending", ErrTaskState, t.Status)
		}
		t.Status = TaskClaimed
		t.AssignedAgent = agentID
		return t, nil
	}, agentID, "")
}

// StartTask transitions Claimed -> InProgress. The acting agent must match
// the claimant.
func (e *Engine) StartTask(taskID uint64, agentID string) (Task, error) {
	return e.transitionTask(taskID, TaskEventStarted, func(t Task) (Task, error) {
		if t.Status != TaskClaimed {
			return t, fmt.Errorf("%w: task is %s, not claimed", ErrTaskState, t.Status)
		}
		if t.AssignedAgent != agentID {
			return t, fmt.Errorf("%w: agent %s is not the claimant", ErrTaskState, agentID)
		}
		t.Status = TaskInProgress
		return t, nil
	}, agentID, "")
}

// CompleteTask transitions InProgress -> Completed. The acting agent must
// match the claimant.
func (e *Engine) CompleteTask(taskID uint64, agentID, result string) (Task, error) {
	return e.transitionTask(taskID, TaskEventCompleted, func(t Task) (Task, error) {
		if t.Status != TaskInProgress {
			return t, fmt.Errorf("%w: task is %s, not in progress", ErrTaskState, t.Status)
		}
		if t.AssignedAgent != agentID {
			return t, fmt.Errorf("%w: agent %s is not the claimant", ErrTaskState, agentID)
		}
		t.Status = TaskCompleted
		t.Result = result
		return t, nil
	}, agentID, result)
}

// FailTask transitions InProgress -> Failed. The acting agent must match
// the claimant.
func (e *Engine) FailTask(taskID uint64, agentID, reason string) (Task, error) {
	return e.transitionTask(taskID, TaskEventFailed, func(t Task) (Task, error) {
		if t.Status != TaskInProgress {
			return t, fmt.Errorf("%w: task is %s, not in progress", ErrTaskState, t.Status)
		}
		if t.AssignedAgent != agentID {
			return t, fmt.Errorf("%w: agent %s is not the claimant", ErrTaskState, agentID)
		}
		t.Status = TaskFailed
		t.Result = reason
		return t, nil
	}, agentID, reason)
}

// transitionTask applies fn under the task's update lock, records a task
// event on success, and surfaces ErrNotFound if the task doesn't exist.
func (e *Engine) transitionTask(taskID uint64, eventKind TaskEventType, fn func(Task) (Task, error), agentID, details string) (Task, error) {
	var stepErr error
	updated, ok := e.store.tasks.updateInPlace(taskID, func(t Task) (Task, bool) {
		next, err := fn(t)
		if err != nil {
			stepErr = err
			return t, false
		}
		next.UpdatedAt = time.Now().UTC()
		return next, true
	})
	if !ok {
		return Task{}, ErrNotFound
	}
	if stepErr != nil {
		return updated, stepErr
	}
	e.appendTaskEvent(taskID, eventKind, agentID, details)
	return updated, nil
}
