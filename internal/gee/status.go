package gee

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"geedownloader/internal/domain"
	"geedownloader/internal/infra"
)

// taskNotFoundMessage is the fixed diagnostic for unknown job ids. An
// unknown job is reported as failed, never as an error.
const taskNotFoundMessage = "Task not found or may have expired"

// JobStatusTracker polls the engine's task list and normalizes the
// heterogeneous status payloads into a fixed shape. Poll never fails:
// every unexpected shape degrades to a diagnostic status.
type JobStatusTracker struct {
	sessions *SessionManager
	logger   infra.Logger
}

func NewJobStatusTracker(sessions *SessionManager, logger infra.Logger) *JobStatusTracker {
	return &JobStatusTracker{sessions: sessions, logger: logger}
}

// Poll looks the job up in the engine's full task list. Session
// establishment failure is tolerated: polling continues against an
// unverified session on the assumption that one already exists remotely.
func (t *JobStatusTracker) Poll(ctx context.Context, jobID, projectID string) domain.JobStatus {
	sess, err := t.sessions.Ensure(ctx, projectID)
	if err != nil {
		t.logger.Warn().Str("task_id", jobID).Err(err).Msg("gee: poll continues without verified session")
		sess = t.sessions.Bare(projectID)
	}

	tasks, err := sess.ListTasks(ctx)
	if err != nil {
		return domain.JobStatus{
			State:    domain.TaskStateUnknown,
			Progress: 0,
			Error:    fmt.Sprintf("failed to list tasks: %v", err),
		}
	}

	for _, task := range tasks {
		// Ids are compared as strings: the stored handle id is always a
		// string while the engine may return numbers.
		if fmt.Sprint(task.ID) != jobID {
			continue
		}
		state := mapTaskState(task.State)
		return domain.JobStatus{
			State:    state,
			Progress: normalizeProgress(state, task.Progress),
			Error:    task.ErrorMessage,
		}
	}

	return domain.JobStatus{
		State:    domain.TaskStateFailed,
		Progress: 0,
		Error:    taskNotFoundMessage,
	}
}

func mapTaskState(raw string) domain.TaskState {
	switch strings.ToUpper(strings.TrimSpace(raw)) {
	case "READY", "PENDING", "SUBMITTED", "UNSUBMITTED":
		return domain.TaskStateReady
	case "RUNNING":
		return domain.TaskStateRunning
	case "COMPLETED", "SUCCEEDED":
		return domain.TaskStateCompleted
	case "FAILED":
		return domain.TaskStateFailed
	case "CANCELLED", "CANCELED", "CANCELLING", "CANCEL_REQUESTED":
		return domain.TaskStateCancelled
	default:
		return domain.TaskStateUnknown
	}
}

// normalizeProgress derives a 0-100 integer. Terminal states pin the
// value; otherwise the engine-reported progress is used, rescaled when it
// arrives as a 0-1 fraction and defaulting to 0 when absent or malformed.
func normalizeProgress(state domain.TaskState, raw any) int {
	switch state {
	case domain.TaskStateCompleted:
		return 100
	case domain.TaskStateFailed, domain.TaskStateCancelled:
		return 0
	}

	var value float64
	switch v := raw.(type) {
	case nil:
		return 0
	case float64:
		value = v
	case float32:
		value = float64(v)
	case int:
		value = float64(v)
	case int64:
		value = float64(v)
	case string:
		parsed, err := strconv.ParseFloat(strings.TrimSpace(v), 64)
		if err != nil {
			return 0
		}
		value = parsed
	default:
		return 0
	}

	if value <= 1 && value >= 0 {
		value *= 100
	}
	if value < 0 {
		return 0
	}
	if value > 100 {
		return 100
	}
	return int(value + 0.5)
}
