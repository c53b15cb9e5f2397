package gee

import (
	"context"
	"errors"
	"testing"

	"geedownloader/internal/domain"
	"geedownloader/internal/earthengine"
)

func newTracker(fakes map[string]*fakeSession) *JobStatusTracker {
	return NewJobStatusTracker(newManager(fakes, "default-project"), testLogger())
}

func TestPollFindsTask(t *testing.T) {
	fakes := map[string]*fakeSession{
		"default-project": {tasks: []earthengine.Task{
			{ID: "AAA", State: "RUNNING", Progress: float64(40)},
			{ID: "BBB", State: "COMPLETED", Progress: float64(1)},
		}},
	}
	tracker := newTracker(fakes)

	status := tracker.Poll(context.Background(), "AAA", "")
	if status.State != domain.TaskStateRunning {
		t.Fatalf("state = %q", status.State)
	}
	if status.Progress != 40 {
		t.Fatalf("progress = %d, want 40", status.Progress)
	}
}

func TestPollCoercesNumericIds(t *testing.T) {
	fakes := map[string]*fakeSession{
		"default-project": {tasks: []earthengine.Task{
			{ID: float64(4242), State: "READY"},
		}},
	}
	tracker := newTracker(fakes)

	status := tracker.Poll(context.Background(), "4242", "")
	if status.State != domain.TaskStateReady {
		t.Fatalf("state = %q, numeric id must match its string form", status.State)
	}
}

func TestPollUnknownTask(t *testing.T) {
	fakes := map[string]*fakeSession{
		"default-project": {tasks: []earthengine.Task{{ID: "OTHER", State: "RUNNING"}}},
	}
	tracker := newTracker(fakes)

	status := tracker.Poll(context.Background(), "MISSING", "")
	if status.State != domain.TaskStateFailed {
		t.Fatalf("state = %q, want FAILED", status.State)
	}
	if status.Progress != 0 {
		t.Fatalf("progress = %d, want 0", status.Progress)
	}
	if status.Error != taskNotFoundMessage {
		t.Fatalf("error = %q, want %q", status.Error, taskNotFoundMessage)
	}
}

func TestPollListFailureDegradesToUnknown(t *testing.T) {
	fakes := map[string]*fakeSession{
		"default-project": {tasksErr: errors.New("deadline exceeded")},
	}
	tracker := newTracker(fakes)

	status := tracker.Poll(context.Background(), "AAA", "")
	if status.State != domain.TaskStateUnknown {
		t.Fatalf("state = %q, want UNKNOWN", status.State)
	}
	if status.Error == "" {
		t.Fatal("diagnostic must be carried in the error field")
	}
}

func TestPollToleratesSessionFailure(t *testing.T) {
	// Verification fails, but the bare session still lists tasks.
	fakes := map[string]*fakeSession{
		"default-project": {
			computeErr: errors.New("caller is not authorized"),
			tasks:      []earthengine.Task{{ID: "AAA", State: "COMPLETED"}},
		},
	}
	tracker := newTracker(fakes)

	status := tracker.Poll(context.Background(), "AAA", "")
	if status.State != domain.TaskStateCompleted {
		t.Fatalf("state = %q, want COMPLETED despite session failure", status.State)
	}
	if status.Progress != 100 {
		t.Fatalf("progress = %d, want 100", status.Progress)
	}
}

func TestMapTaskState(t *testing.T) {
	cases := map[string]domain.TaskState{
		"READY":            domain.TaskStateReady,
		"pending":          domain.TaskStateReady,
		"SUBMITTED":        domain.TaskStateReady,
		"UNSUBMITTED":      domain.TaskStateReady,
		"RUNNING":          domain.TaskStateRunning,
		"COMPLETED":        domain.TaskStateCompleted,
		"SUCCEEDED":        domain.TaskStateCompleted,
		"FAILED":           domain.TaskStateFailed,
		"CANCELLED":        domain.TaskStateCancelled,
		"CANCELED":         domain.TaskStateCancelled,
		"CANCEL_REQUESTED": domain.TaskStateCancelled,
		"":                 domain.TaskStateUnknown,
		"WEIRD":            domain.TaskStateUnknown,
	}
	for raw, want := range cases {
		if got := mapTaskState(raw); got != want {
			t.Errorf("mapTaskState(%q) = %q, want %q", raw, got, want)
		}
	}
}

func TestNormalizeProgress(t *testing.T) {
	cases := []struct {
		name  string
		state domain.TaskState
		raw   any
		want  int
	}{
		{"completed pins 100", domain.TaskStateCompleted, float64(0.1), 100},
		{"failed pins 0", domain.TaskStateFailed, float64(90), 0},
		{"cancelled pins 0", domain.TaskStateCancelled, float64(50), 0},
		{"nil defaults 0", domain.TaskStateRunning, nil, 0},
		{"fraction rescales", domain.TaskStateRunning, float64(0.5), 50},
		{"one rescales to 100", domain.TaskStateRunning, float64(1), 100},
		{"plain percentage", domain.TaskStateRunning, float64(40), 40},
		{"integer", domain.TaskStateRunning, 73, 73},
		{"string percentage", domain.TaskStateRunning, "62.5", 63},
		{"string fraction", domain.TaskStateRunning, "0.25", 25},
		{"garbage string", domain.TaskStateRunning, "n/a", 0},
		{"negative clamps", domain.TaskStateRunning, float64(-5), 0},
		{"overflow clamps", domain.TaskStateRunning, float64(500), 100},
		{"unexpected type", domain.TaskStateRunning, []string{"x"}, 0},
	}
	for _, tc := range cases {
		if got := normalizeProgress(tc.state, tc.raw); got != tc.want {
			t.Errorf("%s: normalizeProgress = %d, want %d", tc.name, got, tc.want)
		}
	}
}
