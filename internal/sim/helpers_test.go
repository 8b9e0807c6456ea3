package sim

import (
	"log/slog"
	"testing"

	"github.com/me/wisched/internal/logging"
)

// testLogger returns a logger that swallows everything.
func testLogger() *slog.Logger {
	return logging.Discard()
}

// mustTask builds a task or fails the test.
func mustTask(t *testing.T, name string, period, wcet, deadline int) *Task {
	t.Helper()
	task, err := NewTask(name, period, wcet, deadline)
	if err != nil {
		t.Fatalf("NewTask(%s): %v", name, err)
	}
	return task
}

// industrialTasks is the default sensor workload: two tasks with tight
// constrained deadlines (PIR, Button) mixed with two heavy full-deadline
// tasks, ~92% total utilization.
func industrialTasks(t *testing.T) []*Task {
	t.Helper()
	return []*Task{
		mustTask(t, "Ultra", 100, 32, 100),
		mustTask(t, "PIR", 200, 25, 80),
		mustTask(t, "Sound", 500, 180, 500),
		mustTask(t, "Button", 300, 35, 120),
	}
}
