package cli

import (
	"bytes"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/me/wisched/internal/logging"
	"github.com/me/wisched/internal/sim"
)

func testLogger() *slog.Logger {
	return logging.Discard()
}

func TestLoadWorkload_Default(t *testing.T) {
	tasks, horizon, err := loadWorkload("", 0)
	if err != nil {
		t.Fatalf("loadWorkload: %v", err)
	}
	if len(tasks) != 4 {
		t.Errorf("tasks = %d, want 4", len(tasks))
	}
	if horizon != 30000 {
		t.Errorf("horizon = %d, want 30000", horizon)
	}
}

func TestLoadWorkload_HorizonOverride(t *testing.T) {
	_, horizon, err := loadWorkload("", 500)
	if err != nil {
		t.Fatalf("loadWorkload: %v", err)
	}
	if horizon != 500 {
		t.Errorf("horizon = %d, want 500", horizon)
	}
}

func TestLoadWorkload_FromFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "tasks.yaml")
	content := "horizon: 1000\ntasks:\n  - {name: A, period: 50, wcet: 10, deadline: 50}\n"
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write task set: %v", err)
	}

	tasks, horizon, err := loadWorkload(path, 0)
	if err != nil {
		t.Fatalf("loadWorkload: %v", err)
	}
	if len(tasks) != 1 || tasks[0].Name != "A" {
		t.Errorf("tasks = %+v, want single task A", tasks)
	}
	if horizon != 1000 {
		t.Errorf("horizon = %d, want 1000", horizon)
	}

	if _, _, err := loadWorkload(filepath.Join(t.TempDir(), "absent.yaml"), 0); err == nil {
		t.Error("missing file: want error")
	}
}

func TestPrintReport(t *testing.T) {
	task, err := sim.NewTask("Solo", 100, 30, 100)
	if err != nil {
		t.Fatalf("NewTask: %v", err)
	}
	res, err := sim.Simulate([]*sim.Task{task}, 300, sim.PolicyEDF, testLogger())
	if err != nil {
		t.Fatalf("Simulate: %v", err)
	}

	var buf bytes.Buffer
	printReport(&buf, res)

	out := buf.String()
	for _, want := range []string{"EDF (preemptive)", "Completed jobs:   3", "Missed deadlines: 0", "Solo"} {
		if !strings.Contains(out, want) {
			t.Errorf("report missing %q:\n%s", want, out)
		}
	}
}

func TestNewRootCmd(t *testing.T) {
	root := NewRootCmd()
	if root.Use != "wisched" {
		t.Errorf("Use = %q, want wisched", root.Use)
	}

	want := map[string]bool{
		"run": false, "compare": false, "export": false,
		"tasks": false, "runs": false, "submit": false,
	}
	for _, c := range root.Commands() {
		name := strings.Fields(c.Use)[0]
		if _, ok := want[name]; ok {
			want[name] = true
		}
	}
	for name, found := range want {
		if !found {
			t.Errorf("missing %q subcommand", name)
		}
	}
}
