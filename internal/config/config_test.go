package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/me/wisched/internal/sim"
)

func writeTaskSet(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "tasks.yaml")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("writing task set: %v", err)
	}
	return path
}

func TestDefaultSimConfig(t *testing.T) {
	cfg := DefaultSimConfig()
	if cfg.Horizon != 30000 {
		t.Errorf("Horizon = %d, want 30000", cfg.Horizon)
	}
	if len(cfg.Tasks) != 4 {
		t.Fatalf("tasks = %d, want 4", len(cfg.Tasks))
	}

	tasks, err := cfg.BuildTasks()
	if err != nil {
		t.Fatalf("BuildTasks: %v", err)
	}
	u := sim.TotalUtilization(tasks)
	if u < 0.9 || u > 0.95 {
		t.Errorf("default workload utilization = %v, want ~0.92", u)
	}

	// Sound is the monitoring task and tolerates delays; the emergency and
	// collision-avoidance tasks stay delay-sensitive.
	for _, task := range tasks {
		want := sim.ClassDelaySensitive
		if task.Name == "Sound" {
			want = sim.ClassDelayTolerant
		}
		if task.Class != want {
			t.Errorf("%s class = %q, want %q", task.Name, task.Class, want)
		}
	}
}

func TestLoadSimConfig(t *testing.T) {
	path := writeTaskSet(t, `
horizon: 1000
tasks:
  - name: Ultra
    period: 100
    wcet: 32
    deadline: 100
  - name: Sound
    period: 500
    wcet: 180
    deadline: 500
    class: delay_tolerant
`)
	cfg, err := LoadSimConfig(path)
	if err != nil {
		t.Fatalf("LoadSimConfig: %v", err)
	}
	if cfg.Horizon != 1000 {
		t.Errorf("Horizon = %d, want 1000", cfg.Horizon)
	}
	if len(cfg.Tasks) != 2 {
		t.Fatalf("tasks = %d, want 2", len(cfg.Tasks))
	}
	if cfg.Tasks[1].Class != "delay_tolerant" {
		t.Errorf("Sound class = %q, want delay_tolerant", cfg.Tasks[1].Class)
	}

	tasks, err := cfg.BuildTasks()
	if err != nil {
		t.Fatalf("BuildTasks: %v", err)
	}
	if tasks[1].Class != sim.ClassDelayTolerant {
		t.Errorf("built class = %q, want %q", tasks[1].Class, sim.ClassDelayTolerant)
	}
	if tasks[0].Class != sim.ClassDelaySensitive {
		t.Errorf("default class = %q, want %q", tasks[0].Class, sim.ClassDelaySensitive)
	}
}

func TestLoadSimConfig_Errors(t *testing.T) {
	tests := []struct {
		name    string
		content string
		wantErr string
	}{
		{
			name:    "missing horizon",
			content: "tasks:\n  - {name: A, period: 10, wcet: 5, deadline: 10}\n",
			wantErr: "horizon",
		},
		{
			name:    "no tasks",
			content: "horizon: 100\n",
			wantErr: "no tasks",
		},
		{
			name:    "malformed yaml",
			content: "horizon: [not a number\n",
			wantErr: "parsing",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := writeTaskSet(t, tt.content)
			_, err := LoadSimConfig(path)
			if err == nil {
				t.Fatal("want error, got nil")
			}
			if !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("error %q does not mention %q", err, tt.wantErr)
			}
		})
	}

	if _, err := LoadSimConfig(filepath.Join(t.TempDir(), "absent.yaml")); err == nil {
		t.Error("missing file: want error")
	}
}

func TestBuildTasks_Errors(t *testing.T) {
	bad := SimConfig{
		Horizon: 100,
		Tasks:   []TaskConfig{{Name: "A", Period: 0, WCET: 5, Deadline: 10}},
	}
	if _, err := bad.BuildTasks(); err == nil {
		t.Error("zero period: want error")
	}

	unknown := SimConfig{
		Horizon: 100,
		Tasks:   []TaskConfig{{Name: "A", Period: 10, WCET: 5, Deadline: 10, Class: "bursty"}},
	}
	if _, err := unknown.BuildTasks(); err == nil {
		t.Error("unknown class: want error")
	}
}
