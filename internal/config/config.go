package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/me/wisched/internal/sim"
)

// ServerConfig holds configuration for the wisched server.
type ServerConfig struct {
	Addr          string // Listen address (default ":8080")
	TelemetryAddr string // TCP telemetry listen address, "" disables it
	LogLevel      string // Log level: debug, info, warn, error
	LogFormat     string // Log format: text, json
	DBPath        string // SQLite database path (default ~/.wisched/wisched.db, ":memory:" for testing)
}

// DefaultServerConfig returns sensible defaults.
func DefaultServerConfig() ServerConfig {
	return ServerConfig{
		Addr:      ":8080",
		LogLevel:  "info",
		LogFormat: "text",
	}
}

// TaskConfig is one periodic task in a YAML task-set file.
type TaskConfig struct {
	Name     string `yaml:"name" json:"name"`
	Period   int    `yaml:"period" json:"period"`
	WCET     int    `yaml:"wcet" json:"wcet"`
	Deadline int    `yaml:"deadline" json:"deadline"`
	Class    string `yaml:"class,omitempty" json:"class,omitempty"` // delay_sensitive (default) or delay_tolerant
}

// SimConfig describes a simulation workload: the task set and the horizon.
type SimConfig struct {
	Horizon int          `yaml:"horizon"`
	Tasks   []TaskConfig `yaml:"tasks"`
}

// DefaultSimConfig is the built-in industrial sensor workload: an ultrasonic
// ranger, a PIR motion detector with a tight deadline, a delay-tolerant sound
// pressure sampler and an emergency button, at roughly 92% utilization.
func DefaultSimConfig() SimConfig {
	return SimConfig{
		Horizon: 30000,
		Tasks: []TaskConfig{
			{Name: "Ultra", Period: 100, WCET: 32, Deadline: 100},
			{Name: "PIR", Period: 200, WCET: 25, Deadline: 80},
			{Name: "Sound", Period: 500, WCET: 180, Deadline: 500, Class: "delay_tolerant"},
			{Name: "Button", Period: 300, WCET: 35, Deadline: 120},
		},
	}
}

// LoadSimConfig reads a YAML task-set file.
func LoadSimConfig(path string) (SimConfig, error) {
	var cfg SimConfig
	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("reading task set: %w", err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("parsing task set %s: %w", path, err)
	}
	if cfg.Horizon <= 0 {
		return cfg, fmt.Errorf("task set %s: horizon must be positive, got %d", path, cfg.Horizon)
	}
	if len(cfg.Tasks) == 0 {
		return cfg, fmt.Errorf("task set %s: no tasks defined", path)
	}
	return cfg, nil
}

// BuildTasks converts the declarative task list into validated engine tasks.
func (c SimConfig) BuildTasks() ([]*sim.Task, error) {
	tasks := make([]*sim.Task, 0, len(c.Tasks))
	for _, tc := range c.Tasks {
		task, err := sim.NewTask(tc.Name, tc.Period, tc.WCET, tc.Deadline)
		if err != nil {
			return nil, fmt.Errorf("task %q: %w", tc.Name, err)
		}
		switch tc.Class {
		case "", string(sim.ClassDelaySensitive):
			task.Class = sim.ClassDelaySensitive
		case string(sim.ClassDelayTolerant):
			task.Class = sim.ClassDelayTolerant
		default:
			return nil, fmt.Errorf("task %q: unknown traffic class %q", tc.Name, tc.Class)
		}
		tasks = append(tasks, task)
	}
	return tasks, nil
}
