// Package config loads and validates scenario files: the seed, window,
// airspace, population, and output sinks of one simulation run.
package config

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// Scenario is one complete run description.
type Scenario struct {
	Seed       int64   `yaml:"seed" json:"seed"`
	Ticks      uint64  `yaml:"ticks" json:"ticks"` // 0 = run until no agents remain
	TimeWindow *uint64 `yaml:"time_window,omitempty" json:"time_window,omitempty"`

	Grid   GridSection   `yaml:"grid" json:"grid"`
	Agents AgentsSection `yaml:"agents" json:"agents"`
	Output OutputSection `yaml:"output" json:"output"`
}

// GridSection sizes the hex airspace.
type GridSection struct {
	Radius    int   `yaml:"radius" json:"radius"`
	FieldSeed int64 `yaml:"field_seed" json:"field_seed"`
}

// AgentsSection sizes the scenario population.
type AgentsSection struct {
	CommutersPerTick int     `yaml:"commuters_per_tick" json:"commuters_per_tick"`
	SpawnTicks       uint64  `yaml:"spawn_ticks" json:"spawn_ticks"`
	Speculators      int     `yaml:"speculators" json:"speculators"`
	CommuterBudget   float64 `yaml:"commuter_budget" json:"commuter_budget"`
	SpeculatorMarkup float64 `yaml:"speculator_markup" json:"speculator_markup"`
	Deadline         uint64  `yaml:"deadline" json:"deadline"`
}

// OutputSection names the optional trade sinks. Empty paths disable them.
type OutputSection struct {
	SQLite string `yaml:"sqlite" json:"sqlite"`
	JSONL  string `yaml:"jsonl" json:"jsonl"`
}

func defaults() Scenario {
	return Scenario{
		Seed:  42,
		Ticks: 200,
		Grid:  GridSection{Radius: 8, FieldSeed: 1},
		Agents: AgentsSection{
			CommutersPerTick: 2,
			SpawnTicks:       50,
			Speculators:      3,
			CommuterBudget:   150,
			SpeculatorMarkup: 1.25,
			Deadline:         100,
		},
	}
}

// Load reads a scenario file. An empty path yields the defaults. The
// document is checked against the embedded schema before decoding, so
// typos and wrong types fail with a path into the document.
func Load(path string) (Scenario, error) {
	cfg := defaults()
	if strings.TrimSpace(path) == "" {
		return cfg, nil
	}

	b, err := os.ReadFile(path)
	if err != nil {
		return cfg, err
	}

	if err := validateSchema(b); err != nil {
		return cfg, fmt.Errorf("scenario %s: %w", path, err)
	}

	if err := yaml.Unmarshal(b, &cfg); err != nil {
		return cfg, fmt.Errorf("scenario %s: %w", path, err)
	}
	cfg.normalize()
	if err := cfg.Validate(); err != nil {
		return cfg, fmt.Errorf("scenario %s: %w", path, err)
	}
	return cfg, nil
}

func (s *Scenario) normalize() {
	if s.Agents.Deadline == 0 && s.Ticks > 0 {
		s.Agents.Deadline = s.Ticks
	}
}

// Validate checks the decoded scenario. It repeats the schema's radius and
// population-count bounds and adds the markup bound, which applies only
// when speculators are present.
func (s *Scenario) Validate() error {
	if s.Grid.Radius <= 0 {
		return fmt.Errorf("grid.radius must be positive, got %d", s.Grid.Radius)
	}
	if s.Agents.CommutersPerTick < 0 || s.Agents.Speculators < 0 {
		return fmt.Errorf("population counts must not be negative")
	}
	if s.Agents.SpeculatorMarkup < 1 && s.Agents.Speculators > 0 {
		return fmt.Errorf("speculator_markup must be >= 1, got %g", s.Agents.SpeculatorMarkup)
	}
	return nil
}
