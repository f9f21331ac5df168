// Scenario factory — turns scenario parameters into the per-tick agent
// batches the driver ingests.
package agents

import (
	"github.com/skylane/skymarket/internal/auction"
	"github.com/skylane/skymarket/internal/entropy"
	"github.com/skylane/skymarket/internal/space"
)

// ScenarioParams sizes the population a scenario factory admits.
type ScenarioParams struct {
	CommutersPerTick int     // New commuters each tick during the spawn window
	SpawnTicks       uint64  // Ticks during which commuters keep arriving
	Speculators      int     // Speculators admitted at tick 0
	CommuterBudget   float64 // Total permit budget per commuter
	SpeculatorMarkup float64 // Relist multiplier for speculators
	Deadline         uint64  // Speculator exit tick
}

// DefaultScenarioParams returns a small mixed population.
func DefaultScenarioParams() ScenarioParams {
	return ScenarioParams{
		CommutersPerTick: 2,
		SpawnTicks:       50,
		Speculators:      3,
		CommuterBudget:   150,
		SpeculatorMarkup: 1.25,
		Deadline:         100,
	}
}

// NewFactory builds a deterministic factory over the given airspace. All
// randomness comes from the per-tick seed the driver passes in.
func NewFactory(grid *space.Grid, p ScenarioParams) auction.Factory {
	return func(t uint64, _ space.Space, seed int32) []auction.Agent {
		rng := entropy.Rand(seed)
		var batch []auction.Agent

		if t == 0 {
			for i := 0; i < p.Speculators; i++ {
				batch = append(batch, NewSpeculator(grid, p.SpeculatorMarkup, p.Deadline))
			}
		}

		if t < p.SpawnTicks {
			regions := grid.Regions()
			for i := 0; i < p.CommutersPerTick; i++ {
				origin := regions[rng.Intn(len(regions))]
				dest := regions[rng.Intn(len(regions))]
				if origin.Equal(dest) {
					continue
				}
				depart := t + 3 + uint64(rng.Int63n(8))
				batch = append(batch, NewCommuter(origin, dest, depart, auction.Value(p.CommuterBudget)))
			}
		}

		return batch
	}
}
