// Command skymarket runs a permit auction scenario: it builds the hex
// airspace, admits the scenario population, drives the auction loop, and
// streams settled trades into the configured sinks.
package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/dustin/go-humanize"
	"github.com/spf13/pflag"

	"github.com/skylane/skymarket/internal/agents"
	"github.com/skylane/skymarket/internal/auction"
	"github.com/skylane/skymarket/internal/config"
	"github.com/skylane/skymarket/internal/persistence"
	tradelog "github.com/skylane/skymarket/internal/persistence/log"
	"github.com/skylane/skymarket/internal/space"
)

// tradeLine is the JSONL representation of one settled trade.
type tradeLine struct {
	Tick   uint64  `json:"tick"`
	Seller int64   `json:"seller"`
	Buyer  int64   `json:"buyer"`
	Region string  `json:"region"`
	T      uint64  `json:"t"`
	Price  float64 `json:"price"`
}

func main() {
	flags := pflag.NewFlagSet("skymarket", pflag.ContinueOnError)
	configPath := flags.String("config", "", "scenario YAML file (defaults used when empty)")
	seed := flags.Int64("seed", 0, "override the scenario seed")
	verbose := flags.BoolP("verbose", "v", false, "debug logging")

	if err := flags.Parse(os.Args[1:]); err != nil {
		if err == pflag.ErrHelp {
			return
		}
		fmt.Fprintln(os.Stderr, err)
		os.Exit(2)
	}

	level := slog.LevelInfo
	if *verbose {
		level = slog.LevelDebug
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: level})))

	scenario, err := config.Load(*configPath)
	if err != nil {
		slog.Error("failed to load scenario", "error", err)
		os.Exit(1)
	}
	if flags.Changed("seed") {
		scenario.Seed = *seed
	}

	grid := space.NewGrid(space.GridConfig{
		Radius:    scenario.Grid.Radius,
		FieldSeed: scenario.Grid.FieldSeed,
	})
	slog.Info("airspace built", "radius", grid.Radius(), "sectors", grid.SectorCount())

	factory := agents.NewFactory(grid, agents.ScenarioParams{
		CommutersPerTick: scenario.Agents.CommutersPerTick,
		SpawnTicks:       scenario.Agents.SpawnTicks,
		Speculators:      scenario.Agents.Speculators,
		CommuterBudget:   scenario.Agents.CommuterBudget,
		SpeculatorMarkup: scenario.Agents.SpeculatorMarkup,
		Deadline:         scenario.Agents.Deadline,
	})

	// ── Trade sinks ───────────────────────────────────────────────────
	var db *persistence.DB
	var runID string
	if scenario.Output.SQLite != "" {
		db, err = persistence.Open(scenario.Output.SQLite)
		if err != nil {
			slog.Error("failed to open database", "error", err)
			os.Exit(1)
		}
		defer db.Close()
		runID, err = db.BeginRun(scenario.Seed)
		if err != nil {
			slog.Error("failed to register run", "error", err)
			os.Exit(1)
		}
	}

	var jsonl *tradelog.JSONLZstdWriter
	if scenario.Output.JSONL != "" {
		jsonl, err = tradelog.NewJSONLZstdWriter(scenario.Output.JSONL)
		if err != nil {
			slog.Error("failed to open trade log", "error", err)
			os.Exit(1)
		}
		defer jsonl.Close()
	}

	var (
		tradeCount int
		volume     float64
		lastTick   uint64
	)

	opts := auction.Options{
		TimeWindow: scenario.TimeWindow,
		Trade: func(rec auction.TradeRecord) {
			tradeCount++
			volume += float64(rec.Price)
			if db != nil {
				if err := db.RecordTrade(runID, rec); err != nil {
					slog.Warn("trade not persisted", "error", err)
				}
			}
			if jsonl != nil {
				line := tradeLine{
					Tick:   rec.Tick,
					Seller: int64(rec.Seller),
					Buyer:  int64(rec.Buyer),
					Region: rec.Region.String(),
					T:      rec.Time,
					Price:  float64(rec.Price),
				}
				if err := jsonl.Write(line); err != nil {
					slog.Warn("trade not logged", "error", err)
				}
			}
		},
		Status: func(t uint64, _ space.Space, _ auction.LedgerView) {
			lastTick = t
			if t%50 == 0 {
				slog.Debug("tick", "t", t, "trades", tradeCount)
			}
		},
	}
	if scenario.Ticks > 0 {
		opts.Stop = auction.TimeThreshold(scenario.Ticks)
	}

	slog.Info("simulation starting", "seed", scenario.Seed, "ticks", scenario.Ticks)
	if err := auction.Simulate(factory, grid, scenario.Seed, opts); err != nil {
		slog.Error("simulation failed", "error", err)
		os.Exit(1)
	}
	finalTick := lastTick + 1

	if db != nil {
		if err := db.FinishRun(runID, finalTick); err != nil {
			slog.Warn("run not finalized", "error", err)
		}
	}

	mean := 0.0
	if tradeCount > 0 {
		mean = volume / float64(tradeCount)
	}
	slog.Info("simulation finished",
		"final_tick", finalTick,
		"trades", humanize.Comma(int64(tradeCount)),
		"volume", fmt.Sprintf("%.1f", volume),
		"mean_price", fmt.Sprintf("%.2f", mean),
	)
}
