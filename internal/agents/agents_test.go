package agents

import (
	"reflect"
	"testing"

	"github.com/skylane/skymarket/internal/auction"
	"github.com/skylane/skymarket/internal/space"
)

func testGrid() *space.Grid {
	return space.NewGrid(space.GridConfig{Radius: 4, FieldSeed: 3})
}

func TestCommuterAcquiresRoute(t *testing.T) {
	g := testGrid()
	origin := g.At(space.HexCoord{Q: -2, R: 0})
	dest := g.At(space.HexCoord{Q: 2, R: 0})

	c := NewCommuter(origin, dest, 6, 200)
	factory := func(tick uint64, _ space.Space, _ int32) []auction.Agent {
		if tick == 0 {
			return []auction.Agent{c}
		}
		return nil
	}

	if err := auction.Simulate(factory, g, 11, auction.Options{Stop: auction.TimeThreshold(8)}); err != nil {
		t.Fatalf("simulate: %v", err)
	}

	// Alone on a virgin market the commuter wins every leg.
	if !c.Complete() {
		t.Fatal("commuter failed to acquire its full route")
	}
	if c.Spent <= 0 {
		t.Fatal("commuter spent nothing for its permits")
	}
	if c.Spent > c.Budget {
		t.Fatalf("commuter overspent: %g > %g", c.Spent, c.Budget)
	}
}

func TestCommuterStopsAtDeparture(t *testing.T) {
	g := testGrid()
	c := NewCommuter(g.At(space.HexCoord{Q: 0, R: 0}), g.At(space.HexCoord{Q: 1, R: 0}), 4, 50)

	if c.Stop(3, 0) {
		t.Error("commuter stopped before departure")
	}
	if !c.Stop(4, 0) {
		t.Error("commuter did not stop at departure")
	}
}

func TestCommuterRelistsIncompleteJourney(t *testing.T) {
	g := testGrid()
	origin := g.At(space.HexCoord{Q: -1, R: 0})
	dest := g.At(space.HexCoord{Q: 2, R: -1})

	// Every route of length 3 ends at the destination on tick 7; a
	// blocker outbids the commuter there, so the journey cannot
	// complete and the acquired legs get relisted.
	c := NewCommuter(origin, dest, 5, 200)

	blocked := false
	blocker := &blockerAgent{target: dest, at: 7}
	factory := func(tick uint64, _ space.Space, _ int32) []auction.Agent {
		if tick == 0 {
			return []auction.Agent{blocker, c}
		}
		return nil
	}

	var resales int
	opts := auction.Options{
		Stop: auction.TimeThreshold(7),
		Trade: func(rec auction.TradeRecord) {
			if rec.Seller >= 0 && rec.Buyer != rec.Seller {
				resales++
			}
			blocked = true
		},
	}
	if err := auction.Simulate(factory, g, 11, opts); err != nil {
		t.Fatalf("simulate: %v", err)
	}

	if !blocked {
		t.Fatal("no trades happened at all")
	}
	if c.Complete() {
		t.Fatal("commuter completed despite the blocked final leg")
	}

	// Every leg the commuter did win was put back on sale.
	held := 0
	for _, l := range c.legs {
		if !l.owned {
			continue
		}
		held++
		if !l.listed {
			t.Errorf("leg %s@%d held but not relisted", l.region, l.t)
		}
	}
	if held == 0 {
		t.Fatal("commuter acquired no legs to relist")
	}
}

// blockerAgent grabs one specific permit and sits on it.
type blockerAgent struct {
	target space.Region
	at     uint64
	won    bool
}

func (b *blockerAgent) BidPhase(t uint64, bid auction.BidFunc, _ auction.StatusFunc, _ int32) {
	if t == 0 && !b.won {
		bid(b.target, b.at, 1000)
	}
}

func (b *blockerAgent) OnBought(space.Region, uint64, auction.Value) { b.won = true }

func (b *blockerAgent) Stop(t uint64, _ int32) bool { return t >= 6 }

func TestSpeculatorBooksProfitOnResale(t *testing.T) {
	g := testGrid()
	s := NewSpeculator(g, 1.5, 10)

	region := g.Regions()[7]
	s.OnBought(region, 4, 10)
	if s.HoldingCount() != 1 {
		t.Fatalf("holdings = %d, want 1", s.HoldingCount())
	}
	if s.Profit != -10 {
		t.Fatalf("profit after buy = %g, want -10", s.Profit)
	}

	s.OnSold(region, 4, 15)
	if s.HoldingCount() != 0 {
		t.Fatalf("holdings after sale = %d, want 0", s.HoldingCount())
	}
	if s.Profit != 5 {
		t.Fatalf("profit after resale = %g, want 5", s.Profit)
	}
}

func TestSpeculatorStopsAtDeadline(t *testing.T) {
	g := testGrid()
	s := NewSpeculator(g, 1.25, 20)
	if s.Stop(19, 0) {
		t.Error("speculator left before its deadline")
	}
	if !s.Stop(20, 0) {
		t.Error("speculator overstayed its deadline")
	}
}

func TestFactoryDeterministic(t *testing.T) {
	run := func() []tradeKey {
		g := testGrid()
		factory := NewFactory(g, ScenarioParams{
			CommutersPerTick: 2,
			SpawnTicks:       10,
			Speculators:      2,
			CommuterBudget:   120,
			SpeculatorMarkup: 1.25,
			Deadline:         20,
		})
		var trades []tradeKey
		opts := auction.Options{
			TimeWindow: auction.Window(16),
			Stop:       auction.TimeThreshold(25),
			Trade: func(rec auction.TradeRecord) {
				trades = append(trades, tradeKey{
					Tick:   rec.Tick,
					Seller: rec.Seller,
					Buyer:  rec.Buyer,
					Region: rec.Region.String(),
					T:      rec.Time,
					Price:  rec.Price,
				})
			},
		}
		if err := auction.Simulate(factory, g, 1234, opts); err != nil {
			t.Fatalf("simulate: %v", err)
		}
		return trades
	}

	first := run()
	second := run()
	if len(first) == 0 {
		t.Fatal("scenario produced no trades; nothing exercised")
	}
	if !reflect.DeepEqual(first, second) {
		t.Fatal("identical seeds produced different trade streams")
	}
}

type tradeKey struct {
	Tick   uint64
	Seller auction.AgentID
	Buyer  auction.AgentID
	Region string
	T      uint64
	Price  auction.Value
}
