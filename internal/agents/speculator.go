// Speculator strategy: shop the demand field for underpriced permits,
// relist winnings at a markup.
package agents

import (
	"fmt"
	"sort"

	"github.com/skylane/skymarket/internal/auction"
	"github.com/skylane/skymarket/internal/entropy"
	"github.com/skylane/skymarket/internal/space"
)

// fairScale converts the grid's [0,1) demand sample into a price.
const fairScale = 100

type holding struct {
	region space.Region
	t      uint64
	paid   auction.Value
	listed bool
}

// Speculator samples random (sector, time) keys each tick, buys permits
// priced well under the demand field's fair value, and relists them at a
// markup. It exits the market at its deadline.
type Speculator struct {
	Grid        *space.Grid
	Markup      float64 // Relist price multiplier over cost, e.g. 1.25
	Horizon     uint64  // How many ticks ahead to shop
	Deadline    uint64  // Tick to leave the market
	MaxHoldings int
	SamplesPerT int

	holdings map[string]*holding
	Profit   auction.Value
}

// NewSpeculator creates a speculator with sensible defaults for the
// un-set knobs.
func NewSpeculator(grid *space.Grid, markup float64, deadline uint64) *Speculator {
	return &Speculator{
		Grid:        grid,
		Markup:      markup,
		Horizon:     8,
		Deadline:    deadline,
		MaxHoldings: 4,
		SamplesPerT: 16,
		holdings:    make(map[string]*holding),
	}
}

func holdKey(r space.Region, t uint64) string {
	return fmt.Sprintf("%s@%d", r, t)
}

// BidPhase samples keys within the horizon and bids just over the
// reserve on anything priced under 60% of fair value.
func (s *Speculator) BidPhase(t uint64, bid auction.BidFunc, status auction.StatusFunc, seed int32) {
	// Permits whose slot has passed are gone whether or not they sold.
	for k, h := range s.holdings {
		if h.t < t {
			delete(s.holdings, k)
		}
	}
	if len(s.holdings) >= s.MaxHoldings {
		return
	}
	rng := entropy.Rand(seed)
	regions := s.Grid.Regions()
	for i := 0; i < s.SamplesPerT; i++ {
		r := regions[rng.Intn(len(regions))]
		at := t + 1 + uint64(rng.Int63n(int64(s.Horizon)))
		st := status(r, at)
		if st.Kind != auction.StatusAvailable {
			continue
		}
		sector := r.(*space.Sector)
		fair := auction.Value(sector.Demand() * fairScale)
		if st.MinValue >= fair*0.6 {
			continue
		}
		bid(r, at, st.MinValue+1+auction.Value(rng.Float64()*2))
	}
}

// AskPhase relists unlisted holdings at cost times markup. Holdings are
// visited in key order so runs stay reproducible.
func (s *Speculator) AskPhase(_ uint64, ask auction.AskFunc, _ auction.StatusFunc, _ int32) {
	keys := make([]string, 0, len(s.holdings))
	for k := range s.holdings {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		h := s.holdings[k]
		if h.listed {
			continue
		}
		if ask(h.region, h.t, h.paid*auction.Value(s.Markup)) {
			h.listed = true
		}
	}
}

// OnBought adds the permit to the inventory.
func (s *Speculator) OnBought(r space.Region, t uint64, price auction.Value) {
	s.holdings[holdKey(r, t)] = &holding{region: r, t: t, paid: price}
	s.Profit -= price
}

// OnSold drops the permit and books the sale.
func (s *Speculator) OnSold(r space.Region, t uint64, price auction.Value) {
	delete(s.holdings, holdKey(r, t))
	s.Profit += price
}

// Stop leaves the market at the deadline.
func (s *Speculator) Stop(t uint64, _ int32) bool {
	return t >= s.Deadline
}

// HoldingCount returns the number of permits currently held.
func (s *Speculator) HoldingCount() int { return len(s.holdings) }
