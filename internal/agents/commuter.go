// Package agents provides reference market participants: strategies that
// exercise the full bid/ask/notification contract, and the scenario
// factory that admits them tick by tick.
package agents

import (
	"github.com/skylane/skymarket/internal/auction"
	"github.com/skylane/skymarket/internal/entropy"
	"github.com/skylane/skymarket/internal/space"
)

type leg struct {
	region space.Region
	t      uint64
	paid   auction.Value
	owned  bool
	listed bool
}

// Commuter plans a timed route between two sectors and tries to buy a
// permit for every leg before its departure tick. If departure arrives
// with the route incomplete, it relists whatever it holds to recoup.
type Commuter struct {
	Origin space.Region
	Dest   space.Region
	Depart uint64
	Budget auction.Value

	legs     []leg
	planned  bool
	perLeg   auction.Value
	Spent    auction.Value
	Recouped auction.Value
}

// NewCommuter creates a commuter departing at depart with a total permit
// budget.
func NewCommuter(origin, dest space.Region, depart uint64, budget auction.Value) *Commuter {
	return &Commuter{Origin: origin, Dest: dest, Depart: depart, Budget: budget}
}

// plan routes once, lazily, so the path tie-break uses the first bid
// phase's seed.
func (c *Commuter) plan(seed int32) {
	c.planned = true
	path := c.Origin.ShortestPath(c.Dest, seed)
	if len(path) == 0 {
		return
	}
	c.legs = make([]leg, 0, len(path))
	for i, r := range path {
		c.legs = append(c.legs, leg{region: r, t: c.Depart + uint64(i)})
	}
	c.perLeg = c.Budget / auction.Value(len(c.legs))
}

// BidPhase bids on every leg not yet owned, up to the per-leg share of
// the budget.
func (c *Commuter) BidPhase(t uint64, bid auction.BidFunc, status auction.StatusFunc, seed int32) {
	if !c.planned {
		c.plan(seed)
	}
	rng := entropy.Rand(seed)
	for i := range c.legs {
		l := &c.legs[i]
		if l.owned || l.t < t {
			continue
		}
		st := status(l.region, l.t)
		if st.Kind != auction.StatusAvailable {
			continue
		}
		floor := st.MinValue + 1
		if floor > c.perLeg {
			continue
		}
		// Leave headroom above the reserve so a standing bid from a
		// rival can still be beaten.
		offer := floor + auction.Value(rng.Float64())*(c.perLeg-floor)
		bid(l.region, l.t, offer)
	}
}

// AskPhase relists owned legs at cost once the journey can no longer
// complete in time.
func (c *Commuter) AskPhase(t uint64, ask auction.AskFunc, _ auction.StatusFunc, _ int32) {
	if c.complete() || t+1 < c.Depart {
		return
	}
	for i := range c.legs {
		l := &c.legs[i]
		if l.owned && !l.listed && ask(l.region, l.t, l.paid) {
			l.listed = true
		}
	}
}

// OnBought records a won leg.
func (c *Commuter) OnBought(r space.Region, t uint64, price auction.Value) {
	for i := range c.legs {
		l := &c.legs[i]
		if l.t == t && l.region.Equal(r) {
			l.owned = true
			l.paid = price
			c.Spent += price
			return
		}
	}
}

// OnSold records a relisted leg finding a buyer.
func (c *Commuter) OnSold(r space.Region, t uint64, price auction.Value) {
	for i := range c.legs {
		l := &c.legs[i]
		if l.t == t && l.region.Equal(r) {
			l.owned = false
			c.Recouped += price
			return
		}
	}
}

// Stop retires the commuter at departure, or immediately when no route
// exists.
func (c *Commuter) Stop(t uint64, _ int32) bool {
	if c.planned && len(c.legs) == 0 {
		return true
	}
	return t >= c.Depart
}

func (c *Commuter) complete() bool {
	for _, l := range c.legs {
		if !l.owned {
			return false
		}
	}
	return len(c.legs) > 0
}

// Complete reports whether every leg of the journey is held.
func (c *Commuter) Complete() bool { return c.complete() }
