// The auction driver: a single-threaded per-tick loop over strictly
// ordered phases. No phase observes writes belonging to a later phase of
// the same tick, and iteration is always roster order over the active
// list, so a run is fully determined by the master seed and the factory.
package auction

import (
	"errors"
	"log/slog"

	"github.com/skylane/skymarket/internal/entropy"
	"github.com/skylane/skymarket/internal/space"
)

type slotKey struct {
	region space.Region
	t      uint64
}

type askRequest struct {
	region   space.Region
	t        uint64
	id       AgentID
	minValue Value
}

// Simulate runs the auction loop until the stop criterion fires. seed is
// the run's sole source of randomness; every agent callback receives a
// freshly drawn 32-bit seed so behavior does not depend on call order
// beyond the documented phase ordering.
func Simulate(factory Factory, sp space.Space, seed int64, opts Options) error {
	if factory == nil {
		return errors.New("auction: nil factory")
	}

	stop := opts.Stop
	if stop == nil {
		stop = NoAgents()
	}

	rng := entropy.New(seed)
	led := newLedger(opts.TimeWindow)

	var roster []*handle
	var active, keepActive, toFinished []AgentID

	t0 := uint64(0)

	// statusFor projects the ledger into the public status enum as seen
	// by one agent. Queries materialize entries just like bids do, so an
	// agent always observes the same default state a bid would hit.
	statusFor := func(id AgentID) StatusFunc {
		return func(r space.Region, t uint64) PublicStatus {
			if t < t0 {
				return PublicStatus{Kind: StatusUnavailable}
			}
			e, ok := led.entry(r, t)
			if !ok {
				return PublicStatus{Kind: StatusUnavailable}
			}
			switch e.state.kind {
			case stateUsed:
				if e.state.owner == id {
					return PublicStatus{Kind: StatusOwned}
				}
				return PublicStatus{Kind: StatusUnavailable}
			default:
				if e.state.owner == id {
					// Own listing: agents do not bid against themselves.
					return PublicStatus{Kind: StatusUnavailable}
				}
				entry := e
				return PublicStatus{
					Kind:     StatusAvailable,
					MinValue: e.state.minValue,
					Trades:   func() []TradeOutcome { return entry.trades },
				}
			}
		}
	}

	slog.Debug("auction driver started", "seed", seed)

	for {
		// Phase 0 — telemetry.
		if opts.Status != nil {
			opts.Status(t0, sp, led.view())
		}

		// Phase 1 — ingest new agents.
		for _, a := range factory(t0, sp, rng.Seed32()) {
			id := AgentID(len(roster))
			roster = append(roster, newHandle(a))
			active = append(active, id)
		}

		keepActive = keepActive[:0]
		toFinished = toFinished[:0]

		// Phase 2 — bids. pending records each key in first-bid order;
		// later winning bids on the same key overwrite in place and do
		// not add settlement entries.
		var pending []slotKey
		for _, id := range active {
			bid := func(r space.Region, t uint64, v Value) bool {
				if t < t0 {
					return false
				}
				e, ok := led.entry(r, t)
				if !ok || e.state.kind != stateOnSale {
					return false
				}
				st := &e.state
				if v > st.minValue && v > st.highestBid {
					if st.highestBidder == NoOwner {
						pending = append(pending, slotKey{region: r, t: t})
					}
					st.highestBidder = id
					st.highestBid = v
					return true
				}
				return false
			}

			h := roster[id]
			h.bidPhase(t0, bid, statusFor(id), rng.Seed32())

			if h.stop(t0, rng.Seed32()) {
				toFinished = append(toFinished, id)
			} else {
				keepActive = append(keepActive, id)
			}
		}

		// Phase 3 — settlement, in first-bid order.
		for _, k := range pending {
			e, ok := led.entry(k.region, k.t)
			if !ok || e.state.kind != stateOnSale || e.state.highestBidder == NoOwner {
				panic("auction: settlement on a key without a standing bid")
			}
			st := e.state

			if opts.Trade != nil {
				opts.Trade(TradeRecord{
					Tick:   t0,
					Seller: st.owner,
					Buyer:  st.highestBidder,
					Region: k.region,
					Time:   k.t,
					Price:  st.highestBid,
				})
			}
			e.trades = append(e.trades, TradeOutcome{
				ListingValue: st.minValue,
				WinningBid:   st.highestBid,
			})

			roster[st.highestBidder].onBought(k.region, k.t, st.highestBid)
			if st.owner != NoOwner {
				// The seller may already be queued for retirement; it
				// still gets the notification.
				roster[st.owner].onSold(k.region, k.t, st.highestBid)
			}

			e.state = permitState{kind: stateUsed, owner: st.highestBidder}
		}

		// Phase 4 — asks. Recorded first, applied after the loop;
		// duplicate asks on one key are last-writer-wins. An agent that
		// won a permit in phase 3 may list it here immediately.
		var asks []askRequest
		for _, id := range active {
			ask := func(r space.Region, t uint64, v Value) bool {
				if t < t0 {
					return false
				}
				e, ok := led.entry(r, t)
				if !ok || e.state.kind != stateUsed || e.state.owner != id {
					return false
				}
				asks = append(asks, askRequest{region: r, t: t, id: id, minValue: v})
				return true
			}

			roster[id].askPhase(t0, ask, statusFor(id), rng.Seed32())
		}
		for _, a := range asks {
			e, ok := led.entry(a.region, a.t)
			if !ok {
				panic("auction: recorded ask left the window within a tick")
			}
			e.state = permitState{
				kind:          stateOnSale,
				owner:         a.id,
				minValue:      a.minValue,
				highestBidder: NoOwner,
			}
		}

		// Phase 5 — retirement.
		for _, id := range toFinished {
			roster[id].onFinished(id, t0)
		}

		// Phase 6 — advance the clock and the window.
		active, keepActive = keepActive, active
		led.advance()
		t0++

		if stop.done(t0, len(active)) {
			break
		}
	}

	slog.Debug("auction driver stopped", "tick", t0, "agents", len(roster))
	return nil
}
