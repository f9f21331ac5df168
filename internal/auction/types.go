// Package auction implements the discrete-time double-auction marketplace
// for permits: the permit ledger, the per-agent visibility view, and the
// tick driver that collects bids, settles trades, and retires agents.
package auction

import (
	"github.com/skylane/skymarket/internal/space"
)

// Value is the price type for bids, reserves, and trades.
type Value float64

// AgentID identifies an agent by its position in the roster, assigned
// densely in creation order.
type AgentID int

// NoOwner is the sentinel for a permit that nobody holds and for an
// onsale entry with no standing bid.
const NoOwner AgentID = -1

// TradeRecord describes one settled trade, delivered to the configured
// trade callback in settlement order.
type TradeRecord struct {
	Tick   uint64       // Tick the trade settled on
	Seller AgentID      // NoOwner when the permit had never been owned
	Buyer  AgentID
	Region space.Region
	Time   uint64       // Time slot of the traded permit
	Price  Value
}

// TradeOutcome is one entry of a permit key's trade history as exposed to
// agents through the visibility view.
type TradeOutcome struct {
	ListingValue Value // Reserve at the time the permit was listed
	WinningBid   Value
}

// StatusKind tags the per-agent projection of a permit's state.
type StatusKind uint8

const (
	// StatusUnavailable covers everything the agent cannot bid on: out
	// of window, owned by someone else, or the agent's own listing.
	StatusUnavailable StatusKind = iota
	// StatusAvailable marks a permit open to bids from this agent.
	StatusAvailable
	// StatusOwned marks a permit the agent holds and has not listed.
	StatusOwned
)

// PublicStatus is what an agent sees when it queries a permit key.
// MinValue and Trades are meaningful only when Kind is StatusAvailable;
// Trades returns the key's prior trades and must only be called during
// the callback that produced this status.
type PublicStatus struct {
	Kind     StatusKind
	MinValue Value
	Trades   func() []TradeOutcome
}

// BidFunc submits a bid of v on permit (r, t). It returns true only when
// the bid is accepted: the target is onsale, not in the past or beyond
// the window, and v strictly exceeds both the reserve and the standing
// highest bid.
type BidFunc func(r space.Region, t uint64, v Value) bool

// AskFunc lists permit (r, t), currently owned by the calling agent, for
// sale at reserve v. It returns true when the listing is recorded.
type AskFunc func(r space.Region, t uint64, v Value) bool

// StatusFunc is the read-only visibility view handed to agents. It is
// valid only for the duration of the callback that received it.
type StatusFunc func(r space.Region, t uint64) PublicStatus

// Factory produces the batch of agents admitted at tick t. It is invoked
// exactly once per tick and may return an empty batch.
type Factory func(t uint64, s space.Space, seed int32) []Agent

// SlotState tags a ledger snapshot entry.
type SlotState uint8

const (
	SlotOutOfLimits SlotState = iota
	SlotOnSale
	SlotUsed
)

// Snapshot is a read-only copy of one permit's ledger state, exposed to
// telemetry through LedgerView.
type Snapshot struct {
	State         SlotState
	Owner         AgentID
	MinValue      Value
	HighestBidder AgentID
	HighestBid    Value
}

// LedgerView reads the ledger without materializing entries. Keys that
// have never been touched report the default onsale state; keys outside
// the window report SlotOutOfLimits.
type LedgerView func(r space.Region, t uint64) Snapshot

// StatusCallback receives phase-0 telemetry at the start of every tick.
type StatusCallback func(t uint64, s space.Space, view LedgerView)

// TradeCallback receives every settled trade in settlement order.
type TradeCallback func(TradeRecord)

// StopCriterion decides, after each tick completes, whether the
// simulation ends. Evaluation must be side-effect free.
type StopCriterion interface {
	done(t uint64, active int) bool
}

type noAgents struct{}

func (noAgents) done(_ uint64, active int) bool { return active == 0 }

// NoAgents stops the simulation once no active agents remain.
func NoAgents() StopCriterion { return noAgents{} }

type timeThreshold struct{ t uint64 }

func (c timeThreshold) done(t uint64, _ int) bool { return t > c.t }

// TimeThreshold stops the simulation once the clock passes t.
func TimeThreshold(t uint64) StopCriterion { return timeThreshold{t: t} }

// Options configures a simulation run.
type Options struct {
	// TimeWindow, if set, forbids access to keys with t > t0 + window.
	TimeWindow *uint64
	// Stop ends the run; defaults to NoAgents.
	Stop StopCriterion
	// Status, if set, receives phase-0 telemetry each tick.
	Status StatusCallback
	// Trade, if set, receives every settled trade.
	Trade TradeCallback
}

// Window is a convenience for building Options.TimeWindow.
func Window(w uint64) *uint64 { return &w }
