// Agent contract and the roster handle that adapts it. Stop is the only
// mandatory operation; phases and notifications are optional capability
// interfaces discovered once when the agent joins the roster.
package auction

import "github.com/skylane/skymarket/internal/space"

// Agent is the minimal contract every market participant satisfies.
// Stop is polled once per tick; returning true retires the agent.
type Agent interface {
	Stop(t uint64, seed int32) bool
}

// Bidder is implemented by agents that participate in the bid phase.
type Bidder interface {
	BidPhase(t uint64, bid BidFunc, status StatusFunc, seed int32)
}

// Asker is implemented by agents that list permits in the ask phase.
type Asker interface {
	AskPhase(t uint64, ask AskFunc, status StatusFunc, seed int32)
}

// BuyListener is notified after a bid settles in the agent's favor.
type BuyListener interface {
	OnBought(r space.Region, t uint64, price Value)
}

// SellListener is notified when a permit the agent listed is sold. It may
// fire after the agent has retired.
type SellListener interface {
	OnSold(r space.Region, t uint64, price Value)
}

// FinishListener is notified exactly once when the agent retires.
type FinishListener interface {
	OnFinished(id AgentID, t uint64)
}

// handle owns one agent exclusively and routes the optional operations to
// whatever the concrete type implements.
type handle struct {
	agent    Agent
	bidder   Bidder
	asker    Asker
	buyer    BuyListener
	seller   SellListener
	finisher FinishListener
}

func newHandle(a Agent) *handle {
	h := &handle{agent: a}
	h.bidder, _ = a.(Bidder)
	h.asker, _ = a.(Asker)
	h.buyer, _ = a.(BuyListener)
	h.seller, _ = a.(SellListener)
	h.finisher, _ = a.(FinishListener)
	return h
}

func (h *handle) bidPhase(t uint64, bid BidFunc, status StatusFunc, seed int32) {
	if h.bidder != nil {
		h.bidder.BidPhase(t, bid, status, seed)
	}
}

func (h *handle) askPhase(t uint64, ask AskFunc, status StatusFunc, seed int32) {
	if h.asker != nil {
		h.asker.AskPhase(t, ask, status, seed)
	}
}

func (h *handle) onBought(r space.Region, t uint64, price Value) {
	if h.buyer != nil {
		h.buyer.OnBought(r, t, price)
	}
}

func (h *handle) onSold(r space.Region, t uint64, price Value) {
	if h.seller != nil {
		h.seller.OnSold(r, t, price)
	}
}

func (h *handle) onFinished(id AgentID, t uint64) {
	if h.finisher != nil {
		h.finisher.OnFinished(id, t)
	}
}

func (h *handle) stop(t uint64, seed int32) bool {
	return h.agent.Stop(t, seed)
}
