// Permit ledger: a sliding window of per-tick hash buckets mapping
// (region, time) to permit state. The front bucket is dropped when the
// clock advances, which keeps memory bounded by the window width and
// makes the past unaddressable.
package auction

import "github.com/skylane/skymarket/internal/space"

type stateKind uint8

const (
	stateOnSale stateKind = iota
	stateUsed
)

// permitState is the stored state of one permit key. A key outside the
// window is never stored; the ledger reports it instead of materializing.
type permitState struct {
	kind          stateKind
	owner         AgentID
	minValue      Value
	highestBidder AgentID
	highestBid    Value
}

func defaultOnSale() permitState {
	return permitState{
		kind:          stateOnSale,
		owner:         NoOwner,
		highestBidder: NoOwner,
	}
}

// slotEntry binds a permit key to its state and the key's trade history.
// The history lives and dies with the entry's bucket.
type slotEntry struct {
	region space.Region
	state  permitState
	trades []TradeOutcome
}

// ledger holds the window of buckets. Buckets chain entries per region
// hash so regions only need Hash and Equal, not comparability.
type ledger struct {
	t0      uint64
	window  *uint64
	buckets []map[uint64][]*slotEntry
}

func newLedger(window *uint64) *ledger {
	return &ledger{window: window}
}

// inWindow reports whether t is currently addressable.
func (l *ledger) inWindow(t uint64) bool {
	if t < l.t0 {
		return false
	}
	return l.window == nil || t <= l.t0+*l.window
}

// entry returns the stored state for (r, t), materializing the default
// onsale state on first access. ok is false when t is beyond the window.
// Access to the past is a driver bug.
func (l *ledger) entry(r space.Region, t uint64) (e *slotEntry, ok bool) {
	if t < l.t0 {
		panic("auction: ledger access to a past time slot")
	}
	if l.window != nil && t > l.t0+*l.window {
		return nil, false
	}
	for t-l.t0 >= uint64(len(l.buckets)) {
		l.buckets = append(l.buckets, make(map[uint64][]*slotEntry))
	}
	bucket := l.buckets[t-l.t0]
	h := r.Hash()
	for _, cand := range bucket[h] {
		if cand.region.Equal(r) {
			return cand, true
		}
	}
	e = &slotEntry{region: r, state: defaultOnSale()}
	bucket[h] = append(bucket[h], e)
	return e, true
}

// peek reads (r, t) without materializing. Untouched in-window keys
// report their default onsale state.
func (l *ledger) peek(r space.Region, t uint64) Snapshot {
	if !l.inWindow(t) {
		return Snapshot{State: SlotOutOfLimits}
	}
	if t-l.t0 < uint64(len(l.buckets)) {
		h := r.Hash()
		for _, cand := range l.buckets[t-l.t0][h] {
			if cand.region.Equal(r) {
				return snapshotOf(cand.state)
			}
		}
	}
	return snapshotOf(defaultOnSale())
}

func snapshotOf(st permitState) Snapshot {
	s := Snapshot{
		Owner:         st.owner,
		MinValue:      st.minValue,
		HighestBidder: st.highestBidder,
		HighestBid:    st.highestBid,
	}
	switch st.kind {
	case stateUsed:
		s.State = SlotUsed
	default:
		s.State = SlotOnSale
	}
	return s
}

// view exposes the ledger to telemetry. The returned closure stays bound
// to the live ledger, so it is only valid during the status callback.
func (l *ledger) view() LedgerView {
	return l.peek
}

// advance drops the front bucket and moves the window forward one tick.
func (l *ledger) advance() {
	if len(l.buckets) > 0 {
		l.buckets[0] = nil
		l.buckets = l.buckets[1:]
	}
	l.t0++
}
