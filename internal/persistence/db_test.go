package persistence

import (
	"fmt"
	"path/filepath"
	"testing"

	"github.com/skylane/skymarket/internal/auction"
	"github.com/skylane/skymarket/internal/space"
)

type fakeRegion struct{ name string }

func (r fakeRegion) Hash() uint64                                    { return uint64(len(r.name)) }
func (r fakeRegion) Equal(o space.Region) bool                       { f, ok := o.(fakeRegion); return ok && f.name == r.name }
func (r fakeRegion) AdjacentRegions() []space.Region                 { return nil }
func (r fakeRegion) Distance(space.Region) uint64                    { return 0 }
func (r fakeRegion) HeuristicDistance(space.Region) float64          { return 0 }
func (r fakeRegion) ShortestPath(space.Region, int32) []space.Region { return nil }
func (r fakeRegion) String() string                                  { return r.name }

func openTestDB(t *testing.T) *DB {
	t.Helper()
	db, err := Open(filepath.Join(t.TempDir(), "trades.db"))
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

func TestTradeRoundTrip(t *testing.T) {
	db := openTestDB(t)

	runID, err := db.BeginRun(99)
	if err != nil {
		t.Fatalf("begin run: %v", err)
	}

	recs := []auction.TradeRecord{
		{Tick: 1, Seller: auction.NoOwner, Buyer: 0, Region: fakeRegion{"sector(0,1)"}, Time: 5, Price: 3.5},
		{Tick: 2, Seller: 0, Buyer: 1, Region: fakeRegion{"sector(0,1)"}, Time: 5, Price: 7},
	}
	for _, rec := range recs {
		if err := db.RecordTrade(runID, rec); err != nil {
			t.Fatalf("record: %v", err)
		}
	}

	got, err := db.Trades(runID)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("got %d trades, want 2", len(got))
	}
	if got[0].Seller != -1 || got[0].Buyer != 0 || got[0].Price != 3.5 {
		t.Fatalf("first trade = %+v", got[0])
	}
	if got[1].Tick != 2 || got[1].Region != "sector(0,1)" || got[1].T != 5 {
		t.Fatalf("second trade = %+v", got[1])
	}

	n, err := db.TradeCount(runID)
	if err != nil {
		t.Fatalf("count: %v", err)
	}
	if n != 2 {
		t.Fatalf("count = %d, want 2", n)
	}
}

func TestRunsAreIsolated(t *testing.T) {
	db := openTestDB(t)

	a, _ := db.BeginRun(1)
	b, _ := db.BeginRun(2)
	for i := 0; i < 3; i++ {
		rec := auction.TradeRecord{Tick: uint64(i), Buyer: 0, Seller: auction.NoOwner,
			Region: fakeRegion{fmt.Sprintf("s%d", i)}, Time: uint64(i), Price: 1}
		if err := db.RecordTrade(a, rec); err != nil {
			t.Fatalf("record: %v", err)
		}
	}

	if n, _ := db.TradeCount(a); n != 3 {
		t.Fatalf("run a count = %d, want 3", n)
	}
	if n, _ := db.TradeCount(b); n != 0 {
		t.Fatalf("run b count = %d, want 0", n)
	}

	if err := db.FinishRun(a, 10); err != nil {
		t.Fatalf("finish: %v", err)
	}
}
