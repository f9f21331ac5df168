// Region and Space are the contracts the auction core sees. The core only
// needs hashing and equality; the richer queries exist for agent strategies.
package space

// Region is an opaque spatial key. The auction ledger relies on Hash and
// Equal alone; adjacency, distance, and routing are consumed by agents.
// A Region handed to the simulator must stay valid for its duration.
type Region interface {
	// Hash returns a stable hash of the region's identity. Two regions
	// that are Equal must hash to the same value.
	Hash() uint64

	// Equal reports whether the other region denotes the same place.
	Equal(other Region) bool

	// AdjacentRegions returns the directly reachable neighbor regions.
	AdjacentRegions() []Region

	// Distance returns the length in hops of a shortest route to other.
	Distance(other Region) uint64

	// HeuristicDistance returns an admissible estimate of Distance,
	// cheap enough to call in inner loops.
	HeuristicDistance(other Region) float64

	// ShortestPath returns a shortest route to other, excluding the
	// receiver and including the destination. Ties between equally
	// short routes are broken deterministically from seed. Returns nil
	// when other is unreachable.
	ShortestPath(other Region, seed int32) []Region

	String() string
}

// Space is the collection of regions a simulation runs over. The driver
// passes it through to factories and telemetry untouched.
type Space interface {
	Regions() []Region
}
