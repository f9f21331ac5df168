// Package space provides the spatial side of the marketplace: the opaque
// Region key the auction core trades on, and a concrete hex-grid airspace
// with adjacency, distance, and routing queries for agent strategies.
// Uses axial coordinates (q, r) for the hex grid.
package space

// HexCoord represents a position on the hex grid using axial coordinates.
// The third cube coordinate s is derived: s = -q - r.
type HexCoord struct {
	Q int `json:"q"`
	R int `json:"r"`
}

// S returns the implicit third cube coordinate.
func (h HexCoord) S() int {
	return -h.Q - h.R
}

// hexNeighborDirections defines the six neighbor offsets in axial coordinates.
var hexNeighborDirections = [6]HexCoord{
	{Q: 1, R: 0},
	{Q: 1, R: -1},
	{Q: 0, R: -1},
	{Q: -1, R: 0},
	{Q: -1, R: 1},
	{Q: 0, R: 1},
}

// Neighbors returns the six adjacent hex coordinates.
func (h HexCoord) Neighbors() [6]HexCoord {
	var result [6]HexCoord
	for i, dir := range hexNeighborDirections {
		result[i] = HexCoord{Q: h.Q + dir.Q, R: h.R + dir.R}
	}
	return result
}

// DistanceTo returns the hex grid distance between two coordinates.
func (h HexCoord) DistanceTo(other HexCoord) int {
	dq := abs(h.Q - other.Q)
	dr := abs(h.R - other.R)
	ds := abs(h.S() - other.S())
	return (dq + dr + ds) / 2
}

func abs(x int) int {
	if x < 0 {
		return -x
	}
	return x
}
