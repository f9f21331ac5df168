// Hex grid airspace: a bounded radius of sectors with a noise-derived
// demand field used by agent strategies to price permits.
package space

import (
	"fmt"
	"math"
	"math/rand"

	opensimplex "github.com/ojrac/opensimplex-go"
)

// GridConfig controls airspace construction.
type GridConfig struct {
	Radius    int   // Hexes where max(|q|,|r|,|s|) <= Radius
	FieldSeed int64 // Seed for the demand noise field
}

// DefaultGridConfig returns a small airspace suitable for demos and tests.
func DefaultGridConfig() GridConfig {
	return GridConfig{Radius: 8, FieldSeed: 1}
}

// Grid is a bounded hex airspace. It implements Space.
type Grid struct {
	radius  int
	sectors map[HexCoord]*Sector
	ordered []Region // Stable iteration order for deterministic runs
	noise   opensimplex.Noise
}

// NewGrid builds the airspace and its demand field.
func NewGrid(cfg GridConfig) *Grid {
	g := &Grid{
		radius:  cfg.Radius,
		sectors: make(map[HexCoord]*Sector),
		noise:   opensimplex.NewNormalized(cfg.FieldSeed),
	}

	for q := -cfg.Radius; q <= cfg.Radius; q++ {
		for r := -cfg.Radius; r <= cfg.Radius; r++ {
			coord := HexCoord{Q: q, R: r}
			if !g.InBounds(coord) {
				continue
			}
			g.sectors[coord] = &Sector{Coord: coord, grid: g}
		}
	}

	// Row-major over (q, r) so Regions() order does not depend on map
	// iteration order.
	for q := -cfg.Radius; q <= cfg.Radius; q++ {
		for r := -cfg.Radius; r <= cfg.Radius; r++ {
			if s, ok := g.sectors[HexCoord{Q: q, R: r}]; ok {
				g.ordered = append(g.ordered, s)
			}
		}
	}

	return g
}

// Radius returns the grid radius.
func (g *Grid) Radius() int { return g.radius }

// InBounds returns true if the coordinate is within the grid radius.
func (g *Grid) InBounds(coord HexCoord) bool {
	q, r, s := abs(coord.Q), abs(coord.R), abs(coord.S())
	max := q
	if r > max {
		max = r
	}
	if s > max {
		max = s
	}
	return max <= g.radius
}

// At returns the sector at coord, or nil if out of bounds.
func (g *Grid) At(coord HexCoord) *Sector {
	return g.sectors[coord]
}

// Regions returns every sector in a stable order.
func (g *Grid) Regions() []Region {
	return g.ordered
}

// SectorCount returns the number of sectors in the grid.
func (g *Grid) SectorCount() int {
	return len(g.sectors)
}

// Demand samples the demand field at coord, in [0, 1). Higher values mark
// congested airspace where permits are worth more.
func (g *Grid) Demand(coord HexCoord) float64 {
	// Hex axial → cartesian: x = q + r*0.5, y = r * sqrt(3)/2
	x := float64(coord.Q) + float64(coord.R)*0.5
	y := float64(coord.R) * math.Sqrt(3.0) / 2.0
	return octaveNoise(g.noise, x, y, 3, 0.12, 0.5)
}

// octaveNoise generates fractal noise by layering multiple frequencies.
func octaveNoise(noise opensimplex.Noise, x, y float64, octaves int, frequency, persistence float64) float64 {
	total := 0.0
	amplitude := 1.0
	maxVal := 0.0

	for i := 0; i < octaves; i++ {
		total += noise.Eval2(x*frequency, y*frequency) * amplitude
		maxVal += amplitude
		amplitude *= persistence
		frequency *= 2
	}

	return total / maxVal
}

// Sector is one hex cell of the airspace. It implements Region.
type Sector struct {
	Coord HexCoord
	grid  *Grid
}

// Hash combines both axial coordinates into a stable key.
func (s *Sector) Hash() uint64 {
	h := hashCombine(0, uint64(uint32(s.Coord.Q)))
	return hashCombine(h, uint64(uint32(s.Coord.R)))
}

func hashCombine(seed, v uint64) uint64 {
	return seed ^ (v + 0x9e3779b97f4a7c15 + (seed << 6) + (seed >> 2))
}

// Equal reports whether other is the same sector.
func (s *Sector) Equal(other Region) bool {
	o, ok := other.(*Sector)
	return ok && o.Coord == s.Coord
}

// AdjacentRegions returns the in-bounds neighbors of the sector.
func (s *Sector) AdjacentRegions() []Region {
	var out []Region
	for _, n := range s.Coord.Neighbors() {
		if adj := s.grid.At(n); adj != nil {
			out = append(out, adj)
		}
	}
	return out
}

// Distance returns the hex distance to other.
func (s *Sector) Distance(other Region) uint64 {
	o := other.(*Sector)
	return uint64(s.Coord.DistanceTo(o.Coord))
}

// HeuristicDistance returns the hex distance as a float estimate.
func (s *Sector) HeuristicDistance(other Region) float64 {
	return float64(s.Distance(other))
}

// ShortestPath runs a BFS to other. On a bounded hex grid every shortest
// route has the same length; the seed permutes neighbor visiting order so
// ties resolve deterministically per seed rather than always along the
// same axis.
func (s *Sector) ShortestPath(other Region, seed int32) []Region {
	dest, ok := other.(*Sector)
	if !ok || s.grid.At(dest.Coord) == nil {
		return nil
	}
	if dest.Coord == s.Coord {
		return []Region{}
	}

	rng := rand.New(rand.NewSource(int64(seed)))
	order := [6]int{0, 1, 2, 3, 4, 5}
	rng.Shuffle(6, func(i, j int) { order[i], order[j] = order[j], order[i] })

	prev := map[HexCoord]HexCoord{s.Coord: s.Coord}
	queue := []HexCoord{s.Coord}

	for len(queue) > 0 {
		cur := queue[0]
		queue = queue[1:]
		if cur == dest.Coord {
			break
		}
		neighbors := cur.Neighbors()
		for _, i := range order {
			n := neighbors[i]
			if s.grid.At(n) == nil {
				continue
			}
			if _, seen := prev[n]; seen {
				continue
			}
			prev[n] = cur
			queue = append(queue, n)
		}
	}

	if _, reached := prev[dest.Coord]; !reached {
		return nil
	}

	var path []Region
	for cur := dest.Coord; cur != s.Coord; cur = prev[cur] {
		path = append(path, s.grid.At(cur))
	}
	// Walked back from the destination; reverse into travel order.
	for i, j := 0, len(path)-1; i < j; i, j = i+1, j-1 {
		path[i], path[j] = path[j], path[i]
	}
	return path
}

// Demand samples the grid demand field at this sector.
func (s *Sector) Demand() float64 {
	return s.grid.Demand(s.Coord)
}

func (s *Sector) String() string {
	return fmt.Sprintf("sector(%d,%d)", s.Coord.Q, s.Coord.R)
}
