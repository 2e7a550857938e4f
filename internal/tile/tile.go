// Package tile implements the slippy-map tiling scheme used to partition
// the world into cacheable fetch regions.
package tile

import (
	"fmt"
	"math"
	"sync"

	"github.com/rotisserie/eris"
)

// DefaultZoom is the zoom level used when none is configured.
const DefaultZoom = 14

// MaxLatitude is the edge of the Web-Mercator projection. Tile rows do not
// exist beyond it.
const MaxLatitude = 85.05112877980659

// ErrInvalidCoordinate is returned for latitudes outside the Web-Mercator
// domain and longitudes outside [-180, 180], where the tile formulas are
// undefined or produce out-of-range rows.
var ErrInvalidCoordinate = eris.New("tile: invalid coordinate")

// Coord addresses a single tile at the index's zoom level.
type Coord struct {
	X int
	Y int
}

// String returns the "x/y" form used in logs and singleflight keys.
func (c Coord) String() string {
	return fmt.Sprintf("%d/%d", c.X, c.Y)
}

// BBox is a geographic bounding box in degrees.
type BBox struct {
	South float64
	West  float64
	North float64
	East  float64
}

// Contains reports whether the point lies within the box.
func (b BBox) Contains(lat, lng float64) bool {
	return lat >= b.South && lat <= b.North && lng >= b.West && lng <= b.East
}

// Index converts coordinates to tiles at a fixed zoom and tracks which
// tiles have been fetched. The loaded set only grows; tiles are never
// evicted or refetched.
type Index struct {
	zoom int

	mu     sync.Mutex
	loaded map[Coord]struct{}
}

// NewIndex creates an Index at the given zoom level.
func NewIndex(zoom int) *Index {
	if zoom <= 0 {
		zoom = DefaultZoom
	}
	return &Index{
		zoom:   zoom,
		loaded: make(map[Coord]struct{}),
	}
}

// Zoom returns the index's fixed zoom level.
func (i *Index) Zoom() int { return i.zoom }

// TileAt returns the tile containing the point using the Web-Mercator
// slippy-tile formula.
func (i *Index) TileAt(lat, lng float64) (Coord, error) {
	if lat < -MaxLatitude || lat > MaxLatitude || lng < -180 || lng > 180 || math.IsNaN(lat) || math.IsNaN(lng) {
		return Coord{}, eris.Wrapf(ErrInvalidCoordinate, "lat=%v lng=%v", lat, lng)
	}

	n := math.Exp2(float64(i.zoom))
	latRad := lat * math.Pi / 180

	x := int((lng + 180) / 360 * n)
	y := int((1 - math.Log(math.Tan(latRad)+1/math.Cos(latRad))/math.Pi) / 2 * n)

	// lng == 180 and extreme latitudes land exactly on the upper edge.
	x = clamp(x, 0, int(n)-1)
	y = clamp(y, 0, int(n)-1)

	return Coord{X: x, Y: y}, nil
}

// BBox returns the tile's edges via the inverse Mercator projection.
func (i *Index) BBox(c Coord) BBox {
	n := math.Exp2(float64(i.zoom))
	return BBox{
		South: tileLat(float64(c.Y)+1, n),
		West:  float64(c.X)/n*360 - 180,
		North: tileLat(float64(c.Y), n),
		East:  (float64(c.X)+1)/n*360 - 180,
	}
}

// Loaded reports whether the tile has already been fetched.
func (i *Index) Loaded(c Coord) bool {
	i.mu.Lock()
	defer i.mu.Unlock()
	_, ok := i.loaded[c]
	return ok
}

// MarkLoaded records the tile as fetched. Idempotent.
func (i *Index) MarkLoaded(c Coord) {
	i.mu.Lock()
	defer i.mu.Unlock()
	i.loaded[c] = struct{}{}
}

// LoadedCount returns the number of tiles fetched so far.
func (i *Index) LoadedCount() int {
	i.mu.Lock()
	defer i.mu.Unlock()
	return len(i.loaded)
}

// tileLat returns the latitude of the tile row edge y via the Gudermannian.
func tileLat(y, n float64) float64 {
	return math.Atan(math.Sinh(math.Pi*(1-2*y/n))) * 180 / math.Pi
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
