// Package loader lazily fetches building and street features per tile and
// merges them into the geodata store.
package loader

import (
	"context"
	"fmt"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/singleflight"

	"github.com/mapgrind/addresser/internal/geodata"
	"github.com/mapgrind/addresser/internal/resilience"
	"github.com/mapgrind/addresser/internal/tile"
)

// Query names carried by FetchError.
const (
	QueryBuildings = "buildings"
	QueryStreets   = "streets"
)

// FetchError reports a failed tile fetch. The tile stays unmarked, so a
// later EnsureLoaded call retries it.
type FetchError struct {
	Tile  tile.Coord
	Query string
	Err   error
}

func (e *FetchError) Error() string {
	return fmt.Sprintf("loader: fetch tile %s (%s query): %v", e.Tile, e.Query, e.Err)
}

func (e *FetchError) Unwrap() error { return e.Err }

// Service is the external geographic query collaborator.
type Service interface {
	Buildings(ctx context.Context, bbox tile.BBox) ([]geodata.Building, error)
	Streets(ctx context.Context, bbox tile.BBox) ([]geodata.Street, error)
}

// Loader fetches tiles at most once each. Concurrent callers for the same
// unfetched tile share a single in-flight fetch.
type Loader struct {
	index  *tile.Index
	store  *geodata.Store
	svc    Service
	retry  resilience.RetryConfig
	flight singleflight.Group
}

// New creates a Loader over the given index, store, and query service.
func New(index *tile.Index, store *geodata.Store, svc Service, retry resilience.RetryConfig) *Loader {
	return &Loader{index: index, store: store, svc: svc, retry: retry}
}

// EnsureLoaded fetches and merges the tile's features unless the tile is
// already loaded. The check-fetch-merge-mark sequence runs as one unit per
// tile; duplicate concurrent calls issue no duplicate external queries.
func (l *Loader) EnsureLoaded(ctx context.Context, c tile.Coord) error {
	if l.index.Loaded(c) {
		return nil
	}

	_, err, _ := l.flight.Do(c.String(), func() (any, error) {
		// Re-check under the flight: a previous caller may have finished.
		if l.index.Loaded(c) {
			return nil, nil
		}
		if err := l.loadTile(ctx, c); err != nil {
			return nil, err
		}
		return nil, nil
	})
	return err
}

// EnsureNeighborhoodLoaded loads the 3x3 block of tiles centered on c, so
// addresses near a tile boundary can match buildings in adjacent tiles.
// Each load is independent; the first error is returned after all nine are
// attempted, with the center tile's error taking precedence.
func (l *Loader) EnsureNeighborhoodLoaded(ctx context.Context, c tile.Coord) error {
	n := 1 << l.index.Zoom()

	var centerErr, firstErr error
	for dy := -1; dy <= 1; dy++ {
		y := c.Y + dy
		if y < 0 || y >= n {
			continue
		}
		for dx := -1; dx <= 1; dx++ {
			// x wraps across the antimeridian.
			x := ((c.X+dx)%n + n) % n

			err := l.EnsureLoaded(ctx, tile.Coord{X: x, Y: y})
			if err == nil {
				continue
			}
			if dx == 0 && dy == 0 {
				centerErr = err
			}
			if firstErr == nil {
				firstErr = err
			}
		}
	}

	if centerErr != nil {
		return centerErr
	}
	return firstErr
}

// loadTile runs both bbox queries concurrently, merges the results, and
// marks the tile. On any failure nothing is marked.
func (l *Loader) loadTile(ctx context.Context, c tile.Coord) error {
	bbox := l.index.BBox(c)

	var buildings []geodata.Building
	var streets []geodata.Street

	err := resilience.Do(ctx, l.retry, "tile fetch", func(ctx context.Context) error {
		eg, egCtx := errgroup.WithContext(ctx)

		eg.Go(func() error {
			result, qErr := l.svc.Buildings(egCtx, bbox)
			if qErr != nil {
				return &FetchError{Tile: c, Query: QueryBuildings, Err: qErr}
			}
			buildings = result
			return nil
		})
		eg.Go(func() error {
			result, qErr := l.svc.Streets(egCtx, bbox)
			if qErr != nil {
				return &FetchError{Tile: c, Query: QueryStreets, Err: qErr}
			}
			streets = result
			return nil
		})

		return eg.Wait()
	})
	if err != nil {
		return err
	}

	l.store.MergeBuildings(buildings)
	l.store.MergeStreets(streets)
	l.index.MarkLoaded(c)

	zap.L().Debug("tile loaded",
		zap.String("tile", c.String()),
		zap.Int("buildings", len(buildings)),
		zap.Int("streets", len(streets)),
	)
	return nil
}
