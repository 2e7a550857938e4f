// Package pipeline orchestrates address resolution: tile lookup, lazy data
// loading, street matching, and building location, one address at a time.
package pipeline

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/google/uuid"
	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/mapgrind/addresser/internal/geodata"
	"github.com/mapgrind/addresser/internal/loader"
	"github.com/mapgrind/addresser/internal/locate"
	"github.com/mapgrind/addresser/internal/match"
	"github.com/mapgrind/addresser/internal/tile"
)

// ErrInvalidNumber is returned when an address number field does not parse
// as a decimal number.
var ErrInvalidNumber = eris.New("pipeline: address number is not numeric")

// Address is one input record from the municipal address source.
type Address struct {
	Latitude  float64
	Longitude float64
	RawNumber string
	RawStreet string
	// RawQualifier is the road-type qualifier joined onto the street name
	// for matching (e.g. "Street", "Rd").
	RawQualifier string
	Zip          string
}

// Resolved is the canonical address assembled for a matched record.
type Resolved struct {
	Number int
	Street string
	City   string
	State  string
	Zip    string
}

// Format renders the canonical "<number> <street>, <city>, <state> <zip>" form.
func (r Resolved) Format() string {
	return fmt.Sprintf("%d %s, %s, %s %s", r.Number, r.Street, r.City, r.State, r.Zip)
}

// Outcome is the per-record result. Exactly one of Resolved or Err is set;
// Building may be nil even on success when the tile held no footprints.
type Outcome struct {
	Index    int
	Address  Address
	Resolved *Resolved
	Building *geodata.Building
	Err      error
}

// Failure kinds for the summary, one per error class the pipeline skips on.
const (
	FailInvalidCoordinate = "invalid_coordinate"
	FailFetch             = "fetch"
	FailNoStreetMatch     = "no_street_match"
	FailInvalidNumber     = "invalid_number"
)

// Summary aggregates a run's outcomes.
type Summary struct {
	RunID       uuid.UUID
	Total       int
	Resolved    int
	TilesLoaded int
	Failures    map[string]int
}

// Config controls pipeline behavior.
type Config struct {
	City  string
	State string
	// Neighborhood loads the 3x3 tile block around each address instead of
	// just its own tile, so boundary addresses can match buildings fetched
	// from an adjacent tile.
	Neighborhood bool
	MatchCutoff  float64
	MaxMatches   int
}

// Pipeline resolves address records sequentially. Later addresses reuse
// tiles loaded by earlier ones, so order affects cache hits, not results.
type Pipeline struct {
	index   *tile.Index
	store   *geodata.Store
	loader  *loader.Loader
	matcher *match.Matcher
	cfg     Config
}

// New creates a Pipeline over the given index, store, and loader.
func New(index *tile.Index, store *geodata.Store, ld *loader.Loader, cfg Config) *Pipeline {
	return &Pipeline{
		index:   index,
		store:   store,
		loader:  ld,
		matcher: match.New(cfg.MatchCutoff, cfg.MaxMatches),
		cfg:     cfg,
	}
}

// Run resolves every address in input order, invoking emit per record.
// A record's failure never aborts the batch; the context aborts the run
// between records only.
func (p *Pipeline) Run(ctx context.Context, addrs []Address, emit func(Outcome)) (Summary, error) {
	summary := Summary{
		RunID:    uuid.New(),
		Failures: make(map[string]int),
	}
	log := zap.L().With(zap.String("run_id", summary.RunID.String()))
	log.Info("resolution run started",
		zap.Int("addresses", len(addrs)),
		zap.Bool("neighborhood", p.cfg.Neighborhood),
	)

	for i, addr := range addrs {
		if err := ctx.Err(); err != nil {
			summary.TilesLoaded = p.index.LoadedCount()
			return summary, eris.Wrap(err, "pipeline: run aborted")
		}

		summary.Total++
		out := p.resolve(ctx, i, addr)
		if out.Err != nil {
			kind := FailureKind(out.Err)
			summary.Failures[kind]++
			log.Warn("address skipped",
				zap.Int("index", i),
				zap.String("kind", kind),
				zap.Error(out.Err),
			)
		} else {
			summary.Resolved++
		}
		if emit != nil {
			emit(out)
		}
	}

	summary.TilesLoaded = p.index.LoadedCount()
	log.Info("resolution run finished",
		zap.Int("total", summary.Total),
		zap.Int("resolved", summary.Resolved),
		zap.Int("tiles_loaded", summary.TilesLoaded),
	)
	return summary, nil
}

// resolve handles one address record end to end.
func (p *Pipeline) resolve(ctx context.Context, i int, addr Address) Outcome {
	out := Outcome{Index: i, Address: addr}

	coord, err := p.index.TileAt(addr.Latitude, addr.Longitude)
	if err != nil {
		out.Err = err
		return out
	}

	if p.cfg.Neighborhood {
		err = p.loader.EnsureNeighborhoodLoaded(ctx, coord)
	} else {
		err = p.loader.EnsureLoaded(ctx, coord)
	}
	if err != nil {
		out.Err = err
		return out
	}

	number, err := ParseNumber(addr.RawNumber)
	if err != nil {
		out.Err = err
		return out
	}

	street, err := p.matcher.Match(matchQuery(addr), p.store.StreetNames())
	if err != nil {
		out.Err = err
		return out
	}

	out.Building = locate.Nearest(addr.Latitude, addr.Longitude, p.store.Buildings())
	out.Resolved = &Resolved{
		Number: number,
		Street: street,
		City:   p.cfg.City,
		State:  p.cfg.State,
		Zip:    addr.Zip,
	}
	return out
}

// ParseNumber parses an address number by truncating a decimal parse, so
// "123.0" yields 123. Non-numeric input returns ErrInvalidNumber.
func ParseNumber(raw string) (int, error) {
	f, err := strconv.ParseFloat(strings.TrimSpace(raw), 64)
	if err != nil {
		return 0, eris.Wrapf(ErrInvalidNumber, "%q", raw)
	}
	return int(f), nil
}

// matchQuery space-joins the street name and road qualifier, dropping empty
// parts.
func matchQuery(addr Address) string {
	parts := make([]string, 0, 2)
	for _, p := range []string{addr.RawStreet, addr.RawQualifier} {
		if p = strings.TrimSpace(p); p != "" {
			parts = append(parts, p)
		}
	}
	return strings.Join(parts, " ")
}

// FailureKind classifies a per-record error into a summary bucket.
func FailureKind(err error) string {
	switch {
	case eris.Is(err, tile.ErrInvalidCoordinate):
		return FailInvalidCoordinate
	case eris.Is(err, match.ErrNoMatch):
		return FailNoStreetMatch
	case eris.Is(err, ErrInvalidNumber):
		return FailInvalidNumber
	default:
		// Everything else comes out of the fetch path.
		return FailFetch
	}
}
