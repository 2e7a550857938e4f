// Package match reconciles free-text municipal street names against the
// street names found in OpenStreetMap via case-insensitive fuzzy matching.
package match

import (
	"sort"
	"strings"

	"github.com/rotisserie/eris"
)

// Defaults mirroring the reference matcher behavior.
const (
	DefaultCutoff        = 0.6
	DefaultMaxCandidates = 3
)

// ErrNoMatch is returned when no candidate street name meets the similarity
// cutoff. Callers must treat this as a per-address failure, never as an
// empty result to index into.
var ErrNoMatch = eris.New("match: no street name met the similarity cutoff")

// Matcher performs closest-match search over a candidate name set.
type Matcher struct {
	cutoff float64
	maxN   int
}

// New creates a Matcher. Non-positive arguments select the defaults.
func New(cutoff float64, maxN int) *Matcher {
	if cutoff <= 0 {
		cutoff = DefaultCutoff
	}
	if maxN <= 0 {
		maxN = DefaultMaxCandidates
	}
	return &Matcher{cutoff: cutoff, maxN: maxN}
}

// Match returns the candidate most similar to query, case-insensitively,
// in the candidate's original spelling. Candidates sharing a lower-cased
// form are collapsed to the first occurrence. Ties in similarity resolve to
// the earliest candidate, so results are deterministic for a fixed
// candidate sequence. Returns ErrNoMatch when nothing reaches the cutoff.
func (m *Matcher) Match(query string, candidates []string) (string, error) {
	ranked := m.rank(query, candidates)
	if len(ranked) == 0 {
		return "", eris.Wrapf(ErrNoMatch, "query %q against %d candidates", query, len(candidates))
	}
	return ranked[0], nil
}

// rank returns up to maxN candidates at or above the cutoff, most similar
// first, in original-case spelling.
func (m *Matcher) rank(query string, candidates []string) []string {
	lquery := strings.ToLower(query)

	type scored struct {
		original string
		score    float64
		pos      int
	}

	seen := make(map[string]struct{}, len(candidates))
	var hits []scored
	for i, cand := range candidates {
		lcand := strings.ToLower(cand)
		if _, dup := seen[lcand]; dup {
			continue
		}
		seen[lcand] = struct{}{}

		score := similarity(lquery, lcand)
		if score < m.cutoff {
			continue
		}
		hits = append(hits, scored{original: cand, score: score, pos: i})
	}

	sort.SliceStable(hits, func(i, j int) bool {
		if hits[i].score != hits[j].score {
			return hits[i].score > hits[j].score
		}
		return hits[i].pos < hits[j].pos
	})

	if len(hits) > m.maxN {
		hits = hits[:m.maxN]
	}
	out := make([]string, len(hits))
	for i, h := range hits {
		out[i] = h.original
	}
	return out
}
