// Package catalog holds the external game catalog (Steam apps) in memory
// and answers exact and fuzzy name lookups against it.
package catalog

import (
	"math"
	"sort"
	"strings"
)

// Entry is one canonical catalog record.
type Entry struct {
	AppID string
	Name  string
}

// Candidate is an entry scored against a query.
type Candidate struct {
	Entry
	Score int
}

// Index is an immutable, bulk-loaded view of the catalog. Names are
// normalized once at construction so a scan does not redo that work per
// query.
type Index struct {
	entries []Entry
	byName  map[string][]int
	keys    []string
	scorer  Scorer // nil means token-sort over the precomputed keys
}

// Option configures an Index.
type Option func(*Index)

// WithScorer replaces the default token-sort similarity.
func WithScorer(s Scorer) Option {
	return func(ix *Index) { ix.scorer = s }
}

// NewIndex builds an index over entries, keeping their order.
func NewIndex(entries []Entry, opts ...Option) *Index {
	ix := &Index{
		entries: make([]Entry, len(entries)),
		byName:  make(map[string][]int, len(entries)),
		keys:    make([]string, len(entries)),
	}
	copy(ix.entries, entries)
	for i, e := range ix.entries {
		k := exactKey(e.Name)
		ix.byName[k] = append(ix.byName[k], i)
		ix.keys[i] = sortedKey(e.Name)
	}
	for _, opt := range opts {
		opt(ix)
	}
	return ix
}

func exactKey(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}

func (ix *Index) Len() int { return len(ix.entries) }

// AllNames returns every catalog name in load order.
func (ix *Index) AllNames() []string {
	names := make([]string, len(ix.entries))
	for i, e := range ix.entries {
		names[i] = e.Name
	}
	return names
}

// Exact returns the entries whose name equals name, ignoring case.
func (ix *Index) Exact(name string) []Entry {
	idx := ix.byName[exactKey(name)]
	out := make([]Entry, 0, len(idx))
	for _, i := range idx {
		out = append(out, ix.entries[i])
	}
	return out
}

// BestCandidates returns every entry sharing the highest fuzzy score for
// name, in load order. It returns nil when nothing scores above zero.
func (ix *Index) BestCandidates(name string) []Candidate {
	query := sortedKey(name)
	if query == "" {
		return nil
	}
	qlen := len([]rune(query))

	best := 0
	var top []Candidate
	for i, e := range ix.entries {
		if ix.scorer == nil {
			// Edit ratio cannot exceed the length ratio; skip hopeless keys.
			klen := len([]rune(ix.keys[i]))
			if klen == 0 || int(math.Round(100*float64(min(qlen, klen))/float64(max(qlen, klen)))) < best {
				continue
			}
		}
		s := ix.score(name, query, i)
		switch {
		case s <= 0 || s < best:
			continue
		case s > best:
			best = s
			top = top[:0]
		}
		top = append(top, Candidate{Entry: e, Score: s})
	}
	return top
}

func (ix *Index) score(name, query string, i int) int {
	if ix.scorer != nil {
		return ix.scorer(name, ix.entries[i].Name)
	}
	return Ratio(query, ix.keys[i])
}

// Best returns the highest scoring entry for name. Ties resolve to the
// entry loaded first.
func (ix *Index) Best(name string) (Candidate, bool) {
	top := ix.BestCandidates(name)
	if len(top) == 0 {
		return Candidate{}, false
	}
	return top[0], true
}

// FuzzySearch returns the best entry for name when it scores at least
// threshold.
func (ix *Index) FuzzySearch(name string, threshold int) (Candidate, bool) {
	c, ok := ix.Best(name)
	if !ok || c.Score < threshold {
		return Candidate{}, false
	}
	return c, true
}

// Top returns up to n candidates ordered by descending score.
func (ix *Index) Top(name string, n int) []Candidate {
	query := sortedKey(name)
	if query == "" || n <= 0 {
		return nil
	}
	var all []Candidate
	for i, e := range ix.entries {
		if s := ix.score(name, query, i); s > 0 {
			all = append(all, Candidate{Entry: e, Score: s})
		}
	}
	sort.SliceStable(all, func(a, b int) bool { return all[a].Score > all[b].Score })
	if len(all) > n {
		all = all[:n]
	}
	return all
}
