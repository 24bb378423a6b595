package match

import (
	"sort"
	"unicode"

	"golang.org/x/text/unicode/norm"

	"github.com/dshills/cmdbar/internal/command"
)

// Options configures a Matcher.
type Options struct {
	// Weights tunes the scoring.
	Weights Weights

	// Limit caps the number of ranked candidates. Zero means no limit.
	Limit int
}

// DefaultOptions returns the default matcher options.
func DefaultOptions() Options {
	return Options{
		Weights: DefaultWeights(),
	}
}

// Matcher matches and ranks commands. A Matcher is immutable and safe for
// concurrent use.
type Matcher struct {
	weights Weights
	limit   int
}

// NewMatcher creates a matcher with the given options.
func NewMatcher(opts Options) *Matcher {
	limit := opts.Limit
	if limit < 0 {
		limit = 0
	}
	return &Matcher{
		weights: opts.Weights.normalized(),
		limit:   limit,
	}
}

var defaultMatcher = NewMatcher(DefaultOptions())

// Match matches cmd against query with the default options.
func Match(cmd *command.Command, query string) (Result, bool) {
	return defaultMatcher.Match(cmd, query)
}

// Rank ranks cmds against query with the default options.
func Rank(cmds []*command.Command, query string) []Candidate {
	return defaultMatcher.Rank(cmds, query)
}

// Weights returns the matcher's scoring weights.
func (m *Matcher) Weights() Weights {
	return m.weights
}

// Match matches cmd against query. It reports false when no segment of
// the command contains the query as a subsequence.
func (m *Matcher) Match(cmd *command.Command, query string) (Result, bool) {
	if cmd == nil {
		return Result{}, false
	}
	queryRunes := []rune(norm.NFC.String(query))
	segments := make([]Segment, 0, len(cmd.Path))

	if len(queryRunes) == 0 {
		for i := len(cmd.Path) - 1; i >= 0; i-- {
			segments = append(segments, Segment{Text: norm.NFC.String(cmd.Path[i])})
		}
		return Result{Segments: segments}, true
	}

	found := false
	best, bestTier := 0, tierBreadcrumb
	for i := len(cmd.Path) - 1; i >= 0; i-- {
		text := norm.NFC.String(cmd.Path[i])
		positions, ok := subsequence(queryRunes, []rune(text))
		if !ok {
			segments = append(segments, Segment{Text: text})
			continue
		}
		segments = append(segments, Segment{Text: text, Ranges: mergeRanges(positions)})

		tier := tierBreadcrumb
		if i == len(cmd.Path)-1 {
			tier = tierTitle
		}
		d := m.weights.detail(positions, len(queryRunes))
		if !found || tier < bestTier || (tier == bestTier && d < best) {
			best, bestTier = d, tier
			found = true
		}
	}

	if !found {
		return Result{}, false
	}
	return Result{Segments: segments, Score: m.weights.score(bestTier, best)}, true
}

// Rank matches every command and returns the matches sorted by ascending
// score. Commands with equal scores keep their catalog order.
func (m *Matcher) Rank(cmds []*command.Command, query string) []Candidate {
	candidates := make([]Candidate, 0, len(cmds))
	for _, cmd := range cmds {
		result, ok := m.Match(cmd, query)
		if !ok {
			continue
		}
		candidates = append(candidates, Candidate{Command: cmd, Result: result})
	}

	sort.SliceStable(candidates, func(i, j int) bool {
		return candidates[i].Score < candidates[j].Score
	})

	if m.limit > 0 && len(candidates) > m.limit {
		candidates = candidates[:m.limit]
	}
	return candidates
}

// subsequence finds each query rune at its earliest position in text at or
// after the position following the previous match.
func subsequence(query, text []rune) ([]int, bool) {
	if len(query) > len(text) {
		return nil, false
	}
	positions := make([]int, 0, len(query))
	qi := 0
	for i := 0; i < len(text) && qi < len(query); i++ {
		if equalFold(text[i], query[qi]) {
			positions = append(positions, i)
			qi++
		}
	}
	if qi != len(query) {
		return nil, false
	}
	return positions, true
}

// equalFold reports whether a and b are equal under simple Unicode case folding.
func equalFold(a, b rune) bool {
	if a == b {
		return true
	}
	for r := unicode.SimpleFold(a); r != a; r = unicode.SimpleFold(r) {
		if r == b {
			return true
		}
	}
	return false
}
