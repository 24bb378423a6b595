package match

import (
	"math"
	"math/bits"
)

// Weights configures scoring. All weights must be positive.
type Weights struct {
	// Position is added per rune before the first matched rune.
	Position int

	// Spread scales the gap runes inside the match, divided by the
	// query length and rounded up.
	Spread int

	// Tier separates title hits from breadcrumb-only hits. Details are
	// capped at Tier-1 so tiers never overlap.
	Tier int
}

// DefaultWeights returns the default scoring weights.
func DefaultWeights() Weights {
	return Weights{
		Position: 100,
		Spread:   100,
		Tier:     1_000_000,
	}
}

// normalized fills zero or negative weights with defaults.
func (w Weights) normalized() Weights {
	def := DefaultWeights()
	if w.Position <= 0 {
		w.Position = def.Position
	}
	if w.Spread <= 0 {
		w.Spread = def.Spread
	}
	if w.Tier <= 0 {
		w.Tier = def.Tier
	}
	if w.Tier > maxTier {
		w.Tier = maxTier
	}
	return w
}

// maxTier keeps tier*Tier plus a capped detail within an int.
const maxTier = math.MaxInt / 2

const (
	tierTitle = iota
	tierBreadcrumb
)

// detail scores a single segment hit within its tier.
// positions holds the matched rune offsets; queryLen is non-zero.
// The result saturates at Tier-1 instead of overflowing.
func (w Weights) detail(positions []int, queryLen int) int {
	first := positions[0]
	last := positions[len(positions)-1]
	gaps := (last - first + 1) - queryLen
	limit := w.Tier - 1

	score := mulDivCeil(first, w.Position, 1, limit)
	if gaps > 0 {
		spread := mulDivCeil(gaps, w.Spread, queryLen, limit)
		if spread > limit-score {
			return limit
		}
		score += spread
	}
	return score
}

// mulDivCeil returns ceil(a*b/d) for non-negative a, b and positive d,
// or limit when the result would exceed it.
func mulDivCeil(a, b, d, limit int) int {
	hi, lo := bits.Mul64(uint64(a), uint64(b))
	if hi >= uint64(d) {
		return limit
	}
	q, r := bits.Div64(hi, lo, uint64(d))
	if r != 0 {
		q++
	}
	if q > uint64(limit) {
		return limit
	}
	return int(q)
}

// score combines a tier and an in-tier detail.
func (w Weights) score(tier, detail int) int {
	return tier*w.Tier + detail
}
