package match

import "github.com/dshills/cmdbar/internal/command"

// Range is a half-open range of rune offsets within a segment.
type Range struct {
	Start int
	End   int
}

// Len returns the number of runes covered by the range.
func (r Range) Len() int {
	return r.End - r.Start
}

// Segment is one path segment of a matched command.
type Segment struct {
	// Text is the segment text, NFC-normalized.
	Text string

	// Ranges are the matched rune ranges, ascending and non-overlapping.
	// Empty when the segment did not match.
	Ranges []Range
}

// Hit reports whether the segment matched the query.
func (s Segment) Hit() bool {
	return len(s.Ranges) > 0
}

// Result is the outcome of matching one command against a query.
type Result struct {
	// Segments lists the title first, then the breadcrumb from the
	// innermost segment outward.
	Segments []Segment

	// Score orders results; lower is better.
	Score int
}

// Hits returns the number of segments that matched.
func (r Result) Hits() int {
	n := 0
	for _, s := range r.Segments {
		if s.Hit() {
			n++
		}
	}
	return n
}

// Candidate pairs a command with its match result.
type Candidate struct {
	Command *command.Command
	Result
}

// mergeRanges turns ascending rune positions into contiguous ranges.
func mergeRanges(positions []int) []Range {
	if len(positions) == 0 {
		return nil
	}
	ranges := make([]Range, 0, len(positions))
	current := Range{Start: positions[0], End: positions[0] + 1}
	for _, p := range positions[1:] {
		if p == current.End {
			current.End++
			continue
		}
		ranges = append(ranges, current)
		current = Range{Start: p, End: p + 1}
	}
	return append(ranges, current)
}
