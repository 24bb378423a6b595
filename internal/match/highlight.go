package match

import "strings"

// Highlight returns the segment text with every matched range wrapped in
// open and close markers.
func Highlight(seg Segment, open, close string) string {
	if !seg.Hit() {
		return seg.Text
	}
	runes := []rune(seg.Text)
	var b strings.Builder
	b.Grow(len(seg.Text) + len(seg.Ranges)*(len(open)+len(close)))

	pos := 0
	for _, r := range seg.Ranges {
		start, end := clamp(r.Start, len(runes)), clamp(r.End, len(runes))
		if start < pos || end <= start {
			continue
		}
		b.WriteString(string(runes[pos:start]))
		b.WriteString(open)
		b.WriteString(string(runes[start:end]))
		b.WriteString(close)
		pos = end
	}
	b.WriteString(string(runes[pos:]))
	return b.String()
}

// Contains reports whether the rune offset i falls inside one of ranges.
func Contains(ranges []Range, i int) bool {
	for _, r := range ranges {
		if i < r.Start {
			return false
		}
		if i < r.End {
			return true
		}
	}
	return false
}

func clamp(i, n int) int {
	if i < 0 {
		return 0
	}
	if i > n {
		return n
	}
	return i
}
