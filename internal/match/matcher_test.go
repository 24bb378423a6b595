package match

import (
	"context"
	"math"
	"math/rand"
	"reflect"
	"strings"
	"testing"

	"github.com/dshills/cmdbar/internal/command"
)

func cmd(path ...string) *command.Command {
	return command.New(command.KindCommand, path, command.ActionFunc(func(context.Context) error { return nil }))
}

func titles(cands []Candidate) []string {
	out := make([]string, len(cands))
	for i, c := range cands {
		out[i] = c.Command.Title()
	}
	return out
}

func TestMatchEmptyQuery(t *testing.T) {
	catalog := []*command.Command{
		cmd("Find…"),
		cmd("Format", "Syntax", "Fortran"),
		cmd("Edit", "Copy"),
	}

	cands := Rank(catalog, "")
	if len(cands) != len(catalog) {
		t.Fatalf("Rank(\"\") returned %d candidates, want %d", len(cands), len(catalog))
	}
	for i, c := range cands {
		if c.Command != catalog[i] {
			t.Errorf("candidate %d = %q, want %q", i, c.Command, catalog[i])
		}
		if c.Score != 0 {
			t.Errorf("candidate %d score = %d, want 0", i, c.Score)
		}
		if c.Hits() != 0 {
			t.Errorf("candidate %d has %d hits, want 0", i, c.Hits())
		}
		if len(c.Segments) != len(catalog[i].Path) {
			t.Errorf("candidate %d has %d segments, want %d", i, len(c.Segments), len(catalog[i].Path))
		}
	}
}

func TestMatchTitleOnlyCatalog(t *testing.T) {
	catalog := []*command.Command{cmd("Find…"), cmd("Fortran")}

	tests := []struct {
		query string
		want  []string
	}{
		{"f", []string{"Find…", "Fortran"}},
		{"fo", []string{"Fortran"}},
		{"fd", []string{"Find…"}},
		{"F…", []string{"Find…"}},
		{"x", []string{}},
	}

	for _, tt := range tests {
		t.Run(tt.query, func(t *testing.T) {
			got := titles(Rank(catalog, tt.query))
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("Rank(%q) = %v, want %v", tt.query, got, tt.want)
			}
		})
	}
}

func TestMatchSegmentsAndRanges(t *testing.T) {
	c := cmd("Format", "Syntax", "Fortran")

	result, ok := Match(c, "ft")
	if !ok {
		t.Fatal("Match() reported no match")
	}

	wantTexts := []string{"Fortran", "Syntax", "Format"}
	if len(result.Segments) != len(wantTexts) {
		t.Fatalf("got %d segments, want %d", len(result.Segments), len(wantTexts))
	}
	for i, want := range wantTexts {
		if result.Segments[i].Text != want {
			t.Errorf("segment %d = %q, want %q", i, result.Segments[i].Text, want)
		}
	}

	if got, want := result.Segments[0].Ranges, []Range{{0, 1}, {3, 4}}; !reflect.DeepEqual(got, want) {
		t.Errorf("title ranges = %v, want %v", got, want)
	}
	if result.Segments[1].Hit() {
		t.Errorf("Syntax segment should miss, got ranges %v", result.Segments[1].Ranges)
	}
	if got, want := result.Segments[2].Ranges, []Range{{0, 1}, {5, 6}}; !reflect.DeepEqual(got, want) {
		t.Errorf("Format ranges = %v, want %v", got, want)
	}
	if result.Hits() != 2 {
		t.Errorf("Hits() = %d, want 2", result.Hits())
	}
}

func TestMatchEarliestOccurrence(t *testing.T) {
	result, ok := Match(cmd("banana"), "an")
	if !ok {
		t.Fatal("Match() reported no match")
	}
	if got, want := result.Segments[0].Ranges, []Range{{1, 3}}; !reflect.DeepEqual(got, want) {
		t.Errorf("ranges = %v, want %v", got, want)
	}
}

func TestMatchAnySegment(t *testing.T) {
	c := cmd("Format", "Syntax", "Fortran")

	// Only the breadcrumb contains "syn".
	if _, ok := Match(c, "syn"); !ok {
		t.Error("Match(syn) should match through the breadcrumb")
	}
	// Characters spread across segments do not match.
	if _, ok := Match(c, "synfor"); ok {
		t.Error("Match(synfor) should not match across segments")
	}
}

func TestMatchCaseInsensitive(t *testing.T) {
	tests := []struct {
		title string
		query string
	}{
		{"fortran", "FORT"},
		{"Fortran", "fort"},
		{"über", "Ü"},
	}

	for _, tt := range tests {
		if _, ok := Match(cmd(tt.title), tt.query); !ok {
			t.Errorf("Match(%q, %q) should match", tt.title, tt.query)
		}
	}
}

func TestMatchNormalizesComposition(t *testing.T) {
	// Query uses a combining acute accent; title uses the precomposed form.
	result, ok := Match(cmd("caf\u00e9"), "e\u0301")
	if !ok {
		t.Fatal("decomposed query should match precomposed title")
	}
	if got, want := result.Segments[0].Ranges, []Range{{3, 4}}; !reflect.DeepEqual(got, want) {
		t.Errorf("ranges = %v, want %v", got, want)
	}
}

func TestMatchWhitespaceIsLiteral(t *testing.T) {
	if _, ok := Match(cmd("Save As…"), "save as"); !ok {
		t.Error("query with space should match a title containing the space")
	}
	if _, ok := Match(cmd("Save As…"), "saveas"); !ok {
		t.Error("query without space should still match as a subsequence")
	}
	if _, ok := Match(cmd("SaveAs"), "save as"); ok {
		t.Error("query space must be found in the segment")
	}
}

func TestMatchEmptyPath(t *testing.T) {
	c := cmd()

	if _, ok := Match(c, "a"); ok {
		t.Error("command without segments should not match a query")
	}
	result, ok := Match(c, "")
	if !ok {
		t.Fatal("empty query should match every command")
	}
	if len(result.Segments) != 0 || result.Score != 0 {
		t.Errorf("Match(empty, \"\") = %+v, want no segments and score 0", result)
	}
}

func TestMatchNilCommand(t *testing.T) {
	if _, ok := Match(nil, ""); ok {
		t.Error("Match(nil) should not match")
	}
}

func TestScorePrefixBeatsScattered(t *testing.T) {
	tests := []struct {
		name      string
		prefix    string
		scattered string
		query     string
	}{
		{"different titles", "Fortran", "Fixed Ornament", "fo"},
		{"same title", "Format", "Fo rmat", "for"},
		{"late start", "Find", "Refind", "fi"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p, ok := Match(cmd(tt.prefix), tt.query)
			if !ok {
				t.Fatalf("Match(%q, %q) failed", tt.prefix, tt.query)
			}
			s, ok := Match(cmd(tt.scattered), tt.query)
			if !ok {
				t.Fatalf("Match(%q, %q) failed", tt.scattered, tt.query)
			}
			if p.Score >= s.Score {
				t.Errorf("prefix score %d should be below scattered score %d", p.Score, s.Score)
			}
		})
	}
}

func TestScorePrefixIsZero(t *testing.T) {
	result, ok := Match(cmd("Edit", "Fortran"), "FOR")
	if !ok {
		t.Fatal("Match() reported no match")
	}
	if result.Score != 0 {
		t.Errorf("literal prefix score = %d, want 0", result.Score)
	}
}

func TestScoreTitleBeatsBreadcrumb(t *testing.T) {
	breadcrumbOnly := cmd("Syntax", "Zzz")
	titleHit := cmd("Misc", "Syntax")
	catalog := []*command.Command{breadcrumbOnly, titleHit}

	cands := Rank(catalog, "syn")
	if len(cands) != 2 {
		t.Fatalf("Rank() returned %d candidates, want 2", len(cands))
	}
	if cands[0].Command != titleHit {
		t.Errorf("first candidate = %q, want %q", cands[0].Command, titleHit)
	}
	if cands[0].Score >= cands[1].Score {
		t.Errorf("title score %d should be below breadcrumb score %d", cands[0].Score, cands[1].Score)
	}
}

func TestScoreTitleBeatsBreadcrumbEvenWhenLate(t *testing.T) {
	late := cmd("Menu", strings.Repeat("x", 500)+"syntax")
	early := cmd("Syntax", "Zzz")

	l, _ := Match(late, "syn")
	e, _ := Match(early, "syn")
	if l.Score >= e.Score {
		t.Errorf("late title hit %d should still beat breadcrumb hit %d", l.Score, e.Score)
	}
}

func TestScoreWeightsCapDetail(t *testing.T) {
	m := NewMatcher(Options{Weights: Weights{Position: 5, Spread: 5, Tier: 10}})

	title, _ := m.Match(cmd("Menu", "zzzzzzzzzzzzzzza"), "a")
	crumb, _ := m.Match(cmd("abc", "zzz"), "a")
	if title.Score != 9 {
		t.Errorf("capped title score = %d, want 9", title.Score)
	}
	if crumb.Score != 10 {
		t.Errorf("breadcrumb score = %d, want 10", crumb.Score)
	}
}

func TestScoreHugeWeightsSaturate(t *testing.T) {
	tests := []struct {
		name    string
		weights Weights
	}{
		{"position", Weights{Position: 1 << 62, Spread: 100}},
		{"max position", Weights{Position: math.MaxInt, Spread: 100}},
		{"max spread", Weights{Position: 100, Spread: math.MaxInt}},
		{"max all", Weights{Position: math.MaxInt, Spread: math.MaxInt, Tier: math.MaxInt}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := NewMatcher(Options{Weights: tt.weights})
			tier := m.Weights().Tier

			title, ok := m.Match(cmd("xxFxxormat"), "fo")
			if !ok {
				t.Fatal("Match() ok = false, want a title hit")
			}
			if title.Score < 0 || title.Score > tier-1 {
				t.Errorf("title score = %d, want within [0, %d]", title.Score, tier-1)
			}

			crumb, ok := m.Match(cmd("xxFxxormat", "zzz"), "fo")
			if !ok {
				t.Fatal("Match() ok = false, want a breadcrumb hit")
			}
			if crumb.Score < tier {
				t.Errorf("breadcrumb score = %d, want at least %d", crumb.Score, tier)
			}
		})
	}
}

func TestMulDivCeil(t *testing.T) {
	tests := []struct {
		a, b, d, limit int
		want           int
	}{
		{0, 100, 1, 999, 0},
		{3, 100, 1, 999, 300},
		{3, 100, 1, 200, 200},
		{1, 100, 3, 999, 34},
		{2, 100, 2, 999, 100},
		{math.MaxInt, math.MaxInt, 1, 999, 999},
		{math.MaxInt, 2, 4, math.MaxInt, math.MaxInt/2 + 1},
	}
	for _, tt := range tests {
		if got := mulDivCeil(tt.a, tt.b, tt.d, tt.limit); got != tt.want {
			t.Errorf("mulDivCeil(%d, %d, %d, %d) = %d, want %d", tt.a, tt.b, tt.d, tt.limit, got, tt.want)
		}
	}
}

func TestRankStableTies(t *testing.T) {
	catalog := []*command.Command{
		cmd("File", "Open"),
		cmd("Edit", "Open Recent"),
		cmd("View", "Open Quickly"),
	}

	got := titles(Rank(catalog, "open"))
	want := []string{"Open", "Open Recent", "Open Quickly"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("Rank(open) = %v, want %v", got, want)
	}
}

func TestRankLimit(t *testing.T) {
	catalog := []*command.Command{cmd("a1"), cmd("a2"), cmd("a3"), cmd("b")}

	m := NewMatcher(Options{Limit: 2})
	got := titles(m.Rank(catalog, "a"))
	if want := []string{"a1", "a2"}; !reflect.DeepEqual(got, want) {
		t.Errorf("Rank() = %v, want %v", got, want)
	}

	if got := len(NewMatcher(Options{Limit: -1}).Rank(catalog, "a")); got != 3 {
		t.Errorf("negative limit returned %d candidates, want 3", got)
	}
}

func TestMatchIdempotent(t *testing.T) {
	c := cmd("Format", "Syntax", "Fortran")
	for _, q := range []string{"", "f", "fort", "syn", "ft"} {
		a, okA := Match(c, q)
		b, okB := Match(c, q)
		if okA != okB || !reflect.DeepEqual(a, b) {
			t.Errorf("Match(%q) not idempotent: %+v vs %+v", q, a, b)
		}
	}
}

// isSubsequence is a reference implementation for ASCII input.
func isSubsequence(query, text string) bool {
	query, text = strings.ToLower(query), strings.ToLower(text)
	i := 0
	for j := 0; j < len(text) && i < len(query); j++ {
		if text[j] == query[i] {
			i++
		}
	}
	return i == len(query)
}

func TestMatchAgreesWithReference(t *testing.T) {
	rng := rand.New(rand.NewSource(42))
	const alphabet = "abcABC -"

	randString := func(max int) string {
		n := rng.Intn(max + 1)
		b := make([]byte, n)
		for i := range b {
			b[i] = alphabet[rng.Intn(len(alphabet))]
		}
		return string(b)
	}

	for i := 0; i < 2000; i++ {
		path := make([]string, 1+rng.Intn(3))
		for j := range path {
			path[j] = randString(8)
		}
		query := randString(4)
		if query == "" {
			continue
		}

		want := false
		for _, seg := range path {
			if isSubsequence(query, seg) {
				want = true
			}
		}

		result, got := Match(cmd(path...), query)
		if got != want {
			t.Fatalf("Match(%q, %q) = %v, want %v", path, query, got, want)
		}
		if !got {
			continue
		}
		for _, seg := range result.Segments {
			n := 0
			for _, r := range seg.Ranges {
				n += r.Len()
			}
			if seg.Hit() && n != len(query) {
				t.Fatalf("segment %q covers %d runes, want %d", seg.Text, n, len(query))
			}
		}
	}
}
