// Package match implements the fuzzy matching and ranking used by the
// command bar.
//
// Every path segment of a command is matched independently against the
// query, from the title outward. A segment is a hit when all query
// characters occur in it, case-insensitively and in order; each query
// character takes the earliest occurrence at or after the previous one.
// A command matches when at least one of its segments is a hit.
//
// # Scoring
//
// Lower scores rank first. Scores are tiered: any command whose title is a
// hit scores below every command that only hits in its breadcrumb. Within a
// tier the score grows with the offset of the first matched character and
// with the spread of the match relative to the query length, so a literal
// prefix of the title scores 0.
//
// An empty query matches every command with score 0 and no highlights.
//
// # Usage
//
//	cands := match.Rank(commands, "fort")
//	for _, c := range cands {
//	    fmt.Println(c.Command.Title(), c.Score)
//	}
//
// Matching is pure: the same command and query always produce the same
// Result, and Rank keeps catalog order among equal scores.
package match
