// File: internal/services/contextwindow/rank.go
package contextwindow

import (
	"sort"
	"strings"
	"unicode"

	"github.com/AndrewJLe/TaleLeaf-sub001/internal/domain"
)

// ScoredChunk pairs a raw chunk with its lexical overlap score.
type ScoredChunk struct {
	Chunk domain.RawChunk
	Score int
}

// QueryTokens derives the significant tokens of a question: lowercase,
// split on non-alphanumeric runs, keep tokens longer than two runes.
// There is no stopword list; the length filter does that job.
func QueryTokens(question string) []string {
	fields := strings.FieldsFunc(strings.ToLower(question), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
	tokens := make([]string, 0, len(fields))
	for _, f := range fields {
		if len(f) > 2 {
			tokens = append(tokens, f)
		}
	}
	return tokens
}

// RankChunks scores chunks by how many query tokens appear as literal
// case-insensitive substrings of their text, then orders them by score
// descending with ties broken by page then intra-page order. The
// tie-break is what yields reading order when nothing matches, which
// is common and expected.
func RankChunks(chunks []domain.RawChunk, queryTokens []string) []ScoredChunk {
	scored := make([]ScoredChunk, 0, len(chunks))
	for _, chunk := range chunks {
		scored = append(scored, ScoredChunk{
			Chunk: chunk,
			Score: lexicalScore(chunk.RawText, queryTokens),
		})
	}

	sort.SliceStable(scored, func(i, j int) bool {
		if scored[i].Score != scored[j].Score {
			return scored[i].Score > scored[j].Score
		}
		if scored[i].Chunk.PageNumber != scored[j].Chunk.PageNumber {
			return scored[i].Chunk.PageNumber < scored[j].Chunk.PageNumber
		}
		return scored[i].Chunk.IntraPageIndex < scored[j].Chunk.IntraPageIndex
	})
	return scored
}

// lexicalScore counts query tokens contained in the lowercased text.
// No stemming, no fuzzy matching.
func lexicalScore(text string, queryTokens []string) int {
	lowered := strings.ToLower(text)
	score := 0
	for _, token := range queryTokens {
		if strings.Contains(lowered, token) {
			score++
		}
	}
	return score
}
