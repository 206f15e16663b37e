// File: internal/services/library/chunker.go
package library

import (
	"strings"

	"github.com/google/uuid"

	"github.com/AndrewJLe/TaleLeaf-sub001/internal/domain"
)

// maxChunkRunes splits very long paragraphs so a single chunk cannot
// dominate a context window on its own.
const maxChunkRunes = 1200

// chunkPlainText turns a plain-text book into per-page paragraph
// chunks. Pages are separated by form feeds; paragraphs within a page
// by blank lines. Page numbers are 1-indexed.
func chunkPlainText(text string) []domain.RawChunk {
	var chunks []domain.RawChunk
	for pageIdx, pageText := range strings.Split(text, "\f") {
		pageNumber := pageIdx + 1
		intra := 0
		for _, para := range splitParagraphs(pageText) {
			for _, piece := range splitLong(para) {
				chunks = append(chunks, domain.RawChunk{
					ID:             uuid.NewString(),
					PageNumber:     pageNumber,
					IntraPageIndex: intra,
					RawText:        piece,
				})
				intra++
			}
		}
	}
	return chunks
}

func splitParagraphs(pageText string) []string {
	var paras []string
	for _, block := range strings.Split(pageText, "\n\n") {
		block = strings.TrimSpace(block)
		if block != "" {
			paras = append(paras, block)
		}
	}
	return paras
}

// splitLong breaks an oversized paragraph at sentence-ish boundaries,
// falling back to a hard cut when a single sentence is still too long.
func splitLong(para string) []string {
	runes := []rune(para)
	if len(runes) <= maxChunkRunes {
		return []string{para}
	}

	var pieces []string
	for len(runes) > maxChunkRunes {
		cut := maxChunkRunes
		for i := maxChunkRunes; i > maxChunkRunes/2; i-- {
			if runes[i-1] == '.' || runes[i-1] == '!' || runes[i-1] == '?' {
				cut = i
				break
			}
		}
		pieces = append(pieces, strings.TrimSpace(string(runes[:cut])))
		runes = runes[cut:]
	}
	if rest := strings.TrimSpace(string(runes)); rest != "" {
		pieces = append(pieces, rest)
	}
	return pieces
}
