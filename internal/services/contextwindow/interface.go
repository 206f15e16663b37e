// File: internal/services/contextwindow/interface.go
package contextwindow

import (
	"context"

	"github.com/AndrewJLe/TaleLeaf-sub001/internal/domain"
)

// BoundaryStore serves the page-to-chapter boundary map for a book.
type BoundaryStore interface {
	ChapterBoundaries(ctx context.Context, bookID uint) ([]domain.ChapterBoundary, error)
}

// SummaryStore serves precomputed chapter- and page-scoped summaries.
// Implementations return records sorted by chapter index / page number
// and simply omit chapters or pages with no summary yet.
type SummaryStore interface {
	ChapterSummaries(ctx context.Context, bookID uint, chapterIndices []int) ([]domain.SummaryRecord, error)
	PageSummaries(ctx context.Context, bookID uint, startPage, endPage int) ([]domain.SummaryRecord, error)
}

// ChunkStore serves raw paragraph chunks, both by range for ranking
// and by exact page for the forced-inclusion path.
type ChunkStore interface {
	ChunksInRange(ctx context.Context, bookID uint, startPage, endPage int) ([]domain.RawChunk, error)
	ChunksForPage(ctx context.Context, bookID uint, page, limit int) ([]domain.RawChunk, error)
}

// EvidenceStore combines everything the retrieval engine reads. It is
// strictly read-only from the engine's perspective.
type EvidenceStore interface {
	BoundaryStore
	SummaryStore
	ChunkStore
}
