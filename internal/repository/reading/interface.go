// File: internal/repository/reading/interface.go
package reading

import (
	"context"

	"github.com/AndrewJLe/TaleLeaf-sub001/internal/domain"
)

// EvidenceRepository is the storage behind the retrieval engine. The
// read side satisfies the engine's EvidenceStore interface; the write
// side is used by upload processing and the ingest endpoint.
type EvidenceRepository interface {
	// Reads, matching contextwindow.EvidenceStore.
	ChapterBoundaries(ctx context.Context, bookID uint) ([]domain.ChapterBoundary, error)
	ChapterSummaries(ctx context.Context, bookID uint, chapterIndices []int) ([]domain.SummaryRecord, error)
	PageSummaries(ctx context.Context, bookID uint, startPage, endPage int) ([]domain.SummaryRecord, error)
	ChunksInRange(ctx context.Context, bookID uint, startPage, endPage int) ([]domain.RawChunk, error)
	ChunksForPage(ctx context.Context, bookID uint, page, limit int) ([]domain.RawChunk, error)

	// Writes.
	SaveChunks(ctx context.Context, bookID uint, chunks []domain.RawChunk) error
	ReplaceBoundaries(ctx context.Context, bookID uint, boundaries []domain.ChapterBoundary) error
	ReplaceSummaries(ctx context.Context, bookID uint, summaries []domain.SummaryRecord) error
	DeleteByBookID(ctx context.Context, bookID uint) error
}
