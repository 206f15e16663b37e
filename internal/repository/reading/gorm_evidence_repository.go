// File: internal/repository/reading/gorm_evidence_repository.go
package reading

import (
	"context"
	"errors"
	"log"

	"github.com/AndrewJLe/TaleLeaf-sub001/internal/domain"
	"gorm.io/gorm"
)

type gormEvidenceRepository struct {
	db *gorm.DB
}

func NewGormEvidenceRepository(db *gorm.DB) EvidenceRepository {
	return &gormEvidenceRepository{db: db}
}

// ChapterBoundaries returns a book's boundary map sorted by chapter index.
func (r *gormEvidenceRepository) ChapterBoundaries(ctx context.Context, bookID uint) ([]domain.ChapterBoundary, error) {
	var boundaries []domain.ChapterBoundary
	if err := r.db.WithContext(ctx).Where("book_id = ?", bookID).Order("chapter_index asc").Find(&boundaries).Error; err != nil {
		log.Printf("[EvidenceRepository] ChapterBoundaries error for book ID %d: %v", bookID, err)
		return nil, errors.New("database error loading chapter boundaries")
	}
	return boundaries, nil
}

func (r *gormEvidenceRepository) ChapterSummaries(ctx context.Context, bookID uint, chapterIndices []int) ([]domain.SummaryRecord, error) {
	if len(chapterIndices) == 0 {
		return nil, nil
	}
	var summaries []domain.SummaryRecord
	err := r.db.WithContext(ctx).
		Where("book_id = ? AND scope = ? AND chapter_index IN ?", bookID, domain.SummaryScopeChapter, chapterIndices).
		Order("chapter_index asc").
		Find(&summaries).Error
	if err != nil {
		log.Printf("[EvidenceRepository] ChapterSummaries error for book ID %d: %v", bookID, err)
		return nil, errors.New("database error loading chapter summaries")
	}
	return summaries, nil
}

func (r *gormEvidenceRepository) PageSummaries(ctx context.Context, bookID uint, startPage, endPage int) ([]domain.SummaryRecord, error) {
	var summaries []domain.SummaryRecord
	err := r.db.WithContext(ctx).
		Where("book_id = ? AND scope = ? AND page_number BETWEEN ? AND ?", bookID, domain.SummaryScopePage, startPage, endPage).
		Order("page_number asc").
		Find(&summaries).Error
	if err != nil {
		log.Printf("[EvidenceRepository] PageSummaries error for book ID %d: %v", bookID, err)
		return nil, errors.New("database error loading page summaries")
	}
	return summaries, nil
}

func (r *gormEvidenceRepository) ChunksInRange(ctx context.Context, bookID uint, startPage, endPage int) ([]domain.RawChunk, error) {
	var chunks []domain.RawChunk
	err := r.db.WithContext(ctx).
		Where("book_id = ? AND page_number BETWEEN ? AND ?", bookID, startPage, endPage).
		Order("page_number asc, intra_page_index asc").
		Find(&chunks).Error
	if err != nil {
		log.Printf("[EvidenceRepository] ChunksInRange error for book ID %d: %v", bookID, err)
		return nil, errors.New("database error loading chunks")
	}
	return chunks, nil
}

func (r *gormEvidenceRepository) ChunksForPage(ctx context.Context, bookID uint, page, limit int) ([]domain.RawChunk, error) {
	var chunks []domain.RawChunk
	query := r.db.WithContext(ctx).
		Where("book_id = ? AND page_number = ?", bookID, page).
		Order("intra_page_index asc")
	if limit > 0 {
		query = query.Limit(limit)
	}
	if err := query.Find(&chunks).Error; err != nil {
		log.Printf("[EvidenceRepository] ChunksForPage error for book ID %d page %d: %v", bookID, page, err)
		return nil, errors.New("database error loading page chunks")
	}
	return chunks, nil
}

// SaveChunks inserts extracted chunks in batches. Existing chunks for
// the book are removed first so re-uploading a file is idempotent.
func (r *gormEvidenceRepository) SaveChunks(ctx context.Context, bookID uint, chunks []domain.RawChunk) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("book_id = ?", bookID).Delete(&domain.RawChunk{}).Error; err != nil {
			log.Printf("[EvidenceRepository] SaveChunks clear error for book ID %d: %v", bookID, err)
			return errors.New("database error clearing old chunks")
		}
		if len(chunks) == 0 {
			return nil
		}
		if err := tx.CreateInBatches(chunks, 200).Error; err != nil {
			log.Printf("[EvidenceRepository] SaveChunks insert error for book ID %d: %v", bookID, err)
			return errors.New("database error saving chunks")
		}
		return nil
	})
}

// ReplaceBoundaries swaps in a complete new boundary map atomically.
func (r *gormEvidenceRepository) ReplaceBoundaries(ctx context.Context, bookID uint, boundaries []domain.ChapterBoundary) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("book_id = ?", bookID).Delete(&domain.ChapterBoundary{}).Error; err != nil {
			log.Printf("[EvidenceRepository] ReplaceBoundaries clear error for book ID %d: %v", bookID, err)
			return errors.New("database error clearing old boundaries")
		}
		if len(boundaries) == 0 {
			return nil
		}
		if err := tx.Create(&boundaries).Error; err != nil {
			log.Printf("[EvidenceRepository] ReplaceBoundaries insert error for book ID %d: %v", bookID, err)
			return errors.New("database error saving boundaries")
		}
		return nil
	})
}

// ReplaceSummaries swaps in a complete new summary set atomically.
func (r *gormEvidenceRepository) ReplaceSummaries(ctx context.Context, bookID uint, summaries []domain.SummaryRecord) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("book_id = ?", bookID).Delete(&domain.SummaryRecord{}).Error; err != nil {
			log.Printf("[EvidenceRepository] ReplaceSummaries clear error for book ID %d: %v", bookID, err)
			return errors.New("database error clearing old summaries")
		}
		if len(summaries) == 0 {
			return nil
		}
		if err := tx.CreateInBatches(summaries, 100).Error; err != nil {
			log.Printf("[EvidenceRepository] ReplaceSummaries insert error for book ID %d: %v", bookID, err)
			return errors.New("database error saving summaries")
		}
		return nil
	})
}

// DeleteByBookID removes all evidence when a book is deleted.
func (r *gormEvidenceRepository) DeleteByBookID(ctx context.Context, bookID uint) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for _, model := range []interface{}{&domain.RawChunk{}, &domain.SummaryRecord{}, &domain.ChapterBoundary{}} {
			if err := tx.Where("book_id = ?", bookID).Delete(model).Error; err != nil {
				log.Printf("[EvidenceRepository] DeleteByBookID error for book ID %d: %v", bookID, err)
				return errors.New("database error deleting book evidence")
			}
		}
		return nil
	})
}
