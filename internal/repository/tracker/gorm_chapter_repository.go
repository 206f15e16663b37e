// File: internal/repository/tracker/gorm_chapter_repository.go
package tracker

import (
	"context"
	"errors"
	"log"

	"github.com/AndrewJLe/TaleLeaf-sub001/internal/domain"
	"gorm.io/gorm"
)

var ErrChapterNotFound = errors.New("chapter not found")

type gormChapterRepository struct {
	db *gorm.DB
}

func NewGormChapterRepository(db *gorm.DB) ChapterRepository {
	return &gormChapterRepository{db: db}
}

func (r *gormChapterRepository) Create(ctx context.Context, chapter *domain.Chapter) (*domain.Chapter, error) {
	if err := r.db.WithContext(ctx).Create(chapter).Error; err != nil {
		log.Printf("[ChapterRepository] Create error for book ID %d index %d: %v", chapter.BookID, chapter.Index, err)
		return nil, errors.New("database error creating chapter")
	}
	return chapter, nil
}

func (r *gormChapterRepository) Update(ctx context.Context, chapter *domain.Chapter) error {
	if err := r.db.WithContext(ctx).Save(chapter).Error; err != nil {
		log.Printf("[ChapterRepository] Update error for chapter ID %d: %v", chapter.ID, err)
		return errors.New("database error updating chapter")
	}
	return nil
}

func (r *gormChapterRepository) FindByID(ctx context.Context, id uint) (*domain.Chapter, error) {
	var chapter domain.Chapter
	if err := r.db.WithContext(ctx).First(&chapter, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrChapterNotFound
		}
		log.Printf("[ChapterRepository] FindByID error for chapter ID %d: %v", id, err)
		return nil, errors.New("database error finding chapter")
	}
	return &chapter, nil
}

func (r *gormChapterRepository) FindByBookID(ctx context.Context, bookID uint) ([]domain.Chapter, error) {
	var chapters []domain.Chapter
	if err := r.db.WithContext(ctx).Where("book_id = ?", bookID).Order("`index` asc").Find(&chapters).Error; err != nil {
		log.Printf("[ChapterRepository] FindByBookID error for book ID %d: %v", bookID, err)
		return nil, errors.New("database error listing chapters")
	}
	return chapters, nil
}

func (r *gormChapterRepository) Delete(ctx context.Context, id uint, bookID uint) error {
	result := r.db.WithContext(ctx).Where("id = ? AND book_id = ?", id, bookID).Delete(&domain.Chapter{})
	if result.Error != nil {
		log.Printf("[ChapterRepository] Delete error for chapter ID %d: %v", id, result.Error)
		return errors.New("database error deleting chapter")
	}
	if result.RowsAffected == 0 {
		return ErrChapterNotFound
	}
	return nil
}
