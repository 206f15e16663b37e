// File: internal/repository/tracker/gorm_note_repository.go
package tracker

import (
	"context"
	"errors"
	"log"

	"github.com/AndrewJLe/TaleLeaf-sub001/internal/domain"
	"gorm.io/gorm"
)

var ErrNoteNotFound = errors.New("note not found")

type gormNoteRepository struct {
	db *gorm.DB
}

func NewGormNoteRepository(db *gorm.DB) NoteRepository {
	return &gormNoteRepository{db: db}
}

func (r *gormNoteRepository) Create(ctx context.Context, note *domain.Note) (*domain.Note, error) {
	if err := r.db.WithContext(ctx).Create(note).Error; err != nil {
		log.Printf("[NoteRepository] Create error for book ID %d: %v", note.BookID, err)
		return nil, errors.New("database error creating note")
	}
	return note, nil
}

func (r *gormNoteRepository) Update(ctx context.Context, note *domain.Note) error {
	if err := r.db.WithContext(ctx).Save(note).Error; err != nil {
		log.Printf("[NoteRepository] Update error for note ID %d: %v", note.ID, err)
		return errors.New("database error updating note")
	}
	return nil
}

func (r *gormNoteRepository) FindByID(ctx context.Context, id uint) (*domain.Note, error) {
	var note domain.Note
	if err := r.db.WithContext(ctx).First(&note, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNoteNotFound
		}
		log.Printf("[NoteRepository] FindByID error for note ID %d: %v", id, err)
		return nil, errors.New("database error finding note")
	}
	return &note, nil
}

// FindByBookID lists notes in page order, newest first within a page.
func (r *gormNoteRepository) FindByBookID(ctx context.Context, bookID uint) ([]domain.Note, error) {
	var notes []domain.Note
	if err := r.db.WithContext(ctx).Where("book_id = ?", bookID).Order("page asc, created_at desc").Find(&notes).Error; err != nil {
		log.Printf("[NoteRepository] FindByBookID error for book ID %d: %v", bookID, err)
		return nil, errors.New("database error listing notes")
	}
	return notes, nil
}

func (r *gormNoteRepository) FindByBookIDAndPage(ctx context.Context, bookID uint, page int) ([]domain.Note, error) {
	var notes []domain.Note
	if err := r.db.WithContext(ctx).Where("book_id = ? AND page = ?", bookID, page).Order("created_at desc").Find(&notes).Error; err != nil {
		log.Printf("[NoteRepository] FindByBookIDAndPage error for book ID %d page %d: %v", bookID, page, err)
		return nil, errors.New("database error listing notes for page")
	}
	return notes, nil
}

func (r *gormNoteRepository) Delete(ctx context.Context, id uint, bookID uint) error {
	result := r.db.WithContext(ctx).Where("id = ? AND book_id = ?", id, bookID).Delete(&domain.Note{})
	if result.Error != nil {
		log.Printf("[NoteRepository] Delete error for note ID %d: %v", id, result.Error)
		return errors.New("database error deleting note")
	}
	if result.RowsAffected == 0 {
		return ErrNoteNotFound
	}
	return nil
}
