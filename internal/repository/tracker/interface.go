// File: internal/repository/tracker/interface.go
package tracker

import (
	"context"

	"github.com/AndrewJLe/TaleLeaf-sub001/internal/domain"
)

// CharacterRepository handles character tracker rows.
type CharacterRepository interface {
	Create(ctx context.Context, character *domain.Character) (*domain.Character, error)
	Update(ctx context.Context, character *domain.Character) error
	FindByID(ctx context.Context, id uint) (*domain.Character, error)
	FindByBookID(ctx context.Context, bookID uint) ([]domain.Character, error)
	Delete(ctx context.Context, id uint, bookID uint) error
}

// LocationRepository handles place tracker rows.
type LocationRepository interface {
	Create(ctx context.Context, location *domain.Location) (*domain.Location, error)
	Update(ctx context.Context, location *domain.Location) error
	FindByID(ctx context.Context, id uint) (*domain.Location, error)
	FindByBookID(ctx context.Context, bookID uint) ([]domain.Location, error)
	Delete(ctx context.Context, id uint, bookID uint) error
}

// ChapterRepository handles reader-facing chapter entries.
type ChapterRepository interface {
	Create(ctx context.Context, chapter *domain.Chapter) (*domain.Chapter, error)
	Update(ctx context.Context, chapter *domain.Chapter) error
	FindByID(ctx context.Context, id uint) (*domain.Chapter, error)
	FindByBookID(ctx context.Context, bookID uint) ([]domain.Chapter, error)
	Delete(ctx context.Context, id uint, bookID uint) error
}

// NoteRepository handles page-anchored reader notes.
type NoteRepository interface {
	Create(ctx context.Context, note *domain.Note) (*domain.Note, error)
	Update(ctx context.Context, note *domain.Note) error
	FindByID(ctx context.Context, id uint) (*domain.Note, error)
	FindByBookID(ctx context.Context, bookID uint) ([]domain.Note, error)
	FindByBookIDAndPage(ctx context.Context, bookID uint, page int) ([]domain.Note, error)
	Delete(ctx context.Context, id uint, bookID uint) error
}
