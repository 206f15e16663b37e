// File: internal/services/tracker/service.go
package tracker

import (
	"context"
	"errors"
	"strings"

	"github.com/AndrewJLe/TaleLeaf-sub001/internal/domain"
	trackerrepo "github.com/AndrewJLe/TaleLeaf-sub001/internal/repository/tracker"
	"github.com/AndrewJLe/TaleLeaf-sub001/internal/services/library"
)

// Logger interface for the tracker service.
type Logger interface {
	Info(msg string, keysAndValues ...interface{})
	Error(msg string, keysAndValues ...interface{})
	Debug(msg string, keysAndValues ...interface{})
	Warn(msg string, keysAndValues ...interface{})
}

// Service manages the reader-maintained trackers attached to a book:
// characters, locations, chapter recaps, and notes. Every operation
// verifies book ownership first.
type Service struct {
	library    *library.Service
	characters trackerrepo.CharacterRepository
	locations  trackerrepo.LocationRepository
	chapters   trackerrepo.ChapterRepository
	notes      trackerrepo.NoteRepository
	logger     Logger
}

func NewService(lib *library.Service, characters trackerrepo.CharacterRepository, locations trackerrepo.LocationRepository, chapters trackerrepo.ChapterRepository, notes trackerrepo.NoteRepository, logger Logger) (*Service, error) {
	if lib == nil || characters == nil || locations == nil || chapters == nil || notes == nil {
		return nil, errors.New("tracker service: all collaborators are required")
	}
	if logger == nil {
		return nil, errors.New("tracker service: logger is required")
	}
	return &Service{
		library:    lib,
		characters: characters,
		locations:  locations,
		chapters:   chapters,
		notes:      notes,
		logger:     logger,
	}, nil
}

func (s *Service) checkOwnership(ctx context.Context, userID, bookID uint) error {
	_, err := s.library.GetBookForUser(ctx, userID, bookID)
	return err
}

// --- Characters ---

func (s *Service) CreateCharacter(ctx context.Context, userID uint, character *domain.Character) (*domain.Character, error) {
	if err := s.checkOwnership(ctx, userID, character.BookID); err != nil {
		return nil, err
	}
	if strings.TrimSpace(character.Name) == "" {
		return nil, errors.New("character name is required")
	}
	return s.characters.Create(ctx, character)
}

func (s *Service) ListCharacters(ctx context.Context, userID, bookID uint) ([]domain.Character, error) {
	if err := s.checkOwnership(ctx, userID, bookID); err != nil {
		return nil, err
	}
	return s.characters.FindByBookID(ctx, bookID)
}

func (s *Service) UpdateCharacter(ctx context.Context, userID uint, character *domain.Character) error {
	if err := s.checkOwnership(ctx, userID, character.BookID); err != nil {
		return err
	}
	existing, err := s.characters.FindByID(ctx, character.ID)
	if err != nil {
		return err
	}
	if existing.BookID != character.BookID {
		return trackerrepo.ErrCharacterNotFound
	}
	return s.characters.Update(ctx, character)
}

func (s *Service) DeleteCharacter(ctx context.Context, userID, bookID, characterID uint) error {
	if err := s.checkOwnership(ctx, userID, bookID); err != nil {
		return err
	}
	return s.characters.Delete(ctx, characterID, bookID)
}

// --- Locations ---

func (s *Service) CreateLocation(ctx context.Context, userID uint, location *domain.Location) (*domain.Location, error) {
	if err := s.checkOwnership(ctx, userID, location.BookID); err != nil {
		return nil, err
	}
	if strings.TrimSpace(location.Name) == "" {
		return nil, errors.New("location name is required")
	}
	return s.locations.Create(ctx, location)
}

func (s *Service) ListLocations(ctx context.Context, userID, bookID uint) ([]domain.Location, error) {
	if err := s.checkOwnership(ctx, userID, bookID); err != nil {
		return nil, err
	}
	return s.locations.FindByBookID(ctx, bookID)
}

func (s *Service) UpdateLocation(ctx context.Context, userID uint, location *domain.Location) error {
	if err := s.checkOwnership(ctx, userID, location.BookID); err != nil {
		return err
	}
	existing, err := s.locations.FindByID(ctx, location.ID)
	if err != nil {
		return err
	}
	if existing.BookID != location.BookID {
		return trackerrepo.ErrLocationNotFound
	}
	return s.locations.Update(ctx, location)
}

func (s *Service) DeleteLocation(ctx context.Context, userID, bookID, locationID uint) error {
	if err := s.checkOwnership(ctx, userID, bookID); err != nil {
		return err
	}
	return s.locations.Delete(ctx, locationID, bookID)
}

// --- Chapters ---

func (s *Service) CreateChapter(ctx context.Context, userID uint, chapter *domain.Chapter) (*domain.Chapter, error) {
	if err := s.checkOwnership(ctx, userID, chapter.BookID); err != nil {
		return nil, err
	}
	if chapter.Index < 0 {
		return nil, errors.New("chapter index cannot be negative")
	}
	return s.chapters.Create(ctx, chapter)
}

func (s *Service) ListChapters(ctx context.Context, userID, bookID uint) ([]domain.Chapter, error) {
	if err := s.checkOwnership(ctx, userID, bookID); err != nil {
		return nil, err
	}
	return s.chapters.FindByBookID(ctx, bookID)
}

func (s *Service) UpdateChapter(ctx context.Context, userID uint, chapter *domain.Chapter) error {
	if err := s.checkOwnership(ctx, userID, chapter.BookID); err != nil {
		return err
	}
	existing, err := s.chapters.FindByID(ctx, chapter.ID)
	if err != nil {
		return err
	}
	if existing.BookID != chapter.BookID {
		return trackerrepo.ErrChapterNotFound
	}
	return s.chapters.Update(ctx, chapter)
}

func (s *Service) DeleteChapter(ctx context.Context, userID, bookID, chapterID uint) error {
	if err := s.checkOwnership(ctx, userID, bookID); err != nil {
		return err
	}
	return s.chapters.Delete(ctx, chapterID, bookID)
}

// --- Notes ---

func (s *Service) CreateNote(ctx context.Context, userID uint, note *domain.Note) (*domain.Note, error) {
	if err := s.checkOwnership(ctx, userID, note.BookID); err != nil {
		return nil, err
	}
	if strings.TrimSpace(note.Content) == "" {
		return nil, errors.New("note content is required")
	}
	return s.notes.Create(ctx, note)
}

// ListNotes returns all of a book's notes, or only one page's when
// page is positive.
func (s *Service) ListNotes(ctx context.Context, userID, bookID uint, page int) ([]domain.Note, error) {
	if err := s.checkOwnership(ctx, userID, bookID); err != nil {
		return nil, err
	}
	if page > 0 {
		return s.notes.FindByBookIDAndPage(ctx, bookID, page)
	}
	return s.notes.FindByBookID(ctx, bookID)
}

func (s *Service) UpdateNote(ctx context.Context, userID uint, note *domain.Note) error {
	if err := s.checkOwnership(ctx, userID, note.BookID); err != nil {
		return err
	}
	existing, err := s.notes.FindByID(ctx, note.ID)
	if err != nil {
		return err
	}
	if existing.BookID != note.BookID {
		return trackerrepo.ErrNoteNotFound
	}
	return s.notes.Update(ctx, note)
}

func (s *Service) DeleteNote(ctx context.Context, userID, bookID, noteID uint) error {
	if err := s.checkOwnership(ctx, userID, bookID); err != nil {
		return err
	}
	return s.notes.Delete(ctx, noteID, bookID)
}
