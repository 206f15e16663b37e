// File: internal/services/library/service.go
package library

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"

	"github.com/AndrewJLe/TaleLeaf-sub001/internal/domain"
	bookrepo "github.com/AndrewJLe/TaleLeaf-sub001/internal/repository/book"
	exchangerepo "github.com/AndrewJLe/TaleLeaf-sub001/internal/repository/exchange"
	"github.com/AndrewJLe/TaleLeaf-sub001/internal/repository/reading"
)

// Logger interface for the library service.
type Logger interface {
	Info(msg string, keysAndValues ...interface{})
	Error(msg string, keysAndValues ...interface{})
	Debug(msg string, keysAndValues ...interface{})
	Warn(msg string, keysAndValues ...interface{})
}

// Service manages the user's shelf: uploads, reading progress, and the
// ingest of externally produced summaries and boundaries.
type Service struct {
	books     bookrepo.BookRepository
	evidence  reading.EvidenceRepository
	exchanges exchangerepo.ExchangeRepository
	uploadDir string
	logger    Logger
}

func NewService(books bookrepo.BookRepository, evidence reading.EvidenceRepository, exchanges exchangerepo.ExchangeRepository, uploadDir string, logger Logger) (*Service, error) {
	if books == nil || evidence == nil || exchanges == nil {
		return nil, errors.New("library service: all repositories are required")
	}
	if logger == nil {
		return nil, errors.New("library service: logger is required")
	}
	if err := os.MkdirAll(uploadDir, 0o755); err != nil {
		return nil, fmt.Errorf("library service: cannot create upload dir: %w", err)
	}
	return &Service{
		books:     books,
		evidence:  evidence,
		exchanges: exchanges,
		uploadDir: uploadDir,
		logger:    logger,
	}, nil
}

// GetBookForUser loads a book and enforces ownership.
func (s *Service) GetBookForUser(ctx context.Context, userID, bookID uint) (*domain.Book, error) {
	book, err := s.books.FindByID(ctx, bookID)
	if err != nil {
		return nil, err
	}
	if book.UserID != userID {
		s.logger.Warn("ownership check failed", "user_id", userID, "book_id", bookID, "owner_id", book.UserID)
		return nil, ErrNotOwner
	}
	return book, nil
}

// ListBooks returns the user's shelf.
func (s *Service) ListBooks(ctx context.Context, userID uint) ([]domain.Book, error) {
	return s.books.FindByUserID(ctx, userID)
}

// CreateBookFromUpload stores the uploaded file and creates the shelf
// entry. PDF uploads are validated and counted but their text arrives
// later through ingest; plain-text uploads are chunked immediately.
func (s *Service) CreateBookFromUpload(ctx context.Context, userID uint, title, author, filename string, file io.Reader) (*domain.Book, error) {
	title = strings.TrimSpace(title)
	if title == "" {
		return nil, errors.New("title is required")
	}

	ext := strings.ToLower(filepath.Ext(filename))
	if ext != ".pdf" && ext != ".txt" {
		return nil, ErrUnsupportedFormat
	}

	storedName := uuid.NewString() + ext
	storedPath := filepath.Join(s.uploadDir, storedName)
	written, err := s.writeUpload(storedPath, file)
	if err != nil {
		return nil, err
	}
	if written == 0 {
		os.Remove(storedPath)
		return nil, ErrEmptyUpload
	}

	book := &domain.Book{
		UserID:      userID,
		Title:       title,
		Author:      strings.TrimSpace(author),
		CurrentPage: 1,
		Status:      domain.BookStatusPending,
		SourceFile:  storedName,
	}

	switch ext {
	case ".pdf":
		pageCount, err := pdfPageCount(storedPath)
		if err != nil {
			os.Remove(storedPath)
			s.logger.Warn("rejected invalid PDF upload", "user_id", userID, "error", err)
			return nil, fmt.Errorf("invalid PDF: %w", err)
		}
		book.TotalPages = pageCount

	case ".txt":
		raw, err := os.ReadFile(storedPath)
		if err != nil {
			return nil, fmt.Errorf("failed to read stored upload: %w", err)
		}
		chunks := chunkPlainText(string(raw))
		if len(chunks) == 0 {
			os.Remove(storedPath)
			return nil, ErrEmptyUpload
		}
		book.TotalPages = chunks[len(chunks)-1].PageNumber
		created, err := s.books.Create(ctx, book)
		if err != nil {
			return nil, err
		}
		for i := range chunks {
			chunks[i].BookID = created.ID
		}
		if err := s.evidence.SaveChunks(ctx, created.ID, chunks); err != nil {
			return nil, err
		}
		if err := s.books.UpdateStatus(ctx, created.ID, domain.BookStatusProcessing); err != nil {
			return nil, err
		}
		created.Status = domain.BookStatusProcessing
		s.logger.Info("text book uploaded and chunked",
			"user_id", userID, "book_id", created.ID,
			"pages", created.TotalPages, "chunks", len(chunks))
		return created, nil
	}

	created, err := s.books.Create(ctx, book)
	if err != nil {
		return nil, err
	}
	s.logger.Info("book uploaded",
		"user_id", userID, "book_id", created.ID,
		"format", ext, "pages", created.TotalPages)
	return created, nil
}

// UpdateProgress moves the reader's bookmark, clamped to the book's
// page range.
func (s *Service) UpdateProgress(ctx context.Context, userID, bookID uint, page int) (*domain.Book, error) {
	book, err := s.GetBookForUser(ctx, userID, bookID)
	if err != nil {
		return nil, err
	}
	clamped := book.ClampCurrentPage(page)
	if err := s.books.UpdateCurrentPage(ctx, bookID, clamped); err != nil {
		return nil, err
	}
	book.CurrentPage = clamped
	s.logger.Debug("reading progress updated", "user_id", userID, "book_id", bookID, "page", clamped)
	return book, nil
}

// DeleteBook removes the shelf entry with its evidence, exchanges, and
// stored file.
func (s *Service) DeleteBook(ctx context.Context, userID, bookID uint) error {
	book, err := s.GetBookForUser(ctx, userID, bookID)
	if err != nil {
		return err
	}

	if err := s.evidence.DeleteByBookID(ctx, bookID); err != nil {
		return err
	}
	if err := s.exchanges.DeleteByBookID(ctx, bookID); err != nil {
		return err
	}
	if err := s.books.Delete(ctx, bookID, userID); err != nil {
		return err
	}

	if book.SourceFile != "" {
		if err := os.Remove(filepath.Join(s.uploadDir, book.SourceFile)); err != nil && !os.IsNotExist(err) {
			s.logger.Warn("failed to remove stored upload", "book_id", bookID, "error", err)
		}
	}

	s.logger.Info("book deleted", "user_id", userID, "book_id", bookID)
	return nil
}

// IngestEvidence accepts the preprocessing output for a book: chapter
// boundaries, summary records, and optionally raw chunks (for PDFs,
// whose text is extracted externally). The book flips to ready.
func (s *Service) IngestEvidence(ctx context.Context, userID, bookID uint, boundaries []domain.ChapterBoundary, summaries []domain.SummaryRecord, chunks []domain.RawChunk) error {
	book, err := s.GetBookForUser(ctx, userID, bookID)
	if err != nil {
		return err
	}

	if err := validateBoundaries(boundaries, book.TotalPages); err != nil {
		return fmt.Errorf("invalid boundaries: %w", err)
	}

	for i := range boundaries {
		boundaries[i].BookID = bookID
	}
	for i := range summaries {
		summaries[i].BookID = bookID
	}
	for i := range chunks {
		chunks[i].BookID = bookID
		if chunks[i].ID == "" {
			chunks[i].ID = uuid.NewString()
		}
	}

	if err := s.evidence.ReplaceBoundaries(ctx, bookID, boundaries); err != nil {
		return err
	}
	if err := s.evidence.ReplaceSummaries(ctx, bookID, summaries); err != nil {
		return err
	}
	if len(chunks) > 0 {
		if err := s.evidence.SaveChunks(ctx, bookID, chunks); err != nil {
			return err
		}
	}
	if err := s.books.UpdateStatus(ctx, bookID, domain.BookStatusReady); err != nil {
		return err
	}

	s.logger.Info("evidence ingested",
		"user_id", userID, "book_id", bookID,
		"boundaries", len(boundaries), "summaries", len(summaries), "chunks", len(chunks))
	return nil
}

// validateBoundaries checks ordering and overlap before a boundary map
// is accepted.
func validateBoundaries(boundaries []domain.ChapterBoundary, totalPages int) error {
	prevEnd := 0
	for i, b := range boundaries {
		if b.ChapterIndex != i {
			return fmt.Errorf("chapter indices must be contiguous from 0, got %d at position %d", b.ChapterIndex, i)
		}
		if b.StartPage < 1 || b.EndPage < b.StartPage {
			return fmt.Errorf("chapter %d has invalid page range [%d,%d]", b.ChapterIndex, b.StartPage, b.EndPage)
		}
		if b.StartPage <= prevEnd {
			return fmt.Errorf("chapter %d overlaps previous chapter", b.ChapterIndex)
		}
		if totalPages > 0 && b.EndPage > totalPages {
			return fmt.Errorf("chapter %d ends past the last page %d", b.ChapterIndex, totalPages)
		}
		prevEnd = b.EndPage
	}
	return nil
}

func (s *Service) writeUpload(path string, file io.Reader) (int64, error) {
	dst, err := os.Create(path)
	if err != nil {
		return 0, fmt.Errorf("failed to store upload: %w", err)
	}
	defer dst.Close()

	written, err := io.Copy(dst, file)
	if err != nil {
		return 0, fmt.Errorf("failed to write upload: %w", err)
	}
	return written, nil
}
