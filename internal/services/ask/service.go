// File: internal/services/ask/service.go
package ask

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/AndrewJLe/TaleLeaf-sub001/internal/domain"
	exchangerepo "github.com/AndrewJLe/TaleLeaf-sub001/internal/repository/exchange"
	"github.com/AndrewJLe/TaleLeaf-sub001/internal/services/ai"
	"github.com/AndrewJLe/TaleLeaf-sub001/internal/services/contextwindow"
	"github.com/AndrewJLe/TaleLeaf-sub001/internal/services/library"
	"github.com/AndrewJLe/TaleLeaf-sub001/internal/services/user_services"
)

// Logger interface for the ask service.
type Logger interface {
	Info(msg string, keysAndValues ...interface{})
	Error(msg string, keysAndValues ...interface{})
	Debug(msg string, keysAndValues ...interface{})
	Warn(msg string, keysAndValues ...interface{})
}

var (
	ErrEmptyQuestion       = errors.New("question is required")
	ErrInsufficientCredits = errors.New("insufficient credits")
	ErrBookNotReady        = errors.New("book has no reading evidence yet")
)

// Request is one question against one book. Window is optional; when
// nil the reader's bookmark defines a pages window from 1 to the
// current page.
type Request struct {
	BookID   uint
	Question string
	Window   *contextwindow.WindowSelection
}

// Response carries the answer or the spoiler refusal.
type Response struct {
	Answer         string                       `json:"answer"`
	Refused        bool                         `json:"refused"`
	Message        string                       `json:"message,omitempty"`
	Window         contextwindow.ResolvedWindow `json:"window"`
	Citations      []contextwindow.Citation     `json:"citations,omitempty"`
	ChargedCredits int                          `json:"charged_credits"`
}

// Service wires ownership, credits, retrieval, and the LLM together
// for the ask endpoint.
type Service struct {
	library   *library.Service
	retrieval *contextwindow.Service
	balance   *user_services.BalanceService
	provider  ai.CompletionProvider
	exchanges exchangerepo.ExchangeRepository
	logger    Logger
}

func NewService(lib *library.Service, retrieval *contextwindow.Service, balance *user_services.BalanceService, provider ai.CompletionProvider, exchanges exchangerepo.ExchangeRepository, logger Logger) (*Service, error) {
	if lib == nil || retrieval == nil || balance == nil || provider == nil || exchanges == nil {
		return nil, errors.New("ask service: all collaborators are required")
	}
	if logger == nil {
		return nil, errors.New("ask service: logger is required")
	}
	return &Service{
		library:   lib,
		retrieval: retrieval,
		balance:   balance,
		provider:  provider,
		exchanges: exchanges,
		logger:    logger,
	}, nil
}

// Ask answers a question within the reader's window. The refusal path
// costs nothing; an answered question is charged by length.
func (s *Service) Ask(ctx context.Context, userID uint, req Request) (*Response, error) {
	question := strings.TrimSpace(req.Question)
	if question == "" {
		return nil, ErrEmptyQuestion
	}

	book, err := s.library.GetBookForUser(ctx, userID, req.BookID)
	if err != nil {
		return nil, err
	}

	canAsk, charge, err := s.balance.CanUserAskQuestion(ctx, userID, len(question))
	if err != nil {
		return nil, err
	}
	if !canAsk {
		s.logger.Warn("ask blocked by credit balance", "user_id", userID, "book_id", book.ID, "charge", charge)
		return nil, ErrInsufficientCredits
	}

	window := s.effectiveWindow(book, req.Window)
	result, err := s.buildContext(ctx, book.ID, window, question)
	if err != nil {
		if errors.Is(err, contextwindow.ErrDataMissing) {
			return nil, ErrBookNotReady
		}
		return nil, err
	}

	if result.Refused() {
		if err := s.persistExchange(ctx, book.ID, question, "", result, 0); err != nil {
			s.logger.Error("failed to persist refusal exchange", "error", err, "book_id", book.ID)
		}
		return &Response{
			Refused: true,
			Message: result.Message,
			Window:  result.ResolvedWindow,
		}, nil
	}

	answer, err := s.provider.GetCompletion(ctx, result.Result.SystemPrompt, result.Result.UserPrompt)
	if err != nil {
		s.logger.Error("completion failed", "error", err, "book_id", book.ID)
		return nil, fmt.Errorf("failed to get answer: %w", err)
	}

	charged, err := s.balance.DeductCreditsForQuestion(ctx, userID, len(question))
	if err != nil {
		s.logger.Error("credit deduction failed after answer", "error", err, "user_id", userID)
		return nil, err
	}

	if err := s.persistExchange(ctx, book.ID, question, answer, result, charged); err != nil {
		s.logger.Error("failed to persist exchange", "error", err, "book_id", book.ID)
	}

	return &Response{
		Answer:         answer,
		Window:         result.ResolvedWindow,
		Citations:      result.Result.Citations,
		ChargedCredits: charged,
	}, nil
}

// StreamAsk streams answer deltas through onDelta and returns the
// final response. Refusals never reach the provider, so the fixed
// message is delivered in one piece.
func (s *Service) StreamAsk(ctx context.Context, userID uint, req Request, onDelta func(string) error) (*Response, error) {
	question := strings.TrimSpace(req.Question)
	if question == "" {
		return nil, ErrEmptyQuestion
	}

	book, err := s.library.GetBookForUser(ctx, userID, req.BookID)
	if err != nil {
		return nil, err
	}

	canAsk, _, err := s.balance.CanUserAskQuestion(ctx, userID, len(question))
	if err != nil {
		return nil, err
	}
	if !canAsk {
		return nil, ErrInsufficientCredits
	}

	window := s.effectiveWindow(book, req.Window)
	result, err := s.buildContext(ctx, book.ID, window, question)
	if err != nil {
		if errors.Is(err, contextwindow.ErrDataMissing) {
			return nil, ErrBookNotReady
		}
		return nil, err
	}

	if result.Refused() {
		if onDelta != nil {
			if err := onDelta(result.Message); err != nil {
				return nil, err
			}
		}
		if err := s.persistExchange(ctx, book.ID, question, "", result, 0); err != nil {
			s.logger.Error("failed to persist refusal exchange", "error", err, "book_id", book.ID)
		}
		return &Response{Refused: true, Message: result.Message, Window: result.ResolvedWindow}, nil
	}

	var answer strings.Builder
	err = s.provider.StreamCompletion(ctx, result.Result.SystemPrompt, result.Result.UserPrompt, func(delta string) error {
		answer.WriteString(delta)
		if onDelta != nil {
			return onDelta(delta)
		}
		return nil
	})
	if err != nil {
		s.logger.Error("streaming completion failed", "error", err, "book_id", book.ID)
		return nil, fmt.Errorf("failed to stream answer: %w", err)
	}

	charged, err := s.balance.DeductCreditsForQuestion(ctx, userID, len(question))
	if err != nil {
		s.logger.Error("credit deduction failed after stream", "error", err, "user_id", userID)
		return nil, err
	}

	if err := s.persistExchange(ctx, book.ID, question, answer.String(), result, charged); err != nil {
		s.logger.Error("failed to persist exchange", "error", err, "book_id", book.ID)
	}

	return &Response{
		Answer:         answer.String(),
		Window:         result.ResolvedWindow,
		Citations:      result.Result.Citations,
		ChargedCredits: charged,
	}, nil
}

// History returns recent exchanges for a book the user owns.
func (s *Service) History(ctx context.Context, userID, bookID uint, limit int) ([]domain.AskExchange, error) {
	if _, err := s.library.GetBookForUser(ctx, userID, bookID); err != nil {
		return nil, err
	}
	return s.exchanges.FindByBookID(ctx, bookID, limit)
}

// effectiveWindow falls back to "everything read so far" when the
// caller does not narrow the window.
func (s *Service) effectiveWindow(book *domain.Book, window *contextwindow.WindowSelection) contextwindow.WindowSelection {
	if window != nil {
		return *window
	}
	return contextwindow.PagesWindow(1, book.CurrentPage)
}

// buildContext routes between the cheap page-focused assembly and the
// full-window assembly. A question naming an in-window page gets the
// focused path; everything else, including the out-of-window refusal,
// goes through the full builder.
func (s *Service) buildContext(ctx context.Context, bookID uint, window contextwindow.WindowSelection, question string) (*contextwindow.Result, error) {
	if page, ok := contextwindow.DetectExplicitPage(question); ok &&
		window.Kind == contextwindow.WindowKindPages &&
		page >= window.Start && page <= window.End {
		return s.retrieval.BuildPageFocusedContextWindowResult(ctx, bookID, page, question, 0)
	}
	return s.retrieval.BuildContextWindowResult(ctx, bookID, window, question, nil)
}

func (s *Service) persistExchange(ctx context.Context, bookID uint, question, answer string, result *contextwindow.Result, charged int) error {
	ex := &domain.AskExchange{
		BookID:      bookID,
		Question:    question,
		Answer:      answer,
		WindowStart: result.ResolvedWindow.Start,
		WindowEnd:   result.ResolvedWindow.End,
		OutOfWindow: result.Refused(),
	}
	if result.Result != nil && len(result.Result.Citations) > 0 {
		raw, err := json.Marshal(result.Result.Citations)
		if err != nil {
			return fmt.Errorf("failed to encode citations: %w", err)
		}
		ex.Citations = string(raw)
	}
	_, err := s.exchanges.Create(ctx, ex)
	return err
}
