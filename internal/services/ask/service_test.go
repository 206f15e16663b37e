// File: internal/services/ask/service_test.go
package ask

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/AndrewJLe/TaleLeaf-sub001/internal/domain"
	bookrepo "github.com/AndrewJLe/TaleLeaf-sub001/internal/repository/book"
	userrepo "github.com/AndrewJLe/TaleLeaf-sub001/internal/repository/user"
	"github.com/AndrewJLe/TaleLeaf-sub001/internal/services/contextwindow"
	"github.com/AndrewJLe/TaleLeaf-sub001/internal/services/library"
	"github.com/AndrewJLe/TaleLeaf-sub001/internal/services/user_services"
)

type nopLogger struct{}

func (nopLogger) Info(string, ...interface{})  {}
func (nopLogger) Error(string, ...interface{}) {}
func (nopLogger) Debug(string, ...interface{}) {}
func (nopLogger) Warn(string, ...interface{})  {}

// --- fakes ---

type fakeUserRepo struct {
	balance        int
	balanceUpdates int
}

func (f *fakeUserRepo) Create(ctx context.Context, u *domain.User) (*domain.User, error) {
	return u, nil
}
func (f *fakeUserRepo) Update(ctx context.Context, u *domain.User) error { return nil }
func (f *fakeUserRepo) FindByID(ctx context.Context, id uint) (*domain.User, error) {
	return &domain.User{ID: id, Username: "reader", CreditBalance: f.balance}, nil
}
func (f *fakeUserRepo) FindByUsername(ctx context.Context, username string) (*domain.User, error) {
	return nil, userrepo.ErrUserNotFound
}
func (f *fakeUserRepo) FindAll(ctx context.Context) ([]domain.User, error) { return nil, nil }
func (f *fakeUserRepo) ResetFailedAttempts(ctx context.Context, id uint) error {
	return nil
}
func (f *fakeUserRepo) GetCreditBalance(ctx context.Context, userID uint) (int, error) {
	return f.balance, nil
}
func (f *fakeUserRepo) UpdateCreditBalance(ctx context.Context, userID uint, newBalance int) error {
	f.balance = newBalance
	f.balanceUpdates++
	return nil
}

type fakeBookRepo struct {
	book domain.Book
}

func (f *fakeBookRepo) Create(ctx context.Context, b *domain.Book) (*domain.Book, error) {
	return b, nil
}
func (f *fakeBookRepo) Update(ctx context.Context, b *domain.Book) error { return nil }
func (f *fakeBookRepo) FindByID(ctx context.Context, id uint) (*domain.Book, error) {
	if id != f.book.ID {
		return nil, bookrepo.ErrBookNotFound
	}
	b := f.book
	return &b, nil
}
func (f *fakeBookRepo) FindByUserID(ctx context.Context, userID uint) ([]domain.Book, error) {
	return nil, nil
}
func (f *fakeBookRepo) UpdateStatus(ctx context.Context, id uint, status domain.BookStatus) error {
	return nil
}
func (f *fakeBookRepo) UpdateCurrentPage(ctx context.Context, id uint, page int) error {
	return nil
}
func (f *fakeBookRepo) Delete(ctx context.Context, id uint, userID uint) error { return nil }

type fakeEvidenceRepo struct {
	boundaries []domain.ChapterBoundary
	summaries  []domain.SummaryRecord
	chunks     []domain.RawChunk
}

func (f *fakeEvidenceRepo) ChapterBoundaries(ctx context.Context, bookID uint) ([]domain.ChapterBoundary, error) {
	return f.boundaries, nil
}

func (f *fakeEvidenceRepo) ChapterSummaries(ctx context.Context, bookID uint, chapterIndices []int) ([]domain.SummaryRecord, error) {
	var out []domain.SummaryRecord
	for _, s := range f.summaries {
		if s.Scope != domain.SummaryScopeChapter {
			continue
		}
		for _, idx := range chapterIndices {
			if s.ChapterIndex == idx {
				out = append(out, s)
			}
		}
	}
	return out, nil
}

func (f *fakeEvidenceRepo) PageSummaries(ctx context.Context, bookID uint, startPage, endPage int) ([]domain.SummaryRecord, error) {
	var out []domain.SummaryRecord
	for _, s := range f.summaries {
		if s.Scope == domain.SummaryScopePage && s.PageNumber >= startPage && s.PageNumber <= endPage {
			out = append(out, s)
		}
	}
	return out, nil
}

func (f *fakeEvidenceRepo) ChunksInRange(ctx context.Context, bookID uint, startPage, endPage int) ([]domain.RawChunk, error) {
	var out []domain.RawChunk
	for _, c := range f.chunks {
		if c.PageNumber >= startPage && c.PageNumber <= endPage {
			out = append(out, c)
		}
	}
	return out, nil
}

func (f *fakeEvidenceRepo) ChunksForPage(ctx context.Context, bookID uint, page, limit int) ([]domain.RawChunk, error) {
	var out []domain.RawChunk
	for _, c := range f.chunks {
		if c.PageNumber == page && len(out) < limit {
			out = append(out, c)
		}
	}
	return out, nil
}

func (f *fakeEvidenceRepo) SaveChunks(ctx context.Context, bookID uint, chunks []domain.RawChunk) error {
	return nil
}
func (f *fakeEvidenceRepo) ReplaceBoundaries(ctx context.Context, bookID uint, boundaries []domain.ChapterBoundary) error {
	return nil
}
func (f *fakeEvidenceRepo) ReplaceSummaries(ctx context.Context, bookID uint, summaries []domain.SummaryRecord) error {
	return nil
}
func (f *fakeEvidenceRepo) DeleteByBookID(ctx context.Context, bookID uint) error { return nil }

type fakeExchangeRepo struct {
	created []domain.AskExchange
}

func (f *fakeExchangeRepo) Create(ctx context.Context, ex *domain.AskExchange) (*domain.AskExchange, error) {
	f.created = append(f.created, *ex)
	return ex, nil
}
func (f *fakeExchangeRepo) FindByBookID(ctx context.Context, bookID uint, limit int) ([]domain.AskExchange, error) {
	return f.created, nil
}
func (f *fakeExchangeRepo) DeleteByBookID(ctx context.Context, bookID uint) error { return nil }

type fakeProvider struct {
	answer      string
	completions int
	streams     int
}

func (f *fakeProvider) GetCompletion(ctx context.Context, systemPrompt, userPrompt string) (string, error) {
	f.completions++
	return f.answer, nil
}

func (f *fakeProvider) StreamCompletion(ctx context.Context, systemPrompt, userPrompt string, onDelta func(string) error) error {
	f.streams++
	half := len(f.answer) / 2
	if err := onDelta(f.answer[:half]); err != nil {
		return err
	}
	return onDelta(f.answer[half:])
}

func (f *fakeProvider) HealthCheck(ctx context.Context) error { return nil }

// --- harness ---

type askFixture struct {
	service   *Service
	users     *fakeUserRepo
	exchanges *fakeExchangeRepo
	provider  *fakeProvider
}

func newAskFixture(t *testing.T, evidence *fakeEvidenceRepo) *askFixture {
	t.Helper()

	users := &fakeUserRepo{balance: 1000}
	books := &fakeBookRepo{book: domain.Book{
		ID:          7,
		UserID:      1,
		Title:       "The Lighthouse",
		TotalPages:  300,
		CurrentPage: 120,
		Status:      domain.BookStatusReady,
	}}
	exchanges := &fakeExchangeRepo{}
	provider := &fakeProvider{answer: "Mira tends the lamp (p. 5)."}

	lib, err := library.NewService(books, evidence, exchanges, t.TempDir(), nopLogger{})
	if err != nil {
		t.Fatalf("library.NewService: %v", err)
	}
	retrieval, err := contextwindow.NewService(evidence, nil, nopLogger{})
	if err != nil {
		t.Fatalf("contextwindow.NewService: %v", err)
	}
	balance := user_services.NewBalanceService(users)

	svc, err := NewService(lib, retrieval, balance, provider, exchanges, nopLogger{})
	if err != nil {
		t.Fatalf("NewService: %v", err)
	}
	return &askFixture{service: svc, users: users, exchanges: exchanges, provider: provider}
}

func seededEvidence() *fakeEvidenceRepo {
	return &fakeEvidenceRepo{
		boundaries: []domain.ChapterBoundary{
			{ChapterIndex: 0, StartPage: 1, EndPage: 150},
		},
		summaries: []domain.SummaryRecord{
			{
				Scope:      domain.SummaryScopePage,
				PageNumber: 5,
				Facts:      []string{"Mira lights the lamp at dusk."},
			},
		},
		chunks: []domain.RawChunk{
			{ID: "chunk-5-0", PageNumber: 5, IntraPageIndex: 0, RawText: "Mira climbed the lighthouse stairs."},
		},
	}
}

// --- tests ---

func TestAsk_AnswersAndCharges(t *testing.T) {
	f := newAskFixture(t, seededEvidence())

	resp, err := f.service.Ask(context.Background(), 1, Request{BookID: 7, Question: "Who is Mira?"})
	if err != nil {
		t.Fatalf("Ask: %v", err)
	}

	if resp.Refused {
		t.Fatal("in-window question should not be refused")
	}
	if resp.Answer != f.provider.answer {
		t.Errorf("Answer = %q, want provider answer", resp.Answer)
	}
	if resp.ChargedCredits != domain.MinQuestionCharge {
		t.Errorf("ChargedCredits = %d, want minimum charge %d", resp.ChargedCredits, domain.MinQuestionCharge)
	}
	if f.users.balance != 1000-domain.MinQuestionCharge {
		t.Errorf("balance = %d, want %d", f.users.balance, 1000-domain.MinQuestionCharge)
	}
	if len(resp.Citations) == 0 {
		t.Error("answered question should carry citations")
	}
	if resp.Window.Start != 1 || resp.Window.End != 120 {
		t.Errorf("Window = [%d,%d], want bookmark default [1,120]", resp.Window.Start, resp.Window.End)
	}

	if len(f.exchanges.created) != 1 {
		t.Fatalf("persisted %d exchanges, want 1", len(f.exchanges.created))
	}
	ex := f.exchanges.created[0]
	if ex.OutOfWindow || ex.Answer != f.provider.answer || ex.Citations == "" {
		t.Errorf("persisted exchange %+v, want answered turn with citations", ex)
	}
}

func TestAsk_RefusesOutOfWindowUncharged(t *testing.T) {
	f := newAskFixture(t, seededEvidence())

	resp, err := f.service.Ask(context.Background(), 1, Request{BookID: 7, Question: "What happens on page 334?"})
	if err != nil {
		t.Fatalf("Ask: %v", err)
	}

	if !resp.Refused {
		t.Fatal("expected refusal for a page beyond the bookmark")
	}
	if !strings.Contains(resp.Message, "334") || !strings.Contains(resp.Message, "120") {
		t.Errorf("refusal message %q should name the page and the window end", resp.Message)
	}
	if resp.ChargedCredits != 0 {
		t.Errorf("ChargedCredits = %d, refusal must be free", resp.ChargedCredits)
	}
	if f.users.balanceUpdates != 0 {
		t.Error("refusal must not touch the credit balance")
	}
	if f.provider.completions != 0 {
		t.Error("refusal must never reach the provider")
	}

	if len(f.exchanges.created) != 1 {
		t.Fatalf("persisted %d exchanges, want 1", len(f.exchanges.created))
	}
	ex := f.exchanges.created[0]
	if !ex.OutOfWindow || ex.Answer != "" || ex.Citations != "" {
		t.Errorf("persisted exchange %+v, want empty out-of-window turn", ex)
	}
}

func TestAsk_ExplicitInWindowPageUsesFocusedPath(t *testing.T) {
	f := newAskFixture(t, seededEvidence())

	resp, err := f.service.Ask(context.Background(), 1, Request{BookID: 7, Question: "What happens on page 5?"})
	if err != nil {
		t.Fatalf("Ask: %v", err)
	}

	if resp.Refused {
		t.Fatal("in-window explicit page should be answered")
	}
	if resp.Window.Start != 5 || resp.Window.End != 5 {
		t.Errorf("Window = [%d,%d], want the focused page [5,5]", resp.Window.Start, resp.Window.End)
	}
}

func TestAsk_InsufficientCredits(t *testing.T) {
	f := newAskFixture(t, seededEvidence())
	f.users.balance = 10

	_, err := f.service.Ask(context.Background(), 1, Request{BookID: 7, Question: "Who is Mira?"})
	if !errors.Is(err, ErrInsufficientCredits) {
		t.Fatalf("err = %v, want ErrInsufficientCredits", err)
	}
	if f.provider.completions != 0 {
		t.Error("broke client must never reach the provider")
	}
}

func TestAsk_EmptyQuestion(t *testing.T) {
	f := newAskFixture(t, seededEvidence())

	if _, err := f.service.Ask(context.Background(), 1, Request{BookID: 7, Question: "   "}); !errors.Is(err, ErrEmptyQuestion) {
		t.Fatalf("err = %v, want ErrEmptyQuestion", err)
	}
}

func TestAsk_OwnershipEnforced(t *testing.T) {
	f := newAskFixture(t, seededEvidence())

	_, err := f.service.Ask(context.Background(), 99, Request{BookID: 7, Question: "Who is Mira?"})
	if !errors.Is(err, library.ErrNotOwner) {
		t.Fatalf("err = %v, want ErrNotOwner", err)
	}
}

func TestAsk_BookWithoutEvidence(t *testing.T) {
	f := newAskFixture(t, &fakeEvidenceRepo{})

	_, err := f.service.Ask(context.Background(), 1, Request{BookID: 7, Question: "Who is Mira?"})
	if !errors.Is(err, ErrBookNotReady) {
		t.Fatalf("err = %v, want ErrBookNotReady", err)
	}
}

func TestStreamAsk_DeliversDeltasAndCharges(t *testing.T) {
	f := newAskFixture(t, seededEvidence())

	var deltas []string
	resp, err := f.service.StreamAsk(context.Background(), 1, Request{BookID: 7, Question: "Who is Mira?"}, func(delta string) error {
		deltas = append(deltas, delta)
		return nil
	})
	if err != nil {
		t.Fatalf("StreamAsk: %v", err)
	}

	if got := strings.Join(deltas, ""); got != f.provider.answer {
		t.Errorf("joined deltas = %q, want %q", got, f.provider.answer)
	}
	if resp.Answer != f.provider.answer {
		t.Errorf("final Answer = %q, want %q", resp.Answer, f.provider.answer)
	}
	if resp.ChargedCredits != domain.MinQuestionCharge {
		t.Errorf("ChargedCredits = %d, want %d", resp.ChargedCredits, domain.MinQuestionCharge)
	}
	if f.provider.streams != 1 {
		t.Errorf("streams = %d, want 1", f.provider.streams)
	}
}

func TestStreamAsk_RefusalArrivesAsOneDelta(t *testing.T) {
	f := newAskFixture(t, seededEvidence())

	var deltas []string
	resp, err := f.service.StreamAsk(context.Background(), 1, Request{BookID: 7, Question: "Tell me about page 200"}, func(delta string) error {
		deltas = append(deltas, delta)
		return nil
	})
	if err != nil {
		t.Fatalf("StreamAsk: %v", err)
	}

	if !resp.Refused {
		t.Fatal("expected refusal")
	}
	if len(deltas) != 1 || deltas[0] != resp.Message {
		t.Errorf("deltas = %v, want the refusal message in one piece", deltas)
	}
	if f.provider.streams != 0 {
		t.Error("refusal must never reach the provider")
	}
}

func TestHistory_RequiresOwnership(t *testing.T) {
	f := newAskFixture(t, seededEvidence())

	if _, err := f.service.History(context.Background(), 99, 7, 10); !errors.Is(err, library.ErrNotOwner) {
		t.Fatalf("err = %v, want ErrNotOwner", err)
	}

	f.service.Ask(context.Background(), 1, Request{BookID: 7, Question: "Who is Mira?"})
	history, err := f.service.History(context.Background(), 1, 7, 10)
	if err != nil {
		t.Fatalf("History: %v", err)
	}
	if len(history) != 1 {
		t.Errorf("history has %d turns, want 1", len(history))
	}
}
