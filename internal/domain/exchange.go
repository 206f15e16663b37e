// File: internal/domain/exchange.go
package domain

import "time"

// Exchange roles.
const (
	ExchangeRoleUser      = "user"
	ExchangeRoleAssistant = "assistant"
)

// AskExchange is one persisted question/answer turn against a book.
// WindowStart/WindowEnd record the reading window the answer was
// constrained to; Citations is the JSON-encoded citation list from the
// retrieval engine. OutOfWindow marks the deterministic refusal path,
// which produces no citations and costs no credits.
type AskExchange struct {
	ID     uint `json:"id" gorm:"primarykey"`
	BookID uint `json:"book_id" gorm:"index;not null"`

	Question    string `json:"question" gorm:"not null"`
	Answer      string `json:"answer"`
	WindowStart int    `json:"window_start"`
	WindowEnd   int    `json:"window_end"`
	OutOfWindow bool   `json:"out_of_window" gorm:"default:false"`
	Citations   string `json:"citations"`

	CreatedAt time.Time `json:"created_at"`
}
