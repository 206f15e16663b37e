// File: internal/handlers/ask_handler.go
package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/AndrewJLe/TaleLeaf-sub001/internal/services/ask"
	"github.com/AndrewJLe/TaleLeaf-sub001/internal/services/contextwindow"
	"github.com/AndrewJLe/TaleLeaf-sub001/internal/services/markdown"
)

// AskHandler exposes the spoiler-safe question endpoints.
type AskHandler struct {
	Ask      *ask.Service
	Markdown *markdown.Renderer
}

func NewAskHandler(svc *ask.Service, md *markdown.Renderer) *AskHandler {
	return &AskHandler{Ask: svc, Markdown: md}
}

type askRequest struct {
	Question string                         `json:"question"`
	Window   *contextwindow.WindowSelection `json:"window,omitempty"`
}

// AskQuestion answers a question within the reader's window.
func (h *AskHandler) AskQuestion(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUserID(w, r)
	if !ok {
		return
	}
	bookID, ok := pathID(r, "id")
	if !ok {
		writeError(w, "Invalid book ID", http.StatusBadRequest)
		return
	}

	var req askRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	resp, err := h.Ask.Ask(r.Context(), userID, ask.Request{
		BookID:   bookID,
		Question: req.Question,
		Window:   req.Window,
	})
	if err != nil {
		writeAskError(w, err)
		return
	}

	if resp.Answer != "" {
		if html, err := h.Markdown.Render(resp.Answer); err == nil {
			writeJSON(w, http.StatusOK, struct {
				*ask.Response
				HTML string `json:"html"`
			}{resp, html})
			return
		}
	}
	writeJSON(w, http.StatusOK, resp)
}

// StreamQuestion answers over server-sent events: delta events while
// the answer streams, then one final done event with citations.
func (h *AskHandler) StreamQuestion(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUserID(w, r)
	if !ok {
		return
	}
	bookID, ok := pathID(r, "id")
	if !ok {
		writeError(w, "Invalid book ID", http.StatusBadRequest)
		return
	}

	var req askRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	flusher, ok := w.(http.Flusher)
	if !ok {
		writeError(w, "Streaming not supported", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")

	resp, err := h.Ask.StreamAsk(r.Context(), userID, ask.Request{
		BookID:   bookID,
		Question: req.Question,
		Window:   req.Window,
	}, func(delta string) error {
		payload, err := json.Marshal(map[string]string{"delta": delta})
		if err != nil {
			return err
		}
		fmt.Fprintf(w, "data: %s\n\n", payload)
		flusher.Flush()
		return nil
	})
	if err != nil {
		payload, _ := json.Marshal(map[string]string{"error": askErrorMessage(err)})
		fmt.Fprintf(w, "event: error\ndata: %s\n\n", payload)
		flusher.Flush()
		return
	}

	final, _ := json.Marshal(resp)
	fmt.Fprintf(w, "event: done\ndata: %s\n\n", final)
	flusher.Flush()
}

// History returns recent exchanges for a book.
func (h *AskHandler) History(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUserID(w, r)
	if !ok {
		return
	}
	bookID, ok := pathID(r, "id")
	if !ok {
		writeError(w, "Invalid book ID", http.StatusBadRequest)
		return
	}

	exchanges, err := h.Ask.History(r.Context(), userID, bookID, 50)
	if err != nil {
		writeBookError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, exchanges)
}

func writeAskError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, ask.ErrEmptyQuestion):
		writeError(w, "A question is required", http.StatusBadRequest)
	case errors.Is(err, ask.ErrInsufficientCredits):
		writeError(w, "Insufficient credits", http.StatusPaymentRequired)
	case errors.Is(err, ask.ErrBookNotReady):
		writeError(w, "This book has no reading evidence yet. Ingest summaries first.", http.StatusConflict)
	default:
		writeBookError(w, err)
	}
}

func askErrorMessage(err error) string {
	switch {
	case errors.Is(err, ask.ErrInsufficientCredits):
		return "Insufficient credits"
	case errors.Is(err, ask.ErrBookNotReady):
		return "This book has no reading evidence yet"
	default:
		return err.Error()
	}
}
