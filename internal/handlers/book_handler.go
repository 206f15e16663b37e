// File: internal/handlers/book_handler.go
package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/AndrewJLe/TaleLeaf-sub001/internal/domain"
	bookrepo "github.com/AndrewJLe/TaleLeaf-sub001/internal/repository/book"
	"github.com/AndrewJLe/TaleLeaf-sub001/internal/services/library"
)

// maxUploadBytes caps uploads at 50 MB.
const maxUploadBytes = 50 << 20

// BookHandler exposes the shelf: uploads, progress, and the ingest
// endpoint for preprocessing output.
type BookHandler struct {
	Library *library.Service
}

func NewBookHandler(lib *library.Service) *BookHandler {
	return &BookHandler{Library: lib}
}

// ListBooks returns the caller's shelf.
func (h *BookHandler) ListBooks(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUserID(w, r)
	if !ok {
		return
	}

	books, err := h.Library.ListBooks(r.Context(), userID)
	if err != nil {
		writeError(w, "Could not retrieve books", http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, books)
}

// GetBook returns one book the caller owns.
func (h *BookHandler) GetBook(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUserID(w, r)
	if !ok {
		return
	}
	bookID, ok := pathID(r, "id")
	if !ok {
		writeError(w, "Invalid book ID", http.StatusBadRequest)
		return
	}

	book, err := h.Library.GetBookForUser(r.Context(), userID, bookID)
	if err != nil {
		writeBookError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, book)
}

// UploadBook accepts a multipart upload with title, author, and file.
func (h *BookHandler) UploadBook(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUserID(w, r)
	if !ok {
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, maxUploadBytes)
	if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
		writeError(w, "Invalid or oversized upload", http.StatusBadRequest)
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		writeError(w, "A file is required", http.StatusBadRequest)
		return
	}
	defer file.Close()

	book, err := h.Library.CreateBookFromUpload(r.Context(), userID,
		r.FormValue("title"), r.FormValue("author"), header.Filename, file)
	if err != nil {
		switch {
		case errors.Is(err, library.ErrUnsupportedFormat):
			writeError(w, "Only PDF and plain text uploads are supported", http.StatusUnsupportedMediaType)
		case errors.Is(err, library.ErrEmptyUpload):
			writeError(w, "Uploaded file is empty", http.StatusBadRequest)
		default:
			writeError(w, err.Error(), http.StatusBadRequest)
		}
		return
	}

	writeJSON(w, http.StatusCreated, book)
}

// UpdateProgress moves the reader's bookmark.
func (h *BookHandler) UpdateProgress(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUserID(w, r)
	if !ok {
		return
	}
	bookID, ok := pathID(r, "id")
	if !ok {
		writeError(w, "Invalid book ID", http.StatusBadRequest)
		return
	}

	var req struct {
		Page int `json:"page"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	book, err := h.Library.UpdateProgress(r.Context(), userID, bookID, req.Page)
	if err != nil {
		writeBookError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, book)
}

// DeleteBook removes a book, its evidence, and its ask history.
func (h *BookHandler) DeleteBook(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUserID(w, r)
	if !ok {
		return
	}
	bookID, ok := pathID(r, "id")
	if !ok {
		writeError(w, "Invalid book ID", http.StatusBadRequest)
		return
	}

	if err := h.Library.DeleteBook(r.Context(), userID, bookID); err != nil {
		writeBookError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

type ingestRequest struct {
	Boundaries []domain.ChapterBoundary `json:"boundaries"`
	Summaries  []domain.SummaryRecord   `json:"summaries"`
	Chunks     []domain.RawChunk        `json:"chunks,omitempty"`
}

// IngestEvidence accepts preprocessing output for a book and flips it
// to ready.
func (h *BookHandler) IngestEvidence(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUserID(w, r)
	if !ok {
		return
	}
	bookID, ok := pathID(r, "id")
	if !ok {
		writeError(w, "Invalid book ID", http.StatusBadRequest)
		return
	}

	var req ingestRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, "Invalid request body", http.StatusBadRequest)
		return
	}
	if len(req.Boundaries) == 0 {
		writeError(w, "At least one chapter boundary is required", http.StatusBadRequest)
		return
	}

	err := h.Library.IngestEvidence(r.Context(), userID, bookID, req.Boundaries, req.Summaries, req.Chunks)
	if err != nil {
		writeBookError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": string(domain.BookStatusReady)})
}

// writeBookError maps library errors onto HTTP statuses.
func writeBookError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, bookrepo.ErrBookNotFound):
		writeError(w, "Book not found", http.StatusNotFound)
	case errors.Is(err, library.ErrNotOwner):
		writeError(w, "Forbidden", http.StatusForbidden)
	default:
		writeError(w, err.Error(), http.StatusBadRequest)
	}
}
