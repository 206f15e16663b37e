// File: internal/handlers/tracker_handler.go
package handlers

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/AndrewJLe/TaleLeaf-sub001/internal/domain"
	"github.com/AndrewJLe/TaleLeaf-sub001/internal/services/markdown"
	"github.com/AndrewJLe/TaleLeaf-sub001/internal/services/tracker"
)

// TrackerHandler exposes the per-book reader trackers.
type TrackerHandler struct {
	Tracker  *tracker.Service
	Markdown *markdown.Renderer
}

func NewTrackerHandler(svc *tracker.Service, md *markdown.Renderer) *TrackerHandler {
	return &TrackerHandler{Tracker: svc, Markdown: md}
}

// --- Characters ---

func (h *TrackerHandler) ListCharacters(w http.ResponseWriter, r *http.Request) {
	userID, bookID, ok := h.bookScope(w, r)
	if !ok {
		return
	}
	characters, err := h.Tracker.ListCharacters(r.Context(), userID, bookID)
	if err != nil {
		writeBookError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, characters)
}

func (h *TrackerHandler) CreateCharacter(w http.ResponseWriter, r *http.Request) {
	userID, bookID, ok := h.bookScope(w, r)
	if !ok {
		return
	}
	var character domain.Character
	if err := json.NewDecoder(r.Body).Decode(&character); err != nil {
		writeError(w, "Invalid request body", http.StatusBadRequest)
		return
	}
	character.ID = 0
	character.BookID = bookID

	created, err := h.Tracker.CreateCharacter(r.Context(), userID, &character)
	if err != nil {
		writeBookError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, created)
}

func (h *TrackerHandler) UpdateCharacter(w http.ResponseWriter, r *http.Request) {
	userID, bookID, ok := h.bookScope(w, r)
	if !ok {
		return
	}
	characterID, ok := pathID(r, "characterID")
	if !ok {
		writeError(w, "Invalid character ID", http.StatusBadRequest)
		return
	}
	var character domain.Character
	if err := json.NewDecoder(r.Body).Decode(&character); err != nil {
		writeError(w, "Invalid request body", http.StatusBadRequest)
		return
	}
	character.ID = characterID
	character.BookID = bookID

	if err := h.Tracker.UpdateCharacter(r.Context(), userID, &character); err != nil {
		writeBookError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, character)
}

func (h *TrackerHandler) DeleteCharacter(w http.ResponseWriter, r *http.Request) {
	userID, bookID, ok := h.bookScope(w, r)
	if !ok {
		return
	}
	characterID, ok := pathID(r, "characterID")
	if !ok {
		writeError(w, "Invalid character ID", http.StatusBadRequest)
		return
	}
	if err := h.Tracker.DeleteCharacter(r.Context(), userID, bookID, characterID); err != nil {
		writeBookError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// --- Locations ---

func (h *TrackerHandler) ListLocations(w http.ResponseWriter, r *http.Request) {
	userID, bookID, ok := h.bookScope(w, r)
	if !ok {
		return
	}
	locations, err := h.Tracker.ListLocations(r.Context(), userID, bookID)
	if err != nil {
		writeBookError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, locations)
}

func (h *TrackerHandler) CreateLocation(w http.ResponseWriter, r *http.Request) {
	userID, bookID, ok := h.bookScope(w, r)
	if !ok {
		return
	}
	var location domain.Location
	if err := json.NewDecoder(r.Body).Decode(&location); err != nil {
		writeError(w, "Invalid request body", http.StatusBadRequest)
		return
	}
	location.ID = 0
	location.BookID = bookID

	created, err := h.Tracker.CreateLocation(r.Context(), userID, &location)
	if err != nil {
		writeBookError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, created)
}

func (h *TrackerHandler) UpdateLocation(w http.ResponseWriter, r *http.Request) {
	userID, bookID, ok := h.bookScope(w, r)
	if !ok {
		return
	}
	locationID, ok := pathID(r, "locationID")
	if !ok {
		writeError(w, "Invalid location ID", http.StatusBadRequest)
		return
	}
	var location domain.Location
	if err := json.NewDecoder(r.Body).Decode(&location); err != nil {
		writeError(w, "Invalid request body", http.StatusBadRequest)
		return
	}
	location.ID = locationID
	location.BookID = bookID

	if err := h.Tracker.UpdateLocation(r.Context(), userID, &location); err != nil {
		writeBookError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, location)
}

func (h *TrackerHandler) DeleteLocation(w http.ResponseWriter, r *http.Request) {
	userID, bookID, ok := h.bookScope(w, r)
	if !ok {
		return
	}
	locationID, ok := pathID(r, "locationID")
	if !ok {
		writeError(w, "Invalid location ID", http.StatusBadRequest)
		return
	}
	if err := h.Tracker.DeleteLocation(r.Context(), userID, bookID, locationID); err != nil {
		writeBookError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// --- Chapters ---

func (h *TrackerHandler) ListChapters(w http.ResponseWriter, r *http.Request) {
	userID, bookID, ok := h.bookScope(w, r)
	if !ok {
		return
	}
	chapters, err := h.Tracker.ListChapters(r.Context(), userID, bookID)
	if err != nil {
		writeBookError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, chapters)
}

func (h *TrackerHandler) CreateChapter(w http.ResponseWriter, r *http.Request) {
	userID, bookID, ok := h.bookScope(w, r)
	if !ok {
		return
	}
	var chapter domain.Chapter
	if err := json.NewDecoder(r.Body).Decode(&chapter); err != nil {
		writeError(w, "Invalid request body", http.StatusBadRequest)
		return
	}
	chapter.ID = 0
	chapter.BookID = bookID

	created, err := h.Tracker.CreateChapter(r.Context(), userID, &chapter)
	if err != nil {
		writeBookError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, created)
}

func (h *TrackerHandler) UpdateChapter(w http.ResponseWriter, r *http.Request) {
	userID, bookID, ok := h.bookScope(w, r)
	if !ok {
		return
	}
	chapterID, ok := pathID(r, "chapterID")
	if !ok {
		writeError(w, "Invalid chapter ID", http.StatusBadRequest)
		return
	}
	var chapter domain.Chapter
	if err := json.NewDecoder(r.Body).Decode(&chapter); err != nil {
		writeError(w, "Invalid request body", http.StatusBadRequest)
		return
	}
	chapter.ID = chapterID
	chapter.BookID = bookID

	if err := h.Tracker.UpdateChapter(r.Context(), userID, &chapter); err != nil {
		writeBookError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, chapter)
}

func (h *TrackerHandler) DeleteChapter(w http.ResponseWriter, r *http.Request) {
	userID, bookID, ok := h.bookScope(w, r)
	if !ok {
		return
	}
	chapterID, ok := pathID(r, "chapterID")
	if !ok {
		writeError(w, "Invalid chapter ID", http.StatusBadRequest)
		return
	}
	if err := h.Tracker.DeleteChapter(r.Context(), userID, bookID, chapterID); err != nil {
		writeBookError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// --- Notes ---

// ListNotes returns a book's notes, optionally filtered by ?page=N,
// with content rendered to HTML alongside the raw markdown.
func (h *TrackerHandler) ListNotes(w http.ResponseWriter, r *http.Request) {
	userID, bookID, ok := h.bookScope(w, r)
	if !ok {
		return
	}
	page := 0
	if raw := r.URL.Query().Get("page"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 1 {
			writeError(w, "Invalid page filter", http.StatusBadRequest)
			return
		}
		page = parsed
	}

	notes, err := h.Tracker.ListNotes(r.Context(), userID, bookID, page)
	if err != nil {
		writeBookError(w, err)
		return
	}

	type renderedNote struct {
		domain.Note
		HTML string `json:"html"`
	}
	rendered := make([]renderedNote, 0, len(notes))
	for _, n := range notes {
		html, err := h.Markdown.Render(n.Content)
		if err != nil {
			writeError(w, "Could not render note", http.StatusInternalServerError)
			return
		}
		rendered = append(rendered, renderedNote{Note: n, HTML: html})
	}
	writeJSON(w, http.StatusOK, rendered)
}

func (h *TrackerHandler) CreateNote(w http.ResponseWriter, r *http.Request) {
	userID, bookID, ok := h.bookScope(w, r)
	if !ok {
		return
	}
	var note domain.Note
	if err := json.NewDecoder(r.Body).Decode(&note); err != nil {
		writeError(w, "Invalid request body", http.StatusBadRequest)
		return
	}
	note.ID = 0
	note.BookID = bookID

	created, err := h.Tracker.CreateNote(r.Context(), userID, &note)
	if err != nil {
		writeBookError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, created)
}

func (h *TrackerHandler) UpdateNote(w http.ResponseWriter, r *http.Request) {
	userID, bookID, ok := h.bookScope(w, r)
	if !ok {
		return
	}
	noteID, ok := pathID(r, "noteID")
	if !ok {
		writeError(w, "Invalid note ID", http.StatusBadRequest)
		return
	}
	var note domain.Note
	if err := json.NewDecoder(r.Body).Decode(&note); err != nil {
		writeError(w, "Invalid request body", http.StatusBadRequest)
		return
	}
	note.ID = noteID
	note.BookID = bookID

	if err := h.Tracker.UpdateNote(r.Context(), userID, &note); err != nil {
		writeBookError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, note)
}

func (h *TrackerHandler) DeleteNote(w http.ResponseWriter, r *http.Request) {
	userID, bookID, ok := h.bookScope(w, r)
	if !ok {
		return
	}
	noteID, ok := pathID(r, "noteID")
	if !ok {
		writeError(w, "Invalid note ID", http.StatusBadRequest)
		return
	}
	if err := h.Tracker.DeleteNote(r.Context(), userID, bookID, noteID); err != nil {
		writeBookError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// bookScope resolves the authenticated user and the {id} book path var.
func (h *TrackerHandler) bookScope(w http.ResponseWriter, r *http.Request) (userID, bookID uint, ok bool) {
	userID, ok = requireUserID(w, r)
	if !ok {
		return 0, 0, false
	}
	bookID, ok = pathID(r, "id")
	if !ok {
		writeError(w, "Invalid book ID", http.StatusBadRequest)
		return 0, 0, false
	}
	return userID, bookID, true
}
