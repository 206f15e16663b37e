// File: internal/handlers/admin_handler.go
package handlers

import (
	"encoding/json"
	"net/http"

	userrepo "github.com/AndrewJLe/TaleLeaf-sub001/internal/repository/user"
	"github.com/AndrewJLe/TaleLeaf-sub001/internal/services/user_services"
)

// AdminHandler exposes the small admin surface: user listing and
// credit top-ups.
type AdminHandler struct {
	Users   userrepo.UserRepository
	Balance *user_services.BalanceService
}

func NewAdminHandler(users userrepo.UserRepository, balance *user_services.BalanceService) *AdminHandler {
	return &AdminHandler{Users: users, Balance: balance}
}

// ListUsers returns every account with its balances.
func (h *AdminHandler) ListUsers(w http.ResponseWriter, r *http.Request) {
	users, err := h.Users.FindAll(r.Context())
	if err != nil {
		writeError(w, "Could not retrieve users", http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, users)
}

// AddCredits tops up a user's balance.
func (h *AdminHandler) AddCredits(w http.ResponseWriter, r *http.Request) {
	targetID, ok := pathID(r, "id")
	if !ok {
		writeError(w, "Invalid user ID", http.StatusBadRequest)
		return
	}

	var req struct {
		Amount int `json:"amount"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Amount <= 0 {
		writeError(w, "A positive amount is required", http.StatusBadRequest)
		return
	}

	if err := h.Balance.AddCredits(r.Context(), targetID, req.Amount); err != nil {
		writeError(w, err.Error(), http.StatusBadRequest)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"user_id": targetID,
		"added":   req.Amount,
	})
}
