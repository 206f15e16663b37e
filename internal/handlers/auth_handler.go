// File: internal/handlers/auth_handler.go
package handlers

import (
	"encoding/json"
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/AndrewJLe/TaleLeaf-sub001/internal/middleware"
	"github.com/AndrewJLe/TaleLeaf-sub001/internal/services/user_services"
)

// AuthHandler holds the dependencies for authentication handlers.
type AuthHandler struct {
	AuthService    *user_services.AuthService
	BalanceService *user_services.BalanceService
}

func NewAuthHandler(authService *user_services.AuthService, balanceService *user_services.BalanceService) *AuthHandler {
	return &AuthHandler{AuthService: authService, BalanceService: balanceService}
}

type credentialsRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// Register handles new user registrations.
func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req credentialsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	user, err := h.AuthService.Register(r.Context(), strings.TrimSpace(req.Username), req.Password)
	if err != nil {
		log.Printf("Registration error: %v", err)
		writeError(w, err.Error(), http.StatusBadRequest)
		return
	}

	writeJSON(w, http.StatusCreated, user)
}

// Login validates credentials and sets the session cookie.
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req credentialsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	user, token, err := h.AuthService.Login(r.Context(), strings.TrimSpace(req.Username), req.Password)
	if err != nil {
		log.Printf("Login error: %v", err)
		writeError(w, "Invalid username or password.", http.StatusUnauthorized)
		return
	}

	http.SetCookie(w, &http.Cookie{
		Name:     middleware.AuthCookieName,
		Value:    token,
		Expires:  time.Now().Add(7 * 24 * time.Hour),
		HttpOnly: true,
		Secure:   true,
		Path:     "/",
		SameSite: http.SameSiteLaxMode,
	})
	writeJSON(w, http.StatusOK, user)
}

// Logout clears the session cookie.
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	http.SetCookie(w, &http.Cookie{
		Name:     middleware.AuthCookieName,
		Value:    "",
		Expires:  time.Unix(0, 0),
		HttpOnly: true,
		Secure:   true,
		Path:     "/",
		SameSite: http.SameSiteLaxMode,
	})
	w.WriteHeader(http.StatusNoContent)
}

// Me returns the caller's credit balances.
func (h *AuthHandler) Me(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUserID(w, r)
	if !ok {
		return
	}

	current, total, err := h.BalanceService.GetUserBalanceInfo(r.Context(), userID)
	if err != nil {
		writeError(w, "Could not retrieve balance", http.StatusInternalServerError)
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"user_id":              userID,
		"credit_balance":       current,
		"total_credit_balance": total,
	})
}
