// File: internal/handlers/health_handler.go
package handlers

import (
	"net/http"

	"github.com/AndrewJLe/TaleLeaf-sub001/internal/services/ai"
)

// HealthHandler reports service and provider status.
type HealthHandler struct {
	Provider ai.Provider
}

func NewHealthHandler(provider ai.Provider) *HealthHandler {
	return &HealthHandler{Provider: provider}
}

func (h *HealthHandler) Health(w http.ResponseWriter, r *http.Request) {
	status := h.Provider.GetStatus(r.Context())
	code := http.StatusOK
	if !status.IsHealthy {
		code = http.StatusServiceUnavailable
	}
	writeJSON(w, code, map[string]interface{}{
		"status":   "ok",
		"provider": status.Message,
	})
}
