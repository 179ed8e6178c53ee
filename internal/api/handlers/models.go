package handlers

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/wonny/stocklens/pkg/logger"
)

// ModelLister lists generative models supporting content generation.
type ModelLister interface {
	ListModels(ctx context.Context, apiKey string) ([]string, error)
}

// ModelsHandler handles the model-listing endpoint
type ModelsHandler struct {
	lister ModelLister
	logger *logger.Logger
}

// NewModelsHandler creates a new models handler
func NewModelsHandler(lister ModelLister, log *logger.Logger) *ModelsHandler {
	return &ModelsHandler{
		lister: lister,
		logger: log,
	}
}

// List returns the generative models available for the supplied key.
// GET /models
func (h *ModelsHandler) List(w http.ResponseWriter, r *http.Request) {
	apiKey := r.Header.Get("X-Gemini-Key")
	if apiKey == "" {
		respondJSON(w, http.StatusOK, map[string]string{"error": "missing API key"})
		return
	}

	models, err := h.lister.ListModels(r.Context(), apiKey)
	if err != nil {
		h.logger.WithError(err).Warn("Model listing failed")
		respondJSON(w, http.StatusOK, map[string]string{"error": err.Error()})
		return
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{"models": models})
}

// respondJSON writes data as a JSON response
func respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}
