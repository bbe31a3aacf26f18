package assistant

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"

	"github.com/study-ai/backend/internal/models"
)

type Handler struct {
	service *Service
}

func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

func (h *Handler) Chat(w http.ResponseWriter, r *http.Request) {
	var req models.ChatRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, models.ErrorResponse{Error: "Invalid request body"})
		return
	}

	reply, err := h.service.Reply(r.Context(), req.Message)
	if errors.Is(err, ErrEmptyMessage) {
		writeJSON(w, http.StatusBadRequest, models.ErrorResponse{Error: "Message is required."})
		return
	}
	if err != nil {
		log.Printf("[assistant] WARNING: chat failed: %v", err)
		writeJSON(w, http.StatusInternalServerError, models.ErrorResponse{Error: "Failed to get assistant response.", Details: err.Error()})
		return
	}

	writeJSON(w, http.StatusOK, models.ChatResponse{Response: reply})
}

func writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}
