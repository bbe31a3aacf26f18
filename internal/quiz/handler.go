package quiz

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/study-ai/backend/internal/config"
	"github.com/study-ai/backend/internal/models"
)

// ModelLister reports the models the configured provider offers.
type ModelLister interface {
	ListModels(ctx context.Context) ([]string, error)
}

type Handler struct {
	service *Service
	gateway config.GatewayConfig
	lister  ModelLister
}

// NewHandler wires the AI routes. lister may be nil when the gateway could
// not be built at startup.
func NewHandler(service *Service, gw config.GatewayConfig, lister ModelLister) *Handler {
	return &Handler{service: service, gateway: gw, lister: lister}
}

func (h *Handler) GenerateQuiz(w http.ResponseWriter, r *http.Request) {
	var req models.GenerateQuizRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, models.ErrorResponse{Error: "Invalid request body"})
		return
	}

	count := DefaultCount
	if req.Count != nil {
		if *req.Count < 1 {
			writeJSON(w, http.StatusBadRequest, models.ErrorResponse{Error: "Count must be at least 1."})
			return
		}
		count = *req.Count
	}

	questions, err := h.service.GenerateQuiz(r.Context(), Request{Topic: req.Topic, Level: req.Level, Count: count})
	if err != nil {
		writeError(w, err)
		return
	}

	quiz := make([]models.RawQuizItem, len(questions))
	for i, q := range questions {
		quiz[i] = q.Raw()
	}
	writeJSON(w, http.StatusOK, models.GenerateQuizResponse{Quiz: quiz})
}

func (h *Handler) Usage(w http.ResponseWriter, r *http.Request) {
	if h.lister == nil {
		writeJSON(w, http.StatusInternalServerError, models.ErrorResponse{Error: "Failed to check API usage", Details: "AI gateway is not configured"})
		return
	}

	names, err := h.lister.ListModels(r.Context())
	if err != nil {
		writeJSON(w, http.StatusOK, map[string]interface{}{
			"success": false,
			"error":   err.Error(),
		})
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"success":   true,
		"provider":  h.gateway.Provider,
		"models":    names,
		"quotaInfo": "Check the provider console for detailed quota information",
	})
}

func (h *Handler) AnalyzeImage(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"success": true,
		"message": "Image analysis endpoint is available",
		"note":    "Actual image analysis functionality is not implemented",
	})
}

func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"success":   true,
		"message":   "AI routes are healthy",
		"timestamp": time.Now().UTC().Format(time.RFC3339),
		"availableEndpoints": []string{
			"POST /api/v1/ai/generate-quiz - Generate quiz questions",
			"POST /api/v1/ai/chat - Chat with AI assistant",
			"GET /api/v1/ai/usage - Check API usage",
			"POST /api/v1/ai/analyze-image - Analyze images",
		},
	})
}

func (h *Handler) Diagnostics(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"success":      true,
		"provider":     h.gateway.Provider,
		"models":       h.gateway.Models,
		"apiKeySet":    h.gateway.APIKey != "",
		"apiKeyPrefix": h.gateway.MaskedKey(),
		"timestamp":    time.Now().UTC().Format(time.RFC3339),
	})
}

func writeError(w http.ResponseWriter, err error) {
	qErr := classify(err)
	writeJSON(w, qErr.HTTPStatus(), models.ErrorResponse{
		Error:       qErr.Message,
		Details:     qErr.Details,
		RawResponse: qErr.RawResponse,
	})
}

func writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}
