package handler

import (
	"log/slog"
	"net/http"

	"github.com/dmcervs/donatec/internal/service"
)

// AIHandler serves the description helper endpoint.
type AIHandler struct {
	ai     *service.AIService
	logger *slog.Logger
}

func NewAIHandler(ai *service.AIService, logger *slog.Logger) *AIHandler {
	return &AIHandler{ai: ai, logger: logger}
}

// HandleImproveDescription rewrites a draft donation description.
//
// POST /ai/improve-description, JSON {descripcion, categoria, nombre}
func (h *AIHandler) HandleImproveDescription(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Description string `json:"descripcion"`
		Category    string `json:"categoria"`
		Title       string `json:"nombre"`
	}
	if err := decodeJSON(r, &body); err != nil {
		writeError(w, err)
		return
	}

	improved, err := h.ai.ImproveDescription(r.Context(), body.Description, body.Category, body.Title)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"improvedDescription": improved})
}
