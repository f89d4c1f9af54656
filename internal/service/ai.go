package service

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/dmcervs/donatec/internal/apperror"
)

// MaxImprovedDescriptionLength caps the helper's output. Whatever the
// model returns beyond this is cut.
const MaxImprovedDescriptionLength = 500

const geminiEndpoint = "https://generativelanguage.googleapis.com/v1beta/models/gemini-1.5-flash:generateContent"

// AIService rewrites donation descriptions through Google's Gemini
// generateContent REST API. Unlike email, provider failures here surface
// to the caller; the endpoint's whole value is the provider's answer.
type AIService struct {
	apiKey   string
	endpoint string
	client   *http.Client
	logger   *slog.Logger
}

// NewAIService creates an AIService. An empty apiKey leaves the endpoint
// answering with a dependency error instead of crashing the server.
func NewAIService(apiKey string, logger *slog.Logger) *AIService {
	return &AIService{
		apiKey:   apiKey,
		endpoint: geminiEndpoint,
		client:   &http.Client{Timeout: 20 * time.Second},
		logger:   logger,
	}
}

// Request/response shapes for generateContent. Only the fields we touch.
type geminiRequest struct {
	Contents []geminiContent `json:"contents"`
}

type geminiContent struct {
	Parts []geminiPart `json:"parts"`
}

type geminiPart struct {
	Text string `json:"text"`
}

type geminiResponse struct {
	Candidates []struct {
		Content geminiContent `json:"content"`
	} `json:"candidates"`
	Error struct {
		Code    int    `json:"code"`
		Status  string `json:"status"`
		Message string `json:"message"`
	} `json:"error"`
}

// ImproveDescription asks the model for a clearer, more appealing version
// of a donation description. Invalid-key and quota conditions map to
// distinguishable dependency errors; the raw provider message is logged,
// never surfaced.
func (s *AIService) ImproveDescription(ctx context.Context, description, category, title string) (string, error) {
	description = strings.TrimSpace(description)
	if description == "" {
		return "", apperror.ValidationFailed("descripcion", "la descripción es obligatoria")
	}
	if s.apiKey == "" {
		return "", apperror.Dependency("el asistente de descripciones no está configurado")
	}

	prompt := fmt.Sprintf(
		"Mejora la siguiente descripción de una donación universitaria llamada %q"+
			" (categoría: %s). Redáctala en español, clara y atractiva, en máximo %d"+
			" caracteres, sin inventar datos:\n\n%s",
		title, category, MaxImprovedDescriptionLength, description,
	)

	body, err := json.Marshal(geminiRequest{
		Contents: []geminiContent{{Parts: []geminiPart{{Text: prompt}}}},
	})
	if err != nil {
		return "", fmt.Errorf("service/ai: encoding request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.endpoint+"?key="+s.apiKey, bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("service/ai: building request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.client.Do(req)
	if err != nil {
		return "", apperror.Dependency("el proveedor de texto no está disponible")
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		// The error body is decoded best-effort: gateways in front of
		// the provider may answer with HTML instead of JSON.
		var out geminiResponse
		_ = json.NewDecoder(resp.Body).Decode(&out)

		s.logger.Error("gemini request failed",
			slog.Int("status", resp.StatusCode),
			slog.String("providerStatus", out.Error.Status),
			slog.String("providerMessage", out.Error.Message),
		)
		switch resp.StatusCode {
		case http.StatusUnauthorized, http.StatusForbidden:
			return "", apperror.Dependency("la clave del proveedor de texto es inválida")
		case http.StatusTooManyRequests:
			return "", apperror.Dependency("se agotó la cuota del proveedor de texto")
		default:
			return "", apperror.Dependency("el proveedor de texto devolvió un error")
		}
	}

	var out geminiResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return "", fmt.Errorf("service/ai: decoding response: %w", err)
	}

	if len(out.Candidates) == 0 || len(out.Candidates[0].Content.Parts) == 0 {
		return "", apperror.Dependency("el proveedor de texto no devolvió contenido")
	}

	improved := strings.TrimSpace(out.Candidates[0].Content.Parts[0].Text)
	if runes := []rune(improved); len(runes) > MaxImprovedDescriptionLength {
		improved = string(runes[:MaxImprovedDescriptionLength])
	}

	return improved, nil
}
