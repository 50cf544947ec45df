package handler

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/waxlog/waxlog/internal/handler/dto"
)

// AIClient generates text for discovery and review assistance. Implementations
// proxy an external model API.
type AIClient interface {
	Discover(ctx context.Context, prompt string) (string, error)
	AlbumInsight(ctx context.Context, artist, title string) (string, error)
	PolishReview(ctx context.Context, text string) (string, error)
}

// AIHandler handles AI-assisted endpoints. All responses degrade gracefully:
// when the backend is unconfigured or failing, Available is false.
type AIHandler struct {
	logger *slog.Logger
	client AIClient
}

// NewAIHandler creates a new AIHandler. client may be nil when no AI backend
// is configured.
func NewAIHandler(logger *slog.Logger, client AIClient) *AIHandler {
	return &AIHandler{logger: logger, client: client}
}

// Discover answers a free-form music discovery prompt.
// POST /api/v1/ai/discover
func (h *AIHandler) Discover(w http.ResponseWriter, r *http.Request) {
	var req dto.DiscoveryRequest
	if !decodeValid(w, r, &req) {
		return
	}

	h.respond(w, r, func(ctx context.Context) (string, error) {
		return h.client.Discover(ctx, req.Prompt)
	})
}

// AlbumInsight generates background notes for an album.
// POST /api/v1/ai/album-insight
func (h *AIHandler) AlbumInsight(w http.ResponseWriter, r *http.Request) {
	var req dto.AlbumInsightRequest
	if !decodeValid(w, r, &req) {
		return
	}

	h.respond(w, r, func(ctx context.Context) (string, error) {
		return h.client.AlbumInsight(ctx, req.Artist, req.Title)
	})
}

// PolishReview rewrites a review draft for clarity.
// POST /api/v1/ai/polish-review
func (h *AIHandler) PolishReview(w http.ResponseWriter, r *http.Request) {
	var req dto.PolishReviewRequest
	if !decodeValid(w, r, &req) {
		return
	}

	h.respond(w, r, func(ctx context.Context) (string, error) {
		return h.client.PolishReview(ctx, req.Text)
	})
}

func (h *AIHandler) respond(w http.ResponseWriter, r *http.Request, generate func(context.Context) (string, error)) {
	if h.client == nil {
		writeJSON(w, http.StatusOK, dto.AIResponse{Available: false})
		return
	}

	text, err := generate(r.Context())
	if err != nil {
		h.logger.Warn("ai generation failed", slog.String("error", err.Error()))
		writeJSON(w, http.StatusOK, dto.AIResponse{Available: false})
		return
	}
	writeJSON(w, http.StatusOK, dto.AIResponse{Text: text, Available: true})
}
