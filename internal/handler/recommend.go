package handler

import (
	"log/slog"
	"net/http"

	"github.com/nadira/healthdash/internal/auth"
	"github.com/nadira/healthdash/internal/recommend"
	"github.com/nadira/healthdash/internal/service"
)

// RecommendHandler exposes the lifestyle advice endpoint.
type RecommendHandler struct {
	recommendations *service.RecommendationService
	logger          *slog.Logger
}

func NewRecommendHandler(recommendations *service.RecommendationService, logger *slog.Logger) *RecommendHandler {
	return &RecommendHandler{recommendations: recommendations, logger: logger}
}

// HandleRecommend returns personalised advice and related news. An empty
// body pre-fills the form from the user's latest stored record.
//
// HTTP: POST /api/recommendations (auth required)
func (h *RecommendHandler) HandleRecommend(w http.ResponseWriter, r *http.Request) {
	username, ok := auth.UsernameFromContext(r.Context())
	if !ok {
		writeJSON(w, http.StatusUnauthorized, ErrorResponse{Error: "unauthorized", Message: "login required"})
		return
	}

	var in *recommend.Input
	if r.ContentLength != 0 {
		in = &recommend.Input{}
		if err := decodeJSON(r, in); err != nil {
			writeError(w, err)
			return
		}
	}

	result, err := h.recommendations.Recommend(r.Context(), username, in)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, result)
}
