package handler

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/actuallystonmai/shopwiz/internal/domain"
	"github.com/actuallystonmai/shopwiz/internal/logging"
	"github.com/goccy/go-json"
)

// GET /api/search?q=
func (h *Handler) Search(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.service.Suggest(r.URL.Query().Get("q")))
}

// GET /api/recommendations?name=&limit=
func (h *Handler) GetRecommendations(w http.ResponseWriter, r *http.Request) {
	name := r.URL.Query().Get("name")
	if name == "" {
		writeError(w, http.StatusBadRequest, "invalid_parameter", "Missing name parameter")
		return
	}

	// Parse and validate limit
	limit := 8
	if limitStr := r.URL.Query().Get("limit"); limitStr != "" {
		parsed, err := strconv.Atoi(limitStr)
		if err != nil || parsed < 1 || parsed > 50 {
			writeError(w, http.StatusBadRequest, "invalid_parameter", "Invalid limit parameter")
			return
		}
		limit = parsed
	}

	result, err := h.service.Recommend(r.Context(), name, limit)
	if err != nil {
		logging.Ctx(r.Context()).Error().Err(err).Msg("[handler] recommend failed")
		writeError(w, http.StatusInternalServerError, "internal_error", "An unexpected error occurred")
		return
	}

	writeJSON(w, http.StatusOK, RecommendationResponse{
		Name:            name,
		Recommendations: result.Recommendations,
		Metadata: domain.RecommendationMeta{
			CacheHit:    result.CacheHit,
			GeneratedAt: time.Now().UTC().Format(time.RFC3339),
			TotalCount:  len(result.Recommendations),
		},
	})
}

// POST /api/wishlist/toggle
func (h *Handler) ToggleWishlist(w http.ResponseWriter, r *http.Request) {
	id, err := h.sessions.Current(r)
	if err != nil {
		writeJSON(w, http.StatusUnauthorized, StatusResponse{Status: "login_required"})
		return
	}

	var req WishlistToggleRequest
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, 4<<10)).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_body", "Request body must be JSON with a name")
		return
	}

	added, err := h.service.ToggleWishlist(r.Context(), id.UserID, req.Name)
	if err != nil {
		if errors.Is(err, domain.ErrInvalidInput) {
			writeError(w, http.StatusBadRequest, "invalid_parameter", "Missing product name")
			return
		}
		logging.Ctx(r.Context()).Error().Err(err).Int64("user_id", id.UserID).Msg("[handler] wishlist toggle failed")
		writeError(w, http.StatusInternalServerError, "internal_error", "An unexpected error occurred")
		return
	}

	status := "removed"
	if added {
		status = "added"
	}
	writeJSON(w, http.StatusOK, StatusResponse{Status: status})
}
