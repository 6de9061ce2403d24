package handler

import "github.com/actuallystonmai/shopwiz/internal/domain"

type RecommendationResponse struct {
	Name            string                    `json:"name"`
	Recommendations []domain.Product          `json:"recommendations"`
	Metadata        domain.RecommendationMeta `json:"metadata"`
}

type WishlistToggleRequest struct {
	Name string `json:"name"`
}

type StatusResponse struct {
	Status string `json:"status"`
}

type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}
