package handler

import (
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/actuallystonmai/shopwiz/internal/domain"
	"github.com/actuallystonmai/shopwiz/internal/logging"
	"github.com/actuallystonmai/shopwiz/internal/service"
	"github.com/go-chi/chi/v5"
)

const defaultRecommendations = 8

// GET /, /index
func (h *Handler) Index(w http.ResponseWriter, r *http.Request) {
	trending, featured := h.service.Home()
	h.render(w, r, http.StatusOK, "index", map[string]any{
		"Trending": trending,
		"Featured": featured,
	})
}

// GET /products
func (h *Handler) Products(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	page, err := strconv.Atoi(q.Get("page"))
	if err != nil || page < 1 {
		page = 1
	}

	result := h.service.ListProducts(service.ProductQuery{
		Page:     page,
		Category: q.Get("category"),
		Sort:     q.Get("sort"),
	})

	numbers := make([]int, result.Pages)
	for i := range numbers {
		numbers[i] = i + 1
	}
	h.render(w, r, http.StatusOK, "products", map[string]any{
		"Page":        result,
		"PageNumbers": numbers,
	})
}

// productName recovers the catalog name from the wildcard segment; names
// may contain slashes.
func productName(r *http.Request) string {
	name := chi.URLParam(r, "*")
	if r.URL.RawPath == "" {
		return name
	}
	if unescaped, err := url.PathUnescape(name); err == nil {
		return unescaped
	}
	return name
}

// GET /product/{name...}
func (h *Handler) ProductDetail(w http.ResponseWriter, r *http.Request) {
	product, similar, err := h.service.ProductDetail(r.Context(), productName(r))
	if err != nil {
		if errors.Is(err, domain.ErrProductNotFound) {
			h.redirect(w, r, "/products", "error", "Product not found.")
			return
		}
		logging.Ctx(r.Context()).Error().Err(err).Msg("[handler] product detail failed")
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}
	data := map[string]any{
		"Product":    product,
		"Similar":    similar,
		"Wishlisted": false,
	}
	if id, err := h.sessions.Current(r); err == nil {
		wishlisted, err := h.service.IsWishlisted(r.Context(), id.UserID, product.Name)
		if err != nil {
			logging.Ctx(r.Context()).Warn().Err(err).Int64("user_id", id.UserID).Msg("[handler] wishlist lookup failed")
		}
		data["Wishlisted"] = wishlisted
	}
	h.render(w, r, http.StatusOK, "product", data)
}

// GET, POST /recommendations
func (h *Handler) Recommendations(w http.ResponseWriter, r *http.Request) {
	data := map[string]any{"Prod": "", "Nbr": defaultRecommendations, "Message": ""}
	if r.Method != http.MethodPost {
		h.render(w, r, http.StatusOK, "recommendations", data)
		return
	}

	prod := strings.TrimSpace(r.PostFormValue("prod"))
	nbr, err := strconv.Atoi(r.PostFormValue("nbr"))
	if err != nil || nbr <= 0 {
		nbr = defaultRecommendations
	}

	result, err := h.service.Recommend(r.Context(), prod, nbr)
	if err != nil {
		logging.Ctx(r.Context()).Error().Err(err).Msg("[handler] recommend failed")
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}

	data["Prod"] = prod
	data["Nbr"] = nbr
	data["Recs"] = result.Recommendations
	if len(result.Recommendations) == 0 {
		data["Message"] = fmt.Sprintf("No recommendations found for '%s'. Try a different product name.", prod)
	}
	h.render(w, r, http.StatusOK, "recommendations", data)
}

// GET /wishlist
func (h *Handler) Wishlist(w http.ResponseWriter, r *http.Request) {
	id, err := h.sessions.Current(r)
	if err != nil {
		http.Redirect(w, r, "/login", http.StatusSeeOther)
		return
	}
	items, err := h.service.Wishlist(r.Context(), id.UserID)
	if err != nil {
		logging.Ctx(r.Context()).Error().Err(err).Int64("user_id", id.UserID).Msg("[handler] wishlist failed")
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}
	h.render(w, r, http.StatusOK, "wishlist", map[string]any{"Items": items})
}
