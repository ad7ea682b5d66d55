package http

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/fjod/forgeline/internal/catalog"
	"github.com/fjod/forgeline/internal/domain"
	"github.com/fjod/forgeline/internal/pricing"
	"github.com/go-chi/chi/v5"
)

type CatalogHandler struct {
	catalog catalog.Provider
	timeout time.Duration
}

func NewCatalogHandler(provider catalog.Provider, timeout time.Duration) *CatalogHandler {
	return &CatalogHandler{
		catalog: provider,
		timeout: timeout,
	}
}

type ProductResponse struct {
	ID          int64  `json:"id"`
	Name        string `json:"name"`
	Category    string `json:"category"`
	Price       string `json:"price"`
	PriceLabel  string `json:"price_label"`
	ImageURL    string `json:"image_url"`
	Description string `json:"description"`
	Stock       int    `json:"stock"`
	InStock     bool   `json:"in_stock"`
}

type ProductsResponse struct {
	Products    []ProductResponse `json:"products"`
	Suggestions []string          `json:"suggestions,omitempty"`
}

func toProductResponse(p domain.Product) ProductResponse {
	return ProductResponse{
		ID:          p.ID,
		Name:        p.Name,
		Category:    p.Category,
		Price:       p.Price.StringFixed(2),
		PriceLabel:  pricing.Format(p.Price),
		ImageURL:    p.ImageRef,
		Description: p.Description,
		Stock:       p.Stock,
		InStock:     p.InStock(),
	}
}

// GET /api/v1/products?category=&price=&sort=&q=
func (h *CatalogHandler) List(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	all, err := h.catalog.ListAll(ctx)
	if err != nil {
		handleError(w, r, err)
		return
	}

	params := r.URL.Query()
	products := all
	if text := params.Get("q"); text != "" {
		products = catalog.Search(products, text)
	}
	products, err = catalog.Filter(products, catalog.Query{
		Category:   params.Get("category"),
		PriceRange: params.Get("price"),
		Sort:       catalog.SortOrder(params.Get("sort")),
	})
	if err != nil {
		handleError(w, r, err)
		return
	}

	resp := ProductsResponse{Products: make([]ProductResponse, len(products))}
	for i, p := range products {
		resp.Products[i] = toProductResponse(p)
	}
	if params.Get("q") != "" && len(products) == 0 {
		resp.Suggestions = catalog.Suggestions()
	}

	respondJSON(w, http.StatusOK, &resp)
}

// GET /api/v1/products/{id}
func (h *CatalogHandler) Get(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil || id <= 0 {
		respondError(w, http.StatusBadRequest, "invalid_product_id", "id must be a positive integer")
		return
	}

	p, err := h.catalog.FindByID(ctx, id)
	if err != nil {
		handleError(w, r, err)
		return
	}

	respondJSON(w, http.StatusOK, toProductResponse(p))
}

// GET /api/v1/categories
func (h *CatalogHandler) Categories(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	all, err := h.catalog.ListAll(ctx)
	if err != nil {
		handleError(w, r, err)
		return
	}

	respondJSON(w, http.StatusOK, map[string][]string{"categories": catalog.Categories(all)})
}
