package transport

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"compara-mercado/internal/domain"
	"compara-mercado/internal/middleware"
	"compara-mercado/internal/repository"
	"compara-mercado/internal/service"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

// CatalogHandler serves the read-only catalog views
type CatalogHandler struct {
	catalog service.CatalogService
	home    service.HomeService
	logger  *zap.Logger
	now     func() time.Time
}

// NewCatalogHandler creates a new CatalogHandler
func NewCatalogHandler(catalog service.CatalogService, home service.HomeService, logger *zap.Logger) *CatalogHandler {
	return &CatalogHandler{
		catalog: catalog,
		home:    home,
		logger:  logger,
		now:     time.Now,
	}
}

// RegisterRoutes registers all catalog routes
func (h *CatalogHandler) RegisterRoutes(r chi.Router) {
	r.Get("/api/categories", h.ListCategories)
	r.Get("/api/supermarkets", h.ListSupermarkets)
	r.Get("/api/supermarkets/{id}/storefront", h.Storefront)
	r.Get("/api/products", h.CompareProducts)
	r.Get("/api/promotions", h.ListPromotions)
	r.Get("/api/home", h.Home)
}

// ListCategories returns the fixed category list
func (h *CatalogHandler) ListCategories(w http.ResponseWriter, r *http.Request) {
	middleware.RespondWithJSON(w, http.StatusOK, domain.Categories)
}

// ListSupermarkets returns the configured supermarkets
func (h *CatalogHandler) ListSupermarkets(w http.ResponseWriter, r *http.Request) {
	supermarkets, err := h.catalog.Supermarkets(r.Context())
	if err != nil {
		respondServiceError(w, h.logger, err, "failed to list supermarkets")
		return
	}
	middleware.RespondWithJSON(w, http.StatusOK, supermarkets)
}

// Storefront redirects to the supermarket's website
func (h *CatalogHandler) Storefront(w http.ResponseWriter, r *http.Request) {
	url, err := h.catalog.Storefront(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		if errors.Is(err, repository.ErrSupermarketNotFound) || errors.Is(err, service.ErrNoStorefront) {
			middleware.RespondWithError(w, http.StatusNotFound, err.Error())
			return
		}
		respondServiceError(w, h.logger, err, "failed to resolve storefront")
		return
	}
	http.Redirect(w, r, url, http.StatusFound)
}

// CompareProducts returns products with their prices, cheapest first
func (h *CatalogHandler) CompareProducts(w http.ResponseWriter, r *http.Request) {
	filters, err := parseFilters(r)
	if err != nil {
		middleware.RespondWithError(w, http.StatusBadRequest, err.Error())
		return
	}

	products, err := h.catalog.Compare(r.Context(), filters)
	if err != nil {
		respondServiceError(w, h.logger, err, "failed to list products")
		return
	}
	middleware.RespondWithJSON(w, http.StatusOK, products)
}

// ListPromotions returns the promotion view
func (h *CatalogHandler) ListPromotions(w http.ResponseWriter, r *http.Request) {
	filters, err := parseFilters(r)
	if err != nil {
		middleware.RespondWithError(w, http.StatusBadRequest, err.Error())
		return
	}

	promos, err := h.catalog.Promotions(r.Context(), filters)
	if err != nil {
		respondServiceError(w, h.logger, err, "failed to list promotions")
		return
	}
	middleware.RespondWithJSON(w, http.StatusOK, promos)
}

// Home returns the landing page summary
func (h *CatalogHandler) Home(w http.ResponseWriter, r *http.Request) {
	summary, err := h.home.Summary(r.Context(), h.now())
	if err != nil {
		respondServiceError(w, h.logger, err, "failed to build home summary")
		return
	}
	middleware.RespondWithJSON(w, http.StatusOK, summary)
}

// parseFilters reads category, q, supermarkets and sort from the query string
func parseFilters(r *http.Request) (service.Filters, error) {
	q := r.URL.Query()

	category, err := domain.ParseCategory(q.Get("category"))
	if err != nil {
		return service.Filters{}, err
	}

	var ids []string
	for _, id := range strings.Split(q.Get("supermarkets"), ",") {
		if id = strings.TrimSpace(id); id != "" {
			ids = append(ids, id)
		}
	}

	return service.Filters{
		Category:       category,
		Query:          q.Get("q"),
		SupermarketIDs: ids,
		Sort:           service.ParsePromotionSort(q.Get("sort")),
	}, nil
}
