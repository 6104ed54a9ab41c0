package transport

import (
	"net/http"

	"compara-mercado/internal/domain"
	"compara-mercado/internal/middleware"
	"compara-mercado/internal/service"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

// AddItemRequest represents the add-product payload
type AddItemRequest struct {
	ProductID string `json:"product_id" validate:"required"`
}

// AddManualItemRequest represents the free-text item payload
type AddManualItemRequest struct {
	Name string `json:"name" validate:"required,max=100"`
}

// ClearCheckedResponse reports how many items were removed
type ClearCheckedResponse struct {
	Removed int `json:"removed"`
}

// AdviceResponse carries the savings tip
type AdviceResponse struct {
	Advice string `json:"advice"`
}

// ShoppingListHandler handles HTTP requests for the shopping list
type ShoppingListHandler struct {
	list    service.ShoppingListService
	advisor service.AdvisorService
	logger  *zap.Logger
}

// NewShoppingListHandler creates a new ShoppingListHandler
func NewShoppingListHandler(list service.ShoppingListService, advisor service.AdvisorService, logger *zap.Logger) *ShoppingListHandler {
	return &ShoppingListHandler{
		list:    list,
		advisor: advisor,
		logger:  logger,
	}
}

// RegisterRoutes registers all shopping list routes
func (h *ShoppingListHandler) RegisterRoutes(r chi.Router) {
	r.Route("/api/shopping-list", func(r chi.Router) {
		r.Get("/", h.GetList)
		r.Post("/items", h.AddItem)
		r.Post("/manual", h.AddManualItem)
		r.Patch("/items/{id}", h.UpdateItem)
		r.Delete("/items/{id}", h.RemoveItem)
		r.Post("/clear-checked", h.ClearChecked)
		r.Get("/export", h.Export)
		r.Post("/advice", h.Advice)
	})
}

// GetList returns the resolved list with its total
func (h *ShoppingListHandler) GetList(w http.ResponseWriter, r *http.Request) {
	view, err := h.list.List(r.Context())
	if err != nil {
		respondServiceError(w, h.logger, err, "failed to load shopping list")
		return
	}
	middleware.RespondWithJSON(w, http.StatusOK, view)
}

// AddItem adds a catalog product to the list
func (h *ShoppingListHandler) AddItem(w http.ResponseWriter, r *http.Request) {
	var req AddItemRequest
	if err := middleware.DecodeAndValidate(r, &req); err != nil {
		h.logger.Debug("Add item validation failed", zap.Error(err))
		respondBadInput(w, err)
		return
	}

	item, err := h.list.Add(r.Context(), req.ProductID)
	if err != nil {
		respondServiceError(w, h.logger, err, "failed to add item")
		return
	}
	middleware.RespondWithJSON(w, http.StatusCreated, item)
}

// AddManualItem adds a free-text item to the list
func (h *ShoppingListHandler) AddManualItem(w http.ResponseWriter, r *http.Request) {
	var req AddManualItemRequest
	if err := middleware.DecodeAndValidate(r, &req); err != nil {
		h.logger.Debug("Add manual item validation failed", zap.Error(err))
		respondBadInput(w, err)
		return
	}

	item, err := h.list.AddManual(r.Context(), req.Name)
	if err != nil {
		respondServiceError(w, h.logger, err, "failed to add item")
		return
	}
	middleware.RespondWithJSON(w, http.StatusCreated, item)
}

// UpdateItem changes quantity, checked state or preferred store
func (h *ShoppingListHandler) UpdateItem(w http.ResponseWriter, r *http.Request) {
	var update domain.ItemUpdate
	if err := middleware.DecodeAndValidate(r, &update); err != nil {
		h.logger.Debug("Update item validation failed", zap.Error(err))
		respondBadInput(w, err)
		return
	}

	item, err := h.list.Update(r.Context(), chi.URLParam(r, "id"), update)
	if err != nil {
		respondServiceError(w, h.logger, err, "failed to update item")
		return
	}
	middleware.RespondWithJSON(w, http.StatusOK, item)
}

// RemoveItem deletes an item
func (h *ShoppingListHandler) RemoveItem(w http.ResponseWriter, r *http.Request) {
	if err := h.list.Remove(r.Context(), chi.URLParam(r, "id")); err != nil {
		respondServiceError(w, h.logger, err, "failed to remove item")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// ClearChecked removes every checked item
func (h *ShoppingListHandler) ClearChecked(w http.ResponseWriter, r *http.Request) {
	removed, err := h.list.ClearChecked(r.Context())
	if err != nil {
		respondServiceError(w, h.logger, err, "failed to clear checked items")
		return
	}
	middleware.RespondWithJSON(w, http.StatusOK, ClearCheckedResponse{Removed: removed})
}

// Export downloads the list as an XLSX spreadsheet
func (h *ShoppingListHandler) Export(w http.ResponseWriter, r *http.Request) {
	view, err := h.list.List(r.Context())
	if err != nil {
		respondServiceError(w, h.logger, err, "failed to load shopping list")
		return
	}

	f, err := service.ExportShoppingList(view)
	if err != nil {
		respondServiceError(w, h.logger, err, "failed to export shopping list")
		return
	}
	defer f.Close()

	w.Header().Set("Content-Type", xlsxContentType)
	w.Header().Set("Content-Disposition", `attachment; filename="lista-de-compras.xlsx"`)
	if err := f.Write(w); err != nil {
		h.logger.Error("Failed to write spreadsheet", zap.Error(err))
	}
}

// Advice asks the savings advisor for a tip about the current list
func (h *ShoppingListHandler) Advice(w http.ResponseWriter, r *http.Request) {
	middleware.RespondWithJSON(w, http.StatusOK, AdviceResponse{Advice: h.advisor.Advice(r.Context())})
}
