package transport

import (
	"errors"
	"net/http"
	"time"

	"compara-mercado/internal/domain"
	"compara-mercado/internal/middleware"
	"compara-mercado/internal/service"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

// LoginRequest represents the admin login payload
type LoginRequest struct {
	Password string `json:"password" validate:"required"`
}

// LoginResponse carries the admin access token
type LoginResponse struct {
	AccessToken string    `json:"access_token"`
	ExpiresAt   time.Time `json:"expires_at"`
}

// ResetRequest guards the destructive reset
type ResetRequest struct {
	Confirm bool `json:"confirm"`
}

// AdminHandler handles supermarket administration
type AdminHandler struct {
	admin   service.AdminService
	catalog service.CatalogService
	logger  *zap.Logger
}

// NewAdminHandler creates a new AdminHandler
func NewAdminHandler(admin service.AdminService, catalog service.CatalogService, logger *zap.Logger) *AdminHandler {
	return &AdminHandler{
		admin:   admin,
		catalog: catalog,
		logger:  logger,
	}
}

// RegisterRoutes registers all admin routes
func (h *AdminHandler) RegisterRoutes(r chi.Router, authMiddleware func(http.Handler) http.Handler) {
	r.Route("/api/admin", func(r chi.Router) {
		// Public routes
		r.Post("/login", h.Login)

		// Protected routes
		r.Group(func(r chi.Router) {
			r.Use(authMiddleware)
			r.Use(middleware.RequireAdmin(h.logger))
			r.Post("/supermarkets", h.AddSupermarket)
			r.Patch("/supermarkets/{id}", h.UpdateSupermarket)
			r.Post("/supermarkets/reset", h.ResetSupermarkets)
		})
	})
}

// Login exchanges the admin password for an access token
func (h *AdminHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req LoginRequest
	if err := middleware.DecodeAndValidate(r, &req); err != nil {
		h.logger.Debug("Login validation failed", zap.Error(err))
		respondBadInput(w, err)
		return
	}

	token, expiresAt, err := h.admin.Login(req.Password)
	if err != nil {
		h.logger.Debug("Login failed", zap.Error(err))

		switch {
		case errors.Is(err, service.ErrInvalidCredentials):
			middleware.RespondWithError(w, http.StatusUnauthorized, "invalid password")
		case errors.Is(err, service.ErrAdminDisabled):
			middleware.RespondWithError(w, http.StatusServiceUnavailable, "administration is disabled")
		default:
			h.logger.Error("Login failed", zap.Error(err))
			middleware.RespondWithError(w, http.StatusInternalServerError, "failed to login")
		}
		return
	}

	h.logger.Info("Admin logged in")
	middleware.RespondWithJSON(w, http.StatusOK, LoginResponse{AccessToken: token, ExpiresAt: expiresAt})
}

// AddSupermarket registers a new supermarket
func (h *AdminHandler) AddSupermarket(w http.ResponseWriter, r *http.Request) {
	var req domain.NewSupermarket
	if err := middleware.DecodeAndValidate(r, &req); err != nil {
		h.logger.Debug("Supermarket validation failed", zap.Error(err))
		respondBadInput(w, err)
		return
	}

	created, err := h.catalog.AddSupermarket(r.Context(), req)
	if err != nil {
		respondServiceError(w, h.logger, err, "failed to add supermarket")
		return
	}
	middleware.RespondWithJSON(w, http.StatusCreated, created)
}

// UpdateSupermarket edits the fields present in the body
func (h *AdminHandler) UpdateSupermarket(w http.ResponseWriter, r *http.Request) {
	var update domain.SupermarketUpdate
	if err := middleware.DecodeAndValidate(r, &update); err != nil {
		h.logger.Debug("Supermarket update validation failed", zap.Error(err))
		respondBadInput(w, err)
		return
	}

	if err := h.catalog.UpdateSupermarket(r.Context(), chi.URLParam(r, "id"), update); err != nil {
		respondServiceError(w, h.logger, err, "failed to update supermarket")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// ResetSupermarkets restores the built-in supermarkets
func (h *AdminHandler) ResetSupermarkets(w http.ResponseWriter, r *http.Request) {
	var req ResetRequest
	if err := middleware.DecodeAndValidate(r, &req); err != nil {
		respondBadInput(w, err)
		return
	}

	if err := h.catalog.ResetSupermarkets(r.Context(), req.Confirm); err != nil {
		respondServiceError(w, h.logger, err, "failed to reset supermarkets")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
