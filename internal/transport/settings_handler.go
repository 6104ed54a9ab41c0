package transport

import (
	"net/http"

	"compara-mercado/internal/domain"
	"compara-mercado/internal/middleware"
	"compara-mercado/internal/repository"
	"compara-mercado/internal/service"
	"compara-mercado/internal/websocket"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

// ThemeRequest represents the theme update payload
type ThemeRequest struct {
	Theme string `json:"theme" validate:"required,oneof=light dark"`
}

// ThemeResponse represents the stored theme
type ThemeResponse struct {
	Theme domain.Theme `json:"theme"`
}

// SettingsHandler handles user preferences
type SettingsHandler struct {
	settings  repository.SettingsRepository
	publisher service.Publisher
	logger    *zap.Logger
}

// NewSettingsHandler creates a new SettingsHandler
func NewSettingsHandler(settings repository.SettingsRepository, publisher service.Publisher, logger *zap.Logger) *SettingsHandler {
	return &SettingsHandler{
		settings:  settings,
		publisher: publisher,
		logger:    logger,
	}
}

// RegisterRoutes registers the settings routes
func (h *SettingsHandler) RegisterRoutes(r chi.Router) {
	r.Get("/api/settings/theme", h.GetTheme)
	r.Put("/api/settings/theme", h.SetTheme)
}

// GetTheme returns the stored theme
func (h *SettingsHandler) GetTheme(w http.ResponseWriter, r *http.Request) {
	theme, err := h.settings.Theme(r.Context())
	if err != nil {
		respondServiceError(w, h.logger, err, "failed to load theme")
		return
	}
	middleware.RespondWithJSON(w, http.StatusOK, ThemeResponse{Theme: theme})
}

// SetTheme stores the theme and notifies subscribers
func (h *SettingsHandler) SetTheme(w http.ResponseWriter, r *http.Request) {
	var req ThemeRequest
	if err := middleware.DecodeAndValidate(r, &req); err != nil {
		h.logger.Debug("Theme validation failed", zap.Error(err))
		respondBadInput(w, err)
		return
	}

	theme := domain.Theme(req.Theme)
	if err := h.settings.SetTheme(r.Context(), theme); err != nil {
		respondServiceError(w, h.logger, err, "failed to store theme")
		return
	}
	if h.publisher != nil {
		h.publisher.Publish(websocket.EventThemeUpdated)
	}

	middleware.RespondWithJSON(w, http.StatusOK, ThemeResponse{Theme: theme})
}
