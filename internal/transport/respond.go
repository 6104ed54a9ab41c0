package transport

import (
	"errors"
	"net/http"

	"compara-mercado/internal/domain"
	"compara-mercado/internal/middleware"
	"compara-mercado/internal/repository"
	"compara-mercado/internal/service"

	"go.uber.org/zap"
)

// respondBadInput reports a decoding or validation failure
func respondBadInput(w http.ResponseWriter, err error) {
	if validationErrors := middleware.FormatValidationErrors(err); len(validationErrors) > 0 {
		middleware.RespondWithValidationErrors(w, validationErrors)
		return
	}
	middleware.RespondWithError(w, http.StatusBadRequest, "invalid request body")
}

// respondServiceError maps service and repository errors to HTTP statuses
func respondServiceError(w http.ResponseWriter, logger *zap.Logger, err error, fallback string) {
	switch {
	case errors.Is(err, repository.ErrProductNotFound):
		middleware.RespondWithError(w, http.StatusNotFound, "product not found")
	case errors.Is(err, repository.ErrSupermarketNotFound):
		middleware.RespondWithError(w, http.StatusNotFound, "supermarket not found")
	case errors.Is(err, service.ErrItemNotFound):
		middleware.RespondWithError(w, http.StatusNotFound, "shopping list item not found")
	case errors.Is(err, repository.ErrConfirmationRequired):
		middleware.RespondWithError(w, http.StatusBadRequest, "confirmation required")
	case errors.Is(err, domain.ErrEmptyUpdate),
		errors.Is(err, domain.ErrEmptyItemName),
		errors.Is(err, domain.ErrInvalidTheme),
		errors.Is(err, domain.ErrUnknownCategory):
		middleware.RespondWithError(w, http.StatusBadRequest, err.Error())
	default:
		if validationErrors := middleware.FormatValidationErrors(err); len(validationErrors) > 0 {
			middleware.RespondWithValidationErrors(w, validationErrors)
			return
		}
		logger.Error(fallback, zap.Error(err))
		middleware.RespondWithError(w, http.StatusInternalServerError, fallback)
	}
}
