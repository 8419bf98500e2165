package api

import (
	"errors"
	"net/http"

	"github.com/go-chi/render"

	"autoposter-bot/internal/domain"
	"autoposter-bot/internal/logger"
	"autoposter-bot/internal/usecase"
)

type ErrorResponse struct {
	Error string `json:"error"`
}

func renderError(w http.ResponseWriter, r *http.Request, status int, message string) {
	render.Status(r, status)
	render.JSON(w, r, ErrorResponse{Error: message})
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, domain.ErrPostNotFound):
		return http.StatusNotFound
	case errors.Is(err, usecase.ErrAccessDenied):
		return http.StatusForbidden
	case errors.Is(err, domain.ErrInvalidStateTransition),
		errors.Is(err, usecase.ErrNotConfirmed),
		errors.Is(err, usecase.ErrNotDraft):
		return http.StatusConflict
	case errors.Is(err, usecase.ErrEmptyTopic),
		errors.Is(err, domain.ErrInvalidContent),
		errors.Is(err, domain.ErrUnknownPlatform),
		errors.Is(err, usecase.ErrNoPlatforms):
		return http.StatusBadRequest
	}
	return http.StatusInternalServerError
}

func renderResultError(w http.ResponseWriter, r *http.Request, res usecase.Result) {
	status := statusFor(res.Err)
	if status == http.StatusInternalServerError {
		logger.WithContext(r.Context()).WithError(res.Err).Error("Request failed")
	}
	renderError(w, r, status, res.ErrorMessage())
}
