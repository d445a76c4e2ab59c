package handler

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/suteetoe/marketplace/internal/response"
	"github.com/suteetoe/marketplace/internal/store"
	"go.uber.org/zap"
)

// fail maps data-access errors to envelope responses. Unexpected errors are
// logged and reported as a generic internal error.
func fail(c echo.Context, log *zap.Logger, err error, resource string) error {
	var badPage errBadPage
	switch {
	case errors.Is(err, ErrMalformedID):
		return response.Error(c, http.StatusUnprocessableEntity, "Invalid "+resource+" id")
	case errors.As(err, &badPage):
		return response.Error(c, http.StatusBadRequest, badPage.Error())
	case errors.Is(err, store.ErrNotFound):
		return response.Error(c, http.StatusNotFound, resource+" not found")
	case errors.Is(err, store.ErrForbidden):
		return response.Error(c, http.StatusForbidden, "Permission denied")
	case errors.Is(err, store.ErrNeedNotOpen):
		return response.Error(c, http.StatusBadRequest, "Need is not open for responses")
	case errors.Is(err, store.ErrNeedAlreadyAccepted):
		return response.Error(c, http.StatusBadRequest, "Need already has an accepted response")
	case errors.Is(err, store.ErrDuplicateUsername):
		return response.Error(c, http.StatusBadRequest, "Username already registered")
	case errors.Is(err, store.ErrDuplicateEmail):
		return response.Error(c, http.StatusBadRequest, "Email already registered")
	case errors.Is(err, store.ErrInvalidCredentials):
		return response.Error(c, http.StatusBadRequest, "Incorrect username or password")
	}

	log.Error("Request failed", zap.String("resource", resource), zap.Error(err))
	return response.Internal(c)
}

func badRequest(c echo.Context, msg string) error {
	return response.Error(c, http.StatusBadRequest, msg)
}
