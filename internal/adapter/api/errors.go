package api

import (
	"errors"
	"fmt"
	"github.com/burenotti/nutrition_counselling/internal/domain/metabolic"
	"github.com/burenotti/nutrition_counselling/internal/domain/session"
	"github.com/labstack/echo/v4"
	"net/http"
)

type JsonErrorModel struct {
	Message string `json:"message"`
}

func JsonError(c echo.Context, status int, content any) error {
	data := &JsonErrorModel{Message: fmt.Sprintf("%v", content)}
	return c.JSON(status, data)
}

// DomainError answers with the status matching a domain sentinel. Unknown
// errors are logged by the request middleware and hidden from the client.
func DomainError(c echo.Context, err error) error {
	switch {
	case errors.Is(err, session.ErrSessionNotFound):
		return JsonError(c, http.StatusNotFound, "session not found")
	case errors.Is(err, session.ErrNotReady):
		return JsonError(c, http.StatusConflict, session.ErrNotReady)
	case errors.Is(err, session.ErrReadOnly):
		return JsonError(c, http.StatusForbidden, session.ErrReadOnly)
	case errors.Is(err, metabolic.ErrUnknownActivityLevel):
		return JsonError(c, http.StatusBadRequest, metabolic.ErrUnknownActivityLevel)
	case errors.Is(err, metabolic.ErrUnknownGender):
		return JsonError(c, http.StatusBadRequest, metabolic.ErrUnknownGender)
	case errors.Is(err, metabolic.ErrNoData):
		return JsonError(c, http.StatusNotFound, metabolic.ErrNoData)
	case errors.Is(err, metabolic.ErrFetchFailure):
		return JsonError(c, http.StatusBadGateway, "Failed to Load Data")
	}
	c.Set("error", err.Error())
	return JsonError(c, http.StatusInternalServerError, "internal error")
}
