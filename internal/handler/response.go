package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/mkrogh/catalog-service/internal/service"
)

type errorPayload struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

type ErrorResponse struct {
	Error errorPayload `json:"error"`
}

func NewErrorResponse(code, message string) ErrorResponse {
	return ErrorResponse{
		Error: errorPayload{
			Code:    code,
			Message: message,
		},
	}
}

// errorJSON maps a service failure kind to an HTTP status and writes the
// uniform error body.
func errorJSON(c echo.Context, err error) error {
	kind := service.KindOf(err)
	return c.JSON(statusOf(kind), NewErrorResponse(string(kind), err.Error()))
}

func statusOf(kind service.Kind) int {
	switch kind {
	case service.KindValidation, service.KindAttachment:
		return http.StatusBadRequest
	case service.KindNotFound:
		return http.StatusNotFound
	case service.KindConflict:
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}
