package handler

import (
	"errors"
	"fmt"
	"food-ordering-api/internal/service"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog/log"
)

type errorResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
	Error   string `json:"error,omitempty"`
}

var statusByKind = map[service.ErrorKind]int{
	service.KindValidation:   http.StatusBadRequest,
	service.KindUnauthorized: http.StatusUnauthorized,
	service.KindForbidden:    http.StatusForbidden,
	service.KindNotFound:     http.StatusNotFound,
	service.KindConflict:     http.StatusConflict,
	service.KindState:        http.StatusBadRequest,
}

// ErrorHandler renders every error as {success: false, message}. Unexpected errors
// become 500 "server error" with the underlying message attached.
func ErrorHandler(err error, c echo.Context) {
	if c.Response().Committed {
		return
	}

	status, body := errorBody(err)
	if status >= http.StatusInternalServerError {
		log.Error().Err(err).
			Str("method", c.Request().Method).
			Str("path", c.Path()).
			Msg("request failed")
	}

	var writeErr error
	if c.Request().Method == http.MethodHead {
		writeErr = c.NoContent(status)
	} else {
		writeErr = c.JSON(status, body)
	}
	if writeErr != nil {
		log.Error().Err(writeErr).Msg("write error response")
	}
}

func errorBody(err error) (int, *errorResponse) {
	if domainErr, ok := service.AsError(err); ok {
		status, known := statusByKind[domainErr.Kind]
		if !known {
			status = http.StatusBadRequest
		}
		return status, &errorResponse{Message: domainErr.Message}
	}

	var httpErr *echo.HTTPError
	if errors.As(err, &httpErr) {
		if httpErr.Internal != nil && httpErr.Code >= http.StatusInternalServerError {
			return httpErr.Code, &errorResponse{Message: "server error", Error: httpErr.Internal.Error()}
		}
		return httpErr.Code, &errorResponse{Message: fmt.Sprint(httpErr.Message)}
	}

	return http.StatusInternalServerError, &errorResponse{Message: "server error", Error: err.Error()}
}
