package api

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/tphakala/callscope/internal/errors"
	"github.com/tphakala/callscope/internal/logger"
)

// ErrorResponse is the JSON body of every failed request.
type ErrorResponse struct {
	Error    string `json:"error"`
	Category string `json:"category,omitempty"`
}

// statusForError maps an error category onto an HTTP status.
func statusForError(err error) int {
	switch errors.CategoryOf(err) {
	case errors.CategoryValidation:
		return http.StatusBadRequest
	case errors.CategoryNotFound:
		return http.StatusNotFound
	case errors.CategoryLimit:
		return http.StatusTooManyRequests
	default:
		return http.StatusInternalServerError
	}
}

// httpErrorHandler renders handler errors as ErrorResponse.
func (s *Server) httpErrorHandler(err error, c echo.Context) {
	if c.Response().Committed {
		return
	}

	var (
		status   int
		response ErrorResponse
	)
	var he *echo.HTTPError
	if errors.As(err, &he) {
		status = he.Code
		response.Error = http.StatusText(he.Code)
		if msg, ok := he.Message.(string); ok {
			response.Error = msg
		}
	} else {
		status = statusForError(err)
		response.Error = err.Error()
		response.Category = string(errors.CategoryOf(err))
	}

	if status >= http.StatusInternalServerError {
		s.log.Error("request failed",
			logger.String("path", c.Path()),
			logger.Int("status", status),
			logger.Error(err))
	}

	if c.Request().Method == http.MethodHead {
		err = c.NoContent(status)
	} else {
		err = c.JSON(status, response)
	}
	if err != nil {
		s.log.Warn("failed to write error response", logger.Error(err))
	}
}

// badRequest wraps a decoding problem as a validation error.
func badRequest(format string, args ...any) error {
	return errors.Newf(format, args...).
		Component("api").
		Category(errors.CategoryValidation).
		Build()
}
