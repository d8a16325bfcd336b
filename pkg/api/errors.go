package api

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/fourthplaces/rootsignal/pkg/config"
)

// ErrorResponse is the body of every non-2xx response.
type ErrorResponse struct {
	Error string `json:"error"`
}

// writeServiceError maps a read/submission-path error to an HTTP status
// and writes the JSON error body, logging anything unexpected.
func writeServiceError(c *gin.Context, err error) {
	if errors.Is(err, config.ErrScopeNotFound) {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "unknown scope"})
		return
	}
	if errors.Is(err, errNotFound) {
		c.JSON(http.StatusNotFound, ErrorResponse{Error: "resource not found"})
		return
	}
	if errors.Is(err, errRejectedURL) {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "url could not be canonicalized or is blocked"})
		return
	}

	slog.Error("api: unexpected error", "error", err)
	c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "internal server error"})
}

var (
	errNotFound    = errors.New("not found")
	errRejectedURL = errors.New("url rejected")
)
