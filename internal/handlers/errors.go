package handlers

import (
	"errors"
	"net/http"

	"market/analyzer/internal/domain"

	"github.com/gin-gonic/gin"
	log "github.com/sirupsen/logrus"
)

const (
	messageValidationFailed = "Validation Failed"
	messageNotFound         = "Item not found"
)

// Error is the body of every non-2xx response.
type Error struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

func abortWithError(c *gin.Context, status int, message string) {
	c.AbortWithStatusJSON(status, Error{Code: status, Message: message})
}

// writeError maps catalog errors onto the API error contract.
func writeError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, domain.ErrNotFound):
		abortWithError(c, http.StatusNotFound, messageNotFound)
	case errors.Is(err, domain.ErrValidationFailed):
		log.Debugf("Request rejected: %v", err)
		abortWithError(c, http.StatusBadRequest, messageValidationFailed)
	default:
		log.Errorf("❌ Unexpected error on %s %s: %v", c.Request.Method, c.Request.URL.Path, err)
		abortWithError(c, http.StatusInternalServerError, http.StatusText(http.StatusInternalServerError))
	}
}
