package web

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"resource-cards/internal/store"
)

type APIError struct {
	Message string `json:"message"`
	Code    string `json:"code,omitempty"`
}

type ErrorEnvelope struct {
	Error APIError `json:"error"`
}

func respondError(c *gin.Context, status int, code string, err error) {
	msg := "unknown error"
	if err != nil {
		msg = err.Error()
	}
	c.AbortWithStatusJSON(status, ErrorEnvelope{Error: APIError{Message: msg, Code: code}})
}

func respondData(c *gin.Context, status int, data any) {
	c.JSON(status, gin.H{"data": data})
}

// respondStoreError maps store errors onto HTTP statuses.
func (s *Server) respondStoreError(c *gin.Context, err error) {
	switch {
	case store.IsNotFound(err):
		respondError(c, http.StatusNotFound, "not_found", err)
	case errors.Is(err, store.ErrInvalidSlug):
		respondError(c, http.StatusBadRequest, "invalid_slug", err)
	case errors.Is(err, store.ErrSlugTaken):
		respondError(c, http.StatusConflict, "slug_taken", err)
	case errors.Is(err, store.ErrInvalid), errors.Is(err, store.ErrEmptyRequest), errors.Is(err, store.ErrCardMismatch):
		respondError(c, http.StatusBadRequest, "invalid_request", err)
	default:
		s.log.Error("request failed", "path", c.Request.URL.Path, "error", err)
		respondError(c, http.StatusInternalServerError, "internal", err)
	}
}
