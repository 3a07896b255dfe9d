package syncserver

import (
	"errors"
	"net/http"

	"github.com/alexanderramin/hearth/internal/docstore"
	"github.com/gin-contrib/requestid"
	"github.com/gin-gonic/gin"
)

// HTTPError is the body of every error response.
type HTTPError struct {
	Error string `json:"error"`
}

func writeError(c *gin.Context, status int, msg string) {
	c.AbortWithStatusJSON(status, HTTPError{Error: msg})
}

// storeError maps store errors onto status codes.
func (s *Server) storeError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, docstore.ErrNotFound):
		writeError(c, http.StatusNotFound, err.Error())
	case errors.Is(err, docstore.ErrBatchTooLarge):
		writeError(c, http.StatusRequestEntityTooLarge, err.Error())
	case errors.Is(err, docstore.ErrNilField), errors.Is(err, docstore.ErrInvalidPath):
		writeError(c, http.StatusBadRequest, err.Error())
	default:
		s.log.Error().Str("request-id", requestid.Get(c)).Err(err).Msg("store operation failed")
		writeError(c, http.StatusInternalServerError, "oops, something went wrong")
	}
}
