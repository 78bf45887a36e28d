package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/tooltag/tooltag-backend/internal/apperr"
)

type ErrorEnvelope struct {
	Error string `json:"error"`
	Kind  string `json:"kind"`
}

// RespondError translates an error kind into an HTTP status. Unknown errors
// surface as 500 with a generic message so internals never leak.
func RespondError(c *gin.Context, err error) {
	kind := apperr.KindOf(err)
	status := http.StatusInternalServerError
	msg := "internal error"

	switch kind {
	case apperr.KindValidation, apperr.KindInvalidFileFormat:
		status = http.StatusBadRequest
		msg = err.Error()
	case apperr.KindNotFound:
		status = http.StatusNotFound
		msg = err.Error()
	case apperr.KindConflict:
		status = http.StatusConflict
		msg = err.Error()
	case apperr.KindUnauthorized:
		status = http.StatusUnauthorized
		msg = err.Error()
	}
	c.JSON(status, ErrorEnvelope{Error: msg, Kind: kind.String()})
}

func RespondOK(c *gin.Context, payload any) {
	c.JSON(http.StatusOK, payload)
}

func RespondCreated(c *gin.Context, payload any) {
	c.JSON(http.StatusCreated, payload)
}
