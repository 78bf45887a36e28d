package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/tooltag/tooltag-backend/internal/logger"
	"github.com/tooltag/tooltag-backend/internal/storage"
)

// PhotoHandler serves stored photo files by name. Names are validated by the
// store, so path traversal dies before touching the filesystem.
type PhotoHandler struct {
	log      *logger.Logger
	catalog  *storage.PhotoStore
	requests *storage.PhotoStore
}

func NewPhotoHandler(baseLog *logger.Logger, catalog, requests *storage.PhotoStore) *PhotoHandler {
	return &PhotoHandler{
		log:      baseLog.With("handler", "PhotoHandler"),
		catalog:  catalog,
		requests: requests,
	}
}

func (h *PhotoHandler) CatalogPhoto(c *gin.Context) {
	h.serve(c, h.catalog)
}

func (h *PhotoHandler) RequestPhoto(c *gin.Context) {
	h.serve(c, h.requests)
}

func (h *PhotoHandler) serve(c *gin.Context, store *storage.PhotoStore) {
	path := store.Path(c.Param("name"))
	if path == "" {
		c.JSON(http.StatusNotFound, gin.H{"error": "photo not found"})
		return
	}
	c.File(path)
}
