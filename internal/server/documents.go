package server

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"repo-rag/internal/docstore"
)

type DocumentHandler struct {
	store *docstore.Store
}

func NewDocumentHandler(store *docstore.Store) *DocumentHandler {
	return &DocumentHandler{store: store}
}

func (h *DocumentHandler) List(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"documents": h.store.List(c.Request.Context())})
}

// Upload stores the multipart "file" field. The optional "path" field sets
// the target name, otherwise the uploaded file name is used.
func (h *DocumentHandler) Upload(c *gin.Context) {
	ctx := c.Request.Context()

	header, err := c.FormFile("file")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "file is required"})
		return
	}

	name := c.PostForm("path")
	if name == "" {
		name = header.Filename
	}

	f, err := header.Open()
	if err != nil {
		slog.ErrorContext(ctx, "failed to open upload", "error", err)
		c.JSON(http.StatusBadRequest, gin.H{"error": "unreadable upload"})
		return
	}
	defer f.Close()

	doc, err := h.store.Save(ctx, name, f)
	if err != nil {
		if errors.Is(err, docstore.ErrInvalidPath) {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		_ = c.Error(err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to store document"})
		return
	}

	c.JSON(http.StatusCreated, doc)
}

func (h *DocumentHandler) Delete(c *gin.Context) {
	err := h.store.Delete(c.Request.Context(), c.Param("path"))
	switch {
	case err == nil:
		c.Status(http.StatusNoContent)
	case errors.Is(err, docstore.ErrInvalidPath):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case errors.Is(err, docstore.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	default:
		_ = c.Error(err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to delete document"})
	}
}
