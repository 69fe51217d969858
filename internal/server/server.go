// Package server exposes the query pipeline and the document and settings
// management endpoints over HTTP.
package server

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"repo-rag/internal/database"
	"repo-rag/internal/docstore"
	"repo-rag/internal/models"
	"repo-rag/internal/pipeline"
)

// Answerer answers a single query.
type Answerer interface {
	Answer(ctx context.Context, req pipeline.Request) (*models.Answer, error)
}

// Options wires the handlers to their collaborators.
type Options struct {
	Answerer     Answerer
	Documents    *docstore.Store
	Settings     database.SettingsStore
	QueryTimeout time.Duration
}

// NewRouter builds the gin engine with recovery and request logging.
func NewRouter(opts Options) *gin.Engine {
	router := gin.New()
	router.Use(Recovery())
	router.Use(Logger())

	SetupRoutes(router, opts)
	return router
}

// SetupRoutes registers every route on router.
func SetupRoutes(router *gin.Engine, opts Options) {
	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	rag := router.Group("/rag")
	{
		query := NewQueryHandler(opts.Answerer, opts.QueryTimeout)
		rag.POST("/query", query.Query)

		docs := NewDocumentHandler(opts.Documents)
		rag.GET("/documents", docs.List)
		rag.POST("/documents", docs.Upload)
		rag.DELETE("/documents/*path", docs.Delete)

		settings := NewSettingsHandler(opts.Settings)
		rag.GET("/settings", settings.Get)
		rag.PUT("/settings/prompts/:name", settings.SetPrompt)
		rag.PUT("/settings/project", settings.SetProject)
		rag.GET("/settings/examples", settings.ListExamples)
		rag.POST("/settings/examples", settings.AddExample)
		rag.DELETE("/settings/examples/:id", settings.DeleteExample)
	}
}
