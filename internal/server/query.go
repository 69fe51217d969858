package server

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"repo-rag/internal/llm"
	"repo-rag/internal/pipeline"
)

// QueryRequest is the body of POST /rag/query. APIKey overrides the
// server's model credential for this request.
type QueryRequest struct {
	APIKey    string `json:"api_key"`
	UserQuery string `json:"user_query"`
}

type QueryHandler struct {
	answerer Answerer
	timeout  time.Duration
}

func NewQueryHandler(answerer Answerer, timeout time.Duration) *QueryHandler {
	return &QueryHandler{answerer: answerer, timeout: timeout}
}

func (h *QueryHandler) Query(c *gin.Context) {
	ctx := c.Request.Context()

	var req QueryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		slog.WarnContext(ctx, "invalid request body", "error", err)
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if strings.TrimSpace(req.UserQuery) == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "user_query is required"})
		return
	}

	if h.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, h.timeout)
		defer cancel()
	}

	answer, err := h.answerer.Answer(ctx, pipeline.Request{Query: req.UserQuery, APIKey: req.APIKey})
	switch {
	case err == nil:
		c.JSON(http.StatusOK, answer)
	case errors.Is(err, pipeline.ErrEmptyQuery):
		c.JSON(http.StatusBadRequest, gin.H{"error": "user_query is required"})
	case errors.Is(err, llm.ErrBackend):
		_ = c.Error(err)
		c.JSON(http.StatusBadGateway, gin.H{"error": "language model request failed", "detail": err.Error()})
	default:
		_ = c.Error(err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to answer query"})
	}
}
