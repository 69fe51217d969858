package server

import (
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"repo-rag/internal/database"
	"repo-rag/internal/llm"
	"repo-rag/internal/models"
	"repo-rag/internal/prompt"
)

type promptRequest struct {
	Content string `json:"content"`
}

type projectRequest struct {
	Name        string `json:"name"`
	Description string `json:"description"`
}

type exampleRequest struct {
	Content string `json:"content" binding:"required"`
}

// settingsResponse shows both the stored values and what is in effect.
type settingsResponse struct {
	models.Settings
	Effective struct {
		SystemPrompt   string `json:"system_prompt"`
		FollowUpPrompt string `json:"follow_up_prompt"`
	} `json:"effective"`
}

type SettingsHandler struct {
	store database.SettingsStore
}

func NewSettingsHandler(store database.SettingsStore) *SettingsHandler {
	return &SettingsHandler{store: store}
}

func (h *SettingsHandler) Get(c *gin.Context) {
	s, err := h.store.Settings(c.Request.Context())
	if err != nil {
		h.fail(c, err, "failed to load settings")
		return
	}
	if s.Examples == nil {
		s.Examples = []models.Example{}
	}

	resp := settingsResponse{Settings: s}
	resp.Effective.SystemPrompt = orDefault(s.SystemPrompt, prompt.DefaultPreamble)
	resp.Effective.FollowUpPrompt = orDefault(s.FollowUpPrompt, llm.DefaultFollowUp)
	c.JSON(http.StatusOK, resp)
}

// SetPrompt stores a prompt. An empty content restores the default.
func (h *SettingsHandler) SetPrompt(c *gin.Context) {
	name := c.Param("name")
	if !database.ValidPrompt(name) {
		c.JSON(http.StatusNotFound, gin.H{"error": "unknown prompt " + name})
		return
	}

	var req promptRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if err := h.store.SetPrompt(c.Request.Context(), name, req.Content); err != nil {
		h.fail(c, err, "failed to store prompt")
		return
	}
	c.JSON(http.StatusOK, gin.H{"name": name, "content": req.Content})
}

func (h *SettingsHandler) SetProject(c *gin.Context) {
	var req projectRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	project := models.Project{Name: req.Name, Description: req.Description}
	if err := h.store.SetProject(c.Request.Context(), project); err != nil {
		h.fail(c, err, "failed to store project")
		return
	}
	c.JSON(http.StatusOK, project)
}

func (h *SettingsHandler) ListExamples(c *gin.Context) {
	examples, err := h.store.ListExamples(c.Request.Context())
	if err != nil {
		h.fail(c, err, "failed to load examples")
		return
	}
	if examples == nil {
		examples = []models.Example{}
	}
	c.JSON(http.StatusOK, gin.H{"examples": examples})
}

func (h *SettingsHandler) AddExample(c *gin.Context) {
	var req exampleRequest
	if err := c.ShouldBindJSON(&req); err != nil || strings.TrimSpace(req.Content) == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "content is required"})
		return
	}

	ex, err := h.store.AddExample(c.Request.Context(), req.Content)
	if err != nil {
		h.fail(c, err, "failed to store example")
		return
	}
	c.JSON(http.StatusCreated, ex)
}

func (h *SettingsHandler) DeleteExample(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid example id"})
		return
	}

	if err := h.store.DeleteExample(c.Request.Context(), id); err != nil {
		if errors.Is(err, database.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "example not found"})
			return
		}
		h.fail(c, err, "failed to delete example")
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *SettingsHandler) fail(c *gin.Context, err error, msg string) {
	_ = c.Error(err)
	c.JSON(http.StatusInternalServerError, gin.H{"error": msg})
}

func orDefault(s, fallback string) string {
	if strings.TrimSpace(s) == "" {
		return fallback
	}
	return s
}
