package http

import (
	"context"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/das-elb/email-agent-go/internal/domain/model"
	"github.com/das-elb/email-agent-go/internal/learning"
)

// LearningService expõe as operações do job de aprendizado de estilo
type LearningService interface {
	Sync(ctx context.Context, maxResults, sinceDays int) (*learning.SyncResult, error)
	Profile(ctx context.Context) (*model.StyleProfile, error)
}

// StylePromptUpdater permite ajustar manualmente o texto injetado
type StylePromptUpdater interface {
	UpdateInjectedPrompt(ctx context.Context, id uint, prompt string) error
}

// LearningHandler implementa os handlers do aprendizado de estilo
type LearningHandler struct {
	service LearningService
	updater StylePromptUpdater
	logger  *zap.Logger
}

// NewLearningHandler cria um novo handler de aprendizado
func NewLearningHandler(service LearningService, updater StylePromptUpdater, logger *zap.Logger) *LearningHandler {
	return &LearningHandler{service: service, updater: updater, logger: logger}
}

// Sync executa a sincronização de aprendizado de forma síncrona
func (h *LearningHandler) Sync(c *gin.Context) {
	maxResults, _ := strconv.Atoi(c.DefaultQuery("max_results", "50"))
	sinceDays, _ := strconv.Atoi(c.DefaultQuery("since_days", "90"))

	result, err := h.service.Sync(c.Request.Context(), maxResults, sinceDays)
	if err != nil {
		h.logger.Error("Falha na sincronização de aprendizado", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Falha na sincronização: " + err.Error()})
		return
	}

	c.JSON(http.StatusOK, result)
}

// GetProfile devolve o perfil de estilo mais recente
func (h *LearningHandler) GetProfile(c *gin.Context) {
	profile, err := h.service.Profile(c.Request.Context())
	if err != nil {
		h.logger.Error("Falha ao buscar perfil de estilo", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Falha ao buscar perfil de estilo"})
		return
	}
	c.JSON(http.StatusOK, profile)
}

// UpdatePromptRequest é o corpo do ajuste manual do prompt de estilo
type UpdatePromptRequest struct {
	InjectedPrompt string `json:"injected_prompt" binding:"required"`
}

// UpdatePrompt ajusta o texto de estilo injetado no redator
func (h *LearningHandler) UpdatePrompt(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "ID inválido"})
		return
	}

	var req UpdatePromptRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Dados inválidos: " + err.Error()})
		return
	}

	if err := h.updater.UpdateInjectedPrompt(c.Request.Context(), uint(id), req.InjectedPrompt); err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Prompt de estilo atualizado", "id": id})
}
