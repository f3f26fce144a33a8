package http

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/das-elb/email-agent-go/internal/domain/model"
	apierrors "github.com/das-elb/email-agent-go/pkg/errors"
)

// VIPStore expõe o cadastro de hóspedes VIP
type VIPStore interface {
	Add(ctx context.Context, guest *model.VIPGuest) error
	List(ctx context.Context) ([]*model.VIPGuest, error)
	Remove(ctx context.Context, email string) error
}

// VIPHandler implementa os handlers do cadastro de VIPs
type VIPHandler struct {
	store  VIPStore
	logger *zap.Logger
}

// NewVIPHandler cria um novo handler de VIPs
func NewVIPHandler(store VIPStore, logger *zap.Logger) *VIPHandler {
	return &VIPHandler{store: store, logger: logger}
}

// AddVIPRequest é o corpo do cadastro de um VIP
type AddVIPRequest struct {
	Email   string `json:"email" binding:"required,email"`
	Name    string `json:"name"`
	Company string `json:"company"`
	Tier    string `json:"tier"`
	Notes   string `json:"notes"`
}

// AddVIP cadastra ou atualiza um hóspede VIP
func (h *VIPHandler) AddVIP(c *gin.Context) {
	var req AddVIPRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, h.logger, apierrors.BadRequest("Dados inválidos: "+err.Error(), err))
		return
	}

	guest := &model.VIPGuest{
		Email:   req.Email,
		Name:    req.Name,
		Company: req.Company,
		Tier:    req.Tier,
		Notes:   req.Notes,
	}
	if err := h.store.Add(c.Request.Context(), guest); err != nil {
		h.logger.Error("Falha ao cadastrar VIP", zap.String("email", req.Email), zap.Error(err))
		respondError(c, nil, apierrors.InternalServer("Falha ao cadastrar VIP", err))
		return
	}

	c.JSON(http.StatusCreated, gin.H{"message": "VIP cadastrado", "email": guest.Email})
}

// ListVIPs lista todos os VIPs cadastrados
func (h *VIPHandler) ListVIPs(c *gin.Context) {
	guests, err := h.store.List(c.Request.Context())
	if err != nil {
		respondError(c, h.logger, apierrors.InternalServer("Falha ao listar VIPs", err))
		return
	}
	c.JSON(http.StatusOK, gin.H{"vips": guests, "count": len(guests)})
}

// RemoveVIP exclui um VIP pelo email
func (h *VIPHandler) RemoveVIP(c *gin.Context) {
	email := c.Param("email")
	if err := h.store.Remove(c.Request.Context(), email); err != nil {
		respondError(c, h.logger, apierrors.NotFound("VIP", err))
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "VIP removido", "email": email})
}
