package http

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/das-elb/email-agent-go/internal/app/auth"
	"github.com/das-elb/email-agent-go/internal/domain/model"
)

// UserStore expõe o cadastro de usuários da equipe
type UserStore interface {
	CreateUser(ctx context.Context, username, password, email, role string) (*model.User, error)
	ListUsers(ctx context.Context) ([]*model.User, error)
}

// UserHandler implementa os handlers de autenticação e cadastro da equipe
type UserHandler struct {
	authService *auth.AuthService
	users       UserStore
	logger      *zap.Logger
}

// NewUserHandler cria um novo handler de usuários
func NewUserHandler(authService *auth.AuthService, users UserStore, logger *zap.Logger) *UserHandler {
	return &UserHandler{
		authService: authService,
		users:       users,
		logger:      logger,
	}
}

// LoginRequest é o corpo do login da equipe
type LoginRequest struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// Login autentica um membro da equipe e devolve um token JWT
func (h *UserHandler) Login(c *gin.Context) {
	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	token, err := h.authService.Login(c.Request.Context(), req.Username, req.Password)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Credenciais inválidas"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"token": token})
}

// RegisterRequest é o corpo do cadastro de um membro da equipe
type RegisterRequest struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required,min=8"`
	Email    string `json:"email" binding:"required,email"`
	Role     string `json:"role"`
}

// RegisterUser cadastra um membro da equipe (restrito à gerência)
func (h *UserHandler) RegisterUser(c *gin.Context) {
	var req RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Error("JSON inválido", zap.Error(err))
		c.JSON(http.StatusBadRequest, gin.H{"error": "Dados inválidos: " + err.Error()})
		return
	}

	user, err := h.users.CreateUser(c.Request.Context(), req.Username, req.Password, req.Email, req.Role)
	if err != nil {
		h.logger.Error("Erro ao criar usuário",
			zap.String("username", req.Username), zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erro ao criar usuário"})
		return
	}

	h.logger.Info("Usuário criado com sucesso",
		zap.String("id", user.ID),
		zap.String("username", user.Username))

	c.JSON(http.StatusCreated, user)
}

// ListUsers lista os membros da equipe cadastrados
func (h *UserHandler) ListUsers(c *gin.Context) {
	users, err := h.users.ListUsers(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Falha ao listar usuários"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"users": users, "count": len(users)})
}
