package middleware

import (
	"crypto/subtle"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/das-elb/email-agent-go/internal/app/auth"
	"github.com/das-elb/email-agent-go/internal/domain/model"
)

// AuthMiddleware gerencia middlewares de autenticação
type AuthMiddleware struct {
	authService     *auth.AuthService
	dashboardAPIKey string
	logger          *zap.Logger
}

// NewAuthMiddleware cria uma nova instância do middleware de autenticação
func NewAuthMiddleware(authService *auth.AuthService, dashboardAPIKey string, logger *zap.Logger) *AuthMiddleware {
	return &AuthMiddleware{
		authService:     authService,
		dashboardAPIKey: dashboardAPIKey,
		logger:          logger,
	}
}

// validateUser valida a chave de API do dashboard ou o token JWT da
// equipe, sem avançar a cadeia de middlewares. Em caso de falha a
// requisição é abortada e (nil, false) é retornado.
func (m *AuthMiddleware) validateUser(c *gin.Context) (*model.User, bool) {
	if apiKey := c.GetHeader("x-api-key"); apiKey != "" {
		if m.dashboardAPIKey != "" &&
			subtle.ConstantTimeCompare([]byte(apiKey), []byte(m.dashboardAPIKey)) == 1 {
			return &model.User{ID: "dashboard", Username: "dashboard", Role: "staff"}, true
		}
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Chave de API inválida"})
		return nil, false
	}

	authHeader := c.GetHeader("Authorization")
	if authHeader == "" {
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Authorization header não fornecido"})
		return nil, false
	}

	tokenString := strings.TrimPrefix(authHeader, "Bearer ")
	if tokenString == authHeader {
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Formato inválido do token"})
		return nil, false
	}

	user, err := m.authService.ValidateToken(c.Request.Context(), tokenString)
	if err != nil {
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Token inválido ou expirado"})
		return nil, false
	}

	return user, true
}

// Authenticate aceita um token JWT da equipe ou a chave de API do
// dashboard no header x-api-key.
func (m *AuthMiddleware) Authenticate(c *gin.Context) {
	if isPublicRoute(c.Request.URL.Path) {
		c.Next()
		return
	}

	user, ok := m.validateUser(c)
	if !ok {
		return
	}

	// Armazena o usuário no contexto para uso posterior
	c.Set("user", user)
	c.Next()
}

// AuthenticateManager exige papel de gerente ou administrador. A
// validação acontece antes de qualquer avanço da cadeia: o handler
// protegido só executa depois da checagem de papel.
func (m *AuthMiddleware) AuthenticateManager(c *gin.Context) {
	user, ok := m.validateUser(c)
	if !ok {
		return
	}

	if !m.authService.IsManager(user) {
		c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "Acesso negado: permissão de gerência necessária"})
		return
	}

	c.Set("user", user)
	c.Next()
}

// isPublicRoute determina se uma rota é pública
func isPublicRoute(path string) bool {
	publicPaths := []string{
		"/health",
		"/metrics",
		"/api/v1/auth/login",
	}

	for _, publicPath := range publicPaths {
		if strings.HasPrefix(path, publicPath) {
			return true
		}
	}

	return false
}
