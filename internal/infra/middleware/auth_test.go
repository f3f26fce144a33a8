package middleware

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/das-elb/email-agent-go/internal/app/auth"
	"github.com/das-elb/email-agent-go/internal/domain/model"
	"github.com/das-elb/email-agent-go/pkg/security"
)

const (
	testJWTSecret       = "segredo-de-teste-com-32-bytes-ok!"
	testDashboardAPIKey = "chave-do-dashboard"
)

type fakeUserRepo struct {
	users map[string]*model.User
}

func (f *fakeUserRepo) GetUserByCredentials(ctx context.Context, username, password string) (*model.User, error) {
	return nil, errors.New("não implementado")
}

func (f *fakeUserRepo) GetUserByID(ctx context.Context, id string) (*model.User, error) {
	user, ok := f.users[id]
	if !ok {
		return nil, errors.New("usuário não encontrado")
	}
	return user, nil
}

type authFixture struct {
	middleware *AuthMiddleware
	keyManager *security.KeyManager
	handlerRan bool
}

func setupAuthFixture(t *testing.T) *authFixture {
	t.Helper()
	gin.SetMode(gin.TestMode)

	logger := zaptest.NewLogger(t)
	keyManager, err := security.NewKeyManager(testJWTSecret, logger)
	require.NoError(t, err)

	repo := &fakeUserRepo{users: map[string]*model.User{
		"staff-1":   {ID: "staff-1", Username: "recepcao", Role: "staff"},
		"manager-1": {ID: "manager-1", Username: "gerente", Role: "manager"},
	}}
	authService := auth.NewAuthService(keyManager, repo, logger)

	return &authFixture{
		middleware: NewAuthMiddleware(authService, testDashboardAPIKey, logger),
		keyManager: keyManager,
	}
}

func (f *authFixture) adminRouter() *gin.Engine {
	router := gin.New()
	router.POST("/api/v1/admin/users", f.middleware.AuthenticateManager, func(c *gin.Context) {
		f.handlerRan = true
		c.JSON(http.StatusCreated, gin.H{"status": "criado"})
	})
	return router
}

func (f *authFixture) token(t *testing.T, userID, role string) string {
	t.Helper()
	token, err := f.keyManager.GenerateToken(userID, role, time.Hour)
	require.NoError(t, err)
	return token
}

func TestAuthenticateManager_ChaveDeAPINaoPassa(t *testing.T) {
	f := setupAuthFixture(t)
	router := f.adminRouter()

	// A chave do dashboard identifica a equipe, não a gerência
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/v1/admin/users", nil)
	req.Header.Set("x-api-key", testDashboardAPIKey)
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusForbidden, w.Code)
	assert.False(t, f.handlerRan, "handler protegido não deve executar sem papel de gerência")
}

func TestAuthenticateManager_TokenDeStaffRecebe403(t *testing.T) {
	f := setupAuthFixture(t)
	router := f.adminRouter()

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/v1/admin/users", nil)
	req.Header.Set("Authorization", "Bearer "+f.token(t, "staff-1", "staff"))
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusForbidden, w.Code)
	assert.False(t, f.handlerRan, "handler protegido não deve executar para staff")
}

func TestAuthenticateManager_GerentePassa(t *testing.T) {
	f := setupAuthFixture(t)
	router := f.adminRouter()

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/v1/admin/users", nil)
	req.Header.Set("Authorization", "Bearer "+f.token(t, "manager-1", "manager"))
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusCreated, w.Code)
	assert.True(t, f.handlerRan)
}

func TestAuthenticateManager_SemCredenciaisRecebe401(t *testing.T) {
	f := setupAuthFixture(t)
	router := f.adminRouter()

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/v1/admin/users", nil)
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.False(t, f.handlerRan)
}

func TestAuthenticate_ChaveDeAPIValidaParaRotasDaEquipe(t *testing.T) {
	f := setupAuthFixture(t)
	router := gin.New()
	router.GET("/api/v1/emails", f.middleware.Authenticate, func(c *gin.Context) {
		userValue, exists := c.Get("user")
		require.True(t, exists)
		user := userValue.(*model.User)
		c.JSON(http.StatusOK, gin.H{"role": user.Role})
	})

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/v1/emails", nil)
	req.Header.Set("x-api-key", testDashboardAPIKey)
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"role":"staff"`)
}

func TestAuthenticate_TokenInvalidoRecebe401(t *testing.T) {
	f := setupAuthFixture(t)
	router := gin.New()
	router.GET("/api/v1/emails", f.middleware.Authenticate, func(c *gin.Context) {
		c.Status(http.StatusOK)
	})

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/v1/emails", nil)
	req.Header.Set("Authorization", "Bearer token-invalido")
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
}
