package auth

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"

	"github.com/das-elb/email-agent-go/internal/domain/model"
	"github.com/das-elb/email-agent-go/pkg/security"
)

// UserRepository define a interface para acesso a dados de usuário
type UserRepository interface {
	GetUserByCredentials(ctx context.Context, username, password string) (*model.User, error)
	GetUserByID(ctx context.Context, id string) (*model.User, error)
}

// AuthService gerencia a autenticação da equipe do dashboard
type AuthService struct {
	keyManager *security.KeyManager
	userRepo   UserRepository
	logger     *zap.Logger
}

// NewAuthService cria um novo serviço de autenticação
func NewAuthService(keyManager *security.KeyManager, userRepo UserRepository, logger *zap.Logger) *AuthService {
	return &AuthService{
		keyManager: keyManager,
		userRepo:   userRepo,
		logger:     logger,
	}
}

// Login autentica um membro da equipe e gera um token JWT
func (s *AuthService) Login(ctx context.Context, username, password string) (string, error) {
	user, err := s.userRepo.GetUserByCredentials(ctx, username, password)
	if err != nil {
		s.logger.Warn("Falha na autenticação", zap.String("username", username), zap.Error(err))
		return "", errors.New("credenciais inválidas")
	}

	// Token com duração de 24 horas
	token, err := s.keyManager.GenerateToken(user.ID, user.Role, 24*time.Hour)
	if err != nil {
		s.logger.Error("Falha ao gerar token", zap.String("user_id", user.ID), zap.Error(err))
		return "", err
	}

	s.logger.Info("Login bem-sucedido", zap.String("user_id", user.ID))
	return token, nil
}

// ValidateToken valida um token JWT e retorna o usuário correspondente
func (s *AuthService) ValidateToken(ctx context.Context, tokenString string) (*model.User, error) {
	claims, err := s.keyManager.VerifyToken(tokenString)
	if err != nil {
		return nil, err
	}

	user, err := s.userRepo.GetUserByID(ctx, claims.UserID)
	if err != nil {
		s.logger.Error("Usuário do token não encontrado", zap.String("user_id", claims.UserID), zap.Error(err))
		return nil, errors.New("usuário inválido")
	}

	return user, nil
}

// IsManager verifica se o usuário pode aprovar escalonamentos e
// rascunhos que exigem aprovação da gerência.
func (s *AuthService) IsManager(user *model.User) bool {
	return user != nil && (user.Role == "manager" || user.Role == "admin")
}
