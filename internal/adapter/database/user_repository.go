package database

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"github.com/das-elb/email-agent-go/internal/domain/model"
)

// ErrInvalidCredentials é retornado quando usuário ou senha não conferem
var ErrInvalidCredentials = errors.New("credenciais inválidas")

// UserRepository persiste os usuários da equipe que acessam o dashboard
type UserRepository struct {
	db *gorm.DB
}

// NewUserRepository cria o repositório de usuários
func NewUserRepository(db *gorm.DB) *UserRepository {
	return &UserRepository{db: db}
}

// CreateUser cadastra um membro da equipe com senha criptografada
func (r *UserRepository) CreateUser(ctx context.Context, username, password, email, role string) (*model.User, error) {
	if role == "" {
		role = "staff"
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("falha ao criptografar senha: %w", err)
	}

	entity := model.UserEntity{
		ID:       uuid.NewString(),
		Username: username,
		Password: string(hash),
		Email:    email,
		Role:     role,
	}

	if err := r.db.WithContext(ctx).Create(&entity).Error; err != nil {
		return nil, fmt.Errorf("falha ao criar usuário: %w", err)
	}

	return &model.User{
		ID:       entity.ID,
		Username: entity.Username,
		Role:     entity.Role,
		Email:    entity.Email,
	}, nil
}

// GetUserByCredentials valida usuário e senha e devolve o usuário
func (r *UserRepository) GetUserByCredentials(ctx context.Context, username, password string) (*model.User, error) {
	var user model.UserEntity

	if err := r.db.WithContext(ctx).Where("username = ?", username).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(password)); err != nil {
		return nil, ErrInvalidCredentials
	}

	return &model.User{
		ID:       user.ID,
		Username: user.Username,
		Role:     user.Role,
		Email:    user.Email,
	}, nil
}

// GetUserByID busca um usuário pelo identificador
func (r *UserRepository) GetUserByID(ctx context.Context, id string) (*model.User, error) {
	var user model.UserEntity
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errors.New("usuário não encontrado")
		}
		return nil, err
	}

	return &model.User{
		ID:       user.ID,
		Username: user.Username,
		Role:     user.Role,
		Email:    user.Email,
	}, nil
}

// ListUsers lista todos os usuários cadastrados
func (r *UserRepository) ListUsers(ctx context.Context) ([]*model.User, error) {
	var entities []model.UserEntity
	if err := r.db.WithContext(ctx).Order("username").Find(&entities).Error; err != nil {
		return nil, err
	}

	users := make([]*model.User, 0, len(entities))
	for _, e := range entities {
		users = append(users, &model.User{
			ID:       e.ID,
			Username: e.Username,
			Role:     e.Role,
			Email:    e.Email,
		})
	}
	return users, nil
}
