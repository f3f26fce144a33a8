package database

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"gorm.io/gorm"

	"github.com/das-elb/email-agent-go/internal/domain/model"
)

// VIPRepository mantém o cadastro de hóspedes VIP
type VIPRepository struct {
	db *gorm.DB
}

// NewVIPRepository cria o repositório de VIPs
func NewVIPRepository(db *gorm.DB) *VIPRepository {
	return &VIPRepository{db: db}
}

// Lookup busca um VIP pelo email. Devolve nil quando o remetente não
// está no cadastro, sem erro.
func (r *VIPRepository) Lookup(ctx context.Context, email string) (*model.VIPInfo, error) {
	if email == "" {
		return nil, nil
	}

	var guest model.VIPGuest
	err := r.db.WithContext(ctx).
		Where("lower(email) = ?", strings.ToLower(strings.TrimSpace(email))).
		First(&guest).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}

	return &model.VIPInfo{
		Name:    guest.Name,
		Tier:    guest.Tier,
		Company: guest.Company,
	}, nil
}

// Add cadastra ou atualiza um hóspede VIP pelo email
func (r *VIPRepository) Add(ctx context.Context, guest *model.VIPGuest) error {
	guest.Email = strings.ToLower(strings.TrimSpace(guest.Email))
	if guest.Email == "" {
		return errors.New("email do VIP é obrigatório")
	}

	var existing model.VIPGuest
	err := r.db.WithContext(ctx).Where("email = ?", guest.Email).First(&existing).Error
	if err == nil {
		guest.ID = existing.ID
		guest.AddedAt = existing.AddedAt
		return r.db.WithContext(ctx).Save(guest).Error
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return err
	}

	if err := r.db.WithContext(ctx).Create(guest).Error; err != nil {
		return fmt.Errorf("falha ao cadastrar VIP: %w", err)
	}
	return nil
}

// List lista todos os VIPs cadastrados
func (r *VIPRepository) List(ctx context.Context) ([]*model.VIPGuest, error) {
	var guests []*model.VIPGuest
	if err := r.db.WithContext(ctx).Order("email").Find(&guests).Error; err != nil {
		return nil, err
	}
	return guests, nil
}

// Remove exclui um VIP pelo email
func (r *VIPRepository) Remove(ctx context.Context, email string) error {
	result := r.db.WithContext(ctx).
		Where("lower(email) = ?", strings.ToLower(strings.TrimSpace(email))).
		Delete(&model.VIPGuest{})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return errors.New("VIP não encontrado")
	}
	return nil
}
