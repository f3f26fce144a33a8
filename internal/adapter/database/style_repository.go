package database

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"github.com/das-elb/email-agent-go/internal/domain/model"
)

// StyleRepository guarda os perfis de estilo aprendidos dos emails enviados
type StyleRepository struct {
	db *gorm.DB
}

// NewStyleRepository cria o repositório de perfis de estilo
func NewStyleRepository(db *gorm.DB) *StyleRepository {
	return &StyleRepository{db: db}
}

// SaveProfile grava um novo perfil aprendido
func (r *StyleRepository) SaveProfile(ctx context.Context, profile *model.StyleProfile) error {
	return r.db.WithContext(ctx).Create(profile).Error
}

// LatestProfile devolve o perfil mais recente, ou nil quando o job de
// aprendizado ainda não rodou.
func (r *StyleRepository) LatestProfile(ctx context.Context) (*model.StyleProfile, error) {
	var profile model.StyleProfile
	err := r.db.WithContext(ctx).Order("learned_at DESC").First(&profile).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &profile, nil
}

// UpdateInjectedPrompt permite à equipe ajustar manualmente o texto
// injetado no prompt do redator sem reaprender o perfil.
func (r *StyleRepository) UpdateInjectedPrompt(ctx context.Context, id uint, prompt string) error {
	result := r.db.WithContext(ctx).Model(&model.StyleProfile{}).
		Where("id = ?", id).
		Update("injected_prompt", prompt)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return errors.New("perfil de estilo não encontrado")
	}
	return nil
}
