package database

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"

	"github.com/das-elb/email-agent-go/internal/domain/model"
)

// ErrRecordNotFound é retornado quando um registro de email não existe
var ErrRecordNotFound = errors.New("registro de email não encontrado")

// EmailRepository persiste os registros de emails processados e o
// histórico de auditoria das ações da equipe.
type EmailRepository struct {
	db *gorm.DB
}

// NewEmailRepository cria o repositório de emails
func NewEmailRepository(db *gorm.DB) *EmailRepository {
	return &EmailRepository{db: db}
}

// SaveRecord grava o resultado da pipeline. Quando updateID é diferente
// de zero o registro existente é atualizado no lugar (reprocessamento),
// preservando o mesmo ID para o dashboard.
func (r *EmailRepository) SaveRecord(ctx context.Context, record *model.EmailRecord, updateID uint) (*model.EmailRecord, error) {
	if updateID != 0 {
		record.ID = updateID
		result := r.db.WithContext(ctx).Model(&model.EmailRecord{}).
			Where("id = ?", updateID).
			Updates(map[string]interface{}{
				"processed_at":              record.ProcessedAt,
				"intent":                    record.Intent,
				"secondary_intent":          record.SecondaryIntent,
				"confidence":                record.Confidence,
				"language":                  record.Language,
				"urgency":                   record.Urgency,
				"entities":                  record.Entities,
				"policy":                    record.Policy,
				"risk":                      record.Risk,
				"risk_score":                record.RiskScore,
				"draft_subject":             record.DraftSubject,
				"draft_body":                record.DraftBody,
				"status":                    record.Status,
				"requires_manager_approval": record.RequiresManagerApproval,
				"prompt_version":            record.PromptVersion,
			})
		if result.Error != nil {
			return nil, fmt.Errorf("falha ao atualizar registro %d: %w", updateID, result.Error)
		}
		if result.RowsAffected == 0 {
			return nil, ErrRecordNotFound
		}
		return r.GetByID(ctx, updateID)
	}

	if err := r.db.WithContext(ctx).Create(record).Error; err != nil {
		return nil, fmt.Errorf("falha ao gravar registro de email: %w", err)
	}
	return record, nil
}

// GetByID busca um registro pelo identificador, com o histórico de auditoria
func (r *EmailRepository) GetByID(ctx context.Context, id uint) (*model.EmailRecord, error) {
	var record model.EmailRecord
	err := r.db.WithContext(ctx).Preload("AuditLogs").First(&record, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrRecordNotFound
		}
		return nil, err
	}
	return &record, nil
}

// List devolve registros ordenados do mais recente ao mais antigo,
// com filtros opcionais por status e intenção.
func (r *EmailRepository) List(ctx context.Context, status, intent string, limit, offset int) ([]*model.EmailRecord, error) {
	if limit <= 0 || limit > 200 {
		limit = 50
	}

	query := r.db.WithContext(ctx).Model(&model.EmailRecord{})
	if status != "" {
		query = query.Where("status = ?", status)
	}
	if intent != "" {
		query = query.Where("intent = ?", intent)
	}

	var records []*model.EmailRecord
	err := query.Order("received_at DESC").Limit(limit).Offset(offset).Find(&records).Error
	if err != nil {
		return nil, err
	}
	return records, nil
}

// IsProcessed informa se um message-id já passou pela pipeline
func (r *EmailRepository) IsProcessed(ctx context.Context, messageID string) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&model.EmailRecord{}).
		Where("message_id = ?", messageID).
		Count(&count).Error
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

// MarkSent marca um rascunho como aprovado e enviado, gravando quem
// aprovou e o corpo final (possivelmente editado pela equipe).
func (r *EmailRepository) MarkSent(ctx context.Context, id uint, approvedBy, finalBody string, revenue float64) error {
	now := time.Now()
	updates := map[string]interface{}{
		"status":      model.StatusSent,
		"approved_by": approvedBy,
		"approved_at": &now,
		"sent_at":     &now,
	}
	if finalBody != "" {
		updates["draft_body"] = finalBody
	}
	if revenue > 0 {
		updates["revenue_attributed"] = revenue
	}
	return r.updateByID(ctx, id, updates)
}

// MarkRejected marca um rascunho como rejeitado pela equipe
func (r *EmailRepository) MarkRejected(ctx context.Context, id uint, rejectedBy, reason string) error {
	return r.updateByID(ctx, id, map[string]interface{}{
		"status":           model.StatusRejected,
		"approved_by":      rejectedBy,
		"rejection_reason": reason,
	})
}

// MarkEscalated marca um registro como escalado para a gerência
func (r *EmailRepository) MarkEscalated(ctx context.Context, id uint, escalatedBy string) error {
	return r.updateByID(ctx, id, map[string]interface{}{
		"status":      model.StatusEscalated,
		"approved_by": escalatedBy,
	})
}

// UpdateDraft substitui o rascunho de resposta de um registro
func (r *EmailRepository) UpdateDraft(ctx context.Context, id uint, subject, body string) error {
	return r.updateByID(ctx, id, map[string]interface{}{
		"draft_subject": subject,
		"draft_body":    body,
	})
}

func (r *EmailRepository) updateByID(ctx context.Context, id uint, updates map[string]interface{}) error {
	result := r.db.WithContext(ctx).Model(&model.EmailRecord{}).
		Where("id = ?", id).
		Updates(updates)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrRecordNotFound
	}
	return nil
}

// AddAuditLog registra uma ação da equipe sobre um registro
func (r *EmailRepository) AddAuditLog(ctx context.Context, log *model.AuditLog) error {
	if log.Timestamp.IsZero() {
		log.Timestamp = time.Now()
	}
	return r.db.WithContext(ctx).Create(log).Error
}

// StatusCount agrupa a contagem de registros por status
type StatusCount struct {
	Status string `json:"status"`
	Count  int64  `json:"count"`
}

// IntentCount agrupa a contagem de registros por intenção
type IntentCount struct {
	Intent string `json:"intent"`
	Count  int64  `json:"count"`
}

// AnalyticsSummary é o resumo agregado exibido no dashboard
type AnalyticsSummary struct {
	TotalEmails     int64         `json:"total_emails"`
	ByStatus        []StatusCount `json:"by_status"`
	ByIntent        []IntentCount `json:"by_intent"`
	TotalRevenue    float64       `json:"total_revenue"`
	AverageRisk     float64       `json:"average_risk"`
	PendingApproval int64         `json:"pending_approval"`
}

// Summary calcula as métricas agregadas dos registros processados
func (r *EmailRepository) Summary(ctx context.Context) (*AnalyticsSummary, error) {
	summary := &AnalyticsSummary{}
	db := r.db.WithContext(ctx).Model(&model.EmailRecord{})

	if err := db.Count(&summary.TotalEmails).Error; err != nil {
		return nil, err
	}

	err := r.db.WithContext(ctx).Model(&model.EmailRecord{}).
		Select("status, count(*) as count").
		Group("status").
		Scan(&summary.ByStatus).Error
	if err != nil {
		return nil, err
	}

	err = r.db.WithContext(ctx).Model(&model.EmailRecord{}).
		Select("intent, count(*) as count").
		Where("intent <> ''").
		Group("intent").
		Order("count DESC").
		Scan(&summary.ByIntent).Error
	if err != nil {
		return nil, err
	}

	row := r.db.WithContext(ctx).Model(&model.EmailRecord{}).
		Select("coalesce(sum(revenue_attributed), 0), coalesce(avg(risk_score), 0)").
		Row()
	if err := row.Scan(&summary.TotalRevenue, &summary.AverageRisk); err != nil {
		return nil, err
	}

	for _, sc := range summary.ByStatus {
		if sc.Status == model.StatusDraftCreated {
			summary.PendingApproval = sc.Count
		}
	}

	return summary, nil
}

// RecentSent devolve os corpos das respostas enviadas mais recentes,
// usados como referência pela busca de respostas similares.
func (r *EmailRepository) RecentSent(ctx context.Context, limit int) ([]*model.EmailRecord, error) {
	if limit <= 0 {
		limit = 50
	}
	var records []*model.EmailRecord
	err := r.db.WithContext(ctx).
		Where("status = ?", model.StatusSent).
		Order("sent_at DESC").
		Limit(limit).
		Find(&records).Error
	if err != nil {
		return nil, err
	}
	return records, nil
}
