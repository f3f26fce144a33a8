package http

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/das-elb/email-agent-go/internal/adapter/database"
	"github.com/das-elb/email-agent-go/internal/agents"
	"github.com/das-elb/email-agent-go/internal/domain/model"
	"github.com/das-elb/email-agent-go/internal/infra/metrics"
	"github.com/das-elb/email-agent-go/internal/poller"
	apierrors "github.com/das-elb/email-agent-go/pkg/errors"
)

// EmailStore expõe as operações de persistência usadas pelo handler
type EmailStore interface {
	GetByID(ctx context.Context, id uint) (*model.EmailRecord, error)
	List(ctx context.Context, status, intent string, limit, offset int) ([]*model.EmailRecord, error)
	MarkSent(ctx context.Context, id uint, approvedBy, finalBody string, revenue float64) error
	MarkRejected(ctx context.Context, id uint, rejectedBy, reason string) error
	MarkEscalated(ctx context.Context, id uint, escalatedBy string) error
	UpdateDraft(ctx context.Context, id uint, subject, body string) error
	AddAuditLog(ctx context.Context, log *model.AuditLog) error
}

// Reprocessor reexecuta a pipeline para um e-mail
type Reprocessor interface {
	Process(ctx context.Context, email model.InboundEmail) (*model.EmailRecord, error)
}

// ReplySender envia a resposta aprovada pelo SMTP do hotel
type ReplySender interface {
	SendReply(ctx context.Context, to, subject, body, inReplyTo string) error
}

// Escalator encaminha um registro para a gerência
type Escalator interface {
	SendEscalationEmail(ctx context.Context, to, originalSubject, fromEmail, reason string, recordID uint) error
}

// DraftRefiner regenera um rascunho seguindo instruções da equipe
type DraftRefiner interface {
	Refine(ctx context.Context, originalSubject, originalBody, draftSubject, draftBody, instructions, language string) (*agents.Draft, error)
}

// Importer dispara ciclos de importação da caixa de entrada
type Importer interface {
	PollOnce(ctx context.Context)
	ImportAll(ctx context.Context, maxPerFolder, sinceDays int) poller.ImportResult
}

// EmailHandler implementa os handlers do fluxo de aprovação de emails
type EmailHandler struct {
	store        EmailStore
	orchestrator Reprocessor
	sender       ReplySender
	escalator    Escalator
	refiner      DraftRefiner
	importer     Importer
	escalationTo string
	metrics      *metrics.AgentMetrics
	logger       *zap.Logger
}

// NewEmailHandler cria um novo handler de emails
func NewEmailHandler(store EmailStore, orchestrator Reprocessor, sender ReplySender, escalator Escalator, refiner DraftRefiner, importer Importer, escalationTo string, agentMetrics *metrics.AgentMetrics, logger *zap.Logger) *EmailHandler {
	return &EmailHandler{
		store:        store,
		orchestrator: orchestrator,
		sender:       sender,
		escalator:    escalator,
		refiner:      refiner,
		importer:     importer,
		escalationTo: escalationTo,
		metrics:      agentMetrics,
		logger:       logger,
	}
}

// ListEmails lista os registros processados, com filtros opcionais
func (h *EmailHandler) ListEmails(c *gin.Context) {
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "50"))
	offset, _ := strconv.Atoi(c.DefaultQuery("offset", "0"))

	records, err := h.store.List(c.Request.Context(), c.Query("status"), c.Query("intent"), limit, offset)
	if err != nil {
		respondError(c, h.logger, apierrors.InternalServer("Falha ao listar emails", err))
		return
	}

	c.JSON(http.StatusOK, gin.H{"emails": records, "count": len(records)})
}

// GetEmail devolve um registro com o histórico de auditoria
func (h *EmailHandler) GetEmail(c *gin.Context) {
	record, ok := h.findRecord(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, record)
}

// ApproveRequest é o corpo da aprovação de um rascunho
type ApproveRequest struct {
	EditedSubject string  `json:"edited_subject"`
	EditedBody    string  `json:"edited_body"`
	Revenue       float64 `json:"revenue"`
}

// ApproveEmail aprova um rascunho e envia a resposta ao hóspede.
// Registros rejeitados ou escalados podem ser aprovados em
// reconsideração; apenas respostas já enviadas são barradas.
func (h *EmailHandler) ApproveEmail(c *gin.Context) {
	record, ok := h.findRecord(c)
	if !ok {
		return
	}

	if record.Status == model.StatusSent {
		respondError(c, h.logger, apierrors.Conflict("Resposta já enviada para este registro", nil))
		return
	}

	var req ApproveRequest
	if err := c.ShouldBindJSON(&req); err != nil && err.Error() != "EOF" {
		respondError(c, h.logger, apierrors.BadRequest("Dados inválidos: "+err.Error(), err))
		return
	}

	body := record.DraftBody
	diffChars := 0
	if req.EditedBody != "" {
		diffChars = lenDiff(record.DraftBody, req.EditedBody)
		body = req.EditedBody
	}

	subject := record.DraftSubject
	if req.EditedSubject != "" {
		subject = req.EditedSubject
	}
	if subject == "" {
		subject = "Re: " + record.Subject
	}

	if err := h.sender.SendReply(c.Request.Context(), record.FromEmail, subject, body, record.MessageID); err != nil {
		h.logger.Error("Falha ao enviar resposta aprovada",
			zap.Uint("record_id", record.ID), zap.Error(err))
		respondError(c, nil, apierrors.New(http.StatusBadGateway, "Falha ao enviar email: "+err.Error(), err))
		return
	}

	performedBy := currentUsername(c)
	if err := h.store.MarkSent(c.Request.Context(), record.ID, performedBy, body, req.Revenue); err != nil {
		h.logger.Error("Resposta enviada mas falha ao atualizar registro",
			zap.Uint("record_id", record.ID), zap.Error(err))
		respondError(c, nil, apierrors.InternalServer("Email enviado, mas falha ao atualizar registro", err))
		return
	}

	h.audit(c, record.ID, "approved_and_sent", performedBy, "", diffChars)
	if h.metrics != nil {
		h.metrics.DraftSent(record.Intent)
	}

	c.JSON(http.StatusOK, gin.H{"message": "Resposta aprovada e enviada", "id": record.ID})
}

// RejectRequest é o corpo da rejeição de um rascunho
type RejectRequest struct {
	Reason string `json:"reason"`
}

// RejectEmail descarta um rascunho
func (h *EmailHandler) RejectEmail(c *gin.Context) {
	record, ok := h.findRecord(c)
	if !ok {
		return
	}

	var req RejectRequest
	if err := c.ShouldBindJSON(&req); err != nil && err.Error() != "EOF" {
		respondError(c, h.logger, apierrors.BadRequest("Dados inválidos: "+err.Error(), err))
		return
	}

	performedBy := currentUsername(c)
	if err := h.store.MarkRejected(c.Request.Context(), record.ID, performedBy, req.Reason); err != nil {
		respondError(c, h.logger, apierrors.InternalServer("Falha ao rejeitar rascunho", err))
		return
	}

	h.audit(c, record.ID, "rejected", performedBy, req.Reason, 0)
	c.JSON(http.StatusOK, gin.H{"message": "Rascunho rejeitado", "id": record.ID})
}

// EscalateRequest é o corpo do escalonamento de um registro
type EscalateRequest struct {
	Reason string `json:"reason"`
}

// EscalateEmail encaminha o registro para a gerência por email
func (h *EmailHandler) EscalateEmail(c *gin.Context) {
	record, ok := h.findRecord(c)
	if !ok {
		return
	}

	var req EscalateRequest
	if err := c.ShouldBindJSON(&req); err != nil && err.Error() != "EOF" {
		respondError(c, h.logger, apierrors.BadRequest("Dados inválidos: "+err.Error(), err))
		return
	}

	if h.escalationTo != "" {
		err := h.escalator.SendEscalationEmail(c.Request.Context(), h.escalationTo, record.Subject, record.FromEmail, req.Reason, record.ID)
		if err != nil {
			h.logger.Error("Falha ao enviar email de escalonamento",
				zap.Uint("record_id", record.ID), zap.Error(err))
		}
	}

	performedBy := currentUsername(c)
	if err := h.store.MarkEscalated(c.Request.Context(), record.ID, performedBy); err != nil {
		respondError(c, h.logger, apierrors.InternalServer("Falha ao escalar registro", err))
		return
	}

	h.audit(c, record.ID, "escalated", performedBy, req.Reason, 0)
	c.JSON(http.StatusOK, gin.H{"message": "Registro escalado para a gerência", "id": record.ID})
}

// RetryEmail reexecuta a pipeline sobre o email original, atualizando o
// registro existente no lugar.
func (h *EmailHandler) RetryEmail(c *gin.Context) {
	record, ok := h.findRecord(c)
	if !ok {
		return
	}

	email := model.InboundEmail{
		MessageID:  record.MessageID,
		ThreadID:   record.ThreadID,
		FromEmail:  record.FromEmail,
		FromName:   record.FromName,
		Subject:    record.Subject,
		Body:       record.Body,
		ReceivedAt: record.ReceivedAt,
		UpdateID:   record.ID,
	}

	updated, err := h.orchestrator.Process(c.Request.Context(), email)
	if err != nil {
		h.logger.Error("Falha ao reprocessar email", zap.Uint("record_id", record.ID), zap.Error(err))
		respondError(c, nil, apierrors.InternalServer("Falha ao reprocessar email", err))
		return
	}

	h.audit(c, record.ID, "reprocessed", currentUsername(c), "", 0)
	c.JSON(http.StatusOK, updated)
}

// RefineRequest são as instruções da equipe para regenerar o rascunho
type RefineRequest struct {
	Instructions string `json:"instructions" binding:"required"`
}

// RefineDraft regenera o rascunho seguindo instruções da equipe
func (h *EmailHandler) RefineDraft(c *gin.Context) {
	record, ok := h.findRecord(c)
	if !ok {
		return
	}

	var req RefineRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, h.logger, apierrors.BadRequest("Dados inválidos: "+err.Error(), err))
		return
	}

	draft, err := h.refiner.Refine(c.Request.Context(), record.Subject, record.Body,
		record.DraftSubject, record.DraftBody, req.Instructions, record.Language)
	if err != nil {
		h.logger.Error("Falha ao refinar rascunho", zap.Uint("record_id", record.ID), zap.Error(err))
		respondError(c, nil, apierrors.InternalServer("Falha ao refinar rascunho", err))
		return
	}

	if err := h.store.UpdateDraft(c.Request.Context(), record.ID, draft.Subject, draft.BodyText); err != nil {
		respondError(c, h.logger, apierrors.InternalServer("Falha ao gravar rascunho refinado", err))
		return
	}

	h.audit(c, record.ID, "refined", currentUsername(c), req.Instructions, 0)
	c.JSON(http.StatusOK, gin.H{
		"id":            record.ID,
		"draft_subject": draft.Subject,
		"draft_body":    draft.BodyText,
	})
}

// TriggerPoll dispara um ciclo de polling imediato em segundo plano
func (h *EmailHandler) TriggerPoll(c *gin.Context) {
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Minute)
		defer cancel()
		h.importer.PollOnce(ctx)
	}()
	c.JSON(http.StatusAccepted, gin.H{"message": "Ciclo de polling iniciado"})
}

// ImportAll importa o histórico das pastas configuradas em segundo plano
func (h *EmailHandler) ImportAll(c *gin.Context) {
	maxPerFolder, _ := strconv.Atoi(c.DefaultQuery("max_per_folder", "200"))
	sinceDays, _ := strconv.Atoi(c.DefaultQuery("since_days", "365"))

	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), time.Hour)
		defer cancel()
		result := h.importer.ImportAll(ctx, maxPerFolder, sinceDays)
		h.logger.Info("Importação de histórico concluída",
			zap.Int("importados", result.Imported),
			zap.Int("pulados", result.Skipped),
			zap.Int("falhas", result.Failed))
	}()

	c.JSON(http.StatusAccepted, gin.H{"message": "Importação de histórico iniciada em segundo plano"})
}

func (h *EmailHandler) findRecord(c *gin.Context) (*model.EmailRecord, bool) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		respondError(c, h.logger, apierrors.BadRequest("ID inválido", err))
		return nil, false
	}

	record, err := h.store.GetByID(c.Request.Context(), uint(id))
	if err != nil {
		if err == database.ErrRecordNotFound {
			respondError(c, h.logger, apierrors.NotFound("Registro", err))
			return nil, false
		}
		h.logger.Error("Falha ao buscar registro", zap.Uint64("id", id), zap.Error(err))
		respondError(c, nil, apierrors.InternalServer("Falha ao buscar registro", err))
		return nil, false
	}
	return record, true
}

func (h *EmailHandler) audit(c *gin.Context, recordID uint, action, performedBy, notes string, diffChars int) {
	err := h.store.AddAuditLog(c.Request.Context(), &model.AuditLog{
		EmailRecordID: recordID,
		Action:        action,
		PerformedBy:   performedBy,
		Notes:         notes,
		DiffChars:     diffChars,
	})
	if err != nil {
		h.logger.Warn("Falha ao gravar auditoria", zap.Uint("record_id", recordID), zap.Error(err))
	}
}

func currentUsername(c *gin.Context) string {
	if userVal, exists := c.Get("user"); exists {
		if user, ok := userVal.(*model.User); ok {
			return user.Username
		}
	}
	return "unknown"
}

// lenDiff aproxima quantos caracteres a equipe alterou no rascunho
func lenDiff(original, edited string) int {
	diff := len(edited) - len(original)
	if diff < 0 {
		diff = -diff
	}
	if diff == 0 && original != edited {
		diff = 1
	}
	return diff
}
