package model

import "time"

// Status possíveis de um EmailRecord no fluxo de trabalho
const (
	StatusDraftCreated  = "draft_created"
	StatusNoReplyNeeded = "no_reply_needed"
	StatusSent          = "sent"
	StatusRejected      = "rejected"
	StatusEscalated     = "escalated"
	StatusFailed        = "failed"
)

// EmailRecord é o registro completo de um email processado pela pipeline:
// a mensagem original do hóspede, as saídas dos agentes e o estado do
// fluxo de aprovação pela equipe.
type EmailRecord struct {
	ID        uint   `gorm:"primaryKey;autoIncrement" json:"id"`
	MessageID string `gorm:"uniqueIndex;size:255;not null" json:"message_id"`
	ThreadID  string `gorm:"index;size:255" json:"thread_id,omitempty"`
	FromEmail string `gorm:"size:255" json:"from_email"`
	FromName  string `gorm:"size:255" json:"from_name,omitempty"`
	Subject   string `gorm:"type:text" json:"subject"`
	Body      string `gorm:"type:text" json:"body"`

	ReceivedAt  *time.Time `json:"received_at,omitempty"`
	ProcessedAt time.Time  `json:"processed_at"`

	// Saídas do classificador de intenção
	Intent          string  `gorm:"size:100" json:"intent,omitempty"`
	SecondaryIntent string  `gorm:"size:100" json:"secondary_intent,omitempty"`
	Confidence      float64 `json:"confidence"`
	Language        string  `gorm:"size:10" json:"language,omitempty"`
	Urgency         string  `gorm:"size:20" json:"urgency,omitempty"`

	// Saídas dos demais agentes (documentos JSON)
	Entities  JSONMap `gorm:"type:text" json:"entities,omitempty"`
	Policy    JSONMap `gorm:"type:text" json:"policy,omitempty"`
	Risk      JSONMap `gorm:"type:text" json:"risk,omitempty"`
	RiskScore float64 `gorm:"default:0" json:"risk_score"`

	// Rascunho de resposta gerado
	DraftSubject string `gorm:"type:text" json:"draft_subject,omitempty"`
	DraftBody    string `gorm:"type:text" json:"draft_body,omitempty"`

	// Estado do fluxo de aprovação
	Status                  string     `gorm:"size:50;default:draft_created;index" json:"status"`
	ApprovedBy              string     `gorm:"size:100" json:"approved_by,omitempty"`
	ApprovedAt              *time.Time `json:"approved_at,omitempty"`
	SentAt                  *time.Time `json:"sent_at,omitempty"`
	RejectionReason         string     `gorm:"type:text" json:"rejection_reason,omitempty"`
	RequiresManagerApproval bool       `gorm:"default:false" json:"requires_manager_approval"`

	// Rastreamento de receita
	RevenueAttributed float64 `gorm:"default:0" json:"revenue_attributed"`
	BookingReference  string  `gorm:"size:100" json:"booking_reference,omitempty"`

	// Versão do prompt para testes A/B
	PromptVersion string `gorm:"size:20;default:v1" json:"prompt_version,omitempty"`

	AuditLogs []AuditLog `gorm:"foreignKey:EmailRecordID" json:"-"`
}

// TableName define o nome da tabela
func (EmailRecord) TableName() string {
	return "email_records"
}

// AuditLog registra cada ação da equipe sobre um registro de email
type AuditLog struct {
	ID            uint      `gorm:"primaryKey;autoIncrement" json:"id"`
	EmailRecordID uint      `gorm:"index" json:"email_record_id"`
	Action        string    `gorm:"size:100" json:"action"` // approved_and_sent | rejected | escalated | edited
	PerformedBy   string    `gorm:"size:100" json:"performed_by"`
	Timestamp     time.Time `json:"timestamp"`
	Notes         string    `gorm:"type:text" json:"notes,omitempty"`
	DiffChars     int       `json:"diff_chars,omitempty"` // quantos caracteres a equipe alterou do rascunho
}

// TableName define o nome da tabela
func (AuditLog) TableName() string {
	return "audit_logs"
}
