// Package integrations alerta a equipe do hotel sobre e-mails de alta
// prioridade, via WhatsApp (Twilio) e e-mail de escalonamento.
package integrations

import (
	"context"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/twilio/twilio-go"
	twilioapi "github.com/twilio/twilio-go/rest/api/v2010"
	"go.uber.org/zap"

	"github.com/das-elb/email-agent-go/internal/domain/model"
	"github.com/das-elb/email-agent-go/internal/infra/metrics"
	"github.com/das-elb/email-agent-go/pkg/config"
)

// MailSender envia e-mails via SMTP
type MailSender interface {
	SendReply(ctx context.Context, to, subject, body, inReplyTo string) error
}

// Notifier decide quando e como alertar a equipe
type Notifier struct {
	cfg     config.NotificationsConfig
	twilio  *twilio.RestClient
	sender  MailSender
	metrics *metrics.AgentMetrics
	logger  *zap.Logger
}

// NewNotifier cria o sistema de notificações. O cliente Twilio só é
// montado quando o WhatsApp está habilitado com credenciais completas.
func NewNotifier(cfg config.NotificationsConfig, sender MailSender, m *metrics.AgentMetrics, logger *zap.Logger) *Notifier {
	n := &Notifier{
		cfg:     cfg,
		sender:  sender,
		metrics: m,
		logger:  logger,
	}

	if cfg.WhatsAppEnabled && cfg.TwilioAccountSID != "" && cfg.TwilioAuthToken != "" {
		n.twilio = twilio.NewRestClientWithParams(twilio.ClientParams{
			Username: cfg.TwilioAccountSID,
			Password: cfg.TwilioAuthToken,
		})
	}

	return n
}

// NotifyIfNeeded envia alerta WhatsApp ao gerente quando o e-mail exige
// atenção imediata: notify_staff_immediately, aprovação do gerente ou
// prioridade urgente.
func (n *Notifier) NotifyIfNeeded(ctx context.Context, risk, policy model.JSONMap, subject, fromEmail string, recordID uint) {
	shouldNotify := risk.Bool("notify_staff_immediately") ||
		policy.Bool("requires_manager_approval") ||
		risk.String("recommended_priority") == "urgent"

	if !shouldNotify {
		return
	}

	reason := risk.String("notification_reason")
	if reason == "" {
		reason = policy.String("manager_approval_reason")
	}
	if reason == "" {
		reason = "High-priority email received"
	}

	priority := risk.String("recommended_priority")
	if priority == "" {
		priority = "high"
	}

	var b strings.Builder
	b.WriteString("Das ELB Hotel -- AI Email Alert\n")
	fmt.Fprintf(&b, "Priority: %s\n", strings.ToUpper(priority))
	fmt.Fprintf(&b, "From: %s\n", fromEmail)
	fmt.Fprintf(&b, "Subject: %s\n", truncate(subject, 80))
	fmt.Fprintf(&b, "Reason: %s", reason)
	if revenue := risk.Float("estimated_revenue_eur"); revenue > 0 {
		fmt.Fprintf(&b, "\nEst. Revenue: EUR %.0f", revenue)
	}
	if recordID > 0 {
		fmt.Fprintf(&b, "\nDashboard: /emails/%d", recordID)
	}
	message := b.String()

	if !n.cfg.WhatsAppEnabled {
		n.logger.Info("alerta suprimido, WhatsApp desabilitado",
			zap.String("message", message))
		n.metrics.NotificationSent("whatsapp", "suppressed")
		return
	}

	n.sendWhatsApp(message)
}

// SendEscalationEmail envia um aviso de escalonamento ao gerente via SMTP
func (n *Notifier) SendEscalationEmail(ctx context.Context, to, originalSubject, fromEmail, reason string, recordID uint) error {
	var b strings.Builder
	b.WriteString("Das ELB AI Email Agent -- Escalation Notice\n\n")
	b.WriteString("An incoming email requires your attention:\n\n")
	fmt.Fprintf(&b, "From: %s\n", fromEmail)
	fmt.Fprintf(&b, "Subject: %s\n", originalSubject)
	fmt.Fprintf(&b, "Reason for escalation: %s\n", reason)
	if recordID > 0 {
		fmt.Fprintf(&b, "\nView in dashboard: /emails/%d", recordID)
	}

	subject := "[ESCALATION] " + truncate(originalSubject, 60)
	if err := n.sender.SendReply(ctx, to, subject, b.String(), ""); err != nil {
		n.metrics.NotificationSent("email", "failed")
		return fmt.Errorf("erro ao enviar e-mail de escalonamento: %w", err)
	}

	n.metrics.NotificationSent("email", "ok")
	return nil
}

func (n *Notifier) sendWhatsApp(message string) {
	if n.twilio == nil || n.cfg.ManagerWhatsApp == "" {
		n.logger.Warn("credenciais Twilio incompletas, pulando alerta WhatsApp")
		n.metrics.NotificationSent("whatsapp", "skipped")
		return
	}

	params := &twilioapi.CreateMessageParams{}
	params.SetFrom(n.cfg.TwilioWhatsAppFrom)
	params.SetTo(n.cfg.ManagerWhatsApp)
	params.SetBody(message)

	if _, err := n.twilio.Api.CreateMessage(params); err != nil {
		n.logger.Error("falha na notificação WhatsApp", zap.Error(err))
		n.metrics.NotificationSent("whatsapp", "failed")
		return
	}

	n.logger.Info("alerta WhatsApp enviado", zap.String("to", n.cfg.ManagerWhatsApp))
	n.metrics.NotificationSent("whatsapp", "ok")
}

func truncate(s string, max int) string {
	if utf8.RuneCountInString(s) <= max {
		return s
	}
	return string([]rune(s)[:max])
}
