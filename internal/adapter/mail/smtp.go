package mail

import (
	"context"
	"fmt"

	gomail "github.com/wneessen/go-mail"
	"go.uber.org/zap"

	"github.com/das-elb/email-agent-go/pkg/config"
)

// SMTPSender envia respostas aprovadas via SMTP com STARTTLS
type SMTPSender struct {
	host     string
	port     int
	from     string
	password string
	logger   *zap.Logger
}

// NewSMTPSender cria o remetente SMTP a partir da configuração de email
func NewSMTPSender(cfg *config.MailConfig, logger *zap.Logger) *SMTPSender {
	return &SMTPSender{
		host:     cfg.SMTPHost,
		port:     cfg.SMTPPort,
		from:     cfg.Address,
		password: cfg.Password,
		logger:   logger,
	}
}

// SendReply envia uma resposta em texto puro. Quando inReplyTo é informado,
// os cabeçalhos In-Reply-To e References fazem a resposta aparecer como
// continuação da conversa no cliente do hóspede.
func (s *SMTPSender) SendReply(ctx context.Context, to, subject, body, inReplyTo string) error {
	if s.password == "" {
		return fmt.Errorf("senha SMTP não configurada, envio impossível")
	}

	msg := gomail.NewMsg()
	if err := msg.From(s.from); err != nil {
		return fmt.Errorf("remetente inválido %q: %w", s.from, err)
	}
	if err := msg.To(to); err != nil {
		return fmt.Errorf("destinatário inválido %q: %w", to, err)
	}
	msg.Subject(subject)
	msg.SetBodyString(gomail.TypeTextPlain, body)

	if inReplyTo != "" {
		msg.SetGenHeader(gomail.HeaderInReplyTo, inReplyTo)
		msg.SetGenHeader(gomail.HeaderReferences, inReplyTo)
	}

	client, err := gomail.NewClient(s.host,
		gomail.WithPort(s.port),
		gomail.WithSMTPAuth(gomail.SMTPAuthPlain),
		gomail.WithUsername(s.from),
		gomail.WithPassword(s.password),
		gomail.WithTLSPolicy(gomail.TLSMandatory),
	)
	if err != nil {
		return fmt.Errorf("erro ao criar cliente SMTP: %w", err)
	}

	if err := client.DialAndSendWithContext(ctx, msg); err != nil {
		return fmt.Errorf("erro ao enviar e-mail para %s: %w", to, err)
	}

	s.logger.Info("resposta enviada via SMTP",
		zap.String("to", to),
		zap.String("subject", truncateSubject(subject)))
	return nil
}

func truncateSubject(s string) string {
	if len(s) > 60 {
		return s[:60]
	}
	return s
}
