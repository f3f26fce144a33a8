// Package mail fala IMAP e SMTP com a conta Exchange do hotel na IONOS.
//
// Leitura:  exchange.ionos.eu:993 (SSL/TLS)
// Envio:    smtp.exchange.ionos.eu:587 (STARTTLS, não SSL na 465)
package mail

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/emersion/go-imap"
	"github.com/emersion/go-imap/client"
	"go.uber.org/zap"

	"github.com/das-elb/email-agent-go/internal/domain/model"
	"github.com/das-elb/email-agent-go/pkg/config"
)

// Candidatas à pasta de enviados, em ordem de prioridade. A conta Exchange
// da IONOS em alemão usa "Gesendete Elemente".
var sentFolderCandidates = []string{
	"Gesendete Elemente",
	"Sent Items",
	"Sent",
	"INBOX/Sent",
}

// IMAPClient lê a caixa de entrada e a pasta de enviados do hotel
type IMAPClient struct {
	addr          string
	username      string
	password      string
	importFolders []string
	logger        *zap.Logger
}

// NewIMAPClient cria o cliente IMAP a partir da configuração de email
func NewIMAPClient(cfg *config.MailConfig, logger *zap.Logger) *IMAPClient {
	return &IMAPClient{
		addr:          fmt.Sprintf("%s:%d", cfg.IMAPHost, cfg.IMAPPort),
		username:      cfg.Address,
		password:      cfg.Password,
		importFolders: cfg.ImportFolders,
		logger:        logger,
	}
}

func (c *IMAPClient) dial() (*client.Client, error) {
	conn, err := client.DialTLS(c.addr, nil)
	if err != nil {
		return nil, fmt.Errorf("erro ao conectar ao IMAP %s: %w", c.addr, err)
	}

	if err := conn.Login(c.username, c.password); err != nil {
		conn.Logout()
		return nil, fmt.Errorf("autenticação IMAP falhou para %s: %w", c.username, err)
	}

	return conn, nil
}

// FetchRecent busca os e-mails recentes da INBOX usando filtro SINCE.
//
// Não depende da flag UNSEEN: o Exchange da IONOS marca e-mails como lidos
// quando abertos no Outlook antes do poller vê-los, gerando falsos
// negativos. A deduplicação é feita pela pipeline via message_id.
func (c *IMAPClient) FetchRecent(ctx context.Context, maxResults, sinceDays int) ([]model.InboundEmail, error) {
	conn, err := c.dial()
	if err != nil {
		return nil, err
	}
	defer conn.Logout()

	emails, err := c.fetchFolder(ctx, conn, "INBOX", maxResults, sinceDays)
	if err != nil {
		return nil, err
	}

	c.logger.Info("e-mails recentes buscados",
		zap.Int("count", len(emails)),
		zap.Int("sinceDays", sinceDays))
	return emails, nil
}

// FetchAll varre a INBOX e as subpastas configuradas para a importação
// inicial. Pastas inexistentes são puladas com aviso.
func (c *IMAPClient) FetchAll(ctx context.Context, maxPerFolder, sinceDays int) ([]model.InboundEmail, error) {
	conn, err := c.dial()
	if err != nil {
		return nil, err
	}
	defer conn.Logout()

	folders := c.importFolders
	if len(folders) == 0 {
		folders = []string{"INBOX"}
	}

	var all []model.InboundEmail
	for _, folder := range folders {
		emails, err := c.fetchFolder(ctx, conn, folder, maxPerFolder, sinceDays)
		if err != nil {
			c.logger.Warn("erro ao buscar pasta, pulando",
				zap.String("folder", folder),
				zap.Error(err))
			continue
		}
		c.logger.Info("pasta importada",
			zap.String("folder", folder),
			zap.Int("count", len(emails)))
		all = append(all, emails...)
	}

	c.logger.Info("importação multi-pasta concluída",
		zap.Int("total", len(all)),
		zap.Int("folders", len(folders)))
	return all, nil
}

// FetchSent busca e-mails recentes da pasta de enviados para o aprendizado
// de estilo. Detecta automaticamente o nome da pasta (alemão/inglês).
func (c *IMAPClient) FetchSent(ctx context.Context, maxResults, sinceDays int) ([]model.SentEmail, error) {
	conn, err := c.dial()
	if err != nil {
		return nil, err
	}
	defer conn.Logout()

	folder, err := c.findSentFolder(conn)
	if err != nil {
		return nil, err
	}

	messages, err := c.fetchMessages(ctx, conn, folder, maxResults, sinceDays)
	if err != nil {
		return nil, err
	}

	var sent []model.SentEmail
	for _, msg := range messages {
		// Pular corpos vazios ou só de imagem
		if len(strings.TrimSpace(msg.Body)) < 30 {
			continue
		}
		e := model.SentEmail{
			Subject: msg.Subject,
			To:      msg.ToEmail,
			Body:    msg.Body,
		}
		if msg.Date != nil {
			e.Date = *msg.Date
		}
		sent = append(sent, e)
	}

	c.logger.Info("e-mails enviados buscados",
		zap.String("folder", folder),
		zap.Int("count", len(sent)))
	return sent, nil
}

// findSentFolder tenta as candidatas conhecidas e, como último recurso,
// varre a lista de pastas procurando o atributo \Sent.
func (c *IMAPClient) findSentFolder(conn *client.Client) (string, error) {
	for _, candidate := range sentFolderCandidates {
		if _, err := conn.Select(candidate, true); err == nil {
			c.logger.Info("pasta de enviados aberta", zap.String("folder", candidate))
			return candidate, nil
		}
	}

	mailboxes := make(chan *imap.MailboxInfo, 20)
	done := make(chan error, 1)
	go func() {
		done <- conn.List("", "*", mailboxes)
	}()

	var detected string
	for mbox := range mailboxes {
		if detected != "" {
			continue
		}
		for _, attr := range mbox.Attributes {
			if attr == imap.SentAttr {
				detected = mbox.Name
				break
			}
		}
	}
	if err := <-done; err != nil {
		return "", fmt.Errorf("erro ao listar pastas: %w", err)
	}

	if detected == "" {
		return "", fmt.Errorf("pasta de enviados não encontrada na conta %s", c.username)
	}

	if _, err := conn.Select(detected, true); err != nil {
		return "", fmt.Errorf("erro ao abrir pasta de enviados %q: %w", detected, err)
	}

	c.logger.Info("pasta de enviados detectada automaticamente", zap.String("folder", detected))
	return detected, nil
}

// fetchFolder busca e converte mensagens de uma pasta para InboundEmail
func (c *IMAPClient) fetchFolder(ctx context.Context, conn *client.Client, folder string, maxResults, sinceDays int) ([]model.InboundEmail, error) {
	messages, err := c.fetchMessages(ctx, conn, folder, maxResults, sinceDays)
	if err != nil {
		return nil, err
	}

	emails := make([]model.InboundEmail, 0, len(messages))
	for i, msg := range messages {
		messageID := msg.MessageID
		if messageID == "" {
			messageID = fmt.Sprintf("%s-%d", folder, i)
		}
		emails = append(emails, model.InboundEmail{
			MessageID:  messageID,
			ThreadID:   msg.ThreadID,
			FromEmail:  msg.FromEmail,
			FromName:   msg.FromName,
			Subject:    msg.Subject,
			Body:       msg.Body,
			ReceivedAt: msg.Date,
		})
	}
	return emails, nil
}

// fetchMessages seleciona a pasta em modo somente leitura, filtra por data
// com SINCE e baixa as mensagens mais recentes.
func (c *IMAPClient) fetchMessages(ctx context.Context, conn *client.Client, folder string, maxResults, sinceDays int) ([]*parsedMessage, error) {
	if _, err := conn.Select(folder, true); err != nil {
		return nil, fmt.Errorf("erro ao selecionar pasta %q: %w", folder, err)
	}

	criteria := imap.NewSearchCriteria()
	criteria.Since = time.Now().AddDate(0, 0, -sinceDays)

	ids, err := conn.Search(criteria)
	if err != nil {
		return nil, fmt.Errorf("busca SINCE falhou em %q: %w", folder, err)
	}
	if len(ids) == 0 {
		return nil, nil
	}

	// As mais recentes ficam no fim da lista
	if maxResults > 0 && len(ids) > maxResults {
		ids = ids[len(ids)-maxResults:]
	}

	seqset := new(imap.SeqSet)
	seqset.AddNum(ids...)

	section := &imap.BodySectionName{Peek: true}
	items := []imap.FetchItem{section.FetchItem()}

	messages := make(chan *imap.Message, 10)
	done := make(chan error, 1)
	go func() {
		done <- conn.Fetch(seqset, items, messages)
	}()

	var parsed []*parsedMessage
	for msg := range messages {
		select {
		case <-ctx.Done():
			// Drenar o canal antes de sair
			continue
		default:
		}

		body := msg.GetBody(section)
		if body == nil {
			continue
		}

		pm, err := parseMessage(body)
		if err != nil {
			c.logger.Error("falha ao parsear mensagem IMAP",
				zap.String("folder", folder),
				zap.Error(err))
			continue
		}
		parsed = append(parsed, pm)
	}

	if err := <-done; err != nil {
		return nil, fmt.Errorf("fetch IMAP falhou em %q: %w", folder, err)
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	return parsed, nil
}
