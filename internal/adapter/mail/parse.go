package mail

import (
	"io"
	"mime"
	"strings"
	"time"

	"github.com/emersion/go-message"
	_ "github.com/emersion/go-message/charset"
	gomessage "github.com/emersion/go-message/mail"
)

// parsedMessage é um e-mail RFC 5322 já decodificado
type parsedMessage struct {
	MessageID string
	ThreadID  string
	InReplyTo string
	FromEmail string
	FromName  string
	ToEmail   string
	Subject   string
	Body      string
	Date      *time.Time
}

// parseMessage decodifica cabeçalhos (RFC 2047) e extrai a primeira parte
// text/plain do corpo. Mensagens HTML puras ficam com corpo vazio e são
// tratadas adiante pela limpeza de corpo da pipeline.
func parseMessage(r io.Reader) (*parsedMessage, error) {
	mr, err := gomessage.CreateReader(r)
	if err != nil {
		// Cabeçalhos malformados ainda são legíveis na maioria dos casos
		if mr == nil {
			return nil, err
		}
	}

	header := mr.Header
	out := &parsedMessage{
		MessageID: strings.TrimSpace(header.Get("Message-Id")),
		ThreadID:  strings.TrimSpace(header.Get("Thread-Index")),
		InReplyTo: strings.TrimSpace(header.Get("In-Reply-To")),
		Subject:   decodeHeader(header.Get("Subject")),
	}

	if date, err := header.Date(); err == nil && !date.IsZero() {
		out.Date = &date
	}

	if from, err := header.AddressList("From"); err == nil && len(from) > 0 {
		out.FromEmail = strings.ToLower(strings.TrimSpace(from[0].Address))
		out.FromName = strings.TrimSpace(from[0].Name)
	} else {
		out.FromEmail, out.FromName = splitRawAddress(decodeHeader(header.Get("From")))
	}

	if to, err := header.AddressList("To"); err == nil && len(to) > 0 {
		out.ToEmail = strings.ToLower(strings.TrimSpace(to[0].Address))
	} else {
		out.ToEmail, _ = splitRawAddress(decodeHeader(header.Get("To")))
	}

	out.Body = extractPlainBody(mr)
	return out, nil
}

// extractPlainBody percorre as partes MIME e devolve o primeiro text/plain
func extractPlainBody(mr *gomessage.Reader) string {
	for {
		part, err := mr.NextPart()
		if err == io.EOF {
			return ""
		}
		if err != nil {
			if message.IsUnknownCharset(err) {
				continue
			}
			return ""
		}

		inline, ok := part.Header.(*gomessage.InlineHeader)
		if !ok {
			continue
		}

		contentType, _, _ := inline.ContentType()
		if contentType != "text/plain" && contentType != "" {
			continue
		}

		body, err := io.ReadAll(part.Body)
		if err != nil {
			return ""
		}
		return string(body)
	}
}

// decodeHeader decodifica valores RFC 2047 que o leitor não tratou
func decodeHeader(value string) string {
	value = strings.TrimSpace(value)
	if value == "" {
		return ""
	}

	dec := &mime.WordDecoder{}
	decoded, err := dec.DecodeHeader(value)
	if err != nil {
		return value
	}
	return strings.TrimSpace(decoded)
}

// splitRawAddress separa "Nome <email>" em endereço e nome
func splitRawAddress(raw string) (email, name string) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return "", ""
	}

	open := strings.LastIndex(raw, "<")
	close := strings.LastIndex(raw, ">")
	if open >= 0 && close > open {
		email = strings.ToLower(strings.TrimSpace(raw[open+1 : close]))
		name = strings.Trim(strings.TrimSpace(raw[:open]), `"`)
		return email, name
	}

	return strings.ToLower(raw), ""
}
