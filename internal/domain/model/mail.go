package model

import "time"

// InboundEmail é um e-mail recebido na caixa do hotel, já decodificado
// pelo adaptador IMAP e pronto para a pipeline.
type InboundEmail struct {
	MessageID  string
	ThreadID   string
	FromEmail  string
	FromName   string
	Subject    string
	Body       string
	ReceivedAt *time.Time

	// UpdateID aponta para um registro existente a atualizar no lugar de
	// inserir um novo (fluxo de reprocessamento)
	UpdateID uint
}

// SentEmail é um e-mail enviado pela equipe do hotel, lido da pasta de
// enviados e usado para aprendizado de estilo e busca de referências.
type SentEmail struct {
	Subject string
	To      string
	Body    string
	Date    time.Time
}
