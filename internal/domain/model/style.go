package model

import "time"

// StyleProfile é o estilo de escrita aprendido a partir da pasta de
// itens enviados do hotel. Atualizado pelo job de sincronização e
// injetado no prompt do redator de respostas.
type StyleProfile struct {
	ID             uint      `gorm:"primaryKey;autoIncrement" json:"id"`
	LearnedAt      time.Time `gorm:"index" json:"learned_at"`
	EmailsAnalyzed int       `gorm:"default:0" json:"emails_analyzed"`
	ProfileJSON    JSONMap   `gorm:"type:text" json:"profile_json"`
	InjectedPrompt string    `gorm:"type:text" json:"injected_prompt"`
}

// TableName define o nome da tabela
func (StyleProfile) TableName() string {
	return "style_profiles"
}
