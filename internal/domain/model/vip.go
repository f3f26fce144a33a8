package model

import "time"

// VIPGuest é o cadastro de hóspedes VIP consultado antes da pipeline
type VIPGuest struct {
	ID      uint      `gorm:"primaryKey;autoIncrement" json:"id"`
	Email   string    `gorm:"uniqueIndex;size:255;not null" json:"email"`
	Name    string    `gorm:"size:255" json:"name,omitempty"`
	Company string    `gorm:"size:255" json:"company,omitempty"`
	Tier    string    `gorm:"size:50" json:"tier,omitempty"` // gold | platinum | press | corporate
	Notes   string    `gorm:"type:text" json:"notes,omitempty"`
	AddedAt time.Time `gorm:"autoCreateTime" json:"added_at"`
}

// TableName define o nome da tabela
func (VIPGuest) TableName() string {
	return "vip_guests"
}

// VIPInfo é a visão reduzida de um VIP entregue à pipeline
type VIPInfo struct {
	Name    string `json:"name"`
	Tier    string `json:"tier"`
	Company string `json:"company"`
}
