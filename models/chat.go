package models

import "gorm.io/gorm"

// ChatMessage is a persisted chat message, broadcast live over the websocket
// hub and replayable from history.
type ChatMessage struct {
	gorm.Model
	SenderID uint   `gorm:"not null;index" json:"sender_id"`
	Message  string `gorm:"not null" json:"message"`

	// Relations
	Sender User `json:"-"`
}
