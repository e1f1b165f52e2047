package models

import "gorm.io/gorm"

// PrivateMessage is a persisted one-to-one chat message. The embedded
// gorm.Model provides the durable ID and CreatedAt, which are the message id
// and ordering key for history reads.
type PrivateMessage struct {
	gorm.Model

	// SenderID and RecipientID identify the two participants of the
	// conversation; history lookups query both directions.
	SenderID    string `gorm:"type:text;not null;index:idx_private_pair" json:"senderId"`
	RecipientID string `gorm:"type:text;not null;index:idx_private_pair" json:"recipientId"`
	Content     string `gorm:"type:text;not null" json:"content"`
	IsRead      bool   `gorm:"not null;default:false" json:"isRead"`
}
