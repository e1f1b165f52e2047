package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Group is a multi-party conversation. Its ID is the persistent identifier
// the group room key is derived from.
type Group struct {
	ID          string    `gorm:"primaryKey" json:"id"`
	Name        string    `gorm:"type:text;not null" json:"name"`
	Description string    `gorm:"type:text" json:"description"`
	CreatedBy   string    `gorm:"type:text;not null;index" json:"createdBy"`
	CreatedAt   time.Time `json:"createdAt"`
}

func (g *Group) BeforeCreate(tx *gorm.DB) (err error) {
	if g.ID == "" {
		g.ID = uuid.New().String()
	}
	return
}

// GroupMember links a user to a group. Membership checks gate the REST
// surface; the socket layer trusts the surrounding application for
// enforcement.
type GroupMember struct {
	gorm.Model

	GroupID string `gorm:"type:text;not null;uniqueIndex:idx_group_user" json:"groupId"`
	UserID  string `gorm:"type:text;not null;uniqueIndex:idx_group_user" json:"userId"`
	Role    string `gorm:"type:text;not null;default:member" json:"role"`
}

// GroupMessage is a persisted group chat message.
type GroupMessage struct {
	gorm.Model

	GroupID  string `gorm:"type:text;not null;index" json:"groupId"`
	SenderID string `gorm:"type:text;not null;index" json:"senderId"`
	Content  string `gorm:"type:text;not null" json:"content"`
}
