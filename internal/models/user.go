package models

import (
	"github.com/google/uuid"
	"github.com/lib/pq"
	"gorm.io/gorm"
)

// User represents an account on the platform. The real-time core only reads
// id, name and profile picture; the rest belongs to the surrounding
// application (posts, questions, follows).
type User struct {
	ID             string         `gorm:"primaryKey" json:"id"`
	Name           string         `gorm:"type:text;not null" json:"name"`
	Email          string         `gorm:"uniqueIndex;not null" json:"email"`
	PasswordHash   string         `gorm:"type:text;not null" json:"-"`
	ProfilePicture string         `gorm:"type:text" json:"profilePicture"`
	Interests      pq.StringArray `gorm:"type:text[]" json:"interests"`
}

// BeforeCreate is a GORM hook that assigns a UUID when the ID is unset.
func (u *User) BeforeCreate(tx *gorm.DB) (err error) {
	if u.ID == "" {
		u.ID = uuid.New().String()
	}
	return
}
