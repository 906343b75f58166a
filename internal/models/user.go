package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type User struct {
	ID        string    `gorm:"primaryKey;type:text" json:"id"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`

	Username string `gorm:"type:text;not null;index" json:"username"`
	Email    string `gorm:"type:text;not null;uniqueIndex" json:"email"`
	Password string `gorm:"type:text;not null" json:"-"`
	Profile  string `gorm:"type:text" json:"profile"`
}

func (u *User) BeforeCreate(tx *gorm.DB) error {
	if u.ID == "" {
		u.ID = uuid.NewString()
	}
	return nil
}
