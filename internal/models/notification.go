package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

const (
	NotifLeftGroup   = "left the group."
	NotifRenamedTmpl = "changed the group name to %s."
)

// Notif is a system notice recorded on a membership or rename change. It hangs
// off the latest message of the conversation at the time, or off nothing when
// the conversation had no messages yet.
type Notif struct {
	ID             string    `gorm:"primaryKey;type:text" json:"id"`
	ConversationID string    `gorm:"type:text;not null;index" json:"conversationId"`
	MessageID      *string   `gorm:"type:text;index" json:"messageId"`
	UserID         string    `gorm:"type:text;not null" json:"userId"`
	NotifMessage   *string   `gorm:"type:text" json:"notifMessage"`
	CreatedAt      time.Time `json:"createdAt"`

	User  User   `gorm:"foreignKey:UserID" json:"user"`
	Users []User `gorm:"many2many:notif_users;" json:"users"`
}

func (n *Notif) BeforeCreate(tx *gorm.DB) error {
	if n.ID == "" {
		n.ID = uuid.NewString()
	}
	return nil
}

// UserIDs lists the affected users, e.g. people added to a group.
func (n *Notif) UserIDs() []string {
	ids := make([]string, 0, len(n.Users))
	for _, u := range n.Users {
		ids = append(ids, u.ID)
	}
	return ids
}

// All returns every table the messenger owns, in creation order.
func All() []interface{} {
	return []interface{}{
		&User{},
		&Conversation{},
		&ConversationMember{},
		&Message{},
		&MessageSeen{},
		&MessageDeletion{},
		&Notif{},
	}
}
