package models

import (
	"sort"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Message carries exactly one payload: Text, File, Gif or QuickReaction.
type Message struct {
	ID             string    `gorm:"primaryKey;type:text" json:"id"`
	ConversationID string    `gorm:"type:text;not null;index" json:"conversationId"`
	UserID         string    `gorm:"type:text;not null;index" json:"userId"`
	CreatedAt      time.Time `gorm:"index" json:"createdAt"`

	Text          *string `gorm:"type:text" json:"text"`
	File          *string `gorm:"type:text" json:"file"`
	Gif           *string `gorm:"type:text" json:"gif"`
	QuickReaction *string `gorm:"type:text" json:"quickReaction"`

	User      User              `gorm:"foreignKey:UserID" json:"user"`
	Seen      []MessageSeen     `json:"-"`
	Deletions []MessageDeletion `json:"-"`
	Notif     []Notif           `json:"notif"`

	SeenByIDs    []string `gorm:"-" json:"seenByIds"`
	SeenBy       []User   `gorm:"-" json:"seenBy,omitempty"`
	DeletedByIDs []string `gorm:"-" json:"deletedByIds"`
}

func (m *Message) BeforeCreate(tx *gorm.DB) error {
	if m.ID == "" {
		m.ID = uuid.NewString()
	}
	return nil
}

// MessageSeen marks a message as seen by one user.
type MessageSeen struct {
	MessageID string    `gorm:"primaryKey;type:text"`
	UserID    string    `gorm:"primaryKey;type:text;index"`
	CreatedAt time.Time `gorm:"not null"`

	User User `gorm:"foreignKey:UserID"`
}

func (MessageSeen) TableName() string {
	return "message_seen"
}

// MessageDeletion hides a message for one user only.
type MessageDeletion struct {
	MessageID string    `gorm:"primaryKey;type:text"`
	UserID    string    `gorm:"primaryKey;type:text;index"`
	CreatedAt time.Time `gorm:"not null"`
}

func (m *Message) Hydrate() {
	seen := append([]MessageSeen(nil), m.Seen...)
	sort.SliceStable(seen, func(i, j int) bool { return seen[i].CreatedAt.Before(seen[j].CreatedAt) })

	m.SeenByIDs = make([]string, 0, len(seen))
	m.SeenBy = nil
	for _, s := range seen {
		m.SeenByIDs = append(m.SeenByIDs, s.UserID)
		if s.User.ID != "" {
			m.SeenBy = append(m.SeenBy, s.User)
		}
	}

	m.DeletedByIDs = make([]string, 0, len(m.Deletions))
	for _, d := range m.Deletions {
		m.DeletedByIDs = append(m.DeletedByIDs, d.UserID)
	}
	if m.Notif == nil {
		m.Notif = []Notif{}
	}
}
