package models

import (
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Conversation is either a direct chat (self or two users) or a group chat.
//
// Participants, admins and archivers are stored as ConversationMember rows.
// The JSON arrays (userIds, userAdminIds, archiveByIds) are derived from
// them by Hydrate.
type Conversation struct {
	ID          string    `gorm:"primaryKey;type:text" json:"id"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `gorm:"index" json:"updatedAt"`
	IsGroupChat bool      `gorm:"not null;default:false" json:"isGroupChat"`
	GcName      *string   `gorm:"type:text" json:"gcName"`
	GcProfile   *string   `gorm:"type:text" json:"gcProfile"`

	// DirectKey is the participant key of a non-group conversation and NULL for
	// groups. The unique index makes direct conversations one-per-participant-set.
	DirectKey *string `gorm:"type:text;uniqueIndex" json:"-"`
	MemberKey string  `gorm:"type:text;not null;index" json:"-"`

	Members  []ConversationMember `json:"-"`
	Messages []Message            `json:"messages,omitempty"`

	UserIDs      []string `gorm:"-" json:"userIds"`
	Users        []User   `gorm:"-" json:"users,omitempty"`
	UserAdminIDs []string `gorm:"-" json:"userAdminIds"`
	UserAdmin    []User   `gorm:"-" json:"userAdmin,omitempty"`
	ArchiveByIDs []string `gorm:"-" json:"archiveByIds"`
}

func (c *Conversation) BeforeCreate(tx *gorm.DB) error {
	if c.ID == "" {
		c.ID = uuid.NewString()
	}
	return nil
}

// ConversationMember is one participant of a conversation together with the
// per-user flags that hang off the membership.
type ConversationMember struct {
	ConversationID string     `gorm:"primaryKey;type:text" json:"conversationId"`
	UserID         string     `gorm:"primaryKey;type:text;index" json:"userId"`
	Position       int        `gorm:"not null;default:0" json:"position"`
	AdminSince     *time.Time `json:"adminSince,omitempty"`
	ArchivedAt     *time.Time `json:"archivedAt,omitempty"`
	JoinedAt       time.Time  `gorm:"autoCreateTime" json:"joinedAt"`

	User User `gorm:"foreignKey:UserID" json:"user"`
}

// ParticipantKey is the order-independent encoding of a participant set.
func ParticipantKey(ids []string) string {
	sorted := append([]string(nil), ids...)
	sort.Strings(sorted)
	return strings.Join(sorted, ",")
}

// HasMember reports whether userID is a current participant. Members must be loaded.
func (c *Conversation) HasMember(userID string) bool {
	for _, m := range c.Members {
		if m.UserID == userID {
			return true
		}
	}
	return false
}

// Member returns the membership row of userID, or nil.
func (c *Conversation) Member(userID string) *ConversationMember {
	for i := range c.Members {
		if c.Members[i].UserID == userID {
			return &c.Members[i]
		}
	}
	return nil
}

// Hydrate fills the derived arrays from the loaded members and messages.
func (c *Conversation) Hydrate() {
	members := append([]ConversationMember(nil), c.Members...)
	sort.SliceStable(members, func(i, j int) bool { return members[i].Position < members[j].Position })

	c.UserIDs = make([]string, 0, len(members))
	c.Users = nil
	for _, m := range members {
		c.UserIDs = append(c.UserIDs, m.UserID)
		if m.User.ID != "" {
			c.Users = append(c.Users, m.User)
		}
	}

	admins := filterMembers(members, func(m ConversationMember) *time.Time { return m.AdminSince })
	c.UserAdminIDs = make([]string, 0, len(admins))
	c.UserAdmin = nil
	for _, m := range admins {
		c.UserAdminIDs = append(c.UserAdminIDs, m.UserID)
		if m.User.ID != "" {
			c.UserAdmin = append(c.UserAdmin, m.User)
		}
	}

	archivers := filterMembers(members, func(m ConversationMember) *time.Time { return m.ArchivedAt })
	c.ArchiveByIDs = make([]string, 0, len(archivers))
	for _, m := range archivers {
		c.ArchiveByIDs = append(c.ArchiveByIDs, m.UserID)
	}

	for i := range c.Messages {
		c.Messages[i].Hydrate()
	}
}

// filterMembers keeps members whose timestamp is set, oldest first.
func filterMembers(members []ConversationMember, at func(ConversationMember) *time.Time) []ConversationMember {
	var out []ConversationMember
	for _, m := range members {
		if at(m) != nil {
			out = append(out, m)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return at(out[i]).Before(*at(out[j])) })
	return out
}
