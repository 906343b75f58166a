package services

import (
	"context"
	"errors"
	"time"

	"github.com/pushp314/messenger-backend/internal/database"
	"github.com/pushp314/messenger-backend/internal/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

func byPosition(db *gorm.DB) *gorm.DB {
	return db.Order("position ASC")
}

func oldestFirst(db *gorm.DB) *gorm.DB {
	return db.Order("created_at ASC")
}

// withView preloads everything a client needs to render a conversation.
func withView(db *gorm.DB) *gorm.DB {
	return db.
		Preload("Members", byPosition).
		Preload("Members.User").
		Preload("Messages", oldestFirst).
		Preload("Messages.User").
		Preload("Messages.Seen", oldestFirst).
		Preload("Messages.Seen.User").
		Preload("Messages.Deletions").
		Preload("Messages.Notif", oldestFirst).
		Preload("Messages.Notif.User").
		Preload("Messages.Notif.Users")
}

func loadView(tx *gorm.DB, conversationID string) (*models.Conversation, error) {
	var convo models.Conversation
	if err := withView(tx).First(&convo, "id = ?", conversationID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrConversationNotFound
		}
		return nil, err
	}
	convo.Hydrate()
	return &convo, nil
}

// loadRecord loads a conversation with its members but without messages.
func loadRecord(tx *gorm.DB, conversationID string) (*models.Conversation, error) {
	var convo models.Conversation
	err := tx.Preload("Members", byPosition).Preload("Members.User").
		First(&convo, "id = ?", conversationID).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrConversationNotFound
		}
		return nil, err
	}
	convo.Hydrate()
	return &convo, nil
}

// requireMember loads the conversation and checks userID participates in it.
func requireMember(tx *gorm.DB, conversationID, userID string) (*models.Conversation, error) {
	convo, err := loadRecord(tx, conversationID)
	if err != nil {
		return nil, err
	}
	if !convo.HasMember(userID) {
		return nil, ErrNotMember
	}
	return convo, nil
}

func ensureUsersExist(tx *gorm.DB, ids []string) error {
	var count int64
	if err := tx.Model(&models.User{}).Where("id IN ?", ids).Count(&count).Error; err != nil {
		return err
	}
	if int(count) != len(ids) {
		return ErrUserNotFound
	}
	return nil
}

// touch bumps the recency of a conversation.
func touch(tx *gorm.DB, conversationID string, at time.Time) error {
	return tx.Model(&models.Conversation{}).Where("id = ?", conversationID).Update("updated_at", at).Error
}

// FindConversation returns the conversation matching p exactly, or nil.
// Direct chats are looked up by their unique key, groups by their full member set.
func FindConversation(tx *gorm.DB, p Participants) (*models.Conversation, error) {
	query := tx.Model(&models.Conversation{})
	if p.IsGroup {
		query = query.Where("is_group_chat = ? AND member_key = ?", true, p.Key()).Order("updated_at DESC")
	} else {
		query = query.Where("is_group_chat = ? AND direct_key = ?", false, p.Key())
	}

	var convo models.Conversation
	err := query.Preload("Members", byPosition).Preload("Members.User").First(&convo).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	convo.Hydrate()
	return &convo, nil
}

// ResolveConversation finds the conversation for p or creates it. created
// reports whether this call inserted the row.
//
// Direct chats are inserted with ON CONFLICT DO NOTHING on direct_key, so two
// racing creators end up sharing one row.
func ResolveConversation(tx *gorm.DB, creatorID string, p Participants) (*models.Conversation, bool, error) {
	if err := ensureUsersExist(tx, p.IDs); err != nil {
		return nil, false, err
	}

	existing, err := FindConversation(tx, p)
	if err != nil || existing != nil {
		return existing, false, err
	}

	key := p.Key()
	convo := models.Conversation{IsGroupChat: p.IsGroup, MemberKey: key}
	if !p.IsGroup {
		convo.DirectKey = &key
	}

	res := tx.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "direct_key"}},
		DoNothing: true,
	}).Omit(clause.Associations).Create(&convo)
	if res.Error != nil {
		return nil, false, res.Error
	}
	if res.RowsAffected == 0 {
		winner, err := FindConversation(tx, p)
		if err == nil && winner == nil {
			err = ErrConversationNotFound
		}
		return winner, false, err
	}

	now := time.Now()
	members := make([]models.ConversationMember, len(p.IDs))
	for i, id := range p.IDs {
		members[i] = models.ConversationMember{ConversationID: convo.ID, UserID: id, Position: i}
	}
	if p.IsGroup {
		members[0].AdminSince = &now
	}
	if err := tx.Omit(clause.Associations).Create(&members).Error; err != nil {
		return nil, false, err
	}

	created, err := loadRecord(tx, convo.ID)
	return created, true, err
}

// CreateConvo gets or creates the direct (or self) chat with receiverID.
func CreateConvo(ctx context.Context, selfID, receiverID string) (*models.Conversation, error) {
	p := Classify(selfID, []string{receiverID})

	var convo *models.Conversation
	err := database.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var err error
		convo, _, err = ResolveConversation(tx, selfID, p)
		return err
	})
	return convo, err
}

// NewConvo resolves the conversation for receiverIDs and posts text to it.
func NewConvo(ctx context.Context, selfID string, receiverIDs []string, text string) (*models.Conversation, error) {
	body, err := SanitizeText(text)
	if err != nil {
		return nil, err
	}
	convo, _, err := resolveAndAppend(ctx, selfID, receiverIDs, models.Message{Text: &body})
	return convo, err
}

// NewQuickReaction resolves the conversation for receiverIDs and posts a reaction to it.
func NewQuickReaction(ctx context.Context, selfID string, receiverIDs []string, reaction string) (*models.Conversation, bool, error) {
	r, err := SanitizeReaction(reaction)
	if err != nil {
		return nil, false, err
	}
	return resolveAndAppend(ctx, selfID, receiverIDs, models.Message{QuickReaction: &r})
}

func resolveAndAppend(ctx context.Context, selfID string, receiverIDs []string, msg models.Message) (*models.Conversation, bool, error) {
	p := Classify(selfID, receiverIDs)

	var (
		view    *models.Conversation
		created bool
	)
	err := database.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		convo, isNew, err := ResolveConversation(tx, selfID, p)
		if err != nil {
			return err
		}
		created = isNew
		if err := appendMessages(tx, convo.ID, selfID, []models.Message{msg}); err != nil {
			return err
		}
		view, err = loadView(tx, convo.ID)
		return err
	})
	return view, created, err
}

// LookupConvo returns the conversation for ids without creating one. A nil
// conversation with a nil error means none exists yet.
func LookupConvo(ctx context.Context, selfID string, ids []string) (*models.Conversation, error) {
	db := database.DB.WithContext(ctx)
	convo, err := FindConversation(db, Classify(selfID, ids))
	if err != nil || convo == nil {
		return nil, err
	}
	return loadView(db, convo.ID)
}

// ConvoMessages returns the full view of a conversation the caller belongs to.
func ConvoMessages(ctx context.Context, selfID, conversationID string) (*models.Conversation, error) {
	convo, err := loadView(database.DB.WithContext(ctx), conversationID)
	if err != nil {
		return nil, err
	}
	if !convo.HasMember(selfID) {
		return nil, ErrNotMember
	}
	return convo, nil
}

func memberOf(db *gorm.DB, userID string) *gorm.DB {
	return db.Model(&models.ConversationMember{}).Select("conversation_id").Where("user_id = ?", userID)
}

// MyConversations lists the caller's conversations that have at least one
// message, most recently active first.
func MyConversations(ctx context.Context, selfID string) ([]models.Conversation, error) {
	db := database.DB.WithContext(ctx)

	var convos []models.Conversation
	err := withView(db).
		Where("id IN (?)", memberOf(db, selfID)).
		Where("EXISTS (SELECT 1 FROM messages WHERE messages.conversation_id = conversations.id)").
		Order("updated_at DESC").
		Find(&convos).Error
	if err != nil {
		return nil, err
	}
	for i := range convos {
		convos[i].Hydrate()
	}
	return convos, nil
}

// MyArchive lists the conversations the caller archived.
func MyArchive(ctx context.Context, selfID string) ([]models.Conversation, error) {
	db := database.DB.WithContext(ctx)
	archived := db.Model(&models.ConversationMember{}).Select("conversation_id").
		Where("user_id = ? AND archived_at IS NOT NULL", selfID)

	var convos []models.Conversation
	if err := withView(db).Where("id IN (?)", archived).Order("updated_at DESC").Find(&convos).Error; err != nil {
		return nil, err
	}
	for i := range convos {
		convos[i].Hydrate()
	}
	return convos, nil
}
