package services

import (
	"context"
	"strings"
	"time"

	"github.com/pushp314/messenger-backend/internal/database"
	"github.com/pushp314/messenger-backend/internal/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// appendMessages stores msgs in order, marks each as seen by its author and
// bumps the conversation. Timestamps are spaced by a microsecond so the batch
// keeps its order when read back.
func appendMessages(tx *gorm.DB, conversationID, authorID string, msgs []models.Message) error {
	if len(msgs) == 0 {
		return nil
	}

	now := time.Now()
	seen := make([]models.MessageSeen, len(msgs))
	for i := range msgs {
		msgs[i].ConversationID = conversationID
		msgs[i].UserID = authorID
		msgs[i].CreatedAt = now.Add(time.Duration(i) * time.Microsecond)
	}
	if err := tx.Omit(clause.Associations).Create(&msgs).Error; err != nil {
		return err
	}

	for i, m := range msgs {
		seen[i] = models.MessageSeen{MessageID: m.ID, UserID: authorID, CreatedAt: m.CreatedAt}
	}
	if err := tx.Omit(clause.Associations).Create(&seen).Error; err != nil {
		return err
	}

	return touch(tx, conversationID, msgs[len(msgs)-1].CreatedAt)
}

// postToConversation appends msgs to a conversation the author belongs to
// and returns the refreshed view, all inside one transaction.
func postToConversation(ctx context.Context, selfID, conversationID string, msgs []models.Message) (*models.Conversation, error) {
	var view *models.Conversation
	err := database.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if _, err := requireMember(tx, conversationID, selfID); err != nil {
			return err
		}
		if err := appendMessages(tx, conversationID, selfID, msgs); err != nil {
			return err
		}
		var err error
		view, err = loadView(tx, conversationID)
		return err
	})
	return view, err
}

// SendChat posts an optional text and one message per file url. The text
// message comes first.
func SendChat(ctx context.Context, selfID, conversationID, text string, urls []string) (*models.Conversation, error) {
	var msgs []models.Message

	if strings.TrimSpace(text) != "" {
		body, err := SanitizeText(text)
		if err != nil {
			return nil, err
		}
		msgs = append(msgs, models.Message{Text: &body})
	}
	for _, raw := range urls {
		file, err := ValidateMediaURL(raw)
		if err != nil {
			return nil, err
		}
		msgs = append(msgs, models.Message{File: &file})
	}
	if len(msgs) == 0 {
		return nil, ErrEmptyMessage
	}

	return postToConversation(ctx, selfID, conversationID, msgs)
}

func SendGif(ctx context.Context, selfID, conversationID, gif string) (*models.Conversation, error) {
	ref, err := ValidateMediaURL(gif)
	if err != nil {
		return nil, err
	}
	return postToConversation(ctx, selfID, conversationID, []models.Message{{Gif: &ref}})
}

func QuickReaction(ctx context.Context, selfID, conversationID, reaction string) (*models.Conversation, error) {
	r, err := SanitizeReaction(reaction)
	if err != nil {
		return nil, err
	}
	return postToConversation(ctx, selfID, conversationID, []models.Message{{QuickReaction: &r}})
}

// markAll inserts a (message, user) row into table for every message of the
// conversation that does not have one yet. Running it twice is a no-op.
func markAll(tx *gorm.DB, table, conversationID, userID string, at time.Time) (int64, error) {
	res := tx.Exec(
		"INSERT INTO "+table+" (message_id, user_id, created_at) "+
			"SELECT m.id, ?, ? FROM messages m "+
			"WHERE m.conversation_id = ? "+
			"AND NOT EXISTS (SELECT 1 FROM "+table+" t WHERE t.message_id = m.id AND t.user_id = ?)",
		userID, at, conversationID, userID,
	)
	return res.RowsAffected, res.Error
}

// SeenMessage marks every message of the conversation as seen by the caller.
func SeenMessage(ctx context.Context, selfID, conversationID string) (*models.Conversation, error) {
	var view *models.Conversation
	err := database.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if _, err := requireMember(tx, conversationID, selfID); err != nil {
			return err
		}
		if _, err := markAll(tx, "message_seen", conversationID, selfID, time.Now()); err != nil {
			return err
		}
		var err error
		view, err = loadView(tx, conversationID)
		return err
	})
	return view, err
}

// DeleteChat hides every message of the conversation for the caller only.
// alreadyDeleted is true, and nothing is written, when every message was
// already hidden for them.
func DeleteChat(ctx context.Context, selfID, conversationID string) (view *models.Conversation, alreadyDeleted bool, err error) {
	err = database.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if _, err := requireMember(tx, conversationID, selfID); err != nil {
			return err
		}

		var pending int64
		err := tx.Model(&models.Message{}).
			Where("conversation_id = ?", conversationID).
			Where("NOT EXISTS (SELECT 1 FROM message_deletions d WHERE d.message_id = messages.id AND d.user_id = ?)", selfID).
			Count(&pending).Error
		if err != nil {
			return err
		}
		if pending == 0 {
			alreadyDeleted = true
			return nil
		}

		if _, err := markAll(tx, "message_deletions", conversationID, selfID, time.Now()); err != nil {
			return err
		}
		view, err = loadView(tx, conversationID)
		return err
	})
	return view, alreadyDeleted, err
}
