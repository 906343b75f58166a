package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/pushp314/messenger-backend/internal/database"
	"github.com/pushp314/messenger-backend/internal/models"
	"github.com/pushp314/messenger-backend/pkg/utils"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// latestMessageID returns the id of the newest message, or nil for an empty conversation.
func latestMessageID(tx *gorm.DB, conversationID string) (*string, error) {
	var ids []string
	err := tx.Model(&models.Message{}).
		Where("conversation_id = ?", conversationID).
		Order("created_at DESC").Limit(1).
		Pluck("id", &ids).Error
	if err != nil || len(ids) == 0 {
		return nil, err
	}
	return &ids[0], nil
}

// recordNotif attaches a system notice to the newest message of the conversation.
func recordNotif(tx *gorm.DB, conversationID, actorID string, text *string, affected []string) error {
	messageID, err := latestMessageID(tx, conversationID)
	if err != nil {
		return err
	}

	notif := models.Notif{
		ConversationID: conversationID,
		MessageID:      messageID,
		UserID:         actorID,
		NotifMessage:   text,
	}
	for _, id := range affected {
		notif.Users = append(notif.Users, models.User{ID: id})
	}
	return tx.Omit("User", "Users.*").Create(&notif).Error
}

// syncMembers recomputes the member key after the participant set changed and bumps the conversation.
func syncMembers(tx *gorm.DB, conversationID string, at time.Time) error {
	var ids []string
	err := tx.Model(&models.ConversationMember{}).
		Where("conversation_id = ?", conversationID).
		Pluck("user_id", &ids).Error
	if err != nil {
		return err
	}
	return tx.Model(&models.Conversation{}).Where("id = ?", conversationID).
		Updates(map[string]interface{}{
			"member_key": models.ParticipantKey(ids),
			"updated_at": at,
		}).Error
}

// mutate runs fn against a conversation the caller belongs to and returns the refreshed view.
func mutate(ctx context.Context, selfID, conversationID string, fn func(tx *gorm.DB, convo *models.Conversation) error) (*models.Conversation, error) {
	var view *models.Conversation
	err := database.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		convo, err := requireMember(tx, conversationID, selfID)
		if err != nil {
			return err
		}
		if err := fn(tx, convo); err != nil {
			return err
		}
		view, err = loadView(tx, conversationID)
		return err
	})
	return view, err
}

func requireGroup(convo *models.Conversation) error {
	if !convo.IsGroupChat {
		return ErrNotGroupChat
	}
	return nil
}

// AddPeople appends users to a group. Users already in the group are skipped;
// when nobody new is left the conversation is returned unchanged.
func AddPeople(ctx context.Context, selfID, conversationID string, peopleIDs []string) (*models.Conversation, error) {
	return mutate(ctx, selfID, conversationID, func(tx *gorm.DB, convo *models.Conversation) error {
		if err := requireGroup(convo); err != nil {
			return err
		}

		var added []string
		for _, id := range utils.DedupeIDs(peopleIDs) {
			if !convo.HasMember(id) {
				added = append(added, id)
			}
		}
		if len(added) == 0 {
			return nil
		}
		if err := ensureUsersExist(tx, added); err != nil {
			return err
		}

		next := 0
		for _, m := range convo.Members {
			if m.Position >= next {
				next = m.Position + 1
			}
		}
		rows := make([]models.ConversationMember, len(added))
		for i, id := range added {
			rows[i] = models.ConversationMember{ConversationID: convo.ID, UserID: id, Position: next + i}
		}
		if err := tx.Omit(clause.Associations).Create(&rows).Error; err != nil {
			return err
		}
		if err := syncMembers(tx, convo.ID, time.Now()); err != nil {
			return err
		}
		return recordNotif(tx, convo.ID, selfID, nil, added)
	})
}

func deleteMember(tx *gorm.DB, conversationID, userID string) error {
	return tx.Where("conversation_id = ? AND user_id = ?", conversationID, userID).
		Delete(&models.ConversationMember{}).Error
}

// RemoveMember drops userID from a group. Admin and archive flags go with the membership.
func RemoveMember(ctx context.Context, selfID, conversationID, userID string) (*models.Conversation, error) {
	return mutate(ctx, selfID, conversationID, func(tx *gorm.DB, convo *models.Conversation) error {
		if err := requireGroup(convo); err != nil {
			return err
		}
		if !convo.HasMember(userID) {
			return ErrMemberNotFound
		}
		if err := deleteMember(tx, convo.ID, userID); err != nil {
			return err
		}
		return syncMembers(tx, convo.ID, time.Now())
	})
}

// LeaveGroupChat removes the caller from a group and leaves a notice behind.
func LeaveGroupChat(ctx context.Context, selfID, conversationID string) (*models.Conversation, error) {
	return mutate(ctx, selfID, conversationID, func(tx *gorm.DB, convo *models.Conversation) error {
		if err := requireGroup(convo); err != nil {
			return err
		}
		if err := deleteMember(tx, convo.ID, selfID); err != nil {
			return err
		}
		if err := syncMembers(tx, convo.ID, time.Now()); err != nil {
			return err
		}
		text := models.NotifLeftGroup
		return recordNotif(tx, convo.ID, selfID, &text, nil)
	})
}

// MakeAdmin toggles admin rights of userID: admins are demoted, everyone else promoted.
func MakeAdmin(ctx context.Context, selfID, conversationID, userID string) (*models.Conversation, error) {
	return mutate(ctx, selfID, conversationID, func(tx *gorm.DB, convo *models.Conversation) error {
		if err := requireGroup(convo); err != nil {
			return err
		}
		member := convo.Member(userID)
		if member == nil {
			return ErrMemberNotFound
		}

		now := time.Now()
		var adminSince *time.Time
		if member.AdminSince == nil {
			adminSince = &now
		}
		err := tx.Model(&models.ConversationMember{}).
			Where("conversation_id = ? AND user_id = ?", convo.ID, userID).
			Update("admin_since", adminSince).Error
		if err != nil {
			return err
		}
		return touch(tx, convo.ID, now)
	})
}

// ChangeGroupName renames the conversation and records who did it.
func ChangeGroupName(ctx context.Context, selfID, conversationID, newName string) (*models.Conversation, error) {
	return mutate(ctx, selfID, conversationID, func(tx *gorm.DB, convo *models.Conversation) error {
		err := tx.Model(&models.Conversation{}).Where("id = ?", convo.ID).
			Updates(map[string]interface{}{"gc_name": newName, "updated_at": time.Now()}).Error
		if err != nil {
			return err
		}
		text := fmt.Sprintf(models.NotifRenamedTmpl, newName)
		return recordNotif(tx, convo.ID, selfID, &text, nil)
	})
}

// ChangeGroupPhoto sets the conversation picture. A missing conversation is
// reported as ErrNotGroupChat; the group flag itself is not checked.
func ChangeGroupPhoto(ctx context.Context, selfID, conversationID, photoURL string) (*models.Conversation, error) {
	photo, err := ValidateMediaURL(photoURL)
	if err != nil {
		return nil, err
	}

	view, err := mutate(ctx, selfID, conversationID, func(tx *gorm.DB, convo *models.Conversation) error {
		return tx.Model(&models.Conversation{}).Where("id = ?", convo.ID).
			Updates(map[string]interface{}{"gc_profile": photo, "updated_at": time.Now()}).Error
	})
	if errors.Is(err, ErrConversationNotFound) {
		return nil, ErrNotGroupChat
	}
	return view, err
}

// ArchiveConvo toggles the archive flag of the caller only. archived reports the new state.
func ArchiveConvo(ctx context.Context, selfID, conversationID string) (convo *models.Conversation, archived bool, err error) {
	err = database.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		current, err := requireMember(tx, conversationID, selfID)
		if err != nil {
			return err
		}

		// Only the caller's membership row changes; updated_at is left alone.
		now := time.Now()
		var archivedAt *time.Time
		if current.Member(selfID).ArchivedAt == nil {
			archivedAt = &now
			archived = true
		}
		err = tx.Model(&models.ConversationMember{}).
			Where("conversation_id = ? AND user_id = ?", conversationID, selfID).
			Update("archived_at", archivedAt).Error
		if err != nil {
			return err
		}
		convo, err = loadRecord(tx, conversationID)
		return err
	})
	return convo, archived, err
}
