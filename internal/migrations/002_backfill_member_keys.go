package migrations

import (
	"github.com/pushp314/messenger-backend/internal/models"
	"gorm.io/gorm"
)

// Migration002BackfillMemberKeys fills member_key (and direct_key for direct
// chats) on rows created before the keys existed.
func Migration002BackfillMemberKeys() Migration {
	return Migration{
		ID:        "002_backfill_member_keys",
		Name:      "Backfill participant keys of conversations",
		DependsOn: []string{"001_message_indexes"},
		Up: func(db *gorm.DB) error {
			var convos []models.Conversation
			if err := db.Preload("Members").Where("member_key = '' OR member_key IS NULL").Find(&convos).Error; err != nil {
				return err
			}

			for _, convo := range convos {
				ids := make([]string, 0, len(convo.Members))
				for _, m := range convo.Members {
					ids = append(ids, m.UserID)
				}
				key := models.ParticipantKey(ids)

				updates := map[string]interface{}{"member_key": key}
				if !convo.IsGroupChat {
					updates["direct_key"] = key
				}
				if err := db.Model(&models.Conversation{}).Where("id = ?", convo.ID).Updates(updates).Error; err != nil {
					return err
				}
			}
			return nil
		},
		Down: func(db *gorm.DB) error {
			return nil
		},
	}
}
