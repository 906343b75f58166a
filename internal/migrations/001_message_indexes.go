package migrations

import (
	"gorm.io/gorm"
)

var messageIndexes = []struct{ name, ddl string }{
	// Conversation view: messages of one conversation, oldest first.
	{"idx_messages_conversation_created", "CREATE INDEX IF NOT EXISTS idx_messages_conversation_created ON messages (conversation_id, created_at)"},
	// My archive: memberships of one user that are archived.
	{"idx_conversation_members_user_archived", "CREATE INDEX IF NOT EXISTS idx_conversation_members_user_archived ON conversation_members (user_id, archived_at)"},
	// Notices rendered under a message.
	{"idx_notifs_message_created", "CREATE INDEX IF NOT EXISTS idx_notifs_message_created ON notifs (message_id, created_at)"},
}

// Migration001MessageIndexes adds composite indexes for the hot read paths.
// Plain CREATE INDEX since the migrator runs inside a transaction.
func Migration001MessageIndexes() Migration {
	return Migration{
		ID:   "001_message_indexes",
		Name: "Add composite indexes for conversation views",
		Up: func(db *gorm.DB) error {
			for _, idx := range messageIndexes {
				if err := db.Exec(idx.ddl).Error; err != nil {
					return err
				}
			}
			return nil
		},
		Down: func(db *gorm.DB) error {
			for i := len(messageIndexes) - 1; i >= 0; i-- {
				if err := db.Exec("DROP INDEX IF EXISTS " + messageIndexes[i].name).Error; err != nil {
					return err
				}
			}
			return nil
		},
	}
}
