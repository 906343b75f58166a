package seeds

import (
	"context"

	"github.com/pushp314/messenger-backend/internal/models"
	"github.com/pushp314/messenger-backend/internal/services"
	"github.com/pushp314/messenger-backend/pkg/logger"
)

// SeedConversations posts a direct chat between the first two users and a
// group chat between all of them. Running it twice appends to the same
// conversations.
func SeedConversations(ctx context.Context, users []models.User) error {
	if len(users) < 3 {
		return nil
	}
	first, second := users[0], users[1]

	direct, err := services.NewConvo(ctx, first.ID, []string{second.ID}, "Hey "+second.Username+"!")
	if err != nil {
		return err
	}
	if _, err := services.SendChat(ctx, second.ID, direct.ID, "Hi "+first.Username+", welcome aboard.", nil); err != nil {
		return err
	}
	if _, err := services.SeenMessage(ctx, first.ID, direct.ID); err != nil {
		return err
	}

	others := make([]string, 0, len(users)-1)
	for _, u := range users[1:] {
		others = append(others, u.ID)
	}
	group, err := services.NewConvo(ctx, first.ID, others, "Welcome to the group!")
	if err != nil {
		return err
	}
	if _, err := services.ChangeGroupName(ctx, first.ID, group.ID, "Demo Crew"); err != nil {
		return err
	}
	if _, err := services.QuickReaction(ctx, users[2].ID, group.ID, "👍"); err != nil {
		return err
	}

	logger.Info().Str("direct", direct.ID).Str("group", group.ID).Msg("Demo conversations seeded")
	return nil
}
