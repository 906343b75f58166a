package seeds

import (
	"context"
	"errors"

	"github.com/pushp314/messenger-backend/internal/database"
	"github.com/pushp314/messenger-backend/internal/models"
	"github.com/pushp314/messenger-backend/internal/services"
	"github.com/pushp314/messenger-backend/pkg/logger"
)

// DemoPassword is shared by every seeded account.
const DemoPassword = "password123"

var demoUsers = []struct {
	Username string
	Email    string
}{
	{"alice", "alice@messenger.dev"},
	{"bob", "bob@messenger.dev"},
	{"carol", "carol@messenger.dev"},
	{"dave", "dave@messenger.dev"},
}

// SeedUsers creates the demo accounts, reusing any that already exist.
func SeedUsers(ctx context.Context) ([]models.User, error) {
	users := make([]models.User, 0, len(demoUsers))
	for _, d := range demoUsers {
		user, err := services.Register(ctx, d.Username, d.Email, DemoPassword)
		if errors.Is(err, services.ErrEmailTaken) {
			var existing models.User
			if err := database.DB.WithContext(ctx).Where("email = ?", d.Email).First(&existing).Error; err != nil {
				return nil, err
			}
			logger.Info().Str("username", existing.Username).Msg("Demo user exists")
			users = append(users, existing)
			continue
		}
		if err != nil {
			return nil, err
		}
		logger.Info().Str("username", user.Username).Msg("Demo user created")
		users = append(users, *user)
	}
	return users, nil
}
