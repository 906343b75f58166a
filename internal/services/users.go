package services

import (
	"context"
	"errors"
	"strings"

	"github.com/pushp314/messenger-backend/internal/database"
	"github.com/pushp314/messenger-backend/internal/models"
	"github.com/pushp314/messenger-backend/pkg/utils"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

const searchLimit = 50

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// Register creates a user with a bcrypt hashed password.
func Register(ctx context.Context, username, email, password string) (*models.User, error) {
	db := database.DB.WithContext(ctx)
	email = normalizeEmail(email)

	var count int64
	if err := db.Model(&models.User{}).Where("email = ?", email).Count(&count).Error; err != nil {
		return nil, err
	}
	if count > 0 {
		return nil, ErrEmailTaken
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}

	user := models.User{
		Username: strings.TrimSpace(username),
		Email:    email,
		Password: string(hash),
	}
	if err := db.Create(&user).Error; err != nil {
		// Lost a race with a concurrent registration.
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, ErrEmailTaken
		}
		return nil, err
	}
	return &user, nil
}

// Authenticate checks an email/password pair.
func Authenticate(ctx context.Context, email, password string) (*models.User, error) {
	var user models.User
	err := database.DB.WithContext(ctx).Where("email = ?", normalizeEmail(email)).First(&user).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrInvalidCredentials
	}
	if err != nil {
		return nil, err
	}
	if bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(password)) != nil {
		return nil, ErrInvalidCredentials
	}
	return &user, nil
}

func GetUser(ctx context.Context, id string) (*models.User, error) {
	var user models.User
	err := database.DB.WithContext(ctx).First(&user, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrUserNotFound
	}
	if err != nil {
		return nil, err
	}
	return &user, nil
}

// SearchUsers matches search case-insensitively anywhere in the username.
// Users listed in exclude are left out. An empty search matches everyone.
func SearchUsers(ctx context.Context, search string, exclude []string) ([]models.User, error) {
	query := database.DB.WithContext(ctx).Model(&models.User{})

	if search = strings.TrimSpace(search); search != "" {
		query = query.Where(`LOWER(username) LIKE LOWER(?) ESCAPE '\'`, utils.SanitizeSearchQuery(search))
	}
	if exclude = utils.DedupeIDs(exclude); len(exclude) > 0 {
		query = query.Where("id NOT IN ?", exclude)
	}

	users := []models.User{}
	if err := query.Order("username ASC").Limit(searchLimit).Find(&users).Error; err != nil {
		return nil, err
	}
	return users, nil
}

// ChangeProfile sets the profile picture of the user.
func ChangeProfile(ctx context.Context, userID, url string) (*models.User, error) {
	photo, err := ValidateMediaURL(url)
	if err != nil {
		return nil, err
	}
	return updateUser(ctx, userID, map[string]interface{}{"profile": photo})
}

// EditProfile updates username and/or email. Blank fields are left unchanged.
func EditProfile(ctx context.Context, userID, username, email string) (*models.User, error) {
	updates := map[string]interface{}{}
	if username = strings.TrimSpace(username); username != "" {
		updates["username"] = username
	}
	if email = normalizeEmail(email); email != "" {
		var count int64
		err := database.DB.WithContext(ctx).Model(&models.User{}).
			Where("email = ? AND id <> ?", email, userID).Count(&count).Error
		if err != nil {
			return nil, err
		}
		if count > 0 {
			return nil, ErrEmailTaken
		}
		updates["email"] = email
	}
	return updateUser(ctx, userID, updates)
}

func updateUser(ctx context.Context, userID string, updates map[string]interface{}) (*models.User, error) {
	db := database.DB.WithContext(ctx)
	if len(updates) > 0 {
		err := db.Model(&models.User{}).Where("id = ?", userID).Updates(updates).Error
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, ErrEmailTaken
		}
		if err != nil {
			return nil, err
		}
	}
	return GetUser(ctx, userID)
}
