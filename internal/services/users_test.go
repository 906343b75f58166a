package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegisterAndAuthenticate(t *testing.T) {
	setupTestDB(t)
	ctx := context.Background()

	user, err := Register(ctx, " alice ", "Alice@Example.com ", "s3cret-pass")
	require.NoError(t, err)
	assert.Equal(t, "alice", user.Username)
	assert.Equal(t, "alice@example.com", user.Email)
	assert.NotEqual(t, "s3cret-pass", user.Password)

	_, err = Register(ctx, "other", "ALICE@example.com", "whatever")
	assert.ErrorIs(t, err, ErrEmailTaken)

	got, err := Authenticate(ctx, "alice@EXAMPLE.com", "s3cret-pass")
	require.NoError(t, err)
	assert.Equal(t, user.ID, got.ID)

	_, err = Authenticate(ctx, "alice@example.com", "wrong")
	assert.ErrorIs(t, err, ErrInvalidCredentials)

	_, err = Authenticate(ctx, "nobody@example.com", "s3cret-pass")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestGetUser(t *testing.T) {
	setupTestDB(t)
	alice := createUser(t, "alice")

	got, err := GetUser(context.Background(), alice.ID)
	require.NoError(t, err)
	assert.Equal(t, "alice", got.Username)

	_, err = GetUser(context.Background(), "missing")
	assert.ErrorIs(t, err, ErrUserNotFound)
}

func TestSearchUsers(t *testing.T) {
	setupTestDB(t)
	ctx := context.Background()
	alice := createUser(t, "alice")
	createUser(t, "Alicia")
	createUser(t, "bob")
	createUser(t, "al_x")

	users, err := SearchUsers(ctx, "ALI", nil)
	require.NoError(t, err)
	require.Len(t, users, 2)
	assert.Equal(t, "Alicia", users[0].Username)
	assert.Equal(t, "alice", users[1].Username)

	users, err = SearchUsers(ctx, "ali", []string{alice.ID})
	require.NoError(t, err)
	require.Len(t, users, 1)
	assert.Equal(t, "Alicia", users[0].Username)

	// "_" must match literally, not any character.
	users, err = SearchUsers(ctx, "l_", nil)
	require.NoError(t, err)
	require.Len(t, users, 1)
	assert.Equal(t, "al_x", users[0].Username)

	users, err = SearchUsers(ctx, "%", nil)
	require.NoError(t, err)
	assert.NotNil(t, users)
	assert.Empty(t, users)

	users, err = SearchUsers(ctx, "", nil)
	require.NoError(t, err)
	assert.Len(t, users, 4)
}

func TestEditAndChangeProfile(t *testing.T) {
	setupTestDB(t)
	ctx := context.Background()
	alice := createUser(t, "alice")
	createUser(t, "bob")

	updated, err := EditProfile(ctx, alice.ID, "alice2", "")
	require.NoError(t, err)
	assert.Equal(t, "alice2", updated.Username)
	assert.Equal(t, "alice@example.com", updated.Email)

	_, err = EditProfile(ctx, alice.ID, "", "BOB@example.com")
	assert.ErrorIs(t, err, ErrEmailTaken)

	updated, err = EditProfile(ctx, alice.ID, "", "alice@example.com")
	require.NoError(t, err)
	assert.Equal(t, "alice@example.com", updated.Email)

	updated, err = ChangeProfile(ctx, alice.ID, "https://cdn.example.com/me.png")
	require.NoError(t, err)
	assert.Equal(t, "https://cdn.example.com/me.png", updated.Profile)

	_, err = ChangeProfile(ctx, alice.ID, "not-a-url")
	assert.ErrorIs(t, err, ErrInvalidMediaURL)
}
