package services

import "errors"

var (
	ErrConversationNotFound = errors.New("conversation not found")
	ErrNotMember            = errors.New("not a member of this conversation")
	ErrNotGroupChat         = errors.New("conversation is not a group chat")
	ErrUserNotFound         = errors.New("user not found")
	ErrMemberNotFound       = errors.New("user is not a member of this conversation")
	ErrEmailTaken           = errors.New("email already exists")
	ErrInvalidCredentials   = errors.New("invalid credentials")
	ErrEmptyMessage         = errors.New("message cannot be empty")
	ErrMessageTooLong       = errors.New("message exceeds maximum length")
	ErrInvalidMediaURL      = errors.New("invalid media url")
)
