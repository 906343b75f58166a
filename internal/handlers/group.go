package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/pushp314/messenger-backend/internal/middleware"
	"github.com/pushp314/messenger-backend/internal/services"
)

type ChangeGcNameInput struct {
	ConversationID string `json:"conversationId" binding:"required"`
	NewName        string `json:"newName" binding:"required,max=100"`
}

type AddPeopleInput struct {
	ConversationID string   `json:"conversationId" binding:"required"`
	PeopleIDs      []string `json:"peopleIds" binding:"required,min=1"`
}

type ChangeGcProfileInput struct {
	ConversationID string `json:"conversationId" binding:"required"`
	PhotoURL       string `json:"photoUrl" binding:"required"`
}

type MemberInput struct {
	ConversationID string `json:"conversationId" binding:"required"`
	UserID         string `json:"userId" binding:"required"`
}

func LeaveGroupChat(c *gin.Context) {
	var input ConversationInput
	if !bind(c, &input) {
		return
	}

	convo, err := services.LeaveGroupChat(c.Request.Context(), middleware.CurrentUser(c).ID, input.ConversationID)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, convo)
}

func ChangeGcName(c *gin.Context) {
	var input ChangeGcNameInput
	if !bind(c, &input) {
		return
	}

	convo, err := services.ChangeGroupName(c.Request.Context(), middleware.CurrentUser(c).ID, input.ConversationID, input.NewName)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, convo)
}

func AddPeopleInGroupChat(c *gin.Context) {
	var input AddPeopleInput
	if !bind(c, &input) {
		return
	}

	convo, err := services.AddPeople(c.Request.Context(), middleware.CurrentUser(c).ID, input.ConversationID, input.PeopleIDs)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, convo)
}

func ChangeGcProfile(c *gin.Context) {
	var input ChangeGcProfileInput
	if !bind(c, &input) {
		return
	}

	convo, err := services.ChangeGroupPhoto(c.Request.Context(), middleware.CurrentUser(c).ID, input.ConversationID, input.PhotoURL)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, convo)
}

// MakeAdmin toggles admin rights: calling it twice for the same user is a no-op overall.
func MakeAdmin(c *gin.Context) {
	var input MemberInput
	if !bind(c, &input) {
		return
	}

	convo, err := services.MakeAdmin(c.Request.Context(), middleware.CurrentUser(c).ID, input.ConversationID, input.UserID)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, convo)
}

func RemoveMember(c *gin.Context) {
	var input MemberInput
	if !bind(c, &input) {
		return
	}

	convo, err := services.RemoveMember(c.Request.Context(), middleware.CurrentUser(c).ID, input.ConversationID, input.UserID)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, convo)
}
