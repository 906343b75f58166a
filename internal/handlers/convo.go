package handlers

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/pushp314/messenger-backend/internal/middleware"
	"github.com/pushp314/messenger-backend/internal/services"
	"github.com/pushp314/messenger-backend/pkg/errors"
)

type CreateConvoInput struct {
	ReceiverID string `json:"receiverId" binding:"required"`
}

type NewConvoInput struct {
	ReceiverIDs []string `json:"receiverIds" binding:"required,min=1"`
	Text        string   `json:"text" binding:"required"`
}

type NewQuickReactionInput struct {
	ReceiverIDs   []string `json:"receiverIds" binding:"required,min=1"`
	QuickReaction string   `json:"quickReaction" binding:"required"`
}

type ConversationInput struct {
	ConversationID string `json:"conversationId" binding:"required"`
}

type SendChatInput struct {
	ConversationID string   `json:"conversationId" binding:"required"`
	Text           string   `json:"text"`
	URLs           []string `json:"urls" binding:"max=10"`
}

type SendGifInput struct {
	ConversationID string `json:"conversationId" binding:"required"`
	Gif            string `json:"gif" binding:"required"`
}

type QuickReactionInput struct {
	ConversationID string `json:"conversationId" binding:"required"`
	QuickReaction  string `json:"quickReaction" binding:"required"`
}

func CreateConvo(c *gin.Context) {
	var input CreateConvoInput
	if !bind(c, &input) {
		return
	}

	convo, err := services.CreateConvo(c.Request.Context(), middleware.CurrentUser(c).ID, input.ReceiverID)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, convo)
}

func ConvoMessages(c *gin.Context) {
	convo, err := services.ConvoMessages(c.Request.Context(), middleware.CurrentUser(c).ID, c.Param("conversationId"))
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, convo)
}

func MyConversations(c *gin.Context) {
	convos, err := services.MyConversations(c.Request.Context(), middleware.CurrentUser(c).ID)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, convos)
}

func SendChat(c *gin.Context) {
	var input SendChatInput
	if !bind(c, &input) {
		return
	}

	convo, err := services.SendChat(c.Request.Context(), middleware.CurrentUser(c).ID, input.ConversationID, input.Text, input.URLs)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, convo)
}

func SendGif(c *gin.Context) {
	var input SendGifInput
	if !bind(c, &input) {
		return
	}

	convo, err := services.SendGif(c.Request.Context(), middleware.CurrentUser(c).ID, input.ConversationID, input.Gif)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, convo)
}

func QuickReaction(c *gin.Context) {
	var input QuickReactionInput
	if !bind(c, &input) {
		return
	}

	convo, err := services.QuickReaction(c.Request.Context(), middleware.CurrentUser(c).ID, input.ConversationID, input.QuickReaction)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, convo)
}

// NewQuickReaction answers 201 when the reaction opened a new conversation.
func NewQuickReaction(c *gin.Context) {
	var input NewQuickReactionInput
	if !bind(c, &input) {
		return
	}

	convo, created, err := services.NewQuickReaction(c.Request.Context(), middleware.CurrentUser(c).ID, input.ReceiverIDs, input.QuickReaction)
	if err != nil {
		fail(c, err)
		return
	}
	status := http.StatusOK
	if created {
		status = http.StatusCreated
	}
	c.JSON(status, convo)
}

// parseIDs accepts ids=["a","b"] as well as ids=a,b.
func parseIDs(raw string) ([]string, bool) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, false
	}
	var ids []string
	if strings.HasPrefix(raw, "[") {
		if err := json.Unmarshal([]byte(raw), &ids); err != nil {
			return nil, false
		}
	} else {
		ids = strings.Split(raw, ",")
	}
	return ids, len(ids) > 0
}

// NewConvoMessages looks up the conversation for a participant list without
// creating it. The body is null when there is none yet.
func NewConvoMessages(c *gin.Context) {
	ids, ok := parseIDs(c.Query("ids"))
	if !ok {
		fail(c, errors.Unprocessable("ids is required"))
		return
	}

	convo, err := services.LookupConvo(c.Request.Context(), middleware.CurrentUser(c).ID, ids)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, convo)
}

func NewConvo(c *gin.Context) {
	var input NewConvoInput
	if !bind(c, &input) {
		return
	}

	convo, err := services.NewConvo(c.Request.Context(), middleware.CurrentUser(c).ID, input.ReceiverIDs, input.Text)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, convo)
}

func SeenMessage(c *gin.Context) {
	var input ConversationInput
	if !bind(c, &input) {
		return
	}

	convo, err := services.SeenMessage(c.Request.Context(), middleware.CurrentUser(c).ID, input.ConversationID)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, convo)
}

// ArchiveConvo answers 201 when the conversation got archived and 200 when it got unarchived.
func ArchiveConvo(c *gin.Context) {
	var input ConversationInput
	if !bind(c, &input) {
		return
	}

	convo, archived, err := services.ArchiveConvo(c.Request.Context(), middleware.CurrentUser(c).ID, input.ConversationID)
	if err != nil {
		fail(c, err)
		return
	}
	status := http.StatusOK
	if archived {
		status = http.StatusCreated
	}
	c.JSON(status, convo)
}

func MyArchive(c *gin.Context) {
	convos, err := services.MyArchive(c.Request.Context(), middleware.CurrentUser(c).ID)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, convos)
}

func DeleteChat(c *gin.Context) {
	var input ConversationInput
	if !bind(c, &input) {
		return
	}

	convo, already, err := services.DeleteChat(c.Request.Context(), middleware.CurrentUser(c).ID, input.ConversationID)
	if err != nil {
		fail(c, err)
		return
	}
	if already {
		c.JSON(http.StatusOK, "Chat already deleted")
		return
	}
	c.JSON(http.StatusOK, convo)
}
