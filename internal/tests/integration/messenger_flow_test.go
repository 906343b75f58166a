package integration

import (
	"net/http"
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type convoResp struct {
	ID           string   `json:"id"`
	IsGroupChat  bool     `json:"isGroupChat"`
	GcName       *string  `json:"gcName"`
	UserIDs      []string `json:"userIds"`
	UserAdminIDs []string `json:"userAdminIds"`
	ArchiveByIDs []string `json:"archiveByIds"`
	Messages     []struct {
		ID            string   `json:"id"`
		UserID        string   `json:"userId"`
		Text          *string  `json:"text"`
		File          *string  `json:"file"`
		QuickReaction *string  `json:"quickReaction"`
		SeenByIDs     []string `json:"seenByIds"`
		DeletedByIDs  []string `json:"deletedByIds"`
		Notif         []struct {
			UserID       string  `json:"userId"`
			NotifMessage *string `json:"notifMessage"`
		} `json:"notif"`
	} `json:"messages"`
}

func TestDirectChatFlow(t *testing.T) {
	setupTestDB(t)
	r := setupRouter(t)
	alice := createTestUser(t, r, "alice")
	bob := createTestUser(t, r, "bob")

	// 1. Nothing exists yet
	w := performRequest(r, "GET", "/api/new-convo-messages?ids="+url.QueryEscape(`["`+bob.ID+`"]`), nil, alice.Token)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "null", w.Body.String())

	// 2. First message opens the conversation
	w = performRequest(r, "POST", "/api/new-convo", map[string]interface{}{
		"receiverIds": []string{bob.ID},
		"text":        "hey bob",
	}, alice.Token)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var convo convoResp
	decode(t, w, &convo)
	assert.False(t, convo.IsGroupChat)
	assert.Equal(t, []string{alice.ID, bob.ID}, convo.UserIDs)
	require.Len(t, convo.Messages, 1)

	// 3. Bob replies with text and an attachment
	w = performRequest(r, "POST", "/api/send-chat", map[string]interface{}{
		"conversationId": convo.ID,
		"text":           "hi alice",
		"urls":           []string{"https://cdn.example.com/pic.png"},
	}, bob.Token)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	decode(t, w, &convo)
	require.Len(t, convo.Messages, 3)
	assert.Equal(t, "hi alice", *convo.Messages[1].Text)
	assert.Equal(t, "https://cdn.example.com/pic.png", *convo.Messages[2].File)

	// 4. Alice reads everything
	w = performRequest(r, "PUT", "/api/seen-message", map[string]string{"conversationId": convo.ID}, alice.Token)
	require.Equal(t, http.StatusOK, w.Code)
	decode(t, w, &convo)
	assert.Equal(t, []string{bob.ID, alice.ID}, convo.Messages[2].SeenByIDs)

	// 5. Lookup by ids in comma form now finds it
	w = performRequest(r, "GET", "/api/new-convo-messages?ids="+alice.ID, nil, bob.Token)
	require.Equal(t, http.StatusOK, w.Code)
	var found convoResp
	decode(t, w, &found)
	assert.Equal(t, convo.ID, found.ID)

	// 6. Both see it in their list
	w = performRequest(r, "GET", "/api/my-conversations", nil, bob.Token)
	require.Equal(t, http.StatusOK, w.Code)
	var list []convoResp
	decode(t, w, &list)
	require.Len(t, list, 1)
	assert.Equal(t, convo.ID, list[0].ID)

	// 7. Alice deletes for herself, twice
	w = performRequest(r, "PUT", "/api/delete-chat", map[string]string{"conversationId": convo.ID}, alice.Token)
	require.Equal(t, http.StatusOK, w.Code)
	decode(t, w, &convo)
	assert.Equal(t, []string{alice.ID}, convo.Messages[0].DeletedByIDs)

	w = performRequest(r, "PUT", "/api/delete-chat", map[string]string{"conversationId": convo.ID}, alice.Token)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, `"Chat already deleted"`, w.Body.String())

	// 8. Archive toggles 201 then 200
	w = performRequest(r, "PUT", "/api/archive-convo", map[string]string{"conversationId": convo.ID}, alice.Token)
	require.Equal(t, http.StatusCreated, w.Code)
	decode(t, w, &convo)
	assert.Equal(t, []string{alice.ID}, convo.ArchiveByIDs)

	w = performRequest(r, "GET", "/api/my-archive", nil, alice.Token)
	require.Equal(t, http.StatusOK, w.Code)
	decode(t, w, &list)
	require.Len(t, list, 1)

	w = performRequest(r, "PUT", "/api/archive-convo", map[string]string{"conversationId": convo.ID}, alice.Token)
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestConversationAccessAndValidation(t *testing.T) {
	setupTestDB(t)
	r := setupRouter(t)
	alice := createTestUser(t, r, "alice")
	bob := createTestUser(t, r, "bob")
	eve := createTestUser(t, r, "eve")

	w := performRequest(r, "POST", "/api/create-convo", map[string]string{"receiverId": bob.ID}, alice.Token)
	require.Equal(t, http.StatusOK, w.Code)
	var convo convoResp
	decode(t, w, &convo)
	assert.Empty(t, convo.Messages)

	w = performRequest(r, "GET", "/api/convo-messages/"+convo.ID, nil, eve.Token)
	assert.Equal(t, http.StatusForbidden, w.Code)

	w = performRequest(r, "GET", "/api/convo-messages/missing", nil, alice.Token)
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = performRequest(r, "POST", "/api/send-chat", map[string]string{"text": "no conversation"}, alice.Token)
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
	assert.Contains(t, w.Body.String(), "conversationId is required")

	w = performRequest(r, "POST", "/api/send-chat", map[string]string{"conversationId": convo.ID}, alice.Token)
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)

	w = performRequest(r, "POST", "/api/send-gif", map[string]string{"conversationId": convo.ID, "gif": "javascript:alert(1)"}, alice.Token)
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)

	w = performRequest(r, "POST", "/api/create-convo", map[string]string{"receiverId": "missing"}, alice.Token)
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = performRequest(r, "GET", "/api/new-convo-messages", nil, alice.Token)
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)

	w = performRequest(r, "PUT", "/api/add-people-in-group-chat", map[string]interface{}{
		"conversationId": convo.ID,
		"peopleIds":      []string{eve.ID},
	}, alice.Token)
	assert.Equal(t, http.StatusConflict, w.Code)
}

func TestQuickReactionFlow(t *testing.T) {
	setupTestDB(t)
	r := setupRouter(t)
	alice := createTestUser(t, r, "alice")
	bob := createTestUser(t, r, "bob")

	body := map[string]interface{}{"receiverIds": []string{bob.ID}, "quickReaction": "👍"}
	w := performRequest(r, "POST", "/api/new-quick-reaction", body, alice.Token)
	require.Equal(t, http.StatusCreated, w.Code)
	var convo convoResp
	decode(t, w, &convo)

	w = performRequest(r, "POST", "/api/new-quick-reaction", body, alice.Token)
	require.Equal(t, http.StatusOK, w.Code)

	w = performRequest(r, "POST", "/api/quick-reaction", map[string]string{"conversationId": convo.ID, "quickReaction": "🎉"}, bob.Token)
	require.Equal(t, http.StatusOK, w.Code)
	decode(t, w, &convo)
	require.Len(t, convo.Messages, 3)
	assert.Equal(t, "🎉", *convo.Messages[2].QuickReaction)
}

func TestGroupChatFlow(t *testing.T) {
	setupTestDB(t)
	r := setupRouter(t)
	alice := createTestUser(t, r, "alice")
	bob := createTestUser(t, r, "bob")
	carol := createTestUser(t, r, "carol")
	dave := createTestUser(t, r, "dave")

	w := performRequest(r, "POST", "/api/new-convo", map[string]interface{}{
		"receiverIds": []string{bob.ID, carol.ID},
		"text":        "group time",
	}, alice.Token)
	require.Equal(t, http.StatusOK, w.Code)
	var convo convoResp
	decode(t, w, &convo)
	assert.True(t, convo.IsGroupChat)
	assert.Equal(t, []string{alice.ID}, convo.UserAdminIDs)

	// Rename leaves a notice on the latest message
	w = performRequest(r, "PUT", "/api/change-gc-name", map[string]string{"conversationId": convo.ID, "newName": "Crew"}, bob.Token)
	require.Equal(t, http.StatusOK, w.Code)
	decode(t, w, &convo)
	require.NotNil(t, convo.GcName)
	assert.Equal(t, "Crew", *convo.GcName)
	require.Len(t, convo.Messages[0].Notif, 1)
	assert.Equal(t, "changed the group name to Crew.", *convo.Messages[0].Notif[0].NotifMessage)

	// Search for people to add skips the current members
	w = performRequest(r, "POST", "/api/search-people-to-add", map[string]interface{}{
		"alreadyAdded": convo.UserIDs,
		"searchPeople": "",
	}, alice.Token)
	require.Equal(t, http.StatusOK, w.Code)
	var people []struct {
		ID string `json:"id"`
	}
	decode(t, w, &people)
	require.Len(t, people, 1)
	assert.Equal(t, dave.ID, people[0].ID)

	w = performRequest(r, "PUT", "/api/add-people-in-group-chat", map[string]interface{}{
		"conversationId": convo.ID,
		"peopleIds":      []string{dave.ID},
	}, alice.Token)
	require.Equal(t, http.StatusOK, w.Code)
	decode(t, w, &convo)
	assert.Equal(t, []string{alice.ID, bob.ID, carol.ID, dave.ID}, convo.UserIDs)

	w = performRequest(r, "PUT", "/api/make-admin", map[string]string{"conversationId": convo.ID, "userId": dave.ID}, alice.Token)
	require.Equal(t, http.StatusOK, w.Code)
	decode(t, w, &convo)
	assert.Equal(t, []string{alice.ID, dave.ID}, convo.UserAdminIDs)

	w = performRequest(r, "PUT", "/api/remove-member", map[string]string{"conversationId": convo.ID, "userId": carol.ID}, dave.Token)
	require.Equal(t, http.StatusOK, w.Code)
	decode(t, w, &convo)
	assert.Equal(t, []string{alice.ID, bob.ID, dave.ID}, convo.UserIDs)

	w = performRequest(r, "PUT", "/api/remove-member", map[string]string{"conversationId": convo.ID, "userId": carol.ID}, dave.Token)
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = performRequest(r, "PUT", "/api/leave-group-chat", map[string]string{"conversationId": convo.ID}, bob.Token)
	require.Equal(t, http.StatusOK, w.Code)
	decode(t, w, &convo)
	assert.Equal(t, []string{alice.ID, dave.ID}, convo.UserIDs)

	w = performRequest(r, "PUT", "/api/change-gc-profile", map[string]string{"conversationId": convo.ID, "photoUrl": "https://cdn.example.com/crew.png"}, bob.Token)
	assert.Equal(t, http.StatusForbidden, w.Code)

	w = performRequest(r, "PUT", "/api/change-gc-profile", map[string]string{"conversationId": "missing", "photoUrl": "https://cdn.example.com/crew.png"}, alice.Token)
	assert.Equal(t, http.StatusConflict, w.Code)
}

func TestUserProfileFlow(t *testing.T) {
	setupTestDB(t)
	r := setupRouter(t)
	alice := createTestUser(t, r, "alice")
	createTestUser(t, r, "bob")

	w := performRequest(r, "GET", "/api/search-messenger?search=BO", nil, alice.Token)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"username":"bob"`)
	assert.NotContains(t, w.Body.String(), "password")

	w = performRequest(r, "PUT", "/api/edit-profile", map[string]string{"email": "bob@example.com"}, alice.Token)
	assert.Equal(t, http.StatusConflict, w.Code)

	w = performRequest(r, "PUT", "/api/edit-profile", map[string]string{"username": "alice_w"}, alice.Token)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"username":"alice_w"`)

	w = performRequest(r, "PUT", "/api/change-profile", map[string]string{"url": "https://cdn.example.com/me.png"}, alice.Token)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"profile":"https://cdn.example.com/me.png"`)
}
