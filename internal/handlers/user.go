package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/pushp314/messenger-backend/internal/middleware"
	"github.com/pushp314/messenger-backend/internal/services"
)

type ChangeProfileInput struct {
	URL string `json:"url" binding:"required"`
}

type EditProfileInput struct {
	Username string `json:"username" binding:"omitempty,max=50"`
	Email    string `json:"email" binding:"omitempty,email"`
}

type SearchPeopleInput struct {
	AlreadyAdded []string `json:"alreadyAdded"`
	SearchPeople string   `json:"searchPeople" binding:"max=100"`
}

func GetUser(c *gin.Context) {
	c.JSON(http.StatusOK, middleware.CurrentUser(c))
}

func SearchMessenger(c *gin.Context) {
	users, err := services.SearchUsers(c.Request.Context(), c.Query("search"), nil)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, users)
}

func ChangeProfile(c *gin.Context) {
	var input ChangeProfileInput
	if !bind(c, &input) {
		return
	}

	user, err := services.ChangeProfile(c.Request.Context(), middleware.CurrentUser(c).ID, input.URL)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, user)
}

func EditProfile(c *gin.Context) {
	var input EditProfileInput
	if !bind(c, &input) {
		return
	}

	user, err := services.EditProfile(c.Request.Context(), middleware.CurrentUser(c).ID, input.Username, input.Email)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, user)
}

func SearchPeopleToAdd(c *gin.Context) {
	var input SearchPeopleInput
	if !bind(c, &input) {
		return
	}

	users, err := services.SearchUsers(c.Request.Context(), input.SearchPeople, input.AlreadyAdded)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, users)
}
