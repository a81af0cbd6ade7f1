package controllers

import (
	"net/http"

	"structura-api/config"
	"structura-api/models"

	"github.com/gin-gonic/gin"
)

// userRequest accepts the plaintext password as "password" or, for older clients, "password_hash".
type userRequest struct {
	models.User
	Password     string `json:"password"`
	PasswordHash string `json:"password_hash"`
}

func (r userRequest) plainPassword() string {
	if r.Password != "" {
		return r.Password
	}
	return r.PasswordHash
}

// GetUsers lists manager accounts.
func GetUsers(c *gin.Context) {
	var users []models.User
	if err := config.DB.WithContext(c.Request.Context()).Order("user_id ASC").Find(&users).Error; err != nil {
		respondError(c, err, "fetch users")
		return
	}
	c.JSON(http.StatusOK, users)
}

func GetUser(c *gin.Context) {
	id, ok := pathID(c, "user")
	if !ok {
		return
	}
	var user models.User
	if loadOr404(c, &user, "user_id", id, "User") {
		c.JSON(http.StatusOK, user)
	}
}

// CreateUser registers a project manager.
func CreateUser(c *gin.Context) {
	var req userRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": err.Error()})
		return
	}
	user := req.User
	user.UserID = 0
	if err := accountService().CreateUser(c.Request.Context(), &user, req.plainPassword()); err != nil {
		respondError(c, err, "create user")
		return
	}
	c.JSON(http.StatusCreated, user)
}

// UpdateUser handles PUT and PATCH: the body is applied over the stored row.
func UpdateUser(c *gin.Context) {
	id, ok := pathID(c, "user")
	if !ok {
		return
	}
	var req userRequest
	if !loadOr404(c, &req.User, "user_id", id, "User") {
		return
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": err.Error()})
		return
	}
	user := req.User
	user.UserID = id
	if err := accountService().UpdateUser(c.Request.Context(), &user, req.plainPassword()); err != nil {
		respondError(c, err, "update user")
		return
	}
	c.JSON(http.StatusOK, user)
}

func DeleteUser(c *gin.Context) {
	id, ok := pathID(c, "user")
	if !ok {
		return
	}
	if err := accountService().DeleteUser(c.Request.Context(), id); err != nil {
		respondError(c, err, "delete user")
		return
	}
	c.Status(http.StatusNoContent)
}
