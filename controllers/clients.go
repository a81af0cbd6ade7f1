package controllers

import (
	"net/http"

	"structura-api/config"
	"structura-api/models"

	"github.com/gin-gonic/gin"
)

type clientRequest struct {
	models.Client
	invitationFields
	Password     string `json:"password"`
	PasswordHash string `json:"password_hash"`
}

func (r clientRequest) plainPassword() string {
	if r.Password != "" {
		return r.Password
	}
	return r.PasswordHash
}

func GetClients(c *gin.Context) {
	query := config.DB.WithContext(c.Request.Context()).Model(&models.Client{})
	query, ok := queryFilter(c, query, "user_id", "user_id")
	if !ok {
		return
	}
	var clients []models.Client
	if err := query.Order("client_id ASC").Find(&clients).Error; err != nil {
		respondError(c, err, "fetch clients")
		return
	}
	c.JSON(http.StatusOK, clients)
}

func GetClient(c *gin.Context) {
	id, ok := pathID(c, "client")
	if !ok {
		return
	}
	var client models.Client
	if loadOr404(c, &client, "client_id", id, "Client") {
		c.JSON(http.StatusOK, client)
	}
}

// CreateClient stores the client and queues its invitation email.
func CreateClient(c *gin.Context) {
	var req clientRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": err.Error()})
		return
	}
	client := req.Client
	client.ClientID = 0
	if _, err := accountService().CreateClient(c.Request.Context(), &client, req.plainPassword(), req.inviter()); err != nil {
		respondError(c, err, "create client")
		return
	}
	c.JSON(http.StatusCreated, client)
}

func UpdateClient(c *gin.Context) {
	id, ok := pathID(c, "client")
	if !ok {
		return
	}
	var req clientRequest
	if !loadOr404(c, &req.Client, "client_id", id, "Client") {
		return
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": err.Error()})
		return
	}
	client := req.Client
	client.ClientID = id
	if err := accountService().UpdateClient(c.Request.Context(), &client, req.plainPassword()); err != nil {
		respondError(c, err, "update client")
		return
	}
	c.JSON(http.StatusOK, client)
}

func DeleteClient(c *gin.Context) {
	id, ok := pathID(c, "client")
	if !ok {
		return
	}
	if err := accountService().DeleteClient(c.Request.Context(), id); err != nil {
		respondError(c, err, "delete client")
		return
	}
	c.Status(http.StatusNoContent)
}
