package controllers

import (
	"net/http"

	"structura-api/config"
	"structura-api/models"
	"structura-api/services"

	"github.com/gin-gonic/gin"
)

// invitationFields are write-only inputs used to personalise the invitation email.
type invitationFields struct {
	InvitedByEmail string `json:"invited_by_email"`
	InvitedByName  string `json:"invited_by_name"`
	ProjectName    string `json:"project_name"`
}

func (f invitationFields) inviter() services.Inviter {
	return services.Inviter{Email: f.InvitedByEmail, Name: f.InvitedByName, ProjectName: f.ProjectName}
}

type supervisorRequest struct {
	models.Supervisor
	invitationFields
	Password     string `json:"password"`
	PasswordHash string `json:"password_hash"`
}

func (r supervisorRequest) plainPassword() string {
	if r.Password != "" {
		return r.Password
	}
	return r.PasswordHash
}

func GetSupervisors(c *gin.Context) {
	query := config.DB.WithContext(c.Request.Context()).Model(&models.Supervisor{})
	query, ok := queryFilter(c, query, "project_id", "project_id")
	if !ok {
		return
	}
	var supervisors []models.Supervisor
	if err := query.Order("supervisor_id ASC").Find(&supervisors).Error; err != nil {
		respondError(c, err, "fetch supervisors")
		return
	}
	c.JSON(http.StatusOK, supervisors)
}

func GetSupervisor(c *gin.Context) {
	id, ok := pathID(c, "supervisor")
	if !ok {
		return
	}
	var supervisor models.Supervisor
	if loadOr404(c, &supervisor, "supervisor_id", id, "Supervisor") {
		c.JSON(http.StatusOK, supervisor)
	}
}

// CreateSupervisor stores the supervisor and queues its invitation email. The email outcome
// never affects the response.
func CreateSupervisor(c *gin.Context) {
	var req supervisorRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": err.Error()})
		return
	}
	supervisor := req.Supervisor
	supervisor.SupervisorID = 0
	if _, err := accountService().CreateSupervisor(c.Request.Context(), &supervisor, req.plainPassword(), req.inviter()); err != nil {
		respondError(c, err, "create supervisor")
		return
	}
	c.JSON(http.StatusCreated, supervisor)
}

func UpdateSupervisor(c *gin.Context) {
	id, ok := pathID(c, "supervisor")
	if !ok {
		return
	}
	var req supervisorRequest
	if !loadOr404(c, &req.Supervisor, "supervisor_id", id, "Supervisor") {
		return
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": err.Error()})
		return
	}
	supervisor := req.Supervisor
	supervisor.SupervisorID = id
	if err := accountService().UpdateSupervisor(c.Request.Context(), &supervisor, req.plainPassword()); err != nil {
		respondError(c, err, "update supervisor")
		return
	}
	c.JSON(http.StatusOK, supervisor)
}

func DeleteSupervisor(c *gin.Context) {
	id, ok := pathID(c, "supervisor")
	if !ok {
		return
	}
	if err := accountService().DeleteSupervisor(c.Request.Context(), id); err != nil {
		respondError(c, err, "delete supervisor")
		return
	}
	c.Status(http.StatusNoContent)
}
