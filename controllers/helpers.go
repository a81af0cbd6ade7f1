package controllers

import (
	"errors"
	"net/http"
	"strconv"
	"strings"

	"structura-api/config"
	"structura-api/services"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

var controllerLog = config.NewLogger("[api] ")

// invitationQueue receives invitations queued by supervisor and client creation.
var invitationQueue services.InvitationQueue

// SetInvitationQueue wires the dispatcher used for invitation emails.
func SetInvitationQueue(q services.InvitationQueue) {
	invitationQueue = q
}

func accountService() *services.AccountService {
	return services.NewAccountService(nil, invitationQueue)
}

func parseUint(raw string) (uint, error) {
	v, err := strconv.ParseUint(strings.TrimSpace(raw), 10, 64)
	if err != nil || v == 0 {
		return 0, errors.New("invalid id")
	}
	return uint(v), nil
}

// pathID reads the :id parameter, answering 400 when it is not a positive integer.
func pathID(c *gin.Context, label string) (uint, bool) {
	id, err := parseUint(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": "Invalid " + label + " ID"})
		return 0, false
	}
	return id, true
}

// queryFilter applies "column = ?" when the query parameter is present, rejecting non-integers.
func queryFilter(c *gin.Context, query *gorm.DB, param, column string) (*gorm.DB, bool) {
	raw := strings.TrimSpace(c.Query(param))
	if raw == "" {
		return query, true
	}
	id, err := parseUint(raw)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": param + " must be an integer"})
		return nil, false
	}
	return query.Where(column+" = ?", id), true
}

// loadOr404 loads a row by primary key column, answering 404 or 500 itself.
func loadOr404(c *gin.Context, dest interface{}, column string, id uint, label string) bool {
	if err := config.DB.WithContext(c.Request.Context()).First(dest, column+" = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"success": false, "error": label + " not found"})
			return false
		}
		controllerLog.Printf("load %s %d: %v", label, id, err)
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "error": "Failed to load " + strings.ToLower(label)})
		return false
	}
	return true
}

// respondError maps service sentinels to status codes.
func respondError(c *gin.Context, err error, action string) {
	switch {
	case errors.Is(err, services.ErrValidation):
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": err.Error()})
	case errors.Is(err, services.ErrNotFound), errors.Is(err, gorm.ErrRecordNotFound):
		c.JSON(http.StatusNotFound, gin.H{"success": false, "message": err.Error()})
	case errors.Is(err, services.ErrConflict), errors.Is(err, gorm.ErrDuplicatedKey):
		c.JSON(http.StatusConflict, gin.H{"success": false, "message": err.Error()})
	default:
		controllerLog.Printf("%s: %v", action, err)
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "error": "Failed to " + action})
	}
}
