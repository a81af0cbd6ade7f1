package controllers

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"structura-api/config"
	"structura-api/middleware"
	"structura-api/models"
	"structura-api/services"
	"structura-api/utils"

	"github.com/gin-gonic/gin"
)

type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

var (
	loginFunc = func(ctx context.Context, email, password string) (*services.Account, error) {
		return services.NewAuthService(nil).Login(ctx, email, password)
	}
	generateTokenFunc = middleware.GenerateToken
)

// Login authenticates a manager, supervisor or client by email.
func Login(c *gin.Context) {
	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "Email and password required"})
		return
	}
	if strings.TrimSpace(req.Email) == "" || req.Password == "" {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "Email and password required"})
		return
	}

	account, err := loginFunc(c.Request.Context(), req.Email, req.Password)
	switch {
	case errors.Is(err, services.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"success": false, "message": "Email not found in system"})
		return
	case errors.Is(err, services.ErrInvalidPassword):
		c.JSON(http.StatusUnauthorized, gin.H{"success": false, "message": "Invalid password"})
		return
	case err != nil:
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": err.Error()})
		return
	}

	token, err := generateTokenFunc(account.ID, account.Email, account.Type, account.Role, config.JWTTTL())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": "Login successful",
		"user":    accountPayload(account),
		"token":   token,
	})
}

func accountPayload(a *services.Account) gin.H {
	user := gin.H{
		"user_id":    a.ID,
		"email":      a.Email,
		"first_name": a.FirstName,
		"last_name":  a.LastName,
		"role":       a.Role,
		"type":       a.Type,
	}
	switch a.Type {
	case models.AccountTypeSupervisor:
		user["supervisor_id"] = a.ID
		user["project_id"] = a.ProjectID
	case models.AccountTypeClient:
		user["client_id"] = a.ID
		user["project_id"] = a.ProjectID
	}
	return user
}

// GetProfile returns the authenticated account.
func GetProfile(c *gin.Context) {
	accountID := c.GetUint(middleware.ContextAccountID)
	switch c.GetString(middleware.ContextAccountType) {
	case models.AccountTypeSupervisor:
		var sv models.Supervisor
		if loadOr404(c, &sv, "supervisor_id", accountID, "Supervisor") {
			c.JSON(http.StatusOK, gin.H{"success": true, "user": sv})
		}
	case models.AccountTypeClient:
		var cl models.Client
		if loadOr404(c, &cl, "client_id", accountID, "Client") {
			c.JSON(http.StatusOK, gin.H{"success": true, "user": cl})
		}
	default:
		var u models.User
		if loadOr404(c, &u, "user_id", accountID, "User") {
			c.JSON(http.StatusOK, gin.H{"success": true, "user": u})
		}
	}
}

// ChangePassword replaces the authenticated account's password after verifying the current one.
func ChangePassword(c *gin.Context) {
	type PasswordChangeRequest struct {
		CurrentPassword string `json:"current_password" binding:"required"`
		NewPassword     string `json:"new_password" binding:"required"`
	}

	var req PasswordChangeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": err.Error()})
		return
	}
	if ok, msg := utils.ValidatePassword(req.NewPassword); !ok {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": msg})
		return
	}

	accountID := c.GetUint(middleware.ContextAccountID)
	var (
		model  interface{}
		column string
		label  string
		hash   func() string
	)
	switch c.GetString(middleware.ContextAccountType) {
	case models.AccountTypeSupervisor:
		sv := &models.Supervisor{}
		model, column, label, hash = sv, "supervisor_id", "Supervisor", func() string { return sv.PasswordHash }
	case models.AccountTypeClient:
		cl := &models.Client{}
		model, column, label, hash = cl, "client_id", "Client", func() string { return cl.PasswordHash }
	default:
		u := &models.User{}
		model, column, label, hash = u, "user_id", "User", func() string { return u.PasswordHash }
	}
	if !loadOr404(c, model, column, accountID, label) {
		return
	}

	if !utils.CheckPasswordHash(req.CurrentPassword, hash()) {
		c.JSON(http.StatusUnauthorized, gin.H{"success": false, "error": "Current password is incorrect"})
		return
	}

	newHash, err := utils.HashPassword(req.NewPassword)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "error": "Failed to hash password"})
		return
	}
	if err := config.DB.WithContext(c.Request.Context()).Model(model).
		Where(column+" = ?", accountID).
		Update("password_hash", newHash).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "error": "Failed to update password"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "message": "Password changed successfully"})
}
