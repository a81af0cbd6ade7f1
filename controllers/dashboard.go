package controllers

import (
	"context"
	"net/http"
	"strconv"
	"strings"

	"structura-api/services"

	"github.com/gin-gonic/gin"
)

var dashboardSummaryFunc = func(ctx context.Context, managerID uint) (*services.DashboardSummary, error) {
	return services.NewDashboardService(nil).Summary(ctx, managerID)
}

var emptyDashboardSummaryFunc = func() *services.DashboardSummary {
	return services.NewDashboardService(nil).EmptySummary()
}

// GetPMDashboardSummary returns the project manager dashboard for ?user_id=.
func GetPMDashboardSummary(c *gin.Context) {
	raw := strings.TrimSpace(c.Query("user_id"))
	if raw == "" {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "user_id is required"})
		return
	}
	managerID, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "user_id must be an integer"})
		return
	}
	// No account has a non-positive id.
	if managerID <= 0 {
		c.JSON(http.StatusOK, emptyDashboardSummaryFunc())
		return
	}

	summary, err := dashboardSummaryFunc(c.Request.Context(), uint(managerID))
	if err != nil {
		controllerLog.Printf("dashboard summary for user %d: %v", managerID, err)
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "error": "Failed to build dashboard summary"})
		return
	}
	c.JSON(http.StatusOK, summary)
}
