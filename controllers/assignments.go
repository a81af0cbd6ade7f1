package controllers

import (
	"bytes"
	"encoding/json"
	"net/http"
	"strings"

	"structura-api/config"
	"structura-api/models"
	"structura-api/services"

	"github.com/gin-gonic/gin"
)

var assignmentService = func() *services.AssignmentService { return services.NewAssignmentService(nil) }

func GetAssignments(c *gin.Context) {
	query := config.DB.WithContext(c.Request.Context()).Model(&models.SubtaskFieldWorker{})
	query, ok := queryFilter(c, query, "subtask_id", "subtask_id")
	if !ok {
		return
	}
	var assignments []models.SubtaskFieldWorker
	if err := query.Order("assignment_id ASC").Find(&assignments).Error; err != nil {
		respondError(c, err, "fetch assignments")
		return
	}
	c.JSON(http.StatusOK, assignments)
}

// decodeAssignments accepts a single object or an array and reports whether it was an array.
func decodeAssignments(body []byte) ([]models.SubtaskFieldWorker, bool, error) {
	trimmed := bytes.TrimSpace(body)
	if len(trimmed) > 0 && trimmed[0] == '[' {
		var items []models.SubtaskFieldWorker
		err := json.Unmarshal(trimmed, &items)
		return items, true, err
	}
	var item models.SubtaskFieldWorker
	if err := json.Unmarshal(trimmed, &item); err != nil {
		return nil, false, err
	}
	return []models.SubtaskFieldWorker{item}, false, nil
}

// CreateAssignments assigns workers to subtasks; an array body is inserted all-or-nothing.
func CreateAssignments(c *gin.Context) {
	body, err := c.GetRawData()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": err.Error()})
		return
	}
	items, bulk, err := decodeAssignments(body)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": err.Error()})
		return
	}
	for i := range items {
		items[i].AssignmentID = 0
	}

	if err := assignmentService().Create(c.Request.Context(), items); err != nil {
		respondError(c, err, "create assignments")
		return
	}
	if bulk {
		c.JSON(http.StatusCreated, items)
		return
	}
	c.JSON(http.StatusCreated, items[0])
}

func DeleteAssignment(c *gin.Context) {
	id, ok := pathID(c, "assignment")
	if !ok {
		return
	}
	if err := assignmentService().Delete(c.Request.Context(), id); err != nil {
		respondError(c, err, "delete assignment")
		return
	}
	c.Status(http.StatusNoContent)
}

// DeleteAssignmentsBySubtask removes every assignment of ?subtask_id= and reports the count.
func DeleteAssignmentsBySubtask(c *gin.Context) {
	raw := strings.TrimSpace(c.Query("subtask_id"))
	if raw == "" {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": "subtask_id is required"})
		return
	}
	subtaskID, err := parseUint(raw)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": "subtask_id must be an integer"})
		return
	}
	deleted, err := assignmentService().DeleteBySubtask(c.Request.Context(), subtaskID)
	if err != nil {
		respondError(c, err, "delete assignments")
		return
	}
	c.JSON(http.StatusOK, gin.H{"deleted": deleted})
}
