package controllers

import (
	"net/http"

	"structura-api/config"
	"structura-api/models"
	"structura-api/services"

	"github.com/gin-gonic/gin"
)

type subtaskResponse struct {
	models.Subtask
	AssignedWorkers []services.DashboardAssignedWorker `json:"assigned_workers"`
}

// withAssignedWorkers attaches each subtask's assigned workers.
func withAssignedWorkers(c *gin.Context, subtasks []models.Subtask) ([]subtaskResponse, error) {
	ids := make([]uint, 0, len(subtasks))
	for _, s := range subtasks {
		ids = append(ids, s.SubtaskID)
	}
	workers, err := workService().AssignedWorkers(c.Request.Context(), ids)
	if err != nil {
		return nil, err
	}
	out := make([]subtaskResponse, 0, len(subtasks))
	for _, s := range subtasks {
		assigned := workers[s.SubtaskID]
		if assigned == nil {
			assigned = []services.DashboardAssignedWorker{}
		}
		out = append(out, subtaskResponse{Subtask: s, AssignedWorkers: assigned})
	}
	return out, nil
}

func respondSubtask(c *gin.Context, status int, subtask models.Subtask) {
	out, err := withAssignedWorkers(c, []models.Subtask{subtask})
	if err != nil {
		respondError(c, err, "fetch assigned workers")
		return
	}
	c.JSON(status, out[0])
}

// GetSubtasks lists subtasks by phase_id and/or project_id.
func GetSubtasks(c *gin.Context) {
	query := config.DB.WithContext(c.Request.Context()).Model(&models.Subtask{})
	query, ok := queryFilter(c, query, "phase_id", "subtasks.phase_id")
	if !ok {
		return
	}
	if c.Query("project_id") != "" {
		query = query.Joins("JOIN phases ON phases.phase_id = subtasks.phase_id")
		if query, ok = queryFilter(c, query, "project_id", "phases.project_id"); !ok {
			return
		}
	}
	var subtasks []models.Subtask
	if err := query.Order("subtasks.subtask_id ASC").Find(&subtasks).Error; err != nil {
		respondError(c, err, "fetch subtasks")
		return
	}
	out, err := withAssignedWorkers(c, subtasks)
	if err != nil {
		respondError(c, err, "fetch assigned workers")
		return
	}
	c.JSON(http.StatusOK, out)
}

func GetSubtask(c *gin.Context) {
	id, ok := pathID(c, "subtask")
	if !ok {
		return
	}
	var subtask models.Subtask
	if loadOr404(c, &subtask, "subtask_id", id, "Subtask") {
		respondSubtask(c, http.StatusOK, subtask)
	}
}

func CreateSubtask(c *gin.Context) {
	var subtask models.Subtask
	if err := c.ShouldBindJSON(&subtask); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": err.Error()})
		return
	}
	subtask.SubtaskID = 0
	if err := workService().CreateSubtask(c.Request.Context(), &subtask); err != nil {
		respondError(c, err, "create subtask")
		return
	}
	respondSubtask(c, http.StatusCreated, subtask)
}

// UpdateSubtask handles PUT and PATCH.
func UpdateSubtask(c *gin.Context) {
	id, ok := pathID(c, "subtask")
	if !ok {
		return
	}
	var subtask models.Subtask
	if !loadOr404(c, &subtask, "subtask_id", id, "Subtask") {
		return
	}
	if err := c.ShouldBindJSON(&subtask); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": err.Error()})
		return
	}
	subtask.SubtaskID = id
	if err := workService().UpdateSubtask(c.Request.Context(), &subtask); err != nil {
		respondError(c, err, "update subtask")
		return
	}
	respondSubtask(c, http.StatusOK, subtask)
}

func DeleteSubtask(c *gin.Context) {
	id, ok := pathID(c, "subtask")
	if !ok {
		return
	}
	if err := workService().DeleteSubtask(c.Request.Context(), id); err != nil {
		respondError(c, err, "delete subtask")
		return
	}
	c.Status(http.StatusNoContent)
}
