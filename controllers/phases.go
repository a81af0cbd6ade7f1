package controllers

import (
	"encoding/json"
	"net/http"

	"structura-api/config"
	"structura-api/models"
	"structura-api/services"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"gorm.io/gorm"
)

var workService = func() *services.WorkService { return services.NewWorkService(nil) }

func withSubtasks(db *gorm.DB) *gorm.DB {
	return db.Preload("Subtasks", func(db *gorm.DB) *gorm.DB {
		return db.Order("subtask_id ASC")
	})
}

// GetPhases lists phases in creation order, optionally for one project.
func GetPhases(c *gin.Context) {
	query := withSubtasks(config.DB.WithContext(c.Request.Context()).Model(&models.Phase{}))
	query, ok := queryFilter(c, query, "project_id", "project_id")
	if !ok {
		return
	}
	var phases []models.Phase
	if err := query.Order("created_at ASC, phase_id ASC").Find(&phases).Error; err != nil {
		respondError(c, err, "fetch phases")
		return
	}
	c.JSON(http.StatusOK, phases)
}

func GetPhase(c *gin.Context) {
	id, ok := pathID(c, "phase")
	if !ok {
		return
	}
	respondPhase(c, http.StatusOK, id)
}

func respondPhase(c *gin.Context, status int, id uint) {
	var phase models.Phase
	if err := withSubtasks(config.DB.WithContext(c.Request.Context())).First(&phase, "phase_id = ?", id).Error; err != nil {
		respondError(c, err, "fetch phase")
		return
	}
	c.JSON(status, phase)
}

// CreatePhase stores a phase together with any nested subtasks.
func CreatePhase(c *gin.Context) {
	var phase models.Phase
	if err := c.ShouldBindJSON(&phase); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": err.Error()})
		return
	}
	phase.PhaseID = 0
	for i := range phase.Subtasks {
		phase.Subtasks[i].SubtaskID = 0
	}
	if err := workService().CreatePhase(c.Request.Context(), &phase); err != nil {
		respondError(c, err, "create phase")
		return
	}
	respondPhase(c, http.StatusCreated, phase.PhaseID)
}

// UpdatePhase handles PUT and PATCH. A "subtasks" key in the body replaces the phase's subtasks.
func UpdatePhase(c *gin.Context) {
	id, ok := pathID(c, "phase")
	if !ok {
		return
	}
	var phase models.Phase
	if !loadOr404(c, &phase, "phase_id", id, "Phase") {
		return
	}
	if err := c.ShouldBindBodyWith(&phase, binding.JSON); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": err.Error()})
		return
	}
	var keys map[string]json.RawMessage
	if err := c.ShouldBindBodyWith(&keys, binding.JSON); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": err.Error()})
		return
	}
	_, replace := keys["subtasks"]
	phase.PhaseID = id

	if err := workService().UpdatePhase(c.Request.Context(), &phase, replace); err != nil {
		respondError(c, err, "update phase")
		return
	}
	respondPhase(c, http.StatusOK, id)
}

func DeletePhase(c *gin.Context) {
	id, ok := pathID(c, "phase")
	if !ok {
		return
	}
	if err := workService().DeletePhase(c.Request.Context(), id); err != nil {
		respondError(c, err, "delete phase")
		return
	}
	c.Status(http.StatusNoContent)
}
