package controllers

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"structura-api/config"
	"structura-api/models"
	"structura-api/services"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// prepareFieldWorker validates names and, when the worker belongs to a project, defaults
// user_id to the project's owner.
func prepareFieldWorker(db *gorm.DB, w *models.FieldWorker) error {
	w.FirstName = strings.TrimSpace(w.FirstName)
	w.LastName = strings.TrimSpace(w.LastName)
	w.Role = strings.TrimSpace(w.Role)
	if w.FirstName == "" || w.LastName == "" {
		return fmt.Errorf("%w: first_name and last_name are required", services.ErrValidation)
	}
	if w.ProjectID == nil {
		return nil
	}
	var project models.Project
	if err := db.Select("project_id", "user_id").First(&project, "project_id = ?", *w.ProjectID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return fmt.Errorf("%w: project %d does not exist", services.ErrValidation, *w.ProjectID)
		}
		return err
	}
	if w.UserID == nil {
		w.UserID = project.UserID
	}
	return nil
}

func GetFieldWorkers(c *gin.Context) {
	query := config.DB.WithContext(c.Request.Context()).Model(&models.FieldWorker{})
	query, ok := queryFilter(c, query, "project_id", "project_id")
	if !ok {
		return
	}
	var workers []models.FieldWorker
	if err := query.Order("fieldworker_id ASC").Find(&workers).Error; err != nil {
		respondError(c, err, "fetch field workers")
		return
	}
	c.JSON(http.StatusOK, workers)
}

func GetFieldWorker(c *gin.Context) {
	id, ok := pathID(c, "field worker")
	if !ok {
		return
	}
	var worker models.FieldWorker
	if loadOr404(c, &worker, "fieldworker_id", id, "Field worker") {
		c.JSON(http.StatusOK, worker)
	}
}

func CreateFieldWorker(c *gin.Context) {
	var worker models.FieldWorker
	if err := c.ShouldBindJSON(&worker); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": err.Error()})
		return
	}
	worker.FieldWorkerID = 0
	db := config.DB.WithContext(c.Request.Context())
	if err := prepareFieldWorker(db, &worker); err != nil {
		respondError(c, err, "create field worker")
		return
	}
	if err := db.Create(&worker).Error; err != nil {
		respondError(c, err, "create field worker")
		return
	}
	c.JSON(http.StatusCreated, worker)
}

func UpdateFieldWorker(c *gin.Context) {
	id, ok := pathID(c, "field worker")
	if !ok {
		return
	}
	var worker models.FieldWorker
	if !loadOr404(c, &worker, "fieldworker_id", id, "Field worker") {
		return
	}
	if err := c.ShouldBindJSON(&worker); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": err.Error()})
		return
	}
	worker.FieldWorkerID = id
	db := config.DB.WithContext(c.Request.Context())
	if err := prepareFieldWorker(db, &worker); err != nil {
		respondError(c, err, "update field worker")
		return
	}
	if err := db.Save(&worker).Error; err != nil {
		respondError(c, err, "update field worker")
		return
	}
	c.JSON(http.StatusOK, worker)
}

// DeleteFieldWorker removes the worker with its assignments and attendance.
func DeleteFieldWorker(c *gin.Context) {
	id, ok := pathID(c, "field worker")
	if !ok {
		return
	}
	err := config.DB.WithContext(c.Request.Context()).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("field_worker_id = ?", id).Delete(&models.SubtaskFieldWorker{}).Error; err != nil {
			return err
		}
		if err := tx.Where("field_worker_id = ?", id).Delete(&models.Attendance{}).Error; err != nil {
			return err
		}
		res := tx.Delete(&models.FieldWorker{}, "fieldworker_id = ?", id)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return services.ErrNotFound
		}
		return nil
	})
	if err != nil {
		respondError(c, err, "delete field worker")
		return
	}
	c.Status(http.StatusNoContent)
}
