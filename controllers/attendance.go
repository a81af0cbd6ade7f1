package controllers

import (
	"net/http"
	"strings"

	"structura-api/config"
	"structura-api/models"
	"structura-api/services"

	"github.com/gin-gonic/gin"
)

var attendanceService = func() *services.AttendanceService { return services.NewAttendanceService(nil) }

type attendanceResponse struct {
	models.Attendance
	FieldWorkerName string `json:"field_worker_name"`
}

func newAttendanceResponse(a models.Attendance) attendanceResponse {
	return attendanceResponse{
		Attendance:      a,
		FieldWorkerName: strings.TrimSpace(a.FieldWorker.FirstName + " " + a.FieldWorker.LastName),
	}
}

func respondAttendance(c *gin.Context, status int, id uint) {
	var a models.Attendance
	if err := config.DB.WithContext(c.Request.Context()).Preload("FieldWorker").
		First(&a, "attendance_id = ?", id).Error; err != nil {
		respondError(c, err, "fetch attendance")
		return
	}
	c.JSON(status, newAttendanceResponse(a))
}

// GetAttendance lists attendance newest day first, filtered by project, date and worker.
func GetAttendance(c *gin.Context) {
	query := config.DB.WithContext(c.Request.Context()).Model(&models.Attendance{}).Preload("FieldWorker")
	var ok bool
	if query, ok = queryFilter(c, query, "project_id", "project_id"); !ok {
		return
	}
	if query, ok = queryFilter(c, query, "field_worker_id", "field_worker_id"); !ok {
		return
	}
	if raw := strings.TrimSpace(c.Query("attendance_date")); raw != "" {
		day, err := models.ParseDate(raw)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": "attendance_date must be YYYY-MM-DD"})
			return
		}
		query = query.Where("attendance_date = ?", day)
	}

	var rows []models.Attendance
	if err := query.Order("attendance_date DESC, attendance_id DESC").Find(&rows).Error; err != nil {
		respondError(c, err, "fetch attendance")
		return
	}
	out := make([]attendanceResponse, 0, len(rows))
	for _, a := range rows {
		out = append(out, newAttendanceResponse(a))
	}
	c.JSON(http.StatusOK, out)
}

func GetAttendanceRecord(c *gin.Context) {
	id, ok := pathID(c, "attendance")
	if !ok {
		return
	}
	respondAttendance(c, http.StatusOK, id)
}

// CreateAttendance records a day; a second record for the same worker, project and day is a 409.
func CreateAttendance(c *gin.Context) {
	var a models.Attendance
	if err := c.ShouldBindJSON(&a); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": err.Error()})
		return
	}
	a.AttendanceID = 0
	if err := attendanceService().Create(c.Request.Context(), &a); err != nil {
		respondError(c, err, "create attendance")
		return
	}
	respondAttendance(c, http.StatusCreated, a.AttendanceID)
}

func UpdateAttendance(c *gin.Context) {
	id, ok := pathID(c, "attendance")
	if !ok {
		return
	}
	var a models.Attendance
	if !loadOr404(c, &a, "attendance_id", id, "Attendance") {
		return
	}
	if err := c.ShouldBindJSON(&a); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": err.Error()})
		return
	}
	a.AttendanceID = id
	if err := attendanceService().Update(c.Request.Context(), &a); err != nil {
		respondError(c, err, "update attendance")
		return
	}
	respondAttendance(c, http.StatusOK, id)
}

func DeleteAttendance(c *gin.Context) {
	id, ok := pathID(c, "attendance")
	if !ok {
		return
	}
	if err := attendanceService().Delete(c.Request.Context(), id); err != nil {
		respondError(c, err, "delete attendance")
		return
	}
	c.Status(http.StatusNoContent)
}
