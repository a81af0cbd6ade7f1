package controllers

import (
	"net/http"
	"strings"

	"structura-api/config"
	"structura-api/models"
	"structura-api/services"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

var projectService = func() *services.ProjectService { return services.NewProjectService(nil) }

// projectResponse adds the resolved address names to a project.
type projectResponse struct {
	models.Project
	RegionName   *string `json:"region_name"`
	ProvinceName *string `json:"province_name"`
	CityName     *string `json:"city_name"`
	BarangayName *string `json:"barangay_name"`
}

func newProjectResponse(p models.Project) projectResponse {
	resp := projectResponse{Project: p}
	if p.Region != nil {
		resp.RegionName = &p.Region.Name
	}
	if p.Province != nil {
		resp.ProvinceName = &p.Province.Name
	}
	if p.City != nil {
		resp.CityName = &p.City.Name
	}
	if p.Barangay != nil {
		resp.BarangayName = &p.Barangay.Name
	}
	return resp
}

func withAddress(db *gorm.DB) *gorm.DB {
	return db.Preload("Region").Preload("Province").Preload("City").Preload("Barangay")
}

// GetProjects lists projects, filtered by client_id or else by owner user_id, newest first.
func GetProjects(c *gin.Context) {
	query := withAddress(config.DB.WithContext(c.Request.Context()).Model(&models.Project{}))
	var ok bool
	if strings.TrimSpace(c.Query("client_id")) != "" {
		query, ok = queryFilter(c, query, "client_id", "client_id")
	} else {
		query, ok = queryFilter(c, query, "user_id", "user_id")
	}
	if !ok {
		return
	}

	var projects []models.Project
	if err := query.Order("created_at DESC, project_id DESC").Find(&projects).Error; err != nil {
		respondError(c, err, "fetch projects")
		return
	}
	out := make([]projectResponse, 0, len(projects))
	for _, p := range projects {
		out = append(out, newProjectResponse(p))
	}
	c.JSON(http.StatusOK, out)
}

func GetProject(c *gin.Context) {
	id, ok := pathID(c, "project")
	if !ok {
		return
	}
	project, err := loadProject(c, id)
	if err != nil {
		respondError(c, err, "fetch project")
		return
	}
	c.JSON(http.StatusOK, newProjectResponse(project))
}

func loadProject(c *gin.Context, id uint) (models.Project, error) {
	var project models.Project
	err := withAddress(config.DB.WithContext(c.Request.Context())).First(&project, "project_id = ?", id).Error
	return project, err
}

// respondProject reloads the project so the address names reflect the stored ids.
func respondProject(c *gin.Context, status int, project models.Project) {
	if fresh, err := loadProject(c, project.ProjectID); err == nil {
		project = fresh
	}
	c.JSON(status, newProjectResponse(project))
}

// CreateProject stores a project owned by user_id (body or query) and links its holders.
func CreateProject(c *gin.Context) {
	var req struct {
		models.Project
		OwnerID *uint `json:"user_id"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": err.Error()})
		return
	}
	project := req.Project
	project.ProjectID = 0
	if project.UserID == nil {
		project.UserID = req.OwnerID
	}
	if project.UserID == nil {
		if raw := strings.TrimSpace(c.Query("user_id")); raw != "" {
			if id, err := parseUint(raw); err == nil {
				project.UserID = &id
			}
		}
	}
	if project.UserID == nil || *project.UserID == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "user_id is required to create a project"})
		return
	}

	if err := projectService().Create(c.Request.Context(), &project); err != nil {
		respondError(c, err, "create project")
		return
	}
	respondProject(c, http.StatusCreated, project)
}

// UpdateProject handles PUT and PATCH; supervisor and client moves are applied atomically.
func UpdateProject(c *gin.Context) {
	id, ok := pathID(c, "project")
	if !ok {
		return
	}
	var project models.Project
	if !loadOr404(c, &project, "project_id", id, "Project") {
		return
	}
	if err := c.ShouldBindJSON(&project); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": err.Error()})
		return
	}
	project.ProjectID = id

	if err := projectService().Update(c.Request.Context(), &project); err != nil {
		respondError(c, err, "update project")
		return
	}
	respondProject(c, http.StatusOK, project)
}

func DeleteProject(c *gin.Context) {
	id, ok := pathID(c, "project")
	if !ok {
		return
	}
	if err := projectService().Delete(c.Request.Context(), id); err != nil {
		respondError(c, err, "delete project")
		return
	}
	c.Status(http.StatusNoContent)
}
